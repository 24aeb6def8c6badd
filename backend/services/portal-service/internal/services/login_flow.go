package services

import (
	"context"
	"sync"

	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/forms"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/utils/authapi"
	"github.com/closeauth/mono-repo/backend/shared/go-utils"
)

const loginFailedMessage = "Login failed"

type LoginClient interface {
	Login(ctx context.Context, req authapi.EnterpriseLoginRequest) (*authapi.EnterpriseLoginResponse, error)
}

// LoginFlow is the single-step login form.
type LoginFlow struct {
	client    LoginClient
	validator *forms.Validator

	mu            sync.Mutex
	values        forms.LoginValues
	notifications []Notification
	submitting    bool
}

func NewLoginFlow(client LoginClient, validator *forms.Validator) *LoginFlow {
	if validator == nil {
		validator = forms.NewValidator()
	}
	return &LoginFlow{client: client, validator: validator}
}

func (f *LoginFlow) SetValues(v forms.LoginValues) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = v
}

// Submit validates the form and logs in against the auth service.
func (f *LoginFlow) Submit(ctx context.Context) (*authapi.EnterpriseLoginResponse, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	f.notifications = nil
	values := f.values
	if errs := f.validator.Login(values, forms.LoginFields); len(errs) > 0 {
		f.notifications = fieldErrorNotifications(errs, forms.LoginFields)
		f.mu.Unlock()
		return nil, &ValidationError{Errors: errs, Scope: forms.LoginFields}
	}
	f.submitting = true
	f.mu.Unlock()

	resp, err := f.client.Login(ctx, authapi.EnterpriseLoginRequest{
		Email:    values.Email,
		Password: values.Password,
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false

	logger := utils.Logger.WithField("email", values.Email)
	if err != nil {
		logger.WithError(err).Warn("[LoginFlow] login call failed")
		f.notifications = append(f.notifications, newNotification(NotificationError, "", failureMessage(err, loginFailedMessage)))
		return nil, err
	}
	if !resp.Succeeded() {
		logger.WithField("status", resp.Status).Warn("[LoginFlow] login not accepted")
		f.notifications = append(f.notifications, newNotification(NotificationError, "", utils.FirstNonEmpty(resp.Message, loginFailedMessage)))
		return resp, ErrLoginRejected
	}

	logger.Info("[LoginFlow] login succeeded")
	f.notifications = append(f.notifications, newNotification(NotificationSuccess, "", resp.Message+resp.Data.User.FirstName))
	f.values = forms.LoginValues{}
	return resp, nil
}

func (f *LoginFlow) Values() forms.LoginValues {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

func (f *LoginFlow) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

func (f *LoginFlow) Notifications() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Notification(nil), f.notifications...)
}
