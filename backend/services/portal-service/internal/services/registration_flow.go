package services

import (
	"context"
	"sync"

	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/forms"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/utils/authapi"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/utils/geo"
	"github.com/closeauth/mono-repo/backend/shared/go-utils"
	"github.com/sirupsen/logrus"
)

const registrationFailedMessage = "Registration failed"

// RegistrationClient is the part of the auth service the wizard needs.
type RegistrationClient interface {
	Register(ctx context.Context, req authapi.EnterpriseRegistrationRequest) (*authapi.EnterpriseRegistrationResponse, error)
}

// RegistrationState is a copy of a RegistrationFlow for rendering. Passwords
// are left out.
type RegistrationState struct {
	Step          Step                     `json:"step"`
	Progress      int                      `json:"progress"`
	Values        forms.RegistrationValues `json:"values"`
	Geo           GeoState                 `json:"geo"`
	Submitting    bool                     `json:"submitting"`
	Notifications []Notification           `json:"notifications"`
}

// RegistrationFlow is one browser's two-step sign-up wizard. It is safe for
// concurrent use.
type RegistrationFlow struct {
	client    RegistrationClient
	validator *forms.Validator
	cascade   *GeoCascade

	mu            sync.Mutex
	values        forms.RegistrationValues
	wizard        *Wizard
	notifications []Notification
	submitting    bool
}

func NewRegistrationFlow(client RegistrationClient, provider geo.Provider, validator *forms.Validator) *RegistrationFlow {
	if validator == nil {
		validator = forms.NewValidator()
	}
	return &RegistrationFlow{
		client:    client,
		validator: validator,
		cascade:   NewGeoCascade(provider),
		wizard:    NewWizard(validator),
	}
}

// Init loads the country list.
func (f *RegistrationFlow) Init(ctx context.Context) error {
	return f.cascade.LoadCountries(ctx)
}

// SetFields applies input to the non-location fields. Either every field is
// applied or none is.
func (f *RegistrationFlow) SetFields(input map[forms.Field]string) error {
	for field := range input {
		if !field.Known() {
			return ErrUnknownField
		}
		if field.IsGeo() {
			return ErrGeoFieldNotSettable
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for field, value := range input {
		f.values.Set(field, value)
	}
	return nil
}

func (f *RegistrationFlow) SelectCountry(ctx context.Context, code string) error {
	return f.cascade.SelectCountry(ctx, code)
}

func (f *RegistrationFlow) SelectState(ctx context.Context, code string) error {
	return f.cascade.SelectState(ctx, code)
}

func (f *RegistrationFlow) SelectCity(code string) error {
	return f.cascade.SelectCity(code)
}

// Next tries to move to step two. Notifications from earlier attempts are
// dropped; each invalid step-one field gets a new one.
func (f *RegistrationFlow) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.notifications = nil
	errs := f.wizard.Next(f.currentValues())
	if len(errs) > 0 {
		f.notifications = fieldErrorNotifications(errs, forms.Step1Fields)
		return &ValidationError{Errors: errs, Scope: forms.Step1Fields}
	}
	return nil
}

func (f *RegistrationFlow) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.wizard.Back()
}

// Submit validates step two and sends the registration to the auth service.
// Only one submission runs at a time.
func (f *RegistrationFlow) Submit(ctx context.Context) (*authapi.EnterpriseRegistrationResponse, error) {
	f.mu.Lock()
	if f.wizard.Step() != StepTwo {
		f.mu.Unlock()
		return nil, ErrNotOnFinalStep
	}
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	f.notifications = nil

	values := f.currentValues()
	if errs := f.validator.Registration(values, forms.Step2Fields); len(errs) > 0 {
		f.notifications = fieldErrorNotifications(errs, forms.Step2Fields)
		f.mu.Unlock()
		return nil, &ValidationError{Errors: errs, Scope: forms.Step2Fields}
	}
	f.submitting = true
	f.mu.Unlock()

	resp, err := f.client.Register(ctx, toRegistrationRequest(values))

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false

	logger := utils.Logger.WithField("username", values.EnterpriseUsername)
	if err != nil {
		logger.WithError(err).Warn("[RegistrationFlow] registration call failed")
		f.notifications = append(f.notifications, newNotification(NotificationError, "", failureMessage(err, registrationFailedMessage)))
		return nil, err
	}
	if !resp.Succeeded() {
		logger.WithField("status", resp.Status).Warn("[RegistrationFlow] registration not accepted")
		f.notifications = append(f.notifications, newNotification(NotificationError, "", utils.FirstNonEmpty(resp.Message, registrationFailedMessage)))
		return resp, ErrRegistrationRejected
	}

	logger.WithFields(logrus.Fields{
		"otp_validity_seconds": resp.OTPValiditySeconds,
	}).Info("[RegistrationFlow] enterprise registered")
	f.notifications = append(f.notifications, newNotification(NotificationSuccess, "", resp.Message+resp.Timestamp))
	f.values = forms.RegistrationValues{}
	f.cascade.Reset()
	f.wizard.Reset()
	return resp, nil
}

// Reset empties the form and returns to step one.
func (f *RegistrationFlow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = forms.RegistrationValues{}
	f.notifications = nil
	f.cascade.Reset()
	f.wizard.Reset()
}

func (f *RegistrationFlow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wizard.Step()
}

// Values returns the form including passwords.
func (f *RegistrationFlow) Values() forms.RegistrationValues {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentValues()
}

func (f *RegistrationFlow) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

func (f *RegistrationFlow) Notifications() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Notification(nil), f.notifications...)
}

func (f *RegistrationFlow) Snapshot() RegistrationState {
	f.mu.Lock()
	defer f.mu.Unlock()

	values := f.currentValues()
	values.Password = ""
	values.ConfirmPassword = ""
	return RegistrationState{
		Step:          f.wizard.Step(),
		Progress:      f.wizard.Progress(),
		Values:        values,
		Geo:           f.cascade.Snapshot(),
		Submitting:    f.submitting,
		Notifications: append([]Notification{}, f.notifications...),
	}
}

// currentValues fills the location fields from the cascade selection.
// Callers hold f.mu.
func (f *RegistrationFlow) currentValues() forms.RegistrationValues {
	v := f.values
	sel := f.cascade.Selection()
	v.Country = sel.Country.Name
	v.State = sel.State.Name
	v.City = sel.City.Name
	return v
}

func toRegistrationRequest(v forms.RegistrationValues) authapi.EnterpriseRegistrationRequest {
	return authapi.EnterpriseRegistrationRequest{
		UserFirstName: v.FirstName,
		UserLastName:  v.LastName,
		UserName:      v.EnterpriseUsername,
		UserPassword:  v.Password,
		EnterpriseDetails: authapi.EnterpriseDetails{
			EnterpriseName:          v.EnterpriseName,
			EnterpriseEmail:         v.Email,
			EnterpriseContactNumber: v.ContactNumber,
			EnterpriseCountry:       v.Country,
			EnterpriseState:         v.State,
			EnterpriseCity:          v.City,
			EnterprisePinCode:       v.Pincode,
			EnterpriseAddress:       v.Address,
		},
	}
}
