package services

import (
	"context"

	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/forms"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/utils/authapi"
)

// LoginService runs one login form submission per request.
type LoginService interface {
	Login(ctx context.Context, values forms.LoginValues) (*LoginFlow, *authapi.EnterpriseLoginResponse, error)
}

type loginService struct {
	client    LoginClient
	validator *forms.Validator
}

func NewLoginService(client LoginClient, validator *forms.Validator) LoginService {
	return &loginService{client: client, validator: validator}
}

// Login returns the flow alongside the outcome so callers can render its
// notifications.
func (s *loginService) Login(ctx context.Context, values forms.LoginValues) (*LoginFlow, *authapi.EnterpriseLoginResponse, error) {
	flow := NewLoginFlow(s.client, s.validator)
	flow.SetValues(values)
	resp, err := flow.Submit(ctx)
	return flow, resp, err
}
