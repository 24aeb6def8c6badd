package services

import (
	"context"
	"strings"

	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/config"
	"github.com/closeauth/mono-repo/backend/shared/go-utils"
	twilio "github.com/twilio/twilio-go"
)

// ContactValidationService runs the optional deliverability checks the page
// calls while the user fills in the enterprise e-mail and contact number.
// They are advisory and independent of the form validator.
type ContactValidationService interface {
	ValidateEmail(ctx context.Context, email string) error
	ValidatePhone(ctx context.Context, phoneNumber, countryCode string) error
}

type emailChecker func(ctx context.Context, apiKey, email string, withSendGrid bool) (bool, error)

type phoneChecker func(ctx context.Context, number, country string, withTwilio bool, tw *twilio.RestClient) (bool, error)

type contactValidationService struct {
	cfg        *config.Config
	twilio     *twilio.RestClient
	checkEmail emailChecker
	checkPhone phoneChecker
}

func NewContactValidationService(cfg *config.Config) ContactValidationService {
	return &contactValidationService{
		cfg:        cfg,
		twilio:     utils.NewTwilioClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken),
		checkEmail: utils.ValidateEmail,
		checkPhone: utils.ValidatePhoneNumber,
	}
}

func (s *contactValidationService) ValidateEmail(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	ok, err := s.checkEmail(ctx, s.cfg.SendGridAPIKey, email, s.cfg.LDFlag_ValidateEmailWithSendGrid)
	if err != nil {
		utils.Logger.WithError(err).Error("[ContactValidation] e-mail check failed")
		return err
	}
	if !ok {
		return utils.ErrInvalidEmail
	}
	return nil
}

func (s *contactValidationService) ValidatePhone(ctx context.Context, phoneNumber, countryCode string) error {
	ok, err := s.checkPhone(
		ctx,
		strings.TrimSpace(phoneNumber),
		strings.ToUpper(strings.TrimSpace(countryCode)),
		s.cfg.LDFlag_ValidatePhoneWithTwilio,
		s.twilio,
	)
	if err != nil {
		utils.Logger.WithError(err).Error("[ContactValidation] phone check failed")
		return err
	}
	if !ok {
		return utils.ErrInvalidPhone
	}
	return nil
}
