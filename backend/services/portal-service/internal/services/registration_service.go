package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/forms"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/repositories"
	"github.com/closeauth/mono-repo/backend/services/portal-service/internal/utils/geo"
	"github.com/closeauth/mono-repo/backend/shared/go-utils"
	"github.com/google/uuid"
)

var ErrWizardNotFound = errors.New("registration wizard not found")

// WizardSessionRepository stores one RegistrationFlow per browser.
type WizardSessionRepository = repositories.SessionRepository[*RegistrationFlow]

// RegistrationService owns the wizard sessions.
type RegistrationService interface {
	StartWizard(ctx context.Context) (uuid.UUID, *RegistrationFlow, error)
	Wizard(ctx context.Context, id uuid.UUID) (*RegistrationFlow, error)
	DiscardWizard(ctx context.Context, id uuid.UUID) error
}

type registrationService struct {
	repo      WizardSessionRepository
	client    RegistrationClient
	provider  geo.Provider
	validator *forms.Validator
}

func NewRegistrationService(
	repo WizardSessionRepository,
	client RegistrationClient,
	provider geo.Provider,
	validator *forms.Validator,
) RegistrationService {
	return &registrationService{
		repo:      repo,
		client:    client,
		provider:  provider,
		validator: validator,
	}
}

// StartWizard creates an empty wizard with the country list loaded.
func (s *registrationService) StartWizard(ctx context.Context) (uuid.UUID, *RegistrationFlow, error) {
	flow := NewRegistrationFlow(s.client, s.provider, s.validator)
	if err := flow.Init(ctx); err != nil {
		return uuid.Nil, nil, fmt.Errorf("%w: %v", utils.ErrExternalServiceFailure, err)
	}
	id, err := s.repo.Create(ctx, flow)
	if err != nil {
		return uuid.Nil, nil, err
	}
	utils.Logger.WithField("wizard_id", id).Debug("[RegistrationService] wizard started")
	return id, flow, nil
}

func (s *registrationService) Wizard(ctx context.Context, id uuid.UUID) (*RegistrationFlow, error) {
	flow, err := s.repo.Get(ctx, id)
	if errors.Is(err, repositories.ErrSessionNotFound) {
		return nil, ErrWizardNotFound
	}
	return flow, err
}

func (s *registrationService) DiscardWizard(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repositories.ErrSessionNotFound) {
		return ErrWizardNotFound
	}
	return err
}
