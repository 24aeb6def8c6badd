package services

import (
	"context"

	"github.com/closeauth/mono-repo/backend/shared/go-utils"
)

type expiredSessionSweeper interface {
	DeleteExpired(ctx context.Context) (int, error)
}

// WizardSessionCleanupService drops wizards that were abandoned.
type WizardSessionCleanupService interface {
	CleanupExpired(ctx context.Context) error
}

type wizardSessionCleanupService struct {
	repo expiredSessionSweeper
}

func NewWizardSessionCleanupService(repo expiredSessionSweeper) WizardSessionCleanupService {
	return &wizardSessionCleanupService{repo: repo}
}

func (s *wizardSessionCleanupService) CleanupExpired(ctx context.Context) error {
	removed, err := s.repo.DeleteExpired(ctx)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to cleanup expired wizard sessions")
		return err
	}
	if removed > 0 {
		utils.Logger.Infof("Wizard session cleanup removed %d expired session(s)", removed)
	}
	return nil
}
