package service

import (
	"context"
	"strings"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/repository"
	apperrors "github.com/dedirosandiaj/problem-log-new/pkg/util/errorutil"
)

const settingsTarget = "System Settings"

// SettingsService reads and writes console branding.
type SettingsService struct {
	repo     repository.SettingsRepository
	activity ActivityRecorder
}

// NewSettingsService constructs the service.
func NewSettingsService(repo repository.SettingsRepository, activity ActivityRecorder) *SettingsService {
	return &SettingsService{repo: repo, activity: activity}
}

// Get returns stored settings merged over the defaults.
func (s *SettingsService) Get(ctx context.Context) (domain.AppSettings, error) {
	return s.repo.Get(ctx)
}

// Save persists branding. Blank required text falls back to the default value.
func (s *SettingsService) Save(ctx context.Context, actor domain.Actor, settings domain.AppSettings) (domain.AppSettings, error) {
	if strings.TrimSpace(settings.AppName) == "" {
		return domain.AppSettings{}, apperrors.NewValidationError("invalid settings", map[string]any{"appName": "required"})
	}
	defaults := domain.DefaultSettings()
	if settings.LoginFeatures == nil {
		settings.LoginFeatures = defaults.LoginFeatures
	}
	if settings.LogoURL != nil && strings.TrimSpace(*settings.LogoURL) == "" {
		settings.LogoURL = nil
	}

	if err := s.repo.Save(ctx, settings); err != nil {
		return domain.AppSettings{}, apperrors.NewInternalError(err)
	}
	record(ctx, s.activity, actor, domain.ActionUpdate, settingsTarget, "Updated application configuration")
	return settings, nil
}

// Reset drops stored branding and returns the defaults.
func (s *SettingsService) Reset(ctx context.Context, actor domain.Actor) (domain.AppSettings, error) {
	if err := s.repo.Reset(ctx); err != nil {
		return domain.AppSettings{}, apperrors.NewInternalError(err)
	}
	record(ctx, s.activity, actor, domain.ActionDelete, settingsTarget, "Reset settings to default")
	return domain.DefaultSettings(), nil
}
