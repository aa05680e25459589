package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
)

// SettingsKey is the Redis key holding the branding document.
const SettingsKey = "problem_log_settings_v2"

// SettingsRepository stores the console branding as one JSON document.
type SettingsRepository interface {
	Get(ctx context.Context) (domain.AppSettings, error)
	Save(ctx context.Context, settings domain.AppSettings) error
	Reset(ctx context.Context) error
}

type settingsRepository struct {
	client *redis.Client
}

// NewSettingsRepository returns a Redis-backed store.
func NewSettingsRepository(client *redis.Client) SettingsRepository {
	return &settingsRepository{client: client}
}

// Get returns the stored settings merged over the defaults. A missing key yields the defaults.
func (r *settingsRepository) Get(ctx context.Context) (domain.AppSettings, error) {
	settings := domain.DefaultSettings()
	raw, err := r.client.Get(ctx, SettingsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return settings, nil
	}
	if err != nil {
		return settings, err
	}

	defaultFeatures := settings.LoginFeatures
	settings.LoginFeatures = nil
	if err := json.Unmarshal(raw, &settings); err != nil {
		return domain.DefaultSettings(), err
	}
	if settings.LoginFeatures == nil {
		settings.LoginFeatures = defaultFeatures
	}
	return settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings domain.AppSettings) error {
	raw, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, SettingsKey, raw, 0).Err()
}

func (r *settingsRepository) Reset(ctx context.Context) error {
	return r.client.Del(ctx, SettingsKey).Err()
}
