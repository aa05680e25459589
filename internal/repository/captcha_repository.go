package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
)

const captchaKeyPrefix = "login:captcha:"

// CaptchaRepository stores login challenges until they expire or are consumed.
type CaptchaRepository interface {
	Store(ctx context.Context, captcha domain.Captcha, ttl time.Duration) error
	// Take returns the code and deletes it. ok is false when the id is unknown or expired.
	Take(ctx context.Context, id string) (code string, ok bool, err error)
}

type captchaRepository struct {
	client *redis.Client
}

// NewCaptchaRepository returns a Redis-backed store.
func NewCaptchaRepository(client *redis.Client) CaptchaRepository {
	return &captchaRepository{client: client}
}

func (r *captchaRepository) Store(ctx context.Context, captcha domain.Captcha, ttl time.Duration) error {
	return r.client.Set(ctx, captchaKeyPrefix+captcha.ID, captcha.Code, ttl).Err()
}

func (r *captchaRepository) Take(ctx context.Context, id string) (string, bool, error) {
	code, err := r.client.GetDel(ctx, captchaKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return code, true, nil
}
