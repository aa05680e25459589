package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dedirosandiaj/problem-log-new/internal/auth"
	"github.com/dedirosandiaj/problem-log-new/internal/config"
	"github.com/dedirosandiaj/problem-log-new/internal/domain"
)

func newAuthFixture(t *testing.T, captchaRequired bool) (*AuthService, *fakeUserRepo, *fakeCaptchaRepo, *activitySpy) {
	t.Helper()
	hash, err := auth.HashPassword("password123", bcrypt.MinCost)
	require.NoError(t, err)

	users := &fakeUserRepo{users: []*domain.User{{
		ID:           "7b0e3c52-5d7c-4c43-9a57-1a5e0f3f6c11",
		Name:         "Administrator",
		Email:        "admin@problemlog.com",
		PasswordHash: hash,
		Role:         domain.RoleSuperAdmin,
		LastLogin:    domain.NeverLoggedIn,
	}}}
	captchas := &fakeCaptchaRepo{}
	activity := &activitySpy{}

	cfg := config.Config{
		App:  config.AppConfig{Name: "problem-log"},
		Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 30, CaptchaRequired: captchaRequired, CaptchaTTL: time.Minute},
	}
	svc := NewAuthService(cfg, AuthDependencies{UserRepo: users, CaptchaRepo: captchas, Activity: activity})
	svc.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc, users, captchas, activity
}

func TestAuthService_IssueCaptcha(t *testing.T) {
	svc, _, captchas, _ := newAuthFixture(t, true)

	challenge, err := svc.IssueCaptcha(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, challenge.ID)
	assert.True(t, strings.HasPrefix(challenge.SVG, "<svg"))

	code := captchas.codes[challenge.ID]
	require.Len(t, code, domain.CaptchaLength)
	for _, ch := range code {
		assert.True(t, strings.ContainsRune(domain.CaptchaAlphabet, ch), "unexpected rune %q", ch)
	}
}

func TestAuthService_Login(t *testing.T) {
	svc, users, _, activity := newAuthFixture(t, false)

	session, err := svc.Login(context.Background(), LoginInput{Email: "ADMIN@problemlog.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "2025-01-02T03:04:05Z", session.User.LastLogin)
	assert.Equal(t, "2025-01-02T03:04:05Z", users.users[0].LastLogin)

	claims, err := svc.TokenManager().ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)

	entry := activity.last()
	assert.Equal(t, domain.ActionLogin, entry.action)
	assert.Equal(t, "System", entry.target)
	assert.Equal(t, "User logged in successfully", entry.details)
	assert.Equal(t, "Administrator", entry.actor.Name)
}

func TestAuthService_LoginFailures(t *testing.T) {
	svc, _, _, activity := newAuthFixture(t, false)
	ctx := context.Background()

	tests := []struct {
		name  string
		input LoginInput
		code  string
	}{
		{name: "missing fields", input: LoginInput{Email: "admin@problemlog.com"}, code: "VALIDATION_FAILED"},
		{name: "wrong password", input: LoginInput{Email: "admin@problemlog.com", Password: "nope"}, code: "UNAUTHORIZED"},
		{name: "unknown email", input: LoginInput{Email: "ghost@problemlog.com", Password: "password123"}, code: "UNAUTHORIZED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.input)
			assert.Equal(t, tt.code, codeOf(err))
		})
	}
	assert.Empty(t, activity.entries)
}

func TestAuthService_LoginRequiresCaptcha(t *testing.T) {
	svc, _, captchas, _ := newAuthFixture(t, true)
	ctx := context.Background()
	creds := LoginInput{Email: "admin@problemlog.com", Password: "password123"}

	_, err := svc.Login(ctx, creds)
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))

	challenge, err := svc.IssueCaptcha(ctx)
	require.NoError(t, err)
	code := captchas.codes[challenge.ID]

	wrong := creds
	wrong.CaptchaID, wrong.CaptchaCode = challenge.ID, "ZZZZZZZ"
	_, err = svc.Login(ctx, wrong)
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))

	// A failed attempt consumes the challenge.
	retry := creds
	retry.CaptchaID, retry.CaptchaCode = challenge.ID, code
	_, err = svc.Login(ctx, retry)
	assert.Equal(t, "VALIDATION_FAILED", codeOf(err))

	challenge, err = svc.IssueCaptcha(ctx)
	require.NoError(t, err)
	ok := creds
	ok.CaptchaID, ok.CaptchaCode = challenge.ID, strings.ToLower(captchas.codes[challenge.ID])
	session, err := svc.Login(ctx, ok)
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
}

func TestAuthService_Logout(t *testing.T) {
	svc, _, _, activity := newAuthFixture(t, false)
	svc.Logout(context.Background(), admin)
	assert.Equal(t, domain.ActionLogout, activity.last().action)
	assert.Equal(t, "User logged out", activity.last().details)
}
