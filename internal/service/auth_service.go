package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dedirosandiaj/problem-log-new/internal/auth"
	"github.com/dedirosandiaj/problem-log-new/internal/config"
	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	"github.com/dedirosandiaj/problem-log-new/internal/repository"
	apperrors "github.com/dedirosandiaj/problem-log-new/pkg/util/errorutil"
)

const sessionTarget = "System"

// AuthService coordinates login, logout and the login captcha.
type AuthService struct {
	users           repository.UserRepository
	captchas        repository.CaptchaRepository
	activity        ActivityRecorder
	tokenMgr        *auth.TokenManager
	captchaRequired bool
	captchaTTL      time.Duration
	now             func() time.Time
}

// AuthDependencies encapsulates repo requirements for auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	CaptchaRepo repository.CaptchaRepository
	Activity    ActivityRecorder
}

// LoginInput is the login form.
type LoginInput struct {
	Email       string
	Password    string
	CaptchaID   string
	CaptchaCode string
}

// Session is the result of a successful login.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// CaptchaChallenge is an issued captcha rendered as SVG.
type CaptchaChallenge struct {
	ID        string
	SVG       string
	ExpiresAt time.Time
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:           deps.UserRepo,
		captchas:        deps.CaptchaRepo,
		activity:        deps.Activity,
		tokenMgr:        auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes, cfg.App.Name),
		captchaRequired: cfg.Auth.CaptchaRequired,
		captchaTTL:      cfg.Auth.CaptchaTTL,
		now:             systemClock,
	}
}

// IssueCaptcha stores a fresh code and returns its image.
func (s *AuthService) IssueCaptcha(ctx context.Context) (*CaptchaChallenge, error) {
	code := make([]byte, domain.CaptchaLength)
	for i := range code {
		code[i] = domain.CaptchaAlphabet[rand.IntN(len(domain.CaptchaAlphabet))]
	}
	captcha := domain.Captcha{
		ID:        uuid.NewString(),
		Code:      string(code),
		ExpiresAt: s.now().Add(s.captchaTTL),
	}
	if err := s.captchas.Store(ctx, captcha, s.captchaTTL); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &CaptchaChallenge{ID: captcha.ID, SVG: renderCaptchaSVG(captcha.Code), ExpiresAt: captcha.ExpiresAt}, nil
}

// Login checks the captcha when required, then the credentials, and issues a token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*Session, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, apperrors.NewValidationError("Email dan password wajib diisi.", nil)
	}
	if s.captchaRequired {
		if err := s.verifyCaptcha(ctx, input.CaptchaID, input.CaptchaCode); err != nil {
			return nil, err
		}
	}

	invalid := apperrors.NewUnauthorized("invalid email or password")
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, invalid
		}
		return nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, input.Password); err != nil {
		return nil, invalid
	}

	user.LastLogin = s.now().UTC().Format(time.RFC3339)
	if err := s.users.TouchLastLogin(ctx, user.ID, user.LastLogin); err != nil {
		return nil, apperrors.MapError(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	record(ctx, s.activity, user.Actor(), domain.ActionLogin, sessionTarget, "User logged in successfully")
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}

// Logout records the sign-out. Tokens are stateless and simply expire.
func (s *AuthService) Logout(ctx context.Context, actor domain.Actor) {
	record(ctx, s.activity, actor, domain.ActionLogout, sessionTarget, "User logged out")
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) verifyCaptcha(ctx context.Context, id, code string) error {
	invalid := apperrors.NewValidationError("Harap selesaikan captcha dengan benar.", map[string]any{"captcha_code": "invalid"})
	id = strings.TrimSpace(id)
	if id == "" || strings.TrimSpace(code) == "" {
		return invalid
	}
	stored, ok, err := s.captchas.Take(ctx, id)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if !ok || !strings.EqualFold(stored, strings.TrimSpace(code)) {
		return invalid
	}
	return nil
}

// renderCaptchaSVG draws the code with per-glyph rotation over two strike lines.
func renderCaptchaSVG(code string) string {
	const width, height = 180, 48
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`, width, height, width, height)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#ffffff" stroke="#cbd5e1"/>`, width, height)
	fmt.Fprintf(&b, `<line x1="0" y1="0" x2="%d" y2="%d" stroke="#000" stroke-opacity="0.2"/>`, width, height)
	fmt.Fprintf(&b, `<line x1="%d" y1="0" x2="0" y2="%d" stroke="#000" stroke-opacity="0.2"/>`, width, height)
	step := width / (len(code) + 1)
	for i, ch := range code {
		x := step * (i + 1)
		angle := rand.IntN(21) - 10
		fmt.Fprintf(&b,
			`<text x="%d" y="32" font-family="monospace" font-size="24" font-weight="bold" fill="#475569" transform="rotate(%d %d 24)">%c</text>`,
			x, angle, x, ch)
	}
	b.WriteString(`</svg>`)
	return b.String()
}
