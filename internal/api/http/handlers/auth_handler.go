package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dedirosandiaj/problem-log-new/internal/api/dto"
	"github.com/dedirosandiaj/problem-log-new/internal/auth"
	"github.com/dedirosandiaj/problem-log-new/internal/service"
	apperrors "github.com/dedirosandiaj/problem-log-new/pkg/util/errorutil"
)

// AuthHandler exposes login, logout and the captcha.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Captcha handles GET /auth/captcha.
func (h *AuthHandler) Captcha(c *fiber.Ctx) error {
	challenge, err := h.auth.IssueCaptcha(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CaptchaResponse{
		ID:        challenge.ID,
		SVG:       challenge.SVG,
		ExpiresAt: challenge.ExpiresAt,
	}})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	session, err := h.auth.Login(c.UserContext(), service.LoginInput{
		Email:       req.Email,
		Password:    req.Password,
		CaptchaID:   req.CaptchaID,
		CaptchaCode: req.CaptchaCode,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      dto.NewUserResponse(session.User),
	}})
}

// Logout handles POST /auth/logout. Tokens are stateless; the call only records the event.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	h.auth.Logout(c.UserContext(), actor)
	return c.SendStatus(fiber.StatusNoContent)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(principal.User)})
}
