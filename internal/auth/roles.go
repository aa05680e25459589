package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
	apperrors "github.com/dedirosandiaj/problem-log-new/pkg/util/errorutil"
)

// RequirePermission ensures the caller holds every listed permission.
// Super Admins pass every check.
func RequirePermission(perms ...domain.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		for _, p := range perms {
			if !principal.User.Can(p) {
				return apperrors.NewForbidden("missing permission " + string(p))
			}
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a principal was loaded.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}
