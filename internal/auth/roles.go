package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ummahhub/community-api/internal/domain"
	apperrors "github.com/ummahhub/community-api/pkg/util"
)

// RequireAdmin ensures an admin session is present.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.SubjectType != domain.SubjectTypeAdmin || principal.Admin == nil {
			return apperrors.NewNotAuthorized("admin session required")
		}
		return c.Next()
	}
}
