package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ummahhub/community-api/internal/api/dto"
	"github.com/ummahhub/community-api/internal/service"
	apperrors "github.com/ummahhub/community-api/pkg/util"
)

// AuthHandler exposes admin login.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /auth/admin/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}

	admin, session, err := h.authService.LoginAdmin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"admin": dto.AdminResponse{Email: admin.Email},
			"auth":  dto.AuthResponse{Token: session.Token, ExpiresAt: session.ExpiresAt},
		},
	})
}
