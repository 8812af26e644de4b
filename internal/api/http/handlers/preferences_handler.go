package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ummahhub/community-api/internal/domain"
	"github.com/ummahhub/community-api/internal/service"
)

// PreferencesHandler serves Qur'an reader settings keyed by an anonymous client id.
type PreferencesHandler struct {
	prefs *service.PreferencesService
}

// NewPreferencesHandler constructs handler.
func NewPreferencesHandler(prefs *service.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{prefs: prefs}
}

// Get GET /reader/preferences/:clientId.
func (h *PreferencesHandler) Get(c *fiber.Ctx) error {
	prefs, err := h.prefs.Get(c.UserContext(), c.Params("clientId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": prefs})
}

// Put PUT /reader/preferences/:clientId. Omitted fields take their default values.
func (h *PreferencesHandler) Put(c *fiber.Ctx) error {
	req := domain.DefaultReaderPreferences()
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	prefs, err := h.prefs.Save(c.UserContext(), c.Params("clientId"), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": prefs})
}

// Reset DELETE /reader/preferences/:clientId.
func (h *PreferencesHandler) Reset(c *fiber.Ctx) error {
	prefs, err := h.prefs.Reset(c.UserContext(), c.Params("clientId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": prefs})
}
