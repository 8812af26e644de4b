package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ummahhub/community-api/internal/api/dto"
	"github.com/ummahhub/community-api/internal/service"
)

// SuggestionsHandler exposes the AI drafting call-sites used by the admin console.
type SuggestionsHandler struct {
	suggestions *service.SuggestionService
}

// NewSuggestionsHandler constructs handler.
func NewSuggestionsHandler(suggestions *service.SuggestionService) *SuggestionsHandler {
	return &SuggestionsHandler{suggestions: suggestions}
}

// Answer POST /admin/suggestions/answer.
func (h *SuggestionsHandler) Answer(c *fiber.Ctx) error {
	var req service.AnswerInput
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	return respondSuggestion(c)(h.suggestions.SuggestAnswer(c.UserContext(), req.Question))
}

// EventDescription POST /admin/suggestions/event-description.
func (h *SuggestionsHandler) EventDescription(c *fiber.Ctx) error {
	var req service.EventDescriptionInput
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	return respondSuggestion(c)(h.suggestions.SuggestEventDescription(c.UserContext(), req))
}

// TeamBio POST /admin/suggestions/team-bio.
func (h *SuggestionsHandler) TeamBio(c *fiber.Ctx) error {
	var req service.TeamBioInput
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	return respondSuggestion(c)(h.suggestions.SuggestTeamBio(c.UserContext(), req))
}

// Testimonial POST /admin/suggestions/testimonial.
func (h *SuggestionsHandler) Testimonial(c *fiber.Ctx) error {
	var req service.TestimonialInput
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	return respondSuggestion(c)(h.suggestions.SuggestTestimonial(c.UserContext(), req))
}

func respondSuggestion(c *fiber.Ctx) func(string, error) error {
	return func(text string, err error) error {
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": dto.SuggestionResponse{Text: text}})
	}
}
