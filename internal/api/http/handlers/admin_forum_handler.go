package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ummahhub/community-api/internal/api/dto"
	"github.com/ummahhub/community-api/internal/auth"
	"github.com/ummahhub/community-api/internal/forum"
	"github.com/ummahhub/community-api/internal/service"
	apperrors "github.com/ummahhub/community-api/pkg/util"
)

// AdminForumHandler exposes moderator endpoints. Routes are mounted behind
// RequireAdmin and the moderation service checks the actor again.
type AdminForumHandler struct {
	moderation  *service.ModerationService
	suggestions *service.SuggestionService
}

// NewAdminForumHandler constructs handler.
func NewAdminForumHandler(moderation *service.ModerationService, suggestions *service.SuggestionService) *AdminForumHandler {
	return &AdminForumHandler{moderation: moderation, suggestions: suggestions}
}

// PostReply POST /admin/forum/threads/:id/replies.
func (h *AdminForumHandler) PostReply(c *fiber.Ctx) error {
	var req dto.ReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	reply, err := h.moderation.SubmitAdminReply(c.UserContext(), auth.ActorFromContext(c), c.Params("id"), forum.ReplyInput{
		ID:         req.ID,
		AuthorName: req.AuthorName,
		Reply:      req.Reply,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": replyResponse(reply)})
}

// EditReply PUT /admin/forum/threads/:id/replies/:replyId.
func (h *AdminForumHandler) EditReply(c *fiber.Ctx) error {
	var req dto.ReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	reply, err := h.moderation.EditReply(c.UserContext(), auth.ActorFromContext(c), c.Params("id"), c.Params("replyId"), forum.ReplyInput{
		ID:         req.ID,
		AuthorName: req.AuthorName,
		Reply:      req.Reply,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": replyResponse(reply)})
}

// DeleteReply DELETE /admin/forum/threads/:id/replies/:replyId.
func (h *AdminForumHandler) DeleteReply(c *fiber.Ctx) error {
	if err := h.moderation.DeleteReply(c.UserContext(), auth.ActorFromContext(c), c.Params("id"), c.Params("replyId")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Close POST /admin/forum/threads/:id/close.
func (h *AdminForumHandler) Close(c *fiber.Ctx) error {
	if err := h.moderation.CloseThread(c.UserContext(), auth.ActorFromContext(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": c.Params("id"), "isClosed": true}})
}

// Reopen POST /admin/forum/threads/:id/reopen.
func (h *AdminForumHandler) Reopen(c *fiber.Ctx) error {
	if err := h.moderation.ReopenThread(c.UserContext(), auth.ActorFromContext(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": c.Params("id"), "isClosed": false}})
}

// EditQuestion PATCH /admin/forum/threads/:id.
func (h *AdminForumHandler) EditQuestion(c *fiber.Ctx) error {
	var req dto.EditQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	if err := h.moderation.EditQuestion(c.UserContext(), auth.ActorFromContext(c), c.Params("id"), req.Question); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeleteThread DELETE /admin/forum/threads/:id.
func (h *AdminForumHandler) DeleteThread(c *fiber.Ctx) error {
	if err := h.moderation.DeleteThread(c.UserContext(), auth.ActorFromContext(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Prefill POST /admin/forum/threads/:id/suggestion. When the generator fails the
// error envelope still carries the untouched draft so the reply box keeps it.
func (h *AdminForumHandler) Prefill(c *fiber.Ctx) error {
	var req dto.PrefillRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidPayload()
		}
	}
	draft, err := h.suggestions.PrefillReply(c.UserContext(), c.Params("id"), req.Draft)
	if err != nil {
		if !apperrors.HasCode(err, apperrors.CodeSuggestionUnavailable) {
			return err
		}
		domainErr := apperrors.ToDomainError(err)
		return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{
			"error": ErrorBody(domainErr),
			"data":  draft,
		})
	}
	return c.JSON(fiber.Map{"data": draft})
}
