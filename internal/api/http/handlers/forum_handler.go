package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/ummahhub/community-api/internal/api/dto"
	"github.com/ummahhub/community-api/internal/auth"
	"github.com/ummahhub/community-api/internal/forum"
	"github.com/ummahhub/community-api/internal/repository"
	"github.com/ummahhub/community-api/internal/service"
)

// ForumHandler serves the public forum endpoints.
type ForumHandler struct {
	forum      *service.ForumService
	moderation *service.ModerationService
}

// NewForumHandler constructs handler.
func NewForumHandler(forumService *service.ForumService, moderation *service.ModerationService) *ForumHandler {
	return &ForumHandler{forum: forumService, moderation: moderation}
}

// ListThreads GET /forum/threads.
func (h *ForumHandler) ListThreads(c *fiber.Ctx) error {
	query := dto.ThreadListQuery{
		Search: c.Query("q"),
		Limit:  queryInt(c, "limit", 0),
		Offset: queryInt(c, "offset", 0),
	}
	threads, err := h.forum.ListThreads(c.UserContext(), repository.ThreadFilter{
		Search: query.Search,
		Limit:  query.Limit,
		Offset: query.Offset,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": threadResponses(threads)})
}

// GetThread GET /forum/threads/:id.
func (h *ForumHandler) GetThread(c *fiber.Ctx) error {
	thread, err := h.forum.GetThread(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": threadResponse(thread)})
}

// CreateThread POST /forum/threads.
func (h *ForumHandler) CreateThread(c *fiber.Ctx) error {
	var req dto.CreateThreadRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	thread, err := h.forum.CreateThread(c.UserContext(), auth.ActorFromContext(c), forum.ThreadInput{
		AuthorName: req.AuthorName,
		Question:   req.Question,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": threadResponse(thread)})
}

// PostReply POST /forum/threads/:id/replies.
func (h *ForumHandler) PostReply(c *fiber.Ctx) error {
	var req dto.ReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidPayload()
	}
	reply, err := h.moderation.SubmitPublicReply(c.UserContext(), auth.ActorFromContext(c), c.Params("id"), forum.ReplyInput{
		AuthorName: req.AuthorName,
		Reply:      req.Reply,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": replyResponse(reply)})
}

// Search GET /forum/search.
func (h *ForumHandler) Search(c *fiber.Ctx) error {
	threads, err := h.forum.SearchThreads(c.UserContext(), c.Query("q"), queryInt(c, "limit", 20))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": threadResponses(threads)})
}
