package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ummahhub/community-api/internal/api/dto"
	"github.com/ummahhub/community-api/internal/domain"
	"github.com/ummahhub/community-api/internal/forum"
	apperrors "github.com/ummahhub/community-api/pkg/util"
)

// ErrorBody renders a DomainError in the shared error envelope.
func ErrorBody(err *apperrors.DomainError) fiber.Map {
	body := fiber.Map{
		"code":    err.Code,
		"message": err.Message,
	}
	if len(err.Details) > 0 {
		body["details"] = err.Details
	}
	return body
}

func invalidPayload() error {
	return apperrors.NewValidationError("invalid payload", nil)
}

func threadResponse(thread *domain.ForumThread) dto.ThreadResponse {
	replies := make([]dto.ReplyResponse, 0, len(thread.Replies))
	for _, reply := range thread.Replies {
		replies = append(replies, replyResponse(reply))
	}
	return dto.ThreadResponse{
		ID:         thread.ID,
		AuthorName: thread.AuthorName,
		Question:   thread.Question,
		Replies:    replies,
		Timestamp:  thread.Timestamp,
		IsClosed:   thread.IsClosed,
	}
}

func threadResponses(threads []domain.ForumThread) []dto.ThreadResponse {
	items := make([]dto.ThreadResponse, 0, len(threads))
	for i := range threads {
		items = append(items, threadResponse(&threads[i]))
	}
	return items
}

func replyResponse(reply domain.ForumReply) dto.ReplyResponse {
	return dto.ReplyResponse{
		ID:           reply.ID,
		AuthorName:   reply.AuthorName,
		Reply:        reply.Reply,
		Timestamp:    reply.Timestamp,
		IsAdminReply: reply.IsAdminReply,
		Class:        forum.ClassifyReply(reply),
	}
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
