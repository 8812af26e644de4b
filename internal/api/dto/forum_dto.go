package dto

import (
	"time"

	"github.com/ummahhub/community-api/internal/domain"
)

// CreateThreadRequest payload.
type CreateThreadRequest struct {
	AuthorName string `json:"authorName"`
	Question   string `json:"question"`
}

// ReplyRequest payload for new and edited replies.
type ReplyRequest struct {
	ID         string `json:"id"`
	AuthorName string `json:"authorName"`
	Reply      string `json:"reply"`
}

// EditQuestionRequest payload.
type EditQuestionRequest struct {
	Question string `json:"question"`
}

// ThreadListQuery captures list filters.
type ThreadListQuery struct {
	Search string
	Limit  int
	Offset int
}

// ThreadResponse is a thread with its replies in display order.
type ThreadResponse struct {
	ID         string          `json:"id"`
	AuthorName string          `json:"authorName"`
	Question   string          `json:"question"`
	Replies    []ReplyResponse `json:"replies"`
	Timestamp  time.Time       `json:"timestamp"`
	IsClosed   bool            `json:"isClosed"`
}

// ReplyResponse represents one reply and its display badge.
type ReplyResponse struct {
	ID           string            `json:"id"`
	AuthorName   string            `json:"authorName"`
	Reply        string            `json:"reply"`
	Timestamp    time.Time         `json:"timestamp"`
	IsAdminReply bool              `json:"isAdminReply"`
	Class        domain.ReplyClass `json:"class"`
}
