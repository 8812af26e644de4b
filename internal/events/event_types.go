package events

import (
	"time"

	"github.com/ummahhub/community-api/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventThreadCreated        EventType = "thread_created"
	EventThreadClosed         EventType = "thread_closed"
	EventThreadReopened       EventType = "thread_reopened"
	EventThreadQuestionEdited EventType = "thread_question_edited"
	EventThreadDeleted        EventType = "thread_deleted"
	EventReplyAdded           EventType = "reply_added"
	EventReplyEdited          EventType = "reply_edited"
	EventReplyRemoved         EventType = "reply_removed"
)

// AllEventTypes lists every forum event, for subscribers that mirror the whole stream.
var AllEventTypes = []EventType{
	EventThreadCreated,
	EventThreadClosed,
	EventThreadReopened,
	EventThreadQuestionEdited,
	EventThreadDeleted,
	EventReplyAdded,
	EventReplyEdited,
	EventReplyRemoved,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type  domain.SubjectType `json:"type"`
	Email *string            `json:"email,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ThreadID  string      `json:"thread_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// ThreadCreatedPayload payload.
type ThreadCreatedPayload struct {
	AuthorName string `json:"author_name"`
	Question   string `json:"question"`
}

// ThreadQuestionEditedPayload payload.
type ThreadQuestionEditedPayload struct {
	Question string `json:"question"`
}

// ReplyPayload is carried by reply_added, reply_edited and reply_removed.
type ReplyPayload struct {
	ReplyID      string `json:"reply_id"`
	AuthorName   string `json:"author_name,omitempty"`
	IsAdminReply bool   `json:"is_admin_reply"`
	ReplyPreview string `json:"reply_preview,omitempty"`
}
