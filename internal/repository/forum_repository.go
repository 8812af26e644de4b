package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ummahhub/community-api/internal/domain"
)

var (
	// ErrThreadNotFound is returned when no thread has the requested id.
	ErrThreadNotFound = errors.New("thread not found")
	// ErrReplyNotFound is returned when the thread holds no reply with the requested id.
	ErrReplyNotFound = errors.New("reply not found")
	// ErrDuplicateReply is returned when a reply with the same id is already attached.
	ErrDuplicateReply = errors.New("reply already present")
)

// ThreadFilter narrows thread listings.
type ThreadFilter struct {
	Search string
	Limit  int
	Offset int
}

// ForumRepository persists threads with their embedded replies. Every write is a
// single-document atomic operation.
type ForumRepository interface {
	// CreateThread inserts thread, assigning its ID and Timestamp.
	CreateThread(ctx context.Context, thread *domain.ForumThread) error
	GetThread(ctx context.Context, id string) (*domain.ForumThread, error)
	// ListThreads returns threads newest first.
	ListThreads(ctx context.Context, filter ThreadFilter) ([]domain.ForumThread, error)
	// AddReply appends reply unless a reply with the same id is present.
	AddReply(ctx context.Context, threadID string, reply domain.ForumReply) error
	// PullReply removes the reply with replyID.
	PullReply(ctx context.Context, threadID, replyID string) error
	// SetReply overwrites the reply whose id equals reply.ID in place.
	SetReply(ctx context.Context, threadID string, reply domain.ForumReply) error
	SetClosed(ctx context.Context, threadID string, closed bool) error
	SetQuestion(ctx context.Context, threadID, question string) error
	DeleteThread(ctx context.Context, threadID string) error
	Ping(ctx context.Context) error
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

func normalizeFilter(filter ThreadFilter) ThreadFilter {
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return filter
}

// storeNow is the store-side clock for thread creation timestamps.
var storeNow = func() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
