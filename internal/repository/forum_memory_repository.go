package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ummahhub/community-api/internal/domain"
)

type forumMemoryRepository struct {
	mu      sync.RWMutex
	threads map[string]*domain.ForumThread
}

// NewForumMemoryRepository keeps threads in process memory. It backs local
// development without a database and the HTTP tests.
func NewForumMemoryRepository() ForumRepository {
	return &forumMemoryRepository{threads: make(map[string]*domain.ForumThread)}
}

func (r *forumMemoryRepository) CreateThread(_ context.Context, thread *domain.ForumThread) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	thread.ID = uuid.NewString()
	thread.Timestamp = storeNow()
	if thread.Replies == nil {
		thread.Replies = []domain.ForumReply{}
	}
	r.threads[thread.ID] = cloneThread(thread)
	return nil
}

func (r *forumMemoryRepository) GetThread(_ context.Context, id string) (*domain.ForumThread, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	thread, ok := r.threads[id]
	if !ok {
		return nil, ErrThreadNotFound
	}
	return cloneThread(thread), nil
}

func (r *forumMemoryRepository) ListThreads(_ context.Context, filter ThreadFilter) ([]domain.ForumThread, error) {
	filter = normalizeFilter(filter)
	needle := strings.ToLower(strings.TrimSpace(filter.Search))

	r.mu.RLock()
	matched := make([]domain.ForumThread, 0, len(r.threads))
	for _, thread := range r.threads {
		if needle != "" && !strings.Contains(strings.ToLower(thread.Question), needle) {
			continue
		}
		matched = append(matched, *cloneThread(thread))
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	if filter.Offset >= len(matched) {
		return []domain.ForumThread{}, nil
	}
	matched = matched[filter.Offset:]
	if len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r *forumMemoryRepository) AddReply(_ context.Context, threadID string, reply domain.ForumReply) error {
	return r.update(threadID, func(thread *domain.ForumThread) error {
		if thread.HasReply(reply.ID) {
			return ErrDuplicateReply
		}
		thread.Replies = append(thread.Replies, reply)
		return nil
	})
}

func (r *forumMemoryRepository) PullReply(_ context.Context, threadID, replyID string) error {
	return r.update(threadID, func(thread *domain.ForumThread) error {
		for i, reply := range thread.Replies {
			if reply.ID == replyID {
				thread.Replies = append(thread.Replies[:i:i], thread.Replies[i+1:]...)
				return nil
			}
		}
		return ErrReplyNotFound
	})
}

func (r *forumMemoryRepository) SetReply(_ context.Context, threadID string, reply domain.ForumReply) error {
	return r.update(threadID, func(thread *domain.ForumThread) error {
		for i := range thread.Replies {
			if thread.Replies[i].ID == reply.ID {
				thread.Replies[i] = reply
				return nil
			}
		}
		return ErrReplyNotFound
	})
}

func (r *forumMemoryRepository) SetClosed(_ context.Context, threadID string, closed bool) error {
	return r.update(threadID, func(thread *domain.ForumThread) error {
		thread.IsClosed = closed
		return nil
	})
}

func (r *forumMemoryRepository) SetQuestion(_ context.Context, threadID, question string) error {
	return r.update(threadID, func(thread *domain.ForumThread) error {
		thread.Question = question
		return nil
	})
}

func (r *forumMemoryRepository) DeleteThread(_ context.Context, threadID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.threads[threadID]; !ok {
		return ErrThreadNotFound
	}
	delete(r.threads, threadID)
	return nil
}

func (r *forumMemoryRepository) Ping(context.Context) error {
	return nil
}

// update applies fn under the write lock; a failing fn leaves the thread untouched.
func (r *forumMemoryRepository) update(threadID string, fn func(*domain.ForumThread) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.threads[threadID]
	if !ok {
		return ErrThreadNotFound
	}
	next := cloneThread(stored)
	if err := fn(next); err != nil {
		return err
	}
	r.threads[threadID] = next
	return nil
}

func cloneThread(thread *domain.ForumThread) *domain.ForumThread {
	copied := *thread
	copied.Replies = append(make([]domain.ForumReply, 0, len(thread.Replies)), thread.Replies...)
	return &copied
}
