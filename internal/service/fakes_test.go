package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ummahhub/community-api/internal/domain"
	"github.com/ummahhub/community-api/internal/events"
	"github.com/ummahhub/community-api/internal/llm"
	"github.com/ummahhub/community-api/internal/repository"
)

// fakeForumRepo is an in-memory ForumRepository that counts writes.
type fakeForumRepo struct {
	mu      sync.Mutex
	threads map[string]*domain.ForumThread
	nextID  int
	clock   time.Time
	writes  map[string]int
	failAll error

	// failNext fails the next write of an op once
	failNext map[string]error
}

func newFakeForumRepo() *fakeForumRepo {
	return &fakeForumRepo{
		threads:  make(map[string]*domain.ForumThread),
		clock:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		writes:   make(map[string]int),
		failNext: make(map[string]error),
	}
}

func (r *fakeForumRepo) totalWrites() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, n := range r.writes {
		total += n
	}
	return total
}

func (r *fakeForumRepo) write(op string) error {
	r.writes[op]++
	if err, ok := r.failNext[op]; ok {
		delete(r.failNext, op)
		return err
	}
	return r.failAll
}

func (r *fakeForumRepo) CreateThread(_ context.Context, thread *domain.ForumThread) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.write("create"); err != nil {
		return err
	}
	r.nextID++
	r.clock = r.clock.Add(time.Second)
	thread.ID = fmt.Sprintf("thread-%d", r.nextID)
	thread.Timestamp = r.clock
	stored := *thread
	stored.Replies = append([]domain.ForumReply{}, thread.Replies...)
	r.threads[thread.ID] = &stored
	return nil
}

func (r *fakeForumRepo) GetThread(_ context.Context, id string) (*domain.ForumThread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	thread, ok := r.threads[id]
	if !ok {
		return nil, repository.ErrThreadNotFound
	}
	copied := *thread
	copied.Replies = append([]domain.ForumReply{}, thread.Replies...)
	return &copied, nil
}

func (r *fakeForumRepo) ListThreads(_ context.Context, filter repository.ThreadFilter) ([]domain.ForumThread, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failAll != nil {
		return nil, r.failAll
	}
	var out []domain.ForumThread
	for _, thread := range r.threads {
		if filter.Search != "" && !strings.Contains(strings.ToLower(thread.Question), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, *thread)
	}
	return out, nil
}

func (r *fakeForumRepo) AddReply(_ context.Context, threadID string, reply domain.ForumReply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.write("add"); err != nil {
		return err
	}
	thread, ok := r.threads[threadID]
	if !ok {
		return repository.ErrThreadNotFound
	}
	if thread.HasReply(reply.ID) {
		return repository.ErrDuplicateReply
	}
	thread.Replies = append(thread.Replies, reply)
	return nil
}

func (r *fakeForumRepo) PullReply(_ context.Context, threadID, replyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.write("pull"); err != nil {
		return err
	}
	thread, ok := r.threads[threadID]
	if !ok {
		return repository.ErrThreadNotFound
	}
	for i, reply := range thread.Replies {
		if reply.ID == replyID {
			thread.Replies = append(thread.Replies[:i:i], thread.Replies[i+1:]...)
			return nil
		}
	}
	return repository.ErrReplyNotFound
}

func (r *fakeForumRepo) SetReply(_ context.Context, threadID string, reply domain.ForumReply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.write("set_reply"); err != nil {
		return err
	}
	thread, ok := r.threads[threadID]
	if !ok {
		return repository.ErrThreadNotFound
	}
	for i := range thread.Replies {
		if thread.Replies[i].ID == reply.ID {
			thread.Replies[i] = reply
			return nil
		}
	}
	return repository.ErrReplyNotFound
}

func (r *fakeForumRepo) SetClosed(_ context.Context, threadID string, closed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.write("set_closed"); err != nil {
		return err
	}
	thread, ok := r.threads[threadID]
	if !ok {
		return repository.ErrThreadNotFound
	}
	thread.IsClosed = closed
	return nil
}

func (r *fakeForumRepo) SetQuestion(_ context.Context, threadID, question string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.write("set_question"); err != nil {
		return err
	}
	thread, ok := r.threads[threadID]
	if !ok {
		return repository.ErrThreadNotFound
	}
	thread.Question = question
	return nil
}

func (r *fakeForumRepo) DeleteThread(_ context.Context, threadID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.write("delete"); err != nil {
		return err
	}
	if _, ok := r.threads[threadID]; !ok {
		return repository.ErrThreadNotFound
	}
	delete(r.threads, threadID)
	return nil
}

func (r *fakeForumRepo) Ping(context.Context) error {
	return r.failAll
}

// recordingDispatcher keeps every published event.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

// stubGenerator returns a canned completion or error and records prompts.
type stubGenerator struct {
	text    string
	err     error
	prompts []llm.Prompt
}

func (g *stubGenerator) Generate(_ context.Context, prompt llm.Prompt) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

type stubSearcher struct {
	ids []string
	err error
}

func (s stubSearcher) Search(context.Context, string, int) ([]string, error) {
	return s.ids, s.err
}
