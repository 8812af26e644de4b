package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ummahhub/community-api/internal/domain"
	"github.com/ummahhub/community-api/internal/events"
	"github.com/ummahhub/community-api/internal/forum"
	"github.com/ummahhub/community-api/internal/repository"
	apperrors "github.com/ummahhub/community-api/pkg/util"
)

const replyPreviewLength = 140

// ThreadSearcher answers full text queries with thread ids, best match first.
type ThreadSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// ForumService translates forum entities into store operations. It does not check
// the moderation policy; ModerationService does that before calling it.
type ForumService struct {
	threads    repository.ForumRepository
	codec      *forum.Codec
	dispatcher events.Dispatcher
	searcher   ThreadSearcher
	logger     *zap.Logger
}

// ForumDependencies bundles collaborators for the forum service.
type ForumDependencies struct {
	ThreadRepo repository.ForumRepository
	Codec      *forum.Codec
	Dispatcher events.Dispatcher
	Searcher   ThreadSearcher
	Logger     *zap.Logger
}

// NewForumService constructs the service.
func NewForumService(deps ForumDependencies) *ForumService {
	codec := deps.Codec
	if codec == nil {
		codec = forum.NewCodec()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ForumService{
		threads:    deps.ThreadRepo,
		codec:      codec,
		dispatcher: deps.Dispatcher,
		searcher:   deps.Searcher,
		logger:     logger,
	}
}

// Codec exposes the validation codec.
func (s *ForumService) Codec() *forum.Codec {
	return s.codec
}

// CreateThread validates and stores a new open thread with no replies.
func (s *ForumService) CreateThread(ctx context.Context, actor forum.Actor, input forum.ThreadInput) (*domain.ForumThread, error) {
	thread, err := s.codec.ValidateThread(input)
	if err != nil {
		return nil, err
	}
	if err := s.threads.CreateThread(ctx, &thread); err != nil {
		return nil, mapStoreError(err, "", "")
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventThreadCreated,
		ThreadID: thread.ID,
		Actor:    eventActor(actor),
		Payload: events.ThreadCreatedPayload{
			AuthorName: thread.AuthorName,
			Question:   stringPreview(thread.Question, replyPreviewLength),
		},
	})
	return &thread, nil
}

// GetThread loads a thread with its replies in display order.
func (s *ForumService) GetThread(ctx context.Context, threadID string) (*domain.ForumThread, error) {
	thread, err := s.threads.GetThread(ctx, threadID)
	if err != nil {
		return nil, mapStoreError(err, threadID, "")
	}
	return forum.ForDisplay(thread), nil
}

// ListThreads returns threads newest first.
func (s *ForumService) ListThreads(ctx context.Context, filter repository.ThreadFilter) ([]domain.ForumThread, error) {
	threads, err := s.threads.ListThreads(ctx, filter)
	if err != nil {
		return nil, mapStoreError(err, "", "")
	}
	for i := range threads {
		forum.ForDisplay(&threads[i])
	}
	forum.SortThreads(threads)
	return threads, nil
}

// SearchThreads runs a full text query. Without a search index, or when it fails, the
// store's substring search answers instead.
func (s *ForumService) SearchThreads(ctx context.Context, query string, limit int) ([]domain.ForumThread, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.NewValidationError("invalid search", map[string]any{"fields": map[string]any{"q": "is required"}})
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	if s.searcher != nil {
		ids, err := s.searcher.Search(ctx, query, limit)
		if err == nil {
			return s.loadThreads(ctx, ids)
		}
		s.logger.Warn("search index unavailable, using store search", zap.Error(err))
	}
	return s.ListThreads(ctx, repository.ThreadFilter{Search: query, Limit: limit})
}

func (s *ForumService) loadThreads(ctx context.Context, ids []string) ([]domain.ForumThread, error) {
	threads := make([]domain.ForumThread, 0, len(ids))
	for _, id := range ids {
		thread, err := s.threads.GetThread(ctx, id)
		if err != nil {
			// the index may lag behind a delete
			if errors.Is(err, repository.ErrThreadNotFound) {
				continue
			}
			return nil, mapStoreError(err, id, "")
		}
		threads = append(threads, *forum.ForDisplay(thread))
	}
	return threads, nil
}

// AppendReply validates a reply and appends it to the thread. A reply whose id is
// already attached is rejected with a conflict.
func (s *ForumService) AppendReply(ctx context.Context, actor forum.Actor, threadID string, input forum.ReplyInput) (domain.ForumReply, error) {
	reply, err := s.codec.ValidateReply(input)
	if err != nil {
		return domain.ForumReply{}, err
	}
	if err := s.threads.AddReply(ctx, threadID, reply); err != nil {
		return domain.ForumReply{}, mapStoreError(err, threadID, reply.ID)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventReplyAdded,
		ThreadID: threadID,
		Actor:    eventActor(actor),
		Payload:  replyPayload(reply),
	})
	return reply, nil
}

// RemoveReply pulls the reply with replyID from the thread.
func (s *ForumService) RemoveReply(ctx context.Context, actor forum.Actor, threadID, replyID string) error {
	if err := s.threads.PullReply(ctx, threadID, replyID); err != nil {
		return mapStoreError(err, threadID, replyID)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventReplyRemoved,
		ThreadID: threadID,
		Actor:    eventActor(actor),
		Payload:  events.ReplyPayload{ReplyID: replyID},
	})
	return nil
}

// ReplaceReply overwrites the reply with replyID in one write. An empty id, author
// or timestamp in input keeps the old value and the admin flag never changes.
// Changing the id falls back to remove then append, during which readers briefly
// see the reply missing. If the append fails the old reply is put back.
func (s *ForumService) ReplaceReply(ctx context.Context, actor forum.Actor, threadID, replyID string, input forum.ReplyInput) (domain.ForumReply, error) {
	thread, err := s.threads.GetThread(ctx, threadID)
	if err != nil {
		return domain.ForumReply{}, mapStoreError(err, threadID, replyID)
	}
	old, ok := thread.FindReply(replyID)
	if !ok {
		return domain.ForumReply{}, mapStoreError(repository.ErrReplyNotFound, threadID, replyID)
	}

	if strings.TrimSpace(input.ID) == "" {
		input.ID = old.ID
	}
	if strings.TrimSpace(input.AuthorName) == "" {
		input.AuthorName = old.AuthorName
	}
	if input.Timestamp.IsZero() {
		input.Timestamp = old.Timestamp
	}
	input.IsAdminReply = old.IsAdminReply
	reply, err := s.codec.ValidateReply(input)
	if err != nil {
		return domain.ForumReply{}, err
	}

	if reply.ID == old.ID {
		if err := s.threads.SetReply(ctx, threadID, reply); err != nil {
			return domain.ForumReply{}, mapStoreError(err, threadID, replyID)
		}
	} else {
		if thread.HasReply(reply.ID) {
			return domain.ForumReply{}, mapStoreError(repository.ErrDuplicateReply, threadID, reply.ID)
		}
		if err := s.threads.PullReply(ctx, threadID, old.ID); err != nil {
			return domain.ForumReply{}, mapStoreError(err, threadID, old.ID)
		}
		if err := s.threads.AddReply(ctx, threadID, reply); err != nil {
			s.restoreReply(ctx, threadID, old)
			return domain.ForumReply{}, mapStoreError(err, threadID, reply.ID)
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventReplyEdited,
		ThreadID: threadID,
		Actor:    eventActor(actor),
		Payload:  replyPayload(reply),
	})
	return reply, nil
}

// restoreReply re-adds a reply pulled by an id change whose append failed. It runs
// even when ctx is already cancelled.
func (s *ForumService) restoreReply(ctx context.Context, threadID string, old domain.ForumReply) {
	if err := s.threads.AddReply(context.WithoutCancel(ctx), threadID, old); err != nil {
		s.logger.Error("reply lost while changing its id",
			zap.String("thread_id", threadID),
			zap.String("reply_id", old.ID),
			zap.Error(err))
	}
}

// SetClosed closes or reopens a thread.
func (s *ForumService) SetClosed(ctx context.Context, actor forum.Actor, threadID string, closed bool) error {
	if err := s.threads.SetClosed(ctx, threadID, closed); err != nil {
		return mapStoreError(err, threadID, "")
	}
	eventType := events.EventThreadReopened
	if closed {
		eventType = events.EventThreadClosed
	}
	s.publishEvent(ctx, events.Event{
		Type:     eventType,
		ThreadID: threadID,
		Actor:    eventActor(actor),
	})
	return nil
}

// EditQuestion replaces a thread's question.
func (s *ForumService) EditQuestion(ctx context.Context, actor forum.Actor, threadID, question string) error {
	question, err := s.codec.ValidateQuestion(question)
	if err != nil {
		return err
	}
	if err := s.threads.SetQuestion(ctx, threadID, question); err != nil {
		return mapStoreError(err, threadID, "")
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventThreadQuestionEdited,
		ThreadID: threadID,
		Actor:    eventActor(actor),
		Payload:  events.ThreadQuestionEditedPayload{Question: stringPreview(question, replyPreviewLength)},
	})
	return nil
}

// DeleteThread removes a thread together with all of its replies.
func (s *ForumService) DeleteThread(ctx context.Context, actor forum.Actor, threadID string) error {
	if err := s.threads.DeleteThread(ctx, threadID); err != nil {
		return mapStoreError(err, threadID, "")
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventThreadDeleted,
		ThreadID: threadID,
		Actor:    eventActor(actor),
	})
	return nil
}

// Ping checks the backing store.
func (s *ForumService) Ping(ctx context.Context) error {
	return s.threads.Ping(ctx)
}

func (s *ForumService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// mapStoreError converts repository failures into client facing errors.
func mapStoreError(err error, threadID, replyID string) error {
	var domainErr *apperrors.DomainError
	switch {
	case errors.As(err, &domainErr):
		return err
	case errors.Is(err, repository.ErrThreadNotFound):
		return apperrors.NewNotFound("thread", map[string]any{"thread_id": threadID})
	case errors.Is(err, repository.ErrReplyNotFound):
		return apperrors.NewNotFound("reply", map[string]any{"thread_id": threadID, "reply_id": replyID})
	case errors.Is(err, repository.ErrDuplicateReply):
		return apperrors.NewConflict("reply already exists", map[string]any{"thread_id": threadID, "reply_id": replyID})
	default:
		return apperrors.NewStoreUnavailable(err)
	}
}

func publicActor() events.Actor {
	return events.Actor{Type: domain.SubjectTypePublic}
}

func eventActor(actor forum.Actor) events.Actor {
	if actor.Admin == nil {
		return publicActor()
	}
	email := actor.Admin.Email
	return events.Actor{Type: domain.SubjectTypeAdmin, Email: &email}
}

func replyPayload(reply domain.ForumReply) events.ReplyPayload {
	return events.ReplyPayload{
		ReplyID:      reply.ID,
		AuthorName:   reply.AuthorName,
		IsAdminReply: reply.IsAdminReply,
		ReplyPreview: stringPreview(reply.Reply, replyPreviewLength),
	}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
