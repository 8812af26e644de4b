package service

import (
	"context"
	"strings"

	"github.com/ummahhub/community-api/internal/domain"
	"github.com/ummahhub/community-api/internal/forum"
	apperrors "github.com/ummahhub/community-api/pkg/util"
)

// ModerationService applies the moderation policy before any store call.
type ModerationService struct {
	forum *ForumService
}

// NewModerationService constructs the service.
func NewModerationService(forumService *ForumService) *ModerationService {
	return &ModerationService{forum: forumService}
}

// SubmitPublicReply appends a reply through the public form. Closed threads reject it
// before any write. The form never posts under the moderator name or with the admin
// flag, even for a signed-in admin; actor only attributes the event.
func (s *ModerationService) SubmitPublicReply(ctx context.Context, actor forum.Actor, threadID string, input forum.ReplyInput) (domain.ForumReply, error) {
	thread, err := s.forum.GetThread(ctx, threadID)
	if err != nil {
		return domain.ForumReply{}, err
	}
	if !forum.CanReply(thread) {
		return domain.ForumReply{}, apperrors.NewThreadClosed(threadID)
	}
	if s.forum.codec.IsReservedAuthor(input.AuthorName) {
		return domain.ForumReply{}, apperrors.NewValidationError("invalid reply", map[string]any{
			"fields": map[string]any{"authorName": "is reserved"},
		})
	}
	input.ID = ""
	input.IsAdminReply = false
	return s.forum.AppendReply(ctx, actor, threadID, input)
}

// SubmitAdminReply appends a moderator reply. Admins may answer closed threads.
// The author defaults to the moderator name.
func (s *ModerationService) SubmitAdminReply(ctx context.Context, actor forum.Actor, threadID string, input forum.ReplyInput) (domain.ForumReply, error) {
	if err := requireModerator(actor); err != nil {
		return domain.ForumReply{}, err
	}
	thread, err := s.forum.GetThread(ctx, threadID)
	if err != nil {
		return domain.ForumReply{}, err
	}
	if !forum.CanAdminReply(thread, actor) {
		return domain.ForumReply{}, apperrors.NewNotAuthorized("admin session required")
	}
	if strings.TrimSpace(input.AuthorName) == "" {
		input.AuthorName = domain.OfficialAuthorName
	}
	input.IsAdminReply = true
	return s.forum.AppendReply(ctx, actor, threadID, input)
}

// EditReply rewrites a reply.
func (s *ModerationService) EditReply(ctx context.Context, actor forum.Actor, threadID, replyID string, input forum.ReplyInput) (domain.ForumReply, error) {
	if err := requireModerator(actor); err != nil {
		return domain.ForumReply{}, err
	}
	return s.forum.ReplaceReply(ctx, actor, threadID, replyID, input)
}

// DeleteReply removes a reply.
func (s *ModerationService) DeleteReply(ctx context.Context, actor forum.Actor, threadID, replyID string) error {
	if err := requireModerator(actor); err != nil {
		return err
	}
	return s.forum.RemoveReply(ctx, actor, threadID, replyID)
}

// CloseThread stops new public replies.
func (s *ModerationService) CloseThread(ctx context.Context, actor forum.Actor, threadID string) error {
	if err := requireModerator(actor); err != nil {
		return err
	}
	return s.forum.SetClosed(ctx, actor, threadID, true)
}

// ReopenThread accepts public replies again.
func (s *ModerationService) ReopenThread(ctx context.Context, actor forum.Actor, threadID string) error {
	if err := requireModerator(actor); err != nil {
		return err
	}
	return s.forum.SetClosed(ctx, actor, threadID, false)
}

// EditQuestion rewrites the thread's opening question.
func (s *ModerationService) EditQuestion(ctx context.Context, actor forum.Actor, threadID, question string) error {
	if err := requireModerator(actor); err != nil {
		return err
	}
	return s.forum.EditQuestion(ctx, actor, threadID, question)
}

// DeleteThread removes a thread and its replies.
func (s *ModerationService) DeleteThread(ctx context.Context, actor forum.Actor, threadID string) error {
	if err := requireModerator(actor); err != nil {
		return err
	}
	return s.forum.DeleteThread(ctx, actor, threadID)
}

func requireModerator(actor forum.Actor) error {
	if !forum.CanModerate(actor) {
		return apperrors.NewNotAuthorized("admin session required")
	}
	return nil
}
