package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ummahhub/community-api/internal/events"
)

// NotificationService logs forum activity moderators should notice.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventThreadCreated, n.handleThreadCreated)
	n.dispatcher.Subscribe(events.EventReplyAdded, n.handleReplyAdded)
	n.dispatcher.Subscribe(events.EventThreadClosed, n.handleModeration)
	n.dispatcher.Subscribe(events.EventThreadReopened, n.handleModeration)
	n.dispatcher.Subscribe(events.EventThreadDeleted, n.handleModeration)
	n.dispatcher.Subscribe(events.EventReplyRemoved, n.handleModeration)
}

func (n *NotificationService) handleThreadCreated(_ context.Context, event events.Event) error {
	n.logger.Info("ThreadCreated", zap.String("thread_id", event.ThreadID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleReplyAdded(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ReplyPayload)
	if ok && payload.IsAdminReply {
		n.logger.Info("OfficialReplyPosted", zap.String("thread_id", event.ThreadID), zap.String("reply_id", payload.ReplyID))
		return nil
	}
	n.logger.Info("ReplyAdded", zap.String("thread_id", event.ThreadID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleModeration(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("thread_id", event.ThreadID),
		zap.String("event_type", string(event.Type)),
	}
	if event.Actor.Email != nil {
		fields = append(fields, zap.String("admin", *event.Actor.Email))
	}
	n.logger.Info("ModerationAction", fields...)
	return nil
}
