package worker

import (
	"go.uber.org/zap"

	"github.com/ummahhub/community-api/internal/events"
	"github.com/ummahhub/community-api/internal/search"
	"github.com/ummahhub/community-api/internal/service"
	"github.com/ummahhub/community-api/internal/stream"
)

// Subscribers are the forum event consumers attached at startup. Nil entries are
// skipped, which is how optional integrations stay off.
type Subscribers struct {
	Notifications *service.NotificationService
	Kafka         *events.KafkaPublisher
	Search        *search.Index
	Stream        *stream.Broker
}

// StartEventWorkers registers every configured subscriber on dispatcher.
func StartEventWorkers(dispatcher events.Dispatcher, subs Subscribers, logger *zap.Logger) {
	if dispatcher == nil {
		return
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var enabled []string
	if subs.Notifications != nil {
		subs.Notifications.RegisterHandlers()
		enabled = append(enabled, "notifications")
	}
	if subs.Kafka != nil {
		subs.Kafka.Register(dispatcher)
		enabled = append(enabled, "kafka")
	}
	if subs.Search != nil {
		subs.Search.Register(dispatcher)
		enabled = append(enabled, "search")
	}
	if subs.Stream != nil {
		subs.Stream.Register(dispatcher)
		enabled = append(enabled, "stream")
	}
	logger.Info("event workers started", zap.Strings("subscribers", enabled))
}
