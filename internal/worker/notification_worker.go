package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/service"
)

// StartNotificationWorker registers notification handlers and, when a
// stream publisher is given, mirrors every event to it.
func StartNotificationWorker(
	dispatcher events.Dispatcher,
	notificationService *service.NotificationService,
	streamPublisher *events.RedisStreamPublisher,
	logger *zap.Logger,
) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if streamPublisher != nil && dispatcher != nil {
		streamPublisher.Register(dispatcher)
		logger.Info("mirroring domain events to redis stream")
	}
}
