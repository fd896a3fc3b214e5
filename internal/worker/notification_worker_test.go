package worker

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/service"
)

func TestWorkerMirrorsEventsToStream(t *testing.T) {
	client, mock := redismock.NewClientMock()
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	notifications := service.NewNotificationService(dispatcher, zap.NewNop(), config.NotificationConfig{})
	publisher := events.NewRedisStreamPublisher(client, "ticket-events", 0)

	StartNotificationWorker(dispatcher, notifications, publisher, zap.NewNop())

	at := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectXAdd(&redis.XAddArgs{
		Stream: "ticket-events",
		Values: []interface{}{
			"id", "evt-1",
			"type", "ticket.deleted",
			"ticket_id", "t-1",
			"actor_id", "u-1",
			"timestamp", "2026-06-01T09:00:00Z",
			"payload", "null",
		},
	}).SetVal("1-0")
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		ID:        "evt-1",
		Type:      events.EventTicketDeleted,
		TicketID:  "t-1",
		ActorID:   "u-1",
		Timestamp: at,
	}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkerWithoutPublisher(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	StartNotificationWorker(dispatcher, nil, nil, zap.NewNop())
	assert.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketCreated}))
}
