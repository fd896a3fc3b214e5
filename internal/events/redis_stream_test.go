package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

var errConnReset = errors.New("connection reset by peer")

func sampleEvent() Event {
	return Event{
		ID:        "evt-1",
		Type:      EventCommentCreated,
		TicketID:  "ticket-1",
		ActorID:   "user-1",
		Timestamp: time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC),
		Payload:   CommentPayload{CommentID: "c-1", AuthorID: "user-1", ContentPreview: "nice"},
	}
}

func TestRedisStreamPublisherAppendsEvent(t *testing.T) {
	client, mock := redismock.NewClientMock()
	publisher := NewRedisStreamPublisher(client, "tracker.events", 1000)

	mock.ExpectXAdd(&redis.XAddArgs{
		Stream: "tracker.events",
		MaxLen: 1000,
		Approx: true,
		Values: []interface{}{
			"id", "evt-1",
			"type", "comment.created",
			"ticket_id", "ticket-1",
			"actor_id", "user-1",
			"timestamp", "2026-05-04T10:30:00Z",
			"payload", `{"comment_id":"c-1","author_id":"user-1","content_preview":"nice"}`,
		},
	}).SetVal("1-0")

	assert.NoError(t, publisher.Handle(context.Background(), sampleEvent()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStreamPublisherSurfacesErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	publisher := NewRedisStreamPublisher(client, "tracker.events", 0)

	mock.ExpectXAdd(&redis.XAddArgs{
		Stream: "tracker.events",
		Values: []interface{}{
			"id", "evt-1",
			"type", "comment.created",
			"ticket_id", "ticket-1",
			"actor_id", "user-1",
			"timestamp", "2026-05-04T10:30:00Z",
			"payload", `{"comment_id":"c-1","author_id":"user-1","content_preview":"nice"}`,
		},
	}).SetErr(errConnReset)

	err := publisher.Handle(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, errConnReset)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type recordingDispatcher struct {
	subscribed []EventType
}

func (d *recordingDispatcher) Publish(context.Context, Event) error { return nil }

func (d *recordingDispatcher) Subscribe(eventType EventType, _ EventHandler) {
	d.subscribed = append(d.subscribed, eventType)
}

func TestRedisStreamPublisherRegistersForAllEvents(t *testing.T) {
	client, _ := redismock.NewClientMock()
	dispatcher := &recordingDispatcher{}
	NewRedisStreamPublisher(client, "s", 0).Register(dispatcher)
	assert.Equal(t, AllEventTypes, dispatcher.subscribed)
}
