package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStreamPublisher mirrors domain events onto a Redis stream so that
// other processes can follow ticket activity.
type RedisStreamPublisher struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// NewRedisStreamPublisher builds a publisher for stream. maxLen <= 0 keeps
// the stream untrimmed.
func NewRedisStreamPublisher(client redis.Cmdable, stream string, maxLen int64) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

// Register subscribes the publisher to every event type.
func (p *RedisStreamPublisher) Register(dispatcher Dispatcher) {
	for _, eventType := range AllEventTypes {
		dispatcher.Subscribe(eventType, p.Handle)
	}
}

// Handle appends event to the stream.
func (p *RedisStreamPublisher) Handle(ctx context.Context, event Event) error {
	args, err := p.xaddArgs(event)
	if err != nil {
		return err
	}
	if err := p.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}

func (p *RedisStreamPublisher) xaddArgs(event Event) (*redis.XAddArgs, error) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: []interface{}{
			"id", event.ID,
			"type", string(event.Type),
			"ticket_id", event.TicketID,
			"actor_id", event.ActorID,
			"timestamp", event.Timestamp.UTC().Format(time.RFC3339Nano),
			"payload", string(payload),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	return args, nil
}
