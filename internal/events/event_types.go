package events

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket.created"
	EventTicketUpdated  EventType = "ticket.updated"
	EventTicketDeleted  EventType = "ticket.deleted"
	EventCommentCreated EventType = "comment.created"
	EventCommentDeleted EventType = "comment.deleted"
)

// AllEventTypes lists every event the services publish.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketUpdated,
	EventTicketDeleted,
	EventCommentCreated,
	EventCommentDeleted,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketPayload is attached to ticket created/updated events.
type TicketPayload struct {
	Title         string                `json:"title"`
	Status        domain.TicketStatus   `json:"status"`
	Priority      domain.TicketPriority `json:"priority"`
	AssignedTo    *string               `json:"assigned_to,omitempty"`
	ChangedFields []string              `json:"changed_fields,omitempty"`
}

// CommentPayload is attached to comment events.
type CommentPayload struct {
	CommentID      string `json:"comment_id"`
	AuthorID       string `json:"author_id"`
	ContentPreview string `json:"content_preview,omitempty"`
}
