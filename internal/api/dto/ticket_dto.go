package dto

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// TicketRequest is the body of create and update calls. Absent fields stay
// nil so updates touch only what the client sent.
type TicketRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	AssignedTo  *string `json:"assignedTo"`
}

// TicketListQuery captures listing filters from the query string.
type TicketListQuery struct {
	Search    string `query:"search"`
	Status    string `query:"status"`
	SortBy    string `query:"sortBy"`
	SortOrder string `query:"sortOrder"`
}

// TicketResponse is the wire shape of a ticket.
type TicketResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	CreatedBy   string                `json:"createdBy"`
	AssignedTo  *string               `json:"assignedTo"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		CreatedBy:   t.CreatedBy,
		AssignedTo:  t.AssignedTo,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewTicketList maps tickets, always yielding a non-nil slice.
func NewTicketList(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}

// MessageResponse acknowledges deletions.
type MessageResponse struct {
	Message string `json:"message"`
}
