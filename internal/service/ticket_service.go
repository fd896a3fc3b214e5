package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/internal/validation"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// TicketService coordinates ticket workflows. Any authenticated caller may
// update or delete any ticket; only creation records the caller.
type TicketService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// TicketInput carries ticket fields. A nil field was not supplied. On
// update an empty AssignedTo clears the assignment.
type TicketInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	AssignedTo  *string
}

// TicketListInput carries raw listing parameters as received from a client.
type TicketListInput struct {
	Search    string
	Status    string
	SortBy    string
	SortOrder string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// ListTickets returns every ticket matching the filter, newest first unless
// another order is requested. An empty result is not an error.
func (s *TicketService) ListTickets(ctx context.Context, input TicketListInput) ([]domain.Ticket, error) {
	filter, err := ParseTicketFilter(input)
	if err != nil {
		return nil, err
	}
	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// ParseTicketFilter validates listing parameters. Unknown status or sort
// values are rejected rather than ignored.
func ParseTicketFilter(input TicketListInput) (repository.TicketFilter, error) {
	filter := repository.DefaultTicketFilter()
	filter.Search = input.Search

	errs := validation.Errors{}
	if status := strings.TrimSpace(input.Status); status != "" {
		errs.Add("status", validation.Status(status))
		ticketStatus := domain.TicketStatus(status)
		filter.Status = &ticketStatus
	}
	if sortBy := strings.TrimSpace(input.SortBy); sortBy != "" {
		errs.Add("sortBy", validation.SortBy(sortBy))
		filter.SortBy = sortBy
	}
	if order := strings.TrimSpace(input.SortOrder); order != "" {
		errs.Add("sortOrder", validation.SortOrder(order))
		filter.Descending = strings.EqualFold(order, "desc")
	}
	if !errs.Valid() {
		return repository.TicketFilter{}, apperrors.NewValidationError("invalid query parameters", errs.Details())
	}
	return filter, nil
}

// GetTicket fetches a single ticket.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, ticketLookupError(err, ticketID)
	}
	return ticket, nil
}

// CreateTicket validates input and stores a ticket owned by callerID. Title
// and description are stored as supplied; trimming applies to validation only.
func (s *TicketService) CreateTicket(ctx context.Context, callerID string, input TicketInput) (*domain.Ticket, error) {
	if callerID == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	errs := validation.TicketForm{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
	}.ValidateCreate()
	assignee, err := s.resolveAssignee(ctx, input.AssignedTo, errs)
	if err != nil {
		return nil, err
	}
	if !errs.Valid() {
		return nil, apperrors.NewValidationError("ticket validation failed", errs.Details())
	}

	ticket := &domain.Ticket{
		Title:      *input.Title,
		Status:     domain.TicketStatusOpen,
		Priority:   domain.TicketPriorityMedium,
		CreatedBy:  callerID,
		AssignedTo: assignee,
	}
	if input.Description != nil {
		ticket.Description = *input.Description
	}
	if input.Status != nil {
		ticket.Status = domain.TicketStatus(*input.Status)
	}
	if input.Priority != nil {
		ticket.Priority = domain.TicketPriority(*input.Priority)
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  callerID,
		Payload:  ticketPayload(ticket, nil),
	})
	return ticket, nil
}

// UpdateTicket merges the supplied fields over the stored ticket. All
// fields are validated before anything is written.
func (s *TicketService) UpdateTicket(ctx context.Context, callerID, ticketID string, input TicketInput) (*domain.Ticket, error) {
	if callerID == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, ticketLookupError(err, ticketID)
	}

	errs := validation.TicketForm{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
	}.ValidateUpdate()
	var assignee *string
	if input.AssignedTo != nil && *input.AssignedTo != "" {
		if assignee, err = s.resolveAssignee(ctx, input.AssignedTo, errs); err != nil {
			return nil, err
		}
	}
	if !errs.Valid() {
		return nil, apperrors.NewValidationError("ticket validation failed", errs.Details())
	}

	var changed []string
	if input.Title != nil {
		ticket.Title = *input.Title
		changed = append(changed, "title")
	}
	if input.Description != nil {
		ticket.Description = *input.Description
		changed = append(changed, "description")
	}
	if input.Status != nil {
		ticket.Status = domain.TicketStatus(*input.Status)
		changed = append(changed, "status")
	}
	if input.Priority != nil {
		ticket.Priority = domain.TicketPriority(*input.Priority)
		changed = append(changed, "priority")
	}
	if input.AssignedTo != nil {
		ticket.AssignedTo = assignee
		changed = append(changed, "assignedTo")
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, ticketLookupError(err, ticketID)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		ActorID:  callerID,
		Payload:  ticketPayload(ticket, changed),
	})
	return ticket, nil
}

// DeleteTicket permanently removes a ticket. Its comments are left in place.
func (s *TicketService) DeleteTicket(ctx context.Context, callerID, ticketID string) error {
	if callerID == "" {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := s.tickets.Delete(ctx, ticketID); err != nil {
		return ticketLookupError(err, ticketID)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticketID,
		ActorID:  callerID,
	})
	return nil
}

// resolveAssignee checks that a supplied assignee exists, recording a
// field violation otherwise.
func (s *TicketService) resolveAssignee(ctx context.Context, assignedTo *string, errs validation.Errors) (*string, error) {
	if assignedTo == nil || *assignedTo == "" {
		return nil, nil
	}
	user, err := s.users.GetByID(ctx, *assignedTo)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			errs.Add("assignedTo", []string{"Assigned user does not exist"})
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	return &user.ID, nil
}

func ticketLookupError(err error, ticketID string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
	}
	return apperrors.MapError(err)
}

func ticketPayload(ticket *domain.Ticket, changed []string) events.TicketPayload {
	return events.TicketPayload{
		Title:         ticket.Title,
		Status:        ticket.Status,
		Priority:      ticket.Priority,
		AssignedTo:    ticket.AssignedTo,
		ChangedFields: changed,
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, event)
}

func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}
