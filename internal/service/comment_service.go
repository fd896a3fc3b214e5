package service

import (
	"context"
	"errors"
	"strings"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/internal/validation"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// CommentService manages comments and enforces author-only deletion.
type CommentService struct {
	comments   repository.CommentRepository
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// CommentDependencies bundles repositories for comment service.
type CommentDependencies struct {
	CommentRepo repository.CommentRepository
	TicketRepo  repository.TicketRepository
	Dispatcher  events.Dispatcher
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		comments:   deps.CommentRepo,
		tickets:    deps.TicketRepo,
		dispatcher: deps.Dispatcher,
	}
}

// ListByTicket returns the ticket's comments oldest first with authors resolved.
func (s *CommentService) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	if err := s.requireTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return comments, nil
}

// CreateComment attaches a comment authored by callerID. A missing ticket
// is reported before the content is validated.
func (s *CommentService) CreateComment(ctx context.Context, callerID, ticketID, content string) (*domain.Comment, error) {
	if callerID == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if err := s.requireTicket(ctx, ticketID); err != nil {
		return nil, err
	}
	if errs := validation.CommentForm(content); !errs.Valid() {
		return nil, apperrors.NewValidationError("comment validation failed", errs.Details())
	}

	comment := &domain.Comment{
		TicketID: ticketID,
		UserID:   callerID,
		Content:  strings.TrimSpace(content),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventCommentCreated,
		TicketID: ticketID,
		ActorID:  callerID,
		Payload: events.CommentPayload{
			CommentID:      comment.ID,
			AuthorID:       callerID,
			ContentPreview: stringPreview(comment.Content, 120),
		},
	})
	return comment, nil
}

// DeleteComment removes a comment when callerID is its author.
func (s *CommentService) DeleteComment(ctx context.Context, callerID, commentID string) error {
	if callerID == "" {
		return apperrors.NewUnauthorized("authentication required")
	}
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		return commentLookupError(err, commentID)
	}
	if !comment.IsAuthor(callerID) {
		return apperrors.NewForbidden("You can only delete your own comments")
	}
	if err := s.comments.Delete(ctx, commentID); err != nil {
		return commentLookupError(err, commentID)
	}
	publish(ctx, s.dispatcher, events.Event{
		Type:     events.EventCommentDeleted,
		TicketID: comment.TicketID,
		ActorID:  callerID,
		Payload: events.CommentPayload{
			CommentID: comment.ID,
			AuthorID:  comment.UserID,
		},
	})
	return nil
}

func (s *CommentService) requireTicket(ctx context.Context, ticketID string) error {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		return ticketLookupError(err, ticketID)
	}
	return nil
}

func commentLookupError(err error, commentID string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound("comment", map[string]any{"comment_id": commentID})
	}
	return apperrors.MapError(err)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
