package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/repository/memory"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

type fixture struct {
	store    *memory.Store
	tickets  *TicketService
	comments *CommentService
	mu       sync.Mutex
	recorded []events.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: memory.NewStore()}
	dispatcher := events.NewInMemoryDispatcher(nil)
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.recorded = append(f.recorded, e)
			return nil
		})
	}
	f.tickets = NewTicketService(TicketDependencies{
		TicketRepo: f.store.Tickets(),
		UserRepo:   f.store.Users(),
		Dispatcher: dispatcher,
	})
	f.comments = NewCommentService(CommentDependencies{
		CommentRepo: f.store.Comments(),
		TicketRepo:  f.store.Tickets(),
		Dispatcher:  dispatcher,
	})
	return f
}

func (f *fixture) user(t *testing.T, name, email string) *domain.User {
	t.Helper()
	user := &domain.User{Name: name, Email: email, PasswordHash: "x"}
	require.NoError(t, f.store.Users().Create(context.Background(), user))
	return user
}

func (f *fixture) ticket(t *testing.T, callerID, title string) *domain.Ticket {
	t.Helper()
	ticket, err := f.tickets.CreateTicket(context.Background(), callerID, TicketInput{Title: strPtr(title)})
	require.NoError(t, err)
	return ticket
}

func strPtr(s string) *string { return &s }

func requireCode(t *testing.T, err error, code string) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, code), "expected %s, got %v", code, err)
	return apperrors.ToDomainError(err)
}
