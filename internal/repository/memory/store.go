// Package memory is an in-process implementation of the repository
// interfaces. It backs development runs without Postgres and the service
// and transport tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
)

// Store holds every collection behind one lock so that comment reads can
// join author identities consistently.
type Store struct {
	mu       sync.RWMutex
	now      func() time.Time
	last     time.Time
	users    map[string]domain.User
	emails   map[string]string
	tickets  map[string]domain.Ticket
	comments map[string]domain.Comment
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore returns an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now:      time.Now,
		users:    make(map[string]domain.User),
		emails:   make(map[string]string),
		tickets:  make(map[string]domain.Ticket),
		comments: make(map[string]domain.Comment),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Users returns the user repository view.
func (s *Store) Users() repository.UserRepository { return userRepo{s} }

// Tickets returns the ticket repository view.
func (s *Store) Tickets() repository.TicketRepository { return ticketRepo{s} }

// Comments returns the comment repository view.
func (s *Store) Comments() repository.CommentRepository { return commentRepo{s} }

// Ping always succeeds; it lets the store take part in readiness checks.
func (s *Store) Ping(context.Context) error { return nil }

// stamp returns a timestamp strictly after prev and after every stamp
// handed out before, so creation order is also time order. The caller
// holds the write lock.
func (s *Store) stamp(prev time.Time) time.Time {
	floor := s.last
	if prev.After(floor) {
		floor = prev
	}
	now := s.now().UTC()
	if !now.After(floor) {
		now = floor.Add(time.Microsecond)
	}
	s.last = now
	return now
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, exists := r.s.emails[email]; exists {
		return repository.ErrDuplicate
	}
	user.ID = uuid.NewString()
	user.Email = email
	user.CreatedAt = r.s.stamp(time.Time{})
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	r.s.emails[email] = user.ID
	return nil
}

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := r.s.users[id]
	return &user, nil
}

type ticketRepo struct{ s *Store }

func (r ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ticket.ID = uuid.NewString()
	ticket.CreatedAt = r.s.stamp(time.Time{})
	ticket.UpdatedAt = ticket.CreatedAt
	r.s.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r ticketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.tickets[ticket.ID]
	if !ok {
		return repository.ErrNotFound
	}
	ticket.CreatedBy = existing.CreatedBy
	ticket.CreatedAt = existing.CreatedAt
	ticket.UpdatedAt = r.s.stamp(existing.UpdatedAt)
	r.s.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r ticketRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tickets[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.tickets, id)
	return nil
}

func (r ticketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := cloneTicket(ticket)
	return &clone, nil
}

func (r ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	result := make([]domain.Ticket, 0, len(r.s.tickets))
	for _, ticket := range r.s.tickets {
		if filter.Matches(&ticket) {
			result = append(result, cloneTicket(ticket))
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return filter.Less(&result[i], &result[j]) })
	return result, nil
}

func cloneTicket(ticket domain.Ticket) domain.Ticket {
	if ticket.AssignedTo != nil {
		assignee := *ticket.AssignedTo
		ticket.AssignedTo = &assignee
	}
	return ticket
}

type commentRepo struct{ s *Store }

func (r commentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	comment.ID = uuid.NewString()
	comment.CreatedAt = r.s.stamp(time.Time{})
	comment.UpdatedAt = comment.CreatedAt
	comment.Author = domain.UserSummary{}
	r.s.comments[comment.ID] = *comment
	comment.Author = r.s.author(comment.UserID)
	return nil
}

func (r commentRepo) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	comment, ok := r.s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	comment.Author = r.s.author(comment.UserID)
	return &comment, nil
}

func (r commentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	r.s.mu.RLock()
	result := []domain.Comment{}
	for _, comment := range r.s.comments {
		if comment.TicketID != ticketID {
			continue
		}
		comment.Author = r.s.author(comment.UserID)
		result = append(result, comment)
	}
	r.s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r commentRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.comments, id)
	return nil
}

// author resolves a user summary; the caller holds the lock.
func (s *Store) author(userID string) domain.UserSummary {
	user, ok := s.users[userID]
	if !ok {
		return domain.UserSummary{ID: userID}
	}
	return user.Summary()
}
