package repository

import (
	"strings"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// Sort keys accepted by ticket listing.
const (
	SortByCreatedAt = "createdAt"
	SortByTitle     = "title"
)

// TicketFilter captures listing parameters. Zero values mean "no
// restriction" and the default order is newest first.
type TicketFilter struct {
	Search     string
	Status     *domain.TicketStatus
	SortBy     string
	Descending bool
}

// DefaultTicketFilter returns the listing used when the caller supplies nothing.
func DefaultTicketFilter() TicketFilter {
	return TicketFilter{SortBy: SortByCreatedAt, Descending: true}
}

// SearchTerm returns the search text as supplied, or "" when it is blank.
func (f TicketFilter) SearchTerm() string {
	if strings.TrimSpace(f.Search) == "" {
		return ""
	}
	return f.Search
}

// Matches reports whether ticket satisfies every active filter. A search
// matches a case-insensitive title substring or the exact id.
func (f TicketFilter) Matches(ticket *domain.Ticket) bool {
	if f.Status != nil && ticket.Status != *f.Status {
		return false
	}
	term := f.SearchTerm()
	if term == "" {
		return true
	}
	if ticket.ID == term {
		return true
	}
	return strings.Contains(strings.ToLower(ticket.Title), strings.ToLower(term))
}

// Less orders a before b under the filter's sort. Ties fall back to
// creation time and then id so that the order is total.
func (f TicketFilter) Less(a, b *domain.Ticket) bool {
	if f.SortBy == SortByTitle {
		at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
		if at != bt {
			if f.Descending {
				return at > bt
			}
			return at < bt
		}
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		if f.Descending {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	}
	if f.Descending {
		return a.ID > b.ID
	}
	return a.ID < b.ID
}
