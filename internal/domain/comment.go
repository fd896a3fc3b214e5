package domain

import "time"

// Comment is a note attached to a ticket. Only its author may delete it.
type Comment struct {
	ID        string
	TicketID  string
	UserID    string
	Content   string
	Author    UserSummary
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAuthor reports whether userID wrote the comment.
func (c *Comment) IsAuthor(userID string) bool {
	return c.UserID == userID
}
