package domain

import "time"

// User is an account that can author tickets and comments.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary returns the public identity of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// UserSummary is the identity embedded in query results.
type UserSummary struct {
	ID    string
	Name  string
	Email string
}
