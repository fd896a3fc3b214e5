package validation

import (
	"strings"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// LoginForm validates credentials before lookup.
func LoginForm(email, password string) Errors {
	errs := Errors{}
	errs.Add("email", Email(email))
	errs.Add("password", LoginPassword(password))
	return errs
}

// RegisterForm describes a registration submission. ConfirmPassword is
// checked only when the client sends it.
type RegisterForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword *string
}

// Validate runs every registration rule.
func (f RegisterForm) Validate() Errors {
	errs := Errors{}
	errs.Add("name", Name(f.Name))
	errs.Add("email", Email(f.Email))
	errs.Add("password", Password(f.Password))
	if f.ConfirmPassword != nil {
		errs.Add("confirmPassword", ConfirmPassword(f.Password, *f.ConfirmPassword))
	}
	return errs
}

// TicketForm holds ticket fields; nil means the field was not supplied.
type TicketForm struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
}

// ValidateCreate requires a title and checks every supplied field.
func (f TicketForm) ValidateCreate() Errors {
	title := ""
	if f.Title != nil {
		title = *f.Title
	}
	errs := Errors{}
	errs.Add("title", TicketTitle(title))
	f.validateOptional(errs)
	return errs
}

// ValidateUpdate checks only the supplied fields.
func (f TicketForm) ValidateUpdate() Errors {
	errs := Errors{}
	if f.Title != nil {
		errs.Add("title", TicketTitle(*f.Title))
	}
	f.validateOptional(errs)
	return errs
}

func (f TicketForm) validateOptional(errs Errors) {
	if f.Description != nil {
		errs.Add("description", TicketDescription(*f.Description))
	}
	if f.Status != nil {
		errs.Add("status", Status(*f.Status))
	}
	if f.Priority != nil {
		errs.Add("priority", Priority(*f.Priority))
	}
}

// Status rejects values outside the enumeration rather than coercing them.
func Status(status string) []string {
	if !domain.TicketStatus(status).Valid() {
		return []string{"Please select a valid status"}
	}
	return nil
}

// Priority rejects values outside the enumeration.
func Priority(priority string) []string {
	if !domain.TicketPriority(priority).Valid() {
		return []string{"Please select a valid priority"}
	}
	return nil
}

// CommentForm validates a new comment body.
func CommentForm(content string) Errors {
	errs := Errors{}
	errs.Add("content", CommentContent(content))
	return errs
}

// SortBy accepts the listing sort keys.
func SortBy(sortBy string) []string {
	switch strings.TrimSpace(sortBy) {
	case "createdAt", "title":
		return nil
	}
	return []string{"sortBy must be createdAt or title"}
}

// SortOrder accepts asc or desc.
func SortOrder(order string) []string {
	switch strings.ToLower(strings.TrimSpace(order)) {
	case "asc", "desc":
		return nil
	}
	return []string{"sortOrder must be asc or desc"}
}
