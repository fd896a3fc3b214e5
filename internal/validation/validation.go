// Package validation holds the field and form rules shared by every
// transport. Validators are pure: each returns the messages for the
// violated rules, and an empty slice means the value is acceptable.
package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinPasswordLength    = 6
	MinNameLength        = 2
	MinTitleLength       = 3
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
	MinCommentLength     = 2
	MaxCommentLength     = 500
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
)

// Errors maps a field name to its violation messages.
type Errors map[string][]string

// Add records violations for field, ignoring empty lists.
func (e Errors) Add(field string, messages []string) {
	if len(messages) == 0 {
		return
	}
	e[field] = append(e[field], messages...)
}

// Valid reports whether no field has violations.
func (e Errors) Valid() bool {
	return len(e) == 0
}

// Details converts the map into the generic error details shape.
func (e Errors) Details() map[string]any {
	details := make(map[string]any, len(e))
	for field, messages := range e {
		details[field] = messages
	}
	return details
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

// Email checks presence and the local@domain.tld shape.
func Email(email string) []string {
	if strings.TrimSpace(email) == "" {
		return []string{"Email is required"}
	}
	if !emailPattern.MatchString(email) {
		return []string{"Please enter a valid email address"}
	}
	return nil
}

// Password applies the registration strength rules. Every failed
// strength rule is reported.
func Password(password string) []string {
	if password == "" {
		return []string{"Password is required"}
	}
	var violations []string
	if length(password) < MinPasswordLength {
		violations = append(violations, "Password must be at least 6 characters long")
	}
	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !lower {
		violations = append(violations, "Password must contain at least one lowercase letter")
	}
	if !upper {
		violations = append(violations, "Password must contain at least one uppercase letter")
	}
	if !digit {
		violations = append(violations, "Password must contain at least one number")
	}
	return violations
}

// LoginPassword only requires a value.
func LoginPassword(password string) []string {
	if password == "" {
		return []string{"Password is required"}
	}
	return nil
}

// Name checks presence, minimum length and the letters-and-spaces rule.
func Name(name string) []string {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		return []string{"Name is required"}
	case length(trimmed) < MinNameLength:
		return []string{"Name must be at least 2 characters long"}
	case !namePattern.MatchString(trimmed):
		return []string{"Name can only contain letters and spaces"}
	}
	return nil
}

// ConfirmPassword requires the confirmation to equal password exactly.
func ConfirmPassword(password, confirm string) []string {
	if confirm == "" {
		return []string{"Please confirm your password"}
	}
	if password != confirm {
		return []string{"Passwords do not match"}
	}
	return nil
}

// TicketTitle requires a trimmed title of 3 to 100 characters.
func TicketTitle(title string) []string {
	trimmed := strings.TrimSpace(title)
	switch {
	case trimmed == "":
		return []string{"Title is required"}
	case length(trimmed) < MinTitleLength:
		return []string{"Title must be at least 3 characters long"}
	case length(trimmed) > MaxTitleLength:
		return []string{"Title cannot exceed 100 characters"}
	}
	return nil
}

// TicketDescription is optional but capped at 1000 characters.
func TicketDescription(description string) []string {
	if length(description) > MaxDescriptionLength {
		return []string{"Description cannot exceed 1000 characters"}
	}
	return nil
}

// CommentContent requires at least 2 trimmed characters and at most 500 raw ones.
func CommentContent(content string) []string {
	trimmed := strings.TrimSpace(content)
	switch {
	case trimmed == "":
		return []string{"Comment cannot be empty"}
	case length(trimmed) < MinCommentLength:
		return []string{"Comment must be at least 2 characters long"}
	case length(content) > MaxCommentLength:
		return []string{"Comment cannot exceed 500 characters"}
	}
	return nil
}
