package repository

import "errors"

// ErrNotFound is returned by every repository when a record does not resolve.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique constraint is violated.
var ErrDuplicate = errors.New("duplicate record")
