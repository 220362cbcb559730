package domain

import "errors"

// NotFoundMessage is what callers are told when ErrNotFound is returned.
const NotFoundMessage = "Bookmark doesn't exist"

// ErrNotFound is returned when the referenced bookmark does not exist.
var ErrNotFound = errors.New("bookmark not found")

// ValidationError rejects a request payload. Message is safe to return to
// the caller as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
