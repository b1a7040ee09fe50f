package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")

	// ErrInvalidUpload is returned for uploads with a disallowed type or an
	// oversized body. It is also an ErrInvalidInput.
	ErrInvalidUpload = fmt.Errorf("%w: invalid upload", ErrInvalidInput)
)

// Error carries a message meant for API clients. Unwrap exposes the sentinel
// kind so callers can still match with errors.Is.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

var (
	errMissingFields = newError(ErrInvalidInput, "Title and content are required")
	errEmptySlug     = newError(ErrInvalidInput, "Title must contain at least one letter or digit")
	errPostNotFound  = newError(ErrNotFound, "Blog not found")
	errDuplicateID   = newError(ErrConflict, "A blog with this title already exists")
)
