package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/dailydrill/internal/batch"
)

// Kind classifies engine failures for callers.
type Kind string

const (
	// KindNotFound means the referenced user batch or question does not
	// exist. It is a client error and is not retried.
	KindNotFound Kind = "not_found"
	// KindInvalidInput means the request was rejected before any store
	// access.
	KindInvalidInput Kind = "invalid_input"
	// KindUnavailable means a store failed. It is propagated as is.
	KindUnavailable Kind = "unavailable"
)

// Sentinels for errors.Is matching against *Error.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("upstream unavailable")
)

// Error is a classified engine failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrInvalidInput:
		return e.Kind == KindInvalidInput
	case ErrUnavailable:
		return e.Kind == KindUnavailable
	}
	return false
}

// KindOf returns the kind of err, or "" if it is not an engine error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func notFound(op, format string, args ...any) error {
	return &Error{Kind: KindNotFound, Op: op, Err: fmt.Errorf(format, args...)}
}

func invalid(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidInput, Op: op, Err: fmt.Errorf(format, args...)}
}

func unavailable(op string, err error) error {
	return &Error{Kind: KindUnavailable, Op: op, Err: err}
}

// RefreshDeniedError is returned when a forced refresh is not allowed.
type RefreshDeniedError struct {
	Eligibility batch.Eligibility
}

func (e *RefreshDeniedError) Error() string {
	return fmt.Sprintf("refresh not allowed until %s: %s",
		e.Eligibility.NextRefreshAvailable.Format("15:04"),
		strings.Join(e.Eligibility.Reasons, "; "))
}
