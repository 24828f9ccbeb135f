package schema

import (
	"errors"
	"fmt"
)

// LoadErrorReason classifies schema load failures.
type LoadErrorReason string

const (
	ReasonNotFound  LoadErrorReason = "not-found"
	ReasonMalformed LoadErrorReason = "malformed"
)

var (
	// ErrNotFound matches any SchemaLoadError with ReasonNotFound via errors.Is.
	ErrNotFound = errors.New("schema: not found")
	// ErrMalformed matches any SchemaLoadError with ReasonMalformed via errors.Is.
	ErrMalformed = errors.New("schema: malformed")
)

// SchemaLoadError reports why a schema could not be produced. Callers treat it
// as fatal for the request: no partial schema is ever returned alongside it.
type SchemaLoadError struct {
	Reason   LoadErrorReason
	Location string
	Err      error
}

func (e *SchemaLoadError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("schema: load %s", e.Reason)
	if e.Location != "" {
		msg += " (" + e.Location + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaLoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets errors.Is(err, ErrNotFound) and errors.Is(err, ErrMalformed) match on
// the reason regardless of the wrapped cause.
func (e *SchemaLoadError) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrNotFound:
		return e.Reason == ReasonNotFound
	case ErrMalformed:
		return e.Reason == ReasonMalformed
	}
	return false
}

// NotFound wraps err as a SchemaLoadError with ReasonNotFound.
func NotFound(location string, err error) error {
	return &SchemaLoadError{Reason: ReasonNotFound, Location: location, Err: err}
}

// Malformed builds a SchemaLoadError with ReasonMalformed from a formatted
// message.
func Malformed(location string, format string, args ...any) error {
	return &SchemaLoadError{Reason: ReasonMalformed, Location: location, Err: fmt.Errorf(format, args...)}
}
