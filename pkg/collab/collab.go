// Package collab declares the external collaborators the resolution engine
// depends on. Implementations wrap an LLM, the marketplace option endpoint or
// test fakes; the engine only sees these interfaces.
package collab

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-adfeatures/pkg/schema"
)

// Candidate is what an extraction or disambiguation call returns for a field.
type Candidate struct {
	Label   string `json:"label"`
	LabelID string `json:"labelId,omitempty"`
	Unit    string `json:"unit,omitempty"`
}

// Empty reports whether the candidate carries no value.
func (c Candidate) Empty() bool {
	return c.Label == "" && c.LabelID == ""
}

// Signals are named auxiliary values used by multi-signal disambiguation,
// for example a VIN and a year next to the parent labels.
type Signals map[string]string

// Extractor pulls values for fields out of free-form text.
type Extractor interface {
	// Extract returns one candidate per field id it found a value for. Fields
	// missing from the result are simply not present in the text.
	Extract(ctx context.Context, text string, fields []schema.FieldDescriptor) (map[string]Candidate, error)

	// Choose picks among a fixed candidate option set using the text. An empty
	// candidate means nothing in the text matches.
	Choose(ctx context.Context, text string, field schema.FieldDescriptor, options []schema.Option) (Candidate, error)
}

// OptionLookup fetches the options of a dependent field given its parent's
// selected option id.
type OptionLookup interface {
	ChildOptions(ctx context.Context, field schema.FieldDescriptor, parentOptionID string) ([]schema.Option, error)
}

// Disambiguator selects one option using auxiliary signals.
type Disambiguator interface {
	Disambiguate(ctx context.Context, field schema.FieldDescriptor, options []schema.Option, signals Signals) (Candidate, error)
}

// Translator renders primary-language text in the secondary language.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Composer runs the named text-composite steps. Step inputs and outputs are
// plain strings keyed by name.
type Composer interface {
	Compose(ctx context.Context, step string, text string, inputs map[string]string) (map[string]string, error)
}

// ErrNoResult is returned by collaborators that understood the request but
// produced nothing usable.
var ErrNoResult = errors.New("collab: no result")

// CollaboratorError wraps a transport or infrastructure failure of an external
// collaborator.
type CollaboratorError struct {
	Service string
	Op      string
	Err     error
}

func (e *CollaboratorError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("collab: %s %s: %v", e.Service, e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Wrap returns err wrapped as a CollaboratorError, or nil.
func Wrap(service, op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *CollaboratorError
	if errors.As(err, &existing) {
		return err
	}
	return &CollaboratorError{Service: service, Op: op, Err: err}
}
