// Package payload turns a resolution store plus caller overrides into the
// marketplace submission payload.
package payload

import (
	"errors"
	"fmt"
	"strings"
)

// Feature is one entry of the submission payload. Value is a string, an
// integer, a bool, a list of strings or a language-keyed map.
type Feature struct {
	ID    string `json:"id"`
	Value any    `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// FeatureValue is a caller-supplied feature, as received from a form.
type FeatureValue struct {
	ID    string `json:"id"`
	Value string `json:"value"`
	Unit  string `json:"unit,omitempty"`
}

// Overrides carries the caller's side inputs. Empty fields fall back to the
// builder defaults.
type Overrides struct {
	Features      []FeatureValue `json:"features,omitempty"`
	Region        string         `json:"region_id,omitempty"`
	Phone         string         `json:"phone_number,omitempty"`
	Images        []string       `json:"images,omitempty"`
	CategoryID    string         `json:"category_id,omitempty"`
	SubcategoryID string         `json:"subcategory_id,omitempty"`
	OfferType     string         `json:"offer_type,omitempty"`
}

// Payload is the wire body of an advert submission.
type Payload struct {
	CategoryID    string    `json:"category_id"`
	SubcategoryID string    `json:"subcategory_id"`
	OfferType     string    `json:"offer_type"`
	State         string    `json:"state,omitempty"`
	Features      []Feature `json:"features"`

	// Region is duplicated out of Features for callers that route on it.
	Region string `json:"-"`
	// Issues lists fields that were dropped or are missing.
	Issues []Issue `json:"-"`
}

// Feature returns the payload feature with id.
func (p *Payload) Feature(id string) (Feature, bool) {
	if p == nil {
		return Feature{}, false
	}
	for _, f := range p.Features {
		if f.ID == id {
			return f, true
		}
	}
	return Feature{}, false
}

// IssueKind classifies payload issues.
type IssueKind string

const (
	IssueDropped         IssueKind = "dropped"
	IssueMissingRequired IssueKind = "missing-required"
)

// Issue records a field that could not be submitted as resolved.
type Issue struct {
	FieldID string    `json:"id"`
	Kind    IssueKind `json:"kind"`
	Reason  string    `json:"reason"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s", i.FieldID, i.Kind, i.Reason)
}

// ErrValidation matches any *ValidationError via errors.Is.
var ErrValidation = errors.New("payload: validation failed")

// ValidationError is raised only when no well-formed payload can be built.
// Ordinary per-field invalidity is reported through Payload.Issues instead.
type ValidationError struct {
	Reason string
	Issues []Issue
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := "payload: " + e.Reason
	if len(e.Issues) > 0 {
		parts := make([]string, 0, len(e.Issues))
		for _, issue := range e.Issues {
			parts = append(parts, issue.String())
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
