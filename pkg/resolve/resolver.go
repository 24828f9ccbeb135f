// Package resolve implements the per-field resolution strategies, the
// append-only store they write into and the precedence policy that decides
// which attempt wins.
package resolve

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/goliatone/go-adfeatures/internal/sanitize"
	"github.com/goliatone/go-adfeatures/pkg/collab"
	"github.com/goliatone/go-adfeatures/pkg/schema"
)

// Input is everything a resolver may consult for one field.
type Input struct {
	Field  schema.FieldDescriptor
	Text   string
	Schema *schema.Schema
	Store  Reader
}

// Resolver turns a field into a ResolvedValue. "Not found" is an unresolved
// value, never an error; errors are reserved for collaborator failures.
type Resolver interface {
	Resolve(ctx context.Context, in Input) (ResolvedValue, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(ctx context.Context, in Input) (ResolvedValue, error)

// Resolve implements Resolver.
func (fn ResolverFunc) Resolve(ctx context.Context, in Input) (ResolvedValue, error) {
	return fn(ctx, in)
}

// Static resolves a field from the static-default table matched against the
// field's (possibly live) options.
type Static struct {
	// Table overrides the descriptor's StaticDefaultOptionID when it has an
	// entry for the field.
	Table  map[string]string
	Logger *zap.Logger
}

// Resolve implements Resolver.
func (s *Static) Resolve(_ context.Context, in Input) (ResolvedValue, error) {
	field := in.Field
	optionID := field.StaticDefaultOptionID
	if s != nil {
		if id, ok := s.Table[field.ID]; ok {
			optionID = id
		}
	}
	if optionID == "" {
		return Unresolved(field.ID), nil
	}
	opt, ok := field.OptionByID(optionID)
	if !ok {
		if s != nil && s.Logger != nil {
			s.Logger.Warn("static default not among options",
				zap.String("field", field.ID),
				zap.String("option", optionID),
				zap.Int("options", len(field.Options)),
			)
		}
		return Unresolved(field.ID), nil
	}
	return ResolvedValue{FieldID: field.ID, Label: opt.Title, LabelID: opt.ID, Source: SourceStaticDefault}, nil
}

// Declared resolves a field from the default embedded in the schema document.
type Declared struct{}

// Resolve implements Resolver.
func (Declared) Resolve(_ context.Context, in Input) (ResolvedValue, error) {
	field := in.Field
	def := field.DeclaredDefault
	if def.IsZero() {
		return Unresolved(field.ID), nil
	}
	if def.Option != nil && def.Option.Title != "" {
		value := ResolvedValue{FieldID: field.ID, Label: def.Option.Title, LabelID: def.Option.ID, Source: SourceDeclaredDefault}
		if len(field.Options) > 0 && def.Option.ID != "" {
			if _, ok := field.OptionByID(def.Option.ID); !ok {
				value.LabelID = ""
			}
		}
		return value, nil
	}
	if def.Option != nil && def.Option.ID != "" {
		if opt, ok := field.OptionByID(def.Option.ID); ok {
			return ResolvedValue{FieldID: field.ID, Label: opt.Title, LabelID: opt.ID, Source: SourceDeclaredDefault}, nil
		}
	}
	if def.Value == "" {
		return Unresolved(field.ID), nil
	}
	value := ResolvedValue{FieldID: field.ID, Label: def.Value, Source: SourceDeclaredDefault}
	if field.Type == schema.FieldTypeDropdown {
		if opt, ok := MatchOption(field.Options, def.Value); ok {
			value.Label, value.LabelID = opt.Title, opt.ID
		}
	}
	return value, nil
}

// Extraction delegates to the extraction collaborator and binds the result to
// the field's options.
type Extraction struct {
	Extractor collab.Extractor
}

// Resolve implements Resolver.
func (e *Extraction) Resolve(ctx context.Context, in Input) (ResolvedValue, error) {
	field := in.Field
	if e == nil || e.Extractor == nil {
		return Unresolved(field.ID), errors.New("resolve: extraction collaborator not configured")
	}
	found, err := e.Extractor.Extract(ctx, in.Text, []schema.FieldDescriptor{field})
	if err != nil {
		return Unresolved(field.ID), collab.Wrap("extractor", "extract", err)
	}
	candidate, ok := found[field.ID]
	if !ok || candidate.Empty() {
		return Unresolved(field.ID), nil
	}
	return bindExtracted(field, candidate, SourceExtraction), nil
}

func bindExtracted(field schema.FieldDescriptor, candidate collab.Candidate, source Source) ResolvedValue {
	value := ResolvedValue{FieldID: field.ID, Source: source, Unit: candidate.Unit}
	if field.Type != schema.FieldTypeDropdown {
		value.Label = sanitize.Text(candidate.Label)
		if value.Label == "" {
			return Unresolved(field.ID)
		}
		return value
	}
	if opt, ok := bindCandidate(field.Options, candidate); ok {
		value.Label, value.LabelID = opt.Title, opt.ID
		return value
	}
	value.Label = sanitize.Label(candidate.Label)
	if value.Label == "" {
		return Unresolved(field.ID)
	}
	return value
}
