package resolve

import (
	"context"
	"errors"

	"github.com/goliatone/go-adfeatures/pkg/collab"
	"github.com/goliatone/go-adfeatures/pkg/schema"
)

// Dependent resolves fields whose options depend on a parent selection. The
// immediate role disambiguates with the extraction collaborator; the
// multi-signal role hands the candidates and auxiliary signals to the
// disambiguation collaborator.
type Dependent struct {
	Lookup        collab.OptionLookup
	Extractor     collab.Extractor
	Disambiguator collab.Disambiguator
}

// Resolve implements Resolver.
func (d *Dependent) Resolve(ctx context.Context, in Input) (ResolvedValue, error) {
	field := in.Field
	if d == nil || d.Lookup == nil {
		return Unresolved(field.ID), errors.New("resolve: option lookup collaborator not configured")
	}

	parent, ok := parentValue(in)
	if !ok {
		return Unresolved(field.ID), nil
	}

	options, err := d.Lookup.ChildOptions(ctx, field, parent.LabelID)
	if err != nil {
		return Unresolved(field.ID), collab.Wrap("lookup", "child-options", err)
	}
	if options == nil {
		options = []schema.Option{}
	}
	live := field.WithOptions(options)

	if len(options) == 0 {
		return Unresolved(field.ID).withOptions(options), nil
	}

	switch field.Role {
	case schema.RoleDependentMultiSignal:
		return d.resolveMultiSignal(ctx, in, live)
	default:
		return d.resolveImmediate(ctx, in, live)
	}
}

func (d *Dependent) resolveImmediate(ctx context.Context, in Input, field schema.FieldDescriptor) (ResolvedValue, error) {
	if len(field.Options) == 1 {
		opt := field.Options[0]
		return ResolvedValue{FieldID: field.ID, Label: opt.Title, LabelID: opt.ID, Source: SourceDependentLookup}.withOptions(field.Options), nil
	}
	if d.Extractor == nil {
		return Unresolved(field.ID).withOptions(field.Options), errors.New("resolve: extraction collaborator not configured")
	}
	candidate, err := d.Extractor.Choose(ctx, in.Text, field, field.Options)
	if err != nil {
		return Unresolved(field.ID).withOptions(field.Options), collab.Wrap("extractor", "choose", err)
	}
	return bindChoice(field, candidate), nil
}

func (d *Dependent) resolveMultiSignal(ctx context.Context, in Input, field schema.FieldDescriptor) (ResolvedValue, error) {
	if d.Disambiguator == nil {
		return Unresolved(field.ID).withOptions(field.Options), errors.New("resolve: disambiguation collaborator not configured")
	}
	signals := make(collab.Signals, len(field.Signals))
	for name, id := range field.Signals {
		if in.Store == nil {
			break
		}
		if value, ok := in.Store.Get(id); ok && value.Resolved() {
			signals[name] = value.Label
		}
	}
	candidate, err := d.Disambiguator.Disambiguate(ctx, field, field.Options, signals)
	if err != nil {
		return Unresolved(field.ID).withOptions(field.Options), collab.Wrap("disambiguator", "disambiguate", err)
	}
	return bindChoice(field, candidate), nil
}

// bindChoice only accepts candidates that map onto one of the live options.
func bindChoice(field schema.FieldDescriptor, candidate collab.Candidate) ResolvedValue {
	if candidate.Empty() {
		return Unresolved(field.ID).withOptions(field.Options)
	}
	opt, ok := bindCandidate(field.Options, candidate)
	if !ok {
		return Unresolved(field.ID).withOptions(field.Options)
	}
	return ResolvedValue{FieldID: field.ID, Label: opt.Title, LabelID: opt.ID, Source: SourceDependentLookup}.withOptions(field.Options)
}

// parentValue returns the parent's value when it is resolved to an option id.
func parentValue(in Input) (ResolvedValue, bool) {
	if in.Field.DependsOn == "" || in.Store == nil {
		return ResolvedValue{}, false
	}
	parent, ok := in.Store.Get(in.Field.DependsOn)
	if !ok || !parent.Resolved() || parent.LabelID == "" {
		return ResolvedValue{}, false
	}
	return parent, true
}
