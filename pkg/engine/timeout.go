package engine

import (
	"context"
	"time"

	"github.com/goliatone/go-adfeatures/pkg/collab"
	"github.com/goliatone/go-adfeatures/pkg/schema"
)

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

type timedExtractor struct {
	inner   collab.Extractor
	timeout time.Duration
}

func (t timedExtractor) Extract(ctx context.Context, text string, fields []schema.FieldDescriptor) (map[string]collab.Candidate, error) {
	ctx, cancel := withTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Extract(ctx, text, fields)
}

func (t timedExtractor) Choose(ctx context.Context, text string, field schema.FieldDescriptor, options []schema.Option) (collab.Candidate, error) {
	ctx, cancel := withTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Choose(ctx, text, field, options)
}

type timedLookup struct {
	inner   collab.OptionLookup
	timeout time.Duration
}

func (t timedLookup) ChildOptions(ctx context.Context, field schema.FieldDescriptor, parentOptionID string) ([]schema.Option, error) {
	ctx, cancel := withTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.ChildOptions(ctx, field, parentOptionID)
}

type timedDisambiguator struct {
	inner   collab.Disambiguator
	timeout time.Duration
}

func (t timedDisambiguator) Disambiguate(ctx context.Context, field schema.FieldDescriptor, options []schema.Option, signals collab.Signals) (collab.Candidate, error) {
	ctx, cancel := withTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Disambiguate(ctx, field, options, signals)
}

type timedComposer struct {
	inner   collab.Composer
	timeout time.Duration
}

func (t timedComposer) Compose(ctx context.Context, step, text string, inputs map[string]string) (map[string]string, error) {
	ctx, cancel := withTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Compose(ctx, step, text, inputs)
}
