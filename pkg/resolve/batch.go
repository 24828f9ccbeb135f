package resolve

import (
	"context"
	"sync"

	"github.com/goliatone/go-adfeatures/pkg/collab"
	"github.com/goliatone/go-adfeatures/pkg/schema"
)

// Batch wraps an Extractor so the first Extract call of a run fetches every
// extraction target at once; later calls are served from that result. Choose
// is passed through.
type Batch struct {
	inner  collab.Extractor
	fields []schema.FieldDescriptor

	mu     sync.Mutex
	done   bool
	result map[string]collab.Candidate
	err    error
}

var _ collab.Extractor = (*Batch)(nil)

// NewBatch returns a batching extractor over fields.
func NewBatch(inner collab.Extractor, fields []schema.FieldDescriptor) *Batch {
	return &Batch{inner: inner, fields: fields}
}

// Extract implements collab.Extractor.
func (b *Batch) Extract(ctx context.Context, text string, fields []schema.FieldDescriptor) (map[string]collab.Candidate, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.done {
		targets := b.fields
		if len(targets) == 0 {
			targets = fields
		}
		b.result, b.err = b.inner.Extract(ctx, text, targets)
		// a cancelled first caller must not poison the rest of the run
		if b.err == nil || ctx.Err() == nil {
			b.done = true
		}
		if b.err != nil && !b.done {
			return nil, b.err
		}
	}
	if b.err != nil {
		return nil, b.err
	}

	out := make(map[string]collab.Candidate, len(fields))
	for _, field := range fields {
		if candidate, ok := b.result[field.ID]; ok {
			out[field.ID] = candidate
		}
	}
	return out, nil
}

// Choose implements collab.Extractor.
func (b *Batch) Choose(ctx context.Context, text string, field schema.FieldDescriptor, options []schema.Option) (collab.Candidate, error) {
	return b.inner.Choose(ctx, text, field, options)
}
