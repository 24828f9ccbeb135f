package testsupport

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-adfeatures/pkg/collab"
	"github.com/goliatone/go-adfeatures/pkg/schema"
)

// FakeExtractor returns canned candidates and counts calls.
type FakeExtractor struct {
	// Values answers Extract by field id.
	Values map[string]collab.Candidate
	// Choices answers Choose by field id.
	Choices map[string]collab.Candidate
	// Err fails every call when set.
	Err error
	// Block, when set, makes calls wait for the context to finish.
	Block bool

	extractCalls atomic.Int64
	chooseCalls  atomic.Int64

	mu        sync.Mutex
	requested [][]string
}

var _ collab.Extractor = (*FakeExtractor)(nil)

// Extract implements collab.Extractor.
func (f *FakeExtractor) Extract(ctx context.Context, _ string, fields []schema.FieldDescriptor) (map[string]collab.Candidate, error) {
	f.extractCalls.Add(1)
	ids := make([]string, 0, len(fields))
	for _, field := range fields {
		ids = append(ids, field.ID)
	}
	f.mu.Lock()
	f.requested = append(f.requested, ids)
	f.mu.Unlock()

	if f.Block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.Err != nil {
		return nil, f.Err
	}
	out := make(map[string]collab.Candidate)
	for _, id := range ids {
		if candidate, ok := f.Values[id]; ok {
			out[id] = candidate
		}
	}
	return out, nil
}

// Choose implements collab.Extractor.
func (f *FakeExtractor) Choose(ctx context.Context, _ string, field schema.FieldDescriptor, _ []schema.Option) (collab.Candidate, error) {
	f.chooseCalls.Add(1)
	if f.Block {
		<-ctx.Done()
		return collab.Candidate{}, ctx.Err()
	}
	if f.Err != nil {
		return collab.Candidate{}, f.Err
	}
	return f.Choices[field.ID], nil
}

// ExtractCalls returns the number of Extract calls.
func (f *FakeExtractor) ExtractCalls() int { return int(f.extractCalls.Load()) }

// ChooseCalls returns the number of Choose calls.
func (f *FakeExtractor) ChooseCalls() int { return int(f.chooseCalls.Load()) }

// Requested returns the field ids passed to each Extract call.
func (f *FakeExtractor) Requested() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.requested...)
}

// FakeLookup serves child options keyed by field id then parent option id.
type FakeLookup struct {
	Children map[string]map[string][]schema.Option
	Err      error

	calls atomic.Int64
	mu    sync.Mutex
	log   []string
}

var _ collab.OptionLookup = (*FakeLookup)(nil)

// ChildOptions implements collab.OptionLookup.
func (f *FakeLookup) ChildOptions(_ context.Context, field schema.FieldDescriptor, parentOptionID string) ([]schema.Option, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.log = append(f.log, field.ID+"<-"+parentOptionID)
	f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return append([]schema.Option(nil), f.Children[field.ID][parentOptionID]...), nil
}

// Calls returns the number of lookups.
func (f *FakeLookup) Calls() int { return int(f.calls.Load()) }

// Log returns "field<-parentOption" entries in call order.
func (f *FakeLookup) Log() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.log...)
}

// FakeDisambiguator answers by field id and records the signals it saw.
type FakeDisambiguator struct {
	Choices map[string]collab.Candidate
	Err     error

	calls       atomic.Int64
	mu          sync.Mutex
	lastSignals collab.Signals
}

var _ collab.Disambiguator = (*FakeDisambiguator)(nil)

// Disambiguate implements collab.Disambiguator.
func (f *FakeDisambiguator) Disambiguate(_ context.Context, field schema.FieldDescriptor, _ []schema.Option, signals collab.Signals) (collab.Candidate, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastSignals = signals
	f.mu.Unlock()
	if f.Err != nil {
		return collab.Candidate{}, f.Err
	}
	return f.Choices[field.ID], nil
}

// Calls returns the number of disambiguation calls.
func (f *FakeDisambiguator) Calls() int { return int(f.calls.Load()) }

// LastSignals returns the signals of the latest call.
func (f *FakeDisambiguator) LastSignals() collab.Signals {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSignals
}

// FakeTranslator returns canned translations; unknown text echoes an empty
// string.
type FakeTranslator struct {
	Translations map[string]string
	Err          error

	calls atomic.Int64
}

var _ collab.Translator = (*FakeTranslator)(nil)

// Translate implements collab.Translator.
func (f *FakeTranslator) Translate(_ context.Context, text, _ string) (string, error) {
	f.calls.Add(1)
	if f.Err != nil {
		return "", f.Err
	}
	return f.Translations[text], nil
}

// Calls returns the number of translation calls.
func (f *FakeTranslator) Calls() int { return int(f.calls.Load()) }

// FakeComposer answers composite steps by name.
type FakeComposer struct {
	Steps map[string]map[string]string
	Errs  map[string]error

	mu    sync.Mutex
	steps []string
}

var _ collab.Composer = (*FakeComposer)(nil)

// Compose implements collab.Composer.
func (f *FakeComposer) Compose(_ context.Context, step, _ string, _ map[string]string) (map[string]string, error) {
	f.mu.Lock()
	f.steps = append(f.steps, step)
	f.mu.Unlock()
	if err := f.Errs[step]; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(f.Steps[step]))
	for k, v := range f.Steps[step] {
		out[k] = v
	}
	return out, nil
}

// Called returns the steps invoked, in order.
func (f *FakeComposer) Called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.steps...)
}
