// Package engine schedules field resolution over a schema forest. Fields are
// resolved in waves by depth: every field of a wave may run concurrently, and
// a wave only starts once the previous one is terminal.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-adfeatures/internal/sanitize"
	"github.com/goliatone/go-adfeatures/pkg/collab"
	"github.com/goliatone/go-adfeatures/pkg/resolve"
	"github.com/goliatone/go-adfeatures/pkg/schema"
)

// Engine runs resolution requests. It holds no per-run state, so one Engine
// may serve concurrent requests.
type Engine struct {
	logger         *zap.Logger
	maxConcurrency int
	callTimeout    time.Duration

	extractor      collab.Extractor
	lookup         collab.OptionLookup
	disambiguator  collab.Disambiguator
	composer       collab.Composer
	footer         resolve.FooterRenderer
	staticDefaults map[string]string
	resolvers      *resolve.Set
	batch          bool
}

// New constructs an Engine applying any provided options.
func New(options ...Option) *Engine {
	e := &Engine{
		logger:         zap.NewNop(),
		maxConcurrency: defaultMaxConcurrency,
		callTimeout:    defaultCallTimeout,
		batch:          true,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// Request describes one resolution run.
type Request struct {
	Schema *schema.Schema
	Text   string
}

// Run resolves every field of req.Schema against req.Text. Collaborator
// failures leave the affected field unresolved; only a cancelled context or an
// invalid request fails the run.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	if ctx == nil {
		return nil, errors.New("engine: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Schema == nil || req.Schema.Len() == 0 {
		return nil, errors.New("engine: schema is required")
	}

	runID := uuid.NewString()
	logger := e.logger.With(zap.String("run", runID))
	sch := req.Schema
	text := sanitize.Text(req.Text)
	store := resolve.NewStore()
	states := newTracker(sch.IDs())
	set := e.resolverSet(sch, logger)

	started := time.Now()
	for depth := 0; depth <= sch.MaxDepth(); depth++ {
		ids := sch.Level(depth)
		logger.Debug("wave start", zap.Int("wave", depth+1), zap.Int("fields", len(ids)))

		var group errgroup.Group
		group.SetLimit(e.maxConcurrency)

		for _, id := range ids {
			field, _ := sch.Field(id)
			if parentID, ok := sch.Parent(id); ok && states.get(parentID) != StateResolved {
				if err := e.shortCircuit(store, states, field); err != nil {
					return nil, err
				}
				logger.Debug("parent unresolved, skipping", zap.String("field", id), zap.String("parent", parentID))
				continue
			}
			if err := states.move(id, StateResolving); err != nil {
				return nil, err
			}
			group.Go(func() error {
				return e.resolveField(ctx, logger, set, states, store, resolve.Input{
					Field:  field,
					Text:   text,
					Schema: sch,
					Store:  store,
				})
			})
		}
		if err := group.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Debug("wave done", zap.Int("wave", depth+1))
	}

	result := newResult(runID, sch, store, states.snapshot())
	logger.Info("resolution finished",
		zap.Int("fields", sch.Len()),
		zap.Int("resolved", result.ResolvedCount()),
		zap.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

func (e *Engine) shortCircuit(store *resolve.Store, states *tracker, field schema.FieldDescriptor) error {
	if err := states.move(field.ID, StateUnresolved); err != nil {
		return err
	}
	value := resolve.Unresolved(field.ID)
	if err := store.Put(value); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

func (e *Engine) resolveField(ctx context.Context, logger *zap.Logger, set *resolve.Set, states *tracker, store *resolve.Store, in resolve.Input) error {
	value, err := set.Resolve(ctx, in)
	if err != nil {
		logger.Warn("field unresolved after collaborator failure",
			zap.String("field", in.Field.ID),
			zap.String("role", string(in.Field.Role)),
			zap.Error(err),
		)
		value = resolve.Unresolved(in.Field.ID)
	}
	value.FieldID = in.Field.ID

	if err := store.Put(value); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	next := StateUnresolved
	if value.Resolved() {
		next = StateResolved
	}
	return states.move(in.Field.ID, next)
}

// resolverSet builds the per-run resolver set. The batching extractor lives for
// one run only.
func (e *Engine) resolverSet(sch *schema.Schema, logger *zap.Logger) *resolve.Set {
	if e.resolvers != nil {
		return e.resolvers
	}

	var extractor collab.Extractor
	if e.extractor != nil {
		extractor = timedExtractor{inner: e.extractor, timeout: e.callTimeout}
		if e.batch {
			extractor = resolve.NewBatch(extractor, extractionTargets(sch))
		}
	}
	var lookup collab.OptionLookup
	if e.lookup != nil {
		lookup = timedLookup{inner: e.lookup, timeout: e.callTimeout}
	}
	var disambiguator collab.Disambiguator
	if e.disambiguator != nil {
		disambiguator = timedDisambiguator{inner: e.disambiguator, timeout: e.callTimeout}
	}
	var composer collab.Composer
	if e.composer != nil {
		composer = timedComposer{inner: e.composer, timeout: e.callTimeout}
	}

	return &resolve.Set{
		Extraction: &resolve.Extraction{Extractor: extractor},
		Dependent: &resolve.Dependent{
			Lookup:        lookup,
			Extractor:     extractor,
			Disambiguator: disambiguator,
		},
		Composite: &resolve.Composite{Composer: composer, Footer: e.footer, Logger: logger},
		Static:    &resolve.Static{Table: e.staticDefaults, Logger: logger},
		Declared:  resolve.Declared{},
	}
}

func extractionTargets(sch *schema.Schema) []schema.FieldDescriptor {
	var out []schema.FieldDescriptor
	for _, field := range sch.Fields() {
		if field.Role == schema.RolePlain {
			out = append(out, field)
		}
	}
	return out
}
