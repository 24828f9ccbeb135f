// Package adfeatures turns free-form classified ad text into marketplace
// features. The root package offers the shortest path from a schema source
// and ad text to a resolution result; the building blocks live under pkg/.
package adfeatures

import (
	"context"
	"errors"

	"github.com/goliatone/go-adfeatures/pkg/engine"
	"github.com/goliatone/go-adfeatures/pkg/payload"
	"github.com/goliatone/go-adfeatures/pkg/schema"
)

// Result aliases engine.Result for callers that only import the root package.
type Result = engine.Result

// Payload aliases payload.Payload.
type Payload = payload.Payload

// NewEngine exposes the engine constructor from the top-level module.
func NewEngine(options ...engine.Option) *engine.Engine {
	return engine.New(options...)
}

// NewPayloadBuilder exposes the payload builder constructor.
func NewPayloadBuilder(options ...payload.Option) *payload.Builder {
	return payload.New(options...)
}

// Resolve loads the schema behind src and resolves text against it.
func Resolve(ctx context.Context, src schema.Source, text string, loaderOptions []schema.LoaderOption, options ...engine.Option) (*Result, error) {
	if src == nil {
		return nil, errors.New("adfeatures: schema source is required")
	}
	sch, err := NewLoader(loaderOptions...).Load(ctx, src)
	if err != nil {
		return nil, err
	}
	return engine.New(options...).Run(ctx, engine.Request{Schema: sch, Text: text})
}

// BuildPayload resolves text and assembles the submission payload from the
// result and the caller overrides.
func BuildPayload(ctx context.Context, sch *schema.Schema, text string, ov payload.Overrides, eng *engine.Engine, builder *payload.Builder) (*Payload, *Result, error) {
	if eng == nil || builder == nil {
		return nil, nil, errors.New("adfeatures: engine and payload builder are required")
	}
	res, err := eng.Run(ctx, engine.Request{Schema: sch, Text: text})
	if err != nil {
		return nil, nil, err
	}
	p, err := builder.Build(ctx, sch, res.Store, ov)
	if err != nil {
		return nil, res, err
	}
	return p, res, nil
}
