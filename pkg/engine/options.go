package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-adfeatures/pkg/collab"
	"github.com/goliatone/go-adfeatures/pkg/resolve"
)

const (
	defaultMaxConcurrency = 4
	defaultCallTimeout    = 30 * time.Second
)

// Option customises the engine configuration.
type Option func(*Engine)

// WithLogger sets the structured logger. Nil keeps the no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMaxConcurrency bounds concurrent field resolutions within a wave.
func WithMaxConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxConcurrency = n
		}
	}
}

// WithCallTimeout caps every external collaborator call. Zero disables the cap.
func WithCallTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		if timeout >= 0 {
			e.callTimeout = timeout
		}
	}
}

// WithExtractor injects the extraction collaborator.
func WithExtractor(extractor collab.Extractor) Option {
	return func(e *Engine) {
		e.extractor = extractor
	}
}

// WithOptionLookup injects the dependent option lookup collaborator.
func WithOptionLookup(lookup collab.OptionLookup) Option {
	return func(e *Engine) {
		e.lookup = lookup
	}
}

// WithDisambiguator injects the multi-signal disambiguation collaborator.
func WithDisambiguator(disambiguator collab.Disambiguator) Option {
	return func(e *Engine) {
		e.disambiguator = disambiguator
	}
}

// WithComposer injects the collaborator driving text-composite fields.
func WithComposer(composer collab.Composer) Option {
	return func(e *Engine) {
		e.composer = composer
	}
}

// WithFooter sets the renderer used for the text-composite footer.
func WithFooter(footer resolve.FooterRenderer) Option {
	return func(e *Engine) {
		e.footer = footer
	}
}

// WithStaticDefaults overrides the static-default table. Entries win over the
// schema's staticDefaultOptionId.
func WithStaticDefaults(table map[string]string) Option {
	return func(e *Engine) {
		if len(table) == 0 {
			e.staticDefaults = nil
			return
		}
		e.staticDefaults = make(map[string]string, len(table))
		for k, v := range table {
			e.staticDefaults[k] = v
		}
	}
}

// WithResolvers replaces the resolver set built from the collaborators. The
// engine still applies scheduling, short-circuiting and state tracking.
func WithResolvers(set *resolve.Set) Option {
	return func(e *Engine) {
		e.resolvers = set
	}
}

// WithoutBatchExtraction makes every extraction target issue its own
// extraction call instead of sharing one call per run.
func WithoutBatchExtraction() Option {
	return func(e *Engine) {
		e.batch = false
	}
}
