package payload

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-adfeatures/pkg/collab"
)

// Defaults are the marketplace identifiers used when overrides omit them.
type Defaults struct {
	CategoryID    string
	SubcategoryID string
	OfferType     string
	State         string
	Region        string
}

// FieldIDs names the fields the builder fills from side inputs.
type FieldIDs struct {
	Region string
	Phone  string
	Images string
}

// Option customises a Builder.
type Option func(*Builder)

// WithTranslator sets the translation collaborator for bilingual fields.
func WithTranslator(translator collab.Translator) Option {
	return func(b *Builder) {
		b.translator = translator
	}
}

// WithLanguages sets the primary and secondary language keys of bilingual
// values.
func WithLanguages(primary, secondary string) Option {
	return func(b *Builder) {
		if primary != "" {
			b.primaryLang = primary
		}
		if secondary != "" {
			b.secondaryLang = secondary
		}
	}
}

// WithDefaults sets the marketplace identifiers.
func WithDefaults(defaults Defaults) Option {
	return func(b *Builder) {
		b.defaults = defaults
	}
}

// WithFieldIDs overrides the side-input field ids.
func WithFieldIDs(ids FieldIDs) Option {
	return func(b *Builder) {
		if ids.Region != "" {
			b.fields.Region = ids.Region
		}
		if ids.Phone != "" {
			b.fields.Phone = ids.Phone
		}
		if ids.Images != "" {
			b.fields.Images = ids.Images
		}
	}
}

// WithCountryCode sets the phone country prefix.
func WithCountryCode(code string) Option {
	return func(b *Builder) {
		if code != "" {
			b.countryCode = code
		}
	}
}

// WithTranslateTimeout caps each translation call.
func WithTranslateTimeout(timeout time.Duration) Option {
	return func(b *Builder) {
		b.translateTimeout = timeout
	}
}

// WithStrict turns missing required fields into a ValidationError.
func WithStrict() Option {
	return func(b *Builder) {
		b.strict = true
	}
}

// WithoutShapeCheck skips the request schema check.
func WithoutShapeCheck() Option {
	return func(b *Builder) {
		b.shapeCheck = false
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}
