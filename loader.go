package adfeatures

import (
	internalLoader "github.com/goliatone/go-adfeatures/internal/schema/loader"
	"github.com/goliatone/go-adfeatures/pkg/schema"
)

// NewLoader constructs a schema loader using the internal implementation while
// keeping the concrete type hidden from consumers.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	cfg := schema.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}

// ParseSchema decodes an already fetched document with the given profile.
func ParseSchema(doc schema.Document, profile schema.Profile) (*schema.Schema, error) {
	return internalLoader.Parse(doc, profile)
}
