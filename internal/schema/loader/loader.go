package loader

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-adfeatures/pkg/schema"
)

// Loader implements schema.Loader by delegating to file, fs.FS, or HTTP
// strategies and validating the decoded document.
type Loader struct {
	fs        fs.FS
	http      *http.Client
	allowHTTP bool
	timeout   time.Duration
	profile   schema.Profile
}

var _ schema.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options schema.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var httpClient *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		httpClient = &clone
	case options.AllowHTTPFallback:
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:        options.FileSystem,
		http:      httpClient,
		allowHTTP: httpClient != nil,
		timeout:   timeout,
		profile:   options.Profile,
	}
}

// Load fetches the document behind src and returns the validated forest. Every
// failure is a *schema.SchemaLoadError; a partial schema is never returned.
func (l *Loader) Load(ctx context.Context, src schema.Source) (*schema.Schema, error) {
	if src == nil {
		return nil, schema.NotFound("", errors.New("schema loader: source is nil"))
	}
	location := src.Location()

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case schema.SourceKindFile:
		data, err = readLocal(ctx, nil, location)
	case schema.SourceKindFS:
		if l.fs == nil {
			return nil, schema.NotFound(location, errors.New("schema loader: no file system configured"))
		}
		data, err = readLocal(ctx, l.fs, location)
	case schema.SourceKindURL:
		if !l.allowHTTP {
			return nil, schema.NotFound(location, errors.New("schema loader: http support disabled"))
		}
		data, err = loadHTTP(ctx, l.http, location, l.timeout)
	default:
		err = errors.New("schema loader: unsupported source kind")
	}
	if err != nil {
		return nil, classify(location, err)
	}

	doc, err := schema.NewDocument(src, data)
	if err != nil {
		return nil, schema.Malformed(location, "%v", err)
	}
	return Parse(doc, l.profile)
}

// Parse decodes and validates an already fetched document.
func Parse(doc schema.Document, profile schema.Profile) (*schema.Schema, error) {
	groups, err := decode(doc)
	if err != nil {
		return nil, schema.Malformed(doc.Location(), "%v", err)
	}
	return schema.Build(doc.Location(), groups, profile)
}

// classify maps fetch failures onto the load error taxonomy. Documents that
// were read but cannot be a schema are malformed. Everything else left no
// document to parse: absent files, 404/410 responses (both wrap
// fs.ErrNotExist), transport failures and timeouts.
func classify(location string, err error) error {
	if errors.Is(err, errInvalidDocument) {
		return schema.Malformed(location, "%w", err)
	}
	return schema.NotFound(location, err)
}
