// Package marketplace is the HTTP client of the classifieds partner API: the
// field schema, dependent option lists and advert submission.
package marketplace

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/goliatone/go-adfeatures/pkg/collab"
	"github.com/goliatone/go-adfeatures/pkg/schema"
)

const (
	service         = "marketplace"
	defaultTimeout  = 30 * time.Second
	maxErrorBody    = 4 << 10
	defaultCacheTTL = 10 * time.Minute
)

// Config configures the Client.
type Config struct {
	BaseURL       string
	APIKey        string
	CategoryID    string
	SubcategoryID string
	OfferType     string
	Lang          string
	Timeout       time.Duration
	// CacheTTL bounds how long dependent option lists are reused. Negative
	// disables the cache.
	CacheTTL   time.Duration
	CacheSize  int
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// StatusError reports a non-success HTTP status.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Body == "" {
		return fmt.Sprintf("marketplace: unexpected status %d", e.Status)
	}
	return fmt.Sprintf("marketplace: unexpected status %d: %s", e.Status, e.Body)
}

// Client calls the partner API. It implements collab.OptionLookup.
type Client struct {
	base   *url.URL
	cfg    Config
	http   *http.Client
	cache  *expirable.LRU[string, []schema.Option]
	logger *zap.Logger
}

var _ collab.OptionLookup = (*Client)(nil)

// New builds a Client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("marketplace: invalid base url %q", cfg.BaseURL)
	}
	if cfg.Lang == "" {
		cfg.Lang = "ru"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	} else if client.Timeout == 0 {
		clone := *client
		clone.Timeout = timeout
		client = &clone
	}

	c := &Client{base: base, cfg: cfg, http: client, logger: cfg.Logger}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if cfg.CacheTTL >= 0 {
		ttl := cfg.CacheTTL
		if ttl == 0 {
			ttl = defaultCacheTTL
		}
		c.cache = expirable.NewLRU[string, []schema.Option](cfg.CacheSize, nil, ttl)
	}
	return c, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// get issues an authenticated GET and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, op, path string, query url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return nil, collab.Wrap(service, op, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.cfg.APIKey+":")))
	}
	return c.do(op, req)
}

func (c *Client) do(op string, req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, collab.Wrap(service, op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, collab.Wrap(service, op, err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		c.logger.Warn("marketplace request failed",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
		)
		return nil, collab.Wrap(service, op, &StatusError{Status: resp.StatusCode, Body: snippet})
	}
	return body, nil
}

// IsNotFound reports whether err is a 404 from the partner API.
func IsNotFound(err error) bool {
	var status *StatusError
	return errors.As(err, &status) && status.Status == http.StatusNotFound
}

func decodeJSON(op string, raw []byte, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return collab.Wrap(service, op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
