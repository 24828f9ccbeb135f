package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/goliatone/go-adfeatures/pkg/collab"
	"github.com/goliatone/go-adfeatures/pkg/payload"
)

// PublicAdvertURL is the fallback link when the API omits one.
const PublicAdvertURL = "https://999.md/ru/"

// Submission is the outcome of a successful advert creation.
type Submission struct {
	AdvertID string         `json:"advert_id"`
	URL      string         `json:"url"`
	Response map[string]any `json:"api_response,omitempty"`
}

// Submit posts the advert payload. It is the only call in the system with a
// user-visible side effect.
func (c *Client) Submit(ctx context.Context, p *payload.Payload) (*Submission, error) {
	if p == nil {
		return nil, errors.New("marketplace: payload is required")
	}
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marketplace: encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/adverts", nil), bytes.NewReader(body))
	if err != nil {
		return nil, collab.Wrap(service, "adverts", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	raw, err := c.do("adverts", req)
	if err != nil {
		return nil, err
	}
	var result map[string]any
	if err := decodeJSON("adverts", raw, &result); err != nil {
		return nil, err
	}

	sub := &Submission{Response: result}
	for _, key := range []string{"id", "advert_id"} {
		if id := stringify(result[key]); id != "" {
			sub.AdvertID = id
			break
		}
	}
	sub.URL = stringify(result["url"])
	if sub.URL == "" && sub.AdvertID != "" {
		sub.URL = PublicAdvertURL + sub.AdvertID
	}
	c.logger.Info("advert submitted", zap.String("advert_id", sub.AdvertID), zap.Int("features", len(p.Features)))
	return sub, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
