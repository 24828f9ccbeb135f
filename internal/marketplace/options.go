package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-adfeatures/internal/schema/loader"
	"github.com/goliatone/go-adfeatures/pkg/schema"
)

// Choice is an option as presented to form clients.
type Choice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Choices converts options to the client representation.
func Choices(options []schema.Option) []Choice {
	out := make([]Choice, 0, len(options))
	for _, opt := range options {
		out = append(out, Choice{ID: opt.ID, Name: opt.Title})
	}
	return out
}

// Features returns the raw field schema document of the configured category.
func (c *Client) Features(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "features", "/features", url.Values{
		"category_id":    {c.cfg.CategoryID},
		"subcategory_id": {c.cfg.SubcategoryID},
		"offer_type":     {c.cfg.OfferType},
		"lang":           {c.cfg.Lang},
	})
}

// Schema fetches and builds the field schema with profile applied.
func (c *Client) Schema(ctx context.Context, profile schema.Profile) (*schema.Schema, error) {
	raw, err := c.Features(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := schema.NewDocument(schema.SourceFromURL(c.endpoint("/features", nil)), raw)
	if err != nil {
		return nil, err
	}
	return loader.Parse(doc, profile)
}

// FieldOptions returns the static options of fieldID from the live schema,
// sorted by title.
func (c *Client) FieldOptions(ctx context.Context, fieldID string) ([]schema.Option, error) {
	raw, err := c.Features(ctx)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Groups []struct {
			Features []struct {
				ID      flexID      `json:"id"`
				Options []rawOption `json:"options"`
			} `json:"features"`
		} `json:"features_groups"`
	}
	if err := decodeJSON("features", raw, &doc); err != nil {
		return nil, err
	}
	for _, group := range doc.Groups {
		for _, feature := range group.Features {
			if string(feature.ID) == fieldID {
				return sortOptions(toOptions(feature.Options)), nil
			}
		}
	}
	return []schema.Option{}, nil
}

// DependentOptions returns the options of the fields depending on
// dependencyFieldID when parentOptionID is selected. Results are cached.
func (c *Client) DependentOptions(ctx context.Context, dependencyFieldID, parentOptionID string) ([]schema.Option, error) {
	parentOptionID = strings.TrimSpace(parentOptionID)
	if parentOptionID == "" || parentOptionID == "undefined" {
		return []schema.Option{}, nil
	}
	key := dependencyFieldID + "/" + parentOptionID
	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			return append([]schema.Option(nil), cached...), nil
		}
	}

	raw, err := c.get(ctx, "dependent_options", "/dependent_options", url.Values{
		"subcategory_id":        {c.cfg.SubcategoryID},
		"dependency_feature_id": {dependencyFieldID},
		"parent_option_id":      {parentOptionID},
		"lang":                  {c.cfg.Lang},
	})
	if err != nil {
		return nil, err
	}

	var list []rawOption
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := decodeJSON("dependent_options", trimmed, &list); err != nil {
			return nil, err
		}
	} else {
		var wrapped struct {
			Options []rawOption `json:"Options"`
		}
		if err := decodeJSON("dependent_options", trimmed, &wrapped); err != nil {
			return nil, err
		}
		list = wrapped.Options
	}

	options := sortOptions(toOptions(list))
	c.logger.Debug("dependent options",
		zap.String("dependency", dependencyFieldID),
		zap.String("parent", parentOptionID),
		zap.Int("count", len(options)),
	)
	if c.cache != nil {
		c.cache.Add(key, options)
	}
	return append([]schema.Option(nil), options...), nil
}

// ChildOptions implements collab.OptionLookup.
func (c *Client) ChildOptions(ctx context.Context, field schema.FieldDescriptor, parentOptionID string) ([]schema.Option, error) {
	return c.DependentOptions(ctx, field.DependsOn, parentOptionID)
}

type rawOption struct {
	ID    flexID `json:"id"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// flexID accepts numeric and string ids.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case string:
		*f = flexID(strings.TrimSpace(t))
	case float64:
		*f = flexID(strconv.FormatFloat(t, 'f', -1, 64))
	case nil:
		*f = ""
	default:
		*f = flexID(strings.TrimSpace(string(data)))
	}
	return nil
}

func toOptions(raw []rawOption) []schema.Option {
	out := make([]schema.Option, 0, len(raw))
	for _, opt := range raw {
		if opt.ID == "" {
			continue
		}
		title := strings.TrimSpace(opt.Title)
		if title == "" {
			title = strings.TrimSpace(opt.Value)
		}
		out = append(out, schema.Option{ID: string(opt.ID), Title: title})
	}
	return out
}

func sortOptions(options []schema.Option) []schema.Option {
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].Title < options[j].Title
	})
	return options
}
