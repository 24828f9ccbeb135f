package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-adfeatures/internal/prompt"
	"github.com/goliatone/go-adfeatures/pkg/collab"
	"github.com/goliatone/go-adfeatures/pkg/resolve"
	"github.com/goliatone/go-adfeatures/pkg/schema"
)

var languageNames = map[string]string{
	"ro": "Romanian",
	"ru": "Russian",
	"en": "English",
}

// Extract implements collab.Extractor with one request for all fields.
// Replies that cannot be decoded count as "nothing found".
func (c *Client) Extract(ctx context.Context, text string, fields []schema.FieldDescriptor) (map[string]collab.Candidate, error) {
	if len(fields) == 0 {
		return map[string]collab.Candidate{}, nil
	}
	items := make([]map[string]any, 0, len(fields))
	for _, field := range fields {
		item := map[string]any{"id": field.ID, "title": field.Title, "type": string(field.Type)}
		if len(field.Units) > 0 {
			item["units"] = strings.Join(field.Units, ", ")
		}
		if len(field.Options) > 0 {
			item["options"] = optionsJSON(field.Options)
		}
		items = append(items, item)
	}
	system, err := c.render("extract", prompt.Extract, map[string]any{"fields": items})
	if err != nil {
		return nil, err
	}
	reply, err := c.complete(ctx, "extract", system, adText(text))
	if err != nil {
		return nil, err
	}

	var raw map[string]candidate
	if err := json.Unmarshal([]byte(cleanJSON(reply)), &raw); err != nil {
		c.logger.Warn("undecodable extraction reply", zap.Error(err))
		return map[string]collab.Candidate{}, nil
	}
	out := make(map[string]collab.Candidate, len(raw))
	for _, field := range fields {
		if cand, ok := raw[field.ID]; ok && !collab.Candidate(cand).Empty() {
			out[field.ID] = collab.Candidate(cand)
		}
	}
	return out, nil
}

// Choose implements collab.Extractor.
func (c *Client) Choose(ctx context.Context, text string, field schema.FieldDescriptor, options []schema.Option) (collab.Candidate, error) {
	system, err := c.render("choose", prompt.Choose, map[string]any{
		"field":   map[string]any{"id": field.ID, "title": field.Title},
		"options": optionsJSON(options),
	})
	if err != nil {
		return collab.Candidate{}, err
	}
	reply, err := c.complete(ctx, "choose", system, adText(text))
	if err != nil {
		return collab.Candidate{}, err
	}
	return c.candidate("choose", field.ID, reply), nil
}

// Disambiguate implements collab.Disambiguator.
func (c *Client) Disambiguate(ctx context.Context, field schema.FieldDescriptor, options []schema.Option, signals collab.Signals) (collab.Candidate, error) {
	names := make([]string, 0, len(signals))
	for name := range signals {
		names = append(names, name)
	}
	sort.Strings(names)
	list := make([]map[string]any, 0, len(names))
	var user strings.Builder
	for _, name := range names {
		list = append(list, map[string]any{"name": name, "value": signals[name]})
		fmt.Fprintf(&user, "%s: %s\n", name, signals[name])
	}

	system, err := c.render("disambiguate", prompt.Disambiguate, map[string]any{
		"field":   map[string]any{"id": field.ID, "title": field.Title},
		"signals": list,
		"options": optionsJSON(options),
	})
	if err != nil {
		return collab.Candidate{}, err
	}
	reply, err := c.complete(ctx, "disambiguate", system, user.String())
	if err != nil {
		return collab.Candidate{}, err
	}
	return c.candidate("disambiguate", field.ID, reply), nil
}

// Translate implements collab.Translator.
func (c *Client) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	language := languageNames[strings.ToLower(targetLang)]
	if language == "" {
		language = targetLang
	}
	system, err := c.render("translate", prompt.Translate, map[string]any{"language": language})
	if err != nil {
		return "", err
	}
	reply, err := c.complete(ctx, "translate", system, text)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// Compose implements collab.Composer for the description steps.
func (c *Client) Compose(ctx context.Context, step string, text string, inputs map[string]string) (map[string]string, error) {
	var name string
	switch step {
	case resolve.StepBlocks:
		name = prompt.Blocks
	case resolve.StepSummary:
		name = prompt.Summary
	case resolve.StepTransform:
		name = prompt.Transform
	default:
		return nil, fmt.Errorf("llm: unknown compose step %q", step)
	}
	data := make(map[string]any, len(inputs))
	for k, v := range inputs {
		data[k] = v
	}
	system, err := c.render(step, name, data)
	if err != nil {
		return nil, err
	}
	reply, err := c.complete(ctx, step, system, adText(text))
	if err != nil {
		return nil, err
	}
	out, err := parseStrings(reply)
	if err != nil {
		return nil, collab.Wrap(service, step, err)
	}
	return out, nil
}

func (c *Client) candidate(op, fieldID, reply string) collab.Candidate {
	cand, err := parseCandidate(reply)
	if err != nil {
		c.logger.Warn("undecodable reply", zap.String("op", op), zap.String("field", fieldID), zap.Error(err))
		return collab.Candidate{}
	}
	return cand
}

func optionsJSON(options []schema.Option) string {
	raw, err := json.Marshal(options)
	if err != nil {
		return "[]"
	}
	return string(raw)
}
