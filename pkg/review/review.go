// Package review lets a person complete and approve a resolution result in
// the terminal before the advert is submitted.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-adfeatures/pkg/collab"
	"github.com/goliatone/go-adfeatures/pkg/engine"
	"github.com/goliatone/go-adfeatures/pkg/payload"
	"github.com/goliatone/go-adfeatures/pkg/schema"
)

const skipOption = "(пропустить)"

// Option customises a Reviewer.
type Option func(*Reviewer)

// WithOptionLookup fetches options for dependent dropdowns that the run left
// without any.
func WithOptionLookup(lookup collab.OptionLookup) Option {
	return func(r *Reviewer) {
		r.lookup = lookup
	}
}

// WithOptionalFields also prompts for unresolved optional fields.
func WithOptionalFields() Option {
	return func(r *Reviewer) {
		r.optional = true
	}
}

// Reviewer drives the review prompts.
type Reviewer struct {
	driver   PromptDriver
	lookup   collab.OptionLookup
	optional bool
}

// New constructs a Reviewer on driver.
func New(driver PromptDriver, options ...Option) *Reviewer {
	r := &Reviewer{driver: driver}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Fill prompts for the fields res left unresolved and returns the answers as
// caller features. Image fields are never prompted.
func (r *Reviewer) Fill(ctx context.Context, res *engine.Result) ([]payload.FeatureValue, error) {
	if r == nil || r.driver == nil {
		return nil, errors.New("review: prompt driver is required")
	}
	if res == nil {
		return nil, errors.New("review: result is required")
	}

	// chosen tracks option ids picked in this session so dependent fields can
	// look up their options.
	chosen := make(map[string]string)
	for _, field := range res.Fields() {
		if field.LabelID != "" {
			chosen[field.ID] = field.LabelID
		}
	}

	var out []payload.FeatureValue
	for _, field := range res.Fields() {
		if field.State == engine.StateResolved || field.Type == schema.FieldTypeImageList {
			continue
		}
		if !field.Required && !r.optional {
			continue
		}
		value, err := r.ask(ctx, res, field, chosen)
		if err != nil {
			return nil, err
		}
		if value.Value == "" {
			continue
		}
		if field.Type == schema.FieldTypeDropdown {
			chosen[field.ID] = value.Value
		}
		out = append(out, value)
	}
	return out, nil
}

func (r *Reviewer) ask(ctx context.Context, res *engine.Result, field engine.FieldResult, chosen map[string]string) (payload.FeatureValue, error) {
	title := field.Title
	if field.Required {
		title += " *"
	}
	fv := payload.FeatureValue{ID: field.ID}

	switch field.Type {
	case schema.FieldTypeDropdown:
		options, err := r.options(ctx, res, field, chosen)
		if err != nil {
			return fv, err
		}
		if len(options) == 0 {
			id, err := r.driver.Input(ctx, InputConfig{Message: title + " (id опции)"})
			fv.Value = strings.TrimSpace(id)
			return fv, err
		}
		labels := make([]string, 0, len(options)+1)
		if !field.Required {
			labels = append(labels, skipOption)
		}
		for _, opt := range options {
			labels = append(labels, opt.Title)
		}
		idx, err := r.driver.Select(ctx, SelectConfig{Message: title, Options: labels, PageSize: 15})
		if err != nil {
			return fv, err
		}
		if !field.Required {
			idx--
		}
		if idx >= 0 && idx < len(options) {
			fv.Value = options[idx].ID
		}
		return fv, nil

	case schema.FieldTypeBoolean:
		yes, err := r.driver.Confirm(ctx, ConfirmConfig{Message: title})
		fv.Value = fmt.Sprint(yes)
		return fv, err

	case schema.FieldTypeNumeric:
		raw, err := r.driver.Input(ctx, InputConfig{Message: title, Validator: numeric(field.Required)})
		if err != nil {
			return fv, err
		}
		fv.Value = strings.TrimSpace(raw)
		if fv.Value != "" && len(field.Units) > 1 {
			idx, err := r.driver.Select(ctx, SelectConfig{Message: title + ": единица", Options: field.Units})
			if err != nil {
				return fv, err
			}
			if idx >= 0 && idx < len(field.Units) {
				fv.Unit = field.Units[idx]
			}
		}
		return fv, nil

	case schema.FieldTypeBilingualText:
		text, err := r.driver.TextArea(ctx, TextAreaConfig{Message: title})
		fv.Value = strings.TrimSpace(text)
		return fv, err

	default:
		cfg := InputConfig{Message: title}
		if descriptor, ok := res.Schema.Field(field.ID); ok && descriptor.Format == schema.FormatVIN {
			cfg.Validator = vin(field.Required)
		}
		text, err := r.driver.Input(ctx, cfg)
		fv.Value = strings.TrimSpace(text)
		return fv, err
	}
}

func (r *Reviewer) options(ctx context.Context, res *engine.Result, field engine.FieldResult, chosen map[string]string) ([]schema.Option, error) {
	if len(field.Options) > 0 || r.lookup == nil || res.Schema == nil {
		return field.Options, nil
	}
	parent, ok := res.Schema.Parent(field.ID)
	if !ok || chosen[parent] == "" {
		return nil, nil
	}
	descriptor, _ := res.Schema.Field(field.ID)
	options, err := r.lookup.ChildOptions(ctx, descriptor, chosen[parent])
	if err != nil {
		return nil, fmt.Errorf("review: options for %s: %w", field.ID, err)
	}
	return options, nil
}

// Confirm lists the payload and asks whether to submit it. It returns
// ErrDeclined when the user says no.
func (r *Reviewer) Confirm(ctx context.Context, sch *schema.Schema, p *payload.Payload) error {
	if p == nil {
		return errors.New("review: payload is required")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Категория %s/%s, тип %s\n", p.CategoryID, p.SubcategoryID, p.OfferType)
	for _, feature := range p.Features {
		title := feature.ID
		if sch != nil {
			if field, ok := sch.Field(feature.ID); ok {
				title = field.Title
			}
		}
		value := fmt.Sprint(feature.Value)
		if feature.Unit != "" {
			value += " " + feature.Unit
		}
		fmt.Fprintf(&b, "  %s: %s\n", title, value)
	}
	for _, issue := range p.Issues {
		fmt.Fprintf(&b, "  ! %s\n", issue)
	}
	if err := r.driver.Info(ctx, strings.TrimRight(b.String(), "\n")); err != nil {
		return err
	}
	ok, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Опубликовать объявление?"})
	if err != nil {
		return err
	}
	if !ok {
		return ErrDeclined
	}
	return nil
}

func numeric(required bool) func(string) error {
	return func(raw string) error {
		if strings.TrimSpace(raw) == "" {
			if required {
				return errors.New("value is required")
			}
			return nil
		}
		if _, err := payload.ParseInt(raw); err != nil {
			return errors.New("enter a whole number")
		}
		return nil
	}
}

func vin(required bool) func(string) error {
	return func(raw string) error {
		if strings.TrimSpace(raw) == "" && !required {
			return nil
		}
		if _, ok := payload.NormalizeVIN(raw); !ok {
			return errors.New("enter a 17 character VIN")
		}
		return nil
	}
}
