package payload

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-adfeatures/pkg/collab"
	"github.com/goliatone/go-adfeatures/pkg/resolve"
	"github.com/goliatone/go-adfeatures/pkg/schema"
)

const (
	defaultPrimaryLang      = "ru"
	defaultSecondaryLang    = "ro"
	defaultCountryCode      = "373"
	defaultTranslateTimeout = 30 * time.Second
)

// Builder assembles submission payloads. A Builder is safe for concurrent use.
type Builder struct {
	translator       collab.Translator
	primaryLang      string
	secondaryLang    string
	countryCode      string
	defaults         Defaults
	fields           FieldIDs
	translateTimeout time.Duration
	strict           bool
	shapeCheck       bool
	logger           *zap.Logger
}

// New constructs a Builder with marketplace defaults.
func New(options ...Option) *Builder {
	b := &Builder{
		primaryLang:   defaultPrimaryLang,
		secondaryLang: defaultSecondaryLang,
		countryCode:   defaultCountryCode,
		defaults: Defaults{
			CategoryID:    "658",
			SubcategoryID: "659",
			OfferType:     "776",
			Region:        "12",
		},
		fields:           FieldIDs{Region: "5", Phone: "16", Images: "14"},
		translateTimeout: defaultTranslateTimeout,
		shapeCheck:       true,
		logger:           zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(b)
	}
	return b
}

// Build assembles the payload. Writes happen in a fixed order and the last
// write for a field id wins: resolved values in schema order, images, caller
// features, region, phone. The default region is written only when neither
// the store nor the caller supplied one.
func (b *Builder) Build(ctx context.Context, sch *schema.Schema, store resolve.Reader, ov Overrides) (*Payload, error) {
	if sch == nil {
		return nil, &ValidationError{Reason: "schema is required"}
	}
	if store == nil {
		return nil, &ValidationError{Reason: "resolution store is required"}
	}

	p := &Payload{
		CategoryID:    firstNonEmpty(ov.CategoryID, b.defaults.CategoryID),
		SubcategoryID: firstNonEmpty(ov.SubcategoryID, b.defaults.SubcategoryID),
		OfferType:     firstNonEmpty(ov.OfferType, b.defaults.OfferType),
		State:         b.defaults.State,
	}
	if p.CategoryID == "" || p.SubcategoryID == "" || p.OfferType == "" {
		return nil, &ValidationError{Reason: "category, subcategory and offer type are required"}
	}

	w := newWriter()

	for _, field := range sch.Fields() {
		if field.Type == schema.FieldTypeImageList || field.ID == b.fields.Images {
			continue
		}
		value, ok := store.Get(field.ID)
		if !ok || !value.Resolved() {
			continue
		}
		feature, issue := b.convert(ctx, field, value)
		if issue != nil {
			p.Issues = append(p.Issues, *issue)
			continue
		}
		w.put(feature)
	}

	if images := cleanList(ov.Images); len(images) > 0 {
		w.put(Feature{ID: b.fields.Images, Value: images})
	}

	for _, fv := range ov.Features {
		fv.ID = strings.TrimSpace(fv.ID)
		if fv.ID == "" || strings.TrimSpace(fv.Value) == "" {
			continue
		}
		feature, issue := b.fromCaller(ctx, sch, store, fv)
		if issue != nil {
			p.Issues = append(p.Issues, *issue)
			continue
		}
		w.put(feature)
	}

	if region := strings.TrimSpace(ov.Region); region != "" {
		w.put(Feature{ID: b.fields.Region, Value: region})
	} else if region = strings.TrimSpace(b.defaults.Region); region != "" && !w.has(b.fields.Region) {
		w.put(Feature{ID: b.fields.Region, Value: region})
	}
	if region, ok := w.byID[b.fields.Region].Value.(string); ok {
		p.Region = region
	}

	if strings.TrimSpace(ov.Phone) != "" {
		if phone, ok := NormalizePhone(ov.Phone, b.countryCode); ok {
			w.put(Feature{ID: b.fields.Phone, Value: []string{phone}})
		} else {
			p.Issues = append(p.Issues, Issue{FieldID: b.fields.Phone, Kind: IssueDropped, Reason: "invalid phone number"})
		}
	}

	p.Features = w.flatten(sch.IDs())

	var missing []Issue
	for _, field := range sch.Fields() {
		if field.Required && !w.has(field.ID) {
			missing = append(missing, Issue{FieldID: field.ID, Kind: IssueMissingRequired, Reason: field.Title})
		}
	}
	p.Issues = append(p.Issues, missing...)
	for _, issue := range p.Issues {
		b.logger.Debug("payload issue", zap.String("field", issue.FieldID), zap.String("kind", string(issue.Kind)), zap.String("reason", issue.Reason))
	}

	if b.strict && len(missing) > 0 {
		return nil, &ValidationError{Reason: "required fields missing", Issues: missing}
	}
	if b.shapeCheck {
		if err := CheckShape(p); err != nil {
			return nil, &ValidationError{Reason: "payload does not match the request schema", Err: err}
		}
	}
	return p, nil
}

// convert applies the per-type rules to a resolved value.
func (b *Builder) convert(ctx context.Context, field schema.FieldDescriptor, value resolve.ResolvedValue) (Feature, *Issue) {
	label := strings.TrimSpace(value.Label)
	feature := Feature{ID: field.ID}
	drop := func(reason string) (Feature, *Issue) {
		return Feature{}, &Issue{FieldID: field.ID, Kind: IssueDropped, Reason: reason}
	}

	if label == "" && value.LabelID == "" {
		return drop("empty value")
	}

	switch field.Type {
	case schema.FieldTypeBilingualText:
		feature.Value = b.bilingual(ctx, label)
	case schema.FieldTypeNumeric:
		n, err := ParseInt(label)
		if err != nil {
			return drop(fmt.Sprintf("%q is not an integer", label))
		}
		feature.Value = n
	case schema.FieldTypeBoolean:
		feature.Value = ParseBool(label)
	case schema.FieldTypeDropdown:
		if value.LabelID == "" {
			return drop(fmt.Sprintf("%q matches no option", label))
		}
		feature.Value = value.LabelID
	case schema.FieldTypeImageList:
		images := cleanList(strings.Split(label, ","))
		if len(images) == 0 {
			return drop("no images")
		}
		feature.Value = images
	default:
		switch field.Format {
		case schema.FormatVIN:
			vin, ok := NormalizeVIN(label)
			if !ok {
				return drop("invalid VIN")
			}
			feature.Value = vin
		case schema.FormatPhone:
			phone, ok := NormalizePhone(label, b.countryCode)
			if !ok {
				return drop("invalid phone number")
			}
			feature.Value = []string{phone}
		default:
			feature.Value = label
		}
	}

	feature.Unit = PickUnit(value.Unit, field.Units)
	return feature, nil
}

// fromCaller converts a caller-supplied feature. Schema fields go through the
// same rules as resolved values; unknown ids pass through as strings.
func (b *Builder) fromCaller(ctx context.Context, sch *schema.Schema, store resolve.Reader, fv FeatureValue) (Feature, *Issue) {
	field, known := sch.Field(fv.ID)
	if !known {
		if fv.ID == b.fields.Phone {
			phone, ok := NormalizePhone(fv.Value, b.countryCode)
			if !ok {
				return Feature{}, &Issue{FieldID: fv.ID, Kind: IssueDropped, Reason: "invalid phone number"}
			}
			return Feature{ID: fv.ID, Value: []string{phone}}, nil
		}
		return Feature{ID: fv.ID, Value: strings.TrimSpace(fv.Value), Unit: strings.TrimSpace(fv.Unit)}, nil
	}

	value := resolve.ResolvedValue{FieldID: field.ID, Label: fv.Value, Unit: fv.Unit, Source: resolve.SourceExtraction}
	if field.Type == schema.FieldTypeDropdown {
		options := field.Options
		if resolved, ok := store.Get(field.ID); ok && resolved.Options != nil {
			options = resolved.Options
		}
		switch opt, ok := schema.FindOptionByID(options, fv.Value); {
		case ok:
			value.Label, value.LabelID = opt.Title, opt.ID
		case len(options) == 0 && field.IsDependent():
			// options of dependent fields are only known to the caller
			value.LabelID = strings.TrimSpace(fv.Value)
		default:
			if opt, ok := resolve.MatchOption(options, fv.Value); ok {
				value.Label, value.LabelID = opt.Title, opt.ID
			}
		}
	}
	return b.convert(ctx, field, value)
}

func (b *Builder) bilingual(ctx context.Context, primary string) map[string]string {
	secondary := ""
	if b.translator != nil {
		tctx, cancel := context.WithCancel(ctx)
		if b.translateTimeout > 0 {
			tctx, cancel = context.WithTimeout(ctx, b.translateTimeout)
		}
		translated, err := b.translator.Translate(tctx, primary, b.secondaryLang)
		cancel()
		if err != nil {
			b.logger.Warn("translation failed, using primary text", zap.Error(err))
		}
		secondary = strings.TrimSpace(translated)
	}
	if secondary == "" {
		secondary = primary
	}
	return map[string]string{b.primaryLang: primary, b.secondaryLang: secondary}
}

type writer struct {
	byID  map[string]Feature
	order []string
}

func newWriter() *writer {
	return &writer{byID: make(map[string]Feature)}
}

func (w *writer) put(f Feature) {
	if _, exists := w.byID[f.ID]; !exists {
		w.order = append(w.order, f.ID)
	}
	w.byID[f.ID] = f
}

func (w *writer) has(id string) bool {
	_, ok := w.byID[id]
	return ok
}

// flatten orders schema fields first, then the rest in first-write order.
func (w *writer) flatten(schemaOrder []string) []Feature {
	out := make([]Feature, 0, len(w.byID))
	seen := make(map[string]struct{}, len(w.byID))
	for _, id := range schemaOrder {
		if f, ok := w.byID[id]; ok {
			out = append(out, f)
			seen[id] = struct{}{}
		}
	}
	for _, id := range w.order {
		if _, done := seen[id]; done {
			continue
		}
		out = append(out, w.byID[id])
	}
	return out
}

func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
