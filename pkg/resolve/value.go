package resolve

import "github.com/goliatone/go-adfeatures/pkg/schema"

// Source records which resolver produced a value.
type Source string

const (
	SourceExtraction      Source = "extraction"
	SourceDependentLookup Source = "dependent-lookup"
	SourceStaticDefault   Source = "static-default"
	SourceDeclaredDefault Source = "declared-default"
	SourceUnresolved      Source = "unresolved"
)

// ResolvedValue is the terminal outcome for one field in one run. Values are
// never edited after creation; a fallback attempt produces a new value.
type ResolvedValue struct {
	FieldID string `json:"id"`
	Label   string `json:"label"`
	LabelID string `json:"label_id,omitempty"`
	Source  Source `json:"source"`
	Unit    string `json:"unit,omitempty"`
	// Options is the live option set the value was chosen from, populated for
	// dependent fields whose options are fetched at resolution time.
	Options []schema.Option `json:"options,omitempty"`
}

// Unresolved returns the empty value for fieldID.
func Unresolved(fieldID string) ResolvedValue {
	return ResolvedValue{FieldID: fieldID, Source: SourceUnresolved}
}

// Resolved reports whether the value carries a usable label.
func (v ResolvedValue) Resolved() bool {
	return v.Source != SourceUnresolved && v.Label != ""
}

// Tier is the precedence tier of the value; lower wins.
func (v ResolvedValue) Tier() int {
	if !v.Resolved() {
		return tierUnresolved
	}
	switch v.Source {
	case SourceExtraction, SourceDependentLookup:
		return tierPrimary
	case SourceStaticDefault:
		return tierStatic
	case SourceDeclaredDefault:
		return tierDeclared
	default:
		return tierUnresolved
	}
}

func (v ResolvedValue) withOptions(options []schema.Option) ResolvedValue {
	if options == nil {
		return v
	}
	v.Options = append([]schema.Option(nil), options...)
	return v
}
