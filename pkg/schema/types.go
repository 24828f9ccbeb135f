package schema

import "strings"

// FieldType is the closed set of field kinds the engine understands.
type FieldType string

const (
	FieldTypeText          FieldType = "text"
	FieldTypeNumeric       FieldType = "numeric"
	FieldTypeDropdown      FieldType = "dropdown"
	FieldTypeBoolean       FieldType = "boolean"
	FieldTypeImageList     FieldType = "image-list"
	FieldTypeBilingualText FieldType = "bilingual-text"
)

var fieldTypeAliases = map[string]FieldType{
	"text":                        FieldTypeText,
	"textbox_text":                FieldTypeText,
	"textarea_text":               FieldTypeText,
	"numeric":                     FieldTypeNumeric,
	"textbox_numeric":             FieldTypeNumeric,
	"textbox_numeric_measurement": FieldTypeNumeric,
	"dropdown":                    FieldTypeDropdown,
	"drop_down_options":           FieldTypeDropdown,
	"boolean":                     FieldTypeBoolean,
	"checkbox":                    FieldTypeBoolean,
	"image-list":                  FieldTypeImageList,
	"upload_images":               FieldTypeImageList,
	"images":                      FieldTypeImageList,
	"bilingual-text":              FieldTypeBilingualText,
}

// ParseFieldType maps canonical names and marketplace aliases onto a FieldType.
func ParseFieldType(raw string) (FieldType, bool) {
	ft, ok := fieldTypeAliases[strings.ToLower(strings.TrimSpace(raw))]
	return ft, ok
}

// Format tags fields whose values need identifier-specific normalisation.
type Format string

const (
	FormatNone  Format = ""
	FormatVIN   Format = "vin"
	FormatPhone Format = "phone"
)

// Role selects the resolution strategy for a field. It is decided once when the
// schema is built and never re-checked per request.
type Role string

const (
	RolePlain                Role = "plain"
	RoleStaticDefault        Role = "static-default"
	RoleDependentImmediate   Role = "dependent-immediate"
	RoleDependentMultiSignal Role = "dependent-multi-signal"
	RoleTextComposite        Role = "text-composite"
)

// Option is a selectable value of a dropdown field.
type Option struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// DeclaredDefault is the default embedded in the schema document: either a
// literal value or a reference to one of the field's options.
type DeclaredDefault struct {
	Value  string  `json:"value,omitempty"`
	Option *Option `json:"option,omitempty"`
}

// IsZero reports whether the default carries nothing usable.
func (d *DeclaredDefault) IsZero() bool {
	if d == nil {
		return true
	}
	if d.Option != nil && (d.Option.ID != "" || d.Option.Title != "") {
		return false
	}
	return strings.TrimSpace(d.Value) == ""
}

// FieldDescriptor describes one attribute of the target schema. Descriptors are
// read-only once the schema is built; callers that need to mutate one must
// Clone it first.
type FieldDescriptor struct {
	ID                    string            `json:"id"`
	Title                 string            `json:"title"`
	Type                  FieldType         `json:"type"`
	Format                Format            `json:"format,omitempty"`
	Required              bool              `json:"required"`
	Units                 []string          `json:"units,omitempty"`
	Options               []Option          `json:"options,omitempty"`
	DependsOn             string            `json:"dependsOn,omitempty"`
	StaticDefaultOptionID string            `json:"staticDefaultOptionId,omitempty"`
	DeclaredDefault       *DeclaredDefault  `json:"declaredDefault,omitempty"`
	Role                  Role              `json:"role"`
	Signals               map[string]string `json:"signals,omitempty"`
	Group                 string            `json:"group,omitempty"`
}

// IsDependent reports whether the field has a parent.
func (f FieldDescriptor) IsDependent() bool {
	return f.DependsOn != ""
}

// OptionByID returns the option with the given id.
func (f FieldDescriptor) OptionByID(id string) (Option, bool) {
	return FindOptionByID(f.Options, id)
}

// AcceptsUnit reports whether unit is one of the field's accepted units.
func (f FieldDescriptor) AcceptsUnit(unit string) bool {
	for _, u := range f.Units {
		if strings.EqualFold(u, unit) {
			return true
		}
	}
	return false
}

// WithOptions returns a copy of the descriptor carrying a different option set,
// used when dependent options are fetched at resolution time.
func (f FieldDescriptor) WithOptions(options []Option) FieldDescriptor {
	clone := f.Clone()
	clone.Options = cloneOptions(options)
	return clone
}

// Clone returns a deep copy.
func (f FieldDescriptor) Clone() FieldDescriptor {
	clone := f
	if f.Units != nil {
		clone.Units = append([]string(nil), f.Units...)
	}
	clone.Options = cloneOptions(f.Options)
	if f.DeclaredDefault != nil {
		def := *f.DeclaredDefault
		if f.DeclaredDefault.Option != nil {
			opt := *f.DeclaredDefault.Option
			def.Option = &opt
		}
		clone.DeclaredDefault = &def
	}
	if f.Signals != nil {
		clone.Signals = make(map[string]string, len(f.Signals))
		for k, v := range f.Signals {
			clone.Signals[k] = v
		}
	}
	return clone
}

// FindOptionByID looks up an option by id.
func FindOptionByID(options []Option, id string) (Option, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Option{}, false
	}
	for _, opt := range options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

func cloneOptions(options []Option) []Option {
	if options == nil {
		return nil
	}
	return append([]Option(nil), options...)
}

// Group is a titled, ordered set of fields as declared by the schema document.
type Group struct {
	Title  string            `json:"title"`
	Fields []FieldDescriptor `json:"features"`
}
