package schema

import "strings"

// Profile carries the marketplace knowledge that the schema document itself
// does not encode: which fields are extracted from text, which use static
// defaults, extra dependency edges and the signals used by multi-signal
// dependents. A zero Profile treats every root field as an extraction target.
type Profile struct {
	// Extract lists the extraction targets. Nil means every independent,
	// non image-list field is extracted.
	Extract []string `json:"extract,omitempty" yaml:"extract,omitempty"`
	// StaticDefaults maps a field id to a pre-configured option id.
	StaticDefaults map[string]string `json:"static_defaults,omitempty" yaml:"static_defaults,omitempty"`
	// Dependencies maps child id to parent id for documents that omit them.
	Dependencies map[string]string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	// MultiSignal maps a dependent field to its named signal fields.
	MultiSignal map[string]map[string]string `json:"multi_signal,omitempty" yaml:"multi_signal,omitempty"`
	// Composite lists fields produced by the text-composite chain.
	Composite []string `json:"composite,omitempty" yaml:"composite,omitempty"`
	// Types overrides the declared type of a field.
	Types map[string]FieldType `json:"types,omitempty" yaml:"types,omitempty"`
	// Formats tags fields that need identifier normalisation.
	Formats map[string]Format `json:"formats,omitempty" yaml:"formats,omitempty"`
}

// Merge returns a profile where entries from other override p.
func (p Profile) Merge(other Profile) Profile {
	out := Profile{
		Extract:        p.Extract,
		StaticDefaults: mergeStrings(p.StaticDefaults, other.StaticDefaults),
		Dependencies:   mergeStrings(p.Dependencies, other.Dependencies),
		Composite:      p.Composite,
	}
	if other.Extract != nil {
		out.Extract = append([]string(nil), other.Extract...)
	}
	if other.Composite != nil {
		out.Composite = append([]string(nil), other.Composite...)
	}
	if len(p.MultiSignal) > 0 || len(other.MultiSignal) > 0 {
		out.MultiSignal = make(map[string]map[string]string)
		for k, v := range p.MultiSignal {
			out.MultiSignal[k] = v
		}
		for k, v := range other.MultiSignal {
			out.MultiSignal[k] = v
		}
	}
	if len(p.Types) > 0 || len(other.Types) > 0 {
		out.Types = make(map[string]FieldType)
		for k, v := range p.Types {
			out.Types[k] = v
		}
		for k, v := range other.Types {
			out.Types[k] = v
		}
	}
	if len(p.Formats) > 0 || len(other.Formats) > 0 {
		out.Formats = make(map[string]Format)
		for k, v := range p.Formats {
			out.Formats[k] = v
		}
		for k, v := range other.Formats {
			out.Formats[k] = v
		}
	}
	return out
}

func (p Profile) extracts(id string) bool {
	if p.Extract == nil {
		return true
	}
	return containsID(p.Extract, id)
}

func (p Profile) isComposite(id string) bool {
	return containsID(p.Composite, id)
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if strings.TrimSpace(candidate) == id {
			return true
		}
	}
	return false
}

func mergeStrings(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
