package engine

import (
	"github.com/goliatone/go-adfeatures/pkg/resolve"
	"github.com/goliatone/go-adfeatures/pkg/schema"
)

// FieldResult is the per-field outcome reported to callers, in the shape the
// post-config endpoint returns.
type FieldResult struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Type     schema.FieldType `json:"type"`
	Required bool             `json:"required"`
	Units    []string         `json:"units,omitempty"`
	Options  []schema.Option  `json:"options,omitempty"`
	Label    string           `json:"label"`
	LabelID  string           `json:"label_id,omitempty"`
	Unit     string           `json:"unit,omitempty"`
	Source   resolve.Source   `json:"source"`
	State    FieldState       `json:"state"`
}

// GroupResult groups field results the way the schema declares them.
type GroupResult struct {
	Title    string        `json:"title"`
	Features []FieldResult `json:"features"`
}

// Result is the outcome of one run. Every schema field appears exactly once.
type Result struct {
	RunID  string                `json:"run_id"`
	Groups []GroupResult         `json:"groups"`
	Store  *resolve.Store        `json:"-"`
	Schema *schema.Schema        `json:"-"`
	States map[string]FieldState `json:"-"`
}

func newResult(runID string, sch *schema.Schema, store *resolve.Store, states map[string]FieldState) *Result {
	result := &Result{RunID: runID, Store: store, Schema: sch, States: states}
	for _, group := range sch.Groups() {
		out := GroupResult{Title: group.Title, Features: make([]FieldResult, 0, len(group.Fields))}
		for _, field := range group.Fields {
			value, ok := store.Get(field.ID)
			if !ok {
				value = resolve.Unresolved(field.ID)
			}
			options := value.Options
			if options == nil {
				options = field.Options
			}
			out.Features = append(out.Features, FieldResult{
				ID:       field.ID,
				Title:    field.Title,
				Type:     field.Type,
				Required: field.Required,
				Units:    field.Units,
				Options:  options,
				Label:    value.Label,
				LabelID:  value.LabelID,
				Unit:     value.Unit,
				Source:   value.Source,
				State:    states[field.ID],
			})
		}
		result.Groups = append(result.Groups, out)
	}
	return result
}

// Field returns the result for id.
func (r *Result) Field(id string) (FieldResult, bool) {
	if r == nil {
		return FieldResult{}, false
	}
	for _, group := range r.Groups {
		for _, field := range group.Features {
			if field.ID == id {
				return field, true
			}
		}
	}
	return FieldResult{}, false
}

// Fields returns every field result in schema order.
func (r *Result) Fields() []FieldResult {
	if r == nil {
		return nil
	}
	var out []FieldResult
	for _, group := range r.Groups {
		out = append(out, group.Features...)
	}
	return out
}

// ResolvedCount returns how many fields ended resolved.
func (r *Result) ResolvedCount() int {
	count := 0
	for _, field := range r.Fields() {
		if field.State == StateResolved {
			count++
		}
	}
	return count
}
