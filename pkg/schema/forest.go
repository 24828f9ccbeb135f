package schema

import (
	"errors"
	"fmt"
	"strings"

	"ocm.software/open-component-model/bindings/go/dag"
)

// Schema is an immutable, validated forest of field descriptors. Every field
// has at most one parent and the parent relation is acyclic.
type Schema struct {
	location string
	groups   []Group
	order    []string
	fields   map[string]FieldDescriptor
	children map[string][]string
	depth    map[string]int
	maxDepth int
}

// New applies profile to the declared groups, assigns roles and validates the
// result. Any structural defect yields a malformed SchemaLoadError.
func New(groups []Group, profile Profile) (*Schema, error) {
	return Build("", groups, profile)
}

func Build(location string, groups []Group, profile Profile) (*Schema, error) {
	s := &Schema{
		location: location,
		fields:   make(map[string]FieldDescriptor),
		children: make(map[string][]string),
		depth:    make(map[string]int),
	}

	for gi, group := range groups {
		out := Group{Title: group.Title, Fields: make([]FieldDescriptor, 0, len(group.Fields))}
		for fi, field := range group.Fields {
			field = field.Clone()
			field.ID = strings.TrimSpace(field.ID)
			if field.ID == "" {
				return nil, Malformed(location, "group %d field %d: missing id", gi, fi)
			}
			if _, dup := s.fields[field.ID]; dup {
				return nil, Malformed(location, "field %s: duplicate id", field.ID)
			}
			if err := applyProfile(&field, profile); err != nil {
				return nil, Malformed(location, "field %s: %v", field.ID, err)
			}
			field.Group = group.Title
			s.fields[field.ID] = field
			s.order = append(s.order, field.ID)
			out.Fields = append(out.Fields, field)
		}
		s.groups = append(s.groups, out)
	}

	if err := s.link(); err != nil {
		return nil, &SchemaLoadError{Reason: ReasonMalformed, Location: location, Err: err}
	}
	if err := s.validate(); err != nil {
		return nil, &SchemaLoadError{Reason: ReasonMalformed, Location: location, Err: err}
	}
	return s, nil
}

func applyProfile(field *FieldDescriptor, profile Profile) error {
	if override, ok := profile.Types[field.ID]; ok {
		field.Type = override
	}
	if _, ok := ParseFieldType(string(field.Type)); !ok {
		return fmt.Errorf("unknown type %q", field.Type)
	}
	field.Type, _ = ParseFieldType(string(field.Type))

	if format, ok := profile.Formats[field.ID]; ok {
		field.Format = format
	}
	if field.DependsOn == "" {
		field.DependsOn = strings.TrimSpace(profile.Dependencies[field.ID])
	}
	if field.StaticDefaultOptionID == "" {
		field.StaticDefaultOptionID = strings.TrimSpace(profile.StaticDefaults[field.ID])
	}
	if signals, ok := profile.MultiSignal[field.ID]; ok && len(signals) > 0 {
		field.Signals = make(map[string]string, len(signals))
		for name, id := range signals {
			field.Signals[name] = id
		}
	}

	if field.Role != "" {
		switch field.Role {
		case RolePlain, RoleStaticDefault, RoleDependentImmediate, RoleDependentMultiSignal, RoleTextComposite:
			return nil
		default:
			return fmt.Errorf("unknown role %q", field.Role)
		}
	}

	switch {
	case profile.isComposite(field.ID):
		field.Role = RoleTextComposite
	case field.DependsOn != "" && len(field.Signals) > 0:
		field.Role = RoleDependentMultiSignal
	case field.DependsOn != "":
		field.Role = RoleDependentImmediate
	case field.Type == FieldTypeImageList:
		field.Role = RoleStaticDefault
	case profile.extracts(field.ID):
		field.Role = RolePlain
	default:
		field.Role = RoleStaticDefault
	}
	return nil
}

// link wires parent edges into a dag so that cycles are rejected as they are
// introduced, then records children and depth.
func (s *Schema) link() error {
	graph := dag.NewDirectedAcyclicGraph[string]()
	for _, id := range s.order {
		if err := graph.AddVertex(id); err != nil {
			return fmt.Errorf("field %s: %w", id, err)
		}
	}

	for _, id := range s.order {
		field := s.fields[id]
		if field.DependsOn == "" {
			continue
		}
		if field.DependsOn == id {
			return fmt.Errorf("field %s: depends on itself", id)
		}
		if _, ok := s.fields[field.DependsOn]; !ok {
			return fmt.Errorf("field %s: depends on unknown field %s", id, field.DependsOn)
		}
		if err := graph.AddEdge(id, field.DependsOn); err != nil {
			var cycle *dag.CycleError
			if errors.As(err, &cycle) {
				return fmt.Errorf("field %s: dependency cycle: %w", id, err)
			}
			return fmt.Errorf("field %s: %w", id, err)
		}
		s.children[field.DependsOn] = append(s.children[field.DependsOn], id)
	}
	if _, err := graph.TopologicalSort(); err != nil {
		return fmt.Errorf("dependency order: %w", err)
	}

	for _, id := range s.order {
		depth, err := s.walkDepth(id)
		if err != nil {
			return err
		}
		s.depth[id] = depth
		if depth > s.maxDepth {
			s.maxDepth = depth
		}
	}
	return nil
}

func (s *Schema) walkDepth(id string) (int, error) {
	seen := map[string]struct{}{id: {}}
	depth := 0
	current := s.fields[id].DependsOn
	for current != "" {
		if _, loop := seen[current]; loop {
			return 0, fmt.Errorf("field %s: dependency cycle through %s", id, current)
		}
		seen[current] = struct{}{}
		depth++
		current = s.fields[current].DependsOn
	}
	return depth, nil
}

func (s *Schema) validate() error {
	for _, id := range s.order {
		field := s.fields[id]
		switch field.Role {
		case RoleDependentImmediate, RoleDependentMultiSignal:
			if field.DependsOn == "" {
				return fmt.Errorf("field %s: role %s requires a parent", id, field.Role)
			}
		}
		if field.Type == FieldTypeDropdown && field.DependsOn == "" && len(field.Options) == 0 {
			return fmt.Errorf("field %s: dropdown without options", id)
		}
		for name, signal := range field.Signals {
			if _, ok := s.fields[signal]; !ok {
				return fmt.Errorf("field %s: signal %s references unknown field %s", id, name, signal)
			}
			if s.depth[signal] >= s.depth[id] {
				return fmt.Errorf("field %s: signal %s (%s) is not resolved before it", id, name, signal)
			}
		}
	}
	return nil
}

// Location reports where the schema was loaded from, if known.
func (s *Schema) Location() string {
	if s == nil {
		return ""
	}
	return s.location
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Field returns the descriptor for id.
func (s *Schema) Field(id string) (FieldDescriptor, bool) {
	if s == nil {
		return FieldDescriptor{}, false
	}
	field, ok := s.fields[id]
	if !ok {
		return FieldDescriptor{}, false
	}
	return field.Clone(), true
}

// Fields returns every descriptor in schema order.
func (s *Schema) Fields() []FieldDescriptor {
	if s == nil {
		return nil
	}
	out := make([]FieldDescriptor, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.fields[id].Clone())
	}
	return out
}

// IDs returns field ids in schema order.
func (s *Schema) IDs() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// Groups returns the declared groups with profile-applied descriptors.
func (s *Schema) Groups() []Group {
	if s == nil {
		return nil
	}
	out := make([]Group, 0, len(s.groups))
	for _, group := range s.groups {
		clone := Group{Title: group.Title, Fields: make([]FieldDescriptor, 0, len(group.Fields))}
		for _, field := range group.Fields {
			clone.Fields = append(clone.Fields, field.Clone())
		}
		out = append(out, clone)
	}
	return out
}

// Parent returns the parent id of id, if any.
func (s *Schema) Parent(id string) (string, bool) {
	if s == nil {
		return "", false
	}
	field, ok := s.fields[id]
	if !ok || field.DependsOn == "" {
		return "", false
	}
	return field.DependsOn, true
}

// Children returns the direct dependents of id in schema order.
func (s *Schema) Children(id string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.children[id]...)
}

// Depth is zero for roots and one more than the parent's depth otherwise.
func (s *Schema) Depth(id string) int {
	if s == nil {
		return 0
	}
	return s.depth[id]
}

// MaxDepth returns the deepest level in the forest.
func (s *Schema) MaxDepth() int {
	if s == nil {
		return 0
	}
	return s.maxDepth
}

// Level returns the ids at the given depth in schema order.
func (s *Schema) Level(depth int) []string {
	if s == nil {
		return nil
	}
	var ids []string
	for _, id := range s.order {
		if s.depth[id] == depth {
			ids = append(ids, id)
		}
	}
	return ids
}

// Roots returns the independent fields in schema order.
func (s *Schema) Roots() []string {
	return s.Level(0)
}

// Ancestors returns the chain from the root down to the parent of id.
func (s *Schema) Ancestors(id string) []string {
	if s == nil {
		return nil
	}
	var chain []string
	current := s.fields[id].DependsOn
	for current != "" {
		chain = append([]string{current}, chain...)
		current = s.fields[current].DependsOn
	}
	return chain
}
