package resolve

import (
	"context"

	"github.com/goliatone/go-adfeatures/pkg/schema"
)

// Set is the resolver set keyed by role plus the fallback chain shared by all
// roles: primary resolver, static default against live options, declared
// default, unresolved.
type Set struct {
	Extraction Resolver
	Dependent  Resolver
	Composite  Resolver
	Static     Resolver
	Declared   Resolver
}

// Primary returns the resolver for role, or nil when the role has no primary
// strategy.
func (s *Set) Primary(role schema.Role) Resolver {
	if s == nil {
		return nil
	}
	switch role {
	case schema.RolePlain:
		return s.Extraction
	case schema.RoleDependentImmediate, schema.RoleDependentMultiSignal:
		return s.Dependent
	case schema.RoleTextComposite:
		return s.Composite
	default:
		return nil
	}
}

// Resolve runs the chain for one field. A primary collaborator failure is
// returned with an unresolved value and no fallback is consulted.
func (s *Set) Resolve(ctx context.Context, in Input) (ResolvedValue, error) {
	fieldID := in.Field.ID
	var candidates []ResolvedValue

	live := in
	if primary := s.Primary(in.Field.Role); primary != nil {
		value, err := primary.Resolve(ctx, in)
		if err != nil {
			return Unresolved(fieldID).withOptions(value.Options), err
		}
		value.FieldID = fieldID
		if value.Tier() == tierPrimary {
			return value, nil
		}
		candidates = append(candidates, value)
		if value.Options != nil {
			live.Field = in.Field.WithOptions(value.Options)
		}
	}

	for _, fallback := range []Resolver{s.Static, s.Declared} {
		if fallback == nil {
			continue
		}
		value, err := fallback.Resolve(ctx, live)
		if err != nil {
			continue
		}
		value.FieldID = fieldID
		candidates = append(candidates, value)
		if value.Resolved() {
			break
		}
	}

	merged := Merge(fieldID, candidates...)
	if merged.Options == nil && live.Field.IsDependent() && live.Field.Options != nil {
		merged = merged.withOptions(live.Field.Options)
	}
	return merged, nil
}
