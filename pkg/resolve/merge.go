package resolve

const (
	tierPrimary = iota + 1
	tierStatic
	tierDeclared
	tierUnresolved
)

// Merge picks the active value for fieldID among candidate attempts. The
// lowest tier wins: extraction or dependent lookup, then static default, then
// declared default, then unresolved. Within a tier the earliest candidate
// wins, so the outcome only depends on the inputs.
func Merge(fieldID string, candidates ...ResolvedValue) ResolvedValue {
	best := Unresolved(fieldID)
	bestTier := tierUnresolved
	for _, candidate := range candidates {
		if candidate.FieldID != "" && candidate.FieldID != fieldID {
			continue
		}
		tier := candidate.Tier()
		if tier < bestTier {
			best = candidate
			best.FieldID = fieldID
			bestTier = tier
		}
	}
	if bestTier == tierUnresolved {
		// carry live options forward even when nothing resolved
		for _, candidate := range candidates {
			if candidate.Options != nil && (candidate.FieldID == "" || candidate.FieldID == fieldID) {
				return Unresolved(fieldID).withOptions(candidate.Options)
			}
		}
	}
	return best
}
