package resolve

import (
	"strings"

	"github.com/goliatone/go-adfeatures/pkg/collab"
	"github.com/goliatone/go-adfeatures/pkg/schema"
)

// MatchOption finds the option best matching a free-text label: an exact
// case-insensitive title match first, then substring containment in either
// direction. Options are scanned in order, so the first containment hit wins.
func MatchOption(options []schema.Option, label string) (schema.Option, bool) {
	needle := normaliseTitle(label)
	if needle == "" {
		return schema.Option{}, false
	}
	for _, opt := range options {
		if normaliseTitle(opt.Title) == needle {
			return opt, true
		}
	}
	for _, opt := range options {
		title := normaliseTitle(opt.Title)
		if title == "" {
			continue
		}
		if strings.Contains(title, needle) || strings.Contains(needle, title) {
			return opt, true
		}
	}
	return schema.Option{}, false
}

// bindCandidate maps a collaborator candidate onto options. A label id that is
// not among the options is discarded and the label re-matched by title.
func bindCandidate(options []schema.Option, candidate collab.Candidate) (schema.Option, bool) {
	if opt, ok := schema.FindOptionByID(options, candidate.LabelID); ok {
		return opt, true
	}
	return MatchOption(options, candidate.Label)
}

func normaliseTitle(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}
