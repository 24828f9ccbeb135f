// Package sanitize strips markup from ad text and free-text labels before they
// reach prompts, the resolution store or the marketplace.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// Text removes every HTML element from raw and returns plain text with
// entities decoded. Line breaks are preserved.
func Text(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	cleaned := textSanitizer().Sanitize(trimmed)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

// Label is Text collapsed onto a single line.
func Label(raw string) string {
	return strings.Join(strings.Fields(Text(raw)), " ")
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}
