package resolve

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-adfeatures/internal/sanitize"
	"github.com/goliatone/go-adfeatures/pkg/collab"
)

// Composite step names understood by collab.Composer implementations.
const (
	StepBlocks    = "blocks"
	StepSummary   = "summary"
	StepTransform = "transform"
)

// Description block names.
const (
	BlockAvailable = "available"
	BlockLocation  = "location"
	BlockVIN       = "vin"
	BlockCondition = "condition"
	BlockPossible  = "possible"
)

// DefaultAddress is used in the footer when the location block has none.
const DefaultAddress = "Bugeac, Pavlova 1A"

var blockOrder = []string{BlockAvailable, BlockLocation, BlockVIN, BlockCondition, BlockPossible}

// FooterRenderer renders the closing block appended to composed text.
type FooterRenderer interface {
	RenderFooter(address string) (string, error)
}

// Composite builds a long-form text field through a chain of collaborator
// steps: extract named blocks, summarise them, rewrite them into titled
// sections and append a footer. Only the blocks step is mandatory; later steps
// fall back to deterministic text built from the blocks.
type Composite struct {
	Composer collab.Composer
	Footer   FooterRenderer
	Logger   *zap.Logger
}

// Resolve implements Resolver.
func (c *Composite) Resolve(ctx context.Context, in Input) (ResolvedValue, error) {
	field := in.Field
	if c == nil || c.Composer == nil {
		return Unresolved(field.ID), errors.New("resolve: composer not configured")
	}
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("field", field.ID))

	raw, err := c.Composer.Compose(ctx, StepBlocks, in.Text, nil)
	if err != nil {
		return Unresolved(field.ID), collab.Wrap("composer", StepBlocks, err)
	}
	blocks := cleanBlocks(raw)
	if len(blocks) == 0 {
		return Unresolved(field.ID), nil
	}

	inputs := map[string]string{
		BlockAvailable: blocks[BlockAvailable],
		BlockCondition: blocks[BlockCondition],
		BlockPossible:  blocks[BlockPossible],
	}

	summary := ""
	if out, err := c.Composer.Compose(ctx, StepSummary, in.Text, inputs); err != nil {
		logger.Warn("summary step failed", zap.Error(err))
	} else {
		summary = strings.TrimSpace(out["summary"])
	}
	if summary == "" {
		summary = FallbackSummary(blocks)
	}

	body := ""
	if out, err := c.Composer.Compose(ctx, StepTransform, in.Text, inputs); err != nil {
		logger.Warn("transform step failed", zap.Error(err))
	} else {
		body = Sections(out)
	}
	if body == "" {
		body = JoinBlocks(blocks)
	}

	if c.Footer != nil {
		footer, err := c.Footer.RenderFooter(Address(blocks))
		if err != nil {
			logger.Warn("footer render failed", zap.Error(err))
		} else if footer = strings.TrimSpace(footer); footer != "" {
			body = body + "\n" + footer
		}
	}

	label := summary + "\n\n" + body
	return ResolvedValue{FieldID: field.ID, Label: label, Source: SourceExtraction}, nil
}

func cleanBlocks(raw map[string]string) map[string]string {
	out := make(map[string]string, len(raw))
	for name, value := range raw {
		if value = sanitize.Text(value); value != "" {
			out[name] = value
		}
	}
	return out
}

// Sections renders the transform step output under fixed headings.
func Sections(transformed map[string]string) string {
	var parts []string
	for _, section := range []struct{ key, title string }{
		{"condition", "СОСТОЯНИЕ:"},
		{"features", "КОМПЛЕКТАЦИЯ:"},
		{"advantages", "ПРЕИМУЩЕСТВА:"},
	} {
		if text := strings.TrimSpace(transformed[section.key]); text != "" {
			parts = append(parts, section.title+"\n"+text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// JoinBlocks concatenates the blocks in their canonical order.
func JoinBlocks(blocks map[string]string) string {
	var parts []string
	for _, name := range blockOrder {
		if text := strings.TrimSpace(blocks[name]); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Address returns the first clean line of the location block.
func Address(blocks map[string]string) string {
	for _, line := range strings.Split(blocks[BlockLocation], "\n") {
		line = strings.ReplaceAll(line, "📍", "")
		line = strings.TrimSpace(strings.ReplaceAll(line, "Мы находимся:", ""))
		if line == "" || strings.HasPrefix(line, "📞") || strings.HasPrefix(line, "+") {
			continue
		}
		return line
	}
	return DefaultAddress
}

// FallbackSummary derives a one-line summary from the available and condition
// blocks when the summary step yields nothing.
func FallbackSummary(blocks map[string]string) string {
	var brand, year string
	for _, line := range strings.Split(blocks[BlockAvailable], "\n") {
		if _, rest, ok := strings.Cut(line, "Марка:"); ok {
			brand = strings.TrimSpace(rest)
		} else if _, rest, ok := strings.Cut(line, "Год:"); ok {
			year = strings.TrimSpace(rest)
		}
	}

	condition := strings.ToLower(blocks[BlockCondition])
	state := "хорошее состояние"
	switch {
	case strings.Contains(condition, "идеальное состояние"):
		state = "идеальное состояние"
	case strings.Contains(condition, "свежепригнана"):
		state = "свежепригнанный"
	case strings.Contains(condition, "отличное состояние"):
		state = "отличное состояние"
	}

	if brand != "" && year != "" {
		return brand + " " + year + ", " + state + ". Надежный автомобиль с хорошей комплектацией."
	}
	return "Надежный автомобиль в хорошем состоянии с интересной комплектацией."
}
