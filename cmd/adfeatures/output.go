package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/goliatone/go-adfeatures/internal/marketplace"
	"github.com/goliatone/go-adfeatures/pkg/engine"
	"github.com/goliatone/go-adfeatures/pkg/payload"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func checkOutput(format string) error {
	switch format {
	case outputTable, outputJSON:
		return nil
	default:
		return fmt.Errorf("adfeatures: unknown output format %q", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	return t
}

func renderResult(w io.Writer, res *engine.Result) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Group", "ID", "Title", "Value", "Unit", "Source", "State"})
	for _, group := range res.Groups {
		for _, field := range group.Features {
			value := field.Label
			if field.LabelID != "" {
				value = fmt.Sprintf("%s (%s)", field.Label, field.LabelID)
			}
			t.AppendRow(table.Row{group.Title, field.ID, field.Title, truncate(value, 60), field.Unit, field.Source, field.State})
		}
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, AutoMerge: true}})
	t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d resolved", res.ResolvedCount())})
	t.Render()
	fmt.Fprintf(w, "run %s\n", res.RunID)
}

func renderIssues(w io.Writer, issues []payload.Issue) {
	if len(issues) == 0 {
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Issue", "Reason"})
	for _, issue := range issues {
		t.AppendRow(table.Row{issue.FieldID, issue.Kind, issue.Reason})
	}
	t.Render()
}

func renderChoices(w io.Writer, choices []marketplace.Choice) {
	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name"})
	for _, choice := range choices {
		t.AppendRow(table.Row{choice.ID, choice.Name})
	}
	t.Render()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
