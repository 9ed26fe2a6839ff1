// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render writes records, boundary results and run history for the CLI.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/arxiv-horizon/pkg/types"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatCSL   Format = "csl"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatYAML, FormatCSL:
		return f, nil
	case "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("unknown format %q (want table, json, yaml or csl)", s)
}

// Page writes a fetched page in the chosen format. offset is the page's
// start offset, used to number table rows.
func Page(w io.Writer, page types.Page, offset int, f Format) error {
	switch f {
	case FormatJSON:
		return JSON(w, page)
	case FormatYAML:
		return YAML(w, page)
	case FormatCSL:
		return CSL(w, page.Records)
	}
	RecordTable(w, page.Records, offset)
	fmt.Fprintf(w, "\n%d of %d results\n", len(page.Records), page.TotalCount)
	return nil
}

// RecordTable writes records as a human-readable table.
func RecordTable(w io.Writer, records []types.Record, offset int) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-6s  %-16s  %-10s  %-50s  %s\n",
		"Offset", "ID", "Published", "Title", "Authors")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, r := range records {
		published := ""
		if !r.Published.IsZero() {
			published = r.Published.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%-6d  %-16s  %-10s  %-50s  %s\n",
			offset+i, r.ID, published, truncate(oneLine(r.Title), 50), formatAuthors(r.Authors))
	}
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as YAML.
func YAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	enc.SetIndent(2)
	return enc.Encode(v)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

// oneLine folds the line breaks arXiv leaves inside long titles.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
