// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/arxiv-horizon/internal/boundary"
	"github.com/pdiddy/arxiv-horizon/internal/history"
)

// Runs writes recorded boundary searches in the chosen format. CSL is not
// meaningful for runs and falls back to the table.
func Runs(w io.Writer, runs []history.Run, f Format) error {
	switch f {
	case FormatJSON:
		return JSON(w, runs)
	case FormatYAML:
		return YAML(w, runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No recorded runs.")
		return nil
	}
	fmt.Fprintf(w, "%-5s  %-19s  %-24s  %-10s  %-9s  %8s  %8s  %s\n",
		"ID", "Started", "Query", "Cutoff", "Outcome", "Count", "Total", "Probes")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, r := range runs {
		count := "-"
		if r.Outcome == history.OutcomeFound {
			count = fmt.Sprintf("%d", r.Count)
		}
		label := r.Query
		if r.Name != "" {
			label = r.Name
		}
		fmt.Fprintf(w, "%-5d  %-19s  %-24s  %-10s  %-9s  %8s  %8d  %d\n",
			r.ID, r.StartedAt.Local().Format("2006-01-02 15:04:05"), truncate(label, 24),
			r.Cutoff.Format("2006-01-02"), r.Outcome, count, r.TotalCount, r.Probes)
	}
	return nil
}

// Result writes the outcome of one boundary search for a person to read.
// prev, when non-nil, is the last successful run of the same search.
func Result(w io.Writer, query string, cutoff time.Time, res boundary.Result, prev *history.Run) {
	fmt.Fprintf(w, "There are %d total papers that match %q.\n", res.TotalCount, query)
	fmt.Fprintf(w, "Boundary offset: %d\n", res.Offset)
	if res.Boundary != nil {
		fmt.Fprintf(w, "Boundary record: %s (%s) %s\n",
			res.Boundary.ID, res.Boundary.Published.Format("2006-01-02"), truncate(oneLine(res.Boundary.Title), 60))
	}
	fmt.Fprintf(w, "There have been %d articles that match this query since %s.\n",
		res.Count, cutoff.Format("2006-01-02"))
	fmt.Fprintf(w, "(%d probes, %d requests, %d retries", res.Probes, res.Fetches, res.Retries)
	if res.Window > 0 {
		fmt.Fprintf(w, ", final window of %d", res.Window)
	}
	fmt.Fprintln(w, ")")
	if res.Drift > 0 {
		fmt.Fprintf(w, "warning: the result set grew by %d during the search; the count may be off by as much.\n", res.Drift)
	}
	if prev != nil {
		fmt.Fprintf(w, "Previous run #%d on %s counted %d (%+d).\n",
			prev.ID, prev.StartedAt.Local().Format("2006-01-02"), prev.Count, res.Count-prev.Count)
	}
}
