// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-horizon/internal/arxiv"
	"github.com/pdiddy/arxiv-horizon/internal/boundary"
	"github.com/pdiddy/arxiv-horizon/internal/history"
	"github.com/pdiddy/arxiv-horizon/internal/jobs"
	"github.com/pdiddy/arxiv-horizon/internal/render"
)

var boundaryCmd = &cobra.Command{
	Use:   "boundary",
	Short: "Count results of a date-sorted query newer than a cutoff",
	Long: `Boundary finds the offset at which the date-sorted result set of an arXiv
query crosses a cutoff date. Records dated exactly at the cutoff count as
newer. With the default descending submittedDate sort the reported count is
the number of papers submitted on or after the cutoff.

Run a single search with --query and --cutoff, or a batch from a YAML jobs
file with --jobs. Each search is recorded in the history database unless
--no-history is given or history.disabled is set.`,
	Example: `  arxiv-horizon boundary --query cat:cs.AI --cutoff 2018-01-01
  arxiv-horizon boundary --query "ti:transformer" --cutoff "March 3, 2021" --json
  arxiv-horizon boundary --jobs jobs.yaml --report report.yaml`,
	RunE: runBoundary,
}

func init() {
	boundaryCmd.Flags().String("query", "", "arXiv search_query expression (e.g. cat:cs.AI)")
	boundaryCmd.Flags().String("cutoff", "", "cutoff date (2018-01-01, \"January 1, 2018\", RFC3339, ...)")
	boundaryCmd.Flags().String("sort-by", "submittedDate", "date field to sort by: submittedDate or lastUpdatedDate")
	boundaryCmd.Flags().String("sort-order", "descending", "sort order: descending or ascending")
	boundaryCmd.Flags().String("jobs", "", "YAML file listing searches to run instead of --query")
	boundaryCmd.Flags().String("report", "", "write a YAML report of the searches to this file")
	boundaryCmd.Flags().Bool("json", false, "print results as JSON")
	boundaryCmd.Flags().Bool("no-history", false, "do not record the search in the history database")
	boundaryCmd.Flags().Duration("delay", 0, "minimum interval between API calls (default 3s)")
	boundaryCmd.Flags().Int("min-window", 0, "step below which bisection stops and the span is scanned (default 100)")
	bindFlag(boundaryCmd, "boundary.delay", "delay")
	bindFlag(boundaryCmd, "boundary.min_window", "min-window")

	rootCmd.AddCommand(boundaryCmd)
}

func runBoundary(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	specs, err := boundarySpecs(cmd)
	if err != nil {
		return err
	}

	var store *history.Store
	noHistory, _ := cmd.Flags().GetBool("no-history")
	if !noHistory && !cfg.History.Disabled {
		store, err = history.NewStore(cfg.History)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	client := arxiv.NewClient(cfg.Arxiv, log)
	engine := boundary.New(client, cfg.Boundary, log)

	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	report := jobs.Report{GeneratedAt: time.Now().UTC()}
	for i, spec := range specs {
		if ctx.Err() != nil {
			break
		}
		if len(specs) > 1 && !asJSON {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "== %s\n", spec.Name)
		}
		entry := runSearch(ctx, engine, store, spec, log, out, !asJSON)
		report.Entries = append(report.Entries, entry)
	}

	if asJSON {
		var v any = report
		if len(report.Entries) == 1 {
			v = report.Entries[0]
		}
		if err := render.JSON(out, v); err != nil {
			return err
		}
	}
	if path, _ := cmd.Flags().GetString("report"); path != "" {
		if err := jobs.WriteReport(path, report); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if n := report.Failed(); n > 0 {
		if len(report.Entries) == 1 {
			return errors.New(report.Entries[0].Error)
		}
		return fmt.Errorf("%d of %d searches failed", n, len(report.Entries))
	}
	return nil
}

// boundarySpecs builds the searches to run from either --jobs or the
// single-search flags.
func boundarySpecs(cmd *cobra.Command) ([]jobs.Spec, error) {
	query, _ := cmd.Flags().GetString("query")
	jobsFile, _ := cmd.Flags().GetString("jobs")

	if jobsFile != "" {
		if query != "" {
			return nil, fmt.Errorf("use either --query or --jobs, not both")
		}
		return jobs.Read(jobsFile)
	}
	if query == "" {
		return nil, fmt.Errorf("provide --query and --cutoff, or --jobs FILE")
	}

	cutoff, _ := cmd.Flags().GetString("cutoff")
	sortBy, _ := cmd.Flags().GetString("sort-by")
	sortOrder, _ := cmd.Flags().GetString("sort-order")
	spec, err := jobs.Job{
		Query:     query,
		Cutoff:    cutoff,
		SortBy:    sortBy,
		SortOrder: sortOrder,
	}.Resolve(jobs.Defaults{})
	if err != nil {
		return nil, err
	}
	return []jobs.Spec{spec}, nil
}

// runSearch runs one boundary search, records it in store when store is
// non-nil, and prints a readable summary when verbose is set.
func runSearch(ctx context.Context, engine *boundary.Engine, store *history.Store, spec jobs.Spec, log logrus.FieldLogger, out io.Writer, verbose bool) jobs.Entry {
	q := spec.Query
	entry := jobs.Entry{Name: spec.Name, Query: q.SearchQuery, Cutoff: spec.Cutoff}

	var prev *history.Run
	if store != nil {
		p, ok, err := store.Previous(ctx, q.SearchQuery, string(q.SortBy), string(q.SortOrder), spec.Cutoff)
		if err != nil {
			log.WithError(err).Warn("reading history")
		} else if ok {
			prev = &p
		}
	}

	started := time.Now()
	res, err := engine.Find(ctx, q, spec.Cutoff)
	run := history.Run{
		Query:      q.SearchQuery,
		SortBy:     string(q.SortBy),
		SortOrder:  string(q.SortOrder),
		Cutoff:     spec.Cutoff,
		TotalCount: res.TotalCount,
		Probes:     res.Probes,
		Fetches:    res.Fetches,
		Retries:    res.Retries,
		Drift:      res.Drift,
		StartedAt:  started.UTC(),
		Duration:   time.Since(started),
	}
	if spec.Name != q.SearchQuery {
		run.Name = spec.Name
	}

	if err != nil {
		entry.ErrorKind = errorKind(err)
		entry.Error = err.Error()
		entry.LastProbe = lastProbe(err)
		run.Outcome = history.OutcomeFailed
		if boundary.IsNotFound(err) {
			run.Outcome = history.OutcomeNotFound
		}
		run.ErrorKind, run.Error, run.LastProbe = entry.ErrorKind, entry.Error, entry.LastProbe
		if verbose {
			fmt.Fprintf(out, "Search failed (%s) at probe offset %d: %v\n", entry.ErrorKind, entry.LastProbe, err)
		}
	} else {
		entry.Result = &res
		run.Outcome = history.OutcomeFound
		run.Offset, run.Count, run.LastProbe = res.Offset, res.Count, res.Offset
		if verbose {
			render.Result(out, q.SearchQuery, spec.Cutoff, res, prev)
		}
	}

	if store != nil && ctx.Err() == nil {
		id, err := store.Record(ctx, run)
		if err != nil {
			log.WithError(err).Warn("recording run in history")
		} else {
			log.WithField("run", id).Debug("run recorded")
		}
	}
	return entry
}

// errorKind names the error class for reports. Boundary-level outcomes win
// over the transport failure underneath them.
func errorKind(err error) string {
	kind := boundary.Kind(err)
	if kind != "Transport" && kind != "Error" {
		return kind
	}
	var malformed *arxiv.MalformedResponseError
	var transport *arxiv.TransportError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "Cancelled"
	case errors.As(err, &malformed):
		return "MalformedResponse"
	case errors.As(err, &transport):
		return "Transport"
	}
	return kind
}

func lastProbe(err error) int {
	var se *boundary.SearchError
	if errors.As(err, &se) {
		return se.Probe
	}
	return 0
}
