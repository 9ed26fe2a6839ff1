// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/arxiv-horizon/internal/arxiv"
	"github.com/pdiddy/arxiv-horizon/internal/render"
	"github.com/pdiddy/arxiv-horizon/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch one page of normalized arXiv records",
	Long: `Fetch requests a single window of an arXiv query, or a list of arXiv
identifiers, and prints the normalized records. Use it to inspect what the
boundary search sees at a given offset.`,
	Example: `  arxiv-horizon fetch --query cat:cs.AI --start 5400 --max-results 10
  arxiv-horizon fetch --id 1801.00001 --id 1712.09999 --format csl`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("query", "", "arXiv search_query expression")
	fetchCmd.Flags().StringSlice("id", nil, "arXiv identifier to fetch (repeatable)")
	fetchCmd.Flags().Int("start", 0, "zero-based offset of the first record")
	fetchCmd.Flags().Int("max-results", 10, "number of records to fetch")
	fetchCmd.Flags().String("sort-by", "submittedDate", "sort field: relevance, lastUpdatedDate or submittedDate")
	fetchCmd.Flags().String("sort-order", "descending", "sort order: descending or ascending")
	fetchCmd.Flags().Bool("prune", true, "drop derived fields (categories, links) from records")
	fetchCmd.Flags().String("format", "table", "output format: table, json, yaml or csl")
	bindFlag(fetchCmd, "arxiv.prune", "prune")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}

	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := render.ParseFormat(formatFlag)
	if err != nil {
		return err
	}

	q, err := fetchQuery(cmd)
	if err != nil {
		return err
	}

	client := arxiv.NewClient(cfg.Arxiv, log)
	page, err := client.Fetch(cmd.Context(), q)
	if err != nil {
		return err
	}
	return render.Page(cmd.OutOrStdout(), page, q.Start, format)
}

func fetchQuery(cmd *cobra.Command) (types.SearchQuery, error) {
	query, _ := cmd.Flags().GetString("query")
	ids, _ := cmd.Flags().GetStringSlice("id")
	start, _ := cmd.Flags().GetInt("start")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	sortBy, _ := cmd.Flags().GetString("sort-by")
	sortOrder, _ := cmd.Flags().GetString("sort-order")

	by, err := types.ParseSortField(sortBy)
	if err != nil {
		return types.SearchQuery{}, err
	}
	order, err := types.ParseSortOrder(sortOrder)
	if err != nil {
		return types.SearchQuery{}, err
	}

	q := types.SearchQuery{
		SearchQuery: query,
		IDList:      ids,
		Start:       start,
		MaxResults:  maxResults,
		SortBy:      by,
		SortOrder:   order,
	}
	if err := q.Validate(); err != nil {
		return q, fmt.Errorf("fetch: %w", err)
	}
	return q, nil
}
