// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jobs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-horizon/internal/boundary"
	"github.com/pdiddy/arxiv-horizon/pkg/types"
)

const sampleJobs = `defaults:
  sort_order: descending
jobs:
  - name: cs-ai
    query: cat:cs.AI
    cutoff: "2018-01-01"
  - query: "cat:cs.LG OR cat:stat.ML"
    cutoff: October 7, 1970
    sort_by: lastUpdatedDate
    sort_order: ascending
`

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRead(t *testing.T) {
	specs, err := Read(writeFile(t, sampleJobs))
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.Equal(t, "cs-ai", specs[0].Name)
	assert.Equal(t, types.SearchQuery{
		SearchQuery: "cat:cs.AI",
		SortBy:      types.SortSubmittedDate,
		SortOrder:   types.SortDescending,
	}, specs[0].Query)
	assert.Equal(t, time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), specs[0].Cutoff)

	// Unnamed jobs are named after their query.
	assert.Equal(t, "cat:cs.LG OR cat:stat.ML", specs[1].Name)
	assert.Equal(t, types.SortLastUpdated, specs[1].Query.SortBy)
	assert.Equal(t, types.SortAscending, specs[1].Query.SortOrder)
	assert.Equal(t, time.Date(1970, 10, 7, 0, 0, 0, 0, time.UTC), specs[1].Cutoff)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no jobs", "jobs: []\n", "no jobs"},
		{"bad yaml", "jobs: [\n", "parsing jobs file"},
		{"empty query", "jobs:\n  - cutoff: 2018-01-01\n", "query is empty"},
		{"bad cutoff", "jobs:\n  - query: cat:cs.AI\n    cutoff: not a date\n", "invalid cutoff"},
		{"missing cutoff", "jobs:\n  - query: cat:cs.AI\n", "cutoff is empty"},
		{"relevance sort", "jobs:\n  - query: cat:cs.AI\n    cutoff: 2018-01-01\n    sort_by: relevance\n", "date sort"},
		{"bad order", "jobs:\n  - query: cat:cs.AI\n    cutoff: 2018-01-01\n    sort_order: sideways\n", "unknown sort order"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(writeFile(t, tt.content))
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}

	_, err := Read(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading jobs file")
}

func TestParseCutoff(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2018-01-01", time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2018-01-01T05:00:00Z", time.Date(2018, 1, 1, 5, 0, 0, 0, time.UTC)},
		{"2018-01-01T00:00:00-05:00", time.Date(2018, 1, 1, 5, 0, 0, 0, time.UTC)},
		{" October 7, 1970 ", time.Date(1970, 10, 7, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCutoff(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestReportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	cutoff := time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC)
	r := Report{
		GeneratedAt: time.Date(2018, 4, 1, 0, 0, 0, 0, time.UTC),
		Entries: []Entry{
			{Name: "cs-ai", Query: "cat:cs.AI", Cutoff: cutoff, Result: &boundary.Result{Offset: 5407, Count: 5408, TotalCount: 9000, Probes: 6}},
			{Name: "cs-lg", Query: "cat:cs.LG", Cutoff: cutoff, ErrorKind: "Timeout", Error: "gave up", LastProbe: 1200},
		},
	}

	require.NoError(t, WriteReport(path, r))
	got, err := ReadReport(path)
	require.NoError(t, err)

	require.Len(t, got.Entries, 2)
	assert.Equal(t, 1, got.Failed())
	require.NotNil(t, got.Entries[0].Result)
	assert.Equal(t, 5407, got.Entries[0].Result.Offset)
	assert.Equal(t, 1200, got.Entries[1].LastProbe)
	assert.True(t, cutoff.Equal(got.Entries[0].Cutoff))
}
