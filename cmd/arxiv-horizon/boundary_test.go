// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/arxiv-horizon/internal/arxiv"
	"github.com/pdiddy/arxiv-horizon/internal/boundary"
	"github.com/pdiddy/arxiv-horizon/internal/history"
	"github.com/pdiddy/arxiv-horizon/internal/jobs"
	"github.com/pdiddy/arxiv-horizon/pkg/types"
)

var newest = time.Date(2018, 1, 10, 12, 0, 0, 0, time.UTC)

// arxivServer serves n records published one per day, newest first.
func arxivServer(t *testing.T, n int) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, _ := strconv.Atoi(r.URL.Query().Get("start"))
		max, _ := strconv.Atoi(r.URL.Query().Get("max_results"))

		var b strings.Builder
		fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:opensearch="http://a9.com/-/spec/opensearch/1.1/">
  <title>ArXiv Query</title>
  <opensearch:totalResults>%d</opensearch:totalResults>
  <opensearch:startIndex>%d</opensearch:startIndex>
  <opensearch:itemsPerPage>%d</opensearch:itemsPerPage>
`, n, start, max)
		for i := start; i < start+max && i < n; i++ {
			stamp := newest.AddDate(0, 0, -i).Format(time.RFC3339)
			fmt.Fprintf(&b, `  <entry>
    <id>http://arxiv.org/abs/1801.%05dv1</id>
    <published>%s</published>
    <updated>%s</updated>
    <title>Paper %d</title>
    <summary>Abstract %d.</summary>
    <author><name>Author %d</name></author>
  </entry>
`, i, stamp, stamp, i, i, i)
		}
		b.WriteString("</feed>\n")
		w.Header().Set("Content-Type", "application/atom+xml")
		io.WriteString(w, b.String())
	}))
	t.Cleanup(ts.Close)
	return ts
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testEngine(t *testing.T, n int) *boundary.Engine {
	t.Helper()
	ts := arxivServer(t, n)
	client := arxiv.NewClient(types.ArxivConfig{BaseURL: ts.URL, Prune: true}, quietLogger())
	return boundary.New(client, types.BoundaryConfig{}, quietLogger())
}

func testSpec(cutoff time.Time) jobs.Spec {
	return jobs.Spec{
		Name: "cs-ai",
		Query: types.SearchQuery{
			SearchQuery: "cat:cs.AI",
			SortBy:      types.SortSubmittedDate,
			SortOrder:   types.SortDescending,
		},
		Cutoff: cutoff,
	}
}

func TestRunSearchRecordsHistory(t *testing.T) {
	engine := testEngine(t, 9)
	store, err := history.NewStore(types.HistoryConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	defer store.Close()

	cutoff := time.Date(2018, 1, 6, 0, 0, 0, 0, time.UTC)
	var out bytes.Buffer

	entry := runSearch(context.Background(), engine, store, testSpec(cutoff), quietLogger(), &out, true)
	require.Empty(t, entry.Error)
	require.NotNil(t, entry.Result)
	assert.Equal(t, 4, entry.Result.Offset)
	assert.Equal(t, 5, entry.Result.Count)
	assert.Contains(t, out.String(), "There are 9 total papers")
	assert.Contains(t, out.String(), "There have been 5 articles")
	assert.NotContains(t, out.String(), "Previous run")

	// A second run compares itself with the first.
	out.Reset()
	runSearch(context.Background(), engine, store, testSpec(cutoff), quietLogger(), &out, true)
	assert.Contains(t, out.String(), "Previous run #1")
	assert.Contains(t, out.String(), "(+0)")

	runs, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, history.OutcomeFound, runs[0].Outcome)
	assert.Equal(t, "cs-ai", runs[0].Name)
	assert.Equal(t, 5, runs[0].Count)
	assert.Equal(t, 9, runs[0].TotalCount)
}

func TestRunSearchNotFound(t *testing.T) {
	engine := testEngine(t, 9)
	store, err := history.NewStore(types.HistoryConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	defer store.Close()

	// Newer than every record.
	cutoff := newest.AddDate(0, 0, 1)
	var out bytes.Buffer
	entry := runSearch(context.Background(), engine, store, testSpec(cutoff), quietLogger(), &out, true)

	assert.Nil(t, entry.Result)
	assert.Equal(t, "BoundaryNotFound", entry.ErrorKind)
	assert.Contains(t, out.String(), "Search failed (BoundaryNotFound)")

	runs, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, history.OutcomeNotFound, runs[0].Outcome)
	assert.Equal(t, 9, runs[0].TotalCount)
}

func TestRunSearchWithoutHistory(t *testing.T) {
	engine := testEngine(t, 9)
	entry := runSearch(context.Background(), engine, nil, testSpec(time.Date(2018, 1, 6, 0, 0, 0, 0, time.UTC)), quietLogger(), io.Discard, false)
	require.NotNil(t, entry.Result)
	assert.Equal(t, 4, entry.Result.Offset)
}

func TestBoundaryCommand(t *testing.T) {
	ts := arxivServer(t, 9)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "arxiv-horizon.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`arxiv:
  base_url: %s
boundary:
  delay: 0s
history:
  dir: %s
log:
  level: error
`, ts.URL, filepath.Join(dir, "history"))), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", cfgPath, "boundary",
		"--query", "cat:cs.AI", "--cutoff", "2018-01-06", "--json"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		resetBoundaryFlags(t)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), `"offset": 4`)
	assert.Contains(t, out.String(), `"count": 5`)
	assert.FileExists(t, filepath.Join(dir, "history", "history.db"))
}

func resetBoundaryFlags(t *testing.T) {
	t.Helper()
	for _, name := range []string{"query", "jobs", "cutoff"} {
		require.NoError(t, boundaryCmd.Flags().Set(name, ""))
	}
	require.NoError(t, boundaryCmd.Flags().Set("json", "false"))
}

func TestBoundarySpecsNeedsQueryOrJobs(t *testing.T) {
	cmd := boundaryCmd
	resetBoundaryFlags(t)
	t.Cleanup(func() { resetBoundaryFlags(t) })

	_, err := boundarySpecs(cmd)
	assert.ErrorContains(t, err, "provide --query")

	require.NoError(t, cmd.Flags().Set("query", "cat:cs.AI"))
	_, err = boundarySpecs(cmd)
	assert.ErrorContains(t, err, "cutoff is empty")

	require.NoError(t, cmd.Flags().Set("cutoff", "January 6, 2018"))
	specs, err := boundarySpecs(cmd)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, time.Date(2018, 1, 6, 0, 0, 0, 0, time.UTC), specs[0].Cutoff)
	assert.Equal(t, types.SortDescending, specs[0].Query.SortOrder)

	require.NoError(t, cmd.Flags().Set("jobs", "jobs.yaml"))
	_, err = boundarySpecs(cmd)
	assert.ErrorContains(t, err, "not both")
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"not found", &boundary.SearchError{Err: &boundary.BoundaryNotFoundError{Reason: boundary.ReasonEmpty}}, "BoundaryNotFound"},
		{"timeout", &boundary.SearchError{Err: &boundary.TimeoutError{Last: &arxiv.TransportError{StatusCode: 503}}}, "Timeout"},
		{"transport", &boundary.SearchError{Err: &arxiv.TransportError{StatusCode: 400}}, "Transport"},
		{"malformed", &boundary.SearchError{Err: &arxiv.MalformedResponseError{Err: errors.New("bad xml")}}, "MalformedResponse"},
		{"cancelled", &boundary.SearchError{Err: context.Canceled}, "Cancelled"},
		{"other", errors.New("boom"), "Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorKind(tt.err))
		})
	}
}

func TestLastProbe(t *testing.T) {
	err := fmt.Errorf("job: %w", &boundary.SearchError{Probe: 2704, Err: errors.New("x")})
	assert.Equal(t, 2704, lastProbe(err))
	assert.Equal(t, 0, lastProbe(errors.New("x")))
}
