// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jobs reads batches of boundary searches from YAML and writes
// their outcomes back as a YAML report.
package jobs

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/arxiv-horizon/internal/boundary"
	"github.com/pdiddy/arxiv-horizon/pkg/types"
)

// File is the on-disk list of searches.
//
//	defaults:
//	  sort_by: submittedDate
//	jobs:
//	  - name: cs-ai
//	    query: cat:cs.AI
//	    cutoff: January 1, 2018
type File struct {
	Defaults Defaults `yaml:"defaults"`
	Jobs     []Job    `yaml:"jobs"`
}

// Defaults apply to every job that leaves a field empty.
type Defaults struct {
	SortBy    string `yaml:"sort_by,omitempty"`
	SortOrder string `yaml:"sort_order,omitempty"`
}

// Job is one search as written in the file.
type Job struct {
	Name      string `yaml:"name"`
	Query     string `yaml:"query"`
	Cutoff    string `yaml:"cutoff"`
	SortBy    string `yaml:"sort_by,omitempty"`
	SortOrder string `yaml:"sort_order,omitempty"`
}

// Spec is a validated job ready to run.
type Spec struct {
	Name   string
	Query  types.SearchQuery
	Cutoff time.Time
}

// Read loads and validates a jobs file.
func Read(path string) ([]Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading jobs file: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing jobs file: %w", err)
	}
	if len(f.Jobs) == 0 {
		return nil, fmt.Errorf("jobs file %s lists no jobs", path)
	}

	specs := make([]Spec, 0, len(f.Jobs))
	for i, j := range f.Jobs {
		spec, err := j.Resolve(f.Defaults)
		if err != nil {
			return nil, fmt.Errorf("job %d (%s): %w", i+1, j.Name, err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// Resolve fills defaults and parses the job's fields.
func (j Job) Resolve(d Defaults) (Spec, error) {
	if strings.TrimSpace(j.Query) == "" {
		return Spec{}, fmt.Errorf("query is empty")
	}
	cutoff, err := ParseCutoff(j.Cutoff)
	if err != nil {
		return Spec{}, err
	}

	sortBy, sortOrder := j.SortBy, j.SortOrder
	if sortBy == "" {
		sortBy = d.SortBy
	}
	if sortBy == "" {
		sortBy = string(types.SortSubmittedDate)
	}
	if sortOrder == "" {
		sortOrder = d.SortOrder
	}
	if sortOrder == "" {
		sortOrder = string(types.SortDescending)
	}

	by, err := types.ParseSortField(sortBy)
	if err != nil {
		return Spec{}, err
	}
	if by == types.SortRelevance {
		return Spec{}, fmt.Errorf("boundary search needs a date sort, not %q", by)
	}
	order, err := types.ParseSortOrder(sortOrder)
	if err != nil {
		return Spec{}, err
	}

	name := j.Name
	if name == "" {
		name = j.Query
	}
	return Spec{
		Name: name,
		Query: types.SearchQuery{
			SearchQuery: strings.TrimSpace(j.Query),
			SortBy:      by,
			SortOrder:   order,
		},
		Cutoff: cutoff,
	}, nil
}

// ParseCutoff accepts most human date spellings ("2018-01-01",
// "January 1, 2018", "01/02/2018"). Dates without a zone are UTC.
func ParseCutoff(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("cutoff is empty")
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cutoff %q: %w", s, err)
	}
	return t.UTC(), nil
}

// Report is the YAML summary of a jobs run.
type Report struct {
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Entries     []Entry   `json:"entries" yaml:"entries"`
}

// Entry is the outcome of one job.
type Entry struct {
	Name      string           `json:"name" yaml:"name"`
	Query     string           `json:"query" yaml:"query"`
	Cutoff    time.Time        `json:"cutoff" yaml:"cutoff"`
	Result    *boundary.Result `json:"result,omitempty" yaml:"result,omitempty"`
	ErrorKind string           `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Error     string           `json:"error,omitempty" yaml:"error,omitempty"`
	LastProbe int              `json:"last_probe,omitempty" yaml:"last_probe,omitempty"`
}

// Failed reports how many entries ended in an error.
func (r Report) Failed() int {
	n := 0
	for _, e := range r.Entries {
		if e.Error != "" {
			n++
		}
	}
	return n
}

// WriteReport saves r as YAML at path.
func WriteReport(path string, r Report) error {
	data, err := yaml.Marshal(&r)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadReport loads a report written by WriteReport.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading report: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing report: %w", err)
	}
	return &r, nil
}
