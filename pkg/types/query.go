// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// SortField selects the arXiv sortBy parameter.
type SortField string

const (
	SortRelevance     SortField = "relevance"
	SortLastUpdated   SortField = "lastUpdatedDate"
	SortSubmittedDate SortField = "submittedDate"
)

// SortOrder selects the arXiv sortOrder parameter.
type SortOrder string

const (
	SortAscending  SortOrder = "ascending"
	SortDescending SortOrder = "descending"
)

// ParseSortField accepts the API spelling of a sort field, case-insensitively.
func ParseSortField(s string) (SortField, error) {
	for _, f := range []SortField{SortRelevance, SortLastUpdated, SortSubmittedDate} {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown sort field %q (want relevance, lastUpdatedDate or submittedDate)", s)
}

// ParseSortOrder accepts "ascending" or "descending", case-insensitively.
func ParseSortOrder(s string) (SortOrder, error) {
	for _, o := range []SortOrder{SortAscending, SortDescending} {
		if strings.EqualFold(s, string(o)) {
			return o, nil
		}
	}
	return "", fmt.Errorf("unknown sort order %q (want ascending or descending)", s)
}

// SearchQuery is the single unit of work passed to the search client.
// It is a value type; use At to derive a query for another window.
type SearchQuery struct {
	// SearchQuery is passed through verbatim as the search_query parameter
	// (e.g. "cat:cs.AI").
	SearchQuery string   `json:"search_query" yaml:"search_query"`
	IDList      []string `json:"id_list,omitempty" yaml:"id_list,omitempty"`

	Start      int       `json:"start" yaml:"start"`
	MaxResults int       `json:"max_results" yaml:"max_results"`
	SortBy     SortField `json:"sort_by" yaml:"sort_by"`
	SortOrder  SortOrder `json:"sort_order" yaml:"sort_order"`
}

// At returns a copy of q for the window [start, start+max).
func (q SearchQuery) At(start, max int) SearchQuery {
	q.Start = start
	q.MaxResults = max
	if q.IDList != nil {
		q.IDList = append([]string(nil), q.IDList...)
	}
	return q
}

// Validate reports whether q can be sent to the API.
func (q SearchQuery) Validate() error {
	if q.SearchQuery == "" && len(q.IDList) == 0 {
		return fmt.Errorf("query is empty: provide a search query or an id list")
	}
	if q.Start < 0 {
		return fmt.Errorf("start must not be negative, got %d", q.Start)
	}
	if q.MaxResults < 0 {
		return fmt.Errorf("max results must not be negative, got %d", q.MaxResults)
	}
	if q.SortBy != "" {
		if _, err := ParseSortField(string(q.SortBy)); err != nil {
			return err
		}
	}
	if q.SortOrder != "" {
		if _, err := ParseSortOrder(string(q.SortOrder)); err != nil {
			return err
		}
	}
	return nil
}

// Descending reports whether results arrive newest first. An unset order
// means descending, which is the API default.
func (q SearchQuery) Descending() bool {
	return q.SortOrder != SortAscending
}
