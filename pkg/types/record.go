// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for arxiv-horizon.
// Record and Page are the canonical shapes produced by the search client;
// SearchQuery is the unit of work it accepts.
package types

import (
	"strconv"
	"strings"
	"time"
)

// Link is one link element attached to a feed entry.
type Link struct {
	Href  string `json:"href" yaml:"href"`
	Rel   string `json:"rel,omitempty" yaml:"rel,omitempty"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// Record is one bibliographic entry. It is built once from a raw feed
// entry and never modified afterwards.
//
// Optional string fields use "" when the source omits them; they are always
// serialized so consumers never see a missing key.
type Record struct {
	// ID is the arXiv identifier including its version (e.g. "2301.07041v2").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title with trailing newlines removed.
	Title string `json:"title" yaml:"title"`

	// Summary is the abstract with trailing newlines removed.
	Summary string `json:"summary" yaml:"summary"`

	// Authors lists author names in feed order.
	Authors []string `json:"authors" yaml:"authors"`

	// Affiliation is the first author affiliation reported by the feed.
	Affiliation string `json:"affiliation" yaml:"affiliation"`

	// Published is the first-version submission time; the sort and cutoff key.
	Published time.Time `json:"published" yaml:"published"`

	// Updated is the latest-version time.
	Updated time.Time `json:"updated" yaml:"updated"`

	// SourceURL is the abstract page of the entry.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// PDFURL is the PDF link, empty when the feed provides none.
	PDFURL string `json:"pdf_url" yaml:"pdf_url"`

	JournalReference string `json:"journal_reference" yaml:"journal_reference"`
	DOI              string `json:"doi" yaml:"doi"`
	Comment          string `json:"comment" yaml:"comment"`

	// Derived fields. Pruning clears them.
	PrimaryCategory string   `json:"primary_category,omitempty" yaml:"primary_category,omitempty"`
	Categories      []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	Links           []Link   `json:"links,omitempty" yaml:"links,omitempty"`
}

// BaseID returns the identifier without its version suffix.
func (r Record) BaseID() string {
	if i := strings.LastIndex(r.ID, "v"); i > 0 {
		if _, err := strconv.Atoi(r.ID[i+1:]); err == nil {
			return r.ID[:i]
		}
	}
	return r.ID
}

// Pruned returns a copy of r without the derived fields.
func (r Record) Pruned() Record {
	r.PrimaryCategory = ""
	r.Categories = nil
	r.Links = nil
	return r
}

// Page is one fetched window of a result set.
type Page struct {
	// Records holds at most the requested number of entries, in result order.
	Records []Record `json:"records" yaml:"records"`

	// TotalCount is the number of matches reported by the source for this
	// request. The corpus is live, so it may differ between requests.
	TotalCount int `json:"total_count" yaml:"total_count"`

	// StartIndex and ItemsPerPage echo the window the source served.
	StartIndex   int `json:"start_index" yaml:"start_index"`
	ItemsPerPage int `json:"items_per_page" yaml:"items_per_page"`
}

// Empty reports whether the page holds no records.
func (p Page) Empty() bool {
	return len(p.Records) == 0
}
