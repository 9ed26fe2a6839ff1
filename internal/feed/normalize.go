// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feed converts raw arXiv Atom entries into canonical records.
package feed

import (
	"strings"
	"time"

	"github.com/mmcdole/gofeed/atom"
	ext "github.com/mmcdole/gofeed/extensions"

	"github.com/pdiddy/arxiv-horizon/pkg/types"
)

// arxivNS is the extension prefix gofeed assigns to
// http://arxiv.org/schemas/atom elements.
const arxivNS = "arxiv"

// Normalize builds a Record from one Atom entry. It never fails: fields the
// entry lacks come out as "" or the zero time. The entry is not modified, so
// normalizing it again yields an equal Record. When prune is set the
// derived fields (categories, links) are dropped.
func Normalize(entry *atom.Entry, prune bool) types.Record {
	if entry == nil {
		return types.Record{}
	}

	r := types.Record{
		ID:               extractID(entry.ID),
		Title:            trimNewlines(entry.Title),
		Summary:          trimNewlines(entry.Summary),
		Authors:          authorNames(entry.Authors),
		Affiliation:      extValue(entry.Extensions, "affiliation"),
		Published:        parseTime(entry.PublishedParsed, entry.Published),
		Updated:          parseTime(entry.UpdatedParsed, entry.Updated),
		SourceURL:        sourceURL(entry),
		PDFURL:           pdfURL(entry.Links),
		JournalReference: extValue(entry.Extensions, "journal_ref"),
		DOI:              extValue(entry.Extensions, "doi"),
		Comment:          trimNewlines(extValue(entry.Extensions, "comment")),
		PrimaryCategory:  extAttr(entry.Extensions, "primary_category", "term"),
		Categories:       categoryTerms(entry.Categories),
		Links:            links(entry.Links),
	}

	if prune {
		return r.Pruned()
	}
	return r
}

// IsAPIError reports whether entry is the error entry arXiv returns in place
// of results (its id points under /api/errors).
func IsAPIError(entry *atom.Entry) bool {
	return entry != nil && strings.Contains(entry.ID, "/api/errors")
}

func trimNewlines(s string) string {
	return strings.TrimRight(s, "\r\n")
}

// extractID pulls the versioned arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v2" → "2301.07041v2").
func extractID(idURL string) string {
	const prefix = "/abs/"
	if i := strings.Index(idURL, prefix); i >= 0 {
		return idURL[i+len(prefix):]
	}
	return strings.TrimSpace(idURL)
}

func authorNames(people []*atom.Person) []string {
	names := make([]string, 0, len(people))
	for _, p := range people {
		if p == nil {
			continue
		}
		names = append(names, strings.TrimSpace(p.Name))
	}
	return names
}

func parseTime(parsed *time.Time, raw string) time.Time {
	if parsed != nil {
		return parsed.UTC()
	}
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw)); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// pdfURL returns the href of the link titled "pdf", falling back to the
// first link typed application/pdf.
func pdfURL(ls []*atom.Link) string {
	var typed string
	for _, l := range ls {
		if l == nil {
			continue
		}
		if l.Title == "pdf" {
			return l.Href
		}
		if typed == "" && l.Type == "application/pdf" {
			typed = l.Href
		}
	}
	return typed
}

// sourceURL picks the alternate link, then any untyped link without a
// title, then the entry id.
func sourceURL(entry *atom.Entry) string {
	var fallback string
	for _, l := range entry.Links {
		if l == nil {
			continue
		}
		if l.Rel == "alternate" {
			return l.Href
		}
		if fallback == "" && l.Rel == "" && l.Title == "" {
			fallback = l.Href
		}
	}
	if fallback != "" {
		return fallback
	}
	return strings.TrimSpace(entry.ID)
}

func categoryTerms(cats []*atom.Category) []string {
	var terms []string
	for _, c := range cats {
		if c != nil && c.Term != "" {
			terms = append(terms, c.Term)
		}
	}
	return terms
}

func links(ls []*atom.Link) []types.Link {
	var out []types.Link
	for _, l := range ls {
		if l == nil {
			continue
		}
		out = append(out, types.Link{Href: l.Href, Rel: l.Rel, Type: l.Type, Title: l.Title})
	}
	return out
}

func extValue(exts ext.Extensions, name string) string {
	if e, ok := firstExt(exts, name); ok {
		return strings.TrimSpace(e.Value)
	}
	return ""
}

func extAttr(exts ext.Extensions, name, attr string) string {
	if e, ok := firstExt(exts, name); ok {
		return e.Attrs[attr]
	}
	return ""
}

func firstExt(exts ext.Extensions, name string) (ext.Extension, bool) {
	vals := exts[arxivNS][name]
	if len(vals) == 0 {
		return ext.Extension{}, false
	}
	return vals[0], true
}
