// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed/atom"
	ext "github.com/mmcdole/gofeed/extensions"
)

const openSearchNS = "opensearch"

// Meta is the opensearch result-set metadata of an arXiv feed.
type Meta struct {
	TotalResults int
	StartIndex   int
	ItemsPerPage int
}

// Parse decodes an arXiv Atom document.
//
// arXiv nests <arxiv:affiliation> inside <author>, which the Atom person
// construct drops. Those values are copied onto each entry as arxiv
// "affiliation" extensions, in author order.
func Parse(r io.Reader) (*atom.Feed, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading feed: %w", err)
	}
	fp := &atom.Parser{}
	f, err := fp.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	attachAffiliations(f, data)
	return f, nil
}

type authorDoc struct {
	Entries []struct {
		Authors []struct {
			Affiliations []string `xml:"http://arxiv.org/schemas/atom affiliation"`
		} `xml:"http://www.w3.org/2005/Atom author"`
	} `xml:"http://www.w3.org/2005/Atom entry"`
}

func attachAffiliations(f *atom.Feed, data []byte) {
	var doc authorDoc
	// gofeed already accepted the document; a failure here only costs the
	// affiliations.
	if err := xml.Unmarshal(data, &doc); err != nil || len(doc.Entries) != len(f.Entries) {
		return
	}
	for i, e := range doc.Entries {
		entry := f.Entries[i]
		for _, a := range e.Authors {
			for _, aff := range a.Affiliations {
				aff = strings.TrimSpace(aff)
				if aff == "" {
					continue
				}
				if entry.Extensions == nil {
					entry.Extensions = ext.Extensions{}
				}
				if entry.Extensions[arxivNS] == nil {
					entry.Extensions[arxivNS] = map[string][]ext.Extension{}
				}
				entry.Extensions[arxivNS]["affiliation"] = append(entry.Extensions[arxivNS]["affiliation"],
					ext.Extension{Name: "affiliation", Value: aff})
			}
		}
	}
}

// ReadMeta extracts the opensearch counters from a parsed feed.
// totalResults is required; the other two default to zero.
func ReadMeta(f *atom.Feed) (Meta, error) {
	if f == nil {
		return Meta{}, fmt.Errorf("nil feed")
	}
	total, ok, err := openSearchInt(f, "totalResults")
	if err != nil {
		return Meta{}, err
	}
	if !ok {
		return Meta{}, fmt.Errorf("feed has no opensearch:totalResults")
	}
	start, _, err := openSearchInt(f, "startIndex")
	if err != nil {
		return Meta{}, err
	}
	perPage, _, err := openSearchInt(f, "itemsPerPage")
	if err != nil {
		return Meta{}, err
	}
	return Meta{TotalResults: total, StartIndex: start, ItemsPerPage: perPage}, nil
}

func openSearchInt(f *atom.Feed, name string) (int, bool, error) {
	vals := f.Extensions[openSearchNS][name]
	if len(vals) == 0 {
		return 0, false, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(vals[0].Value))
	if err != nil {
		return 0, true, fmt.Errorf("opensearch:%s %q is not a number", name, vals[0].Value)
	}
	return n, true, nil
}
