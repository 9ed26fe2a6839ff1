// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv fetches single pages of search results from the arXiv API.
package arxiv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/arxiv-horizon/internal/feed"
	"github.com/pdiddy/arxiv-horizon/internal/httputil"
	"github.com/pdiddy/arxiv-horizon/pkg/types"
)

const (
	// DefaultBaseURL is the arXiv query endpoint.
	DefaultBaseURL   = "https://export.arxiv.org/api/query"
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "arxiv-horizon/dev"

	// errorBodyLimit bounds how much of a failed response is read for its message.
	errorBodyLimit = 64 << 10
)

// Client issues one page request per Fetch. Nothing is cached: the corpus
// grows while a search runs, so every call goes to the network.
type Client struct {
	HTTP   *http.Client
	Config types.ArxivConfig
	Log    logrus.FieldLogger
}

// NewClient returns a Client with an http.Client honoring cfg.Timeout.
func NewClient(cfg types.ArxivConfig, log logrus.FieldLogger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		HTTP:   &http.Client{Timeout: cfg.Timeout},
		Config: cfg,
		Log:    log,
	}
}

// Fetch requests the window q describes and returns it as a canonical Page.
// A non-success answer yields *TransportError and an unparseable one
// *MalformedResponseError.
func (c *Client) Fetch(ctx context.Context, q types.SearchQuery) (types.Page, error) {
	if err := q.Validate(); err != nil {
		return types.Page{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(q), nil)
	if err != nil {
		return types.Page{}, fmt.Errorf("creating request: %w", err)
	}
	ua := c.Config.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, c.Config.MaxRetries, c.Log)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return types.Page{}, err
		}
		return types.Page{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Page{}, &TransportError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body),
		}
	}

	f, err := feed.Parse(resp.Body)
	if err != nil {
		return types.Page{}, &MalformedResponseError{Err: err}
	}

	if len(f.Entries) == 1 && feed.IsAPIError(f.Entries[0]) {
		return types.Page{}, &TransportError{
			StatusCode: http.StatusBadRequest,
			Message:    strings.TrimSpace(f.Entries[0].Summary),
		}
	}

	meta, err := feed.ReadMeta(f)
	if err != nil {
		return types.Page{}, &MalformedResponseError{Err: err}
	}

	page := types.Page{
		Records:      make([]types.Record, 0, len(f.Entries)),
		TotalCount:   meta.TotalResults,
		StartIndex:   meta.StartIndex,
		ItemsPerPage: meta.ItemsPerPage,
	}
	for _, entry := range f.Entries {
		page.Records = append(page.Records, feed.Normalize(entry, c.Config.Prune))
	}
	return page, nil
}

func (c *Client) requestURL(q types.SearchQuery) string {
	base := c.Config.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	v := url.Values{}
	v.Set("search_query", q.SearchQuery)
	v.Set("id_list", strings.Join(q.IDList, ","))
	v.Set("start", strconv.Itoa(q.Start))
	v.Set("max_results", strconv.Itoa(q.MaxResults))
	if q.SortBy != "" {
		v.Set("sortBy", string(q.SortBy))
	}
	if q.SortOrder != "" {
		v.Set("sortOrder", string(q.SortOrder))
	}
	return base + "?" + v.Encode()
}

// errorMessage extracts the summary of an arXiv error entry from a failed
// response body, or returns "" when the body is not such a feed.
func errorMessage(body io.Reader) string {
	f, err := feed.Parse(io.LimitReader(body, errorBodyLimit))
	if err != nil {
		return ""
	}
	for _, entry := range f.Entries {
		if feed.IsAPIError(entry) {
			return strings.TrimSpace(entry.Summary)
		}
	}
	return ""
}
