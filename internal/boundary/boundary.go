// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package boundary locates the offset at which a date-sorted result set
// crosses a cutoff date, using only offset/limit pagination.
//
// The source offers no date filter, so the search bisects over single-record
// probes until the unresolved span is small, then reads that span in one
// window and scans it. Each call waits on a rate limiter so consecutive
// requests stay at least Delay apart.
package boundary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/pdiddy/arxiv-horizon/pkg/types"
)

const (
	defaultMaxEmptyRetries = 10
	defaultMaxElapsed      = 2 * time.Minute
)

// Fetcher returns one page of a result set. The arXiv client implements it;
// tests use an in-memory corpus.
type Fetcher interface {
	Fetch(ctx context.Context, q types.SearchQuery) (types.Page, error)
}

// Relation places a record relative to the cutoff. A record dated exactly
// at the cutoff counts as newer.
type Relation int

const (
	RelationUnknown Relation = iota
	RelationNewer
	RelationOlder
)

func (r Relation) String() string {
	switch r {
	case RelationNewer:
		return "newer"
	case RelationOlder:
		return "older"
	}
	return "unknown"
}

func relationOf(date, cutoff time.Time) Relation {
	if date.Before(cutoff) {
		return RelationOlder
	}
	return RelationNewer
}

// State is the bisection state of one search.
type State struct {
	Probe  int
	Step   int
	Cutoff time.Time
	Last   Relation

	// Lo is the last offset known to lie before the boundary crossing, Hi
	// the first offset known to lie after it (TotalCount while unknown).
	Lo int
	Hi int
}

// Result is the outcome of a successful search.
type Result struct {
	// Offset is the boundary offset: the last record before the crossing.
	// For a descending sort that is the oldest record not older than the
	// cutoff.
	Offset int `json:"offset" yaml:"offset"`

	// Count is the number of records before the crossing (Offset+1).
	Count int `json:"count" yaml:"count"`

	// TotalCount is the result-set size read when the search started.
	TotalCount int `json:"total_count" yaml:"total_count"`

	// Probes counts single-record positions examined; Fetches counts every
	// request including retries and the final window; Retries counts
	// repeated requests only.
	Probes  int `json:"probes" yaml:"probes"`
	Fetches int `json:"fetches" yaml:"fetches"`
	Retries int `json:"retries" yaml:"retries"`

	// Window is the size of the final linear scan, 0 when bisection alone
	// resolved the boundary.
	Window int `json:"window" yaml:"window"`

	// Drift is how far the total count grew while the search ran.
	Drift int `json:"drift" yaml:"drift"`

	// Boundary is the record at Offset when it was observed.
	Boundary *types.Record `json:"boundary,omitempty" yaml:"boundary,omitempty"`
}

// Engine runs boundary searches against a Fetcher. Searches on one Engine
// share its rate limiter and must not run concurrently.
type Engine struct {
	fetcher Fetcher
	cfg     types.BoundaryConfig
	log     logrus.FieldLogger
	limiter *rate.Limiter
}

// New returns an Engine. A zero MinWindow bisects all the way down; zero
// retry limits take the defaults (10 attempts, 2 minutes).
func New(f Fetcher, cfg types.BoundaryConfig, log logrus.FieldLogger) *Engine {
	if cfg.MaxEmptyRetries <= 0 {
		cfg.MaxEmptyRetries = defaultMaxEmptyRetries
	}
	if cfg.MaxElapsed <= 0 {
		cfg.MaxElapsed = defaultMaxElapsed
	}
	if cfg.MinWindow < 0 {
		cfg.MinWindow = 0
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}

	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}
	return &Engine{
		fetcher: f,
		cfg:     cfg,
		log:     log,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// search carries the state of one Find call.
type search struct {
	*Engine
	query  types.SearchQuery
	cutoff time.Time
	desc   bool
	state  State
	result Result
	loRec  *types.Record
}

// Find locates the boundary offset of q's result set for cutoff. q must be
// sorted by submittedDate or lastUpdatedDate, and records are compared on
// the matching date; its Start and MaxResults are ignored.
//
// A cutoff outside the span of the result set yields
// *BoundaryNotFoundError. Every error is wrapped in *SearchError.
func (e *Engine) Find(ctx context.Context, q types.SearchQuery, cutoff time.Time) (Result, error) {
	s := &search{
		Engine: e,
		query:  q,
		cutoff: cutoff,
		desc:   q.Descending(),
		state:  State{Cutoff: cutoff},
	}
	res, err := s.run(ctx)
	if err != nil {
		return res, &SearchError{Probe: s.state.Probe, State: s.state, Err: err}
	}
	return res, nil
}

func (s *search) run(ctx context.Context) (Result, error) {
	if s.cutoff.IsZero() {
		return s.result, fmt.Errorf("cutoff is not set")
	}
	switch s.query.SortBy {
	case types.SortSubmittedDate, types.SortLastUpdated:
	default:
		return s.result, fmt.Errorf("sort by %q: %w", s.query.SortBy, errNotDateSorted)
	}

	// The first probe snapshots the total count and checks record 0.
	first, err := s.probe(ctx, 0, true)
	if err != nil {
		return s.result, err
	}
	if first == nil {
		return s.result, s.notFound(ReasonEmpty)
	}
	total := s.result.TotalCount
	s.log.WithFields(logrus.Fields{
		"total":  total,
		"cutoff": s.cutoff.Format(time.RFC3339),
	}).Info("result set size")

	if !s.ahead(*first) {
		return s.result, s.notFound(ReasonNoneAhead)
	}
	s.state.Lo, s.state.Hi = 0, total
	s.loRec = first

	for {
		if err := ctx.Err(); err != nil {
			return s.result, err
		}
		s.state.Step = (s.state.Hi - s.state.Lo) / 2
		if s.state.Step == 0 || s.state.Step < s.cfg.MinWindow {
			break
		}

		s.state.Probe = s.state.Lo + s.state.Step
		rec, err := s.probe(ctx, s.state.Probe, false)
		if err != nil {
			return s.result, err
		}
		if s.ahead(*rec) {
			s.state.Lo = s.state.Probe
			s.loRec = rec
		} else {
			s.state.Hi = s.state.Probe
		}
	}

	if err := ctx.Err(); err != nil {
		return s.result, err
	}
	if s.state.Hi-s.state.Lo > 1 {
		if err := s.scanWindow(ctx); err != nil {
			return s.result, err
		}
	} else {
		s.finish(s.state.Lo, s.loRec)
	}

	if s.result.Offset == total-1 && s.state.Hi >= total {
		return s.result, s.notFound(ReasonAllAhead)
	}

	s.log.WithFields(logrus.Fields{
		"offset":  s.result.Offset,
		"count":   s.result.Count,
		"probes":  s.result.Probes,
		"fetches": s.result.Fetches,
		"drift":   s.result.Drift,
	}).Info("boundary found")
	return s.result, nil
}

// probe fetches the single record at offset and records its relation to the
// cutoff. With snapshot set it also fixes the total count; a nil record
// then means the result set is empty.
func (s *search) probe(ctx context.Context, offset int, snapshot bool) (*types.Record, error) {
	page, err := s.fetch(ctx, offset, 1, snapshot)
	if err != nil {
		return nil, err
	}
	s.result.Probes++
	if snapshot {
		s.result.TotalCount = page.TotalCount
		if page.TotalCount == 0 {
			return nil, nil
		}
	}

	rec := page.Records[0]
	date := s.date(rec)
	if date.IsZero() {
		return nil, fmt.Errorf("offset %d (%s): %w", offset, rec.ID, errMissingDate)
	}
	s.state.Last = relationOf(date, s.cutoff)

	s.log.WithFields(logrus.Fields{
		"offset":   offset,
		"step":     s.state.Step,
		"date":     date.Format(time.RFC3339),
		"relation": s.state.Last,
	}).Info("probe")
	return &rec, nil
}

// scanWindow reads the unresolved span (Lo, Hi) and finds the last record
// before the crossing. A page shorter than requested is followed by a
// request for the rest, so every offset in the span is examined.
func (s *search) scanWindow(ctx context.Context) error {
	start := s.state.Lo + 1
	size := s.state.Hi - start
	s.result.Window = size

	s.log.WithFields(logrus.Fields{
		"start": start,
		"size":  size,
	}).Info("scanning remaining window")

	prevOffset, prev := s.state.Lo, s.loRec
	for got := 0; got < size; {
		s.state.Probe = start + got
		page, err := s.fetch(ctx, start+got, size-got, false)
		if err != nil {
			return err
		}
		recs := page.Records
		if len(recs) > size-got {
			recs = recs[:size-got]
		}
		if got+len(recs) < size {
			s.log.WithFields(logrus.Fields{
				"requested": size - got,
				"received":  len(recs),
			}).Warn("short window, fetching the rest")
		}

		for i := range recs {
			rec := &recs[i]
			offset := start + got + i
			if s.date(*rec).IsZero() {
				return fmt.Errorf("offset %d (%s): %w", offset, rec.ID, errMissingDate)
			}
			if !s.ahead(*rec) {
				s.finish(prevOffset, prev)
				return nil
			}
			prevOffset, prev = offset, rec
		}
		got += len(recs)
	}

	// Nothing in the window crossed, so the crossing is at Hi.
	s.finish(s.state.Hi-1, prev)
	return nil
}

func (s *search) finish(offset int, rec *types.Record) {
	s.result.Offset = offset
	s.result.Count = offset + 1
	s.result.Boundary = rec
}

// fetch requests [offset, offset+size) and retries empty pages and
// transient errors after the politeness delay, within the retry budget.
// Requests run under a deadline of MaxElapsed from the first attempt.
// allowEmpty accepts an empty page whose total count is zero.
func (s *search) fetch(ctx context.Context, offset, size int, allowEmpty bool) (types.Page, error) {
	began := time.Now()
	fctx, cancel := context.WithDeadline(ctx, began.Add(s.cfg.MaxElapsed))
	defer cancel()

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return types.Page{}, err
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return types.Page{}, err
		}

		s.result.Fetches++
		page, err := s.fetcher.Fetch(fctx, s.query.At(offset, size))
		switch {
		case err == nil:
			s.noteDrift(page)
			if !page.Empty() || (allowEmpty && page.TotalCount == 0) {
				return page, nil
			}
			err = errEmptyPage
		case ctx.Err() == nil && fctx.Err() != nil:
			return types.Page{}, &TimeoutError{Offset: offset, Attempts: attempt, Elapsed: time.Since(began), Last: err}
		case !isTransient(err):
			return types.Page{}, err
		}

		elapsed := time.Since(began)
		if attempt > s.cfg.MaxEmptyRetries || elapsed >= s.cfg.MaxElapsed {
			return types.Page{}, &TimeoutError{Offset: offset, Attempts: attempt, Elapsed: elapsed, Last: err}
		}
		s.result.Retries++
		s.log.WithFields(logrus.Fields{
			"offset":  offset,
			"attempt": attempt,
			"error":   err,
		}).Warn("fetch failed, retrying")
	}
}

// noteDrift records growth of the total count past the snapshot. Ranks are
// assumed stable; growth is reported, not corrected.
func (s *search) noteDrift(page types.Page) {
	if s.result.TotalCount == 0 || page.TotalCount <= s.result.TotalCount {
		return
	}
	if d := page.TotalCount - s.result.TotalCount; d > s.result.Drift {
		s.result.Drift = d
		s.log.WithFields(logrus.Fields{
			"snapshot": s.result.TotalCount,
			"now":      page.TotalCount,
		}).Warn("result set grew during search")
	}
}

// ahead reports whether rec sorts before the crossing: not older than the
// cutoff for a descending sort, older than it for an ascending one.
func (s *search) ahead(rec types.Record) bool {
	older := relationOf(s.date(rec), s.cutoff) == RelationOlder
	if s.desc {
		return !older
	}
	return older
}

// date is the field the result set is sorted on.
func (s *search) date(rec types.Record) time.Time {
	if s.query.SortBy == types.SortLastUpdated {
		return rec.Updated
	}
	return rec.Published
}

func (s *search) notFound(reason Reason) error {
	return &BoundaryNotFoundError{
		Reason:     reason,
		Cutoff:     s.cutoff,
		TotalCount: s.result.TotalCount,
		Descending: s.desc,
	}
}

// IsNotFound reports whether err carries a BoundaryNotFoundError.
func IsNotFound(err error) bool {
	var nf *BoundaryNotFoundError
	return errors.As(err, &nf)
}
