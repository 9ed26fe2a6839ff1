// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package boundary

import (
	"errors"
	"fmt"
	"time"
)

// Reason explains why no boundary exists for a cutoff.
type Reason string

const (
	// ReasonEmpty means the query matched nothing.
	ReasonEmpty Reason = "empty"
	// ReasonNoneAhead means the first record is already past the cutoff.
	ReasonNoneAhead Reason = "none_ahead"
	// ReasonAllAhead means no record in the result set reaches the cutoff.
	ReasonAllAhead Reason = "all_ahead"
)

// BoundaryNotFoundError reports a cutoff outside the span the result set
// covers. It is returned instead of an approximate offset.
type BoundaryNotFoundError struct {
	Reason     Reason
	Cutoff     time.Time
	TotalCount int
	Descending bool
}

func (e *BoundaryNotFoundError) Error() string {
	cutoff := e.Cutoff.Format(time.RFC3339)
	switch e.Reason {
	case ReasonEmpty:
		return "boundary not found: query matched no records"
	case ReasonNoneAhead:
		if e.Descending {
			return fmt.Sprintf("boundary not found: every record is older than cutoff %s", cutoff)
		}
		return fmt.Sprintf("boundary not found: no record is older than cutoff %s", cutoff)
	case ReasonAllAhead:
		if e.Descending {
			return fmt.Sprintf("boundary not found: cutoff %s precedes all %d records", cutoff, e.TotalCount)
		}
		return fmt.Sprintf("boundary not found: all %d records are older than cutoff %s", e.TotalCount, cutoff)
	}
	return fmt.Sprintf("boundary not found (%s)", e.Reason)
}

// TimeoutError reports a probe that kept returning empty pages or transient
// failures until the retry budget ran out.
type TimeoutError struct {
	Offset   int
	Attempts int
	Elapsed  time.Duration
	Last     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("probe at offset %d gave no records after %d attempts in %s: %v",
		e.Offset, e.Attempts, e.Elapsed.Round(time.Millisecond), e.Last)
}

func (e *TimeoutError) Unwrap() error { return e.Last }

// SearchError wraps every failure of Find with the state the search was in,
// so callers can report the last probe offset.
type SearchError struct {
	Probe int
	State State
	Err   error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("boundary search stopped at probe offset %d: %v", e.Probe, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// Kind names the class of err for user-facing reports.
func Kind(err error) string {
	var nf *BoundaryNotFoundError
	var to *TimeoutError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &nf):
		return "BoundaryNotFound"
	case errors.As(err, &to):
		return "Timeout"
	case errors.Is(err, errMissingDate):
		return "MalformedRecord"
	case errors.Is(err, errNotDateSorted):
		return "InvalidQuery"
	case isTransient(err):
		return "Transport"
	}
	return "Error"
}

var (
	errEmptyPage   = errors.New("empty page")
	errMissingDate = errors.New("record has no date for the sort field")

	errNotDateSorted = errors.New("boundary search needs a submittedDate or lastUpdatedDate sort")
)

// transient is implemented by fetch errors worth retrying, such as the
// search client's transport errors for 5xx and throttled responses.
type transient interface {
	Transient() bool
}

func isTransient(err error) bool {
	var t transient
	return errors.As(err, &t) && t.Transient()
}
