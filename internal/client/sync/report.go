package sync

import (
	"fmt"
	"time"
)

// Status is the terminal outcome of one synchronization pass.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// CollectionStats counts the outcome of one collection's push/pull pass.
type CollectionStats struct {
	Pushed int
	Pulled int
	Failed int
}

// Report is the sync-status surface exposed to callers. Per-record errors
// are accumulated here instead of aborting the pass.
type Report struct {
	UserID      string
	StartedAt   time.Time
	FinishedAt  time.Time
	Collections map[string]*CollectionStats
	Errors      []string

	// Transient is set when at least one failure was classified as
	// retry-eligible (remote unreachable, timeout, throttled). The
	// scheduler honors this as "retry" vs "fail".
	Transient bool
}

func newReport(userID string, now time.Time) *Report {
	return &Report{
		UserID:      userID,
		StartedAt:   now,
		Collections: map[string]*CollectionStats{},
	}
}

func (r *Report) stats(collection string) *CollectionStats {
	s, ok := r.Collections[collection]
	if !ok {
		s = &CollectionStats{}
		r.Collections[collection] = s
	}
	return s
}

func (r *Report) addError(collection string, err error) {
	r.Errors = append(r.Errors, fmt.Sprintf("%s: %v", collection, err))
}

// Status derives the terminal outcome: success when nothing failed, failed
// when nothing succeeded and something failed, partial otherwise.
func (r *Report) Status() Status {
	var ok, failed int
	for _, s := range r.Collections {
		ok += s.Pushed + s.Pulled
		failed += s.Failed
	}
	switch {
	case failed == 0:
		return StatusSuccess
	case ok == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}

// Retryable reports whether the scheduler should retry this run with backoff.
func (r *Report) Retryable() bool {
	return r.Transient && r.Status() != StatusSuccess
}
