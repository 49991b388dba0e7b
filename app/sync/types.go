// Package sync implements the synchronization engine: it reconciles
// gemlog entries against the remote blog's existing posts and
// creates, updates or skips each one. The remote blog is the only
// source of truth, so repeated runs are idempotent without any local
// state.
package sync

import (
	"errors"

	"github.com/gemsync/gemsync/app/feed"
	"github.com/gemsync/gemsync/app/writefreely"
)

// Op is the synchronization action decided for an entry.
type Op int

const (
	OpCreate Op = iota
	OpUpdate
	OpSkip
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// SkipReason says why an entry was not written.
type SkipReason string

const (
	SkipUpToDate        SkipReason = "up_to_date"
	SkipDuplicateRemote SkipReason = "duplicate_remote"
	SkipFiltered        SkipReason = "filtered"
)

// ErrorKind classifies a per-entry failure for the run summary.
type ErrorKind string

const (
	ErrorKindTransport ErrorKind = "transport"
	ErrorKindAuth      ErrorKind = "auth"
)

func classifyError(err error) ErrorKind {
	if errors.Is(err, writefreely.ErrUnauthorized) {
		return ErrorKindAuth
	}
	return ErrorKindTransport
}

// Decision is the reconciler's verdict for one entry. Produced once
// per entry per run and never mutated afterwards.
type Decision struct {
	Entry    *feed.Entry
	Op       Op
	RemoteID string     // update target, set when Op is OpUpdate
	Reason   SkipReason // set when Op is OpSkip

	// Stale holds remote posts that share the entry's sync key but
	// lost the canonical selection. They are reported, never touched.
	Stale []RemotePost
}

// Status is the executed result for one entry.
type Status int

const (
	StatusPublished Status = iota
	StatusUpdated
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPublished:
		return "published"
	case StatusUpdated:
		return "updated"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the per-entry result reported to the operator.
type Outcome struct {
	EntryID  string
	Title    string
	Status   Status
	RemoteID string
	Reason   SkipReason
	Kind     ErrorKind
	Err      error
}

// Failure identifies a failed entry in the run summary.
type Failure struct {
	EntryID string
	Kind    ErrorKind
	Err     error
}

// Summary aggregates all outcomes of one run.
type Summary struct {
	Published int
	Updated   int
	Skipped   int
	Failed    int
	Outcomes  []Outcome
	Failures  []Failure
}

func (s *Summary) add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
	switch o.Status {
	case StatusPublished:
		s.Published++
	case StatusUpdated:
		s.Updated++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
		s.Failures = append(s.Failures, Failure{EntryID: o.EntryID, Kind: o.Kind, Err: o.Err})
	}
}
