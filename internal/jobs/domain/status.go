// Package domain provides core business rules for the jobs bounded context.
package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alimtiger/Minibini-sub000/platform/apperr"
)

// Status labels the lifecycle state of a job.
type Status string

const (
	// StatusDraft is the initial state of every job.
	StatusDraft Status = "draft"
	// StatusSubmitted indicates the job has been submitted for approval.
	StatusSubmitted Status = "submitted"
	// StatusApproved indicates the job is approved and work can start.
	StatusApproved Status = "approved"
	// StatusRejected indicates the job was rejected. Terminal.
	StatusRejected Status = "rejected"
	// StatusCompleted indicates the work is done. Terminal.
	StatusCompleted Status = "completed"
	// StatusCancelled indicates the job was cancelled. Terminal.
	StatusCancelled Status = "cancelled"
	// StatusBlocked is a marker state entered when the accepted estimate
	// backing an approved job is superseded. It is set by the estimate
	// cascade only, never by a direct save.
	StatusBlocked Status = "blocked"
)

// transitions is the table of user-driven status changes. A status with no
// entry is terminal.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusSubmitted, StatusRejected},
	StatusSubmitted: {StatusApproved, StatusRejected},
	StatusApproved:  {StatusCompleted, StatusCancelled},
}

// cascadeTransitions extends the table with the moves only the estimate
// cascade may apply: parking an approved job behind the blocked marker and
// releasing it again when a new estimate is accepted.
var cascadeTransitions = map[Status][]Status{
	StatusDraft:     {StatusSubmitted},
	StatusSubmitted: {StatusApproved},
	StatusApproved:  {StatusBlocked},
	StatusBlocked:   {StatusApproved, StatusCancelled},
}

// Valid reports whether s is a known job status.
func Valid(s Status) bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected,
		StatusCompleted, StatusCancelled, StatusBlocked:
		return true
	}
	return false
}

// IsTerminal reports whether the status permits no further user-driven
// transitions.
func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}

// ValidateTransition checks a user-driven status change against the
// transition table. The returned error names the offending source and
// target and lists the legal targets.
func ValidateTransition(from, to Status) error {
	return validate("job", from, to, transitions)
}

// ValidateCascadeTransition checks a cascade-driven status change, which
// additionally permits the blocked marker moves.
func ValidateCascadeTransition(from, to Status) error {
	for _, t := range transitions[from] {
		if t == to {
			return nil
		}
	}
	return validate("job", from, to, cascadeTransitions)
}

func validate(entity string, from, to Status, table map[Status][]Status) error {
	targets := table[from]
	for _, t := range targets {
		if t == to {
			return nil
		}
	}
	if len(targets) == 0 {
		return apperr.Newf(apperr.KindInvalidTransition,
			"%s cannot move from %q to %q: terminal state", entity, from, to)
	}
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = string(t)
	}
	sort.Strings(names)
	return apperr.Newf(apperr.KindInvalidTransition,
		"%s cannot move from %q to %q: legal targets are %s",
		entity, from, to, strings.Join(names, ", "))
}

// Timestamps holds the stamped lifecycle timestamps of a job. Each field is
// written exactly once, at the transition that causes it.
type Timestamps struct {
	StartDate     *time.Time
	CompletedDate *time.Time
}

// Stamp returns the timestamps after applying the transition to the given
// target status. Already-set fields are never overwritten.
func (t Timestamps) Stamp(to Status, now time.Time) Timestamps {
	switch to {
	case StatusApproved:
		if t.StartDate == nil {
			t.StartDate = &now
		}
	case StatusCompleted:
		if t.CompletedDate == nil {
			t.CompletedDate = &now
		}
	}
	return t
}

// PlanTransition validates a user-driven transition and returns the
// timestamps to store alongside the new status.
func PlanTransition(from, to Status, ts Timestamps, now time.Time) (Timestamps, error) {
	if err := ValidateTransition(from, to); err != nil {
		return ts, err
	}
	return ts.Stamp(to, now), nil
}

// RestoreImmutable reverts any attempt to overwrite a stamped timestamp,
// returning the incoming timestamps with every already-stored value put
// back. Overwrites are silently discarded rather than rejected.
func RestoreImmutable(stored, incoming Timestamps) Timestamps {
	if stored.StartDate != nil {
		incoming.StartDate = stored.StartDate
	}
	if stored.CompletedDate != nil {
		incoming.CompletedDate = stored.CompletedDate
	}
	return incoming
}

// String implements fmt.Stringer.
func (s Status) String() string { return string(s) }

var _ fmt.Stringer = StatusDraft
