// Package domain provides core business rules for the estimates bounded
// context: the status engine, the cascade mapping, and the line item
// generation engine.
package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/alimtiger/Minibini-sub000/platform/apperr"
)

// Status labels the lifecycle state of an estimate.
type Status string

const (
	// StatusDraft is the initial state; line items are editable.
	StatusDraft Status = "draft"
	// StatusOpen indicates the estimate has been sent to the customer.
	StatusOpen Status = "open"
	// StatusAccepted indicates the customer accepted the estimate.
	StatusAccepted Status = "accepted"
	// StatusRejected indicates the customer rejected the estimate. Terminal.
	StatusRejected Status = "rejected"
	// StatusExpired indicates the estimate lapsed unanswered. Terminal.
	StatusExpired Status = "expired"
	// StatusSuperseded indicates a newer revision replaced this estimate.
	// Terminal.
	StatusSuperseded Status = "superseded"
)

// transitions is the estimate status table. Accepted permits only the
// supersede move a revision applies; all other non-draft states reachable
// from open are terminal.
var transitions = map[Status][]Status{
	StatusDraft:    {StatusOpen, StatusRejected},
	StatusOpen:     {StatusAccepted, StatusSuperseded, StatusRejected, StatusExpired},
	StatusAccepted: {StatusSuperseded},
}

// Valid reports whether s is a known estimate status.
func Valid(s Status) bool {
	switch s {
	case StatusDraft, StatusOpen, StatusAccepted, StatusRejected, StatusExpired, StatusSuperseded:
		return true
	}
	return false
}

// IsTerminal reports whether the status closes the estimate: any state an
// estimate cannot leave except via supersede, plus the fully final ones.
func IsTerminal(s Status) bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusExpired, StatusSuperseded:
		return true
	}
	return false
}

// ValidateTransition checks a status change against the estimate's
// transition table.
func ValidateTransition(from, to Status) error {
	targets := transitions[from]
	for _, t := range targets {
		if t == to {
			return nil
		}
	}
	if len(targets) == 0 {
		return apperr.Newf(apperr.KindInvalidTransition,
			"estimate cannot move from %q to %q: terminal state", from, to)
	}
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = string(t)
	}
	sort.Strings(names)
	return apperr.Newf(apperr.KindInvalidTransition,
		"estimate cannot move from %q to %q: legal targets are %s",
		from, to, strings.Join(names, ", "))
}

// TransitionInput carries everything the status engine needs to validate
// and plan one estimate transition.
type TransitionInput struct {
	From Status
	To   Status
	// JobHasAccepted is true when another estimate on the same job already
	// holds accepted status.
	JobHasAccepted bool
	// SentDate and ClosedDate are the currently stored stamps.
	SentDate   *time.Time
	ClosedDate *time.Time
	// ValidDays computes the expiration window stamped on open.
	ValidDays int
	Now       time.Time
}

// TransitionPlan is the validated outcome of a transition: the new status
// plus any timestamps stamped by it. Stamped fields are never overwritten
// on later transitions.
type TransitionPlan struct {
	Status     Status
	SentDate   *time.Time
	ClosedDate *time.Time
	ValidUntil *time.Time
}

// PlanTransition validates the transition against the status table and the
// one-accepted-per-job invariant, then stamps sent/closed/expiration
// timestamps exactly once.
func PlanTransition(in TransitionInput) (TransitionPlan, error) {
	if err := ValidateTransition(in.From, in.To); err != nil {
		return TransitionPlan{}, err
	}
	if in.To == StatusAccepted && in.JobHasAccepted {
		return TransitionPlan{}, apperr.InvariantViolation(
			"job already has an accepted estimate")
	}

	plan := TransitionPlan{
		Status:     in.To,
		SentDate:   in.SentDate,
		ClosedDate: in.ClosedDate,
	}

	if in.To == StatusOpen && plan.SentDate == nil {
		sent := in.Now
		plan.SentDate = &sent
		validUntil := in.Now.AddDate(0, 0, in.ValidDays)
		plan.ValidUntil = &validUntil
	}
	if IsTerminal(in.To) && plan.ClosedDate == nil {
		closed := in.Now
		plan.ClosedDate = &closed
	}

	return plan, nil
}

// PlanRevision validates that an estimate in the given status can open a
// new version. The successor starts as a draft; the source must be able to
// reach superseded through the status table.
func PlanRevision(source Status) error {
	switch source {
	case StatusDraft:
		return apperr.PreconditionFailed("estimate is still a draft; edit its lines directly")
	case StatusSuperseded:
		return apperr.PreconditionFailed("estimate is superseded; revise its successor instead")
	}
	return ValidateTransition(source, StatusSuperseded)
}

// RestoreImmutable reverts any attempt to overwrite the stamped sent/closed
// dates on a subsequent save, silently keeping the stored values.
func RestoreImmutable(storedSent, storedClosed, incomingSent, incomingClosed *time.Time) (sent, closed *time.Time) {
	sent, closed = incomingSent, incomingClosed
	if storedSent != nil {
		sent = storedSent
	}
	if storedClosed != nil {
		closed = storedClosed
	}
	return sent, closed
}

// String implements fmt.Stringer.
func (s Status) String() string { return string(s) }
