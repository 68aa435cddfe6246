// Package domain provides core business rules for the work orders bounded
// context.
package domain

import (
	"github.com/alimtiger/Minibini-sub000/platform/apperr"
)

// Status labels the lifecycle state of a work order. Unlike jobs and
// estimates, work orders move freely between their working states; only
// complete is terminal.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusIncomplete Status = "incomplete"
	StatusBlocked    Status = "blocked"
	StatusComplete   Status = "complete"
)

// Valid reports whether s is a known work order status.
func Valid(s Status) bool {
	switch s {
	case StatusDraft, StatusIncomplete, StatusBlocked, StatusComplete:
		return true
	}
	return false
}

// IsTerminal reports whether the status closes the work order.
func IsTerminal(s Status) bool {
	return s == StatusComplete
}

// ValidateTransition checks a status change. Any move between working
// states is legal, including straight to complete; nothing leaves complete.
func ValidateTransition(from, to Status) error {
	if !Valid(to) {
		return apperr.Newf(apperr.KindValidation, "unknown work order status %q", to)
	}
	if IsTerminal(from) {
		return apperr.Newf(apperr.KindInvalidTransition,
			"work order cannot move from %q to %q: terminal state", from, to)
	}
	return nil
}

// String implements fmt.Stringer.
func (s Status) String() string { return string(s) }
