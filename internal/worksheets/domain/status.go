// Package domain provides core business rules for the estimating
// worksheets bounded context.
package domain

import "github.com/alimtiger/Minibini-sub000/platform/apperr"

// Status labels the lifecycle state of an estimating worksheet.
//
// Worksheets are never status-edited directly: draft and final are set by
// estimate generation, superseded by revision, and the estimate cascade
// drives the rest.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusFinal      Status = "final"
	StatusSuperseded Status = "superseded"
)

// Valid reports whether s is a known worksheet status.
func Valid(s Status) bool {
	switch s {
	case StatusDraft, StatusFinal, StatusSuperseded:
		return true
	}
	return false
}

// PlanRevision validates that a worksheet in the given status can be
// revised and returns the status its source moves to once the draft
// successor exists.
func PlanRevision(source Status) (Status, error) {
	switch source {
	case StatusDraft:
		return "", apperr.PreconditionFailed("worksheet is still a draft; edit it directly")
	case StatusSuperseded:
		return "", apperr.PreconditionFailed("worksheet is superseded; revise its successor instead")
	}
	return StatusSuperseded, nil
}

// String implements fmt.Stringer.
func (s Status) String() string { return string(s) }
