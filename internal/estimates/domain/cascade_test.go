package domain

import (
	"testing"

	jobsdomain "github.com/alimtiger/Minibini-sub000/internal/jobs/domain"
	wsdomain "github.com/alimtiger/Minibini-sub000/internal/worksheets/domain"
)

func TestDeriveWorksheetStatus(t *testing.T) {
	cases := []struct {
		estimate Status
		want     wsdomain.Status
		mapped   bool
	}{
		{StatusDraft, wsdomain.StatusDraft, true},
		{StatusOpen, wsdomain.StatusFinal, true},
		{StatusAccepted, wsdomain.StatusFinal, true},
		{StatusRejected, wsdomain.StatusFinal, true},
		{StatusSuperseded, wsdomain.StatusSuperseded, true},
		{StatusExpired, "", false},
	}
	for _, tc := range cases {
		got, mapped := DeriveWorksheetStatus(tc.estimate)
		if mapped != tc.mapped {
			t.Fatalf("estimate %s: expected mapped=%v, got %v", tc.estimate, tc.mapped, mapped)
		}
		if mapped && got != tc.want {
			t.Fatalf("estimate %s: expected worksheet %s, got %s", tc.estimate, tc.want, got)
		}
	}
}

func TestPlanJobCascade_AcceptAdvancesThroughSubmitted(t *testing.T) {
	steps := PlanJobCascade(StatusOpen, StatusAccepted, jobsdomain.StatusDraft)
	if len(steps) != 2 || steps[0] != jobsdomain.StatusSubmitted || steps[1] != jobsdomain.StatusApproved {
		t.Fatalf("expected draft job to step through submitted to approved, got %v", steps)
	}
}

func TestPlanJobCascade_AcceptFromSubmitted(t *testing.T) {
	steps := PlanJobCascade(StatusOpen, StatusAccepted, jobsdomain.StatusSubmitted)
	if len(steps) != 1 || steps[0] != jobsdomain.StatusApproved {
		t.Fatalf("expected single approve step, got %v", steps)
	}
}

func TestPlanJobCascade_AcceptOnApprovedIsNoop(t *testing.T) {
	if steps := PlanJobCascade(StatusOpen, StatusAccepted, jobsdomain.StatusApproved); len(steps) != 0 {
		t.Fatalf("expected no-op for already approved job, got %v", steps)
	}
}

func TestPlanJobCascade_AcceptReleasesBlockedJob(t *testing.T) {
	steps := PlanJobCascade(StatusOpen, StatusAccepted, jobsdomain.StatusBlocked)
	if len(steps) != 1 || steps[0] != jobsdomain.StatusApproved {
		t.Fatalf("expected blocked job released to approved, got %v", steps)
	}
}

func TestPlanJobCascade_SupersedeAcceptedBlocksJob(t *testing.T) {
	steps := PlanJobCascade(StatusAccepted, StatusSuperseded, jobsdomain.StatusApproved)
	if len(steps) != 1 || steps[0] != jobsdomain.StatusBlocked {
		t.Fatalf("expected approved job parked behind blocked, got %v", steps)
	}
}

func TestPlanJobCascade_NeverTouchesTerminalJobs(t *testing.T) {
	for _, job := range []jobsdomain.Status{jobsdomain.StatusCompleted, jobsdomain.StatusCancelled, jobsdomain.StatusRejected} {
		if steps := PlanJobCascade(StatusOpen, StatusAccepted, job); len(steps) != 0 {
			t.Fatalf("accept must not touch %s job, got %v", job, steps)
		}
		if steps := PlanJobCascade(StatusAccepted, StatusSuperseded, job); len(steps) != 0 {
			t.Fatalf("supersede must not touch %s job, got %v", job, steps)
		}
	}
}

func TestPlanJobCascade_SupersedeNonAcceptedHasNoJobEffect(t *testing.T) {
	if steps := PlanJobCascade(StatusOpen, StatusSuperseded, jobsdomain.StatusApproved); len(steps) != 0 {
		t.Fatalf("superseding an open estimate must not block the job, got %v", steps)
	}
}
