package domain

import (
	"testing"
	"time"

	"github.com/alimtiger/Minibini-sub000/platform/apperr"
)

func TestValidateTransition_LegalPairs(t *testing.T) {
	legal := []struct{ from, to Status }{
		{StatusDraft, StatusSubmitted},
		{StatusDraft, StatusRejected},
		{StatusSubmitted, StatusApproved},
		{StatusSubmitted, StatusRejected},
		{StatusApproved, StatusCompleted},
		{StatusApproved, StatusCancelled},
	}
	for _, pair := range legal {
		if err := ValidateTransition(pair.from, pair.to); err != nil {
			t.Fatalf("expected %s -> %s to be legal, got %v", pair.from, pair.to, err)
		}
	}
}

func TestValidateTransition_AllOtherPairsFail(t *testing.T) {
	all := []Status{StatusDraft, StatusSubmitted, StatusApproved, StatusRejected,
		StatusCompleted, StatusCancelled, StatusBlocked}
	legal := map[[2]Status]bool{
		{StatusDraft, StatusSubmitted}:    true,
		{StatusDraft, StatusRejected}:     true,
		{StatusSubmitted, StatusApproved}: true,
		{StatusSubmitted, StatusRejected}: true,
		{StatusApproved, StatusCompleted}: true,
		{StatusApproved, StatusCancelled}: true,
	}
	for _, from := range all {
		for _, to := range all {
			if legal[[2]Status{from, to}] {
				continue
			}
			err := ValidateTransition(from, to)
			if err == nil {
				t.Fatalf("expected %s -> %s to fail", from, to)
			}
			if !apperr.Is(err, apperr.KindInvalidTransition) {
				t.Fatalf("expected invalid transition kind for %s -> %s, got %v", from, to, err)
			}
		}
	}
}

func TestValidateTransition_TerminalStateMessage(t *testing.T) {
	err := ValidateTransition(StatusCompleted, StatusDraft)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != `job cannot move from "completed" to "draft": terminal state` {
		t.Fatalf("unexpected message: %s", got)
	}
}

func TestValidateTransition_ListsLegalTargets(t *testing.T) {
	err := ValidateTransition(StatusDraft, StatusApproved)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != `job cannot move from "draft" to "approved": legal targets are rejected, submitted` {
		t.Fatalf("unexpected message: %s", got)
	}
}

func TestValidateCascadeTransition_BlockedMarker(t *testing.T) {
	if err := ValidateCascadeTransition(StatusApproved, StatusBlocked); err != nil {
		t.Fatalf("cascade should park approved job behind blocked: %v", err)
	}
	if err := ValidateCascadeTransition(StatusBlocked, StatusApproved); err != nil {
		t.Fatalf("cascade should release blocked job: %v", err)
	}
	if err := ValidateCascadeTransition(StatusCompleted, StatusBlocked); err == nil {
		t.Fatal("cascade must not touch a terminal job")
	}
}

func TestStamp_SetsExactlyOnce(t *testing.T) {
	first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	second := first.Add(48 * time.Hour)

	ts := Timestamps{}.Stamp(StatusApproved, first)
	if ts.StartDate == nil || !ts.StartDate.Equal(first) {
		t.Fatalf("expected start date stamped at %v, got %v", first, ts.StartDate)
	}

	ts = ts.Stamp(StatusApproved, second)
	if !ts.StartDate.Equal(first) {
		t.Fatalf("start date must not be restamped, got %v", ts.StartDate)
	}

	ts = ts.Stamp(StatusCompleted, second)
	if ts.CompletedDate == nil || !ts.CompletedDate.Equal(second) {
		t.Fatalf("expected completed date stamped at %v, got %v", second, ts.CompletedDate)
	}
}

func TestPlanTransition_ApprovedStampsStartDate(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	ts, err := PlanTransition(StatusSubmitted, StatusApproved, Timestamps{}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.StartDate == nil || !ts.StartDate.Equal(now) {
		t.Fatalf("expected start date %v, got %v", now, ts.StartDate)
	}

	ts, err = PlanTransition(StatusApproved, StatusCompleted, ts, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.CompletedDate == nil || !ts.CompletedDate.Equal(now) {
		t.Fatalf("expected completed date %v, got %v", now, ts.CompletedDate)
	}

	if _, err := PlanTransition(StatusDraft, StatusApproved, Timestamps{}, now); err == nil {
		t.Fatal("expected illegal transition to fail")
	}
}

func TestStamp_ReturnsCopyWithoutMutatingReceiver(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	ts := Timestamps{}
	stamped := ts.Stamp(StatusApproved, now)

	if ts.StartDate != nil {
		t.Fatalf("receiver must stay untouched, got start date %v", ts.StartDate)
	}
	if stamped.StartDate == nil || !stamped.StartDate.Equal(now) {
		t.Fatalf("expected returned copy to carry start date %v, got %v", now, stamped.StartDate)
	}
}

func TestRestoreImmutable_RevertsOverwrites(t *testing.T) {
	stampedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clobber := stampedAt.Add(time.Hour)

	stored := Timestamps{StartDate: &stampedAt}
	incoming := Timestamps{StartDate: &clobber}

	restored := RestoreImmutable(stored, incoming)
	if !restored.StartDate.Equal(stampedAt) {
		t.Fatalf("expected stored start date %v preserved, got %v", stampedAt, restored.StartDate)
	}
	if restored.CompletedDate != nil {
		t.Fatalf("expected completed date to stay unset, got %v", restored.CompletedDate)
	}
}
