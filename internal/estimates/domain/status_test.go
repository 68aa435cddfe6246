package domain

import (
	"testing"
	"time"

	"github.com/alimtiger/Minibini-sub000/platform/apperr"
)

var testNow = time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

func TestValidateTransition_Table(t *testing.T) {
	legal := []struct{ from, to Status }{
		{StatusDraft, StatusOpen},
		{StatusDraft, StatusRejected},
		{StatusOpen, StatusAccepted},
		{StatusOpen, StatusSuperseded},
		{StatusOpen, StatusRejected},
		{StatusOpen, StatusExpired},
		{StatusAccepted, StatusSuperseded},
	}
	for _, pair := range legal {
		if err := ValidateTransition(pair.from, pair.to); err != nil {
			t.Fatalf("expected %s -> %s to be legal, got %v", pair.from, pair.to, err)
		}
	}

	illegal := []struct{ from, to Status }{
		{StatusOpen, StatusDraft},
		{StatusAccepted, StatusOpen},
		{StatusRejected, StatusOpen},
		{StatusExpired, StatusAccepted},
		{StatusSuperseded, StatusDraft},
		{StatusDraft, StatusAccepted},
	}
	for _, pair := range illegal {
		err := ValidateTransition(pair.from, pair.to)
		if err == nil {
			t.Fatalf("expected %s -> %s to fail", pair.from, pair.to)
		}
		if !apperr.Is(err, apperr.KindInvalidTransition) {
			t.Fatalf("expected invalid transition kind for %s -> %s, got %v", pair.from, pair.to, err)
		}
	}
}

func TestPlanTransition_OpenStampsSentAndExpiration(t *testing.T) {
	plan, err := PlanTransition(TransitionInput{
		From:      StatusDraft,
		To:        StatusOpen,
		ValidDays: 30,
		Now:       testNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.SentDate == nil || !plan.SentDate.Equal(testNow) {
		t.Fatalf("expected sent date %v, got %v", testNow, plan.SentDate)
	}
	wantValid := testNow.AddDate(0, 0, 30)
	if plan.ValidUntil == nil || !plan.ValidUntil.Equal(wantValid) {
		t.Fatalf("expected valid until %v, got %v", wantValid, plan.ValidUntil)
	}
	if plan.ClosedDate != nil {
		t.Fatalf("open must not stamp closed date, got %v", plan.ClosedDate)
	}
}

func TestPlanTransition_TerminalStampsClosedOnce(t *testing.T) {
	sent := testNow.Add(-24 * time.Hour)
	plan, err := PlanTransition(TransitionInput{
		From:     StatusOpen,
		To:       StatusAccepted,
		SentDate: &sent,
		Now:      testNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.ClosedDate == nil || !plan.ClosedDate.Equal(testNow) {
		t.Fatalf("expected closed date %v, got %v", testNow, plan.ClosedDate)
	}
	if !plan.SentDate.Equal(sent) {
		t.Fatalf("sent date must be preserved, got %v", plan.SentDate)
	}

	// Superseding an accepted estimate must not restamp the closed date.
	later := testNow.Add(time.Hour)
	plan2, err := PlanTransition(TransitionInput{
		From:       StatusAccepted,
		To:         StatusSuperseded,
		SentDate:   plan.SentDate,
		ClosedDate: plan.ClosedDate,
		Now:        later,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !plan2.ClosedDate.Equal(testNow) {
		t.Fatalf("closed date must stay %v, got %v", testNow, plan2.ClosedDate)
	}
}

func TestPlanTransition_SecondAcceptedFails(t *testing.T) {
	_, err := PlanTransition(TransitionInput{
		From:           StatusOpen,
		To:             StatusAccepted,
		JobHasAccepted: true,
		Now:            testNow,
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !apperr.Is(err, apperr.KindInvariantViolation) {
		t.Fatalf("expected invariant violation, got %v", err)
	}
}

func TestPlanRevision_OpenAndAcceptedAreRevisable(t *testing.T) {
	for _, source := range []Status{StatusOpen, StatusAccepted} {
		if err := PlanRevision(source); err != nil {
			t.Fatalf("expected %s estimate to be revisable, got %v", source, err)
		}
	}
}

func TestPlanRevision_RejectsDraftAndSuperseded(t *testing.T) {
	for _, source := range []Status{StatusDraft, StatusSuperseded} {
		err := PlanRevision(source)
		if err == nil {
			t.Fatalf("expected revision of %s estimate to fail", source)
		}
		if !apperr.Is(err, apperr.KindPreconditionFailed) {
			t.Fatalf("expected precondition failure for %s, got %v", source, err)
		}
	}
}

func TestPlanRevision_TerminalSourcesFailTheSupersedeMove(t *testing.T) {
	for _, source := range []Status{StatusRejected, StatusExpired} {
		err := PlanRevision(source)
		if err == nil {
			t.Fatalf("expected revision of %s estimate to fail", source)
		}
		if !apperr.Is(err, apperr.KindInvalidTransition) {
			t.Fatalf("expected invalid transition for %s, got %v", source, err)
		}
	}
}

func TestRestoreImmutable(t *testing.T) {
	stamped := testNow.Add(-time.Hour)
	clobber := testNow

	sent, closed := RestoreImmutable(&stamped, nil, &clobber, &clobber)
	if !sent.Equal(stamped) {
		t.Fatalf("expected stored sent date kept, got %v", sent)
	}
	if !closed.Equal(clobber) {
		t.Fatalf("unset closed date should accept incoming value, got %v", closed)
	}
}
