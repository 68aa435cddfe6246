package domain

import (
	"testing"

	"github.com/alimtiger/Minibini-sub000/platform/apperr"
)

func TestPlanRevision_FinalSupersedesSource(t *testing.T) {
	after, err := PlanRevision(StatusFinal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if after != StatusSuperseded {
		t.Fatalf("expected source to move to superseded, got %s", after)
	}
}

func TestPlanRevision_RejectsDraftAndSuperseded(t *testing.T) {
	for _, source := range []Status{StatusDraft, StatusSuperseded} {
		_, err := PlanRevision(source)
		if err == nil {
			t.Fatalf("expected revision of %s worksheet to fail", source)
		}
		if !apperr.Is(err, apperr.KindPreconditionFailed) {
			t.Fatalf("expected precondition failure for %s, got %v", source, err)
		}
	}
}
