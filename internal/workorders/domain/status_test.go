package domain

import (
	"testing"

	"github.com/alimtiger/Minibini-sub000/platform/apperr"
)

func TestValidateTransitionWorkingStates(t *testing.T) {
	working := []Status{StatusDraft, StatusIncomplete, StatusBlocked}
	targets := []Status{StatusDraft, StatusIncomplete, StatusBlocked, StatusComplete}
	for _, from := range working {
		for _, to := range targets {
			if err := ValidateTransition(from, to); err != nil {
				t.Errorf("ValidateTransition(%s, %s) = %v, want nil", from, to, err)
			}
		}
	}
}

func TestValidateTransitionCompleteIsTerminal(t *testing.T) {
	for _, to := range []Status{StatusDraft, StatusIncomplete, StatusBlocked} {
		err := ValidateTransition(StatusComplete, to)
		if err == nil {
			t.Fatalf("ValidateTransition(complete, %s) = nil, want error", to)
		}
		if apperr.GetKind(err) != apperr.KindInvalidTransition {
			t.Errorf("kind = %v, want KindInvalidTransition", apperr.GetKind(err))
		}
		want := `work order cannot move from "complete" to "` + string(to) + `": terminal state`
		if err.Error() != want {
			t.Errorf("error = %q, want %q", err.Error(), want)
		}
	}
}

func TestValidateTransitionUnknownTarget(t *testing.T) {
	err := ValidateTransition(StatusDraft, Status("bogus"))
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Errorf("kind = %v, want KindValidation", apperr.GetKind(err))
	}
}
