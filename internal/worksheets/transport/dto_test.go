package transport

import (
	"testing"
	"time"

	"github.com/alimtiger/Minibini-sub000/internal/worksheets/repository"

	"github.com/google/uuid"
)

func TestToTaskResponse_CarriesParentLink(t *testing.T) {
	parentID := uuid.New()
	task := repository.Task{
		ID:          uuid.New(),
		WorksheetID: uuid.New(),
		ParentID:    &parentID,
		Name:        "Cut panels",
		Unit:        "ea",
		RateCents:   2500,
		QtyMilli:    4000,
		CreatedAt:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	resp := ToTaskResponse(&task)
	if resp.ParentID == nil || *resp.ParentID != parentID {
		t.Fatalf("expected parent %s carried through, got %v", parentID, resp.ParentID)
	}

	task.ParentID = nil
	if resp := ToTaskResponse(&task); resp.ParentID != nil {
		t.Fatalf("expected root task to have no parent, got %v", resp.ParentID)
	}
}
