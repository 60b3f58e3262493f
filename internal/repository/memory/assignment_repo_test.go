package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"stepladder/practice-app/internal/domain"
	"stepladder/practice-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAssignmentCreateDefaults(t *testing.T) {
	repo := NewAssignmentRepository()
	ctx := context.Background()

	a := &domain.WorksheetAssignment{
		ClientID:    primitive.NewObjectID(),
		TherapistID: primitive.NewObjectID(),
		WorksheetID: "cbt-thought-record",
	}
	id, err := repo.Create(ctx, a)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	stored, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != domain.StatusAssigned {
		t.Errorf("status = %q, want assigned", stored.Status)
	}
	if stored.AssignedAt.IsZero() || stored.LastUpdatedAt.IsZero() {
		t.Error("timestamps not stamped on create")
	}
}

func TestAssignmentCreateRequiresIdentity(t *testing.T) {
	repo := NewAssignmentRepository()
	if _, err := repo.Create(context.Background(), &domain.WorksheetAssignment{}); err == nil {
		t.Fatal("Create accepted an assignment without clientId/worksheetId")
	}
}

func TestAssignmentGetByIDNotFound(t *testing.T) {
	repo := NewAssignmentRepository()
	_, err := repo.GetByID(context.Background(), primitive.NewObjectID())
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAssignmentListByClientSortedDescending(t *testing.T) {
	repo := NewAssignmentRepository()
	ctx := context.Background()
	clientID := primitive.NewObjectID()
	therapistID := primitive.NewObjectID()

	for _, ws := range []string{"cbt-thought-record", "dbt-diary-card", "erp-exposure-run"} {
		if _, err := repo.Create(ctx, &domain.WorksheetAssignment{
			ClientID: clientID, TherapistID: therapistID, WorksheetID: ws,
		}); err != nil {
			t.Fatalf("Create(%s): %v", ws, err)
		}
		time.Sleep(2 * time.Millisecond) // distinct assignedAt values
	}
	// Another client's record must not leak into the listing.
	repo.Create(ctx, &domain.WorksheetAssignment{
		ClientID: primitive.NewObjectID(), TherapistID: therapistID, WorksheetID: "sud-craving-log",
	})

	got, err := repo.GetByClientID(ctx, clientID)
	if err != nil {
		t.Fatalf("GetByClientID: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("listed %d assignments, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].AssignedAt.After(got[i-1].AssignedAt) {
			t.Errorf("listing not sorted most-recent-first at index %d", i)
		}
	}
	if got[0].WorksheetID != "erp-exposure-run" {
		t.Errorf("newest first = %q, want erp-exposure-run", got[0].WorksheetID)
	}
}

func TestAssignmentUpdateStatusLifecycle(t *testing.T) {
	repo := NewAssignmentRepository()
	ctx := context.Background()

	id, _ := repo.Create(ctx, &domain.WorksheetAssignment{
		ClientID: primitive.NewObjectID(), TherapistID: primitive.NewObjectID(), WorksheetID: "dbt-diary-card",
	})

	updated, err := repo.UpdateStatus(ctx, id, domain.StatusCompleted)
	if err != nil {
		t.Fatalf("UpdateStatus(completed): %v", err)
	}
	if updated.CompletedAt == nil {
		t.Fatal("CompletedAt not stamped")
	}
	firstCompleted := *updated.CompletedAt

	// Repeated completion keeps the original timestamp.
	again, err := repo.UpdateStatus(ctx, id, domain.StatusCompleted)
	if err != nil {
		t.Fatalf("repeated UpdateStatus: %v", err)
	}
	if !again.CompletedAt.Equal(firstCompleted) {
		t.Errorf("CompletedAt moved: %v -> %v", firstCompleted, again.CompletedAt)
	}

	// Backward transition is rejected and leaves the record untouched.
	if _, err := repo.UpdateStatus(ctx, id, domain.StatusAssigned); !errors.Is(err, domain.ErrStatusRegression) {
		t.Fatalf("err = %v, want ErrStatusRegression", err)
	}
	stored, _ := repo.GetByID(ctx, id)
	if stored.Status != domain.StatusCompleted {
		t.Errorf("status = %q after rejected transition", stored.Status)
	}
}

func TestAssignmentSaveResponse(t *testing.T) {
	repo := NewAssignmentRepository()
	ctx := context.Background()

	id, _ := repo.Create(ctx, &domain.WorksheetAssignment{
		ClientID: primitive.NewObjectID(), TherapistID: primitive.NewObjectID(), WorksheetID: "cbt-thought-record",
	})

	updated, err := repo.SaveResponse(ctx, id, domain.WorksheetResponse{
		Values:      map[string]any{"situation": "crowded train"},
		SubmittedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("SaveResponse: %v", err)
	}
	if updated.Status != domain.StatusInProgress {
		t.Errorf("status = %q, want in_progress after first save", updated.Status)
	}

	// Saving again overwrites wholesale and keeps the status.
	updated, err = repo.SaveResponse(ctx, id, domain.WorksheetResponse{
		Values:      map[string]any{"automatic_thought": "I can't cope"},
		SubmittedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("second SaveResponse: %v", err)
	}
	if updated.Status != domain.StatusInProgress {
		t.Errorf("status = %q, want in_progress", updated.Status)
	}
	if _, ok := updated.Response.Values["situation"]; ok {
		t.Error("old response key survived overwrite")
	}
}

func TestAssignmentClonesProtectStoredState(t *testing.T) {
	repo := NewAssignmentRepository()
	ctx := context.Background()

	id, _ := repo.Create(ctx, &domain.WorksheetAssignment{
		ClientID: primitive.NewObjectID(), TherapistID: primitive.NewObjectID(), WorksheetID: "cbt-thought-record",
		ClinicianConfig: &domain.ClinicianConfig{Values: map[string]any{"activity": "walk"}},
	})

	got, _ := repo.GetByID(ctx, id)
	got.ClinicianConfig.Values["activity"] = "mutated"
	got.Status = domain.StatusCompleted

	fresh, _ := repo.GetByID(ctx, id)
	if fresh.ClinicianConfig.Values["activity"] != "walk" {
		t.Error("caller mutation reached stored config")
	}
	if fresh.Status != domain.StatusAssigned {
		t.Error("caller mutation reached stored status")
	}
}
