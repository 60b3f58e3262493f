package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"stepladder/practice-app/internal/catalog"
	"stepladder/practice-app/internal/domain"
	"stepladder/practice-app/internal/repository"
	"stepladder/practice-app/internal/repository/memory"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type therapistFixture struct {
	svc           TherapistService
	magicLinkRepo repository.MagicLinkRepository
	therapistID   primitive.ObjectID
	client        *domain.Client
}

func newTherapistFixture(t *testing.T) *therapistFixture {
	t.Helper()
	clientRepo := memory.NewClientRepository()
	assignmentRepo := memory.NewAssignmentRepository()
	magicLinkRepo := memory.NewMagicLinkRepository()
	svc := NewTherapistService(clientRepo, assignmentRepo, magicLinkRepo, catalog.Default())

	therapistID := primitive.NewObjectID()
	client, err := svc.CreateClient(context.Background(), therapistID, "A. Client", "client@example.com")
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	return &therapistFixture{svc: svc, magicLinkRepo: magicLinkRepo, therapistID: therapistID, client: client}
}

func TestCreateAndListClients(t *testing.T) {
	fx := newTherapistFixture(t)
	ctx := context.Background()

	clients, err := fx.svc.GetClients(ctx, fx.therapistID)
	if err != nil {
		t.Fatalf("GetClients: %v", err)
	}
	if len(clients) != 1 || clients[0].DisplayName != "A. Client" {
		t.Fatalf("clients = %+v", clients)
	}

	// Another therapist's caseload is empty.
	other, err := fx.svc.GetClients(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("GetClients(other): %v", err)
	}
	if len(other) != 0 {
		t.Errorf("foreign caseload = %+v", other)
	}
}

func TestGetClientOwnership(t *testing.T) {
	fx := newTherapistFixture(t)
	ctx := context.Background()

	if _, err := fx.svc.GetClient(ctx, primitive.NewObjectID(), fx.client.ID); !errors.Is(err, ErrClientAccessDenied) {
		t.Errorf("foreign therapist err = %v, want ErrClientAccessDenied", err)
	}
	if _, err := fx.svc.GetClient(ctx, fx.therapistID, primitive.NewObjectID()); !errors.Is(err, ErrClientNotFound) {
		t.Errorf("unknown client err = %v, want ErrClientNotFound", err)
	}
}

func TestAssignWorksheet(t *testing.T) {
	fx := newTherapistFixture(t)
	ctx := context.Background()
	due := time.Now().Add(7 * 24 * time.Hour).UTC()

	assignment, err := fx.svc.AssignWorksheet(ctx, fx.therapistID, fx.client.ID, AssignWorksheetInput{
		WorksheetID: "cbt-behavioral-activation",
		DueDate:     &due,
		Note:        "Try this before Friday's session.",
		ClinicianConfigValues: map[string]any{
			"activity":       "20 minute walk",
			"scheduled_date": "2025-03-10",
		},
	})
	if err != nil {
		t.Fatalf("AssignWorksheet: %v", err)
	}
	if assignment.Status != domain.StatusAssigned {
		t.Errorf("status = %q, want assigned", assignment.Status)
	}
	if assignment.ClinicianConfig == nil {
		t.Fatal("clinician config not stored")
	}
	if assignment.ClinicianConfig.Values["activity"] != "20 minute walk" {
		t.Errorf("config values = %v", assignment.ClinicianConfig.Values)
	}
	if assignment.ClinicianConfig.ConfiguredAt.IsZero() {
		t.Error("ConfiguredAt not stamped")
	}

	listed, err := fx.svc.GetClientAssignments(ctx, fx.therapistID, fx.client.ID)
	if err != nil {
		t.Fatalf("GetClientAssignments: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != assignment.ID {
		t.Errorf("listed = %+v", listed)
	}
}

func TestAssignWorksheetUnknownTemplate(t *testing.T) {
	fx := newTherapistFixture(t)
	_, err := fx.svc.AssignWorksheet(context.Background(), fx.therapistID, fx.client.ID, AssignWorksheetInput{
		WorksheetID: "not-in-the-catalog",
	})
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("err = %v, want ErrTemplateNotFound", err)
	}
}

func TestAssignWorksheetRejectsNonConfigurableField(t *testing.T) {
	fx := newTherapistFixture(t)
	// predicted_enjoyment exists on the template but is not clinician configurable.
	_, err := fx.svc.AssignWorksheet(context.Background(), fx.therapistID, fx.client.ID, AssignWorksheetInput{
		WorksheetID:           "cbt-behavioral-activation",
		ClinicianConfigValues: map[string]any{"predicted_enjoyment": 8},
	})
	if !errors.Is(err, ErrConfigFieldNotAllowed) {
		t.Fatalf("err = %v, want ErrConfigFieldNotAllowed", err)
	}
}

func TestAssignWorksheetEmptyConfigIsNil(t *testing.T) {
	fx := newTherapistFixture(t)
	assignment, err := fx.svc.AssignWorksheet(context.Background(), fx.therapistID, fx.client.ID, AssignWorksheetInput{
		WorksheetID: "cbt-thought-record",
	})
	if err != nil {
		t.Fatalf("AssignWorksheet: %v", err)
	}
	if assignment.ClinicianConfig != nil {
		t.Errorf("config = %+v, want nil without pre-filled values", assignment.ClinicianConfig)
	}
}

func TestUpdateAssignmentStatus(t *testing.T) {
	fx := newTherapistFixture(t)
	ctx := context.Background()

	assignment, _ := fx.svc.AssignWorksheet(ctx, fx.therapistID, fx.client.ID, AssignWorksheetInput{
		WorksheetID: "erp-exposure-run",
	})

	updated, err := fx.svc.UpdateAssignmentStatus(ctx, fx.therapistID, assignment.ID, domain.StatusCompleted)
	if err != nil {
		t.Fatalf("UpdateAssignmentStatus: %v", err)
	}
	if updated.Status != domain.StatusCompleted || updated.CompletedAt == nil {
		t.Errorf("updated = %+v", updated)
	}

	if _, err := fx.svc.UpdateAssignmentStatus(ctx, fx.therapistID, assignment.ID, domain.StatusInProgress); !errors.Is(err, domain.ErrStatusRegression) {
		t.Errorf("backward err = %v, want ErrStatusRegression", err)
	}
	if _, err := fx.svc.UpdateAssignmentStatus(ctx, fx.therapistID, assignment.ID, "paused"); !errors.Is(err, ErrInvalidAssignmentStatus) {
		t.Errorf("unknown status err = %v, want ErrInvalidAssignmentStatus", err)
	}
	if _, err := fx.svc.UpdateAssignmentStatus(ctx, primitive.NewObjectID(), assignment.ID, domain.StatusCompleted); !errors.Is(err, ErrAssignmentAccessDenied) {
		t.Errorf("foreign therapist err = %v, want ErrAssignmentAccessDenied", err)
	}
}

func TestRotateMagicLinkDeactivatesPrevious(t *testing.T) {
	fx := newTherapistFixture(t)
	ctx := context.Background()

	first, err := fx.svc.RotateMagicLink(ctx, fx.therapistID, fx.client.ID)
	if err != nil {
		t.Fatalf("first RotateMagicLink: %v", err)
	}
	second, err := fx.svc.RotateMagicLink(ctx, fx.therapistID, fx.client.ID)
	if err != nil {
		t.Fatalf("second RotateMagicLink: %v", err)
	}
	if first.Token == second.Token {
		t.Fatal("rotation reused the token")
	}

	if _, err := fx.magicLinkRepo.GetActiveByToken(ctx, first.Token); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("old token still active: err = %v", err)
	}
	if _, err := fx.magicLinkRepo.GetActiveByToken(ctx, second.Token); err != nil {
		t.Errorf("new token not active: %v", err)
	}
}
