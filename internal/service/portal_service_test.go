package service

import (
	"context"
	"errors"
	"testing"

	"stepladder/practice-app/internal/catalog"
	"stepladder/practice-app/internal/domain"
	"stepladder/practice-app/internal/repository/memory"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type portalFixture struct {
	therapist  TherapistService
	portal     PortalService
	clientID   primitive.ObjectID
	token      string
	assignment *domain.WorksheetAssignment
}

// newPortalFixture assigns the thought record worksheet and issues a portal
// link, mirroring the therapist-side setup a client would arrive with.
func newPortalFixture(t *testing.T) *portalFixture {
	t.Helper()
	ctx := context.Background()
	clientRepo := memory.NewClientRepository()
	assignmentRepo := memory.NewAssignmentRepository()
	magicLinkRepo := memory.NewMagicLinkRepository()
	registry := catalog.Default()

	therapist := NewTherapistService(clientRepo, assignmentRepo, magicLinkRepo, registry)
	portal := NewPortalService(clientRepo, assignmentRepo, magicLinkRepo, registry)

	therapistID := primitive.NewObjectID()
	client, err := therapist.CreateClient(ctx, therapistID, "B. Client", "")
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	assignment, err := therapist.AssignWorksheet(ctx, therapistID, client.ID, AssignWorksheetInput{
		WorksheetID: "cbt-thought-record",
	})
	if err != nil {
		t.Fatalf("AssignWorksheet: %v", err)
	}
	link, err := therapist.RotateMagicLink(ctx, therapistID, client.ID)
	if err != nil {
		t.Fatalf("RotateMagicLink: %v", err)
	}

	return &portalFixture{
		therapist:  therapist,
		portal:     portal,
		clientID:   client.ID,
		token:      link.Token,
		assignment: assignment,
	}
}

func TestResolveToken(t *testing.T) {
	fx := newPortalFixture(t)
	ctx := context.Background()

	session, err := fx.portal.ResolveToken(ctx, fx.token)
	if err != nil {
		t.Fatalf("ResolveToken: %v", err)
	}
	if session.ClientID != fx.clientID || session.DisplayName != "B. Client" {
		t.Errorf("session = %+v", session)
	}

	if _, err := fx.portal.ResolveToken(ctx, "bogus-token"); !errors.Is(err, ErrInvalidPortalToken) {
		t.Errorf("bogus token err = %v, want ErrInvalidPortalToken", err)
	}
	if _, err := fx.portal.ResolveToken(ctx, ""); !errors.Is(err, ErrInvalidPortalToken) {
		t.Errorf("empty token err = %v, want ErrInvalidPortalToken", err)
	}
}

func TestResolveTokenRejectsRotatedLink(t *testing.T) {
	fx := newPortalFixture(t)
	ctx := context.Background()

	assignment, _ := fx.therapist.GetAssignment(ctx, fx.assignment.TherapistID, fx.assignment.ID)
	if _, err := fx.therapist.RotateMagicLink(ctx, assignment.TherapistID, fx.clientID); err != nil {
		t.Fatalf("RotateMagicLink: %v", err)
	}

	if _, err := fx.portal.ResolveToken(ctx, fx.token); !errors.Is(err, ErrInvalidPortalToken) {
		t.Errorf("rotated token err = %v, want ErrInvalidPortalToken", err)
	}
}

func TestPortalGetAssignmentRendersForm(t *testing.T) {
	fx := newPortalFixture(t)

	pa, err := fx.portal.GetAssignment(context.Background(), fx.clientID, fx.assignment.ID)
	if err != nil {
		t.Fatalf("GetAssignment: %v", err)
	}
	if pa.Template.ID != "cbt-thought-record" {
		t.Errorf("template = %q", pa.Template.ID)
	}
	if len(pa.Fields) != len(pa.Template.Fields) {
		t.Errorf("rendered %d fields, template has %d", len(pa.Fields), len(pa.Template.Fields))
	}
	if pa.ReadOnly {
		t.Error("open assignment rendered read-only")
	}

	// Someone else's assignment is off limits.
	if _, err := fx.portal.GetAssignment(context.Background(), primitive.NewObjectID(), fx.assignment.ID); !errors.Is(err, ErrAssignmentNotForClient) {
		t.Errorf("foreign client err = %v, want ErrAssignmentNotForClient", err)
	}
}

func TestSaveDraftMovesToInProgress(t *testing.T) {
	fx := newPortalFixture(t)
	ctx := context.Background()

	updated, err := fx.portal.SaveDraft(ctx, fx.clientID, fx.assignment.ID, map[string]any{
		"situation":         "team standup",
		"emotion_intensity": 7,
		"ghost_field":       "dropped",
	})
	if err != nil {
		t.Fatalf("SaveDraft: %v", err)
	}
	if updated.Status != domain.StatusInProgress {
		t.Errorf("status = %q, want in_progress", updated.Status)
	}
	if updated.Response.Values["emotion_intensity"] != 7 {
		t.Errorf("values = %v", updated.Response.Values)
	}
	if _, ok := updated.Response.Values["ghost_field"]; ok {
		t.Error("unknown field id stored in response")
	}
}

func TestSubmitReportsMissingRequiredFields(t *testing.T) {
	fx := newPortalFixture(t)
	ctx := context.Background()

	assignment, fieldErrors, err := fx.portal.Submit(ctx, fx.clientID, fx.assignment.ID, map[string]any{
		"situation": "only one of the required answers",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if assignment != nil {
		t.Error("assignment returned despite validation failure")
	}
	for _, id := range []string{"entry_date", "automatic_thought", "emotion_intensity", "balanced_thought"} {
		if _, ok := fieldErrors[id]; !ok {
			t.Errorf("missing required field %q not reported: %v", id, fieldErrors)
		}
	}
	if _, ok := fieldErrors["situation"]; ok {
		t.Error("answered field reported as missing")
	}

	// Nothing was persisted by the failed submit.
	stored, err := fx.portal.GetAssignment(ctx, fx.clientID, fx.assignment.ID)
	if err != nil {
		t.Fatalf("GetAssignment: %v", err)
	}
	if stored.Assignment.Response != nil {
		t.Errorf("response persisted on failed submit: %+v", stored.Assignment.Response)
	}
	if stored.Assignment.Status != domain.StatusAssigned {
		t.Errorf("status = %q after failed submit", stored.Assignment.Status)
	}
}

func TestSubmitCompletesAssignment(t *testing.T) {
	fx := newPortalFixture(t)
	ctx := context.Background()

	answers := map[string]any{
		"entry_date":        "2025-03-05",
		"situation":         "crowded supermarket",
		"automatic_thought": "everyone is staring",
		"emotion_intensity": 8,
		"balanced_thought":  "most people are focused on their own shopping",
	}
	completed, fieldErrors, err := fx.portal.Submit(ctx, fx.clientID, fx.assignment.ID, answers)
	if err != nil || fieldErrors != nil {
		t.Fatalf("Submit: errs=%v err=%v", fieldErrors, err)
	}
	if completed.Status != domain.StatusCompleted || completed.CompletedAt == nil {
		t.Errorf("completed = %+v", completed)
	}

	// The completed worksheet renders read-only.
	pa, err := fx.portal.GetAssignment(ctx, fx.clientID, fx.assignment.ID)
	if err != nil {
		t.Fatalf("GetAssignment: %v", err)
	}
	if !pa.ReadOnly {
		t.Error("completed assignment rendered editable")
	}

	// And no further edits are accepted.
	if _, err := fx.portal.SaveDraft(ctx, fx.clientID, fx.assignment.ID, answers); !errors.Is(err, ErrAssignmentCompleted) {
		t.Errorf("SaveDraft after completion err = %v, want ErrAssignmentCompleted", err)
	}
	if _, _, err := fx.portal.Submit(ctx, fx.clientID, fx.assignment.ID, answers); !errors.Is(err, ErrAssignmentCompleted) {
		t.Errorf("Submit after completion err = %v, want ErrAssignmentCompleted", err)
	}
}

func TestSubmitCountsClinicianPrefilledRequiredFields(t *testing.T) {
	ctx := context.Background()
	clientRepo := memory.NewClientRepository()
	assignmentRepo := memory.NewAssignmentRepository()
	magicLinkRepo := memory.NewMagicLinkRepository()
	registry := catalog.Default()

	therapist := NewTherapistService(clientRepo, assignmentRepo, magicLinkRepo, registry)
	portal := NewPortalService(clientRepo, assignmentRepo, magicLinkRepo, registry)

	therapistID := primitive.NewObjectID()
	client, _ := therapist.CreateClient(ctx, therapistID, "C. Client", "")
	// substance is required and clinician configurable on the craving log.
	assignment, err := therapist.AssignWorksheet(ctx, therapistID, client.ID, AssignWorksheetInput{
		WorksheetID:           "sud-craving-log",
		ClinicianConfigValues: map[string]any{"substance": "alcohol"},
	})
	if err != nil {
		t.Fatalf("AssignWorksheet: %v", err)
	}

	completed, fieldErrors, err := portal.Submit(ctx, client.ID, assignment.ID, map[string]any{
		"log_date":          "2025-03-06",
		"craving_intensity": 6,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(fieldErrors) > 0 {
		t.Fatalf("fieldErrors = %v, clinician pre-fill should satisfy the requirement", fieldErrors)
	}
	if completed.Response.Values["substance"] != "alcohol" {
		t.Errorf("submitted values = %v", completed.Response.Values)
	}
}
