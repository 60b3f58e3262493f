package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stepladder/practice-app/internal/catalog"
	"stepladder/practice-app/internal/domain"
	"stepladder/practice-app/internal/form"
	"stepladder/practice-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrInvalidPortalToken     = errors.New("portal link is invalid or has been deactivated")
	ErrAssignmentNotForClient = errors.New("assignment does not belong to this client")
	ErrAssignmentCompleted    = errors.New("assignment is already completed")
)

// PortalSession identifies the client resolved from a magic link token.
type PortalSession struct {
	ClientID    primitive.ObjectID
	DisplayName string
}

// PortalAssignment pairs an assignment with its template and a rendered form
// so the portal can show the worksheet without further lookups.
type PortalAssignment struct {
	Assignment *domain.WorksheetAssignment `json:"assignment"`
	Template   *domain.WorksheetTemplate   `json:"template"`
	Fields     []form.RenderedField        `json:"fields"`
	ReadOnly   bool                        `json:"readOnly"`
}

// PortalService covers everything the token-authenticated client portal can
// do: resolve a magic link, browse assigned worksheets, and fill them in.
type PortalService interface {
	ResolveToken(ctx context.Context, token string) (*PortalSession, error)
	GetAssignments(ctx context.Context, clientID primitive.ObjectID) ([]domain.WorksheetAssignment, error)
	GetAssignment(ctx context.Context, clientID, assignmentID primitive.ObjectID) (*PortalAssignment, error)
	// SaveDraft stores in-progress values without running required-field
	// validation. Saving a first draft moves the assignment to in_progress.
	SaveDraft(ctx context.Context, clientID, assignmentID primitive.ObjectID, values map[string]any) (*domain.WorksheetAssignment, error)
	// Submit validates the worksheet and, when every required field is
	// answered, stores the response and completes the assignment. Validation
	// failures come back as a non-nil field error map with a nil error.
	Submit(ctx context.Context, clientID, assignmentID primitive.ObjectID, values map[string]any) (*domain.WorksheetAssignment, form.Errors, error)
}

type portalService struct {
	clientRepo     repository.ClientRepository
	assignmentRepo repository.AssignmentRepository
	magicLinkRepo  repository.MagicLinkRepository
	registry       *catalog.Registry
}

// NewPortalService creates a new instance of portalService.
func NewPortalService(
	clientRepo repository.ClientRepository,
	assignmentRepo repository.AssignmentRepository,
	magicLinkRepo repository.MagicLinkRepository,
	registry *catalog.Registry,
) PortalService {
	return &portalService{
		clientRepo:     clientRepo,
		assignmentRepo: assignmentRepo,
		magicLinkRepo:  magicLinkRepo,
		registry:       registry,
	}
}

// ResolveToken exchanges a magic link token for a portal session, stamping
// the link's last-used time. Unknown and deactivated tokens are
// indistinguishable to the caller.
func (s *portalService) ResolveToken(ctx context.Context, token string) (*PortalSession, error) {
	if token == "" {
		return nil, ErrInvalidPortalToken
	}

	link, err := s.magicLinkRepo.GetActiveByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidPortalToken
		}
		return nil, err
	}

	client, err := s.clientRepo.GetByID(ctx, link.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidPortalToken
		}
		return nil, err
	}

	if err := s.magicLinkRepo.TouchLastUsed(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to stamp magic link usage: %w", err)
	}

	return &PortalSession{ClientID: client.ID, DisplayName: client.DisplayName}, nil
}

func (s *portalService) GetAssignments(ctx context.Context, clientID primitive.ObjectID) ([]domain.WorksheetAssignment, error) {
	return s.assignmentRepo.GetByClientID(ctx, clientID)
}

// GetAssignment loads one assignment together with a rendered form. Completed
// assignments render read-only; otherwise the form is editable and seeded
// with the assignment's effective values.
func (s *portalService) GetAssignment(ctx context.Context, clientID, assignmentID primitive.ObjectID) (*PortalAssignment, error) {
	assignment, template, err := s.clientAssignment(ctx, clientID, assignmentID)
	if err != nil {
		return nil, err
	}

	readOnly := assignment.Status == domain.StatusCompleted
	var f *form.Form
	if readOnly {
		f = form.NewReadOnly(template, assignment.EffectiveValues())
	} else {
		f = form.New(template, assignment.EffectiveValues())
	}

	return &PortalAssignment{
		Assignment: assignment,
		Template:   template,
		Fields:     f.Render(),
		ReadOnly:   readOnly,
	}, nil
}

func (s *portalService) SaveDraft(ctx context.Context, clientID, assignmentID primitive.ObjectID, values map[string]any) (*domain.WorksheetAssignment, error) {
	assignment, template, err := s.clientAssignment(ctx, clientID, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.Status == domain.StatusCompleted {
		return nil, ErrAssignmentCompleted
	}

	f := form.New(template, nil)
	applyValues(f, values)

	updated, err := s.assignmentRepo.SaveResponse(ctx, assignmentID, domain.WorksheetResponse{
		Values:      f.Values(),
		SubmittedAt: time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *portalService) Submit(ctx context.Context, clientID, assignmentID primitive.ObjectID, values map[string]any) (*domain.WorksheetAssignment, form.Errors, error) {
	assignment, template, err := s.clientAssignment(ctx, clientID, assignmentID)
	if err != nil {
		return nil, nil, err
	}
	if assignment.Status == domain.StatusCompleted {
		return nil, nil, ErrAssignmentCompleted
	}

	// Clinician pre-filled values count toward required fields even when the
	// client never touched them.
	f := form.New(template, assignment.EffectiveValues())
	applyValues(f, values)

	submitted, fieldErrors, err := f.Submit()
	if err != nil {
		return nil, nil, err
	}
	if len(fieldErrors) > 0 {
		return nil, fieldErrors, nil
	}

	if _, err := s.assignmentRepo.SaveResponse(ctx, assignmentID, domain.WorksheetResponse{
		Values:      submitted,
		SubmittedAt: time.Now().UTC(),
	}); err != nil {
		return nil, nil, err
	}

	completed, err := s.assignmentRepo.UpdateStatus(ctx, assignmentID, domain.StatusCompleted)
	if err != nil {
		return nil, nil, err
	}
	return completed, nil, nil
}

// applyValues feeds raw values through the form's per-field normalization.
// Values targeting unknown field ids are dropped; stored responses only ever
// contain keys the template defines.
func applyValues(f *form.Form, values map[string]any) {
	for fieldID, raw := range values {
		if err := f.SetValue(fieldID, raw); err != nil {
			continue
		}
	}
}

func (s *portalService) clientAssignment(ctx context.Context, clientID, assignmentID primitive.ObjectID) (*domain.WorksheetAssignment, *domain.WorksheetTemplate, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrAssignmentNotFound
		}
		return nil, nil, err
	}
	if assignment.ClientID != clientID {
		return nil, nil, ErrAssignmentNotForClient
	}

	template := s.registry.GetByID(assignment.WorksheetID)
	if template == nil {
		return nil, nil, ErrTemplateNotFound
	}
	return assignment, template, nil
}
