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

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrClientNotFound          = errors.New("client not found")
	ErrClientAccessDenied      = errors.New("client does not belong to this therapist")
	ErrTemplateNotFound        = errors.New("worksheet template not found")
	ErrAssignmentNotFound      = errors.New("assignment not found")
	ErrAssignmentAccessDenied  = errors.New("assignment does not belong to this therapist")
	ErrConfigFieldNotAllowed   = errors.New("clinician config references a field that is not clinician-configurable")
	ErrInvalidAssignmentStatus = errors.New("invalid assignment status")
)

// AssignWorksheetInput carries everything a therapist chooses when assigning
// a worksheet to a client.
type AssignWorksheetInput struct {
	WorksheetID           string
	DueDate               *time.Time
	Note                  string
	ClinicianConfigValues map[string]any
}

// TherapistService covers the therapist-facing workflows: caseload
// management, worksheet assignment, and portal link rotation.
type TherapistService interface {
	CreateClient(ctx context.Context, therapistID primitive.ObjectID, displayName, email string) (*domain.Client, error)
	GetClients(ctx context.Context, therapistID primitive.ObjectID) ([]domain.Client, error)
	GetClient(ctx context.Context, therapistID, clientID primitive.ObjectID) (*domain.Client, error)

	AssignWorksheet(ctx context.Context, therapistID, clientID primitive.ObjectID, input AssignWorksheetInput) (*domain.WorksheetAssignment, error)
	GetClientAssignments(ctx context.Context, therapistID, clientID primitive.ObjectID) ([]domain.WorksheetAssignment, error)
	GetAssignment(ctx context.Context, therapistID, assignmentID primitive.ObjectID) (*domain.WorksheetAssignment, error)
	UpdateAssignmentStatus(ctx context.Context, therapistID, assignmentID primitive.ObjectID, status domain.AssignmentStatus) (*domain.WorksheetAssignment, error)

	RotateMagicLink(ctx context.Context, therapistID, clientID primitive.ObjectID) (*domain.MagicLink, error)
}

type therapistService struct {
	clientRepo     repository.ClientRepository
	assignmentRepo repository.AssignmentRepository
	magicLinkRepo  repository.MagicLinkRepository
	registry       *catalog.Registry
}

// NewTherapistService creates a new instance of therapistService.
func NewTherapistService(
	clientRepo repository.ClientRepository,
	assignmentRepo repository.AssignmentRepository,
	magicLinkRepo repository.MagicLinkRepository,
	registry *catalog.Registry,
) TherapistService {
	return &therapistService{
		clientRepo:     clientRepo,
		assignmentRepo: assignmentRepo,
		magicLinkRepo:  magicLinkRepo,
		registry:       registry,
	}
}

func (s *therapistService) CreateClient(ctx context.Context, therapistID primitive.ObjectID, displayName, email string) (*domain.Client, error) {
	if displayName == "" {
		return nil, errors.New("client display name cannot be empty")
	}

	client := &domain.Client{
		TherapistID: therapistID,
		DisplayName: displayName,
		Email:       email,
	}
	clientID, err := s.clientRepo.Create(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	client.ID = clientID
	return client, nil
}

func (s *therapistService) GetClients(ctx context.Context, therapistID primitive.ObjectID) ([]domain.Client, error) {
	return s.clientRepo.GetByTherapistID(ctx, therapistID)
}

func (s *therapistService) GetClient(ctx context.Context, therapistID, clientID primitive.ObjectID) (*domain.Client, error) {
	return s.ownedClient(ctx, therapistID, clientID)
}

// AssignWorksheet creates a new assignment of a catalog template to a client.
// The worksheet id must exist in the catalog, and any clinician pre-filled
// values may only target fields the template marks clinician-configurable.
func (s *therapistService) AssignWorksheet(ctx context.Context, therapistID, clientID primitive.ObjectID, input AssignWorksheetInput) (*domain.WorksheetAssignment, error) {
	if _, err := s.ownedClient(ctx, therapistID, clientID); err != nil {
		return nil, err
	}

	template := s.registry.GetByID(input.WorksheetID)
	if template == nil {
		return nil, ErrTemplateNotFound
	}

	config, err := buildClinicianConfig(template, input.ClinicianConfigValues)
	if err != nil {
		return nil, err
	}

	assignment := &domain.WorksheetAssignment{
		ClientID:        clientID,
		TherapistID:     therapistID,
		WorksheetID:     template.ID,
		Status:          domain.StatusAssigned,
		DueDate:         input.DueDate,
		Note:            input.Note,
		ClinicianConfig: config,
	}

	assignmentID, err := s.assignmentRepo.Create(ctx, assignment)
	if err != nil {
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}
	assignment.ID = assignmentID
	return assignment, nil
}

// buildClinicianConfig validates and normalizes therapist pre-filled values.
// A nil or empty value map yields a nil config.
func buildClinicianConfig(template *domain.WorksheetTemplate, values map[string]any) (*domain.ClinicianConfig, error) {
	if len(values) == 0 {
		return nil, nil
	}

	configForm := form.NewConfig(template, nil)
	for fieldID, raw := range values {
		if err := configForm.SetValue(fieldID, raw); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrConfigFieldNotAllowed, fieldID)
		}
	}

	normalized := configForm.Values()
	if len(normalized) == 0 {
		return nil, nil
	}
	return &domain.ClinicianConfig{
		Values:       normalized,
		ConfiguredAt: time.Now().UTC(),
	}, nil
}

func (s *therapistService) GetClientAssignments(ctx context.Context, therapistID, clientID primitive.ObjectID) ([]domain.WorksheetAssignment, error) {
	if _, err := s.ownedClient(ctx, therapistID, clientID); err != nil {
		return nil, err
	}
	return s.assignmentRepo.GetByClientID(ctx, clientID)
}

func (s *therapistService) GetAssignment(ctx context.Context, therapistID, assignmentID primitive.ObjectID) (*domain.WorksheetAssignment, error) {
	return s.ownedAssignment(ctx, therapistID, assignmentID)
}

// UpdateAssignmentStatus lets the therapist move an assignment forward, e.g.
// marking a paper-completed worksheet as completed. Backward transitions are
// rejected by the domain.
func (s *therapistService) UpdateAssignmentStatus(ctx context.Context, therapistID, assignmentID primitive.ObjectID, status domain.AssignmentStatus) (*domain.WorksheetAssignment, error) {
	if !status.Valid() {
		return nil, ErrInvalidAssignmentStatus
	}
	if _, err := s.ownedAssignment(ctx, therapistID, assignmentID); err != nil {
		return nil, err
	}

	updated, err := s.assignmentRepo.UpdateStatus(ctx, assignmentID, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return updated, nil
}

// RotateMagicLink deactivates the client's existing portal links and issues a
// fresh token. At most one link per client is active at any time.
func (s *therapistService) RotateMagicLink(ctx context.Context, therapistID, clientID primitive.ObjectID) (*domain.MagicLink, error) {
	if _, err := s.ownedClient(ctx, therapistID, clientID); err != nil {
		return nil, err
	}

	if err := s.magicLinkRepo.DeactivateForClient(ctx, clientID); err != nil {
		return nil, fmt.Errorf("failed to deactivate existing links: %w", err)
	}

	link := &domain.MagicLink{
		ClientID: clientID,
		Token:    uuid.NewString(),
		IsActive: true,
	}
	linkID, err := s.magicLinkRepo.Create(ctx, link)
	if err != nil {
		return nil, fmt.Errorf("failed to create magic link: %w", err)
	}
	link.ID = linkID
	return link, nil
}

func (s *therapistService) ownedClient(ctx context.Context, therapistID, clientID primitive.ObjectID) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	if client.TherapistID != therapistID {
		return nil, ErrClientAccessDenied
	}
	return client, nil
}

func (s *therapistService) ownedAssignment(ctx context.Context, therapistID, assignmentID primitive.ObjectID) (*domain.WorksheetAssignment, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if assignment.TherapistID != therapistID {
		return nil, ErrAssignmentAccessDenied
	}
	return assignment, nil
}
