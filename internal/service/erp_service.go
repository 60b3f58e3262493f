package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"stepladder/practice-app/internal/domain"
	"stepladder/practice-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrHierarchyItemNotFound     = errors.New("hierarchy item not found")
	ErrHierarchyItemNotForClient = errors.New("hierarchy item does not belong to this client")
	ErrInvalidExposureRange      = errors.New("invalid exposure run range")
)

// Run listing ranges accepted by ListExposureRuns.
const (
	RangeLast7Days  = "last_7_days"
	RangeLast30Days = "last_30_days"
)

// HierarchyItemInput carries the therapist's fields for one new rung of a
// client's exposure ladder.
type HierarchyItemInput struct {
	Label        string
	Description  string
	Category     string
	BaselineSUDS int
}

// LogExposureInput carries a client's report of one completed exposure.
type LogExposureInput struct {
	AssignmentID    primitive.ObjectID
	HierarchyItemID primitive.ObjectID
	SUDSBefore      int
	SUDSPeak        int
	SUDSAfter       int
	DurationMinutes int
	DidRitual       bool
	RitualNotes     string
	Notes           string
}

// HierarchyItemWithMetrics pairs a ladder rung with aggregates over the runs
// logged against it.
type HierarchyItemWithMetrics struct {
	domain.HierarchyItem
	Metrics domain.HierarchyItemMetrics `json:"metrics"`
}

// ExposureRunWithLabel annotates a run with its hierarchy item's label so
// lists render without further lookups.
type ExposureRunWithLabel struct {
	domain.ExposureRun
	HierarchyLabel string `json:"hierarchyLabel"`
}

// ERPService covers the exposure ladder workflows: therapists build and tune
// a client's hierarchy and review logged runs, clients log runs from the
// portal.
type ERPService interface {
	// CreateHierarchyItems appends a batch of rungs to the client's ladder,
	// continuing the order index from the current maximum.
	CreateHierarchyItems(ctx context.Context, therapistID, clientID primitive.ObjectID, inputs []HierarchyItemInput) ([]domain.HierarchyItem, error)
	// GetHierarchy returns the ladder ordered easiest rung first, each item
	// annotated with run metrics.
	GetHierarchy(ctx context.Context, therapistID, clientID primitive.ObjectID) ([]HierarchyItemWithMetrics, error)
	UpdateHierarchyItem(ctx context.Context, therapistID, clientID, itemID primitive.ObjectID, update repository.HierarchyItemUpdate) (*domain.HierarchyItem, error)
	// ListExposureRuns returns the client's runs inside the named range,
	// most recent first.
	ListExposureRuns(ctx context.Context, therapistID, clientID primitive.ObjectID, runRange string) ([]ExposureRunWithLabel, error)

	// LogExposureRun records a run reported from the client portal. The
	// assignment and hierarchy item must both belong to the client.
	LogExposureRun(ctx context.Context, clientID primitive.ObjectID, input LogExposureInput) (*domain.ExposureRun, error)
}

type erpService struct {
	clientRepo     repository.ClientRepository
	assignmentRepo repository.AssignmentRepository
	hierarchyRepo  repository.HierarchyItemRepository
	runRepo        repository.ExposureRunRepository
}

// NewERPService creates a new instance of erpService.
func NewERPService(
	clientRepo repository.ClientRepository,
	assignmentRepo repository.AssignmentRepository,
	hierarchyRepo repository.HierarchyItemRepository,
	runRepo repository.ExposureRunRepository,
) ERPService {
	return &erpService{
		clientRepo:     clientRepo,
		assignmentRepo: assignmentRepo,
		hierarchyRepo:  hierarchyRepo,
		runRepo:        runRepo,
	}
}

func (s *erpService) CreateHierarchyItems(ctx context.Context, therapistID, clientID primitive.ObjectID, inputs []HierarchyItemInput) ([]domain.HierarchyItem, error) {
	if len(inputs) == 0 {
		return nil, errors.New("at least one hierarchy item is required")
	}
	if _, err := s.ownedClient(ctx, therapistID, clientID); err != nil {
		return nil, err
	}

	existing, err := s.hierarchyRepo.GetByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	nextIndex := 0
	for _, item := range existing {
		if item.OrderIndex >= nextIndex {
			nextIndex = item.OrderIndex + 1
		}
	}

	items := make([]*domain.HierarchyItem, 0, len(inputs))
	for i, input := range inputs {
		item := &domain.HierarchyItem{
			ClientID:     clientID,
			TherapistID:  therapistID,
			Label:        input.Label,
			Description:  input.Description,
			Category:     input.Category,
			BaselineSUDS: input.BaselineSUDS,
			OrderIndex:   nextIndex + i,
			IsActive:     true,
		}
		if err := item.Validate(); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := s.hierarchyRepo.CreateMany(ctx, items); err != nil {
		return nil, fmt.Errorf("failed to create hierarchy items: %w", err)
	}

	out := make([]domain.HierarchyItem, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out, nil
}

func (s *erpService) GetHierarchy(ctx context.Context, therapistID, clientID primitive.ObjectID) ([]HierarchyItemWithMetrics, error) {
	if _, err := s.ownedClient(ctx, therapistID, clientID); err != nil {
		return nil, err
	}

	items, err := s.hierarchyRepo.GetByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	out := make([]HierarchyItemWithMetrics, 0, len(items))
	for _, item := range items {
		runs, err := s.runRepo.GetByHierarchyItemID(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, HierarchyItemWithMetrics{
			HierarchyItem: item,
			Metrics:       itemMetrics(item, runs),
		})
	}
	return out, nil
}

// itemMetrics averages distress across the item's runs, rounding to the
// nearest whole SUDS point. With no runs the baseline stands in for both
// averages.
func itemMetrics(item domain.HierarchyItem, runs []domain.ExposureRun) domain.HierarchyItemMetrics {
	if len(runs) == 0 {
		return domain.HierarchyItemMetrics{
			RunsCompleted: 0,
			AvgSUDSBefore: item.BaselineSUDS,
			AvgSUDSAfter:  item.BaselineSUDS,
		}
	}

	var before, after int
	for _, run := range runs {
		before += run.SUDSBefore
		after += run.SUDSAfter
	}
	n := float64(len(runs))
	return domain.HierarchyItemMetrics{
		RunsCompleted: len(runs),
		AvgSUDSBefore: int(math.Round(float64(before) / n)),
		AvgSUDSAfter:  int(math.Round(float64(after) / n)),
	}
}

func (s *erpService) UpdateHierarchyItem(ctx context.Context, therapistID, clientID, itemID primitive.ObjectID, update repository.HierarchyItemUpdate) (*domain.HierarchyItem, error) {
	if _, err := s.ownedClient(ctx, therapistID, clientID); err != nil {
		return nil, err
	}
	if _, err := s.clientItem(ctx, clientID, itemID); err != nil {
		return nil, err
	}

	updated, err := s.hierarchyRepo.Update(ctx, itemID, update)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrHierarchyItemNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *erpService) ListExposureRuns(ctx context.Context, therapistID, clientID primitive.ObjectID, runRange string) ([]ExposureRunWithLabel, error) {
	since, err := rangeCutoff(runRange, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedClient(ctx, therapistID, clientID); err != nil {
		return nil, err
	}

	runs, err := s.runRepo.GetByClientIDSince(ctx, clientID, since)
	if err != nil {
		return nil, err
	}

	items, err := s.hierarchyRepo.GetByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	labels := make(map[primitive.ObjectID]string, len(items))
	for _, item := range items {
		labels[item.ID] = item.Label
	}

	out := make([]ExposureRunWithLabel, 0, len(runs))
	for _, run := range runs {
		out = append(out, ExposureRunWithLabel{
			ExposureRun:    run,
			HierarchyLabel: labels[run.HierarchyItemID],
		})
	}
	return out, nil
}

// rangeCutoff maps a named range to its cutoff time. An empty range defaults
// to the last 30 days.
func rangeCutoff(runRange string, now time.Time) (time.Time, error) {
	switch runRange {
	case RangeLast7Days:
		return now.AddDate(0, 0, -7), nil
	case RangeLast30Days, "":
		return now.AddDate(0, 0, -30), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidExposureRange, runRange)
	}
}

func (s *erpService) LogExposureRun(ctx context.Context, clientID primitive.ObjectID, input LogExposureInput) (*domain.ExposureRun, error) {
	assignment, err := s.assignmentRepo.GetByID(ctx, input.AssignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if assignment.ClientID != clientID {
		return nil, ErrAssignmentNotForClient
	}

	if _, err := s.clientItem(ctx, clientID, input.HierarchyItemID); err != nil {
		return nil, err
	}

	run := &domain.ExposureRun{
		ClientID:        clientID,
		AssignmentID:    input.AssignmentID,
		HierarchyItemID: input.HierarchyItemID,
		SUDSBefore:      input.SUDSBefore,
		SUDSPeak:        input.SUDSPeak,
		SUDSAfter:       input.SUDSAfter,
		DurationMinutes: input.DurationMinutes,
		DidRitual:       input.DidRitual,
		RitualNotes:     input.RitualNotes,
		Notes:           input.Notes,
		OccurredAt:      time.Now().UTC(),
	}
	if err := run.Validate(); err != nil {
		return nil, err
	}

	runID, err := s.runRepo.Create(ctx, run)
	if err != nil {
		return nil, fmt.Errorf("failed to create exposure run: %w", err)
	}
	run.ID = runID
	return run, nil
}

func (s *erpService) ownedClient(ctx context.Context, therapistID, clientID primitive.ObjectID) (*domain.Client, error) {
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

func (s *erpService) clientItem(ctx context.Context, clientID, itemID primitive.ObjectID) (*domain.HierarchyItem, error) {
	item, err := s.hierarchyRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrHierarchyItemNotFound
		}
		return nil, err
	}
	if item.ClientID != clientID {
		return nil, ErrHierarchyItemNotForClient
	}
	return item, nil
}
