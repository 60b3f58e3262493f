// Package memory provides map-backed repository implementations. They back
// the test suite and any single-process deployment; the Mongo
// implementations are the production counterparts behind the same
// interfaces.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"stepladder/practice-app/internal/domain"
	"stepladder/practice-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type assignmentRepository struct {
	mu      sync.Mutex
	records map[primitive.ObjectID]*domain.WorksheetAssignment
}

// NewAssignmentRepository creates an in-memory assignment repository.
func NewAssignmentRepository() repository.AssignmentRepository {
	return &assignmentRepository{
		records: make(map[primitive.ObjectID]*domain.WorksheetAssignment),
	}
}

func (r *assignmentRepository) Create(ctx context.Context, assignment *domain.WorksheetAssignment) (primitive.ObjectID, error) {
	if assignment.ClientID == primitive.NilObjectID || assignment.WorksheetID == "" {
		return primitive.NilObjectID, errors.New("assignment requires clientId and worksheetId")
	}

	assignment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	assignment.AssignedAt = now
	assignment.LastUpdatedAt = now
	if assignment.Status == "" {
		assignment.Status = domain.StatusAssigned
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[assignment.ID] = cloneAssignment(assignment)
	return assignment.ID, nil
}

func (r *assignmentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorksheetAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneAssignment(stored), nil
}

func (r *assignmentRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.WorksheetAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.WorksheetAssignment
	for _, stored := range r.records {
		if stored.ClientID == clientID {
			out = append(out, *cloneAssignment(stored))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].AssignedAt.After(out[j].AssignedAt)
	})
	return out, nil
}

func (r *assignmentRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.AssignmentStatus) (*domain.WorksheetAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	updated := cloneAssignment(stored)
	if err := updated.ApplyStatus(status, time.Now().UTC()); err != nil {
		return nil, err
	}
	r.records[id] = updated
	return cloneAssignment(updated), nil
}

func (r *assignmentRepository) SaveResponse(ctx context.Context, id primitive.ObjectID, response domain.WorksheetResponse) (*domain.WorksheetAssignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	updated := cloneAssignment(stored)
	updated.ApplyResponse(response, time.Now().UTC())
	r.records[id] = updated
	return cloneAssignment(updated), nil
}

// cloneAssignment copies a record deeply enough that callers cannot mutate
// stored state through returned pointers.
func cloneAssignment(a *domain.WorksheetAssignment) *domain.WorksheetAssignment {
	out := *a
	if a.DueDate != nil {
		due := *a.DueDate
		out.DueDate = &due
	}
	if a.CompletedAt != nil {
		completed := *a.CompletedAt
		out.CompletedAt = &completed
	}
	if a.ClinicianConfig != nil {
		cfg := domain.ClinicianConfig{
			Values:       cloneValues(a.ClinicianConfig.Values),
			ConfiguredAt: a.ClinicianConfig.ConfiguredAt,
		}
		out.ClinicianConfig = &cfg
	}
	if a.Response != nil {
		resp := domain.WorksheetResponse{
			Values:      cloneValues(a.Response.Values),
			SubmittedAt: a.Response.SubmittedAt,
		}
		out.Response = &resp
	}
	return &out
}

func cloneValues(values map[string]any) map[string]any {
	if values == nil {
		return nil
	}
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
