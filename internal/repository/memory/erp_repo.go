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

type hierarchyItemRepository struct {
	mu      sync.Mutex
	records map[primitive.ObjectID]*domain.HierarchyItem
}

// NewHierarchyItemRepository creates an in-memory hierarchy item repository.
func NewHierarchyItemRepository() repository.HierarchyItemRepository {
	return &hierarchyItemRepository{
		records: make(map[primitive.ObjectID]*domain.HierarchyItem),
	}
}

func (r *hierarchyItemRepository) CreateMany(ctx context.Context, items []*domain.HierarchyItem) error {
	now := time.Now().UTC()
	for _, item := range items {
		if item.ClientID == primitive.NilObjectID {
			return errors.New("hierarchy item requires clientId")
		}
		item.ID = primitive.NewObjectID()
		item.CreatedAt = now
		item.UpdatedAt = now
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		stored := *item
		r.records[item.ID] = &stored
	}
	return nil
}

func (r *hierarchyItemRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.HierarchyItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *stored
	return &out, nil
}

func (r *hierarchyItemRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.HierarchyItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.HierarchyItem
	for _, stored := range r.records {
		if stored.ClientID == clientID {
			out = append(out, *stored)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OrderIndex < out[j].OrderIndex
	})
	return out, nil
}

func (r *hierarchyItemRepository) Update(ctx context.Context, id primitive.ObjectID, update repository.HierarchyItemUpdate) (*domain.HierarchyItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	updated := *stored
	if update.Label != nil {
		updated.Label = *update.Label
	}
	if update.Description != nil {
		updated.Description = *update.Description
	}
	if update.Category != nil {
		updated.Category = *update.Category
	}
	if update.BaselineSUDS != nil {
		updated.BaselineSUDS = *update.BaselineSUDS
	}
	if update.OrderIndex != nil {
		updated.OrderIndex = *update.OrderIndex
	}
	if update.IsActive != nil {
		updated.IsActive = *update.IsActive
	}
	updated.UpdatedAt = time.Now().UTC()

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	r.records[id] = &updated
	out := updated
	return &out, nil
}

type exposureRunRepository struct {
	mu      sync.Mutex
	records map[primitive.ObjectID]*domain.ExposureRun
}

// NewExposureRunRepository creates an in-memory exposure run repository.
func NewExposureRunRepository() repository.ExposureRunRepository {
	return &exposureRunRepository{
		records: make(map[primitive.ObjectID]*domain.ExposureRun),
	}
}

func (r *exposureRunRepository) Create(ctx context.Context, run *domain.ExposureRun) (primitive.ObjectID, error) {
	if run.ClientID == primitive.NilObjectID || run.HierarchyItemID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exposure run requires clientId and hierarchyItemId")
	}

	run.ID = primitive.NewObjectID()
	if run.OccurredAt.IsZero() {
		run.OccurredAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *run
	r.records[run.ID] = &stored
	return run.ID, nil
}

func (r *exposureRunRepository) GetByClientIDSince(ctx context.Context, clientID primitive.ObjectID, since time.Time) ([]domain.ExposureRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ExposureRun
	for _, stored := range r.records {
		if stored.ClientID == clientID && !stored.OccurredAt.Before(since) {
			out = append(out, *stored)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	return out, nil
}

func (r *exposureRunRepository) GetByHierarchyItemID(ctx context.Context, itemID primitive.ObjectID) ([]domain.ExposureRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ExposureRun
	for _, stored := range r.records {
		if stored.HierarchyItemID == itemID {
			out = append(out, *stored)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	return out, nil
}
