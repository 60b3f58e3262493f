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

type clientRepository struct {
	mu      sync.Mutex
	records map[primitive.ObjectID]domain.Client
}

// NewClientRepository creates an in-memory caseload repository.
func NewClientRepository() repository.ClientRepository {
	return &clientRepository{records: make(map[primitive.ObjectID]domain.Client)}
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error) {
	if client.TherapistID == primitive.NilObjectID || client.DisplayName == "" {
		return primitive.NilObjectID, errors.New("client requires therapistId and displayName")
	}

	client.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	client.CreatedAt = now
	client.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[client.ID] = *client
	return client.ID, nil
}

func (r *clientRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	client, ok := r.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := client
	return &out, nil
}

func (r *clientRepository) GetByTherapistID(ctx context.Context, therapistID primitive.ObjectID) ([]domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Client
	for _, client := range r.records {
		if client.TherapistID == therapistID {
			out = append(out, client)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
