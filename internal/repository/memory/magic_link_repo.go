package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"stepladder/practice-app/internal/domain"
	"stepladder/practice-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type magicLinkRepository struct {
	mu      sync.Mutex
	records map[primitive.ObjectID]domain.MagicLink
}

// NewMagicLinkRepository creates an in-memory magic link repository.
func NewMagicLinkRepository() repository.MagicLinkRepository {
	return &magicLinkRepository{records: make(map[primitive.ObjectID]domain.MagicLink)}
}

func (r *magicLinkRepository) Create(ctx context.Context, link *domain.MagicLink) (primitive.ObjectID, error) {
	if link.ClientID == primitive.NilObjectID || link.Token == "" {
		return primitive.NilObjectID, errors.New("magic link requires clientId and token")
	}

	link.ID = primitive.NewObjectID()
	link.CreatedAt = time.Now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[link.ID] = *link
	return link.ID, nil
}

func (r *magicLinkRepository) GetActiveByToken(ctx context.Context, token string) (*domain.MagicLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, link := range r.records {
		if link.Token == token && link.IsActive {
			out := link
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *magicLinkRepository) DeactivateForClient(ctx context.Context, clientID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, link := range r.records {
		if link.ClientID == clientID && link.IsActive {
			link.IsActive = false
			r.records[id] = link
		}
	}
	return nil
}

func (r *magicLinkRepository) TouchLastUsed(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, link := range r.records {
		if link.Token == token {
			now := time.Now().UTC()
			link.LastUsedAt = &now
			r.records[id] = link
			return nil
		}
	}
	return repository.ErrNotFound
}
