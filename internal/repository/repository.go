package repository

import (
	"context"
	"time"

	"stepladder/practice-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer. Absent records are reported as
// ErrNotFound values, never as panics; callers branch with errors.Is.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for therapist account data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// ClientRepository defines the interface for caseload client data.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Client, error)
	GetByTherapistID(ctx context.Context, therapistID primitive.ObjectID) ([]domain.Client, error)
}

// AssignmentRepository defines the interface for worksheet assignment
// records. UpdateStatus and SaveResponse carry the lifecycle side effects
// described on domain.WorksheetAssignment; both return the updated record.
//
// The store offers no optimistic locking: concurrent writes to the same
// assignment are last-write-wins on the whole record, which is accepted for
// the one-client-device-per-assignment usage pattern.
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *domain.WorksheetAssignment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorksheetAssignment, error)
	// GetByClientID returns the client's assignments sorted by assignedAt
	// descending (most recent first).
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.WorksheetAssignment, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.AssignmentStatus) (*domain.WorksheetAssignment, error)
	SaveResponse(ctx context.Context, id primitive.ObjectID, response domain.WorksheetResponse) (*domain.WorksheetAssignment, error)
}

// HierarchyItemUpdate names the mutable fields of a hierarchy item. Nil
// fields are left untouched.
type HierarchyItemUpdate struct {
	Label        *string
	Description  *string
	Category     *string
	BaselineSUDS *int
	OrderIndex   *int
	IsActive     *bool
}

// HierarchyItemRepository defines the interface for exposure hierarchy
// items. Items are never deleted; they are retired via IsActive so logged
// runs keep their referent.
type HierarchyItemRepository interface {
	// CreateMany persists a batch, assigning IDs and timestamps in place.
	CreateMany(ctx context.Context, items []*domain.HierarchyItem) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.HierarchyItem, error)
	// GetByClientID returns the client's ladder sorted by orderIndex
	// ascending (easiest rung first).
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.HierarchyItem, error)
	Update(ctx context.Context, id primitive.ObjectID, update HierarchyItemUpdate) (*domain.HierarchyItem, error)
}

// ExposureRunRepository defines the interface for logged exposure runs.
// Runs are append-only.
type ExposureRunRepository interface {
	Create(ctx context.Context, run *domain.ExposureRun) (primitive.ObjectID, error)
	// GetByClientIDSince returns the client's runs at or after the cutoff,
	// sorted by occurredAt descending (most recent first).
	GetByClientIDSince(ctx context.Context, clientID primitive.ObjectID, since time.Time) ([]domain.ExposureRun, error)
	GetByHierarchyItemID(ctx context.Context, itemID primitive.ObjectID) ([]domain.ExposureRun, error)
}

// MagicLinkRepository defines the interface for client portal access tokens.
type MagicLinkRepository interface {
	Create(ctx context.Context, link *domain.MagicLink) (primitive.ObjectID, error)
	// GetActiveByToken resolves an active token; unknown and deactivated
	// tokens alike come back as ErrNotFound.
	GetActiveByToken(ctx context.Context, token string) (*domain.MagicLink, error)
	// DeactivateForClient retires every active link of the client. Called
	// before issuing a replacement so at most one link stays active.
	DeactivateForClient(ctx context.Context, clientID primitive.ObjectID) error
	// TouchLastUsed stamps the link's lastUsedAt on successful portal entry.
	TouchLastUsed(ctx context.Context, token string) error
}
