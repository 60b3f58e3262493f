package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MagicLink is an opaque token granting a client portal access to their own
// worksheets. At most one link per client is active; rotating deactivates
// the previous one.
type MagicLink struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID   primitive.ObjectID `bson:"clientId" json:"clientId"`
	Token      string             `bson:"token" json:"token"`
	IsActive   bool               `bson:"isActive" json:"isActive"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	LastUsedAt *time.Time         `bson:"lastUsedAt,omitempty" json:"lastUsedAt,omitempty"`
}
