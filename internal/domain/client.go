package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Client is a person in a therapist's caseload. Clients are always owned by
// exactly one therapist and are addressed in the portal via magic links,
// never via credentials of their own.
type Client struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TherapistID primitive.ObjectID `bson:"therapistId" json:"therapistId"`
	DisplayName string             `bson:"displayName" json:"displayName"`
	Email       string             `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
