package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentStatus type for the worksheet assignment lifecycle.
type AssignmentStatus string

const (
	StatusAssigned   AssignmentStatus = "assigned"    // created, client has not started
	StatusInProgress AssignmentStatus = "in_progress" // at least one response saved
	StatusCompleted  AssignmentStatus = "completed"   // terminal
)

// statusRank orders the lifecycle. Transitions may only move forward.
var statusRank = map[AssignmentStatus]int{
	StatusAssigned:   0,
	StatusInProgress: 1,
	StatusCompleted:  2,
}

// Valid reports whether s is one of the three lifecycle states.
func (s AssignmentStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

var (
	ErrUnknownStatus = errors.New("unknown assignment status")
	// ErrStatusRegression is returned when a caller attempts to move an
	// assignment backward in its lifecycle (e.g. completed -> assigned).
	ErrStatusRegression = errors.New("assignment status cannot move backward")
)

// WorksheetResponse is the client's submitted values for an assignment,
// keyed by WorksheetField id. A single latest response is kept; saving
// overwrites wholesale.
type WorksheetResponse struct {
	Values      map[string]any `bson:"values" json:"values"`
	SubmittedAt time.Time      `bson:"submittedAt" json:"submittedAt"`
}

// ClinicianConfig holds values a therapist pre-filled into clinician
// configurable fields before the client saw the worksheet.
type ClinicianConfig struct {
	Values       map[string]any `bson:"values" json:"values"`
	ConfiguredAt time.Time      `bson:"configuredAt" json:"configuredAt"`
}

// WorksheetAssignment binds one worksheet template to one client, as
// assigned by a therapist.
type WorksheetAssignment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID    primitive.ObjectID `bson:"clientId" json:"clientId"`
	TherapistID primitive.ObjectID `bson:"therapistId" json:"therapistId"` // denormalized for ownership checks
	WorksheetID string             `bson:"worksheetId" json:"worksheetId"` // catalog template id

	Status        AssignmentStatus `bson:"status" json:"status"`
	AssignedAt    time.Time        `bson:"assignedAt" json:"assignedAt"`
	LastUpdatedAt time.Time        `bson:"lastUpdatedAt" json:"lastUpdatedAt"`
	DueDate       *time.Time       `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	CompletedAt   *time.Time       `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	Note          string           `bson:"note,omitempty" json:"note,omitempty"`

	ClinicianConfig *ClinicianConfig   `bson:"clinicianConfig,omitempty" json:"clinicianConfig,omitempty"`
	Response        *WorksheetResponse `bson:"response,omitempty" json:"response,omitempty"`
}

// ApplyStatus advances the lifecycle to next, stamping LastUpdatedAt.
// CompletedAt is set exactly once, the first time the assignment becomes
// completed; repeated completion calls leave the timestamp untouched.
// Backward transitions return ErrStatusRegression.
func (a *WorksheetAssignment) ApplyStatus(next AssignmentStatus, now time.Time) error {
	if !next.Valid() {
		return ErrUnknownStatus
	}
	if statusRank[next] < statusRank[a.Status] {
		return ErrStatusRegression
	}
	a.Status = next
	a.LastUpdatedAt = now
	if next == StatusCompleted && a.CompletedAt == nil {
		completed := now
		a.CompletedAt = &completed
	}
	return nil
}

// ApplyResponse overwrites the stored response and, if the client had not
// started yet, advances the lifecycle to in_progress. Already in_progress or
// completed assignments keep their status.
func (a *WorksheetAssignment) ApplyResponse(resp WorksheetResponse, now time.Time) {
	a.Response = &resp
	a.LastUpdatedAt = now
	if a.Status == StatusAssigned {
		a.Status = StatusInProgress
	}
}

// EffectiveValues merges clinician pre-filled values with the client's
// response values. On key collision the client's own answer wins.
func (a *WorksheetAssignment) EffectiveValues() map[string]any {
	merged := make(map[string]any)
	if a.ClinicianConfig != nil {
		for k, v := range a.ClinicianConfig.Values {
			merged[k] = v
		}
	}
	if a.Response != nil {
		for k, v := range a.Response.Values {
			merged[k] = v
		}
	}
	return merged
}
