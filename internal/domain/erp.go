package domain

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SUDS values run 0-100 (subjective units of distress).
const (
	SUDSMin = 0
	SUDSMax = 100
)

func validSUDS(v int) bool {
	return v >= SUDSMin && v <= SUDSMax
}

// HierarchyItem is one rung of a client's exposure ladder: a feared
// situation with the distress the client predicts for it. Items are built by
// the therapist, ordered from easiest to hardest, and retired by flipping
// IsActive rather than deleting, so past exposure runs keep their referent.
type HierarchyItem struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID     primitive.ObjectID `bson:"clientId" json:"clientId"`
	TherapistID  primitive.ObjectID `bson:"therapistId" json:"therapistId"`
	Label        string             `bson:"label" json:"label"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Category     string             `bson:"category,omitempty" json:"category,omitempty"`
	BaselineSUDS int                `bson:"baselineSuds" json:"baselineSuds"`
	OrderIndex   int                `bson:"orderIndex" json:"orderIndex"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Validate checks the structural invariants of a hierarchy item.
func (i HierarchyItem) Validate() error {
	if i.Label == "" {
		return errors.New("hierarchy item label is required")
	}
	if !validSUDS(i.BaselineSUDS) {
		return fmt.Errorf("hierarchy item %q: baseline SUDS %d outside [%d,%d]", i.Label, i.BaselineSUDS, SUDSMin, SUDSMax)
	}
	return nil
}

// ExposureRun is one completed exposure practice a client logged against a
// hierarchy item: distress before, at peak, and after, plus whether a ritual
// happened.
type ExposureRun struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ClientID        primitive.ObjectID `bson:"clientId" json:"clientId"`
	AssignmentID    primitive.ObjectID `bson:"assignmentId" json:"assignmentId"`
	HierarchyItemID primitive.ObjectID `bson:"hierarchyItemId" json:"hierarchyItemId"`
	SUDSBefore      int                `bson:"sudsBefore" json:"sudsBefore"`
	SUDSPeak        int                `bson:"sudsPeak" json:"sudsPeak"`
	SUDSAfter       int                `bson:"sudsAfter" json:"sudsAfter"`
	DurationMinutes int                `bson:"durationMinutes" json:"durationMinutes"`
	DidRitual       bool               `bson:"didRitual" json:"didRitual"`
	RitualNotes     string             `bson:"ritualNotes,omitempty" json:"ritualNotes,omitempty"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	OccurredAt      time.Time          `bson:"occurredAt" json:"occurredAt"`
}

// Validate checks the structural invariants of an exposure run.
func (r ExposureRun) Validate() error {
	for _, suds := range []struct {
		name  string
		value int
	}{
		{"before", r.SUDSBefore},
		{"peak", r.SUDSPeak},
		{"after", r.SUDSAfter},
	} {
		if !validSUDS(suds.value) {
			return fmt.Errorf("exposure run: SUDS %s %d outside [%d,%d]", suds.name, suds.value, SUDSMin, SUDSMax)
		}
	}
	if r.DurationMinutes < 1 {
		return errors.New("exposure run: duration must be at least one minute")
	}
	return nil
}

// HierarchyItemMetrics summarizes the runs logged against one hierarchy
// item. Averages fall back to the item's baseline when no runs exist yet.
type HierarchyItemMetrics struct {
	RunsCompleted int `json:"runsCompleted"`
	AvgSUDSBefore int `json:"avgSudsBefore"`
	AvgSUDSAfter  int `json:"avgSudsAfter"`
}
