package domain

import (
	"errors"
	"testing"
	"time"
)

func newAssignment(status AssignmentStatus) *WorksheetAssignment {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return &WorksheetAssignment{
		WorksheetID:   "cbt-thought-record",
		Status:        status,
		AssignedAt:    now,
		LastUpdatedAt: now,
	}
}

func TestApplyStatusForward(t *testing.T) {
	a := newAssignment(StatusAssigned)
	now := time.Date(2025, 3, 2, 10, 0, 0, 0, time.UTC)

	if err := a.ApplyStatus(StatusInProgress, now); err != nil {
		t.Fatalf("ApplyStatus(in_progress): %v", err)
	}
	if a.Status != StatusInProgress {
		t.Fatalf("status = %q, want in_progress", a.Status)
	}
	if !a.LastUpdatedAt.Equal(now) {
		t.Errorf("LastUpdatedAt = %v, want %v", a.LastUpdatedAt, now)
	}
	if a.CompletedAt != nil {
		t.Errorf("CompletedAt set before completion")
	}
}

func TestApplyStatusCompletionIdempotent(t *testing.T) {
	a := newAssignment(StatusInProgress)
	first := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)
	second := first.Add(48 * time.Hour)

	if err := a.ApplyStatus(StatusCompleted, first); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	if a.CompletedAt == nil || !a.CompletedAt.Equal(first) {
		t.Fatalf("CompletedAt = %v, want %v", a.CompletedAt, first)
	}

	// Completing again must keep the original timestamp.
	if err := a.ApplyStatus(StatusCompleted, second); err != nil {
		t.Fatalf("repeated completion: %v", err)
	}
	if !a.CompletedAt.Equal(first) {
		t.Errorf("CompletedAt moved to %v on repeated completion", a.CompletedAt)
	}
	if !a.LastUpdatedAt.Equal(second) {
		t.Errorf("LastUpdatedAt = %v, want %v", a.LastUpdatedAt, second)
	}
}

func TestApplyStatusRejectsBackward(t *testing.T) {
	tests := []struct {
		from, to AssignmentStatus
	}{
		{StatusInProgress, StatusAssigned},
		{StatusCompleted, StatusInProgress},
		{StatusCompleted, StatusAssigned},
	}
	for _, tt := range tests {
		a := newAssignment(tt.from)
		err := a.ApplyStatus(tt.to, time.Now())
		if !errors.Is(err, ErrStatusRegression) {
			t.Errorf("%s -> %s: err = %v, want ErrStatusRegression", tt.from, tt.to, err)
		}
		if a.Status != tt.from {
			t.Errorf("%s -> %s: status mutated to %q", tt.from, tt.to, a.Status)
		}
	}
}

func TestApplyStatusUnknown(t *testing.T) {
	a := newAssignment(StatusAssigned)
	if err := a.ApplyStatus("archived", time.Now()); !errors.Is(err, ErrUnknownStatus) {
		t.Fatalf("err = %v, want ErrUnknownStatus", err)
	}
}

func TestApplyResponseAdvancesFromAssigned(t *testing.T) {
	a := newAssignment(StatusAssigned)
	now := time.Date(2025, 3, 4, 12, 0, 0, 0, time.UTC)

	a.ApplyResponse(WorksheetResponse{Values: map[string]any{"situation": "meeting"}, SubmittedAt: now}, now)

	if a.Status != StatusInProgress {
		t.Errorf("status = %q, want in_progress", a.Status)
	}
	if a.Response == nil || a.Response.Values["situation"] != "meeting" {
		t.Errorf("response not stored: %+v", a.Response)
	}
}

func TestApplyResponseKeepsCompletedStatus(t *testing.T) {
	a := newAssignment(StatusCompleted)
	a.ApplyResponse(WorksheetResponse{Values: map[string]any{}}, time.Now())
	if a.Status != StatusCompleted {
		t.Errorf("status = %q, want completed", a.Status)
	}
}

func TestApplyResponseOverwritesWholesale(t *testing.T) {
	a := newAssignment(StatusInProgress)
	a.ApplyResponse(WorksheetResponse{Values: map[string]any{"a": 1, "b": 2}}, time.Now())
	a.ApplyResponse(WorksheetResponse{Values: map[string]any{"b": 3}}, time.Now())

	if _, ok := a.Response.Values["a"]; ok {
		t.Errorf("old key survived overwrite: %v", a.Response.Values)
	}
	if a.Response.Values["b"] != 3 {
		t.Errorf("values = %v, want b=3", a.Response.Values)
	}
}

func TestEffectiveValuesResponseWins(t *testing.T) {
	a := newAssignment(StatusInProgress)
	a.ClinicianConfig = &ClinicianConfig{
		Values: map[string]any{"activity": "walk", "scheduled_date": "2025-03-10"},
	}
	a.Response = &WorksheetResponse{
		Values: map[string]any{"activity": "run", "completed": true},
	}

	got := a.EffectiveValues()
	if got["activity"] != "run" {
		t.Errorf("activity = %v, want client's own answer", got["activity"])
	}
	if got["scheduled_date"] != "2025-03-10" {
		t.Errorf("scheduled_date = %v, want clinician pre-fill", got["scheduled_date"])
	}
	if got["completed"] != true {
		t.Errorf("completed = %v, want true", got["completed"])
	}
}

func TestEffectiveValuesEmpty(t *testing.T) {
	a := newAssignment(StatusAssigned)
	if got := a.EffectiveValues(); len(got) != 0 {
		t.Errorf("EffectiveValues() = %v, want empty", got)
	}
}
