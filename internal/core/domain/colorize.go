package domain

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Value Objects
// ============================================================================

// ColorizeStatus is the outcome of colorizing one sample.
type ColorizeStatus string

const (
	ColorizeStatusPending ColorizeStatus = "PENDING"
	ColorizeStatusDone    ColorizeStatus = "DONE"
	ColorizeStatusFailed  ColorizeStatus = "FAILED"
	ColorizeStatusSkipped ColorizeStatus = "SKIPPED"
)

// IsValid checks if the status is valid
func (s ColorizeStatus) IsValid() bool {
	switch s {
	case ColorizeStatusPending, ColorizeStatusDone, ColorizeStatusFailed, ColorizeStatusSkipped:
		return true
	}
	return false
}

// ColoredSource selects where colored meshes come from.
type ColoredSource string

const (
	ColoredSourceLocal ColoredSource = "local"
	ColoredSourceHub   ColoredSource = "hub"
)

// ============================================================================
// Entities
// ============================================================================

// ColorizeRecord tracks the last colorization attempt of a sample.
type ColorizeRecord struct {
	UID        string         `json:"uid"`
	Category   string         `json:"category"`
	Status     ColorizeStatus `json:"status"`
	FaceCount  int            `json:"face_count"`
	PartCount  int            `json:"part_count"`
	Error      string         `json:"error,omitempty"`
	DurationMS int64          `json:"duration_ms"`
	RunID      uuid.UUID      `json:"run_id"`
	Published  bool           `json:"published"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// RunSummary aggregates one batch colorization run.
type RunSummary struct {
	RunID   uuid.UUID `json:"run_id"`
	Total   int       `json:"total"`
	Done    int       `json:"done"`
	Skipped int       `json:"skipped"`
	Failed  int       `json:"failed"`
}

// Add counts a finished record.
func (s *RunSummary) Add(status ColorizeStatus) {
	switch status {
	case ColorizeStatusDone:
		s.Done++
	case ColorizeStatusSkipped:
		s.Skipped++
	case ColorizeStatusFailed:
		s.Failed++
	}
}
