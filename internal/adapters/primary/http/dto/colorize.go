package dto

import (
	"time"

	"github.com/google/uuid"

	"partobjaverse-viewer/internal/core/domain"
)

// ============================================================================
// Response DTOs
// ============================================================================

type ColorizeRecordResponse struct {
	UID        string    `json:"uid"`
	Category   string    `json:"category"`
	Status     string    `json:"status"`
	FaceCount  int       `json:"face_count"`
	PartCount  int       `json:"part_count"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	RunID      uuid.UUID `json:"run_id"`
	Published  bool      `json:"published"`
	UpdatedAt  string    `json:"updated_at"`
}

type ListColorizeRecordsResponse struct {
	Items      []ColorizeRecordResponse `json:"items"`
	Total      int                      `json:"total"`
	PageSize   int                      `json:"page_size"`
	NextOffset int                      `json:"next_offset"`
}

func ToColorizeRecordResponse(r *domain.ColorizeRecord) ColorizeRecordResponse {
	return ColorizeRecordResponse{
		UID:        r.UID,
		Category:   r.Category,
		Status:     string(r.Status),
		FaceCount:  r.FaceCount,
		PartCount:  r.PartCount,
		Error:      r.Error,
		DurationMS: r.DurationMS,
		RunID:      r.RunID,
		Published:  r.Published,
		UpdatedAt:  r.UpdatedAt.Format(time.RFC3339),
	}
}
