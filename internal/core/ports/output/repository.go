package ports

import (
	"context"

	"partobjaverse-viewer/internal/core/domain"
)

// ============================================================================
// Catalog Repository
// ============================================================================

// ColorizeRecordFilter defines filters for listing colorize records
type ColorizeRecordFilter struct {
	Category string
	Status   string
	Limit    int
	Offset   int
}

// CatalogRepository persists the dataset label set and colorization state
type CatalogRepository interface {
	// ReplaceLabelSet stores the label set, dropping any previous copy
	ReplaceLabelSet(ctx context.Context, ls *domain.LabelSet) error

	// LabelSet loads the stored label set in dataset order
	LabelSet(ctx context.Context) (*domain.LabelSet, error)

	// UpsertColorizeRecord creates or overwrites the record for rec.UID
	UpsertColorizeRecord(ctx context.Context, rec *domain.ColorizeRecord) error

	// GetColorizeRecord retrieves the record for a sample
	GetColorizeRecord(ctx context.Context, uid string) (*domain.ColorizeRecord, error)

	// ListColorizeRecords lists records with filtering
	ListColorizeRecords(ctx context.Context, filter ColorizeRecordFilter) ([]*domain.ColorizeRecord, int, error)

	// Ping checks connectivity
	Ping(ctx context.Context) error

	Close() error
}
