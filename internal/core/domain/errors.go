package domain

import "errors"

// ============================================================================
// Catalog Errors
// ============================================================================

// Not found errors
var (
	ErrCategoryNotFound       = errors.New("category not found")
	ErrSampleNotFound         = errors.New("sample not found")
	ErrColorizeRecordNotFound = errors.New("colorize record not found")
	ErrLabelSetNotLoaded      = errors.New("label set has not been loaded")
)

// Validation errors
var (
	ErrPageOutOfRange     = errors.New("page is out of range")
	ErrInvalidCategory    = errors.New("category name is required")
	ErrInvalidUID         = errors.New("sample uid is required")
	ErrInvalidColor       = errors.New("invalid hex color")
	ErrInvalidStatus      = errors.New("invalid colorize status")
	ErrDuplicateSampleUID = errors.New("sample uid appears in more than one category")
)

// ============================================================================
// Dataset Errors
// ============================================================================

var (
	ErrInvalidLabelSet       = errors.New("invalid label set document")
	ErrInvalidSemanticLabels = errors.New("invalid semantic label array")
	ErrFaceLabelMismatch     = errors.New("semantic label count does not match mesh face count")
	ErrInvalidMesh           = errors.New("invalid mesh")
	ErrUnsafeArchivePath     = errors.New("archive entry escapes destination directory")
	ErrHubFileNotFound       = errors.New("file not found on dataset hub")
)

// ============================================================================
// Integration Errors
// ============================================================================

var (
	ErrObjectStoreNotAvailable = errors.New("object store is not enabled")
	ErrObjectNotFound          = errors.New("object not found in bucket")
)
