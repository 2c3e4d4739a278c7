package ports

import (
	"time"

	"partobjaverse-viewer/internal/core/domain"
)

// MetricsRecorder receives colorization and dataset events for export
type MetricsRecorder interface {
	// ObserveColorize records one finished sample
	ObserveColorize(status domain.ColorizeStatus, duration time.Duration)

	// ObserveDownload records one hub fetch, cached or not
	ObserveDownload(filename string, cached bool)

	// SetDatasetSize publishes the loaded dataset size
	SetDatasetSize(summary domain.DatasetSummary)
}
