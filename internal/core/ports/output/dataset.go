package ports

import (
	"context"
	"io"

	"partobjaverse-viewer/internal/core/domain"
)

// RepoType distinguishes hub repository kinds.
type RepoType string

const (
	RepoTypeModel   RepoType = "model"
	RepoTypeDataset RepoType = "dataset"
)

// HubClient fetches files from the dataset hub into a local cache
type HubClient interface {
	// Download returns the local path of the cached file, fetching it if needed
	Download(ctx context.Context, repoID, filename string, repoType RepoType) (string, error)
}

// ArchiveExtractor unpacks archives
type ArchiveExtractor interface {
	Extract(ctx context.Context, archivePath, outDir string) error
}

// LabelSetDecoder parses the semantic label document
type LabelSetDecoder interface {
	DecodeLabelSet(r io.Reader) (*domain.LabelSet, error)
}

// SemanticLabelReader loads per-face labels of one sample
type SemanticLabelReader interface {
	ReadSemanticLabels(path string) (domain.SemanticLabels, error)
}

// MeshCodec loads and stores binary glTF meshes
type MeshCodec interface {
	Load(path string) (*domain.Mesh, error)
	Save(path string, mesh *domain.Mesh) error
}
