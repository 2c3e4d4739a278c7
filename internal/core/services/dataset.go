package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"partobjaverse-viewer/internal/config"
	"partobjaverse-viewer/internal/core/domain"
	ports "partobjaverse-viewer/internal/core/ports/output"
)

// DatasetService fetches the dataset from the hub and loads its label set
type DatasetService struct {
	cfg       config.DatasetConfig
	hub       ports.HubClient
	extractor ports.ArchiveExtractor
	decoder   ports.LabelSetDecoder
	repo      ports.CatalogRepository
	metrics   ports.MetricsRecorder
}

func NewDatasetService(
	cfg config.DatasetConfig,
	hub ports.HubClient,
	extractor ports.ArchiveExtractor,
	decoder ports.LabelSetDecoder,
	repo ports.CatalogRepository,
	metrics ports.MetricsRecorder,
) *DatasetService {
	return &DatasetService{
		cfg:       cfg,
		hub:       hub,
		extractor: extractor,
		decoder:   decoder,
		repo:      repo,
		metrics:   metrics,
	}
}

// EnsureMeshes extracts the original meshes under the static directory.
func (s *DatasetService) EnsureMeshes(ctx context.Context) error {
	return s.ensureExtracted(ctx, s.cfg.MeshesPath(), s.cfg.RepoID, s.cfg.MeshArchive, s.cfg.StaticDir)
}

// EnsureSemanticGT extracts the per-face label arrays under the data directory.
func (s *DatasetService) EnsureSemanticGT(ctx context.Context) error {
	return s.ensureExtracted(ctx, s.cfg.SemanticGTPath(), s.cfg.RepoID, s.cfg.SemanticArchive, s.cfg.DataDir)
}

// EnsureColoredMeshes fetches prebuilt colored meshes instead of computing them.
func (s *DatasetService) EnsureColoredMeshes(ctx context.Context) error {
	return s.ensureExtracted(ctx, s.cfg.ColoredPath(), s.cfg.ColoredRepoID, s.cfg.ColoredArchive, s.cfg.StaticDir)
}

func (s *DatasetService) ensureExtracted(ctx context.Context, dir, repoID, archive, outDir string) error {
	if _, err := os.Stat(dir); err == nil {
		log.WithField("dir", dir).Info("directory already exists, skipping download")
		return nil
	}

	archivePath, err := s.hub.Download(ctx, repoID, archive, ports.RepoTypeDataset)
	if err != nil {
		return fmt.Errorf("download %s: %w", archive, err)
	}
	if err := s.extractor.Extract(ctx, archivePath, outDir); err != nil {
		return fmt.Errorf("extract %s: %w", archive, err)
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("%s did not contain %s: %w", archive, filepath.Base(dir), err)
	}
	return nil
}

// LoadLabelSet fetches the semantic label document and stores it in the catalog.
func (s *DatasetService) LoadLabelSet(ctx context.Context) (*domain.LabelSet, error) {
	path, err := s.hub.Download(ctx, s.cfg.RepoID, s.cfg.LabelSetFile, ports.RepoTypeDataset)
	if err != nil {
		return nil, fmt.Errorf("download label set: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open label set: %w", err)
	}
	defer f.Close()

	ls, err := s.decoder.DecodeLabelSet(f)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceLabelSet(ctx, ls); err != nil {
		return nil, err
	}

	summary := ls.Summary()
	if s.metrics != nil {
		s.metrics.SetDatasetSize(summary)
	}
	log.WithFields(log.Fields{
		"samples":    summary.SampleCount,
		"categories": summary.CategoryCount,
	}).Info("label set loaded")
	return ls, nil
}

// Prepare makes the dataset ready to serve: meshes, semantic labels and the
// label set. Colored meshes are fetched here only for the hub source.
func (s *DatasetService) Prepare(ctx context.Context, source domain.ColoredSource) (*domain.LabelSet, error) {
	if err := s.EnsureMeshes(ctx); err != nil {
		return nil, err
	}
	if source == domain.ColoredSourceHub {
		if err := s.EnsureColoredMeshes(ctx); err != nil {
			return nil, err
		}
	} else if err := s.EnsureSemanticGT(ctx); err != nil {
		return nil, err
	}
	return s.LoadLabelSet(ctx)
}
