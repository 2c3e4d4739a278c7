package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"partobjaverse-viewer/internal/config"
	"partobjaverse-viewer/internal/core/domain"
	ports "partobjaverse-viewer/internal/core/ports/output"
	"partobjaverse-viewer/internal/testutil"
)

type datasetFixture struct {
	cfg       config.DatasetConfig
	hub       *testutil.MockHubClient
	extractor *testutil.MockArchiveExtractor
	decoder   *testutil.MockLabelSetDecoder
	repo      *testutil.MockCatalogRepo
	svc       *DatasetService
}

func newDatasetFixture(t *testing.T) *datasetFixture {
	t.Helper()
	root := t.TempDir()
	f := &datasetFixture{
		cfg: config.DatasetConfig{
			StaticDir:       filepath.Join(root, "static"),
			DataDir:         root,
			MeshesDir:       "mesh",
			ColoredDir:      "mesh_colored",
			SemanticGTDir:   "semantic_gt",
			RepoID:          "org/set",
			ColoredRepoID:   "org/colored",
			MeshArchive:     "mesh.zip",
			SemanticArchive: "semantic_gt.zip",
			ColoredArchive:  "mesh_colored.zip",
			LabelSetFile:    "semantic.json",
		},
		hub:       new(testutil.MockHubClient),
		extractor: new(testutil.MockArchiveExtractor),
		decoder:   new(testutil.MockLabelSetDecoder),
		repo:      new(testutil.MockCatalogRepo),
	}
	f.svc = NewDatasetService(f.cfg, f.hub, f.extractor, f.decoder, f.repo, nil)
	return f
}

// extractCreates simulates an archive that contains dir.
func extractCreates(dir string) func(mock.Arguments) {
	return func(mock.Arguments) { _ = os.MkdirAll(dir, 0o755) }
}

func TestDatasetService_EnsureMeshes_SkipsExisting(t *testing.T) {
	f := newDatasetFixture(t)
	require.NoError(t, os.MkdirAll(f.cfg.MeshesPath(), 0o755))

	require.NoError(t, f.svc.EnsureMeshes(context.Background()))
	f.hub.AssertNotCalled(t, "Download", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDatasetService_EnsureMeshes_DownloadsAndExtracts(t *testing.T) {
	f := newDatasetFixture(t)
	f.hub.On("Download", mock.Anything, "org/set", "mesh.zip", ports.RepoTypeDataset).Return("/cache/mesh.zip", nil)
	f.extractor.On("Extract", mock.Anything, "/cache/mesh.zip", f.cfg.StaticDir).
		Run(extractCreates(f.cfg.MeshesPath())).Return(nil)

	require.NoError(t, f.svc.EnsureMeshes(context.Background()))
	f.extractor.AssertExpectations(t)
}

func TestDatasetService_EnsureSemanticGT_ArchiveMissingDir(t *testing.T) {
	f := newDatasetFixture(t)
	f.hub.On("Download", mock.Anything, "org/set", "semantic_gt.zip", ports.RepoTypeDataset).Return("/cache/gt.zip", nil)
	f.extractor.On("Extract", mock.Anything, "/cache/gt.zip", f.cfg.DataDir).Return(nil)

	err := f.svc.EnsureSemanticGT(context.Background())
	assert.Error(t, err)
}

func TestDatasetService_EnsureMeshes_DownloadError(t *testing.T) {
	f := newDatasetFixture(t)
	f.hub.On("Download", mock.Anything, "org/set", "mesh.zip", ports.RepoTypeDataset).
		Return("", domain.ErrHubFileNotFound)

	err := f.svc.EnsureMeshes(context.Background())
	assert.ErrorIs(t, err, domain.ErrHubFileNotFound)
}

func TestDatasetService_LoadLabelSet(t *testing.T) {
	f := newDatasetFixture(t)
	doc := filepath.Join(t.TempDir(), "semantic.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{}`), 0o644))

	ls := testutil.LabelSet()
	f.hub.On("Download", mock.Anything, "org/set", "semantic.json", ports.RepoTypeDataset).Return(doc, nil)
	f.decoder.On("DecodeLabelSet", mock.Anything).Return(ls, nil)
	f.repo.On("ReplaceLabelSet", mock.Anything, ls).Return(nil)

	got, err := f.svc.LoadLabelSet(context.Background())
	require.NoError(t, err)
	assert.Same(t, ls, got)
	f.repo.AssertExpectations(t)
}

func TestDatasetService_LoadLabelSet_DecodeError(t *testing.T) {
	f := newDatasetFixture(t)
	doc := filepath.Join(t.TempDir(), "semantic.json")
	require.NoError(t, os.WriteFile(doc, []byte(`[`), 0o644))

	f.hub.On("Download", mock.Anything, "org/set", "semantic.json", ports.RepoTypeDataset).Return(doc, nil)
	f.decoder.On("DecodeLabelSet", mock.Anything).Return(nil, domain.ErrInvalidLabelSet)

	_, err := f.svc.LoadLabelSet(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidLabelSet)
	f.repo.AssertNotCalled(t, "ReplaceLabelSet", mock.Anything, mock.Anything)
}

func TestDatasetService_Prepare_HubSource(t *testing.T) {
	f := newDatasetFixture(t)
	require.NoError(t, os.MkdirAll(f.cfg.MeshesPath(), 0o755))
	doc := filepath.Join(t.TempDir(), "semantic.json")
	require.NoError(t, os.WriteFile(doc, []byte(`{}`), 0o644))

	f.hub.On("Download", mock.Anything, "org/colored", "mesh_colored.zip", ports.RepoTypeDataset).Return("/cache/c.zip", nil)
	f.extractor.On("Extract", mock.Anything, "/cache/c.zip", f.cfg.StaticDir).
		Run(extractCreates(f.cfg.ColoredPath())).Return(nil)
	f.hub.On("Download", mock.Anything, "org/set", "semantic.json", ports.RepoTypeDataset).Return(doc, nil)
	f.decoder.On("DecodeLabelSet", mock.Anything).Return(testutil.LabelSet(), nil)
	f.repo.On("ReplaceLabelSet", mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Prepare(context.Background(), domain.ColoredSourceHub)
	require.NoError(t, err)
	f.hub.AssertNotCalled(t, "Download", mock.Anything, "org/set", "semantic_gt.zip", mock.Anything)
}

func TestDatasetService_Prepare_StopsOnError(t *testing.T) {
	f := newDatasetFixture(t)
	boom := errors.New("boom")
	f.hub.On("Download", mock.Anything, "org/set", "mesh.zip", ports.RepoTypeDataset).Return("", boom)

	_, err := f.svc.Prepare(context.Background(), domain.ColoredSourceLocal)
	assert.ErrorIs(t, err, boom)
}
