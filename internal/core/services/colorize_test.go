package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"partobjaverse-viewer/internal/core/domain"
	"partobjaverse-viewer/internal/testutil"
)

func TestColorMesh(t *testing.T) {
	m := testutil.Quad()
	require.NoError(t, ColorMesh(m, domain.SemanticLabels{0, 23}))

	require.Len(t, m.FaceColors, 2)
	assert.Equal(t, domain.LabelRGBA(0), m.FaceColors[0])
	assert.Equal(t, domain.LabelRGBA(1), m.FaceColors[1])
	assert.Equal(t, uint8(255), m.FaceColors[1][3])
}

func TestColorMesh_Mismatch(t *testing.T) {
	m := testutil.Quad()
	err := ColorMesh(m, domain.SemanticLabels{0})
	assert.ErrorIs(t, err, domain.ErrFaceLabelMismatch)
	assert.Nil(t, m.FaceColors)
}

type colorizeFixture struct {
	paths  MeshPaths
	codec  *testutil.MockMeshCodec
	labels *testutil.MockSemanticLabelReader
	repo   *testutil.MockCatalogRepo
	store  *testutil.MockObjectStore
	svc    *ColorizeService
}

func newColorizeFixture(t *testing.T, storeAvailable bool) *colorizeFixture {
	t.Helper()
	root := t.TempDir()
	f := &colorizeFixture{
		paths: MeshPaths{
			MeshesDir:     filepath.Join(root, "mesh"),
			SemanticGTDir: filepath.Join(root, "gt"),
			ColoredDir:    filepath.Join(root, "colored"),
		},
		codec:  new(testutil.MockMeshCodec),
		labels: new(testutil.MockSemanticLabelReader),
		repo:   new(testutil.MockCatalogRepo),
		store:  new(testutil.MockObjectStore),
	}
	f.store.On("IsAvailable").Return(storeAvailable).Maybe()
	f.svc = NewColorizeService(f.paths, f.codec, f.labels, f.repo, f.store, nil, 2)
	return f
}

func (f *colorizeFixture) expectColorize(uid string, labels domain.SemanticLabels) {
	f.codec.On("Load", f.paths.Mesh(uid)).Return(testutil.Quad(), nil)
	f.labels.On("ReadSemanticLabels", f.paths.SemanticGT(uid)).Return(labels, nil)
	f.codec.On("Save", f.paths.Colored(uid), mock.AnythingOfType("*domain.Mesh")).Return(nil)
}

func TestColorizeService_ColorizeSample(t *testing.T) {
	f := newColorizeFixture(t, true)
	f.expectColorize("v1", domain.SemanticLabels{0, 3})
	f.store.On("Publish", mock.Anything, "v1.glb", f.paths.Colored("v1")).Return(nil)
	f.repo.On("UpsertColorizeRecord", mock.Anything, mock.AnythingOfType("*domain.ColorizeRecord")).Return(nil)

	runID := uuid.New()
	rec, err := f.svc.ColorizeSample(context.Background(), runID, domain.Sample{UID: "v1", Category: "Vehicles"}, false)
	require.NoError(t, err)

	assert.Equal(t, domain.ColorizeStatusDone, rec.Status)
	assert.Equal(t, 2, rec.FaceCount)
	assert.Equal(t, 2, rec.PartCount)
	assert.Equal(t, runID, rec.RunID)
	assert.Equal(t, "Vehicles", rec.Category)
	assert.True(t, rec.Published)
	assert.False(t, rec.UpdatedAt.IsZero())

	saved := f.codec.Calls[1].Arguments.Get(1).(*domain.Mesh)
	assert.Len(t, saved.FaceColors, 2)
	f.store.AssertExpectations(t)
}

func TestColorizeService_ColorizeSample_SkipsExistingOutput(t *testing.T) {
	f := newColorizeFixture(t, false)
	require.NoError(t, os.MkdirAll(f.paths.ColoredDir, 0o755))
	require.NoError(t, os.WriteFile(f.paths.Colored("v1"), []byte("glb"), 0o644))

	f.repo.On("GetColorizeRecord", mock.Anything, "v1").Return(nil, domain.ErrColorizeRecordNotFound)
	f.repo.On("UpsertColorizeRecord", mock.Anything, mock.MatchedBy(func(r *domain.ColorizeRecord) bool {
		return r.Status == domain.ColorizeStatusSkipped
	})).Return(nil)

	rec, err := f.svc.ColorizeSample(context.Background(), uuid.New(), domain.Sample{UID: "v1"}, false)
	require.NoError(t, err)
	assert.Equal(t, domain.ColorizeStatusSkipped, rec.Status)
	f.codec.AssertNotCalled(t, "Load", mock.Anything)
}

func TestColorizeService_ColorizeSample_SkipKeepsExistingRecord(t *testing.T) {
	f := newColorizeFixture(t, false)
	require.NoError(t, os.MkdirAll(f.paths.ColoredDir, 0o755))
	require.NoError(t, os.WriteFile(f.paths.Colored("v1"), []byte("glb"), 0o644))

	prev := &domain.ColorizeRecord{UID: "v1", Status: domain.ColorizeStatusDone, FaceCount: 12, PartCount: 3}
	f.repo.On("GetColorizeRecord", mock.Anything, "v1").Return(prev, nil)

	rec, err := f.svc.ColorizeSample(context.Background(), uuid.New(), domain.Sample{UID: "v1"}, false)
	require.NoError(t, err)
	assert.Equal(t, domain.ColorizeStatusSkipped, rec.Status)
	assert.Equal(t, 12, rec.FaceCount)
	assert.Equal(t, domain.ColorizeStatusDone, prev.Status)
	f.repo.AssertNotCalled(t, "UpsertColorizeRecord", mock.Anything, mock.Anything)
}

func TestColorizeService_ColorizeSample_SkipBackfillsStore(t *testing.T) {
	f := newColorizeFixture(t, true)
	require.NoError(t, os.MkdirAll(f.paths.ColoredDir, 0o755))
	require.NoError(t, os.WriteFile(f.paths.Colored("v1"), []byte("glb"), 0o644))

	prev := &domain.ColorizeRecord{UID: "v1", Status: domain.ColorizeStatusDone, FaceCount: 12}
	f.repo.On("GetColorizeRecord", mock.Anything, "v1").Return(prev, nil)
	f.store.On("Exists", mock.Anything, "v1.glb").Return(false, nil)
	f.store.On("Publish", mock.Anything, "v1.glb", f.paths.Colored("v1")).Return(nil)
	f.repo.On("UpsertColorizeRecord", mock.Anything, mock.MatchedBy(func(r *domain.ColorizeRecord) bool {
		return r.Status == domain.ColorizeStatusDone && r.Published && r.FaceCount == 12
	})).Return(nil)

	rec, err := f.svc.ColorizeSample(context.Background(), uuid.New(), domain.Sample{UID: "v1"}, false)
	require.NoError(t, err)
	assert.Equal(t, domain.ColorizeStatusSkipped, rec.Status)
	assert.True(t, rec.Published)
	assert.False(t, prev.Published)
	f.store.AssertExpectations(t)
	f.repo.AssertExpectations(t)
}

func TestColorizeService_ColorizeSample_SkipAlreadyInStore(t *testing.T) {
	f := newColorizeFixture(t, true)
	require.NoError(t, os.MkdirAll(f.paths.ColoredDir, 0o755))
	require.NoError(t, os.WriteFile(f.paths.Colored("v1"), []byte("glb"), 0o644))

	f.repo.On("GetColorizeRecord", mock.Anything, "v1").Return(nil, domain.ErrColorizeRecordNotFound)
	f.store.On("Exists", mock.Anything, "v1.glb").Return(true, nil)
	f.repo.On("UpsertColorizeRecord", mock.Anything, mock.Anything).Return(nil)

	rec, err := f.svc.ColorizeSample(context.Background(), uuid.New(), domain.Sample{UID: "v1"}, false)
	require.NoError(t, err)
	assert.True(t, rec.Published)
	f.store.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestColorizeService_ColorizeSample_SkipRecoversFailedPublish(t *testing.T) {
	f := newColorizeFixture(t, true)
	f.expectColorize("v1", domain.SemanticLabels{0, 3})
	f.store.On("Publish", mock.Anything, "v1.glb", f.paths.Colored("v1")).Return(errors.New("bucket down")).Once()

	var stored []domain.ColorizeRecord
	f.repo.On("UpsertColorizeRecord", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		stored = append(stored, *args.Get(1).(*domain.ColorizeRecord))
	}).Return(nil)

	_, err := f.svc.ColorizeSample(context.Background(), uuid.New(), domain.Sample{UID: "v1"}, false)
	require.Error(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, domain.ColorizeStatusFailed, stored[0].Status)
	require.False(t, stored[0].Published)

	require.NoError(t, os.MkdirAll(f.paths.ColoredDir, 0o755))
	require.NoError(t, os.WriteFile(f.paths.Colored("v1"), []byte("glb"), 0o644))
	failed := stored[0]
	f.repo.On("GetColorizeRecord", mock.Anything, "v1").Return(&failed, nil)
	f.store.On("Exists", mock.Anything, "v1.glb").Return(false, nil)
	f.store.On("Publish", mock.Anything, "v1.glb", f.paths.Colored("v1")).Return(nil).Once()

	rec, err := f.svc.ColorizeSample(context.Background(), uuid.New(), domain.Sample{UID: "v1"}, false)
	require.NoError(t, err)
	assert.Equal(t, domain.ColorizeStatusSkipped, rec.Status)

	require.Len(t, stored, 2)
	assert.Equal(t, domain.ColorizeStatusDone, stored[1].Status)
	assert.True(t, stored[1].Published)
	assert.Empty(t, stored[1].Error)
	assert.Equal(t, 2, stored[1].FaceCount)
}

func TestColorizeService_ColorizeSample_SkipKeepsFailedWhenBackfillFails(t *testing.T) {
	f := newColorizeFixture(t, true)
	require.NoError(t, os.MkdirAll(f.paths.ColoredDir, 0o755))
	require.NoError(t, os.WriteFile(f.paths.Colored("v1"), []byte("glb"), 0o644))

	prev := &domain.ColorizeRecord{UID: "v1", Status: domain.ColorizeStatusFailed, Error: "publish colored mesh: bucket down"}
	f.repo.On("GetColorizeRecord", mock.Anything, "v1").Return(prev, nil)
	f.store.On("Exists", mock.Anything, "v1.glb").Return(false, errors.New("bucket down"))

	rec, err := f.svc.ColorizeSample(context.Background(), uuid.New(), domain.Sample{UID: "v1"}, false)
	require.NoError(t, err)
	assert.Equal(t, domain.ColorizeStatusSkipped, rec.Status)
	assert.False(t, rec.Published)
	f.repo.AssertNotCalled(t, "UpsertColorizeRecord", mock.Anything, mock.Anything)
}

func TestColorizeService_ColorizeSample_SkipSettlesFailedWithoutStore(t *testing.T) {
	f := newColorizeFixture(t, false)
	require.NoError(t, os.MkdirAll(f.paths.ColoredDir, 0o755))
	require.NoError(t, os.WriteFile(f.paths.Colored("v1"), []byte("glb"), 0o644))

	prev := &domain.ColorizeRecord{UID: "v1", Status: domain.ColorizeStatusFailed, Error: "publish colored mesh: bucket down", FaceCount: 2}
	f.repo.On("GetColorizeRecord", mock.Anything, "v1").Return(prev, nil)
	f.repo.On("UpsertColorizeRecord", mock.Anything, mock.MatchedBy(func(r *domain.ColorizeRecord) bool {
		return r.Status == domain.ColorizeStatusDone && r.Error == "" && r.FaceCount == 2
	})).Return(nil)

	_, err := f.svc.ColorizeSample(context.Background(), uuid.New(), domain.Sample{UID: "v1"}, false)
	require.NoError(t, err)
	f.repo.AssertExpectations(t)
}

func TestColorizeService_ColorizeSample_ForceRewrites(t *testing.T) {
	f := newColorizeFixture(t, false)
	require.NoError(t, os.MkdirAll(f.paths.ColoredDir, 0o755))
	require.NoError(t, os.WriteFile(f.paths.Colored("v1"), []byte("glb"), 0o644))

	f.expectColorize("v1", domain.SemanticLabels{1, 1})
	f.repo.On("UpsertColorizeRecord", mock.Anything, mock.Anything).Return(nil)

	rec, err := f.svc.ColorizeSample(context.Background(), uuid.New(), domain.Sample{UID: "v1"}, true)
	require.NoError(t, err)
	assert.Equal(t, domain.ColorizeStatusDone, rec.Status)
	assert.False(t, rec.Published)
	f.store.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestColorizeService_ColorizeSample_RecordsFailure(t *testing.T) {
	f := newColorizeFixture(t, false)
	f.codec.On("Load", f.paths.Mesh("v2")).Return(testutil.Quad(), nil)
	f.labels.On("ReadSemanticLabels", f.paths.SemanticGT("v2")).Return(domain.SemanticLabels{0, 1, 2}, nil)
	f.repo.On("UpsertColorizeRecord", mock.Anything, mock.MatchedBy(func(r *domain.ColorizeRecord) bool {
		return r.Status == domain.ColorizeStatusFailed && r.Error != ""
	})).Return(nil)

	rec, err := f.svc.ColorizeSample(context.Background(), uuid.New(), domain.Sample{UID: "v2"}, false)
	assert.ErrorIs(t, err, domain.ErrFaceLabelMismatch)
	require.NotNil(t, rec)
	assert.Equal(t, domain.ColorizeStatusFailed, rec.Status)
	f.codec.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.repo.AssertExpectations(t)
}

func TestColorizeService_ColorizeAll(t *testing.T) {
	f := newColorizeFixture(t, false)
	f.expectColorize("v1", domain.SemanticLabels{0, 1})
	f.expectColorize("v3", domain.SemanticLabels{2, 2})
	f.codec.On("Load", f.paths.Mesh("v2")).Return(nil, errors.New("corrupt glb"))
	f.repo.On("UpsertColorizeRecord", mock.Anything, mock.Anything).Return(nil)

	samples := []domain.Sample{{UID: "v1"}, {UID: "v2"}, {UID: "v3"}}
	summary, err := f.svc.ColorizeAll(context.Background(), samples, false)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, summary.RunID)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Done)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 0, summary.Skipped)
}

func TestColorizeService_ColorizeAll_Canceled(t *testing.T) {
	f := newColorizeFixture(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.ColorizeAll(ctx, []domain.Sample{{UID: "v1"}}, false)
	assert.ErrorIs(t, err, context.Canceled)
	f.codec.AssertNotCalled(t, "Load", mock.Anything)
}

func TestColorizeService_ColorizeUID(t *testing.T) {
	f := newColorizeFixture(t, false)
	f.repo.On("LabelSet", mock.Anything).Return(testutil.LabelSet(), nil)
	f.codec.On("Load", f.paths.Mesh("a1")).Return(nil, errors.New("missing"))
	f.repo.On("UpsertColorizeRecord", mock.Anything, mock.Anything).Return(nil)

	rec, err := f.svc.ColorizeUID(context.Background(), "a1", false)
	require.NoError(t, err)
	assert.Equal(t, domain.ColorizeStatusFailed, rec.Status)
	assert.Equal(t, "Animals", rec.Category)

	_, err = f.svc.ColorizeUID(context.Background(), "nope", false)
	assert.ErrorIs(t, err, domain.ErrSampleNotFound)
}
