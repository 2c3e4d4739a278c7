package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partobjaverse-viewer/internal/core/domain"
	ports "partobjaverse-viewer/internal/core/ports/output"
)

func newTestRepo(t *testing.T) ports.CatalogRepository {
	t.Helper()
	repo, err := NewCatalogRepository(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testLabelSet(t *testing.T) *domain.LabelSet {
	t.Helper()
	ls, err := domain.NewLabelSet([]domain.Category{
		{Name: "Vehicles", Samples: []domain.Sample{
			{UID: "v2", PartLabels: []string{"wheel", "body"}},
			{UID: "v1", PartLabels: []string{"door"}},
		}},
		{Name: "Empty"},
		{Name: "Animals", Samples: []domain.Sample{
			{UID: "a1", PartLabels: []string{}},
		}},
	})
	require.NoError(t, err)
	return ls
}

func TestLabelSet_NotLoaded(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.LabelSet(context.Background())
	assert.ErrorIs(t, err, domain.ErrLabelSetNotLoaded)
}

func TestReplaceLabelSet_RoundTripKeepsOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceLabelSet(ctx, testLabelSet(t)))

	ls, err := repo.LabelSet(ctx)
	require.NoError(t, err)
	require.Len(t, ls.Categories, 3)
	assert.Equal(t, "Vehicles", ls.Categories[0].Name)
	assert.Equal(t, "Empty", ls.Categories[1].Name)
	assert.Empty(t, ls.Categories[1].Samples)
	assert.Equal(t, []string{"v2", "v1", "a1"}, ls.UIDs())

	s, err := ls.Sample("v2")
	require.NoError(t, err)
	assert.Equal(t, []string{"wheel", "body"}, s.PartLabels)
}

func TestReplaceLabelSet_Replaces(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.ReplaceLabelSet(ctx, testLabelSet(t)))

	smaller, err := domain.NewLabelSet([]domain.Category{
		{Name: "Only", Samples: []domain.Sample{{UID: "o1"}}},
	})
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceLabelSet(ctx, smaller))

	ls, err := repo.LabelSet(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"o1"}, ls.UIDs())
}

func TestColorizeRecords(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	runID := uuid.New()
	now := time.Now().UTC().Truncate(time.Millisecond)

	rec := &domain.ColorizeRecord{
		UID: "v1", Category: "Vehicles", Status: domain.ColorizeStatusFailed,
		Error: "boom", RunID: runID, UpdatedAt: now,
	}
	require.NoError(t, repo.UpsertColorizeRecord(ctx, rec))

	rec.Status = domain.ColorizeStatusDone
	rec.Error = ""
	rec.FaceCount = 12
	rec.PartCount = 3
	rec.Published = true
	require.NoError(t, repo.UpsertColorizeRecord(ctx, rec))
	require.NoError(t, repo.UpsertColorizeRecord(ctx, &domain.ColorizeRecord{
		UID: "a1", Category: "Animals", Status: domain.ColorizeStatusSkipped, RunID: runID, UpdatedAt: now,
	}))

	got, err := repo.GetColorizeRecord(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, domain.ColorizeStatusDone, got.Status)
	assert.Equal(t, 12, got.FaceCount)
	assert.True(t, got.Published)
	assert.Equal(t, runID, got.RunID)
	assert.True(t, now.Equal(got.UpdatedAt))

	recs, total, err := repo.ListColorizeRecords(ctx, ports.ColorizeRecordFilter{Status: "DONE", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, recs, 1)
	assert.Equal(t, "v1", recs[0].UID)

	recs, total, err = repo.ListColorizeRecords(ctx, ports.ColorizeRecordFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, recs, 1)
	assert.Equal(t, "v1", recs[0].UID)

	_, err = repo.GetColorizeRecord(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrColorizeRecordNotFound)
}

func TestUpsertColorizeRecord_InvalidStatus(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.UpsertColorizeRecord(context.Background(), &domain.ColorizeRecord{UID: "x", Status: "WEIRD"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestPing(t *testing.T) {
	assert.NoError(t, newTestRepo(t).Ping(context.Background()))
}
