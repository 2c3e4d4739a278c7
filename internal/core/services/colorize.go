package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"partobjaverse-viewer/internal/core/domain"
	ports "partobjaverse-viewer/internal/core/ports/output"
)

// MeshPaths locates per-sample files.
type MeshPaths struct {
	MeshesDir     string
	SemanticGTDir string
	ColoredDir    string
}

func (p MeshPaths) Mesh(uid string) string       { return filepath.Join(p.MeshesDir, uid+".glb") }
func (p MeshPaths) SemanticGT(uid string) string { return filepath.Join(p.SemanticGTDir, uid+".npy") }
func (p MeshPaths) Colored(uid string) string    { return filepath.Join(p.ColoredDir, uid+".glb") }

// ColoredKey is the object store key of a colored mesh.
func ColoredKey(uid string) string {
	return uid + ".glb"
}

// ColorMesh paints every face with the palette color of its semantic label.
func ColorMesh(mesh *domain.Mesh, labels domain.SemanticLabels) error {
	if len(labels) != len(mesh.Faces) {
		return fmt.Errorf("%w: %d labels for %d faces", domain.ErrFaceLabelMismatch, len(labels), len(mesh.Faces))
	}

	mesh.FaceColors = make([][4]uint8, len(mesh.Faces))
	for i, label := range labels {
		mesh.FaceColors[i] = domain.LabelRGBA(int(label % int64(len(domain.Palette))))
	}
	return nil
}

// ColorizeService writes part-colored copies of dataset meshes
type ColorizeService struct {
	paths   MeshPaths
	codec   ports.MeshCodec
	labels  ports.SemanticLabelReader
	repo    ports.CatalogRepository
	store   ports.ObjectStore
	metrics ports.MetricsRecorder
	workers int
}

func NewColorizeService(
	paths MeshPaths,
	codec ports.MeshCodec,
	labels ports.SemanticLabelReader,
	repo ports.CatalogRepository,
	store ports.ObjectStore,
	metrics ports.MetricsRecorder,
	workers int,
) *ColorizeService {
	if workers <= 0 {
		workers = 1
	}
	return &ColorizeService{
		paths:   paths,
		codec:   codec,
		labels:  labels,
		repo:    repo,
		store:   store,
		metrics: metrics,
		workers: workers,
	}
}

// ColorizeSample colors one sample and records the outcome. A failure is
// both recorded and returned.
func (s *ColorizeService) ColorizeSample(ctx context.Context, runID uuid.UUID, sample domain.Sample, force bool) (*domain.ColorizeRecord, error) {
	start := time.Now()
	rec := &domain.ColorizeRecord{
		UID:      sample.UID,
		Category: sample.Category,
		Status:   domain.ColorizeStatusDone,
		RunID:    runID,
	}

	out := s.paths.Colored(sample.UID)
	if !force {
		if _, err := os.Stat(out); err == nil {
			return s.skip(ctx, rec, out)
		}
	}

	err := s.colorize(ctx, sample.UID, out, rec)
	if err != nil {
		rec.Status = domain.ColorizeStatusFailed
		rec.Error = err.Error()
	}
	rec.DurationMS = time.Since(start).Milliseconds()
	rec.UpdatedAt = time.Now()

	if s.metrics != nil {
		s.metrics.ObserveColorize(rec.Status, time.Since(start))
	}
	if uerr := s.repo.UpsertColorizeRecord(ctx, rec); uerr != nil {
		log.WithError(uerr).WithField("uid", sample.UID).Error("record colorize result failed")
		if err == nil {
			err = uerr
		}
	}
	return rec, err
}

func (s *ColorizeService) colorize(ctx context.Context, uid, out string, rec *domain.ColorizeRecord) error {
	mesh, err := s.codec.Load(s.paths.Mesh(uid))
	if err != nil {
		return fmt.Errorf("load mesh: %w", err)
	}
	labels, err := s.labels.ReadSemanticLabels(s.paths.SemanticGT(uid))
	if err != nil {
		return fmt.Errorf("load semantic labels: %w", err)
	}
	if err := ColorMesh(mesh, labels); err != nil {
		return err
	}
	if err := s.codec.Save(out, mesh); err != nil {
		return fmt.Errorf("save colored mesh: %w", err)
	}

	rec.FaceCount = len(mesh.Faces)
	rec.PartCount = labels.PartCount()

	if s.storeAvailable() {
		if err := s.store.Publish(ctx, ColoredKey(uid), out); err != nil {
			return fmt.Errorf("publish colored mesh: %w", err)
		}
		rec.Published = true
	}
	return nil
}

// skip keeps an existing record's counts. When the store is enabled, an
// output written before it was turned on is uploaded. A record that failed
// after its output was written is settled once nothing is left to publish.
func (s *ColorizeService) skip(ctx context.Context, rec *domain.ColorizeRecord, out string) (*domain.ColorizeRecord, error) {
	if s.metrics != nil {
		s.metrics.ObserveColorize(domain.ColorizeStatusSkipped, 0)
	}

	dirty := false
	existing, err := s.repo.GetColorizeRecord(ctx, rec.UID)
	switch {
	case err == nil:
		stored := *existing
		rec = &stored
	case errors.Is(err, domain.ErrColorizeRecordNotFound):
		rec.Status = domain.ColorizeStatusSkipped
		dirty = true
	default:
		return nil, err
	}

	if !rec.Published && s.storeAvailable() {
		if err := s.backfill(ctx, rec.UID, out); err != nil {
			log.WithError(err).WithField("uid", rec.UID).Warn("publish existing colored mesh failed")
		} else {
			rec.Published = true
			dirty = true
		}
	}

	if rec.Status == domain.ColorizeStatusFailed && (rec.Published || !s.storeAvailable()) {
		rec.Status = domain.ColorizeStatusDone
		rec.Error = ""
		dirty = true
	}

	if dirty {
		rec.UpdatedAt = time.Now()
		if err := s.repo.UpsertColorizeRecord(ctx, rec); err != nil {
			return nil, err
		}
	}

	skipped := *rec
	skipped.Status = domain.ColorizeStatusSkipped
	return &skipped, nil
}

func (s *ColorizeService) backfill(ctx context.Context, uid, out string) error {
	key := ColoredKey(uid)
	ok, err := s.store.Exists(ctx, key)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return s.store.Publish(ctx, key, out)
}

func (s *ColorizeService) storeAvailable() bool {
	return s.store != nil && s.store.IsAvailable()
}

// ColorizeAll colors samples on a bounded worker pool. Per-sample failures
// are counted, not returned; only cancellation aborts the run.
func (s *ColorizeService) ColorizeAll(ctx context.Context, samples []domain.Sample, force bool) (*domain.RunSummary, error) {
	summary := &domain.RunSummary{RunID: uuid.New(), Total: len(samples)}
	logger := log.WithField("run_id", summary.RunID)
	logger.WithFields(log.Fields{
		"samples": len(samples),
		"workers": s.workers,
	}).Info("processing meshes")

	var (
		mu        sync.Mutex
		processed int
		step      = progressStep(len(samples))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, sample := range samples {
		if gctx.Err() != nil {
			break
		}
		sample := sample
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			rec, err := s.ColorizeSample(gctx, summary.RunID, sample, force)
			if err != nil {
				logger.WithError(err).WithField("uid", sample.UID).Warn("colorize sample failed")
			}

			mu.Lock()
			defer mu.Unlock()
			processed++
			if rec != nil {
				summary.Add(rec.Status)
			} else {
				summary.Add(domain.ColorizeStatusFailed)
			}
			if processed%step == 0 || processed == len(samples) {
				logger.Infof("processed %d/%d meshes", processed, len(samples))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	logger.WithFields(log.Fields{
		"done":    summary.Done,
		"skipped": summary.Skipped,
		"failed":  summary.Failed,
	}).Info("colorize run finished")
	return summary, nil
}

// ColorizeUID recolors one sample by uid, looking it up in the stored label set.
func (s *ColorizeService) ColorizeUID(ctx context.Context, uid string, force bool) (*domain.ColorizeRecord, error) {
	ls, err := s.repo.LabelSet(ctx)
	if err != nil {
		return nil, err
	}
	sample, err := ls.Sample(uid)
	if err != nil {
		return nil, err
	}
	rec, err := s.ColorizeSample(ctx, uuid.New(), sample, force)
	if rec != nil && rec.Status == domain.ColorizeStatusFailed {
		// the failure is part of the record
		return rec, nil
	}
	return rec, err
}

func progressStep(total int) int {
	step := total / 10
	if step < 1 {
		step = 1
	}
	return step
}
