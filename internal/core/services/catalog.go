package services

import (
	"context"
	"errors"
	"math"
	"path"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"partobjaverse-viewer/internal/core/domain"
	ports "partobjaverse-viewer/internal/core/ports/output"
)

// CategoryInfo is a category with its sample and page counts.
type CategoryInfo struct {
	Name        string `json:"name"`
	SampleCount int    `json:"sample_count"`
	PageCount   int    `json:"page_count"`
}

// SampleView is a sample ready for display.
type SampleView struct {
	UID            string                 `json:"uid"`
	Category       string                 `json:"category"`
	Legend         []domain.LegendEntry   `json:"legend"`
	MeshURL        string                 `json:"mesh_url"`
	ColoredMeshURL string                 `json:"colored_mesh_url"`
	Record         *domain.ColorizeRecord `json:"colorize_record,omitempty"`
}

// PageView is one page of a category.
type PageView struct {
	Category  CategoryInfo `json:"category"`
	Page      int          `json:"page"`
	PageCount int          `json:"page_count"`
	Samples   []SampleView `json:"samples"`
}

// CategoryStats summarizes part counts within a category.
type CategoryStats struct {
	Name            string  `json:"name"`
	SampleCount     int     `json:"sample_count"`
	MeanPartCount   float64 `json:"mean_part_count"`
	StdDevPartCount float64 `json:"stddev_part_count"`
	MaxPartCount    int     `json:"max_part_count"`
}

// URLConfig says where mesh files are served from.
type URLConfig struct {
	StaticPrefix string
	MeshesDir    string
	ColoredDir   string
	PresignTTL   time.Duration
}

// CatalogService answers browse queries from the stored label set
type CatalogService struct {
	repo  ports.CatalogRepository
	store ports.ObjectStore
	urls  URLConfig

	mu sync.RWMutex
	ls *domain.LabelSet
}

func NewCatalogService(repo ports.CatalogRepository, store ports.ObjectStore, urls URLConfig) *CatalogService {
	return &CatalogService{repo: repo, store: store, urls: urls}
}

func (s *CatalogService) labelSet(ctx context.Context) (*domain.LabelSet, error) {
	s.mu.RLock()
	ls := s.ls
	s.mu.RUnlock()
	if ls != nil {
		return ls, nil
	}
	return s.Reload(ctx)
}

// Reload drops the cached label set and reads it from the repository again.
func (s *CatalogService) Reload(ctx context.Context) (*domain.LabelSet, error) {
	ls, err := s.repo.LabelSet(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.ls = ls
	s.mu.Unlock()
	return ls, nil
}

func (s *CatalogService) Summary(ctx context.Context) (domain.DatasetSummary, error) {
	ls, err := s.labelSet(ctx)
	if err != nil {
		return domain.DatasetSummary{}, err
	}
	return ls.Summary(), nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]CategoryInfo, error) {
	ls, err := s.labelSet(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]CategoryInfo, 0, len(ls.Categories))
	for _, c := range ls.Categories {
		infos = append(infos, categoryInfo(&c))
	}
	return infos, nil
}

func categoryInfo(c *domain.Category) CategoryInfo {
	return CategoryInfo{
		Name:        c.Name,
		SampleCount: len(c.Samples),
		PageCount:   domain.PageCount(len(c.Samples)),
	}
}

// GetPage returns the samples of a 0-based page within a category.
func (s *CatalogService) GetPage(ctx context.Context, category string, page int) (*PageView, error) {
	ls, err := s.labelSet(ctx)
	if err != nil {
		return nil, err
	}
	c, err := ls.Category(category)
	if err != nil {
		return nil, err
	}

	start, end, err := domain.PageBounds(len(c.Samples), page)
	if err != nil {
		return nil, err
	}

	view := &PageView{
		Category:  categoryInfo(c),
		Page:      page,
		PageCount: domain.PageCount(len(c.Samples)),
		Samples:   make([]SampleView, 0, end-start),
	}
	for _, sample := range c.Samples[start:end] {
		sv, err := s.sampleView(ctx, sample)
		if err != nil {
			return nil, err
		}
		view.Samples = append(view.Samples, sv)
	}
	return view, nil
}

func (s *CatalogService) GetSample(ctx context.Context, uid string) (*SampleView, error) {
	ls, err := s.labelSet(ctx)
	if err != nil {
		return nil, err
	}
	sample, err := ls.Sample(uid)
	if err != nil {
		return nil, err
	}
	sv, err := s.sampleView(ctx, sample)
	if err != nil {
		return nil, err
	}
	return &sv, nil
}

func (s *CatalogService) sampleView(ctx context.Context, sample domain.Sample) (SampleView, error) {
	sv := SampleView{
		UID:            sample.UID,
		Category:       sample.Category,
		Legend:         domain.Legend(sample.PartLabels),
		MeshURL:        path.Join(s.urls.StaticPrefix, s.urls.MeshesDir, sample.UID+".glb"),
		ColoredMeshURL: path.Join(s.urls.StaticPrefix, s.urls.ColoredDir, sample.UID+".glb"),
	}

	rec, err := s.repo.GetColorizeRecord(ctx, sample.UID)
	switch {
	case err == nil:
		sv.Record = rec
	case !errors.Is(err, domain.ErrColorizeRecordNotFound):
		return SampleView{}, err
	}

	if sv.Record != nil && sv.Record.Published && s.store != nil && s.store.IsAvailable() {
		u, err := s.store.URL(ctx, ColoredKey(sample.UID), s.urls.PresignTTL)
		if err != nil {
			log.WithError(err).WithField("uid", sample.UID).Warn("presign colored mesh failed, serving local copy")
		} else {
			sv.ColoredMeshURL = u
		}
	}
	return sv, nil
}

// Stats reports per-category part count statistics in dataset order.
func (s *CatalogService) Stats(ctx context.Context) ([]CategoryStats, error) {
	ls, err := s.labelSet(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]CategoryStats, 0, len(ls.Categories))
	for _, c := range ls.Categories {
		st := CategoryStats{Name: c.Name, SampleCount: len(c.Samples)}
		counts := make([]float64, 0, len(c.Samples))
		for _, sample := range c.Samples {
			n := len(sample.PartLabels)
			counts = append(counts, float64(n))
			if n > st.MaxPartCount {
				st.MaxPartCount = n
			}
		}
		switch len(counts) {
		case 0:
		case 1:
			st.MeanPartCount = counts[0]
		default:
			st.MeanPartCount, st.StdDevPartCount = stat.MeanStdDev(counts, nil)
		}
		if math.IsNaN(st.StdDevPartCount) {
			st.StdDevPartCount = 0
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *CatalogService) ListColorizeRecords(ctx context.Context, filter ports.ColorizeRecordFilter) ([]*domain.ColorizeRecord, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.ListColorizeRecords(ctx, filter)
}

// Ping checks the backing repository.
func (s *CatalogService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
