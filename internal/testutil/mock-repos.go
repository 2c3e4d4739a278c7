package testutil

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"partobjaverse-viewer/internal/core/domain"
	ports "partobjaverse-viewer/internal/core/ports/output"
)

// MockCatalogRepo is a mock of CatalogRepository.
type MockCatalogRepo struct {
	mock.Mock
}

func (m *MockCatalogRepo) ReplaceLabelSet(ctx context.Context, ls *domain.LabelSet) error {
	args := m.Called(ctx, ls)
	return args.Error(0)
}

func (m *MockCatalogRepo) LabelSet(ctx context.Context) (*domain.LabelSet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LabelSet), args.Error(1)
}

func (m *MockCatalogRepo) UpsertColorizeRecord(ctx context.Context, rec *domain.ColorizeRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockCatalogRepo) GetColorizeRecord(ctx context.Context, uid string) (*domain.ColorizeRecord, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ColorizeRecord), args.Error(1)
}

func (m *MockCatalogRepo) ListColorizeRecords(ctx context.Context, filter ports.ColorizeRecordFilter) ([]*domain.ColorizeRecord, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.ColorizeRecord), args.Int(1), args.Error(2)
}

func (m *MockCatalogRepo) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCatalogRepo) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockHubClient is a mock of HubClient.
type MockHubClient struct {
	mock.Mock
}

func (m *MockHubClient) Download(ctx context.Context, repoID, filename string, repoType ports.RepoType) (string, error) {
	args := m.Called(ctx, repoID, filename, repoType)
	return args.String(0), args.Error(1)
}

// MockArchiveExtractor is a mock of ArchiveExtractor. Run hooks can
// create the directories a real extraction would.
type MockArchiveExtractor struct {
	mock.Mock
}

func (m *MockArchiveExtractor) Extract(ctx context.Context, archivePath, outDir string) error {
	args := m.Called(ctx, archivePath, outDir)
	return args.Error(0)
}

// MockLabelSetDecoder is a mock of LabelSetDecoder.
type MockLabelSetDecoder struct {
	mock.Mock
}

func (m *MockLabelSetDecoder) DecodeLabelSet(r io.Reader) (*domain.LabelSet, error) {
	args := m.Called(r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LabelSet), args.Error(1)
}

// MockSemanticLabelReader is a mock of SemanticLabelReader.
type MockSemanticLabelReader struct {
	mock.Mock
}

func (m *MockSemanticLabelReader) ReadSemanticLabels(path string) (domain.SemanticLabels, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.SemanticLabels), args.Error(1)
}

// MockMeshCodec is a mock of MeshCodec.
type MockMeshCodec struct {
	mock.Mock
}

func (m *MockMeshCodec) Load(path string) (*domain.Mesh, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Mesh), args.Error(1)
}

func (m *MockMeshCodec) Save(path string, mesh *domain.Mesh) error {
	args := m.Called(path, mesh)
	return args.Error(0)
}

// MockObjectStore is a mock of ObjectStore.
type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) IsAvailable() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockObjectStore) Publish(ctx context.Context, key, path string) error {
	args := m.Called(ctx, key, path)
	return args.Error(0)
}

func (m *MockObjectStore) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockObjectStore) URL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}
