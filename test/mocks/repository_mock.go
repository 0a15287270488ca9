package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/narwhalmedia/catalog/internal/catalog/domain"
	"github.com/narwhalmedia/catalog/internal/catalog/ingest"
)

// MockRepository is a testify mock of the catalog repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListSeries(ctx context.Context) ([]*domain.Series, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Series), args.Error(1)
}

func (m *MockRepository) GetSeries(ctx context.Context, id int64) (*domain.Series, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Series), args.Error(1)
}

func (m *MockRepository) InsertSeries(ctx context.Context, series *domain.Series) error {
	args := m.Called(ctx, series)
	return args.Error(0)
}

func (m *MockRepository) UpdateSeries(ctx context.Context, series *domain.Series) error {
	args := m.Called(ctx, series)
	return args.Error(0)
}

func (m *MockRepository) DeleteSeries(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) ListEpisodes(ctx context.Context, seriesID int64) ([]*domain.Episode, error) {
	args := m.Called(ctx, seriesID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Episode), args.Error(1)
}

func (m *MockRepository) GetEpisode(ctx context.Context, id, seriesID int64) (*domain.Episode, error) {
	args := m.Called(ctx, id, seriesID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Episode), args.Error(1)
}

func (m *MockRepository) GetEpisodeByID(ctx context.Context, id int64) (*domain.Episode, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Episode), args.Error(1)
}

func (m *MockRepository) InsertEpisode(ctx context.Context, episode *domain.Episode) error {
	args := m.Called(ctx, episode)
	return args.Error(0)
}

func (m *MockRepository) UpdateEpisodeThumbnail(ctx context.Context, id int64, thumbnailURL string) error {
	args := m.Called(ctx, id, thumbnailURL)
	return args.Error(0)
}

func (m *MockRepository) DeleteEpisode(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) CountEpisodesByFilePath(ctx context.Context, filePath string) (int64, error) {
	args := m.Called(ctx, filePath)
	return args.Get(0).(int64), args.Error(1)
}

// MockAcquirer is a testify mock of the episode source acquirer.
type MockAcquirer struct {
	mock.Mock
}

func (m *MockAcquirer) Acquire(ctx context.Context, seriesID int64, req ingest.Request) (domain.Source, error) {
	args := m.Called(ctx, seriesID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Source), args.Error(1)
}
