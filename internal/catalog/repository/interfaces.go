package repository

import (
	"context"

	"github.com/narwhalmedia/catalog/internal/catalog/domain"
)

// SeriesRepository defines the interface for series data access.
// Lookups of a missing row return (nil, nil).
type SeriesRepository interface {
	ListSeries(ctx context.Context) ([]*domain.Series, error)
	GetSeries(ctx context.Context, id int64) (*domain.Series, error)
	InsertSeries(ctx context.Context, series *domain.Series) error
	UpdateSeries(ctx context.Context, series *domain.Series) error
	DeleteSeries(ctx context.Context, id int64) error
}

// EpisodeRepository defines the interface for episode data access.
type EpisodeRepository interface {
	ListEpisodes(ctx context.Context, seriesID int64) ([]*domain.Episode, error)
	GetEpisode(ctx context.Context, id, seriesID int64) (*domain.Episode, error)
	GetEpisodeByID(ctx context.Context, id int64) (*domain.Episode, error)
	InsertEpisode(ctx context.Context, episode *domain.Episode) error
	UpdateEpisodeThumbnail(ctx context.Context, id int64, thumbnailURL string) error
	DeleteEpisode(ctx context.Context, id int64) error
	CountEpisodesByFilePath(ctx context.Context, filePath string) (int64, error)
}

// Repository combines all catalog repositories
type Repository interface {
	SeriesRepository
	EpisodeRepository
}
