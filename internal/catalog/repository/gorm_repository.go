package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/narwhalmedia/catalog/internal/catalog/domain"
	pkgerrors "github.com/narwhalmedia/catalog/pkg/errors"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
	"github.com/narwhalmedia/catalog/pkg/repository"
)

// GormRepository implements the repository interfaces using GORM.
type GormRepository struct {
	db     *gorm.DB
	logger interfaces.Logger
}

// NewGormRepository creates a new GORM repository.
func NewGormRepository(db *gorm.DB, log interfaces.Logger) *GormRepository {
	return &GormRepository{db: db, logger: log}
}

// ListSeries lists all series, newest first.
func (r *GormRepository) ListSeries(ctx context.Context) ([]*domain.Series, error) {
	var models []Series
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}

	items := make([]*domain.Series, len(models))
	for i := range models {
		items[i] = models[i].toDomain()
	}
	return items, nil
}

// GetSeries retrieves a series by ID.
func (r *GormRepository) GetSeries(ctx context.Context, id int64) (*domain.Series, error) {
	model, err := repository.FindOneOrNil[Series](ctx, r.db, "id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get series %d: %w", id, err)
	}
	if model == nil {
		return nil, nil
	}
	return model.toDomain(), nil
}

// InsertSeries creates a series and sets its ID and creation time.
func (r *GormRepository) InsertSeries(ctx context.Context, series *domain.Series) error {
	model := seriesFromDomain(series)
	if err := repository.Create(ctx, r.db, model); err != nil {
		return fmt.Errorf("failed to insert series: %w", err)
	}
	series.ID = model.ID
	series.CreatedAt = model.CreatedAt
	return nil
}

// UpdateSeries writes title, description and thumbnail of a series.
func (r *GormRepository) UpdateSeries(ctx context.Context, series *domain.Series) error {
	err := repository.UpdateColumns[Series](ctx, r.db, series.ID, map[string]interface{}{
		"title":         series.Title,
		"description":   optional(series.Description),
		"thumbnail_url": optional(series.ThumbnailURL),
	})
	if err != nil {
		return fmt.Errorf("failed to update series %d: %w", series.ID, err)
	}
	return nil
}

// DeleteSeries deletes a series. Its episodes go with it by foreign key cascade.
func (r *GormRepository) DeleteSeries(ctx context.Context, id int64) error {
	if err := repository.Delete[Series](ctx, r.db, id); err != nil {
		return fmt.Errorf("failed to delete series %d: %w", id, err)
	}
	return nil
}

// ListEpisodes lists the episodes of a series. Numbered episodes come first
// in ascending order, unnumbered ones last; ties keep creation order. Rows
// whose source columns are inconsistent are logged and left out.
func (r *GormRepository) ListEpisodes(ctx context.Context, seriesID int64) ([]*domain.Episode, error) {
	var models []Episode
	err := r.db.WithContext(ctx).
		Where("series_id = ?", seriesID).
		Order("episode_number IS NULL ASC").
		Order("episode_number ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes of series %d: %w", seriesID, err)
	}

	items := make([]*domain.Episode, 0, len(models))
	for i := range models {
		episode, err := models[i].toDomain()
		if err != nil {
			r.logger.WithContext(ctx).Warn("Skipping unreadable episode row",
				interfaces.Int64("episode_id", models[i].ID),
				interfaces.Int64("series_id", seriesID),
				interfaces.Error(err))
			continue
		}
		items = append(items, episode)
	}
	return items, nil
}

// GetEpisode retrieves an episode that belongs to the given series.
func (r *GormRepository) GetEpisode(ctx context.Context, id, seriesID int64) (*domain.Episode, error) {
	return r.findEpisode(ctx, "id = ? AND series_id = ?", id, seriesID)
}

// GetEpisodeByID retrieves an episode regardless of its series.
func (r *GormRepository) GetEpisodeByID(ctx context.Context, id int64) (*domain.Episode, error) {
	return r.findEpisode(ctx, "id = ?", id)
}

func (r *GormRepository) findEpisode(ctx context.Context, query string, args ...interface{}) (*domain.Episode, error) {
	model, err := repository.FindOneOrNil[Episode](ctx, r.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get episode: %w", err)
	}
	if model == nil {
		return nil, nil
	}
	episode, err := model.toDomain()
	if err != nil {
		return nil, fmt.Errorf("episode %d: %w", model.ID, err)
	}
	return episode, nil
}

// InsertEpisode creates an episode and sets its ID and creation time. The
// source is validated before anything is written.
func (r *GormRepository) InsertEpisode(ctx context.Context, episode *domain.Episode) error {
	model, err := episodeFromDomain(episode)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrorTypeBadRequest, "invalid episode source", err)
	}
	if err := repository.Create(ctx, r.db, model); err != nil {
		return fmt.Errorf("failed to insert episode: %w", err)
	}
	episode.ID = model.ID
	episode.CreatedAt = model.CreatedAt
	return nil
}

// UpdateEpisodeThumbnail sets the thumbnail of an episode in its own commit.
func (r *GormRepository) UpdateEpisodeThumbnail(ctx context.Context, id int64, thumbnailURL string) error {
	err := repository.UpdateColumns[Episode](ctx, r.db, id, map[string]interface{}{
		"thumbnail_url": optional(thumbnailURL),
	})
	if err != nil {
		return fmt.Errorf("failed to update thumbnail of episode %d: %w", id, err)
	}
	return nil
}

// DeleteEpisode deletes an episode.
func (r *GormRepository) DeleteEpisode(ctx context.Context, id int64) error {
	if err := repository.Delete[Episode](ctx, r.db, id); err != nil {
		return fmt.Errorf("failed to delete episode %d: %w", id, err)
	}
	return nil
}

// CountEpisodesByFilePath counts episodes backed by the same local file.
func (r *GormRepository) CountEpisodesByFilePath(ctx context.Context, filePath string) (int64, error) {
	count, err := repository.Count[Episode](ctx, r.db, "file_path = ?", filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to count episodes by file path: %w", err)
	}
	return count, nil
}
