package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/narwhalmedia/catalog/internal/catalog/assets"
	"github.com/narwhalmedia/catalog/internal/catalog/domain"
	"github.com/narwhalmedia/catalog/internal/catalog/ingest"
	"github.com/narwhalmedia/catalog/internal/catalog/repository"
	pkgerrors "github.com/narwhalmedia/catalog/pkg/errors"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

// SourceAcquirer produces the video source of a new episode.
type SourceAcquirer interface {
	Acquire(ctx context.Context, seriesID int64, req ingest.Request) (domain.Source, error)
}

// Cover is a cover image given as an upload or an external URL. The upload
// wins when both are set.
type Cover struct {
	Upload *ingest.FileUpload
	URL    string
}

func (c Cover) hasUpload() bool {
	return c.Upload != nil && c.Upload.Reader != nil && c.Upload.Filename != ""
}

// SeriesInput is the admin form of a series.
type SeriesInput struct {
	Title       string
	Description string
	Cover       Cover
}

// EpisodeInput is the admin form of an episode.
type EpisodeInput struct {
	Title         string
	Description   string
	EpisodeNumber *int
	Source        ingest.Request
	Cover         Cover
}

// CatalogService orchestrates the catalog: rows in the repository, files in
// the asset store.
type CatalogService struct {
	repo     repository.Repository
	store    *assets.Store
	acquirer SourceAcquirer
	logger   interfaces.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	repo repository.Repository,
	store *assets.Store,
	acquirer SourceAcquirer,
	logger interfaces.Logger,
) *CatalogService {
	return &CatalogService{
		repo:     repo,
		store:    store,
		acquirer: acquirer,
		logger:   logger,
	}
}

// ListSeries lists every series, newest first.
func (s *CatalogService) ListSeries(ctx context.Context) ([]*domain.Series, error) {
	return s.repo.ListSeries(ctx)
}

// GetSeries returns a series or a NotFound error.
func (s *CatalogService) GetSeries(ctx context.Context, id int64) (*domain.Series, error) {
	series, err := s.repo.GetSeries(ctx, id)
	if err != nil {
		return nil, err
	}
	if series == nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrorTypeNotFound, "series not found", domain.ErrSeriesNotFound)
	}
	return series, nil
}

// CreateSeries creates a series. An uploaded cover is stored once the series
// has an id and recorded by a second update.
func (s *CatalogService) CreateSeries(ctx context.Context, in SeriesInput) (*domain.Series, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, pkgerrors.BadRequest("series title is required")
	}

	series := &domain.Series{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
	}
	if !in.Cover.hasUpload() {
		series.ThumbnailURL = strings.TrimSpace(in.Cover.URL)
	}

	if err := s.repo.InsertSeries(ctx, series); err != nil {
		return nil, err
	}
	s.logger.Info("Series created", interfaces.Int64("series_id", series.ID))

	if in.Cover.hasUpload() {
		stored, err := s.store.SaveSeriesCover(series.ID, in.Cover.Upload.Filename, in.Cover.Upload.Reader)
		if err != nil {
			return series, fmt.Errorf("series created but its cover could not be stored: %w", err)
		}
		series.ThumbnailURL = stored
		if err := s.repo.UpdateSeries(ctx, series); err != nil {
			s.store.RemoveCover(stored)
			return series, err
		}
	}
	return series, nil
}

// UpdateSeries rewrites title, description and, when given, the cover. A
// replaced local cover is removed before the new one is written.
func (s *CatalogService) UpdateSeries(ctx context.Context, id int64, in SeriesInput) (*domain.Series, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, pkgerrors.BadRequest("series title is required")
	}

	series, err := s.GetSeries(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := series.ThumbnailURL
	series.Title = title
	series.Description = strings.TrimSpace(in.Description)

	switch {
	case in.Cover.hasUpload():
		s.store.RemoveCover(previous)
		stored, err := s.store.SaveSeriesCover(series.ID, in.Cover.Upload.Filename, in.Cover.Upload.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to store series cover: %w", err)
		}
		series.ThumbnailURL = stored
	case strings.TrimSpace(in.Cover.URL) != "":
		series.ThumbnailURL = strings.TrimSpace(in.Cover.URL)
		if series.ThumbnailURL != previous {
			s.store.RemoveCover(previous)
		}
	}

	if err := s.repo.UpdateSeries(ctx, series); err != nil {
		return nil, err
	}
	s.logger.Info("Series updated", interfaces.Int64("series_id", series.ID))
	return series, nil
}

// DeleteSeries removes the files of every episode and the series cover, then
// the series row. Episode rows go with it by cascade.
func (s *CatalogService) DeleteSeries(ctx context.Context, id int64) error {
	series, err := s.GetSeries(ctx, id)
	if err != nil {
		return err
	}
	episodes, err := s.repo.ListEpisodes(ctx, id)
	if err != nil {
		return err
	}

	var results []assets.CleanupResult
	for _, episode := range episodes {
		results = append(results, s.removeEpisodeFiles(ctx, episode, false)...)
	}
	results = append(results, s.store.RemoveCover(series.ThumbnailURL))

	if err := s.repo.DeleteSeries(ctx, id); err != nil {
		return err
	}
	for _, episode := range episodes {
		results = append(results, s.store.RemoveEpisodeCoverDir(episode.ID))
	}
	results = append(results, s.store.RemoveSeriesDirs(id)...)

	s.logCleanup(results, interfaces.Int64("series_id", id), interfaces.Int("episodes", len(episodes)))
	s.logger.Info("Series deleted", interfaces.Int64("series_id", id))
	return nil
}

// ListEpisodes lists the episodes of a series in playback order.
func (s *CatalogService) ListEpisodes(ctx context.Context, seriesID int64) ([]*domain.Episode, error) {
	return s.repo.ListEpisodes(ctx, seriesID)
}

// GetEpisode returns an episode of a series or a NotFound error.
func (s *CatalogService) GetEpisode(ctx context.Context, seriesID, episodeID int64) (*domain.Episode, error) {
	episode, err := s.repo.GetEpisode(ctx, episodeID, seriesID)
	if err != nil {
		return nil, err
	}
	if episode == nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrorTypeNotFound, "episode not found", domain.ErrEpisodeNotFound)
	}
	return episode, nil
}

// GetStreamableFile returns the absolute path of an episode's local video.
// Episodes without a local file, and files missing from disk, are NotFound.
func (s *CatalogService) GetStreamableFile(ctx context.Context, episodeID int64) (string, error) {
	episode, err := s.repo.GetEpisodeByID(ctx, episodeID)
	if err != nil {
		return "", err
	}
	if episode == nil {
		return "", pkgerrors.Wrap(pkgerrors.ErrorTypeNotFound, "episode not found", domain.ErrEpisodeNotFound)
	}

	stored, ok := domain.LocalPath(episode.Source)
	if !ok {
		return "", pkgerrors.NotFound("episode has no local video file")
	}

	abs := s.store.ResolveVideo(stored)
	info, err := os.Stat(abs)
	if err != nil || !info.Mode().IsRegular() {
		return "", pkgerrors.NotFound("video file not found")
	}
	return abs, nil
}

// CreateEpisode acquires the video, inserts the episode and then stores an
// uploaded cover. The form is validated before anything is fetched or
// written.
func (s *CatalogService) CreateEpisode(ctx context.Context, seriesID int64, in EpisodeInput) (*domain.Episode, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, pkgerrors.BadRequest("episode title is required")
	}
	if err := in.Source.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.GetSeries(ctx, seriesID); err != nil {
		return nil, err
	}

	src, err := s.acquirer.Acquire(ctx, seriesID, in.Source)
	if err != nil {
		return nil, err
	}

	episode := &domain.Episode{
		SeriesID:      seriesID,
		Title:         title,
		Description:   strings.TrimSpace(in.Description),
		EpisodeNumber: in.EpisodeNumber,
		Source:        src,
	}
	if !in.Cover.hasUpload() {
		episode.ThumbnailURL = strings.TrimSpace(in.Cover.URL)
	}

	if err := s.repo.InsertEpisode(ctx, episode); err != nil {
		if upload, ok := src.(domain.UploadSource); ok {
			s.store.RemoveVideo(upload.FilePath)
		}
		return nil, err
	}
	s.logger.Info("Episode created",
		interfaces.Int64("episode_id", episode.ID),
		interfaces.Int64("series_id", seriesID),
		interfaces.String("source_type", string(src.Type())))

	if in.Cover.hasUpload() {
		stored, err := s.store.SaveEpisodeCover(episode.ID, in.Cover.Upload.Filename, in.Cover.Upload.Reader)
		if err != nil {
			return episode, fmt.Errorf("episode created but its cover could not be stored: %w", err)
		}
		if err := s.repo.UpdateEpisodeThumbnail(ctx, episode.ID, stored); err != nil {
			s.store.RemoveCover(stored)
			return episode, err
		}
		episode.ThumbnailURL = stored
	}
	return episode, nil
}

// DeleteEpisode removes the episode's files and row and returns the deleted
// episode. A Drive file shared with another episode is kept.
func (s *CatalogService) DeleteEpisode(ctx context.Context, episodeID int64) (*domain.Episode, error) {
	episode, err := s.repo.GetEpisodeByID(ctx, episodeID)
	if err != nil {
		return nil, err
	}
	if episode == nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrorTypeNotFound, "episode not found", domain.ErrEpisodeNotFound)
	}

	results := s.removeEpisodeFiles(ctx, episode, true)

	if err := s.repo.DeleteEpisode(ctx, episodeID); err != nil {
		return nil, err
	}
	results = append(results, s.store.RemoveEpisodeCoverDir(episodeID))

	s.logCleanup(results, interfaces.Int64("episode_id", episodeID))
	s.logger.Info("Episode deleted",
		interfaces.Int64("episode_id", episodeID),
		interfaces.Int64("series_id", episode.SeriesID))
	return episode, nil
}

func (s *CatalogService) removeEpisodeFiles(ctx context.Context, episode *domain.Episode, checkShared bool) []assets.CleanupResult {
	results := []assets.CleanupResult{s.store.RemoveCover(episode.ThumbnailURL)}

	stored, ok := domain.LocalPath(episode.Source)
	if !ok {
		return results
	}
	if checkShared {
		count, err := s.repo.CountEpisodesByFilePath(ctx, stored)
		if err != nil {
			return append(results, assets.CleanupResult{Path: stored, Err: err})
		}
		if count > 1 {
			return append(results, assets.CleanupResult{Path: stored, Skipped: true})
		}
	}
	return append(results, s.store.RemoveVideo(stored))
}

func (s *CatalogService) logCleanup(results []assets.CleanupResult, fields ...interfaces.Field) {
	var removed, failed int
	var errs []error
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			errs = append(errs, r.Err)
		case r.Removed:
			removed++
		}
	}

	fields = append(fields, interfaces.Int("removed", removed), interfaces.Int("failed", failed))
	if failed > 0 {
		s.logger.Warn("File cleanup incomplete", append(fields, interfaces.Error(errors.Join(errs...)))...)
		return
	}
	s.logger.Debug("File cleanup finished", fields...)
}
