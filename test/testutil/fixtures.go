package testutil

import (
	"github.com/narwhalmedia/catalog/internal/catalog/domain"
)

// IntPtr returns a pointer to n, for optional episode numbers.
func IntPtr(n int) *int {
	return &n
}

// CreateTestSeries creates a series with default values.
func CreateTestSeries(title string) *domain.Series {
	return &domain.Series{
		Title:       title,
		Description: "A series about " + title,
	}
}

// CreateTestDirectEpisode creates an episode that links to an external video.
func CreateTestDirectEpisode(seriesID int64, title, url string, number *int) *domain.Episode {
	return &domain.Episode{
		SeriesID:      seriesID,
		Title:         title,
		EpisodeNumber: number,
		Source:        domain.DirectSource{URL: url},
	}
}

// CreateTestUploadEpisode creates an episode backed by a local file.
func CreateTestUploadEpisode(seriesID int64, title, filePath string) *domain.Episode {
	return &domain.Episode{
		SeriesID: seriesID,
		Title:    title,
		Source:   domain.UploadSource{FilePath: filePath},
	}
}
