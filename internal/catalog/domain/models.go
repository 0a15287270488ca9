package domain

import (
	"strings"
	"time"
)

// Series is a named collection of episodes.
type Series struct {
	ID           int64
	Title        string
	Description  string
	ThumbnailURL string // external URL or path relative to the cover root
	CreatedAt    time.Time
}

// Episode is a single playable video belonging to a series.
type Episode struct {
	ID            int64
	SeriesID      int64
	Title         string
	Description   string
	EpisodeNumber *int
	Source        Source
	ThumbnailURL  string
	CreatedAt     time.Time
}

// IsExternalURL reports whether a stored thumbnail or video value points
// outside the local file system.
func IsExternalURL(value string) bool {
	return strings.HasPrefix(strings.ToLower(value), "http")
}
