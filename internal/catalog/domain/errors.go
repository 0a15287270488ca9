package domain

import "errors"

// Common domain errors
var (
	// ErrSeriesNotFound is returned when a series is not found
	ErrSeriesNotFound = errors.New("series not found")

	// ErrEpisodeNotFound is returned when an episode is not found
	ErrEpisodeNotFound = errors.New("episode not found")

	// ErrInvalidSource is returned when stored columns break the one-payload rule
	ErrInvalidSource = errors.New("invalid episode source")

	// ErrUnknownSourceType is returned for a source type outside direct, gdrive, upload
	ErrUnknownSourceType = errors.New("unknown source type")
)
