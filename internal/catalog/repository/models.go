package repository

import (
	"time"

	"github.com/narwhalmedia/catalog/internal/catalog/domain"
)

// Series is the GORM model of the series table.
type Series struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Title        string    `gorm:"not null"`
	Description  *string   `gorm:"type:text"`
	ThumbnailURL *string   `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName specifies the table name for Series
func (Series) TableName() string {
	return "series"
}

// Episode is the GORM model of the episodes table.
type Episode struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	SeriesID      int64     `gorm:"not null;index"`
	Title         string    `gorm:"not null"`
	Description   *string   `gorm:"type:text"`
	EpisodeNumber *int      `gorm:"column:episode_number"`
	SourceType    string    `gorm:"not null"`
	VideoURL      *string   `gorm:"type:text"`
	DriveID       *string   `gorm:"column:drive_id"`
	FilePath      *string   `gorm:"type:text"`
	ThumbnailURL  *string   `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName specifies the table name for Episode
func (Episode) TableName() string {
	return "episodes"
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func seriesFromDomain(s *domain.Series) *Series {
	return &Series{
		ID:           s.ID,
		Title:        s.Title,
		Description:  optional(s.Description),
		ThumbnailURL: optional(s.ThumbnailURL),
		CreatedAt:    s.CreatedAt,
	}
}

func (m *Series) toDomain() *domain.Series {
	return &domain.Series{
		ID:           m.ID,
		Title:        m.Title,
		Description:  value(m.Description),
		ThumbnailURL: value(m.ThumbnailURL),
		CreatedAt:    m.CreatedAt,
	}
}

func episodeFromDomain(e *domain.Episode) (*Episode, error) {
	cols, err := domain.ToColumns(e.Source)
	if err != nil {
		return nil, err
	}
	return &Episode{
		ID:            e.ID,
		SeriesID:      e.SeriesID,
		Title:         e.Title,
		Description:   optional(e.Description),
		EpisodeNumber: e.EpisodeNumber,
		SourceType:    cols.SourceType,
		VideoURL:      cols.VideoURL,
		DriveID:       cols.DriveID,
		FilePath:      cols.FilePath,
		ThumbnailURL:  optional(e.ThumbnailURL),
		CreatedAt:     e.CreatedAt,
	}, nil
}

func (m *Episode) toDomain() (*domain.Episode, error) {
	src, err := domain.SourceFromColumns(domain.SourceColumns{
		SourceType: m.SourceType,
		VideoURL:   m.VideoURL,
		DriveID:    m.DriveID,
		FilePath:   m.FilePath,
	})
	if err != nil {
		return nil, err
	}
	return &domain.Episode{
		ID:            m.ID,
		SeriesID:      m.SeriesID,
		Title:         m.Title,
		Description:   value(m.Description),
		EpisodeNumber: m.EpisodeNumber,
		Source:        src,
		ThumbnailURL:  value(m.ThumbnailURL),
		CreatedAt:     m.CreatedAt,
	}, nil
}
