package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

// Migration records one applied schema version.
type Migration struct {
	ID        uint      `gorm:"primaryKey"`
	Version   string    `gorm:"uniqueIndex;not null"`
	Name      string    `gorm:"not null"`
	AppliedAt time.Time `gorm:"not null"`
}

// TableName holds the version marker table name.
func (Migration) TableName() string {
	return "schema_migrations"
}

// MigrationFunc is a function that performs a migration
type MigrationFunc func(*gorm.DB) error

// MigrationEntry represents a single migration
type MigrationEntry struct {
	Version string
	Name    string
	Up      MigrationFunc
}

// Migrator applies migrations in order and records each one.
type Migrator struct {
	db         *gorm.DB
	logger     interfaces.Logger
	migrations []MigrationEntry
}

// NewMigrator creates a new migrator instance
func NewMigrator(db *gorm.DB, log interfaces.Logger) *Migrator {
	return &Migrator{
		db:         db,
		logger:     log,
		migrations: getAllMigrations(),
	}
}

// Migrate runs all pending migrations. Each migration and its version record
// commit together, so a failed step can be retried on the next start.
func (m *Migrator) Migrate() error {
	if err := m.db.AutoMigrate(&Migration{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.appliedVersions()
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if applied[migration.Version] {
			continue
		}

		m.logger.Info("Running migration",
			interfaces.String("version", migration.Version),
			interfaces.String("name", migration.Name))

		err := m.db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return err
			}
			return tx.Create(&Migration{
				Version:   migration.Version,
				Name:      migration.Name,
				AppliedAt: time.Now().UTC(),
			}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to run migration %s: %w", migration.Version, err)
		}
	}

	return nil
}

// GetPendingMigrations returns a list of pending migrations
func (m *Migrator) GetPendingMigrations() ([]MigrationEntry, error) {
	if !m.db.Migrator().HasTable(&Migration{}) {
		return m.migrations, nil
	}

	applied, err := m.appliedVersions()
	if err != nil {
		return nil, err
	}

	var pending []MigrationEntry
	for _, migration := range m.migrations {
		if !applied[migration.Version] {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

// AppliedMigrations returns applied migrations, newest first.
func (m *Migrator) AppliedMigrations() ([]Migration, error) {
	if !m.db.Migrator().HasTable(&Migration{}) {
		return nil, nil
	}
	var migrations []Migration
	if err := m.db.Order("version DESC").Find(&migrations).Error; err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}
	return migrations, nil
}

func (m *Migrator) appliedVersions() (map[string]bool, error) {
	var appliedMigrations []Migration
	if err := m.db.Find(&appliedMigrations).Error; err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	applied := make(map[string]bool, len(appliedMigrations))
	for _, migration := range appliedMigrations {
		applied[migration.Version] = true
	}
	return applied, nil
}

func getAllMigrations() []MigrationEntry {
	return []MigrationEntry{
		{
			Version: "20240601_001",
			Name:    "Create series and episodes tables",
			Up:      migration001CreateCatalogTables,
		},
		{
			Version: "20240601_002",
			Name:    "Add thumbnail_url to episodes",
			Up:      migration002AddEpisodeThumbnail,
		},
		{
			Version: "20240601_003",
			Name:    "Add listing indexes",
			Up:      migration003AddIndexes,
		},
	}
}

// Schema snapshots as of each migration. Do not edit them when the models
// in internal/catalog/repository change.

type seriesV1 struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Title        string    `gorm:"not null"`
	Description  *string   `gorm:"type:text"`
	ThumbnailURL *string   `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (seriesV1) TableName() string { return "series" }

type episodeV1 struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	SeriesID      int64     `gorm:"not null;index"`
	Series        *seriesV1 `gorm:"foreignKey:SeriesID;constraint:OnDelete:CASCADE"`
	Title         string    `gorm:"not null"`
	Description   *string   `gorm:"type:text"`
	EpisodeNumber *int      `gorm:"column:episode_number"`
	SourceType    string    `gorm:"not null"`
	VideoURL      *string   `gorm:"type:text"`
	DriveID       *string   `gorm:"column:drive_id"`
	FilePath      *string   `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (episodeV1) TableName() string { return "episodes" }

type episodeThumbnailV2 struct {
	ThumbnailURL *string `gorm:"type:text"`
}

func (episodeThumbnailV2) TableName() string { return "episodes" }

// migration001CreateCatalogTables creates the tables only when absent, so a
// database created before versioning keeps its rows.
func migration001CreateCatalogTables(tx *gorm.DB) error {
	migrator := tx.Migrator()
	if !migrator.HasTable(&seriesV1{}) {
		if err := migrator.CreateTable(&seriesV1{}); err != nil {
			return fmt.Errorf("failed to create series table: %w", err)
		}
	}
	if !migrator.HasTable(&episodeV1{}) {
		if err := migrator.CreateTable(&episodeV1{}); err != nil {
			return fmt.Errorf("failed to create episodes table: %w", err)
		}
	}
	return nil
}

// migration002AddEpisodeThumbnail upgrades episodes tables from before
// episode covers existed.
func migration002AddEpisodeThumbnail(tx *gorm.DB) error {
	migrator := tx.Migrator()
	if migrator.HasColumn(&episodeThumbnailV2{}, "thumbnail_url") {
		return nil
	}
	if err := migrator.AddColumn(&episodeThumbnailV2{}, "ThumbnailURL"); err != nil {
		return fmt.Errorf("failed to add episodes.thumbnail_url: %w", err)
	}
	return nil
}

func migration003AddIndexes(tx *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_episodes_series_number ON episodes(series_id, episode_number)",
		"CREATE INDEX IF NOT EXISTS idx_series_created_at ON series(created_at)",
	}
	for _, index := range indexes {
		if err := tx.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
