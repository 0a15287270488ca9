package database_test

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/narwhalmedia/catalog/pkg/database"
	"github.com/narwhalmedia/catalog/pkg/logger"
)

type MigratorTestSuite struct {
	suite.Suite
	db *gorm.DB
}

func (suite *MigratorTestSuite) SetupTest() {
	db, err := database.Open(&database.Config{Driver: "sqlite", Path: ":memory:"}, logger.NewNoopLogger())
	suite.Require().NoError(err)
	suite.db = db
}

func (suite *MigratorTestSuite) TearDownTest() {
	suite.Require().NoError(database.Close(suite.db))
}

func (suite *MigratorTestSuite) TestMigrate_FreshDatabase() {
	migrator := database.NewMigrator(suite.db, logger.NewNoopLogger())

	pending, err := migrator.GetPendingMigrations()
	suite.Require().NoError(err)
	suite.Len(pending, 3)

	suite.Require().NoError(migrator.Migrate())

	suite.True(suite.db.Migrator().HasTable("series"))
	suite.True(suite.db.Migrator().HasTable("episodes"))
	suite.True(suite.db.Migrator().HasColumn("episodes", "thumbnail_url"))

	pending, err = migrator.GetPendingMigrations()
	suite.Require().NoError(err)
	suite.Empty(pending)

	applied, err := migrator.AppliedMigrations()
	suite.Require().NoError(err)
	suite.Len(applied, 3)
	suite.Equal("20240601_003", applied[0].Version)
}

func (suite *MigratorTestSuite) TestMigrate_IsIdempotent() {
	suite.Require().NoError(database.RunMigrations(suite.db, logger.NewNoopLogger()))
	suite.Require().NoError(database.RunMigrations(suite.db, logger.NewNoopLogger()))

	var count int64
	suite.Require().NoError(suite.db.Model(&database.Migration{}).Count(&count).Error)
	suite.Equal(int64(3), count)
}

func (suite *MigratorTestSuite) TestMigrate_UpgradesLegacyEpisodesTable() {
	// Arrange: tables from before episode covers, with a row in each
	suite.Require().NoError(suite.db.Exec(`CREATE TABLE series (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT,
		thumbnail_url TEXT,
		created_at DATETIME NOT NULL)`).Error)
	suite.Require().NoError(suite.db.Exec(`CREATE TABLE episodes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		series_id INTEGER NOT NULL REFERENCES series(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT,
		episode_number INTEGER,
		source_type TEXT NOT NULL,
		video_url TEXT,
		drive_id TEXT,
		file_path TEXT,
		created_at DATETIME NOT NULL)`).Error)
	suite.Require().NoError(suite.db.Exec(
		"INSERT INTO series (title, created_at) VALUES ('Legacy', '2024-01-01 00:00:00')").Error)
	suite.Require().NoError(suite.db.Exec(
		"INSERT INTO episodes (series_id, title, source_type, video_url, created_at) VALUES (1, 'Pilot', 'direct', 'http://x/a.mp4', '2024-01-01 00:00:00')").Error)
	suite.False(suite.db.Migrator().HasColumn("episodes", "thumbnail_url"))

	// Act
	suite.Require().NoError(database.RunMigrations(suite.db, logger.NewNoopLogger()))

	// Assert
	suite.True(suite.db.Migrator().HasColumn("episodes", "thumbnail_url"))
	var count int64
	suite.Require().NoError(suite.db.Table("episodes").Count(&count).Error)
	suite.Equal(int64(1), count)
}

func (suite *MigratorTestSuite) TestForeignKeyCascade() {
	suite.Require().NoError(database.RunMigrations(suite.db, logger.NewNoopLogger()))

	suite.Require().NoError(suite.db.Exec(
		"INSERT INTO series (title, created_at) VALUES ('Demo', '2024-01-01 00:00:00')").Error)
	suite.Require().NoError(suite.db.Exec(
		"INSERT INTO episodes (series_id, title, source_type, video_url, created_at) VALUES (1, 'One', 'direct', 'http://x/a.mp4', '2024-01-01 00:00:00')").Error)

	suite.Require().NoError(suite.db.Exec("DELETE FROM series WHERE id = 1").Error)

	var count int64
	suite.Require().NoError(suite.db.Table("episodes").Count(&count).Error)
	suite.Equal(int64(0), count)
}

func (suite *MigratorTestSuite) TestSQLiteDSN() {
	suite.Equal("catalog.db?_foreign_keys=on", database.SQLiteDSN("catalog.db"))
	suite.Equal("file:catalog.db?cache=shared&_foreign_keys=on", database.SQLiteDSN("file:catalog.db?cache=shared"))
	suite.Equal("x.db?_foreign_keys=off", database.SQLiteDSN("x.db?_foreign_keys=off"))
}

func TestMigratorTestSuite(t *testing.T) {
	suite.Run(t, new(MigratorTestSuite))
}
