package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/narwhalmedia/catalog/pkg/database"
	"github.com/narwhalmedia/catalog/pkg/logger"
)

// NewTestDB creates a migrated in-memory SQLite database for testing
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(&database.Config{Driver: "sqlite", Path: ":memory:"}, logger.NewNoopLogger())
	require.NoError(t, err)

	require.NoError(t, database.RunMigrations(db, logger.NewNoopLogger()))

	t.Cleanup(func() {
		_ = database.Close(db)
	})

	return db
}
