package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Setup
	cfg := GetDefaults()
	manager := NewManager("catalog").WithConfigPaths()

	// Test
	err := manager.LoadConfig(cfg)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "catalog", cfg.Service.Name)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, DefaultSessionTTL, cfg.Auth.SessionTTL)
	assert.Equal(t, "video_files", cfg.Storage.VideoDir)
}

func TestLoadConfig_FileThenEnvPrecedence(t *testing.T) {
	// Setup
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	content := []byte(`
service:
  port: 7000
auth:
  session_ttl: 2h
  admin_username: editor
storage:
  base_dir: /srv/catalog
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("PORT", "7100")
	t.Setenv("SECRET_KEY", "legacy-secret")
	t.Setenv("CATALOG_SERVICE_PORT", "7200")
	t.Setenv("CATALOG_AUTH_ADMIN_PASSWORD", "from-prefixed-env")

	cfg := GetDefaults()
	manager := NewManager("catalog").WithConfigPaths(path)

	// Test
	err := manager.LoadConfig(cfg)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 7200, cfg.Service.Port, "prefixed env wins over legacy env and file")
	assert.Equal(t, "legacy-secret", cfg.Auth.SessionSecret)
	assert.Equal(t, "from-prefixed-env", cfg.Auth.AdminPassword)
	assert.Equal(t, "editor", cfg.Auth.AdminUsername)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "/srv/catalog", cfg.Storage.BaseDir)
}

func TestLoadConfig_LegacyPortOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("service:\n  port: 7000\n"), 0o600))
	t.Setenv("PORT", "7100")

	cfg := GetDefaults()
	require.NoError(t, NewManager("catalog").WithConfigPaths(path).LoadConfig(cfg))

	assert.Equal(t, 7100, cfg.Service.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *CatalogConfig)
		wantErr string
	}{
		{"defaults are valid", func(c *CatalogConfig) {}, ""},
		{"bad port", func(c *CatalogConfig) { c.Service.Port = 70000 }, "invalid service port"},
		{"unknown driver", func(c *CatalogConfig) { c.Database.Driver = "mysql" }, "unsupported database driver"},
		{"postgres without dsn", func(c *CatalogConfig) { c.Database.Driver = DriverPostgres }, "postgres dsn is required"},
		{"empty secret", func(c *CatalogConfig) { c.Auth.SessionSecret = "" }, "session secret is required"},
		{"short ttl", func(c *CatalogConfig) { c.Auth.SessionTTL = time.Second }, "session ttl"},
		{"no password", func(c *CatalogConfig) { c.Auth.AdminPassword = "" }, "admin password"},
		{"hash instead of password", func(c *CatalogConfig) {
			c.Auth.AdminPassword = ""
			c.Auth.AdminPasswordHash = "$2a$10$abcdefghijklmnopqrstuv"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInsecureDefaults(t *testing.T) {
	cfg := GetDefaults()
	assert.ElementsMatch(t, []string{"auth.session_secret", "auth.admin_password"}, cfg.InsecureDefaults())

	cfg.Auth.SessionSecret = "a-real-secret"
	cfg.Auth.AdminPasswordHash = "$2a$10$abcdefghijklmnopqrstuv"
	assert.Empty(t, cfg.InsecureDefaults())
}
