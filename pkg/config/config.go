package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config is the interface that all loadable configs must implement.
type Config interface {
	Validate() error
}

// CatalogConfig is the full configuration of the catalog service.
type CatalogConfig struct {
	Service  ServiceConfig  `koanf:"service"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Storage  StorageConfig  `koanf:"storage"`
	Drive    DriveConfig    `koanf:"drive"`
	Logger   LoggerConfig   `koanf:"logger"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// ServiceConfig contains HTTP server settings.
type ServiceConfig struct {
	Name            string        `koanf:"name"`
	Version         string        `koanf:"version"`
	Environment     string        `koanf:"environment"` // dev, staging, production
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	MaxUploadBytes  int64         `koanf:"max_upload_bytes"`
}

// DatabaseConfig selects and tunes the relational engine.
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"` // sqlite or postgres
	Path            string        `koanf:"path"`   // sqlite file
	DSN             string        `koanf:"dsn"`    // postgres connection string
	MaxConnections  int           `koanf:"max_connections"`
	MinConnections  int           `koanf:"min_connections"`
	MaxConnLifetime time.Duration `koanf:"max_conn_lifetime"`
	SlowThreshold   time.Duration `koanf:"slow_threshold"`
}

// AuthConfig holds the single admin credential and session settings.
type AuthConfig struct {
	SessionSecret     string        `koanf:"session_secret"`
	SessionTTL        time.Duration `koanf:"session_ttl"`
	CookieName        string        `koanf:"cookie_name"`
	CookieSecure      bool          `koanf:"cookie_secure"`
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"`
	AdminPasswordHash string        `koanf:"admin_password_hash"` // bcrypt, wins over admin_password
}

// StorageConfig locates media on disk. VideoDir and CoverDir are relative
// to BaseDir.
type StorageConfig struct {
	BaseDir  string `koanf:"base_dir"`
	VideoDir string `koanf:"video_dir"`
	CoverDir string `koanf:"cover_dir"`
}

// DriveConfig configures Google Drive fetches.
type DriveConfig struct {
	APIKey    string        `koanf:"api_key"` // empty uses the public download endpoint
	Timeout   time.Duration `koanf:"timeout"`
	UserAgent string        `koanf:"user_agent"`
}

// LoggerConfig contains logging configuration.
type LoggerConfig struct {
	Level       string `koanf:"level"`  // debug, info, warn, error
	Format      string `koanf:"format"` // json, console
	Development bool   `koanf:"development"`
	OutputPath  string `koanf:"output_path"`
}

// MetricsConfig contains metrics configuration.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// legacyEnv maps the flat variable names used by older deployments onto
// config keys. Prefixed variables are loaded after these and win.
var legacyEnv = map[string]string{
	"SECRET_KEY":     "auth.session_secret",
	"ADMIN_USERNAME": "auth.admin_username",
	"ADMIN_PASSWORD": "auth.admin_password",
	"PORT":           "service.port",
	"DATABASE_URL":   "database.dsn",
	"LOG_LEVEL":      "logger.level",
}

// Manager handles configuration loading and parsing.
type Manager struct {
	k           *koanf.Koanf
	serviceName string
	configPaths []string
}

// NewManager creates a new configuration manager.
func NewManager(serviceName string) *Manager {
	return &Manager{
		k:           koanf.New("."),
		serviceName: serviceName,
		configPaths: getDefaultConfigPaths(serviceName),
	}
}

// WithConfigPaths replaces the list of candidate config files.
func (m *Manager) WithConfigPaths(paths ...string) *Manager {
	m.configPaths = paths
	return m
}

// LoadConfig loads configuration from all sources.
func (m *Manager) LoadConfig(cfg Config) error {
	// 1. Defaults from the struct itself
	if err := m.k.Load(structs.Provider(cfg, "koanf"), nil); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config files, later files override earlier ones
	for _, path := range m.configPaths {
		if err := m.loadFromFile(path); err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("failed to load config from %s: %w", path, err)
			}
		}
	}

	// 3. Environment variables
	if err := m.loadFromEnv(); err != nil {
		return fmt.Errorf("failed to load from environment: %w", err)
	}

	// 4. Unmarshal into the config struct
	if err := m.k.Unmarshal("", cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// GetString returns a string value for the given key.
func (m *Manager) GetString(key string) string {
	return m.k.String(key)
}

func (m *Manager) loadFromFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	var parser koanf.Parser
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}

	return m.k.Load(file.Provider(path), parser)
}

func (m *Manager) loadFromEnv() error {
	if err := m.k.Load(env.Provider("", ".", func(s string) string {
		return legacyEnv[s]
	}), nil); err != nil {
		return err
	}

	prefix := strings.ToUpper(m.serviceName) + "_"

	// CATALOG_AUTH_SESSION_SECRET -> auth.session_secret. Only the first
	// underscore separates the section, keys keep their own underscores.
	return m.k.Load(env.Provider(prefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, prefix))
		return strings.Replace(key, "_", ".", 1)
	}), nil)
}

func getDefaultConfigPaths(serviceName string) []string {
	paths := []string{
		"config.yaml",
		"config.json",
		fmt.Sprintf("%s.yaml", serviceName),
		fmt.Sprintf("%s.json", serviceName),
		"configs/config.yaml",
		fmt.Sprintf("configs/%s.yaml", serviceName),
		fmt.Sprintf("configs/%s.%s.yaml", serviceName, getEnvironment()),
	}

	if configPath := os.Getenv("CONFIG_PATH"); configPath != "" {
		paths = append(paths, configPath)
	}

	return paths
}

func getEnvironment() string {
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		return env
	}
	return "dev"
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	if c.Service.Name == "" {
		return errors.New("service name is required")
	}
	if c.Service.Port <= 0 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid service port: %d", c.Service.Port)
	}
	if c.Service.MaxUploadBytes <= 0 {
		return errors.New("max upload size must be positive")
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Path == "" {
			return errors.New("sqlite database path is required")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return errors.New("postgres dsn is required (set CATALOG_DATABASE_DSN or DATABASE_URL)")
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}

	if c.Auth.SessionSecret == "" {
		return errors.New("session secret is required (set SECRET_KEY or CATALOG_AUTH_SESSION_SECRET)")
	}
	if c.Auth.SessionTTL < time.Minute {
		return errors.New("session ttl must be at least 1 minute")
	}
	if c.Auth.AdminUsername == "" {
		return errors.New("admin username is required")
	}
	if c.Auth.AdminPassword == "" && c.Auth.AdminPasswordHash == "" {
		return errors.New("admin password or password hash is required")
	}

	if c.Storage.BaseDir == "" || c.Storage.VideoDir == "" || c.Storage.CoverDir == "" {
		return errors.New("storage base, video and cover directories are required")
	}
	if c.Drive.Timeout <= 0 {
		return errors.New("drive timeout must be positive")
	}
	return nil
}

// InsecureDefaults lists settings that still carry their development
// defaults. The server logs them loudly outside development.
func (c *CatalogConfig) InsecureDefaults() []string {
	var found []string
	if c.Auth.SessionSecret == DefaultSessionSecret {
		found = append(found, "auth.session_secret")
	}
	if c.Auth.AdminPasswordHash == "" && c.Auth.AdminPassword == DefaultAdminPassword {
		found = append(found, "auth.admin_password")
	}
	return found
}

// GetDefaults returns default configuration values.
func GetDefaults() *CatalogConfig {
	return &CatalogConfig{
		Service: ServiceConfig{
			Name:            "catalog",
			Version:         "dev",
			Environment:     "dev",
			Port:            DefaultHTTPPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxUploadBytes:  DefaultMaxUploadBytes,
		},
		Database: DatabaseConfig{
			Driver:          DriverSQLite,
			Path:            "videos.db",
			MaxConnections:  DefaultMaxConnections,
			MinConnections:  DefaultMinConnections,
			MaxConnLifetime: time.Hour,
			SlowThreshold:   DefaultSlowThreshold,
		},
		Auth: AuthConfig{
			SessionSecret: DefaultSessionSecret,
			SessionTTL:    DefaultSessionTTL,
			CookieName:    "catalog_session",
			AdminUsername: DefaultAdminUsername,
			AdminPassword: DefaultAdminPassword,
		},
		Storage: StorageConfig{
			BaseDir:  ".",
			VideoDir: "video_files",
			CoverDir: "static",
		},
		Drive: DriveConfig{
			Timeout:   DefaultDriveTimeout,
			UserAgent: "narwhal-catalog/1.0",
		},
		Logger: LoggerConfig{
			Level:       "info",
			Format:      "console",
			Development: true,
			OutputPath:  "stdout",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
