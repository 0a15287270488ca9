package config

import "time"

const (
	// Database drivers.
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// Server defaults.
	DefaultHTTPPort        = 5000
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Minute // streams and Drive fetches run long
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxUploadBytes  = 4 << 30

	// Connection pool defaults.
	DefaultMaxConnections = 25
	DefaultMinConnections = 5
	DefaultSlowThreshold  = 200 * time.Millisecond

	// Auth defaults. Never fit for production.
	DefaultSessionSecret = "dev-secret-key"
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
	DefaultSessionTTL    = 12 * time.Hour

	DefaultDriveTimeout = 20 * time.Minute
)
