package auth

import "time"

const (
	// Token constants.
	DefaultSessionTTL = 12 * time.Hour
	DefaultIssuer     = "catalog"
	DefaultCookieName = "catalog_session"
)
