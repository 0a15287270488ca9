package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/narwhalmedia/catalog/pkg/auth"
	"github.com/narwhalmedia/catalog/pkg/errors"
)

func TestAuthenticator_PlainPassword(t *testing.T) {
	a, err := auth.NewAuthenticator("admin", "admin123", "")
	require.NoError(t, err)

	assert.NoError(t, a.Check("admin", "admin123"))

	err = a.Check("admin", "wrong")
	assert.True(t, errors.IsUnauthorized(err))
	assert.True(t, errors.IsUnauthorized(a.Check("Admin", "admin123")))
	assert.True(t, errors.IsUnauthorized(a.Check("", "")))
}

func TestAuthenticator_PasswordHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	a, err := auth.NewAuthenticator("root", "ignored", string(hash))
	require.NoError(t, err)

	assert.NoError(t, a.Check("root", "s3cret"))
	assert.Error(t, a.Check("root", "ignored"))
}

func TestNewAuthenticator_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		hash     string
	}{
		{"no username", "", "pw", ""},
		{"no password", "admin", "", ""},
		{"malformed hash", "admin", "", "not-a-bcrypt-hash"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.NewAuthenticator(tt.username, tt.password, tt.hash)
			assert.Error(t, err)
		})
	}
}
