package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	pkgerrors "github.com/narwhalmedia/catalog/pkg/errors"
)

// Authenticator checks credentials against the single configured admin.
type Authenticator struct {
	username     []byte
	passwordHash []byte
}

// NewAuthenticator creates an authenticator. passwordHash is a bcrypt hash;
// when empty, password is hashed instead.
func NewAuthenticator(username, password, passwordHash string) (*Authenticator, error) {
	if username == "" {
		return nil, errors.New("admin username is required")
	}

	hash := []byte(passwordHash)
	if len(hash) == 0 {
		if password == "" {
			return nil, errors.New("admin password is required")
		}
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
	} else if _, err := bcrypt.Cost(hash); err != nil {
		return nil, fmt.Errorf("invalid admin password hash: %w", err)
	}

	return &Authenticator{username: []byte(username), passwordHash: hash}, nil
}

// Check verifies username and password. The password hash is always
// compared so a wrong username takes as long as a wrong password.
func (a *Authenticator) Check(username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), a.username) == 1
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return pkgerrors.Unauthorized("invalid username or password")
	}
	return nil
}
