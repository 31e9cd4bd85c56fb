package authkit

import (
	"context"

	"github.com/openthedoor/authkit/identity"
)

// UserStatus is the account lifecycle state stored with the user record.
type UserStatus int

const (
	// UserStatusDisabled blocks login entirely.
	UserStatusDisabled UserStatus = 0
	// UserStatusActive is a normal account.
	UserStatusActive UserStatus = 1
	// UserStatusLocked blocks login until an administrator unlocks.
	UserStatusLocked UserStatus = 2
)

// UserRecord is the account row the persistence collaborator returns for
// a login attempt. PasswordHash is whatever the configured password.Hasher
// produced; authkit never sees plaintext beyond the Verify call.
type UserRecord struct {
	ID           int64
	Username     string
	Nickname     string
	TenantID     string
	PasswordHash string
	UserType     int
	Status       UserStatus
}

// UserProvider is the credential lookup interface callers must implement.
// FindByUsername returns ErrUserNotFound when no account matches; any
// other error is treated as a backend failure and fails the login.
type UserProvider interface {
	FindByUsername(ctx context.Context, tenantID, username string) (*UserRecord, error)
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int64 // seconds until the access token expires
	Principal    *identity.Principal
}
