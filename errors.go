package authkit

import "errors"

var (
	// ErrUserNotFound is returned by the login flow when no account
	// matches the tenant and username.
	ErrUserNotFound = errors.New("authkit: user not found")
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = errors.New("authkit: invalid credentials")
	// ErrUserDisabled is returned for accounts an administrator turned off.
	ErrUserDisabled = errors.New("authkit: user disabled")
	// ErrUserLocked is returned for accounts locked by security policy.
	ErrUserLocked = errors.New("authkit: user locked")
	// ErrTokenInvalid is the normalized outcome for every token parse
	// failure; the specific kind is logged but callers only branch on
	// valid vs not.
	ErrTokenInvalid = errors.New("authkit: invalid token")
	// ErrTokenRevoked is returned in strict mode for tokens that verify
	// cryptographically but were removed from the session registry.
	ErrTokenRevoked = errors.New("authkit: token revoked")
	// ErrEngineNotReady is returned when an Engine method is called on a
	// nil or incompletely built engine.
	ErrEngineNotReady = errors.New("authkit: engine not initialized")
)
