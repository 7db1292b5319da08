// Package auth guards webhook routes with a static API key and an optional
// HMAC body signature.
package auth

import (
	"crypto/subtle"
	"errors"
)

// HeaderAPIKey carries the caller's API key. Header names are case-insensitive.
const HeaderAPIKey = "X-API-KEY"

// Scheme is advertised in the WWW-Authenticate challenge.
const Scheme = "ApiKey"

var (
	// ErrUnauthorized is the root of every authentication failure.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrMissingKey is returned when no key was presented.
	ErrMissingKey = &Error{Detail: "API key is required"}
	// ErrInvalidKey is returned when the presented key does not match.
	ErrInvalidKey = &Error{Detail: "Invalid API key"}
)

// Error is an authentication failure with a caller-facing detail message.
type Error struct {
	Detail string
}

func (e *Error) Error() string { return e.Detail }

// Unwrap lets callers match any auth failure with errors.Is(err, ErrUnauthorized).
func (e *Error) Unwrap() error { return ErrUnauthorized }

// Authenticator checks presented API keys against the configured key.
// It is immutable after construction and safe for concurrent use.
type Authenticator struct {
	enabled bool
	key     string
}

// New returns an Authenticator. When enabled is false every request passes.
func New(enabled bool, key string) *Authenticator {
	return &Authenticator{enabled: enabled, key: key}
}

// Enabled reports whether keys are enforced.
func (a *Authenticator) Enabled() bool { return a.enabled }

// Verify returns nil if presented is acceptable, ErrMissingKey if it is
// empty, and ErrInvalidKey if it does not match exactly.
func (a *Authenticator) Verify(presented string) error {
	if !a.enabled {
		return nil
	}
	if presented == "" {
		return ErrMissingKey
	}
	if !constantTimeEqual(presented, a.key) {
		return ErrInvalidKey
	}
	return nil
}

func constantTimeEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
