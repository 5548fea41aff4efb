// Package store provides durable key-value storage for session state.
//
// Backends share a small string-keyed contract with no multi-key
// transactions: each key is independently readable, writable, and
// removable. A crash between two writes can leave keys inconsistent;
// the session manager reconciles that on its next startup refresh.
package store

import (
	"context"
	"errors"
)

// Keys under which the session manager persists state.
const (
	// KeyRefreshToken holds the opaque refresh token value.
	KeyRefreshToken = "refresh_token"

	// KeyRefreshTokenExpiresAt holds the advisory expiry timestamp (ISO string).
	KeyRefreshTokenExpiresAt = "refresh_token_expires_at"

	// KeyUser holds the cached user record as JSON.
	KeyUser = "user"
)

// Sentinel errors for common error conditions
var (
	// ErrKeyNotFound is returned when a key has no stored value.
	ErrKeyNotFound = errors.New("key not found")
)

// Store defines the interface for durable session-state storage.
type Store interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set writes value under key, creating or replacing it.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
