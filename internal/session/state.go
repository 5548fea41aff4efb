package session

import (
	"slices"

	"github.com/fotofair/fotofair-go/internal/api"
)

// Snapshot is a point-in-time read-only copy of the session state.
type Snapshot struct {
	User                  *api.User
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt string
	PendingAction         Action
	Initializing          bool
}

// IsAuthenticated reports whether the snapshot holds both an identity
// and a live access token.
func (s Snapshot) IsAuthenticated() bool {
	return s.User != nil && s.AccessToken != ""
}

// Snapshot returns a consistent copy of the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		AccessToken:           m.accessToken,
		RefreshToken:          m.refreshToken,
		RefreshTokenExpiresAt: m.refreshTokenExpiresAt,
		PendingAction:         m.pendingAction,
		Initializing:          m.initializing,
	}
	if m.user != nil {
		user := *m.user
		snap.User = &user
	}
	return snap
}

// User returns a copy of the current user record, or nil.
func (m *Manager) User() *api.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user == nil {
		return nil
	}
	user := *m.user
	return &user
}

// AccessToken returns the in-memory access token, or empty.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accessToken
}

// RefreshToken returns the in-memory refresh token, or empty.
func (m *Manager) RefreshToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshToken
}

// RefreshTokenExpiresAt returns the advisory refresh expiry, or empty.
// It is display-only; the endpoint remains the authority on validity.
func (m *Manager) RefreshTokenExpiresAt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshTokenExpiresAt
}

// IsAuthenticated reports whether a user and access token are both held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil && m.accessToken != ""
}

// IsInitializing reports whether the startup resume is still in flight.
// Callers should not conclude "logged out" while this is true.
func (m *Manager) IsInitializing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initializing
}

// PendingAction returns the advisory in-flight operation marker.
func (m *Manager) PendingAction() Action {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pendingAction
}

// CurrentRole returns the user's default role, falling back to the
// first known role; empty when logged out or roleless.
func (m *Manager) CurrentRole() string {
	user := m.User()
	if user == nil {
		return ""
	}
	if user.DefaultRole != "" {
		return user.DefaultRole
	}
	if len(user.Roles) > 0 {
		return user.Roles[0]
	}
	return ""
}

// HasRole reports whether the current user carries the given role tag.
func (m *Manager) HasRole(role string) bool {
	user := m.User()
	if user == nil {
		return false
	}
	return slices.Contains(user.Roles, role)
}

// IsPhotographer reports membership of the photographer role.
func (m *Manager) IsPhotographer() bool {
	return m.HasRole(RolePhotographer)
}

// IsUser reports membership of the buyer role.
func (m *Manager) IsUser() bool {
	return m.HasRole(RoleUser)
}
