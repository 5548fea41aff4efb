// Package session owns the client-side session lifecycle: acquiring,
// holding, refreshing, and discarding the credentials and identity the
// rest of the application needs.
//
// The manager is the single authority for token plumbing. The access
// token lives only in memory; the refresh token and a warm-start user
// cache are persisted through a store.Store so a returning process can
// resume without re-authentication.
//
// Operations may interleave: the manager holds its lock only across
// state mutation, never across network calls, so two concurrent
// operations race and the last response to arrive wins the final
// state. The pending-action marker is advisory and each operation
// clears only its own tag on completion.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/fotofair/fotofair-go/internal/api"
	"github.com/fotofair/fotofair-go/internal/cpf"
	"github.com/fotofair/fotofair-go/internal/store"
)

// Action tags the session-mutating operation currently in flight.
type Action string

const (
	ActionNone     Action = ""
	ActionLogin    Action = "login"
	ActionRegister Action = "register"
	ActionLogout   Action = "logout"
	ActionRefresh  Action = "refresh"
)

// Marketplace role tags.
const (
	RolePhotographer = "photographer"
	RoleUser         = "user"
)

// Sentinel errors
var (
	// ErrMalformedResponse is returned when the endpoint answers with a
	// success status but the token response is missing required fields.
	ErrMalformedResponse = errors.New("malformed auth response")

	// ErrNotAuthenticated is returned when an operation needs an access
	// token and none is held.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Endpoint is the slice of the remote auth API the manager consumes.
// *api.Client satisfies it; tests substitute stubs.
type Endpoint interface {
	Login(ctx context.Context, email, password string) (*api.TokenResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) (*api.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Profile(ctx context.Context, accessToken string) (*api.User, error)
}

// UserUpdate carries the optional fields of a local user mutation.
// Nil fields are left untouched.
type UserUpdate struct {
	DisplayName         *string
	CPF                 *string
	PhotographerProfile *api.PhotographerProfile
}

// Manager is the session lifecycle manager. Construct with New and
// share the one instance; it is safe for concurrent use.
type Manager struct {
	endpoint Endpoint
	store    store.Store
	logger   zerolog.Logger

	initOnce sync.Once

	mu                    sync.Mutex
	user                  *api.User
	accessToken           string
	refreshToken          string
	refreshTokenExpiresAt string
	pendingAction         Action
	initializing          bool
}

// New creates a session manager backed by the given endpoint and store.
func New(endpoint Endpoint, st store.Store, logger zerolog.Logger) *Manager {
	return &Manager{
		endpoint: endpoint,
		store:    st,
		logger:   logger,
	}
}

// Initialize performs the one-time startup resume: the cached user is
// loaded optimistically so a stale identity is available immediately,
// then a persisted refresh token (if any) is exchanged for a live
// session. IsInitializing reports true until the attempt settles,
// whatever its outcome. Subsequent calls are no-ops.
func (m *Manager) Initialize(ctx context.Context) {
	m.initOnce.Do(func() {
		m.initialize(ctx)
	})
}

func (m *Manager) initialize(ctx context.Context) {
	m.mu.Lock()
	m.initializing = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.initializing = false
		m.mu.Unlock()
	}()

	// Warm-start cache: stale but available until the refresh settles.
	if raw, err := m.store.Get(ctx, store.KeyUser); err == nil {
		var user api.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			m.logger.Warn().Err(err).Msg("discarding corrupt user cache")
		} else {
			m.mu.Lock()
			m.user = &user
			m.mu.Unlock()
		}
	}

	token, err := m.store.Get(ctx, store.KeyRefreshToken)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			m.logger.Warn().Err(err).Msg("failed to read persisted refresh token")
		}
		return
	}

	expiresAt, err := m.store.Get(ctx, store.KeyRefreshTokenExpiresAt)
	if err != nil {
		expiresAt = ""
	}

	m.mu.Lock()
	m.refreshToken = token
	m.refreshTokenExpiresAt = expiresAt
	m.mu.Unlock()

	if _, err := m.Refresh(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("session resume failed, starting logged out")
	}
}

// Login exchanges credentials for a session. On success the token pair
// is installed and persisted before Login returns; a follow-up profile
// fetch enriches the user record on a best-effort basis.
func (m *Manager) Login(ctx context.Context, email, password string) (*api.User, error) {
	m.setPending(ActionLogin)
	defer m.clearPending(ActionLogin)

	resp, err := m.endpoint.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	user, err := m.install(ctx, resp)
	if err != nil {
		return nil, err
	}

	m.enrich(ctx)

	m.logger.Info().Str("email", email).Msg("logged in")

	return user, nil
}

// Register creates an account and installs its first session, with the
// same contract as Login. A provided CPF is checksum-validated before
// the endpoint is called.
func (m *Manager) Register(ctx context.Context, req api.RegisterRequest) (*api.User, error) {
	if req.CPF != "" {
		normalized, err := cpf.Normalize(req.CPF)
		if err != nil {
			return nil, fmt.Errorf("cpf %q: %w", req.CPF, err)
		}
		req.CPF = normalized
	}

	m.setPending(ActionRegister)
	defer m.clearPending(ActionRegister)

	resp, err := m.endpoint.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	user, err := m.install(ctx, resp)
	if err != nil {
		return nil, err
	}

	m.enrich(ctx)

	m.logger.Info().Str("email", req.Email).Msg("registered")

	return user, nil
}

// Refresh exchanges the known refresh token (memory first, then the
// durable store) for a fresh token pair. With no token anywhere it
// clears the session and returns a nil user with no error. A rejected
// refresh tears the whole session down before the error is returned,
// so callers always observe a logged-out state in their error path.
func (m *Manager) Refresh(ctx context.Context) (*api.User, error) {
	m.setPending(ActionRefresh)
	defer m.clearPending(ActionRefresh)

	token := m.RefreshToken()
	if token == "" {
		if v, err := m.store.Get(ctx, store.KeyRefreshToken); err == nil {
			token = v
		}
	}

	if token == "" {
		m.teardown(ctx)
		return nil, nil
	}

	resp, err := m.endpoint.Refresh(ctx, token)
	if err != nil {
		m.teardown(ctx)
		return nil, err
	}

	user, err := m.install(ctx, resp)
	if err != nil {
		// Any refresh failure destroys the session, a malformed
		// response included.
		m.teardown(ctx)
		return nil, err
	}

	m.enrich(ctx)

	m.logger.Debug().Msg("session refreshed")

	return user, nil
}

// Logout invalidates the refresh token remotely and unconditionally
// clears local state. A 401/404 from the endpoint means the token was
// already invalid and is tolerated; any other remote failure is
// returned after local state has still been cleared, so sign-out always
// succeeds from the caller's perspective.
func (m *Manager) Logout(ctx context.Context) error {
	m.setPending(ActionLogout)
	defer m.clearPending(ActionLogout)
	defer m.teardown(ctx)

	token := m.RefreshToken()
	if token == "" {
		if v, err := m.store.Get(ctx, store.KeyRefreshToken); err == nil {
			token = v
		}
	}

	if token == "" {
		// Already logged out, nothing to invalidate remotely.
		return nil
	}

	if err := m.endpoint.Logout(ctx, token); err != nil {
		if api.IsInvalidSession(err) {
			m.logger.Debug().Err(err).Msg("refresh token already invalid on server")
			return nil
		}
		return err
	}

	m.logger.Info().Msg("logged out")

	return nil
}

// SetCPF records a checksum-validated CPF on the cached user record.
// No-op when no user is loaded.
func (m *Manager) SetCPF(ctx context.Context, raw string) error {
	normalized, err := cpf.Normalize(raw)
	if err != nil {
		return err
	}
	return m.UpdateUser(ctx, UserUpdate{CPF: &normalized})
}

// UpdateUser applies a partial local mutation to the cached user record
// and its durable cache. No remote call is made. No-op when no user is
// loaded.
func (m *Manager) UpdateUser(ctx context.Context, update UserUpdate) error {
	m.mu.Lock()
	if m.user == nil {
		m.mu.Unlock()
		return nil
	}

	if update.DisplayName != nil {
		m.user.DisplayName = *update.DisplayName
	}
	if update.CPF != nil {
		m.user.CPF = *update.CPF
	}
	if update.PhotographerProfile != nil {
		profile := *update.PhotographerProfile
		m.user.PhotographerProfile = &profile
	}
	user := *m.user
	m.mu.Unlock()

	return m.persistUser(ctx, &user)
}

// install normalizes the token response, persists the refresh token
// pair and the user cache, and only then publishes the new in-memory
// state. Durable and in-memory views never disagree past the return.
func (m *Manager) install(ctx context.Context, resp *api.TokenResponse) (*api.User, error) {
	if resp == nil || resp.AccessToken == "" || resp.RefreshToken == "" || resp.User == nil {
		return nil, ErrMalformedResponse
	}

	user := normalizeUser(resp)

	// Stale-role carry-over: a response that omits roles never empties
	// the roles we already know.
	m.mu.Lock()
	if prev := m.user; prev != nil {
		if len(user.Roles) == 0 {
			user.Roles = prev.Roles
		}
		if user.DefaultRole == "" {
			user.DefaultRole = prev.DefaultRole
		}
	}
	m.mu.Unlock()

	if err := m.store.Set(ctx, store.KeyRefreshToken, resp.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	if resp.RefreshTokenExpiresAt != "" {
		if err := m.store.Set(ctx, store.KeyRefreshTokenExpiresAt, resp.RefreshTokenExpiresAt); err != nil {
			m.logger.Warn().Err(err).Msg("failed to persist refresh token expiry")
		}
	} else if err := m.store.Delete(ctx, store.KeyRefreshTokenExpiresAt); err != nil {
		m.logger.Warn().Err(err).Msg("failed to clear refresh token expiry")
	}

	if err := m.persistUser(ctx, user); err != nil {
		m.logger.Warn().Err(err).Msg("failed to persist user cache")
	}

	m.mu.Lock()
	m.user = user
	m.accessToken = resp.AccessToken
	m.refreshToken = resp.RefreshToken
	m.refreshTokenExpiresAt = resp.RefreshTokenExpiresAt
	m.mu.Unlock()

	result := *user
	return &result, nil
}

// enrich performs the best-effort profile fetch after a successful
// install. The error variant is deliberately discarded: enrichment
// failure must never affect the outcome of the parent operation.
func (m *Manager) enrich(ctx context.Context) {
	profile, err := m.fetchProfile(ctx)
	if err != nil {
		m.logger.Debug().Err(err).Msg("profile enrichment failed")
		return
	}

	m.applyProfile(ctx, profile)
}

// fetchProfile fetches the profile for the current access token.
func (m *Manager) fetchProfile(ctx context.Context) (*api.User, error) {
	token := m.AccessToken()
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	return m.endpoint.Profile(ctx, token)
}

// applyProfile merges a possibly partial profile response into the
// cached user. Skipped when the session was torn down in the meantime.
func (m *Manager) applyProfile(ctx context.Context, profile *api.User) {
	if profile == nil {
		return
	}

	m.mu.Lock()
	if m.user == nil {
		m.mu.Unlock()
		return
	}

	if profile.ID != "" {
		m.user.ID = profile.ID
	}
	if profile.Email != "" {
		m.user.Email = profile.Email
	}
	if profile.DisplayName != "" {
		m.user.DisplayName = profile.DisplayName
	}
	if profile.CPF != "" {
		m.user.CPF = profile.CPF
	}
	if len(profile.Roles) > 0 {
		m.user.Roles = profile.Roles
	}
	if profile.DefaultRole != "" {
		m.user.DefaultRole = profile.DefaultRole
	}
	if profile.PhotographerProfile != nil {
		p := *profile.PhotographerProfile
		m.user.PhotographerProfile = &p
	}
	user := *m.user
	m.mu.Unlock()

	if err := m.persistUser(ctx, &user); err != nil {
		m.logger.Warn().Err(err).Msg("failed to persist enriched user cache")
	}
}

// teardown purges the durable keys, then nulls the in-memory session.
// It is idempotent.
func (m *Manager) teardown(ctx context.Context) {
	for _, key := range []string{store.KeyRefreshToken, store.KeyRefreshTokenExpiresAt, store.KeyUser} {
		if err := m.store.Delete(ctx, key); err != nil {
			m.logger.Warn().Err(err).Str("key", key).Msg("failed to purge session key")
		}
	}

	m.mu.Lock()
	m.user = nil
	m.accessToken = ""
	m.refreshToken = ""
	m.refreshTokenExpiresAt = ""
	m.mu.Unlock()
}

func (m *Manager) persistUser(ctx context.Context, user *api.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user cache: %w", err)
	}
	return m.store.Set(ctx, store.KeyUser, string(data))
}

func (m *Manager) setPending(action Action) {
	m.mu.Lock()
	m.pendingAction = action
	m.mu.Unlock()
}

// clearPending resets the marker only when it still carries this
// operation's own tag, so a finishing operation never clobbers a
// newer operation's in-flight marker.
func (m *Manager) clearPending(action Action) {
	m.mu.Lock()
	if m.pendingAction == action {
		m.pendingAction = ActionNone
	}
	m.mu.Unlock()
}

// normalizeUser folds the response-level roles and default role into
// the user record when the record itself omits them.
func normalizeUser(resp *api.TokenResponse) *api.User {
	user := *resp.User
	if len(user.Roles) == 0 && len(resp.Roles) > 0 {
		user.Roles = resp.Roles
	}
	if user.DefaultRole == "" && resp.DefaultRole != "" {
		user.DefaultRole = resp.DefaultRole
	}
	return &user
}
