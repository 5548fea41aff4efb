package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// refreshSkew is how close to its exp claim an access token may get
// before the transport refreshes proactively.
const refreshSkew = 30 * time.Second

// Transport is an http.RoundTripper that authorizes outgoing requests
// with the manager's access token. When the token is a JWT within
// refreshSkew of expiry, one refresh is attempted first; opaque tokens
// are sent as-is and the server's 401 remains the signal to refresh.
type Transport struct {
	manager *Manager
	base    http.RoundTripper
}

// NewTransport wraps base (nil means http.DefaultTransport) with
// bearer authorization from manager.
func NewTransport(manager *Manager, base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{manager: manager, base: base}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	header, err := t.AuthorizationHeader(req)
	if err != nil {
		return nil, err
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", header)

	return t.base.RoundTrip(clone)
}

// AuthorizationHeader returns the Authorization header value for the
// current session, refreshing first when the token is about to expire.
func (t *Transport) AuthorizationHeader(req *http.Request) (string, error) {
	token := t.manager.AccessToken()
	if token == "" {
		return "", ErrNotAuthenticated
	}

	if expiringSoon(token, refreshSkew) {
		if _, err := t.manager.Refresh(req.Context()); err != nil {
			return "", fmt.Errorf("failed to refresh expiring session: %w", err)
		}
		token = t.manager.AccessToken()
		if token == "" {
			return "", ErrNotAuthenticated
		}
	}

	return "Bearer " + token, nil
}

// expiringSoon peeks at the JWT exp claim without verifying the
// signature; validity is the server's concern, this is only a hint to
// refresh early. Tokens that don't parse as JWTs never report expiring.
func expiringSoon(token string, skew time.Duration) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return time.Now().Add(skew).After(exp.Time)
}
