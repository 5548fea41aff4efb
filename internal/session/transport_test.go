package session

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fotofair/fotofair-go/internal/api"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func signedJWT(t *testing.T, expiresIn time.Duration) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(expiresIn).Unix(),
	})
	signed, err := token.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return signed
}

func loginWithAccessToken(t *testing.T, endpoint *stubEndpoint, accessToken string) *Manager {
	t.Helper()

	endpoint.loginFn = func(ctx context.Context, email, password string) (*api.TokenResponse, error) {
		resp := anaTokens()
		resp.AccessToken = accessToken
		return resp, nil
	}
	m, _ := newManager(endpoint)

	_, err := m.Login(t.Context(), "a@x.com", "secret")
	require.NoError(t, err)
	return m
}

func TestTransport(t *testing.T) {
	t.Run("requires a session", func(t *testing.T) {
		m, _ := newManager(&stubEndpoint{})
		transport := NewTransport(m, nil)

		req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, "https://api.fotofair.com.br/events", nil)
		require.NoError(t, err)

		_, err = transport.RoundTrip(req)
		assert.ErrorIs(t, err, ErrNotAuthenticated)
	})

	t.Run("attaches the bearer token", func(t *testing.T) {
		m := loginWithAccessToken(t, &stubEndpoint{}, "AT-opaque")

		var seen string
		base := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			seen = req.Header.Get("Authorization")
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{}"))}, nil
		})

		req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, "https://api.fotofair.com.br/events", nil)
		require.NoError(t, err)

		resp, err := NewTransport(m, base).RoundTrip(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, "Bearer AT-opaque", seen)
	})

	t.Run("does not mutate the caller's request", func(t *testing.T) {
		m := loginWithAccessToken(t, &stubEndpoint{}, "AT-opaque")

		base := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{}"))}, nil
		})

		req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, "https://api.fotofair.com.br/events", nil)
		require.NoError(t, err)

		resp, err := NewTransport(m, base).RoundTrip(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Empty(t, req.Header.Get("Authorization"))
	})

	t.Run("refreshes an expiring jwt first", func(t *testing.T) {
		endpoint := &stubEndpoint{}
		endpoint.refreshFn = func(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
			resp := anaTokens()
			resp.AccessToken = "AT-fresh"
			resp.RefreshToken = "RT2"
			return resp, nil
		}
		m := loginWithAccessToken(t, endpoint, signedJWT(t, 5*time.Second))

		var seen string
		base := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			seen = req.Header.Get("Authorization")
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{}"))}, nil
		})

		req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, "https://api.fotofair.com.br/cart", nil)
		require.NoError(t, err)

		resp, err := NewTransport(m, base).RoundTrip(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, "Bearer AT-fresh", seen)
		assert.Equal(t, int32(1), endpoint.refreshCalls.Load())
	})

	t.Run("leaves a fresh jwt alone", func(t *testing.T) {
		endpoint := &stubEndpoint{}
		token := signedJWT(t, time.Hour)
		m := loginWithAccessToken(t, endpoint, token)

		var seen string
		base := roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			seen = req.Header.Get("Authorization")
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("{}"))}, nil
		})

		req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, "https://api.fotofair.com.br/cart", nil)
		require.NoError(t, err)

		resp, err := NewTransport(m, base).RoundTrip(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, int32(0), endpoint.refreshCalls.Load())
		assert.Equal(t, "Bearer "+token, seen)
	})

	t.Run("failed refresh surfaces and leaves session torn down", func(t *testing.T) {
		endpoint := &stubEndpoint{}
		endpoint.refreshFn = func(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
			return nil, &api.Error{Status: http.StatusUnauthorized}
		}
		m := loginWithAccessToken(t, endpoint, signedJWT(t, 5*time.Second))

		req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, "https://api.fotofair.com.br/cart", nil)
		require.NoError(t, err)

		_, err = NewTransport(m, nil).RoundTrip(req)
		require.Error(t, err)
		assert.False(t, m.IsAuthenticated())
	})
}

func TestExpiringSoon(t *testing.T) {
	t.Run("opaque tokens never report expiring", func(t *testing.T) {
		assert.False(t, expiringSoon("AT-opaque", time.Minute))
	})

	t.Run("jwt without exp never reports expiring", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "u1"})
		signed, err := token.SignedString([]byte("test-key"))
		require.NoError(t, err)

		assert.False(t, expiringSoon(signed, time.Minute))
	})

	t.Run("exp inside the skew window reports expiring", func(t *testing.T) {
		assert.True(t, expiringSoon(signedJWT(t, 10*time.Second), 30*time.Second))
		assert.False(t, expiringSoon(signedJWT(t, time.Hour), 30*time.Second))
	})
}
