// Package api is the typed client for the FotoFair auth endpoint.
//
// The endpoint speaks REST/JSON. Transient failures (network errors,
// 5xx responses) are retried with exponential backoff; 4xx responses
// surface immediately as *Error so callers can inspect the status.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
)

// Config holds common client configuration
type Config struct {
	ServerURL string
	Timeout   time.Duration
	ClientID  string
	MaxTries  uint
	// RetryInterval overrides the initial backoff interval. Zero means
	// the default; tests set it low.
	RetryInterval time.Duration
}

// DefaultConfig returns a default client configuration
func DefaultConfig() Config {
	return Config{
		ServerURL: "https://api.fotofair.com.br",
		Timeout:   30 * time.Second,
		MaxTries:  3,
	}
}

// Client calls the remote auth endpoint.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	clientID      string
	maxTries      uint
	retryInterval time.Duration
}

// New creates a new auth endpoint client with the given configuration.
func New(config Config) *Client {
	if config.ServerURL == "" {
		config.ServerURL = DefaultConfig().ServerURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.MaxTries == 0 {
		config.MaxTries = DefaultConfig().MaxTries
	}
	if config.RetryInterval == 0 {
		config.RetryInterval = 250 * time.Millisecond
	}

	return &Client{
		httpClient:    &http.Client{Timeout: config.Timeout},
		baseURL:       config.ServerURL,
		clientID:      config.ClientID,
		maxTries:      config.MaxTries,
		retryInterval: config.RetryInterval,
	}
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	var resp TokenResponse
	if err := c.call(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns its first token pair.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	var resp TokenResponse
	if err := c.call(ctx, http.MethodPost, "/auth/register", req, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh exchanges a refresh token for a fresh token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	var resp TokenResponse
	if err := c.call(ctx, http.MethodPost, "/auth/refresh", refreshRequest{RefreshToken: refreshToken}, "", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates a refresh token on the server.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	var resp logoutResponse
	return c.call(ctx, http.MethodPost, "/auth/logout", refreshRequest{RefreshToken: refreshToken}, "", &resp)
}

// Profile fetches the account record for the bearer of accessToken.
func (c *Client) Profile(ctx context.Context, accessToken string) (*User, error) {
	var user User
	if err := c.call(ctx, http.MethodGet, "/auth/profile", nil, accessToken, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// call runs one endpoint operation with retry. Only transport errors
// and 5xx responses are retried; everything else is permanent.
func (c *Client) call(ctx context.Context, method, path string, body any, accessToken string, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := c.roundTrip(ctx, method, path, payload, accessToken, out)
		if err != nil {
			if apiErr, ok := AsError(err); ok && apiErr.Status < http.StatusInternalServerError {
				return struct{}{}, backoff.Permanent(err)
			}
			log.Debug().Err(err).Str("path", path).Msg("retrying auth endpoint call")
		}
		return struct{}{}, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(c.maxTries))

	return err
}

// errorBody is the error shape the endpoint returns alongside non-2xx
// statuses.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload []byte, accessToken string, out any) error {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.clientID != "" {
		req.Header.Set("X-Client-Id", c.clientID)
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}

		// Best effort, a non-JSON error body still yields the status
		var parsed errorBody
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err == nil {
			apiErr.Code = parsed.Code
			apiErr.Message = parsed.Message
			if apiErr.Message == "" {
				apiErr.Message = parsed.Error
			}
		}

		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
