package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a structured failure from the auth endpoint, carrying the
// HTTP status and the parsed error body when one was present.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("auth endpoint returned HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("auth endpoint returned HTTP %d", e.Status)
}

// AsError unwraps err to an *Error if one is in the chain.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsStatus reports whether err is an *Error with the given HTTP status.
func IsStatus(err error, status int) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Status == status
}

// IsInvalidSession reports whether err means the credential the call
// used is already invalid on the server (unauthorized or not-found
// class). Logout tolerates these; refresh tears down on them.
func IsInvalidSession(err error) bool {
	return IsStatus(err, http.StatusUnauthorized) || IsStatus(err, http.StatusNotFound)
}
