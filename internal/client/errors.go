package client

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/steelhall/steelhall/internal/models"
)

var (
	// ErrAuthExpired means the anti-forgery token was rejected (419). The
	// user should refresh and retry; the client fetches a new token on the
	// next mutation.
	ErrAuthExpired = errors.New("session token expired, please refresh and retry")

	// ErrUnauthorized means there is no valid admin session (401).
	ErrUnauthorized = errors.New("not logged in")

	// ErrNotFound means the item no longer exists on the server (404).
	ErrNotFound = errors.New("not found")

	// ErrNetwork wraps transport failures: the request may not have reached
	// the server.
	ErrNetwork = errors.New("network error")
)

// ValidationError carries the server's per-field messages (422).
type ValidationError struct {
	Message string
	Fields  models.FieldErrors
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+strings.Join(e.Fields[name], ", "))
	}
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(parts, "; "))
}

// StatusError is any other non-success response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}
