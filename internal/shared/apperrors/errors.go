// Package apperrors gives API failures a type, so callers can react to an
// expired session differently from a validation problem or a server outage.
package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Type classifies an error by what the user can do about it.
type Type uint8

const (
	// TypeUnknown is used when the error type is not known.
	TypeUnknown Type = iota
	// TypeBadRequest is used when the server rejected the payload.
	TypeBadRequest
	// TypeUnauthorized is used when the session is missing or expired.
	TypeUnauthorized
	// TypeForbidden is used when the user lacks permission.
	TypeForbidden
	// TypeNotFound is used when the resource does not exist.
	TypeNotFound
	// TypeServer is used for 5xx answers.
	TypeServer
	// TypeNetwork is used when the API could not be reached at all.
	TypeNetwork
	// TypeValidation is used for local form validation failures.
	TypeValidation
)

func (t Type) String() string {
	switch t {
	case TypeBadRequest:
		return "bad_request"
	case TypeUnauthorized:
		return "unauthorized"
	case TypeForbidden:
		return "forbidden"
	case TypeNotFound:
		return "not_found"
	case TypeServer:
		return "server"
	case TypeNetwork:
		return "network"
	case TypeValidation:
		return "validation"
	default:
		return "unknown"
	}
}

var (
	// ErrNotLoggedIn is returned when no tokens are stored locally.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrSessionExpired is returned after a 401 that a token refresh could not fix.
	// Stored tokens have already been cleared when it is returned.
	ErrSessionExpired = errors.New("session expired")
)

// Error is an API or validation error with a type and a user-facing message.
type Error struct {
	Type    Type
	Status  int
	Message string
	Wrapped error
}

// New creates a new error with the given type, wrapped error and message.
func New(ty Type, wrapped error, msg string, args ...any) *Error {
	return &Error{
		Type:    ty,
		Wrapped: wrapped,
		Message: fmt.Sprintf(msg, args...),
	}
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Wrapped != nil {
		return e.Wrapped.Error()
	}
	return e.Type.String()
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

// TypeOf returns the Type of the first *Error in err's chain.
func TypeOf(err error) Type {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return TypeUnknown
}

// IsUnauthorized reports whether err means the user has to log in again.
// A bare 401 from a public endpoint (bad credentials on login) is not a
// session problem and keeps its server message.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrNotLoggedIn)
}

// typeForStatus maps an HTTP status code onto a Type.
func typeForStatus(status int) Type {
	switch {
	case status == http.StatusBadRequest:
		return TypeBadRequest
	case status == http.StatusUnauthorized:
		return TypeUnauthorized
	case status == http.StatusForbidden:
		return TypeForbidden
	case status == http.StatusNotFound:
		return TypeNotFound
	case status >= 500:
		return TypeServer
	default:
		return TypeUnknown
	}
}

// FromStatus builds an *Error from a non-2xx response. The message is taken
// from the body's "detail", "error" or "message" field, then from the first
// field error; otherwise a generic fallback is used.
func FromStatus(status int, body []byte) *Error {
	msg := serverMessage(body)
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	return &Error{
		Type:    typeForStatus(status),
		Status:  status,
		Message: msg,
	}
}

func serverMessage(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	for _, key := range []string{"detail", "error", "message"} {
		if s := flatten(payload[key]); s != "" {
			return s
		}
	}

	// Field errors: {"title": ["This field is required."]}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s := flatten(payload[k]); s != "" {
			return fmt.Sprintf("%s: %s", k, s)
		}
	}
	return ""
}

func flatten(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := flatten(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}
