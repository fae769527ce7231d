package apiclient

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionExpired is wrapped into the error of every request rejected
	// because the session could not be refreshed.
	ErrSessionExpired = errors.New("session expired")
	// ErrBodyNotReplayable is returned when a request needing a replay has a
	// body that cannot be rewound.
	ErrBodyNotReplayable = errors.New("request body cannot be replayed")
)

// ErrorKind classifies a failed request.
type ErrorKind int

const (
	KindGeneric ErrorKind = iota
	KindUnauthorized
	KindForbidden
	KindAuthEndpoint
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindAuthEndpoint:
		return "auth-endpoint"
	}
	return "generic"
}

// APIError is returned for every non-2xx response and transport failure.
type APIError struct {
	Kind       ErrorKind
	StatusCode int    // 0 when no response was received
	Code       string // server error code such as AUTH_001
	Message    string // server message or a fallback
	Method     string
	Path       string
	Err        error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// AsAPIError unwraps err to an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
