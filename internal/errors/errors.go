package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types for the console server
var (
	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account is locked")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrWeakPassword       = errors.New("password does not meet requirements")
	ErrForbidden          = errors.New("forbidden")

	// Token errors
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenRevoked        = errors.New("token revoked")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// General errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("not found")
	ErrInternal       = errors.New("internal error")
)

// Code is the machine readable errorCode carried in the response envelope.
type Code string

const (
	CodeInvalidCredentials Code = "AUTH_001"
	CodeTokenExpired       Code = "AUTH_002"
	CodeForbidden          Code = "AUTH_003"
	CodeAccountLocked      Code = "AUTH_004"
	CodeInternal           Code = "SYSTEM_ERROR"
	CodeBadRequest         Code = "COMMON_002"
	CodeNotFound           Code = "COMMON_003"
)

// Resolved is what an error looks like on the wire.
type Resolved struct {
	Status  int
	Code    Code
	Message string
}

var table = []struct {
	target error
	Resolved
}{
	{ErrInvalidCredentials, Resolved{http.StatusUnauthorized, CodeInvalidCredentials, "Invalid login ID or password."}},
	{ErrAccountInactive, Resolved{http.StatusUnauthorized, CodeInvalidCredentials, "Invalid login ID or password."}},
	{ErrAccountLocked, Resolved{http.StatusLocked, CodeAccountLocked, "The account is locked. Contact an administrator."}},
	{ErrTokenExpired, Resolved{http.StatusUnauthorized, CodeTokenExpired, "The token has expired."}},
	{ErrTokenRevoked, Resolved{http.StatusUnauthorized, CodeTokenExpired, "The token has been revoked."}},
	{ErrInvalidToken, Resolved{http.StatusUnauthorized, CodeTokenExpired, "The token is invalid."}},
	{ErrInvalidRefreshToken, Resolved{http.StatusUnauthorized, CodeTokenExpired, "The refresh token is invalid."}},
	{ErrRefreshTokenExpired, Resolved{http.StatusUnauthorized, CodeTokenExpired, "The refresh token has expired."}},
	{ErrForbidden, Resolved{http.StatusForbidden, CodeForbidden, "You do not have permission to access this resource."}},
	{ErrWeakPassword, Resolved{http.StatusBadRequest, CodeBadRequest, ""}},
	{ErrInvalidRequest, Resolved{http.StatusBadRequest, CodeBadRequest, ""}},
	{ErrNotFound, Resolved{http.StatusNotFound, CodeNotFound, "The requested resource was not found."}},
}

// Resolve maps err onto a status, code and message. An empty table message
// means the error text itself is safe to show. Unknown errors become a
// generic 500.
func Resolve(err error) Resolved {
	for _, entry := range table {
		if errors.Is(err, entry.target) {
			r := entry.Resolved
			if r.Message == "" {
				r.Message = err.Error()
			}
			return r
		}
	}
	return Resolved{http.StatusInternalServerError, CodeInternal, "An internal error occurred."}
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
