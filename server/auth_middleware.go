package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-asset-console/auth"
	apperrors "github.com/jrsteele09/go-asset-console/internal/errors"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyPrincipal stores the authenticated *auth.Principal
	ContextKeyPrincipal ContextKey = "principal"
	// ContextKeyAccessToken stores the raw bearer token of the request
	ContextKeyAccessToken ContextKey = "access_token"
)

// PrincipalFromContext returns the caller set by RequireAuth.
func PrincipalFromContext(ctx context.Context) (*auth.Principal, bool) {
	p, ok := ctx.Value(ContextKeyPrincipal).(*auth.Principal)
	return p, ok
}

func accessTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(ContextKeyAccessToken).(string)
	return token
}

// bearerToken extracts the token of an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// RequireAuth is middleware that validates a Bearer access token: signature,
// audience, expiry and revocation. Failures answer 401.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, r, apperrors.ErrInvalidToken)
				return
			}

			principal, err := s.auth.Authenticate(token)
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyPrincipal, principal)
			ctx = context.WithValue(ctx, ContextKeyAccessToken, token)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireAdmin is middleware that requires the administrator role. It must be
// chained after RequireAuth. Failures answer 403.
func (s *Server) RequireAdmin() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok || !principal.IsAdmin() {
				writeError(w, r, apperrors.ErrForbidden)
				return
			}
			next(w, r)
		}
	}
}
