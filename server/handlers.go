package server

import (
	"net/http"

	"github.com/jrsteele09/go-asset-console/apimodel"
	apperrors "github.com/jrsteele09/go-asset-console/internal/errors"
)

// LoginHandler exchanges a login id and password for a token pair
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apimodel.LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		tokens, err := s.auth.Login(r.Context(), req.LoginID, req.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, tokens)
	}
}

// RefreshHandler rotates a refresh token and issues a new access token
func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apimodel.RefreshRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		tokens, err := s.auth.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, tokens)
	}
}

// LogoutHandler ends every session of the caller
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := PrincipalFromContext(r.Context())
		if err := s.auth.Logout(r.Context(), principal, accessTokenFromContext(r.Context())); err != nil {
			writeError(w, r, err)
			return
		}
		writeOK[any](w, nil)
	}
}

// MeHandler returns the caller's actor snapshot
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := PrincipalFromContext(r.Context())
		me, err := s.auth.Me(principal.MemberID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, me)
	}
}

// ChangePasswordHandler replaces the caller's password
func (s *Server) ChangePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apimodel.ChangePasswordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		principal, _ := PrincipalFromContext(r.Context())
		if err := s.auth.ChangePassword(principal.MemberID, req); err != nil {
			writeError(w, r, err)
			return
		}
		writeOK[any](w, nil)
	}
}

// HealthHandler reports that the server is up
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, map[string]string{"status": "UP"})
	}
}

// NotFoundHandler answers every unknown route
func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, apperrors.ErrNotFound)
	}
}
