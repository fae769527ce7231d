package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jrsteele09/go-asset-console/internal/errors"
	"github.com/jrsteele09/go-asset-console/token/keys"
)

// JWKS serves the public signing key set. HMAC signing has nothing to
// publish and answers 404.
func (s *Server) JWKS() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, ok := s.signer.(keys.JWKSProvider)
		if !ok {
			writeError(w, r, apperrors.ErrNotFound)
			return
		}

		jwks, err := provider.GetJWKS()
		if err != nil {
			writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.Header().Set("Cache-Control", "public, max-age=3600") // Cache for 1 hour
		_ = json.NewEncoder(w).Encode(jwks)
	}
}
