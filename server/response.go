package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-asset-console/apimodel"
	apperrors "github.com/jrsteele09/go-asset-console/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	maxBodyBytes    = 1 << 20
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}

func writeOK[T any](w http.ResponseWriter, data T) {
	writeJSON(w, http.StatusOK, apimodel.OK(data))
}

// writeError answers with the failed envelope for err. Server side failures
// are logged with their cause; the client only sees a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resolved := apperrors.Resolve(err)
	if resolved.Status >= http.StatusInternalServerError {
		log.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	} else {
		log.Debug().Err(err).Str("path", r.URL.Path).Str("code", string(resolved.Code)).Msg("request rejected")
	}
	writeJSON(w, resolved.Status, apimodel.Fail(string(resolved.Code), resolved.Message))
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("malformed request body: %w", apperrors.ErrInvalidRequest)
	}
	return nil
}
