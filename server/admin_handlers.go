package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/jrsteele09/go-asset-console/apimodel"
	apperrors "github.com/jrsteele09/go-asset-console/internal/errors"
	"github.com/rs/zerolog/log"
)

// RolesHandler lists every role
func (s *Server) RolesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roles, err := s.menus.Roles()
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, roles)
	}
}

// RoleMenusHandler lists a role's grants, one row per active menu
func (s *Server) RoleMenusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roleID, err := roleIDFromPath(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		rows, err := s.menus.RoleMenus(roleID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, rows)
	}
}

// UpdateRoleMenusHandler replaces a role's grants
func (s *Server) UpdateRoleMenusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roleID, err := roleIDFromPath(r)
		if err != nil {
			writeError(w, r, err)
			return
		}
		var req apimodel.RoleMenuUpdateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		if err := s.menus.UpdateRoleMenus(roleID, req.MenuPermissions); err != nil {
			writeError(w, r, err)
			return
		}

		principal, _ := PrincipalFromContext(r.Context())
		log.Info().Int64("roleId", roleID).Str("by", principal.LoginID).Int("menus", len(req.MenuPermissions)).Msg("role grants replaced")
		writeOK[any](w, nil)
	}
}

func roleIDFromPath(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("roleId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("roleId must be a positive number: %w", apperrors.ErrInvalidRequest)
	}
	return id, nil
}
