package server

import (
	"net/http"
)

// MenuTreeHandler returns every active menu as a tree
func (s *Server) MenuTreeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tree, err := s.menus.Tree()
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, tree)
	}
}

// MyMenusHandler returns the menu tree annotated with the caller's grants
func (s *Server) MyMenusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, _ := PrincipalFromContext(r.Context())
		tree, err := s.menus.PermissionTree(principal.Roles)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeOK(w, tree)
	}
}
