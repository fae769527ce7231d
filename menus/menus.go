package menus

import (
	"fmt"

	apperrors "github.com/jrsteele09/go-asset-console/internal/errors"
	"github.com/jrsteele09/go-asset-console/permission"
)

var (
	ErrMenuNotFound  = fmt.Errorf("menu %w", apperrors.ErrNotFound)
	ErrRoleNotFound  = fmt.Errorf("role %w", apperrors.ErrNotFound)
	ErrDuplicateMenu = fmt.Errorf("menu listed more than once: %w", apperrors.ErrInvalidRequest)
)

// Menu is one node of the console navigation, stored flat with a parent link.
type Menu struct {
	ID          int64  // Numeric identifier
	ParentID    int64  // Parent menu, 0 for top level
	Code        string // Unique code such as ASSET_LIST
	Name        string // Display name
	URL         string // Route path, empty for group menus
	Icon        string
	Order       int // Sort order among siblings
	Description string
	Active      bool
}

// Role groups members for permission purposes.
type Role struct {
	ID          int64
	Code        string // ROLE_ADMIN, ROLE_USER, ...
	Name        string
	Description string
	Active      bool
}

// RoleMenu is the grant row for one role on one menu.
type RoleMenu struct {
	RoleID int64
	MenuID int64
	Grants permission.Grants
}
