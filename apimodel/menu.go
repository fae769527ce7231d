package apimodel

// MenuPermissions are the CRUD grants attached to a menu node.
type MenuPermissions struct {
	CanRead   bool `json:"canRead"`
	CanCreate bool `json:"canCreate"`
	CanUpdate bool `json:"canUpdate"`
	CanDelete bool `json:"canDelete"`
}

// MenuNode is one node of the caller's permission tree. Permissions is nil
// when none of the caller's roles has an entry for the menu.
type MenuNode struct {
	MenuID       int64            `json:"menuId"`
	MenuCode     string           `json:"menuCode"`
	MenuName     string           `json:"menuName"`
	MenuURL      string           `json:"menuUrl,omitempty"`
	ParentMenuID *int64           `json:"parentMenuId,omitempty"`
	MenuIcon     string           `json:"menuIcon,omitempty"`
	MenuOrder    int              `json:"menuOrder"`
	Children     []*MenuNode      `json:"children,omitempty"`
	Permissions  *MenuPermissions `json:"permissions,omitempty"`
}

// RoleResponse describes a role.
type RoleResponse struct {
	RoleID      int64  `json:"roleId"`
	RoleName    string `json:"roleName"`
	RoleCode    string `json:"roleCode"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// RoleMenuPermission is one row of a role's grants.
type RoleMenuPermission struct {
	MenuID    int64  `json:"menuId"`
	MenuName  string `json:"menuName,omitempty"`
	CanRead   bool   `json:"canRead"`
	CanCreate bool   `json:"canCreate"`
	CanUpdate bool   `json:"canUpdate"`
	CanDelete bool   `json:"canDelete"`
}

// RoleMenuUpdateRequest is the body of PUT /roles/{roleId}/menus.
type RoleMenuUpdateRequest struct {
	MenuPermissions []RoleMenuPermission `json:"menuPermissions"`
}
