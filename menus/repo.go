package menus

// Repo stores menus, roles and the grants linking them.
type Repo interface {
	UpsertMenu(menu *Menu) error
	GetMenu(id int64) (*Menu, error)
	ListMenus() ([]*Menu, error)

	UpsertRole(role *Role) error
	GetRole(id int64) (*Role, error)
	GetRoleByCode(code string) (*Role, error)
	ListRoles() ([]*Role, error)

	// RoleMenus returns the grant rows of a role.
	RoleMenus(roleID int64) ([]*RoleMenu, error)
	// ReplaceRoleMenus swaps all grant rows of a role.
	ReplaceRoleMenus(roleID int64, rows []*RoleMenu) error
}
