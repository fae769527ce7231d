package menus

import (
	"sort"

	"github.com/jrsteele09/go-asset-console/apimodel"
	"github.com/jrsteele09/go-asset-console/internal/utils"
	"github.com/jrsteele09/go-asset-console/permission"
	"github.com/pkg/errors"
)

// Service builds menu trees and manages role grants.
type Service struct {
	repo Repo
}

func NewService(repo Repo) (*Service, error) {
	if repo == nil {
		return nil, errors.New("[NewService] menus repo is required")
	}
	return &Service{repo: repo}, nil
}

// Tree returns the active menus as a tree, siblings ordered by Order.
func (s *Service) Tree() ([]*apimodel.MenuNode, error) {
	list, err := s.repo.ListMenus()
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Tree] ListMenus")
	}
	return buildTree(list, nil), nil
}

// PermissionTree returns the active menu tree annotated with the grants held
// through roleCodes. Grants of several roles are ORed. Menus none of the roles
// has a row for carry no permissions. The administrator role holds every
// grant on every menu.
func (s *Service) PermissionTree(roleCodes []string) ([]*apimodel.MenuNode, error) {
	list, err := s.repo.ListMenus()
	if err != nil {
		return nil, errors.Wrap(err, "[Service.PermissionTree] ListMenus")
	}

	admin := false
	for _, code := range roleCodes {
		if code == permission.AdminRole {
			admin = true
			break
		}
	}
	if admin {
		return buildTree(list, func(*Menu) *permission.Grants { return permission.AllGrants() }), nil
	}

	merged := make(map[int64]*permission.Grants)
	for _, code := range roleCodes {
		role, err := s.repo.GetRoleByCode(code)
		if errors.Is(err, ErrRoleNotFound) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "[Service.PermissionTree] GetRoleByCode %s", code)
		}
		if !role.Active {
			continue
		}
		rows, err := s.repo.RoleMenus(role.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "[Service.PermissionTree] RoleMenus %s", code)
		}
		for _, rm := range rows {
			g, ok := merged[rm.MenuID]
			if !ok {
				g = &permission.Grants{}
				merged[rm.MenuID] = g
			}
			g.Merge(&rm.Grants)
		}
	}

	return buildTree(list, func(m *Menu) *permission.Grants { return merged[m.ID] }), nil
}

// Roles lists all roles.
func (s *Service) Roles() ([]apimodel.RoleResponse, error) {
	roles, err := s.repo.ListRoles()
	if err != nil {
		return nil, errors.Wrap(err, "[Service.Roles] ListRoles")
	}
	out := make([]apimodel.RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, apimodel.RoleResponse{
			RoleID:      r.ID,
			RoleName:    r.Name,
			RoleCode:    r.Code,
			Description: r.Description,
			IsActive:    r.Active,
		})
	}
	return out, nil
}

// RoleMenus returns one row per active menu with the role's grants, false
// where the role has no row.
func (s *Service) RoleMenus(roleID int64) ([]apimodel.RoleMenuPermission, error) {
	if _, err := s.repo.GetRole(roleID); err != nil {
		return nil, errors.Wrap(err, "[Service.RoleMenus] GetRole")
	}
	list, err := s.repo.ListMenus()
	if err != nil {
		return nil, errors.Wrap(err, "[Service.RoleMenus] ListMenus")
	}
	rows, err := s.repo.RoleMenus(roleID)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.RoleMenus] RoleMenus")
	}
	byMenu := make(map[int64]permission.Grants, len(rows))
	for _, rm := range rows {
		byMenu[rm.MenuID] = rm.Grants
	}

	out := make([]apimodel.RoleMenuPermission, 0, len(list))
	for _, m := range list {
		if !m.Active {
			continue
		}
		g := byMenu[m.ID]
		out = append(out, apimodel.RoleMenuPermission{
			MenuID:    m.ID,
			MenuName:  m.Name,
			CanRead:   g.CanRead,
			CanCreate: g.CanCreate,
			CanUpdate: g.CanUpdate,
			CanDelete: g.CanDelete,
		})
	}
	return out, nil
}

// UpdateRoleMenus replaces the role's grants. Every referenced menu must exist
// and may appear once.
func (s *Service) UpdateRoleMenus(roleID int64, perms []apimodel.RoleMenuPermission) error {
	if _, err := s.repo.GetRole(roleID); err != nil {
		return errors.Wrap(err, "[Service.UpdateRoleMenus] GetRole")
	}
	seen := make(map[int64]struct{}, len(perms))
	rows := make([]*RoleMenu, 0, len(perms))
	for _, p := range perms {
		if _, dup := seen[p.MenuID]; dup {
			return errors.Wrapf(ErrDuplicateMenu, "[Service.UpdateRoleMenus] menu %d", p.MenuID)
		}
		seen[p.MenuID] = struct{}{}
		if _, err := s.repo.GetMenu(p.MenuID); err != nil {
			return errors.Wrapf(err, "[Service.UpdateRoleMenus] menu %d", p.MenuID)
		}
		rows = append(rows, &RoleMenu{
			RoleID: roleID,
			MenuID: p.MenuID,
			Grants: permission.Grants{
				CanRead:   p.CanRead,
				CanCreate: p.CanCreate,
				CanUpdate: p.CanUpdate,
				CanDelete: p.CanDelete,
			},
		})
	}
	if err := s.repo.ReplaceRoleMenus(roleID, rows); err != nil {
		return errors.Wrap(err, "[Service.UpdateRoleMenus] ReplaceRoleMenus")
	}
	return nil
}

// buildTree links active menus under their parents. Menus whose parent is
// missing or inactive are dropped along with their subtree.
func buildTree(list []*Menu, grants func(*Menu) *permission.Grants) []*apimodel.MenuNode {
	children := make(map[int64][]*Menu)
	for _, m := range list {
		if !m.Active {
			continue
		}
		children[m.ParentID] = append(children[m.ParentID], m)
	}

	var build func(parentID int64) []*apimodel.MenuNode
	build = func(parentID int64) []*apimodel.MenuNode {
		kids := children[parentID]
		sort.SliceStable(kids, func(i, j int) bool {
			if kids[i].Order != kids[j].Order {
				return kids[i].Order < kids[j].Order
			}
			return kids[i].ID < kids[j].ID
		})
		nodes := make([]*apimodel.MenuNode, 0, len(kids))
		for _, m := range kids {
			n := &apimodel.MenuNode{
				MenuID:    m.ID,
				MenuCode:  m.Code,
				MenuName:  m.Name,
				MenuURL:   m.URL,
				MenuIcon:  m.Icon,
				MenuOrder: m.Order,
				Children:  build(m.ID),
			}
			if m.ParentID != 0 {
				n.ParentMenuID = utils.Ptr(m.ParentID)
			}
			if grants != nil {
				if g := grants(m); g != nil {
					n.Permissions = &apimodel.MenuPermissions{
						CanRead:   g.CanRead,
						CanCreate: g.CanCreate,
						CanUpdate: g.CanUpdate,
						CanDelete: g.CanDelete,
					}
				}
			}
			nodes = append(nodes, n)
		}
		return nodes
	}
	return build(0)
}
