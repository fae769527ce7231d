package menus

import (
	"github.com/jrsteele09/go-asset-console/permission"
	"github.com/pkg/errors"
)

type seedMenu struct {
	code, name, url, icon string
	children              []seedMenu
}

var defaultMenus = []seedMenu{
	{code: "SYSTEM", name: "System", icon: "setting", children: []seedMenu{
		{code: "MENU_MGMT", name: "Menus", url: "/menus"},
		{code: "ROLE_MGMT", name: "Roles", url: "/roles"},
		{code: "CODE_MGMT", name: "Common codes", url: "/common-codes"},
	}},
	{code: "ORGANIZATION", name: "Organization", icon: "team", children: []seedMenu{
		{code: "DEPT_MGMT", name: "Departments", url: "/departments"},
		{code: "MEMBER_MGMT", name: "Members", url: "/members"},
	}},
	{code: "ASSET_MGMT", name: "Assets", icon: "laptop", children: []seedMenu{
		{code: "ASSET_CATEGORY", name: "Asset categories", url: "/assets/categories"},
		{code: "ASSET_LIST", name: "Asset list", url: "/assets"},
		{code: "ASSET_ASSIGNMENT", name: "Asset assignments", url: "/asset-assignments"},
	}},
	{code: "LICENSE_MGMT", name: "Licenses", icon: "key", children: []seedMenu{
		{code: "SOFTWARE", name: "Software", url: "/softwares"},
		{code: "LICENSE_LIST", name: "License list", url: "/licenses"},
		{code: "LICENSE_ASSIGNMENT", name: "License assignments", url: "/license-assignments"},
	}},
}

// userReadable are the menu codes the default user role may read.
var userReadable = map[string]bool{
	"ASSET_MGMT":         true,
	"ASSET_LIST":         true,
	"ASSET_ASSIGNMENT":   true,
	"LICENSE_MGMT":       true,
	"SOFTWARE":           true,
	"LICENSE_LIST":       true,
	"LICENSE_ASSIGNMENT": true,
}

// SeedDefaults creates the console menu tree, the administrator and user
// roles and read grants for the user role. It does nothing when menus exist.
func SeedDefaults(repo Repo) error {
	existing, err := repo.ListMenus()
	if err != nil {
		return errors.Wrap(err, "[SeedDefaults] ListMenus")
	}
	if len(existing) > 0 {
		return nil
	}

	var grants []*RoleMenu
	var insert func(parentID int64, items []seedMenu) error
	insert = func(parentID int64, items []seedMenu) error {
		for i, item := range items {
			m := &Menu{
				ParentID: parentID,
				Code:     item.code,
				Name:     item.name,
				URL:      item.url,
				Icon:     item.icon,
				Order:    i + 1,
				Active:   true,
			}
			if err := repo.UpsertMenu(m); err != nil {
				return errors.Wrapf(err, "[SeedDefaults] UpsertMenu %s", item.code)
			}
			if userReadable[item.code] {
				grants = append(grants, &RoleMenu{MenuID: m.ID, Grants: permission.Grants{CanRead: true}})
			}
			if err := insert(m.ID, item.children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insert(0, defaultMenus); err != nil {
		return err
	}

	admin := &Role{Code: permission.AdminRole, Name: "Administrator", Description: "Full access to every menu", Active: true}
	if err := repo.UpsertRole(admin); err != nil {
		return errors.Wrap(err, "[SeedDefaults] UpsertRole admin")
	}
	user := &Role{Code: "ROLE_USER", Name: "User", Description: "Read access to assets and licenses", Active: true}
	if err := repo.UpsertRole(user); err != nil {
		return errors.Wrap(err, "[SeedDefaults] UpsertRole user")
	}
	if err := repo.ReplaceRoleMenus(user.ID, grants); err != nil {
		return errors.Wrap(err, "[SeedDefaults] ReplaceRoleMenus")
	}
	return nil
}
