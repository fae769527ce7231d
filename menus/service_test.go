package menus_test

import (
	"testing"

	"github.com/jrsteele09/go-asset-console/apimodel"
	"github.com/jrsteele09/go-asset-console/menus"
	menurepofake "github.com/jrsteele09/go-asset-console/menus/repofake"
	"github.com/jrsteele09/go-asset-console/permission"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	repo    menus.Repo
	service *menus.Service
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	repo := menurepofake.NewFakeMenuRepo()
	require.NoError(t, menus.SeedDefaults(repo))
	service, err := menus.NewService(repo)
	require.NoError(t, err)
	return &testFixture{repo: repo, service: service}
}

func findNode(nodes []*apimodel.MenuNode, code string) *apimodel.MenuNode {
	for _, n := range nodes {
		if n.MenuCode == code {
			return n
		}
		if found := findNode(n.Children, code); found != nil {
			return found
		}
	}
	return nil
}

func codes(nodes []*apimodel.MenuNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.MenuCode)
	}
	return out
}

func TestNewServiceRequiresRepo(t *testing.T) {
	_, err := menus.NewService(nil)
	require.Error(t, err)
}

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, menus.SeedDefaults(f.repo))
	list, err := f.repo.ListMenus()
	require.NoError(t, err)
	require.Len(t, list, 15)
}

func TestTree(t *testing.T) {
	f := setupTestFixture(t)
	tree, err := f.service.Tree()
	require.NoError(t, err)
	require.Equal(t, []string{"SYSTEM", "ORGANIZATION", "ASSET_MGMT", "LICENSE_MGMT"}, codes(tree))

	assets := findNode(tree, "ASSET_MGMT")
	require.Equal(t, []string{"ASSET_CATEGORY", "ASSET_LIST", "ASSET_ASSIGNMENT"}, codes(assets.Children))
	require.Equal(t, assets.MenuID, *assets.Children[0].ParentMenuID)
	require.Nil(t, assets.Permissions)
}

func TestPermissionTree(t *testing.T) {
	t.Run("administrator holds every grant", func(t *testing.T) {
		f := setupTestFixture(t)
		tree, err := f.service.PermissionTree([]string{permission.AdminRole})
		require.NoError(t, err)
		n := findNode(tree, "MENU_MGMT")
		require.Equal(t, &apimodel.MenuPermissions{CanRead: true, CanCreate: true, CanUpdate: true, CanDelete: true}, n.Permissions)
	})

	t.Run("user gets seeded read grants and nothing elsewhere", func(t *testing.T) {
		f := setupTestFixture(t)
		tree, err := f.service.PermissionTree([]string{"ROLE_USER"})
		require.NoError(t, err)
		require.Equal(t, &apimodel.MenuPermissions{CanRead: true}, findNode(tree, "ASSET_LIST").Permissions)
		require.Nil(t, findNode(tree, "MEMBER_MGMT").Permissions)
	})

	t.Run("grants are ORed across roles", func(t *testing.T) {
		f := setupTestFixture(t)
		auditor := &menus.Role{Code: "ROLE_AUDITOR", Active: true}
		require.NoError(t, f.repo.UpsertRole(auditor))

		list, err := f.repo.ListMenus()
		require.NoError(t, err)
		var assetList int64
		for _, m := range list {
			if m.Code == "ASSET_LIST" {
				assetList = m.ID
			}
		}
		require.NoError(t, f.service.UpdateRoleMenus(auditor.ID, []apimodel.RoleMenuPermission{
			{MenuID: assetList, CanUpdate: true},
		}))

		tree, err := f.service.PermissionTree([]string{"ROLE_USER", "ROLE_AUDITOR", "ROLE_UNKNOWN"})
		require.NoError(t, err)
		require.Equal(t, &apimodel.MenuPermissions{CanRead: true, CanUpdate: true}, findNode(tree, "ASSET_LIST").Permissions)
	})

	t.Run("inactive roles grant nothing", func(t *testing.T) {
		f := setupTestFixture(t)
		role, err := f.repo.GetRoleByCode("ROLE_USER")
		require.NoError(t, err)
		role.Active = false
		require.NoError(t, f.repo.UpsertRole(role))

		tree, err := f.service.PermissionTree([]string{"ROLE_USER"})
		require.NoError(t, err)
		require.Nil(t, findNode(tree, "ASSET_LIST").Permissions)
	})

	t.Run("inactive menus are left out with their subtree", func(t *testing.T) {
		f := setupTestFixture(t)
		list, err := f.repo.ListMenus()
		require.NoError(t, err)
		for _, m := range list {
			if m.Code == "SYSTEM" {
				m.Active = false
				require.NoError(t, f.repo.UpsertMenu(m))
			}
		}
		tree, err := f.service.PermissionTree([]string{permission.AdminRole})
		require.NoError(t, err)
		require.Nil(t, findNode(tree, "SYSTEM"))
		require.Nil(t, findNode(tree, "MENU_MGMT"))
	})
}

func TestRoleMenus(t *testing.T) {
	f := setupTestFixture(t)
	user, err := f.repo.GetRoleByCode("ROLE_USER")
	require.NoError(t, err)

	rows, err := f.service.RoleMenus(user.ID)
	require.NoError(t, err)
	require.Len(t, rows, 15)

	readable := 0
	for _, r := range rows {
		if r.CanRead {
			readable++
		}
		require.False(t, r.CanDelete)
	}
	require.Equal(t, 7, readable)

	_, err = f.service.RoleMenus(999)
	require.ErrorIs(t, err, menus.ErrRoleNotFound)
}

func TestUpdateRoleMenus(t *testing.T) {
	f := setupTestFixture(t)
	user, err := f.repo.GetRoleByCode("ROLE_USER")
	require.NoError(t, err)

	err = f.service.UpdateRoleMenus(user.ID, []apimodel.RoleMenuPermission{{MenuID: 1}, {MenuID: 1}})
	require.ErrorIs(t, err, menus.ErrDuplicateMenu)

	err = f.service.UpdateRoleMenus(user.ID, []apimodel.RoleMenuPermission{{MenuID: 404}})
	require.ErrorIs(t, err, menus.ErrMenuNotFound)

	require.NoError(t, f.service.UpdateRoleMenus(user.ID, nil))
	tree, err := f.service.PermissionTree([]string{"ROLE_USER"})
	require.NoError(t, err)
	require.Nil(t, findNode(tree, "ASSET_LIST").Permissions)
}
