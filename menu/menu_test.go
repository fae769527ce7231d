package menu_test

import (
	"testing"

	"github.com/jrsteele09/go-asset-console/menu"
	"github.com/jrsteele09/go-asset-console/permission"
	"github.com/stretchr/testify/require"
)

func paths(items []menu.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Path)
	}
	return out
}

func TestFilter(t *testing.T) {
	items := []menu.Item{
		{Path: "/home", ShowInMenu: true},
		{
			Path: "/group", ShowInMenu: true,
			Children: []menu.Item{
				{Path: "/a", RequiredResource: "/a", ShowInMenu: true},
				{Path: "/b", RequiredResource: "/b", ShowInMenu: true},
				{Path: "/b/:id", RequiredResource: "/b"},
			},
		},
		{Path: "/hidden", ShowInMenu: false},
	}

	t.Run("nil predicate keeps displayable items", func(t *testing.T) {
		got := menu.Filter(items, nil)
		require.Equal(t, []string{"/home", "/group"}, paths(got))
		require.Equal(t, []string{"/a", "/b"}, paths(got[1].Children))
	})

	t.Run("parent with one surviving child keeps only that child", func(t *testing.T) {
		got := menu.Filter(items, func(it menu.Item) bool { return it.Path != "/a" })
		require.Equal(t, []string{"/home", "/group"}, paths(got))
		require.Equal(t, []string{"/b"}, paths(got[1].Children))
	})

	t.Run("parent with no surviving child is dropped", func(t *testing.T) {
		got := menu.Filter(items, func(it menu.Item) bool { return it.Path == "/home" })
		require.Equal(t, []string{"/home"}, paths(got))
	})

	t.Run("input is not modified", func(t *testing.T) {
		_ = menu.Filter(items, func(it menu.Item) bool { return false })
		require.Len(t, items[1].Children, 3)
	})
}

func TestBuild(t *testing.T) {
	t.Run("admin sees every displayable route", func(t *testing.T) {
		ev := permission.NewEvaluator()
		ev.SetRoles([]string{permission.AdminRole})
		require.NoError(t, ev.LoadNodes([]*permission.Node{{ResourceKey: "/assets"}}))
		require.Equal(t, menu.Filter(menu.ConsoleRoutes(), nil), menu.Build(ev))
	})

	t.Run("empty tree shows everything under fail open", func(t *testing.T) {
		ev := permission.NewEvaluator()
		require.Equal(t, menu.Filter(menu.ConsoleRoutes(), nil), menu.Build(ev))
	})

	t.Run("user sees readable routes only", func(t *testing.T) {
		ev := permission.NewEvaluator()
		ev.SetRoles([]string{"ROLE_USER"})
		require.NoError(t, ev.LoadNodes([]*permission.Node{
			{
				ResourceKey: "ASSET_MGMT",
				Children: []*permission.Node{
					{ResourceKey: "/assets", Grants: &permission.Grants{CanRead: true}},
					{ResourceKey: "/asset-assignments", Grants: &permission.Grants{}},
				},
			},
			{ResourceKey: "/members"},
		}))

		got := menu.Build(ev)
		require.Equal(t, []string{menu.PathDashboard, menu.PathAssets}, paths(got))
		require.Equal(t, []string{menu.PathAssets}, paths(got[1].Children))
	})
}

func TestRequiredResource(t *testing.T) {
	routes := menu.ConsoleRoutes()

	key, ok := menu.RequiredResource(routes, menu.PathAssetDetail)
	require.True(t, ok)
	require.Equal(t, menu.PathAssets, key)

	key, ok = menu.RequiredResource(routes, menu.PathDashboard)
	require.True(t, ok)
	require.Empty(t, key)

	_, ok = menu.RequiredResource(routes, "/nowhere")
	require.False(t, ok)
}
