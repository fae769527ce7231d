package menu

// Console route paths.
const (
	PathDashboard          = "/dashboard"
	PathSystem             = "/system"
	PathMenus              = "/menus"
	PathRoles              = "/roles"
	PathCommonCodes        = "/common-codes"
	PathOrganization       = "/organization"
	PathDepartments        = "/departments"
	PathMembers            = "/members"
	PathAssets             = "/assets"
	PathAssetCategories    = "/assets/categories"
	PathAssetDetail        = "/assets/:id"
	PathAssetAssignments   = "/asset-assignments"
	PathLicenseGroup       = "/license-management"
	PathSoftwares          = "/softwares"
	PathLicenses           = "/licenses"
	PathLicenseDetail      = "/licenses/:id"
	PathLicenseAssignments = "/license-assignments"
	PathChangePassword     = "/change-password"
	PathLogin              = "/login"
)

// ConsoleRoutes returns a fresh copy of the console's route configuration.
func ConsoleRoutes() []Item {
	return []Item{
		{Path: PathDashboard, Label: "Dashboard", Icon: "dashboard", ShowInMenu: true},
		{
			Path: PathSystem, Label: "System", Icon: "setting", ShowInMenu: true,
			Children: []Item{
				{Path: PathMenus, Label: "Menus", RequiredResource: PathMenus, ShowInMenu: true},
				{Path: PathRoles, Label: "Roles", RequiredResource: PathRoles, ShowInMenu: true},
				{Path: PathCommonCodes, Label: "Common codes", RequiredResource: PathCommonCodes, ShowInMenu: true},
			},
		},
		{
			Path: PathOrganization, Label: "Organization", Icon: "team", ShowInMenu: true,
			Children: []Item{
				{Path: PathDepartments, Label: "Departments", RequiredResource: PathDepartments, ShowInMenu: true},
				{Path: PathMembers, Label: "Members", RequiredResource: PathMembers, ShowInMenu: true},
			},
		},
		{
			Path: PathAssets, Label: "Assets", Icon: "laptop", ShowInMenu: true,
			Children: []Item{
				{Path: PathAssetCategories, Label: "Asset categories", RequiredResource: PathAssetCategories, ShowInMenu: true},
				{Path: PathAssets, Label: "Asset list", RequiredResource: PathAssets, ShowInMenu: true},
				{Path: PathAssetDetail, Label: "Asset detail", RequiredResource: PathAssets},
				{Path: PathAssetAssignments, Label: "Asset assignments", RequiredResource: PathAssetAssignments, ShowInMenu: true},
			},
		},
		{
			Path: PathLicenseGroup, Label: "Licenses", Icon: "key", ShowInMenu: true,
			Children: []Item{
				{Path: PathSoftwares, Label: "Software", RequiredResource: PathSoftwares, ShowInMenu: true},
				{Path: PathLicenses, Label: "License list", RequiredResource: PathLicenses, ShowInMenu: true},
				{Path: PathLicenseDetail, Label: "License detail", RequiredResource: PathLicenses},
				{Path: PathLicenseAssignments, Label: "License assignments", RequiredResource: PathLicenseAssignments, ShowInMenu: true},
			},
		},
		{Path: PathChangePassword, Label: "Change password"},
	}
}
