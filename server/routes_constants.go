package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteAPIPrefix = "/api/v1"

	// Auth Routes
	RouteAuthLogin    = RouteAPIPrefix + "/auth/login"
	RouteAuthRefresh  = RouteAPIPrefix + "/auth/refresh"
	RouteAuthLogout   = RouteAPIPrefix + "/auth/logout"
	RouteAuthMe       = RouteAPIPrefix + "/auth/me"
	RouteAuthPassword = RouteAPIPrefix + "/auth/password"

	// Menu and permission routes
	RouteMenus     = RouteAPIPrefix + "/menus"
	RouteMyMenus   = RouteAPIPrefix + "/menus/my"
	RouteRoles     = RouteAPIPrefix + "/roles"
	RouteRoleMenus = RouteAPIPrefix + "/roles/{roleId}/menus"

	// Well known routes
	RouteWellKnownJWKS = "/.well-known/jwks.json"
	RouteHealth        = "/health"
)
