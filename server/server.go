package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-asset-console/auth"
	"github.com/jrsteele09/go-asset-console/internal/config"
	"github.com/jrsteele09/go-asset-console/members"
	"github.com/jrsteele09/go-asset-console/menus"
	"github.com/jrsteele09/go-asset-console/token/jwt"
	"github.com/jrsteele09/go-asset-console/token/keys"
	"github.com/jrsteele09/go-asset-console/token/refresh"
)

// Repos holds the storage the server runs on.
type Repos struct {
	Members       members.Repo
	Menus         menus.Repo
	RefreshTokens refresh.Repo
}

type Server struct {
	env     string // Environment (e.g., "DEV", "PROD")
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	repos   Repos
	signer  keys.Signer
	revoked *jwt.InMemoryRevokedTokenCache
	auth    *auth.AuthService
	menus   *menus.Service

	// Password generated for the administrator at bootstrap, empty when the
	// administrator already existed or ADMIN_PASSWORD was set.
	generatedAdminPassword string
}

func New(cfg config.Config, repos Repos, signer keys.Signer) (*Server, error) {
	if repos.Members == nil || repos.Menus == nil || repos.RefreshTokens == nil {
		return nil, fmt.Errorf("[Server New] members, menus and refresh token repos are required")
	}
	if signer == nil {
		return nil, fmt.Errorf("[Server New] signer is required")
	}

	revoked := jwt.NewInMemoryRevokedTokenCache()
	authService, err := auth.NewAuthService(
		auth.Repos{Members: repos.Members},
		auth.Tokens{
			Creator:   jwt.NewCreator(cfg, signer),
			Inspector: jwt.NewInspector(signer, cfg.GetAudience(), revoked),
			Refresh:   refresh.NewManager(repos.RefreshTokens, cfg),
			Revoked:   revoked,
		},
		auth.WithMaxLoginFailures(cfg.GetMaxLoginFailures()),
	)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create auth service: %w", err)
	}

	menuService, err := menus.NewService(repos.Menus)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create menu service: %w", err)
	}

	s := &Server{
		env:     cfg.GetEnv(),
		mux:     http.NewServeMux(),
		config:  cfg,
		repos:   repos,
		signer:  signer,
		revoked: revoked,
		auth:    authService,
		menus:   menuService,
	}

	// Bootstrap: ensure the menu tree, roles and administrator exist
	if s.generatedAdminPassword, err = s.InitialiseSystem(context.Background()); err != nil {
		return nil, fmt.Errorf("[Server New] Failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// GeneratedAdminPassword returns the password created for the administrator
// at bootstrap, if one was generated.
func (s *Server) GeneratedAdminPassword() string {
	return s.generatedAdminPassword
}

// RunBackground drops expired entries from the revocation cache until ctx is
// done.
func (s *Server) RunBackground(ctx context.Context) {
	jwt.RunCleanup(ctx, s.revoked, s.config.GetRevocationCleanupInterval())
}
