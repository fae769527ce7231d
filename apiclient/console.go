package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jrsteele09/go-asset-console/apimodel"
	"github.com/jrsteele09/go-asset-console/permission"
	"github.com/jrsteele09/go-asset-console/session"
	"golang.org/x/sync/errgroup"
)

// Paths of the console API, relative to the base URL.
const (
	PathLogin          = "/auth/login"
	PathRefresh        = "/auth/refresh"
	PathLogout         = "/auth/logout"
	PathMe             = "/auth/me"
	PathChangePassword = "/auth/password"
	PathMenus          = "/menus"
	PathMyMenus        = "/menus/my"
	PathRoles          = "/roles"
)

// doJSON sends body through the coordinator and decodes the envelope's data
// into T.
func doJSON[T any](ctx context.Context, c *Coordinator, method, path string, body any) (T, error) {
	var zero T
	req, err := c.NewRequest(ctx, method, path, body)
	if err != nil {
		return zero, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()

	var envelope apimodel.Response[T]
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil && err != io.EOF {
		return zero, fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return envelope.Data, nil
}

// GetRaw fetches path and returns the envelope's raw data.
func (c *Coordinator) GetRaw(ctx context.Context, path string) (json.RawMessage, error) {
	return doJSON[json.RawMessage](ctx, c, http.MethodGet, path, nil)
}

// refresh exchanges refreshToken for a new pair. It bypasses Do so a failing
// refresh can never re-enter the refresh protocol, and it outlives the
// cancellation of the request that triggered it.
func (c *Coordinator) refresh(ctx context.Context, refreshToken string) (*apimodel.TokenResponse, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.refreshTimeout)
	defer cancel()

	data, err := json.Marshal(apimodel.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL.String()+PathRefresh, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.transport.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		apiErr := c.readError(req, resp)
		return nil, apiErr
	}

	var envelope apimodel.Response[apimodel.TokenResponse]
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if envelope.Data.AccessToken == "" {
		return nil, fmt.Errorf("refresh response carried no access token")
	}
	return &envelope.Data, nil
}

// Login exchanges credentials for a token pair, then loads the actor. The
// session is persisted after each step.
func (c *Coordinator) Login(ctx context.Context, loginID, password string) (*session.Actor, error) {
	tokens, err := doJSON[apimodel.TokenResponse](ctx, c, http.MethodPost, PathLogin, apimodel.LoginRequest{
		LoginID:  loginID,
		Password: password,
	})
	if err != nil {
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("login response carried no access token")
	}

	c.mu.Lock()
	c.sess = &session.Session{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		Expiry:       c.expiryFor(tokens.ExpiresIn),
	}
	snapshot := c.sess.Clone()
	c.mu.Unlock()
	c.persist(snapshot)

	return c.Me(ctx)
}

// Me fetches the actor snapshot and stores it in the session.
func (c *Coordinator) Me(ctx context.Context) (*session.Actor, error) {
	me, err := doJSON[apimodel.MeResponse](ctx, c, http.MethodGet, PathMe, nil)
	if err != nil {
		return nil, err
	}
	actor := &session.Actor{
		ID:                me.MemberID,
		LoginID:           me.LoginID,
		DisplayName:       me.MemberName,
		DeptID:            me.DeptID,
		Position:          me.Position,
		Roles:             me.Roles,
		IsInitialPassword: me.IsInitialPassword,
	}

	c.mu.Lock()
	if !c.sess.IsAuthenticated() {
		c.mu.Unlock()
		return actor, nil
	}
	c.sess.Actor = actor
	snapshot := c.sess.Clone()
	c.mu.Unlock()
	c.persist(snapshot)
	return actor, nil
}

// Logout tells the server to drop the session's refresh tokens and clears
// the local session whatever the outcome.
func (c *Coordinator) Logout(ctx context.Context) error {
	s := c.Session()
	if !s.IsAuthenticated() {
		c.clearSession()
		return nil
	}
	_, err := doJSON[any](ctx, c, http.MethodPost, PathLogout, apimodel.LogoutRequest{RefreshToken: s.RefreshToken})
	c.clearSession()
	return err
}

// ChangePassword updates the actor's password and clears the initial
// password flag.
func (c *Coordinator) ChangePassword(ctx context.Context, current, next string) error {
	if _, err := doJSON[any](ctx, c, http.MethodPut, PathChangePassword, apimodel.ChangePasswordRequest{
		CurrentPassword: current,
		NewPassword:     next,
	}); err != nil {
		return err
	}
	c.mu.Lock()
	if c.sess.Actor == nil {
		c.mu.Unlock()
		return nil
	}
	c.sess.Actor.IsInitialPassword = false
	snapshot := c.sess.Clone()
	c.mu.Unlock()
	c.persist(snapshot)
	return nil
}

// PermissionTree fetches the actor's menu permission tree.
func (c *Coordinator) PermissionTree(ctx context.Context) (*permission.Tree, error) {
	menus, err := doJSON[[]*apimodel.MenuNode](ctx, c, http.MethodGet, PathMyMenus, nil)
	if err != nil {
		return nil, err
	}
	tree, err := permission.NewTree(ToPermissionNodes(menus))
	if err != nil {
		return nil, fmt.Errorf("invalid permission tree: %w", err)
	}
	return tree, nil
}

// Roles lists the console roles.
func (c *Coordinator) Roles(ctx context.Context) ([]apimodel.RoleResponse, error) {
	return doJSON[[]apimodel.RoleResponse](ctx, c, http.MethodGet, PathRoles, nil)
}

// RoleMenus lists a role's per-menu grants.
func (c *Coordinator) RoleMenus(ctx context.Context, roleID int64) ([]apimodel.RoleMenuPermission, error) {
	return doJSON[[]apimodel.RoleMenuPermission](ctx, c, http.MethodGet, fmt.Sprintf("%s/%d/menus", PathRoles, roleID), nil)
}

// UpdateRoleMenus replaces a role's per-menu grants.
func (c *Coordinator) UpdateRoleMenus(ctx context.Context, roleID int64, grants []apimodel.RoleMenuPermission) error {
	_, err := doJSON[any](ctx, c, http.MethodPut, fmt.Sprintf("%s/%d/menus", PathRoles, roleID), apimodel.RoleMenuUpdateRequest{
		MenuPermissions: grants,
	})
	return err
}

// Bootstrap loads the actor and the permission tree concurrently and feeds
// both into ev.
func (c *Coordinator) Bootstrap(ctx context.Context, ev *permission.Evaluator) (*session.Actor, error) {
	var (
		actor *session.Actor
		tree  *permission.Tree
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		actor, err = c.Me(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tree, err = c.PermissionTree(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	ev.SetRoles(actor.Roles)
	ev.Load(tree)
	return actor, nil
}

// ToPermissionNodes converts menu nodes to permission nodes. A menu is keyed
// by its URL, or by its code when it has none.
func ToPermissionNodes(menus []*apimodel.MenuNode) []*permission.Node {
	nodes := make([]*permission.Node, 0, len(menus))
	for _, m := range menus {
		if m == nil {
			continue
		}
		key := m.MenuURL
		if key == "" {
			key = m.MenuCode
		}
		n := &permission.Node{
			ResourceKey: key,
			Children:    ToPermissionNodes(m.Children),
		}
		if m.Permissions != nil {
			n.Grants = &permission.Grants{
				CanRead:   m.Permissions.CanRead,
				CanCreate: m.Permissions.CanCreate,
				CanUpdate: m.Permissions.CanUpdate,
				CanDelete: m.Permissions.CanDelete,
			}
		}
		nodes = append(nodes, n)
	}
	return nodes
}
