package auth_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jrsteele09/go-asset-console/apimodel"
	"github.com/jrsteele09/go-asset-console/auth"
	"github.com/jrsteele09/go-asset-console/internal/config"
	apperrors "github.com/jrsteele09/go-asset-console/internal/errors"
	"github.com/jrsteele09/go-asset-console/members"
	memberrepofake "github.com/jrsteele09/go-asset-console/members/repofake"
	"github.com/jrsteele09/go-asset-console/token/jwt"
	"github.com/jrsteele09/go-asset-console/token/keys"
	"github.com/jrsteele09/go-asset-console/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-asset-console/token/refresh/repofake"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

const (
	testLoginID  = "jdoe"
	testPassword = "Password123"
)

// testFixture holds all test dependencies
type testFixture struct {
	ctx         context.Context
	memberRepo  members.Repo
	refreshRepo *refreshrepofake.FakeRefreshTokenRepo
	revoked     *jwt.InMemoryRevokedTokenCache
	service     *auth.AuthService
	member      *members.Member
}

// setupTestFixture creates a new test fixture with all dependencies and one
// active member
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	cfg := config.Token{}
	signer := keys.NewHMACSigner("test-secret")
	mr := memberrepofake.NewFakeMemberRepo()
	rr := refreshrepofake.NewFakeRefreshTokenRepo()
	revoked := jwt.NewInMemoryRevokedTokenCache()

	service, err := auth.NewAuthService(
		auth.Repos{Members: mr},
		auth.Tokens{
			Creator:   jwt.NewCreator(cfg, signer),
			Inspector: jwt.NewInspector(signer, cfg.GetAudience(), revoked),
			Refresh:   refresh.NewManager(rr, cfg),
			Revoked:   revoked,
		},
	)
	require.NoError(t, err)

	hash, err := members.HashPassword(testPassword)
	require.NoError(t, err)
	member := &members.Member{
		LoginID:           testLoginID,
		Name:              "John Doe",
		DeptID:            3,
		Position:          "Engineer",
		PasswordHash:      hash,
		Roles:             []string{members.RoleUser},
		IsInitialPassword: true,
		Active:            true,
	}
	require.NoError(t, mr.Upsert(member))

	return &testFixture{
		ctx:         context.Background(),
		memberRepo:  mr,
		refreshRepo: rr,
		revoked:     revoked,
		service:     service,
		member:      member,
	}
}

func (f *testFixture) login(t *testing.T) *apimodel.TokenResponse {
	t.Helper()
	tr, err := f.service.Login(f.ctx, testLoginID, testPassword)
	require.NoError(t, err)
	return tr
}

func TestNewAuthServiceRequiresDependencies(t *testing.T) {
	_, err := auth.NewAuthService(auth.Repos{}, auth.Tokens{})
	require.Error(t, err)

	_, err = auth.NewAuthService(auth.Repos{Members: memberrepofake.NewFakeMemberRepo()}, auth.Tokens{})
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	t.Run("issues a token pair and resets failures", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.Login(f.ctx, testLoginID, "wrong")
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

		tr := f.login(t)
		require.NotEmpty(t, tr.AccessToken)
		require.NotEmpty(t, tr.RefreshToken)
		require.Equal(t, "Bearer", tr.TokenType)
		require.Equal(t, int64(3600), tr.ExpiresIn)

		m, err := f.memberRepo.GetByLoginID(testLoginID)
		require.NoError(t, err)
		require.Zero(t, m.LoginFailCount)
		require.False(t, m.LastLogin.IsZero())
	})

	t.Run("unknown login id", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.Login(f.ctx, "nobody", testPassword)
		require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("missing credentials", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.Login(f.ctx, "  ", testPassword)
		require.ErrorIs(t, err, apperrors.ErrInvalidRequest)
	})

	t.Run("five failures lock the account", func(t *testing.T) {
		f := setupTestFixture(t)
		for range 5 {
			_, err := f.service.Login(f.ctx, testLoginID, "wrong")
			require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		}
		_, err := f.service.Login(f.ctx, testLoginID, testPassword)
		require.ErrorIs(t, err, apperrors.ErrAccountLocked)
	})

	t.Run("inactive member", func(t *testing.T) {
		f := setupTestFixture(t)
		f.member.Active = false
		require.NoError(t, f.memberRepo.Upsert(f.member))
		_, err := f.service.Login(f.ctx, testLoginID, testPassword)
		require.ErrorIs(t, err, apperrors.ErrAccountInactive)
	})
}

func TestRefresh(t *testing.T) {
	t.Run("rotates the refresh token", func(t *testing.T) {
		f := setupTestFixture(t)
		tr := f.login(t)

		next, err := f.service.Refresh(f.ctx, tr.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, tr.RefreshToken, next.RefreshToken)
		require.NotEmpty(t, next.AccessToken)

		_, err = f.service.Refresh(f.ctx, tr.RefreshToken)
		require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
	})

	t.Run("locked member cannot refresh", func(t *testing.T) {
		f := setupTestFixture(t)
		tr := f.login(t)

		m, err := f.memberRepo.GetByLoginID(testLoginID)
		require.NoError(t, err)
		m.Locked = true
		require.NoError(t, f.memberRepo.Upsert(m))

		_, err = f.service.Refresh(f.ctx, tr.RefreshToken)
		require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)

		list, err := f.refreshRepo.ListByMember(f.ctx, m.ID)
		require.NoError(t, err)
		require.Empty(t, list)
	})

	t.Run("failed cleanup of an invalid member's token is logged", func(t *testing.T) {
		f := setupTestFixture(t)
		repo := deleteFailingRepo{FakeRefreshTokenRepo: f.refreshRepo}
		cfg := config.Token{}
		signer := keys.NewHMACSigner("test-secret")
		service, err := auth.NewAuthService(
			auth.Repos{Members: f.memberRepo},
			auth.Tokens{
				Creator:   jwt.NewCreator(cfg, signer),
				Inspector: jwt.NewInspector(signer, cfg.GetAudience(), f.revoked),
				Refresh:   refresh.NewManager(repo, cfg),
				Revoked:   f.revoked,
			},
		)
		require.NoError(t, err)
		tr := f.login(t)

		m, err := f.memberRepo.GetByLoginID(testLoginID)
		require.NoError(t, err)
		m.Active = false
		require.NoError(t, f.memberRepo.Upsert(m))

		var buf bytes.Buffer
		prev := log.Logger
		log.Logger = zerolog.New(&buf)
		t.Cleanup(func() { log.Logger = prev })

		_, err = service.Refresh(f.ctx, tr.RefreshToken)
		require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
		require.Contains(t, buf.String(), `"level":"warn"`)
		require.Contains(t, buf.String(), "failed to delete refresh token of invalid member")
		require.Contains(t, buf.String(), "store unavailable")
	})
}

// deleteFailingRepo fails every Delete.
type deleteFailingRepo struct {
	*refreshrepofake.FakeRefreshTokenRepo
}

func (deleteFailingRepo) Delete(context.Context, string) error {
	return errors.New("store unavailable")
}

func TestAuthenticateAndLogout(t *testing.T) {
	f := setupTestFixture(t)
	tr := f.login(t)
	f.login(t)

	principal, err := f.service.Authenticate(tr.AccessToken)
	require.NoError(t, err)
	require.Equal(t, f.member.ID, principal.MemberID)
	require.Equal(t, testLoginID, principal.LoginID)
	require.False(t, principal.IsAdmin())

	require.NoError(t, f.service.Logout(f.ctx, principal, tr.AccessToken))

	list, err := f.refreshRepo.ListByMember(f.ctx, f.member.ID)
	require.NoError(t, err)
	require.Empty(t, list)
	require.True(t, f.revoked.IsRevoked(principal.JTI))

	_, err = f.service.Authenticate(tr.AccessToken)
	require.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	_, err = f.service.Authenticate("garbage")
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestMe(t *testing.T) {
	f := setupTestFixture(t)
	me, err := f.service.Me(f.member.ID)
	require.NoError(t, err)
	require.Equal(t, &apimodel.MeResponse{
		MemberID:          f.member.ID,
		LoginID:           testLoginID,
		MemberName:        "John Doe",
		DeptID:            3,
		Position:          "Engineer",
		IsInitialPassword: true,
		Roles:             []string{members.RoleUser},
	}, me)

	_, err = f.service.Me(404)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestChangePassword(t *testing.T) {
	tests := []struct {
		name    string
		req     apimodel.ChangePasswordRequest
		wantErr error
	}{
		{"wrong current password", apimodel.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "NewPassword1"}, apperrors.ErrInvalidRequest},
		{"same password", apimodel.ChangePasswordRequest{CurrentPassword: testPassword, NewPassword: testPassword}, apperrors.ErrWeakPassword},
		{"weak password", apimodel.ChangePasswordRequest{CurrentPassword: testPassword, NewPassword: "short"}, apperrors.ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t)
			err := f.service.ChangePassword(f.member.ID, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("success clears the initial password flag", func(t *testing.T) {
		now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		f := setupTestFixture(t)
		svc, err := auth.NewAuthService(
			auth.Repos{Members: f.memberRepo},
			auth.Tokens{
				Creator:   jwt.NewCreator(config.Token{}, keys.NewHMACSigner("x")),
				Inspector: jwt.NewInspector(keys.NewHMACSigner("x"), "", nil),
				Refresh:   refresh.NewManager(f.refreshRepo, config.Token{}),
				Revoked:   f.revoked,
			},
			auth.WithNowTime(func() time.Time { return now }),
		)
		require.NoError(t, err)

		require.NoError(t, svc.ChangePassword(f.member.ID, apimodel.ChangePasswordRequest{
			CurrentPassword: testPassword,
			NewPassword:     "NewPassword1",
		}))

		m, err := f.memberRepo.GetByID(f.member.ID)
		require.NoError(t, err)
		require.False(t, m.IsInitialPassword)
		require.Equal(t, now, m.PasswordChangedAt)
		require.True(t, members.CheckPasswordHash("NewPassword1", m.PasswordHash))
	})
}
