package jwt_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-asset-console/internal/config"
	apperrors "github.com/jrsteele09/go-asset-console/internal/errors"
	"github.com/jrsteele09/go-asset-console/members"
	"github.com/jrsteele09/go-asset-console/token/jwt"
	"github.com/jrsteele09/go-asset-console/token/keys"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	signer    keys.Signer
	creator   *jwt.Creator
	revoked   *jwt.InMemoryRevokedTokenCache
	inspector *jwt.Inspector
	member    *members.Member
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	cfg := config.Token{}
	signer := keys.NewHMACSigner("test-secret")
	revoked := jwt.NewInMemoryRevokedTokenCache()
	return &testFixture{
		signer:    signer,
		creator:   jwt.NewCreator(cfg, signer),
		revoked:   revoked,
		inspector: jwt.NewInspector(signer, cfg.GetAudience(), revoked),
		member:    &members.Member{ID: 7, LoginID: "jdoe", Roles: []string{members.RoleUser}},
	}
}

func setNow(t *testing.T, now time.Time) {
	t.Helper()
	prev := jwt.NowTimeFunc
	jwt.NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { jwt.NowTimeFunc = prev })
}

func TestCreateAndIntrospect(t *testing.T) {
	f := setupTestFixture(t)
	raw, exp, err := f.creator.CreateAccessToken(f.member)
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)
	require.Equal(t, int64(3600), f.creator.ExpiresIn())

	info, err := f.inspector.Introspect(raw)
	require.NoError(t, err)
	require.True(t, info.Active)
	require.Equal(t, "jdoe", *info.Sub)
	require.Equal(t, int64(7), info.MemberID)
	require.Equal(t, []string{members.RoleUser}, info.Roles)
	require.Equal(t, "asset-console", *info.Aud)
	require.Equal(t, exp.Unix(), *info.Exp)
	require.NotEmpty(t, info.JTI)
}

func TestIntrospectRejects(t *testing.T) {
	t.Run("empty token", func(t *testing.T) {
		f := setupTestFixture(t)
		info, err := f.inspector.Introspect("  ")
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
		require.False(t, info.Active)
	})

	t.Run("expired token", func(t *testing.T) {
		f := setupTestFixture(t)
		setNow(t, time.Now().Add(-2*time.Hour))
		raw, _, err := f.creator.CreateAccessToken(f.member)
		require.NoError(t, err)
		jwt.NowTimeFunc = time.Now

		_, err = f.inspector.Introspect(raw)
		require.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("foreign signature", func(t *testing.T) {
		f := setupTestFixture(t)
		other := jwt.NewCreator(config.Token{}, keys.NewHMACSigner("other-secret"))
		raw, _, err := other.CreateAccessToken(f.member)
		require.NoError(t, err)

		_, err = f.inspector.Introspect(raw)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		f := setupTestFixture(t)
		raw, _, err := f.creator.CreateAccessToken(f.member)
		require.NoError(t, err)

		inspector := jwt.NewInspector(f.signer, "another-app", nil)
		_, err = inspector.Introspect(raw)
		require.ErrorIs(t, err, apperrors.ErrInvalidToken)
	})

	t.Run("revoked token is inactive", func(t *testing.T) {
		f := setupTestFixture(t)
		raw, _, err := f.creator.CreateAccessToken(f.member)
		require.NoError(t, err)

		jti, exp, err := f.inspector.ParseAndExtractJTI(raw)
		require.NoError(t, err)
		require.NoError(t, f.revoked.Add(jti, exp))

		info, err := f.inspector.Introspect(raw)
		require.NoError(t, err)
		require.False(t, info.Active)
	})
}

func TestRSASignedTokens(t *testing.T) {
	kp, err := keys.GenerateRSAKeyPair("", 2048)
	require.NoError(t, err)
	signer := keys.NewKeyPairSigner(kp)
	creator := jwt.NewCreator(config.Token{}, signer)

	raw, _, err := creator.CreateAccessToken(&members.Member{ID: 1, LoginID: "admin", Roles: []string{members.RoleAdmin}})
	require.NoError(t, err)

	info, err := jwt.NewInspector(signer, "", nil).Introspect(raw)
	require.NoError(t, err)
	require.True(t, info.Active)
	require.Equal(t, []string{members.RoleAdmin}, info.Roles)
}

func TestRevokedTokenCacheCleanup(t *testing.T) {
	now := time.Now()
	setNow(t, now)

	cache := jwt.NewInMemoryRevokedTokenCache()
	require.NoError(t, cache.Add("old", now.Add(-time.Minute)))
	require.NoError(t, cache.Add("live", now.Add(time.Hour)))

	cache.Cleanup()
	require.Equal(t, 1, cache.Len())
	require.False(t, cache.IsRevoked("old"))
	require.True(t, cache.IsRevoked("live"))
}
