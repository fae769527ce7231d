package redisrepo_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-asset-console/internal/config"
	apperrors "github.com/jrsteele09/go-asset-console/internal/errors"
	"github.com/jrsteele09/go-asset-console/token/refresh"
	"github.com/jrsteele09/go-asset-console/token/refresh/redisrepo"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	ctx  context.Context
	mr   *miniredis.Miniredis
	repo *redisrepo.Repo
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return &testFixture{ctx: context.Background(), mr: mr, repo: redisrepo.New(rdb, "")}
}

func token(memberID int64, value string, ttl time.Duration) *refresh.StoredRefreshToken {
	now := time.Now()
	return &refresh.StoredRefreshToken{Token: value, MemberID: memberID, Iat: now, Exp: now.Add(ttl)}
}

func TestUpsertAndGet(t *testing.T) {
	f := setupTestFixture(t)
	rt := token(5, "0123456789abcdef", time.Hour)
	require.NoError(t, f.repo.Upsert(f.ctx, rt))

	require.True(t, f.mr.Exists("refresh:token:0123456789abcdef"))
	members, err := f.mr.Members("refresh:member:5")
	require.NoError(t, err)
	require.Equal(t, []string{"0123456789abcdef"}, members)
	require.Greater(t, f.mr.TTL("refresh:member:5"), 59*time.Minute)

	got, err := f.repo.Get(f.ctx, rt.Token)
	require.NoError(t, err)
	require.Equal(t, int64(5), got.MemberID)
	require.WithinDuration(t, rt.Exp, got.Exp, time.Millisecond)

	_, err = f.repo.Get(f.ctx, "missing")
	require.ErrorIs(t, err, refresh.ErrNotFound)
}

func TestTokensExpireWithTTL(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.repo.Upsert(f.ctx, token(5, "short-lived-token", time.Minute)))

	f.mr.FastForward(2 * time.Minute)
	_, err := f.repo.Get(f.ctx, "short-lived-token")
	require.ErrorIs(t, err, refresh.ErrNotFound)

	require.Error(t, f.repo.Upsert(f.ctx, token(5, "already-gone", -time.Minute)))
}

func TestMemberIndexKeepsLongestTTL(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.repo.Upsert(f.ctx, token(5, "long-lived-token", 2*time.Hour)))
	require.NoError(t, f.repo.Upsert(f.ctx, token(5, "short-lived-token", time.Minute)))
	require.Greater(t, f.mr.TTL("refresh:member:5"), time.Hour)

	f.mr.FastForward(2 * time.Minute)
	list, err := f.repo.ListByMember(f.ctx, 5)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "long-lived-token", list[0].Token)
}

func TestDelete(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.repo.Upsert(f.ctx, token(5, "token-aaaaaaaa", time.Hour)))

	require.NoError(t, f.repo.Delete(f.ctx, "token-aaaaaaaa"))
	require.False(t, f.mr.Exists("refresh:token:token-aaaaaaaa"))
	require.False(t, f.mr.Exists("refresh:member:5"))
	require.NoError(t, f.repo.Delete(f.ctx, "token-aaaaaaaa"))
}

func TestConsume(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.repo.Upsert(f.ctx, token(5, "token-bbbbbbbb", time.Hour)))

	rt, err := f.repo.Consume(f.ctx, "token-bbbbbbbb")
	require.NoError(t, err)
	require.Equal(t, int64(5), rt.MemberID)

	_, err = f.repo.Consume(f.ctx, "token-bbbbbbbb")
	require.ErrorIs(t, err, refresh.ErrNotFound)
	_, err = f.repo.Get(f.ctx, "token-bbbbbbbb")
	require.ErrorIs(t, err, refresh.ErrNotFound)
}

func TestTokensSharingASuffixStayDistinct(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.repo.Upsert(f.ctx, token(5, "aaaaaaaa-deadbeef", time.Hour)))
	require.NoError(t, f.repo.Upsert(f.ctx, token(5, "bbbbbbbb-deadbeef", time.Hour)))

	list, err := f.repo.ListByMember(f.ctx, 5)
	require.NoError(t, err)
	require.Len(t, list, 2)

	n, err := f.repo.DeleteByMember(f.ctx, 5)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	_, err = f.repo.Get(f.ctx, "aaaaaaaa-deadbeef")
	require.ErrorIs(t, err, refresh.ErrNotFound)
	_, err = f.repo.Get(f.ctx, "bbbbbbbb-deadbeef")
	require.ErrorIs(t, err, refresh.ErrNotFound)
}

func TestDeleteByMember(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.repo.Upsert(f.ctx, token(5, "token-11111111", time.Hour)))
	require.NoError(t, f.repo.Upsert(f.ctx, token(5, "token-22222222", time.Hour)))
	require.NoError(t, f.repo.Upsert(f.ctx, token(6, "token-33333333", time.Hour)))

	list, err := f.repo.ListByMember(f.ctx, 5)
	require.NoError(t, err)
	require.Len(t, list, 2)

	n, err := f.repo.DeleteByMember(f.ctx, 5)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	_, err = f.repo.Get(f.ctx, "token-11111111")
	require.ErrorIs(t, err, refresh.ErrNotFound)
	_, err = f.repo.Get(f.ctx, "token-33333333")
	require.NoError(t, err)

	n, err = f.repo.DeleteByMember(f.ctx, 5)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestRotateThroughManager(t *testing.T) {
	f := setupTestFixture(t)
	manager := refresh.NewManager(f.repo, config.Token{})

	rt, err := manager.Create(f.ctx, 9)
	require.NoError(t, err)
	next, err := manager.Rotate(f.ctx, rt.Token)
	require.NoError(t, err)

	list, err := f.repo.ListByMember(f.ctx, 9)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, next.Token, list[0].Token)
}

func TestConcurrentRotateThroughManager(t *testing.T) {
	const n = 10
	f := setupTestFixture(t)
	manager := refresh.NewManager(f.repo, config.Token{})

	rt, err := manager.Create(f.ctx, 9)
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.Rotate(f.ctx, rt.Token)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, apperrors.ErrInvalidRefreshToken):
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), succeeded.Load())
	require.Equal(t, int32(n-1), rejected.Load())
	list, err := f.repo.ListByMember(f.ctx, 9)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotEqual(t, rt.Token, list[0].Token)
}
