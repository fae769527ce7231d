package refresh_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-asset-console/internal/config"
	apperrors "github.com/jrsteele09/go-asset-console/internal/errors"
	"github.com/jrsteele09/go-asset-console/token/refresh"
	refreshrepofake "github.com/jrsteele09/go-asset-console/token/refresh/repofake"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	ctx     context.Context
	repo    *refreshrepofake.FakeRefreshTokenRepo
	manager *refresh.Manager
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	repo := refreshrepofake.NewFakeRefreshTokenRepo()
	return &testFixture{
		ctx:     context.Background(),
		repo:    repo,
		manager: refresh.NewManager(repo, config.Token{}),
	}
}

func TestCreate(t *testing.T) {
	f := setupTestFixture(t)
	first, err := f.manager.Create(f.ctx, 1)
	require.NoError(t, err)
	require.Len(t, first.Token, 64)
	require.Equal(t, 7*24*time.Hour, first.Exp.Sub(first.Iat))

	second, err := f.manager.Create(f.ctx, 1)
	require.NoError(t, err)
	require.NotEqual(t, first.Token, second.Token)

	list, err := f.repo.ListByMember(f.ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestValidate(t *testing.T) {
	t.Run("unknown token", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.manager.Validate(f.ctx, "nope")
		require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)

		_, err = f.manager.Validate(f.ctx, "")
		require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
	})

	t.Run("expired token is removed", func(t *testing.T) {
		f := setupTestFixture(t)
		rt, err := f.manager.Create(f.ctx, 1)
		require.NoError(t, err)

		refresh.NowTimeFunc = func() time.Time { return rt.Exp.Add(time.Second) }
		t.Cleanup(func() { refresh.NowTimeFunc = time.Now })

		_, err = f.manager.Validate(f.ctx, rt.Token)
		require.ErrorIs(t, err, apperrors.ErrRefreshTokenExpired)
		_, err = f.repo.Get(f.ctx, rt.Token)
		require.ErrorIs(t, err, refresh.ErrNotFound)
	})
}

func TestRotate(t *testing.T) {
	f := setupTestFixture(t)
	rt, err := f.manager.Create(f.ctx, 3)
	require.NoError(t, err)

	next, err := f.manager.Rotate(f.ctx, rt.Token)
	require.NoError(t, err)
	require.Equal(t, int64(3), next.MemberID)
	require.NotEqual(t, rt.Token, next.Token)

	_, err = f.manager.Rotate(f.ctx, rt.Token)
	require.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)

	t.Run("expired token is consumed without a replacement", func(t *testing.T) {
		f := setupTestFixture(t)
		rt, err := f.manager.Create(f.ctx, 3)
		require.NoError(t, err)

		refresh.NowTimeFunc = func() time.Time { return rt.Exp.Add(time.Second) }
		t.Cleanup(func() { refresh.NowTimeFunc = time.Now })

		_, err = f.manager.Rotate(f.ctx, rt.Token)
		require.ErrorIs(t, err, apperrors.ErrRefreshTokenExpired)
		list, err := f.repo.ListByMember(f.ctx, 3)
		require.NoError(t, err)
		require.Empty(t, list)
	})
}

func TestConcurrentRotate(t *testing.T) {
	const n = 16
	f := setupTestFixture(t)
	rt, err := f.manager.Create(f.ctx, 4)
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	start := make(chan struct{})
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.manager.Rotate(f.ctx, rt.Token)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, apperrors.ErrInvalidRefreshToken):
				rejected.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Equal(t, int32(1), succeeded.Load())
	require.Equal(t, int32(n-1), rejected.Load())
	list, err := f.repo.ListByMember(f.ctx, 4)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotEqual(t, rt.Token, list[0].Token)
}

func TestRevokeAll(t *testing.T) {
	f := setupTestFixture(t)
	for range 3 {
		_, err := f.manager.Create(f.ctx, 1)
		require.NoError(t, err)
	}
	other, err := f.manager.Create(f.ctx, 2)
	require.NoError(t, err)

	n, err := f.manager.RevokeAll(f.ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	_, err = f.manager.Validate(f.ctx, other.Token)
	require.NoError(t, err)
}
