package refreshrepofake

import (
	"context"
	"sort"
	"sync"

	"github.com/jrsteele09/go-asset-console/token/refresh"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

type FakeRefreshTokenRepo struct {
	tokens map[string]refresh.StoredRefreshToken
	lock   sync.RWMutex
}

func NewFakeRefreshTokenRepo() *FakeRefreshTokenRepo {
	return &FakeRefreshTokenRepo{
		tokens: make(map[string]refresh.StoredRefreshToken),
	}
}

func (tr *FakeRefreshTokenRepo) Upsert(_ context.Context, refreshToken *refresh.StoredRefreshToken) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	tr.tokens[refreshToken.Token] = *refreshToken
	return nil
}

func (tr *FakeRefreshTokenRepo) Get(_ context.Context, token string) (*refresh.StoredRefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	rt, ok := tr.tokens[token]
	if !ok {
		return nil, refresh.ErrNotFound
	}
	return &rt, nil
}

func (tr *FakeRefreshTokenRepo) Delete(_ context.Context, token string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	delete(tr.tokens, token)
	return nil
}

func (tr *FakeRefreshTokenRepo) Consume(_ context.Context, token string) (*refresh.StoredRefreshToken, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	rt, ok := tr.tokens[token]
	if !ok {
		return nil, refresh.ErrNotFound
	}
	delete(tr.tokens, token)
	return &rt, nil
}

func (tr *FakeRefreshTokenRepo) DeleteByMember(_ context.Context, memberID int64) (int, error) {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	n := 0
	for token, rt := range tr.tokens {
		if rt.MemberID == memberID {
			delete(tr.tokens, token)
			n++
		}
	}
	return n, nil
}

func (tr *FakeRefreshTokenRepo) ListByMember(_ context.Context, memberID int64) ([]*refresh.StoredRefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	tokens := make([]*refresh.StoredRefreshToken, 0)
	for _, rt := range tr.tokens {
		if rt.MemberID == memberID {
			tokens = append(tokens, &rt)
		}
	}

	sort.Slice(tokens, func(i, j int) bool {
		return tokens[i].Iat.Before(tokens[j].Iat)
	})
	return tokens, nil
}
