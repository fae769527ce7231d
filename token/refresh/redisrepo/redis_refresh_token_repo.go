// Package redisrepo stores refresh tokens in Redis. Each token record lives
// under refresh:token:<token> with the token's TTL. The set
// refresh:member:<id> indexes a member's tokens for logout and listing; it
// lives as long as the member's longest-lived token and may briefly name
// tokens that already expired.
package redisrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jrsteele09/go-asset-console/token/refresh"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "refresh"

// upsertScript writes the record and indexes it, extending the member set's
// TTL but never shortening it.
const upsertScript = `
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
redis.call("SADD", KEYS[2], ARGV[3])
local ttl = tonumber(ARGV[2])
if redis.call("PTTL", KEYS[2]) < ttl then
  redis.call("PEXPIRE", KEYS[2], ttl)
end
return 1
`

var upsertLua = redis.NewScript(upsertScript)

var _ refresh.Repo = (*Repo)(nil)

type Repo struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

// New creates a Redis-backed refresh token repo.
func New(client redis.Cmdable, prefix string) *Repo {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Repo{client: client, prefix: prefix, now: time.Now}
}

func (r *Repo) tokenKey(token string) string {
	return fmt.Sprintf("%s:token:%s", r.prefix, token)
}

func (r *Repo) memberKey(memberID int64) string {
	return fmt.Sprintf("%s:member:%d", r.prefix, memberID)
}

func (r *Repo) Upsert(ctx context.Context, rt *refresh.StoredRefreshToken) error {
	ttl := rt.Exp.Sub(r.now())
	if ttl < time.Millisecond {
		return fmt.Errorf("refresh token already expired")
	}

	b, err := json.Marshal(rt)
	if err != nil {
		return fmt.Errorf("failed to marshal refresh token: %w", err)
	}

	keys := []string{r.tokenKey(rt.Token), r.memberKey(rt.MemberID)}
	if err := upsertLua.Run(ctx, r.client, keys, b, ttl.Milliseconds(), rt.Token).Err(); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, token string) (*refresh.StoredRefreshToken, error) {
	val, err := r.client.Get(ctx, r.tokenKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, refresh.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return decode(val)
}

// Consume takes the record with GETDEL so only one caller sees it. Dropping
// the index entry afterwards is housekeeping.
func (r *Repo) Consume(ctx context.Context, token string) (*refresh.StoredRefreshToken, error) {
	val, err := r.client.GetDel(ctx, r.tokenKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, refresh.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}
	rt, err := decode(val)
	if err != nil {
		return nil, err
	}
	if err := r.client.SRem(ctx, r.memberKey(rt.MemberID), token).Err(); err != nil {
		return nil, fmt.Errorf("failed to unindex refresh token: %w", err)
	}
	return rt, nil
}

func (r *Repo) Delete(ctx context.Context, token string) error {
	_, err := r.Consume(ctx, token)
	if errors.Is(err, refresh.ErrNotFound) {
		return nil
	}
	return err
}

func (r *Repo) DeleteByMember(ctx context.Context, memberID int64) (int, error) {
	tokens, err := r.client.SMembers(ctx, r.memberKey(memberID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to read member tokens: %w", err)
	}

	var deleted *redis.IntCmd
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(tokens) > 0 {
			keys := make([]string, 0, len(tokens))
			for _, token := range tokens {
				keys = append(keys, r.tokenKey(token))
			}
			deleted = pipe.Del(ctx, keys...)
		}
		pipe.Del(ctx, r.memberKey(memberID))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete member refresh tokens: %w", err)
	}
	if deleted == nil {
		return 0, nil
	}
	return int(deleted.Val()), nil
}

func (r *Repo) ListByMember(ctx context.Context, memberID int64) ([]*refresh.StoredRefreshToken, error) {
	tokens, err := r.client.SMembers(ctx, r.memberKey(memberID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read member tokens: %w", err)
	}

	out := make([]*refresh.StoredRefreshToken, 0, len(tokens))
	for _, token := range tokens {
		rt, err := r.Get(ctx, token)
		if errors.Is(err, refresh.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Iat.Before(out[j].Iat)
	})
	return out, nil
}

func decode(val []byte) (*refresh.StoredRefreshToken, error) {
	var rt refresh.StoredRefreshToken
	if err := json.Unmarshal(val, &rt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal refresh token: %w", err)
	}
	return &rt, nil
}
