package refresh

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-asset-console/internal/config"
	apperrors "github.com/jrsteele09/go-asset-console/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Manager handles refresh token creation, validation, and rotation
type Manager struct {
	repo   Repo
	config config.TokenConfig
}

// NewManager creates a new refresh token manager
func NewManager(repo Repo, cfg config.TokenConfig) *Manager {
	return &Manager{
		repo:   repo,
		config: cfg,
	}
}

// Create generates a new refresh token for the member and stores it
func (m *Manager) Create(ctx context.Context, memberID int64) (*StoredRefreshToken, error) {
	tokenBytes := make([]byte, m.config.GetRefreshTokenLength()) // Configured length (default: 32 bytes = 256 bits)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}

	now := NowTimeFunc()
	rt := &StoredRefreshToken{
		Token:    hex.EncodeToString(tokenBytes),
		MemberID: memberID,
		Iat:      now,
		Exp:      now.Add(m.config.GetRefreshTokenExpiry()),
	}
	if err := m.repo.Upsert(ctx, rt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	return rt, nil
}

// Validate returns the stored token if it exists and has not expired. An
// expired token is removed.
func (m *Manager) Validate(ctx context.Context, token string) (*StoredRefreshToken, error) {
	if token == "" {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	rt, err := m.repo.Get(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load refresh token: %w", err)
	}
	if m.IsExpired(rt) {
		if err := m.repo.Delete(ctx, token); err != nil {
			return nil, fmt.Errorf("failed to delete expired refresh token: %w", err)
		}
		return nil, apperrors.ErrRefreshTokenExpired
	}
	return rt, nil
}

// Rotate consumes token and returns a fresh one for the same member. A token
// rotates at most once; a concurrent rotation of it gets
// ErrInvalidRefreshToken.
func (m *Manager) Rotate(ctx context.Context, token string) (*StoredRefreshToken, error) {
	if token == "" {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	rt, err := m.repo.Consume(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume refresh token: %w", err)
	}
	if m.IsExpired(rt) {
		return nil, apperrors.ErrRefreshTokenExpired
	}
	return m.Create(ctx, rt.MemberID)
}

// Delete removes a single refresh token
func (m *Manager) Delete(ctx context.Context, token string) error {
	return m.repo.Delete(ctx, token)
}

// RevokeAll removes every refresh token the member holds
func (m *Manager) RevokeAll(ctx context.Context, memberID int64) (int, error) {
	n, err := m.repo.DeleteByMember(ctx, memberID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke refresh tokens: %w", err)
	}
	return n, nil
}

// IsExpired checks if a refresh token has expired
func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	exp := rt.Exp
	if exp.IsZero() {
		exp = rt.Iat.Add(m.config.GetRefreshTokenExpiry())
	}
	return !NowTimeFunc().Before(exp)
}
