package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
)

// AccessClaims are the claims the console server puts in an access token.
type AccessClaims struct {
	Issuer    string   `json:"iss"`
	Subject   string   `json:"sub"` // login id
	MemberID  int64    `json:"memberId"`
	Roles     []string `json:"roles"`
	IssuedAt  int64    `json:"iat"`
	ExpiresAt int64    `json:"exp"`
	ID        string   `json:"jti"`
}

// Expiry converts the exp claim.
func (c *AccessClaims) Expiry() time.Time {
	return time.Unix(c.ExpiresAt, 0)
}

// Verifier checks access token signatures against the server's published
// key set.
type Verifier struct {
	keySet *oidc.RemoteKeySet
	now    func() time.Time
}

// NewVerifier fetches keys lazily from jwksURL.
func NewVerifier(ctx context.Context, jwksURL string) *Verifier {
	return &Verifier{
		keySet: oidc.NewRemoteKeySet(ctx, jwksURL),
		now:    time.Now,
	}
}

// Verify validates the signature of rawToken and returns its claims. An
// expired token is returned with an error so callers can still show who it
// belonged to.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*AccessClaims, error) {
	payload, err := v.keySet.VerifySignature(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify token signature: %w", err)
	}
	var claims AccessClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token claims: %w", err)
	}
	if claims.ExpiresAt != 0 && v.now().After(claims.Expiry()) {
		return &claims, fmt.Errorf("token expired at %s", claims.Expiry().Format(time.RFC3339))
	}
	return &claims, nil
}
