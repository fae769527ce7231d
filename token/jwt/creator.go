package jwt

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-asset-console/internal/config"
	"github.com/jrsteele09/go-asset-console/members"
	"github.com/jrsteele09/go-asset-console/token/keys"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Creator mints access tokens for members
type Creator struct {
	config config.TokenConfig
	signer keys.Signer
}

// NewCreator creates a new JWT creator
func NewCreator(cfg config.TokenConfig, signer keys.Signer) *Creator {
	return &Creator{
		config: cfg,
		signer: signer,
	}
}

// CreateAccessToken creates a signed access token for member and returns it
// with its expiry.
func (c *Creator) CreateAccessToken(member *members.Member) (string, time.Time, error) {
	now := NowTimeFunc()
	exp := now.Add(c.config.GetAccessTokenExpiry())

	roles := member.Roles
	if roles == nil {
		roles = []string{}
	}
	claims := jwtlib.MapClaims{
		"iss":      c.config.GetIssuer(),   // The issuer of the token
		"aud":      c.config.GetAudience(), // The audience for which the token is intended
		"sub":      member.LoginID,         // Login ID of the member
		"memberId": member.ID,              // Numeric member id
		"roles":    roles,                  // Role codes at issue time
		"iat":      now.Unix(),             // Issued At
		"exp":      exp.Unix(),             // Expiry
		"jti":      uuid.New().String(),    // Unique token ID for revocation
	}

	signedToken, err := c.signer.Sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signedToken, time.Unix(exp.Unix(), 0), nil
}

// ExpiresIn is the access token lifetime in seconds.
func (c *Creator) ExpiresIn() int64 {
	return int64(c.config.GetAccessTokenExpiry() / time.Second)
}
