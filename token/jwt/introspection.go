package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-asset-console/internal/errors"
	"github.com/jrsteele09/go-asset-console/internal/utils"
	"github.com/jrsteele09/go-asset-console/token/keys"
)

// TokenIntrospection is what the server knows about a presented access token.
// When Active is false the other fields may not be populated.
type TokenIntrospection struct {
	Active   bool     `json:"active"`             // True or false - Is the token valid
	Aud      *string  `json:"aud,omitempty"`      // Audience
	Exp      *int64   `json:"exp,omitempty"`      // Expiration
	Iat      *int64   `json:"iat,omitempty"`      // Issued at time
	Iss      *string  `json:"iss,omitempty"`      // Issuer of the token
	Roles    []string `json:"roles,omitempty"`    // Roles assigned to the member
	Sub      *string  `json:"sub,omitempty"`      // Login ID
	MemberID int64    `json:"memberId,omitempty"` // Numeric member id
	JTI      string   `json:"jti,omitempty"`      // Token id
}

// RevokedChecker is an interface for checking if a token has been revoked
type RevokedChecker interface {
	IsRevoked(jti string) bool
}

// Inspector handles JWT token introspection and validation
type Inspector struct {
	signer         keys.Signer
	audience       string
	revokedChecker RevokedChecker
}

// NewInspector creates a new JWT inspector. An empty audience skips the aud
// check.
func NewInspector(signer keys.Signer, audience string, revokedChecker RevokedChecker) *Inspector {
	return &Inspector{
		signer:         signer,
		audience:       audience,
		revokedChecker: revokedChecker,
	}
}

func (i *Inspector) parse(rawToken string) (jwtlib.MapClaims, error) {
	opts := []jwtlib.ParserOption{
		jwtlib.WithTimeFunc(NowTimeFunc),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithValidMethods([]string{i.signer.GetSigningMethod().Alg()}),
	}
	if i.audience != "" {
		opts = append(opts, jwtlib.WithAudience(i.audience))
	}

	token, err := jwtlib.ParseWithClaims(rawToken, jwtlib.MapClaims{}, i.signer.GetVerificationKey, opts...)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: error extracting claims from token", apperrors.ErrInvalidToken)
	}
	return claims, nil
}

// Introspect validates rawToken and extracts its claims. A revoked token is
// reported inactive without an error.
func (i *Inspector) Introspect(rawToken string) (*TokenIntrospection, error) {
	if strings.TrimSpace(rawToken) == "" {
		return &TokenIntrospection{Active: false}, apperrors.ErrInvalidToken
	}

	claims, err := i.parse(rawToken)
	if err != nil {
		return &TokenIntrospection{Active: false}, err
	}

	iss, _ := claims["iss"].(string)
	sub, _ := claims["sub"].(string)
	iat, _ := claims["iat"].(float64)
	exp, _ := claims["exp"].(float64)
	jti, _ := claims["jti"].(string)
	memberID, _ := claims["memberId"].(float64)

	var aud string
	if audiences, err := claims.GetAudience(); err == nil && len(audiences) > 0 {
		aud = audiences[0]
	}

	iatInt := int64(iat)
	expInt := int64(exp)

	var roles []string
	if claimRoles, ok := claims["roles"].([]any); ok {
		roles = utils.ToStringSlice(claimRoles)
	}

	active := true
	// Check if token has been revoked
	if jti != "" && i.revokedChecker != nil && i.revokedChecker.IsRevoked(jti) {
		active = false
	}

	return &TokenIntrospection{
		Active:   active,
		Aud:      &aud,
		Exp:      &expInt,
		Iat:      &iatInt,
		Iss:      &iss,
		Roles:    roles,
		Sub:      &sub,
		MemberID: int64(memberID),
		JTI:      jti,
	}, nil
}

// ParseAndExtractJTI verifies rawToken and returns the id and expiry needed to
// revoke it.
func (i *Inspector) ParseAndExtractJTI(rawToken string) (jti string, exp time.Time, err error) {
	claims, err := i.parse(rawToken)
	if err != nil {
		return "", time.Time{}, err
	}

	jtiClaim, ok := claims["jti"].(string)
	if !ok || jtiClaim == "" {
		return "", time.Time{}, fmt.Errorf("%w: token missing jti claim", apperrors.ErrInvalidToken)
	}

	expClaim, err := claims.GetExpirationTime()
	if err != nil || expClaim == nil {
		return "", time.Time{}, fmt.Errorf("%w: token missing exp claim", apperrors.ErrInvalidToken)
	}
	return jtiClaim, expClaim.Time, nil
}
