package config

import "time"

type TokenConfig interface {
	GetIssuer() string
	GetAudience() string
	GetRefreshTokenLength() int
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type Token struct{}

var _ TokenConfig = Token{}

func (Token) GetIssuer() string {
	return EnvVars{}.GetBaseURL()
}

func (Token) GetAudience() string {
	return "asset-console"
}

func (Token) GetRefreshTokenLength() int {
	return 32 // 32 bytes = 256 bits
}

func (Token) GetAccessTokenExpiry() time.Duration {
	return 1 * time.Hour
}

func (Token) GetRefreshTokenExpiry() time.Duration {
	return 7 * 24 * time.Hour // 7 days
}
