package config

import "time"

type SecurityConfig interface {
	GetMaxLoginFailures() int
	GetRevocationCleanupInterval() time.Duration
	GetRequestTimeout() time.Duration
}

type Security struct{}

var _ SecurityConfig = Security{}

// GetMaxLoginFailures is the number of consecutive failures that locks an
// account.
func (Security) GetMaxLoginFailures() int {
	return 5
}

func (Security) GetRevocationCleanupInterval() time.Duration {
	return 10 * time.Minute
}

func (Security) GetRequestTimeout() time.Duration {
	return 30 * time.Second
}
