package config_test

import (
	"testing"

	"github.com/jrsteele09/go-asset-console/internal/config"
	"github.com/stretchr/testify/require"
)

func TestGetPort(t *testing.T) {
	t.Setenv("PORT", "")
	require.Equal(t, ":8080", config.EnvVars{}.GetPort())

	t.Setenv("PORT", "9090")
	require.Equal(t, ":9090", config.EnvVars{}.GetPort())

	t.Setenv("PORT", ":7070")
	require.Equal(t, ":7070", config.EnvVars{}.GetPort())
}

func TestAllowedOrigins(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	origins := config.Cors{}.GetAllowedOrigins()
	require.Len(t, origins, 2)
	require.True(t, origins.IsAllowedOrigin("http://b.test"))
	require.False(t, origins.IsAllowedOrigin("http://c.test"))
}

func TestIssuerFollowsBaseURL(t *testing.T) {
	t.Setenv("BASE_URL", "https://console.example.com")
	cfg := config.New()
	require.Equal(t, "https://console.example.com", cfg.GetIssuer())
	require.Equal(t, 5, cfg.GetMaxLoginFailures())
}
