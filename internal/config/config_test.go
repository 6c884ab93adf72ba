package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("INKWELL_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	t.Setenv("INKWELL_JWT_SECRET", "access-secret")
	t.Setenv("INKWELL_APP_PORT", "9090")
	t.Setenv("INKWELL_DASHBOARD_CACHE_TTL", "10m")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "Inkwell Admin API", cfg.AppName)
	require.Equal(t, ":9090", cfg.HTTPAddress())
	require.Equal(t, "inkwell:admin", cfg.StreamChannelBase)
	require.Equal(t, 10*time.Minute, cfg.DashboardCacheTTL)
	require.Equal(t, time.Minute, cfg.ActivityCacheTTL)
}

func TestLoadRejectsBadTTL(t *testing.T) {
	t.Setenv("INKWELL_JWT_SECRET", "access-secret")
	t.Setenv("INKWELL_ACTIVITY_CACHE_TTL", "soon")

	_, err := Load()
	require.Error(t, err)
}

func TestHTTPAddressKeepsLeadingColon(t *testing.T) {
	cfg := Config{AppPort: ":8080"}
	require.Equal(t, ":8080", cfg.HTTPAddress())
}
