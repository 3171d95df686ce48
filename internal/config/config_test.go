package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "RUN_MIGRATIONS", "EVENTS_ENABLED", "REDIS_DB", "SESSION_TTL", "CART_TTL", "MAX_UPLOAD_BYTES", "ADMIN_EMAIL", "ADMIN_PASSWORD", "CORS_ALLOW_ORIGINS", "DEMO_STORE_ID"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "demo-store", cfg.DemoStoreID)
	assert.True(t, cfg.RunMigrations)
	assert.True(t, cfg.EventsEnabled)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.CartTTL)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("EVENTS_ENABLED", "no")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("ADMIN_EMAIL", "admin@platform.com")
	t.Setenv("ADMIN_PASSWORD", "secret1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.False(t, cfg.EventsEnabled)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
	assert.Equal(t, "admin@platform.com", cfg.AdminEmail)
}

func TestLoadInvalid(t *testing.T) {
	cases := map[string]struct {
		key, value string
	}{
		"bool":           {"RUN_MIGRATIONS", "maybe"},
		"int":            {"REDIS_DB", "one"},
		"duration":       {"CART_TTL", "forever"},
		"upload size":    {"MAX_UPLOAD_BYTES", "0"},
		"admin half-set": {"ADMIN_EMAIL", "admin@platform.com"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("ADMIN_PASSWORD", "")
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			require.Error(t, err)
		})
	}
}
