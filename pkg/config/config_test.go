package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, EnvDevelopment, cfg.Env)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "/api/v1", cfg.APIPrefix)
	require.Equal(t, 30, cfg.Analytics.WindowDays)
	require.Equal(t, 365, cfg.Analytics.MaxWindowDays)
	require.False(t, cfg.Analytics.CatalogCacheOn)
	require.True(t, cfg.Export.Enabled)
}

func TestLoadRejectsInvalidPort(t *testing.T) {
	t.Setenv("PORT", "0")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsUnknownEnv(t *testing.T) {
	t.Setenv("ENV", "staging")

	_, err := Load()
	require.Error(t, err)
}
