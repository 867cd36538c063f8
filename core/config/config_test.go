package config_test

import (
	"testing"

	"stocktake/core/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "stocktakes", cfg.Storage.Bucket)
	assert.False(t, cfg.Storage.Enabled())
	assert.Equal(t, 20, cfg.Stocktake.EffectivePageSize())
	assert.False(t, cfg.Stocktake.CountMissingAsZero)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("STOCKTAKE_COUNT_MISSING_AS_ZERO", "true")

	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.True(t, cfg.Stocktake.CountMissingAsZero)
}
