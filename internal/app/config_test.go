package app

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "s")
	t.Setenv("CSRF_SECRET", "c")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:5000", cfg.GalaxyAPIURL)
	assert.Equal(t, 10*time.Second, cfg.GalaxyAPITimeout)
	assert.Equal(t, 30*time.Second, cfg.StagedBusyTimeout)
	assert.False(t, cfg.IsProduction())
	assert.True(t, cfg.StrictPermissions())
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := Config{SessionSecret: "s", CSRFSecret: "c", GalaxyAPIURL: "https://api.galaxy.test", StagedBusyTimeout: time.Second}
	require.NoError(t, base.Validate())

	relative := base
	relative.GalaxyAPIURL = "/api"
	assert.Error(t, relative.Validate())

	noBusy := base
	noBusy.StagedBusyTimeout = 0
	assert.Error(t, noBusy.Validate())

	prod := base
	prod.AppEnv = "production"
	assert.True(t, prod.IsProduction())
	assert.False(t, prod.StrictPermissions())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
}

func TestTestModeFollowsEnvironment(t *testing.T) {
	t.Cleanup(RefreshTestMode)

	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	assert.True(t, InTestMode())

	t.Setenv(testModeEnv, "")
	RefreshTestMode()
	assert.False(t, InTestMode())
}
