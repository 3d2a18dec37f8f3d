package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/UnknownOlympus/mapmarker/internal/config"
	"github.com/stretchr/testify/assert"
)

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("ATLAS_ENV", "local")
	t.Setenv("ATLAS_PORT", "9090")
	t.Setenv("ATLAS_PROVIDER_TYPE", "nominatim")
	t.Setenv("ATLAS_PROVIDER_KEY", "testAPIKey")
	t.Setenv("ATLAS_PROVIDER_URL", "http://localhost:7070/search")
	t.Setenv("ATLAS_PROVIDER_TIMEOUT", "3s")
	t.Setenv("ATLAS_NETWORK_ENABLED", "false")
	t.Setenv("ATLAS_SANITIZE_MAX_LENGTH", "64")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "nominatim", cfg.Provider.Type)
	assert.Equal(t, "testAPIKey", cfg.Provider.APIKey)
	assert.Equal(t, "http://localhost:7070/search", cfg.Provider.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Provider.Timeout)
	assert.False(t, cfg.NetworkEnabled)
	assert.Equal(t, 64, cfg.SanitizeMaxLength)
}

func TestMustLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"ATLAS_ENV", "ATLAS_PORT", "ATLAS_PROVIDER_TYPE", "ATLAS_PROVIDER_TIMEOUT",
		"ATLAS_NETWORK_ENABLED", "ATLAS_SANITIZE_MAX_LENGTH",
	} {
		unsetEnv(t, key)
	}

	cfg := config.MustLoad()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "google", cfg.Provider.Type)
	assert.Equal(t, 10*time.Second, cfg.Provider.Timeout)
	assert.True(t, cfg.NetworkEnabled)
	assert.Equal(t, 255, cfg.SanitizeMaxLength)
}

func TestMustLoad_PortError(t *testing.T) {
	t.Setenv("ATLAS_PORT", "error_value")

	assert.PanicsWithValue(t, "failed to parse port for api server from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_TimeoutError(t *testing.T) {
	t.Setenv("ATLAS_PORT", "8080")
	t.Setenv("ATLAS_PROVIDER_TIMEOUT", "error_value")

	assert.PanicsWithValue(t, "failed to parse provider timeout from configuration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_NetworkFlagError(t *testing.T) {
	t.Setenv("ATLAS_PORT", "8080")
	t.Setenv("ATLAS_PROVIDER_TIMEOUT", "10s")
	t.Setenv("ATLAS_NETWORK_ENABLED", "sometimes")

	assert.PanicsWithValue(t, "failed to parse network flag from configuration, must be a boolean", func() {
		config.MustLoad()
	})
}

func TestMustLoad_MaxLengthError(t *testing.T) {
	t.Setenv("ATLAS_PORT", "8080")
	t.Setenv("ATLAS_PROVIDER_TIMEOUT", "10s")
	t.Setenv("ATLAS_NETWORK_ENABLED", "true")
	t.Setenv("ATLAS_SANITIZE_MAX_LENGTH", "error_value")

	assert.PanicsWithValue(t, "failed to parse sanitize max length from configuration, must be an integer types", func() {
		config.MustLoad()
	})
}

// unsetEnv removes key for the duration of the test. t.Setenv registers the restore.
func unsetEnv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset %s: %v", key, err)
	}
}
