package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "nats://nats:4222", cfg.Bus.URL)
	assert.Equal(t, 3, cfg.Correlation.Threshold)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvOverridesDefault(t *testing.T) {
	os.Setenv("BUS_URL", "nats://override:4222")
	os.Setenv("CORRELATION_THRESHOLD", "5")
	defer os.Unsetenv("BUS_URL")
	defer os.Unsetenv("CORRELATION_THRESHOLD")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "nats://override:4222", cfg.Bus.URL)
	assert.Equal(t, 5, cfg.Correlation.Threshold)
}

func TestLoad_RejectsInvalidLogLevel(t *testing.T) {
	os.Setenv("LOG_LEVEL", "verbose")
	defer os.Unsetenv("LOG_LEVEL")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsInvalidPort(t *testing.T) {
	os.Setenv("PORT", "99999")
	defer os.Unsetenv("PORT")

	_, err := Load()
	assert.Error(t, err)
}
