package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// Helper function to create a temporary config file
func writeConfigFile(t *testing.T, dir string, content string) {
	t.Helper()
	err := os.WriteFile(filepath.Join(dir, configFileName), []byte(content), 0o644)
	require.NoError(t, err)
}

func TestLoadConfig_DefaultOnly(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, GetDefaultConfig(), cfg)
}

func TestLoadConfig_Override(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, `
defaultRunlevel: multi-user
bootSequence: [sysinit, multi-user]
startupTimeout: 10s
virtualConflict: reject
logging:
  level: debug
  format: json
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "multi-user", cfg.DefaultRunlevel)
	assert.Equal(t, []string{"sysinit", "multi-user"}, cfg.BootSequence)
	assert.Equal(t, 10*time.Second, cfg.StartupTimeout)
	assert.Equal(t, DefaultStopTimeout, cfg.StopTimeout, "absent fields keep defaults")
	assert.Equal(t, "reject", cfg.VirtualConflict)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/bin/sh", cfg.Executor.Shell)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed yaml", content: "defaultRunlevel: [\n"},
		{name: "unknown conflict policy", content: "virtualConflict: first\n"},
		{name: "negative timeout", content: "stopTimeout: -1s\n"},
		{name: "bad run-level", content: "defaultRunlevel: \"multi user\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfigFile(t, dir, tt.content)

			_, err := LoadConfig(dir)
			assert.Error(t, err)
		})
	}
}

func TestDefaultConfig_RoundTripsThroughYAML(t *testing.T) {
	data, err := yaml.Marshal(GetDefaultConfig())
	require.NoError(t, err)

	var cfg InitConfig
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, GetDefaultConfig(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.DefaultRunlevel = ""
	cfg.StartupTimeout = 0
	cfg.Logging.Format = "xml"
	cfg.StatusFile = ""

	err := cfg.Validate()
	require.Error(t, err)

	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Len(t, errs, 4)
	assert.Contains(t, err.Error(), "statusFile")
	assert.Contains(t, err.Error(), "defaultRunlevel")
	assert.Contains(t, err.Error(), "startupTimeout")
	assert.Contains(t, err.Error(), "logging.format")
}

func TestValidate_MetricsAddressRequiredWhenEnabled(t *testing.T) {
	cfg := GetDefaultConfig()
	cfg.Metrics.Enabled = true
	cfg.Metrics.Address = ""
	assert.Error(t, cfg.Validate())

	cfg.Metrics.Enabled = false
	assert.NoError(t, cfg.Validate())
}
