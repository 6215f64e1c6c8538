package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rcinit/internal/api"
	"rcinit/internal/config"
	"rcinit/internal/services"
)

func writeServices(t *testing.T, dir string, defs ...services.Definition) {
	t.Helper()
	data, err := services.Encode(defs)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultServicesFile), data, 0o644))
}

func testConfig(t *testing.T, dir string) *Config {
	t.Helper()
	initCfg := config.GetDefaultConfig()
	initCfg.Watch = false
	initCfg.StatusFile = "status.yaml"
	cfg := NewConfig(false, dir)
	cfg.InitConfig = &initCfg
	cfg.LogOutput = &bytes.Buffer{}
	return cfg
}

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name       string
		debug      bool
		configPath string
		expected   string
	}{
		{name: "default path", expected: config.DefaultConfigPath},
		{name: "custom path", debug: true, configPath: "/tmp/rcinit", expected: "/tmp/rcinit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig(tt.debug, tt.configPath)
			assert.Equal(t, tt.debug, cfg.Debug)
			assert.Equal(t, tt.expected, cfg.ConfigPath)
			assert.Nil(t, cfg.InitConfig, "configuration is loaded by NewApplication")
		})
	}
}

func TestBootSequence(t *testing.T) {
	base := []string{"sysinit", "boot", "default"}
	tests := []struct {
		name     string
		target   string
		expected []string
	}{
		{name: "no override", expected: base},
		{name: "last level", target: "default", expected: base},
		{name: "truncates", target: "boot", expected: []string{"sysinit", "boot"}},
		{name: "appends unknown", target: "single", expected: []string{"sysinit", "boot", "default", "single"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, bootSequence(base, tt.target))
		})
	}
	assert.Equal(t, []string{"sysinit", "boot", "default"}, base, "input is not modified")
}

func TestNewApplication(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"),
		[]byte("virtualConflict: reject\nlogging:\n  level: debug\n"), 0o644))
	writeServices(t, dir,
		services.Definition{Name: "network", Provides: []string{"net"}, Enabled: true},
		services.Definition{Name: "sshd", Dependencies: []string{"net"}, Enabled: true},
	)

	var logs bytes.Buffer
	cfg := NewConfig(false, dir)
	cfg.LogOutput = &logs

	application, err := NewApplication(cfg)
	require.NoError(t, err)
	defer application.Close()

	require.NotNil(t, cfg.InitConfig)
	assert.Equal(t, "reject", cfg.InitConfig.VirtualConflict)

	svcs := application.Services()
	assert.Equal(t, []string{"network", "sshd"}, svcs.Registry.List())
	err = svcs.Registry.Register(services.Definition{Name: "networkd", Provides: []string{"net"}})
	var conflict *api.VirtualConflictError
	assert.ErrorAs(t, err, &conflict, "reject policy applies")
	assert.Equal(t, "/bin/sh", svcs.Executor.Shell())

	order, err := svcs.Resolver.ResolveOrder("default")
	require.NoError(t, err)
	assert.Equal(t, []string{"network", "sshd"}, order)
	assert.Contains(t, logs.String(), "level=DEBUG", "configured level applies")
}

func TestNewApplication_Errors(t *testing.T) {
	tests := []struct {
		name     string
		config   string
		services string
	}{
		{name: "invalid config", config: "startupTimeout: -1s\n"},
		{name: "malformed services file", services: "sshd: [\n"},
		{name: "unknown conflict policy", config: "virtualConflict: firstWins\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.config != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(tt.config), 0o644))
			}
			if tt.services != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultServicesFile), []byte(tt.services), 0o644))
			}
			cfg := NewConfig(false, dir)
			cfg.LogOutput = &bytes.Buffer{}

			_, err := NewApplication(cfg)
			assert.Error(t, err)
		})
	}
}

func TestServices_SaveRegistry(t *testing.T) {
	dir := t.TempDir()
	writeServices(t, dir, services.Definition{Name: "cron"})

	application, err := NewApplication(testConfig(t, dir))
	require.NoError(t, err)
	defer application.Close()

	svcs := application.Services()
	require.NoError(t, svcs.Orchestrator.EnableService("cron", "default"))
	require.NoError(t, svcs.SaveRegistry())

	defs, err := svcs.Persistence.LoadDefinitions()
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.True(t, defs[0].Enabled)
}

func TestApplication_Run(t *testing.T) {
	dir := t.TempDir()
	writeServices(t, dir,
		services.Definition{Name: "udev", RunLevels: []string{"sysinit"}, Enabled: true},
		services.Definition{Name: "network", Provides: []string{"net"}, Enabled: true},
		services.Definition{Name: "sshd", Dependencies: []string{"net"}, Enabled: true},
		services.Definition{Name: "ftpd"},
	)

	application, err := NewApplication(testConfig(t, dir))
	require.NoError(t, err)
	defer application.Close()
	svcs := application.Services()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	require.Eventually(t, func() bool {
		return svcs.Controller.CurrentRunlevel() == "default"
	}, 5*time.Second, 10*time.Millisecond)

	for name, want := range map[string]api.ServiceState{
		"udev":    api.StateRunning,
		"network": api.StateRunning,
		"sshd":    api.StateRunning,
		"ftpd":    api.StateInactive,
	} {
		status, err := svcs.Orchestrator.GetStatus(name)
		require.NoError(t, err)
		assert.Equal(t, want, status.State, name)
	}

	require.Eventually(t, func() bool {
		report, err := svcs.ReadStatus()
		if err != nil || report.RunLevel != "default" {
			return false
		}
		sshd, err := report.Service("sshd")
		return err == nil && sshd.State == api.StateRunning
	}, 5*time.Second, 10*time.Millisecond, "status file follows the boot")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	for _, name := range []string{"udev", "network", "sshd"} {
		status, err := svcs.Orchestrator.GetStatus(name)
		require.NoError(t, err)
		assert.Equal(t, api.StateStopped, status.State, name)
	}

	report, err := svcs.ReadStatus()
	require.NoError(t, err)
	sshd, err := report.Service("sshd")
	require.NoError(t, err)
	assert.Equal(t, api.StateStopped, sshd.State, "final status is written after shutdown")
}

func TestServices_Status(t *testing.T) {
	dir := t.TempDir()
	writeServices(t, dir,
		services.Definition{Name: "network", Provides: []string{"net"}},
		services.Definition{Name: "sshd", Dependencies: []string{"net"}},
	)
	application, err := NewApplication(testConfig(t, dir))
	require.NoError(t, err)
	defer application.Close()
	svcs := application.Services()

	_, err = svcs.ReadStatus()
	assert.ErrorIs(t, err, config.ErrNotExist)

	require.NoError(t, svcs.Orchestrator.StartService(context.Background(), "network"))
	require.NoError(t, svcs.WriteStatus())
	assert.FileExists(t, filepath.Join(dir, "status.yaml"))

	report, err := svcs.ReadStatus()
	require.NoError(t, err)
	assert.Equal(t, "sysinit", report.RunLevel)
	require.Len(t, report.Services, 2)

	network, err := report.Service("network")
	require.NoError(t, err)
	assert.Equal(t, api.StateRunning, network.State)
	assert.False(t, network.StartedAt.IsZero())
	assert.GreaterOrEqual(t, network.Uptime, time.Duration(0))

	sshd, err := report.Service("sshd")
	require.NoError(t, err)
	assert.Equal(t, api.StateInactive, sshd.State)
	assert.Zero(t, sshd.Uptime)

	_, err = report.Service("ftpd")
	assert.True(t, api.IsNotFound(err))
}

func TestServeMetrics_InvalidAddress(t *testing.T) {
	err := serveMetrics(context.Background(), "127.0.0.1:-1", nil)
	assert.Error(t, err)
}
