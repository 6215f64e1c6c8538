package config

import "time"

const (
	// DefaultConfigPath is used when no --config-path is given.
	DefaultConfigPath = "/etc/rcinit"

	// DefaultServicesFile holds the persisted service registry.
	DefaultServicesFile = "services.yaml"

	// DefaultStatusFile holds the runtime status of a booted system.
	DefaultStatusFile = "/run/rcinit/status.yaml"

	// DefaultStartupTimeout bounds start actions.
	DefaultStartupTimeout = 5 * time.Minute

	// DefaultStopTimeout bounds stop actions.
	DefaultStopTimeout = 30 * time.Second

	// DefaultMetricsAddress is the prometheus listen address.
	DefaultMetricsAddress = ":9120"
)

// GetDefaultConfig returns the default configuration.
func GetDefaultConfig() InitConfig {
	return InitConfig{
		DefaultRunlevel: "default",
		BootSequence:    []string{"sysinit", "boot", "default"},
		StartupTimeout:  DefaultStartupTimeout,
		StopTimeout:     DefaultStopTimeout,
		ServicesFile:    DefaultServicesFile,
		StatusFile:      DefaultStatusFile,
		VirtualConflict: "lastWriteWins",
		Watch:           true,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: DefaultMetricsAddress,
		},
		Executor: ExecutorConfig{
			Shell: "/bin/sh",
		},
	}
}
