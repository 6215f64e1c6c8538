package config

import "time"

// InitConfig is the top-level configuration structure for rcinit.
type InitConfig struct {
	// DefaultRunlevel is the run-level entered at the end of the boot sequence.
	DefaultRunlevel string `yaml:"defaultRunlevel,omitempty"`

	// BootSequence lists the run-levels activated, in order, during boot.
	BootSequence []string `yaml:"bootSequence,omitempty"`

	// StartupTimeout bounds every start and restart action.
	StartupTimeout time.Duration `yaml:"startupTimeout,omitempty"`

	// StopTimeout bounds every stop action.
	StopTimeout time.Duration `yaml:"stopTimeout,omitempty"`

	// ServicesFile is the persisted registry, relative to the config directory.
	ServicesFile string `yaml:"servicesFile,omitempty"`

	// StatusFile receives the runtime status written while booted. Relative
	// names are resolved against the config directory.
	StatusFile string `yaml:"statusFile,omitempty"`

	// VirtualConflict selects the capability collision policy (lastWriteWins or reject).
	VirtualConflict string `yaml:"virtualConflict,omitempty"`

	// Watch enables reloading of ServicesFile while booted.
	Watch bool `yaml:"watch"`

	Logging  LoggingConfig  `yaml:"logging,omitempty"`
	Metrics  MetricsConfig  `yaml:"metrics,omitempty"`
	Executor ExecutorConfig `yaml:"executor,omitempty"`
}

// LoggingConfig configures the application logger.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error (default: info)
	Format string `yaml:"format,omitempty"` // text or json (default: text)
}

// MetricsConfig configures the prometheus endpoint served while booted.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled,omitempty"`
	Address string `yaml:"address,omitempty"` // listen address (default: :9120)
}

// ExecutorConfig configures the shell-command process executor.
type ExecutorConfig struct {
	Shell string `yaml:"shell,omitempty"` // interpreter for actions (default: /bin/sh)
}
