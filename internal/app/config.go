package app

import (
	"io"

	"rcinit/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Debug forces debug logging regardless of the configured level.
	Debug bool

	// Quiet raises the log level to warnings for one-shot commands.
	Quiet bool

	// ConfigPath is the directory holding config.yaml and the services file.
	ConfigPath string

	// RunLevel overrides the run-level entered at the end of boot.
	RunLevel string

	// Progress shows a spinner while booting.
	Progress bool

	// LogOutput receives log records (default: os.Stderr).
	LogOutput io.Writer

	// InitConfig is loaded from ConfigPath when nil.
	InitConfig *config.InitConfig
}

// NewConfig creates a new application configuration
func NewConfig(debug bool, configPath string) *Config {
	if configPath == "" {
		configPath = config.DefaultConfigPath
	}
	return &Config{
		Debug:      debug,
		ConfigPath: configPath,
	}
}
