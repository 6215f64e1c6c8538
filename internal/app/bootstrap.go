package app

import (
	"context"
	"fmt"
	"os"

	"rcinit/internal/config"
	"rcinit/pkg/logging"
)

// Application bootstraps and runs rcinit. It owns the configuration and
// every service built from it.
//
// Example usage:
//
//	cfg := app.NewConfig(false, "/etc/rcinit")
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return fmt.Errorf("failed to create application: %w", err)
//	}
//	defer application.Close()
//	return application.Run(ctx)
type Application struct {
	config   *Config
	services *Services
}

// NewApplication loads the configuration, initializes logging and builds
// the registry, orchestrator and run-level controller.
func NewApplication(cfg *Config) (*Application, error) {
	// Bootstrap logging until the configured level is known.
	setupLogging(cfg, config.LoggingConfig{})

	if cfg.InitConfig == nil {
		initCfg, err := config.LoadConfig(cfg.ConfigPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration from path: %s", cfg.ConfigPath)
			return nil, fmt.Errorf("failed to load configuration from path %s: %w", cfg.ConfigPath, err)
		}
		cfg.InitConfig = &initCfg
	}
	setupLogging(cfg, cfg.InitConfig.Logging)

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

// setupLogging applies the configured level and format, honouring the
// Debug and Quiet overrides. Invalid values fall back to text at info,
// configuration validation reports them.
func setupLogging(cfg *Config, logCfg config.LoggingConfig) {
	level, err := logging.ParseLevel(logCfg.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	if cfg.Quiet && level < logging.LevelWarn {
		level = logging.LevelWarn
	}
	if cfg.Debug {
		level = logging.LevelDebug
	}
	format, err := logging.ParseFormat(logCfg.Format)
	if err != nil {
		format = logging.FormatText
	}

	output := cfg.LogOutput
	if output == nil {
		output = os.Stderr
	}
	logging.Init(logging.Options{Level: level, Format: format, Output: output})
}

// Services returns the initialized services.
func (a *Application) Services() *Services {
	return a.services
}

// Config returns the application configuration.
func (a *Application) Config() *Config {
	return a.config
}

// Run boots the configured run-levels and supervises them until the context
// is cancelled or SIGINT/SIGTERM is received, then shuts everything down.
func (a *Application) Run(ctx context.Context) error {
	return runBootMode(ctx, a.config, a.services)
}

// Close releases the resources held by the services.
func (a *Application) Close() {
	a.services.Close()
}
