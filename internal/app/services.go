package app

import (
	"fmt"

	"rcinit/internal/config"
	"rcinit/internal/dependency"
	"rcinit/internal/executor"
	"rcinit/internal/metrics"
	"rcinit/internal/orchestrator"
	"rcinit/internal/reconciler"
	"rcinit/internal/runlevel"
	"rcinit/internal/services"
	"rcinit/pkg/logging"
)

// Services holds all initialized components of the application.
//
// Initialization order follows the data flow: the registry is loaded from
// the services file, the resolver and the orchestrator share it, and the
// run-level controller drives the orchestrator through the resolver.
type Services struct {
	Storage     *config.Storage
	Persistence *services.Persistence
	Registry    *services.Registry

	// Metrics is always created; it is only served when enabled.
	Metrics *metrics.Recorder

	Resolver     *dependency.Resolver
	Executor     *executor.CommandExecutor
	Orchestrator *orchestrator.Orchestrator
	Controller   *runlevel.Controller
	Watcher      *reconciler.Watcher

	// StatusFile is where a booted process publishes its StatusReport.
	StatusFile string
}

// InitializeServices creates every component from the loaded configuration.
func InitializeServices(cfg *Config) (*Services, error) {
	initCfg := cfg.InitConfig
	if initCfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	policy, err := services.ParseConflictPolicy(initCfg.VirtualConflict)
	if err != nil {
		return nil, err
	}

	storage := config.NewStorageWithPath(cfg.ConfigPath)
	persistence := services.NewPersistence(storage, initCfg.ServicesFile)
	registry := services.NewRegistry(services.WithConflictPolicy(policy))
	if err := persistence.Load(registry); err != nil {
		return nil, fmt.Errorf("failed to load services from %s: %w", persistence.Path(), err)
	}

	recorder := metrics.NewRecorder()
	resolver := dependency.NewResolver(registry, recorder)
	exec := executor.NewCommandExecutor(initCfg.Executor.Shell)

	orch := orchestrator.New(orchestrator.Config{
		Registry:       registry,
		Executor:       exec,
		Metrics:        recorder,
		StartupTimeout: initCfg.StartupTimeout,
		StopTimeout:    initCfg.StopTimeout,
	})

	controller := runlevel.NewController(runlevel.Config{
		Resolver:   resolver,
		Supervisor: orch,
		Registry:   registry,
		Metrics:    recorder,
	})

	watcher := reconciler.NewWatcher(reconciler.WatcherConfig{
		Loader:   persistence,
		Manager:  orch,
		Observer: recorder,
	})

	logging.Debug("Bootstrap", "Initialized %d services from %s", len(registry.List()), persistence.Path())
	return &Services{
		Storage:      storage,
		Persistence:  persistence,
		Registry:     registry,
		Metrics:      recorder,
		Resolver:     resolver,
		Executor:     exec,
		Orchestrator: orch,
		Controller:   controller,
		Watcher:      watcher,
		StatusFile:   initCfg.StatusFile,
	}, nil
}

// SaveRegistry persists the current registry definitions.
func (s *Services) SaveRegistry() error {
	return s.Persistence.Save(s.Registry)
}

// Close cancels pending recovery attempts.
func (s *Services) Close() {
	s.Orchestrator.Close()
}
