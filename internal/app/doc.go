// Package app provides application bootstrap and lifecycle management for
// rcinit.
//
// # Components
//
//   - Configuration (config.go): runtime options set from the command line
//   - Bootstrap (bootstrap.go): configuration loading and logging setup
//   - Services (services.go): construction of the registry, resolver,
//     orchestrator, run-level controller and services file watcher
//   - Modes (modes.go): the long-running boot mode
//
// # Bootstrap Sequence
//
//  1. Logging is initialized at info level (debug with --debug)
//  2. config.yaml is loaded from the configuration directory, falling back
//     to the defaults when absent
//  3. Logging is reconfigured with the configured level and format
//  4. The service registry is loaded from the services file
//  5. The remaining components are built around the registry
//
// # Boot Mode
//
// Run boots every run-level of the configured boot sequence through the
// enablement gate, notifies systemd once the final run-level is reached and
// then supervises until SIGINT, SIGTERM or context cancellation. Metrics are
// served and the services file is watched concurrently, under an errgroup.
// On exit the booted run-levels are stopped in reverse order.
//
//	application, err := app.NewApplication(app.NewConfig(false, "/etc/rcinit"))
//	if err != nil {
//	    return err
//	}
//	defer application.Close()
//	return application.Run(ctx)
//
// One-shot commands use NewApplication for its Services only and never call
// Run.
package app
