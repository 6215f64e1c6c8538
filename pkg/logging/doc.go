// Package logging provides subsystem-tagged structured logging for rcinit,
// built on the standard slog package.
//
// Every entry carries a subsystem attribute and, for errors, an error
// attribute:
//
//	logging.Init(logging.Options{Level: logging.LevelInfo, Format: logging.FormatJSON})
//
//	logging.Info("Orchestrator", "Starting service: %s", name)
//	logging.Error("Orchestrator", err, "Failed to start service %s", name)
//
// One-shot CLI commands use InitForCLI, which writes text records to the
// given writer. Before initialization only warnings and errors are written,
// to stderr.
//
// The package is safe for concurrent use.
package logging
