// Package executor runs service actions for the orchestrator.
//
// CommandExecutor hands each action string to a shell (`/bin/sh -c` unless
// configured otherwise) and waits for it to exit. Daemons are expected to
// background themselves and record their PID in the declared pid file.
package executor
