package orchestrator

import (
	"context"
	"time"

	"rcinit/internal/services"
)

// ProcessExecutor performs the actual start and stop actions of a service.
// Implementations should honour ctx; the orchestrator also enforces its
// timeouts when they do not.
type ProcessExecutor interface {
	// ExecuteStart runs the start action and returns the PID of the started
	// process, or 0 when it is unknown.
	ExecuteStart(ctx context.Context, def services.Definition) (int, error)
	// ExecuteStop runs the stop action.
	ExecuteStop(ctx context.Context, def services.Definition) error
}

// RestartExecutor is implemented by executors able to run a dedicated
// restart action without a full stop and start.
type RestartExecutor interface {
	ExecuteRestart(ctx context.Context, def services.Definition) (int, error)
}

// Clock abstracts time for uptime reporting and recovery scheduling.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call.
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// MetricsRecorder receives lifecycle measurements. *metrics.Recorder
// implements it.
type MetricsRecorder interface {
	ObserveTransition(service, from, to string)
	ObserveStart(service string, d time.Duration)
	IncRecoveryAttempt(service string)
}

type noopMetrics struct{}

func (noopMetrics) ObserveTransition(string, string, string) {}
func (noopMetrics) ObserveStart(string, time.Duration)       {}
func (noopMetrics) IncRecoveryAttempt(string)                {}
