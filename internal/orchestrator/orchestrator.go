package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rcinit/internal/api"
	"rcinit/internal/config"
	"rcinit/internal/services"
	"rcinit/pkg/logging"
)

// Orchestrator supervises the lifecycle of the services in a registry. It is
// the only component that changes service runtime state.
//
// Transitions of one service are serialised by a per-service mutex; a second
// caller blocks until the in-flight transition completes. A transition never
// holds more than one service lock.
type Orchestrator struct {
	registry *services.Registry
	executor ProcessExecutor
	clock    Clock
	metrics  MetricsRecorder

	startupTimeout time.Duration
	stopTimeout    time.Duration

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	// State change event subscribers
	stateChangeSubscribers []chan<- ServiceStateChangedEvent

	// Pending recovery attempts
	retries map[string]Timer
	closed  bool

	// Context for recovery attempts, cancelled by Close
	ctx        context.Context
	cancelFunc context.CancelFunc

	mu sync.RWMutex
}

// Config holds the configuration for the orchestrator.
type Config struct {
	Registry *services.Registry // Required
	Executor ProcessExecutor    // Required
	Clock    Clock              // Optional: defaults to the wall clock
	Metrics  MetricsRecorder    // Optional

	// Timeouts for executor calls. Zero selects the configuration defaults.
	StartupTimeout time.Duration
	StopTimeout    time.Duration
}

// New creates a new orchestrator.
func New(cfg Config) *Orchestrator {
	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}
	var recorder MetricsRecorder = noopMetrics{}
	if cfg.Metrics != nil {
		recorder = cfg.Metrics
	}
	startupTimeout := cfg.StartupTimeout
	if startupTimeout <= 0 {
		startupTimeout = config.DefaultStartupTimeout
	}
	stopTimeout := cfg.StopTimeout
	if stopTimeout <= 0 {
		stopTimeout = config.DefaultStopTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		registry:               cfg.Registry,
		executor:               cfg.Executor,
		clock:                  clock,
		metrics:                recorder,
		startupTimeout:         startupTimeout,
		stopTimeout:            stopTimeout,
		locks:                  make(map[string]*sync.Mutex),
		stateChangeSubscribers: make([]chan<- ServiceStateChangedEvent, 0),
		retries:                make(map[string]Timer),
		ctx:                    ctx,
		cancelFunc:             cancel,
	}
}

// Registry returns the service registry supervised by the orchestrator.
func (o *Orchestrator) Registry() *services.Registry {
	return o.registry
}

// Close cancels every pending recovery attempt. Running services are left
// untouched; use the run-level controller to shut them down.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}
	o.closed = true
	o.cancelFunc()
	for name, timer := range o.retries {
		timer.Stop()
		delete(o.retries, name)
	}
	logging.Debug("Orchestrator", "Closed orchestrator")
}

// StartService starts a service and, first, every dependency that is not
// running yet. Starting a running service is a no-op.
//
// The dependency closure is walked before anything is executed; a cycle
// yields a *api.CircularDependencyError and leaves every state untouched.
// When a dependency fails, the services depending on it are marked Failed
// and a *api.DependencyStartFailedError is returned.
func (o *Orchestrator) StartService(ctx context.Context, name string) error {
	state, err := o.registry.State(name)
	if err != nil {
		return err
	}
	if state.State == api.StateRunning {
		logging.Debug("Orchestrator", "Service %s is already running", name)
		return nil
	}

	snap := o.registry.Snapshot()
	plan, err := buildStartPlan(snap, name)
	if err != nil {
		if api.IsDependencyStartFailed(err) {
			o.markFailed(name, err)
		}
		logging.Error("Orchestrator", err, "Cannot start service %s", name)
		return err
	}

	for i, step := range plan {
		if err := o.startOne(ctx, step); err != nil {
			o.failDependents(snap, plan[i+1:], step)
			if step == name {
				return err
			}
			return dependencyChain(snap, plan, name, step, err)
		}
	}

	logging.Info("Orchestrator", "Started service: %s", name)
	return nil
}

// startOne executes the start action of a single service whose dependencies
// have already been started.
func (o *Orchestrator) startOne(ctx context.Context, name string) error {
	lock := o.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	def, err := o.registry.Definition(name)
	if err != nil {
		return err
	}
	state, err := o.registry.State(name)
	if err != nil {
		return err
	}
	if state.State == api.StateRunning {
		return nil
	}

	if err := o.transition(name, api.StateStarting, nil, nil); err != nil {
		return err
	}

	deps, err := o.registry.DependenciesOf(name)
	if err != nil {
		return err
	}
	for _, dep := range deps {
		depState, err := o.registry.State(dep)
		if err != nil {
			return o.failStart(name, def, &api.DependencyStartFailedError{Service: name, Dependency: dep, Cause: err}, false)
		}
		if depState.State != api.StateRunning {
			cause := fmt.Errorf("dependency %s is %s", dep, depState.State)
			return o.failStart(name, def, &api.DependencyStartFailedError{Service: name, Dependency: dep, Cause: cause}, false)
		}
	}

	logging.Info("Orchestrator", "Starting service: %s", name)
	began := o.clock.Now()
	var pid int
	err = o.runWithTimeout(ctx, name, "start", o.startupTimeout, func(ctx context.Context) error {
		var execErr error
		pid, execErr = o.executor.ExecuteStart(ctx, def)
		return execErr
	})
	o.metrics.ObserveStart(name, o.clock.Now().Sub(began))
	if err != nil {
		return o.failStart(name, def, err, true)
	}

	startedAt := o.clock.Now()
	return o.transition(name, api.StateRunning, nil, func(s *services.RuntimeState) {
		s.RestartCount = 0
		s.LastError = ""
		s.PID = pid
		s.StartedAt = startedAt
	})
}

// failStart moves a Starting service to Failed and, for executor failures,
// schedules recovery according to its restart policy.
func (o *Orchestrator) failStart(name string, def services.Definition, cause error, scheduleRetry bool) error {
	var restartCount int
	terr := o.transition(name, api.StateFailed, cause, func(s *services.RuntimeState) {
		s.LastError = cause.Error()
		s.PID = 0
		restartCount = s.RestartCount
	})
	if terr != nil {
		return terr
	}
	logging.Error("Orchestrator", cause, "Failed to start service %s", name)

	if scheduleRetry {
		o.scheduleRecovery(name, def.RestartPolicy, restartCount)
	}
	return cause
}

// markFailed records a start failure detected before the service ran.
func (o *Orchestrator) markFailed(name string, cause error) {
	lock := o.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	state, err := o.registry.State(name)
	if err != nil || state.State == api.StateRunning {
		return
	}
	if err := o.transition(name, api.StateStarting, nil, nil); err != nil {
		return
	}
	_ = o.transition(name, api.StateFailed, cause, func(s *services.RuntimeState) {
		s.LastError = cause.Error()
		s.PID = 0
	})
}

// failDependents marks every not yet executed plan member that depends,
// directly or through another member, on the failed service.
func (o *Orchestrator) failDependents(snap *services.Snapshot, remaining []string, failed string) {
	broken := map[string]bool{failed: true}
	for _, name := range remaining {
		for _, dep := range snap.DependenciesOf(name) {
			if broken[dep] {
				broken[name] = true
				o.markFailed(name, fmt.Errorf("dependency %s failed to start", dep))
				break
			}
		}
	}
}

// StopService stops a service. Stopping a stopped or never started service is
// a no-op. The stop is refused with a *api.DependentActiveError while any
// other running or starting service depends on it.
func (o *Orchestrator) StopService(ctx context.Context, name string) error {
	if !o.registry.Has(name) {
		return api.NewServiceNotFoundError(name)
	}
	o.cancelRecovery(name)

	lock := o.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	state, err := o.registry.State(name)
	if err != nil {
		return err
	}
	if state.State == api.StateStopped || state.State == api.StateInactive {
		logging.Debug("Orchestrator", "Service %s is not running", name)
		return nil
	}

	for _, dependent := range o.registry.Dependents(name) {
		depState, err := o.registry.State(dependent)
		if err == nil && (depState.State == api.StateRunning || depState.State == api.StateStarting) {
			return &api.DependentActiveError{Service: name, Dependent: dependent}
		}
	}

	def, err := o.registry.Definition(name)
	if err != nil {
		return err
	}
	if err := o.transition(name, api.StateStopping, nil, nil); err != nil {
		return err
	}

	logging.Info("Orchestrator", "Stopping service: %s", name)
	err = o.runWithTimeout(ctx, name, "stop", o.stopTimeout, func(ctx context.Context) error {
		return o.executor.ExecuteStop(ctx, def)
	})
	if err != nil {
		if terr := o.transition(name, api.StateFailed, err, func(s *services.RuntimeState) {
			s.LastError = err.Error()
		}); terr != nil {
			return terr
		}
		logging.Error("Orchestrator", err, "Failed to stop service %s", name)
		return err
	}

	if err := o.transition(name, api.StateStopped, nil, func(s *services.RuntimeState) {
		s.PID = 0
	}); err != nil {
		return err
	}
	logging.Info("Orchestrator", "Stopped service: %s", name)
	return nil
}

// RestartService restarts a service. A running service with a dedicated
// restart action is restarted in place when the executor supports it;
// otherwise the service is stopped and started again. A failed stop aborts
// the restart.
func (o *Orchestrator) RestartService(ctx context.Context, name string) error {
	def, err := o.registry.Definition(name)
	if err != nil {
		return err
	}

	if restarter, ok := o.executor.(RestartExecutor); ok && def.HasRestartAction() {
		handled, err := o.restartInPlace(ctx, restarter, def)
		if handled {
			return err
		}
	}

	if err := o.StopService(ctx, name); err != nil {
		return err
	}
	if err := o.StartService(ctx, name); err != nil {
		return err
	}
	logging.Info("Orchestrator", "Restarted service: %s", name)
	return nil
}

// restartInPlace runs the dedicated restart action of a running service. It
// reports false when the service is not running, leaving the restart to the
// stop-then-start path.
func (o *Orchestrator) restartInPlace(ctx context.Context, restarter RestartExecutor, def services.Definition) (bool, error) {
	name := def.Name
	lock := o.lockFor(name)
	lock.Lock()
	defer lock.Unlock()

	state, err := o.registry.State(name)
	if err != nil {
		return true, err
	}
	if state.State != api.StateRunning {
		return false, nil
	}

	if err := o.transition(name, api.StateStarting, nil, nil); err != nil {
		return true, err
	}

	logging.Info("Orchestrator", "Restarting service in place: %s", name)
	var pid int
	err = o.runWithTimeout(ctx, name, "restart", o.startupTimeout, func(ctx context.Context) error {
		var execErr error
		pid, execErr = restarter.ExecuteRestart(ctx, def)
		return execErr
	})
	if err != nil {
		if terr := o.transition(name, api.StateFailed, err, func(s *services.RuntimeState) {
			s.LastError = err.Error()
			s.PID = 0
		}); terr != nil {
			return true, terr
		}
		logging.Error("Orchestrator", err, "Failed to restart service %s", name)
		return true, err
	}

	startedAt := o.clock.Now()
	if err := o.transition(name, api.StateRunning, nil, func(s *services.RuntimeState) {
		s.LastError = ""
		if pid != 0 {
			s.PID = pid
		}
		s.StartedAt = startedAt
	}); err != nil {
		return true, err
	}
	logging.Info("Orchestrator", "Restarted service: %s", name)
	return true, nil
}

// runWithTimeout calls fn with a deadline. The call is abandoned when the
// deadline passes even if fn ignores its context. An fn that ignores its
// context keeps its goroutine until it returns; its late result is
// discarded.
func (o *Orchestrator) runWithTimeout(ctx context.Context, name, op string, timeout time.Duration, fn func(context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- fn(callCtx)
	}()

	select {
	case err := <-done:
		if err == nil {
			return nil
		}
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return &api.TimeoutError{Service: name, Op: op, Timeout: timeout}
		}
		return &api.ExecutorError{Service: name, Op: op, Err: err}
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return &api.ExecutorError{Service: name, Op: op, Err: ctx.Err()}
		}
		return &api.TimeoutError{Service: name, Op: op, Timeout: timeout}
	}
}

func (o *Orchestrator) lockFor(name string) *sync.Mutex {
	o.locksMu.Lock()
	defer o.locksMu.Unlock()

	lock, ok := o.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[name] = lock
	}
	return lock
}

// transition changes the state in the registry and publishes the change.
func (o *Orchestrator) transition(name string, to api.ServiceState, cause error, mutate func(*services.RuntimeState)) error {
	from, err := o.registry.Transition(name, to, mutate)
	if err != nil {
		return err
	}
	o.metrics.ObserveTransition(name, from.String(), to.String())
	logging.Debug("Orchestrator", "Service %s: %s -> %s", name, from, to)
	o.publishStateChangeEvent(name, from, to, cause)
	return nil
}

// ServiceStateChangedEvent represents a service state change event.
type ServiceStateChangedEvent struct {
	Name      string
	OldState  api.ServiceState
	NewState  api.ServiceState
	Error     error
	Timestamp time.Time
}

// SubscribeToStateChanges returns a channel for state change events. Events
// are dropped for subscribers that do not keep up.
func (o *Orchestrator) SubscribeToStateChanges() <-chan ServiceStateChangedEvent {
	eventChan := make(chan ServiceStateChangedEvent, 100)
	o.mu.Lock()
	o.stateChangeSubscribers = append(o.stateChangeSubscribers, eventChan)
	o.mu.Unlock()
	return eventChan
}

func (o *Orchestrator) publishStateChangeEvent(name string, oldState, newState api.ServiceState, err error) {
	event := ServiceStateChangedEvent{
		Name:      name,
		OldState:  oldState,
		NewState:  newState,
		Error:     err,
		Timestamp: o.clock.Now(),
	}

	// Publish to all subscribers
	o.mu.RLock()
	subscribers := make([]chan<- ServiceStateChangedEvent, len(o.stateChangeSubscribers))
	copy(subscribers, o.stateChangeSubscribers)
	o.mu.RUnlock()

	for _, subscriber := range subscribers {
		select {
		case subscriber <- event:
		default:
			// Don't block if subscriber can't receive immediately
			logging.Debug("Orchestrator", "Subscriber blocked, skipping event for service %s", name)
		}
	}
}
