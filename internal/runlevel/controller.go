package runlevel

import (
	"context"
	"slices"
	"sync"

	"rcinit/internal/services"
	"rcinit/pkg/logging"
)

// DefaultInitialRunlevel is the run-level a controller reports before any
// switch has completed.
const DefaultInitialRunlevel = "sysinit"

// Supervisor drives single-service lifecycle transitions.
// *orchestrator.Orchestrator implements it.
type Supervisor interface {
	StartService(ctx context.Context, name string) error
	StopService(ctx context.Context, name string) error
}

// Resolver computes the start order of a run-level.
// *dependency.Resolver implements it.
type Resolver interface {
	ResolveOrder(runLevel string) ([]string, error)
}

// MetricsRecorder records bulk operation outcomes.
// *metrics.Recorder implements it.
type MetricsRecorder interface {
	ObserveBulk(operation string, failed bool)
}

// Config holds the collaborators of a Controller.
type Config struct {
	Resolver   Resolver
	Supervisor Supervisor
	// Registry is consulted for the Enabled flag by StartEnabledServices.
	Registry *services.Registry
	Metrics  MetricsRecorder
	// InitialRunlevel defaults to DefaultInitialRunlevel.
	InitialRunlevel string
}

// Controller switches the system between run-levels and shuts it down.
// Bulk operations are serialized; each one drives services strictly one at a
// time in resolved order.
type Controller struct {
	resolver   Resolver
	supervisor Supervisor
	registry   *services.Registry
	metrics    MetricsRecorder

	opMu sync.Mutex

	mu      sync.RWMutex
	current string
}

// NewController creates a Controller.
func NewController(cfg Config) *Controller {
	initial := cfg.InitialRunlevel
	if initial == "" {
		initial = DefaultInitialRunlevel
	}
	return &Controller{
		resolver:   cfg.Resolver,
		supervisor: cfg.Supervisor,
		registry:   cfg.Registry,
		metrics:    cfg.Metrics,
		current:    initial,
	}
}

// CurrentRunlevel returns the last run-level fully switched to.
func (c *Controller) CurrentRunlevel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *Controller) setCurrent(level string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = level
}

// SwitchRunlevel starts every service of target in dependency order,
// regardless of the Enabled flag.
//
// A resolution failure is returned with a nil Result and nothing is started.
// Otherwise one failing service does not prevent the rest from being
// attempted; the returned error is the Result's aggregated error, or the
// context error when the switch was cancelled part way.
func (c *Controller) SwitchRunlevel(ctx context.Context, target string) (*Result, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	order, err := c.resolver.ResolveOrder(target)
	if err != nil {
		logging.Error("RunlevelController", err, "Cannot switch to run-level %s", target)
		c.observe(OperationSwitch, true)
		return nil, err
	}

	logging.Info("RunlevelController", "Switching to run-level %s (%d services)", target, len(order))
	return c.runStarts(ctx, OperationSwitch, target, order)
}

// StartEnabledServices starts the enabled services of runLevel in resolved
// order. Services that are not enabled are left untouched and do not appear
// in the Result. This is the entry point used at boot.
func (c *Controller) StartEnabledServices(ctx context.Context, runLevel string) (*Result, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	order, err := c.resolver.ResolveOrder(runLevel)
	if err != nil {
		logging.Error("RunlevelController", err, "Cannot start enabled services of run-level %s", runLevel)
		c.observe(OperationStartEnabled, true)
		return nil, err
	}

	enabled := make([]string, 0, len(order))
	for _, name := range order {
		if c.isEnabled(name) {
			enabled = append(enabled, name)
		}
	}

	logging.Info("RunlevelController", "Starting %d of %d services in run-level %s",
		len(enabled), len(order), runLevel)
	return c.runStarts(ctx, OperationStartEnabled, runLevel, enabled)
}

// Boot runs StartEnabledServices for each run-level of sequence in turn.
// A resolution failure or cancellation aborts the sequence; service
// failures are collected and the remaining run-levels are still booted.
func (c *Controller) Boot(ctx context.Context, sequence []string) ([]*Result, error) {
	results := make([]*Result, 0, len(sequence))
	berr := &BulkError{Operation: OperationStartEnabled, RunLevel: "boot"}
	for _, level := range sequence {
		result, err := c.StartEnabledServices(ctx, level)
		if result == nil {
			return results, err
		}
		results = append(results, result)
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		berr.Add(err)
	}
	return results, berr.Err()
}

// Shutdown stops the services of the current run-level in reverse start
// order. The current run-level is left unchanged.
func (c *Controller) Shutdown(ctx context.Context) (*Result, error) {
	return c.StopRunlevel(ctx, c.CurrentRunlevel())
}

// StopRunlevel stops the services of runLevel in reverse start order,
// aggregating failures like SwitchRunlevel.
func (c *Controller) StopRunlevel(ctx context.Context, runLevel string) (*Result, error) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	order, err := c.resolver.ResolveOrder(runLevel)
	if err != nil {
		logging.Error("RunlevelController", err, "Cannot shut down run-level %s", runLevel)
		c.observe(OperationShutdown, true)
		return nil, err
	}
	slices.Reverse(order)

	logging.Info("RunlevelController", "Shutting down run-level %s (%d services)", runLevel, len(order))
	result := newResult(OperationShutdown, runLevel, order)
	return c.complete(result, c.drive(ctx, result, c.supervisor.StopService))
}

func (c *Controller) runStarts(ctx context.Context, op Operation, runLevel string, order []string) (*Result, error) {
	result := newResult(op, runLevel, order)
	cancelErr := c.drive(ctx, result, c.supervisor.StartService)
	if cancelErr == nil {
		c.setCurrent(runLevel)
	}
	return c.complete(result, cancelErr)
}

// drive applies fn to each service of result in order. It returns the
// context error when ctx ended before every service was attempted.
func (c *Controller) drive(ctx context.Context, result *Result, fn func(context.Context, string) error) error {
	for i, name := range result.Order {
		if ctx.Err() != nil {
			logging.Warn("RunlevelController", "%s %s cancelled, %d services not attempted",
				result.Operation, result.RunLevel, len(result.Order)-i)
			return ctx.Err()
		}
		err := fn(ctx, name)
		if err != nil {
			logging.Error("RunlevelController", err, "%s %s: service %s failed", result.Operation, result.RunLevel, name)
		}
		result.record(i, err)
	}
	return nil
}

func (c *Controller) complete(result *Result, cancelErr error) (*Result, error) {
	result.finish()
	err := result.Err()
	if cancelErr != nil {
		err = cancelErr
		if len(result.Failed()) > 0 {
			logging.Warn("RunlevelController", "%s %s cancelled after failures: %v",
				result.Operation, result.RunLevel, result.Err())
		}
	}
	c.observe(result.Operation, err != nil)

	if err == nil {
		logging.Info("RunlevelController", "%s %s completed: %d services",
			result.Operation, result.RunLevel, len(result.Completed()))
	}
	return result, err
}

func (c *Controller) isEnabled(name string) bool {
	if c.registry == nil {
		return false
	}
	def, err := c.registry.Definition(name)
	if err != nil {
		return false
	}
	return def.Enabled
}

func (c *Controller) observe(op Operation, failed bool) {
	if c.metrics != nil {
		c.metrics.ObserveBulk(string(op), failed)
	}
}
