package orchestrator

import (
	"rcinit/internal/services"
	"rcinit/pkg/logging"
)

// scheduleRecovery arranges another start attempt for a service whose start
// action failed, if its restart policy allows one more. attempts is the
// number of recovery attempts already made.
func (o *Orchestrator) scheduleRecovery(name string, policy services.RestartPolicy, attempts int) {
	if !policy.ShouldRetry(attempts) {
		if policy.RestartOnFailure {
			logging.Warn("Orchestrator", "Giving up on service %s after %d restart attempts", name, attempts)
		}
		return
	}

	delay := policy.RetryDelay(attempts + 1)

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	if pending, ok := o.retries[name]; ok {
		pending.Stop()
	}
	o.retries[name] = o.clock.AfterFunc(delay, func() {
		o.runRecovery(name)
	})

	o.metrics.IncRecoveryAttempt(name)
	logging.Info("Orchestrator", "Scheduling restart %d/%d of service %s in %s", attempts+1, policy.MaxAttempts, name, delay)
}

// runRecovery performs a scheduled start attempt.
func (o *Orchestrator) runRecovery(name string) {
	o.mu.Lock()
	delete(o.retries, name)
	closed := o.closed
	ctx := o.ctx
	o.mu.Unlock()

	if closed {
		return
	}

	if err := o.registry.UpdateState(name, func(s *services.RuntimeState) {
		s.RestartCount++
	}); err != nil {
		logging.Debug("Orchestrator", "Skipping restart of removed service %s", name)
		return
	}

	if err := o.StartService(ctx, name); err != nil {
		logging.Warn("Orchestrator", "Restart attempt of service %s failed: %v", name, err)
	}
}

// cancelRecovery drops a pending start attempt, if any.
func (o *Orchestrator) cancelRecovery(name string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if pending, ok := o.retries[name]; ok {
		pending.Stop()
		delete(o.retries, name)
		logging.Debug("Orchestrator", "Cancelled pending restart of service %s", name)
	}
}

// PendingRecoveries returns the number of scheduled start attempts.
func (o *Orchestrator) PendingRecoveries() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.retries)
}
