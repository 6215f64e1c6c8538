// Package runlevel drives whole run-levels through the orchestrator.
//
// A Controller resolves the start order of a run-level and then hands each
// service, one at a time, to its Supervisor. Failures never abort the walk:
// every service gets an Outcome in the returned Result and the failures are
// aggregated into a BulkError. Cancelling the context stops new transitions
// from being issued; the remaining services are reported as not attempted.
//
// SwitchRunlevel starts every service of the target regardless of its
// Enabled flag. StartEnabledServices is the enablement gate used at boot and
// skips disabled services. Shutdown stops the current run-level in reverse
// start order.
//
//	ctrl := runlevel.NewController(runlevel.Config{
//	    Resolver:   dependency.NewResolver(reg, rec),
//	    Supervisor: orch,
//	    Registry:   reg,
//	})
//	result, err := ctrl.SwitchRunlevel(ctx, "default")
package runlevel
