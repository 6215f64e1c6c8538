// Package api holds the types shared by every rcinit package: the service
// lifecycle state and the typed errors returned by the registry, the
// resolver, the orchestrator and the run-level controller.
//
// The package imports no other rcinit package, so any package can depend on
// it without creating cycles.
//
// # Service States
//
// ServiceState is a closed set. CanTransition encodes the lifecycle state
// machine; the registry rejects any other change with InvalidTransitionError.
//
// # Errors
//
// Every error kind has a concrete type and, where callers branch on it, an Is
// helper built on errors.As:
//
//	if err := orch.StopService(ctx, "network"); api.IsDependentActive(err) {
//	    // stop the dependents first
//	}
//
// DependencyStartFailedError and ExecutorError unwrap to their cause, so
// errors.Is reaches the error returned by the process executor. TimeoutError
// unwraps to context.DeadlineExceeded.
package api
