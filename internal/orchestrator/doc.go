// Package orchestrator supervises the lifecycle of rcinit services.
//
// The Orchestrator owns every runtime state transition of the services in a
// services.Registry. Process handling is delegated to a ProcessExecutor.
//
// # State Machine
//
//	Inactive -> Starting -> Running -> Stopping -> Stopped
//	Starting, Stopping -> Failed
//	Stopped, Failed -> Starting
//	Running -> Starting (dedicated restart action)
//
// # Starting
//
// StartService walks the dependency closure of the requested service before
// executing anything. The walk is iterative and carries the path of services
// currently being started, so a cycle among non-running services is reported
// as *api.CircularDependencyError without side effects. Dependencies are then
// started in order; the first failure aborts the rest, marks the affected
// dependents Failed and returns a chain of *api.DependencyStartFailedError.
//
// Starting a running service does not call the executor. StartService does
// not look at the Enabled flag; only run-level bulk starts honour it.
//
// # Stopping
//
// StopService refuses to stop a service while another running service
// depends on it, directly or through a capability it provides, and returns
// *api.DependentActiveError without changing any state.
//
// # Timeouts and Recovery
//
// Every executor call is bounded by the startup or stop timeout. A call that
// has not returned by then fails the service with *api.TimeoutError.
//
// When a start action fails and the restart policy of the service allows it,
// another start is scheduled on the Clock after the policy delay. Stopping
// the service or closing the orchestrator cancels pending attempts.
//
// # Concurrency
//
// Each service has its own mutex. A second transition on the same service
// blocks until the first completes. Transitions on different services run in
// parallel, and no transition holds two service locks.
//
// # Events
//
// SubscribeToStateChanges delivers ServiceStateChangedEvent values for every
// transition. Delivery is non-blocking: slow subscribers miss events.
package orchestrator
