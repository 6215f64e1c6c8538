// Package services holds the service registry of rcinit.
//
// The Registry is the single source of truth for service definitions and
// their runtime state. It is created once by the application and handed to
// the resolver, the orchestrator and the run-level controller explicitly;
// there is no package-level state.
//
// # Core Concepts
//
// Definition: the declared identity and policy of a service (dependencies,
// provided capabilities, run-levels, enabled flag, restart policy, opaque
// actions and security context).
//
// RuntimeState: the mutable lifecycle record of a service. It is created
// together with the definition at Register and is only changed through
// Registry.Transition, which enforces the lifecycle state machine:
//
//	Inactive -> Starting -> Running -> Stopping -> Stopped
//	Starting, Stopping -> Failed
//	Stopped, Failed -> Starting
//
// VirtualTable: maps capability names such as "net" to the service currently
// providing them. By default the most recently registered provider wins; the
// reject policy turns a second provider into a VirtualConflictError.
//
// Snapshot: a consistent copy of definitions, capability mappings and states
// taken under one read lock, used for dependency resolution.
//
// # Persistence
//
// Encode and Decode implement the persisted registry contract: a YAML mapping
// from service name to definition with sorted keys. Persistence reads and
// writes that file through config.Storage, which replaces it atomically.
//
// # Thread Safety
//
// All Registry methods are safe for concurrent use.
package services
