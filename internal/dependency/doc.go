// Package dependency resolves service start orders for rcinit.
//
// A Graph is derived per resolution from a registry snapshot and never
// persisted. Its nodes are the services tagged with the requested run-level;
// its edges are their dependencies after capability names have been replaced
// by the providing service. Edges to services outside the run-level are
// dropped: such a dependency is treated as already satisfied.
//
// # Ordering
//
// TopologicalOrder runs Kahn's algorithm and always emits the
// lexicographically smallest ready node, so a given graph has exactly one
// order regardless of registration order:
//
//	network (provides net)
//	dhcp    -> net
//	sshd    -> net, dhcp
//
//	ResolveOrder("default") == [network dhcp sshd]
//
// # Cycles
//
// When fewer nodes are emitted than exist, the rest contain at least one
// cycle. The returned *api.CircularDependencyError names the members of a
// shortest such cycle in dependency order. No partial order is returned.
package dependency
