package dependency

import (
	"sort"
	"time"

	"rcinit/internal/services"
	"rcinit/pkg/logging"
)

// Observer receives resolution timings. *metrics.Recorder implements it.
type Observer interface {
	ObserveResolution(runLevel string, d time.Duration, err error)
}

// Resolver computes run-level start orders from the service registry.
type Resolver struct {
	registry *services.Registry
	observer Observer
}

// NewResolver creates a resolver over reg. observer may be nil.
func NewResolver(reg *services.Registry, observer Observer) *Resolver {
	return &Resolver{
		registry: reg,
		observer: observer,
	}
}

// ResolveOrder returns the start order of every service tagged with runLevel.
// It works on a registry snapshot, so concurrent registrations never produce a
// graph with dangling edges. Repeated calls without registry changes return
// identical orders.
func (r *Resolver) ResolveOrder(runLevel string) ([]string, error) {
	started := time.Now()
	order, err := BuildGraph(r.registry.Snapshot(), runLevel).TopologicalOrder()
	if r.observer != nil {
		r.observer.ObserveResolution(runLevel, time.Since(started), err)
	}
	if err != nil {
		logging.Warn("Resolver", "Failed to resolve run-level %s: %v", runLevel, err)
		return nil, err
	}

	logging.Debug("Resolver", "Resolved run-level %s: %v", runLevel, order)
	return order, nil
}

// RunLevels returns every run-level named by a registered definition, sorted.
func (r *Resolver) RunLevels() []string {
	seen := map[string]bool{}
	var levels []string
	for _, def := range r.registry.Definitions() {
		for _, level := range def.RunLevels {
			if !seen[level] {
				seen[level] = true
				levels = append(levels, level)
			}
		}
	}
	sort.Strings(levels)
	return levels
}

// BuildGraph builds the dependency graph of a run-level: nodes are the services
// tagged with runLevel, edges are their dependencies resolved through the
// captured capability table. Edges to services outside the run-level are kept
// on the node but ignored by the graph.
func BuildGraph(snap *services.Snapshot, runLevel string) *Graph {
	g := New()
	for name, def := range snap.Definitions {
		if !def.InRunLevel(runLevel) {
			continue
		}
		g.AddNode(Node{ID: name, DependsOn: snap.DependenciesOf(name)})
	}
	return g
}
