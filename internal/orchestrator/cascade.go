package orchestrator

import (
	"slices"

	"rcinit/internal/api"
	"rcinit/internal/services"
)

// planFrame is one service on the walk stack with the index of the next
// dependency to visit.
type planFrame struct {
	name string
	deps []string
	next int
}

// buildStartPlan returns the services to start for target, dependencies
// first and target last. Running dependencies are treated as satisfied and
// not descended into.
//
// The walk is an iterative depth-first search carrying the ordered path of
// services currently being started. Meeting a service already on the path
// is an ad-hoc cycle: direct start requests are not run-level gated, so such
// cycles can exist outside any resolved graph.
func buildStartPlan(snap *services.Snapshot, target string) ([]string, error) {
	var plan []string
	planned := map[string]bool{}
	onPath := map[string]bool{target: true}
	path := []string{target}
	stack := []*planFrame{{name: target, deps: snap.DependenciesOf(target)}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next == len(top.deps) {
			stack = stack[:len(stack)-1]
			path = path[:len(path)-1]
			delete(onPath, top.name)
			planned[top.name] = true
			plan = append(plan, top.name)
			continue
		}

		dep := top.deps[top.next]
		top.next++

		if onPath[dep] {
			start := slices.Index(path, dep)
			return nil, &api.CircularDependencyError{Members: slices.Clone(path[start:])}
		}
		if planned[dep] {
			continue
		}
		if _, ok := snap.Definitions[dep]; !ok {
			var err error = &api.DependencyStartFailedError{
				Service:    top.name,
				Dependency: dep,
				Cause:      api.NewServiceNotFoundError(dep),
			}
			for i := len(path) - 2; i >= 0; i-- {
				err = &api.DependencyStartFailedError{Service: path[i], Dependency: path[i+1], Cause: err}
			}
			return nil, err
		}
		if snap.States[dep] == api.StateRunning {
			continue
		}

		onPath[dep] = true
		path = append(path, dep)
		stack = append(stack, &planFrame{name: dep, deps: snap.DependenciesOf(dep)})
	}
	return plan, nil
}

// dependencyChain wraps the failure of plan member failed into nested
// DependencyStartFailedErrors along a dependency path from target to it.
func dependencyChain(snap *services.Snapshot, plan []string, target, failed string, cause error) error {
	inPlan := make(map[string]bool, len(plan))
	for _, name := range plan {
		inPlan[name] = true
	}

	// Breadth-first search from target towards failed inside the plan.
	parent := map[string]string{}
	queue := []string{target}
	seen := map[string]bool{target: true}
	for len(queue) > 0 && !seen[failed] {
		current := queue[0]
		queue = queue[1:]
		for _, dep := range snap.DependenciesOf(current) {
			if inPlan[dep] && !seen[dep] {
				seen[dep] = true
				parent[dep] = current
				queue = append(queue, dep)
			}
		}
	}

	if !seen[failed] {
		return &api.DependencyStartFailedError{Service: target, Dependency: failed, Cause: cause}
	}

	err := cause
	for child := failed; child != target; child = parent[child] {
		err = &api.DependencyStartFailedError{Service: parent[child], Dependency: child, Cause: err}
	}
	return err
}
