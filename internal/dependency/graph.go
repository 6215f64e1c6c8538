package dependency

import (
	"container/heap"
	"slices"
	"sort"

	"rcinit/internal/api"
)

// Node is a service in a dependency graph together with the services it
// depends on. DependsOn holds concrete service names; capability names must be
// resolved before a node is added.
type Node struct {
	ID        string
	DependsOn []string
}

// Graph is a small helper to answer dependency queries and compute start
// orders. It is *not* thread-safe by itself; it is built per resolution from a
// registry snapshot and discarded afterwards.
type Graph struct {
	nodes map[string]*Node
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// AddNode adds (or replaces) a node in the graph. Duplicate dependencies are
// collapsed into a single edge.
func (g *Graph) AddNode(n Node) {
	if g.nodes == nil {
		g.nodes = make(map[string]*Node)
	}
	deps := make([]string, 0, len(n.DependsOn))
	for _, dep := range n.DependsOn {
		if !slices.Contains(deps, dep) {
			deps = append(deps, dep)
		}
	}
	g.nodes[n.ID] = &Node{ID: n.ID, DependsOn: deps}
}

// Get returns the stored node or nil if it does not exist.
func (g *Graph) Get(id string) *Node {
	return g.nodes[id]
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Dependencies returns the immediate dependencies of id that are part of the
// graph. Edges pointing outside the graph are treated as already satisfied. A
// self-edge, as left by a service depending on a capability it provides
// itself, is kept and makes the node unorderable.
func (g *Graph) Dependencies(id string) []string {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	deps := make([]string, 0, len(n.DependsOn))
	for _, dep := range n.DependsOn {
		if _, in := g.nodes[dep]; in {
			deps = append(deps, dep)
		}
	}
	return deps
}

// Dependents returns, sorted, all node IDs that have a direct dependency on id.
func (g *Graph) Dependents(id string) []string {
	var res []string
	for _, n := range g.nodes {
		if n.ID != id && slices.Contains(n.DependsOn, id) {
			res = append(res, n.ID)
		}
	}
	sort.Strings(res)
	return res
}

// TopologicalOrder returns every node so that each one comes after all of its
// dependencies. Among the nodes that are ready at any step the
// lexicographically smallest is emitted first, which makes the order unique
// for a given graph.
//
// If some nodes cannot be ordered the graph contains a cycle and a
// *api.CircularDependencyError naming a shortest cycle is returned.
func (g *Graph) TopologicalOrder() ([]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	dependents := make(map[string][]string, len(g.nodes))
	for id := range g.nodes {
		deps := g.Dependencies(id)
		inDegree[id] = len(deps)
		for _, dep := range deps {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	ready := &nameHeap{}
	for id, degree := range inDegree {
		if degree == 0 {
			heap.Push(ready, id)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for ready.Len() > 0 {
		id := heap.Pop(ready).(string)
		order = append(order, id)
		for _, dependent := range dependents[id] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				heap.Push(ready, dependent)
			}
		}
	}

	if len(order) < len(g.nodes) {
		remaining := make(map[string]bool, len(g.nodes)-len(order))
		for id, degree := range inDegree {
			if degree > 0 {
				remaining[id] = true
			}
		}
		return nil, &api.CircularDependencyError{Members: g.shortestCycle(remaining)}
	}
	return order, nil
}

// shortestCycle finds a shortest cycle among the given unresolved nodes by a
// breadth-first search from each of them, in name order. The members are
// returned in dependency order starting at the first node that lies on a
// shortest cycle.
func (g *Graph) shortestCycle(remaining map[string]bool) []string {
	starts := make([]string, 0, len(remaining))
	for id := range remaining {
		starts = append(starts, id)
	}
	sort.Strings(starts)

	var best []string
	for _, start := range starts {
		cycle := g.cycleThrough(start, remaining)
		if cycle != nil && (best == nil || len(cycle) < len(best)) {
			best = cycle
		}
	}
	if best == nil {
		// Unreachable for a graph with unresolved nodes; report them all.
		return starts
	}
	return best
}

func (g *Graph) cycleThrough(start string, remaining map[string]bool) []string {
	parent := map[string]string{}
	queue := []string{start}
	visited := map[string]bool{start: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		deps := g.Dependencies(current)
		sort.Strings(deps)
		for _, dep := range deps {
			if !remaining[dep] {
				continue
			}
			if dep == start {
				path := []string{current}
				for path[len(path)-1] != start {
					path = append(path, parent[path[len(path)-1]])
				}
				slices.Reverse(path)
				return path
			}
			if !visited[dep] {
				visited[dep] = true
				parent[dep] = current
				queue = append(queue, dep)
			}
		}
	}
	return nil
}

// nameHeap is a min-heap of service names.
type nameHeap []string

func (h nameHeap) Len() int           { return len(h) }
func (h nameHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h nameHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *nameHeap) Push(x any) {
	*h = append(*h, x.(string))
}

func (h *nameHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
