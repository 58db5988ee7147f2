// Package topology is the directed acyclic graph over Component IDs the
// harness builds during SimulationHarness.Build, providing the
// deterministic topological order Phase B steps components in.
package topology

import (
	"sort"

	"github.com/leixiaohui-1974/CHS-SDK/diag"
)

// Graph is a directed graph over component IDs, edges (upstream, downstream).
type Graph struct {
	nodes        map[string]struct{}
	successors   map[string][]string
	predecessors map[string][]string
}

// New constructs an empty Graph.
func New() *Graph {
	return &Graph{
		nodes:        make(map[string]struct{}),
		successors:   make(map[string][]string),
		predecessors: make(map[string][]string),
	}
}

// AddNode registers a component ID with no edges yet.
func (g *Graph) AddNode(id string) {
	g.nodes[id] = struct{}{}
}

// AddEdge records a directed connection upstream -> downstream. Both
// endpoints must already be registered via AddNode; the harness
// validates that separately and reports WiringError, not this package.
func (g *Graph) AddEdge(upstream, downstream string) {
	g.successors[upstream] = append(g.successors[upstream], downstream)
	g.predecessors[downstream] = append(g.predecessors[downstream], upstream)
}

// Successors returns downstream IDs of id, in the order edges were added.
func (g *Graph) Successors(id string) []string { return g.successors[id] }

// Predecessors returns upstream IDs of id, in the order edges were added.
func (g *Graph) Predecessors(id string) []string { return g.predecessors[id] }

// Nodes returns every registered node ID.
func (g *Graph) Nodes() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sort computes a deterministic topological order via Kahn's algorithm,
// tie-breaking ready nodes by lexicographic ID. Returns CycleDetected if
// no full ordering exists.
func (g *Graph) Sort() ([]string, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		inDegree[id] = len(g.predecessors[id])
	}

	ready := make([]string, 0)
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		sort.Strings(ready)
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		for _, succ := range g.successors[id] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				ready = append(ready, succ)
			}
		}
	}

	if len(order) != len(g.nodes) {
		return nil, diag.New(diag.CycleDetected, "topology contains a cycle; no topological order exists")
	}
	return order, nil
}
