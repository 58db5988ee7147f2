package topology

import (
	"reflect"
	"testing"

	"github.com/leixiaohui-1974/CHS-SDK/diag"
)

func TestSortLexicographicTieBreak(t *testing.T) {
	g := New()
	for _, id := range []string{"zeta", "alpha", "beta"} {
		g.AddNode(id)
	}
	// all three are independent (no edges): ready set ties on all three,
	// lexicographic tie-break must pick alpha, beta, zeta.
	order, err := g.Sort()
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if !reflect.DeepEqual(order, []string{"alpha", "beta", "zeta"}) {
		t.Fatalf("order = %v, want [alpha beta zeta]", order)
	}
}

func TestSortRespectsEdges(t *testing.T) {
	g := New()
	g.AddNode("reservoir")
	g.AddNode("gate")
	g.AddNode("channel")
	g.AddEdge("reservoir", "gate")
	g.AddEdge("gate", "channel")

	order, err := g.Sort()
	if err != nil {
		t.Fatalf("Sort: %v", err)
	}
	index := make(map[string]int, len(order))
	for i, id := range order {
		index[id] = i
	}
	if index["reservoir"] > index["gate"] || index["gate"] > index["channel"] {
		t.Fatalf("order %v violates edges reservoir->gate->channel", order)
	}
}

func TestSortDetectsCycle(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")

	_, err := g.Sort()
	if !diag.IsKind(err, diag.CycleDetected) {
		t.Fatalf("expected CycleDetected, got %v", err)
	}
}

func TestBranchedConfluenceFanIn(t *testing.T) {
	g := New()
	g.AddNode("res-a")
	g.AddNode("res-b")
	g.AddNode("channel")
	g.AddEdge("res-a", "channel")
	g.AddEdge("res-b", "channel")

	preds := g.Predecessors("channel")
	if len(preds) != 2 {
		t.Fatalf("Predecessors(channel) = %v, want 2 entries", preds)
	}
}
