package graph

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"bikefleet/pkg/geo"
)

// square builds a 4-node ring A-B-C-D-A with ~equal edge lengths and no
// diagonal.
func square() *Graph {
	g := New()
	g.AddNode("A", 0, 0)
	g.AddNode("B", 0, 0.01)
	g.AddNode("C", 0.01, 0.01)
	g.AddNode("D", 0.01, 0)
	g.AddEdge("A", "B")
	g.AddEdge("B", "C")
	g.AddEdge("C", "D")
	g.AddEdge("D", "A")
	return g
}

func TestShortestPathAcrossSquare(t *testing.T) {
	g := square()

	path, total, err := g.ShortestPath("A", "C")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(path) != 3 {
		t.Fatalf("expected a two-edge path, got %v", path)
	}
	if path[0] != "A" || path[2] != "C" {
		t.Fatalf("path does not run A..C: %v", path)
	}

	a, _ := g.Node("A")
	b, _ := g.Node("B")
	edge := geo.Haversine(a, b)
	if math.Abs(total-2*edge) > edge*0.01 {
		t.Fatalf("expected total ~2 edges (%f), got %f", 2*edge, total)
	}
}

func TestShortestPathSameNode(t *testing.T) {
	g := square()

	path, total, err := g.ShortestPath("B", "B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(path) != 1 || path[0] != "B" {
		t.Fatalf("expected single-node path, got %v", path)
	}
	if total != 0 {
		t.Fatalf("expected zero distance, got %f", total)
	}
}

func TestShortestPathUnreachable(t *testing.T) {
	g := square()
	g.AddNode("X", 5, 5)

	if _, _, err := g.ShortestPath("A", "X"); err != ErrNoPath {
		t.Fatalf("expected ErrNoPath, got %v", err)
	}
	if _, _, err := g.ShortestPath("A", "missing"); err != ErrNoPath {
		t.Fatalf("expected ErrNoPath for unknown node, got %v", err)
	}
}

func TestNearestNode(t *testing.T) {
	g := square()

	if id := g.NearestNode(0.0001, 0.0001); id != "A" {
		t.Fatalf("expected A, got %s", id)
	}
	if id := g.NearestNode(0.0099, 0.0002); id != "D" {
		t.Fatalf("expected D, got %s", id)
	}
}

func TestLoadFromCSV(t *testing.T) {
	dir := t.TempDir()
	nodes := filepath.Join(dir, "nodes.csv")
	edges := filepath.Join(dir, "edges.csv")

	if err := os.WriteFile(nodes, []byte("id,lat,lon\nn1,1.29,103.85\nn2,1.30,103.86\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(edges, []byte("src,dst\nn1,n2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	g, err := Load(nodes, edges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.NodeCount() != 2 {
		t.Fatalf("expected 2 nodes, got %d", g.NodeCount())
	}

	path, _, err := g.ShortestPath("n1", "n2")
	if err != nil || len(path) != 2 {
		t.Fatalf("expected direct path, got %v (%v)", path, err)
	}
}

func TestLoadRejectsDanglingEdge(t *testing.T) {
	dir := t.TempDir()
	nodes := filepath.Join(dir, "nodes.csv")
	edges := filepath.Join(dir, "edges.csv")

	if err := os.WriteFile(nodes, []byte("id,lat,lon\nn1,1.29,103.85\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(edges, []byte("src,dst\nn1,ghost\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(nodes, edges); err == nil {
		t.Fatal("expected error for edge to unknown node")
	}
}
