package graph

import (
	"container/heap"
	"errors"

	"bikefleet/pkg/geo"
)

var ErrNoPath = errors.New("destination unreachable")

// Graph is the static road network: geographic nodes joined by undirected
// edges whose weight is the haversine distance between the endpoints.
// It is loaded once at startup and never mutated, so reads need no locking.
type Graph struct {
	nodes     map[string]geo.Point
	adjacency map[string][]string
}

func New() *Graph {
	return &Graph{
		nodes:     make(map[string]geo.Point),
		adjacency: make(map[string][]string),
	}
}

func (g *Graph) AddNode(id string, lat, lon float64) {
	g.nodes[id] = geo.Point{Lat: lat, Lon: lon}
}

func (g *Graph) AddEdge(src, dst string) {
	g.adjacency[src] = append(g.adjacency[src], dst)
	g.adjacency[dst] = append(g.adjacency[dst], src)
}

func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// Node returns the position of a node id.
func (g *Graph) Node(id string) (geo.Point, bool) {
	p, ok := g.nodes[id]
	return p, ok
}

// NearestNode linear-scans all nodes for the minimum haversine distance to
// the query point. Fine at the node counts we load; a spatial index would
// slot in behind this signature for bigger maps.
func (g *Graph) NearestNode(lat, lon float64) string {
	q := geo.Point{Lat: lat, Lon: lon}

	best := -1.0
	bestID := ""
	for id, p := range g.nodes {
		d := geo.Haversine(q, p)
		if best < 0 || d < best || (d == best && id < bestID) {
			best = d
			bestID = id
		}
	}
	return bestID
}

// ShortestPath runs Dijkstra from origin to dest with distance as the edge
// weight. Ties resolve to whichever node the priority queue extracts first.
// It returns the node sequence and the total distance in meters, or ErrNoPath
// when dest is unreachable.
func (g *Graph) ShortestPath(origin, dest string) ([]string, float64, error) {
	if _, ok := g.nodes[origin]; !ok {
		return nil, 0, ErrNoPath
	}
	if _, ok := g.nodes[dest]; !ok {
		return nil, 0, ErrNoPath
	}

	dist := map[string]float64{origin: 0}
	prev := map[string]string{}
	visited := map[string]bool{}

	pq := &nodeQueue{{id: origin, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		item := heap.Pop(pq).(nodeItem)
		if visited[item.id] {
			continue
		}
		visited[item.id] = true
		if item.id == dest {
			break
		}

		for _, next := range g.adjacency[item.id] {
			w := geo.Haversine(g.nodes[item.id], g.nodes[next])
			nd := item.dist + w
			if cur, seen := dist[next]; !seen || nd < cur {
				dist[next] = nd
				prev[next] = item.id
				heap.Push(pq, nodeItem{id: next, dist: nd})
			}
		}
	}

	total, reached := dist[dest]
	if !reached || !visited[dest] {
		return nil, 0, ErrNoPath
	}

	var path []string
	for cur := dest; cur != origin; cur = prev[cur] {
		path = append(path, cur)
	}
	path = append(path, origin)
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path, total, nil
}

type nodeItem struct {
	id   string
	dist float64
}

type nodeQueue []nodeItem

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(nodeItem)) }
func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
