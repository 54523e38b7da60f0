package graph

import (
	"container/heap"
	"math"
)

// RouteInfo is a shortest path: its total weight and the edges along it in
// travel order.
type RouteInfo struct {
	Weight float64
	Edges  []EdgeID
}

// Router answers shortest-path queries on a graph that no longer changes.
// Queries share no mutable state, so one Router can serve many goroutines.
type Router struct {
	graph *DirectedWeightedGraph
}

// NewRouter wraps g. g must not be modified afterwards.
func NewRouter(g *DirectedWeightedGraph) *Router {
	return &Router{graph: g}
}

type flag struct {
	pathLength float64
	prevEdge   EdgeID
	hasPrev    bool
	visited    bool
}

// BuildRoute runs Dijkstra from `from` and returns the cheapest path to `to`.
// ok is false if `to` cannot be reached.
func (r *Router) BuildRoute(from, to VertexID) (RouteInfo, bool) {
	g := r.graph
	if !g.valid(from) || !g.valid(to) {
		return RouteInfo{}, false
	}
	if from == to {
		return RouteInfo{}, true
	}

	flags := make([]flag, g.VertexCount())
	for i := range flags {
		flags[i].pathLength = math.Inf(1)
	}
	flags[from].pathLength = 0

	pq := &priorityQueue{}
	heap.Push(pq, &queueItem{vertex: from, priority: 0})

	for pq.Len() > 0 {
		curr := heap.Pop(pq).(*queueItem)
		currFlag := &flags[curr.vertex]
		if currFlag.visited {
			continue
		}
		currFlag.visited = true
		if curr.vertex == to {
			break
		}

		for _, edgeID := range g.IncidentEdges(curr.vertex) {
			edge := g.Edge(edgeID)
			otherFlag := &flags[edge.To]
			if otherFlag.visited {
				continue
			}
			newLength := currFlag.pathLength + edge.Weight
			if newLength < otherFlag.pathLength {
				otherFlag.pathLength = newLength
				otherFlag.prevEdge = edgeID
				otherFlag.hasPrev = true
				heap.Push(pq, &queueItem{vertex: edge.To, priority: newLength})
			}
		}
	}

	if !flags[to].hasPrev {
		return RouteInfo{}, false
	}

	var edges []EdgeID
	for v := to; v != from; {
		edgeID := flags[v].prevEdge
		edges = append(edges, edgeID)
		v = g.Edge(edgeID).From
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}
	return RouteInfo{Weight: flags[to].pathLength, Edges: edges}, true
}

type queueItem struct {
	vertex   VertexID
	priority float64
	index    int
}

type priorityQueue []*queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].priority < pq[j].priority
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x interface{}) {
	n := len(*pq)
	item := x.(*queueItem)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[0 : n-1]
	return item
}
