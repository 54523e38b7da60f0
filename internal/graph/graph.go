// Package graph is a small directed weighted graph with a shortest-path
// search over it. Vertices are dense ids in [0, VertexCount).
package graph

import "fmt"

type (
	VertexID int
	EdgeID   int
)

// Edge is a directed edge with a non-negative weight.
type Edge struct {
	From   VertexID
	To     VertexID
	Weight float64
}

// DirectedWeightedGraph stores edges in insertion order plus an outgoing
// incidence list per vertex.
type DirectedWeightedGraph struct {
	edges     []Edge
	incidence [][]EdgeID
}

// New creates a graph with vertexCount vertices and no edges.
func New(vertexCount int) *DirectedWeightedGraph {
	return &DirectedWeightedGraph{
		incidence: make([][]EdgeID, vertexCount),
	}
}

// AddEdge appends an edge and returns its id.
func (g *DirectedWeightedGraph) AddEdge(e Edge) (EdgeID, error) {
	if !g.valid(e.From) || !g.valid(e.To) {
		return 0, fmt.Errorf("edge %d -> %d: vertex out of range [0, %d)", e.From, e.To, len(g.incidence))
	}
	if e.Weight < 0 {
		return 0, fmt.Errorf("edge %d -> %d: negative weight %f", e.From, e.To, e.Weight)
	}
	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, e)
	g.incidence[e.From] = append(g.incidence[e.From], id)
	return id, nil
}

func (g *DirectedWeightedGraph) VertexCount() int { return len(g.incidence) }

func (g *DirectedWeightedGraph) EdgeCount() int { return len(g.edges) }

// Edge returns the edge with the given id. The id must come from AddEdge.
func (g *DirectedWeightedGraph) Edge(id EdgeID) Edge {
	return g.edges[id]
}

// IncidentEdges returns the ids of the edges leaving v.
func (g *DirectedWeightedGraph) IncidentEdges(v VertexID) []EdgeID {
	return g.incidence[v]
}

func (g *DirectedWeightedGraph) valid(v VertexID) bool {
	return v >= 0 && int(v) < len(g.incidence)
}
