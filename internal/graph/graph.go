// Package graph implements PLOX's ordering graph: nodes are plugin
// indices assigned from inventory order, edges mean "must load before",
// and every edge accumulates the rule provenance that introduced it. Small
// integer indices are used instead of repeated string hashing in the
// sorter's inner loop, per the design notes on graph representation.
package graph

import "github.com/frederic-klein/plox/internal/rules"

// SelfEdgeError reports that a rule tried to assert a plugin must load
// before itself; the edge is dropped and the run continues.
type SelfEdgeError struct {
	Node int
	Rule rules.Provenance
}

func (e *SelfEdgeError) Error() string {
	return "graph: rule at " + e.Rule.File + " asserts a plugin before itself"
}

// Edge is a directed "From must load before To" constraint, with the
// accumulated provenance of every rule that produced it.
type Edge struct {
	From, To   int
	Provenance []rules.Provenance
}

// Graph is a directed graph over small integer plugin indices.
type Graph struct {
	n       int
	adj     map[int]map[int]*Edge // From -> To -> Edge
	preds   map[int]map[int]bool  // To -> set of From (predecessors)
	dropped []SelfEdgeError
}

// New creates a Graph with n nodes (0..n-1), one per inventory member,
// including isolated ones, so the sorter always sees the full universe.
func New(n int) *Graph {
	return &Graph{
		n:     n,
		adj:   make(map[int]map[int]*Edge),
		preds: make(map[int]map[int]bool),
	}
}

// N returns the number of nodes.
func (g *Graph) N() int { return g.n }

// AddEdge inserts "from must load before to", deduplicating repeated
// insertions of the same pair while appending provenance. A self-edge is
// rejected and recorded via Dropped rather than inserted.
func (g *Graph) AddEdge(from, to int, prov rules.Provenance) {
	if from == to {
		g.dropped = append(g.dropped, SelfEdgeError{Node: from, Rule: prov})
		return
	}
	if g.adj[from] == nil {
		g.adj[from] = make(map[int]*Edge)
	}
	if e, ok := g.adj[from][to]; ok {
		e.Provenance = append(e.Provenance, prov)
		return
	}
	e := &Edge{From: from, To: to, Provenance: []rules.Provenance{prov}}
	g.adj[from][to] = e

	if g.preds[to] == nil {
		g.preds[to] = make(map[int]bool)
	}
	g.preds[to][from] = true
}

// Dropped returns the self-edges rejected during construction.
func (g *Graph) Dropped() []SelfEdgeError {
	return g.dropped
}

// Successors returns the nodes that must load after node, in no
// particular order.
func (g *Graph) Successors(node int) []int {
	out := make([]int, 0, len(g.adj[node]))
	for to := range g.adj[node] {
		out = append(out, to)
	}
	return out
}

// Predecessors returns the nodes that must load before node, in no
// particular order.
func (g *Graph) Predecessors(node int) []int {
	out := make([]int, 0, len(g.preds[node]))
	for from := range g.preds[node] {
		out = append(out, from)
	}
	return out
}

// HasEdge reports whether a "from before to" edge exists.
func (g *Graph) HasEdge(from, to int) bool {
	_, ok := g.adj[from][to]
	return ok
}

// Edge returns the Edge for from->to and whether it exists.
func (g *Graph) Edge(from, to int) (*Edge, bool) {
	e, ok := g.adj[from][to]
	return e, ok
}

// Edges returns every edge in the graph, in no particular order.
func (g *Graph) Edges() []*Edge {
	var out []*Edge
	for _, m := range g.adj {
		for _, e := range m {
			out = append(out, e)
		}
	}
	return out
}
