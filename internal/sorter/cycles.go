package sorter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/frederic-klein/plox/internal/graph"
	"github.com/frederic-klein/plox/internal/plugin"
	"github.com/frederic-klein/plox/internal/rules"
)

// Cycle is one non-trivial strongly connected component: the plugins
// participating in it (in inventory order) and the union of rule
// provenance for every edge inside the component.
type Cycle struct {
	Plugins    []plugin.ID
	Provenance []rules.Provenance
}

// CycleReport is the full set of cycles found in an Ordering Graph.
type CycleReport struct {
	Cycles []Cycle
}

// DOT renders the report as a Graphviz "digraph" per SCC, for human
// inspection of exactly which loop closed.
func (r CycleReport) DOT() string {
	var b strings.Builder
	for i, c := range r.Cycles {
		fmt.Fprintf(&b, "digraph cycle%d {\n", i)
		for _, p := range c.Plugins {
			fmt.Fprintf(&b, "  %q;\n", string(p))
		}
		for j := 0; j < len(c.Plugins); j++ {
			from := c.Plugins[j]
			to := c.Plugins[(j+1)%len(c.Plugins)]
			fmt.Fprintf(&b, "  %q -> %q;\n", string(from), string(to))
		}
		b.WriteString("}\n")
	}
	return b.String()
}

type tarjanState struct {
	g        *graph.Graph
	index    []int
	lowlink  []int
	onStack  []bool
	stack    []int
	counter  int
	sccs     [][]int
}

// FindCycles runs Tarjan's strongly-connected-components algorithm over
// g and returns every non-trivial component (size >= 2, or a lone node
// with a self-edge — though self-edges are already rejected at
// construction, so in practice every reported cycle has size >= 2).
// inv resolves node indices back to plugin identifiers for reporting.
func FindCycles(g *graph.Graph, inv plugin.Inventory) CycleReport {
	st := &tarjanState{
		g:       g,
		index:   make([]int, g.N()),
		lowlink: make([]int, g.N()),
		onStack: make([]bool, g.N()),
	}
	for i := range st.index {
		st.index[i] = -1
	}

	for v := 0; v < g.N(); v++ {
		if st.index[v] == -1 {
			st.strongconnect(v)
		}
	}

	var cycles []Cycle
	for _, scc := range st.sccs {
		if len(scc) < 2 {
			continue
		}
		cycles = append(cycles, buildCycle(g, inv, scc))
	}
	return CycleReport{Cycles: cycles}
}

func (st *tarjanState) strongconnect(v int) {
	st.index[v] = st.counter
	st.lowlink[v] = st.counter
	st.counter++
	st.stack = append(st.stack, v)
	st.onStack[v] = true

	for _, w := range sortedInts(st.g.Successors(v)) {
		if st.index[w] == -1 {
			st.strongconnect(w)
			if st.lowlink[w] < st.lowlink[v] {
				st.lowlink[v] = st.lowlink[w]
			}
		} else if st.onStack[w] {
			if st.index[w] < st.lowlink[v] {
				st.lowlink[v] = st.index[w]
			}
		}
	}

	if st.lowlink[v] == st.index[v] {
		var scc []int
		for {
			n := len(st.stack) - 1
			w := st.stack[n]
			st.stack = st.stack[:n]
			st.onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		st.sccs = append(st.sccs, scc)
	}
}

func sortedInts(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	return out
}

func buildCycle(g *graph.Graph, inv plugin.Inventory, scc []int) Cycle {
	members := make(map[int]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}

	sorted := append([]int(nil), scc...)
	sort.Ints(sorted)

	var prov []rules.Provenance
	for _, from := range sorted {
		for _, to := range g.Successors(from) {
			if !members[to] {
				continue
			}
			if e, ok := g.Edge(from, to); ok {
				prov = append(prov, e.Provenance...)
			}
		}
	}

	records := inv.Records()
	plugins := make([]plugin.ID, len(sorted))
	for i, idx := range sorted {
		plugins[i] = records[idx].ID
	}
	return Cycle{Plugins: plugins, Provenance: prov}
}
