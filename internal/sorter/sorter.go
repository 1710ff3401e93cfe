// Package sorter turns an internal/graph.Graph over a plugin.Inventory
// into a linear load order. Two algorithms are provided: Stable, a
// minimal-perturbation pairwise-swap pass, and Unstable, a Kahn's-algorithm
// pass biased toward original inventory order. Stable repeats its scan
// until a fixed point; both bail out into cycle reporting rather than
// looping forever.
package sorter

import (
	"container/heap"
	"fmt"

	"github.com/frederic-klein/plox/internal/graph"
	"github.com/frederic-klein/plox/internal/plugin"
)

// CycleError is returned when a sort cannot complete because the
// Ordering Graph contains a cycle. Report holds the offending SCCs.
type CycleError struct {
	Report CycleReport
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("sorter: %d cycle(s) prevent a total order", len(e.Report.Cycles))
}

// Stable performs a repeated fixed-point pairwise-swap: it returns a
// permutation of inv respecting every edge in g, chosen to be as close as
// possible to inv's original order. If a full pass makes no moves, the
// order is final; if the |S|²·c scan bound is exceeded, a cycle is
// assumed and cycle detection is invoked to report it.
func Stable(inv plugin.Inventory, g *graph.Graph) ([]plugin.ID, error) {
	n := inv.Len()
	seq := make([]int, n)
	pos := make([]int, n)
	for i := 0; i < n; i++ {
		seq[i] = i
		pos[i] = i
	}

	const c = 4
	bound := n * n * c
	scans := 0

	for {
		moved := false
		for i := 0; i < len(seq); i++ {
			x := seq[i]
			for j := i + 1; j < len(seq); j++ {
				y := seq[j]
				if g.HasEdge(y, x) {
					// y must load before x: move y to position i.
					copy(seq[i+1:j+1], seq[i:j])
					seq[i] = y
					moved = true
					break
				}
			}
			if moved {
				break
			}
		}
		scans++
		if !moved {
			break
		}
		if scans > bound {
			report := FindCycles(g, inv)
			return nil, &CycleError{Report: report}
		}
	}

	return toIDs(inv, seq), nil
}

func toIDs(inv plugin.Inventory, seq []int) []plugin.ID {
	out := make([]plugin.ID, len(seq))
	for i, idx := range seq {
		out[i] = inv.Records()[idx].ID
	}
	return out
}

// indexHeap is a min-heap of node indices, used by Unstable so that
// among ready nodes (no remaining predecessors), the one earliest in the
// original inventory order is emitted first.
type indexHeap []int

func (h indexHeap) Len() int            { return len(h) }
func (h indexHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x interface{}) { *h = append(*h, x.(int)) }
func (h *indexHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}

// Unstable performs Kahn's algorithm over g, breaking ties among ready
// nodes by original inventory index. It is the faster, more-perturbing
// alternative to Stable.
func Unstable(inv plugin.Inventory, g *graph.Graph) ([]plugin.ID, error) {
	n := inv.Len()
	indeg := make([]int, n)
	for _, e := range g.Edges() {
		indeg[e.To]++
	}

	h := &indexHeap{}
	heap.Init(h)
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			heap.Push(h, i)
		}
	}

	order := make([]int, 0, n)
	for h.Len() > 0 {
		node := heap.Pop(h).(int)
		order = append(order, node)
		for _, to := range g.Successors(node) {
			indeg[to]--
			if indeg[to] == 0 {
				heap.Push(h, to)
			}
		}
	}

	if len(order) != n {
		report := FindCycles(g, inv)
		return nil, &CycleError{Report: report}
	}

	return toIDs(inv, order), nil
}
