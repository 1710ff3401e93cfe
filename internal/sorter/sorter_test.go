package sorter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frederic-klein/plox/internal/graph"
	"github.com/frederic-klein/plox/internal/plugin"
	"github.com/frederic-klein/plox/internal/rules"
)

func inventoryOf(names ...string) plugin.Inventory {
	recs := make([]plugin.Record, len(names))
	for i, n := range names {
		recs[i] = plugin.NewRecord(plugin.ID(n), plugin.Metadata{})
	}
	return plugin.NewInventory(recs)
}

func prov(line int) rules.Provenance {
	return rules.Provenance{File: "test.txt", Line: line}
}

func TestStableNoEdgesPreservesOrder(t *testing.T) {
	inv := inventoryOf("A.esp", "B.esp", "C.esp")
	g := graph.New(inv.Len())
	order, err := Stable(inv, g)
	require.NoError(t, err)
	assert.Equal(t, []plugin.ID{"A.esp", "B.esp", "C.esp"}, order)
}

func TestStableMovesPredecessorForward(t *testing.T) {
	inv := inventoryOf("A.esp", "B.esp", "C.esp")
	g := graph.New(inv.Len())
	// C must load before A.
	g.AddEdge(2, 0, prov(1))

	order, err := Stable(inv, g)
	require.NoError(t, err)
	assert.Equal(t, []plugin.ID{"C.esp", "A.esp", "B.esp"}, order)
}

func TestStableMinimalPerturbation(t *testing.T) {
	inv := inventoryOf("A.esp", "B.esp", "C.esp", "D.esp")
	g := graph.New(inv.Len())
	// D before B; everything else unconstrained.
	g.AddEdge(3, 1, prov(1))

	order, err := Stable(inv, g)
	require.NoError(t, err)
	assert.Equal(t, []plugin.ID{"A.esp", "D.esp", "B.esp", "C.esp"}, order)
}

func TestStableDetectsCycle(t *testing.T) {
	inv := inventoryOf("A.esp", "B.esp")
	g := graph.New(inv.Len())
	g.AddEdge(0, 1, prov(1))
	g.AddEdge(1, 0, prov(2))

	_, err := Stable(inv, g)
	require.Error(t, err)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	require.Len(t, cycleErr.Report.Cycles, 1)
	assert.ElementsMatch(t, []plugin.ID{"A.esp", "B.esp"}, cycleErr.Report.Cycles[0].Plugins)
}

func TestUnstableRespectsEdgesAndPrefersOriginalOrder(t *testing.T) {
	inv := inventoryOf("A.esp", "B.esp", "C.esp")
	g := graph.New(inv.Len())
	g.AddEdge(2, 0, prov(1)) // C before A

	order, err := Unstable(inv, g)
	require.NoError(t, err)
	require.Len(t, order, 3)

	posC := indexOf(order, "C.esp")
	posA := indexOf(order, "A.esp")
	assert.Less(t, posC, posA)
}

func TestUnstableDetectsCycle(t *testing.T) {
	inv := inventoryOf("A.esp", "B.esp", "C.esp")
	g := graph.New(inv.Len())
	g.AddEdge(0, 1, prov(1))
	g.AddEdge(1, 2, prov(2))
	g.AddEdge(2, 0, prov(3))

	_, err := Unstable(inv, g)
	require.Error(t, err)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
	require.Len(t, cycleErr.Report.Cycles, 1)
	assert.Len(t, cycleErr.Report.Cycles[0].Plugins, 3)
}

func TestFindCyclesIgnoresAcyclicGraph(t *testing.T) {
	inv := inventoryOf("A.esp", "B.esp")
	g := graph.New(inv.Len())
	g.AddEdge(0, 1, prov(1))

	report := FindCycles(g, inv)
	assert.Empty(t, report.Cycles)
}

func TestFindCyclesUnionsProvenance(t *testing.T) {
	inv := inventoryOf("A.esp", "B.esp")
	g := graph.New(inv.Len())
	g.AddEdge(0, 1, prov(1))
	g.AddEdge(1, 0, prov(2))

	report := FindCycles(g, inv)
	require.Len(t, report.Cycles, 1)
	assert.Len(t, report.Cycles[0].Provenance, 2)
}

func TestCycleReportDOT(t *testing.T) {
	inv := inventoryOf("A.esp", "B.esp")
	g := graph.New(inv.Len())
	g.AddEdge(0, 1, prov(1))
	g.AddEdge(1, 0, prov(2))

	report := FindCycles(g, inv)
	dot := report.DOT()
	assert.Contains(t, dot, "digraph cycle0")
	assert.Contains(t, dot, `"A.esp"`)
	assert.Contains(t, dot, `"B.esp"`)
}

func indexOf(ids []plugin.ID, target plugin.ID) int {
	for i, id := range ids {
		if id == target {
			return i
		}
	}
	return -1
}
