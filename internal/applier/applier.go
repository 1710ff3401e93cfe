// Package applier walks the parsed rule AST, asks internal/eval which
// predicates fire, and emits ordering edges (internal/graph) plus
// user-visible messages (internal/message). The per-rule dispatch loop
// applies one rule and records its effect, logging at debug level for
// each rule and info level for each emitted message.
package applier

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/frederic-klein/plox/internal/eval"
	"github.com/frederic-klein/plox/internal/graph"
	"github.com/frederic-klein/plox/internal/message"
	"github.com/frederic-klein/plox/internal/plugin"
	"github.com/frederic-klein/plox/internal/rules"
)

// SelfLoop is a rejected self-edge (a rule asserting a plugin must load
// before itself), resolved from the graph's bare node index back to a
// plugin identifier so it can be reported without the caller needing the
// inventory in hand.
type SelfLoop struct {
	Plugin     plugin.ID
	Provenance rules.Provenance
}

func (s SelfLoop) String() string {
	return fmt.Sprintf("%s:%d: rule asserts %s before itself, edge dropped", s.Provenance.File, s.Provenance.Line, s.Plugin)
}

// Result is everything applying a rule set against an inventory produces.
type Result struct {
	Graph     *graph.Graph
	Messages  []message.Message
	SelfEdges []SelfLoop
}

// Applier applies a parsed rule set to a plugin inventory.
type Applier struct {
	log *zap.SugaredLogger
}

// New creates an Applier. log may be nil, in which case logging is a
// no-op.
func New(log *zap.SugaredLogger) *Applier {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Applier{log: log}
}

// Apply walks rs in source order, building the ordering graph and the
// message list. Rules fire in rule-source order so the same rule set and
// inventory always produce the same graph and messages.
func (a *Applier) Apply(rs []rules.Rule, inv plugin.Inventory) Result {
	g := graph.New(inv.Len())
	var msgs []message.Message

	for _, r := range rs {
		a.log.Debugw("applying rule", "rule_kind", fmt.Sprintf("%T", r), "file", r.Provenance().File, "line", r.Provenance().Line)
		switch rule := r.(type) {
		case rules.Order:
			a.applyOrder(g, inv, rule)
		case rules.Note:
			if m, ok := a.applyNote(inv, rule); ok {
				msgs = append(msgs, m)
			}
		case rules.Conflict:
			if m, ok := a.applyConflict(inv, rule); ok {
				msgs = append(msgs, m)
			}
		case rules.Requires:
			if m, ok := a.applyRequires(inv, rule); ok {
				msgs = append(msgs, m)
			}
		case rules.Patch:
			msgs = append(msgs, a.applyPatch(inv, rule)...)
		}
	}

	message.Sort(msgs)

	dropped := g.Dropped()
	records := inv.Records()
	selfEdges := make([]SelfLoop, len(dropped))
	for i, se := range dropped {
		selfEdges[i] = SelfLoop{Plugin: records[se.Node].ID, Provenance: se.Rule}
	}

	return Result{Graph: g, Messages: msgs, SelfEdges: selfEdges}
}

func (a *Applier) applyOrder(g *graph.Graph, inv plugin.Inventory, rule rules.Order) {
	present := make([]plugin.ID, 0, len(rule.Chain))
	for _, id := range rule.Chain {
		if inv.Contains(id) {
			present = append(present, id)
		} else {
			a.log.Debugw("order chain member absent from inventory, dropping", "plugin", id, "file", rule.Provenance().File, "line", rule.Provenance().Line)
		}
	}
	for i := 0; i+1 < len(present); i++ {
		from := inv.IndexOf(present[i])
		to := inv.IndexOf(present[i+1])
		g.AddEdge(from, to, rule.Provenance())
		a.log.Debugw("order edge added", "from", present[i], "to", present[i+1])
	}
}

func (a *Applier) applyNote(inv plugin.Inventory, rule rules.Note) (message.Message, bool) {
	if !eval.Eval(rule.Expr, inv) {
		return message.Message{}, false
	}
	a.log.Infow("note fired", "file", rule.Provenance().File, "line", rule.Provenance().Line)
	return message.Message{
		Kind:       message.Note,
		Text:       rule.Message,
		Provenance: rule.Provenance(),
	}, true
}

func (a *Applier) applyConflict(inv plugin.Inventory, rule rules.Conflict) (message.Message, bool) {
	var trueCount int
	var triggering []plugin.ID
	for _, e := range rule.Exprs {
		if eval.Eval(e, inv) {
			trueCount++
			triggering = append(triggering, plugins(e)...)
		}
	}
	if trueCount < 2 {
		return message.Message{}, false
	}
	a.log.Infow("conflict fired", "file", rule.Provenance().File, "line", rule.Provenance().Line)
	return message.Message{
		Kind:       message.Conflict,
		Text:       rule.Message,
		Plugins:    triggering,
		Provenance: rule.Provenance(),
	}, true
}

func (a *Applier) applyRequires(inv plugin.Inventory, rule rules.Requires) (message.Message, bool) {
	if !(eval.Eval(rule.Target, inv) && !eval.Eval(rule.Dependency, inv)) {
		return message.Message{}, false
	}
	a.log.Infow("requires fired", "file", rule.Provenance().File, "line", rule.Provenance().Line)
	return message.Message{
		Kind:       message.Requires,
		Text:       rule.Message,
		Provenance: rule.Provenance(),
	}, true
}

// applyPatch fires the message in either or both directions: patch
// present with a required plugin missing, and/or a required plugin
// present with the patch missing. mlox's real rule corpus uses [Patch]
// symmetrically, so both directions are checked independently.
func (a *Applier) applyPatch(inv plugin.Inventory, rule rules.Patch) []message.Message {
	patchPresent := eval.Eval(rule.Plugin, inv)

	var missingRequired []plugin.ID
	var presentRequired []plugin.ID
	for _, req := range rule.Required {
		if eval.Eval(req, inv) {
			presentRequired = append(presentRequired, plugins(req)...)
		} else {
			missingRequired = append(missingRequired, plugins(req)...)
		}
	}

	var out []message.Message
	if patchPresent && len(missingRequired) > 0 {
		a.log.Infow("patch fired: patch present, requirement missing", "file", rule.Provenance().File, "line", rule.Provenance().Line)
		out = append(out, message.Message{
			Kind:       message.Patch,
			Text:       rule.Message,
			Plugins:    append([]plugin.ID{}, missingRequired...),
			Provenance: rule.Provenance(),
		})
	}
	if !patchPresent && len(presentRequired) > 0 {
		a.log.Infow("patch fired: requirement present, patch missing", "file", rule.Provenance().File, "line", rule.Provenance().Line)
		out = append(out, message.Message{
			Kind:       message.Patch,
			Text:       rule.Message,
			Plugins:    append([]plugin.ID{}, presentRequired...),
			Provenance: rule.Provenance(),
		})
	}
	return out
}

// plugins extracts the plugin identifiers an expression names, for
// message display purposes (e.g. which mods triggered a CONFLICT). It
// walks the same sum type internal/eval does, but collects rather than
// evaluates.
func plugins(e rules.Expr) []plugin.ID {
	switch x := e.(type) {
	case rules.Atomic:
		return []plugin.ID{x.ID}
	case rules.All:
		var out []plugin.ID
		for _, c := range x.Exprs {
			out = append(out, plugins(c)...)
		}
		return out
	case rules.Any:
		var out []plugin.ID
		for _, c := range x.Exprs {
			out = append(out, plugins(c)...)
		}
		return out
	case rules.Not:
		return plugins(x.Expr)
	case rules.Desc:
		return []plugin.ID{x.ID}
	case rules.Ver:
		return []plugin.ID{x.ID}
	case rules.Size:
		return []plugin.ID{x.ID}
	default:
		return nil
	}
}
