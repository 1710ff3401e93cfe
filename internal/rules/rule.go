package rules

import "github.com/frederic-klein/plox/internal/plugin"

// Provenance records where a rule came from, for diagnostics, cycle
// reports, and deterministic message ordering: rule source order, then
// line number.
type Provenance struct {
	File string
	Line int
	// ID is a synthetic identifier assigned at parse time, used only to
	// correlate a rule with the messages/edges it produced in verbose
	// tooling output; it plays no role in rule equality or ordering.
	ID string
}

// Rule is the interface every rule kind implements.
type Rule interface {
	ruleNode()
	Provenance() Provenance
}

// base carries the provenance every rule kind embeds.
type base struct {
	Prov Provenance
}

// Provenance returns the rule's source-file/line provenance.
func (b base) Provenance() Provenance { return b.Prov }

// Order is a chain constraint: each listed plugin must load before the
// next. Plugins absent from the inventory drop silently from the chain
// when the applier walks it.
type Order struct {
	base
	Chain []plugin.ID
}

func (Order) ruleNode() {}

// Note emits Message when Expr evaluates true.
type Note struct {
	base
	Message string
	Expr    Expr
}

func (Note) ruleNode() {}

// Conflict emits Message when at least two of Exprs evaluate true.
type Conflict struct {
	base
	Message string
	Exprs   []Expr
}

func (Conflict) ruleNode() {}

// Requires emits Message when Target is true and Dependency is false.
type Requires struct {
	base
	Message    string
	Target     Expr
	Dependency Expr
}

func (Requires) ruleNode() {}

// Patch emits Message when the presence of Plugin and the required set
// are inconsistent in either direction: Plugin present with any of
// Required absent, or any of Required present with Plugin absent.
type Patch struct {
	base
	Message  string
	Plugin   Expr
	Required []Expr
}

func (Patch) ruleNode() {}

// NewOrder builds an Order rule with provenance.
func NewOrder(prov Provenance, chain []plugin.ID) Order {
	return Order{base: base{Prov: prov}, Chain: chain}
}

// NewNote builds a Note rule with provenance.
func NewNote(prov Provenance, message string, expr Expr) Note {
	return Note{base: base{Prov: prov}, Message: message, Expr: expr}
}

// NewConflict builds a Conflict rule with provenance.
func NewConflict(prov Provenance, message string, exprs []Expr) Conflict {
	return Conflict{base: base{Prov: prov}, Message: message, Exprs: exprs}
}

// NewRequires builds a Requires rule with provenance.
func NewRequires(prov Provenance, message string, target, dependency Expr) Requires {
	return Requires{base: base{Prov: prov}, Message: message, Target: target, Dependency: dependency}
}

// NewPatch builds a Patch rule with provenance.
func NewPatch(prov Provenance, message string, patchPlugin Expr, required []Expr) Patch {
	return Patch{base: base{Prov: prov}, Message: message, Plugin: patchPlugin, Required: required}
}
