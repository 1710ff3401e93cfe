// Package rules defines PLOX's rule AST: the predicate expressions
// (Atomic/ALL/ANY/NOT/DESC/VER/SIZE) and the rule kinds
// (Order/Note/Conflict/Requires/Patch) the parser produces and the
// applier walks. The shape is a tagged sum type per node kind: a private
// marker method on each concrete struct, no reflection required to
// dispatch on kind.
package rules

import (
	"regexp"

	"github.com/frederic-klein/plox/internal/plugin"
	"github.com/frederic-klein/plox/internal/version"
)

// Expr is the interface every predicate expression node implements. It
// carries no eval method itself — evaluation lives in internal/eval, kept
// separate from the AST so the AST stays a pure data description.
type Expr interface {
	exprNode()
}

// Atomic is true iff its plugin id is present in the inventory.
type Atomic struct {
	ID plugin.ID
}

func (Atomic) exprNode() {}

// All is true iff every child expression is true. An empty All is
// vacuously true.
type All struct {
	Exprs []Expr
}

func (All) exprNode() {}

// Any is true iff at least one child expression is true. An empty Any is
// vacuously false.
type Any struct {
	Exprs []Expr
}

func (Any) exprNode() {}

// Not negates its single child expression.
type Not struct {
	Expr Expr
}

func (Not) exprNode() {}

// Desc is true iff its plugin is present and its description matches
// Regex (or, if Negated, does not match).
type Desc struct {
	ID      plugin.ID
	Regex   *regexp.Regexp
	Negated bool
}

func (Desc) exprNode() {}

// Ver is true iff its plugin is present, has a known version, and that
// version compares as Op against Want.
type Ver struct {
	ID   plugin.ID
	Op   version.Op
	Want version.Version
}

func (Ver) exprNode() {}

// Size is true iff its plugin is present, has a known file size, and
// that size equals Bytes (or, if Negated, differs from it).
type Size struct {
	ID      plugin.ID
	Bytes   int64
	Negated bool
}

func (Size) exprNode() {}
