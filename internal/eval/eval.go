// Package eval implements PLOX's predicate evaluator: a pure function
// from (expression, inventory) to bool, lifted structurally over the
// rules.Expr sum type, with Atomic/ALL/ANY/NOT as the core connectives
// and DESC/VER/SIZE as leaves that inspect a plugin's metadata directly.
package eval

import (
	"github.com/frederic-klein/plox/internal/plugin"
	"github.com/frederic-klein/plox/internal/rules"
	"github.com/frederic-klein/plox/internal/version"
)

// Eval evaluates expr against inv. It is pure: it reads only from inv and
// has no side effects, so repeated evaluation of the same expression
// against the same inventory always yields the same result.
func Eval(expr rules.Expr, inv plugin.Inventory) bool {
	switch e := expr.(type) {
	case rules.Atomic:
		return inv.Contains(e.ID)
	case rules.All:
		for _, child := range e.Exprs {
			if !Eval(child, inv) {
				return false
			}
		}
		return true
	case rules.Any:
		for _, child := range e.Exprs {
			if Eval(child, inv) {
				return true
			}
		}
		return false
	case rules.Not:
		return !Eval(e.Expr, inv)
	case rules.Desc:
		return evalDesc(e, inv)
	case rules.Ver:
		return evalVer(e, inv)
	case rules.Size:
		return evalSize(e, inv)
	default:
		return false
	}
}

func evalDesc(e rules.Desc, inv plugin.Inventory) bool {
	rec, ok := inv.Lookup(e.ID)
	if !ok || !rec.Metadata.HasDescription {
		return false
	}
	matched := e.Regex.MatchString(rec.Metadata.Description)
	if e.Negated {
		return !matched
	}
	return matched
}

func evalVer(e rules.Ver, inv plugin.Inventory) bool {
	rec, ok := inv.Lookup(e.ID)
	if !ok || !rec.Metadata.HasVersion {
		return false
	}
	return version.Satisfies(rec.Metadata.Version, e.Op, e.Want)
}

func evalSize(e rules.Size, inv plugin.Inventory) bool {
	rec, ok := inv.Lookup(e.ID)
	if !ok || !rec.Metadata.HasSize {
		return false
	}
	equal := rec.Metadata.Size == e.Bytes
	if e.Negated {
		return !equal
	}
	return equal
}
