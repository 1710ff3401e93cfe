// Package message defines the human-readable message kinds PLOX emits
// (NOTE, CONFLICT, REQUIRES, PATCH, ORDER-CYCLE, PARSE-ERROR) and their
// deterministic, provenance-carrying rendering. Fixed field order,
// explicit formatting, and no map iteration in the output path keep a
// report byte-stable across runs given the same inputs.
package message

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/frederic-klein/plox/internal/plugin"
	"github.com/frederic-klein/plox/internal/rules"
)

// Kind is the category of a rendered diagnostic.
type Kind string

const (
	Note        Kind = "NOTE"
	Conflict    Kind = "CONFLICT"
	Requires    Kind = "REQUIRES"
	Patch       Kind = "PATCH"
	OrderCycle  Kind = "ORDER-CYCLE"
	ParseErrorK Kind = "PARSE-ERROR"
)

// Message is one emitted diagnostic: a kind, the human text, the plugins
// it names (for CONFLICT/PATCH grouping), and the rule provenance that
// produced it.
type Message struct {
	Kind       Kind
	Text       string
	Plugins    []plugin.ID
	Provenance rules.Provenance
}

var kindColor = map[Kind]*color.Color{
	Note:        color.New(color.FgCyan),
	Conflict:    color.New(color.FgRed, color.Bold),
	Requires:    color.New(color.FgYellow),
	Patch:       color.New(color.FgMagenta),
	OrderCycle:  color.New(color.FgRed, color.Bold, color.Underline),
	ParseErrorK: color.New(color.FgYellow, color.Faint),
}

// Sort orders messages deterministically: by rule source file, then line
// number, then kind. Messages from the same rule/line (e.g. a Patch rule
// firing in both directions) keep their emission order, since
// sort.SliceStable is used.
func Sort(msgs []Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		a, b := msgs[i].Provenance, msgs[j].Provenance
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return msgs[i].Kind < msgs[j].Kind
	})
}

// Render writes msgs to w, one per line, colorized unless color.NoColor
// is set (tests force color.NoColor = true so golden output stays plain).
func Render(w io.Writer, msgs []Message) error {
	for _, m := range msgs {
		label := string(m.Kind)
		if c, ok := kindColor[m.Kind]; ok {
			label = c.Sprint(label)
		}
		line := fmt.Sprintf("[%s] %s:%d: %s", label, m.Provenance.File, m.Provenance.Line, m.Text)
		if len(m.Plugins) > 0 {
			names := make([]string, len(m.Plugins))
			for i, p := range m.Plugins {
				names[i] = string(p)
			}
			line += " (" + strings.Join(names, ", ") + ")"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
