// Package parser turns mlox-compatible rule-file text into PLOX's typed
// rule AST (internal/rules). It is a recoverable, recursive-descent
// parser: chunking first groups raw lines into per-rule blocks, opened by
// an anchor regex on rule header lines and closed by blank lines, then
// parses each chunk independently so one
// malformed rule cannot desynchronize the rest of the file.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/frederic-klein/plox/internal/plugin"
	"github.com/frederic-klein/plox/internal/rules"
)

// Source is one rule file to parse: a name (used in provenance and
// diagnostics) and its content.
type Source struct {
	Name    string
	Content io.Reader
}

var ruleHeaderRe = regexp.MustCompile(`(?i)^\[\s*(order|note|conflict|requires|patch)\s*\]\s*$`)

type rawChunk struct {
	kind      string
	startLine int
	lines     []string // body lines, header line excluded
}

// Parse parses every source in order and returns the accumulated rules
// (in source order, then chunk order within a file) plus any recoverable
// diagnostics. The only error return is reserved for I/O failure reading
// a Source's Content.
func Parse(sources []Source) ([]rules.Rule, []Diagnostic, error) {
	var allRules []rules.Rule
	var allDiags []Diagnostic

	for _, src := range sources {
		chunks, err := chunkFile(src.Content)
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", src.Name, err)
		}
		for _, c := range chunks {
			rule, err := buildRule(src.Name, c)
			if err != nil {
				var pe *parseError
				kind := KindMalformedPredicate
				msg := err.Error()
				if asParseError(err, &pe) {
					kind = pe.kind
					msg = pe.message
				}
				allDiags = append(allDiags, Diagnostic{
					File:    src.Name,
					Line:    c.startLine,
					Kind:    kind,
					Message: msg,
				})
				continue
			}
			allRules = append(allRules, rule)
		}
	}

	return allRules, allDiags, nil
}

func asParseError(err error, out **parseError) bool {
	if pe, ok := err.(*parseError); ok {
		*out = pe
		return true
	}
	return false
}

// ParseFiles discovers rule files under root matching the given
// doublestar glob patterns (e.g. "**/*.txt") and parses all of them, in
// lexically sorted path order, for determinism.
func ParseFiles(fsys fs.FS, root string, patterns []string) ([]rules.Rule, []Diagnostic, error) {
	var matches []string
	for _, pat := range patterns {
		found, err := doublestar.Glob(fsys, joinGlob(root, pat))
		if err != nil {
			return nil, nil, fmt.Errorf("globbing %s: %w", pat, err)
		}
		matches = append(matches, found...)
	}
	matches = dedupSorted(matches)

	var sources []Source
	var closers []io.Closer
	for _, m := range matches {
		f, err := fsys.Open(m)
		if err != nil {
			return nil, nil, fmt.Errorf("opening %s: %w", m, err)
		}
		sources = append(sources, Source{Name: m, Content: f})
		closers = append(closers, f)
	}
	rs, diags, err := Parse(sources)
	for _, c := range closers {
		c.Close()
	}
	return rs, diags, err
}

func joinGlob(root, pattern string) string {
	if root == "" || root == "." {
		return pattern
	}
	return strings.TrimSuffix(root, "/") + "/" + pattern
}

func dedupSorted(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// chunkFile groups a rule file's lines into per-rule chunks. Comments
// (';' to end of line) are stripped first; blank lines and a new rule
// header both close the chunk currently being accumulated.
func chunkFile(r io.Reader) ([]rawChunk, error) {
	var chunks []rawChunk
	var current *rawChunk

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0

	closeCurrent := func() {
		if current != nil {
			chunks = append(chunks, *current)
			current = nil
		}
	}

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, ";") {
			continue
		}
		if idx := strings.Index(line, ";"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimRight(line, " \t\r")
		trimmed = strings.TrimSpace(line)

		if trimmed == "" {
			closeCurrent()
			continue
		}

		if m := ruleHeaderRe.FindStringSubmatch(trimmed); m != nil {
			closeCurrent()
			current = &rawChunk{kind: strings.ToLower(m[1]), startLine: lineNo}
			continue
		}

		if current == nil {
			// A body line with no open rule header; not a valid rule
			// start, silently ignored per the recoverable parser
			// contract (mirrors the original's "not a rule start" skip).
			continue
		}
		current.lines = append(current.lines, line)
	}
	closeCurrent()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return chunks, nil
}

func buildRule(file string, c rawChunk) (rules.Rule, error) {
	prov := rules.Provenance{File: file, Line: c.startLine, ID: uuid.NewString()}

	switch c.kind {
	case "order":
		return buildOrder(prov, c)
	case "note":
		return buildNote(prov, c)
	case "conflict":
		return buildConflict(prov, c)
	case "requires":
		return buildRequires(prov, c)
	case "patch":
		return buildPatch(prov, c)
	default:
		// Unreachable: chunkFile only ever opens a chunk when ruleHeaderRe
		// matches, and its alternation is exactly these five kinds.
		return nil, errUnknownRule("unknown rule kind: " + c.kind)
	}
}

func buildOrder(prov rules.Provenance, c rawChunk) (rules.Rule, error) {
	chain := make([]plugin.ID, 0, len(c.lines))
	for _, l := range c.lines {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		chain = append(chain, plugin.ID(l))
	}
	if len(chain) < 2 {
		return nil, errMalformedPredicate("Order rule needs at least two plugins")
	}
	return rules.NewOrder(prov, chain), nil
}

func messageAndExprs(c rawChunk) (string, []rules.Expr, error) {
	if len(c.lines) < 1 {
		return "", nil, errMalformedPredicate(c.kindLabel() + " rule has no message line")
	}
	message := strings.TrimSpace(c.lines[0])
	body := strings.Join(c.lines[1:], "\n")
	exprs, err := parseExprList(body)
	if err != nil {
		return "", nil, err
	}
	if len(exprs) == 0 {
		return "", nil, errMalformedPredicate(c.kindLabel() + " rule has no predicate")
	}
	return message, exprs, nil
}

func (c rawChunk) kindLabel() string {
	if c.kind == "" {
		return ""
	}
	return strings.ToUpper(c.kind[:1]) + c.kind[1:]
}

func buildNote(prov rules.Provenance, c rawChunk) (rules.Rule, error) {
	message, exprs, err := messageAndExprs(c)
	if err != nil {
		return nil, err
	}
	var expr rules.Expr
	if len(exprs) == 1 {
		expr = exprs[0]
	} else {
		expr = rules.Any{Exprs: exprs}
	}
	return rules.NewNote(prov, message, expr), nil
}

func buildConflict(prov rules.Provenance, c rawChunk) (rules.Rule, error) {
	message, exprs, err := messageAndExprs(c)
	if err != nil {
		return nil, err
	}
	if len(exprs) < 2 {
		return nil, errMalformedPredicate("Conflict rule needs at least two expressions")
	}
	return rules.NewConflict(prov, message, exprs), nil
}

func buildRequires(prov rules.Provenance, c rawChunk) (rules.Rule, error) {
	message, exprs, err := messageAndExprs(c)
	if err != nil {
		return nil, err
	}
	if len(exprs) != 2 {
		return nil, errMalformedPredicate("Requires rule needs exactly two expressions")
	}
	return rules.NewRequires(prov, message, exprs[0], exprs[1]), nil
}

func buildPatch(prov rules.Provenance, c rawChunk) (rules.Rule, error) {
	message, exprs, err := messageAndExprs(c)
	if err != nil {
		return nil, err
	}
	if len(exprs) < 2 {
		return nil, errMalformedPredicate("Patch rule needs a patch plugin and at least one required plugin")
	}
	return rules.NewPatch(prov, message, exprs[0], exprs[1:]), nil
}
