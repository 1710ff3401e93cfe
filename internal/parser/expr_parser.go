package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/frederic-klein/plox/internal/plugin"
	"github.com/frederic-klein/plox/internal/rules"
	"github.com/frederic-klein/plox/internal/version"
)

// token is one top-level piece of a predicate body: either a bare plugin
// reference or a fully-bracketed sub-expression.
type token struct {
	text      string
	bracketed bool
}

// tokenizeBody splits body into top-level tokens by tracking bracket
// depth, scanning a rune at a time and counting '[' and ']'. Whitespace
// (including newlines) separates bare tokens at depth 0; a bracketed run
// is captured whole, nesting included, and only split at depth 0.
func tokenizeBody(body string) ([]token, error) {
	var tokens []token
	var cur strings.Builder
	depth := 0
	inBracket := false

	flush := func(bracketed bool) {
		text := strings.TrimSpace(cur.String())
		if text != "" {
			tokens = append(tokens, token{text: text, bracketed: bracketed})
		}
		cur.Reset()
	}

	for _, r := range body {
		switch {
		case inBracket:
			cur.WriteRune(r)
			if r == '[' {
				depth++
			} else if r == ']' {
				depth--
				if depth == 0 {
					flush(true)
					inBracket = false
				}
			}
		case r == '[':
			inBracket = true
			depth = 1
			cur.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush(false)
		default:
			cur.WriteRune(r)
		}
	}

	if inBracket {
		return nil, errUnmatchedBracket("unterminated '[' in predicate body")
	}
	flush(false)

	return tokens, nil
}

var keywordRe = regexp.MustCompile(`(?is)^\[\s*(all|any|not|desc|ver|size)\b(.*)\]$`)

// parseExpr parses one top-level token into an Expr.
func parseExpr(t token) (rules.Expr, error) {
	if !t.bracketed {
		return rules.Atomic{ID: plugin.ID(t.text)}, nil
	}

	m := keywordRe.FindStringSubmatch(t.text)
	if m == nil {
		return nil, errMalformedPredicate("unrecognized bracketed predicate: " + t.text)
	}
	keyword := strings.ToLower(m[1])
	rest := strings.TrimSpace(m[2])

	switch keyword {
	case "all":
		children, err := parseExprList(rest)
		if err != nil {
			return nil, err
		}
		return rules.All{Exprs: children}, nil
	case "any":
		children, err := parseExprList(rest)
		if err != nil {
			return nil, err
		}
		return rules.Any{Exprs: children}, nil
	case "not":
		children, err := parseExprList(rest)
		if err != nil {
			return nil, err
		}
		if len(children) != 1 {
			return nil, errMalformedPredicate("NOT requires exactly one child expression")
		}
		return rules.Not{Expr: children[0]}, nil
	case "desc":
		return parseDesc(rest)
	case "ver":
		return parseVer(rest)
	case "size":
		return parseSize(rest)
	default:
		return nil, errUnknownRule("unknown predicate: " + keyword)
	}
}

// parseExprList tokenizes and parses each child token of a nested
// predicate body (the content of an ALL/ANY/NOT after the keyword).
func parseExprList(body string) ([]rules.Expr, error) {
	toks, err := tokenizeBody(body)
	if err != nil {
		return nil, err
	}
	exprs := make([]rules.Expr, 0, len(toks))
	for _, tk := range toks {
		e, err := parseExpr(tk)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
	}
	return exprs, nil
}

var descRe = regexp.MustCompile(`^(!)?/(.*)/\s*(\S+)$`)

// parseDesc parses "[!]/regex/ plugin.esp" (the enclosing "desc"..."]"
// already stripped by the caller).
func parseDesc(body string) (rules.Expr, error) {
	m := descRe.FindStringSubmatch(body)
	if m == nil {
		return nil, errMalformedPredicate("DESC predicate must be [DESC [!]/regex/ plugin]: " + body)
	}
	negated := m[1] == "!"
	pattern := m[2]
	id := m[3]

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errBadRegex("invalid DESC regex " + strconv.Quote(pattern) + ": " + err.Error())
	}

	return rules.Desc{ID: plugin.ID(id), Regex: re, Negated: negated}, nil
}

var verRe = regexp.MustCompile(`^([=<>])\s*(\S+)\s+(\S+)$`)

// parseVer parses "op version plugin.esp".
func parseVer(body string) (rules.Expr, error) {
	m := verRe.FindStringSubmatch(body)
	if m == nil {
		return nil, errMalformedPredicate("VER predicate must be [VER op version plugin]: " + body)
	}
	op, ok := version.ParseOp(m[1])
	if !ok {
		return nil, errMalformedPredicate("unknown VER operator: " + m[1])
	}
	want, err := version.Parse(m[2])
	if err != nil {
		return nil, errBadVersion("invalid VER version " + strconv.Quote(m[2]) + ": " + err.Error())
	}
	return rules.Ver{ID: plugin.ID(m[3]), Op: op, Want: want}, nil
}

var sizeRe = regexp.MustCompile(`^(!)?\s*(\d+)\s+(\S+)$`)

// parseSize parses "[!]bytes plugin.esp".
func parseSize(body string) (rules.Expr, error) {
	m := sizeRe.FindStringSubmatch(body)
	if m == nil {
		return nil, errMalformedPredicate("SIZE predicate must be [SIZE [!]bytes plugin]: " + body)
	}
	negated := m[1] == "!"
	n, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return nil, errMalformedPredicate("invalid SIZE byte count: " + m[2])
	}
	return rules.Size{ID: plugin.ID(m[3]), Bytes: n, Negated: negated}, nil
}
