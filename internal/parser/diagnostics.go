package parser

import "fmt"

// DiagnosticKind categorizes a recoverable parse failure. The core never
// halts on any of these; the rule containing the failure is discarded and
// parsing resumes at the next chunk.
type DiagnosticKind string

const (
	// KindUnmatchedBracket reports a predicate whose brackets never
	// balance before EOF or end of chunk.
	KindUnmatchedBracket DiagnosticKind = "unmatched-bracket"
	// KindBadVersion reports a VER predicate with an unparsable version.
	KindBadVersion DiagnosticKind = "bad-version"
	// KindBadRegex reports a DESC predicate whose regex fails to compile.
	KindBadRegex DiagnosticKind = "bad-regex"
	// KindUnknownRule reports a rule or predicate kind outside the known
	// set. A bracketed header line such as "[Bogus]" never opens a chunk,
	// so its block is skipped without any diagnostic.
	KindUnknownRule DiagnosticKind = "unknown-rule"
	// KindMalformedPredicate reports any other structurally invalid
	// predicate (wrong arity, missing plugin reference, and so on).
	KindMalformedPredicate DiagnosticKind = "malformed-predicate"
)

// Diagnostic reports one discarded rule.
type Diagnostic struct {
	File    string
	Line    int
	Kind    DiagnosticKind
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s: %s", d.File, d.Line, d.Kind, d.Message)
}

// parseError is used internally to unwind out of a chunk's parse without
// aborting the whole file; Parse converts it into a Diagnostic.
type parseError struct {
	kind    DiagnosticKind
	message string
}

func (e *parseError) Error() string { return e.message }

func errUnmatchedBracket(msg string) error   { return &parseError{KindUnmatchedBracket, msg} }
func errBadVersion(msg string) error         { return &parseError{KindBadVersion, msg} }
func errBadRegex(msg string) error           { return &parseError{KindBadRegex, msg} }
func errUnknownRule(msg string) error        { return &parseError{KindUnknownRule, msg} }
func errMalformedPredicate(msg string) error { return &parseError{KindMalformedPredicate, msg} }
