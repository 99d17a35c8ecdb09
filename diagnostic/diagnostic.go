// Package diagnostic implements the structured error taxonomy (C1). Errors
// are values: every stage of the pipeline accumulates Diagnostics into a
// Reporter instead of panicking or returning a bare error, mirroring the
// teacher corpus's habit (goccy/go-yaml/errors, conduit's compiler/errors) of
// keeping parse/compile failures as inspectable, position-carrying values.
package diagnostic

import "fmt"

// Code is one of the fixed external-contract error codes from spec §7.
type Code string

const (
	CodeLexical           Code = "F001"
	CodeIndentation       Code = "F002"
	CodeUnterminated      Code = "F003"
	CodeValueType         Code = "F101"
	CodeLensInputType     Code = "F102"
	CodeAnchorAlias       Code = "F201"
	CodeAnchorRedefined   Code = "F202"
	CodeAttributeShape    Code = "F301"
	CodeAttributeInterp   Code = "F304"
	CodeListItemAttribute Code = "F305"
	CodeContract          Code = "F401"
	CodeMissingInterpPath Code = "F402A"
	CodeMissingSubstPath  Code = "F404"
	CodeVarTypeViolation  Code = "F451"
	CodeVarConstraint     Code = "F452"
	CodeImportPath        Code = "F601"
	CodeImportCycle       Code = "F602"
	CodeStrictMergeShape  Code = "F605"
	CodeMixedComparison   Code = "F703"
	CodeUnquotedCondition Code = "F704"
	CodeExprParse         Code = "F705"
	CodeLensArgument      Code = "F801"
	CodeUnknownLens       Code = "F802"
	CodeRegexCompile      Code = "F803"
	CodeMissingSeed       Code = "F804"
	CodePipelineLength    Code = "F805"
	CodeInternal          Code = "F999"
)

// Diagnostic is the wire shape from spec §6: {code, message, line, column, hint?}.
type Diagnostic struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Hint    string `json:"hint,omitempty"`
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s (line %d, column %d)", d.Code, d.Message, d.Line, d.Column)
}

// New builds a Diagnostic at a given line/column.
func New(code Code, line, column int, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Column:  column,
	}
}

// WithHint returns a copy of d carrying the given hint text.
func (d *Diagnostic) WithHint(hint string) *Diagnostic {
	cp := *d
	cp.Hint = hint
	return &cp
}

// Reporter accumulates Diagnostics for one canonize/lint call. It is never
// shared across calls: the determinism guarantee depends on every invocation
// owning its own mutable state (spec §5).
type Reporter struct {
	source    string
	diags     []*Diagnostic
	fatalSeen bool
}

// NewReporter binds a Reporter to the source text it is given, returned
// unchanged by Source. canon.Canonize passes the raw, un-normalized source.
func NewReporter(source string) *Reporter {
	return &Reporter{source: source}
}

// Add records a non-fatal diagnostic; later stages may still run.
func (r *Reporter) Add(d *Diagnostic) {
	r.diags = append(r.diags, d)
}

// Fatal records a diagnostic that renders later stages meaningless; the
// caller must check HasFatal and short-circuit.
func (r *Reporter) Fatal(d *Diagnostic) {
	r.diags = append(r.diags, d)
	r.fatalSeen = true
}

// HasFatal reports whether a fatal diagnostic has been recorded.
func (r *Reporter) HasFatal() bool {
	return r.fatalSeen
}

// HasAny reports whether any diagnostic, fatal or not, has been recorded.
func (r *Reporter) HasAny() bool {
	return len(r.diags) > 0
}

// Diagnostics returns the accumulated diagnostics in report order.
func (r *Reporter) Diagnostics() []*Diagnostic {
	return r.diags
}

// Source returns the source text the Reporter was created with.
func (r *Reporter) Source() string {
	return r.source
}
