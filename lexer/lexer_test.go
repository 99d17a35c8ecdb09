package lexer

import (
	"testing"

	"github.com/facet-lang/facet/diagnostic"
	"github.com/facet-lang/facet/token"
)

func tokenTypes(toks []*token.Token) []token.Type {
	out := make([]token.Type, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Type)
	}
	return out
}

func TestTokenizeFacetHeader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []token.Type
	}{
		{
			name:  "simple facet with mapping",
			input: "@meta\n  title: \"hi\"\n",
			want: []token.Type{
				token.AT, token.IDENT, token.NEWLINE,
				token.INDENT,
				token.IDENT, token.COLON, token.STRING, token.NEWLINE,
				token.DEDENT, token.EOF,
			},
		},
		{
			name:  "facet with attribute list",
			input: "@meta(if=\"true\")\n",
			want: []token.Type{
				token.AT, token.IDENT, token.LPAREN, token.IDENT, token.EQUAL, token.STRING, token.RPAREN, token.NEWLINE, token.EOF,
			},
		},
		{
			name:  "list block",
			input: "@tags\n  - \"a\"\n  - \"b\"\n",
			want: []token.Type{
				token.AT, token.IDENT, token.NEWLINE,
				token.INDENT,
				token.DASH, token.STRING, token.NEWLINE,
				token.DASH, token.STRING, token.NEWLINE,
				token.DEDENT, token.EOF,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reporter := diagnostic.NewReporter(tt.input)
			toks := Tokenize([]byte(tt.input), reporter)
			if reporter.HasFatal() {
				t.Fatalf("unexpected fatal diagnostics: %v", reporter.Diagnostics())
			}
			got := tokenTypes(toks)
			if len(got) != len(tt.want) {
				t.Fatalf("token count mismatch: got %v want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d: got %s want %s", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestIndentationErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"odd indent width", "@a\n   b: 1\n"},
		{"tab indent", "@a\n\tb: 1\n"},
		{"jump two levels", "@a\n  b:\n      c: 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reporter := diagnostic.NewReporter(tt.input)
			Tokenize([]byte(tt.input), reporter)
			if !reporter.HasFatal() {
				t.Errorf("expected a fatal indentation diagnostic for %q", tt.input)
			}
		})
	}
}

func TestFenceAllowsTrailingPipeline(t *testing.T) {
	input := "@doc\n  body:\n    ```text\n    hello\n    ``` |> trim\n"
	reporter := diagnostic.NewReporter(input)
	toks := Tokenize([]byte(input), reporter)
	if reporter.HasFatal() {
		t.Fatalf("unexpected fatal diagnostics: %v", reporter.Diagnostics())
	}
	foundPipe := false
	for _, tok := range toks {
		if tok.Type == token.PIPE {
			foundPipe = true
		}
	}
	if !foundPipe {
		t.Errorf("expected a PIPE token after the closing fence, got %v", tokenTypes(toks))
	}
}

func TestUnterminatedStringIsFatal(t *testing.T) {
	input := "@a\n  b: \"unterminated\n"
	reporter := diagnostic.NewReporter(input)
	Tokenize([]byte(input), reporter)
	if !reporter.HasFatal() {
		t.Error("expected a fatal diagnostic for an unterminated string")
	}
}

func TestNormalizeStripsBOMAndTrailingSpace(t *testing.T) {
	src := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a  \r\nb\t\n")...)
	got := Normalize(src)
	want := "a\nb\n"
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}
