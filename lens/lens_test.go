package lens

import (
	"testing"

	"github.com/facet-lang/facet/diagnostic"
)

func call(t *testing.T, name string, in interface{}, args []interface{}, kwargs map[string]interface{}) interface{} {
	t.Helper()
	reporter := diagnostic.NewReporter("")
	l, ok := Lookup(name, 1, 1, reporter)
	if !ok {
		t.Fatalf("lens %q not registered", name)
	}
	out, err := l(in, args, kwargs)
	if err != nil {
		t.Fatalf("lens %q error: %v", name, err)
	}
	return out
}

func TestTrimAndCase(t *testing.T) {
	if got := call(t, "trim", "  hi  ", nil, nil); got != "hi" {
		t.Errorf("trim = %q", got)
	}
	if got := call(t, "upper", "hi", nil, nil); got != "HI" {
		t.Errorf("upper = %q", got)
	}
	if got := call(t, "lower", "HI", nil, nil); got != "hi" {
		t.Errorf("lower = %q", got)
	}
}

func TestDedentRemovesCommonPrefix(t *testing.T) {
	in := "  a\n  b\n    c\n"
	got := call(t, "dedent", in, nil, nil)
	want := "a\nb\n  c\n"
	if got != want {
		t.Errorf("dedent = %q, want %q", got, want)
	}
}

func TestLimitIsRuneSafe(t *testing.T) {
	got := call(t, "limit", "héllo", nil, map[string]interface{}{"n": float64(2)})
	if got != "hé" {
		t.Errorf("limit = %q, want %q", got, "hé")
	}
}

func TestSqueezeSpaces(t *testing.T) {
	got := call(t, "squeeze_spaces", "a   b\tc", nil, nil)
	if got != "a b c" {
		t.Errorf("squeeze_spaces = %q", got)
	}
}

func TestReplaceAndRegexReplace(t *testing.T) {
	got := call(t, "replace", "foo bar foo", []interface{}{"foo", "baz"}, nil)
	if got != "baz bar baz" {
		t.Errorf("replace = %q", got)
	}
	got = call(t, "regex_replace", "a1b2c3", []interface{}{`\d`, "#"}, nil)
	if got != "a#b#c#" {
		t.Errorf("regex_replace = %q", got)
	}
}

func TestChooseIsDeterministic(t *testing.T) {
	items := []interface{}{"a", "b", "c", "d"}
	got1 := call(t, "choose", items, nil, map[string]interface{}{"seed": float64(7)})
	got2 := call(t, "choose", items, nil, map[string]interface{}{"seed": float64(7)})
	if got1 != got2 {
		t.Errorf("choose not deterministic: %v vs %v", got1, got2)
	}
}

func TestShuffleIsDeterministicAndPermutes(t *testing.T) {
	items := []interface{}{"a", "b", "c", "d", "e"}
	got1 := call(t, "shuffle", items, nil, map[string]interface{}{"seed": float64(42)})
	got2 := call(t, "shuffle", items, nil, map[string]interface{}{"seed": float64(42)})
	s1, _ := got1.([]interface{})
	s2, _ := got2.([]interface{})
	if len(s1) != len(items) {
		t.Fatalf("shuffle changed length: %v", s1)
	}
	for i := range s1 {
		if s1[i] != s2[i] {
			t.Fatalf("shuffle with the same seed produced different results: %v vs %v", s1, s2)
		}
	}
}

func TestStripMarkdown(t *testing.T) {
	got := call(t, "strip_markdown", "# Title\n**bold** and *em* and `code` and [link](http://x)", nil, nil)
	want := "Title\nbold and em and code and link"
	if got != want {
		t.Errorf("strip_markdown = %q, want %q", got, want)
	}
}

func TestUnknownLensReportsF802(t *testing.T) {
	reporter := diagnostic.NewReporter("")
	_, ok := Lookup("nonexistent", 1, 1, reporter)
	if ok {
		t.Fatal("expected lookup to fail")
	}
	if len(reporter.Diagnostics()) != 1 || reporter.Diagnostics()[0].Code != diagnostic.CodeUnknownLens {
		t.Errorf("expected a single F802 diagnostic, got %v", reporter.Diagnostics())
	}
}
