package facet

import (
	"errors"
	"strings"
	"testing"

	"github.com/facet-lang/facet/diagnostic"
)

var errNotFound = errors.New("import not found")

func TestCanonizeSimpleDocument(t *testing.T) {
	src := `@meta
  title: "Hello"
  count: 3
`
	out, diags := Canonize([]byte(src))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	got := string(out)
	want := `{"meta":{"_attrs":{},"title":"Hello","count":3}}`
	if got != want {
		t.Errorf("Canonize() = %s, want %s", got, want)
	}
}

func TestCanonizeAppliesPipeline(t *testing.T) {
	src := `@doc
  body: "  hi  " |> trim |> upper
`
	out, diags := Canonize([]byte(src))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if !strings.Contains(string(out), `"HI"`) {
		t.Errorf("Canonize() = %s, expected trimmed/uppercased body", out)
	}
}

func TestCanonizeResolvesVariables(t *testing.T) {
	src := `@vars
  name: "world"
@doc
  greeting: "hello $name"
`
	out, diags := Canonize([]byte(src))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if !strings.Contains(string(out), `"hello world"`) {
		t.Errorf("Canonize() = %s, expected substituted greeting", out)
	}
}

func TestCanonizeHostVarsOverrideDocumentVars(t *testing.T) {
	src := `@vars
  name: "world"
@doc
  greeting: "hello $name"
`
	out, diags := Canonize([]byte(src), WithHostVars(map[string]interface{}{"name": "host"}))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if !strings.Contains(string(out), `"hello host"`) {
		t.Errorf("Canonize() = %s, expected host var override", out)
	}
}

func TestCanonizePrunesFalseConditional(t *testing.T) {
	src := `@doc
  - "kept"
  - (if="false") "dropped"
`
	out, diags := Canonize([]byte(src))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if strings.Contains(string(out), `"dropped"`) || !strings.Contains(string(out), `"kept"`) {
		t.Errorf("Canonize() = %s, expected only the unconditional item to survive", out)
	}
}

func TestCanonizeAnchorAlias(t *testing.T) {
	src := `@doc
  base: &b "shared"
  other: *b
`
	out, diags := Canonize([]byte(src))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if !strings.Contains(string(out), `"base":"shared"`) || !strings.Contains(string(out), `"other":"shared"`) {
		t.Errorf("Canonize() = %s, expected both keys to hold the shared value", out)
	}
}

func TestCanonizeDeterministic(t *testing.T) {
	src := `@meta
  title: "Hello"
  tags: [ "a", "b" ]
`
	out1, _ := Canonize([]byte(src))
	out2, _ := Canonize([]byte(src))
	if string(out1) != string(out2) {
		t.Errorf("Canonize() is not deterministic: %s vs %s", out1, out2)
	}
}

func TestLintReportsIndentationError(t *testing.T) {
	src := "@meta\n   title: \"x\"\n"
	diags := Lint([]byte(src))
	if len(diags) == 0 {
		t.Error("expected lint diagnostics for malformed indentation")
	}
}

func TestCanonizePrunedAliasDefinitionReportsF201(t *testing.T) {
	src := `@doc
  - (if="false") &b "hidden"
  - *b
`
	_, diags := Canonize([]byte(src))
	found := false
	for _, d := range diags {
		if d.Code == diagnostic.CodeAnchorAlias {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected F201 for an alias referencing a pruned anchor definition, got %v", diags)
	}
}

func TestCanonizeInterpolationAppliesLensWithArguments(t *testing.T) {
	src := `@vars
  greetings: [ "Hi", "Hello", "Hey" ]
  seed: 42
@doc
  greeting: "{{ greetings |> choose(seed=$seed) }}"
`
	out, diags := Canonize([]byte(src))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if !strings.Contains(string(out), `"greeting":"Hi"`) {
		t.Errorf("Canonize() = %s, expected choose(seed=42) over greetings to select \"Hi\"", out)
	}
}

func TestCanonizeMergesDuplicateFacetAcrossImport(t *testing.T) {
	load := func(path string) ([]byte, error) {
		if path == "base.facet" {
			return []byte("@system\n  style: \"concise\"\n"), nil
		}
		return nil, errNotFound
	}
	src := `@import(path="base.facet")
@system
  tone: "warm"
`
	out, diags := Canonize([]byte(src), WithImportLoader(load))
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	want := `{"system":{"_attrs":{},"style":"concise","tone":"warm"}}`
	if string(out) != want {
		t.Errorf("Canonize() = %s, want %s", out, want)
	}
}
