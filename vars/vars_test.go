package vars

import (
	"testing"

	"github.com/facet-lang/facet/ast"
	"github.com/facet-lang/facet/diagnostic"
	"github.com/facet-lang/facet/token"
)

func TestAssembleHostOverride(t *testing.T) {
	doc := &ast.Document{Facets: []*ast.Facet{
		{Name: "vars", Mapping: &ast.MappingBlock{Pairs: []*ast.MappingPair{
			{Key: "name", Value: ast.NewString(token.Position{}, "doc", false)},
		}}},
	}}
	reporter := diagnostic.NewReporter("")
	scope := Assemble(doc, map[string]interface{}{"name": "host"}, ModeHostOverride, reporter)
	v, ok := scope.Get("name")
	if !ok || v != "host" {
		t.Errorf("Get(name) = %v, %v, want %q, true", v, ok, "host")
	}
}

func TestAssembleDocumentOnlyIgnoresHostVars(t *testing.T) {
	doc := &ast.Document{Facets: []*ast.Facet{
		{Name: "vars", Mapping: &ast.MappingBlock{Pairs: []*ast.MappingPair{
			{Key: "name", Value: ast.NewString(token.Position{}, "doc", false)},
		}}},
	}}
	reporter := diagnostic.NewReporter("")
	scope := Assemble(doc, map[string]interface{}{"name": "host"}, ModeDocumentOnly, reporter)
	v, _ := scope.Get("name")
	if v != "doc" {
		t.Errorf("Get(name) = %v, want %q", v, "doc")
	}
}

func TestSubstituteSimpleAndPathReferences(t *testing.T) {
	scope := &Scope{values: map[string]interface{}{
		"name": "alice",
		"user": map[string]interface{}{"city": "ny"},
	}}
	reporter := diagnostic.NewReporter("")
	got := Substitute("hi $name from ${user.city}", scope, 1, 1, reporter)
	want := "hi alice from ny"
	if got != want {
		t.Errorf("Substitute() = %q, want %q", got, want)
	}
	if reporter.HasAny() {
		t.Errorf("unexpected diagnostics: %v", reporter.Diagnostics())
	}
}

func TestSubstituteUndefinedReportsF404(t *testing.T) {
	scope := &Scope{values: map[string]interface{}{}}
	reporter := diagnostic.NewReporter("")
	Substitute("hi $missing", scope, 1, 1, reporter)
	if !reporter.HasAny() || reporter.Diagnostics()[0].Code != diagnostic.CodeMissingSubstPath {
		t.Errorf("expected F404, got %v", reporter.Diagnostics())
	}
}

func TestInterpolateWithPipeline(t *testing.T) {
	scope := &Scope{values: map[string]interface{}{"name": "alice"}}
	reporter := diagnostic.NewReporter("")
	pipe := func(v interface{}, lensExpr string) (interface{}, error) {
		if lensExpr == "upper" {
			return "ALICE", nil
		}
		return v, nil
	}
	got := Interpolate("hello {{ name |> upper }}", scope, 1, 1, reporter, pipe)
	if got != "hello ALICE" {
		t.Errorf("Interpolate() = %q, want %q", got, "hello ALICE")
	}
}

func TestCheckTypeViolationReportsF451(t *testing.T) {
	doc := &ast.Document{Facets: []*ast.Facet{
		{Name: "var_types", Mapping: &ast.MappingBlock{Pairs: []*ast.MappingPair{
			{Key: "count", Value: ast.NewString(token.Position{}, "number", false)},
		}}},
		{Name: "vars", Mapping: &ast.MappingBlock{Pairs: []*ast.MappingPair{
			{Key: "count", Value: ast.NewString(token.Position{}, "not-a-number", false)},
		}}},
	}}
	reporter := diagnostic.NewReporter("")
	Assemble(doc, nil, ModeHostOverride, reporter)
	found := false
	for _, d := range reporter.Diagnostics() {
		if d.Code == diagnostic.CodeVarTypeViolation {
			found = true
		}
	}
	if !found {
		t.Errorf("expected F451, got %v", reporter.Diagnostics())
	}
}
