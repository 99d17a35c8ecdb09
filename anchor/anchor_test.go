package anchor

import (
	"testing"

	"github.com/facet-lang/facet/ast"
	"github.com/facet-lang/facet/diagnostic"
	"github.com/facet-lang/facet/token"
)

func TestResolveReplacesAliasWithAnchorValue(t *testing.T) {
	doc := &ast.Document{Facets: []*ast.Facet{
		{Name: "doc", Mapping: &ast.MappingBlock{Pairs: []*ast.MappingPair{
			{Key: "base", Value: ast.NewAnchorDef(token.Position{}, "b", ast.NewString(token.Position{}, "shared", false))},
			{Key: "other", Value: ast.NewAlias(token.Position{}, "b")},
		}}},
	}}
	reporter := diagnostic.NewReporter("")
	Resolve(doc, reporter)
	if reporter.HasAny() {
		t.Fatalf("unexpected diagnostics: %v", reporter.Diagnostics())
	}
	other := doc.Facets[0].Mapping.Pairs[1].Value
	sv, ok := other.(*ast.StringValue)
	if !ok || sv.Text != "shared" {
		t.Errorf("resolved alias = %+v, want StringValue(shared)", other)
	}
}

func TestResolveUndefinedAnchorReportsF201(t *testing.T) {
	doc := &ast.Document{Facets: []*ast.Facet{
		{Name: "doc", Mapping: &ast.MappingBlock{Pairs: []*ast.MappingPair{
			{Key: "other", Value: ast.NewAlias(token.Position{}, "nope")},
		}}},
	}}
	reporter := diagnostic.NewReporter("")
	Resolve(doc, reporter)
	if len(reporter.Diagnostics()) != 1 || reporter.Diagnostics()[0].Code != diagnostic.CodeAnchorAlias {
		t.Errorf("expected a single F201, got %v", reporter.Diagnostics())
	}
}

func TestResolveRedefinedAnchorReportsF202(t *testing.T) {
	doc := &ast.Document{Facets: []*ast.Facet{
		{Name: "doc", Mapping: &ast.MappingBlock{Pairs: []*ast.MappingPair{
			{Key: "a", Value: ast.NewAnchorDef(token.Position{}, "b", ast.NewString(token.Position{}, "1", false))},
			{Key: "c", Value: ast.NewAnchorDef(token.Position{}, "b", ast.NewString(token.Position{}, "2", false))},
		}}},
	}}
	reporter := diagnostic.NewReporter("")
	Resolve(doc, reporter)
	found := false
	for _, d := range reporter.Diagnostics() {
		if d.Code == diagnostic.CodeAnchorRedefined {
			found = true
		}
	}
	if !found {
		t.Errorf("expected F202, got %v", reporter.Diagnostics())
	}
}

func TestResolveDoesNotCrossFacetBoundary(t *testing.T) {
	doc := &ast.Document{Facets: []*ast.Facet{
		{Name: "a", Mapping: &ast.MappingBlock{Pairs: []*ast.MappingPair{
			{Key: "x", Value: ast.NewAnchorDef(token.Position{}, "shared", ast.NewString(token.Position{}, "v", false))},
		}}},
		{Name: "b", Mapping: &ast.MappingBlock{Pairs: []*ast.MappingPair{
			{Key: "y", Value: ast.NewAlias(token.Position{}, "shared")},
		}}},
	}}
	reporter := diagnostic.NewReporter("")
	Resolve(doc, reporter)
	if !reporter.HasAny() {
		t.Error("expected an undefined-anchor diagnostic for a cross-facet alias")
	}
}
