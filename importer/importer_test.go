package importer

import (
	"fmt"
	"testing"

	"github.com/facet-lang/facet/diagnostic"
	"github.com/facet-lang/facet/parser"
)

func TestExpandMergesImportedFacets(t *testing.T) {
	files := map[string]string{
		"base.facet": "@meta\n  title: \"base\"\n",
	}
	load := func(p string) ([]byte, error) {
		s, ok := files[p]
		if !ok {
			return nil, fmt.Errorf("not found: %s", p)
		}
		return []byte(s), nil
	}
	src := "@import(path=\"base.facet\")\n"
	reporter := diagnostic.NewReporter(src)
	doc := parser.Parse([]byte(src), reporter)
	if reporter.HasFatal() {
		t.Fatalf("unexpected fatal diagnostics: %v", reporter.Diagnostics())
	}
	exp := New(load, parser.Parse, nil, reporter)
	facets := exp.Expand(doc, ".")
	if len(facets) != 1 || facets[0].Name != "meta" {
		t.Fatalf("expected imported meta facet, got %+v", facets)
	}
}

func TestExpandDetectsCycle(t *testing.T) {
	files := map[string]string{
		"a.facet": "@import(path=\"b.facet\")\n",
		"b.facet": "@import(path=\"a.facet\")\n",
	}
	load := func(p string) ([]byte, error) {
		s, ok := files[p]
		if !ok {
			return nil, fmt.Errorf("not found: %s", p)
		}
		return []byte(s), nil
	}
	src := "@import(path=\"a.facet\")\n"
	reporter := diagnostic.NewReporter(src)
	doc := parser.Parse([]byte(src), reporter)
	exp := New(load, parser.Parse, nil, reporter)
	exp.Expand(doc, ".")
	if !reporter.HasFatal() {
		t.Error("expected a fatal import-cycle diagnostic")
	}
}

func TestExpandRejectsPathEscapingRoots(t *testing.T) {
	load := func(p string) ([]byte, error) { return []byte("@meta\n  x: 1\n"), nil }
	src := "@import(path=\"../outside.facet\")\n"
	reporter := diagnostic.NewReporter(src)
	doc := parser.Parse([]byte(src), reporter)
	exp := New(load, parser.Parse, Roots{"."}, reporter)
	exp.Expand(doc, ".")
	if !reporter.HasAny() {
		t.Error("expected a diagnostic for an import path escaping the allowed roots")
	}
}
