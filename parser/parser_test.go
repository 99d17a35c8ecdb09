package parser

import (
	"testing"

	"github.com/facet-lang/facet/ast"
	"github.com/facet-lang/facet/diagnostic"
)

func parseOK(t *testing.T, src string) *ast.Document {
	t.Helper()
	reporter := diagnostic.NewReporter(src)
	doc := Parse([]byte(src), reporter)
	if reporter.HasFatal() {
		t.Fatalf("unexpected fatal diagnostics for %q: %v", src, reporter.Diagnostics())
	}
	if doc == nil {
		t.Fatalf("expected a document for %q", src)
	}
	return doc
}

func TestParseMappingFacet(t *testing.T) {
	doc := parseOK(t, "@meta\n  title: \"hello\"\n  count: 3\n")
	if len(doc.Facets) != 1 {
		t.Fatalf("expected 1 facet, got %d", len(doc.Facets))
	}
	f := doc.Facets[0]
	if f.Name != "meta" {
		t.Errorf("facet name = %q, want %q", f.Name, "meta")
	}
	if f.Mapping == nil || len(f.Mapping.Pairs) != 2 {
		t.Fatalf("expected 2 mapping pairs, got %+v", f.Mapping)
	}
	if f.Mapping.Pairs[0].Key != "title" {
		t.Errorf("pair 0 key = %q, want %q", f.Mapping.Pairs[0].Key, "title")
	}
}

func TestParseListFacet(t *testing.T) {
	doc := parseOK(t, "@tags\n  - \"a\"\n  - \"b\"\n")
	f := doc.Facets[0]
	if f.List == nil || len(f.List.Items) != 2 {
		t.Fatalf("expected 2 list items, got %+v", f.List)
	}
}

func TestParseFacetWithIfAttribute(t *testing.T) {
	doc := parseOK(t, "@meta(if=\"$flag\")\n  title: \"x\"\n")
	f := doc.Facets[0]
	if f.If != "$flag" {
		t.Errorf("If = %q, want %q", f.If, "$flag")
	}
}

func TestParseRejectsUnquotedIf(t *testing.T) {
	src := "@meta(if=true)\n  title: \"x\"\n"
	reporter := diagnostic.NewReporter(src)
	Parse([]byte(src), reporter)
	found := false
	for _, d := range reporter.Diagnostics() {
		if d.Code == diagnostic.CodeUnquotedCondition {
			found = true
		}
	}
	if !found {
		t.Errorf("expected F704 unquoted-condition diagnostic, got %v", reporter.Diagnostics())
	}
}

func TestParsePipelineOnMappingValue(t *testing.T) {
	doc := parseOK(t, "@doc\n  body: \"  hi  \" |> trim |> upper\n")
	pair := doc.Facets[0].Mapping.Pairs[0]
	if pair.Pipeline == nil || len(pair.Pipeline.Calls) != 2 {
		t.Fatalf("expected 2-call pipeline, got %+v", pair.Pipeline)
	}
	if pair.Pipeline.Calls[0].Name != "trim" || pair.Pipeline.Calls[1].Name != "upper" {
		t.Errorf("unexpected pipeline calls: %+v", pair.Pipeline.Calls)
	}
}

func TestParseAnchorAndAlias(t *testing.T) {
	doc := parseOK(t, "@doc\n  base: &b \"value\"\n  other: *b\n")
	pairs := doc.Facets[0].Mapping.Pairs
	if _, ok := pairs[0].Value.(*ast.AnchorDefValue); !ok {
		t.Errorf("expected pair 0 to be an anchor def, got %T", pairs[0].Value)
	}
	if _, ok := pairs[1].Value.(*ast.AliasValue); !ok {
		t.Errorf("expected pair 1 to be an alias, got %T", pairs[1].Value)
	}
}

func TestParseInlineCollections(t *testing.T) {
	doc := parseOK(t, "@doc\n  obj: { a: 1, b: 2 }\n  arr: [ 1, 2, 3 ]\n")
	pairs := doc.Facets[0].Mapping.Pairs
	if _, ok := pairs[0].Value.(*ast.InlineMapValue); !ok {
		t.Errorf("expected inline map, got %T", pairs[0].Value)
	}
	if _, ok := pairs[1].Value.(*ast.InlineListValue); !ok {
		t.Errorf("expected inline list, got %T", pairs[1].Value)
	}
}

func TestParseRejectsMixedShapeBlock(t *testing.T) {
	src := "@doc\n  key: 1\n  - \"item\"\n"
	reporter := diagnostic.NewReporter(src)
	Parse([]byte(src), reporter)
	if !reporter.HasAny() {
		t.Error("expected a diagnostic for mixing mapping pairs and list items")
	}
}

func TestParseNestedMapping(t *testing.T) {
	doc := parseOK(t, "@doc\n  outer:\n    inner: \"v\"\n")
	pair := doc.Facets[0].Mapping.Pairs[0]
	nested, ok := pair.Value.(*ast.NestedMapValue)
	if !ok {
		t.Fatalf("expected nested map, got %T", pair.Value)
	}
	if len(nested.Block.Pairs) != 1 || nested.Block.Pairs[0].Key != "inner" {
		t.Errorf("unexpected nested pairs: %+v", nested.Block.Pairs)
	}
}
