package canon

import (
	"github.com/facet-lang/facet/ast"
	"github.com/facet-lang/facet/diagnostic"
	"github.com/facet-lang/facet/expr"
	"github.com/facet-lang/facet/vars"
)

// prune evaluates every "if" condition on facets and list items and removes
// falsy nodes from doc in place (spec §4.8 step 4). It must run before
// anchor.Resolve: a pruned alias definition is expected to produce F201 if
// any surviving alias still references it, which only holds if the definition
// is gone from the tree before resolution walks it, not merely skipped when
// the value tree is later built.
func prune(doc *ast.Document, scope *vars.Scope, reporter *diagnostic.Reporter) {
	kept := doc.Facets[:0]
	for _, f := range doc.Facets {
		if f.IsImport() || f.IsVars() || f.IsVarTypes() {
			kept = append(kept, f)
			continue
		}
		if f.If != "" && !expr.Eval(f.If, scope, f.IfPos.Line, f.IfPos.Column, reporter) {
			continue
		}
		pruneFacetBody(f, scope, reporter)
		kept = append(kept, f)
	}
	doc.Facets = kept
}

func pruneFacetBody(f *ast.Facet, scope *vars.Scope, reporter *diagnostic.Reporter) {
	if f.Mapping != nil {
		pruneMappingBlock(f.Mapping, scope, reporter)
	}
	if f.List != nil {
		pruneListBlock(f.List, scope, reporter)
	}
}

func pruneMappingBlock(mb *ast.MappingBlock, scope *vars.Scope, reporter *diagnostic.Reporter) {
	for _, pair := range mb.Pairs {
		pruneValue(pair.Value, scope, reporter)
	}
}

func pruneListBlock(lb *ast.ListBlock, scope *vars.Scope, reporter *diagnostic.Reporter) {
	kept := lb.Items[:0]
	for _, item := range lb.Items {
		if item.If != "" && !expr.Eval(item.If, scope, item.IfPos.Line, item.IfPos.Column, reporter) {
			continue
		}
		pruneValue(item.Value, scope, reporter)
		kept = append(kept, item)
	}
	lb.Items = kept
}

// pruneValue recurses into the nested shapes that can themselves carry
// conditional list items: nested maps/lists, and an anchor definition's
// wrapped value. Inline maps/lists carry no "if" attribute of their own
// (parser.parseInlineMap/parseInlineList reject it), so nothing to prune
// there beyond recursing for nested anchors.
func pruneValue(v ast.Value, scope *vars.Scope, reporter *diagnostic.Reporter) {
	switch val := v.(type) {
	case *ast.NestedMapValue:
		pruneMappingBlock(val.Block, scope, reporter)
	case *ast.NestedListValue:
		pruneListBlock(val.Block, scope, reporter)
	case *ast.AnchorDefValue:
		pruneValue(val.Inner, scope, reporter)
	case *ast.InlineMapValue:
		for _, pair := range val.Pairs {
			pruneValue(pair.Value, scope, reporter)
		}
	case *ast.InlineListValue:
		for _, item := range val.Items {
			pruneValue(item, scope, reporter)
		}
	}
}
