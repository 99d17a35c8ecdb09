// Package anchor implements FACET's anchor/alias resolver (C5): collecting
// "&label" definitions within a single facet and substituting "*label"
// references with a deep copy of the referenced subtree, detecting cycles
// and redefinitions along the way. Anchors never cross facet boundaries
// (spec Open Question, resolved per spec.md's own recommendation), so
// resolution runs once per facet rather than once per document, mirroring
// the teacher corpus's goccy/go-yaml/ast anchor map which is similarly
// scoped to one document tree at a time.
package anchor

import (
	"github.com/facet-lang/facet/ast"
	"github.com/facet-lang/facet/diagnostic"
)

// Resolve walks every facet in doc and replaces AliasValue nodes with deep
// copies of their anchor's subtree, in place. It reports F201 for an unknown
// label or a cycle, and F202 for a label bound twice within one facet.
func Resolve(doc *ast.Document, reporter *diagnostic.Reporter) {
	for _, f := range doc.Facets {
		r := &facetResolver{defs: map[string]ast.Value{}, resolving: map[string]bool{}, reporter: reporter}
		r.collect(f)
		if f.Mapping != nil {
			for _, pair := range f.Mapping.Pairs {
				pair.Value = r.resolveValue(pair.Value)
			}
		}
		if f.List != nil {
			for _, item := range f.List.Items {
				item.Value = r.resolveValue(item.Value)
			}
		}
	}
}

type facetResolver struct {
	defs      map[string]ast.Value
	resolving map[string]bool
	reporter  *diagnostic.Reporter
}

// collect walks the facet body gathering anchor definitions before any
// alias is resolved, so forward references within the same facet work.
func (r *facetResolver) collect(f *ast.Facet) {
	if f.Mapping != nil {
		for _, pair := range f.Mapping.Pairs {
			r.collectValue(pair.Value)
		}
	}
	if f.List != nil {
		for _, item := range f.List.Items {
			r.collectValue(item.Value)
		}
	}
}

func (r *facetResolver) collectValue(v ast.Value) {
	switch val := v.(type) {
	case *ast.AnchorDefValue:
		if _, exists := r.defs[val.Label]; exists {
			pos := val.Position()
			r.reporter.Add(diagnostic.New(diagnostic.CodeAnchorRedefined, pos.Line, pos.Column, "anchor %q is already defined in this facet", val.Label))
		}
		r.defs[val.Label] = val.Inner
		r.collectValue(val.Inner)
	case *ast.NestedMapValue:
		for _, pair := range val.Block.Pairs {
			r.collectValue(pair.Value)
		}
	case *ast.NestedListValue:
		for _, item := range val.Block.Items {
			r.collectValue(item.Value)
		}
	case *ast.InlineMapValue:
		for _, pair := range val.Pairs {
			r.collectValue(pair.Value)
		}
	case *ast.InlineListValue:
		for _, item := range val.Items {
			r.collectValue(item)
		}
	}
}

// resolveValue returns v with every AliasValue replaced by a deep copy of
// its anchor's resolved subtree. Non-collection, non-alias values pass
// through unchanged.
func (r *facetResolver) resolveValue(v ast.Value) ast.Value {
	switch val := v.(type) {
	case *ast.AliasValue:
		return r.resolveAlias(val)
	case *ast.AnchorDefValue:
		return ast.NewAnchorDef(val.Position(), val.Label, r.resolveValue(val.Inner))
	case *ast.NestedMapValue:
		nb := &ast.MappingBlock{}
		for _, pair := range val.Block.Pairs {
			nb.Pairs = append(nb.Pairs, &ast.MappingPair{Key: pair.Key, Value: r.resolveValue(pair.Value), Pipeline: pair.Pipeline, Pos: pair.Pos})
		}
		return ast.NewNestedMap(val.Position(), nb)
	case *ast.NestedListValue:
		nb := &ast.ListBlock{}
		for _, item := range val.Block.Items {
			nb.Items = append(nb.Items, &ast.ListItem{Value: r.resolveValue(item.Value), If: item.If, IfPos: item.IfPos, Pipeline: item.Pipeline, Pos: item.Pos})
		}
		return ast.NewNestedList(val.Position(), nb)
	case *ast.InlineMapValue:
		var pairs []*ast.MappingPair
		for _, pair := range val.Pairs {
			pairs = append(pairs, &ast.MappingPair{Key: pair.Key, Value: r.resolveValue(pair.Value), Pos: pair.Pos})
		}
		return ast.NewInlineMap(val.Position(), pairs)
	case *ast.InlineListValue:
		var items []ast.Value
		for _, item := range val.Items {
			items = append(items, r.resolveValue(item))
		}
		return ast.NewInlineList(val.Position(), items)
	default:
		return v
	}
}

func (r *facetResolver) resolveAlias(a *ast.AliasValue) ast.Value {
	if r.resolving[a.Label] {
		pos := a.Position()
		r.reporter.Add(diagnostic.New(diagnostic.CodeAnchorAlias, pos.Line, pos.Column, "cycle detected resolving anchor %q", a.Label))
		return ast.NewNull(pos)
	}
	target, ok := r.defs[a.Label]
	if !ok {
		pos := a.Position()
		r.reporter.Add(diagnostic.New(diagnostic.CodeAnchorAlias, pos.Line, pos.Column, "undefined anchor %q", a.Label))
		return ast.NewNull(pos)
	}
	r.resolving[a.Label] = true
	resolved := r.resolveValue(target)
	delete(r.resolving, a.Label)
	return deepCopy(resolved)
}

// deepCopy clones a resolved value tree so that two aliases to the same
// anchor never share mutable structure downstream.
func deepCopy(v ast.Value) ast.Value {
	switch val := v.(type) {
	case *ast.NestedMapValue:
		nb := &ast.MappingBlock{}
		for _, pair := range val.Block.Pairs {
			nb.Pairs = append(nb.Pairs, &ast.MappingPair{Key: pair.Key, Value: deepCopy(pair.Value), Pipeline: pair.Pipeline, Pos: pair.Pos})
		}
		return ast.NewNestedMap(val.Position(), nb)
	case *ast.NestedListValue:
		nb := &ast.ListBlock{}
		for _, item := range val.Block.Items {
			nb.Items = append(nb.Items, &ast.ListItem{Value: deepCopy(item.Value), If: item.If, IfPos: item.IfPos, Pipeline: item.Pipeline, Pos: item.Pos})
		}
		return ast.NewNestedList(val.Position(), nb)
	case *ast.InlineMapValue:
		var pairs []*ast.MappingPair
		for _, pair := range val.Pairs {
			pairs = append(pairs, &ast.MappingPair{Key: pair.Key, Value: deepCopy(pair.Value), Pos: pair.Pos})
		}
		return ast.NewInlineMap(val.Position(), pairs)
	case *ast.InlineListValue:
		var items []ast.Value
		for _, item := range val.Items {
			items = append(items, deepCopy(item))
		}
		return ast.NewInlineList(val.Position(), items)
	default:
		return v
	}
}
