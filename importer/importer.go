// Package importer implements FACET's @import expander (C8): resolving
// relative import paths against an allowlisted root set, caching parsed
// documents per canonical path, detecting cycles and enforcing depth/count
// limits, and merging or replacing the imported document's facets into the
// importing document. Structured as a small stack-based walker the way the
// teacher corpus's goccy/go-yaml anchor/alias cycle guard is structured
// (a "currently resolving" set plus a depth counter), generalized here to
// whole-document imports instead of single anchors.
package importer

import (
	"path"
	"strings"

	"github.com/facet-lang/facet/ast"
	"github.com/facet-lang/facet/diagnostic"
	"github.com/facet-lang/facet/internal/limits"
)

// Loader fetches the raw bytes of an import path. The host surface supplies
// the concrete implementation (filesystem, embedded FS, in-memory map);
// this package only orchestrates caching, cycle detection, and merging.
type Loader func(canonicalPath string) ([]byte, error)

// Parser parses raw source into a Document; injected to avoid an import
// cycle with the parser package's own dependency graph.
type Parser func(source []byte, reporter *diagnostic.Reporter) *ast.Document

// Roots lists the allowlisted import root directories. An import path must
// normalize to something rooted under one of these after dot-segment
// resolution (F601 otherwise).
type Roots []string

// Expander resolves @import facets, replacing them with the imported
// document's top-level facets per the merge/replace rules in spec §4.7.
type Expander struct {
	load     Loader
	parse    Parser
	roots    Roots
	reporter *diagnostic.Reporter
	cache    map[string]*ast.Document
	stack    map[string]bool
	count    int
}

func New(load Loader, parse Parser, roots Roots, reporter *diagnostic.Reporter) *Expander {
	return &Expander{
		load:     load,
		parse:    parse,
		roots:    roots,
		reporter: reporter,
		cache:    map[string]*ast.Document{},
		stack:    map[string]bool{},
	}
}

// Expand rewrites doc in place, replacing every @import facet with the
// facets it imports, recursively, then collapses any facets that now share a
// name (an imported facet followed by a locally declared one of the same
// name, or two imports contributing the same name) into one, per spec §4.8's
// "duplicate facet names after merge collapse to one, following the merge
// rule for their bodies."
func (e *Expander) Expand(doc *ast.Document, basePath string) []*ast.Facet {
	expanded := e.expandFacets(doc.Facets, basePath, 0)
	return CollapseDuplicateFacets(expanded, e.reporter)
}

// CollapseDuplicateFacets merges every facet sharing a name with an earlier
// one (in encounter order) into that earlier facet, using the same
// last-wins-per-key / concatenate-lists merge rule mergeFacets applies at an
// @import site. Compile-time facets (@import, @vars, @var_types) are left
// alone; they are never subject to this rule.
func CollapseDuplicateFacets(facets []*ast.Facet, reporter *diagnostic.Reporter) []*ast.Facet {
	index := map[string]int{}
	var out []*ast.Facet
	for _, f := range facets {
		if f.IsImport() || f.IsVars() || f.IsVarTypes() {
			out = append(out, f)
			continue
		}
		if i, exists := index[f.Name]; exists {
			mergeFacetInto(out[i], f, reporter)
			continue
		}
		index[f.Name] = len(out)
		out = append(out, f)
	}
	return out
}

// mergeFacetInto merges overlay's attrs and body into base in place.
func mergeFacetInto(base, overlay *ast.Facet, reporter *diagnostic.Reporter) {
	mergeAttrsInto(base, overlay)
	switch {
	case base.Mapping != nil && overlay.Mapping != nil:
		mergeMappingInto(base.Mapping, overlay.Mapping)
	case base.List != nil && overlay.List != nil:
		base.List.Items = append(base.List.Items, overlay.List.Items...)
	case base.Mapping == nil && base.List == nil:
		base.Mapping, base.List = overlay.Mapping, overlay.List
	default:
		reporter.Add(diagnostic.New(diagnostic.CodeStrictMergeShape, overlay.Pos.Line, overlay.Pos.Column, "cannot merge mismatched mapping/list shapes for facet %q", overlay.Name))
	}
}

func mergeAttrsInto(base, overlay *ast.Facet) {
	index := map[string]int{}
	for i, a := range base.Attrs {
		index[a.Name] = i
	}
	for _, a := range overlay.Attrs {
		if i, exists := index[a.Name]; exists {
			base.Attrs[i] = a
		} else {
			base.Attrs = append(base.Attrs, a)
			index[a.Name] = len(base.Attrs) - 1
		}
	}
}

func (e *Expander) expandFacets(facets []*ast.Facet, basePath string, depth int) []*ast.Facet {
	var out []*ast.Facet
	for _, f := range facets {
		if !f.IsImport() {
			out = append(out, f)
			continue
		}
		imported := e.expandOne(f, basePath, depth)
		out = append(out, imported...)
	}
	return out
}

func (e *Expander) expandOne(f *ast.Facet, basePath string, depth int) []*ast.Facet {
	pathAttr, mode := importAttrs(f)
	if pathAttr == "" {
		e.reporter.Add(diagnostic.New(diagnostic.CodeImportPath, f.Pos.Line, f.Pos.Column, "@import requires a 'path' attribute"))
		return nil
	}

	canonical, ok := e.canonicalize(basePath, pathAttr)
	if !ok {
		e.reporter.Add(diagnostic.New(diagnostic.CodeImportPath, f.Pos.Line, f.Pos.Column, "import path %q escapes the allowed roots", pathAttr))
		return nil
	}

	if depth+1 > limits.MaxImportDepth {
		e.reporter.Fatal(diagnostic.New(diagnostic.CodeImportCycle, f.Pos.Line, f.Pos.Column, "maximum import depth exceeded"))
		return nil
	}
	if e.stack[canonical] {
		e.reporter.Fatal(diagnostic.New(diagnostic.CodeImportCycle, f.Pos.Line, f.Pos.Column, "import cycle detected at %q", canonical))
		return nil
	}

	doc, ok := e.cache[canonical]
	if !ok {
		e.count++
		if e.count > limits.MaxImportCount {
			e.reporter.Fatal(diagnostic.New(diagnostic.CodeImportCycle, f.Pos.Line, f.Pos.Column, "maximum import count exceeded"))
			return nil
		}
		raw, err := e.load(canonical)
		if err != nil {
			e.reporter.Add(diagnostic.New(diagnostic.CodeImportPath, f.Pos.Line, f.Pos.Column, "failed to load import %q: %s", canonical, err))
			return nil
		}
		doc = e.parse(raw, e.reporter)
		if doc == nil {
			return nil
		}
		e.cache[canonical] = doc
	}

	e.stack[canonical] = true
	expanded := e.expandFacets(doc.Facets, path.Dir(canonical), depth+1)
	delete(e.stack, canonical)

	if mode == "replace" {
		return expanded
	}
	return mergeFacets(expanded, f, e.reporter)
}

func importAttrs(f *ast.Facet) (importPath, mode string) {
	mode = "merge"
	for _, a := range f.Attrs {
		switch a.Name {
		case "path":
			if sv, ok := a.Value.(*ast.StringValue); ok {
				importPath = sv.Text
			}
		case "mode":
			if sv, ok := a.Value.(*ast.StringValue); ok {
				mode = sv.Text
			} else if iv, ok := a.Value.(*ast.IdentValue); ok {
				mode = iv.Name
			}
		}
	}
	return importPath, mode
}

// canonicalize resolves relativePath against basePath and checks the result
// falls under one of the allowlisted roots, rejecting any path containing
// an unresolved ".." escape.
func (e *Expander) canonicalize(basePath, relativePath string) (string, bool) {
	if strings.HasPrefix(relativePath, "/") {
		return "", false
	}
	joined := path.Join(basePath, relativePath)
	cleaned := path.Clean(joined)
	if strings.HasPrefix(cleaned, "..") {
		return "", false
	}
	if len(e.roots) == 0 {
		return cleaned, true
	}
	for _, root := range e.roots {
		rc := path.Clean(root)
		if cleaned == rc || strings.HasPrefix(cleaned, rc+"/") {
			return cleaned, true
		}
	}
	return "", false
}

// mergeFacets merges the importing facet's own body into every imported
// facet of the same shape (the @import body wins on key collisions, lists
// concatenated), per spec §4.7's default "merge" mode. "importer" carries
// any body the @import facet itself declared; its attributes are not merged.
func mergeFacets(imported []*ast.Facet, importer *ast.Facet, reporter *diagnostic.Reporter) []*ast.Facet {
	if importer.Mapping == nil && importer.List == nil {
		return imported
	}
	var out []*ast.Facet
	out = append(out, imported...)
	for _, imp := range imported {
		if importer.Mapping != nil && imp.Mapping != nil {
			mergeMappingInto(imp.Mapping, importer.Mapping)
		}
		if importer.List != nil && imp.List != nil {
			imp.List.Items = append(imp.List.Items, importer.List.Items...)
		}
		if (importer.Mapping != nil) != (imp.Mapping != nil) || (importer.List != nil) != (imp.List != nil) {
			reporter.Add(diagnostic.New(diagnostic.CodeStrictMergeShape, importer.Pos.Line, importer.Pos.Column, "cannot merge mismatched mapping/list shapes for facet %q", imp.Name))
		}
	}
	return out
}

func mergeMappingInto(base, overlay *ast.MappingBlock) {
	index := map[string]int{}
	for i, pair := range base.Pairs {
		index[pair.Key] = i
	}
	for _, pair := range overlay.Pairs {
		if i, exists := index[pair.Key]; exists {
			base.Pairs[i] = pair
		} else {
			base.Pairs = append(base.Pairs, pair)
			index[pair.Key] = len(base.Pairs) - 1
		}
	}
}
