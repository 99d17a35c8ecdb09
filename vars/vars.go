// Package vars implements FACET's variable and type system (C7): assembling
// the @vars / @var_types scope, validating values against declared types and
// constraints with go-playground/validator (the same library the teacher
// corpus reaches for in struct-tag constraint checks), and substituting
// "$name" / "${a.b}" references and "{{ ... }}" interpolation expressions.
package vars

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/facet-lang/facet/ast"
	"github.com/facet-lang/facet/diagnostic"
	validator "github.com/go-playground/validator/v10"
)

// ResolveMode selects whether host_vars or the document's own @vars facet
// wins when both declare the same name.
type ResolveMode int

const (
	// ModeHostOverride: host_vars takes precedence over @vars (default).
	ModeHostOverride ResolveMode = iota
	// ModeDocumentOnly: only the document's own @vars facet is used; host
	// vars are ignored entirely.
	ModeDocumentOnly
)

// TypeDecl is one @var_types declaration.
type TypeDecl struct {
	Type       string // "string", "number", "bool", "list", "map"
	Constraint string // go-playground/validator tag text, e.g. "min=1,max=100"
}

// Scope is the flat, document-wide variable namespace (Open Question
// resolved in favor of flat scoping per spec.md's own recommendation: one
// namespace for the whole document, not per-facet lexical scoping).
type Scope struct {
	values map[string]interface{}
	types  map[string]TypeDecl
}

// Lookup implements expr.Scope, resolving dotted paths against nested
// map/list values the same way JSON-pointer-like dotted access works
// elsewhere in the pipeline.
func (s *Scope) Lookup(path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	var cur interface{} = s.values
	for i, part := range parts {
		m, ok := cur.(map[string]interface{})
		if !ok {
			if i == 0 {
				if v, ok2 := s.values[part]; ok2 {
					cur = v
					continue
				}
			}
			return nil, false
		}
		v, ok := m[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// Get returns the raw value bound to name, without dotted traversal.
func (s *Scope) Get(name string) (interface{}, bool) {
	v, ok := s.values[name]
	return v, ok
}

var validate = validator.New()

// Assemble builds a Scope from a document's @vars/@var_types facets plus
// host-supplied variables, validating every declared variable's type and
// constraint and reporting F451/F452 for violations.
func Assemble(doc *ast.Document, hostVars map[string]interface{}, mode ResolveMode, reporter *diagnostic.Reporter) *Scope {
	scope := &Scope{values: map[string]interface{}{}, types: map[string]TypeDecl{}}

	for _, f := range doc.Facets {
		if f.IsVarTypes() && f.Mapping != nil {
			for _, pair := range f.Mapping.Pairs {
				scope.types[pair.Key] = parseTypeDecl(pair.Value)
			}
		}
	}

	for _, f := range doc.Facets {
		if f.IsVars() && f.Mapping != nil {
			for _, pair := range f.Mapping.Pairs {
				scope.values[pair.Key] = valueToInterface(pair.Value)
			}
		}
	}

	if mode == ModeHostOverride {
		for k, v := range hostVars {
			scope.values[k] = v
		}
	} else {
		scope.values = map[string]interface{}{}
		for _, f := range doc.Facets {
			if f.IsVars() && f.Mapping != nil {
				for _, pair := range f.Mapping.Pairs {
					scope.values[pair.Key] = valueToInterface(pair.Value)
				}
			}
		}
	}

	for name, decl := range scope.types {
		v, present := scope.values[name]
		if !present {
			continue
		}
		if err := checkType(v, decl.Type); err != nil {
			reporter.Add(diagnostic.New(diagnostic.CodeVarTypeViolation, 1, 1, "variable %q: %s", name, err))
			continue
		}
		if decl.Constraint != "" {
			if err := validate.Var(v, decl.Constraint); err != nil {
				reporter.Add(diagnostic.New(diagnostic.CodeVarConstraint, 1, 1, "variable %q fails constraint %q: %s", name, decl.Constraint, err))
			}
		}
	}

	return scope
}

func parseTypeDecl(v ast.Value) TypeDecl {
	switch val := v.(type) {
	case *ast.StringValue:
		return splitTypeDecl(val.Text)
	case *ast.IdentValue:
		return splitTypeDecl(val.Name)
	case *ast.InlineMapValue:
		decl := TypeDecl{}
		for _, pair := range val.Pairs {
			switch pair.Key {
			case "type":
				if sv, ok := pair.Value.(*ast.StringValue); ok {
					decl.Type = sv.Text
				} else if iv, ok := pair.Value.(*ast.IdentValue); ok {
					decl.Type = iv.Name
				}
			case "constraint":
				if sv, ok := pair.Value.(*ast.StringValue); ok {
					decl.Constraint = sv.Text
				}
			}
		}
		return decl
	default:
		return TypeDecl{}
	}
}

func splitTypeDecl(s string) TypeDecl {
	parts := strings.SplitN(s, ":", 2)
	decl := TypeDecl{Type: strings.TrimSpace(parts[0])}
	if len(parts) == 2 {
		decl.Constraint = strings.TrimSpace(parts[1])
	}
	return decl
}

func checkType(v interface{}, typeName string) error {
	switch typeName {
	case "", "any":
		return nil
	case "string":
		if _, ok := v.(string); !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
	case "number":
		if _, ok := v.(float64); !ok {
			return fmt.Errorf("expected number, got %T", v)
		}
	case "bool":
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("expected bool, got %T", v)
		}
	case "list":
		if _, ok := v.([]interface{}); !ok {
			return fmt.Errorf("expected list, got %T", v)
		}
	case "map":
		if _, ok := v.(map[string]interface{}); !ok {
			return fmt.Errorf("expected map, got %T", v)
		}
	}
	return nil
}

func valueToInterface(v ast.Value) interface{} {
	switch val := v.(type) {
	case *ast.StringValue:
		return val.Text
	case *ast.NumberValue:
		return val.Num
	case *ast.BoolValue:
		return val.Val
	case *ast.NullValue:
		return nil
	case *ast.IdentValue:
		return val.Name
	case *ast.InlineListValue:
		out := make([]interface{}, 0, len(val.Items))
		for _, item := range val.Items {
			out = append(out, valueToInterface(item))
		}
		return out
	case *ast.InlineMapValue:
		out := map[string]interface{}{}
		for _, pair := range val.Pairs {
			out[pair.Key] = valueToInterface(pair.Value)
		}
		return out
	default:
		return nil
	}
}

var (
	simpleRefRe = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
	pathRefRe   = regexp.MustCompile(`\$\{([A-Za-z0-9_.]+)\}`)
	interpRe    = regexp.MustCompile(`\{\{\s*([^}]+?)\s*\}\}`)
)

// Substitute replaces every "$name" and "${a.b}" reference in text with its
// looked-up value's string form, reporting F404 for an unresolved path.
func Substitute(text string, scope *Scope, line, col int, reporter *diagnostic.Reporter) string {
	text = pathRefRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := pathRefRe.FindStringSubmatch(m)
		v, ok := scope.Lookup(sub[1])
		if !ok {
			reporter.Add(diagnostic.New(diagnostic.CodeMissingSubstPath, line, col, "undefined variable path %q", sub[1]))
			return m
		}
		return stringifyScalar(v)
	})
	text = simpleRefRe.ReplaceAllStringFunc(text, func(m string) string {
		name := m[1:]
		v, ok := scope.Get(name)
		if !ok {
			reporter.Add(diagnostic.New(diagnostic.CodeMissingSubstPath, line, col, "undefined variable %q", name))
			return m
		}
		return stringifyScalar(v)
	})
	return text
}

// Interpolate evaluates every "{{ ... }}" span in text, where the body is a
// dotted variable path optionally followed by lens-pipeline segments
// ("{{ name |> upper }}"). pipe is supplied by the caller (canon) so this
// package does not need to import the lens registry directly.
func Interpolate(text string, scope *Scope, line, col int, reporter *diagnostic.Reporter, pipe func(value interface{}, lensExpr string) (interface{}, error)) string {
	return interpRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := interpRe.FindStringSubmatch(m)
		expr := sub[1]
		parts := strings.SplitN(expr, "|>", 2)
		path := strings.TrimSpace(parts[0])
		v, ok := scope.Lookup(path)
		if !ok {
			reporter.Add(diagnostic.New(diagnostic.CodeMissingInterpPath, line, col, "undefined interpolation path %q", path))
			return m
		}
		if len(parts) == 2 && pipe != nil {
			out, err := pipe(v, strings.TrimSpace(parts[1]))
			if err != nil {
				reporter.Add(diagnostic.New(diagnostic.CodeMissingInterpPath, line, col, "interpolation pipeline error: %s", err))
				return m
			}
			return stringifyScalar(out)
		}
		return stringifyScalar(v)
	})
}

func stringifyScalar(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
