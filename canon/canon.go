// Package canon orchestrates FACET's full compile pipeline (C10): lex and
// parse, expand imports, assemble the variable scope, prune conditional
// nodes, resolve anchors and aliases, substitute and interpolate variables,
// apply lens pipelines, convert extended scalars, and finally build and
// serialize the canonical JSON value tree -- in that fixed order, since each
// stage's output is the next stage's only input (no stage re-reads raw AST
// text). Conditional pruning runs before anchor resolution, not after: a
// pruned alias definition must still surface F201 for any surviving alias
// that references it (spec §4.8 step 4 is explicit that authors must not
// alias across conditional boundaries). The orchestrator-over-single-pass-
// stages layout mirrors the teacher corpus's own yaml.go Marshal/Unmarshal
// entry points, which thread one parsed tree through a short fixed sequence
// of passes rather than a single monolithic walk.
package canon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/facet-lang/facet/anchor"
	"github.com/facet-lang/facet/ast"
	"github.com/facet-lang/facet/cvalue"
	"github.com/facet-lang/facet/diagnostic"
	"github.com/facet-lang/facet/importer"
	"github.com/facet-lang/facet/internal/xerr"
	"github.com/facet-lang/facet/lens"
	"github.com/facet-lang/facet/parser"
	"github.com/facet-lang/facet/scalar"
	"github.com/facet-lang/facet/vars"
)

// Options configures one Canonize/Lint invocation (host surface C13 builds
// this from its public functional options).
type Options struct {
	HostVars    map[string]interface{}
	ResolveMode vars.ResolveMode
	ImportRoots importer.Roots
	ImportLoad  importer.Loader
	StrictMerge bool
}

// Canonize runs the full pipeline over source and returns the resulting
// canonical value tree plus every diagnostic recorded along the way. The
// caller must check reporter.HasFatal() before trusting the returned value.
func Canonize(source []byte, opts Options) (*cvalue.Value, *diagnostic.Reporter) {
	reporter := diagnostic.NewReporter(string(source))

	doc := parser.Parse(source, reporter)
	if reporter.HasFatal() || doc == nil {
		return nil, reporter
	}

	if opts.ImportLoad != nil {
		exp := importer.New(opts.ImportLoad, parser.Parse, opts.ImportRoots, reporter)
		doc.Facets = exp.Expand(doc, ".")
		if reporter.HasFatal() {
			return nil, reporter
		}
	} else {
		for _, f := range doc.Facets {
			if f.IsImport() {
				reporter.Add(diagnostic.New(diagnostic.CodeImportPath, f.Pos.Line, f.Pos.Column, "@import cannot be expanded: no import loader is configured"))
			}
		}
		// Expand already collapses duplicate facet names against imported
		// siblings; with no importer configured, still collapse same-named
		// facets declared directly in the document itself.
		doc.Facets = importer.CollapseDuplicateFacets(doc.Facets, reporter)
	}

	scope := vars.Assemble(doc, opts.HostVars, opts.ResolveMode, reporter)

	prune(doc, scope, reporter)

	anchor.Resolve(doc, reporter)
	if reporter.HasFatal() {
		return nil, reporter
	}

	root := cvalue.NewObject()
	for _, f := range doc.Facets {
		if f.IsImport() || f.IsVars() || f.IsVarTypes() {
			continue
		}
		val := buildFacetValue(f, scope, reporter)
		root.Set(f.Name, val)
	}

	return cvalue.Obj(root), reporter
}

// Lint runs the full Canonize pipeline and returns only its diagnostics,
// discarding the value tree; cmd/facet's "lint" and "validate" subcommands
// use it.
func Lint(source []byte, opts Options) *diagnostic.Reporter {
	_, reporter := Canonize(source, opts)
	return reporter
}

func buildFacetValue(f *ast.Facet, scope *vars.Scope, reporter *diagnostic.Reporter) *cvalue.Value {
	obj := cvalue.NewObject()
	attrsObj := cvalue.NewObject()
	for _, a := range f.Attrs {
		attrsObj.Set(a.Name, buildValue(a.Value, scope, reporter))
	}
	obj.Set("_attrs", cvalue.Obj(attrsObj))
	switch {
	case f.Mapping != nil:
		for _, pair := range f.Mapping.Pairs {
			v := buildPairValue(pair.Value, pair.Pipeline, scope, reporter)
			obj.Set(pair.Key, v)
		}
	case f.List != nil:
		// Conditional pruning already removed falsy items (see prune.go), so
		// every item here survives unconditionally.
		var items []*cvalue.Value
		for _, item := range f.List.Items {
			items = append(items, buildPairValue(item.Value, item.Pipeline, scope, reporter))
		}
		obj.Set("items", cvalue.Arr(items))
	}
	return cvalue.Obj(obj)
}

// buildPairValue applies substitution/interpolation and any pipeline to a
// single mapping-pair or list-item value, then converts it to cvalue.
func buildPairValue(v ast.Value, pipeline *ast.Pipeline, scope *vars.Scope, reporter *diagnostic.Reporter) *cvalue.Value {
	built := buildValue(v, scope, reporter)
	if pipeline == nil || len(pipeline.Calls) == 0 {
		return built
	}
	current := cvalue.ToGo(built)
	for _, call := range pipeline.Calls {
		l, ok := lens.Lookup(call.Name, call.Pos.Line, call.Pos.Column, reporter)
		if !ok {
			continue
		}
		args := make([]interface{}, 0, len(call.Args))
		for _, a := range call.Args {
			args = append(args, cvalue.ToGo(buildValue(a, scope, reporter)))
		}
		kwargs := map[string]interface{}{}
		for k, kv := range call.KwArgs {
			kwargs[k] = cvalue.ToGo(buildValue(kv, scope, reporter))
		}
		out, err := l(current, args, kwargs)
		if err != nil {
			reporter.Add(diagnostic.New(diagnostic.CodeLensInputType, call.Pos.Line, call.Pos.Column, "%s", err))
			continue
		}
		current = out
	}
	return cvalue.FromGo(current)
}

func buildValue(v ast.Value, scope *vars.Scope, reporter *diagnostic.Reporter) *cvalue.Value {
	switch val := v.(type) {
	case *ast.StringValue:
		pos := val.Position()
		text := vars.Substitute(val.Text, scope, pos.Line, pos.Column, reporter)
		text = vars.Interpolate(text, scope, pos.Line, pos.Column, reporter, pipeInterpolation(scope, reporter))
		return cvalue.String(text)
	case *ast.NumberValue:
		return cvalue.Number(val.Num)
	case *ast.BoolValue:
		return cvalue.Bool(val.Val)
	case *ast.NullValue:
		return cvalue.Null()
	case *ast.IdentValue:
		return cvalue.String(val.Name)
	case *ast.FenceValue:
		pos := val.Position()
		text := vars.Substitute(val.Body, scope, pos.Line, pos.Column, reporter)
		return cvalue.String(text)
	case *ast.ExtendedScalarValue:
		out, err := scalar.Canonicalize(val.ScalarKind, val.Text)
		if err != nil {
			pos := val.Position()
			reporter.Add(diagnostic.New(diagnostic.CodeRegexCompile, pos.Line, pos.Column, "%s", err))
			return cvalue.String(val.Text)
		}
		return cvalue.String(out)
	case *ast.InlineMapValue:
		obj := cvalue.NewObject()
		for _, pair := range val.Pairs {
			obj.Set(pair.Key, buildValue(pair.Value, scope, reporter))
		}
		return cvalue.Obj(obj)
	case *ast.InlineListValue:
		var items []*cvalue.Value
		for _, item := range val.Items {
			items = append(items, buildValue(item, scope, reporter))
		}
		return cvalue.Arr(items)
	case *ast.NestedMapValue:
		obj := cvalue.NewObject()
		for _, pair := range val.Block.Pairs {
			obj.Set(pair.Key, buildPairValue(pair.Value, pair.Pipeline, scope, reporter))
		}
		return cvalue.Obj(obj)
	case *ast.NestedListValue:
		// Conditional pruning already removed falsy items (see prune.go).
		var items []*cvalue.Value
		for _, item := range val.Block.Items {
			items = append(items, buildPairValue(item.Value, item.Pipeline, scope, reporter))
		}
		return cvalue.Arr(items)
	case *ast.AnchorDefValue:
		return buildValue(val.Inner, scope, reporter)
	case *ast.AliasValue:
		// Aliases are already substituted in place by anchor.Resolve before
		// this function runs; reaching here means resolution failed and a
		// diagnostic was already recorded.
		return cvalue.Null()
	default:
		// Reaching here means a new ast.Value variant was added without a
		// matching case above -- an engine bug, not a source error, so it is
		// reported under the internal code rather than one of the F1xx-F8xx
		// source-diagnostic families.
		pos := v.Position()
		err := xerr.Newf("canon: unhandled ast.Value type %T", v)
		reporter.Add(diagnostic.New(diagnostic.CodeInternal, pos.Line, pos.Column, "%s", err))
		return cvalue.Null()
	}
}

// pipeInterpolation adapts the lens registry to vars.Interpolate's callback
// shape, used for "{{ path |> lens(args) }}" interpolation segments. The
// segment after "|>" is a full lens call, not just a bare name -- e.g.
// spec.md Scenario D's "{{ greetings |> choose(seed=$seed) }}" -- so this
// parses out the call's positional/keyword arguments and resolves any
// "$name"/"${a.b}" reference inside them against scope before invoking the
// lens, the same argument shapes parser.parseLensArgLiteral accepts for a
// pipeline lens call parsed from tokens.
func pipeInterpolation(scope *vars.Scope, reporter *diagnostic.Reporter) func(interface{}, string) (interface{}, error) {
	return func(value interface{}, lensExpr string) (interface{}, error) {
		name, argsRaw, ok := splitLensCall(lensExpr)
		if !ok {
			return value, fmt.Errorf("malformed lens expression %q", lensExpr)
		}
		l, found := lens.Lookup(name, 0, 0, reporter)
		if !found {
			return value, nil
		}
		var args []interface{}
		kwargs := map[string]interface{}{}
		for _, raw := range argsRaw {
			if raw == "" {
				continue
			}
			if key, valRaw, isKwarg := splitLensArg(raw); isKwarg {
				kwargs[key] = resolveLensArgToken(valRaw, scope)
			} else {
				args = append(args, resolveLensArgToken(raw, scope))
			}
		}
		return l(value, args, kwargs)
	}
}

var (
	lensCallRe = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*(?:\(([^)]*)\))?$`)
	kwNameRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// splitLensCall parses "name" or "name(arg, kw=val, ...)" into the lens name
// and its raw, comma-split argument texts.
func splitLensCall(expr string) (name string, argsRaw []string, ok bool) {
	m := lensCallRe.FindStringSubmatch(strings.TrimSpace(expr))
	if m == nil {
		return "", nil, false
	}
	if m[2] == "" {
		return m[1], nil, true
	}
	for _, part := range strings.Split(m[2], ",") {
		argsRaw = append(argsRaw, strings.TrimSpace(part))
	}
	return m[1], argsRaw, true
}

// splitLensArg distinguishes "key=value" keyword arguments from bare
// positional ones.
func splitLensArg(raw string) (key, valueRaw string, isKwarg bool) {
	if i := strings.IndexByte(raw, '='); i > 0 {
		candidate := strings.TrimSpace(raw[:i])
		if kwNameRe.MatchString(candidate) {
			return candidate, strings.TrimSpace(raw[i+1:]), true
		}
	}
	return "", raw, false
}

// resolveLensArgToken resolves one raw argument token: a "$name"/"${a.b}"
// variable reference against scope, a quoted string, a bool/null keyword, a
// number, or else the raw text itself.
func resolveLensArgToken(raw string, scope *vars.Scope) interface{} {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "${") && strings.HasSuffix(raw, "}") {
		v, _ := scope.Lookup(raw[2 : len(raw)-1])
		return v
	}
	if strings.HasPrefix(raw, "$") {
		v, _ := scope.Get(raw[1:])
		return v
	}
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') && raw[len(raw)-1] == raw[0] {
		return raw[1 : len(raw)-1]
	}
	switch raw {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
