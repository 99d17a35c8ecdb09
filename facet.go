// Package facet is FACET's host surface (C13): the small, stable API an
// embedding Go program uses to compile FACET markup to canonical JSON
// without depending on any internal package directly. The functional-options
// Config here is the same shape the teacher corpus exposes at its own
// package root (yaml.Marshal(v, opts ...EncodeOption)), adapted to FACET's
// compile-not-decode direction.
package facet

import (
	"github.com/facet-lang/facet/canon"
	"github.com/facet-lang/facet/cvalue"
	"github.com/facet-lang/facet/diagnostic"
	"github.com/facet-lang/facet/importer"
	"github.com/facet-lang/facet/vars"
)

// Config holds every option controlling one Canonize/Lint call.
type Config struct {
	hostVars    map[string]interface{}
	resolveMode vars.ResolveMode
	importRoots importer.Roots
	importLoad  importer.Loader
	strictMerge bool
}

// Option mutates a Config; see WithHostVars, WithDocumentOnlyVars,
// WithImportRoots, WithImportLoader, WithStrictMerge.
type Option func(*Config)

// WithHostVars supplies host-provided variables, which by default override
// any same-named @vars declaration in the document.
func WithHostVars(vars map[string]interface{}) Option {
	return func(c *Config) { c.hostVars = vars }
}

// WithDocumentOnlyVars ignores host_vars for resolution purposes, using only
// the document's own @vars facet.
func WithDocumentOnlyVars() Option {
	return func(c *Config) { c.resolveMode = vars.ModeDocumentOnly }
}

// WithImportRoots restricts @import resolution to the given allowlisted
// root directories. With no roots set, any non-escaping relative path is
// permitted.
func WithImportRoots(roots ...string) Option {
	return func(c *Config) { c.importRoots = roots }
}

// WithImportLoader supplies the function used to fetch raw import bytes by
// canonical path. Without a loader, @import facets are left unexpanded and
// reported as F601.
func WithImportLoader(load func(canonicalPath string) ([]byte, error)) Option {
	return func(c *Config) { c.importLoad = load }
}

// WithStrictMerge sets canon.Options.StrictMerge. The importer does not read
// that flag: a merge-mode shape mismatch (mapping vs. list) is reported as a
// non-fatal F605 with or without this option, and the later facet's body
// does not replace the earlier one in either case.
func WithStrictMerge() Option {
	return func(c *Config) { c.strictMerge = true }
}

func build(opts []Option) canon.Options {
	cfg := &Config{hostVars: map[string]interface{}{}}
	for _, opt := range opts {
		opt(cfg)
	}
	return canon.Options{
		HostVars:    cfg.hostVars,
		ResolveMode: cfg.resolveMode,
		ImportRoots: cfg.importRoots,
		ImportLoad:  cfg.importLoad,
		StrictMerge: cfg.strictMerge,
	}
}

// Canonize compiles FACET source to canonical JSON bytes. Diagnostics are
// always returned alongside the JSON; a non-empty, non-fatal diagnostic set
// does not prevent JSON from being produced, but a fatal one does (json is
// nil in that case).
func Canonize(source []byte, opts ...Option) ([]byte, []*diagnostic.Diagnostic) {
	value, reporter := canon.Canonize(source, build(opts))
	if reporter.HasFatal() || value == nil {
		return nil, reporter.Diagnostics()
	}
	return []byte(cvalue.Serialize(value)), reporter.Diagnostics()
}

// Lint runs the full pipeline for diagnostics only, without producing JSON.
func Lint(source []byte, opts ...Option) []*diagnostic.Diagnostic {
	reporter := canon.Lint(source, build(opts))
	return reporter.Diagnostics()
}

// FormatError renders one diagnostic from Canonize/Lint as a human-readable,
// source-snippet-carrying string, so a host program need not import
// diagnostic directly just to print what Canonize/Lint already returned.
func FormatError(source []byte, d *diagnostic.Diagnostic, colored bool) string {
	return diagnostic.Format(string(source), d, colored)
}
