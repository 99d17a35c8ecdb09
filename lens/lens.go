// Package lens implements FACET's lens runtime (C9): an immutable-after-init
// registry of named transform functions applied left to right in a pipeline,
// each contract-checked for argument arity/type before it runs. The registry
// pattern mirrors the teacher corpus's resolve.go tag-to-decoder table
// (goccy/go-yaml): a fixed map populated once at package init, never mutated
// at call time, looked up by name on every invocation.
package lens

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/facet-lang/facet/diagnostic"
)

// Lens is one registered transform. in is the value flowing through the
// pipeline (always a string for every lens except choose/shuffle, which also
// accept lists); args/kwargs are the call's literal arguments, already
// evaluated to Go values by the caller.
type Lens func(in interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error)

var registry = map[string]Lens{
	"trim":              lensTrim,
	"dedent":            lensDedent,
	"squeeze_spaces":    lensSqueezeSpaces,
	"limit":             lensLimit,
	"normalize_newlines": lensNormalizeNewlines,
	"lower":             lensLower,
	"upper":             lensUpper,
	"replace":           lensReplace,
	"regex_replace":     lensRegexReplace,
	"choose":            lensChoose,
	"shuffle":           lensShuffle,
	"json_minify":       lensJSONMinify,
	"strip_markdown":    lensStripMarkdown,
}

// Lookup returns the named lens, reporting F802 (unknown lens) when absent.
func Lookup(name string, line, col int, reporter *diagnostic.Reporter) (Lens, bool) {
	l, ok := registry[name]
	if !ok {
		reporter.Add(diagnostic.New(diagnostic.CodeUnknownLens, line, col, "unknown lens %q", name))
		return nil, false
	}
	return l, true
}

func asString(in interface{}, lensName string) (string, error) {
	s, ok := in.(string)
	if !ok {
		return "", fmt.Errorf("lens %q requires a string input, got %T", lensName, in)
	}
	return s, nil
}

func lensTrim(in interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	s, err := asString(in, "trim")
	if err != nil {
		return nil, err
	}
	return strings.TrimSpace(s), nil
}

// lensDedent removes the common leading-whitespace prefix shared by every
// non-blank line, the same minimal-indent algorithm fenced-block tooling in
// the teacher corpus's printer package uses to re-flow block scalars.
func lensDedent(in interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	s, err := asString(in, "dedent")
	if err != nil {
		return nil, err
	}
	lines := strings.Split(s, "\n")
	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent <= 0 {
		return s, nil
	}
	out := make([]string, len(lines))
	for i, line := range lines {
		if len(line) >= minIndent {
			out[i] = line[minIndent:]
		} else {
			out[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(out, "\n"), nil
}

var spaceRunRe = regexp.MustCompile(`[ \t]+`)

func lensSqueezeSpaces(in interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	s, err := asString(in, "squeeze_spaces")
	if err != nil {
		return nil, err
	}
	return spaceRunRe.ReplaceAllString(s, " "), nil
}

// lensLimit truncates to at most n runes, never splitting a multi-byte rune.
func lensLimit(in interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	s, err := asString(in, "limit")
	if err != nil {
		return nil, err
	}
	n, ok := intArg(args, kwargs, "n", 0)
	if !ok {
		return nil, fmt.Errorf("lens %q requires an integer 'n' argument", "limit")
	}
	runes := []rune(s)
	if n < 0 || n >= int64(len(runes)) {
		return s, nil
	}
	return string(runes[:n]), nil
}

func lensNormalizeNewlines(in interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	s, err := asString(in, "normalize_newlines")
	if err != nil {
		return nil, err
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return s, nil
}

func lensLower(in interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	s, err := asString(in, "lower")
	if err != nil {
		return nil, err
	}
	return strings.ToLower(s), nil
}

func lensUpper(in interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	s, err := asString(in, "upper")
	if err != nil {
		return nil, err
	}
	return strings.ToUpper(s), nil
}

func lensReplace(in interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	s, err := asString(in, "replace")
	if err != nil {
		return nil, err
	}
	from, ok := stringArg(args, kwargs, "from", 0)
	if !ok {
		return nil, fmt.Errorf("lens %q requires a 'from' string argument", "replace")
	}
	to, ok := stringArg(args, kwargs, "to", 1)
	if !ok {
		return nil, fmt.Errorf("lens %q requires a 'to' string argument", "replace")
	}
	return strings.ReplaceAll(s, from, to), nil
}

func lensRegexReplace(in interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	s, err := asString(in, "regex_replace")
	if err != nil {
		return nil, err
	}
	pattern, ok := stringArg(args, kwargs, "pattern", 0)
	if !ok {
		return nil, fmt.Errorf("lens %q requires a 'pattern' string argument", "regex_replace")
	}
	replacement, ok := stringArg(args, kwargs, "replacement", 1)
	if !ok {
		return nil, fmt.Errorf("lens %q requires a 'replacement' string argument", "regex_replace")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", pattern, err)
	}
	return re.ReplaceAllString(s, replacement), nil
}

// lensChoose deterministically selects one element of a list using a
// required integer 'seed', mod list length. A missing seed is returned as an
// ordinary error; no F804 code is attached to it, so the caller reports it
// under the same code as every other lens error.
func lensChoose(in interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	items, ok := in.([]interface{})
	if !ok {
		return nil, fmt.Errorf("lens %q requires a list input, got %T", "choose", in)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("lens %q cannot choose from an empty list", "choose")
	}
	seed, ok := intArg(args, kwargs, "seed", 0)
	if !ok {
		return nil, fmt.Errorf("missing required 'seed' argument")
	}
	idx := int(uint64(seed) % uint64(len(items)))
	return items[idx], nil
}

// lensShuffle deterministically permutes a list via a splitmix64-seeded
// Fisher-Yates shuffle, so the same seed always produces the same order
// regardless of host platform or Go version (spec invariant: no
// dependency on math/rand's algorithm, which is not guaranteed stable).
func lensShuffle(in interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	items, ok := in.([]interface{})
	if !ok {
		return nil, fmt.Errorf("lens %q requires a list input, got %T", "shuffle", in)
	}
	seed, ok := intArg(args, kwargs, "seed", 0)
	if !ok {
		return nil, fmt.Errorf("missing required 'seed' argument")
	}
	out := make([]interface{}, len(items))
	copy(out, items)
	rng := newSplitMix64(uint64(seed))
	for i := len(out) - 1; i > 0; i-- {
		j := int(rng.next() % uint64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// lensJSONMinify strips insignificant whitespace from a JSON-looking string,
// a purely textual, non-semantic (no encoding/json) minifier so unusual or
// malformed-but-lenient input doesn't get rejected outright.
func lensJSONMinify(in interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	s, err := asString(in, "json_minify")
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	inString := false
	escaped := false
	for _, r := range s {
		if inString {
			b.WriteRune(r)
			if escaped {
				escaped = false
			} else if r == '\\' {
				escaped = true
			} else if r == '"' {
				inString = false
			}
			continue
		}
		switch r {
		case '"':
			inString = true
			b.WriteRune(r)
		case ' ', '\t', '\n', '\r':
			// skip
		default:
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

var (
	mdHeadingRe = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	mdBoldRe    = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	mdItalicRe  = regexp.MustCompile(`\*([^*]+)\*`)
	mdLinkRe    = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdCodeRe    = regexp.MustCompile("`([^`]*)`")
)

func lensStripMarkdown(in interface{}, args []interface{}, kwargs map[string]interface{}) (interface{}, error) {
	s, err := asString(in, "strip_markdown")
	if err != nil {
		return nil, err
	}
	s = mdHeadingRe.ReplaceAllString(s, "")
	s = mdLinkRe.ReplaceAllString(s, "$1")
	s = mdBoldRe.ReplaceAllString(s, "$1")
	s = mdItalicRe.ReplaceAllString(s, "$1")
	s = mdCodeRe.ReplaceAllString(s, "$1")
	return s, nil
}

func intArg(args []interface{}, kwargs map[string]interface{}, name string, pos int) (int64, bool) {
	if v, ok := kwargs[name]; ok {
		return toInt64(v)
	}
	if pos < len(args) {
		return toInt64(args[pos])
	}
	return 0, false
}

func stringArg(args []interface{}, kwargs map[string]interface{}, name string, pos int) (string, bool) {
	if v, ok := kwargs[name]; ok {
		s, ok := v.(string)
		return s, ok
	}
	if pos < len(args) {
		s, ok := args[pos].(string)
		return s, ok
	}
	return "", false
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

// splitMix64 is a minimal, dependency-free deterministic PRNG (no ecosystem
// library offers a stable, cross-version splitmix64 implementation suitable
// for a wire-format guarantee, so it is hand-rolled per DESIGN.md).
type splitMix64 struct{ state uint64 }

func newSplitMix64(seed uint64) *splitMix64 { return &splitMix64{state: seed} }

func (s *splitMix64) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// Names returns every registered lens name, sorted, for diagnostics and
// documentation.
func Names() []string {
	names := make([]string, 0, len(registry))
	for k := range registry {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
