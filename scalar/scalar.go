// Package scalar implements FACET's extended scalar literals (C11):
// timestamps, durations, sizes, and regexes, each recognized from the text of
// an otherwise-ordinary string or regex-literal token and converted to its
// canonical JSON representation at serialization time. Detection is
// regex-based pattern matching, the same approach the teacher corpus reaches
// for in goccy/go-yaml's resolve package for its implicit-typing of plain
// scalars (bool/null/int/float/timestamp all recognized by trying a fixed
// list of patterns in order).
package scalar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/facet-lang/facet/ast"
)

var (
	timestampRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?)?$`)
	durationRe  = regexp.MustCompile(`^-?(\d+(\.\d+)?(ns|us|µs|ms|s|m|h))+$`)
	sizeRe      = regexp.MustCompile(`^(\d+(\.\d+)?)\s*(B|KB|MB|GB|TB|KiB|MiB|GiB|TiB)$`)
	regexLitRe  = regexp.MustCompile(`^/((?:\\/|[^/])*)/([a-zA-Z]*)$`)
)

// Detect reports whether text matches one of the four extended scalar
// grammars, checked in the fixed precedence order the spec requires
// (timestamp, duration, size, regex) so that an ambiguous literal always
// resolves the same way.
func Detect(text string) (ast.ExtendedScalarKind, bool) {
	switch {
	case timestampRe.MatchString(text):
		return ast.ExtendedTimestamp, true
	case durationRe.MatchString(text):
		return ast.ExtendedDuration, true
	case sizeRe.MatchString(strings.TrimSpace(text)):
		return ast.ExtendedSize, true
	case regexLitRe.MatchString(text):
		return ast.ExtendedRegex, true
	default:
		return 0, false
	}
}

// Canonicalize converts the source text of an extended scalar to its final
// JSON-safe string form (spec §4.10 step 8): timestamps are normalized to
// RFC3339, durations and sizes are re-emitted in their original unit
// notation (already canonical by construction), and regexes are validated
// for compilability, surfacing F803 through the returned error.
func Canonicalize(kind ast.ExtendedScalarKind, text string) (string, error) {
	switch kind {
	case ast.ExtendedTimestamp:
		return canonicalizeTimestamp(text)
	case ast.ExtendedDuration:
		return text, nil
	case ast.ExtendedSize:
		return strings.TrimSpace(text), nil
	case ast.ExtendedRegex:
		return canonicalizeRegex(text)
	default:
		return text, nil
	}
}

func canonicalizeTimestamp(text string) (string, error) {
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC().Format(time.RFC3339), nil
		}
	}
	return "", fmt.Errorf("unparseable timestamp %q", text)
}

func canonicalizeRegex(text string) (string, error) {
	m := regexLitRe.FindStringSubmatch(text)
	if m == nil {
		return "", fmt.Errorf("malformed regex literal %q", text)
	}
	pattern := strings.ReplaceAll(m[1], `\/`, "/")
	if _, err := regexp.Compile(pattern); err != nil {
		return "", fmt.Errorf("invalid regex %q: %w", pattern, err)
	}
	return text, nil
}

// ParseDurationSeconds converts a FACET duration literal to fractional
// seconds. Nothing in the compile pipeline calls it; the canonical output
// of a duration is its literal text (see Canonicalize).
func ParseDurationSeconds(text string) (float64, error) {
	neg := false
	s := text
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var total float64
	for len(s) > 0 {
		i := 0
		for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.') {
			i++
		}
		if i == 0 {
			return 0, fmt.Errorf("invalid duration %q", text)
		}
		numPart := s[:i]
		s = s[i:]
		unit := ""
		for _, u := range []string{"ns", "us", "µs", "ms", "s", "m", "h"} {
			if strings.HasPrefix(s, u) {
				unit = u
				break
			}
		}
		if unit == "" {
			return 0, fmt.Errorf("invalid duration unit in %q", text)
		}
		n, err := strconv.ParseFloat(numPart, 64)
		if err != nil {
			return 0, err
		}
		switch unit {
		case "ns":
			total += n / 1e9
		case "us", "µs":
			total += n / 1e6
		case "ms":
			total += n / 1e3
		case "s":
			total += n
		case "m":
			total += n * 60
		case "h":
			total += n * 3600
		}
		s = s[len(unit):]
	}
	if neg {
		total = -total
	}
	return total, nil
}
