package lexer

import "strings"

// Normalize applies the lexer's preprocessing steps (spec §4.1 a-c) over raw
// source bytes: strip a leading BOM, normalize all line endings to "\n", and
// strip trailing spaces/tabs from every line. Fences and triple-quoted
// strings are captured verbatim *with respect to this already-normalized
// text* — normalization is a whole-document pass that happens before any
// token boundary is known, exactly as the teacher corpus normalizes source
// bytes before scanning (goccy/go-yaml/scanner.Scanner.Init).
func Normalize(src []byte) string {
	if len(src) >= 3 && src[0] == 0xEF && src[1] == 0xBB && src[2] == 0xBF {
		src = src[3:]
	}
	s := string(src)

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\r':
			b.WriteByte('\n')
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		default:
			b.WriteByte(c)
		}
	}

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
