// Package lexer implements FACET's lexical analysis (C3): newline
// normalization, tab rejection, the 2-space indent stack, string/fence
// capture, and tokenization. It is structured the way the teacher corpus's
// goccy/go-yaml/scanner package is structured — a single Scanner type
// carrying line/column/offset plus an indent stack, emitting a flat token
// stream — adapted to FACET's fixed 2-space rule instead of YAML's
// arbitrary indentation widths and flow-collection nesting counters.
package lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/facet-lang/facet/diagnostic"
	"github.com/facet-lang/facet/internal/limits"
	"github.com/facet-lang/facet/token"
)

// Lexer turns normalized FACET source into a flat token stream.
type Lexer struct {
	src  []rune
	size int

	pos    int
	line   int
	col    int
	offset int

	indents     []int
	atLineStart bool

	reporter *diagnostic.Reporter
}

// New creates a Lexer over already-normalized source text. Diagnostics are
// recorded on reporter, which the caller owns.
func New(normalized string, reporter *diagnostic.Reporter) *Lexer {
	return &Lexer{
		src:         []rune(normalized),
		size:        len([]rune(normalized)),
		line:        1,
		col:         1,
		indents:     []int{0},
		atLineStart: true,
		reporter:    reporter,
	}
}

// Tokenize scans the entire source and returns its token stream. On a fatal
// lexical error (F002/F003), the returned slice holds whatever was produced
// before the error plus a trailing EOF; the caller must check
// reporter.HasFatal() before handing the stream to the parser.
func (l *Lexer) Tokenize() []*token.Token {
	if l.size > limits.MaxDocumentBytes {
		l.reporter.Fatal(diagnostic.New(diagnostic.CodeLexical, 1, 1, "document exceeds maximum size"))
		return []*token.Token{{Type: token.EOF, Position: l.position()}}
	}

	var tokens []*token.Token
	for {
		if l.reporter.HasFatal() {
			break
		}
		if l.atLineStart {
			ok := l.consumeIndentation(&tokens)
			if !ok {
				break
			}
			l.atLineStart = false
		}
		if l.pos >= l.size {
			break
		}
		tok, ok := l.next()
		if !ok {
			break
		}
		if tok == nil {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Type == token.NEWLINE {
			l.atLineStart = true
		}
	}
	if !l.reporter.HasFatal() {
		for len(l.indents) > 1 {
			l.indents = l.indents[:len(l.indents)-1]
			tokens = append(tokens, &token.Token{Type: token.DEDENT, Position: l.position()})
		}
	}
	tokens = append(tokens, &token.Token{Type: token.EOF, Position: l.position()})
	return tokens
}

// consumeIndentation is called exactly once at the start of every logical
// line. It silently skips blank and comment-only lines, then measures the
// indentation of the next real line and emits the INDENT/DEDENT tokens
// needed to reconcile it with the indent stack. Returns false when the
// document ends or a fatal indentation error was reported.
func (l *Lexer) consumeIndentation(tokens *[]*token.Token) bool {
	for {
		lineStartPos := l.position()
		spaces := 0
		tabSeen := false
		for l.pos < l.size && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
			if l.src[l.pos] == '\t' {
				tabSeen = true
			}
			spaces++
			l.advance()
		}
		if l.pos >= l.size {
			return false
		}
		c := l.src[l.pos]
		if c == '\n' {
			l.advance()
			continue
		}
		if c == '#' {
			l.skipToEndOfLine()
			if l.pos < l.size && l.src[l.pos] == '\n' {
				l.advance()
			}
			continue
		}
		if tabSeen {
			l.reporter.Fatal(diagnostic.New(diagnostic.CodeIndentation, lineStartPos.Line, 1, "tab character in indentation"))
			return false
		}
		if spaces%limits.IndentWidth != 0 {
			l.reporter.Fatal(diagnostic.New(diagnostic.CodeIndentation, lineStartPos.Line, spaces+1, "indentation must be a multiple of %d spaces", limits.IndentWidth))
			return false
		}

		top := l.indents[len(l.indents)-1]
		switch {
		case spaces == top:
			// IndentStateEqual: no token.
		case spaces > top:
			if spaces != top+limits.IndentWidth {
				l.reporter.Fatal(diagnostic.New(diagnostic.CodeIndentation, lineStartPos.Line, spaces+1, "indentation increased by more than one level"))
				return false
			}
			if len(l.indents) >= limits.MaxIndentDepth {
				l.reporter.Fatal(diagnostic.New(diagnostic.CodeIndentation, lineStartPos.Line, spaces+1, "maximum indentation depth exceeded"))
				return false
			}
			l.indents = append(l.indents, spaces)
			*tokens = append(*tokens, &token.Token{Type: token.INDENT, Position: l.position()})
		case spaces < top:
			for len(l.indents) > 1 && l.indents[len(l.indents)-1] > spaces {
				l.indents = l.indents[:len(l.indents)-1]
				*tokens = append(*tokens, &token.Token{Type: token.DEDENT, Position: l.position()})
			}
			if l.indents[len(l.indents)-1] != spaces {
				l.reporter.Fatal(diagnostic.New(diagnostic.CodeIndentation, lineStartPos.Line, spaces+1, "dedent does not match any previous indentation level"))
				return false
			}
		}
		return true
	}
}

// next scans exactly one token starting at the current position, which must
// not be inside indentation handling (consumeIndentation owns line starts).
func (l *Lexer) next() (*token.Token, bool) {
	l.skipHorizontalSpace()
	if l.pos >= l.size {
		return nil, false
	}
	pos := l.position()
	c := l.src[l.pos]

	switch {
	case c == '\n':
		l.advance()
		return &token.Token{Type: token.NEWLINE, Position: pos}, true
	case c == '#':
		l.skipToEndOfLine()
		if l.pos < l.size && l.src[l.pos] == '\n' {
			l.advance()
		}
		return &token.Token{Type: token.NEWLINE, Position: pos}, true
	case c == '@':
		l.advance()
		return &token.Token{Type: token.AT, Literal: "@", Position: pos}, true
	case c == '{':
		l.advance()
		return &token.Token{Type: token.LBRACE, Literal: "{", Position: pos}, true
	case c == '}':
		l.advance()
		return &token.Token{Type: token.RBRACE, Literal: "}", Position: pos}, true
	case c == '[':
		l.advance()
		return &token.Token{Type: token.LBRACK, Literal: "[", Position: pos}, true
	case c == ']':
		l.advance()
		return &token.Token{Type: token.RBRACK, Literal: "]", Position: pos}, true
	case c == '(':
		l.advance()
		return &token.Token{Type: token.LPAREN, Literal: "(", Position: pos}, true
	case c == ')':
		l.advance()
		return &token.Token{Type: token.RPAREN, Literal: ")", Position: pos}, true
	case c == ',':
		l.advance()
		return &token.Token{Type: token.COMMA, Literal: ",", Position: pos}, true
	case c == ':':
		l.advance()
		return &token.Token{Type: token.COLON, Literal: ":", Position: pos}, true
	case c == '&':
		l.advance()
		return &token.Token{Type: token.AMP, Literal: "&", Position: pos}, true
	case c == '*':
		l.advance()
		return &token.Token{Type: token.STAR, Literal: "*", Position: pos}, true
	case c == '=':
		l.advance()
		return &token.Token{Type: token.EQUAL, Literal: "=", Position: pos}, true
	case c == '-':
		if l.pos+1 < l.size && isDigit(l.src[l.pos+1]) {
			return l.scanNumber(pos)
		}
		l.advance()
		return &token.Token{Type: token.DASH, Literal: "-", Position: pos}, true
	case c == '|':
		if l.pos+1 < l.size && l.src[l.pos+1] == '>' {
			l.advance()
			l.advance()
			return &token.Token{Type: token.PIPE, Literal: "|>", Position: pos}, true
		}
		l.reporter.Add(diagnostic.New(diagnostic.CodeLexical, pos.Line, pos.Column, "unexpected character '|'"))
		l.advance()
		return l.next()
	case c == '`':
		return l.scanFence(pos)
	case c == '"':
		return l.scanString(pos)
	case c == '/':
		return l.scanRegexLiteral(pos)
	case isDigit(c):
		return l.scanNumber(pos)
	case isIdentStart(c):
		return l.scanIdent(pos)
	default:
		l.reporter.Add(diagnostic.New(diagnostic.CodeLexical, pos.Line, pos.Column, "unexpected character %q", c))
		l.advance()
		return l.next()
	}
}

func (l *Lexer) skipHorizontalSpace() {
	for l.pos < l.size && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.advance()
	}
}

func (l *Lexer) skipToEndOfLine() {
	for l.pos < l.size && l.src[l.pos] != '\n' {
		l.advance()
	}
}

func (l *Lexer) position() token.Position {
	return token.Position{Line: l.line, Column: l.col, Offset: l.offset}
}

func (l *Lexer) advance() {
	if l.pos >= l.size {
		return
	}
	if l.src[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.offset += utf8.RuneLen(l.src[l.pos])
	l.pos++
}

type mark struct{ pos, line, col, offset int }

func (l *Lexer) mark() mark { return mark{l.pos, l.line, l.col, l.offset} }

func (l *Lexer) reset(m mark) {
	l.pos, l.line, l.col, l.offset = m.pos, m.line, m.col, m.offset
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || isDigit(r)
}

func (l *Lexer) scanIdent(pos token.Position) (*token.Token, bool) {
	start := l.pos
	for l.pos < l.size && isIdentPart(l.src[l.pos]) {
		l.advance()
	}
	text := string(l.src[start:l.pos])
	switch text {
	case "true":
		return &token.Token{Type: token.BOOLEAN, Literal: text, Bool: true, Position: pos}, true
	case "false":
		return &token.Token{Type: token.BOOLEAN, Literal: text, Bool: false, Position: pos}, true
	case "null":
		return &token.Token{Type: token.NULL, Literal: text, Position: pos}, true
	default:
		return &token.Token{Type: token.IDENT, Literal: text, Position: pos}, true
	}
}

func (l *Lexer) scanNumber(pos token.Position) (*token.Token, bool) {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.advance()
	}
	firstDigitPos := l.pos
	for l.pos < l.size && isDigit(l.src[l.pos]) {
		l.advance()
	}
	intDigits := l.pos - firstDigitPos
	isInt := true

	if l.pos < l.size && l.src[l.pos] == '.' && l.pos+1 < l.size && isDigit(l.src[l.pos+1]) {
		isInt = false
		l.advance()
		for l.pos < l.size && isDigit(l.src[l.pos]) {
			l.advance()
		}
	}
	if l.pos < l.size && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		m := l.mark()
		l.advance()
		if l.pos < l.size && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.advance()
		}
		if l.pos < l.size && isDigit(l.src[l.pos]) {
			isInt = false
			for l.pos < l.size && isDigit(l.src[l.pos]) {
				l.advance()
			}
		} else {
			l.reset(m)
		}
	}

	text := string(l.src[start:l.pos])
	if intDigits > 1 && l.src[firstDigitPos] == '0' {
		l.reporter.Add(diagnostic.New(diagnostic.CodeLexical, pos.Line, pos.Column, "leading zero is only permitted for the literal 0"))
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		l.reporter.Add(diagnostic.New(diagnostic.CodeLexical, pos.Line, pos.Column, "invalid number literal %q", text))
	}
	return &token.Token{Type: token.NUMBER, Literal: text, Num: v, NumInt: isInt, Position: pos}, true
}

func (l *Lexer) scanString(pos token.Position) (*token.Token, bool) {
	if l.pos+2 < l.size && l.src[l.pos+1] == '"' && l.src[l.pos+2] == '"' {
		return l.scanTripleString(pos)
	}
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.pos >= l.size {
			l.reporter.Fatal(diagnostic.New(diagnostic.CodeUnterminated, pos.Line, pos.Column, "unterminated string"))
			return &token.Token{Type: token.STRING, Str: sb.String(), Position: pos}, false
		}
		c := l.src[l.pos]
		if c == '"' {
			l.advance()
			break
		}
		if c == '\n' {
			l.reporter.Fatal(diagnostic.New(diagnostic.CodeUnterminated, pos.Line, pos.Column, "unterminated string"))
			return &token.Token{Type: token.STRING, Str: sb.String(), Position: pos}, false
		}
		if c == '\\' {
			l.advance()
			if l.pos >= l.size {
				l.reporter.Fatal(diagnostic.New(diagnostic.CodeUnterminated, pos.Line, pos.Column, "unterminated string"))
				return &token.Token{Type: token.STRING, Str: sb.String(), Position: pos}, false
			}
			esc := l.src[l.pos]
			switch esc {
			case 'n':
				sb.WriteByte('\n')
				l.advance()
			case 't':
				sb.WriteByte('\t')
				l.advance()
			case 'r':
				sb.WriteByte('\r')
				l.advance()
			case '"':
				sb.WriteByte('"')
				l.advance()
			case '\\':
				sb.WriteByte('\\')
				l.advance()
			case '/':
				sb.WriteByte('/')
				l.advance()
			case 'u':
				l.advance()
				if l.pos+4 > l.size {
					l.reporter.Fatal(diagnostic.New(diagnostic.CodeUnterminated, pos.Line, pos.Column, "unterminated unicode escape"))
					return &token.Token{Type: token.STRING, Str: sb.String(), Position: pos}, false
				}
				hex := string(l.src[l.pos : l.pos+4])
				v, err := strconv.ParseUint(hex, 16, 32)
				if err != nil {
					l.reporter.Add(diagnostic.New(diagnostic.CodeLexical, pos.Line, pos.Column, "invalid unicode escape %q", hex))
				} else {
					sb.WriteRune(rune(v))
				}
				for i := 0; i < 4; i++ {
					l.advance()
				}
			default:
				l.reporter.Add(diagnostic.New(diagnostic.CodeLexical, pos.Line, pos.Column, "invalid escape sequence '\\%c'", esc))
				sb.WriteRune(esc)
				l.advance()
			}
			continue
		}
		sb.WriteRune(c)
		l.advance()
	}
	return &token.Token{Type: token.STRING, Str: sb.String(), Literal: sb.String(), Position: pos}, true
}

func (l *Lexer) scanTripleString(pos token.Position) (*token.Token, bool) {
	l.advance()
	l.advance()
	l.advance()
	var sb strings.Builder
	for {
		if l.pos >= l.size {
			l.reporter.Fatal(diagnostic.New(diagnostic.CodeUnterminated, pos.Line, pos.Column, "unterminated triple-quoted string"))
			return &token.Token{Type: token.STRING, Str: sb.String(), Triple: true, Position: pos}, false
		}
		if l.pos+2 < l.size && l.src[l.pos] == '"' && l.src[l.pos+1] == '"' && l.src[l.pos+2] == '"' {
			l.advance()
			l.advance()
			l.advance()
			break
		}
		sb.WriteRune(l.src[l.pos])
		l.advance()
	}
	return &token.Token{Type: token.STRING, Str: sb.String(), Triple: true, Literal: sb.String(), Position: pos}, true
}

func (l *Lexer) scanFence(pos token.Position) (*token.Token, bool) {
	openCol := pos.Column
	if l.pos+2 >= l.size || l.src[l.pos+1] != '`' || l.src[l.pos+2] != '`' {
		l.reporter.Add(diagnostic.New(diagnostic.CodeLexical, pos.Line, pos.Column, "expected triple backtick to open a fence"))
		l.advance()
		return l.next()
	}
	l.advance()
	l.advance()
	l.advance()

	var lang strings.Builder
	for l.pos < l.size && l.src[l.pos] != '\n' {
		lang.WriteRune(l.src[l.pos])
		l.advance()
	}
	if l.pos >= l.size {
		l.reporter.Fatal(diagnostic.New(diagnostic.CodeUnterminated, pos.Line, pos.Column, "unterminated fence"))
		return &token.Token{Type: token.FENCE, Position: pos}, false
	}
	l.advance() // consume newline after opener

	indent := strings.Repeat(" ", maxInt(openCol-1, 0))
	var body strings.Builder
	first := true
	for {
		if l.pos >= l.size {
			l.reporter.Fatal(diagnostic.New(diagnostic.CodeUnterminated, pos.Line, pos.Column, "unterminated fence"))
			return &token.Token{Type: token.FENCE, Fence: &token.Fence{Lang: strings.TrimSpace(lang.String()), Body: body.String()}, Position: pos}, false
		}
		// A closing delimiter is "indent + ```", with anything after the
		// backticks (a pipeline) left in place for ordinary tokenization --
		// only the indent and the three backticks are consumed here.
		if l.matchesAt(l.pos, indent+"```") {
			for i := 0; i < len(indent)+3; i++ {
				l.advance()
			}
			break
		}
		var line strings.Builder
		for l.pos < l.size && l.src[l.pos] != '\n' {
			line.WriteRune(l.src[l.pos])
			l.advance()
		}
		hasNL := l.pos < l.size && l.src[l.pos] == '\n'
		lineText := line.String()
		if strings.Contains(lineText, "```") {
			l.reporter.Fatal(diagnostic.New(diagnostic.CodeUnterminated, pos.Line, pos.Column, "nested fences are forbidden"))
			return &token.Token{Type: token.FENCE, Fence: &token.Fence{Lang: strings.TrimSpace(lang.String()), Body: body.String()}, Position: pos}, false
		}
		if !first {
			body.WriteByte('\n')
		}
		body.WriteString(lineText)
		first = false
		if hasNL {
			l.advance()
		} else {
			l.reporter.Fatal(diagnostic.New(diagnostic.CodeUnterminated, pos.Line, pos.Column, "unterminated fence"))
			return &token.Token{Type: token.FENCE, Fence: &token.Fence{Lang: strings.TrimSpace(lang.String()), Body: body.String()}, Position: pos}, false
		}
	}
	if body.Len() > limits.MaxFenceBytes {
		l.reporter.Add(diagnostic.New(diagnostic.CodeLexical, pos.Line, pos.Column, "fence body exceeds maximum size"))
	}
	return &token.Token{Type: token.FENCE, Fence: &token.Fence{Lang: strings.TrimSpace(lang.String()), Body: body.String()}, Literal: body.String(), Position: pos}, true
}

// scanRegexLiteral handles the /pattern/flags extended-scalar form (C11).
// The lexer calls it for every '/' it meets, wherever it appears; a '/'
// with no closing '/' before the end of the line is a fatal F003.
func (l *Lexer) scanRegexLiteral(pos token.Position) (*token.Token, bool) {
	l.advance() // opening /
	var sb strings.Builder
	sb.WriteByte('/')
	for {
		if l.pos >= l.size || l.src[l.pos] == '\n' {
			l.reporter.Fatal(diagnostic.New(diagnostic.CodeUnterminated, pos.Line, pos.Column, "unterminated regex literal"))
			return &token.Token{Type: token.STRING, Str: sb.String(), Position: pos}, false
		}
		c := l.src[l.pos]
		if c == '\\' && l.pos+1 < l.size && l.src[l.pos+1] == '/' {
			sb.WriteByte('/')
			l.advance()
			l.advance()
			continue
		}
		sb.WriteRune(c)
		l.advance()
		if c == '/' {
			break
		}
	}
	for l.pos < l.size && isIdentPart(l.src[l.pos]) {
		sb.WriteRune(l.src[l.pos])
		l.advance()
	}
	text := sb.String()
	return &token.Token{Type: token.STRING, Str: text, Literal: text, Position: pos}, true
}

// matchesAt reports whether s occurs verbatim starting at rune index i.
func (l *Lexer) matchesAt(i int, s string) bool {
	rs := []rune(s)
	if i+len(rs) > l.size {
		return false
	}
	for k, r := range rs {
		if l.src[i+k] != r {
			return false
		}
	}
	return true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Tokenize is a convenience wrapper mirroring the teacher corpus's
// lexer.Lexer.Tokenize entry point.
func Tokenize(source []byte, reporter *diagnostic.Reporter) []*token.Token {
	normalized := Normalize(source)
	l := New(normalized, reporter)
	return l.Tokenize()
}
