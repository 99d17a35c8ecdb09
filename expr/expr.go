// Package expr implements the restricted boolean expression grammar used by
// "if=" conditions (C6): dot paths, literals, comparisons, "and"/"or"/"not",
// and "in" membership, evaluated against a value scope with no arithmetic
// and no user-defined functions. The hand-written recursive-descent
// evaluator mirrors the teacher corpus's own small-grammar parsers (e.g.
// goccy/go-yaml's path.go for dot-path expressions) rather than pulling in a
// general expression-language library, since the grammar is deliberately
// tiny and closed (spec §4.5).
package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/facet-lang/facet/diagnostic"
)

// Scope resolves a dot path to a value for expression evaluation.
type Scope interface {
	Lookup(path string) (interface{}, bool)
}

// Eval parses and evaluates condition text against scope, reporting F705 on
// a parse error and F703 on a mixed-type ordering comparison. On any error
// the zero value false is returned so conditional pruning defaults to
// dropping the guarded node.
func Eval(condition string, scope Scope, line, column int, reporter *diagnostic.Reporter) bool {
	p := &exprParser{toks: lex(condition), scope: scope, line: line, column: column, reporter: reporter}
	v, ok := p.parseOr()
	if !ok {
		return false
	}
	if !p.atEnd() {
		reporter.Add(diagnostic.New(diagnostic.CodeExprParse, line, column, "unexpected trailing tokens in condition %q", condition))
		return false
	}
	b, _ := truthy(v)
	return b
}

// --- lexer for the tiny expression grammar ---

type exprTokKind int

const (
	etEOF exprTokKind = iota
	etIdent
	etPath
	etString
	etNumber
	etBool
	etNull
	etLParen
	etRParen
	etOp
)

type exprTok struct {
	kind exprTokKind
	text string
}

func lex(s string) []exprTok {
	var toks []exprTok
	i := 0
	n := len(s)
	for i < n {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			toks = append(toks, exprTok{etLParen, "("})
			i++
		case c == ')':
			toks = append(toks, exprTok{etRParen, ")"})
			i++
		case c == '"':
			j := i + 1
			for j < n && s[j] != '"' {
				j++
			}
			toks = append(toks, exprTok{etString, s[i+1 : min(j, n)]})
			i = j + 1
		case strings.HasPrefix(s[i:], "=="):
			toks = append(toks, exprTok{etOp, "=="})
			i += 2
		case strings.HasPrefix(s[i:], "!="):
			toks = append(toks, exprTok{etOp, "!="})
			i += 2
		case strings.HasPrefix(s[i:], "<="):
			toks = append(toks, exprTok{etOp, "<="})
			i += 2
		case strings.HasPrefix(s[i:], ">="):
			toks = append(toks, exprTok{etOp, ">="})
			i += 2
		case c == '<' || c == '>':
			toks = append(toks, exprTok{etOp, string(c)})
			i++
		case isIdentByte(c):
			j := i
			for j < n && (isIdentByte(s[j]) || s[j] == '.') {
				j++
			}
			word := s[i:j]
			i = j
			switch word {
			case "true":
				toks = append(toks, exprTok{etBool, "true"})
			case "false":
				toks = append(toks, exprTok{etBool, "false"})
			case "null":
				toks = append(toks, exprTok{etNull, "null"})
			case "and", "or", "not", "in":
				toks = append(toks, exprTok{etOp, word})
			default:
				if strings.Contains(word, ".") {
					toks = append(toks, exprTok{etPath, word})
				} else {
					toks = append(toks, exprTok{etIdent, word})
				}
			}
		case c == '-' || (c >= '0' && c <= '9'):
			j := i + 1
			for j < n && (s[j] >= '0' && s[j] <= '9' || s[j] == '.') {
				j++
			}
			toks = append(toks, exprTok{etNumber, s[i:j]})
			i = j
		default:
			i++
		}
	}
	return toks
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// --- recursive-descent parser/evaluator ---

type exprParser struct {
	toks     []exprTok
	pos      int
	scope    Scope
	line     int
	column   int
	reporter *diagnostic.Reporter
}

func (p *exprParser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *exprParser) peek() exprTok {
	if p.atEnd() {
		return exprTok{etEOF, ""}
	}
	return p.toks[p.pos]
}

func (p *exprParser) next() exprTok {
	t := p.peek()
	if !p.atEnd() {
		p.pos++
	}
	return t
}

func (p *exprParser) fail(format string, args ...interface{}) (interface{}, bool) {
	p.reporter.Add(diagnostic.New(diagnostic.CodeExprParse, p.line, p.column, format, args...))
	return nil, false
}

func (p *exprParser) parseOr() (interface{}, bool) {
	left, ok := p.parseAnd()
	if !ok {
		return nil, false
	}
	for p.peek().kind == etOp && p.peek().text == "or" {
		p.next()
		lb, _ := truthy(left)
		if lb {
			// short-circuit: still consume the right side to validate syntax
			if _, ok := p.parseAnd(); !ok {
				return nil, false
			}
			left = true
			continue
		}
		right, ok := p.parseAnd()
		if !ok {
			return nil, false
		}
		rb, _ := truthy(right)
		left = rb
	}
	return left, true
}

func (p *exprParser) parseAnd() (interface{}, bool) {
	left, ok := p.parseNot()
	if !ok {
		return nil, false
	}
	for p.peek().kind == etOp && p.peek().text == "and" {
		p.next()
		lb, _ := truthy(left)
		if !lb {
			if _, ok := p.parseNot(); !ok {
				return nil, false
			}
			left = false
			continue
		}
		right, ok := p.parseNot()
		if !ok {
			return nil, false
		}
		rb, _ := truthy(right)
		left = rb
	}
	return left, true
}

func (p *exprParser) parseNot() (interface{}, bool) {
	if p.peek().kind == etOp && p.peek().text == "not" {
		p.next()
		v, ok := p.parseNot()
		if !ok {
			return nil, false
		}
		b, _ := truthy(v)
		return !b, true
	}
	return p.parseComparison()
}

func (p *exprParser) parseComparison() (interface{}, bool) {
	left, ok := p.parsePrimary()
	if !ok {
		return nil, false
	}
	if p.peek().kind == etOp {
		op := p.peek().text
		switch op {
		case "==", "!=", "<", "<=", ">", ">=":
			p.next()
			right, ok := p.parsePrimary()
			if !ok {
				return nil, false
			}
			return p.compare(op, left, right)
		case "in":
			p.next()
			right, ok := p.parsePrimary()
			if !ok {
				return nil, false
			}
			return p.membership(left, right)
		}
	}
	return left, true
}

func (p *exprParser) compare(op string, left, right interface{}) (interface{}, bool) {
	switch op {
	case "==":
		return equalValues(left, right), true
	case "!=":
		return !equalValues(left, right), true
	}
	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok || !rok {
		ls, lsok := left.(string)
		rs, rsok := right.(string)
		if lsok && rsok {
			switch op {
			case "<":
				return ls < rs, true
			case "<=":
				return ls <= rs, true
			case ">":
				return ls > rs, true
			case ">=":
				return ls >= rs, true
			}
		}
		p.reporter.Add(diagnostic.New(diagnostic.CodeMixedComparison, p.line, p.column, "cannot compare values of different types with %q", op))
		return nil, false
	}
	switch op {
	case "<":
		return lf < rf, true
	case "<=":
		return lf <= rf, true
	case ">":
		return lf > rf, true
	case ">=":
		return lf >= rf, true
	}
	return p.fail("unsupported comparison operator %q", op)
}

func (p *exprParser) membership(left, right interface{}) (interface{}, bool) {
	items, ok := right.([]interface{})
	if !ok {
		return p.fail("right side of 'in' must be a list")
	}
	for _, item := range items {
		if equalValues(left, item) {
			return true, true
		}
	}
	return false, true
}

func (p *exprParser) parsePrimary() (interface{}, bool) {
	tok := p.next()
	switch tok.kind {
	case etLParen:
		v, ok := p.parseOr()
		if !ok {
			return nil, false
		}
		if p.peek().kind != etRParen {
			return p.fail("expected ')'")
		}
		p.next()
		return v, true
	case etString:
		return tok.text, true
	case etNumber:
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return p.fail("invalid number %q in condition", tok.text)
		}
		return f, true
	case etBool:
		return tok.text == "true", true
	case etNull:
		return nil, true
	case etPath, etIdent:
		v, ok := p.scope.Lookup(tok.text)
		if !ok {
			return nil, true
		}
		return v, true
	default:
		return p.fail("unexpected token in condition")
	}
}

func truthy(v interface{}) (bool, bool) {
	switch val := v.(type) {
	case nil:
		return false, true
	case bool:
		return val, true
	case string:
		return val != "", true
	case float64:
		return val != 0, true
	case []interface{}:
		return len(val) > 0, true
	default:
		return true, true
	}
}

func asFloat(v interface{}) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func equalValues(a, b interface{}) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b) && fmt.Sprintf("%T", a) == fmt.Sprintf("%T", b)
}
