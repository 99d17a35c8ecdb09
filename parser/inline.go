package parser

import (
	"github.com/facet-lang/facet/ast"
	"github.com/facet-lang/facet/diagnostic"
	"github.com/facet-lang/facet/scalar"
	"github.com/facet-lang/facet/token"
)

// parseInlineValue parses a same-line value: scalar, inline map/list, anchor
// definition, or alias reference.
func (p *Parser) parseInlineValue() (ast.Value, bool) {
	tok := p.peek()
	switch tok.Type {
	case token.AMP:
		return p.parseAnchorDef()
	case token.STAR:
		p.advance()
		labelTok, ok := p.expect(token.IDENT, "expected anchor label after '*'")
		if !ok {
			return nil, false
		}
		return ast.NewAlias(tok.Position, labelTok.Literal), true
	case token.STRING:
		p.advance()
		if kind, ok := scalar.Detect(tok.Str); ok {
			return ast.NewExtendedScalar(tok.Position, kind, tok.Str), true
		}
		return ast.NewString(tok.Position, tok.Str, tok.Triple), true
	case token.NUMBER:
		p.advance()
		return ast.NewNumber(tok.Position, tok.Num, tok.NumInt), true
	case token.BOOLEAN:
		p.advance()
		return ast.NewBool(tok.Position, tok.Bool), true
	case token.NULL:
		p.advance()
		return ast.NewNull(tok.Position), true
	case token.IDENT:
		p.advance()
		return ast.NewIdent(tok.Position, tok.Literal), true
	case token.LBRACE:
		return p.parseInlineMap()
	case token.LBRACK:
		return p.parseInlineList()
	case token.FENCE:
		p.advance()
		return ast.NewFence(tok.Position, tok.Fence.Lang, tok.Fence.Body), true
	default:
		p.reporter.Add(diagnostic.New(diagnostic.CodeValueType, tok.Position.Line, tok.Position.Column, "expected a value (found %s)", tok.Type))
		return nil, false
	}
}

func (p *Parser) parseAnchorDef() (ast.Value, bool) {
	ampTok := p.advance()
	labelTok, ok := p.expect(token.IDENT, "expected anchor label after '&'")
	if !ok {
		return nil, false
	}
	inner, ok := p.parseInlineValue()
	if !ok {
		return nil, false
	}
	return ast.NewAnchorDef(ampTok.Position, labelTok.Literal, inner), true
}

// parseInlineMap parses "{ k: v, k2: v2 }". Pipelines are forbidden on
// sub-values inside inline collections (spec Open Question, resolved in
// favor of the prose: only a mapping pair's or list item's own top-level
// value may carry a pipeline).
func (p *Parser) parseInlineMap() (ast.Value, bool) {
	lbrace := p.advance()
	var pairs []*ast.MappingPair
	first := true
	for !p.check(token.RBRACE) {
		if !first {
			if _, ok := p.expect(token.COMMA, "expected ',' between inline map entries"); !ok {
				return nil, false
			}
		}
		first = false
		keyTok, ok := p.expect(token.IDENT, "expected key in inline map")
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.COLON, "expected ':' after inline map key"); !ok {
			return nil, false
		}
		val, ok := p.parseInlineValue()
		if !ok {
			return nil, false
		}
		if p.check(token.PIPE) {
			tok := p.peek()
			p.reporter.Add(diagnostic.New(diagnostic.CodeAttributeShape, tok.Position.Line, tok.Position.Column, "pipelines are not allowed on inline collection sub-values"))
			return nil, false
		}
		pairs = append(pairs, &ast.MappingPair{Key: keyTok.Literal, Value: val, Pos: keyTok.Position})
	}
	if _, ok := p.expect(token.RBRACE, "expected '}' to close inline map"); !ok {
		return nil, false
	}
	return ast.NewInlineMap(lbrace.Position, pairs), true
}

// parseInlineList parses "[ v1, v2 ]".
func (p *Parser) parseInlineList() (ast.Value, bool) {
	lbrack := p.advance()
	var items []ast.Value
	first := true
	for !p.check(token.RBRACK) {
		if !first {
			if _, ok := p.expect(token.COMMA, "expected ',' between inline list items"); !ok {
				return nil, false
			}
		}
		first = false
		val, ok := p.parseInlineValue()
		if !ok {
			return nil, false
		}
		if p.check(token.PIPE) {
			tok := p.peek()
			p.reporter.Add(diagnostic.New(diagnostic.CodeAttributeShape, tok.Position.Line, tok.Position.Column, "pipelines are not allowed on inline collection sub-values"))
			return nil, false
		}
		items = append(items, val)
	}
	if _, ok := p.expect(token.RBRACK, "expected ']' to close inline list"); !ok {
		return nil, false
	}
	return ast.NewInlineList(lbrack.Position, items), true
}
