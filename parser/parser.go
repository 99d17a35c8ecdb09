// Package parser implements FACET's recursive-descent parser (C4): token
// stream to AST, covering facets, attribute lists, mapping/list blocks,
// inline collections, anchors/aliases, and lens pipelines. Structured the
// way the teacher corpus's goccy/go-yaml/parser package is structured — a
// single Parser type walking a flat token slice with a cursor, one method per
// grammar production — adapted to FACET's simpler, whitespace-driven grammar
// (no YAML flow/block style duality, no directives).
package parser

import (
	"strings"

	"github.com/facet-lang/facet/ast"
	"github.com/facet-lang/facet/diagnostic"
	"github.com/facet-lang/facet/internal/limits"
	"github.com/facet-lang/facet/lexer"
	"github.com/facet-lang/facet/token"
)

// Parser walks a token stream and builds an ast.Document.
type Parser struct {
	tokens   []*token.Token
	pos      int
	reporter *diagnostic.Reporter
	depth    int
}

// New creates a Parser over an already-lexed token stream.
func New(tokens []*token.Token, reporter *diagnostic.Reporter) *Parser {
	return &Parser{tokens: tokens, reporter: reporter}
}

// Parse lexes and parses source in one step, the parser package's equivalent
// of the teacher corpus's parser.ParseBytes.
func Parse(source []byte, reporter *diagnostic.Reporter) *ast.Document {
	tokens := lexer.Tokenize(source, reporter)
	if reporter.HasFatal() {
		return nil
	}
	return New(tokens, reporter).ParseDocument()
}

func (p *Parser) peek() *token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) peekType() token.Type {
	return p.tokens[p.pos].Type
}

func (p *Parser) check(tt token.Type) bool {
	return p.peekType() == tt
}

func (p *Parser) atEOF() bool {
	return p.check(token.EOF)
}

func (p *Parser) advance() *token.Token {
	tok := p.tokens[p.pos]
	if tok.Type != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(tt token.Type, msg string) (*token.Token, bool) {
	if p.check(tt) {
		return p.advance(), true
	}
	tok := p.peek()
	p.reporter.Add(diagnostic.New(diagnostic.CodeValueType, tok.Position.Line, tok.Position.Column, "%s (found %s)", msg, tok.Type))
	return nil, false
}

// skipNewlines consumes zero or more stray NEWLINE tokens, used only between
// top-level facets.
func (p *Parser) skipNewlines() {
	for p.check(token.NEWLINE) {
		p.advance()
	}
}

// recoverToNextFacet discards tokens until it reaches the next top-level '@'
// or EOF, so one malformed facet doesn't prevent lint from reporting errors
// in the rest of the document.
func (p *Parser) recoverToNextFacet() {
	depth := 0
	for !p.atEOF() {
		switch p.peekType() {
		case token.INDENT:
			depth++
		case token.DEDENT:
			depth--
		case token.AT:
			if depth <= 0 {
				return
			}
		}
		p.advance()
	}
}

// ParseDocument parses the entire token stream into a Document.
func (p *Parser) ParseDocument() *ast.Document {
	doc := &ast.Document{}
	p.skipNewlines()
	for !p.atEOF() {
		before := p.pos
		f := p.parseFacet()
		if f != nil {
			doc.Facets = append(doc.Facets, f)
		}
		if p.pos == before {
			// Guarantee forward progress even on totally unrecognized input.
			p.advance()
		}
		if f == nil && !p.reporter.HasFatal() {
			p.recoverToNextFacet()
		}
		p.skipNewlines()
		if p.reporter.HasFatal() {
			break
		}
	}
	return doc
}

func (p *Parser) parseFacet() *ast.Facet {
	if !p.check(token.AT) {
		tok := p.peek()
		p.reporter.Add(diagnostic.New(diagnostic.CodeValueType, tok.Position.Line, tok.Position.Column, "expected '@' to start a facet (found %s)", tok.Type))
		return nil
	}
	atTok := p.advance()
	nameTok, ok := p.expect(token.IDENT, "expected facet name after '@'")
	if !ok {
		return nil
	}
	f := &ast.Facet{Name: nameTok.Literal, Pos: atTok.Position}

	if p.check(token.AMP) {
		p.advance()
		labelTok, ok := p.expect(token.IDENT, "expected anchor label after '&'")
		if ok {
			f.Anchor = labelTok.Literal
		}
	}

	if p.check(token.LPAREN) {
		attrs, ifExpr, ifPos, ok := p.parseAttrList()
		if !ok {
			return nil
		}
		f.Attrs = attrs
		if ifExpr != nil {
			f.If = *ifExpr
			f.IfPos = ifPos
		}
	}

	if _, ok := p.expect(token.NEWLINE, "expected newline after facet header"); !ok {
		return nil
	}

	if p.check(token.INDENT) {
		p.advance()
		mapping, list, ok := p.parseBlockBody()
		if !ok {
			return nil
		}
		f.Mapping = mapping
		f.List = list
		if _, ok := p.expect(token.DEDENT, "expected dedent to close facet body"); !ok {
			return nil
		}
	}
	return f
}

// parseAttrList parses "(k = lit, ...)" and splits off the reserved "if" key.
func (p *Parser) parseAttrList() ([]*ast.Attr, *string, token.Position, bool) {
	p.advance() // consume '('
	var attrs []*ast.Attr
	var ifExpr *string
	var ifPos token.Position
	first := true
	for !p.check(token.RPAREN) {
		if !first {
			if _, ok := p.expect(token.COMMA, "expected ',' between attributes"); !ok {
				return attrs, ifExpr, ifPos, false
			}
		}
		first = false
		nameTok, ok := p.expect(token.IDENT, "expected attribute name")
		if !ok {
			return attrs, ifExpr, ifPos, false
		}
		if _, ok := p.expect(token.EQUAL, "expected '=' after attribute name"); !ok {
			return attrs, ifExpr, ifPos, false
		}
		lit, ok := p.parseAttrLiteral()
		if !ok {
			return attrs, ifExpr, ifPos, false
		}
		if nameTok.Literal == "if" {
			if sv, isStr := lit.(*ast.StringValue); isStr {
				s := sv.Text
				ifExpr = &s
				ifPos = nameTok.Position
			} else {
				p.reporter.Add(diagnostic.New(diagnostic.CodeUnquotedCondition, nameTok.Position.Line, nameTok.Position.Column, "if expression must be a quoted string"))
			}
			continue
		}
		attrs = append(attrs, &ast.Attr{Name: nameTok.Literal, Value: lit, Pos: nameTok.Position})
	}
	if _, ok := p.expect(token.RPAREN, "expected ')' to close attribute list"); !ok {
		return attrs, ifExpr, ifPos, false
	}
	return attrs, ifExpr, ifPos, true
}

// parseAttrLiteral parses the restricted attribute-literal grammar: string,
// number, boolean, null, or bare identifier -- never interpolation, never a
// collection (invariant 5).
func (p *Parser) parseAttrLiteral() (ast.Value, bool) {
	tok := p.peek()
	switch tok.Type {
	case token.STRING:
		p.advance()
		if strings.Contains(tok.Str, "$") || strings.Contains(tok.Str, "{{") {
			p.reporter.Add(diagnostic.New(diagnostic.CodeAttributeInterp, tok.Position.Line, tok.Position.Column, "attribute literals cannot contain variable substitution or interpolation"))
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
	default:
		p.reporter.Add(diagnostic.New(diagnostic.CodeAttributeShape, tok.Position.Line, tok.Position.Column, "invalid attribute literal (found %s)", tok.Type))
		return nil, false
	}
}

// parseBlockBody decides the block shape from the first token and parses it;
// mixing mapping pairs and list items in one block is F101.
func (p *Parser) parseBlockBody() (*ast.MappingBlock, *ast.ListBlock, bool) {
	if p.check(token.DASH) {
		lb, ok := p.parseListBlock()
		return nil, lb, ok
	}
	if p.check(token.IDENT) {
		mb, ok := p.parseMappingBlock()
		return mb, nil, ok
	}
	tok := p.peek()
	p.reporter.Add(diagnostic.New(diagnostic.CodeValueType, tok.Position.Line, tok.Position.Column, "expected a mapping key or '-' list item (found %s)", tok.Type))
	return nil, nil, false
}

func (p *Parser) parseMappingBlock() (*ast.MappingBlock, bool) {
	mb := &ast.MappingBlock{}
	for p.check(token.IDENT) {
		pair, ok := p.parseMappingPair()
		if !ok {
			return mb, false
		}
		mb.Pairs = append(mb.Pairs, pair)
		if p.check(token.DASH) {
			tok := p.peek()
			p.reporter.Add(diagnostic.New(diagnostic.CodeValueType, tok.Position.Line, tok.Position.Column, "mapping pairs and list items cannot coexist in one block"))
			return mb, false
		}
	}
	return mb, true
}

func (p *Parser) parseMappingPair() (*ast.MappingPair, bool) {
	keyTok, ok := p.expect(token.IDENT, "expected mapping key")
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.COLON, "expected ':' after mapping key"); !ok {
		return nil, false
	}
	pos := keyTok.Position

	if p.check(token.NEWLINE) {
		p.advance()
		if !p.check(token.INDENT) {
			tok := p.peek()
			p.reporter.Add(diagnostic.New(diagnostic.CodeValueType, tok.Position.Line, tok.Position.Column, "expected indented value after mapping key %q", keyTok.Literal))
			return nil, false
		}
		p.advance()
		p.depth++
		if p.depth > limits.MaxNestingDepth {
			p.reporter.Fatal(diagnostic.New(diagnostic.CodeValueType, pos.Line, pos.Column, "maximum nesting depth exceeded"))
			return nil, false
		}
		val, ok := p.parseNestedValue()
		p.depth--
		if !ok {
			return nil, false
		}
		var pipeline *ast.Pipeline
		if _, isFence := val.(*ast.FenceValue); isFence {
			// A nested mapping/list block's own pairs/items already consumed
			// their trailing newlines; only a fence leaves one to close.
			pipeline = p.tryParsePipeline()
			if _, ok := p.expect(token.NEWLINE, "expected newline after nested value"); !ok {
				return nil, false
			}
		}
		if _, ok := p.expect(token.DEDENT, "expected dedent to close nested value"); !ok {
			return nil, false
		}
		return &ast.MappingPair{Key: keyTok.Literal, Value: val, Pipeline: pipeline, Pos: pos}, true
	}

	val, ok := p.parseInlineValue()
	if !ok {
		return nil, false
	}
	var pipeline *ast.Pipeline
	if _, isAlias := val.(*ast.AliasValue); !isAlias {
		pipeline = p.tryParsePipeline()
	} else if p.check(token.PIPE) {
		tok := p.peek()
		p.reporter.Add(diagnostic.New(diagnostic.CodeAttributeShape, tok.Position.Line, tok.Position.Column, "pipelines are forbidden on alias values"))
		return nil, false
	}
	if _, ok := p.expect(token.NEWLINE, "expected newline after mapping value"); !ok {
		return nil, false
	}
	return &ast.MappingPair{Key: keyTok.Literal, Value: val, Pipeline: pipeline, Pos: pos}, true
}

func (p *Parser) parseNestedValue() (ast.Value, bool) {
	switch {
	case p.check(token.DASH):
		lb, ok := p.parseListBlock()
		if !ok {
			return nil, false
		}
		return ast.NewNestedList(p.peek().Position, lb), true
	case p.check(token.FENCE):
		tok := p.advance()
		return ast.NewFence(tok.Position, tok.Fence.Lang, tok.Fence.Body), true
	case p.check(token.IDENT):
		mb, ok := p.parseMappingBlock()
		if !ok {
			return nil, false
		}
		return ast.NewNestedMap(p.peek().Position, mb), true
	default:
		tok := p.peek()
		p.reporter.Add(diagnostic.New(diagnostic.CodeValueType, tok.Position.Line, tok.Position.Column, "expected nested mapping, list, or fence (found %s)", tok.Type))
		return nil, false
	}
}

func (p *Parser) parseListBlock() (*ast.ListBlock, bool) {
	lb := &ast.ListBlock{}
	for p.check(token.DASH) {
		item, ok := p.parseListItem()
		if !ok {
			return lb, false
		}
		lb.Items = append(lb.Items, item)
		if p.check(token.IDENT) {
			tok := p.peek()
			p.reporter.Add(diagnostic.New(diagnostic.CodeValueType, tok.Position.Line, tok.Position.Column, "mapping pairs and list items cannot coexist in one block"))
			return lb, false
		}
	}
	return lb, true
}

func (p *Parser) parseListItem() (*ast.ListItem, bool) {
	dashTok := p.advance()
	item := &ast.ListItem{Pos: dashTok.Position}

	if p.check(token.LPAREN) {
		attrs, ifExpr, ifPos, ok := p.parseAttrList()
		if !ok {
			return nil, false
		}
		for _, a := range attrs {
			p.reporter.Add(diagnostic.New(diagnostic.CodeListItemAttribute, a.Pos.Line, a.Pos.Column, "list items may only carry the 'if' attribute (found %q)", a.Name))
		}
		if ifExpr != nil {
			item.If = *ifExpr
			item.IfPos = ifPos
		}
	}

	val, ok := p.parseInlineValueOrNested()
	if !ok {
		return nil, false
	}
	item.Value = val

	if _, isAlias := val.(*ast.AliasValue); !isAlias {
		item.Pipeline = p.tryParsePipeline()
	}

	if _, ok := p.expect(token.NEWLINE, "expected newline after list item"); !ok {
		return nil, false
	}
	return item, true
}

// parseInlineValueOrNested handles "- value" where value may itself open a
// nested indented block (a list item whose value is a nested mapping/list).
func (p *Parser) parseInlineValueOrNested() (ast.Value, bool) {
	if p.check(token.NEWLINE) {
		p.advance()
		if !p.check(token.INDENT) {
			tok := p.peek()
			p.reporter.Add(diagnostic.New(diagnostic.CodeValueType, tok.Position.Line, tok.Position.Column, "expected indented value after list item"))
			return nil, false
		}
		p.advance()
		val, ok := p.parseNestedValue()
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.NEWLINE, "expected newline after nested list value"); !ok {
			return nil, false
		}
		if _, ok := p.expect(token.DEDENT, "expected dedent to close nested list value"); !ok {
			return nil, false
		}
		return val, true
	}
	return p.parseInlineValue()
}

func (p *Parser) tryParsePipeline() *ast.Pipeline {
	if !p.check(token.PIPE) {
		return nil
	}
	pipeline := &ast.Pipeline{}
	for p.check(token.PIPE) {
		call, ok := p.parseLensCall()
		if !ok {
			break
		}
		pipeline.Calls = append(pipeline.Calls, call)
		if len(pipeline.Calls) > limits.MaxPipelineLength {
			tok := p.peek()
			p.reporter.Add(diagnostic.New(diagnostic.CodePipelineLength, tok.Position.Line, tok.Position.Column, "pipeline exceeds maximum length of %d", limits.MaxPipelineLength))
			break
		}
	}
	return pipeline
}

func (p *Parser) parseLensCall() (*ast.LensCall, bool) {
	pipeTok := p.advance() // '|>'
	nameTok, ok := p.expect(token.IDENT, "expected lens name after '|>'")
	if !ok {
		return nil, false
	}
	call := &ast.LensCall{Name: nameTok.Literal, KwArgs: map[string]ast.Value{}, Pos: pipeTok.Position}
	if !p.check(token.LPAREN) {
		return call, true
	}
	p.advance()
	first := true
	for !p.check(token.RPAREN) {
		if !first {
			if _, ok := p.expect(token.COMMA, "expected ',' between lens arguments"); !ok {
				return call, false
			}
		}
		first = false
		if p.check(token.IDENT) && p.peekAt(1).Type == token.EQUAL {
			nameTok := p.advance()
			p.advance() // '='
			val, ok := p.parseLensArgLiteral()
			if !ok {
				return call, false
			}
			call.KwArgs[nameTok.Literal] = val
			call.KwOrder = append(call.KwOrder, nameTok.Literal)
			continue
		}
		val, ok := p.parseLensArgLiteral()
		if !ok {
			return call, false
		}
		call.Args = append(call.Args, val)
	}
	if _, ok := p.expect(token.RPAREN, "expected ')' to close lens arguments"); !ok {
		return call, false
	}
	return call, true
}

// parseLensArgLiteral parses a lens-call argument, which must be a literal
// (invariant 8: keyword arguments must be literals, never identifiers or
// variable references). Bare identifiers are therefore rejected here, unlike
// in attribute literals.
func (p *Parser) parseLensArgLiteral() (ast.Value, bool) {
	tok := p.peek()
	switch tok.Type {
	case token.STRING:
		p.advance()
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
	default:
		p.reporter.Add(diagnostic.New(diagnostic.CodeLensArgument, tok.Position.Line, tok.Position.Column, "lens arguments must be literals (found %s)", tok.Type))
		return nil, false
	}
}

func (p *Parser) peekAt(offset int) *token.Token {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}
