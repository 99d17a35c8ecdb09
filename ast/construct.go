package ast

import "github.com/facet-lang/facet/token"

// Constructor functions for every Value kind. Other packages never build
// Value literals directly (the base embed is unexported, the same way the
// teacher corpus keeps node internals private behind ast.String(...),
// ast.Mapping(...) factory functions).

func NewString(pos token.Position, text string, triple bool) *StringValue {
	return &StringValue{base: base{Pos: pos}, Text: text, Triple: triple}
}

func NewNumber(pos token.Position, num float64, isInt bool) *NumberValue {
	return &NumberValue{base: base{Pos: pos}, Num: num, IsInt: isInt}
}

func NewBool(pos token.Position, v bool) *BoolValue {
	return &BoolValue{base: base{Pos: pos}, Val: v}
}

func NewNull(pos token.Position) *NullValue {
	return &NullValue{base: base{Pos: pos}}
}

func NewIdent(pos token.Position, name string) *IdentValue {
	return &IdentValue{base: base{Pos: pos}, Name: name}
}

func NewInlineMap(pos token.Position, pairs []*MappingPair) *InlineMapValue {
	return &InlineMapValue{base: base{Pos: pos}, Pairs: pairs}
}

func NewInlineList(pos token.Position, items []Value) *InlineListValue {
	return &InlineListValue{base: base{Pos: pos}, Items: items}
}

func NewNestedMap(pos token.Position, block *MappingBlock) *NestedMapValue {
	return &NestedMapValue{base: base{Pos: pos}, Block: block}
}

func NewNestedList(pos token.Position, block *ListBlock) *NestedListValue {
	return &NestedListValue{base: base{Pos: pos}, Block: block}
}

func NewFence(pos token.Position, lang, body string) *FenceValue {
	return &FenceValue{base: base{Pos: pos}, Lang: lang, Body: body}
}

func NewAnchorDef(pos token.Position, label string, inner Value) *AnchorDefValue {
	return &AnchorDefValue{base: base{Pos: pos}, Label: label, Inner: inner}
}

func NewAlias(pos token.Position, label string) *AliasValue {
	return &AliasValue{base: base{Pos: pos}, Label: label}
}

func NewExtendedScalar(pos token.Position, kind ExtendedScalarKind, text string) *ExtendedScalarValue {
	return &ExtendedScalarValue{base: base{Pos: pos}, ScalarKind: kind, Text: text}
}
