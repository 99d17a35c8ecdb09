// Package ast defines FACET's abstract syntax tree (§3 Data model), produced
// by the parser and rewritten in place by later pipeline stages: import
// expansion and conditional pruning replace facet and item slices, and
// anchor resolution assigns new values to existing pairs and items. The
// tagged-union Node layout follows the teacher corpus's goccy/go-yaml/ast
// package.
package ast

import "github.com/facet-lang/facet/token"

// Document is the root node: an ordered list of top-level Facets.
type Document struct {
	Facets []*Facet
}

// Attr is one attribute key/value pair on a facet or list item.
type Attr struct {
	Name  string
	Value Value
	Pos   token.Position
}

// Facet is a top-level named block: "@name(attrs) \n  body".
type Facet struct {
	Name    string
	Anchor  string // anchor label bound to the facet itself, if any ("" if none)
	Attrs   []*Attr
	Mapping *MappingBlock // nil if the body is list-shaped or empty
	List    *ListBlock    // nil if the body is mapping-shaped or empty
	If      string        // raw if="" expression text, "" if absent
	IfPos   token.Position
	Pos     token.Position
}

// IsImport reports whether this facet is a compile-time @import directive.
func (f *Facet) IsImport() bool { return f.Name == "import" }

// IsVars reports whether this facet is the compile-time @vars directive.
func (f *Facet) IsVars() bool { return f.Name == "vars" }

// IsVarTypes reports whether this facet is the compile-time @var_types directive.
func (f *Facet) IsVarTypes() bool { return f.Name == "var_types" }

// MappingPair is one "key: value |> lens..." entry of a mapping block.
type MappingPair struct {
	Key      string
	Value    Value
	Pipeline *Pipeline
	Pos      token.Position
}

// MappingBlock is an insertion-ordered set of key/value pairs.
type MappingBlock struct {
	Pairs []*MappingPair
}

// ListItem is one "- value" entry of a list block.
type ListItem struct {
	Value    Value
	If       string // raw if="" expression text, "" if absent
	IfPos    token.Position
	Pipeline *Pipeline
	Pos      token.Position
}

// ListBlock is an ordered sequence of list items.
type ListBlock struct {
	Items []*ListItem
}

// LensCall is one "|> name(args)" pipeline segment.
type LensCall struct {
	Name     string
	Args     []Value
	KwArgs   map[string]Value
	KwOrder  []string // insertion order of KwArgs keys, for deterministic re-emission
	Pos      token.Position
}

// Pipeline is an ordered chain of lens calls applied left to right.
type Pipeline struct {
	Calls []*LensCall
}

// ValueKind discriminates the tagged union Value implements.
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindBool
	KindNull
	KindIdent
	KindInlineMap
	KindInlineList
	KindNestedMap
	KindNestedList
	KindFence
	KindAnchorDef
	KindAlias
	KindExtendedScalar
)

// Value is the tagged union of every value form in §3. Exactly one of the
// Kind-specific fields is meaningful for a given Kind.
type Value interface {
	Kind() ValueKind
	Position() token.Position
}

type base struct {
	Pos token.Position
}

func (b base) Position() token.Position { return b.Pos }

// StringValue is a single- or triple-quoted string literal.
type StringValue struct {
	base
	Text   string
	Triple bool
}

func (*StringValue) Kind() ValueKind { return KindString }

// NumberValue is a numeric literal.
type NumberValue struct {
	base
	Num   float64
	IsInt bool
}

func (*NumberValue) Kind() ValueKind { return KindNumber }

// BoolValue is a boolean literal.
type BoolValue struct {
	base
	Val bool
}

func (*BoolValue) Kind() ValueKind { return KindBool }

// NullValue is the null literal.
type NullValue struct{ base }

func (*NullValue) Kind() ValueKind { return KindNull }

// IdentValue is a bare identifier used as a value (e.g. an attribute literal).
type IdentValue struct {
	base
	Name string
}

func (*IdentValue) Kind() ValueKind { return KindIdent }

// InlineMapValue is a "{ k: v, ... }" single-line mapping.
type InlineMapValue struct {
	base
	Pairs []*MappingPair
}

func (*InlineMapValue) Kind() ValueKind { return KindInlineMap }

// InlineListValue is a "[ v, ... ]" single-line list.
type InlineListValue struct {
	base
	Items []Value
}

func (*InlineListValue) Kind() ValueKind { return KindInlineList }

// NestedMapValue is an indented mapping block nested under a key.
type NestedMapValue struct {
	base
	Block *MappingBlock
}

func (*NestedMapValue) Kind() ValueKind { return KindNestedMap }

// NestedListValue is an indented list block nested under a key.
type NestedListValue struct {
	base
	Block *ListBlock
}

func (*NestedListValue) Kind() ValueKind { return KindNestedList }

// FenceValue is a captured triple-backtick block.
type FenceValue struct {
	base
	Lang string
	Body string
}

func (*FenceValue) Kind() ValueKind { return KindFence }

// AnchorDefValue binds Label to Inner ("&label value").
type AnchorDefValue struct {
	base
	Label string
	Inner Value
}

func (*AnchorDefValue) Kind() ValueKind { return KindAnchorDef }

// AliasValue references a previously defined anchor ("*label").
type AliasValue struct {
	base
	Label string
}

func (*AliasValue) Kind() ValueKind { return KindAlias }

// ExtendedScalarKind discriminates the four extended scalar forms (C11).
type ExtendedScalarKind int

const (
	ExtendedTimestamp ExtendedScalarKind = iota
	ExtendedDuration
	ExtendedSize
	ExtendedRegex
)

// ExtendedScalarValue is a typed literal (timestamp/duration/size/regex)
// carried as text until C10 step 8 converts it to its final string form.
type ExtendedScalarValue struct {
	base
	ScalarKind ExtendedScalarKind
	Text       string
}

func (*ExtendedScalarValue) Kind() ValueKind { return KindExtendedScalar }
