// Package cvalue defines FACET's canonical value tree (C10/C12): an
// insertion-ordered object/array/scalar representation distinct from
// encoding/json's map[string]interface{}, because Go maps do not preserve
// key order and the spec requires deterministic, source-order key emission.
// The ordered-object idiom is grounded on the teacher corpus's own
// MapSlice/MapItem type (goccy/go-yaml), which exists for exactly this
// reason: YAML (like FACET) must round-trip mapping key order, which a bare
// Go map cannot guarantee.
package cvalue

// Kind discriminates a Value's underlying shape.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

// Value is one node of the canonical value tree.
type Value struct {
	kind   Kind
	b      bool
	n      float64
	s      string
	object *Object
	array  []*Value
}

// Object is an insertion-ordered set of key/value members, FACET's
// equivalent of goccy/go-yaml's MapSlice.
type Object struct {
	keys   []string
	index  map[string]int
	values []*Value
}

func NewObject() *Object {
	return &Object{index: map[string]int{}}
}

// Set inserts or overwrites key, preserving first-insertion position on
// overwrite (matching the "last value wins, original position kept" rule
// merges rely on).
func (o *Object) Set(key string, v *Value) {
	if i, exists := o.index[key]; exists {
		o.values[i] = v
		return
	}
	o.index[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.values = append(o.values, v)
}

func (o *Object) Get(key string) (*Value, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.values[i], true
}

func (o *Object) Keys() []string { return o.keys }

func (o *Object) Len() int { return len(o.keys) }

func Null() *Value              { return &Value{kind: KindNull} }
func Bool(b bool) *Value        { return &Value{kind: KindBool, b: b} }
func Number(n float64) *Value   { return &Value{kind: KindNumber, n: n} }
func String(s string) *Value    { return &Value{kind: KindString, s: s} }
func Arr(items []*Value) *Value { return &Value{kind: KindArray, array: items} }
func Obj(o *Object) *Value      { return &Value{kind: KindObject, object: o} }

func (v *Value) Kind() Kind       { return v.kind }
func (v *Value) Bool() bool       { return v.b }
func (v *Value) Number() float64  { return v.n }
func (v *Value) String() string   { return v.s }
func (v *Value) Object() *Object  { return v.object }
func (v *Value) Array() []*Value  { return v.array }

// FromGo converts a plain interface{} tree into the ordered cvalue tree.
// canon uses it on the result of a lens pipeline. Plain Go maps have no key
// order, so an object that comes back from a pipeline gets its keys in Go's
// map iteration order, not in source order.
func FromGo(v interface{}) *Value {
	switch val := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(val)
	case float64:
		return Number(val)
	case string:
		return String(val)
	case []interface{}:
		items := make([]*Value, 0, len(val))
		for _, item := range val {
			items = append(items, FromGo(item))
		}
		return Arr(items)
	case map[string]interface{}:
		o := NewObject()
		for k, v := range val {
			o.Set(k, FromGo(v))
		}
		return Obj(o)
	default:
		return Null()
	}
}

// ToGo converts a cvalue tree back to plain interface{} values (maps lose
// ordering), for the lens pipeline input and arguments, which operate on
// plain Go values.
func ToGo(v *Value) interface{} {
	if v == nil {
		return nil
	}
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindArray:
		out := make([]interface{}, 0, len(v.array))
		for _, item := range v.array {
			out = append(out, ToGo(item))
		}
		return out
	case KindObject:
		out := map[string]interface{}{}
		for _, k := range v.object.keys {
			val, _ := v.object.Get(k)
			out[k] = ToGo(val)
		}
		return out
	default:
		return nil
	}
}
