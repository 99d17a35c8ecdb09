package cvalue

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestObjectPreservesInsertionOrder(t *testing.T) {
	o := NewObject()
	o.Set("z", String("1"))
	o.Set("a", String("2"))
	o.Set("m", String("3"))
	got := o.Keys()
	want := []string{"z", "a", "m"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Keys() mismatch (-want +got):\n%s", diff)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", got, want)
		}
	}
}

func TestObjectSetOverwriteKeepsPosition(t *testing.T) {
	o := NewObject()
	o.Set("a", String("1"))
	o.Set("b", String("2"))
	o.Set("a", String("3"))
	if len(o.Keys()) != 2 {
		t.Fatalf("expected 2 keys after overwrite, got %v", o.Keys())
	}
	v, _ := o.Get("a")
	if v.String() != "3" {
		t.Errorf("Get(a) = %q, want %q", v.String(), "3")
	}
}

func TestSerializeScalarsAndCollections(t *testing.T) {
	o := NewObject()
	o.Set("name", String("alice"))
	o.Set("age", Number(30))
	o.Set("active", Bool(true))
	o.Set("nil", Null())
	o.Set("tags", Arr([]*Value{String("a"), String("b")}))

	got := Serialize(Obj(o))
	want := `{"name":"alice","age":30,"active":true,"nil":null,"tags":["a","b"]}`
	if got != want {
		t.Errorf("Serialize() = %s, want %s", got, want)
	}
}

func TestSerializeEscapesStrings(t *testing.T) {
	got := Serialize(String("line\nwith\ttab and \"quote\""))
	want := `"line\nwith\ttab and \"quote\""`
	if got != want {
		t.Errorf("Serialize() = %s, want %s", got, want)
	}
}

func TestSerializeIntegerNumbersHaveNoDecimalPoint(t *testing.T) {
	got := Serialize(Number(3))
	if got != "3" {
		t.Errorf("Serialize(3.0) = %s, want %s", got, "3")
	}
}

func TestFromGoToGoRoundTrip(t *testing.T) {
	in := map[string]interface{}{"a": float64(1), "b": "x", "c": []interface{}{true, nil}}
	v := FromGo(in)
	out := ToGo(v)
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}
