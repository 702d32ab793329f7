package values

import (
	"testing"

	"github.com/gmofishsauce/cadenza/internal/intern"
)

func TestEqualPrimitives(t *testing.T) {
	if !Equal(Integer(3), Integer(3)) {
		t.Fatal("3 == 3 should be true")
	}
	if Equal(Integer(3), Float(3)) {
		t.Fatal("Integer(3) should not equal Float(3): different variant family")
	}
	if !Equal(String{Text: "hi"}, String{Text: "hi"}) {
		t.Fatal("equal strings should compare equal")
	}
	if Equal(String{Text: "hi"}, String{Text: "bye"}) {
		t.Fatal("different strings should not compare equal")
	}
}

func TestEqualCallablesByIdentity(t *testing.T) {
	fn := BuiltinFn{Name: "f", Fn: func(ctx *EvalContext, args []Value) Value { return Nil{} }}
	if !Equal(fn, fn) {
		t.Fatal("a BuiltinFn should equal itself")
	}
	other := BuiltinFn{Name: "f", Fn: func(ctx *EvalContext, args []Value) Value { return Nil{} }}
	if Equal(fn, other) {
		t.Fatal("two distinct BuiltinFn values with the same name should not compare equal")
	}
}

func TestEqualListAndRecord(t *testing.T) {
	in := intern.Global()
	a := in.Intern("values_test.a")
	b := in.Intern("values_test.b")

	l1 := List{Elements: []Value{Integer(1), Integer(2)}}
	l2 := List{Elements: []Value{Integer(1), Integer(2)}}
	l3 := List{Elements: []Value{Integer(1), Integer(3)}}
	if !Equal(l1, l2) {
		t.Fatal("identical lists should be equal")
	}
	if Equal(l1, l3) {
		t.Fatal("lists differing in an element should not be equal")
	}

	r1 := NewRecord([]intern.ID{a, b}, []Value{Integer(1), Integer(2)})
	r2 := NewRecord([]intern.ID{a, b}, []Value{Integer(1), Integer(2)})
	if !Equal(r1, r2) {
		t.Fatal("identical records should be equal")
	}
	if v, ok := r1.Field(a); !ok || v != Integer(1) {
		t.Fatalf("Field(a) = %v, %v; want 1, true", v, ok)
	}
}

func TestTruthy(t *testing.T) {
	if !Truthy(Bool(true)) {
		t.Fatal("Bool(true) should be truthy")
	}
	if Truthy(Bool(false)) {
		t.Fatal("Bool(false) should not be truthy")
	}
	if Truthy(Integer(1)) {
		t.Fatal("non-Bool values are never truthy, even nonzero integers")
	}
}

func TestDisplay(t *testing.T) {
	if got := Display(Integer(42)); got != "42" {
		t.Fatalf("Display(42) = %q", got)
	}
	if got := Display(Bool(true)); got != "true" {
		t.Fatalf("Display(true) = %q", got)
	}
	if got := Display(List{Elements: []Value{Integer(1), Integer(2)}}); got != "[1, 2]" {
		t.Fatalf("Display(list) = %q", got)
	}
}
