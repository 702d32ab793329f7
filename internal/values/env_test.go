package values

import (
	"testing"

	"github.com/gmofishsauce/cadenza/internal/intern"
)

func TestDefineAndGet(t *testing.T) {
	in := intern.Global()
	x := in.Intern("env_test.x")
	e := New()
	e.Define(x, Integer(1))
	v, ok := e.Get(x)
	if !ok || v != Integer(1) {
		t.Fatalf("Get(x) = %v, %v; want 1, true", v, ok)
	}
}

func TestLookupWalksTopToBottom(t *testing.T) {
	in := intern.Global()
	x := in.Intern("env_test.shadowed")
	e := New()
	e.DefineGlobal(x, Integer(1))
	e.PushScope()
	e.Define(x, Integer(2))
	v, _ := e.Get(x)
	if v != Integer(2) {
		t.Fatalf("inner scope should shadow outer: got %v", v)
	}
	e.PopScope()
	v, _ = e.Get(x)
	if v != Integer(1) {
		t.Fatalf("popping the scope should reveal the outer binding: got %v", v)
	}
}

func TestSetRequiresExistingBinding(t *testing.T) {
	in := intern.Global()
	y := in.Intern("env_test.y")
	e := New()
	if e.Set(y, Integer(5)) {
		t.Fatal("Set on an unbound name should report false")
	}
	e.Define(y, Integer(1))
	if !e.Set(y, Integer(5)) {
		t.Fatal("Set on a bound name should succeed")
	}
	v, _ := e.Get(y)
	if v != Integer(5) {
		t.Fatalf("Set should update the binding: got %v", v)
	}
}

func TestCloneIsCopyOnWrite(t *testing.T) {
	in := intern.Global()
	z := in.Intern("env_test.z")
	base := New()
	base.Define(z, Integer(1))

	clone := base.Clone()
	clone.Define(z, Integer(2))

	baseVal, _ := base.Get(z)
	cloneVal, _ := clone.Get(z)
	if baseVal != Integer(1) {
		t.Fatalf("writing through the clone must not affect the original: base.z = %v", baseVal)
	}
	if cloneVal != Integer(2) {
		t.Fatalf("clone.z = %v, want 2", cloneVal)
	}
}

func TestClonesShareUntouchedScopes(t *testing.T) {
	in := intern.Global()
	shared := in.Intern("env_test.shared")
	untouched := in.Intern("env_test.untouched")
	base := New()
	base.DefineGlobal(untouched, Integer(7))
	base.PushScope()
	base.Define(shared, Integer(1))

	clone := base.Clone()
	// A write to a different scope (the inner one) must not disturb the
	// global scope neither clone has touched yet.
	clone.Define(shared, Integer(9))

	v, _ := base.Get(untouched)
	if v != Integer(7) {
		t.Fatalf("untouched global binding should be unaffected: got %v", v)
	}
	bv, _ := base.Get(shared)
	if bv != Integer(1) {
		t.Fatalf("base's view of shared should be unaffected by clone's write: got %v", bv)
	}
}

func TestPopGlobalScopePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("popping the global scope should panic")
		}
	}()
	New().PopScope()
}
