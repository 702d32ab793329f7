package types

import (
	"testing"

	"github.com/gmofishsauce/cadenza/internal/diag"
	"github.com/gmofishsauce/cadenza/internal/intern"
)

func newCompiler() *diag.Compiler { return diag.NewCompiler() }

func TestUnifyConcreteTypes(t *testing.T) {
	inf := NewInferencer()
	c := newCompiler()
	subst, ok := inf.Unify(Concrete{Name: "integer"}, Concrete{Name: "integer"}, c, intern.Span{})
	if !ok {
		t.Fatalf("expected unify to succeed")
	}
	if len(subst.m) != 0 {
		t.Errorf("expected an empty substitution, got %v", subst.m)
	}
}

func TestUnifyConcreteMismatch(t *testing.T) {
	inf := NewInferencer()
	c := newCompiler()
	_, ok := inf.Unify(Concrete{Name: "integer"}, Concrete{Name: "string"}, c, intern.Span{})
	if ok {
		t.Fatalf("expected unify to fail for mismatched concretes")
	}
	if !c.HasErrors() {
		t.Errorf("expected a diagnostic for the mismatch")
	}
}

func TestUnifyVarWithConcrete(t *testing.T) {
	inf := NewInferencer()
	c := newCompiler()
	v := inf.FreshVar()
	subst, ok := inf.Unify(Var{V: v}, Concrete{Name: "integer"}, c, intern.Span{})
	if !ok {
		t.Fatalf("expected unify to succeed")
	}
	got := subst.Apply(Var{V: v})
	if got.String() != "integer" {
		t.Errorf("got %v, want integer", got)
	}
}

func TestUnifyFunctionTypes(t *testing.T) {
	inf := NewInferencer()
	c := newCompiler()
	fnA := Fn{Args: []InferType{Concrete{Name: "integer"}}, Ret: Concrete{Name: "integer"}}
	fnB := Fn{Args: []InferType{Concrete{Name: "integer"}}, Ret: Concrete{Name: "integer"}}
	if _, ok := inf.Unify(fnA, fnB, c, intern.Span{}); !ok {
		t.Fatalf("expected identical function types to unify")
	}
}

func TestUnifyFunctionArityMismatch(t *testing.T) {
	inf := NewInferencer()
	c := newCompiler()
	fnA := Fn{Args: []InferType{Concrete{Name: "integer"}}, Ret: Concrete{Name: "integer"}}
	fnB := Fn{Args: []InferType{Concrete{Name: "integer"}, Concrete{Name: "integer"}}, Ret: Concrete{Name: "integer"}}
	if _, ok := inf.Unify(fnA, fnB, c, intern.Span{}); ok {
		t.Fatalf("expected arity mismatch to fail")
	}
}

func TestOccursCheck(t *testing.T) {
	inf := NewInferencer()
	c := newCompiler()
	v := inf.FreshVar()
	_, ok := inf.Unify(Var{V: v}, List{Elem: Var{V: v}}, c, intern.Span{})
	if ok {
		t.Fatalf("expected occurs check to reject v unifying with list[v]")
	}
	if !c.HasErrors() {
		t.Errorf("expected an occurs-check diagnostic")
	}
}

func TestGeneralize(t *testing.T) {
	inf := NewInferencer()
	v := inf.FreshVar()
	ty := Fn{Args: []InferType{Var{V: v}}, Ret: Var{V: v}}
	generalized := inf.Generalize(ty, NewTypeEnv())
	forall, ok := generalized.(Forall)
	if !ok {
		t.Fatalf("expected a Forall, got %#v", generalized)
	}
	if len(forall.Vars) != 1 || forall.Vars[0] != v {
		t.Errorf("expected exactly [%v], got %v", v, forall.Vars)
	}
}

func TestInstantiate(t *testing.T) {
	inf := NewInferencer()
	v := inf.FreshVar()
	scheme := Forall{Vars: []TypeVar{v}, Body: Fn{Args: []InferType{Var{V: v}}, Ret: Var{V: v}}}
	instantiated := inf.Instantiate(scheme)
	fn, ok := instantiated.(Fn)
	if !ok {
		t.Fatalf("expected a Fn, got %#v", instantiated)
	}
	argVar, ok1 := fn.Args[0].(Var)
	retVar, ok2 := fn.Ret.(Var)
	if !ok1 || !ok2 {
		t.Fatalf("expected both arg and ret to remain type variables, got %#v", fn)
	}
	if argVar.V != retVar.V {
		t.Errorf("expected both occurrences of the bound var to become the same fresh var")
	}
	if argVar.V == v {
		t.Errorf("expected a fresh var distinct from the original bound var %v", v)
	}
}

func TestSubstitutionCompose(t *testing.T) {
	v1, v2 := TypeVar(0), TypeVar(1)
	first := SingletonSubstitution(v1, Concrete{Name: "integer"})
	second := SingletonSubstitution(v2, Var{V: v1})
	composed := first.Compose(second)
	got := composed.Apply(Var{V: v2})
	if got.String() != "integer" {
		t.Errorf("got %v, want integer", got)
	}
}

func TestFreeVars(t *testing.T) {
	v1, v2 := TypeVar(0), TypeVar(1)
	ty := Fn{Args: []InferType{Var{V: v1}}, Ret: Var{V: v2}}
	vars := FreeVars(ty)
	if len(vars) != 2 || vars[0] != v1 || vars[1] != v2 {
		t.Errorf("got %v, want [%v %v]", vars, v1, v2)
	}
}

func TestDisplayTypeVar(t *testing.T) {
	if got := TypeVar(0).String(); got != "t0" {
		t.Errorf("got %q, want t0", got)
	}
	if got := TypeVar(25).String(); got != "t25" {
		t.Errorf("got %q, want t25", got)
	}
}

func TestTypeEnvInsertAndGet(t *testing.T) {
	te := NewTypeEnv()
	te.Insert(intern.Global().Intern("x"), Concrete{Name: "integer"})
	te.Insert(intern.Global().Intern("y"), Concrete{Name: "string"})

	xTy, ok := te.Get(intern.Global().Intern("x"))
	if !ok || xTy.String() != "integer" {
		t.Errorf("got %v", xTy)
	}
	yTy, ok := te.Get(intern.Global().Intern("y"))
	if !ok || yTy.String() != "string" {
		t.Errorf("got %v", yTy)
	}
}

func TestStandardTypeEnvHasOperatorSignatures(t *testing.T) {
	te := NewStandardTypeEnv()
	plus, ok := te.Get(intern.Global().Intern("+"))
	if !ok {
		t.Fatalf("expected + to be registered")
	}
	fn, ok := plus.(Fn)
	if !ok || len(fn.Args) != 2 {
		t.Fatalf("got %#v", plus)
	}
}
