package eval

import (
	"testing"

	"github.com/gmofishsauce/cadenza/internal/intern"
	"github.com/gmofishsauce/cadenza/internal/values"
)

func TestListLiteral(t *testing.T) {
	env := NewGlobalEnv()
	got := evalSrc(t, env, "[1, 2, 3]")
	lst, ok := got.(values.List)
	if !ok || len(lst.Elements) != 3 {
		t.Fatalf("got %#v", got)
	}
	if lst.Elements[0] != values.Integer(1) || lst.Elements[2] != values.Integer(3) {
		t.Errorf("unexpected elements: %#v", lst.Elements)
	}
}

func TestListIndex(t *testing.T) {
	env := NewGlobalEnv()
	evalSrc(t, env, "let xs = [10, 20, 30]")
	if got := evalSrc(t, env, "xs[1]"); got != values.Integer(20) {
		t.Errorf("got %#v, want 20", got)
	}
}

func TestRecordLiteralAndIndex(t *testing.T) {
	env := NewGlobalEnv()
	evalSrc(t, env, "let r = {x = 1, y = 2}")
	rec := evalSrc(t, env, "r")
	record, ok := rec.(values.Record)
	if !ok || record.Len() != 2 {
		t.Fatalf("got %#v", rec)
	}
	if got := evalSrc(t, env, `r["x"]`); got != values.Integer(1) {
		t.Errorf("got %#v, want 1", got)
	}
}

func TestAssertPassesSilently(t *testing.T) {
	env := NewGlobalEnv()
	evalSrc(t, env, "assert true")
}

func TestAssertFailureReportsDiagnostic(t *testing.T) {
	env := NewGlobalEnv()
	expr, comp := lastStmt(t, "assert false")
	Eval(expr, env, comp)
	if !comp.HasErrors() {
		t.Errorf("expected a diagnostic for a failed assertion")
	}
}

func TestTypeof(t *testing.T) {
	env := NewGlobalEnv()
	got := evalSrc(t, env, "typeof 42")
	typ, ok := got.(values.Type)
	if !ok || typ.Name != "integer" {
		t.Errorf("got %#v", got)
	}
}

func TestBlockScoping(t *testing.T) {
	env := NewGlobalEnv()
	evalSrc(t, env, "fn inBlockIsVisible x =\n  let y = x + 1\n  y * 2")

	if got := evalSrc(t, env, "inBlockIsVisible 3"); got != values.Integer(8) {
		t.Errorf("got %#v, want 8", got)
	}

	// after the block's own scope pops, its local binding y must not leak.
	id := intern.Global().Intern("y")
	if _, ok := env.Get(id); ok {
		t.Errorf("expected y to stay scoped to the block body")
	}
}

func TestMeasureAndQuantityArithmetic(t *testing.T) {
	env := NewGlobalEnv()
	evalSrc(t, env, "measure meter")
	evalSrc(t, env, "measure millimeter = 0.001meter")

	got := evalSrc(t, env, "1meter + 500millimeter")
	q, ok := got.(values.Quantity)
	if !ok {
		t.Fatalf("got %#v", got)
	}
	if q.Value != 1.5 {
		t.Errorf("got %v meters, want 1.5", q.Value)
	}
}
