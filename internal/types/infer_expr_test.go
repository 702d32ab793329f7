package types

import (
	"testing"

	"github.com/gmofishsauce/cadenza/internal/ast"
	"github.com/gmofishsauce/cadenza/internal/cst"
	"github.com/gmofishsauce/cadenza/internal/parser"
)

func lastStmt(t *testing.T, src string) ast.Expr {
	t.Helper()
	root, _ := parser.Parse(src)
	var last cst.Element
	for _, e := range root.ChildrenWithTokens() {
		if e.Kind().IsTrivia() {
			continue
		}
		last = e
	}
	if last == nil {
		t.Fatalf("no statement parsed from %q", src)
	}
	return ast.FromElement(last)
}

func TestInferLiteral(t *testing.T) {
	inf := NewInferencer()
	c := newCompiler()
	env := NewStandardTypeEnv()
	if got := inf.InferExpr(lastStmt(t, "42"), env, c); got.String() != "integer" {
		t.Errorf("got %v", got)
	}
	if got := inf.InferExpr(lastStmt(t, "3.5"), env, c); got.String() != "float" {
		t.Errorf("got %v", got)
	}
	if got := inf.InferExpr(lastStmt(t, `"hi"`), env, c); got.String() != "string" {
		t.Errorf("got %v", got)
	}
}

func TestInferArithmeticApply(t *testing.T) {
	inf := NewInferencer()
	c := newCompiler()
	env := NewStandardTypeEnv()
	got := inf.InferExpr(lastStmt(t, "1 + 2"), env, c)
	if got.String() != "integer" {
		t.Errorf("got %v, want integer", got)
	}
	if c.HasErrors() {
		t.Errorf("unexpected diagnostics: %v", c.Diagnostics)
	}
}

func TestInferUnboundIdentYieldsFreshVar(t *testing.T) {
	inf := NewInferencer()
	c := newCompiler()
	env := NewStandardTypeEnv()
	got := inf.InferExpr(lastStmt(t, "mystery"), env, c)
	if _, ok := got.(Var); !ok {
		t.Errorf("expected an unbound identifier to infer as a fresh var, got %#v", got)
	}
	if c.HasErrors() {
		t.Errorf("expected no diagnostic for an unbound identifier during inference")
	}
}
