package eval

import (
	"testing"

	"github.com/gmofishsauce/cadenza/internal/ast"
	"github.com/gmofishsauce/cadenza/internal/cst"
	"github.com/gmofishsauce/cadenza/internal/diag"
	"github.com/gmofishsauce/cadenza/internal/parser"
	"github.com/gmofishsauce/cadenza/internal/values"
)

// lastStmt parses src and returns the last top-level statement as an
// ast.Expr, skipping trivia, along with the Compiler that gathered any
// parse diagnostics.
func lastStmt(t *testing.T, src string) (ast.Expr, *diag.Compiler) {
	t.Helper()
	root, comp := parser.Parse(src)
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
	return ast.FromElement(last), comp
}

func evalSrc(t *testing.T, env *values.Env, src string) values.Value {
	t.Helper()
	expr, comp := lastStmt(t, src)
	v := Eval(expr, env, comp)
	if comp.HasErrors() {
		t.Fatalf("unexpected diagnostics evaluating %q: %v", src, comp.Diagnostics)
	}
	return v
}

func TestEvalLiterals(t *testing.T) {
	env := NewGlobalEnv()
	if got := evalSrc(t, env, "42"); got != values.Integer(42) {
		t.Errorf("got %#v", got)
	}
	if got := evalSrc(t, env, "3.5"); got != values.Float(3.5) {
		t.Errorf("got %#v", got)
	}
	if got := evalSrc(t, env, `"hi"`); !values.Equal(got, values.String{Text: "hi"}) {
		t.Errorf("got %#v", got)
	}
}

func TestEvalArithmetic(t *testing.T) {
	env := NewGlobalEnv()
	if got := evalSrc(t, env, "1 + 2 * 3"); got != values.Integer(7) {
		t.Errorf("got %#v, want 7", got)
	}
	if got := evalSrc(t, env, "1 + 2.0"); got != values.Float(3.0) {
		t.Errorf("got %#v, want 3.0", got)
	}
}

func TestEvalComparison(t *testing.T) {
	env := NewGlobalEnv()
	if got := evalSrc(t, env, "1 < 2"); got != values.Bool(true) {
		t.Errorf("got %#v", got)
	}
	if got := evalSrc(t, env, "2 == 2"); got != values.Bool(true) {
		t.Errorf("got %#v", got)
	}
}

func TestEvalLetAndLookup(t *testing.T) {
	env := NewGlobalEnv()
	evalSrc(t, env, "let x = 10")
	if got := evalSrc(t, env, "x + 5"); got != values.Integer(15) {
		t.Errorf("got %#v, want 15", got)
	}
}

func TestEvalUndefinedVariableReportsDiagnostic(t *testing.T) {
	env := NewGlobalEnv()
	expr, comp := lastStmt(t, "undefinedThing")
	got := Eval(expr, env, comp)
	if _, ok := got.(values.Nil); !ok {
		t.Errorf("expected Nil for undefined lookup, got %#v", got)
	}
	if !comp.HasErrors() {
		t.Errorf("expected an undefined-variable diagnostic")
	}
}

func TestEvalFunctionCallAndRecursion(t *testing.T) {
	env := NewGlobalEnv()
	evalSrc(t, env, "fn add a b = a + b")
	if got := evalSrc(t, env, "add 2 3"); got != values.Integer(5) {
		t.Errorf("got %#v, want 5", got)
	}

	evalSrc(t, env, "fn fact n = match (n == 0) (true -> 1) (false -> n * (fact (n - 1)))")
	if got := evalSrc(t, env, "fact 5"); got != values.Integer(120) {
		t.Errorf("got %#v, want 120", got)
	}
}

func TestEvalPipeline(t *testing.T) {
	env := NewGlobalEnv()
	evalSrc(t, env, "fn inc a = a + 1")
	if got := evalSrc(t, env, "5 |> inc"); got != values.Integer(6) {
		t.Errorf("got %#v, want 6", got)
	}
}
