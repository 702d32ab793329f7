package types

import (
	"testing"

	"github.com/gmofishsauce/cadenza/internal/intern"
	"github.com/gmofishsauce/cadenza/internal/values"
)

func TestFromEnvBasic(t *testing.T) {
	env := values.New()
	env.DefineGlobal(intern.Global().Intern("x"), values.Integer(42))
	env.DefineGlobal(intern.Global().Intern("y"), values.String{Text: "hello"})

	te := FromEnv(env)
	xTy, ok := te.Get(intern.Global().Intern("x"))
	if !ok || xTy.String() != "integer" {
		t.Errorf("got %v", xTy)
	}
	yTy, ok := te.Get(intern.Global().Intern("y"))
	if !ok || yTy.String() != "string" {
		t.Errorf("got %v", yTy)
	}
}

func TestFromEnvRespectsShadowing(t *testing.T) {
	env := values.New()
	env.DefineGlobal(intern.Global().Intern("x"), values.Integer(1))
	env.DefineGlobal(intern.Global().Intern("y"), values.String{Text: "outer"})

	env.PushScope()
	env.Define(intern.Global().Intern("y"), values.String{Text: "inner"})

	te := FromEnv(env)
	xTy, ok := te.Get(intern.Global().Intern("x"))
	if !ok || xTy.String() != "integer" {
		t.Errorf("got %v", xTy)
	}
	// only the innermost y binding should be visible.
	yTy, ok := te.Get(intern.Global().Intern("y"))
	if !ok || yTy.String() != "string" {
		t.Errorf("got %v", yTy)
	}
	env.PopScope()
}

func TestFromContextMergesBindings(t *testing.T) {
	env := values.New()
	env.DefineGlobal(intern.Global().Intern("x"), values.Integer(42))
	env.DefineGlobal(intern.Global().Intern("add"), values.BuiltinFn{Name: "add"})

	te := FromContext(env)
	xTy, ok := te.Get(intern.Global().Intern("x"))
	if !ok || xTy.String() != "integer" {
		t.Errorf("got %v", xTy)
	}
	if _, ok := te.Get(intern.Global().Intern("add")); !ok {
		t.Errorf("expected add to be bound (to an unknown/fresh signature)")
	}
}
