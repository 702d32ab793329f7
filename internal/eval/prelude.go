package eval

import (
	"github.com/gmofishsauce/cadenza/internal/ast"
	"github.com/gmofishsauce/cadenza/internal/diag"
	"github.com/gmofishsauce/cadenza/internal/intern"
	"github.com/gmofishsauce/cadenza/internal/values"
)

// NewGlobalEnv builds the environment every top-level evaluation starts
// from: special forms, arithmetic/comparison operators, and the boolean
// constants, mirroring
// original_source/crates/cadenza-eval/src/env.rs's
// register_standard_builtins.
func NewGlobalEnv() *values.Env {
	env := values.New()

	registerSpecialForm(env, "let", letForm)
	registerSpecialForm(env, "=", assignForm)
	registerSpecialForm(env, "fn", fnForm)
	registerSpecialForm(env, "match", matchForm)
	registerSpecialForm(env, "assert", assertForm)
	registerSpecialForm(env, "typeof", typeofForm)
	registerSpecialForm(env, "measure", measureForm)
	registerSpecialForm(env, "|>", pipeForm)
	registerSpecialForm(env, "__block__", blockForm)
	registerSpecialForm(env, "__list__", listForm)
	registerSpecialForm(env, "__record__", recordForm)
	registerSpecialForm(env, "__index__", indexForm)

	registerOperator(env, "+", addOp)
	registerOperator(env, "-", subOp)
	registerOperator(env, "*", mulOp)
	registerOperator(env, "/", divOp)
	registerOperator(env, "==", eqOp)
	registerOperator(env, "!=", neOp)
	registerOperator(env, "<", ltOp)
	registerOperator(env, "<=", leOp)
	registerOperator(env, ">", gtOp)
	registerOperator(env, ">=", geOp)

	env.DefineGlobal(intern.Global().Intern("true"), values.Bool(true))
	env.DefineGlobal(intern.Global().Intern("false"), values.Bool(false))
	env.DefineGlobal(intern.Global().Intern("nil"), values.Nil{})

	return env
}

func registerSpecialForm(env *values.Env, name string, fn func(*values.EvalContext, []ast.Expr) values.Value) {
	env.DefineGlobal(intern.Global().Intern(name), values.SpecialForm{Name: name, Fn: fn})
}

func registerOperator(env *values.Env, name string, apply func(c *diag.Compiler, l, r values.Value) values.Value) {
	env.DefineGlobal(intern.Global().Intern(name), binaryOperatorForm(name, apply))
}
