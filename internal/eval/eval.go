// Package eval implements Cadenza's tree-walking evaluator: a direct
// recursive walk over the AST that dispatches special forms, macros,
// builtins, and user functions against a values.Env.
//
// Grounded on spec.md §4.6 and
// original_source/crates/cadenza-eval/src/env.rs's register_standard_builtins,
// restated so dispatch happens uniformly through env lookup: an
// Ident/Op/Synthetic all resolve to a callable Value the same way, so
// `__block__`/`__list__`/`__record__`/`__index__` need no separate
// switch arm from `let`/`fn`/user calls.
package eval

import (
	"github.com/gmofishsauce/cadenza/internal/ast"
	"github.com/gmofishsauce/cadenza/internal/diag"
	"github.com/gmofishsauce/cadenza/internal/intern"
	"github.com/gmofishsauce/cadenza/internal/syntaxkind"
	"github.com/gmofishsauce/cadenza/internal/values"
)

// Eval evaluates e in env, reporting diagnostics to c and substituting
// values.Nil{} for any subexpression that fails (spec.md §7: evaluation
// never panics or aborts the whole program on one bad subexpression).
func Eval(e ast.Expr, env *values.Env, c *diag.Compiler) values.Value {
	switch v := e.(type) {
	case *ast.Literal:
		return evalLiteral(v, c)
	case *ast.Ident:
		return lookupOrNil(v.Name(), env, c, v.Element().TextRange())
	case *ast.Op:
		return lookupOrNil(v.Symbol(), env, c, v.Element().TextRange())
	case *ast.Synthetic:
		return lookupOrNil(v.Identifier(), env, c, v.Element().TextRange())
	case *ast.Attr:
		inner, ok := v.Value()
		if !ok {
			return values.Nil{}
		}
		return Eval(inner, env, c)
	case *ast.Apply:
		return evalApply(v, env, c)
	case *ast.Error:
		span := v.Element().TextRange()
		c.Report(diag.Syntax("cannot evaluate a malformed expression").WithSpan(span))
		return values.Nil{}
	default:
		c.Report(diag.Internal("unknown expression kind reached the evaluator"))
		return values.Nil{}
	}
}

func lookupOrNil(name string, env *values.Env, c *diag.Compiler, span intern.Span) values.Value {
	id := intern.Global().Intern(name)
	if v, ok := env.Get(id); ok {
		return v
	}
	c.Report(diag.UndefinedVariable(name).WithSpan(span))
	return values.Nil{}
}

// stringBody strips the surrounding double quotes a string token's text
// carries (an unterminated string has only the opening one).
func stringBody(text string) string {
	if len(text) > 0 && text[0] == '"' {
		text = text[1:]
	}
	if len(text) > 0 && text[len(text)-1] == '"' {
		text = text[:len(text)-1]
	}
	return text
}

func evalLiteral(l *ast.Literal, c *diag.Compiler) values.Value {
	switch l.Kind() {
	case syntaxkind.Integer:
		return parseInteger(l.Text(), c, l.Element().TextRange())
	case syntaxkind.Float:
		return parseFloat(l.Text(), c, l.Element().TextRange())
	case syntaxkind.StringContent:
		text := stringBody(l.Text())
		return values.String{Text: text, ID: intern.Global().Intern(text)}
	case syntaxkind.StringContentWithEscape:
		return values.String{Text: unescapeString(stringBody(l.Text())), ID: 0}
	case syntaxkind.CharLiteral:
		return values.String{Text: l.Text()}
	default:
		c.Report(diag.Internal("literal with unexpected token kind"))
		return values.Nil{}
	}
}

// evalApply is the single dispatch point for every call shape: infix
// operators, juxtaposition, and the synthetic block/list/record/index
// applicators all reduce to "evaluate the callee, evaluate-or-defer the
// arguments per the callee's kind."
func evalApply(a *ast.Apply, env *values.Env, c *diag.Compiler) values.Value {
	calleeExpr, ok := a.Callee()
	if !ok {
		c.Report(diag.Internal("apply node with no receiver"))
		return values.Nil{}
	}
	callee := Eval(calleeExpr, env, c)
	args := a.AllArguments()

	ctx := &values.EvalContext{Compiler: c, Env: env, Eval: Eval}

	switch fn := callee.(type) {
	case values.SpecialForm:
		return fn.Fn(ctx, args)
	case values.BuiltinMacro:
		return fn.Fn(ctx, args)
	default:
		return applyEvaluated(ctx, callee, calleeExpr.Element().TextRange(), evalArgs(args, env, c))
	}
}

// applyEvaluated dispatches a callee that takes already-evaluated
// arguments: BuiltinFn, UserFunction, or UnitConstructor. Shared between
// ordinary Apply dispatch and the `|>` pipeline form, whose right-hand
// side's arguments are likewise evaluated before the call.
func applyEvaluated(ctx *values.EvalContext, callee values.Value, calleeSpan intern.Span, argVals []values.Value) values.Value {
	switch fn := callee.(type) {
	case values.BuiltinFn:
		return fn.Fn(ctx, argVals)
	case values.UserFunction:
		return callUserFunction(fn, argVals, ctx.Compiler)
	case values.UnitConstructor:
		return applyUnitConstructor(fn, argVals, ctx.Compiler)
	default:
		ctx.Compiler.Report(diag.NotCallable(callee.Kind()).WithSpan(calleeSpan))
		return values.Nil{}
	}
}

func evalArgs(args []ast.Expr, env *values.Env, c *diag.Compiler) []values.Value {
	out := make([]values.Value, len(args))
	for i, a := range args {
		out[i] = Eval(a, env, c)
	}
	return out
}

func callUserFunction(fn values.UserFunction, args []values.Value, c *diag.Compiler) values.Value {
	if len(args) != len(fn.Params) {
		c.Report(diag.Arity(len(fn.Params), len(args)))
		return values.Nil{}
	}
	callEnv := fn.Captured.Clone()
	callEnv.PushScope()
	for i, p := range fn.Params {
		callEnv.Define(p, args[i])
	}
	result := Eval(fn.Body, callEnv, c)
	callEnv.PopScope()
	return result
}

func applyUnitConstructor(uc values.UnitConstructor, args []values.Value, c *diag.Compiler) values.Value {
	if len(args) != 1 {
		c.Report(diag.Arity(1, len(args)))
		return values.Nil{}
	}
	n, ok := numeric(args[0])
	if !ok {
		c.Report(diag.TypeError("unit constructor requires a numeric argument"))
		return values.Nil{}
	}
	return values.Quantity{Value: n, Unit: uc.Unit, Dimension: uc.Unit.Dimension}
}

func numeric(v values.Value) (float64, bool) {
	switch n := v.(type) {
	case values.Integer:
		return float64(n), true
	case values.Float:
		return float64(n), true
	default:
		return 0, false
	}
}
