package eval

import (
	"github.com/gmofishsauce/cadenza/internal/ast"
	"github.com/gmofishsauce/cadenza/internal/diag"
	"github.com/gmofishsauce/cadenza/internal/intern"
	"github.com/gmofishsauce/cadenza/internal/values"
)

// letForm implements `let name = expr`: evaluate expr, bind it in the
// current (innermost) scope, and yield the value.
func letForm(ctx *values.EvalContext, args []ast.Expr) values.Value {
	if len(args) != 2 {
		ctx.Compiler.Report(diag.Arity(2, len(args)))
		return values.Nil{}
	}
	name, ok := args[0].(*ast.Ident)
	if !ok {
		ctx.Compiler.Report(diag.Syntax("let requires a plain name on its left-hand side"))
		return values.Nil{}
	}
	val := ctx.Eval(args[1], ctx.Env, ctx.Compiler)
	ctx.Env.Define(intern.Global().Intern(name.Name()), val)
	return val
}

// assignForm implements `name = expr`: re-assign a binding anywhere up
// the scope stack, erroring if it was never bound.
func assignForm(ctx *values.EvalContext, args []ast.Expr) values.Value {
	if len(args) != 2 {
		ctx.Compiler.Report(diag.Arity(2, len(args)))
		return values.Nil{}
	}
	name, ok := args[0].(*ast.Ident)
	if !ok {
		ctx.Compiler.Report(diag.Syntax("assignment requires a plain name on its left-hand side"))
		return values.Nil{}
	}
	val := ctx.Eval(args[1], ctx.Env, ctx.Compiler)
	id := intern.Global().Intern(name.Name())
	if !ctx.Env.Set(id, val) {
		ctx.Compiler.Report(diag.UndefinedVariable(name.Name()))
		return values.Nil{}
	}
	return val
}

// fnForm implements `fn name p1 … pn = body`: bind name to a
// UserFunction capturing the current environment.
//
// Self-recursion needs the captured environment to see the function's
// own binding, but Env's copy-on-write clone (see values/env.go) only
// lets a write through cleanly while one side still owns the scope; the
// instant the defining Env is cloned, EITHER side's next write forks its
// own private copy of the scope, not the other's. So the name is bound
// twice, once into each independently-owned copy: once into the
// snapshot itself (so the function sees itself when called) and once
// into the caller's live environment (so later/sibling code sees it).
func fnForm(ctx *values.EvalContext, args []ast.Expr) values.Value {
	if len(args) < 2 {
		ctx.Compiler.Report(diag.Arity(2, len(args)))
		return values.Nil{}
	}
	name, ok := args[0].(*ast.Ident)
	if !ok {
		ctx.Compiler.Report(diag.Syntax("fn requires a plain name"))
		return values.Nil{}
	}
	paramExprs := args[1 : len(args)-1]
	body := args[len(args)-1]

	params := make([]intern.ID, len(paramExprs))
	for i, p := range paramExprs {
		pIdent, ok := p.(*ast.Ident)
		if !ok {
			ctx.Compiler.Report(diag.Syntax("fn parameters must be plain names"))
			return values.Nil{}
		}
		params[i] = intern.Global().Intern(pIdent.Name())
	}

	nameID := intern.Global().Intern(name.Name())
	snapshot := ctx.Env.Clone()
	fn := values.UserFunction{Name: name.Name(), Params: params, Body: body, Captured: snapshot}
	snapshot.Define(nameID, fn)
	ctx.Env.Define(nameID, fn)
	return fn
}

// matchForm implements `match scrutinee (p1 -> e1) …`, currently
// exhaustive over Bool: the scrutinee and each pattern both evaluate
// (patterns are just the `true`/`false` identifiers, resolved through
// the same environment lookup as any other value), and the first
// structurally equal arm's body is evaluated.
func matchForm(ctx *values.EvalContext, args []ast.Expr) values.Value {
	if len(args) < 2 {
		ctx.Compiler.Report(diag.Arity(2, len(args)))
		return values.Nil{}
	}
	scrutinee := ctx.Eval(args[0], ctx.Env, ctx.Compiler)
	for _, armExpr := range args[1:] {
		arm, ok := armExpr.(*ast.Apply)
		if !ok {
			continue
		}
		armArgs := arm.AllArguments()
		if len(armArgs) != 2 {
			continue
		}
		pattern := ctx.Eval(armArgs[0], ctx.Env, ctx.Compiler)
		if values.Equal(scrutinee, pattern) {
			return ctx.Eval(armArgs[1], ctx.Env, ctx.Compiler)
		}
	}
	ctx.Compiler.Report(diag.TypeError("match is not exhaustive for this scrutinee"))
	return values.Nil{}
}

// assertForm implements `assert cond [msg]`.
func assertForm(ctx *values.EvalContext, args []ast.Expr) values.Value {
	if len(args) < 1 || len(args) > 2 {
		ctx.Compiler.Report(diag.Arity(1, len(args)))
		return values.Nil{}
	}
	cond := ctx.Eval(args[0], ctx.Env, ctx.Compiler)
	if values.Truthy(cond) {
		return values.Nil{}
	}
	message := "assertion failed"
	if len(args) == 2 {
		if s, ok := ctx.Eval(args[1], ctx.Env, ctx.Compiler).(values.String); ok {
			message = s.Text
		}
	}
	ctx.Compiler.Report(diag.TypeError(message))
	return values.Nil{}
}

// typeofForm implements `typeof e`, returning a Type descriptor of e's
// dynamic kind.
func typeofForm(ctx *values.EvalContext, args []ast.Expr) values.Value {
	if len(args) != 1 {
		ctx.Compiler.Report(diag.Arity(1, len(args)))
		return values.Nil{}
	}
	v := ctx.Eval(args[0], ctx.Env, ctx.Compiler)
	return values.Type{Name: v.Kind()}
}

// measureForm implements `measure name` (new base unit) and
// `measure name = quantity` (derived unit, conversion taken from
// quantity's value expressed in quantity's own unit's base terms).
func measureForm(ctx *values.EvalContext, args []ast.Expr) values.Value {
	if len(args) < 1 || len(args) > 2 {
		ctx.Compiler.Report(diag.Arity(1, len(args)))
		return values.Nil{}
	}
	name, ok := args[0].(*ast.Ident)
	if !ok {
		ctx.Compiler.Report(diag.Syntax("measure requires a plain unit name"))
		return values.Nil{}
	}
	nameID := intern.Global().Intern(name.Name())

	if len(args) == 1 {
		u := ctx.Env.Units.DefineBase(nameID)
		ctx.Env.Define(nameID, values.UnitConstructor{Unit: u})
		return values.Nil{}
	}

	rhs := ctx.Eval(args[1], ctx.Env, ctx.Compiler)
	q, ok := rhs.(values.Quantity)
	if !ok {
		ctx.Compiler.Report(diag.TypeError("measure's right-hand side must be a quantity, e.g. `measure inch = 25.4mm`"))
		return values.Nil{}
	}
	scale := q.Unit.ToBase(q.Value)
	u := ctx.Env.Units.Define(nameID, q.Dimension, scale, 0)
	ctx.Env.Define(nameID, values.UnitConstructor{Unit: u})
	return values.Nil{}
}

// pipeForm implements `x |> f a b`, desugaring to `f x a b`: the
// left-hand side is evaluated once and prepended to the right-hand
// call's (already-evaluated) argument list.
func pipeForm(ctx *values.EvalContext, args []ast.Expr) values.Value {
	if len(args) != 2 {
		ctx.Compiler.Report(diag.Arity(2, len(args)))
		return values.Nil{}
	}
	lhs := ctx.Eval(args[0], ctx.Env, ctx.Compiler)

	var calleeExpr ast.Expr
	var restExprs []ast.Expr
	if call, ok := args[1].(*ast.Apply); ok {
		callee, ok := call.Callee()
		if !ok {
			ctx.Compiler.Report(diag.Internal("pipeline target has no receiver"))
			return values.Nil{}
		}
		calleeExpr = callee
		restExprs = call.AllArguments()
	} else {
		calleeExpr = args[1]
	}

	callee := ctx.Eval(calleeExpr, ctx.Env, ctx.Compiler)
	argVals := append([]values.Value{lhs}, evalArgs(restExprs, ctx.Env, ctx.Compiler)...)
	return applyEvaluated(ctx, callee, calleeExpr.Element().TextRange(), argVals)
}

// blockForm implements `__block__(e1, …, en)`: push a scope, hoist
// forward-referenceable `fn` definitions, evaluate sequentially, pop,
// and return the last statement's value (Nil for an empty block).
func blockForm(ctx *values.EvalContext, args []ast.Expr) values.Value {
	ctx.Env.PushScope()
	defer ctx.Env.PopScope()

	hoistFunctionDefs(ctx, args)

	result := values.Value(values.Nil{})
	for _, stmt := range args {
		result = ctx.Eval(stmt, ctx.Env, ctx.Compiler)
	}
	return result
}

// hoistFunctionDefs pre-declares every `fn name …` statement's name as
// a placeholder Nil binding in the current scope before the block body
// runs, so a function defined later in the block can still be called by
// one defined earlier (mutual/forward recursion).
func hoistFunctionDefs(ctx *values.EvalContext, stmts []ast.Expr) {
	for _, stmt := range stmts {
		app, ok := stmt.(*ast.Apply)
		if !ok {
			continue
		}
		callee, ok := app.Callee()
		if !ok {
			continue
		}
		ident, ok := callee.(*ast.Ident)
		if !ok || ident.Name() != "fn" {
			continue
		}
		fnArgs := app.AllArguments()
		if len(fnArgs) < 2 {
			continue
		}
		nameIdent, ok := fnArgs[0].(*ast.Ident)
		if !ok {
			continue
		}
		id := intern.Global().Intern(nameIdent.Name())
		if !ctx.Env.Contains(id) {
			ctx.Env.Define(id, values.Nil{})
			ctx.Compiler.Hoisted[id] = true
		}
	}
}

// listForm implements `__list__(e1, …, en)`.
func listForm(ctx *values.EvalContext, args []ast.Expr) values.Value {
	return values.List{Elements: evalArgs(args, ctx.Env, ctx.Compiler)}
}

// recordForm implements `__record__((= field val) …)`, preserving field
// insertion order. Each argument's shape is inspected directly (rather
// than evaluated through the generic `=` dispatch) since a record field
// is a structural pair, not an assignment statement.
func recordForm(ctx *values.EvalContext, args []ast.Expr) values.Value {
	names := make([]intern.ID, 0, len(args))
	vals := make([]values.Value, 0, len(args))
	for _, a := range args {
		app, ok := a.(*ast.Apply)
		if !ok {
			ctx.Compiler.Report(diag.Syntax("record fields must have the form `name = value`"))
			continue
		}
		fieldArgs := app.AllArguments()
		if len(fieldArgs) != 2 {
			ctx.Compiler.Report(diag.Syntax("record fields must have the form `name = value`"))
			continue
		}
		fieldName, ok := fieldArgs[0].(*ast.Ident)
		if !ok {
			ctx.Compiler.Report(diag.Syntax("record field names must be plain names"))
			continue
		}
		names = append(names, intern.Global().Intern(fieldName.Name()))
		vals = append(vals, ctx.Eval(fieldArgs[1], ctx.Env, ctx.Compiler))
	}
	return values.NewRecord(names, vals)
}

// indexForm implements `__index__(receiver, index)`: Integer index into
// a List, or field-name (String/Symbol) lookup into a Record/Struct.
func indexForm(ctx *values.EvalContext, args []ast.Expr) values.Value {
	if len(args) != 2 {
		ctx.Compiler.Report(diag.Arity(2, len(args)))
		return values.Nil{}
	}
	recv := ctx.Eval(args[0], ctx.Env, ctx.Compiler)
	idx := ctx.Eval(args[1], ctx.Env, ctx.Compiler)

	switch r := recv.(type) {
	case values.List:
		i, ok := idx.(values.Integer)
		if !ok {
			ctx.Compiler.Report(diag.TypeError("indexing a list requires an integer index"))
			return values.Nil{}
		}
		if int(i) < 0 || int(i) >= len(r.Elements) {
			ctx.Compiler.Report(diag.TypeError("list index out of range"))
			return values.Nil{}
		}
		return r.Elements[i]
	case values.Record:
		return lookupField(ctx.Compiler, r, idx)
	case values.Struct:
		return lookupField(ctx.Compiler, r.Record, idx)
	default:
		ctx.Compiler.Report(diag.TypeError("value of kind " + recv.Kind() + " cannot be indexed"))
		return values.Nil{}
	}
}

func lookupField(c *diag.Compiler, rec values.Record, idx values.Value) values.Value {
	var fieldText string
	switch k := idx.(type) {
	case values.String:
		fieldText = k.Text
	case values.Symbol:
		fieldText = k.Text
	default:
		c.Report(diag.TypeError("indexing a record requires a field name"))
		return values.Nil{}
	}
	v, ok := rec.Field(intern.Global().Intern(fieldText))
	if !ok {
		c.Report(diag.TypeError("record has no field named " + fieldText))
		return values.Nil{}
	}
	return v
}
