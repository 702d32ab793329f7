package eval

import (
	"github.com/gmofishsauce/cadenza/internal/ast"
	"github.com/gmofishsauce/cadenza/internal/diag"
	"github.com/gmofishsauce/cadenza/internal/units"
	"github.com/gmofishsauce/cadenza/internal/values"
)

// binaryOperatorForm builds a values.SpecialForm for a two-argument
// arithmetic/comparison operator: evaluate both operands, then hand them
// to apply. Operators are SpecialForm (not BuiltinFn) purely to match
// the uniform "every callable receives unevaluated AST + an
// EvalContext" interface the prelude registers everything through; each
// one simply chooses to evaluate its own operands immediately.
func binaryOperatorForm(name string, apply func(c *diag.Compiler, l, r values.Value) values.Value) values.SpecialForm {
	return values.SpecialForm{
		Name: name,
		Fn: func(ctx *values.EvalContext, args []ast.Expr) values.Value {
			if len(args) != 2 {
				ctx.Compiler.Report(diag.Arity(2, len(args)))
				return values.Nil{}
			}
			l := ctx.Eval(args[0], ctx.Env, ctx.Compiler)
			r := ctx.Eval(args[1], ctx.Env, ctx.Compiler)
			return apply(ctx.Compiler, l, r)
		},
	}
}

func addOp(c *diag.Compiler, l, r values.Value) values.Value { return arith(c, "+", l, r) }
func subOp(c *diag.Compiler, l, r values.Value) values.Value { return arith(c, "-", l, r) }
func mulOp(c *diag.Compiler, l, r values.Value) values.Value { return arith(c, "*", l, r) }
func divOp(c *diag.Compiler, l, r values.Value) values.Value { return arith(c, "/", l, r) }

// arith implements spec.md §4.6's promotion rule: Integer⊕Integer stays
// Integer; any Float operand promotes the result to Float;
// Quantity⊕Quantity requires equal dimensions (after conversion to base
// units) and combines per §4.7.
func arith(c *diag.Compiler, op string, l, r values.Value) values.Value {
	switch lv := l.(type) {
	case values.Integer:
		switch rv := r.(type) {
		case values.Integer:
			return intArith(c, op, int64(lv), int64(rv))
		case values.Float:
			return floatArith(op, float64(lv), float64(rv))
		}
	case values.Float:
		switch rv := r.(type) {
		case values.Integer:
			return floatArith(op, float64(lv), float64(rv))
		case values.Float:
			return floatArith(op, float64(lv), float64(rv))
		}
	case values.Quantity:
		if rv, ok := r.(values.Quantity); ok {
			return quantityArith(c, op, lv, rv)
		}
	}
	c.Report(diag.TypeError("operator " + op + " requires two numeric or quantity operands of compatible kind"))
	return values.Nil{}
}

func intArith(c *diag.Compiler, op string, l, r int64) values.Value {
	switch op {
	case "+":
		return values.Integer(l + r)
	case "-":
		return values.Integer(l - r)
	case "*":
		return values.Integer(l * r)
	case "/":
		if r == 0 {
			c.Report(diag.TypeError("division by zero"))
			return values.Nil{}
		}
		return values.Integer(l / r)
	default:
		c.Report(diag.Internal("unknown integer operator " + op))
		return values.Nil{}
	}
}

func floatArith(op string, l, r float64) values.Value {
	switch op {
	case "+":
		return values.Float(l + r)
	case "-":
		return values.Float(l - r)
	case "*":
		return values.Float(l * r)
	case "/":
		return values.Float(l / r)
	default:
		return values.Nil{}
	}
}

// quantityArith converts both operands to their dimension's base unit.
// `+`/`-` require identical dimensions and yield a Quantity expressed in
// that base unit; `*`/`/` combine the dimensions per §4.7 and yield an
// unnamed Quantity already expressed in the combined base unit (there is
// no registered name for an ad hoc product/quotient dimension, so the
// result's Unit carries a zero Name — Display and further arithmetic
// only need its Dimension/Scale, never its registered name).
func quantityArith(c *diag.Compiler, op string, l, r values.Quantity) values.Value {
	lBase := l.Unit.ToBase(l.Value)
	rBase := r.Unit.ToBase(r.Value)

	switch op {
	case "+", "-":
		if !l.Dimension.Equal(r.Dimension) {
			c.Report(diag.TypeError("cannot add/subtract quantities of different dimensions (" + l.Dimension.String() + " vs " + r.Dimension.String() + ")"))
			return values.Nil{}
		}
		var v float64
		if op == "+" {
			v = lBase + rBase
		} else {
			v = lBase - rBase
		}
		baseUnit := units.Unit{Name: l.Unit.Name, Dimension: l.Dimension, Scale: 1, Offset: 0}
		return values.Quantity{Value: v, Unit: baseUnit, Dimension: l.Dimension}
	case "*", "/":
		var dim units.Dimension
		var v float64
		if op == "*" {
			dim = l.Dimension.Mul(r.Dimension)
			v = lBase * rBase
		} else {
			dim = l.Dimension.Div(r.Dimension)
			if rBase == 0 {
				c.Report(diag.TypeError("division by zero"))
				return values.Nil{}
			}
			v = lBase / rBase
		}
		combined := units.Unit{Dimension: dim, Scale: 1, Offset: 0}
		return values.Quantity{Value: v, Unit: combined, Dimension: dim}
	default:
		c.Report(diag.Internal("unknown quantity operator " + op))
		return values.Nil{}
	}
}

func eqOp(c *diag.Compiler, l, r values.Value) values.Value { return values.Bool(values.Equal(l, r)) }
func neOp(c *diag.Compiler, l, r values.Value) values.Value { return values.Bool(!values.Equal(l, r)) }

func ltOp(c *diag.Compiler, l, r values.Value) values.Value { return order(c, "<", l, r) }
func leOp(c *diag.Compiler, l, r values.Value) values.Value { return order(c, "<=", l, r) }
func gtOp(c *diag.Compiler, l, r values.Value) values.Value { return order(c, ">", l, r) }
func geOp(c *diag.Compiler, l, r values.Value) values.Value { return order(c, ">=", l, r) }

// order implements comparison across the ordered primitive families:
// Integer/Float (mixed promotes to float) and String (lexicographic by
// Unicode scalar value, i.e. plain Go string comparison). Any other
// pairing is a type error — spec.md §4.6 permits cross-type comparison
// for equality diagnostics only, never ordering.
func order(c *diag.Compiler, op string, l, r values.Value) values.Value {
	switch lv := l.(type) {
	case values.Integer:
		switch rv := r.(type) {
		case values.Integer:
			return values.Bool(compareFloat(op, float64(lv), float64(rv)))
		case values.Float:
			return values.Bool(compareFloat(op, float64(lv), float64(rv)))
		}
	case values.Float:
		switch rv := r.(type) {
		case values.Integer:
			return values.Bool(compareFloat(op, float64(lv), float64(rv)))
		case values.Float:
			return values.Bool(compareFloat(op, float64(lv), float64(rv)))
		}
	case values.String:
		if rv, ok := r.(values.String); ok {
			return values.Bool(compareString(op, lv.Text, rv.Text))
		}
	}
	c.Report(diag.TypeError("operator " + op + " requires two numbers or two strings"))
	return values.Nil{}
}

func compareFloat(op string, l, r float64) bool {
	switch op {
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	default:
		return false
	}
}

func compareString(op string, l, r string) bool {
	switch op {
	case "<":
		return l < r
	case "<=":
		return l <= r
	case ">":
		return l > r
	case ">=":
		return l >= r
	default:
		return false
	}
}
