// Package values implements Cadenza's runtime value universe: the tagged
// variants every evaluated expression reduces to, plus the lexically
// scoped, cheap-to-clone environment that binds names to them.
//
// Grounded on spec.md §3.6/§3.7, restated from
// original_source/crates/cadenza-eval/src/env.rs's Rc<Vec<Scope>> design:
// Go has no Rc, so Env's copy-on-write is built from a small explicit
// helper (see env.go) rather than a smart pointer.
package values

import (
	"fmt"
	"math"

	"github.com/gmofishsauce/cadenza/internal/ast"
	"github.com/gmofishsauce/cadenza/internal/diag"
	"github.com/gmofishsauce/cadenza/internal/intern"
	"github.com/gmofishsauce/cadenza/internal/units"
)

// Value is any runtime Cadenza value. Kind identifies the concrete
// variant for dispatch and diagnostics without a type switch at every
// call site.
type Value interface {
	Kind() string
}

// Nil is the absence of a value, yielded by errors and statements with
// no useful result.
type Nil struct{}

func (Nil) Kind() string { return "nil" }

// Bool is a boolean value.
type Bool bool

func (Bool) Kind() string { return "bool" }

// Integer is a 64-bit signed integer.
type Integer int64

func (Integer) Kind() string { return "integer" }

// Float is an IEEE-754 double.
type Float float64

func (Float) Kind() string { return "float" }

// String is a string value. Literal strings carry their interned id so
// repeated identical literals don't re-allocate.
type String struct {
	Text string
	ID   intern.ID // zero if not interned (e.g. runtime-built strings)
}

func (String) Kind() string { return "string" }

// Symbol is an interned bare name used as a value in its own right (for
// example, a field name or enum tag), distinct from a variable lookup.
type Symbol struct {
	Name intern.ID
	Text string
}

func (Symbol) Kind() string { return "symbol" }

// List is an ordered, possibly heterogeneous sequence.
type List struct {
	Elements []Value
}

func (List) Kind() string { return "list" }

// field is one (name, value) entry of a Record, keeping insertion order.
type field struct {
	Name  intern.ID
	Value Value
}

// Record is a structural mapping from interned field name to value with
// insertion order preserved; lookups are O(n) over a small slice, which
// matches records' expected arity (a handful of fields, not a database
// row).
type Record struct {
	fields []field
}

func (Record) Kind() string { return "record" }

// NewRecord builds a Record from ordered (name, value) pairs.
func NewRecord(names []intern.ID, vals []Value) Record {
	fs := make([]field, len(names))
	for i := range names {
		fs[i] = field{Name: names[i], Value: vals[i]}
	}
	return Record{fields: fs}
}

// Field looks up a field by name.
func (r Record) Field(name intern.ID) (Value, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Names returns field names in insertion order.
func (r Record) Names() []intern.ID {
	out := make([]intern.ID, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Name
	}
	return out
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.fields) }

// Struct is a Record tagged with a nominal type name.
type Struct struct {
	TypeName intern.ID
	Record   Record
}

func (Struct) Kind() string { return "struct" }

// Type is a first-class descriptor of a value's shape, returned by the
// `typeof` special form.
type Type struct {
	Name string
}

func (Type) Kind() string { return "type" }

// Quantity is a numeric value tagged with a unit and its dimension.
type Quantity struct {
	Value     float64
	Unit      units.Unit
	Dimension units.Dimension
}

func (Quantity) Kind() string { return "quantity" }

// UnitConstructor is a callable that wraps a bare numeric into a
// Quantity under the unit it names; it is what `measure` installs in the
// environment and what numeric-literal/unit-suffix adjacency (`100meter`)
// applies.
type UnitConstructor struct {
	Unit units.Unit
}

func (UnitConstructor) Kind() string { return "unit-constructor" }

// EvalContext bundles what a callable needs from its caller: the
// diagnostic/compiler context and, for special forms/macros, the
// environment the unevaluated arguments should be interpreted in.
type EvalContext struct {
	Compiler *diag.Compiler
	Env      *Env
	// Eval evaluates an AST expression in the given environment, closing
	// the loop back into internal/eval without an import cycle.
	Eval func(e ast.Expr, env *Env, c *diag.Compiler) Value
}

// BuiltinFn is a Go-implemented function whose arguments are evaluated
// before the call, like a UserFunction.
type BuiltinFn struct {
	Name string
	Fn   func(ctx *EvalContext, args []Value) Value
}

func (BuiltinFn) Kind() string { return "builtin-fn" }

// BuiltinMacro receives its argument AST nodes unevaluated, deciding
// itself whether/when/how many times to evaluate them.
type BuiltinMacro struct {
	Name string
	Fn   func(ctx *EvalContext, args []ast.Expr) Value
}

func (BuiltinMacro) Kind() string { return "builtin-macro" }

// SpecialForm is a BuiltinMacro registered in the standard prelude
// (`let`, `fn`, `match`, …). It is a distinct variant purely so
// diagnostics and `typeof` can tell prelude forms from user-registered
// macros; its calling convention is identical to BuiltinMacro.
type SpecialForm struct {
	Name string
	Fn   func(ctx *EvalContext, args []ast.Expr) Value
}

func (SpecialForm) Kind() string { return "special-form" }

// UserFunction is a closure: parameter names, an unevaluated body, and
// the environment captured at definition time.
type UserFunction struct {
	Name     string
	Params   []intern.ID
	Body     ast.Expr
	Captured *Env
}

func (UserFunction) Kind() string { return "user-function" }

// Truthy reports whether v is considered true in boolean contexts
// (`assert`, `match` over Bool). Only Bool participates; anything else
// is never truthy, matching the evaluator's strict equality/comparison
// discipline (no implicit numeric-to-bool coercion).
func Truthy(v Value) bool {
	b, ok := v.(Bool)
	return ok && bool(b)
}

// Equal implements spec.md §3.6's equality rule: structural where
// unambiguous, identity for callables, and an error (false) across
// mismatched primitive families.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Nil:
		_, ok := b.(Nil)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Integer:
		bv, ok := b.(Integer)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		return ok && (av == bv || (math.IsNaN(float64(av)) && math.IsNaN(float64(bv))))
	case String:
		bv, ok := b.(String)
		return ok && av.Text == bv.Text
	case Symbol:
		bv, ok := b.(Symbol)
		return ok && av.Name == bv.Name
	case List:
		bv, ok := b.(List)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		for i := range av.Elements {
			if !Equal(av.Elements[i], bv.Elements[i]) {
				return false
			}
		}
		return true
	case Record:
		bv, ok := b.(Record)
		if !ok || len(av.fields) != len(bv.fields) {
			return false
		}
		for i := range av.fields {
			if av.fields[i].Name != bv.fields[i].Name || !Equal(av.fields[i].Value, bv.fields[i].Value) {
				return false
			}
		}
		return true
	case Struct:
		bv, ok := b.(Struct)
		return ok && av.TypeName == bv.TypeName && Equal(av.Record, bv.Record)
	case Quantity:
		bv, ok := b.(Quantity)
		return ok && av.Value == bv.Value && av.Dimension.Equal(bv.Dimension)
	default:
		// Callables (BuiltinFn, BuiltinMacro, SpecialForm, UserFunction,
		// UnitConstructor, Type) compare by identity: same underlying Go
		// value.
		return a == b
	}
}

// Display renders v for REPL/diagnostic display.
func Display(v Value) string {
	switch t := v.(type) {
	case Nil:
		return "nil"
	case Bool:
		return fmt.Sprintf("%t", bool(t))
	case Integer:
		return fmt.Sprintf("%d", int64(t))
	case Float:
		return fmt.Sprintf("%g", float64(t))
	case String:
		return t.Text
	case Symbol:
		return t.Text
	case List:
		out := "["
		for i, e := range t.Elements {
			if i > 0 {
				out += ", "
			}
			out += Display(e)
		}
		return out + "]"
	case Record:
		out := "{"
		for i, f := range t.fields {
			if i > 0 {
				out += ", "
			}
			out += fmt.Sprintf("%s: %s", intern.Global().Lookup(f.Name), Display(f.Value))
		}
		return out + "}"
	case Struct:
		return fmt.Sprintf("%s%s", intern.Global().Lookup(t.TypeName), Display(t.Record))
	case Quantity:
		return fmt.Sprintf("%g%s", t.Value, intern.Global().Lookup(t.Unit.Name))
	case Type:
		return t.Name
	case UnitConstructor:
		return "<unit-constructor>"
	case BuiltinFn:
		return fmt.Sprintf("<builtin %s>", t.Name)
	case BuiltinMacro:
		return fmt.Sprintf("<macro %s>", t.Name)
	case SpecialForm:
		return fmt.Sprintf("<special-form %s>", t.Name)
	case UserFunction:
		return fmt.Sprintf("<function %s>", t.Name)
	default:
		return "<unknown>"
	}
}
