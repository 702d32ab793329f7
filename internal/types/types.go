// Package types implements Cadenza's on-demand Hindley-Milner type
// inferencer: a constraint-free Algorithm W variant that unifies structural
// types over literals, function calls, lists, records, tuples, and unions,
// with an explicit (if still partial) accommodation for quantities.
//
// Inference never runs automatically during evaluation (see internal/eval):
// a value's dynamic Kind is always authoritative at runtime. InferType
// queries are opt-in, driven by `typeof`-style tooling, the REPL's ":type"
// command, and the metacompiler's static checks, matching
// original_source/crates/cadenza-eval/src/typeinfer.rs's documented
// rationale (LSP responsiveness, incremental compilation, cancellation).
package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gmofishsauce/cadenza/internal/intern"
)

// TypeVar names an as-yet-unsolved type, minted fresh by a TypeInferencer.
type TypeVar uint32

func (v TypeVar) String() string { return fmt.Sprintf("t%d", uint32(v)) }

// InferType is any node in the inferencer's type language. Unlike the
// runtime values.Value variants, these can contain unsolved TypeVars and
// universally-quantified Forall wrappers; ToConcrete collapses a fully
// solved InferType down to the plain name a `typeof` caller can display.
type InferType interface {
	inferType()
	// FreeVars appends this type's free (unquantified) type variables to
	// out and returns the result, sorted and deduplicated by the caller.
	FreeVars(out []TypeVar) []TypeVar
	String() string
}

// Concrete is a fully-known, non-generic base type, named the same way
// values.Value.Kind() names runtime values ("integer", "bool", "nil", …).
type Concrete struct{ Name string }

func (Concrete) inferType() {}
func (c Concrete) FreeVars(out []TypeVar) []TypeVar { return out }
func (c Concrete) String() string                   { return c.Name }

// Var is an unsolved type variable.
type Var struct{ V TypeVar }

func (Var) inferType() {}
func (v Var) FreeVars(out []TypeVar) []TypeVar { return append(out, v.V) }
func (v Var) String() string                   { return v.V.String() }

// Fn is a function type: ordered parameter types plus a single return type.
type Fn struct {
	Args []InferType
	Ret  InferType
}

func (Fn) inferType() {}
func (f Fn) FreeVars(out []TypeVar) []TypeVar {
	for _, a := range f.Args {
		out = a.FreeVars(out)
	}
	return f.Ret.FreeVars(out)
}
func (f Fn) String() string {
	parts := make([]string, len(f.Args))
	for i, a := range f.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("fn(%s) -> %s", strings.Join(parts, ", "), f.Ret.String())
}

// List is a homogeneous list type.
type List struct{ Elem InferType }

func (List) inferType() {}
func (l List) FreeVars(out []TypeVar) []TypeVar { return l.Elem.FreeVars(out) }
func (l List) String() string                   { return fmt.Sprintf("list[%s]", l.Elem.String()) }

// RecordField is one named, ordered field of a Record type.
type RecordField struct {
	Name intern.ID
	Type InferType
}

// Record is a structural, order-preserving record type. Struct values are
// treated as plain records at this layer: the nominal type name is dropped,
// matching typeinfer.rs's from_concrete comment that a separate Struct
// variant could be added later but isn't needed yet.
type Record struct{ Fields []RecordField }

func (Record) inferType() {}
func (r Record) FreeVars(out []TypeVar) []TypeVar {
	for _, f := range r.Fields {
		out = f.Type.FreeVars(out)
	}
	return out
}
func (r Record) String() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = fmt.Sprintf("%s: %s", intern.Global().Lookup(f.Name), f.Type.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Tuple is a fixed-arity, positional product type.
type Tuple struct{ Elems []InferType }

func (Tuple) inferType() {}
func (t Tuple) FreeVars(out []TypeVar) []TypeVar {
	for _, e := range t.Elems {
		out = e.FreeVars(out)
	}
	return out
}
func (t Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Union is an unordered sum of alternative types.
type Union struct{ Types []InferType }

func (Union) inferType() {}
func (u Union) FreeVars(out []TypeVar) []TypeVar {
	for _, t := range u.Types {
		out = t.FreeVars(out)
	}
	return out
}
func (u Union) String() string {
	parts := make([]string, len(u.Types))
	for i, t := range u.Types {
		parts[i] = t.String()
	}
	return strings.Join(parts, " | ")
}

// Forall is a universally-quantified (let-polymorphic) type scheme. It
// only ever appears as the type TypeEnv binds a name to; Unify refuses to
// handle one directly, Instantiate must be called first.
type Forall struct {
	Vars []TypeVar
	Body InferType
}

func (Forall) inferType() {}
func (f Forall) FreeVars(out []TypeVar) []TypeVar {
	bodyVars := f.Body.FreeVars(nil)
	bound := make(map[TypeVar]bool, len(f.Vars))
	for _, v := range f.Vars {
		bound[v] = true
	}
	for _, v := range bodyVars {
		if !bound[v] {
			out = append(out, v)
		}
	}
	return out
}
func (f Forall) String() string {
	parts := make([]string, len(f.Vars))
	for i, v := range f.Vars {
		parts[i] = v.String()
	}
	return fmt.Sprintf("∀%s. %s", strings.Join(parts, ", "), f.Body.String())
}

// Quantity is a dimensioned numeric type: a value type paired with a
// dimension name. The dimension is carried as an opaque interned string
// rather than threaded through internal/units' Dimension algebra — matching
// typeinfer.rs's own documented TODO ("Integrate with unit system"), this
// layer only tracks that two quantities' dimensions match by name, it
// never derives or simplifies dimensions the way arithmetic.go's
// quantityArith does at runtime.
type Quantity struct {
	ValueType InferType
	Dimension intern.ID
}

func (Quantity) inferType() {}
func (q Quantity) FreeVars(out []TypeVar) []TypeVar { return q.ValueType.FreeVars(out) }
func (q Quantity) String() string {
	return fmt.Sprintf("%s[%s]", q.ValueType.String(), intern.Global().Lookup(q.Dimension))
}

// FreeVars returns ty's free type variables, sorted and deduplicated.
func FreeVars(ty InferType) []TypeVar {
	vars := ty.FreeVars(nil)
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })
	out := vars[:0]
	var last TypeVar
	haveLast := false
	for _, v := range vars {
		if haveLast && v == last {
			continue
		}
		out = append(out, v)
		last, haveLast = v, true
	}
	return out
}
