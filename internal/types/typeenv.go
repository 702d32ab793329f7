package types

import (
	"sort"

	"github.com/gmofishsauce/cadenza/internal/intern"
	"github.com/gmofishsauce/cadenza/internal/values"
)

// TypeEnv maps names to their inferred (possibly polymorphic) types. It is
// a snapshot, not a live view: building one walks a values.Env once and
// copies out whatever is visible at that moment.
type TypeEnv struct {
	bindings map[intern.ID]InferType
}

// NewTypeEnv returns an empty environment.
func NewTypeEnv() *TypeEnv {
	return &TypeEnv{bindings: make(map[intern.ID]InferType)}
}

// FromEnv builds a TypeEnv from every name currently visible in env,
// applying scope shadowing (env.All already resolves that), with each
// value's InferType derived from its runtime Kind via FromConcreteValue.
//
// original_source/crates/cadenza-eval/src/typeinfer.rs's TypeEnv also
// merges in a separate Compiler-level "defs" registry alongside the
// lexical Env; this Go evaluator has no such second registry (every
// builtin and special form is installed directly into the one global
// values.Env by eval.NewGlobalEnv, see DESIGN.md), so FromContext below
// collapses to this method.
func FromEnv(env *values.Env) *TypeEnv {
	te := NewTypeEnv()
	for name, v := range env.All() {
		te.bindings[name] = FromConcreteValue(v)
	}
	return te
}

// FromContext is FromEnv's counterpart to typeinfer.rs's
// TypeEnv::from_context; see FromEnv's doc comment for why it doesn't
// need a separate compiler-defs source in this port.
func FromContext(env *values.Env) *TypeEnv {
	return FromEnv(env)
}

// AddValue records name's type, derived from v's runtime Kind.
func (te *TypeEnv) AddValue(name intern.ID, v values.Value) {
	te.bindings[name] = FromConcreteValue(v)
}

// Insert records an already-computed type for name, overwriting any prior
// binding — used to seed operator/special-form signatures.
func (te *TypeEnv) Insert(name intern.ID, ty InferType) {
	te.bindings[name] = ty
}

// Get returns name's type, if bound.
func (te *TypeEnv) Get(name intern.ID) (InferType, bool) {
	ty, ok := te.bindings[name]
	return ty, ok
}

// FreeVars returns every free type variable across all bindings, sorted
// and deduplicated.
func (te *TypeEnv) FreeVars() []TypeVar {
	var out []TypeVar
	for _, ty := range te.bindings {
		out = ty.FreeVars(out)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	deduped := out[:0]
	var last TypeVar
	haveLast := false
	for _, v := range out {
		if haveLast && v == last {
			continue
		}
		deduped = append(deduped, v)
		last, haveLast = v, true
	}
	return deduped
}

// Apply returns a new TypeEnv with subst applied to every binding.
func (te *TypeEnv) Apply(subst Substitution) *TypeEnv {
	out := NewTypeEnv()
	for name, ty := range te.bindings {
		out.bindings[name] = subst.Apply(ty)
	}
	return out
}

// FromConcreteValue derives the structural InferType of a runtime value.
// It mirrors typeinfer.rs's InferType::from_concrete, adapted to this
// evaluator's simpler runtime Value set: callables don't carry a static
// signature the way the original's BuiltinFn::signature field does. A
// UserFunction becomes a Fn of its arity whose parameter and result types
// are Concrete "unknown"; BuiltinFn, BuiltinMacro, SpecialForm and
// UnitConstructor become Concrete "unknown" themselves. These are
// concrete types, not fresh variables, so Unify reports a mismatch
// wherever they meet a different concrete type or a non-Fn shape.
func FromConcreteValue(v values.Value) InferType {
	switch val := v.(type) {
	case values.Nil:
		return Concrete{Name: "nil"}
	case values.Bool:
		return Concrete{Name: "bool"}
	case values.Integer:
		return Concrete{Name: "integer"}
	case values.Float:
		return Concrete{Name: "float"}
	case values.String:
		return Concrete{Name: "string"}
	case values.Symbol:
		return Concrete{Name: "symbol"}
	case values.Type:
		return Concrete{Name: "type"}
	case values.List:
		if len(val.Elements) == 0 {
			return List{Elem: Concrete{Name: "unknown"}}
		}
		return List{Elem: FromConcreteValue(val.Elements[0])}
	case values.Record:
		fields := make([]RecordField, val.Len())
		for i, name := range val.Names() {
			fv, _ := val.Field(name)
			fields[i] = RecordField{Name: name, Type: FromConcreteValue(fv)}
		}
		return Record{Fields: fields}
	case values.Struct:
		return FromConcreteValue(val.Record)
	case values.Quantity:
		return Quantity{ValueType: Concrete{Name: "float"}, Dimension: intern.Global().Intern(val.Dimension.String())}
	case values.UserFunction:
		args := make([]InferType, len(val.Params))
		for i := range args {
			args[i] = Concrete{Name: "unknown"}
		}
		return Fn{Args: args, Ret: Concrete{Name: "unknown"}}
	case values.BuiltinFn, values.BuiltinMacro, values.SpecialForm, values.UnitConstructor:
		return Concrete{Name: "unknown"}
	default:
		return Concrete{Name: "unknown"}
	}
}
