package types

// Substitution maps type variables to the types they were solved to.
type Substitution struct {
	m map[TypeVar]InferType
}

// NewSubstitution returns an empty substitution.
func NewSubstitution() Substitution {
	return Substitution{m: make(map[TypeVar]InferType)}
}

// SingletonSubstitution returns a substitution binding exactly one variable.
func SingletonSubstitution(v TypeVar, ty InferType) Substitution {
	s := NewSubstitution()
	s.Insert(v, ty)
	return s
}

// Insert adds or overwrites a binding.
func (s Substitution) Insert(v TypeVar, ty InferType) {
	s.m[v] = ty
}

// Get returns the type v is bound to, if any.
func (s Substitution) Get(v TypeVar) (InferType, bool) {
	ty, ok := s.m[v]
	return ty, ok
}

// Apply replaces every variable ty mentions (transitively) with its bound
// type, leaving unbound variables untouched.
func (s Substitution) Apply(ty InferType) InferType {
	return s.applyImpl(ty, nil)
}

// applyImpl substitutes through ty, threading a visiting stack so a
// self-referential binding (e.g. produced by a buggy or adversarial
// substitution) resolves to the variable unchanged instead of recursing
// forever.
func (s Substitution) applyImpl(ty InferType, visiting []TypeVar) InferType {
	switch t := ty.(type) {
	case Var:
		for _, v := range visiting {
			if v == t.V {
				return t
			}
		}
		bound, ok := s.Get(t.V)
		if !ok {
			return t
		}
		return s.applyImpl(bound, append(visiting, t.V))
	case Fn:
		args := make([]InferType, len(t.Args))
		for i, a := range t.Args {
			args[i] = s.applyImpl(a, visiting)
		}
		return Fn{Args: args, Ret: s.applyImpl(t.Ret, visiting)}
	case List:
		return List{Elem: s.applyImpl(t.Elem, visiting)}
	case Record:
		fields := make([]RecordField, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = RecordField{Name: f.Name, Type: s.applyImpl(f.Type, visiting)}
		}
		return Record{Fields: fields}
	case Tuple:
		elems := make([]InferType, len(t.Elems))
		for i, e := range t.Elems {
			elems[i] = s.applyImpl(e, visiting)
		}
		return Tuple{Elems: elems}
	case Union:
		alts := make([]InferType, len(t.Types))
		for i, a := range t.Types {
			alts[i] = s.applyImpl(a, visiting)
		}
		return Union{Types: alts}
	case Forall:
		// Bound variables are never substituted, only free ones in the
		// body: build a filtered view of s that drops any binding for a
		// variable this Forall itself quantifies over.
		bound := make(map[TypeVar]bool, len(t.Vars))
		for _, v := range t.Vars {
			bound[v] = true
		}
		filtered := NewSubstitution()
		for v, vt := range s.m {
			if !bound[v] {
				filtered.Insert(v, vt)
			}
		}
		return Forall{Vars: t.Vars, Body: filtered.applyImpl(t.Body, visiting)}
	case Quantity:
		return Quantity{ValueType: s.applyImpl(t.ValueType, visiting), Dimension: t.Dimension}
	case Concrete:
		return t
	default:
		return ty
	}
}

// Compose returns a substitution equivalent to applying other, then self:
// for each binding in other, self is applied to its target type; any
// binding in self whose variable other didn't already cover passes through
// unchanged.
func (s Substitution) Compose(other Substitution) Substitution {
	result := NewSubstitution()
	for v, ty := range other.m {
		result.Insert(v, s.Apply(ty))
	}
	for v, ty := range s.m {
		if _, ok := result.Get(v); !ok {
			result.Insert(v, ty)
		}
	}
	return result
}
