package types

import (
	"github.com/gmofishsauce/cadenza/internal/ast"
	"github.com/gmofishsauce/cadenza/internal/diag"
	"github.com/gmofishsauce/cadenza/internal/intern"
	"github.com/gmofishsauce/cadenza/internal/syntaxkind"
)

// Inferencer mints fresh type variables and carries them through Unify,
// Generalize, and Instantiate. A zero value is ready to use.
type Inferencer struct {
	nextVar uint32
}

// NewInferencer returns a fresh inferencer with no variables minted yet.
func NewInferencer() *Inferencer {
	return &Inferencer{}
}

// FreshVar mints a new, globally-unique-within-this-inferencer type
// variable.
func (inf *Inferencer) FreshVar() TypeVar {
	v := TypeVar(inf.nextVar)
	inf.nextVar++
	return v
}

// Unify attempts to make t1 and t2 equal, reporting a diagnostic and
// returning (zero substitution, false) on failure. It never needs to mint
// fresh variables itself, matching typeinfer.rs's unify(&self, …) — only
// Instantiate does that.
func (inf *Inferencer) Unify(t1, t2 InferType, c *diag.Compiler, span intern.Span) (Substitution, bool) {
	switch a := t1.(type) {
	case Concrete:
		if b, ok := t2.(Concrete); ok && a.Name == b.Name {
			return NewSubstitution(), true
		}
	case Var:
		return inf.unifyVar(a.V, t2, c, span)
	}
	if b, ok := t2.(Var); ok {
		return inf.unifyVar(b.V, t1, c, span)
	}

	switch a := t1.(type) {
	case Fn:
		b, ok := t2.(Fn)
		if !ok {
			break
		}
		if len(a.Args) != len(b.Args) {
			c.Report(diag.Arity(len(a.Args), len(b.Args)).WithSpan(span))
			return Substitution{}, false
		}
		subst := NewSubstitution()
		for i := range a.Args {
			s, ok := inf.Unify(subst.Apply(a.Args[i]), subst.Apply(b.Args[i]), c, span)
			if !ok {
				return Substitution{}, false
			}
			subst = s.Compose(subst)
		}
		retSubst, ok := inf.Unify(subst.Apply(a.Ret), subst.Apply(b.Ret), c, span)
		if !ok {
			return Substitution{}, false
		}
		return retSubst.Compose(subst), true

	case List:
		b, ok := t2.(List)
		if !ok {
			break
		}
		return inf.Unify(a.Elem, b.Elem, c, span)

	case Record:
		b, ok := t2.(Record)
		if !ok {
			break
		}
		if len(a.Fields) != len(b.Fields) {
			c.Report(diag.TypeError("record field count mismatch between " + t1.String() + " and " + t2.String()).WithSpan(span))
			return Substitution{}, false
		}
		subst := NewSubstitution()
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name {
				c.Report(diag.TypeError("record field name mismatch: " +
					intern.Global().Lookup(a.Fields[i].Name) + " vs " + intern.Global().Lookup(b.Fields[i].Name)).WithSpan(span))
				return Substitution{}, false
			}
			s, ok := inf.Unify(subst.Apply(a.Fields[i].Type), subst.Apply(b.Fields[i].Type), c, span)
			if !ok {
				return Substitution{}, false
			}
			subst = s.Compose(subst)
		}
		return subst, true

	case Tuple:
		b, ok := t2.(Tuple)
		if !ok {
			break
		}
		if len(a.Elems) != len(b.Elems) {
			c.Report(diag.TypeError("tuple size mismatch between " + t1.String() + " and " + t2.String()).WithSpan(span))
			return Substitution{}, false
		}
		subst := NewSubstitution()
		for i := range a.Elems {
			s, ok := inf.Unify(subst.Apply(a.Elems[i]), subst.Apply(b.Elems[i]), c, span)
			if !ok {
				return Substitution{}, false
			}
			subst = s.Compose(subst)
		}
		return subst, true

	case Forall:
		c.Report(diag.Internal("cannot unify polymorphic type " + t1.String() + " directly; instantiate it first").WithSpan(span))
		return Substitution{}, false
	}

	if _, ok := t2.(Forall); ok {
		c.Report(diag.Internal("cannot unify polymorphic type " + t2.String() + " directly; instantiate it first").WithSpan(span))
		return Substitution{}, false
	}

	c.Report(diag.TypeError("type mismatch: cannot unify " + t1.String() + " with " + t2.String()).WithSpan(span))
	return Substitution{}, false
}

func (inf *Inferencer) unifyVar(v TypeVar, ty InferType, c *diag.Compiler, span intern.Span) (Substitution, bool) {
	if other, ok := ty.(Var); ok && other.V == v {
		return NewSubstitution(), true
	}
	for _, fv := range ty.FreeVars(nil) {
		if fv == v {
			c.Report(diag.Internal("occurs check failed: " + v.String() + " occurs in " + ty.String()).WithSpan(span))
			return Substitution{}, false
		}
	}
	return SingletonSubstitution(v, ty), true
}

// Generalize quantifies ty over every free variable it has that isn't
// also free somewhere in env — i.e. variables genuinely local to this
// type, not ones still tied to an enclosing, still-visible binding.
func (inf *Inferencer) Generalize(ty InferType, env *TypeEnv) InferType {
	envVars := make(map[TypeVar]bool)
	for _, v := range env.FreeVars() {
		envVars[v] = true
	}
	var quantified []TypeVar
	for _, v := range FreeVars(ty) {
		if !envVars[v] {
			quantified = append(quantified, v)
		}
	}
	if len(quantified) == 0 {
		return ty
	}
	return Forall{Vars: quantified, Body: ty}
}

// Instantiate replaces a Forall's bound variables with fresh ones; any
// other type is returned unchanged. This is the one operation that must
// mint variables, so unlike Unify/Generalize it needs a mutable receiver.
func (inf *Inferencer) Instantiate(ty InferType) InferType {
	f, ok := ty.(Forall)
	if !ok {
		return ty
	}
	subst := NewSubstitution()
	for _, v := range f.Vars {
		subst.Insert(v, Var{V: inf.FreshVar()})
	}
	return subst.Apply(f.Body)
}

// InferExpr infers e's type under env, reporting diagnostics through c on
// failure and returning a permissive Var rather than bailing out —
// mirroring typeinfer.rs's infer_expr family, which never hard-fails on
// an unrecognized or malformed fragment.
func (inf *Inferencer) InferExpr(e ast.Expr, env *TypeEnv, c *diag.Compiler) InferType {
	switch v := e.(type) {
	case *ast.Literal:
		return inf.inferLiteral(v)
	case *ast.Ident:
		return inf.inferNamed(v.Name(), env)
	case *ast.Op:
		return inf.inferNamed(v.Symbol(), env)
	case *ast.Synthetic:
		return inf.inferNamed(v.Identifier(), env)
	case *ast.Attr:
		if inner, ok := v.Value(); ok {
			return inf.InferExpr(inner, env, c)
		}
		return Concrete{Name: "nil"}
	case *ast.Apply:
		return inf.inferApply(v, env, c)
	case *ast.Error:
		return Concrete{Name: "unknown"}
	default:
		return Concrete{Name: "unknown"}
	}
}

func (inf *Inferencer) inferLiteral(l *ast.Literal) InferType {
	switch l.Kind() {
	case syntaxkind.Integer:
		return Concrete{Name: "integer"}
	case syntaxkind.Float:
		return Concrete{Name: "float"}
	case syntaxkind.StringContent, syntaxkind.StringContentWithEscape:
		return Concrete{Name: "string"}
	case syntaxkind.CharLiteral:
		return Concrete{Name: "string"}
	default:
		return Concrete{Name: "unknown"}
	}
}

// inferNamed looks up an identifier/operator/synthetic-dispatch name in
// env, instantiating a polymorphic binding. An unbound name is not an
// inference error — it yields a fresh, unconstrained variable, same as
// typeinfer.rs's infer_ident/infer_op permissive fallback.
func (inf *Inferencer) inferNamed(name string, env *TypeEnv) InferType {
	id := intern.Global().Intern(name)
	if ty, ok := env.Get(id); ok {
		return inf.Instantiate(ty)
	}
	return Var{V: inf.FreshVar()}
}

func (inf *Inferencer) inferApply(a *ast.Apply, env *TypeEnv, c *diag.Compiler) InferType {
	callee, ok := a.Callee()
	if !ok {
		return Concrete{Name: "unknown"}
	}
	calleeTy := inf.InferExpr(callee, env, c)

	argExprs := a.AllArguments()
	argTypes := make([]InferType, len(argExprs))
	for i, ae := range argExprs {
		argTypes[i] = inf.InferExpr(ae, env, c)
	}

	resultVar := Var{V: inf.FreshVar()}
	expected := Fn{Args: argTypes, Ret: resultVar}

	span := a.Element().TextRange()
	subst, ok := inf.Unify(calleeTy, expected, c, span)
	if !ok {
		return Concrete{Name: "unknown"}
	}
	return subst.Apply(resultVar)
}
