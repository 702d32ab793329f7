// Package metacompiler implements Cadenza's pattern-rule compiler (C13,
// spec.md §3.10/§4.12/§6.7): a small declarative DSL for describing
// queries ("given this input node, compute this output") as ordered
// pattern-matching rules, compiled down through a binding/constraint
// intermediate form into a decision tree, and finally emitted as Go
// source text.
//
// Grounded directly on
// original_source/crates/cadenza-meta/src/types.rs's Semantics/Query/
// Rule/Pattern/Expr/Value/Type definitions. One deliberate translation:
// the original emits Rust (via the `quote`/`proc_macro2` crates, which
// have no place in a Go codebase generating Go); Compile here emits Go
// source text instead, using `fmt`/`strings.Builder` the way
// `lang/yasm/output.go` builds its own output byte-by-byte rather than
// templating it. The compiled algorithm — pattern to bindings and
// constraints, constraints to a decision tree, decision tree to nested
// conditionals — is unchanged; only the target language's surface
// syntax differs (`if apply, ok := x.(*Apply); ok` instead of
// `if let Value::Apply { .. } = x`, Go's `(T, error)` instead of Rust's
// `Result<T, E>`).
package metacompiler

import "fmt"

// Kind names a query input/output type, a reduced version of
// original_source's Type enum covering only the variants this port's
// sample queries exercise; everything else original_source's Type
// supports (Dimensional, Refined, Forall, ...) has no analogue needed
// here and is left unimplemented rather than stubbed.
type Kind int

const (
	KindNodeID Kind = iota
	KindValue
	KindType
	KindString
	KindBool
	KindSymbol
	KindEnvID
	KindDiagnostics
	KindOption
	KindResult
	KindArray
)

// Type describes a query's input or output shape. Elem is used by
// KindOption/KindArray; Ok/Err by KindResult.
type Type struct {
	Kind Kind
	Elem *Type
	Ok   *Type
	Err  *Type
}

func NodeIDType() Type       { return Type{Kind: KindNodeID} }
func ValueType() Type        { return Type{Kind: KindValue} }
func TypeType() Type         { return Type{Kind: KindType} }
func StringType() Type       { return Type{Kind: KindString} }
func BoolType() Type         { return Type{Kind: KindBool} }
func SymbolType() Type       { return Type{Kind: KindSymbol} }
func EnvIDType() Type        { return Type{Kind: KindEnvID} }
func DiagnosticsType() Type  { return Type{Kind: KindDiagnostics} }
func OptionType(t Type) Type { return Type{Kind: KindOption, Elem: &t} }
func ArrayType(t Type) Type  { return Type{Kind: KindArray, Elem: &t} }
func ResultType(ok, err Type) Type {
	return Type{Kind: KindResult, Ok: &ok, Err: &err}
}

// ValueKind tags a Value literal, mirroring original_source's Value enum
// (the constant subset: Integer/Bool/String/Type/Symbol/Error — the
// others, like Float, aren't produced by any rule this port's sample
// queries need, matching bindings.rs's own "TODO: Other literal types").
type ValueKind int

const (
	ValueInteger ValueKind = iota
	ValueBool
	ValueString
	ValueTypeLit
	ValueSymbol
	ValueError
)

// Value is a constant literal usable in a pattern or an expression.
type Value struct {
	Kind ValueKind
	Int  int64
	Bool bool
	Str  string
	Ty   *Type
}

func IntValue(i int64) Value   { return Value{Kind: ValueInteger, Int: i} }
func BoolValue(b bool) Value   { return Value{Kind: ValueBool, Bool: b} }
func StrValue(s string) Value  { return Value{Kind: ValueString, Str: s} }
func SymValue(s string) Value  { return Value{Kind: ValueSymbol, Str: s} }
func ErrorValue() Value        { return Value{Kind: ValueError} }
func TypeValue(t Type) Value   { return Value{Kind: ValueTypeLit, Ty: &t} }

// Pattern is any node of a match pattern — a sum type via interface,
// per SPEC_FULL.md §3.10. Only the subset original_source's own
// compile_pattern_helper actually implements (the rest of its match arms
// are "not yet supported") is given a constructor here.
type Pattern interface{ isPattern() }

type WildcardPattern struct{}
type CapturePattern struct{ Name string }
type IntegerPattern struct{ Inner Pattern }
type SymbolLitPattern struct{ Name string }
type ApplyPattern struct {
	Callee Pattern
	Args   []Pattern
}
type TuplePattern struct{ Elems []Pattern }
type ValuePattern struct{ Value Value }

func (WildcardPattern) isPattern()  {}
func (CapturePattern) isPattern()   {}
func (IntegerPattern) isPattern()   {}
func (SymbolLitPattern) isPattern() {}
func (ApplyPattern) isPattern()     {}
func (TuplePattern) isPattern()     {}
func (ValuePattern) isPattern()     {}

func Wildcard() Pattern                { return WildcardPattern{} }
func Capture(name string) Pattern      { return CapturePattern{Name: name} }
func IntegerPat(inner Pattern) Pattern { return IntegerPattern{Inner: inner} }
func SymbolLit(name string) Pattern    { return SymbolLitPattern{Name: name} }
func Apply(callee Pattern, args ...Pattern) Pattern {
	return ApplyPattern{Callee: callee, Args: args}
}
func TuplePat(elems ...Pattern) Pattern { return TuplePattern{Elems: elems} }
func ValuePat(v Value) Pattern          { return ValuePattern{Value: v} }

// Expr is a right-hand-side expression over a rule's captured
// variables — a sum type via interface, matching Pattern's shape.
type Expr interface{ isExpr() }

type VarExpr struct{ Name string }
type CurrentNodeExpr struct{}
type ConstExpr struct{ Value Value }
type CallExpr struct {
	Query string
	Args  []Expr
}
type ConstructExpr struct {
	Constructor string
	Fields      []Expr
}
type LetBinding struct {
	Name  string
	Value Expr
}
type LetExpr struct {
	Bindings []LetBinding
	Body     Expr
}
type OkExpr struct{ Inner Expr }
type TupleExpr struct{ Elems []Expr }

func (VarExpr) isExpr()         {}
func (CurrentNodeExpr) isExpr() {}
func (ConstExpr) isExpr()       {}
func (CallExpr) isExpr()        {}
func (ConstructExpr) isExpr()   {}
func (LetExpr) isExpr()         {}
func (OkExpr) isExpr()          {}
func (TupleExpr) isExpr()       {}

func Var(name string) Expr       { return VarExpr{Name: name} }
func CurrentNode() Expr          { return CurrentNodeExpr{} }
func ConstVal(v Value) Expr      { return ConstExpr{Value: v} }
func Call(query string, args ...Expr) Expr {
	return CallExpr{Query: query, Args: args}
}
func Construct(constructor string, fields ...Expr) Expr {
	return ConstructExpr{Constructor: constructor, Fields: fields}
}
func Let(bindings []LetBinding, body Expr) Expr {
	return LetExpr{Bindings: bindings, Body: body}
}
func Ok(inner Expr) Expr          { return OkExpr{Inner: inner} }
func TupleExprOf(elems ...Expr) Expr { return TupleExpr{Elems: elems} }

// Rule matches a pattern against a query's input and computes Result
// when it matches.
type Rule struct {
	Pattern Pattern
	Result  Expr
}

func NewRule(pattern Pattern, result Expr) Rule {
	return Rule{Pattern: pattern, Result: result}
}

// Query defines one computed attribute: a name, an input/output type,
// and an ordered list of rules tried in turn (first match wins).
// External queries emit their signature with a body that only panics —
// spec.md's "implemented externally" escape hatch for host-provided
// primitives.
type Query struct {
	Name     string
	Input    Type
	Output   Type
	Rules    []Rule
	External bool
}

// Semantics is a complete set of query definitions — the meta-compiler's
// top-level input.
type Semantics struct {
	Queries []Query
}

// NewSemantics returns an empty semantic definition.
func NewSemantics() *Semantics { return &Semantics{} }

// AddQuery appends q and returns s, for fluent chaining.
func (s *Semantics) AddQuery(q Query) *Semantics {
	s.Queries = append(s.Queries, q)
	return s
}

func (t Type) String() string {
	switch t.Kind {
	case KindNodeID:
		return "NodeId"
	case KindValue:
		return "Value"
	case KindType:
		return "Type"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindSymbol:
		return "Symbol"
	case KindEnvID:
		return "EnvId"
	case KindDiagnostics:
		return "Diagnostics"
	case KindOption:
		return fmt.Sprintf("*%s", t.Elem)
	case KindResult:
		return fmt.Sprintf("(%s, error)", t.Ok)
	case KindArray:
		return fmt.Sprintf("[]%s", t.Elem)
	default:
		return "any"
	}
}
