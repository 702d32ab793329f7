package metacompiler

import "fmt"

// BindingID names a binding within one rule's compiled form; binding 0
// is always Input.
type BindingID int

// ExtractKindTag names which piece of a parent binding an ExtractBinding
// pulls out, mirroring original_source's ExtractKind enum.
type ExtractKindTag int

const (
	ExtractApplyCallee ExtractKindTag = iota
	ExtractApplyArg
	ExtractApplyArgs
	ExtractTupleField
)

// ExtractKind is how to extract a value from a parent binding; Index is
// used by ExtractApplyArg/ExtractTupleField.
type ExtractKind struct {
	Tag   ExtractKindTag
	Index int
}

// Binding is one entry of a rule's compiled binding list — anything
// that can be named and computed once, then referenced by later
// bindings, constraints, or the result expression.
type Binding interface{ isBinding() }

type InputBinding struct{}
type ConstantBinding struct{ Value Value }
type CapturedBinding struct{ Name string }
type ExtractBinding struct {
	Source BindingID
	Kind   ExtractKind
}
type QueryCallBinding struct {
	Query string
	Args  []BindingID
}

func (InputBinding) isBinding()     {}
func (ConstantBinding) isBinding()  {}
func (CapturedBinding) isBinding()  {}
func (ExtractBinding) isBinding()   {}
func (QueryCallBinding) isBinding() {}

// Constraint tests whether a binding's runtime value matches a pattern,
// mirroring original_source's Constraint enum (the subset
// compile_pattern_helper actually produces).
type Constraint interface{ isConstraint() }

type ConstIntConstraint struct{ Value int64 }
type ConstBoolConstraint struct{ Value bool }
type ConstStringConstraint struct{ Value string }
type IsApplyConstraint struct{}
type IsSymbolConstraint struct{ Name string }
type IsIntegerConstraint struct{}
type IsTupleConstraint struct{ Size int }
type ArgsLengthConstraint struct{ Len int }

func (ConstIntConstraint) isConstraint()    {}
func (ConstBoolConstraint) isConstraint()   {}
func (ConstStringConstraint) isConstraint() {}
func (IsApplyConstraint) isConstraint()     {}
func (IsSymbolConstraint) isConstraint()    {}
func (IsIntegerConstraint) isConstraint()   {}
func (IsTupleConstraint) isConstraint()     {}
func (ArgsLengthConstraint) isConstraint()  {}

// RuleConstraint pairs a constraint with the binding it tests.
type RuleConstraint struct {
	Source     BindingID
	Constraint Constraint
}

// CompiledExpr is a rule's result expression, rewritten to reference
// BindingIDs instead of source-level variable names.
type CompiledExpr interface{ isCompiledExpr() }

type BindingExpr struct{ ID BindingID }
type ConstCompiledExpr struct{ Value Value }
type CallCompiledExpr struct {
	Query string
	Args  []CompiledExpr
}
type ConstructCompiledExpr struct {
	Constructor string
	Fields      []CompiledExpr
}
type LetCompiledBinding struct {
	Name  string
	Value CompiledExpr
}
type LetCompiledExpr struct {
	Bindings []LetCompiledBinding
	Body     CompiledExpr
}
type OkCompiledExpr struct{ Inner CompiledExpr }

func (BindingExpr) isCompiledExpr()          {}
func (ConstCompiledExpr) isCompiledExpr()    {}
func (CallCompiledExpr) isCompiledExpr()     {}
func (ConstructCompiledExpr) isCompiledExpr() {}
func (LetCompiledExpr) isCompiledExpr()      {}
func (OkCompiledExpr) isCompiledExpr()       {}

// CompiledRule is one rule reduced to binding-based form: every
// subvalue the pattern needs is a numbered Binding, every predicate is
// a Constraint over one of those bindings, and the result is a
// CompiledExpr referencing bindings instead of names.
type CompiledRule struct {
	Original    Rule
	Bindings    []Binding
	Constraints []RuleConstraint
	// StepBindings maps a constraint's index in Constraints to the
	// binding ids introduced immediately after it was pushed during
	// pattern compilation — e.g. IsApply's index maps to the callee
	// binding id, ArgsLength's index maps to each arg's binding id.
	// The decision-tree builder uses this to know which `let` a given
	// CheckConstraint step should emit, since bindings.rs's own
	// compile_pattern interleaves binding/constraint creation in this
	// same order but returns them as two separate flat lists.
	StepBindings map[int][]BindingID
	Result       CompiledExpr
}

// CompileRule compiles one source-level Rule into binding-based form,
// following original_source/crates/cadenza-meta/src/bindings.rs's
// compile_pattern/compile_expr: Input is always binding 0, then the
// pattern is walked to extend the binding/constraint lists, then the
// result expression is rewritten over the resulting variable
// environment.
func CompileRule(rule Rule) CompiledRule {
	c := &compiler{
		bindings:     []Binding{InputBinding{}},
		stepBindings: make(map[int][]BindingID),
		varEnv:       make(map[string]BindingID),
	}
	c.compilePattern(rule.Pattern, 0)
	result := c.compileExpr(rule.Result)
	return CompiledRule{
		Original:     rule,
		Bindings:     c.bindings,
		Constraints:  c.constraints,
		StepBindings: c.stepBindings,
		Result:       result,
	}
}

type compiler struct {
	bindings     []Binding
	constraints  []RuleConstraint
	stepBindings map[int][]BindingID
	varEnv       map[string]BindingID
}

func (c *compiler) newBinding(b Binding) BindingID {
	id := BindingID(len(c.bindings))
	c.bindings = append(c.bindings, b)
	return id
}

func (c *compiler) pushConstraint(source BindingID, constraint Constraint) int {
	c.constraints = append(c.constraints, RuleConstraint{Source: source, Constraint: constraint})
	return len(c.constraints) - 1
}

func (c *compiler) introduce(stepIdx int, id BindingID) {
	c.stepBindings[stepIdx] = append(c.stepBindings[stepIdx], id)
}

// compilePattern mirrors bindings.rs's compile_pattern_helper: every
// handled Pattern variant extends bindings/constraints/varEnv in place;
// everything else is left unimplemented, matching the original's own
// partial coverage ("nested pattern - not yet supported").
func (c *compiler) compilePattern(pattern Pattern, source BindingID) {
	switch p := pattern.(type) {
	case WildcardPattern:
		// No constraints.

	case CapturePattern:
		c.varEnv[p.Name] = source

	case IntegerPattern:
		idx := c.pushConstraint(source, IsIntegerConstraint{})
		if cap, ok := p.Inner.(CapturePattern); ok {
			id := c.newBinding(CapturedBinding{Name: cap.Name})
			c.varEnv[cap.Name] = id
			c.introduce(idx, id)
		}

	case SymbolLitPattern:
		c.pushConstraint(source, IsSymbolConstraint{Name: p.Name})

	case ApplyPattern:
		applyIdx := c.pushConstraint(source, IsApplyConstraint{})

		calleeID := c.newBinding(ExtractBinding{Source: source, Kind: ExtractKind{Tag: ExtractApplyCallee}})
		c.introduce(applyIdx, calleeID)
		c.compilePattern(p.Callee, calleeID)

		argsIdx := applyIdx
		if len(p.Args) > 0 {
			argsIdx = c.pushConstraint(source, ArgsLengthConstraint{Len: len(p.Args)})
		}
		for i, arg := range p.Args {
			argID := c.newBinding(ExtractBinding{Source: source, Kind: ExtractKind{Tag: ExtractApplyArg, Index: i}})
			c.introduce(argsIdx, argID)
			c.compilePattern(arg, argID)
		}

	case TuplePattern:
		tupIdx := c.pushConstraint(source, IsTupleConstraint{Size: len(p.Elems)})
		for i, elem := range p.Elems {
			elemID := c.newBinding(ExtractBinding{Source: source, Kind: ExtractKind{Tag: ExtractTupleField, Index: i}})
			c.introduce(tupIdx, elemID)
			c.compilePattern(elem, elemID)
		}

	case ValuePattern:
		switch p.Value.Kind {
		case ValueInteger:
			c.pushConstraint(source, ConstIntConstraint{Value: p.Value.Int})
		case ValueBool:
			c.pushConstraint(source, ConstBoolConstraint{Value: p.Value.Bool})
		case ValueString:
			c.pushConstraint(source, ConstStringConstraint{Value: p.Value.Str})
		}

	default:
		// Record, Struct, Enum, Function, ... patterns: not yet
		// supported, matching bindings.rs's own coverage.
	}
}

// compileExpr mirrors bindings.rs's compile_expr, rewriting a
// source-level Expr into a CompiledExpr over c's variable environment.
func (c *compiler) compileExpr(expr Expr) CompiledExpr {
	switch e := expr.(type) {
	case VarExpr:
		if id, ok := c.varEnv[e.Name]; ok {
			return BindingExpr{ID: id}
		}
		return ConstCompiledExpr{Value: ErrorValue()}

	case CurrentNodeExpr:
		return BindingExpr{ID: 0}

	case ConstExpr:
		return ConstCompiledExpr{Value: e.Value}

	case CallExpr:
		args := make([]CompiledExpr, len(e.Args))
		for i, a := range e.Args {
			args[i] = c.compileExpr(a)
		}
		return CallCompiledExpr{Query: e.Query, Args: args}

	case ConstructExpr:
		fields := make([]CompiledExpr, len(e.Fields))
		for i, f := range e.Fields {
			fields[i] = c.compileExpr(f)
		}
		return ConstructCompiledExpr{Constructor: e.Constructor, Fields: fields}

	case TupleExpr:
		fields := make([]CompiledExpr, len(e.Elems))
		for i, el := range e.Elems {
			fields[i] = c.compileExpr(el)
		}
		return ConstructCompiledExpr{Constructor: "Tuple", Fields: fields}

	case LetExpr:
		bindings := make([]LetCompiledBinding, len(e.Bindings))
		for i, b := range e.Bindings {
			bindings[i] = LetCompiledBinding{Name: b.Name, Value: c.compileExpr(b.Value)}
		}
		return LetCompiledExpr{Bindings: bindings, Body: c.compileExpr(e.Body)}

	case OkExpr:
		return OkCompiledExpr{Inner: c.compileExpr(e.Inner)}

	default:
		return ConstCompiledExpr{Value: ErrorValue()}
	}
}

func (id BindingID) String() string { return fmt.Sprintf("binding_%d", int(id)) }
