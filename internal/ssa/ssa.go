// Package ssa implements Cadenza's typed static-single-assignment
// intermediate representation: Module -> Function -> Block ->
// Instruction/Terminator, with dense 32-bit identifiers for values,
// blocks, and functions, grounded on spec.md §3.9/§4.9.
//
// Every instruction and terminator carries a Source location and a
// result type drawn from the same runtime type universe internal/values
// already defines (values.Type), rather than inventing a second type
// representation parallel to internal/types' InferType — SSA values are
// always fully resolved by the time they reach this layer, so the
// open-world InferType machinery (type variables, Forall schemes) has
// nothing left to do here.
package ssa

import (
	"fmt"
	"strings"

	"github.com/gmofishsauce/cadenza/internal/intern"
	"github.com/gmofishsauce/cadenza/internal/values"
)

// ValueID names an SSA value, dense within its owning Function.
type ValueID uint32

func (v ValueID) String() string { return fmt.Sprintf("v%d", uint32(v)) }

// BlockID names a basic block, dense within its owning Function.
type BlockID uint32

func (b BlockID) String() string { return fmt.Sprintf("bb%d", uint32(b)) }

// FuncID names a function, dense within its owning Module.
type FuncID uint32

// Source is the origin location an instruction or terminator carries for
// diagnostics and source maps.
type Source struct {
	File   string
	Line   int
	Column int
}

func (s Source) String() string {
	if s.File == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// BinOpKind names a binary instruction's operation.
type BinOpKind int

const (
	Add BinOpKind = iota
	Sub
	Mul
	Div
	Rem
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	And
	Or
	BitAnd
	BitOr
	BitXor
	Shl
	Shr
)

var binOpNames = map[BinOpKind]string{
	Add: "add", Sub: "sub", Mul: "mul", Div: "div", Rem: "rem",
	Eq: "eq", Ne: "ne", Lt: "lt", Le: "le", Gt: "gt", Ge: "ge",
	And: "and", Or: "or", BitAnd: "band", BitOr: "bor", BitXor: "bxor",
	Shl: "shl", Shr: "shr",
}

func (k BinOpKind) String() string {
	if s, ok := binOpNames[k]; ok {
		return s
	}
	return "unknown"
}

// IsComparison reports whether k produces a Bool result regardless of its
// operand types.
func (k BinOpKind) IsComparison() bool {
	switch k {
	case Eq, Ne, Lt, Le, Gt, Ge:
		return true
	default:
		return false
	}
}

// UnOpKind names a unary instruction's operation.
type UnOpKind int

const (
	Neg UnOpKind = iota
	Not
	BitNot
)

func (k UnOpKind) String() string {
	switch k {
	case Neg:
		return "neg"
	case Not:
		return "not"
	case BitNot:
		return "bnot"
	default:
		return "unknown"
	}
}

// Instruction is any SSA instruction, each producing at most one result.
type Instruction interface {
	Result() (ValueID, bool)
	Type() values.Type
	Source() Source
	String() string
}

type instrBase struct {
	ID  ValueID
	Ty  values.Type
	Src Source
}

func (b instrBase) Result() (ValueID, bool) { return b.ID, true }
func (b instrBase) Type() values.Type       { return b.Ty }
func (b instrBase) Source() Source          { return b.Src }

// ConstInstr loads a constant runtime value.
type ConstInstr struct {
	instrBase
	Value values.Value
}

func (c ConstInstr) String() string {
	return fmt.Sprintf("%s = const %s : %s", c.ID, values.Display(c.Value), c.Ty.Name)
}

// NewConst builds a ConstInstr; the exported constructor every package
// outside ssa must use, since instrBase itself is unexported.
func NewConst(id ValueID, ty values.Type, src Source, value values.Value) ConstInstr {
	return ConstInstr{instrBase: instrBase{ID: id, Ty: ty, Src: src}, Value: value}
}

// BinOpInstr applies a binary operator to two already-defined values.
type BinOpInstr struct {
	instrBase
	Op       BinOpKind
	Lhs, Rhs ValueID
}

func (b BinOpInstr) String() string {
	return fmt.Sprintf("%s = %s %s, %s : %s", b.ID, b.Op, b.Lhs, b.Rhs, b.Ty.Name)
}

// NewBinOp builds a BinOpInstr.
func NewBinOp(id ValueID, ty values.Type, src Source, op BinOpKind, lhs, rhs ValueID) BinOpInstr {
	return BinOpInstr{instrBase: instrBase{ID: id, Ty: ty, Src: src}, Op: op, Lhs: lhs, Rhs: rhs}
}

// WithOperands returns a copy of b with its operands replaced — used by
// CSE to remap later instructions onto an earlier equivalent result.
func (b BinOpInstr) WithOperands(lhs, rhs ValueID) BinOpInstr {
	b.Lhs, b.Rhs = lhs, rhs
	return b
}

// UnOpInstr applies a unary operator to an already-defined value.
type UnOpInstr struct {
	instrBase
	Op      UnOpKind
	Operand ValueID
}

func (u UnOpInstr) String() string {
	return fmt.Sprintf("%s = %s %s : %s", u.ID, u.Op, u.Operand, u.Ty.Name)
}

// NewUnOp builds a UnOpInstr.
func NewUnOp(id ValueID, ty values.Type, src Source, op UnOpKind, operand ValueID) UnOpInstr {
	return UnOpInstr{instrBase: instrBase{ID: id, Ty: ty, Src: src}, Op: op, Operand: operand}
}

// WithOperand returns a copy of u with its operand replaced.
func (u UnOpInstr) WithOperand(operand ValueID) UnOpInstr {
	u.Operand = operand
	return u
}

// CallInstr calls a function with already-defined argument values.
// HasResult is false for a void-returning call, in which case ID/Ty are
// unused and Result reports ok=false.
type CallInstr struct {
	instrBase
	Func      FuncID
	FuncName  string
	Args      []ValueID
	HasResult bool
}

func (c CallInstr) Result() (ValueID, bool) {
	if !c.HasResult {
		return 0, false
	}
	return c.ID, true
}

func (c CallInstr) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	call := fmt.Sprintf("call %s(%s)", c.FuncName, strings.Join(args, ", "))
	if !c.HasResult {
		return call
	}
	return fmt.Sprintf("%s = %s : %s", c.ID, call, c.Ty.Name)
}

// NewCall builds a result-producing CallInstr.
func NewCall(id ValueID, ty values.Type, src Source, fn FuncID, fnName string, args []ValueID) CallInstr {
	return CallInstr{instrBase: instrBase{ID: id, Ty: ty, Src: src}, Func: fn, FuncName: fnName, Args: args, HasResult: true}
}

// NewVoidCall builds a void-returning CallInstr.
func NewVoidCall(src Source, fn FuncID, fnName string, args []ValueID) CallInstr {
	return CallInstr{instrBase: instrBase{Src: src}, Func: fn, FuncName: fnName, Args: args}
}

// WithArgs returns a copy of c with its argument list replaced.
func (c CallInstr) WithArgs(args []ValueID) CallInstr {
	c.Args = args
	return c
}

// RecordInstr builds a record from a parallel field-name/value array.
type RecordInstr struct {
	instrBase
	Fields []intern.ID
	Values []ValueID
}

func (r RecordInstr) String() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = fmt.Sprintf("%s: %s", intern.Global().Lookup(f), r.Values[i])
	}
	return fmt.Sprintf("%s = record {%s} : %s", r.ID, strings.Join(parts, ", "), r.Ty.Name)
}

// NewRecord builds a RecordInstr from parallel field-name/value arrays.
func NewRecord(id ValueID, ty values.Type, src Source, fields []intern.ID, vals []ValueID) RecordInstr {
	return RecordInstr{instrBase: instrBase{ID: id, Ty: ty, Src: src}, Fields: fields, Values: vals}
}

// WithValues returns a copy of r with its value array replaced.
func (r RecordInstr) WithValues(vals []ValueID) RecordInstr {
	r.Values = vals
	return r
}

// FieldInstr reads a named field out of an already-defined record value.
type FieldInstr struct {
	instrBase
	Record ValueID
	Field  intern.ID
}

func (f FieldInstr) String() string {
	return fmt.Sprintf("%s = field %s.%s : %s", f.ID, f.Record, intern.Global().Lookup(f.Field), f.Ty.Name)
}

// NewField builds a FieldInstr.
func NewField(id ValueID, ty values.Type, src Source, record ValueID, field intern.ID) FieldInstr {
	return FieldInstr{instrBase: instrBase{ID: id, Ty: ty, Src: src}, Record: record, Field: field}
}

// WithRecord returns a copy of f with its record operand replaced.
func (f FieldInstr) WithRecord(record ValueID) FieldInstr {
	f.Record = record
	return f
}

// TupleInstr builds a tuple from already-defined element values.
type TupleInstr struct {
	instrBase
	Elements []ValueID
}

func (t TupleInstr) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return fmt.Sprintf("%s = tuple (%s) : %s", t.ID, strings.Join(parts, ", "), t.Ty.Name)
}

// NewTuple builds a TupleInstr.
func NewTuple(id ValueID, ty values.Type, src Source, elems []ValueID) TupleInstr {
	return TupleInstr{instrBase: instrBase{ID: id, Ty: ty, Src: src}, Elements: elems}
}

// WithElements returns a copy of t with its element list replaced.
func (t TupleInstr) WithElements(elems []ValueID) TupleInstr {
	t.Elements = elems
	return t
}

// PhiIncoming is one (value, predecessor block) pair of a Phi.
type PhiIncoming struct {
	Value ValueID
	Block BlockID
}

// PhiInstr selects a value based on which predecessor block control
// entered from.
type PhiInstr struct {
	instrBase
	Incoming []PhiIncoming
}

func (p PhiInstr) String() string {
	parts := make([]string, len(p.Incoming))
	for i, inc := range p.Incoming {
		parts[i] = fmt.Sprintf("[%s, %s]", inc.Value, inc.Block)
	}
	return fmt.Sprintf("%s = phi %s : %s", p.ID, strings.Join(parts, " "), p.Ty.Name)
}

// NewPhi builds a PhiInstr.
func NewPhi(id ValueID, ty values.Type, src Source, incoming []PhiIncoming) PhiInstr {
	return PhiInstr{instrBase: instrBase{ID: id, Ty: ty, Src: src}, Incoming: incoming}
}

// WithIncoming returns a copy of p with its Incoming list replaced — used
// by optimize passes that rewrite a Phi's operands after a replacement
// mapping is discovered (CSE) without needing instrBase's unexported
// fields.
func (p PhiInstr) WithIncoming(incoming []PhiIncoming) PhiInstr {
	p.Incoming = incoming
	return p
}

// Terminator is the single control-flow exit of a Block.
type Terminator interface {
	Source() Source
	String() string
}

// BranchTerm conditionally jumps to one of two blocks.
type BranchTerm struct {
	Cond       ValueID
	Then, Else BlockID
	Src        Source
}

func (b BranchTerm) Source() Source { return b.Src }
func (b BranchTerm) String() string {
	return fmt.Sprintf("branch %s, %s, %s", b.Cond, b.Then, b.Else)
}

// WithCond returns a copy of b with its condition operand replaced.
func (b BranchTerm) WithCond(cond ValueID) BranchTerm {
	b.Cond = cond
	return b
}

// JumpTerm unconditionally jumps to a single target block.
type JumpTerm struct {
	Target BlockID
	Src    Source
}

func (j JumpTerm) Source() Source { return j.Src }
func (j JumpTerm) String() string { return fmt.Sprintf("jump %s", j.Target) }

// ReturnTerm exits the function, optionally carrying a value.
type ReturnTerm struct {
	Value    ValueID
	HasValue bool
	Src      Source
}

func (r ReturnTerm) Source() Source { return r.Src }
func (r ReturnTerm) String() string {
	if !r.HasValue {
		return "return"
	}
	return fmt.Sprintf("return %s", r.Value)
}

// WithValue returns a copy of r with its return operand replaced.
func (r ReturnTerm) WithValue(v ValueID) ReturnTerm {
	r.Value = v
	return r
}

// Block is a straight-line sequence of instructions ending in exactly one
// terminator.
type Block struct {
	ID    BlockID
	Instr []Instruction
	Term  Terminator
}

// Function is a sequence of blocks reachable from EntryBlock, with its
// parameters occupying value IDs [0, len(Params)).
type Function struct {
	ID         FuncID
	Name       string
	Params     []ValueID
	ParamTypes []values.Type
	ResultType values.Type
	HasResult  bool
	EntryBlock BlockID
	Blocks     []*Block
}

// Block looks up one of this function's blocks by id.
func (f *Function) Block(id BlockID) (*Block, bool) {
	for _, b := range f.Blocks {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// ExportKind distinguishes what an Export names, mirroring
// original_source's IrExportKind::Function/Constant split.
type ExportKind int

const (
	ExportFunction ExportKind = iota
	ExportConstant
)

// Export names a function or constant visible outside the module.
// wasmgen only lowers ExportFunction; an ExportConstant entry is carried
// here (rather than omitted) so a module can represent a fuller export
// list without a second export type, but codegen rejects it — WASM has
// no way to export a bare value without wrapping it in a getter
// function, which this IR does not synthesize automatically.
type Export struct {
	Name string
	Kind ExportKind
	Func FuncID
}

// Module is a complete compilation unit: every function it defines, plus
// the subset of them (or constants) visible to an embedder.
type Module struct {
	Functions []*Function
	Exports   []Export
}

// Function looks up one of this module's functions by id.
func (m *Module) Function(id FuncID) (*Function, bool) {
	for _, fn := range m.Functions {
		if fn.ID == id {
			return fn, true
		}
	}
	return nil, false
}

// Display renders the module deterministically: each block on its own
// line, indented instructions, a trailing terminator, functions separated
// by a blank line — a stable format intended to power golden snapshots.
func (m *Module) Display() string {
	var b strings.Builder
	for i, fn := range m.Functions {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeFunction(&b, fn)
	}
	return b.String()
}

func writeFunction(b *strings.Builder, fn *Function) {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = fmt.Sprintf("%s: %s", p, fn.ParamTypes[i].Name)
	}
	ret := "void"
	if fn.HasResult {
		ret = fn.ResultType.Name
	}
	fmt.Fprintf(b, "fn %s(%s) -> %s {\n", fn.Name, strings.Join(params, ", "), ret)
	for _, blk := range fn.Blocks {
		fmt.Fprintf(b, "%s:\n", blk.ID)
		for _, instr := range blk.Instr {
			fmt.Fprintf(b, "  %s\n", instr)
		}
		fmt.Fprintf(b, "  %s\n", blk.Term)
	}
	b.WriteString("}\n")
}
