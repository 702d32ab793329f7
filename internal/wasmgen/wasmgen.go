// Package wasmgen lowers a straight-line internal/ssa.Module to the WASM
// binary format, grounded on
// original_source/crates/cadenza-eval/src/ir/wasm.rs's WasmCodegen (and
// its explicit, documented gaps: Record/Field/Tuple/Phi, strings, and
// multi-block control flow are all left as codegen errors there too).
package wasmgen

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gmofishsauce/cadenza/internal/ssa"
	"github.com/gmofishsauce/cadenza/internal/values"
)

// WASM value types (LEB-encoded as a single byte each).
const (
	valI32 byte = 0x7F
	valI64 byte = 0x7E
	valF64 byte = 0x7C
)

// Section ids, emitted in strictly ascending order per the WASM binary
// format's requirement.
const (
	secType     byte = 1
	secFunction byte = 3
	secExport   byte = 7
	secCode     byte = 10
)

const exportDescFunc byte = 0x00

// Opcodes actually emitted below, named per the WASM core spec's own
// mnemonics rather than the numbers alone.
const (
	opEnd      byte = 0x0B
	opCall     byte = 0x10
	opLocalGet byte = 0x20
	opLocalSet byte = 0x21

	opI32Const byte = 0x41
	opI64Const byte = 0x42
	opF64Const byte = 0x44

	opI32Eqz byte = 0x45
	opI32Eq  byte = 0x46
	opI32Ne  byte = 0x47

	opI64Eqz  byte = 0x50
	opI64Eq   byte = 0x51
	opI64Ne   byte = 0x52
	opI64LtS  byte = 0x53
	opI64GtS  byte = 0x55
	opI64LeS  byte = 0x57
	opI64GeS  byte = 0x59

	opF64Eq byte = 0x61
	opF64Ne byte = 0x62
	opF64Lt byte = 0x63
	opF64Gt byte = 0x64
	opF64Le byte = 0x65
	opF64Ge byte = 0x66

	opI32And byte = 0x71
	opI32Or  byte = 0x72

	opI64Add  byte = 0x7C
	opI64Sub  byte = 0x7D
	opI64Mul  byte = 0x7E
	opI64DivS byte = 0x7F
	opI64RemS byte = 0x81
	opI64And  byte = 0x83
	opI64Or   byte = 0x84
	opI64Xor  byte = 0x85
	opI64Shl  byte = 0x86
	opI64ShrS byte = 0x87

	opF64Neg byte = 0x9A
	opF64Add byte = 0xA0
	opF64Sub byte = 0xA1
	opF64Mul byte = 0xA2
	opF64Div byte = 0xA3
)

// Codegen lowers one SSA module to WASM, tracking the function-index
// numbering it assigns along the way.
type Codegen struct {
	funcIndex map[ssa.FuncID]uint32
}

// NewCodegen returns a ready-to-use code generator.
func NewCodegen() *Codegen {
	return &Codegen{funcIndex: make(map[ssa.FuncID]uint32)}
}

// Generate lowers m to a complete WASM binary module: Type, Function,
// Export, Code sections, in that order, magic+version prefixed.
func (g *Codegen) Generate(m *ssa.Module) ([]byte, error) {
	for i, fn := range m.Functions {
		g.funcIndex[fn.ID] = uint32(i)
	}

	var typeSec, funcSec, codeSec []byte
	typeSec = appendUleb32(typeSec, uint32(len(m.Functions)))
	funcSec = appendUleb32(funcSec, uint32(len(m.Functions)))
	codeSec = appendUleb32(codeSec, uint32(len(m.Functions)))

	for i, fn := range m.Functions {
		ft, err := functionType(fn)
		if err != nil {
			return nil, fmt.Errorf("wasmgen: function %q: %w", fn.Name, err)
		}
		typeSec = append(typeSec, ft...)
		funcSec = appendUleb32(funcSec, uint32(i))

		body, err := g.generateFunction(fn)
		if err != nil {
			return nil, fmt.Errorf("wasmgen: function %q: %w", fn.Name, err)
		}
		codeSec = append(codeSec, withLength(body)...)
	}

	var exportSec []byte
	exports := 0
	for _, exp := range m.Exports {
		if exp.Kind != ssa.ExportFunction {
			return nil, fmt.Errorf("wasmgen: export %q: constant exports are not supported, only functions can be exported", exp.Name)
		}
		idx, ok := g.funcIndex[exp.Func]
		if !ok {
			return nil, fmt.Errorf("wasmgen: export %q: unknown function", exp.Name)
		}
		exportSec = appendName(exportSec, exp.Name)
		exportSec = append(exportSec, exportDescFunc)
		exportSec = appendUleb32(exportSec, idx)
		exports++
	}
	exportSecWithCount := appendUleb32(nil, uint32(exports))
	exportSecWithCount = append(exportSecWithCount, exportSec...)

	out := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}
	out = append(out, secType)
	out = append(out, withLength(typeSec)...)
	out = append(out, secFunction)
	out = append(out, withLength(funcSec)...)
	out = append(out, secExport)
	out = append(out, withLength(exportSecWithCount)...)
	out = append(out, secCode)
	out = append(out, withLength(codeSec)...)
	return out, nil
}

// functionType encodes fn's signature as a WASM func type entry: 0x60
// followed by the parameter and result valtype vectors.
func functionType(fn *ssa.Function) ([]byte, error) {
	out := []byte{0x60}
	out = appendUleb32(out, uint32(len(fn.ParamTypes)))
	for _, t := range fn.ParamTypes {
		vt, err := valType(t)
		if err != nil {
			return nil, err
		}
		out = append(out, vt)
	}
	if !fn.HasResult {
		out = appendUleb32(out, 0)
		return out, nil
	}
	vt, err := valType(fn.ResultType)
	if err != nil {
		return nil, err
	}
	out = appendUleb32(out, 1)
	out = append(out, vt)
	return out, nil
}

// valType maps a runtime type name to a WASM value type, per spec.md
// §4.11: Nil/Bool -> i32, Integer -> i64, Float/Quantity -> f64, Unknown
// tolerated as i64, everything else rejected.
func valType(t values.Type) (byte, error) {
	switch t.Name {
	case "nil", "bool":
		return valI32, nil
	case "integer", "unknown":
		return valI64, nil
	case "float", "quantity":
		return valF64, nil
	default:
		return 0, fmt.Errorf("type %q not supported in WASM", t.Name)
	}
}

// localTracker assigns every SSA value a WASM local index: parameters
// get locals [0, len(params)), every other defined value gets the next
// free index — one local per SSA value, matching the source's own
// "simple but correct" comment on ValueLocationTracker.
type localTracker struct {
	index map[ssa.ValueID]uint32
	types map[ssa.ValueID]values.Type
	next  uint32
}

func newLocalTracker(fn *ssa.Function) *localTracker {
	t := &localTracker{index: make(map[ssa.ValueID]uint32), types: make(map[ssa.ValueID]values.Type)}
	for i, p := range fn.Params {
		t.index[p] = uint32(i)
		t.types[p] = fn.ParamTypes[i]
		t.next = uint32(i) + 1
	}
	return t
}

func (t *localTracker) allocate(id ssa.ValueID, ty values.Type) uint32 {
	if idx, ok := t.index[id]; ok {
		return idx
	}
	idx := t.next
	t.next++
	t.index[id] = idx
	t.types[id] = ty
	return idx
}

func (t *localTracker) get(id ssa.ValueID) (uint32, bool) {
	idx, ok := t.index[id]
	return idx, ok
}

// generateFunction lowers a single straight-line function to a WASM
// code-section function body: local declarations followed by its one
// block's instructions and terminator.
func (g *Codegen) generateFunction(fn *ssa.Function) ([]byte, error) {
	if len(fn.Blocks) != 1 {
		return nil, fmt.Errorf("multi-block control flow is not supported by WASM codegen (got %d blocks)", len(fn.Blocks))
	}
	blk := fn.Blocks[0]

	tracker := newLocalTracker(fn)
	for _, instr := range blk.Instr {
		id, ok := instr.Result()
		if !ok {
			continue
		}
		tracker.allocate(id, instr.Type())
	}

	var body []byte
	locals, err := encodeLocals(fn, tracker)
	if err != nil {
		return nil, err
	}
	body = append(body, locals...)

	for _, instr := range blk.Instr {
		code, err := g.generateInstruction(instr, tracker)
		if err != nil {
			return nil, err
		}
		body = append(body, code...)
	}

	term, err := generateTerminator(blk.Term, tracker)
	if err != nil {
		return nil, err
	}
	body = append(body, term...)
	return body, nil
}

// encodeLocals emits the WASM "locals" vector for every value that isn't
// a parameter, one run of length 1 per local (no attempt to compress
// runs of identical types — simplicity over size, as the teacher's own
// WOF writer doesn't compress its tables either).
func encodeLocals(fn *ssa.Function, tracker *localTracker) ([]byte, error) {
	numParams := uint32(len(fn.Params))
	var runs []byte
	count := uint32(0)
	for idx := numParams; idx < tracker.next; idx++ {
		var id ssa.ValueID
		found := false
		for v, li := range tracker.index {
			if li == idx {
				id, found = v, true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("internal error: local %d has no associated value", idx)
		}
		vt, err := valType(tracker.types[id])
		if err != nil {
			return nil, err
		}
		runs = appendUleb32(runs, 1)
		runs = append(runs, vt)
		count++
	}
	out := appendUleb32(nil, count)
	return append(out, runs...), nil
}

func (g *Codegen) generateInstruction(instr ssa.Instruction, tracker *localTracker) ([]byte, error) {
	switch in := instr.(type) {
	case ssa.ConstInstr:
		code, err := generateConst(in.Value, in.Ty)
		if err != nil {
			return nil, err
		}
		idx, _ := tracker.get(in.ID)
		return append(code, opLocalSet, byte(idx)), nil

	case ssa.BinOpInstr:
		code, err := generateBinOp(in, tracker)
		if err != nil {
			return nil, err
		}
		idx, _ := tracker.get(in.ID)
		return append(code, opLocalSet, byte(idx)), nil

	case ssa.UnOpInstr:
		code, err := generateUnOp(in, tracker)
		if err != nil {
			return nil, err
		}
		idx, _ := tracker.get(in.ID)
		return append(code, opLocalSet, byte(idx)), nil

	case ssa.CallInstr:
		var code []byte
		for _, arg := range in.Args {
			idx, ok := tracker.get(arg)
			if !ok {
				return nil, fmt.Errorf("no local for call argument %s", arg)
			}
			code = append(code, opLocalGet, byte(idx))
		}
		fnIdx, ok := g.funcIndex[in.Func]
		if !ok {
			return nil, fmt.Errorf("call to unknown function %s", in.FuncName)
		}
		code = append(code, opCall)
		code = appendUleb32(code, fnIdx)
		if in.HasResult {
			idx, _ := tracker.get(in.ID)
			code = append(code, opLocalSet, byte(idx))
		}
		return code, nil

	case ssa.RecordInstr:
		return nil, fmt.Errorf("record values are not yet supported in WASM codegen")
	case ssa.FieldInstr:
		return nil, fmt.Errorf("field access is not yet supported in WASM codegen")
	case ssa.TupleInstr:
		return nil, fmt.Errorf("tuple values are not yet supported in WASM codegen")
	case ssa.PhiInstr:
		return nil, fmt.Errorf("phi nodes must be eliminated before WASM codegen")
	default:
		return nil, fmt.Errorf("unsupported instruction %T", instr)
	}
}

func generateConst(v values.Value, ty values.Type) ([]byte, error) {
	switch n := v.(type) {
	case values.Nil:
		return []byte{opI32Const, 0}, nil
	case values.Bool:
		if n {
			return []byte{opI32Const, 1}, nil
		}
		return []byte{opI32Const, 0}, nil
	case values.Integer:
		return appendSleb64([]byte{opI64Const}, int64(n)), nil
	case values.Float:
		buf := make([]byte, 9)
		buf[0] = opF64Const
		binary.LittleEndian.PutUint64(buf[1:], math.Float64bits(float64(n)))
		return buf, nil
	case values.Quantity:
		buf := make([]byte, 9)
		buf[0] = opF64Const
		binary.LittleEndian.PutUint64(buf[1:], math.Float64bits(n.Value))
		return buf, nil
	default:
		return nil, fmt.Errorf("constant of type %q not supported in WASM", ty.Name)
	}
}

// effectiveType defaults an Unknown result type to Integer, matching the
// source's own fallback ("for unknown types, default to integer
// operations") rather than rejecting code type inference left partial.
func effectiveType(ty values.Type) values.Type {
	if ty.Name == "unknown" {
		return values.Type{Name: "integer"}
	}
	return ty
}

func generateBinOp(in ssa.BinOpInstr, tracker *localTracker) ([]byte, error) {
	lhsIdx, ok := tracker.get(in.Lhs)
	if !ok {
		return nil, fmt.Errorf("no local for lhs value %s", in.Lhs)
	}
	rhsIdx, ok := tracker.get(in.Rhs)
	if !ok {
		return nil, fmt.Errorf("no local for rhs value %s", in.Rhs)
	}
	code := []byte{opLocalGet, byte(lhsIdx), opLocalGet, byte(rhsIdx)}

	// Comparisons produce a Bool (i32) result but dispatch on the
	// operand's type, not in.Ty (already the comparison's own bool
	// result type). BinOpInstr doesn't carry a separate operand type, so
	// recover it from whichever instruction actually defined Lhs — the
	// same lookup the local tracker already did to assign it a local.
	opTy := effectiveType(in.Ty)
	if in.Op.IsComparison() {
		if t, ok := tracker.types[in.Lhs]; ok {
			opTy = effectiveType(t)
		} else {
			opTy = values.Type{Name: "integer"}
		}
	}

	op, err := binOpcode(in.Op, opTy)
	if err != nil {
		return nil, err
	}
	return append(code, op), nil
}

func binOpcode(op ssa.BinOpKind, ty values.Type) (byte, error) {
	switch ty.Name {
	case "integer":
		switch op {
		case ssa.Add:
			return opI64Add, nil
		case ssa.Sub:
			return opI64Sub, nil
		case ssa.Mul:
			return opI64Mul, nil
		case ssa.Div:
			return opI64DivS, nil
		case ssa.Rem:
			return opI64RemS, nil
		case ssa.Eq:
			return opI64Eq, nil
		case ssa.Ne:
			return opI64Ne, nil
		case ssa.Lt:
			return opI64LtS, nil
		case ssa.Le:
			return opI64LeS, nil
		case ssa.Gt:
			return opI64GtS, nil
		case ssa.Ge:
			return opI64GeS, nil
		case ssa.BitAnd:
			return opI64And, nil
		case ssa.BitOr:
			return opI64Or, nil
		case ssa.BitXor:
			return opI64Xor, nil
		case ssa.Shl:
			return opI64Shl, nil
		case ssa.Shr:
			return opI64ShrS, nil
		}
	case "float", "quantity":
		switch op {
		case ssa.Add:
			return opF64Add, nil
		case ssa.Sub:
			return opF64Sub, nil
		case ssa.Mul:
			return opF64Mul, nil
		case ssa.Div:
			return opF64Div, nil
		case ssa.Eq:
			return opF64Eq, nil
		case ssa.Ne:
			return opF64Ne, nil
		case ssa.Lt:
			return opF64Lt, nil
		case ssa.Le:
			return opF64Le, nil
		case ssa.Gt:
			return opF64Gt, nil
		case ssa.Ge:
			return opF64Ge, nil
		}
	case "bool":
		switch op {
		case ssa.And:
			return opI32And, nil
		case ssa.Or:
			return opI32Or, nil
		case ssa.Eq:
			return opI32Eq, nil
		case ssa.Ne:
			return opI32Ne, nil
		}
	}
	return 0, fmt.Errorf("%s not supported for type %q in WASM", op, ty.Name)
}

func generateUnOp(in ssa.UnOpInstr, tracker *localTracker) ([]byte, error) {
	idx, ok := tracker.get(in.Operand)
	if !ok {
		return nil, fmt.Errorf("no local for operand value %s", in.Operand)
	}
	ty := effectiveType(in.Ty)

	switch in.Op {
	case ssa.Neg:
		switch ty.Name {
		case "integer":
			// i64.sub needs 0 pushed first, then the operand — loading
			// the operand before the opcode (as the source does) gets
			// the subtraction order backwards.
			code := appendSleb64([]byte{opI64Const}, 0)
			code = append(code, opLocalGet, byte(idx))
			return append(code, opI64Sub), nil
		case "float", "quantity":
			return []byte{opLocalGet, byte(idx), opF64Neg}, nil
		}
		return nil, fmt.Errorf("neg not supported for type %q in WASM", in.Ty.Name)
	case ssa.Not:
		return []byte{opLocalGet, byte(idx), opI32Eqz}, nil
	case ssa.BitNot:
		if ty.Name == "integer" {
			code := []byte{opLocalGet, byte(idx)}
			code = appendSleb64(append(code, opI64Const), -1)
			return append(code, opI64Xor), nil
		}
		return nil, fmt.Errorf("bitnot not supported for type %q in WASM", in.Ty.Name)
	default:
		return nil, fmt.Errorf("unsupported unary operator %s", in.Op)
	}
}

func generateTerminator(term ssa.Terminator, tracker *localTracker) ([]byte, error) {
	switch t := term.(type) {
	case ssa.ReturnTerm:
		if !t.HasValue {
			return []byte{opEnd}, nil
		}
		idx, ok := tracker.get(t.Value)
		if !ok {
			return nil, fmt.Errorf("no local for return value %s", t.Value)
		}
		return []byte{opLocalGet, byte(idx), opEnd}, nil
	case ssa.BranchTerm:
		return nil, fmt.Errorf("conditional branches are not yet supported by WASM codegen")
	case ssa.JumpTerm:
		return nil, fmt.Errorf("unconditional jumps are not yet supported by WASM codegen")
	default:
		return nil, fmt.Errorf("unsupported terminator %T", term)
	}
}

// Generate is the package-level convenience wrapper over a fresh
// Codegen, matching original_source's free function generate_wat/
// top-level usage pattern.
func Generate(m *ssa.Module) ([]byte, error) {
	return NewCodegen().Generate(m)
}
