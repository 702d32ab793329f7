package wasmgen

import (
	"strings"
	"testing"

	"github.com/gmofishsauce/cadenza/internal/ssa"
	"github.com/gmofishsauce/cadenza/internal/values"
)

// buildSimpleFunction mirrors original_source's
// test_generate_simple_function: fn add(a: i64, b: i64) -> i64 { a + b }.
func buildSimpleFunction() *ssa.Module {
	b := ssa.NewBuilder()
	intTy := values.Type{Name: "integer"}
	id := b.NewFunctionID()
	fn := b.StartFunction(id, "add", []values.Type{intTy, intTy}, intTy, true)
	result := b.NewValue()
	b.Emit(ssa.NewBinOp(result, intTy, ssa.Source{}, ssa.Add, fn.Params[0], fn.Params[1]))
	b.Terminate(ssa.ReturnTerm{Value: result, HasValue: true})
	b.FinishFunction()
	b.Export("add", id)
	return b.Finish()
}

func TestGenerateSimpleFunction(t *testing.T) {
	m := buildSimpleFunction()
	out, err := Generate(m)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(out[0:4]) != "\x00asm" {
		t.Fatalf("missing WASM magic, got %x", out[0:4])
	}
	if out[4] != 1 || out[5] != 0 || out[6] != 0 || out[7] != 0 {
		t.Fatalf("unexpected version bytes %v", out[4:8])
	}
}

func TestTypeToWasm(t *testing.T) {
	cases := []struct {
		name string
		want byte
		ok   bool
	}{
		{"nil", valI32, true},
		{"bool", valI32, true},
		{"integer", valI64, true},
		{"unknown", valI64, true},
		{"float", valF64, true},
		{"quantity", valF64, true},
		{"string", 0, false},
	}
	for _, c := range cases {
		got, err := valType(values.Type{Name: c.name})
		if c.ok && err != nil {
			t.Errorf("valType(%s): unexpected error %v", c.name, err)
		}
		if !c.ok && err == nil {
			t.Errorf("valType(%s): expected error, got %v", c.name, got)
		}
		if c.ok && got != c.want {
			t.Errorf("valType(%s) = %x, want %x", c.name, got, c.want)
		}
	}
}

// buildFunctionWithCall mirrors test_generate_function_with_call: a
// function that calls another already-defined function.
func buildFunctionWithCall() *ssa.Module {
	b := ssa.NewBuilder()
	intTy := values.Type{Name: "integer"}

	incID := b.NewFunctionID()
	inc := b.StartFunction(incID, "inc", []values.Type{intTy}, intTy, true)
	one := b.NewValue()
	b.Emit(ssa.NewConst(one, intTy, ssa.Source{}, values.Integer(1)))
	sum := b.NewValue()
	b.Emit(ssa.NewBinOp(sum, intTy, ssa.Source{}, ssa.Add, inc.Params[0], one))
	b.Terminate(ssa.ReturnTerm{Value: sum, HasValue: true})
	b.FinishFunction()

	callerID := b.NewFunctionID()
	caller := b.StartFunction(callerID, "twice_inc", []values.Type{intTy}, intTy, true)
	first := b.NewValue()
	b.Emit(ssa.NewCall(first, intTy, ssa.Source{}, incID, "inc", []ssa.ValueID{caller.Params[0]}))
	second := b.NewValue()
	b.Emit(ssa.NewCall(second, intTy, ssa.Source{}, incID, "inc", []ssa.ValueID{first}))
	b.Terminate(ssa.ReturnTerm{Value: second, HasValue: true})
	b.FinishFunction()

	b.Export("twice_inc", callerID)
	return b.Finish()
}

func TestGenerateFunctionWithCall(t *testing.T) {
	m := buildFunctionWithCall()
	out, err := Generate(m)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	wat, err := BinaryToWAT(out)
	if err != nil {
		t.Fatalf("BinaryToWAT: %v", err)
	}
	if !strings.Contains(wat, "call 0") {
		t.Errorf("expected a call to function index 0 in disassembly, got:\n%s", wat)
	}
	if !strings.Contains(wat, `"twice_inc"`) {
		t.Errorf("expected the twice_inc export in disassembly, got:\n%s", wat)
	}
}

// buildRecursiveFunction mirrors test_generate_recursive_function: a
// function that calls itself by FuncID, confirming self-reference
// resolves (unlike a forward reference to a function not yet started,
// which this single-pass index assignment also handles since every
// function's slot is reserved before any body is generated).
func buildRecursiveFunction() *ssa.Module {
	b := ssa.NewBuilder()
	intTy := values.Type{Name: "integer"}

	id := b.NewFunctionID()
	fn := b.StartFunction(id, "countdown", []values.Type{intTy}, intTy, true)
	result := b.NewValue()
	b.Emit(ssa.NewCall(result, intTy, ssa.Source{}, id, "countdown", []ssa.ValueID{fn.Params[0]}))
	b.Terminate(ssa.ReturnTerm{Value: result, HasValue: true})
	b.FinishFunction()

	return b.Finish()
}

func TestGenerateRecursiveFunction(t *testing.T) {
	m := buildRecursiveFunction()
	out, err := Generate(m)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	wat, err := BinaryToWAT(out)
	if err != nil {
		t.Fatalf("BinaryToWAT: %v", err)
	}
	if !strings.Contains(wat, "call 0") {
		t.Errorf("expected a self-call to function index 0, got:\n%s", wat)
	}
}

func TestGenerateRejectsMultiBlockFunction(t *testing.T) {
	b := ssa.NewBuilder()
	boolTy := values.Type{Name: "bool"}
	id := b.NewFunctionID()
	b.StartFunction(id, "branchy", nil, boolTy, true)
	thenBlk := b.NewBlock()
	b.Terminate(ssa.BranchTerm{Cond: 0, Then: thenBlk, Else: thenBlk})
	b.FinishFunction()
	m := b.Finish()

	if _, err := Generate(m); err == nil {
		t.Fatal("expected an error lowering a multi-block function, got nil")
	}
}

func TestGenerateRejectsExportOfUnknownFunction(t *testing.T) {
	m := buildSimpleFunction()
	m.Exports = append(m.Exports, ssa.Export{Name: "ghost", Kind: ssa.ExportFunction, Func: 99})
	if _, err := Generate(m); err == nil {
		t.Fatal("expected an error exporting an unknown function, got nil")
	}
}

func TestUnOpNegIntegerFixesStackOrder(t *testing.T) {
	intTy := values.Type{Name: "integer"}
	code, err := generateUnOp(ssa.NewUnOp(1, intTy, ssa.Source{}, ssa.Neg, 0), &localTracker{
		index: map[ssa.ValueID]uint32{0: 0},
		types: map[ssa.ValueID]values.Type{0: intTy},
	})
	if err != nil {
		t.Fatalf("generateUnOp: %v", err)
	}
	if len(code) < 2 || code[0] != opI64Const {
		t.Fatalf("expected i64.const 0 pushed before the operand, got %v", code)
	}
	if code[len(code)-1] != opI64Sub {
		t.Fatalf("expected the sequence to end in i64.sub, got %v", code)
	}
}
