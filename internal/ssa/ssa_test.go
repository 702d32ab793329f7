package ssa

import (
	"strings"
	"testing"

	"github.com/go-test/deep"

	"github.com/gmofishsauce/cadenza/internal/values"
)

// buildAdd builds `fn add(a: integer, b: integer) -> integer { return a+b }`.
func buildAdd(b *Builder) {
	integer := values.Type{Name: "integer"}
	id := b.NewFunctionID()
	fn := b.StartFunction(id, "add", []values.Type{integer, integer}, integer, true)

	result := b.NewValue()
	b.Emit(BinOpInstr{
		instrBase: instrBase{ID: result, Ty: integer},
		Op:        Add,
		Lhs:       fn.Params[0],
		Rhs:       fn.Params[1],
	})
	b.Terminate(ReturnTerm{Value: result, HasValue: true})
	b.FinishFunction()
}

func TestBuilderProducesWellFormedFunction(t *testing.T) {
	b := NewBuilder()
	buildAdd(b)
	m := b.Finish()

	if len(m.Functions) != 1 {
		t.Fatalf("got %d functions, want 1", len(m.Functions))
	}
	fn := m.Functions[0]
	if len(fn.Params) != 2 || fn.Params[0] != 0 || fn.Params[1] != 1 {
		t.Errorf("expected params to occupy value ids [0,2), got %v", fn.Params)
	}
	if len(fn.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(fn.Blocks))
	}
	blk := fn.Blocks[0]
	if blk.Term == nil {
		t.Fatalf("expected the block to have a terminator")
	}
	if len(blk.Instr) != 1 {
		t.Fatalf("got %d instructions, want 1", len(blk.Instr))
	}
}

func TestModuleDisplayIsDeterministic(t *testing.T) {
	b1 := NewBuilder()
	buildAdd(b1)
	out1 := b1.Finish().Display()

	b2 := NewBuilder()
	buildAdd(b2)
	out2 := b2.Finish().Display()

	if out1 != out2 {
		t.Errorf("expected identical builds to render identically:\n%s\n---\n%s", out1, out2)
	}
	if !strings.Contains(out1, "fn add(v0: integer, v1: integer) -> integer {") {
		t.Errorf("unexpected header in:\n%s", out1)
	}
	if !strings.Contains(out1, "v2 = add v0, v1 : integer") {
		t.Errorf("expected a binop line in:\n%s", out1)
	}
	if !strings.Contains(out1, "return v2") {
		t.Errorf("expected a return terminator in:\n%s", out1)
	}
}

// TestModuleStructurallyDeterministic rebuilds the same function twice
// and diffs the resulting modules field-by-field with go-test/deep,
// which reports every mismatched field path instead of just "not equal"
// — useful here since Module nests slices of interface-typed
// instructions that reflect.DeepEqual would only fail on opaquely.
func TestModuleStructurallyDeterministic(t *testing.T) {
	b1 := NewBuilder()
	buildAdd(b1)
	m1 := b1.Finish()

	b2 := NewBuilder()
	buildAdd(b2)
	m2 := b2.Finish()

	if diff := deep.Equal(m1, m2); diff != nil {
		t.Errorf("expected identical builds to produce identical modules, got diff: %v", diff)
	}
}

func TestMultiBlockBranch(t *testing.T) {
	b := NewBuilder()
	boolean := values.Type{Name: "bool"}
	integer := values.Type{Name: "integer"}
	id := b.NewFunctionID()
	fn := b.StartFunction(id, "choose", []values.Type{boolean}, integer, true)
	entry := fn.EntryBlock

	thenBlk := b.NewBlock()
	thenResult := b.NewValue()
	b.Emit(ConstInstr{instrBase: instrBase{ID: thenResult, Ty: integer}, Value: values.Integer(1)})

	elseBlk := b.NewBlock()
	elseResult := b.NewValue()
	b.Emit(ConstInstr{instrBase: instrBase{ID: elseResult, Ty: integer}, Value: values.Integer(0)})

	joinBlk := b.NewBlock()
	phiResult := b.NewValue()
	b.Emit(PhiInstr{
		instrBase: instrBase{ID: phiResult, Ty: integer},
		Incoming: []PhiIncoming{
			{Value: thenResult, Block: thenBlk},
			{Value: elseResult, Block: elseBlk},
		},
	})
	b.Terminate(ReturnTerm{Value: phiResult, HasValue: true})

	b.SetBlock(thenBlk)
	b.Terminate(JumpTerm{Target: joinBlk})
	b.SetBlock(elseBlk)
	b.Terminate(JumpTerm{Target: joinBlk})

	b.SetBlock(entry)
	b.Terminate(BranchTerm{Cond: fn.Params[0], Then: thenBlk, Else: elseBlk})
	b.FinishFunction()

	m := b.Finish()
	if len(m.Functions[0].Blocks) != 4 {
		t.Fatalf("got %d blocks, want 4", len(m.Functions[0].Blocks))
	}
	entryBlk, ok := m.Functions[0].Block(entry)
	if !ok {
		t.Fatalf("entry block missing")
	}
	if _, ok := entryBlk.Term.(BranchTerm); !ok {
		t.Errorf("expected entry block to end in a branch, got %#v", entryBlk.Term)
	}
}
