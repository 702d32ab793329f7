package optimize

import (
	"testing"

	"github.com/gmofishsauce/cadenza/internal/ssa"
	"github.com/gmofishsauce/cadenza/internal/values"
)

func TestDeadCodeElimRemovesUnusedBinOp(t *testing.T) {
	b := ssa.NewBuilder()
	integer := values.Type{Name: "integer"}
	id := b.NewFunctionID()
	b.StartFunction(id, "f", nil, integer, true)

	used := b.NewValue()
	b.Emit(ssa.NewConst(used, integer, ssa.Source{}, values.Integer(1)))
	dead := b.NewValue()
	b.Emit(ssa.NewBinOp(dead, integer, ssa.Source{}, ssa.Add, used, used))
	b.Terminate(ssa.ReturnTerm{Value: used, HasValue: true})
	b.FinishFunction()
	m := b.Finish()

	if !(DeadCodeElim{}).Run(m) {
		t.Fatalf("expected a change")
	}
	blk := m.Functions[0].Blocks[0]
	if len(blk.Instr) != 1 {
		t.Fatalf("got %d instructions, want 1 (the dead BinOp should be gone)", len(blk.Instr))
	}
	if _, ok := blk.Instr[0].(ssa.ConstInstr); !ok {
		t.Errorf("expected the surviving instruction to be the used const, got %#v", blk.Instr[0])
	}
}

func TestDeadCodeElimKeepsUnusedCallForSideEffects(t *testing.T) {
	b := ssa.NewBuilder()
	integer := values.Type{Name: "integer"}
	id := b.NewFunctionID()
	b.StartFunction(id, "f", nil, integer, true)

	arg := b.NewValue()
	b.Emit(ssa.NewConst(arg, integer, ssa.Source{}, values.Integer(1)))
	callee := b.NewFunctionID()
	b.Emit(ssa.NewVoidCall(ssa.Source{}, callee, "log", []ssa.ValueID{arg}))
	result := b.NewValue()
	b.Emit(ssa.NewConst(result, integer, ssa.Source{}, values.Integer(0)))
	b.Terminate(ssa.ReturnTerm{Value: result, HasValue: true})
	b.FinishFunction()
	m := b.Finish()

	(DeadCodeElim{}).Run(m)

	blk := m.Functions[0].Blocks[0]
	foundCall := false
	for _, instr := range blk.Instr {
		if _, ok := instr.(ssa.CallInstr); ok {
			foundCall = true
		}
	}
	if !foundCall {
		t.Errorf("expected the void call to survive even though its result is unused")
	}
}

func TestDeadCodeElimPropagatesThroughPhi(t *testing.T) {
	b := ssa.NewBuilder()
	integer := values.Type{Name: "integer"}
	boolean := values.Type{Name: "bool"}
	id := b.NewFunctionID()
	fn := b.StartFunction(id, "f", []values.Type{boolean}, integer, true)
	entry := fn.EntryBlock

	thenBlk := b.NewBlock()
	thenVal := b.NewValue()
	b.Emit(ssa.NewConst(thenVal, integer, ssa.Source{}, values.Integer(1)))

	elseBlk := b.NewBlock()
	elseVal := b.NewValue()
	b.Emit(ssa.NewConst(elseVal, integer, ssa.Source{}, values.Integer(2)))

	joinBlk := b.NewBlock()
	phi := b.NewValue()
	b.Emit(ssa.NewPhi(phi, integer, ssa.Source{}, []ssa.PhiIncoming{
		{Value: thenVal, Block: thenBlk},
		{Value: elseVal, Block: elseBlk},
	}))
	b.Terminate(ssa.ReturnTerm{Value: phi, HasValue: true})

	b.SetBlock(thenBlk)
	b.Terminate(ssa.JumpTerm{Target: joinBlk})
	b.SetBlock(elseBlk)
	b.Terminate(ssa.JumpTerm{Target: joinBlk})
	b.SetBlock(entry)
	b.Terminate(ssa.BranchTerm{Cond: fn.Params[0], Then: thenBlk, Else: elseBlk})
	b.FinishFunction()
	m := b.Finish()

	if (DeadCodeElim{}).Run(m) {
		t.Fatalf("expected nothing to be removed: both phi inputs are live")
	}
	for _, id := range []ssa.BlockID{thenBlk, elseBlk} {
		blk, _ := m.Functions[0].Block(id)
		if len(blk.Instr) != 1 {
			t.Errorf("block %s: expected its const to survive, got %d instructions", id, len(blk.Instr))
		}
	}
}
