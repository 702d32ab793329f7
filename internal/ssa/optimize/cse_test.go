package optimize

import (
	"testing"

	"github.com/gmofishsauce/cadenza/internal/ssa"
	"github.com/gmofishsauce/cadenza/internal/values"
)

func TestCSEDeduplicatesRepeatedBinOp(t *testing.T) {
	b := ssa.NewBuilder()
	integer := values.Type{Name: "integer"}
	id := b.NewFunctionID()
	fn := b.StartFunction(id, "f", []values.Type{integer, integer}, integer, true)

	first := b.NewValue()
	b.Emit(ssa.NewBinOp(first, integer, ssa.Source{}, ssa.Add, fn.Params[0], fn.Params[1]))
	second := b.NewValue()
	b.Emit(ssa.NewBinOp(second, integer, ssa.Source{}, ssa.Add, fn.Params[0], fn.Params[1]))
	sum := b.NewValue()
	b.Emit(ssa.NewBinOp(sum, integer, ssa.Source{}, ssa.Add, first, second))
	b.Terminate(ssa.ReturnTerm{Value: sum, HasValue: true})
	b.FinishFunction()
	m := b.Finish()

	if !(CSE{}).Run(m) {
		t.Fatalf("expected a change")
	}
	blk := m.Functions[0].Blocks[0]
	if len(blk.Instr) != 2 {
		t.Fatalf("got %d instructions, want 2 (the duplicate add should be gone)", len(blk.Instr))
	}
	last := blk.Instr[len(blk.Instr)-1].(ssa.BinOpInstr)
	if last.Lhs != first || last.Rhs != first {
		t.Errorf("expected the final add's operands to both resolve to the first add's result, got lhs=%s rhs=%s", last.Lhs, last.Rhs)
	}
}

func TestCSEDoesNotDeduplicateCalls(t *testing.T) {
	b := ssa.NewBuilder()
	integer := values.Type{Name: "integer"}
	id := b.NewFunctionID()
	b.StartFunction(id, "f", nil, integer, true)

	callee := b.NewFunctionID()
	first := b.NewValue()
	b.Emit(ssa.NewCall(first, integer, ssa.Source{}, callee, "next", nil))
	second := b.NewValue()
	b.Emit(ssa.NewCall(second, integer, ssa.Source{}, callee, "next", nil))
	sum := b.NewValue()
	b.Emit(ssa.NewBinOp(sum, integer, ssa.Source{}, ssa.Add, first, second))
	b.Terminate(ssa.ReturnTerm{Value: sum, HasValue: true})
	b.FinishFunction()
	m := b.Finish()

	(CSE{}).Run(m)

	blk := m.Functions[0].Blocks[0]
	calls := 0
	for _, instr := range blk.Instr {
		if _, ok := instr.(ssa.CallInstr); ok {
			calls++
		}
	}
	if calls != 2 {
		t.Errorf("got %d calls, want 2: calls must never be CSE-ed", calls)
	}
}

func TestCSERemapsPhiIncoming(t *testing.T) {
	b := ssa.NewBuilder()
	integer := values.Type{Name: "integer"}
	boolean := values.Type{Name: "bool"}
	id := b.NewFunctionID()
	fn := b.StartFunction(id, "f", []values.Type{boolean, integer, integer}, integer, true)
	entry := fn.EntryBlock

	a, c := fn.Params[1], fn.Params[2]
	firstAdd := b.NewValue()
	b.Emit(ssa.NewBinOp(firstAdd, integer, ssa.Source{}, ssa.Add, a, c))

	thenBlk := b.NewBlock()
	secondAdd := b.NewValue()
	b.Emit(ssa.NewBinOp(secondAdd, integer, ssa.Source{}, ssa.Add, a, c))

	elseBlk := b.NewBlock()
	elseVal := b.NewValue()
	b.Emit(ssa.NewConst(elseVal, integer, ssa.Source{}, values.Integer(0)))

	joinBlk := b.NewBlock()
	phi := b.NewValue()
	b.Emit(ssa.NewPhi(phi, integer, ssa.Source{}, []ssa.PhiIncoming{
		{Value: secondAdd, Block: thenBlk},
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

	if !(CSE{}).Run(m) {
		t.Fatalf("expected a change")
	}
	joinBlkPtr, _ := m.Functions[0].Block(joinBlk)
	phiInstr := joinBlkPtr.Instr[0].(ssa.PhiInstr)
	if phiInstr.Incoming[0].Value != firstAdd {
		t.Errorf("expected the phi's then-incoming value to be remapped to the entry block's add, got %s", phiInstr.Incoming[0].Value)
	}
	thenBlkPtr, _ := m.Functions[0].Block(thenBlk)
	if len(thenBlkPtr.Instr) != 0 {
		t.Errorf("expected the redundant add in thenBlk to be removed, got %d instructions", len(thenBlkPtr.Instr))
	}
}
