package optimize

import (
	"testing"

	"github.com/gmofishsauce/cadenza/internal/ssa"
	"github.com/gmofishsauce/cadenza/internal/values"
)

// TestDefaultPipelineFoldsDedupesAndPrunes builds a function computing
// (1+2) + (1+2), where both additions are constant and identical, and
// expects the default pipeline to collapse it down to a single constant.
func TestDefaultPipelineFoldsDedupesAndPrunes(t *testing.T) {
	b := ssa.NewBuilder()
	integer := values.Type{Name: "integer"}
	id := b.NewFunctionID()
	b.StartFunction(id, "f", nil, integer, true)

	one := b.NewValue()
	b.Emit(ssa.NewConst(one, integer, ssa.Source{}, values.Integer(1)))
	two := b.NewValue()
	b.Emit(ssa.NewConst(two, integer, ssa.Source{}, values.Integer(2)))

	firstSum := b.NewValue()
	b.Emit(ssa.NewBinOp(firstSum, integer, ssa.Source{}, ssa.Add, one, two))
	secondSum := b.NewValue()
	b.Emit(ssa.NewBinOp(secondSum, integer, ssa.Source{}, ssa.Add, one, two))
	total := b.NewValue()
	b.Emit(ssa.NewBinOp(total, integer, ssa.Source{}, ssa.Add, firstSum, secondSum))
	b.Terminate(ssa.ReturnTerm{Value: total, HasValue: true})
	b.FinishFunction()
	m := b.Finish()

	Run(m, DefaultPipeline())

	blk := m.Functions[0].Blocks[0]
	last := blk.Instr[len(blk.Instr)-1]
	c, ok := last.(ssa.ConstInstr)
	if !ok {
		t.Fatalf("expected the whole computation to fold to a constant, got %#v", last)
	}
	if c.Value != values.Integer(6) {
		t.Errorf("got %v, want 6", c.Value)
	}
}

func TestRunStopsAtFixedPoint(t *testing.T) {
	b := ssa.NewBuilder()
	integer := values.Type{Name: "integer"}
	id := b.NewFunctionID()
	b.StartFunction(id, "f", nil, integer, true)
	v := b.NewValue()
	b.Emit(ssa.NewConst(v, integer, ssa.Source{}, values.Integer(42)))
	b.Terminate(ssa.ReturnTerm{Value: v, HasValue: true})
	b.FinishFunction()
	m := b.Finish()

	// Already at a fixed point: nothing should panic or loop forever, and
	// the module should come back byte-identical in its Display form.
	before := m.Display()
	Run(m, DefaultPipeline())
	if after := m.Display(); before != after {
		t.Errorf("expected an already-optimal module to be unchanged:\nbefore:\n%s\nafter:\n%s", before, after)
	}
}
