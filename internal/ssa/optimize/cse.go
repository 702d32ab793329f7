package optimize

import (
	"fmt"

	"github.com/gmofishsauce/cadenza/internal/ssa"
)

// CSE eliminates redundant computations within a function, per spec.md
// §4.10: pure instructions (BinOp, UnOp, Field) are hashed by a
// structural key, and a later instruction with a key already seen is
// replaced by the earlier result everywhere it's used (later operands,
// Phi incoming, and terminators). Call is never eliminated, since it may
// have side effects the pipeline has no way to reason about.
type CSE struct{}

func (CSE) Run(m *ssa.Module) bool {
	changed := false
	for _, fn := range m.Functions {
		if cseFunction(fn) {
			changed = true
		}
	}
	return changed
}

func cseFunction(fn *ssa.Function) bool {
	changed := false
	repl := make(map[ssa.ValueID]ssa.ValueID)
	seen := make(map[string]ssa.ValueID)

	resolve := func(id ssa.ValueID) ssa.ValueID {
		for {
			next, ok := repl[id]
			if !ok {
				return id
			}
			id = next
		}
	}

	for _, blk := range fn.Blocks {
		kept := blk.Instr[:0]
		for _, instr := range blk.Instr {
			instr = remapOperands(instr, resolve)

			key, isPure := structuralKey(instr)
			if isPure {
				if existing, ok := seen[key]; ok {
					id, _ := instr.Result()
					repl[id] = existing
					changed = true
					continue
				}
				id, _ := instr.Result()
				seen[key] = id
			}
			kept = append(kept, instr)
		}
		blk.Instr = kept

		if remapped, did := remapTerminator(blk.Term, resolve); did {
			blk.Term = remapped
			changed = true
		}
	}

	return changed
}

// remapOperands rewrites instr's operands through resolve, returning a
// new instruction value (instructions are immutable value types here).
func remapOperands(instr ssa.Instruction, resolve func(ssa.ValueID) ssa.ValueID) ssa.Instruction {
	switch in := instr.(type) {
	case ssa.BinOpInstr:
		return in.WithOperands(resolve(in.Lhs), resolve(in.Rhs))
	case ssa.UnOpInstr:
		return in.WithOperand(resolve(in.Operand))
	case ssa.CallInstr:
		args := make([]ssa.ValueID, len(in.Args))
		for i, a := range in.Args {
			args[i] = resolve(a)
		}
		return in.WithArgs(args)
	case ssa.RecordInstr:
		vals := make([]ssa.ValueID, len(in.Values))
		for i, v := range in.Values {
			vals[i] = resolve(v)
		}
		return in.WithValues(vals)
	case ssa.FieldInstr:
		return in.WithRecord(resolve(in.Record))
	case ssa.TupleInstr:
		elems := make([]ssa.ValueID, len(in.Elements))
		for i, e := range in.Elements {
			elems[i] = resolve(e)
		}
		return in.WithElements(elems)
	case ssa.PhiInstr:
		incoming := make([]ssa.PhiIncoming, len(in.Incoming))
		for i, inc := range in.Incoming {
			incoming[i] = ssa.PhiIncoming{Value: resolve(inc.Value), Block: inc.Block}
		}
		return in.WithIncoming(incoming)
	default:
		return instr
	}
}

func remapTerminator(term ssa.Terminator, resolve func(ssa.ValueID) ssa.ValueID) (ssa.Terminator, bool) {
	switch t := term.(type) {
	case ssa.BranchTerm:
		cond := resolve(t.Cond)
		if cond == t.Cond {
			return term, false
		}
		return t.WithCond(cond), true
	case ssa.ReturnTerm:
		if !t.HasValue {
			return term, false
		}
		v := resolve(t.Value)
		if v == t.Value {
			return term, false
		}
		return t.WithValue(v), true
	default:
		return term, false
	}
}

// structuralKey returns a hashable key for instructions CSE may dedupe,
// and whether instr is eligible at all.
func structuralKey(instr ssa.Instruction) (string, bool) {
	switch in := instr.(type) {
	case ssa.BinOpInstr:
		return fmt.Sprintf("binop:%s:%d:%d", in.Op, in.Lhs, in.Rhs), true
	case ssa.UnOpInstr:
		return fmt.Sprintf("unop:%s:%d", in.Op, in.Operand), true
	case ssa.FieldInstr:
		return fmt.Sprintf("field:%d:%d", in.Record, uint32(in.Field)), true
	default:
		return "", false
	}
}
