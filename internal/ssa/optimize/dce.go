package optimize

import "github.com/gmofishsauce/cadenza/internal/ssa"

// DeadCodeElim removes instructions whose result is never used, per
// spec.md §4.10. Usage starts from terminator operands and every Call
// argument (calls are kept for their side effects regardless of whether
// their result is used), then propagates transitively through operands,
// including Phi incoming values reaching across predecessors.
type DeadCodeElim struct{}

func (DeadCodeElim) Run(m *ssa.Module) bool {
	changed := false
	for _, fn := range m.Functions {
		if dceFunction(fn) {
			changed = true
		}
	}
	return changed
}

func dceFunction(fn *ssa.Function) bool {
	used := usedValues(fn)

	changed := false
	for _, blk := range fn.Blocks {
		kept := blk.Instr[:0]
		for _, instr := range blk.Instr {
			if call, ok := instr.(ssa.CallInstr); ok {
				kept = append(kept, call)
				continue
			}
			id, hasResult := instr.Result()
			if hasResult && !used[id] {
				changed = true
				continue
			}
			kept = append(kept, instr)
		}
		blk.Instr = kept
	}
	return changed
}

// usedValues computes the set of value ids consumed by something with an
// observable effect: terminators, Call arguments, and (transitively)
// anything those consumed values themselves depend on.
func usedValues(fn *ssa.Function) map[ssa.ValueID]bool {
	used := make(map[ssa.ValueID]bool)
	var worklist []ssa.ValueID

	mark := func(id ssa.ValueID) {
		if !used[id] {
			used[id] = true
			worklist = append(worklist, id)
		}
	}

	for _, blk := range fn.Blocks {
		switch term := blk.Term.(type) {
		case ssa.BranchTerm:
			mark(term.Cond)
		case ssa.ReturnTerm:
			if term.HasValue {
				mark(term.Value)
			}
		}
		for _, instr := range blk.Instr {
			if call, ok := instr.(ssa.CallInstr); ok {
				for _, a := range call.Args {
					mark(a)
				}
			}
		}
	}

	instrByResult := make(map[ssa.ValueID]ssa.Instruction)
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instr {
			if id, ok := instr.Result(); ok {
				instrByResult[id] = instr
			}
		}
	}

	for len(worklist) > 0 {
		id := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		instr, ok := instrByResult[id]
		if !ok {
			continue
		}
		for _, dep := range operandsOf(instr) {
			mark(dep)
		}
	}

	return used
}

// operandsOf returns the value ids an instruction reads.
func operandsOf(instr ssa.Instruction) []ssa.ValueID {
	switch in := instr.(type) {
	case ssa.BinOpInstr:
		return []ssa.ValueID{in.Lhs, in.Rhs}
	case ssa.UnOpInstr:
		return []ssa.ValueID{in.Operand}
	case ssa.CallInstr:
		return append([]ssa.ValueID(nil), in.Args...)
	case ssa.RecordInstr:
		return append([]ssa.ValueID(nil), in.Values...)
	case ssa.FieldInstr:
		return []ssa.ValueID{in.Record}
	case ssa.TupleInstr:
		return append([]ssa.ValueID(nil), in.Elements...)
	case ssa.PhiInstr:
		ids := make([]ssa.ValueID, len(in.Incoming))
		for i, inc := range in.Incoming {
			ids[i] = inc.Value
		}
		return ids
	default:
		return nil
	}
}
