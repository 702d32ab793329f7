package optimize

import (
	"math"

	"github.com/gmofishsauce/cadenza/internal/ssa"
	"github.com/gmofishsauce/cadenza/internal/values"
)

// ConstantFold folds BinOp/UnOp instructions whose operands are both
// known constants, per spec.md §4.10: integer arithmetic wraps, division
// and remainder by zero are left unfolded (the runtime reports that
// error, not the optimizer), shifts out of [0,64) are left unfolded,
// float equality compares bit patterns, float ordering follows IEEE
// semantics (so NaN compares false everywhere), and boolean and/or only
// fold when both operands are Bool. The instruction's declared type is
// never changed by folding, only its defining instruction.
type ConstantFold struct{}

func (ConstantFold) Run(m *ssa.Module) bool {
	changed := false
	for _, fn := range m.Functions {
		if foldFunction(fn) {
			changed = true
		}
	}
	return changed
}

func foldFunction(fn *ssa.Function) bool {
	changed := false
	consts := make(map[ssa.ValueID]values.Value)

	for _, blk := range fn.Blocks {
		for i, instr := range blk.Instr {
			if c, ok := instr.(ssa.ConstInstr); ok {
				consts[c.ID] = c.Value
				continue
			}
			if folded, ok := tryFold(instr, consts); ok {
				blk.Instr[i] = folded
				id, _ := folded.Result()
				consts[id] = folded.Value
				changed = true
			}
		}
	}
	return changed
}

func tryFold(instr ssa.Instruction, consts map[ssa.ValueID]values.Value) (ssa.ConstInstr, bool) {
	switch in := instr.(type) {
	case ssa.BinOpInstr:
		lhs, lok := consts[in.Lhs]
		rhs, rok := consts[in.Rhs]
		if !lok || !rok {
			return ssa.ConstInstr{}, false
		}
		result, ok := foldBinOp(in.Op, lhs, rhs)
		if !ok {
			return ssa.ConstInstr{}, false
		}
		return ssa.NewConst(in.ID, in.Ty, in.Src, result), true
	case ssa.UnOpInstr:
		operand, ok := consts[in.Operand]
		if !ok {
			return ssa.ConstInstr{}, false
		}
		result, ok := foldUnOp(in.Op, operand)
		if !ok {
			return ssa.ConstInstr{}, false
		}
		return ssa.NewConst(in.ID, in.Ty, in.Src, result), true
	default:
		return ssa.ConstInstr{}, false
	}
}

func asFloat(v values.Value) (float64, bool) {
	switch n := v.(type) {
	case values.Integer:
		return float64(n), true
	case values.Float:
		return float64(n), true
	default:
		return 0, false
	}
}

func foldBinOp(op ssa.BinOpKind, lhs, rhs values.Value) (values.Value, bool) {
	li, lIsInt := lhs.(values.Integer)
	ri, rIsInt := rhs.(values.Integer)
	if lIsInt && rIsInt {
		if v, ok := foldIntBinOp(op, int64(li), int64(ri)); ok {
			return v, true
		}
	}

	if lb, ok := lhs.(values.Bool); ok {
		if rb, ok := rhs.(values.Bool); ok {
			switch op {
			case ssa.And:
				return values.Bool(bool(lb) && bool(rb)), true
			case ssa.Or:
				return values.Bool(bool(lb) || bool(rb)), true
			case ssa.Eq:
				return values.Bool(lb == rb), true
			case ssa.Ne:
				return values.Bool(lb != rb), true
			}
		}
		return nil, false
	}

	lf, lok := asFloat(lhs)
	rf, rok := asFloat(rhs)
	if lok && rok {
		return foldFloatBinOp(op, lf, rf)
	}
	return nil, false
}

func foldIntBinOp(op ssa.BinOpKind, l, r int64) (values.Value, bool) {
	switch op {
	case ssa.Add:
		return values.Integer(l + r), true
	case ssa.Sub:
		return values.Integer(l - r), true
	case ssa.Mul:
		return values.Integer(l * r), true
	case ssa.Div:
		if r == 0 {
			return nil, false
		}
		return values.Integer(l / r), true
	case ssa.Rem:
		if r == 0 {
			return nil, false
		}
		return values.Integer(l % r), true
	case ssa.Eq:
		return values.Bool(l == r), true
	case ssa.Ne:
		return values.Bool(l != r), true
	case ssa.Lt:
		return values.Bool(l < r), true
	case ssa.Le:
		return values.Bool(l <= r), true
	case ssa.Gt:
		return values.Bool(l > r), true
	case ssa.Ge:
		return values.Bool(l >= r), true
	case ssa.BitAnd:
		return values.Integer(l & r), true
	case ssa.BitOr:
		return values.Integer(l | r), true
	case ssa.BitXor:
		return values.Integer(l ^ r), true
	case ssa.Shl:
		if r < 0 || r >= 64 {
			return nil, false
		}
		return values.Integer(l << uint(r)), true
	case ssa.Shr:
		if r < 0 || r >= 64 {
			return nil, false
		}
		return values.Integer(l >> uint(r)), true
	default:
		return nil, false
	}
}

func foldFloatBinOp(op ssa.BinOpKind, l, r float64) (values.Value, bool) {
	switch op {
	case ssa.Add:
		return values.Float(l + r), true
	case ssa.Sub:
		return values.Float(l - r), true
	case ssa.Mul:
		return values.Float(l * r), true
	case ssa.Div:
		return values.Float(l / r), true
	case ssa.Eq:
		return values.Bool(math.Float64bits(l) == math.Float64bits(r)), true
	case ssa.Ne:
		return values.Bool(math.Float64bits(l) != math.Float64bits(r)), true
	case ssa.Lt:
		return values.Bool(l < r), true
	case ssa.Le:
		return values.Bool(l <= r), true
	case ssa.Gt:
		return values.Bool(l > r), true
	case ssa.Ge:
		return values.Bool(l >= r), true
	default:
		return nil, false
	}
}

func foldUnOp(op ssa.UnOpKind, operand values.Value) (values.Value, bool) {
	switch op {
	case ssa.Neg:
		switch n := operand.(type) {
		case values.Integer:
			return values.Integer(-n), true
		case values.Float:
			return values.Float(-n), true
		}
	case ssa.Not:
		if b, ok := operand.(values.Bool); ok {
			return values.Bool(!b), true
		}
	case ssa.BitNot:
		if n, ok := operand.(values.Integer); ok {
			return values.Integer(^n), true
		}
	}
	return nil, false
}
