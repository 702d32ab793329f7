package main

import (
	"fmt"
	"strconv"

	"github.com/gmofishsauce/cadenza"
	"github.com/gmofishsauce/cadenza/internal/ast"
	"github.com/gmofishsauce/cadenza/internal/config"
	"github.com/gmofishsauce/cadenza/internal/ssa"
	"github.com/gmofishsauce/cadenza/internal/syntaxkind"
	"github.com/gmofishsauce/cadenza/internal/values"
)

// lowerTopLevelModule builds one straight-line WASM-eligible function,
// "main", evaluating every top-level statement of parsed in order and
// returning the last one's value. This is deliberately the "trivial
// single-block straight-line lowering for top-level numeric expressions"
// SPEC_FULL.md §6.8/§9 calls for: only integer/float literals and
// arithmetic binary operators lower; anything else (let, fn, control
// flow, non-numeric values) is reported as an unsupported shape, matching
// internal/wasmgen's own straight-line-only restriction one layer up.
func lowerTopLevelModule(b *ssa.Builder, parsed *cadenza.Parse, proj *config.Project) (*ssa.Module, error) {
	stmts := parsed.Statements()
	if len(stmts) == 0 {
		return nil, fmt.Errorf("no top-level statements to lower")
	}

	fnID := b.NewFunctionID()
	b.StartFunction(fnID, "main", nil, values.Type{Name: "integer"}, true)

	var last ssa.ValueID
	for _, stmt := range stmts {
		v, err := lowerExpr(b, stmt)
		if err != nil {
			return nil, err
		}
		last = v
	}
	b.Terminate(ssa.ReturnTerm{Value: last, HasValue: true})
	b.FinishFunction()

	if proj.AllowsExport("main") {
		b.Export("main", fnID)
	}
	return b.Finish(), nil
}

func lowerExpr(b *ssa.Builder, e ast.Expr) (ssa.ValueID, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return lowerLiteral(b, n)
	case *ast.Apply:
		return lowerApply(b, n)
	default:
		return 0, fmt.Errorf("cadenza: wasm lowering does not support %T expressions", e)
	}
}

func lowerLiteral(b *ssa.Builder, l *ast.Literal) (ssa.ValueID, error) {
	switch l.Kind() {
	case syntaxkind.Integer:
		n, err := strconv.ParseInt(l.Text(), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cadenza: invalid integer literal %q: %w", l.Text(), err)
		}
		id := b.NewValue()
		b.Emit(ssa.NewConst(id, values.Type{Name: "integer"}, ssa.Source{}, values.Integer(n)))
		return id, nil
	case syntaxkind.Float:
		f, err := strconv.ParseFloat(l.Text(), 64)
		if err != nil {
			return 0, fmt.Errorf("cadenza: invalid float literal %q: %w", l.Text(), err)
		}
		id := b.NewValue()
		b.Emit(ssa.NewConst(id, values.Type{Name: "float"}, ssa.Source{}, values.Float(f)))
		return id, nil
	default:
		return 0, fmt.Errorf("cadenza: wasm lowering only supports integer/float literals, got %s", l.Kind())
	}
}

func lowerApply(b *ssa.Builder, a *ast.Apply) (ssa.ValueID, error) {
	recv, ok := a.Receiver()
	if !ok {
		return 0, fmt.Errorf("cadenza: wasm lowering: apply with no receiver")
	}
	op, ok := recv.(*ast.Op)
	if !ok {
		return 0, fmt.Errorf("cadenza: wasm lowering only supports arithmetic operator applies, got receiver %T", recv)
	}
	args := a.Arguments()
	if len(args) != 2 {
		return 0, fmt.Errorf("cadenza: wasm lowering only supports binary operators, got %d operands for %q", len(args), op.Symbol())
	}
	kind, ty, err := binOpFor(op.Symbol())
	if err != nil {
		return 0, err
	}
	lhs, err := lowerExpr(b, args[0])
	if err != nil {
		return 0, err
	}
	rhs, err := lowerExpr(b, args[1])
	if err != nil {
		return 0, err
	}
	id := b.NewValue()
	b.Emit(ssa.NewBinOp(id, ty, ssa.Source{}, kind, lhs, rhs))
	return id, nil
}

func binOpFor(symbol string) (ssa.BinOpKind, values.Type, error) {
	switch symbol {
	case "+":
		return ssa.Add, values.Type{Name: "integer"}, nil
	case "-":
		return ssa.Sub, values.Type{Name: "integer"}, nil
	case "*":
		return ssa.Mul, values.Type{Name: "integer"}, nil
	case "/":
		return ssa.Div, values.Type{Name: "integer"}, nil
	case "%":
		return ssa.Rem, values.Type{Name: "integer"}, nil
	default:
		return 0, values.Type{}, fmt.Errorf("cadenza: wasm lowering does not support operator %q", symbol)
	}
}
