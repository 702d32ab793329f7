package types

import "github.com/gmofishsauce/cadenza/internal/intern"

// NewStandardTypeEnv seeds a TypeEnv with the arithmetic/comparison
// operators' signatures, matching typeinfer.rs's infer_op comment that a
// well-typed inferencer needs "+", "-", etc. registered with their real
// Fn type rather than falling back to an unconstrained fresh variable on
// every use. This is a deliberate simplification over the runtime's own
// arithmetic (see internal/eval/arithmetic.go), which also accepts
// Float/Quantity operands and promotes between them: the inference layer
// only has to produce a USEFUL static type for typeof/LSP-style queries,
// it is never consulted to decide what a program is allowed to evaluate.
func NewStandardTypeEnv() *TypeEnv {
	te := NewTypeEnv()
	integer := Concrete{Name: "integer"}
	boolean := Concrete{Name: "bool"}

	arith := Fn{Args: []InferType{integer, integer}, Ret: integer}
	for _, name := range []string{"+", "-", "*", "/"} {
		te.Insert(intern.Global().Intern(name), arith)
	}

	compare := Fn{Args: []InferType{integer, integer}, Ret: boolean}
	for _, name := range []string{"==", "!=", "<", "<=", ">", ">="} {
		te.Insert(intern.Global().Intern(name), compare)
	}

	te.Insert(intern.Global().Intern("true"), boolean)
	te.Insert(intern.Global().Intern("false"), boolean)
	te.Insert(intern.Global().Intern("nil"), Concrete{Name: "nil"})

	return te
}
