// Package optimize implements Cadenza's SSA optimization pipeline,
// grounded on spec.md §4.10: a small set of passes, each reporting
// whether it changed anything, run to a fixed point.
package optimize

import "github.com/gmofishsauce/cadenza/internal/ssa"

// Pass is one optimization pass over a module.
type Pass interface {
	// Run mutates m in place and reports whether it changed anything.
	Run(m *ssa.Module) bool
}

// MaxIterations caps the fixed-point loop so a pathological or buggy
// pass that never settles can't hang the pipeline forever.
const MaxIterations = 32

// DefaultPipeline is constant folding -> DCE -> CSE, spec.md §4.10's
// stated default order.
func DefaultPipeline() []Pass {
	return []Pass{ConstantFold{}, DeadCodeElim{}, CSE{}}
}

// Run executes passes in order repeatedly until a full round changes
// nothing, or MaxIterations rounds have run.
func Run(m *ssa.Module, passes []Pass) {
	for i := 0; i < MaxIterations; i++ {
		changed := false
		for _, p := range passes {
			if p.Run(m) {
				changed = true
			}
		}
		if !changed {
			return
		}
	}
}
