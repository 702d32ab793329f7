package metacompiler

// Block is a straight-line sequence of evaluation steps — the
// decision-tree unit codegen.rs's generate_block/generate_step walk.
// Grounded on spec.md §4.12's description of the tree shape
// (original_source/crates/cadenza-meta/src/tree.rs, which would define
// this type, is not present in the retrieved source; this shape is
// reconstructed from codegen.rs's generate_block/generate_step/
// generate_control_flow, which consume exactly this structure).
type Block struct {
	Steps []*EvalStep
}

// EvalStep is one node of a Block: a set of bindings safe to compute at
// this point, followed by a control-flow action.
type EvalStep struct {
	LetBindings []BindingID
	Control     ControlFlow
}

// ControlFlow is a step's control-flow payload.
type ControlFlow interface{ isControlFlow() }

// CheckConstraintFlow evaluates Constraint against Source and, if it
// holds, runs Body.
type CheckConstraintFlow struct {
	Source     BindingID
	Constraint Constraint
	Body       *Block
}

// ReturnFlow evaluates Result and returns it from the enclosing query
// function.
type ReturnFlow struct {
	Result CompiledExpr
}

func (CheckConstraintFlow) isControlFlow() {}
func (ReturnFlow) isControlFlow()          {}

// BuildDecisionTree compiles a query's rules, tried in order, into one
// top-level Block: each rule becomes a chain of CheckConstraintFlow
// steps — one per constraint the rule's pattern produced, nested in
// the order pattern compilation discovered them — ending in a
// ReturnFlow. A rule whose pattern has no constraints (a bare
// Wildcard/Capture) becomes a single unconditional ReturnFlow step;
// since steps run top to bottom and a ReturnFlow always exits the
// function, such a rule makes every rule after it in the same query
// unreachable, matching ordinary first-match-wins pattern semantics.
func BuildDecisionTree(rules []CompiledRule) *Block {
	top := &Block{}
	for _, rule := range rules {
		top.Steps = append(top.Steps, buildRuleChain(rule))
	}
	return top
}

func buildRuleChain(rule CompiledRule) *EvalStep {
	// Bindings introduced after constraint i are only safe once it holds,
	// so they are emitted by the step nested inside its body: the step for
	// constraint i+1, or the final ReturnFlow step.
	n := len(rule.Constraints)
	body := &Block{Steps: []*EvalStep{{LetBindings: rule.StepBindings[n-1], Control: ReturnFlow{Result: rule.Result}}}}
	for i := n - 1; i >= 0; i-- {
		c := rule.Constraints[i]
		step := &EvalStep{
			LetBindings: rule.StepBindings[i-1],
			Control: CheckConstraintFlow{
				Source:     c.Source,
				Constraint: c.Constraint,
				Body:       body,
			},
		}
		body = &Block{Steps: []*EvalStep{step}}
	}
	return body.Steps[0]
}
