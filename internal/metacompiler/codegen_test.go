package metacompiler

import (
	"strings"
	"testing"
)

// classifyQuery mirrors original_source's own codegen.rs tests
// (test_generate_simple_query, test_generate_apply_pattern): one rule
// matching an Apply("add", [a, b]) shape, one wildcard fallback.
func classifyQuery() Query {
	return Query{
		Name:   "classify",
		Input:  ValueType(),
		Output: StringType(),
		Rules: []Rule{
			NewRule(
				Apply(SymbolLit("add"), Capture("a"), Capture("b")),
				ConstVal(StrValue("binary-add")),
			),
			NewRule(Wildcard(), ConstVal(StrValue("other"))),
		},
	}
}

func TestCompileRuleAppliesBindingsAndConstraints(t *testing.T) {
	rules := classifyQuery().Rules
	compiled := CompileRule(rules[0])

	if len(compiled.Constraints) == 0 {
		t.Fatal("expected at least one constraint from an Apply pattern")
	}
	foundApply, foundArgs := false, false
	for _, rc := range compiled.Constraints {
		switch rc.Constraint.(type) {
		case IsApplyConstraint:
			foundApply = true
		case ArgsLengthConstraint:
			foundArgs = true
		}
	}
	if !foundApply {
		t.Error("expected an IsApplyConstraint")
	}
	if !foundArgs {
		t.Error("expected an ArgsLengthConstraint for a 2-arg Apply pattern")
	}
	if _, ok := compiled.Result.(ConstCompiledExpr); !ok {
		t.Errorf("expected a ConstCompiledExpr result, got %T", compiled.Result)
	}
}

func TestCompileRuleWildcardHasNoConstraints(t *testing.T) {
	rules := classifyQuery().Rules
	compiled := CompileRule(rules[1])
	if len(compiled.Constraints) != 0 {
		t.Errorf("wildcard pattern should produce no constraints, got %d", len(compiled.Constraints))
	}
}

func TestBuildDecisionTreeOneStepPerRule(t *testing.T) {
	q := classifyQuery()
	compiled := make([]CompiledRule, len(q.Rules))
	for i, r := range q.Rules {
		compiled[i] = CompileRule(r)
	}
	tree := BuildDecisionTree(compiled)
	if len(tree.Steps) != len(q.Rules) {
		t.Fatalf("expected %d top-level steps, got %d", len(q.Rules), len(tree.Steps))
	}
	if _, ok := tree.Steps[1].Control.(ReturnFlow); !ok {
		t.Errorf("wildcard rule's step should be an unconditional ReturnFlow, got %T", tree.Steps[1].Control)
	}
}

func TestCompileEmitsGoSourceForEachQuery(t *testing.T) {
	s := NewSemantics().AddQuery(classifyQuery())
	out, err := Compile(s)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}

	wantSubstrings := []string{
		"func classify(db Database, input Value) string {",
		"if apply, ok := input.(*Apply); ok {",
		"len(args) == 2",
		`return "binary-add"`,
		`return "other"`,
	}
	for _, want := range wantSubstrings {
		if !strings.Contains(out, want) {
			t.Errorf("generated source missing %q\n--- full output ---\n%s", want, out)
		}
	}
}

func TestCompileExternalQueryEmitsPanic(t *testing.T) {
	s := NewSemantics().AddQuery(Query{
		Name:     "hostProvided",
		Input:    ValueType(),
		Output:   BoolType(),
		External: true,
	})
	out, err := Compile(s)
	if err != nil {
		t.Fatalf("Compile returned error: %v", err)
	}
	if !strings.Contains(out, "func hostProvided(db Database, input Value) bool {") {
		t.Errorf("missing external query signature:\n%s", out)
	}
	if !strings.Contains(out, "panic(") {
		t.Errorf("expected external query body to panic, got:\n%s", out)
	}
}
