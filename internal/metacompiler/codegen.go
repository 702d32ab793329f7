package metacompiler

import (
	"fmt"
	"strings"
)

// Compile generates a Go source string implementing semantics: one
// function per Query (an external Query's body only panics), following
// original_source/crates/cadenza-meta/src/codegen.rs's generate/
// generate_query/generate_block/generate_step/generate_control_flow
// pipeline, retargeted from Rust (via `quote!`) to Go source text built
// with strings.Builder, in the manual-construction style of
// `lang/yasm/output.go` rather than text/template — the output here is
// a sequence of syntax fragments assembled by straight-line Go code,
// the same shape as that file's sequential byte writes.
func Compile(s *Semantics) (string, error) {
	var out strings.Builder
	out.WriteString("// Code generated by internal/metacompiler. DO NOT EDIT.\n\n")
	for _, q := range s.Queries {
		fn, err := generateQuery(q)
		if err != nil {
			return "", fmt.Errorf("metacompiler: query %q: %w", q.Name, err)
		}
		out.WriteString(fn)
		out.WriteString("\n")
	}
	return out.String(), nil
}

func generateQuery(q Query) (string, error) {
	var out strings.Builder
	fmt.Fprintf(&out, "func %s(db Database, input %s) %s {\n", q.Name, q.Input, q.Output)
	if q.External {
		out.WriteString("\tpanic(\"external query must be implemented by the host\")\n")
		out.WriteString("}\n")
		return out.String(), nil
	}

	// Each rule's decision-tree chain is generated against that rule's
	// own Bindings/StepBindings only: BindingID numbering restarts at 0
	// (InputBinding) within every CompiledRule, so two different rules'
	// chains must never share one "emitted" set or one binding lookup —
	// doing so would let rule B's binding_1 silently resolve to rule A's
	// binding_1 statement whenever both happen to introduce one. This is
	// why generateQuery builds one rule's chain at a time via
	// buildRuleChain rather than handing the whole query's BuildDecisionTree
	// result to a single shared generateBlock pass.
	for _, r := range q.Rules {
		rule := CompileRule(r)
		chain := buildRuleChain(rule)
		emitted := map[BindingID]bool{0: true}
		out.WriteString(generateStep(chain, rule, emitted, 1))
	}
	out.WriteString("}\n")
	return out.String(), nil
}

func indentStr(depth int) string { return strings.Repeat("\t", depth) }

func generateBlock(block *Block, rule CompiledRule, emitted map[BindingID]bool, depth int) string {
	var out strings.Builder
	for _, step := range block.Steps {
		out.WriteString(generateStep(step, rule, emitted, depth))
	}
	return out.String()
}

func generateStep(step *EvalStep, rule CompiledRule, emitted map[BindingID]bool, depth int) string {
	var out strings.Builder
	for _, id := range step.LetBindings {
		if emitted[id] {
			continue
		}
		if int(id) < len(rule.Bindings) {
			out.WriteString(indentStr(depth))
			out.WriteString(generateBindingStatement(id, rule.Bindings[id]))
			out.WriteString("\n")
			emitted[id] = true
		}
	}
	out.WriteString(generateControlFlow(step.Control, rule, emitted, depth))
	return out.String()
}

func generateControlFlow(control ControlFlow, rule CompiledRule, emitted map[BindingID]bool, depth int) string {
	switch cf := control.(type) {
	case CheckConstraintFlow:
		return generateCheckConstraint(cf, rule, emitted, depth)
	case ReturnFlow:
		return fmt.Sprintf("%sreturn %s\n", indentStr(depth), generateCompiledExpr(cf.Result))
	default:
		return fmt.Sprintf("%spanic(\"metacompiler: unhandled control flow\")\n", indentStr(depth))
	}
}

func generateCheckConstraint(cf CheckConstraintFlow, rule CompiledRule, emitted map[BindingID]bool, depth int) string {
	var out strings.Builder

	if _, ok := cf.Constraint.(IsApplyConstraint); ok {
		sourceExpr := bindingRef(cf.Source)
		fmt.Fprintf(&out, "%sif apply, ok := %s.(*Apply); ok {\n", indentStr(depth), sourceExpr)
		fmt.Fprintf(&out, "%s\tcallee, args := apply.Callee, apply.Args\n", indentStr(depth))
		fmt.Fprintf(&out, "%s\t_, _ = callee, args\n", indentStr(depth))
		out.WriteString(generateBlock(cf.Body, rule, emitted, depth+1))
		fmt.Fprintf(&out, "%s}\n", indentStr(depth))
		return out.String()
	}

	check := generateConstraintCheck(cf.Source, cf.Constraint)
	fmt.Fprintf(&out, "%sif %s {\n", indentStr(depth), check)
	out.WriteString(generateBlock(cf.Body, rule, emitted, depth+1))
	fmt.Fprintf(&out, "%s}\n", indentStr(depth))
	return out.String()
}

func bindingRef(id BindingID) string {
	if id == 0 {
		return "input"
	}
	return id.String()
}

func generateConstraintCheck(source BindingID, constraint Constraint) string {
	expr := bindingRef(source)
	switch c := constraint.(type) {
	case IsIntegerConstraint:
		return fmt.Sprintf("isInteger(%s)", expr)
	case IsSymbolConstraint:
		return fmt.Sprintf("isSymbolNamed(%s, %q)", expr, c.Name)
	case IsTupleConstraint:
		return fmt.Sprintf("isTupleOfSize(%s, %d)", expr, c.Size)
	case ConstIntConstraint:
		return fmt.Sprintf("isIntegerEqualTo(%s, %d)", expr, c.Value)
	case ConstBoolConstraint:
		return fmt.Sprintf("isBoolEqualTo(%s, %t)", expr, c.Value)
	case ConstStringConstraint:
		return fmt.Sprintf("isStringEqualTo(%s, %q)", expr, c.Value)
	case ArgsLengthConstraint:
		return fmt.Sprintf("len(args) == %d", c.Len)
	default:
		return "false /* unsupported constraint */"
	}
}

func generateCompiledExpr(expr CompiledExpr) string {
	switch e := expr.(type) {
	case BindingExpr:
		return bindingRef(e.ID)
	case ConstCompiledExpr:
		return generateValue(e.Value)
	case CallCompiledExpr:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = generateCompiledExpr(a)
		}
		return fmt.Sprintf("%s(db, %s)", e.Query, strings.Join(args, ", "))
	case ConstructCompiledExpr:
		fields := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			fields[i] = generateCompiledExpr(f)
		}
		return fmt.Sprintf("%s{%s}", e.Constructor, strings.Join(fields, ", "))
	case LetCompiledExpr:
		var b strings.Builder
		b.WriteString("func() any {\n")
		for _, bind := range e.Bindings {
			fmt.Fprintf(&b, "\t\t%s := %s\n", bind.Name, generateCompiledExpr(bind.Value))
		}
		fmt.Fprintf(&b, "\t\treturn %s\n\t}()", generateCompiledExpr(e.Body))
		return b.String()
	case OkCompiledExpr:
		return fmt.Sprintf("%s, nil", generateCompiledExpr(e.Inner))
	default:
		return "nil /* unsupported expr */"
	}
}

func generateValue(v Value) string {
	switch v.Kind {
	case ValueInteger:
		return fmt.Sprintf("%d", v.Int)
	case ValueBool:
		return fmt.Sprintf("%t", v.Bool)
	case ValueString:
		return fmt.Sprintf("%q", v.Str)
	case ValueSymbol:
		return fmt.Sprintf("Symbol(%q)", v.Str)
	case ValueTypeLit:
		return fmt.Sprintf("%s", v.Ty)
	case ValueError:
		return "errSentinel"
	default:
		return "nil"
	}
}

func generateBindingStatement(id BindingID, binding Binding) string {
	name := id.String()
	switch b := binding.(type) {
	case InputBinding:
		return fmt.Sprintf("%s := input", name)
	case CapturedBinding:
		return fmt.Sprintf("_ = %s // captured as %s by pattern match", name, b.Name)
	case ExtractBinding:
		return generateExtractStatement(name, b)
	case ConstantBinding:
		return fmt.Sprintf("%s := %s", name, generateValue(b.Value))
	case QueryCallBinding:
		args := make([]string, len(b.Args))
		for i, a := range b.Args {
			args[i] = bindingRef(a)
		}
		return fmt.Sprintf("%s := %s(db, %s)", name, b.Query, strings.Join(args, ", "))
	default:
		return fmt.Sprintf("_ = %s // unsupported binding", name)
	}
}

func generateExtractStatement(name string, b ExtractBinding) string {
	source := bindingRef(b.Source)
	switch b.Kind.Tag {
	case ExtractApplyCallee:
		return fmt.Sprintf("%s := callee", name)
	case ExtractApplyArg:
		return fmt.Sprintf("%s := args[%d]", name, b.Kind.Index)
	case ExtractApplyArgs:
		return fmt.Sprintf("%s := args", name)
	case ExtractTupleField:
		return fmt.Sprintf("%s := %s.(*Tuple).Elements[%d]", name, source, b.Kind.Index)
	default:
		return fmt.Sprintf("_ = %s // unsupported extraction", name)
	}
}
