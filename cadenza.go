// Package cadenza is the public façade over the language's internal
// packages: the three entry points a host program needs — Parse, Eval,
// and NewCompiler — wired together the way internal/eval's own test
// helpers already combine them (parser.Parse -> ast.FromElement ->
// eval.Eval), so callers outside this module never need to reach past
// the internal/ boundary.
package cadenza

import (
	"fmt"
	"strings"

	"github.com/gmofishsauce/cadenza/internal/ast"
	"github.com/gmofishsauce/cadenza/internal/cst"
	"github.com/gmofishsauce/cadenza/internal/diag"
	"github.com/gmofishsauce/cadenza/internal/eval"
	"github.com/gmofishsauce/cadenza/internal/parser"
	"github.com/gmofishsauce/cadenza/internal/values"
)

// NewCompiler returns a fresh diagnostic context for one parse/eval/infer
// session, the same Compiler threaded through every internal package.
func NewCompiler() *diag.Compiler {
	return diag.NewCompiler()
}

// Parse is one parsed source file: the lossless CST plus its top-level
// statements already converted to the AST view.
type Parse struct {
	root       *cst.Node
	compiler   *diag.Compiler
	statements []ast.Expr
}

// Parse lexes and parses source, returning the CST root and the list of
// top-level statements as ast.Expr. Parsing itself never fails — the
// lexer/parser pair is total, per spec.md's lossless-CST contract — so
// the returned error only ever reports diagnostics already gathered in
// the Parse's Compiler, for callers that want `if err != nil` flow
// without inspecting Diagnostics() themselves.
func Parse(source string) (*Parse, error) {
	root, comp := parser.Parse(source)

	var statements []ast.Expr
	for _, e := range root.ChildrenWithTokens() {
		if e.Kind().IsTrivia() {
			continue
		}
		statements = append(statements, ast.FromElement(e))
	}

	p := &Parse{root: root, compiler: comp, statements: statements}
	if comp.HasErrors() {
		return p, fmt.Errorf("cadenza: parse reported errors: %s", firstError(comp))
	}
	return p, nil
}

func firstError(c *diag.Compiler) string {
	for _, d := range c.Diagnostics {
		if d.Level == diag.LevelError {
			return d.String()
		}
	}
	return ""
}

// Syntax returns the parsed CST root.
func (p *Parse) Syntax() cst.Node { return *p.root }

// AST returns the last top-level statement's AST view — the expression
// a `run` over this source would report as its result, matching the
// convention internal/eval and internal/types's own tests use to pick
// "the" expression out of a multi-statement source.
func (p *Parse) AST() ast.Expr {
	if len(p.statements) == 0 {
		return nil
	}
	return p.statements[len(p.statements)-1]
}

// Statements returns every top-level statement in source order.
func (p *Parse) Statements() []ast.Expr { return p.statements }

// Diagnostics returns the Compiler that accumulated parse diagnostics.
func (p *Parse) Diagnostics() *diag.Compiler { return p.compiler }

// Eval evaluates every top-level statement of p against env in order,
// appending diagnostics to c, and returns one value per statement —
// the shape `cadenza run` prints, one line per top-level expression.
func Eval(p *Parse, env *values.Env, c *diag.Compiler) []values.Value {
	results := make([]values.Value, 0, len(p.statements))
	for _, stmt := range p.statements {
		results = append(results, eval.Eval(stmt, env, c))
	}
	return results
}

// DisplayAll renders a slice of evaluation results the way `cadenza run`
// prints them: one value per line, in source order.
func DisplayAll(vals []values.Value) string {
	var b strings.Builder
	for _, v := range vals {
		b.WriteString(values.Display(v))
		b.WriteByte('\n')
	}
	return b.String()
}
