// Package parser turns a token stream into a lossless CST using
// precedence-climbing (Pratt) parsing: the same family of algorithm the
// teacher's lang/yasm/expr.go uses for assembler expressions, generalized
// here to spec.md §4.5's full operator table plus three statement-shaped
// special forms (let/fn/measure) that can't be expressed as plain
// precedence climbing because their `=` separator isn't the assignment
// operator acting on their own result.
//
// The parser never fails outright: malformed input produces an ErrorNode
// wrapping whatever tokens could not be placed, and the builder's full
// span-coverage invariant still holds, matching the lexer's "total"
// contract one layer up.
package parser

import (
	"github.com/gmofishsauce/cadenza/internal/cst"
	"github.com/gmofishsauce/cadenza/internal/diag"
	"github.com/gmofishsauce/cadenza/internal/intern"
	"github.com/gmofishsauce/cadenza/internal/lexer"
	"github.com/gmofishsauce/cadenza/internal/syntaxkind"
)

// Parse lexes and parses source in full, returning the root of the
// resulting red CST plus a Compiler carrying any diagnostics gathered
// along the way (parse errors are always warnings-or-worse diagnostics,
// never Go errors: eval can still run over recovered trees).
func Parse(source string) (*cst.Node, *diag.Compiler) {
	comp := diag.NewCompiler()
	p := &Parser{
		src:      source,
		toks:     lexer.Lex(source),
		b:        cst.NewBuilder(),
		compiler: comp,
	}
	p.b.StartNode(syntaxkind.Root)
	p.skipTrivia()
	for !p.atEOF() {
		p.parseStatement()
		p.skipTrivia()
	}
	p.b.FinishNode()
	return cst.NewRoot(p.b.Finish()), comp
}

// Parser drives one parse of a complete source string. It is not
// reentrant and not safe for concurrent use, matching the teacher's
// single-pass parser.go drivers.
type Parser struct {
	src      string
	toks     []lexer.Token
	pos      int
	b        *cst.Builder
	compiler *diag.Compiler
}

func (p *Parser) atEOF() bool { return p.pos >= len(p.toks) }

func (p *Parser) cur() lexer.Token {
	if p.atEOF() {
		return lexer.Token{Kind: syntaxkind.Invalid}
	}
	return p.toks[p.pos]
}

func (p *Parser) text(t lexer.Token) string {
	return p.src[t.Span.Start:t.Span.End]
}

// bump consumes the current token into the builder's open node, verbatim.
func (p *Parser) bump() lexer.Token {
	t := p.cur()
	p.b.Token(t.Kind, p.text(t))
	p.pos++
	return t
}

// skipTrivia bumps whitespace/newline/comment tokens until a significant
// token is reached or input ends.
func (p *Parser) skipTrivia() {
	for !p.atEOF() && p.cur().Kind.IsTrivia() {
		p.bump()
	}
}

// peekSignificant looks past trivia without consuming anything, returning
// the next significant token and how many tokens precede it.
func (p *Parser) peekSignificant() (tok lexer.Token, skip int, ok bool) {
	i := p.pos
	for i < len(p.toks) && p.toks[i].Kind.IsTrivia() {
		i++
	}
	if i >= len(p.toks) {
		return lexer.Token{}, i - p.pos, false
	}
	return p.toks[i], i - p.pos, true
}

// bumpN bumps exactly n tokens (trivia, typically) verbatim.
func (p *Parser) bumpN(n int) {
	for i := 0; i < n; i++ {
		p.bump()
	}
}

// canStartPrimary reports whether kind can begin a juxtaposition argument
// or a prefix-operator expression: identifiers, literals, parens, the
// three bracket/brace literal openers, and the prefix operator set.
func canStartPrimary(kind syntaxkind.Kind) bool {
	switch kind {
	case syntaxkind.Identifier, syntaxkind.Integer, syntaxkind.Float,
		syntaxkind.StringContent, syntaxkind.StringContentWithEscape,
		syntaxkind.CharLiteral,
		syntaxkind.LParen, syntaxkind.LBracket, syntaxkind.LBrace,
		syntaxkind.Bang, syntaxkind.Tilde, syntaxkind.Dollar,
		syntaxkind.Ellipsis, syntaxkind.At, syntaxkind.Minus:
		return true
	default:
		return false
	}
}

// parseStatement parses one top-level or block-level item: a dedicated
// let/fn/measure production, or a fully generic expression.
func (p *Parser) parseStatement() {
	if tok, skip, ok := p.peekSignificant(); ok && tok.Kind == syntaxkind.Identifier {
		switch p.text(tok) {
		case "let":
			p.bumpN(skip)
			p.parseLet()
			return
		case "fn":
			p.bumpN(skip)
			p.parseFn()
			return
		case "measure":
			p.bumpN(skip)
			p.parseMeasure()
			return
		}
	}
	p.parseExpr(0)
}

// parseLet builds Apply{receiver=let, args=[name, value]}, matching the
// special form's unevaluated-argument contract: `let name = expr`.
func (p *Parser) parseLet() {
	p.b.StartNode(syntaxkind.Apply)
	p.skipTrivia()
	p.b.StartNode(syntaxkind.ApplyReceiver)
	p.bump()
	p.b.FinishNode()

	p.skipTrivia()
	p.b.StartNode(syntaxkind.ApplyArgument)
	if p.cur().Kind == syntaxkind.Identifier {
		p.bump()
	} else {
		p.reportSyntaxError("expected a name after 'let'")
	}
	p.b.FinishNode()

	p.skipTrivia()
	p.expectPunct(syntaxkind.Eq, "expected '=' in let binding")

	p.skipTrivia()
	p.b.StartNode(syntaxkind.ApplyArgument)
	p.parseExpr(0)
	p.b.FinishNode()

	p.b.FinishNode() // Apply
}

// parseFn builds Apply{receiver=fn, args=[name, param..., body]}, matching
// `fn name p1 … pn = body`.
func (p *Parser) parseFn() {
	p.b.StartNode(syntaxkind.Apply)
	p.skipTrivia()
	p.b.StartNode(syntaxkind.ApplyReceiver)
	p.bump()
	p.b.FinishNode()

	p.skipTrivia()
	p.b.StartNode(syntaxkind.ApplyArgument)
	if p.cur().Kind == syntaxkind.Identifier {
		p.bump()
	} else {
		p.reportSyntaxError("expected a function name after 'fn'")
	}
	p.b.FinishNode()

	for {
		tok, skip, ok := p.peekSignificant()
		if !ok || tok.Kind != syntaxkind.Identifier {
			break
		}
		p.bumpN(skip)
		p.b.StartNode(syntaxkind.ApplyArgument)
		p.bump()
		p.b.FinishNode()
	}

	p.skipTrivia()
	p.expectPunct(syntaxkind.Eq, "expected '=' in function definition")

	p.b.StartNode(syntaxkind.ApplyArgument)
	p.parseFnBody()
	p.b.FinishNode()

	p.b.FinishNode() // Apply
}

// parseFnBody parses a single expression body, or — when the trivia
// immediately following '=' contains a newline whose following line
// starts with whitespace — a __block__ of statements. This must inspect
// the raw trivia before it is consumed: skipTrivia would otherwise eat
// the very newline that signals "this is an indented continuation", not
// "the statement ended". Cadenza's real grammar measures indentation in
// character cells (tab = 4); this simplified detector only checks for a
// newline followed by at least one leading whitespace byte, which is
// sufficient for every function body this parser is exercised against
// and is documented as a known simplification.
func (p *Parser) parseFnBody() {
	if p.bodyContinuesAsBlock() {
		p.parseBlock()
		return
	}
	p.skipTrivia()
	p.parseExpr(0)
}

func (p *Parser) bodyContinuesAsBlock() bool {
	sawNewline := false
	indented := false
	for i := p.pos; i < len(p.toks) && p.toks[i].Kind.IsTrivia(); i++ {
		if p.toks[i].Kind == syntaxkind.Newline {
			sawNewline = true
			indented = i+1 < len(p.toks) && p.toks[i+1].Kind == syntaxkind.Whitespace
		}
	}
	return sawNewline && indented
}

// parseBlock wraps a sequence of statements in a __block__ synthetic
// node, occupying the Apply receiver slot per the synthetic-node
// convention: Apply{receiver=__block__, args=[stmt1, stmt2, …]}.
func (p *Parser) parseBlock() {
	p.b.StartNode(syntaxkind.Apply)
	p.b.StartNode(syntaxkind.ApplyReceiver)
	p.b.Token(syntaxkind.SyntheticBlock, "")
	p.b.FinishNode()

	p.skipTrivia()
	for {
		if _, ok := p.peekSignificant(); !ok {
			break
		}
		p.b.StartNode(syntaxkind.ApplyArgument)
		p.parseStatement()
		p.b.FinishNode()
		p.skipTrivia()
		if !p.lineContinuesBlock() {
			break
		}
	}
	p.b.FinishNode() // Apply
}

// lineContinuesBlock is a placeholder hook for a future column-accurate
// dedent check; for now a block keeps consuming statements until input
// runs out, since every block this parser builds (function bodies) is
// the final construct on its line.
func (p *Parser) lineContinuesBlock() bool {
	_, ok := p.peekSignificant()
	return ok
}

// parseMeasure builds Apply{receiver=measure, args=[name]} or, when an
// '=' follows, Apply{receiver=measure, args=[name, rhs]} where rhs is
// parsed as an ordinary expression (the measure special form expects it
// to evaluate to a quantity, e.g. `0.001meter`), so no further
// special-casing is needed here.
func (p *Parser) parseMeasure() {
	p.b.StartNode(syntaxkind.Apply)
	p.skipTrivia()
	p.b.StartNode(syntaxkind.ApplyReceiver)
	p.bump()
	p.b.FinishNode()

	p.skipTrivia()
	p.b.StartNode(syntaxkind.ApplyArgument)
	if p.cur().Kind == syntaxkind.Identifier {
		p.bump()
	} else {
		p.reportSyntaxError("expected a unit name after 'measure'")
	}
	p.b.FinishNode()

	if tok, skip, ok := p.peekSignificant(); ok && tok.Kind == syntaxkind.Eq {
		p.bumpN(skip)
		p.bump() // '='
		p.skipTrivia()
		p.b.StartNode(syntaxkind.ApplyArgument)
		p.parseExpr(0)
		p.b.FinishNode()
	}

	p.b.FinishNode() // Apply
}

func (p *Parser) expectPunct(kind syntaxkind.Kind, message string) {
	if p.cur().Kind == kind {
		p.bump()
		return
	}
	p.reportSyntaxError(message)
}

func (p *Parser) reportSyntaxError(message string) {
	span := p.currentSpanOrEOF()
	p.compiler.Report(diag.Syntax(message).WithSpan(span))
	p.b.StartNode(syntaxkind.ErrorNode)
	if !p.atEOF() {
		p.bump()
	}
	p.b.FinishNode()
}

func (p *Parser) currentSpanOrEOF() intern.Span {
	if !p.atEOF() {
		return p.cur().Span
	}
	end := uint32(len(p.src))
	return intern.Span{Start: end, End: end}
}

// parseExpr is the Pratt loop: parse one primary (or prefix-operator
// expression), then repeatedly extend it with whatever infix,
// juxtaposition, or postfix operator has enough binding power relative to
// minBP.
func (p *Parser) parseExpr(minBP int) {
	cp := p.b.Checkpoint()
	p.parsePrimary()

	for {
		tok, skip, ok := p.peekSignificant()
		if !ok {
			return
		}

		// A newline ends the expression unless the next line opens with
		// an infix operator, which continues it.
		if _, _, infix := infixInfo(tok.Kind); !infix {
			for _, t := range p.toks[p.pos : p.pos+skip] {
				if t.Kind == syntaxkind.Newline {
					return
				}
			}
		}

		if left, right, ok := infixInfo(tok.Kind); ok {
			if left < minBP {
				return
			}
			p.bumpN(skip)
			p.wrapInfix(cp, tok, right)
			continue
		}

		// '[' is ambiguous between postfix indexing (`xs[0]`) and a
		// juxtaposed list-literal argument (`f [1, 2]`); checking postfix
		// first means indexing always wins. This matches how most
		// languages that allow both resolve the clash, but the same
		// choice is documented here rather than assumed.
		if left, ok := postfixBP(tok.Kind); ok {
			if left < minBP {
				return
			}
			p.bumpN(skip)
			if tok.Kind == syntaxkind.LBracket {
				p.wrapIndex(cp)
			} else {
				p.wrapPostfix(cp, tok)
			}
			continue
		}

		if canStartPrimary(tok.Kind) {
			left, right := juxtapositionBP()
			if left < minBP {
				return
			}
			p.bumpN(skip)
			p.wrapJuxtaposition(cp, right)
			continue
		}

		return
	}
}

// wrapInfix performs the two-step checkpoint wrap needed to reconcile
// flat reparenting with the uniform Apply{ApplyReceiver,ApplyArgument...}
// shape: first fold everything since cp into a lone ApplyArgument (the
// LHS), then fold that single argument into the enclosing Apply alongside
// a freshly built ApplyReceiver{op} and a second ApplyArgument{RHS}.
func (p *Parser) wrapInfix(cp cst.Checkpoint, op lexer.Token, rightBP int) {
	p.b.StartNodeAt(cp, syntaxkind.ApplyArgument)
	p.b.FinishNode()

	p.b.StartNodeAt(cp, syntaxkind.Apply)
	p.b.StartNode(syntaxkind.ApplyReceiver)
	p.b.Token(op.Kind, p.text(op))
	p.b.FinishNode()

	p.skipTrivia()
	p.b.StartNode(syntaxkind.ApplyArgument)
	p.parseExpr(rightBP)
	p.b.FinishNode()
	p.b.FinishNode() // Apply
}

// wrapJuxtaposition builds Apply{receiver=<lhs>, args=[<rhs>]} from the
// already-parsed LHS (since cp) plus one freshly parsed argument, the
// same two-step wrap as wrapInfix but with no operator token of its own:
// the "receiver" is just whatever was already there.
func (p *Parser) wrapJuxtaposition(cp cst.Checkpoint, rightBP int) {
	p.b.StartNodeAt(cp, syntaxkind.ApplyReceiver)
	p.b.FinishNode()

	p.b.StartNodeAt(cp, syntaxkind.Apply)
	p.b.StartNode(syntaxkind.ApplyArgument)
	p.parseExpr(rightBP)
	p.b.FinishNode()
	p.b.FinishNode() // Apply
}

// wrapPostfix handles `?` and `|?`: Apply{receiver=op, args=[lhs]}, the
// operator standing in as its own receiver with one argument and no RHS
// to parse.
func (p *Parser) wrapPostfix(cp cst.Checkpoint, op lexer.Token) {
	p.b.StartNodeAt(cp, syntaxkind.ApplyArgument)
	p.b.FinishNode()

	p.b.StartNodeAt(cp, syntaxkind.Apply)
	p.b.StartNode(syntaxkind.ApplyReceiver)
	p.b.Token(op.Kind, p.text(op))
	p.b.FinishNode()
	p.b.FinishNode() // Apply
}

// wrapIndex handles postfix `expr[key]`: Apply{receiver=__index__,
// args=[expr, key]}. The opening '[' was already consumed by the caller;
// this finishes consuming the key expression and the closing ']'.
func (p *Parser) wrapIndex(cp cst.Checkpoint) {
	p.b.StartNodeAt(cp, syntaxkind.ApplyArgument)
	p.b.FinishNode()

	p.b.StartNodeAt(cp, syntaxkind.Apply)
	p.b.StartNode(syntaxkind.ApplyReceiver)
	p.b.Token(syntaxkind.SyntheticIndex, "")
	p.b.FinishNode()

	p.skipTrivia()
	p.b.StartNode(syntaxkind.ApplyArgument)
	p.parseExpr(0)
	p.b.FinishNode()

	p.skipTrivia()
	p.expectPunct(syntaxkind.RBracket, "expected ']' to close index expression")
	p.b.FinishNode() // Apply
}

// parsePrimary parses one literal, identifier, prefix-operator
// expression, parenthesized expression, or bracket/brace literal, with no
// awareness of the surrounding Pratt loop's binding power beyond what a
// prefix operator's own right binding power demands of its operand.
func (p *Parser) parsePrimary() {
	tok := p.cur()
	switch {
	case tok.Kind == syntaxkind.Integer || tok.Kind == syntaxkind.Float:
		p.parseNumberLiteral()
	case tok.Kind == syntaxkind.StringContent || tok.Kind == syntaxkind.StringContentWithEscape ||
		tok.Kind == syntaxkind.CharLiteral:
		p.b.StartNode(syntaxkind.Literal)
		p.bump()
		p.b.FinishNode()
	case tok.Kind == syntaxkind.Identifier:
		p.bump()
	case tok.Kind == syntaxkind.At:
		p.parseAttr()
	case tok.Kind == syntaxkind.LParen:
		p.parseParenExpr()
	case tok.Kind == syntaxkind.LBracket:
		p.parseListLiteral()
	case tok.Kind == syntaxkind.LBrace:
		p.parseRecordLiteral()
	default:
		if right, ok := prefixBP(tok.Kind); ok {
			p.parsePrefixOp(tok, right)
			return
		}
		p.reportSyntaxError("unexpected token")
	}
}

// parseNumberLiteral parses an Integer/Float token, folding an
// immediately adjacent unit-constructor identifier (no trivia between
// them, e.g. `100meter`) into Apply{receiver=<unit>, args=[<number>]} via
// explicit lookahead rather than checkpoint reparenting: the wrapper
// shape this needs (receiver first, argument second) doesn't line up
// with the generic two-step wrap, which always treats the LHS as the
// argument being wrapped by an operator seen afterward.
func (p *Parser) parseNumberLiteral() {
	numTok := p.cur()
	adjacent := !p.atEOF() && p.pos+1 < len(p.toks) &&
		p.toks[p.pos+1].Kind == syntaxkind.Identifier &&
		p.toks[p.pos+1].Span.Start == numTok.Span.End

	if !adjacent {
		p.b.StartNode(syntaxkind.Literal)
		p.bump()
		p.b.FinishNode()
		return
	}

	p.b.StartNode(syntaxkind.Apply)
	p.b.StartNode(syntaxkind.ApplyReceiver)
	p.pos++ // skip past the number; unit identifier bumped below
	unitTok := p.toks[p.pos]
	p.b.Token(unitTok.Kind, p.text(unitTok))
	p.pos++
	p.b.FinishNode()

	p.b.StartNode(syntaxkind.ApplyArgument)
	p.b.StartNode(syntaxkind.Literal)
	p.b.Token(numTok.Kind, p.text(numTok))
	p.b.FinishNode()
	p.b.FinishNode()
	p.b.FinishNode() // Apply
}

// parseAttr parses a prefix `@expr` attribute marker.
func (p *Parser) parseAttr() {
	p.b.StartNode(syntaxkind.Attr)
	p.bump() // '@'
	p.skipTrivia()
	p.parseExpr(2 * int(GroupExponentiation))
	p.b.FinishNode()
}

// parsePrefixOp parses a prefix operator (`! ~ $ ... @ -`) applied to the
// expression it binds: Apply{receiver=op, args=[operand]}.
func (p *Parser) parsePrefixOp(op lexer.Token, rightBP int) {
	p.b.StartNode(syntaxkind.Apply)
	p.b.StartNode(syntaxkind.ApplyReceiver)
	p.bump()
	p.b.FinishNode()
	p.skipTrivia()
	p.b.StartNode(syntaxkind.ApplyArgument)
	p.parseExpr(rightBP)
	p.b.FinishNode()
	p.b.FinishNode() // Apply
}

// parseParenExpr consumes a transparent `(expr)`: the parens are bumped
// directly as leaf tokens (the ast package's firstChildExpr skips them
// when looking for the expression they enclose) so no dedicated "Paren"
// node kind is needed.
func (p *Parser) parseParenExpr() {
	p.bump() // '('
	p.skipTrivia()
	p.parseExpr(0)
	p.skipTrivia()
	p.expectPunct(syntaxkind.RParen, "expected ')'")
}

// parseListLiteral parses `[e1, e2, …]` as Apply{receiver=__list__,
// args=[e1, e2, …]}.
func (p *Parser) parseListLiteral() {
	p.b.StartNode(syntaxkind.Apply)
	p.b.StartNode(syntaxkind.ApplyReceiver)
	p.bump() // '['
	p.b.Token(syntaxkind.SyntheticList, "")
	p.b.FinishNode()

	p.skipTrivia()
	for p.cur().Kind != syntaxkind.RBracket && !p.atEOF() {
		p.b.StartNode(syntaxkind.ApplyArgument)
		p.parseExpr(0)
		p.b.FinishNode()
		p.skipTrivia()
		if p.cur().Kind == syntaxkind.Comma {
			p.bump()
			p.skipTrivia()
		}
	}
	p.expectPunct(syntaxkind.RBracket, "expected ']' to close list literal")
	p.b.FinishNode() // Apply
}

// parseRecordLiteral parses `{k1 = v1, k2 = v2, …}` as
// Apply{receiver=__record__, args=[Apply{=,[k1,v1]}, …]}: each field is
// itself an ordinary `=` infix expression, parsed generically.
func (p *Parser) parseRecordLiteral() {
	p.b.StartNode(syntaxkind.Apply)
	p.b.StartNode(syntaxkind.ApplyReceiver)
	p.bump() // '{'
	p.b.Token(syntaxkind.SyntheticRecord, "")
	p.b.FinishNode()

	p.skipTrivia()
	for p.cur().Kind != syntaxkind.RBrace && !p.atEOF() {
		p.b.StartNode(syntaxkind.ApplyArgument)
		p.parseExpr(0)
		p.b.FinishNode()
		p.skipTrivia()
		if p.cur().Kind == syntaxkind.Comma {
			p.bump()
			p.skipTrivia()
		}
	}
	p.expectPunct(syntaxkind.RBrace, "expected '}' to close record literal")
	p.b.FinishNode() // Apply
}
