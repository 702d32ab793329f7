// Package ast provides a typed, read-only view over the CST. It never
// mutates or duplicates tree data: every accessor re-derives its result by
// walking the underlying cst.Node/cst.Token, matching spec.md §3.5's "the
// AST is a view, not a replacement."
package ast

import (
	"github.com/gmofishsauce/cadenza/internal/cst"
	"github.com/gmofishsauce/cadenza/internal/syntaxkind"
)

// Expr is any AST expression node. Every variant exposes its underlying
// CST element so callers can always fall back to raw span/text access.
type Expr interface {
	Element() cst.Element
}

// FromElement casts a red CST element to its typed AST wrapper. It never
// returns nil: an element that matches no known expression shape (e.g. a
// stray trivia token reached by mistake) still yields an Error wrapper so
// callers have one type to switch on.
func FromElement(e cst.Element) Expr {
	switch v := e.(type) {
	case *cst.Node:
		switch v.Kind() {
		case syntaxkind.Literal:
			return &Literal{node: v}
		case syntaxkind.Apply:
			return &Apply{node: v}
		case syntaxkind.Attr:
			return &Attr{node: v}
		case syntaxkind.ErrorNode:
			return &Error{node: v}
		default:
			return &Error{node: v}
		}
	case *cst.Token:
		switch {
		case v.Kind() == syntaxkind.Identifier:
			return &Ident{token: v}
		case v.Kind().IsSynthetic():
			return &Synthetic{token: v}
		case isOperatorKind(v.Kind()):
			return &Op{token: v}
		default:
			return &Error{token: v}
		}
	default:
		return &Error{}
	}
}

func isOperatorKind(k syntaxkind.Kind) bool {
	switch k {
	case syntaxkind.Plus, syntaxkind.Minus, syntaxkind.Star, syntaxkind.Slash,
		syntaxkind.Percent, syntaxkind.StarStar,
		syntaxkind.EqEq, syntaxkind.BangEq, syntaxkind.Lt, syntaxkind.LtEq,
		syntaxkind.Gt, syntaxkind.GtEq, syntaxkind.Eq,
		syntaxkind.PipeGt, syntaxkind.Dot, syntaxkind.ColonColon,
		syntaxkind.AmpAmp, syntaxkind.PipePipe,
		syntaxkind.Amp, syntaxkind.Pipe, syntaxkind.Caret,
		syntaxkind.LtLt, syntaxkind.GtGt,
		syntaxkind.Bang, syntaxkind.Tilde, syntaxkind.Dollar, syntaxkind.At,
		syntaxkind.Question, syntaxkind.PipeQuestion:
		return true
	default:
		return false
	}
}

// Literal is a token of integer/float/string/char kind wrapped in a
// Literal CST node.
type Literal struct{ node *cst.Node }

func (l *Literal) Element() cst.Element { return l.node }

// Token returns the single leaf token carrying the literal's text.
func (l *Literal) Token() *cst.Token {
	for _, e := range l.node.ChildrenWithTokens() {
		if t, ok := e.(*cst.Token); ok {
			return t
		}
	}
	return nil
}

// Kind returns the literal's underlying token kind (Integer, Float,
// StringContent, StringContentWithEscape, or CharLiteral).
func (l *Literal) Kind() syntaxkind.Kind {
	if t := l.Token(); t != nil {
		return t.Kind()
	}
	return syntaxkind.Invalid
}

func (l *Literal) Text() string {
	if t := l.Token(); t != nil {
		return t.Text()
	}
	return ""
}

// Ident is a single identifier token used in expression position.
type Ident struct{ token *cst.Token }

func (i *Ident) Element() cst.Element { return i.token }
func (i *Ident) Name() string         { return i.token.Text() }

// Op is an operator token used as a first-class value (e.g. passed to
// `typeof`, or as the receiver slot of an Apply built by the parser for
// infix expressions).
type Op struct{ token *cst.Token }

func (o *Op) Element() cst.Element { return o.token }
func (o *Op) Symbol() string       { return o.token.Text() }

// Attr is a prefix `@expr` attribute marker.
type Attr struct{ node *cst.Node }

func (a *Attr) Element() cst.Element { return a.node }

// Value returns the attributed expression, if present.
func (a *Attr) Value() (Expr, bool) {
	for _, e := range a.node.ChildrenWithTokens() {
		if e.Kind() == syntaxkind.At {
			continue
		}
		return FromElement(e), true
	}
	return nil, false
}

// Synthetic is a structural node lacking source tokens (__block__,
// __list__, __record__, __index__), exposed as the receiver of an Apply
// so the evaluator can dispatch it like any other special form.
type Synthetic struct{ token *cst.Token }

func (s *Synthetic) Element() cst.Element { return s.token }

// Identifier returns the dispatch name, e.g. "__list__".
func (s *Synthetic) Identifier() string { return s.token.Kind().SyntheticName() }

// Apply is a call: a receiver expression plus ordered arguments, each
// wrapped in their own ApplyReceiver/ApplyArgument CST node.
type Apply struct{ node *cst.Node }

func (a *Apply) Element() cst.Element { return a.node }

// Receiver returns this Apply's own receiver child, without flattening
// nested juxtaposition.
func (a *Apply) Receiver() (Expr, bool) {
	for _, child := range a.node.Children() {
		if child.Kind() == syntaxkind.ApplyReceiver {
			return firstChildExpr(child)
		}
	}
	return nil, false
}

// Arguments returns this Apply's own argument children in source order,
// without flattening nested juxtaposition.
func (a *Apply) Arguments() []Expr {
	var out []Expr
	for _, child := range a.node.Children() {
		if child.Kind() == syntaxkind.ApplyArgument {
			if e, ok := firstChildExpr(child); ok {
				out = append(out, e)
			}
		}
	}
	return out
}

// Callee walks through nested Apply receivers (produced by juxtaposition
// chains like `f a b`, parsed as Apply{Apply{f,[a]},[b]}) to find the
// innermost non-Apply receiver.
func (a *Apply) Callee() (Expr, bool) {
	recv, ok := a.Receiver()
	if !ok {
		return nil, false
	}
	if inner, ok := recv.(*Apply); ok {
		return inner.Callee()
	}
	return recv, true
}

// AllArguments flattens a juxtaposition chain into one ordered argument
// list, e.g. `f a b` yields [a, b] regardless of how many Apply layers the
// parser produced.
func (a *Apply) AllArguments() []Expr {
	recv, ok := a.Receiver()
	if ok {
		if inner, ok := recv.(*Apply); ok {
			return append(inner.AllArguments(), a.Arguments()...)
		}
	}
	return a.Arguments()
}

// firstChildExpr returns the first expression-shaped child of n, skipping
// trivia and the purely syntactic punctuation (parens, brackets, braces,
// commas) that the parser leaves alongside the real expression when it
// builds a transparent wrapper (e.g. a parenthesized sub-expression, or a
// __list__/__record__ literal's delimiters).
func firstChildExpr(n *cst.Node) (Expr, bool) {
	for _, e := range n.ChildrenWithTokens() {
		if isIgnorableSyntax(e.Kind()) {
			continue
		}
		return FromElement(e), true
	}
	return nil, false
}

func isIgnorableSyntax(k syntaxkind.Kind) bool {
	if k.IsTrivia() {
		return true
	}
	switch k {
	case syntaxkind.LParen, syntaxkind.RParen,
		syntaxkind.LBracket, syntaxkind.RBracket,
		syntaxkind.LBrace, syntaxkind.RBrace,
		syntaxkind.Comma:
		return true
	default:
		return false
	}
}

// Error wraps a recovered malformed fragment: either an ErrorNode or a
// token that matched no known expression shape.
type Error struct {
	node  *cst.Node
	token *cst.Token
}

func (e *Error) Element() cst.Element {
	if e.node != nil {
		return e.node
	}
	return e.token
}
