package cst

import (
	"strconv"
	"strings"

	"github.com/gmofishsauce/cadenza/internal/intern"
	"github.com/gmofishsauce/cadenza/internal/syntaxkind"
)

// Node is a red cursor over a GreenNode: it adds an absolute byte offset
// and a parent link to the otherwise-relative green tree. Cloning a Node
// is cheap — it is a small value copied by pointer, with offsets computed
// lazily as the cursor descends, mirroring cadenza-tree::red::SyntaxNode.
type Node struct {
	green         *GreenNode
	parent        *Node
	offset        int
	indexInParent int
}

// NewRoot wraps green as the root of a red tree at offset 0.
func NewRoot(green *GreenNode) *Node {
	return &Node{green: green, offset: 0}
}

func (n *Node) Kind() syntaxkind.Kind { return n.green.Kind() }
func (n *Node) Green() *GreenNode     { return n.green }
func (n *Node) Parent() *Node         { return n.parent }

// TextRange returns this node's absolute span.
func (n *Node) TextRange() intern.Span {
	return intern.Span{Start: uint32(n.offset), End: uint32(n.offset + n.green.TextLen())}
}

// Text reconstructs the exact source text covered by this node by
// concatenating every descendant leaf token in order.
func (n *Node) Text() string {
	var b strings.Builder
	n.collectText(&b)
	return b.String()
}

func (n *Node) collectText(b *strings.Builder) {
	for i, child := range n.green.Children() {
		if tok, ok := AsToken(child); ok {
			b.WriteString(tok.Text())
		} else if _, ok := AsNode(child); ok {
			n.childNodeAt(i).collectText(b)
		}
	}
}

// childOffset returns the absolute offset of the child at index within
// this node's green children.
func (n *Node) childOffset(index int) int {
	off := n.offset
	children := n.green.Children()
	for i := 0; i < index; i++ {
		off += children[i].TextLen()
	}
	return off
}

func (n *Node) childNodeAt(index int) *Node {
	green, _ := AsNode(n.green.Children()[index])
	return &Node{
		green:         green,
		parent:        n,
		offset:        n.childOffset(index),
		indexInParent: index,
	}
}

func (n *Node) childTokenAt(index int) *Token {
	green, _ := AsToken(n.green.Children()[index])
	return &Token{
		green:         green,
		parent:        n,
		offset:        n.childOffset(index),
		indexInParent: index,
	}
}

// Children returns the node-typed children of this node, skipping tokens.
func (n *Node) Children() []*Node {
	var out []*Node
	for i, child := range n.green.Children() {
		if _, ok := AsNode(child); ok {
			out = append(out, n.childNodeAt(i))
		}
	}
	return out
}

// Element is either a *Node or a *Token, mirroring GreenElement at the
// red layer (NodeOrToken in the original source).
type Element interface {
	Kind() syntaxkind.Kind
	TextRange() intern.Span
}

// ChildrenWithTokens returns every direct child (nodes and tokens alike)
// in source order.
func (n *Node) ChildrenWithTokens() []Element {
	children := n.green.Children()
	out := make([]Element, len(children))
	for i, child := range children {
		if _, ok := AsNode(child); ok {
			out[i] = n.childNodeAt(i)
		} else {
			out[i] = n.childTokenAt(i)
		}
	}
	return out
}

// Token is a red cursor over a leaf GreenToken.
type Token struct {
	green         *GreenToken
	parent        *Node
	offset        int
	indexInParent int
}

func (t *Token) Kind() syntaxkind.Kind { return t.green.Kind() }
func (t *Token) Green() *GreenToken    { return t.green }
func (t *Token) Parent() *Node         { return t.parent }
func (t *Token) Text() string          { return t.green.Text() }

func (t *Token) TextRange() intern.Span {
	return intern.Span{Start: uint32(t.offset), End: uint32(t.offset + t.green.TextLen())}
}

// String renders the Rowan-compatible debug form: "Kind@start..end", with
// children indented two spaces per level, tokens additionally showing
// their quoted text. This stable format backs golden CST snapshots.
func (n *Node) String() string {
	var b strings.Builder
	fmtNode(n, &b, 0)
	return b.String()
}

func fmtNode(n *Node, b *strings.Builder, depth int) {
	r := n.TextRange()
	writeIndent(b, depth)
	b.WriteString(n.Kind().String())
	b.WriteByte('@')
	writeRange(b, r)
	elems := n.ChildrenWithTokens()
	if len(elems) == 0 {
		return
	}
	b.WriteByte('\n')
	for i, e := range elems {
		if node, ok := e.(*Node); ok {
			fmtNode(node, b, depth+1)
			if i < len(elems)-1 {
				b.WriteByte('\n')
			}
		} else if tok, ok := e.(*Token); ok {
			writeIndent(b, depth+1)
			tr := tok.TextRange()
			b.WriteString(tok.Kind().String())
			b.WriteByte('@')
			writeRange(b, tr)
			b.WriteString(" \"")
			b.WriteString(tok.Text())
			b.WriteString("\"")
			if i < len(elems)-1 {
				b.WriteByte('\n')
			}
		}
	}
}

func writeIndent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
}

func writeRange(b *strings.Builder, r intern.Span) {
	b.WriteString(strconv.Itoa(int(r.Start)))
	b.WriteString("..")
	b.WriteString(strconv.Itoa(int(r.End)))
}
