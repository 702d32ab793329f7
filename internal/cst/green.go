// Package cst implements Cadenza's lossless concrete syntax tree: an
// immutable, structurally-shared "green" layer and a lazy-offset "red"
// cursor layer over it.
//
// Grounded directly on
// _examples/original_source/crates/cadenza-tree/src/green.rs and
// .../red.rs: GreenNode/GreenToken/GreenElement, the Cache singleton that
// interns both by structural equality, and GreenNodeBuilder's
// checkpoint/start_node_at retroactive-wrap mechanism are all carried over
// one-to-one, translated into Go idiom (Arc<T> becomes a pointer that is
// never mutated after construction; the FxHashMap cache becomes an
// LRU-bounded cache guarded by a mutex, since a Go process has no
// process-lifetime-only guarantee the way a one-shot rustc invocation
// does — see DESIGN.md for why the bound was added).
package cst

import (
	"fmt"

	"github.com/gmofishsauce/cadenza/internal/syntaxkind"
)

// GreenElement is either a GreenNode or a GreenToken.
type GreenElement interface {
	Kind() syntaxkind.Kind
	TextLen() int

	// identityKey is used internally by Cache to build a structural
	// hash key for parent nodes without re-hashing entire subtrees: once
	// a child is itself interned, its pointer identity stands in for its
	// full structural identity.
	identityKey() string
}

// GreenToken is a leaf: a kind plus its exact source text.
type GreenToken struct {
	kind syntaxkind.Kind
	text string
}

func (t *GreenToken) Kind() syntaxkind.Kind { return t.kind }
func (t *GreenToken) TextLen() int          { return len(t.text) }
func (t *GreenToken) Text() string          { return t.text }
func (t *GreenToken) identityKey() string   { return fmt.Sprintf("T%p", t) }

// GreenNode is an interned interior node: a kind plus an ordered list of
// children (nodes or tokens) and a cached byte width.
type GreenNode struct {
	kind     syntaxkind.Kind
	children []GreenElement
	width    int
}

func (n *GreenNode) Kind() syntaxkind.Kind     { return n.kind }
func (n *GreenNode) TextLen() int              { return n.width }
func (n *GreenNode) Children() []GreenElement  { return n.children }
func (n *GreenNode) IsEmpty() bool             { return len(n.children) == 0 }
func (n *GreenNode) identityKey() string       { return fmt.Sprintf("N%p", n) }

// AsNode/AsToken narrow a GreenElement, mirroring Rust's as_node/as_token.
func AsNode(e GreenElement) (*GreenNode, bool) {
	n, ok := e.(*GreenNode)
	return n, ok
}

func AsToken(e GreenElement) (*GreenToken, bool) {
	t, ok := e.(*GreenToken)
	return t, ok
}
