package cst

import "github.com/gmofishsauce/cadenza/internal/syntaxkind"

// frame is one entry of the Builder's open-node stack: a kind and the
// children accumulated for it so far.
type frame struct {
	kind     syntaxkind.Kind
	children []GreenElement
}

// Checkpoint records a position to retroactively wrap in a new node,
// required for left-associative/Pratt reparenting: parse a primary, then
// on seeing an infix operator of sufficient power, wrap everything parsed
// since the checkpoint into a new Apply node.
type Checkpoint struct {
	childrenCount int
}

// Builder constructs a green tree bottom-up. It mirrors
// cadenza-tree::GreenNodeBuilder exactly: StartNode/StartNodeAt/Token/
// FinishNode/Checkpoint/Finish.
type Builder struct {
	stack []frame
	cache *Cache
	root  *GreenNode
}

// NewBuilder creates a builder backed by the process-wide default cache.
func NewBuilder() *Builder {
	return &Builder{cache: GlobalCache()}
}

// NewBuilderWithCache creates a builder backed by an explicit cache,
// useful for tests that want isolation from the process-wide singleton.
func NewBuilderWithCache(c *Cache) *Builder {
	return &Builder{cache: c}
}

// Checkpoint captures the current child count of the innermost open node.
func (b *Builder) Checkpoint() Checkpoint {
	if len(b.stack) == 0 {
		return Checkpoint{childrenCount: 0}
	}
	return Checkpoint{childrenCount: len(b.stack[len(b.stack)-1].children)}
}

// StartNode opens a new node frame.
func (b *Builder) StartNode(kind syntaxkind.Kind) {
	b.stack = append(b.stack, frame{kind: kind})
}

// StartNodeAt opens a new node frame, moving every child added to the
// current frame since checkpoint into the new frame. This is the
// retroactive-wrap operation the Pratt parser needs: the left-hand side
// was already added as children of the enclosing node; StartNodeAt peels
// them off into a fresh Apply/operator node.
func (b *Builder) StartNodeAt(cp Checkpoint, kind syntaxkind.Kind) {
	if len(b.stack) == 0 {
		panic("cst: StartNodeAt with no current node")
	}
	top := &b.stack[len(b.stack)-1]
	moved := append([]GreenElement(nil), top.children[cp.childrenCount:]...)
	top.children = top.children[:cp.childrenCount]
	b.stack = append(b.stack, frame{kind: kind, children: moved})
}

// Token interns and appends a leaf token to the current node.
func (b *Builder) Token(kind syntaxkind.Kind, text string) {
	tok := b.cache.Token(kind, text)
	b.addElement(tok)
}

func (b *Builder) addElement(e GreenElement) {
	if len(b.stack) == 0 {
		panic("cst: tried to add element with no current node")
	}
	top := &b.stack[len(b.stack)-1]
	top.children = append(top.children, e)
}

// FinishNode closes the current node, interns it, and attaches it to its
// parent (or sets it as the root if the stack becomes empty).
func (b *Builder) FinishNode() {
	if len(b.stack) == 0 {
		panic("cst: no node to finish")
	}
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	node := b.cache.Node(top.kind, top.children)

	if len(b.stack) == 0 {
		b.root = node
	} else {
		b.addElement(node)
	}
}

// Finish asserts the builder has no unfinished nodes and returns the root.
func (b *Builder) Finish() *GreenNode {
	if len(b.stack) != 0 {
		panic("cst: unfinished nodes remain in builder")
	}
	if b.root == nil {
		panic("cst: no root node was created")
	}
	return b.root
}
