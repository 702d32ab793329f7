package cst

import (
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gmofishsauce/cadenza/internal/syntaxkind"
)

// tokenKey and nodeKey are the structural-equality keys the Cache hashes
// on: a token by (kind, text); a node by (kind, children-identity-string).
// Children must already be interned by the time Node is called (the
// builder always finishes children before their parent), so their
// identity string can be their pointer address rather than a recursive
// structural hash — this is the same shortcut the Rust implementation
// takes implicitly via Arc pointer equality in its hash-map key.
type tokenKey struct {
	kind syntaxkind.Kind
	text string
}

type nodeKey struct {
	kind     syntaxkind.Kind
	childKey string
}

// Cache is the process-wide (or test-scoped) structural interning table
// for green nodes and tokens. It is bounded by an LRU so a long-lived host
// process (a REPL, a language server) has a resource ceiling instead of
// unbounded growth — spec.md's §5 describes the cache as "read-mostly"
// but does not mandate a bound; capping it is a supplementing decision
// (see SPEC_FULL.md §5 and DESIGN.md).
type Cache struct {
	mu     sync.Mutex
	tokens *lru.Cache[tokenKey, *GreenToken]
	nodes  *lru.Cache[nodeKey, *GreenNode]
}

const defaultCacheSize = 64 * 1024

// NewCache creates a cache bounded to size entries per table (tokens and
// nodes are tracked separately).
func NewCache(size int) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	tokens, err := lru.New[tokenKey, *GreenToken](size)
	if err != nil {
		panic(err)
	}
	nodes, err := lru.New[nodeKey, *GreenNode](size)
	if err != nil {
		panic(err)
	}
	return &Cache{tokens: tokens, nodes: nodes}
}

// global is the default cache used by Builder when none is supplied.
var global = NewCache(defaultCacheSize)

// GlobalCache returns the process-wide default cache.
func GlobalCache() *Cache { return global }

// Token returns the interned token for (kind, text), creating it on first
// use so that structurally identical tokens share one *GreenToken.
func (c *Cache) Token(kind syntaxkind.Kind, text string) *GreenToken {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := tokenKey{kind: kind, text: text}
	if tok, ok := c.tokens.Get(key); ok {
		return tok
	}
	tok := &GreenToken{kind: kind, text: text}
	c.tokens.Add(key, tok)
	return tok
}

// Node returns the interned node for (kind, children), creating it on
// first use. children must already consist of interned elements (produced
// by this same Cache's Token/Node methods).
func (c *Cache) Node(kind syntaxkind.Kind, children []GreenElement) *GreenNode {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	for i, ch := range children {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(ch.identityKey())
	}
	key := nodeKey{kind: kind, childKey: b.String()}
	if node, ok := c.nodes.Get(key); ok {
		return node
	}
	width := 0
	for _, ch := range children {
		width += ch.TextLen()
	}
	// Defensive copy: the builder's backing slice is reused across
	// sibling nodes at the same stack depth.
	owned := append([]GreenElement(nil), children...)
	node := &GreenNode{kind: kind, children: owned, width: width}
	c.nodes.Add(key, node)
	return node
}
