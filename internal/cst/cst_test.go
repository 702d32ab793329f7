package cst

import (
	"strings"
	"testing"

	"github.com/gmofishsauce/cadenza/internal/syntaxkind"
)

func buildHelloWorld(b *Builder) *GreenNode {
	b.StartNode(syntaxkind.Root)
	b.Token(syntaxkind.Identifier, "hello")
	b.Token(syntaxkind.Whitespace, " ")
	b.Token(syntaxkind.Identifier, "world")
	b.FinishNode()
	return b.Finish()
}

func TestBuilderProducesFullCoverage(t *testing.T) {
	root := buildHelloWorld(NewBuilderWithCache(NewCache(0)))
	node := NewRoot(root)
	if got, want := node.Text(), "hello world"; got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
	if got, want := node.TextRange().Len(), uint32(len("hello world")); got != want {
		t.Fatalf("TextRange length = %d, want %d", got, want)
	}
}

func TestNodeInterningSharesPointers(t *testing.T) {
	cache := NewCache(0)
	n1 := buildHelloWorld(NewBuilderWithCache(cache))
	n2 := buildHelloWorld(NewBuilderWithCache(cache))
	if n1 != n2 {
		t.Fatalf("expected structurally identical trees to be pointer-equal, got %p and %p", n1, n2)
	}
}

func TestCheckpointRetroactiveWrap(t *testing.T) {
	// Simulate Pratt reparenting: parse "1", then see "+", then wrap the
	// already-emitted "1" plus the new "2" into an Apply node whose
	// receiver is "+".
	b := NewBuilderWithCache(NewCache(0))
	b.StartNode(syntaxkind.Root)
	cp := b.Checkpoint()
	b.Token(syntaxkind.Integer, "1")
	b.StartNodeAt(cp, syntaxkind.Apply)
	b.Token(syntaxkind.Plus, "+")
	b.Token(syntaxkind.Integer, "2")
	b.FinishNode()
	b.FinishNode()
	root := NewRoot(b.Finish())

	if got, want := root.Text(), "1+2"; got != want {
		t.Fatalf("Text() = %q, want %q", got, want)
	}
	children := root.Children()
	if len(children) != 1 || children[0].Kind() != syntaxkind.Apply {
		t.Fatalf("expected a single Apply child, got %v", children)
	}
	// The checkpoint was taken before "1" was emitted, so StartNodeAt
	// moves "1" into the new Apply node along with the operator and RHS
	// added afterward: the whole "1+2" ends up under one Apply node.
	if applyText := children[0].Text(); applyText != "1+2" {
		t.Fatalf("Apply node text = %q, want %q", applyText, "1+2")
	}
}

func TestDebugFormatIsStable(t *testing.T) {
	root := NewRoot(buildHelloWorld(NewBuilderWithCache(NewCache(0))))
	s := root.String()
	if !strings.HasPrefix(s, "ROOT@0..11") {
		t.Fatalf("unexpected debug header: %s", s)
	}
	if !strings.Contains(s, `IDENTIFIER@0..5 "hello"`) {
		t.Fatalf("missing hello token in debug dump: %s", s)
	}
}
