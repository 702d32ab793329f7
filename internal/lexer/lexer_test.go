package lexer

import (
	"testing"

	"github.com/gmofishsauce/cadenza/internal/syntaxkind"
)

func kinds(toks []Token) []syntaxkind.Kind {
	ks := make([]syntaxkind.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestLexFullCoverage(t *testing.T) {
	src := "let x = 2 + 3 * 4\nx"
	toks := Lex(src)
	if len(toks) == 0 {
		t.Fatal("expected tokens")
	}
	if toks[0].Span.Start != 0 {
		t.Fatalf("first token must start at 0, got %d", toks[0].Span.Start)
	}
	if toks[len(toks)-1].Span.End != uint32(len(src)) {
		t.Fatalf("last token must end at %d, got %d", len(src), toks[len(toks)-1].Span.End)
	}
	for i := 1; i < len(toks); i++ {
		if toks[i].Span.Start != toks[i-1].Span.End {
			t.Fatalf("gap/overlap between token %d (%v) and %d (%v)", i-1, toks[i-1], i, toks[i])
		}
	}
}

func TestLexPunctuationLongestMatch(t *testing.T) {
	toks := Lex("<<= << <= < == = |> | ...")
	got := kinds(toks)
	want := []syntaxkind.Kind{
		syntaxkind.LtLtEq, syntaxkind.Whitespace,
		syntaxkind.LtLt, syntaxkind.Whitespace,
		syntaxkind.LtEq, syntaxkind.Whitespace,
		syntaxkind.Lt, syntaxkind.Whitespace,
		syntaxkind.EqEq, syntaxkind.Whitespace,
		syntaxkind.Eq, syntaxkind.Whitespace,
		syntaxkind.PipeGt, syntaxkind.Whitespace,
		syntaxkind.Pipe, syntaxkind.Whitespace,
		syntaxkind.Ellipsis,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLexNumberAndIdentifierAdjacency(t *testing.T) {
	// A numeric literal immediately followed by an identifier stays two
	// tokens; unit-constructor adjacency is a parser concern, not a lexer
	// one.
	toks := Lex("100meter")
	if len(toks) != 2 || toks[0].Kind != syntaxkind.Integer || toks[1].Kind != syntaxkind.Identifier {
		t.Fatalf("got %v", kinds(toks))
	}
}

func TestLexFloatVsInteger(t *testing.T) {
	toks := Lex("42 3.14 2.")
	if toks[0].Kind != syntaxkind.Integer {
		t.Fatalf("42 should lex as Integer, got %s", toks[0].Kind)
	}
	if toks[2].Kind != syntaxkind.Float {
		t.Fatalf("3.14 should lex as Float, got %s", toks[2].Kind)
	}
	// "2." with no following digit: '.' is not consumed into the number,
	// since scanNumber requires a digit after the dot.
	if toks[4].Kind != syntaxkind.Integer {
		t.Fatalf("2 should lex as Integer (trailing dot is separate), got %s", toks[4].Kind)
	}
}

func TestLexStringEscape(t *testing.T) {
	toks := Lex(`"plain" "with\"escape"`)
	if toks[0].Kind != syntaxkind.StringContent {
		t.Fatalf("expected StringContent, got %s", toks[0].Kind)
	}
	if toks[2].Kind != syntaxkind.StringContentWithEscape {
		t.Fatalf("expected StringContentWithEscape, got %s", toks[2].Kind)
	}
}

func TestLexCommentIsOneBodyToken(t *testing.T) {
	toks := Lex("x # trailing comment\n## doc line\ny")
	got := kinds(toks)
	want := []syntaxkind.Kind{
		syntaxkind.Identifier, syntaxkind.Whitespace,
		syntaxkind.CommentStart, syntaxkind.CommentContent, syntaxkind.Newline,
		syntaxkind.CommentStart, syntaxkind.DocCommentContent, syntaxkind.Newline,
		syntaxkind.Identifier,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLexIsTotal(t *testing.T) {
	// Malformed input (unterminated string, stray byte) must never panic
	// and must still yield full span coverage.
	src := "\"unterminated \x01 let"
	toks := Lex(src)
	var covered uint32
	for _, tok := range toks {
		if tok.Span.Start != covered {
			t.Fatalf("coverage gap before %v", tok)
		}
		covered = tok.Span.End
	}
	if covered != uint32(len(src)) {
		t.Fatalf("coverage ended at %d, want %d", covered, len(src))
	}
}
