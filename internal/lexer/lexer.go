// Package lexer turns UTF-8 source bytes into a flat token stream.
//
// Grounded on the teacher's lang/ylex/lexer.go: a single-byte-lookahead
// cursor over a byte slice (the teacher used a bufio.Reader over stdin;
// Cadenza lexes an in-memory string instead, since it is a library, not a
// pipeline stage) with longest-match punctuation scanning and dedicated
// scanners for identifiers, numbers, and strings. Unlike the teacher's
// lexer (which never emits spans, only "line, category, value" triples for
// a downstream text protocol), every Cadenza token carries an intern.Span
// so the CST can losslessly reconstruct the source.
package lexer

import (
	"strings"
	"unicode/utf8"

	"github.com/gmofishsauce/cadenza/internal/intern"
	"github.com/gmofishsauce/cadenza/internal/syntaxkind"
)

// Token is one lexical unit: a kind plus the span of source bytes it
// covers. The lexer is total — it never fails; malformed input becomes an
// ErrorToken token carrying the offending span.
type Token struct {
	Kind syntaxkind.Kind
	Span intern.Span
}

// Lex scans src in full and returns every token, including trivia. The
// concatenation of token spans covers [0, len(src)) exactly and in order
// (CST invariant: full span coverage).
func Lex(src string) []Token {
	l := &lexer{src: src}
	var toks []Token
	for {
		tok, ok := l.next()
		if !ok {
			break
		}
		toks = append(toks, tok)
	}
	return toks
}

type lexer struct {
	src     string
	pos     int // byte offset of the next unread byte
	pending *Token
}

func (l *lexer) eof() bool { return l.pos >= len(l.src) }

func (l *lexer) peek() byte {
	if l.eof() {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.src) {
		return 0
	}
	return l.src[l.pos+n]
}

func (l *lexer) advance() byte {
	b := l.src[l.pos]
	l.pos++
	return b
}

func (l *lexer) emit(kind syntaxkind.Kind, start int) Token {
	return Token{Kind: kind, Span: intern.Span{Start: uint32(start), End: uint32(l.pos)}}
}

// next scans and returns the next token, or ok=false at end of input.
func (l *lexer) next() (Token, bool) {
	if l.pending != nil {
		tok := *l.pending
		l.pending = nil
		return tok, true
	}
	if l.eof() {
		return Token{}, false
	}
	start := l.pos
	c := l.peek()

	switch {
	case c == '\n':
		l.advance()
		return l.emit(syntaxkind.Newline, start), true
	case c == ' ' || c == '\t' || c == '\r':
		for !l.eof() && (l.peek() == ' ' || l.peek() == '\t' || l.peek() == '\r') {
			l.advance()
		}
		return l.emit(syntaxkind.Whitespace, start), true
	case c == '#':
		return l.scanCommentFull(start), true
	case c == '"':
		return l.scanString(start), true
	case c == '\'':
		return l.scanChar(start), true
	case isDigit(c):
		return l.scanNumber(start), true
	case isIdentStart(c):
		return l.scanIdentifier(start), true
	default:
		if tok, ok := l.scanPunct(start); ok {
			return tok, true
		}
		// Unknown byte (including the lead byte of a multi-byte UTF-8
		// sequence used outside an identifier/string context): consume
		// one rune and emit an error token so the lexer never fails.
		_, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if size == 0 {
			size = 1
		}
		l.pos += size
		return l.emit(syntaxkind.ErrorToken, start), true
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

func (l *lexer) scanIdentifier(start int) Token {
	for !l.eof() && isIdentCont(l.peek()) {
		l.advance()
	}
	return l.emit(syntaxkind.Identifier, start)
}

// scanNumber handles decimal integers and floats, with 0x/0b/0o prefixes
// and '_' digit-group separators, following the teacher's scanNumber.
func (l *lexer) scanNumber(start int) Token {
	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X' ||
		l.peekAt(1) == 'b' || l.peekAt(1) == 'B' ||
		l.peekAt(1) == 'o' || l.peekAt(1) == 'O') {
		l.advance()
		l.advance()
		for !l.eof() && (isHexDigit(l.peek()) || l.peek() == '_') {
			l.advance()
		}
		return l.emit(syntaxkind.Integer, start)
	}

	kind := syntaxkind.Integer
	for !l.eof() && (isDigit(l.peek()) || l.peek() == '_') {
		l.advance()
	}
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		kind = syntaxkind.Float
		l.advance() // consume '.'
		for !l.eof() && (isDigit(l.peek()) || l.peek() == '_') {
			l.advance()
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		save := l.pos
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		if isDigit(l.peek()) {
			kind = syntaxkind.Float
			for !l.eof() && isDigit(l.peek()) {
				l.advance()
			}
		} else {
			l.pos = save
		}
	}
	return l.emit(kind, start)
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// scanCommentFull handles both '#' line comments and '##' doc comments. It
// emits the CommentStart marker token immediately and queues the rest of
// the line as a single CommentContent/DocCommentContent token, so a
// comment produces the marker plus, when the rest of the line is not
// empty, exactly one body token covering it, rather than leaking its body
// to ordinary identifier/punctuation scanning.
func (l *lexer) scanCommentFull(start int) Token {
	l.advance() // first '#'
	doc := false
	if l.peek() == '#' {
		l.advance() // second '#'
		doc = true
	}
	markerEnd := l.pos
	bodyStart := l.pos
	for !l.eof() && l.peek() != '\n' {
		l.advance()
	}
	if l.pos > bodyStart {
		kind := syntaxkind.CommentContent
		if doc {
			kind = syntaxkind.DocCommentContent
		}
		body := Token{Kind: kind, Span: intern.Span{Start: uint32(bodyStart), End: uint32(l.pos)}}
		l.pending = &body
	}
	return Token{Kind: syntaxkind.CommentStart, Span: intern.Span{Start: uint32(start), End: uint32(markerEnd)}}
}

// ScanCommentBody is exposed for callers that only have a CommentStart
// token's span and want to recompute its body without re-lexing from
// scratch (e.g. formatting tools operating on a stored token stream).
func ScanCommentBody(src string, from int, doc bool) Token {
	pos := from
	for pos < len(src) && src[pos] != '\n' {
		pos++
	}
	kind := syntaxkind.CommentContent
	if doc {
		kind = syntaxkind.DocCommentContent
	}
	return Token{Kind: kind, Span: intern.Span{Start: uint32(from), End: uint32(pos)}}
}

// scanString scans a double-quoted string literal, preserving escape
// sequences literally in the token text (the escape is resolved later by
// whatever consumes StringContentWithEscape, mirroring the teacher's
// scanString which also defers interpretation).
func (l *lexer) scanString(start int) Token {
	l.advance() // opening quote
	escaped := false
	for !l.eof() && l.peek() != '"' {
		if l.peek() == '\\' {
			escaped = true
			l.advance()
			if !l.eof() {
				l.advance() // the escaped byte itself
			}
			continue
		}
		l.advance()
	}
	if !l.eof() {
		l.advance() // closing quote
	}
	if escaped {
		return l.emit(syntaxkind.StringContentWithEscape, start)
	}
	return l.emit(syntaxkind.StringContent, start)
}

func (l *lexer) scanChar(start int) Token {
	l.advance() // opening quote
	if l.peek() == '\\' {
		l.advance()
		if !l.eof() {
			l.advance()
		}
	} else if !l.eof() {
		_, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if size == 0 {
			size = 1
		}
		l.pos += size
	}
	if l.peek() == '\'' {
		l.advance()
	} else {
		return l.emit(syntaxkind.ErrorToken, start)
	}
	return l.emit(syntaxkind.CharLiteral, start)
}

// punct is one entry of the longest-match-first punctuation table.
type punct struct {
	text string
	kind syntaxkind.Kind
}

// puncts is ordered strictly longest-text-first (ties broken arbitrarily)
// so that e.g. "<<=" beats "<<" beats "<", matching the teacher's principle
// (see lexer.go handleDirective dispatch) of checking multi-character
// operators before their prefixes. Sorting purely by length guarantees
// correctness regardless of which entries happen to be prefixes of others.
var puncts = []punct{
	// length 3
	{"<<=", syntaxkind.LtLtEq},
	{">>=", syntaxkind.GtGtEq},
	{"..=", syntaxkind.DotDotEq},
	{"...", syntaxkind.Ellipsis},
	// length 2
	{"**", syntaxkind.StarStar},
	{"==", syntaxkind.EqEq},
	{"!=", syntaxkind.BangEq},
	{"<=", syntaxkind.LtEq},
	{">=", syntaxkind.GtEq},
	{"<<", syntaxkind.LtLt},
	{">>", syntaxkind.GtGt},
	{"->", syntaxkind.Arrow},
	{"=>", syntaxkind.FatArrow},
	{"<-", syntaxkind.LArrow},
	{"|>", syntaxkind.PipeGt},
	{"||", syntaxkind.PipePipe},
	{"&&", syntaxkind.AmpAmp},
	{"::", syntaxkind.ColonColon},
	{"..", syntaxkind.DotDot},
	{"+=", syntaxkind.PlusEq},
	{"-=", syntaxkind.MinusEq},
	{"*=", syntaxkind.StarEq},
	{"/=", syntaxkind.SlashEq},
	{"%=", syntaxkind.PercentEq},
	{"&=", syntaxkind.AmpEq},
	{"|=", syntaxkind.PipeEq},
	{"^=", syntaxkind.CaretEq},
	{"|?", syntaxkind.PipeQuestion},
	// length 1
	{"(", syntaxkind.LParen},
	{")", syntaxkind.RParen},
	{"[", syntaxkind.LBracket},
	{"]", syntaxkind.RBracket},
	{"{", syntaxkind.LBrace},
	{"}", syntaxkind.RBrace},
	{",", syntaxkind.Comma},
	{":", syntaxkind.Colon},
	{".", syntaxkind.Dot},
	{"|", syntaxkind.Pipe},
	{"&", syntaxkind.Amp},
	{"^", syntaxkind.Caret},
	{"~", syntaxkind.Tilde},
	{"!", syntaxkind.Bang},
	{"?", syntaxkind.Question},
	{"$", syntaxkind.Dollar},
	{"@", syntaxkind.At},
	{"+", syntaxkind.Plus},
	{"-", syntaxkind.Minus},
	{"*", syntaxkind.Star},
	{"/", syntaxkind.Slash},
	{"%", syntaxkind.Percent},
	{"=", syntaxkind.Eq},
	{"<", syntaxkind.Lt},
	{">", syntaxkind.Gt},
}

func init() {
	// Ensure the table really is longest-first; a silent ordering bug
	// here would make e.g. "==" lex as two "=" tokens.
	for i := 1; i < len(puncts); i++ {
		if len(puncts[i].text) > len(puncts[i-1].text) {
			panic("lexer: puncts table is not longest-first")
		}
	}
}

func (l *lexer) scanPunct(start int) (Token, bool) {
	rest := l.src[l.pos:]
	for _, p := range puncts {
		if strings.HasPrefix(rest, p.text) {
			l.pos += len(p.text)
			return l.emit(p.kind, start), true
		}
	}
	return Token{}, false
}
