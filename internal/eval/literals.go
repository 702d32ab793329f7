package eval

import (
	"strconv"
	"strings"

	"github.com/gmofishsauce/cadenza/internal/diag"
	"github.com/gmofishsauce/cadenza/internal/intern"
	"github.com/gmofishsauce/cadenza/internal/values"
)

func parseInteger(text string, c *diag.Compiler, span intern.Span) values.Value {
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		c.Report(diag.Internal("malformed integer literal: " + text).WithSpan(span))
		return values.Nil{}
	}
	return values.Integer(n)
}

func parseFloat(text string, c *diag.Compiler, span intern.Span) values.Value {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		c.Report(diag.Internal("malformed float literal: " + text).WithSpan(span))
		return values.Nil{}
	}
	return values.Float(f)
}

// unescapeString processes the limited escape set the lexer allows
// through (backslash followed by any byte): \n, \t, \r, \\, \", and
// otherwise passes the escaped byte through literally.
func unescapeString(text string) string {
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		if text[i] != '\\' || i+1 >= len(text) {
			b.WriteByte(text[i])
			continue
		}
		i++
		switch text[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\', '"':
			b.WriteByte(text[i])
		default:
			b.WriteByte(text[i])
		}
	}
	return b.String()
}
