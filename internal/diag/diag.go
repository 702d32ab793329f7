// Package diag implements Cadenza's diagnostic protocol: short error codes,
// severities, spans, and stack traces, plus the per-evaluation Compiler
// context that accumulates them.
//
// The code-to-kind mapping is not alphabetical; it is fixed by the
// original implementation and preserved here exactly so that tooling
// keyed on "E0003" keeps meaning "arity error" forever:
// UndefinedVariable=E0001, Type=E0002, Arity=E0003, NotCallable=E0004,
// Syntax=E0005, Internal=E0006, Parse=E0007.
package diag

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gmofishsauce/cadenza/internal/intern"
)

// Code is a short, stable diagnostic code.
type Code int

const (
	CodeUndefinedVariable Code = iota + 1 // E0001
	CodeType                              // E0002
	CodeArity                             // E0003
	CodeNotCallable                       // E0004
	CodeSyntax                            // E0005
	CodeInternal                          // E0006
	CodeParse                             // E0007
)

// String renders the wire form, e.g. "E0003".
func (c Code) String() string {
	return fmt.Sprintf("E%04d", int(c))
}

// Level is the severity of a Diagnostic.
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelHint
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Frame is one entry in a Diagnostic's stack trace, innermost first.
type Frame struct {
	Name string // empty means an anonymous top-level frame
	File string
	Span *intern.Span
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Code    Code
	Level   Level
	Message string
	Span    *intern.Span
	File    string
	Stack   []Frame
}

// WithSpan returns d with Span set, for fluent construction.
func (d Diagnostic) WithSpan(s intern.Span) Diagnostic {
	d.Span = &s
	return d
}

// WithFile returns d with File set.
func (d Diagnostic) WithFile(file string) Diagnostic {
	d.File = file
	return d
}

// PushFrame appends a stack frame (innermost-first order is the caller's
// responsibility: call PushFrame as each enclosing call unwinds).
func (d Diagnostic) PushFrame(f Frame) Diagnostic {
	d.Stack = append(append([]Frame{}, d.Stack...), f)
	return d
}

// Constructors for each diagnostic kind, named after the condition they
// describe rather than their numeric code.

func UndefinedVariable(name string) Diagnostic {
	return Diagnostic{Code: CodeUndefinedVariable, Level: LevelError, Message: fmt.Sprintf("undefined variable: %s", name)}
}

func TypeError(message string) Diagnostic {
	return Diagnostic{Code: CodeType, Level: LevelError, Message: message}
}

func Arity(expected, actual int) Diagnostic {
	return Diagnostic{Code: CodeArity, Level: LevelError, Message: fmt.Sprintf("arity error: expected %d arguments, got %d", expected, actual)}
}

func NotCallable(kind string) Diagnostic {
	return Diagnostic{Code: CodeNotCallable, Level: LevelError, Message: fmt.Sprintf("value of kind %s is not callable", kind)}
}

func Syntax(message string) Diagnostic {
	return Diagnostic{Code: CodeSyntax, Level: LevelError, Message: message}
}

func Internal(message string) Diagnostic {
	return Diagnostic{Code: CodeInternal, Level: LevelError, Message: message}
}

func Parse(message string) Diagnostic {
	return Diagnostic{Code: CodeParse, Level: LevelError, Message: message}
}

// String renders the diagnostic as:
//
//	error: message in file at start..end
//	Stack trace:
//	  0: name in file at start..end
func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", d.Level, d.Message)
	if d.File != "" {
		fmt.Fprintf(&b, " in %s", d.File)
	}
	if d.Span != nil {
		fmt.Fprintf(&b, " at %d..%d", d.Span.Start, d.Span.End)
	}
	if len(d.Stack) > 0 {
		b.WriteString("\nStack trace:\n")
		for i, f := range d.Stack {
			name := f.Name
			if name == "" {
				name = "<anonymous>"
			}
			fmt.Fprintf(&b, "  %d: %s", i, name)
			if f.File != "" {
				fmt.Fprintf(&b, " in %s", f.File)
			}
			if f.Span != nil {
				fmt.Fprintf(&b, " at %d..%d", f.Span.Start, f.Span.End)
			}
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Compiler is the mutable per-evaluation context threaded through parsing,
// evaluation, and inference. It accumulates diagnostics and carries an
// invocation id used to correlate frames across a long REPL session.
type Compiler struct {
	ID          uuid.UUID
	Diagnostics []Diagnostic
	// Hoisted records names pre-declared during the function-hoisting scan
	// of a block, so forward references resolve before the real value
	// is installed.
	Hoisted map[intern.ID]bool
}

// NewCompiler creates an empty compiler context with a fresh invocation id.
func NewCompiler() *Compiler {
	return &Compiler{
		ID:      uuid.New(),
		Hoisted: make(map[intern.ID]bool),
	}
}

// Report appends a diagnostic.
func (c *Compiler) Report(d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

// HasErrors reports whether any diagnostic is at error level.
func (c *Compiler) HasErrors() bool {
	for _, d := range c.Diagnostics {
		if d.Level == LevelError {
			return true
		}
	}
	return false
}
