package diag

import (
	"strings"
	"testing"

	"github.com/gmofishsauce/cadenza/internal/intern"
)

func TestCodeNumbering(t *testing.T) {
	cases := []struct {
		code Code
		want string
	}{
		{CodeUndefinedVariable, "E0001"},
		{CodeType, "E0002"},
		{CodeArity, "E0003"},
		{CodeNotCallable, "E0004"},
		{CodeSyntax, "E0005"},
		{CodeInternal, "E0006"},
		{CodeParse, "E0007"},
	}
	for _, c := range cases {
		if got := c.code.String(); got != c.want {
			t.Errorf("Code(%d).String() = %q, want %q", c.code, got, c.want)
		}
	}
}

func TestArityMessage(t *testing.T) {
	d := Arity(2, 1)
	if !strings.Contains(d.Message, "expected 2 arguments, got 1") {
		t.Errorf("unexpected message: %s", d.Message)
	}
}

func TestDiagnosticString(t *testing.T) {
	d := UndefinedVariable("x").WithFile("main.cdz").WithSpan(intern.Span{Start: 3, End: 4})
	d = d.PushFrame(Frame{Name: "add", File: "main.cdz", Span: &intern.Span{Start: 0, End: 10}})
	s := d.String()
	if !strings.HasPrefix(s, "error: undefined variable: x in main.cdz at 3..4") {
		t.Fatalf("unexpected header: %s", s)
	}
	if !strings.Contains(s, "Stack trace:\n  0: add in main.cdz at 0..10") {
		t.Fatalf("unexpected stack trace: %s", s)
	}
}

func TestCompilerHasErrors(t *testing.T) {
	c := NewCompiler()
	if c.HasErrors() {
		t.Fatal("fresh compiler should have no errors")
	}
	c.Report(Diagnostic{Level: LevelWarning, Message: "just a warning"})
	if c.HasErrors() {
		t.Fatal("warnings should not count as errors")
	}
	c.Report(TypeError("boom"))
	if !c.HasErrors() {
		t.Fatal("expected HasErrors after reporting an error-level diagnostic")
	}
}
