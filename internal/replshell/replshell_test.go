package replshell

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunEvaluatesEachLineAgainstPersistentEnv(t *testing.T) {
	in := strings.NewReader("let x = 2\nx + 3\n")
	var out, errOut bytes.Buffer

	sh := New(in, &out, &errOut)
	if err := sh.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if errOut.Len() != 0 {
		t.Errorf("expected no diagnostics, got %q", errOut.String())
	}
	if !strings.Contains(out.String(), "5") {
		t.Errorf("expected the second line's result to include 5, got %q", out.String())
	}
}

func TestRunReportsSyntaxDiagnosticsWithoutStoppingTheLoop(t *testing.T) {
	in := strings.NewReader("1 +\n2 + 3\n")
	var out, errOut bytes.Buffer

	sh := New(in, &out, &errOut)
	if err := sh.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "5") {
		t.Errorf("expected the second line to still evaluate, got %q", out.String())
	}
}

func TestDisableRawModeIsSafeWithoutEnable(t *testing.T) {
	sh := New(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	sh.DisableRawMode() // must not panic when EnableRawMode was never called
}
