// Package replshell implements the line-mode interactive loop behind
// `cadenza repl`: one persistent values.Env and diag.Compiler per
// session, raw-terminal line editing via golang.org/x/term, and
// terminal-aware colorized diagnostic output via github.com/mattn/go-isatty.
//
// Grounded on gmofishsauce-wut4/emul/main.go's setupTerminal/
// restoreTerminal pair (term.IsTerminal / term.GetState / term.MakeRaw /
// term.Restore, always checked against whether stdin is actually a
// terminal before touching its mode) and on the teacher's own plain
// fmt.Fprintf(os.Stderr, ...) diagnostic style — no logging framework is
// introduced here either.
package replshell

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/gmofishsauce/cadenza/internal/diag"
	"github.com/gmofishsauce/cadenza/internal/eval"
	"github.com/gmofishsauce/cadenza/internal/values"

	"github.com/gmofishsauce/cadenza"
)

// Shell is one REPL session: persistent environment, persistent
// diagnostic compiler (so stack-trace correlation survives across
// lines, matching diag.Compiler's per-invocation id design), and the
// raw terminal state to restore on exit.
type Shell struct {
	env    *values.Env
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	color  bool

	stdinFd      int
	rawRestore   *term.State
	rawIsEnabled bool
}

// New builds a Shell reading from in and writing results/diagnostics to
// out/errOut. Colorized output is only enabled when errOut is an actual
// terminal, mirroring the teacher's habit of never assuming a pipe
// destination supports escape codes.
func New(in io.Reader, out, errOut io.Writer) *Shell {
	color := false
	if f, ok := errOut.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Shell{
		env:     eval.NewGlobalEnv(),
		in:      bufio.NewReader(in),
		out:     out,
		errOut:  errOut,
		color:   color,
		stdinFd: -1,
	}
}

// EnableRawMode puts stdin into raw mode for character-at-a-time input,
// if and only if stdin is a real terminal — matching emul/main.go's
// setupTerminal, which is a no-op over a pipe or redirected file.
func (s *Shell) EnableRawMode() error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil
	}
	state, err := term.GetState(fd)
	if err != nil {
		return fmt.Errorf("replshell: get terminal state: %w", err)
	}
	if _, err := term.MakeRaw(fd); err != nil {
		return fmt.Errorf("replshell: set raw mode: %w", err)
	}
	s.stdinFd = fd
	s.rawRestore = state
	s.rawIsEnabled = true
	return nil
}

// DisableRawMode restores whatever terminal state EnableRawMode saved.
// Safe to call even if EnableRawMode was a no-op.
func (s *Shell) DisableRawMode() {
	if s.rawIsEnabled && term.IsTerminal(s.stdinFd) {
		_ = term.Restore(s.stdinFd, s.rawRestore)
	}
	s.rawIsEnabled = false
}

// Run reads lines from the shell's input until EOF, evaluating each as
// a complete Cadenza source fragment against the session's persistent
// environment and printing every top-level result, one per line.
func (s *Shell) Run() error {
	for {
		fmt.Fprint(s.out, s.prompt())
		line, err := s.in.ReadString('\n')
		if len(line) > 0 {
			s.evalLine(line)
		}
		if err == io.EOF {
			fmt.Fprintln(s.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("replshell: read: %w", err)
		}
	}
}

func (s *Shell) prompt() string {
	if s.color {
		return "\x1b[36mcadenza>\x1b[0m "
	}
	return "cadenza> "
}

func (s *Shell) evalLine(line string) {
	parsed, err := cadenza.Parse(line)
	comp := parsed.Diagnostics()
	if err != nil {
		s.reportDiagnostics(comp)
		return
	}
	results := cadenza.Eval(parsed, s.env, comp)
	for _, v := range results {
		fmt.Fprintln(s.out, values.Display(v))
	}
	s.reportDiagnostics(comp)
}

func (s *Shell) reportDiagnostics(c *diag.Compiler) {
	for _, d := range c.Diagnostics {
		if s.color && d.Level == diag.LevelError {
			fmt.Fprintf(s.errOut, "\x1b[31m%s\x1b[0m\n", d.String())
		} else {
			fmt.Fprintln(s.errOut, d.String())
		}
	}
}
