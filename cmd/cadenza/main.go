// Command cadenza is the CLI shell around the Cadenza library: parse,
// evaluate, infer types, lower to WASM, or drop into an interactive
// REPL, one cobra subcommand per operation.
//
// Grounded on playbymail-ottomap's cmd/render/main.go and main.go: a
// package-level semver.Version stamped with semver.Commit(), a root
// cobra.Command with SilenceUsage/SilenceErrors set and subcommands
// added via cmd.AddCommand, and --version handled before the command
// tree runs at all.
package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/maloquacious/semver"
	"github.com/spf13/cobra"

	"github.com/gmofishsauce/cadenza"
	"github.com/gmofishsauce/cadenza/internal/config"
	"github.com/gmofishsauce/cadenza/internal/diag"
	"github.com/gmofishsauce/cadenza/internal/eval"
	"github.com/gmofishsauce/cadenza/internal/replshell"
	"github.com/gmofishsauce/cadenza/internal/ssa"
	"github.com/gmofishsauce/cadenza/internal/types"
	"github.com/gmofishsauce/cadenza/internal/values"
	"github.com/gmofishsauce/cadenza/internal/wasmgen"
)

var version = semver.Version{
	Major: 0,
	Minor: 1,
	Patch: 0,
	Build: semver.Commit(),
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cadenza",
		Short:         "Cadenza language tools",
		Long:          "Parse, evaluate, infer types over, and lower Cadenza source to WASM.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Short(),
	}
	root.AddCommand(newRunCmd(), newParseCmd(), newInferCmd(), newWasmCmd(), newReplCmd())
	return root
}

// loadProject reads ./cadenza.toml if present, tolerating its absence
// per internal/config.Load's zero-value contract.
func loadProject() *config.Project {
	p, err := config.Load("cadenza.toml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "cadenza: %v\n", err)
		return &config.Project{}
	}
	return p
}

func readSource(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cadenza: read %s: %w", path, err)
	}
	return string(b), nil
}

func printDiagnostics(c *diag.Compiler) {
	for _, d := range c.Diagnostics {
		fmt.Fprintln(os.Stderr, d.String())
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "parse and evaluate a Cadenza source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loadProject()
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			parsed, err := cadenza.Parse(src)
			if err != nil {
				printDiagnostics(parsed.Diagnostics())
				return nil
			}
			env := eval.NewGlobalEnv()
			comp := parsed.Diagnostics()
			results := cadenza.Eval(parsed, env, comp)
			fmt.Print(cadenza.DisplayAll(results))
			printDiagnostics(comp)
			return nil
		},
	}
}

func newParseCmd() *cobra.Command {
	var showAST bool
	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "print the CST or AST debug dump of a Cadenza source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			parsed, err := cadenza.Parse(src)
			if err != nil {
				printDiagnostics(parsed.Diagnostics())
			}
			if showAST {
				for _, stmt := range parsed.Statements() {
					fmt.Printf("%#v\n", stmt)
				}
				return nil
			}
			syntax := parsed.Syntax()
			fmt.Println(syntax.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&showAST, "ast", false, "print the AST view instead of the CST")
	return cmd
}

func newInferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "infer <file>",
		Short: "run type inference over a Cadenza source file's top-level statements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			parsed, perr := cadenza.Parse(src)
			if perr != nil {
				printDiagnostics(parsed.Diagnostics())
			}
			env := values.New()
			comp := parsed.Diagnostics()
			inf := types.NewInferencer()
			tenv := types.FromContext(env)
			for _, stmt := range parsed.Statements() {
				ty := inf.InferExpr(stmt, tenv, comp)
				fmt.Println(ty)
			}
			printDiagnostics(comp)
			return nil
		},
	}
}

func newWasmCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "wasm <file>",
		Short: "lower a Cadenza source file's numeric top-level functions to a WASM module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proj := loadProject()
			src, err := readSource(args[0])
			if err != nil {
				return err
			}
			parsed, perr := cadenza.Parse(src)
			if perr != nil {
				printDiagnostics(parsed.Diagnostics())
				return perr
			}

			b := ssa.NewBuilder()
			module, err := lowerTopLevelModule(b, parsed, proj)
			if err != nil {
				return fmt.Errorf("cadenza: lower to SSA: %w", err)
			}

			bytes, err := wasmgen.Generate(module)
			if err != nil {
				return fmt.Errorf("cadenza: generate WASM: %w", err)
			}
			if out == "" {
				out = "out.wasm"
			}
			if err := os.WriteFile(out, bytes, 0o644); err != nil {
				return fmt.Errorf("cadenza: write %s: %w", out, err)
			}
			fmt.Printf("wrote %s (%s)\n", out, humanize.Bytes(uint64(len(bytes))))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (default out.wasm)")
	return cmd
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "start an interactive line-mode Cadenza session",
		RunE: func(cmd *cobra.Command, args []string) error {
			loadProject()
			sh := replshell.New(os.Stdin, os.Stdout, os.Stderr)
			if err := sh.EnableRawMode(); err != nil {
				return err
			}
			defer sh.DisableRawMode()
			return sh.Run()
		},
	}
}
