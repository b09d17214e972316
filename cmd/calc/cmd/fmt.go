package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calc-lang/calc-lang/internal/ast"
	"github.com/calc-lang/calc-lang/internal/intern"
	"github.com/calc-lang/calc-lang/internal/parser"
)

var fmtWrite bool

var fmtCmd = &cobra.Command{
	Use:   "fmt <file>",
	Short: "Format a source file in canonical form",
	Long: `Prints the canonical form of a calc source file: one statement per
line, single spaces around operators, parentheses only where the
operator layering requires them.`,
	Args: cobra.ExactArgs(1),
	RunE: runFmt,
}

func init() {
	rootCmd.AddCommand(fmtCmd)
	fmtCmd.Flags().BoolVarP(&fmtWrite, "write", "w", false, "write the result back instead of printing it")
}

func runFmt(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	in := intern.New()
	program, err := parser.New(in, path, string(src)).ParseProgram()
	if err != nil {
		return reportError(path, string(src), err)
	}

	out := ast.Sprint(in, program)
	if !fmtWrite {
		fmt.Print(out)
		return nil
	}
	if out == string(src) {
		return nil
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
