package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/calc-lang/calc-lang/internal/ast"
	"github.com/calc-lang/calc-lang/internal/intern"
	"github.com/calc-lang/calc-lang/internal/parser"
)

var parseDump bool

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a source file and print its canonical form",
	Long: `Parses a calc source file and prints it back in canonical form.

With --dump the syntax tree is printed instead, one node per line,
showing each definition's extent in the file and the
definition-relative spans of the nodes inside it.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&parseDump, "dump", false, "print the syntax tree with spans and extents")
}

func runParse(cmd *cobra.Command, args []string) error {
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
	logger.Debug("parsed", slog.String("file", path), slog.Int("stmts", len(program.Stmts)))

	if parseDump {
		ast.Fdump(os.Stdout, in, program)
		return nil
	}
	fmt.Print(ast.Sprint(in, program))
	return nil
}
