package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/calc-lang/calc-lang/internal/incr"
)

var checkStats bool

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Run semantic checks over a source file",
	Long: `Parses and checks a calc source file: undeclared variables, calls
to unknown functions, wrong argument counts and duplicate parameters.
Exits non-zero when diagnostics are found.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkStats, "stats", false, "print parse and check work counters")
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	db := incr.NewDatabase()
	db.SetText(path, string(src))
	diags, err := db.Check(path)
	if checkStats {
		defer printStats(db.Stats(path))
	}
	if err != nil {
		return reportError(path, string(src), err)
	}
	logger.Debug("checked", slog.String("file", path), slog.Int("diagnostics", len(diags)))

	if len(diags) > 0 {
		printDiags(path, string(src), diags)
		return errReported
	}
	return nil
}

func printStats(s incr.Stats) {
	fmt.Printf("revision:    %d\n", s.Revision)
	fmt.Printf("parses:      %d (%d reused)\n", s.Parses, s.ParseReuses)
	fmt.Printf("stmt checks: %d (%d reused)\n", s.StmtChecks, s.StmtCheckReuses)
}
