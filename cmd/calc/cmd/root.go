package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/calc-lang/calc-lang/internal/config"
	"github.com/calc-lang/calc-lang/internal/diag"
	"github.com/calc-lang/calc-lang/internal/lexer"
	"github.com/calc-lang/calc-lang/internal/parser"
)

var (
	cfgFile string
	verbose bool

	cfg    = config.Default()
	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
)

// errReported marks failures whose diagnostics were already rendered, so
// Execute does not print them a second time.
var errReported = errors.New("diagnostics reported")

var rootCmd = &cobra.Command{
	Use:   "calc",
	Short: "Front end for the calc language",
	Long: `calc parses, checks and formats calc source files.

The language has two statement forms: function definitions
("fn area(w, h) = w * h;") and prints ("print area(3, 4);").
Expressions cover numbers, variables, calls and the four
arithmetic operators.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the CLI. Errors other than already-rendered diagnostics
// are printed here; the caller only decides the exit code.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintf(os.Stderr, "calc: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./calc.toml or ./calc.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func setup(cmd *cobra.Command, args []string) error {
	var (
		path string
		err  error
	)
	if cfgFile != "" {
		path = cfgFile
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, path, err = config.Discover()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level := cfg.Log.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler).With(slog.String("run_id", uuid.New().String()[:8]))
	if path != "" {
		logger.Debug("config loaded", slog.String("path", path))
	}
	return nil
}

// colorEnabled decides whether diagnostics are styled, honoring the
// configured mode and falling back to terminal detection for "auto".
func colorEnabled() bool {
	switch cfg.Output.Color {
	case "always":
		return true
	case "never":
		return false
	}
	stat, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func formatter(unit, src string) *diag.Formatter {
	return diag.NewFormatter(unit, src).WithColor(colorEnabled())
}

// printDiags renders diagnostics to stderr in the configured output
// format: "pretty" shows the source line with a caret underline, "short"
// is one line per diagnostic.
func printDiags(unit, src string, diags []diag.Diagnostic) {
	f := formatter(unit, src)
	if cfg.Output.Format == "short" {
		for _, d := range diags {
			line, col := f.Position(d.Start)
			fmt.Fprintf(os.Stderr, "%s:%d:%d: %s\n", unit, line, col, d)
		}
		return
	}
	f.FormatAll(os.Stderr, diags)
}

// reportError renders a front-end error with source context when it is a
// structured lexer or parser error; anything else passes through.
func reportError(unit, src string, err error) error {
	d, ok := toDiagnostic(err)
	if !ok {
		return err
	}
	printDiags(unit, src, []diag.Diagnostic{d})
	return errReported
}

func toDiagnostic(err error) (diag.Diagnostic, bool) {
	var le *lexer.LexError
	if errors.As(err, &le) {
		return le.ToDiagnostic(), true
	}
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		return pe.ToDiagnostic(), true
	}
	var ne *parser.NumberError
	if errors.As(err, &ne) {
		return ne.ToDiagnostic(), true
	}
	return diag.Diagnostic{}, false
}
