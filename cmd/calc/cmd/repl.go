package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/calc-lang/calc-lang/internal/ast"
	"github.com/calc-lang/calc-lang/internal/check"
	"github.com/calc-lang/calc-lang/internal/diag"
	"github.com/calc-lang/calc-lang/internal/incr"
	"github.com/calc-lang/calc-lang/internal/lexer"
	"github.com/calc-lang/calc-lang/internal/parser"
)

const (
	replUnit    = "repl"
	historyFile = ".calc_history"
	promptMain  = ">> "
	promptCont  = ".. "
)

const replHelp = `REPL commands:
  :help     Show this help
  :list     Show the session's accumulated source
  :stats    Show parse and check reuse counters
  :reset    Discard the session
  :quit     Exit the REPL

Statements (fn ... ; and print ... ;) accumulate in the session and are
re-checked incrementally. A bare expression is parsed, checked against
the session's functions and echoed in canonical form.`

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive front-end session",
	Long: `Starts an interactive session. Statements accumulate and the whole
session is re-checked after each one; unchanged statements reuse
their previous results, which :stats makes visible.`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

type replSession struct {
	db   *incr.Database
	text string
}

func runRepl(cmd *cobra.Command, args []string) error {
	fmt.Printf("calc %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands.\n", Version)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	s := &replSession{db: incr.NewDatabase()}
	s.db.SetText(replUnit, "")

	for {
		input, ok := readInput(ln, s.db)
		if !ok {
			fmt.Println()
			return nil
		}
		line := strings.TrimSpace(input)
		if line == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))

		if strings.HasPrefix(line, ":") {
			if quit := s.command(line); quit {
				return nil
			}
			continue
		}

		s.eval(input)
	}
}

// readInput collects lines until they form something no further input can
// change: a complete statement list, a complete expression, or a hard
// error. While the parse still fails at end of input, the prompt switches
// to continuation mode.
func readInput(ln *liner.State, db *incr.Database) (string, bool) {
	var b strings.Builder

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C drops the partial input.
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		trimmed := strings.TrimSpace(src)
		if trimmed == "" || strings.HasPrefix(trimmed, ":") || complete(db, src) {
			return src, true
		}
	}
}

func complete(db *incr.Database, src string) bool {
	in := db.Interner()
	if _, err := parser.New(in, replUnit, src).ParseProgram(); err == nil {
		return true
	} else if incompleteAtEOF(err) {
		return false
	}
	_, err := parser.New(in, replUnit, src).ParseExpression()
	return err == nil || !incompleteAtEOF(err)
}

// incompleteAtEOF reports whether err is a parse error at end of input,
// the one failure more text can fix.
func incompleteAtEOF(err error) bool {
	var pe *parser.ParseError
	return errors.As(err, &pe) && pe.Found.Type == lexer.EOF
}

func (s *replSession) eval(input string) {
	in := s.db.Interner()

	_, progErr := parser.New(in, replUnit, input).ParseProgram()
	if progErr == nil {
		s.evalStatements(input)
		return
	}

	expr, exprErr := parser.New(in, replUnit, input).ParseExpression()
	if exprErr == nil {
		s.evalExpression(input, expr)
		return
	}

	// Report whichever parse got further.
	err := progErr
	if errorOffset(exprErr) > errorOffset(progErr) {
		err = exprErr
	}
	if !errors.Is(reportError(replUnit, input, err), errReported) {
		fmt.Fprintf(os.Stderr, "calc: %v\n", err)
	}
}

// evalStatements appends input to the session and re-checks the whole
// unit. Statements that did not change reuse their previous findings, so
// the diagnostics printed here always describe the current session state.
func (s *replSession) evalStatements(input string) {
	candidate := s.text + input + "\n"
	s.db.SetText(replUnit, candidate)
	diags, err := s.db.Check(replUnit)
	if err != nil {
		// Input parsed on its own, so the combined text should too.
		s.db.SetText(replUnit, s.text)
		if !errors.Is(reportError(replUnit, candidate, err), errReported) {
			fmt.Fprintf(os.Stderr, "calc: %v\n", err)
		}
		return
	}
	s.text = candidate
	printDiags(replUnit, candidate, diags)
}

// evalExpression checks a bare expression against the session's functions
// and echoes its canonical form.
func (s *replSession) evalExpression(input string, expr ast.Expr) {
	in := s.db.Interner()
	program, err := s.db.Program(replUnit)
	if err != nil {
		program = &ast.Program{}
	}

	checker := check.New(in, program)
	findings := checker.CheckStmt(ast.NewPrintStmt(expr, expr.Span()))
	if len(findings) > 0 {
		// The expression was never rebased, so its spans are absolute.
		diags := make([]diag.Diagnostic, 0, len(findings))
		for _, f := range findings {
			diags = append(diags, diag.Diagnostic{
				Stage:    diag.StageCheck,
				Severity: diag.SeverityError,
				Code:     f.Code,
				Message:  f.Message,
				Start:    f.Span.Start,
				End:      f.Span.End,
			})
		}
		printDiags(replUnit, input, diags)
		return
	}
	fmt.Println(ast.SprintExpr(in, expr))
}

func (s *replSession) command(line string) (quit bool) {
	switch strings.ToLower(line) {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Println(replHelp)
	case ":list":
		if s.text == "" {
			fmt.Println("(empty session)")
			break
		}
		fmt.Print(s.text)
	case ":stats":
		printStats(s.db.Stats(replUnit))
	case ":reset":
		s.text = ""
		s.db.SetText(replUnit, "")
		fmt.Println("session cleared")
	default:
		fmt.Println("unknown command. Type :help for commands.")
	}
	return false
}

func errorOffset(err error) int {
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		return pe.Offset
	}
	var ne *parser.NumberError
	if errors.As(err, &ne) {
		return ne.Offset
	}
	var le *lexer.LexError
	if errors.As(err, &le) {
		return le.Offset
	}
	return -1
}
