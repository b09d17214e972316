// Package incr memoizes parsing and checking per compilation unit so that
// repeated queries after small edits stay cheap. Statements are
// fingerprinted over their definition-relative form, so a statement whose
// own text is unchanged reuses its previous check results even when edits
// to siblings moved it around the unit.
package incr

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sync"

	"github.com/calc-lang/calc-lang/internal/ast"
	"github.com/calc-lang/calc-lang/internal/check"
	"github.com/calc-lang/calc-lang/internal/diag"
	"github.com/calc-lang/calc-lang/internal/intern"
	"github.com/calc-lang/calc-lang/internal/parser"
)

// Stats counts the work a unit's queries did and the work reuse avoided.
type Stats struct {
	Revision        uint64
	Parses          uint64
	ParseReuses     uint64
	StmtChecks      uint64
	StmtCheckReuses uint64
}

type unit struct {
	name     string
	text     string
	revision uint64

	parsedRev uint64
	program   *ast.Program
	parseErr  error

	// statement fingerprint -> findings from the last Check
	checks map[string][]check.Finding

	stats Stats
}

// Database owns an interner and the source text of every unit it has
// seen, and memoizes the queries derived from them. Safe for concurrent
// use.
type Database struct {
	mu    sync.Mutex
	in    *intern.Interner
	units map[string]*unit
}

// NewDatabase returns an empty database with a fresh interner.
func NewDatabase() *Database {
	return &Database{
		in:    intern.New(),
		units: make(map[string]*unit),
	}
}

// Interner exposes the database's interner so callers can turn handles in
// query results back into text.
func (db *Database) Interner() *intern.Interner { return db.in }

// SetText replaces a unit's source text, creating the unit on first use.
// Setting identical text is a no-op; otherwise the unit's revision
// advances and memoized results are refreshed lazily by the next query.
func (db *Database) SetText(name, text string) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u := db.units[name]
	if u == nil {
		u = &unit{name: name, checks: make(map[string][]check.Finding)}
		db.units[name] = u
	} else if u.text == text {
		return
	}
	u.text = text
	u.revision++
}

// Text returns a unit's current source text.
func (db *Database) Text(name string) (string, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := db.units[name]
	if u == nil {
		return "", false
	}
	return u.text, true
}

// Revision returns how many times a unit's text has changed.
func (db *Database) Revision(name string) uint64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	if u := db.units[name]; u != nil {
		return u.revision
	}
	return 0
}

// Stats returns the unit's query counters.
func (db *Database) Stats(name string) Stats {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := db.units[name]
	if u == nil {
		return Stats{}
	}
	stats := u.stats
	stats.Revision = u.revision
	return stats
}

// Program returns the unit's parse, reusing the memoized result until the
// text changes. A parse failure is memoized the same way, so re-querying
// a broken unit does not re-parse it.
func (db *Database) Program(name string) (*ast.Program, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := db.units[name]
	if u == nil {
		return nil, fmt.Errorf("incr: unknown unit %q", name)
	}
	return db.programLocked(u)
}

func (db *Database) programLocked(u *unit) (*ast.Program, error) {
	if u.parsedRev == u.revision {
		u.stats.ParseReuses++
		return u.program, u.parseErr
	}

	p := parser.New(db.in, u.name, u.text)
	u.program, u.parseErr = p.ParseProgram()
	u.parsedRev = u.revision
	u.stats.Parses++
	return u.program, u.parseErr
}

// Check parses and checks the unit. Statements whose fingerprints match a
// previous revision reuse their findings; everything else is checked
// fresh. Diagnostics come back in statement order with absolute offsets,
// resolved against the current extent table even for reused findings.
func (db *Database) Check(name string) ([]diag.Diagnostic, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := db.units[name]
	if u == nil {
		return nil, fmt.Errorf("incr: unknown unit %q", name)
	}

	program, err := db.programLocked(u)
	if err != nil {
		return nil, err
	}

	checker := check.New(db.in, program)
	sigs := signatures(program)

	next := make(map[string][]check.Finding, len(program.Stmts))
	var diags []diag.Diagnostic
	for i, stmt := range program.Stmts {
		fp := fingerprintStmt(stmt, sigs)

		findings, ok := u.checks[fp]
		if !ok {
			findings, ok = next[fp]
		}
		if ok {
			u.stats.StmtCheckReuses++
		} else {
			findings = checker.CheckStmt(stmt)
			u.stats.StmtChecks++
		}
		next[fp] = findings

		for _, f := range findings {
			diags = append(diags, f.Resolve(program, i))
		}
	}
	u.checks = next

	return diags, nil
}

// signatures mirrors the checker's view of the program's functions: first
// definition wins.
func signatures(program *ast.Program) map[intern.FuncID]int {
	sigs := make(map[intern.FuncID]int)
	for _, stmt := range program.Stmts {
		if fn, ok := stmt.(*ast.FnStmt); ok {
			if _, seen := sigs[fn.Name]; !seen {
				sigs[fn.Name] = len(fn.Params)
			}
		}
	}
	return sigs
}

// fingerprintStmt canonicalizes a statement to bytes and hashes it.
// Everything the statement's findings can depend on goes in: node kinds,
// values, interned handles, definition-relative spans, and the signatures
// of the functions the subtree calls. Absolute position stays out; that
// is what lets a fingerprint survive sibling edits.
func fingerprintStmt(stmt ast.Stmt, sigs map[intern.FuncID]int) string {
	h := sha256.New()
	writeStmt(h, stmt, sigs)
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:16])
}

func writeStmt(w io.Writer, stmt ast.Stmt, sigs map[intern.FuncID]int) {
	switch s := stmt.(type) {
	case *ast.FnStmt:
		fmt.Fprintf(w, "fn %d", s.Name)
		writeSpan(w, s.NameSpan)
		for i, p := range s.Params {
			fmt.Fprintf(w, " p%d", p)
			writeSpan(w, s.ParamSpans[i])
		}
		writeExpr(w, s.Body, sigs)
	case *ast.PrintStmt:
		fmt.Fprint(w, "print")
		writeExpr(w, s.Expr, sigs)
	}
	writeSpan(w, stmt.Span())
}

func writeExpr(w io.Writer, e ast.Expr, sigs map[intern.FuncID]int) {
	switch e := e.(type) {
	case *ast.NumberLit:
		fmt.Fprintf(w, " n%g", e.Value)
	case *ast.VarRef:
		fmt.Fprintf(w, " v%d", e.ID)
	case *ast.CallExpr:
		arity, known := sigs[e.Fn]
		if !known {
			arity = -1
		}
		fmt.Fprintf(w, " c%d/%d(", e.Fn, arity)
		for _, arg := range e.Args {
			writeExpr(w, arg, sigs)
		}
		fmt.Fprint(w, ")")
	case *ast.BinaryExpr:
		fmt.Fprintf(w, " b%d(", e.Op)
		writeExpr(w, e.Left, sigs)
		writeExpr(w, e.Right, sigs)
		fmt.Fprint(w, ")")
	}
	writeSpan(w, e.Span())
}

func writeSpan(w io.Writer, sp ast.Span) {
	fmt.Fprintf(w, "@%d:%d:%d", sp.Owner, sp.Start, sp.End)
}
