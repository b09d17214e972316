// Package intern maps identifier text and definition keys to stable,
// comparable handles. The parser and checker never compare strings; they
// compare the handles minted here. Variable and function names live in
// separate namespaces, so a variable and a function may share spelling
// without colliding.
package intern

import "sync"

// VarID identifies an interned variable name.
type VarID uint32

// FuncID identifies an interned function name.
type FuncID uint32

// DefID identifies a top-level definition: a function, the synthetic root
// that groups a unit's top-level print statements, or the parse-time
// placeholder. The zero DefID is always the placeholder.
type DefID uint32

// Unknown is the placeholder owner carried by spans while a definition is
// still being parsed. Rebasing replaces it with the real owner.
const Unknown DefID = 0

// DefKind discriminates definition keys.
type DefKind int

const (
	DefUnknown DefKind = iota
	DefRoot
	DefFunction
)

// String returns the kind name used in dumps and tests.
func (k DefKind) String() string {
	switch k {
	case DefUnknown:
		return "unknown"
	case DefRoot:
		return "root"
	case DefFunction:
		return "function"
	default:
		return "invalid"
	}
}

// DefKey is the identity a DefID was interned under. Function definitions
// key on the interned function name, so a definition keeps its DefID across
// re-parses as long as it keeps its name. Roots key on the unit name, so
// prints in independent units do not share an owner.
type DefKey struct {
	Kind DefKind
	Unit string
	Func FuncID
}

// Interner is the shared symbol table handed explicitly to every operation
// that resolves or allocates a name. It is safe for concurrent use; handles
// minted by the same Interner are directly comparable across parses.
type Interner struct {
	mu sync.RWMutex

	vars     map[string]VarID
	varTexts []string

	funcs     map[string]FuncID
	funcTexts []string

	defs    map[DefKey]DefID
	defKeys []DefKey
}

// New returns an empty Interner with the placeholder definition pre-seeded
// at DefID zero.
func New() *Interner {
	in := &Interner{
		vars:  make(map[string]VarID),
		funcs: make(map[string]FuncID),
		defs:  make(map[DefKey]DefID),
	}
	in.defs[DefKey{Kind: DefUnknown}] = Unknown
	in.defKeys = append(in.defKeys, DefKey{Kind: DefUnknown})
	return in
}

// Var interns a variable name.
func (in *Interner) Var(text string) VarID {
	in.mu.RLock()
	id, ok := in.vars[text]
	in.mu.RUnlock()
	if ok {
		return id
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.vars[text]; ok {
		return id
	}
	id = VarID(len(in.varTexts))
	in.vars[text] = id
	in.varTexts = append(in.varTexts, text)
	return id
}

// Func interns a function name.
func (in *Interner) Func(text string) FuncID {
	in.mu.RLock()
	id, ok := in.funcs[text]
	in.mu.RUnlock()
	if ok {
		return id
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.funcs[text]; ok {
		return id
	}
	id = FuncID(len(in.funcTexts))
	in.funcs[text] = id
	in.funcTexts = append(in.funcTexts, text)
	return id
}

// VarText returns the spelling behind a VarID. It panics on a handle that
// was not minted by this Interner.
func (in *Interner) VarText(id VarID) string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.varTexts[id]
}

// FuncText returns the spelling behind a FuncID.
func (in *Interner) FuncText(id FuncID) string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.funcTexts[id]
}

// FunctionDef interns the definition identity of the named function.
func (in *Interner) FunctionDef(fn FuncID) DefID {
	return in.def(DefKey{Kind: DefFunction, Func: fn})
}

// RootDef interns the synthetic definition that owns the unit's top-level
// print statements.
func (in *Interner) RootDef(unit string) DefID {
	return in.def(DefKey{Kind: DefRoot, Unit: unit})
}

// DefKeyOf returns the key a DefID was interned under.
func (in *Interner) DefKeyOf(id DefID) DefKey {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.defKeys[id]
}

func (in *Interner) def(key DefKey) DefID {
	in.mu.RLock()
	id, ok := in.defs[key]
	in.mu.RUnlock()
	if ok {
		return id
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.defs[key]; ok {
		return id
	}
	id = DefID(len(in.defKeys))
	in.defs[key] = id
	in.defKeys = append(in.defKeys, key)
	return id
}
