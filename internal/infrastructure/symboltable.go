package infrastructure

import (
	"fmt"

	"github.com/quarklang/quarkc/internal/interfaces"
)

// DefaultSymbolTable implements interfaces.SymbolTable as a stack of
// interfaces.Scope values, grounded on the teacher's
// internal/infrastructure/symboltable.go DefaultSymbolTable and adapted to
// the expanded Symbol shape (struct fields, method names, variadic flag).
type DefaultSymbolTable struct {
	currentScope *interfaces.Scope
	globalScope  *interfaces.Scope
}

func NewDefaultSymbolTable() *DefaultSymbolTable {
	global := interfaces.NewScope(nil)
	return &DefaultSymbolTable{currentScope: global, globalScope: global}
}

func (st *DefaultSymbolTable) EnterScope() *interfaces.Scope {
	child := interfaces.NewScope(st.currentScope)
	st.currentScope.Children = append(st.currentScope.Children, child)
	st.currentScope = child
	return child
}

func (st *DefaultSymbolTable) ExitScope() {
	if st.currentScope.Parent != nil {
		st.currentScope = st.currentScope.Parent
	}
}

func (st *DefaultSymbolTable) GetCurrentScope() *interfaces.Scope { return st.currentScope }
func (st *DefaultSymbolTable) GetGlobalScope() *interfaces.Scope  { return st.globalScope }

// DeclareSymbol adds sym to the current scope, rejecting a redeclaration
// within the same scope (spec §4.G "duplicate definition" -> E0008).
func (st *DefaultSymbolTable) DeclareSymbol(sym *interfaces.Symbol) error {
	if _, exists := st.currentScope.Symbols[sym.Name]; exists {
		return fmt.Errorf("symbol %q already declared in this scope", sym.Name)
	}
	st.currentScope.Symbols[sym.Name] = sym
	return nil
}

// LookupSymbol walks the scope chain from the current scope to the root.
func (st *DefaultSymbolTable) LookupSymbol(name string) (*interfaces.Symbol, bool) {
	return st.currentScope.Lookup(name)
}

// LookupSymbolInScope only checks the current scope, not its ancestors.
func (st *DefaultSymbolTable) LookupSymbolInScope(name string) (*interfaces.Symbol, bool) {
	return st.currentScope.LookupLocal(name)
}

// GetAllSymbols walks the whole scope tree from the global scope down.
func (st *DefaultSymbolTable) GetAllSymbols() []*interfaces.Symbol {
	var out []*interfaces.Symbol
	collectScope(st.globalScope, &out)
	return out
}

func collectScope(scope *interfaces.Scope, out *[]*interfaces.Symbol) {
	for _, sym := range scope.Symbols {
		*out = append(*out, sym)
	}
	for _, child := range scope.Children {
		collectScope(child, out)
	}
}

func (st *DefaultSymbolTable) Reset() {
	global := interfaces.NewScope(nil)
	st.globalScope = global
	st.currentScope = global
}
