package compiler

import (
	"errors"
	"fmt"

	"github.com/rascal-lang/rascalc/types"
)

// MaxScopeDepth is the number of scopes that may be active at once: the
// program scope (level 0) and one procedure or function body (level 1).
const MaxScopeDepth = 2

var (
	// ErrScopeDepthExceeded is returned when pushing a scope would exceed
	// MaxScopeDepth.
	ErrScopeDepthExceeded = errors.New("scope depth exceeded")

	// ErrDuplicateSymbol is returned when a name is declared twice in the
	// same scope.
	ErrDuplicateSymbol = errors.New("duplicate symbol")

	// ErrNoScope is returned when an operation needs an active scope and
	// there is none.
	ErrNoScope = errors.New("no active scope")
)

// Scope is one frame of the symbol table. Names are unique within a scope.
type Scope struct {
	level   int
	symbols map[string]*Symbol
	order   []string
	locals  int
}

func newScope(level int) *Scope {
	return &Scope{level: level, symbols: map[string]*Symbol{}}
}

// Level returns the lexical level of the scope.
func (s *Scope) Level() int {
	return s.level
}

// Lookup returns the symbol declared with the given name in this scope.
func (s *Scope) Lookup(name string) (*Symbol, bool) {
	sym, ok := s.symbols[name]
	return sym, ok
}

// LocalCount returns the number of non-parameter variables declared in the
// scope. This is the size of the scope's AMEM and DMEM.
func (s *Scope) LocalCount() int {
	return s.locals
}

// Names returns the names declared in the scope in declaration order.
func (s *Scope) Names() []string {
	return append([]string(nil), s.order...)
}

func (s *Scope) insert(sym *Symbol) error {
	if _, exists := s.symbols[sym.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateSymbol, sym.Name)
	}
	s.symbols[sym.Name] = sym
	s.order = append(s.order, sym.Name)
	return nil
}

// ScopeStack is the stack of active scopes. Lookups search from the
// innermost scope outward.
type ScopeStack struct {
	frames []*Scope
}

// NewScopeStack returns an empty stack.
func NewScopeStack() *ScopeStack {
	return &ScopeStack{}
}

// PushScope opens a new innermost scope.
func (st *ScopeStack) PushScope() error {
	if len(st.frames) >= MaxScopeDepth {
		return ErrScopeDepthExceeded
	}
	st.frames = append(st.frames, newScope(len(st.frames)))
	return nil
}

// PopScope closes the innermost scope and returns it. The caller is
// responsible for emitting the DMEM that releases its locals.
func (st *ScopeStack) PopScope() (*Scope, error) {
	if len(st.frames) == 0 {
		return nil, ErrNoScope
	}
	top := st.frames[len(st.frames)-1]
	st.frames = st.frames[:len(st.frames)-1]
	return top, nil
}

// Current returns the innermost scope, or nil if none is active.
func (st *ScopeStack) Current() *Scope {
	if len(st.frames) == 0 {
		return nil
	}
	return st.frames[len(st.frames)-1]
}

// Depth returns the number of active scopes.
func (st *ScopeStack) Depth() int {
	return len(st.frames)
}

// Level returns the lexical level of the innermost scope.
func (st *ScopeStack) Level() int {
	return len(st.frames) - 1
}

// Declare adds sym to the innermost scope. Shadowing a name from an outer
// scope is allowed.
func (st *ScopeStack) Declare(sym *Symbol) error {
	scope := st.Current()
	if scope == nil {
		return ErrNoScope
	}
	return scope.insert(sym)
}

// DeclareLocal declares a variable in the innermost scope, assigning it the
// next free slot.
func (st *ScopeStack) DeclareLocal(name string, typ types.Type) (*Symbol, error) {
	scope := st.Current()
	if scope == nil {
		return nil, ErrNoScope
	}
	sym := &Symbol{
		Name:  name,
		Kind:  Variable,
		Type:  typ,
		Level: scope.level,
		Index: scope.locals,
	}
	if err := scope.insert(sym); err != nil {
		return nil, err
	}
	scope.locals++
	return sym, nil
}

// DeclareParam declares the parameter at position (0-based) of a callable
// with count parameters in the innermost scope.
func (st *ScopeStack) DeclareParam(name string, typ types.Type, byRef bool, position, count int) (*Symbol, error) {
	scope := st.Current()
	if scope == nil {
		return nil, ErrNoScope
	}
	sym := &Symbol{
		Name:    name,
		Kind:    Variable,
		Type:    typ,
		Level:   scope.level,
		Index:   paramIndex(position, count),
		IsParam: true,
		ByRef:   byRef,
	}
	if err := scope.insert(sym); err != nil {
		return nil, err
	}
	return sym, nil
}

// Resolve finds name in the innermost scope that declares it.
func (st *ScopeStack) Resolve(name string) (*Symbol, bool) {
	for i := len(st.frames) - 1; i >= 0; i-- {
		if sym, ok := st.frames[i].symbols[name]; ok {
			return sym, true
		}
	}
	return nil, false
}

// IsDefined returns true if name is declared in the innermost scope.
func (st *ScopeStack) IsDefined(name string) bool {
	scope := st.Current()
	if scope == nil {
		return false
	}
	_, ok := scope.symbols[name]
	return ok
}

// AllNames returns every visible name, innermost scope first, without
// duplicates.
func (st *ScopeStack) AllNames() []string {
	seen := map[string]bool{}
	var names []string
	for i := len(st.frames) - 1; i >= 0; i-- {
		for _, name := range st.frames[i].order {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}
