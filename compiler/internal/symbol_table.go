package internal

import (
	"strconv"

	"github.com/xiaobogaga/jackvm/vm"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Kind classifies a named variable and decides the segment it lives in.
type Kind int

const (
	StaticKind Kind = iota
	FieldKind
	ArgumentKind
	LocalKind
)

func (k Kind) String() string {
	switch k {
	case StaticKind:
		return "static"
	case FieldKind:
		return "field"
	case ArgumentKind:
		return "argument"
	case LocalKind:
		return "local"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Segment maps the kind to the VM segment its variables are addressed in.
func (k Kind) Segment() vm.Segment {
	switch k {
	case StaticKind:
		return vm.StaticSegment
	case FieldKind:
		return vm.ThisSegment
	case ArgumentKind:
		return vm.ArgumentSegment
	case LocalKind:
		return vm.LocalSegment
	}
	panic("unknown symbol kind " + k.String())
}

func (k Kind) classScoped() bool {
	return k == StaticKind || k == FieldKind
}

type Symbol struct {
	Name  string
	Type  string
	Kind  Kind
	Index int
}

// Resolution tells where a lookup found a name. Unresolved is a normal outcome: the
// name then refers to a class or a subroutine, which the engine resolves by naming
// convention.
type Resolution int

const (
	Unresolved Resolution = iota
	ResolvedSubroutine
	ResolvedClass
)

type scope struct {
	symbols map[string]Symbol
	counts  map[Kind]int
}

func newScope() *scope {
	return &scope{symbols: map[string]Symbol{}, counts: map[Kind]int{}}
}

// SymbolTable keeps the class scope (static, field) for the whole compilation unit and a
// subroutine scope (argument, local) recreated by StartSubroutine.
type SymbolTable struct {
	class      *scope
	subroutine *scope
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{class: newScope(), subroutine: newScope()}
}

// StartSubroutine drops arguments and locals. Statics and fields are untouched.
func (table *SymbolTable) StartSubroutine() {
	table.subroutine = newScope()
}

func (table *SymbolTable) scopeOf(kind Kind) *scope {
	if kind.classScoped() {
		return table.class
	}
	return table.subroutine
}

// Define adds name to the scope implied by kind with the next free index of that kind.
func (table *SymbolTable) Define(name, typ string, kind Kind) (Symbol, error) {
	s := table.scopeOf(kind)
	if existing, ok := s.symbols[name]; ok {
		return Symbol{}, makeSemanticError("duplicate %s name: %s, already defined as %s %d",
			kind, name, existing.Kind, existing.Index)
	}
	symbol := Symbol{Name: name, Type: typ, Kind: kind, Index: s.counts[kind]}
	s.symbols[name] = symbol
	s.counts[kind]++
	return symbol, nil
}

// VarCount returns the number of variables of kind defined in its current scope.
func (table *SymbolTable) VarCount(kind Kind) int {
	return table.scopeOf(kind).counts[kind]
}

// Lookup searches the subroutine scope first, then the class scope.
func (table *SymbolTable) Lookup(name string) (Symbol, Resolution) {
	if symbol, ok := table.subroutine.symbols[name]; ok {
		return symbol, ResolvedSubroutine
	}
	if symbol, ok := table.class.symbols[name]; ok {
		return symbol, ResolvedClass
	}
	return Symbol{}, Unresolved
}

func (table *SymbolTable) KindOf(name string) (Kind, bool) {
	symbol, res := table.Lookup(name)
	return symbol.Kind, res != Unresolved
}

func (table *SymbolTable) TypeOf(name string) (string, bool) {
	symbol, res := table.Lookup(name)
	return symbol.Type, res != Unresolved
}

func (table *SymbolTable) IndexOf(name string) (int, bool) {
	symbol, res := table.Lookup(name)
	return symbol.Index, res != Unresolved
}

// Names lists the variables of kind in index order.
func (table *SymbolTable) Names(kind Kind) []string {
	s := table.scopeOf(kind)
	var symbols []Symbol
	for _, name := range maps.Keys(s.symbols) {
		if symbol := s.symbols[name]; symbol.Kind == kind {
			symbols = append(symbols, symbol)
		}
	}
	slices.SortFunc(symbols, func(a, b Symbol) int {
		return a.Index - b.Index
	})
	names := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		names = append(names, symbol.Name)
	}
	return names
}
