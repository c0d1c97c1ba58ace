// Package signature maintains the symbol table of a module: the declared
// symbols in declaration order, each carrying its type and rewrite rules.
// The table is the single authority for handle identity — one (path, name)
// pair maps to exactly one symbol object, including across serialization
// round-trips.
package signature

import (
	"errors"
	"fmt"

	"github.com/modulus-lang/modulus/internal/core"
)

var (
	// ErrSymbolExists is returned when a symbol name is declared twice.
	ErrSymbolExists = errors.New("signature: symbol already declared")

	// ErrUnknownSymbol is returned when a rule targets a symbol handle the
	// signature does not own.
	ErrUnknownSymbol = errors.New("signature: symbol not declared here")
)

// Signature is an ordered symbol table for one module path.
type Signature struct {
	path   string
	byName map[string]*core.Symbol
	order  []*core.Symbol
}

// New creates an empty signature for the given module path.
func New(path string) *Signature {
	return &Signature{
		path:   path,
		byName: make(map[string]*core.Symbol),
	}
}

// Path returns the module path of the signature.
func (s *Signature) Path() string { return s.path }

// AddSymbol declares a new symbol with its type and returns its handle.
func (s *Signature) AddSymbol(name string, constant bool, typ core.Term) (*core.Symbol, error) {
	if _, ok := s.byName[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrSymbolExists, name)
	}

	sym := core.NewSymbol(s.path, name, constant)
	sym.SetType(typ)

	s.byName[name] = sym
	s.order = append(s.order, sym)

	return sym, nil
}

// AddRule attaches a rewrite rule to a symbol of this signature. Attaching
// to a constant symbol fails with core.ErrConstantRule.
func (s *Signature) AddRule(sym *core.Symbol, r *core.Rule) error {
	if s.byName[sym.Name] != sym {
		return fmt.Errorf("%w: %s", ErrUnknownSymbol, sym.Fullname())
	}

	return sym.AddRule(r)
}

// Find looks up a symbol by name.
func (s *Signature) Find(name string) (*core.Symbol, bool) {
	sym, ok := s.byName[name]

	return sym, ok
}

// Resolve is Find under the name the parser expects, so a signature can be
// used directly as the parser's symbol resolver.
func (s *Signature) Resolve(name string) (*core.Symbol, bool) {
	return s.Find(name)
}

// Symbols returns the declared symbols in declaration order. The returned
// slice is owned by the signature; callers must not modify it.
func (s *Signature) Symbols() []*core.Symbol { return s.order }
