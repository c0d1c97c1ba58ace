package parser

import (
	"fmt"

	"github.com/modulus-lang/modulus/internal/core"
	"github.com/modulus-lang/modulus/internal/position"
)

// Stmt is one parsed top-level statement: a declaration or a command.
type Stmt interface {
	isStmt()
	Position() position.Position
}

type (
	// SymbolDecl introduces a symbol with its declared type.
	SymbolDecl struct {
		Pos      position.Position
		Name     string
		Constant bool
		Type     core.Term
	}

	// RuleDecl attaches a rewrite rule to the head symbol.
	RuleDecl struct {
		Pos  position.Position
		Head *core.Symbol
		Rule *core.Rule
	}

	// EvalCmd normalizes a term under the requested strategy. Steps is nil
	// when no step bound was written.
	EvalCmd struct {
		Pos      position.Position
		Strategy string
		Steps    *int
		Term     core.Term
	}

	// AssertCmd checks that two terms are convertible.
	AssertCmd struct {
		Pos  position.Position
		A, B core.Term
	}
)

func (*SymbolDecl) isStmt() {}
func (*RuleDecl) isStmt()   {}
func (*EvalCmd) isStmt()    {}
func (*AssertCmd) isStmt()  {}

func (s *SymbolDecl) Position() position.Position { return s.Pos }
func (s *RuleDecl) Position() position.Position   { return s.Pos }
func (s *EvalCmd) Position() position.Position    { return s.Pos }
func (s *AssertCmd) Position() position.Position  { return s.Pos }

// Error is a scan or parse failure at a source position.
type Error struct {
	Pos position.Position
	Msg string
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}

	return e.Msg
}
