// Package command drives a module: it owns the mutable state a stream of
// statements acts on and executes one statement at a time. The REPL, the
// file checker, and the watch mode are all thin loops over Handle.
package command

import (
	"errors"
	"fmt"
	"io"

	"github.com/modulus-lang/modulus/internal/core"
	"github.com/modulus-lang/modulus/internal/eval"
	"github.com/modulus-lang/modulus/internal/parser"
	"github.com/modulus-lang/modulus/internal/position"
	"github.com/modulus-lang/modulus/internal/signature"
)

// ErrAssertFailed is returned when an assert command finds its two terms
// not convertible.
var ErrAssertFailed = errors.New("command: assertion failed")

// State is the driver state statements act on: the signature built so far
// and the metavariable registry shared by all terms of the run.
type State struct {
	sig   *signature.Signature
	metas *core.MetaRegistry
	out   io.Writer
}

// NewState creates a fresh state for a module path. Eval results are
// printed to out.
func NewState(path string, out io.Writer) *State {
	return &State{
		sig:   signature.New(path),
		metas: core.NewMetaRegistry(),
		out:   out,
	}
}

// Signature returns the signature built so far.
func (s *State) Signature() *signature.Signature { return s.sig }

// Metas returns the metavariable registry of the run.
func (s *State) Metas() *core.MetaRegistry { return s.metas }

// Error is a statement failure, carrying the statement's source position
// when one is known.
type Error struct {
	Pos position.Position
	Err error
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %v", e.Pos, e.Err)
	}

	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Handle executes one statement against the state. Declarations mutate the
// signature; commands evaluate or check terms. A non-nil return is an
// *Error positioned at the failing statement.
func Handle(st *State, stmt parser.Stmt) error {
	switch stmt := stmt.(type) {
	case *parser.SymbolDecl:
		if _, err := st.sig.AddSymbol(stmt.Name, stmt.Constant, stmt.Type); err != nil {
			return &Error{Pos: stmt.Pos, Err: err}
		}

		return nil

	case *parser.RuleDecl:
		if err := st.sig.AddRule(stmt.Head, stmt.Rule); err != nil {
			return &Error{Pos: stmt.Pos, Err: err}
		}

		return nil

	case *parser.EvalCmd:
		cfg, err := evalConfig(stmt)
		if err != nil {
			return &Error{Pos: stmt.Pos, Err: err}
		}

		fmt.Fprintln(st.out, core.TermString(eval.Eval(cfg, stmt.Term)))

		return nil

	case *parser.AssertCmd:
		if !eval.EqModulo(stmt.A, stmt.B) {
			return &Error{Pos: stmt.Pos, Err: fmt.Errorf("%w: %s == %s",
				ErrAssertFailed, core.TermString(stmt.A), core.TermString(stmt.B))}
		}

		return nil
	}

	return &Error{Pos: stmt.Position(), Err: fmt.Errorf("command: unknown statement %T", stmt)}
}

func evalConfig(cmd *parser.EvalCmd) (eval.Config, error) {
	cfg := eval.Config{Steps: cmd.Steps}

	switch cmd.Strategy {
	case "whnf":
		cfg.Strategy = eval.StratWHNF
	case "hnf":
		cfg.Strategy = eval.StratHNF
	case "snf":
		cfg.Strategy = eval.StratSNF
	default:
		return cfg, fmt.Errorf("command: unknown evaluation strategy %q", cmd.Strategy)
	}

	return cfg, nil
}

// RunSource parses src and executes every statement in order, stopping at
// the first failure.
func RunSource(st *State, filename, src string) error {
	p, err := parser.New(filename, src, st.sig, st.metas)
	if err != nil {
		return err
	}

	for {
		stmt, err := p.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := Handle(st, stmt); err != nil {
			return err
		}
	}
}
