package eval

import (
	"github.com/modulus-lang/modulus/internal/core"
	"github.com/modulus-lang/modulus/internal/debug"
)

// matchRules tries the rewrite rules of s against the machine stack, in
// declaration order, and applies the first one that matches. On success it
// returns the instantiated right-hand side and the remaining stack.
func matchRules(s *core.Symbol, stk Stack) (core.Term, Stack, bool) {
	for _, r := range s.Rules() {
		if r.Arity() > len(stk) {
			continue
		}

		env := make([]*core.MBinder, r.RHS.Arity())

		ok := true
		for i := 0; ok && i < r.Arity(); i++ {
			ok = match(env, r.LHS[i], stk[i])
		}

		if !ok {
			if debug.TraceMatching {
				debug.Matchingf("%s: rule %s does not apply", s.Name, ruleString(s, r))
			}

			continue
		}

		if debug.TraceMatching {
			debug.Matchingf("%s: rule %s fires", s.Name, ruleString(s, r))
		}

		return r.RHS.Subst(env), stk[r.Arity():], true
	}

	return nil, nil, false
}

// match matches one LHS pattern against one stack cell, filling env as
// pattern variables are bound. Pattern-variable clauses come before
// structural inspection so matched arguments are not forced needlessly.
func match(env []*core.MBinder, p core.Term, c *Cell) bool {
	if pat, ok := p.(*core.Patt); ok {
		return matchPatt(env, pat, c)
	}

	switch p := core.Unfold(p).(type) {
	case *core.Patt:
		return matchPatt(env, p, c)

	case *core.Abst:
		v, ok := c.force().(*core.Abst)
		if !ok {
			return false
		}

		// Domain annotations are deliberately not constrained by patterns.
		x := core.NewVar(p.Body.Name())

		return match(env, p.Body.OpenWith(x), NewCell(v.Body.OpenWith(x)))

	case *core.Appl:
		v, ok := c.force().(*core.Appl)
		if !ok {
			return false
		}

		return match(env, p.Fn, NewCell(v.Fn)) && match(env, p.Arg, NewCell(v.Arg))

	case *core.Vari:
		v, ok := c.force().(*core.Vari)

		return ok && p.Var == v.Var

	case *core.Symb:
		v, ok := c.force().(*core.Symb)

		return ok && p.Sym == v.Sym

	default:
		return false
	}
}

// matchPatt handles the pattern-variable clauses: linear holes bind their
// slot, holes with an environment additionally require the matched term to
// be closed over the listed bound variables, and an already-bound slot
// turns into a convertibility check (non-linear rules match modulo βR).
func matchPatt(env []*core.MBinder, p *core.Patt, c *Cell) bool {
	switch {
	case p.Slot != core.NoSlot && env[p.Slot] == nil && len(p.Env) == 0:
		// Bind without forcing: the argument is evaluated only if some
		// later step actually inspects it.
		env[p.Slot] = core.BindMVar(nil, core.Lift(c.Term()))

		return true

	case p.Slot != core.NoSlot && env[p.Slot] == nil:
		b, ok := bindOver(p.Env, c)
		if !ok {
			return false
		}

		env[p.Slot] = b

		return true

	case p.Slot == core.NoSlot && len(p.Env) == 0:
		return true

	case p.Slot == core.NoSlot:
		_, ok := bindOver(p.Env, c)

		return ok

	default:
		// Non-linear occurrence: the slot is bound already; the new
		// argument must be convertible with the earlier one.
		return EqModulo(env[p.Slot].Subst(p.Env), c.force())
	}
}

// bindOver forces the cell and abstracts the result over the pattern's
// bound-variable environment. The binding succeeds iff the forced term
// mentions no variable outside that environment.
func bindOver(envTerms []core.Term, c *Cell) (*core.MBinder, bool) {
	xs, ok := core.DistinctVars(envTerms)
	if !ok {
		panic("eval: pattern environment is not a list of distinct variables")
	}

	b := core.BindMVar(xs, core.Lift(c.force()))
	if !b.Closed() {
		return nil, false
	}

	return b, true
}

func ruleString(s *core.Symbol, r *core.Rule) string {
	lhs := core.Apply(core.NewSymb(s), r.LHS)

	return debug.Term(lhs) + " --> " + debug.Term(r.RHS.Body())
}
