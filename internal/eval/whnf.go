package eval

import (
	"github.com/modulus-lang/modulus/internal/core"
	"github.com/modulus-lang/modulus/internal/debug"
)

// whnfStk reduces the leftmost position of t applied to stk: applications
// push their argument, abstractions β-consume the front cell, and symbol
// heads are handed to the rule matcher. The returned head is unfolded and
// not further reducible with the returned stack.
func whnfStk(t core.Term, stk Stack) (core.Term, Stack) {
	for {
		t = core.Unfold(t)

		switch h := t.(type) {
		case *core.Appl:
			stk = stk.push(NewCell(h.Arg))
			t = h.Fn

		case *core.Abst:
			if len(stk) == 0 {
				return t, stk
			}

			arg := stk[0]
			stk = stk[1:]
			t = h.Body.Subst(arg.Term())

			if debug.TraceReduction {
				debug.Reductionf("beta %s", debug.Term(t))
			}

		case *core.Symb:
			t2, stk2, ok := matchRules(h.Sym, stk)
			if !ok {
				return t, stk
			}

			if debug.TraceReduction {
				debug.Reductionf("rewrite %s ==> %s", h.Sym.Name, debug.Term(t2))
			}

			t, stk = t2, stk2

		default:
			return t, stk
		}
	}
}

// WHNF returns the weak-head normal form of t modulo β-reduction and the
// rewrite rules of the symbols involved.
func WHNF(t core.Term) core.Term {
	h, stk := whnfStk(t, nil)

	return core.Apply(h, stk.Terms())
}
