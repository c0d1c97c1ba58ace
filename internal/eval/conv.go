package eval

import (
	"github.com/modulus-lang/modulus/internal/core"
	"github.com/modulus-lang/modulus/internal/debug"
)

// EqModulo decides βR-convertibility of a and b: the smallest equivalence
// closed under β-reduction, the user rewrite rules, and congruence.
// Termination is inherited from the user's rule system; the surrounding
// type-checker only calls this where its confluence and termination
// obligations hold.
//
// The same predicate serves the non-linear clause of the rule matcher, so
// matching and conversion agree on what "the same argument" means.
func EqModulo(a, b core.Term) bool {
	type pair struct{ a, b core.Term }

	// LIFO worklist; items are pushed to the front.
	work := []pair{{a, b}}

	for len(work) > 0 {
		p := work[len(work)-1]
		work = work[:len(work)-1]

		if core.Eq(p.a, p.b) {
			continue
		}

		if debug.TraceConversion {
			debug.Conversionf("%s == %s ?", debug.Term(p.a), debug.Term(p.b))
		}

		ah, sa := whnfStk(p.a, nil)
		bh, sb := whnfStk(p.b, nil)

		// Synchronize the spines deepest-argument first. A leftover prefix
		// is wrapped back onto its head so each side is a single term
		// again.
		for len(sa) > 0 && len(sb) > 0 {
			ca, cb := sa[len(sa)-1], sb[len(sb)-1]
			sa, sb = sa[:len(sa)-1], sb[:len(sb)-1]
			work = append(work, pair{ca.Term(), cb.Term()})
		}

		ta := core.Apply(ah, sa.Terms())
		tb := core.Apply(bh, sb.Terms())

		if core.Eq(ta, tb) {
			continue
		}

		switch x := ta.(type) {
		case *core.Abst:
			y, ok := tb.(*core.Abst)
			if !ok {
				return false
			}

			v := core.NewVar(x.Body.Name())
			work = append(work,
				pair{x.Body.OpenWith(v), y.Body.OpenWith(v)})

			if x.Domain != nil && y.Domain != nil {
				work = append(work, pair{x.Domain, y.Domain})
			}

		case *core.Prod:
			y, ok := tb.(*core.Prod)
			if !ok {
				return false
			}

			v := core.NewVar(x.Codomain.Name())
			work = append(work,
				pair{x.Domain, y.Domain},
				pair{x.Codomain.OpenWith(v), y.Codomain.OpenWith(v)})

		default:
			if debug.TraceConversion {
				debug.Conversionf("%s != %s", debug.Term(ta), debug.Term(tb))
			}

			return false
		}
	}

	return true
}
