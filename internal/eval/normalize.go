package eval

import "github.com/modulus-lang/modulus/internal/core"

// HNF returns the head normal form of t: the weak-head normal form with
// the head of the spine normalized recursively. Arguments are left as they
// are.
func HNF(t core.Term) core.Term {
	switch u := WHNF(t).(type) {
	case *core.Appl:
		return &core.Appl{Fn: HNF(u.Fn), Arg: u.Arg}
	default:
		return u
	}
}

// SNF returns the strong normal form of t: weak-head reduction followed by
// structural normalization of every subterm, including under binders.
// Subterms are visited left to right, outer before inner.
func SNF(t core.Term) core.Term {
	switch u := WHNF(t).(type) {
	case *core.Vari, *core.Sort, *core.Symb:
		return u

	case *core.Prod:
		dom := SNF(u.Domain)
		x, cod := u.Codomain.Open()

		return &core.Prod{Domain: dom, Codomain: core.Bind(x, SNF(cod))}

	case *core.Abst:
		var dom core.Term
		if u.Domain != nil {
			dom = SNF(u.Domain)
		}

		x, body := u.Body.Open()

		return &core.Abst{Domain: dom, Body: core.Bind(x, SNF(body))}

	case *core.Appl:
		return &core.Appl{Fn: SNF(u.Fn), Arg: SNF(u.Arg)}

	case *core.Meta:
		env := make([]core.Term, len(u.Env))
		for i, e := range u.Env {
			env[i] = SNF(e)
		}

		return &core.Meta{M: u.M, Env: env}
	}

	panic("eval: placeholder term outside rewrite-rule context")
}
