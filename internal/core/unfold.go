package core

import "fmt"

// Unfold resolves the head of t: an instantiated metavariable is replaced
// by its stored multi-binder applied to the occurrence environment, a
// filled environment placeholder likewise, recursively. All reduction and
// conversion code matches on Unfold(t), never on raw t.
func Unfold(t Term) Term {
	switch u := t.(type) {
	case *Meta:
		if b, ok := u.M.Value(); ok {
			return Unfold(b.Subst(u.Env))
		}

	case *TEnv:
		if s, ok := u.TE.(*TESome); ok {
			return Unfold(s.B.Subst(u.Env))
		}
	}

	return t
}

// HeadArgs strips a left-nested application into its head and argument
// spine, outermost argument last.
func HeadArgs(t Term) (Term, []Term) {
	var args []Term

	t = Unfold(t)
	for {
		a, ok := t.(*Appl)
		if !ok {
			break
		}

		args = append(args, nil)
		copy(args[1:], args)
		args[0] = a.Arg

		t = Unfold(a.Fn)
	}

	return t, args
}

// Apply rebuilds a left-nested application from a head and its spine.
func Apply(h Term, args []Term) Term {
	for _, a := range args {
		h = &Appl{Fn: h, Arg: a}
	}

	return h
}

// ToVar unwraps a variable term. Calling it on anything else is a
// programmer error.
func ToVar(t Term) *Var {
	if v, ok := Unfold(t).(*Vari); ok {
		return v.Var
	}

	panic(fmt.Sprintf("core: ToVar on a non-variable term %T", t))
}

// DistinctVars checks that ts is a sequence of pairwise distinct variable
// references and returns the underlying variables.
func DistinctVars(ts []Term) ([]*Var, bool) {
	vars := make([]*Var, len(ts))
	seen := make(map[*Var]struct{}, len(ts))

	for i, t := range ts {
		v, ok := Unfold(t).(*Vari)
		if !ok {
			return nil, false
		}

		if _, dup := seen[v.Var]; dup {
			return nil, false
		}

		seen[v.Var] = struct{}{}
		vars[i] = v.Var
	}

	return vars, true
}

// Occurs reports whether the metavariable m occurs anywhere in t. Binders
// are walked by opening them once; the values of other metavariables are
// not descended into.
func Occurs(m *MetaVar, t Term) bool {
	switch t := t.(type) {
	case *Vari, *Sort, *Symb:
		return false

	case *Prod:
		if Occurs(m, t.Domain) {
			return true
		}

		_, body := t.Codomain.Open()

		return Occurs(m, body)

	case *Abst:
		if t.Domain != nil && Occurs(m, t.Domain) {
			return true
		}

		_, body := t.Body.Open()

		return Occurs(m, body)

	case *Appl:
		return Occurs(m, t.Fn) || Occurs(m, t.Arg)

	case *Meta:
		if t.M == m {
			return true
		}

		for _, e := range t.Env {
			if Occurs(m, e) {
				return true
			}
		}

		return false

	case *Patt:
		for _, e := range t.Env {
			if Occurs(m, e) {
				return true
			}
		}

		return false

	case *TEnv:
		for _, e := range t.Env {
			if Occurs(m, e) {
				return true
			}
		}

		return false
	}

	panic("core: unreachable term variant in Occurs")
}
