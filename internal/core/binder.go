package core

// Binder is a one-variable binder. The bound position is represented by a
// kernel variable with a globally unique identity, which makes substitution
// capture-avoiding by construction: no two binders ever share a bound
// identity unless they were deliberately built over the same opening.
//
// Binders are formed through the boxed interface (see box.go) or by Bind;
// they are immutable once constructed.
type Binder struct {
	name  string
	bound *Var
	body  Term
}

// Bind closes the term t over the variable x. Opening the result yields t
// with x renamed to the fresh opening variable.
func Bind(x *Var, t Term) *Binder {
	return &Binder{name: x.Name(), bound: x, body: t}
}

// Name returns the preferred display name of the bound variable.
func (b *Binder) Name() string { return b.name }

// Open substitutes a fresh variable for the bound position and returns it
// together with the opened body.
func (b *Binder) Open() (*Var, Term) {
	x := NewVar(b.name)

	return x, b.OpenWith(x)
}

// OpenWith opens the binder with a caller-supplied variable. Conversion and
// α-equality use it to open two binders with the same fresh variable.
func (b *Binder) OpenWith(x *Var) Term {
	return substVar(b.body, b.bound, NewVari(x))
}

// Subst applies the binder to a concrete argument, replacing the bound
// position by u.
func (b *Binder) Subst(u Term) Term {
	return substVar(b.body, b.bound, u)
}

// MBinder is a multi-binder: a binder abstracting an ordered array of
// variables at once. It additionally records the variables of its body left
// uncaptured, supporting the closedness check the rule matcher relies on.
type MBinder struct {
	names []string
	bound []*Var
	body  Term
	free  map[*Var]struct{}
}

// Arity returns the number of abstracted variables.
func (m *MBinder) Arity() int { return len(m.bound) }

// Closed reports whether every variable of the body is captured by the
// multi-binder.
func (m *MBinder) Closed() bool { return len(m.free) == 0 }

// Names returns the display hints of the abstracted variables.
func (m *MBinder) Names() []string { return m.names }

// Open substitutes an array of fresh variables for the bound positions.
func (m *MBinder) Open() ([]*Var, Term) {
	xs := make([]*Var, len(m.bound))
	ts := make([]Term, len(m.bound))

	for i, b := range m.bound {
		xs[i] = NewVar(b.Name())
		ts[i] = NewVari(xs[i])
	}

	return xs, m.Subst(ts)
}

// Subst applies the multi-binder to concrete arguments. The number of
// arguments must equal the arity; a mismatch is a programmer error.
func (m *MBinder) Subst(us []Term) Term {
	if len(us) != len(m.bound) {
		panic("core: multi-binder applied to wrong number of arguments")
	}

	if len(us) == 0 {
		return m.body
	}

	sub := make(map[*Var]Term, len(us))
	for i, x := range m.bound {
		sub[x] = us[i]
	}

	return substMap(m.body, sub)
}

// EqBinders compares two binders under the body-equality predicate eq by
// opening both with the same fresh variable.
func EqBinders(eq func(a, b Term) bool, b1, b2 *Binder) bool {
	x := NewVar(b1.name)

	return eq(b1.OpenWith(x), b2.OpenWith(x))
}

// substVar replaces occurrences of the variable x in t by u. Unchanged
// subterms are returned as-is so substitution preserves sharing.
func substVar(t Term, x *Var, u Term) Term {
	return substMap(t, map[*Var]Term{x: u})
}

// substMap performs a simultaneous capture-avoiding substitution.
func substMap(t Term, sub map[*Var]Term) Term {
	switch t := t.(type) {
	case *Vari:
		if u, ok := sub[t.Var]; ok {
			return u
		}

		return t

	case *Sort, *Symb:
		return t

	case *Prod:
		dom := substMap(t.Domain, sub)

		cod := t.Codomain.substInBody(sub)
		if dom == t.Domain && cod == t.Codomain {
			return t
		}

		return &Prod{Domain: dom, Codomain: cod}

	case *Abst:
		var dom Term
		if t.Domain != nil {
			dom = substMap(t.Domain, sub)
		}

		body := t.Body.substInBody(sub)
		if dom == t.Domain && body == t.Body {
			return t
		}

		return &Abst{Domain: dom, Body: body}

	case *Appl:
		fn := substMap(t.Fn, sub)

		arg := substMap(t.Arg, sub)
		if fn == t.Fn && arg == t.Arg {
			return t
		}

		return &Appl{Fn: fn, Arg: arg}

	case *Meta:
		env, changed := substEnv(t.Env, sub)
		if !changed {
			return t
		}

		return &Meta{M: t.M, Env: env}

	case *Patt:
		env, changed := substEnv(t.Env, sub)
		if !changed {
			return t
		}

		return &Patt{Slot: t.Slot, Name: t.Name, Env: env}

	case *TEnv:
		env, changed := substEnv(t.Env, sub)
		if !changed {
			return t
		}

		return &TEnv{TE: t.TE, Env: env}
	}

	panic("core: unreachable term variant in substitution")
}

// substInBody substitutes inside a binder body. The binder's own bound
// variable shadows any outer binding of the same identity.
func (b *Binder) substInBody(sub map[*Var]Term) *Binder {
	if _, shadowed := sub[b.bound]; shadowed {
		if len(sub) == 1 {
			return b
		}

		inner := make(map[*Var]Term, len(sub)-1)

		for x, u := range sub {
			if x != b.bound {
				inner[x] = u
			}
		}

		sub = inner
	}

	body := substMap(b.body, sub)
	if body == b.body {
		return b
	}

	return &Binder{name: b.name, bound: b.bound, body: body}
}

func substEnv(env []Term, sub map[*Var]Term) ([]Term, bool) {
	changed := false
	out := make([]Term, len(env))

	for i, e := range env {
		out[i] = substMap(e, sub)
		if out[i] != e {
			changed = true
		}
	}

	if !changed {
		return env, false
	}

	return out, true
}
