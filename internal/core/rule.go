package core

// Rule is a rewrite rule attached to a symbol. The head symbol is implicit;
// LHS lists the argument patterns and RHS maps the pattern-variable slots
// collected while matching to the replacement term. A rule may fire only
// when at least Arity() arguments are present on the machine stack.
type Rule struct {
	LHS []Term
	RHS *RHS
}

// Arity returns the number of arguments the rule consumes.
func (r *Rule) Arity() int { return len(r.LHS) }

// RHS is the right-hand side of a rule: a multi-binder mapping an array of
// pattern-variable slots to a template term. Slots appear in the template
// as environment placeholders carrying free TEVari references.
type RHS struct {
	arity int
	body  Term
}

// NewRHS builds a right-hand side of the given slot arity over the template
// body.
func NewRHS(arity int, body Term) *RHS {
	return &RHS{arity: arity, body: body}
}

// Arity returns the number of pattern-variable slots.
func (r *RHS) Arity() int { return r.arity }

// Body returns the template term. Exposed for serialization and printing;
// reduction goes through Subst.
func (r *RHS) Body() Term { return r.body }

// Subst instantiates the right-hand side with the multi-binders collected
// by the matcher. Free slot references become filled placeholders; the
// actual substitution of each matched term happens lazily through Unfold.
func (r *RHS) Subst(env []*MBinder) Term {
	if len(env) != r.arity {
		panic("core: rule environment size does not match RHS arity")
	}

	return fillSlots(r.body, env)
}

func fillSlots(t Term, env []*MBinder) Term {
	switch t := t.(type) {
	case *Vari, *Sort, *Symb:
		return t

	case *Prod:
		return &Prod{Domain: fillSlots(t.Domain, env), Codomain: t.Codomain.fillSlots(env)}

	case *Abst:
		var dom Term
		if t.Domain != nil {
			dom = fillSlots(t.Domain, env)
		}

		return &Abst{Domain: dom, Body: t.Body.fillSlots(env)}

	case *Appl:
		return &Appl{Fn: fillSlots(t.Fn, env), Arg: fillSlots(t.Arg, env)}

	case *Meta:
		return &Meta{M: t.M, Env: fillSlotsEnv(t.Env, env)}

	case *TEnv:
		sub := fillSlotsEnv(t.Env, env)

		if v, ok := t.TE.(*TEVari); ok {
			return &TEnv{TE: &TESome{B: env[v.Slot]}, Env: sub}
		}

		return &TEnv{TE: t.TE, Env: sub}
	}

	panic("core: pattern placeholder in a rule right-hand side")
}

func (b *Binder) fillSlots(env []*MBinder) *Binder {
	body := fillSlots(b.body, env)
	if body == b.body {
		return b
	}

	return &Binder{name: b.name, bound: b.bound, body: body}
}

func fillSlotsEnv(ts []Term, env []*MBinder) []Term {
	out := make([]Term, len(ts))
	for i, t := range ts {
		out[i] = fillSlots(t, env)
	}

	return out
}
