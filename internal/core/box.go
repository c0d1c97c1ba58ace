package core

// Box is a term under construction together with the set of variables
// occurring free in it. The free-variable bookkeeping is what lets BindVar
// and BindMVar decide which openings a body still depends on, and what the
// matcher's closedness check inspects. One-variable binders can also be
// built directly with Bind, which records no free-variable set.
type Box struct {
	term Term
	free map[*Var]struct{}
}

// Unbox materializes the boxed term. The caller is expected to have closed
// the box; remaining free variables simply stay free in the result.
func (b *Box) Unbox() Term { return b.term }

// FreeVars returns the number of distinct variables still free in the box.
func (b *Box) FreeVars() int { return len(b.free) }

// Occur reports whether x occurs free in the box.
func (b *Box) Occur(x *Var) bool {
	_, ok := b.free[x]

	return ok
}

// BoxVari boxes a variable reference.
func BoxVari(x *Var) *Box {
	return &Box{term: NewVari(x), free: map[*Var]struct{}{x: {}}}
}

// BoxSort boxes one of the universe singletons.
func BoxSort(t Term) *Box {
	if _, ok := t.(*Sort); !ok {
		panic("core: BoxSort on a non-sort term")
	}

	return &Box{term: t}
}

// BoxSymb boxes a symbol reference.
func BoxSymb(s *Symbol) *Box { return &Box{term: NewSymb(s)} }

// BoxAppl boxes an application.
func BoxAppl(fn, arg *Box) *Box {
	return &Box{term: &Appl{Fn: fn.term, Arg: arg.term}, free: unionFree(fn.free, arg.free)}
}

// BoxProd boxes a dependent product from a boxed domain and a bound codomain.
func BoxProd(dom *Box, cod *BoundBox) *Box {
	return &Box{term: &Prod{Domain: dom.term, Codomain: cod.binder}, free: unionFree(dom.free, cod.free)}
}

// BoxAbst boxes an abstraction. dom may be nil for unannotated abstractions.
func BoxAbst(dom *Box, body *BoundBox) *Box {
	var (
		domTerm Term
		domFree map[*Var]struct{}
	)

	if dom != nil {
		domTerm = dom.term
		domFree = dom.free
	}

	return &Box{term: &Abst{Domain: domTerm, Body: body.binder}, free: unionFree(domFree, body.free)}
}

// BoxMeta boxes a metavariable occurrence over boxed environment entries.
func BoxMeta(m *MetaVar, env ...*Box) *Box {
	terms, free := unboxEnv(env)

	return &Box{term: &Meta{M: m, Env: terms}, free: free}
}

// BoxPatt boxes a pattern placeholder over boxed environment entries.
func BoxPatt(slot int, name string, env ...*Box) *Box {
	terms, free := unboxEnv(env)

	return &Box{term: &Patt{Slot: slot, Name: name, Env: terms}, free: free}
}

// BoxTEnv boxes an environment placeholder over boxed environment entries.
func BoxTEnv(te TermEnv, env ...*Box) *Box {
	terms, free := unboxEnv(env)

	return &Box{term: &TEnv{TE: te, Env: terms}, free: free}
}

// BoundBox is a binder under construction: a body box closed over one
// variable.
type BoundBox struct {
	binder *Binder
	free   map[*Var]struct{}
}

// BindVar closes a boxed body over the variable x.
func BindVar(x *Var, body *Box) *BoundBox {
	return &BoundBox{binder: Bind(x, body.term), free: minusFree(body.free, x)}
}

// BindMVar closes a boxed body over an array of variables at once. The
// returned multi-binder remembers which variables stayed free, so Closed
// can be consulted afterwards.
func BindMVar(xs []*Var, body *Box) *MBinder {
	names := make([]string, len(xs))
	for i, x := range xs {
		names[i] = x.Name()
	}

	free := body.free
	for _, x := range xs {
		free = minusFree(free, x)
	}

	return &MBinder{names: names, bound: xs, body: body.term, free: free}
}

// Lift turns a concrete term into a box, recording its free variables.
// Instantiated metavariables and filled environment placeholders are
// resolved on the way.
func Lift(t Term) *Box {
	switch t := Unfold(t).(type) {
	case *Vari:
		return BoxVari(t.Var)

	case *Sort, *Symb:
		return &Box{term: t}

	case *Prod:
		x, body := t.Codomain.Open()

		return BoxProd(Lift(t.Domain), BindVar(x, Lift(body)))

	case *Abst:
		var dom *Box
		if t.Domain != nil {
			dom = Lift(t.Domain)
		}

		x, body := t.Body.Open()

		return BoxAbst(dom, BindVar(x, Lift(body)))

	case *Appl:
		return BoxAppl(Lift(t.Fn), Lift(t.Arg))

	case *Meta:
		return BoxMeta(t.M, liftEnv(t.Env)...)

	case *Patt:
		return BoxPatt(t.Slot, t.Name, liftEnv(t.Env)...)

	case *TEnv:
		return BoxTEnv(t.TE, liftEnv(t.Env)...)
	}

	panic("core: unreachable term variant in Lift")
}

func liftEnv(env []Term) []*Box {
	boxes := make([]*Box, len(env))
	for i, e := range env {
		boxes[i] = Lift(e)
	}

	return boxes
}

func unboxEnv(env []*Box) ([]Term, map[*Var]struct{}) {
	terms := make([]Term, len(env))

	var free map[*Var]struct{}

	for i, b := range env {
		terms[i] = b.term
		free = unionFree(free, b.free)
	}

	return terms, free
}

func unionFree(a, b map[*Var]struct{}) map[*Var]struct{} {
	if len(a) == 0 {
		return b
	}

	if len(b) == 0 {
		return a
	}

	out := make(map[*Var]struct{}, len(a)+len(b))

	for x := range a {
		out[x] = struct{}{}
	}

	for x := range b {
		out[x] = struct{}{}
	}

	return out
}

func minusFree(m map[*Var]struct{}, x *Var) map[*Var]struct{} {
	if _, ok := m[x]; !ok {
		return m
	}

	out := make(map[*Var]struct{}, len(m)-1)

	for y := range m {
		if y != x {
			out[y] = struct{}{}
		}
	}

	return out
}
