package core

import (
	"errors"
	"testing"
)

func lam(x *Var, body Term) Term { return &Abst{Body: Bind(x, body)} }
func app(fn Term, args ...Term) Term {
	for _, a := range args {
		fn = &Appl{Fn: fn, Arg: a}
	}

	return fn
}

func TestVarIdentity(t *testing.T) {
	x := NewVar("x")
	y := NewVar("x")

	if x == y {
		t.Fatal("two fresh variables share an identity")
	}

	if !Eq(NewVari(x), NewVari(x)) {
		t.Error("a variable is not equal to itself")
	}

	if Eq(NewVari(x), NewVari(y)) {
		t.Error("distinct variables with the same name compare equal")
	}
}

func TestBinderSubst(t *testing.T) {
	x := NewVar("x")
	b := Bind(x, &Appl{Fn: NewVari(x), Arg: NewVari(x)})

	u := NewVari(NewVar("u"))

	got := b.Subst(u)
	want := &Appl{Fn: u, Arg: u}

	if !Eq(got, want) {
		t.Errorf("subst = %s, want %s", TermString(got), TermString(want))
	}
}

func TestBinderShadowing(t *testing.T) {
	// \x, \x, x: the inner binder shadows the outer one.
	x := NewVar("x")
	inner := lam(x, NewVari(x))
	outer := Bind(x, inner)

	got := outer.Subst(Type)

	ab, ok := got.(*Abst)
	if !ok {
		t.Fatalf("subst under shadowing returned %s", TermString(got))
	}

	y, body := ab.Body.Open()
	if !Eq(body, NewVari(y)) {
		t.Errorf("inner bound occurrence was substituted: %s", TermString(body))
	}
}

func TestAlphaEquivalence(t *testing.T) {
	x := NewVar("x")
	y := NewVar("y")

	if !Eq(lam(x, NewVari(x)), lam(y, NewVari(y))) {
		t.Error("α-equivalent abstractions compare unequal")
	}

	if Eq(lam(x, NewVari(x)), lam(y, Type)) {
		t.Error("distinct abstractions compare equal")
	}

	// ! x : TYPE, x vs ! y : TYPE, y.
	p1 := &Prod{Domain: Type, Codomain: Bind(x, NewVari(x))}
	p2 := &Prod{Domain: Type, Codomain: Bind(y, NewVari(y))}

	if !Eq(p1, p2) {
		t.Error("α-equivalent products compare unequal")
	}
}

func TestOpenRebuildIsAlphaInvariant(t *testing.T) {
	x := NewVar("x")
	b := Bind(x, &Appl{Fn: NewVari(x), Arg: Type})

	y1, t1 := b.Open()
	y2, t2 := b.Open()

	if y1 == y2 {
		t.Fatal("two openings returned the same fresh variable")
	}

	r1 := &Abst{Body: Bind(y1, t1)}
	r2 := &Abst{Body: Bind(y2, t2)}

	if !Eq(r1, r2) {
		t.Error("rebuilding after fresh openings broke α-equivalence")
	}
}

func TestEqBindersSameOpening(t *testing.T) {
	x := NewVar("x")
	y := NewVar("y")

	b1 := Bind(x, NewVari(x))
	b2 := Bind(y, NewVari(y))

	if !EqBinders(Eq, b1, b2) {
		t.Error("EqBinders rejects α-equivalent binders")
	}
}

func TestSubstPreservesSharing(t *testing.T) {
	x := NewVar("x")
	c := app(NewSymb(NewSymbol("", "c", true)), Type)

	if got := substVar(c, x, Kind); got != c {
		t.Error("substitution rebuilt a term the variable does not occur in")
	}
}

func TestMBinderClosedness(t *testing.T) {
	x := NewVar("x")
	y := NewVar("y")

	body := &Appl{Fn: NewVari(x), Arg: NewVari(y)}

	closed := BindMVar([]*Var{x, y}, Lift(body))
	if !closed.Closed() {
		t.Error("binder abstracting every variable reports free variables")
	}

	open := BindMVar([]*Var{x}, Lift(body))
	if open.Closed() {
		t.Error("binder leaving y uncaptured reports closed")
	}
}

func TestMBinderSubst(t *testing.T) {
	x := NewVar("x")
	y := NewVar("y")

	b := BindMVar([]*Var{x, y}, Lift(&Appl{Fn: NewVari(y), Arg: NewVari(x)}))

	got := b.Subst([]Term{Type, Kind})
	want := &Appl{Fn: Kind, Arg: Type}

	if !Eq(got, want) {
		t.Errorf("subst = %s, want %s", TermString(got), TermString(want))
	}
}

func TestHeadArgs(t *testing.T) {
	f := NewSymb(NewSymbol("", "f", false))
	a, b := Type, Kind

	h, args := HeadArgs(app(f, a, b))

	if !Eq(h, f) || len(args) != 2 || !Eq(args[0], a) || !Eq(args[1], b) {
		t.Errorf("HeadArgs returned %s with %d args", TermString(h), len(args))
	}

	if !Eq(Apply(h, args), app(f, a, b)) {
		t.Error("Apply does not invert HeadArgs")
	}
}

func TestDistinctVars(t *testing.T) {
	x := NewVar("x")
	y := NewVar("y")

	if _, ok := DistinctVars([]Term{NewVari(x), NewVari(y)}); !ok {
		t.Error("distinct variables rejected")
	}

	if _, ok := DistinctVars([]Term{NewVari(x), NewVari(x)}); ok {
		t.Error("repeated variable accepted")
	}

	if _, ok := DistinctVars([]Term{NewVari(x), Type}); ok {
		t.Error("non-variable accepted")
	}
}

func TestSymbolRules(t *testing.T) {
	c := NewSymbol("mod", "c", true)

	if err := c.AddRule(&Rule{}); !errors.Is(err, ErrConstantRule) {
		t.Errorf("AddRule on a constant returned %v", err)
	}

	f := NewSymbol("mod", "f", false)
	r1, r2 := &Rule{}, &Rule{LHS: []Term{Type}}

	if err := f.AddRule(r1); err != nil {
		t.Fatal(err)
	}
	if err := f.AddRule(r2); err != nil {
		t.Fatal(err)
	}

	rules := f.Rules()
	if len(rules) != 2 || rules[0] != r1 || rules[1] != r2 {
		t.Error("rules are not kept in declaration order")
	}

	if got := f.Fullname(); got != "mod.f" {
		t.Errorf("Fullname = %q", got)
	}
}

func TestMetaRegistry(t *testing.T) {
	r := NewMetaRegistry()

	m, err := r.NewUserMeta("m", Type, 0)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := r.NewUserMeta("m", Type, 0); !errors.Is(err, ErrMetaExists) {
		t.Errorf("duplicate user meta returned %v", err)
	}

	if found, ok := r.FindName("m"); !ok || found != m {
		t.Error("FindName does not return the registered handle")
	}

	if m.Name() != "?m" {
		t.Errorf("Name = %q", m.Name())
	}

	i0 := r.NewInternalMeta(nil, 0)
	i1 := r.NewInternalMeta(nil, 1)

	if got, ok := r.FindID(0); !ok || got != i0 {
		t.Error("internal meta 0 not indexed")
	}
	if i1.Name() != "?1" {
		t.Errorf("second internal meta named %q", i1.Name())
	}
}

func TestIDPoolLeastFree(t *testing.T) {
	var p IDPool

	for want := 0; want < 3; want++ {
		if got := p.Acquire(); got != want {
			t.Fatalf("Acquire = %d, want %d", got, want)
		}
	}

	p.Release(1)

	if got := p.Acquire(); got != 1 {
		t.Errorf("Acquire after Release(1) = %d, want 1", got)
	}
	if got := p.Acquire(); got != 3 {
		t.Errorf("Acquire = %d, want 3", got)
	}
}

func TestInstantiateOneShot(t *testing.T) {
	r := NewMetaRegistry()
	m := r.NewInternalMeta(Type, 0)

	if !m.Unset() {
		t.Fatal("fresh meta reports instantiated")
	}

	if err := Instantiate(m, BindMVar(nil, Lift(Type))); err != nil {
		t.Fatal(err)
	}

	if err := Instantiate(m, BindMVar(nil, Lift(Kind))); !errors.Is(err, ErrMetaInstantiated) {
		t.Errorf("second instantiation returned %v", err)
	}

	if got := Unfold(&Meta{M: m}); !Eq(got, Type) {
		t.Errorf("Unfold of instantiated meta = %s", TermString(got))
	}
}

func TestOccurs(t *testing.T) {
	r := NewMetaRegistry()
	m := r.NewInternalMeta(nil, 0)
	n := r.NewInternalMeta(nil, 0)

	x := NewVar("x")
	body := lam(x, &Appl{Fn: NewVari(x), Arg: &Meta{M: m}})

	if !Occurs(m, body) {
		t.Error("occurrence under a binder not found")
	}

	if Occurs(n, body) {
		t.Error("absent meta reported as occurring")
	}
}

func TestRHSSubstFillsSlots(t *testing.T) {
	// RHS g $x with one slot; firing with x := TYPE unfolds to g TYPE.
	g := NewSymb(NewSymbol("", "g", false))
	rhs := NewRHS(1, &Appl{Fn: g, Arg: &TEnv{TE: &TEVari{Slot: 0, Name: "x"}}})

	got := rhs.Subst([]*MBinder{BindMVar(nil, Lift(Type))})

	if !Eq(got, &Appl{Fn: g, Arg: Type}) {
		t.Errorf("instantiated RHS = %s", TermString(got))
	}
}

func TestTermString(t *testing.T) {
	x := NewVar("x")
	f := NewSymb(NewSymbol("", "f", false))

	cases := []struct {
		term Term
		want string
	}{
		{Type, "TYPE"},
		{Kind, "KIND"},
		{app(f, Type, Kind), "f TYPE KIND"},
		{lam(x, NewVari(x)), `\x, x`},
		{&Prod{Domain: Type, Codomain: Bind(x, NewVari(x))}, "! x : TYPE, x"},
		{&Appl{Fn: lam(x, NewVari(x)), Arg: Type}, `(\x, x) TYPE`},
		{&Appl{Fn: f, Arg: app(f, Type)}, "f (f TYPE)"},
	}

	for _, c := range cases {
		if got := TermString(c.term); got != c.want {
			t.Errorf("TermString = %q, want %q", got, c.want)
		}
	}
}
