package signature

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/modulus-lang/modulus/internal/core"
	"github.com/modulus-lang/modulus/internal/eval"
	"github.com/modulus-lang/modulus/internal/parser"
)

// declare replays surface declarations against sig, the way the command
// driver does.
func declare(t *testing.T, sig *Signature, metas *core.MetaRegistry, src string) {
	t.Helper()

	p, err := parser.New("test", src, sig, metas)
	if err != nil {
		t.Fatal(err)
	}

	for {
		stmt, err := p.Next()
		if errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			t.Fatal(err)
		}

		switch stmt := stmt.(type) {
		case *parser.SymbolDecl:
			if _, err := sig.AddSymbol(stmt.Name, stmt.Constant, stmt.Type); err != nil {
				t.Fatal(err)
			}

		case *parser.RuleDecl:
			if err := sig.AddRule(stmt.Head, stmt.Rule); err != nil {
				t.Fatal(err)
			}

		default:
			t.Fatalf("unexpected statement %T", stmt)
		}
	}
}

const natModule = `
constant symbol nat : TYPE.
constant symbol z : nat.
constant symbol s : nat -> nat.
symbol add : nat -> nat -> nat.
rule add z $y --> $y.
rule add (s $x) $y --> s (add $x $y).
`

func TestAddSymbol(t *testing.T) {
	sig := New("main")

	nat, err := sig.AddSymbol("nat", true, core.Type)
	if err != nil {
		t.Fatal(err)
	}

	if nat.Fullname() != "main.nat" || !nat.Constant || !core.Eq(nat.Type(), core.Type) {
		t.Errorf("declared symbol %s constant=%v type=%s",
			nat.Fullname(), nat.Constant, core.TermString(nat.Type()))
	}

	if _, err := sig.AddSymbol("nat", false, core.Type); !errors.Is(err, ErrSymbolExists) {
		t.Errorf("redeclaration returned %v", err)
	}

	if found, ok := sig.Find("nat"); !ok || found != nat {
		t.Error("Find does not return the declared handle")
	}

	if found, ok := sig.Resolve("nat"); !ok || found != nat {
		t.Error("Resolve does not return the declared handle")
	}

	add, err := sig.AddSymbol("add", false, core.Type)
	if err != nil {
		t.Fatal(err)
	}

	syms := sig.Symbols()
	if len(syms) != 2 || syms[0] != nat || syms[1] != add {
		t.Error("Symbols is not in declaration order")
	}
}

func TestAddRuleOwnership(t *testing.T) {
	sig := New("main")

	foreign := core.NewSymbol("other", "f", false)
	if err := sig.AddRule(foreign, &core.Rule{}); !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("rule on a foreign symbol returned %v", err)
	}

	c, err := sig.AddSymbol("c", true, core.Type)
	if err != nil {
		t.Fatal(err)
	}

	if err := sig.AddRule(c, &core.Rule{}); !errors.Is(err, core.ErrConstantRule) {
		t.Errorf("rule on a constant returned %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	sig := New("main")
	declare(t, sig, core.NewMetaRegistry(), natModule)

	data, err := Save(sig)
	if err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(data, core.NewMetaRegistry())
	if err != nil {
		t.Fatal(err)
	}

	if loaded.Path() != "main" {
		t.Errorf("loaded path %q", loaded.Path())
	}

	if got, want := len(loaded.Symbols()), len(sig.Symbols()); got != want {
		t.Fatalf("loaded %d symbols, want %d", got, want)
	}

	for i, sym := range loaded.Symbols() {
		orig := sig.Symbols()[i]

		if sym.Name != orig.Name || sym.Constant != orig.Constant {
			t.Errorf("symbol %d is %s constant=%v, want %s constant=%v",
				i, sym.Name, sym.Constant, orig.Name, orig.Constant)
		}

		if !core.Eq(sym.Type(), orig.Type()) {
			t.Errorf("%s loaded with type %s", sym.Name, core.TermString(sym.Type()))
		}

		if len(sym.Rules()) != len(orig.Rules()) {
			t.Errorf("%s loaded with %d rules, want %d", sym.Name, len(sym.Rules()), len(orig.Rules()))
		}
	}
}

// TestLoadedRulesFire checks that a loaded signature is not just
// structurally right: its rules still rewrite, which requires every symbol
// occurrence to have been re-interned to one handle.
func TestLoadedRulesFire(t *testing.T) {
	sig := New("main")
	declare(t, sig, core.NewMetaRegistry(), natModule)

	data, err := Save(sig)
	if err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(data, core.NewMetaRegistry())
	if err != nil {
		t.Fatal(err)
	}

	find := func(name string) core.Term {
		sym, ok := loaded.Find(name)
		if !ok {
			t.Fatalf("loaded signature has no %s", name)
		}

		return core.NewSymb(sym)
	}

	z, s, add := find("z"), find("s"), find("add")
	app := func(fn core.Term, args ...core.Term) core.Term {
		for _, a := range args {
			fn = &core.Appl{Fn: fn, Arg: a}
		}

		return fn
	}

	one := app(s, z)
	got := eval.Eval(eval.Config{Strategy: eval.StratSNF}, app(add, one, one))
	want := app(s, app(s, z))

	if !core.Eq(got, want) {
		t.Errorf("1 + 1 normalized to %s", core.TermString(got))
	}
}

func TestSaveIsReproducible(t *testing.T) {
	sig := New("main")
	declare(t, sig, core.NewMetaRegistry(), natModule)

	data, err := Save(sig)
	if err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(data, core.NewMetaRegistry())
	if err != nil {
		t.Fatal(err)
	}

	again, err := Save(loaded)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(data, again) {
		t.Error("saving a loaded signature produced different bytes")
	}
}

func TestLoadRejectsVersions(t *testing.T) {
	sig := New("main")

	data, err := Save(sig)
	if err != nil {
		t.Fatal(err)
	}

	for _, bad := range []string{"2.0.0", "0.9.0", "not-a-version"} {
		mangled := bytes.Replace(data, []byte(FormatVersion), []byte(bad), 1)

		if _, err := Load(mangled, core.NewMetaRegistry()); !errors.Is(err, ErrFormatVersion) {
			t.Errorf("format %q loaded with error %v", bad, err)
		}
	}

	if _, err := Load([]byte("{"), core.NewMetaRegistry()); err == nil {
		t.Error("truncated input loaded")
	}
}

func TestLoadAcceptsNewerMinor(t *testing.T) {
	sig := New("main")

	data, err := Save(sig)
	if err != nil {
		t.Fatal(err)
	}

	mangled := bytes.Replace(data, []byte(FormatVersion), []byte("1.7.0"), 1)

	if _, err := Load(mangled, core.NewMetaRegistry()); err != nil {
		t.Errorf("minor version bump rejected: %v", err)
	}
}
