// Package parser implements the Modulus surface syntax: symbol and rule
// declarations plus the eval and assert commands. Parsing produces kernel
// terms directly; scope resolution, pattern-variable slot assignment, and
// metavariable allocation all happen here so the layers below only ever
// see well-formed terms.
package parser

import (
	"fmt"
	"io"
	"strconv"

	"golang.org/x/exp/slices"

	"github.com/modulus-lang/modulus/internal/core"
	"github.com/modulus-lang/modulus/internal/position"
)

// strategies are the reduction keywords the eval command accepts.
var strategies = []string{"whnf", "hnf", "snf"}

// Resolver maps free identifiers to declared symbols. The command layer
// backs it with the current signature, so statements parsed later see the
// symbols declared before them.
type Resolver interface {
	Resolve(name string) (*core.Symbol, bool)
}

// Parser is a recursive-descent parser with one token of lookahead. It is
// statement-oriented: Next returns one parsed statement at a time so the
// driver can bring each declaration into scope before the following
// statements are parsed.
type Parser struct {
	lex   *Lexer
	tok   Token
	res   Resolver
	metas *core.MetaRegistry

	scope []boundVar
	rule  *ruleCtx
}

type boundVar struct {
	name string
	v    *core.Var
}

// ruleCtx collects pattern-variable occurrences while a rule is parsed.
// Slots are assigned only once the whole rule has been read, because a
// hole needs a slot exactly when the right-hand side uses it or the
// left-hand side mentions it more than once.
type ruleCtx struct {
	vars  map[string]*pattVar
	order []*pattVar
	rhs   bool
}

type pattVar struct {
	name  string
	arity int
	occs  []*core.Patt
	refs  []*core.TEVari
}

// New creates a parser over src. Free identifiers resolve through res;
// metavariable references allocate in or reuse metas.
func New(filename, src string, res Resolver, metas *core.MetaRegistry) (*Parser, error) {
	p := &Parser{lex: NewLexer(filename, src), res: res, metas: metas}
	if err := p.advance(); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Parser) advance() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}

	p.tok = tok

	return nil
}

func (p *Parser) errorf(pos position.Position, format string, args ...interface{}) error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(k Kind) (Token, error) {
	if p.tok.Kind != k {
		return Token{}, p.errorf(p.tok.Pos, "expected %s, found %s", k, p.tok.Kind)
	}

	tok := p.tok

	return tok, p.advance()
}

// Next parses and returns the next statement. It returns io.EOF once the
// input is exhausted.
func (p *Parser) Next() (Stmt, error) {
	p.scope = p.scope[:0]
	p.rule = nil

	if p.tok.Kind == EOF {
		return nil, io.EOF
	}

	if p.tok.Kind != Ident {
		return nil, p.errorf(p.tok.Pos, "expected a declaration or command, found %s", p.tok.Kind)
	}

	pos := p.tok.Pos

	switch p.tok.Text {
	case "constant":
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.Kind != Ident || p.tok.Text != "symbol" {
			return nil, p.errorf(p.tok.Pos, "expected 'symbol' after 'constant'")
		}

		return p.parseSymbolDecl(pos, true)

	case "symbol":
		return p.parseSymbolDecl(pos, false)

	case "rule":
		return p.parseRuleDecl(pos)

	case "eval":
		return p.parseEvalCmd(pos)

	case "assert":
		return p.parseAssertCmd(pos)
	}

	return nil, p.errorf(pos, "expected a declaration or command, found %q", p.tok.Text)
}

func (p *Parser) parseSymbolDecl(pos position.Position, constant bool) (Stmt, error) {
	if err := p.advance(); err != nil { // consume 'symbol'
		return nil, err
	}

	name, err := p.expect(Ident)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(Colon); err != nil {
		return nil, err
	}

	typ, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(Dot); err != nil {
		return nil, err
	}

	return &SymbolDecl{Pos: pos, Name: name.Text, Constant: constant, Type: typ}, nil
}

func (p *Parser) parseRuleDecl(pos position.Position) (Stmt, error) {
	if err := p.advance(); err != nil { // consume 'rule'
		return nil, err
	}

	p.rule = &ruleCtx{vars: make(map[string]*pattVar)}

	headTok := p.tok

	head, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	sym, ok := head.(*core.Symb)
	if !ok {
		return nil, p.errorf(headTok.Pos, "a rule head must be a declared symbol")
	}

	var lhs []core.Term
	for p.startsAtom() {
		arg, err := p.parseAtom()
		if err != nil {
			return nil, err
		}

		lhs = append(lhs, arg)
	}

	if _, err := p.expect(Rewrite); err != nil {
		return nil, err
	}

	p.rule.rhs = true

	rhs, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(Dot); err != nil {
		return nil, err
	}

	arity := 0
	for _, pv := range p.rule.order {
		if len(pv.refs) == 0 && len(pv.occs) < 2 {
			continue
		}

		for _, occ := range pv.occs {
			occ.Slot = arity
		}
		for _, ref := range pv.refs {
			ref.Slot = arity
		}
		arity++
	}

	rule := &core.Rule{LHS: lhs, RHS: core.NewRHS(arity, rhs)}

	return &RuleDecl{Pos: pos, Head: sym.Sym, Rule: rule}, nil
}

func (p *Parser) parseEvalCmd(pos position.Position) (Stmt, error) {
	if err := p.advance(); err != nil { // consume 'eval'
		return nil, err
	}

	strategy := "snf"
	if p.tok.Kind == Ident && slices.Contains(strategies, p.tok.Text) {
		strategy = p.tok.Text
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	var steps *int
	if p.tok.Kind == Number {
		n, err := strconv.Atoi(p.tok.Text)
		if err != nil {
			return nil, p.errorf(p.tok.Pos, "invalid step bound %q", p.tok.Text)
		}

		steps = &n
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	t, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(Dot); err != nil {
		return nil, err
	}

	return &EvalCmd{Pos: pos, Strategy: strategy, Steps: steps, Term: t}, nil
}

func (p *Parser) parseAssertCmd(pos position.Position) (Stmt, error) {
	if err := p.advance(); err != nil { // consume 'assert'
		return nil, err
	}

	a, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(Equiv); err != nil {
		return nil, err
	}

	b, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(Dot); err != nil {
		return nil, err
	}

	return &AssertCmd{Pos: pos, A: a, B: b}, nil
}

// parseTerm parses a full term: abstractions, products, and right-associative
// non-dependent arrows over an application spine.
func (p *Parser) parseTerm() (core.Term, error) {
	switch p.tok.Kind {
	case Lambda:
		return p.parseAbst()

	case Pi:
		return p.parseProd()
	}

	t, err := p.parseApp()
	if err != nil {
		return nil, err
	}

	if p.tok.Kind == Arrow {
		if err := p.advance(); err != nil {
			return nil, err
		}

		cod, err := p.parseTerm()
		if err != nil {
			return nil, err
		}

		return &core.Prod{Domain: t, Codomain: core.Bind(core.NewVar("_"), cod)}, nil
	}

	return t, nil
}

func (p *Parser) parseAbst() (core.Term, error) {
	if err := p.advance(); err != nil { // consume lambda
		return nil, err
	}

	name, err := p.expect(Ident)
	if err != nil {
		return nil, err
	}

	var dom core.Term
	if p.tok.Kind == Colon {
		if err := p.advance(); err != nil {
			return nil, err
		}

		dom, err = p.parseTerm()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(Comma); err != nil {
		return nil, err
	}

	x := core.NewVar(name.Text)
	p.scope = append(p.scope, boundVar{name: name.Text, v: x})

	body, err := p.parseTerm()

	p.scope = p.scope[:len(p.scope)-1]
	if err != nil {
		return nil, err
	}

	return &core.Abst{Domain: dom, Body: core.Bind(x, body)}, nil
}

func (p *Parser) parseProd() (core.Term, error) {
	if err := p.advance(); err != nil { // consume pi
		return nil, err
	}

	name, err := p.expect(Ident)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(Colon); err != nil {
		return nil, err
	}

	dom, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(Comma); err != nil {
		return nil, err
	}

	x := core.NewVar(name.Text)
	p.scope = append(p.scope, boundVar{name: name.Text, v: x})

	cod, err := p.parseTerm()

	p.scope = p.scope[:len(p.scope)-1]
	if err != nil {
		return nil, err
	}

	return &core.Prod{Domain: dom, Codomain: core.Bind(x, cod)}, nil
}

func (p *Parser) parseApp() (core.Term, error) {
	t, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

	for p.startsAtom() {
		arg, err := p.parseAtom()
		if err != nil {
			return nil, err
		}

		t = &core.Appl{Fn: t, Arg: arg}
	}

	return t, nil
}

func (p *Parser) startsAtom() bool {
	switch p.tok.Kind {
	case Ident, MetaName, PattName, LParen:
		return true
	default:
		return false
	}
}

func (p *Parser) parseAtom() (core.Term, error) {
	tok := p.tok

	switch tok.Kind {
	case LParen:
		if err := p.advance(); err != nil {
			return nil, err
		}

		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}

		if _, err := p.expect(RParen); err != nil {
			return nil, err
		}

		return t, nil

	case Ident:
		if err := p.advance(); err != nil {
			return nil, err
		}

		switch tok.Text {
		case "TYPE":
			return core.Type, nil
		case "KIND":
			return core.Kind, nil
		}

		for i := len(p.scope) - 1; i >= 0; i-- {
			if p.scope[i].name == tok.Text {
				return core.NewVari(p.scope[i].v), nil
			}
		}

		if s, ok := p.res.Resolve(tok.Text); ok {
			return core.NewSymb(s), nil
		}

		return nil, p.errorf(tok.Pos, "undeclared identifier %q", tok.Text)

	case MetaName:
		if err := p.advance(); err != nil {
			return nil, err
		}

		env, err := p.parseEnv()
		if err != nil {
			return nil, err
		}

		m, ok := p.metas.FindName(tok.Text)
		if ok {
			if m.Arity() != len(env) {
				return nil, p.errorf(tok.Pos, "?%s expects %d environment terms, found %d",
					tok.Text, m.Arity(), len(env))
			}
		} else {
			m, err = p.metas.NewUserMeta(tok.Text, nil, len(env))
			if err != nil {
				return nil, p.errorf(tok.Pos, "%v", err)
			}
		}

		return &core.Meta{M: m, Env: env}, nil

	case PattName:
		if p.rule == nil {
			return nil, p.errorf(tok.Pos, "pattern variable $%s outside a rewrite rule", tok.Text)
		}

		if err := p.advance(); err != nil {
			return nil, err
		}

		env, err := p.parseEnv()
		if err != nil {
			return nil, err
		}

		if p.rule.rhs {
			return p.pattRHS(tok, env)
		}

		return p.pattLHS(tok, env)
	}

	return nil, p.errorf(tok.Pos, "expected a term, found %s", tok.Kind)
}

// pattLHS handles a pattern-variable occurrence on a rule left-hand side.
// The environment must list pairwise-distinct bound variables; slot
// assignment is deferred until the rule has been fully parsed.
func (p *Parser) pattLHS(tok Token, env []core.Term) (core.Term, error) {
	if _, ok := core.DistinctVars(env); !ok {
		return nil, p.errorf(tok.Pos,
			"the environment of $%s must list pairwise-distinct bound variables", tok.Text)
	}

	patt := &core.Patt{Slot: core.NoSlot, Name: tok.Text, Env: env}

	if tok.Text == "_" {
		return patt, nil
	}

	pv, ok := p.rule.vars[tok.Text]
	if !ok {
		pv = &pattVar{name: tok.Text, arity: len(env)}
		p.rule.vars[tok.Text] = pv
		p.rule.order = append(p.rule.order, pv)
	} else if pv.arity != len(env) {
		return nil, p.errorf(tok.Pos,
			"$%s expects %d environment terms, found %d", tok.Text, pv.arity, len(env))
	}

	pv.occs = append(pv.occs, patt)

	return patt, nil
}

// pattRHS handles a pattern-variable occurrence on a rule right-hand side:
// a slot reference to the value the matcher collected for the hole.
func (p *Parser) pattRHS(tok Token, env []core.Term) (core.Term, error) {
	if tok.Text == "_" {
		return nil, p.errorf(tok.Pos, "anonymous pattern variable on a right-hand side")
	}

	pv, ok := p.rule.vars[tok.Text]
	if !ok {
		return nil, p.errorf(tok.Pos,
			"pattern variable $%s is not bound by the left-hand side", tok.Text)
	}

	if pv.arity != len(env) {
		return nil, p.errorf(tok.Pos,
			"$%s expects %d environment terms, found %d", tok.Text, pv.arity, len(env))
	}

	ref := &core.TEVari{Name: tok.Text}
	pv.refs = append(pv.refs, ref)

	return &core.TEnv{TE: ref, Env: env}, nil
}

func (p *Parser) parseEnv() ([]core.Term, error) {
	if p.tok.Kind != LBracket {
		return nil, nil
	}

	if err := p.advance(); err != nil {
		return nil, err
	}

	if p.tok.Kind == RBracket {
		return nil, p.advance()
	}

	var env []core.Term
	for {
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}

		env = append(env, t)

		if p.tok.Kind != Comma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(RBracket); err != nil {
		return nil, err
	}

	return env, nil
}
