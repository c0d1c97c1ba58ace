// Package core implements the term representation of the λΠ-calculus modulo
// rewriting: first-order abstract syntax with capture-avoiding binders,
// symbols carrying rewrite rules, metavariables, and the helpers the
// reduction engine is built on.
package core

import "sync/atomic"

// VarID is the kernel-managed identity of a variable. Every binder opening
// mints a fresh one; equality of variables is equality of identities, never
// of display names.
type VarID uint64

var varCounter atomic.Uint64

// Var is a bound-variable identity together with its preferred display name.
// Two variables are the same variable iff they are the same handle.
type Var struct {
	id   VarID
	name string
}

// NewVar creates a fresh variable using name as the display hint.
func NewVar(name string) *Var {
	if name == "" {
		name = "_"
	}

	return &Var{id: VarID(varCounter.Add(1)), name: name}
}

// ID returns the kernel identity of v.
func (v *Var) ID() VarID { return v.id }

// Name returns the display hint of v.
func (v *Var) Name() string { return v.name }

func (v *Var) String() string { return v.name }
