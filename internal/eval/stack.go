// Package eval implements the reduction engine of the calculus: a
// stack-based abstract machine for weak-head reduction, the higher-order
// pattern matcher that fires user rewrite rules, βR-conversion, and the
// derived normalization strategies.
package eval

import (
	"github.com/samber/lo"

	"github.com/modulus-lang/modulus/internal/core"
)

// Cell is one machine-stack argument slot. The slot is mutable for exactly
// one purpose: when the matcher forces an argument to weak-head normal
// form, the result is written back so later inspections of the same cell
// reuse it instead of repeating the work.
type Cell struct {
	term core.Term
	whnf bool
}

// NewCell wraps an unevaluated argument.
func NewCell(t core.Term) *Cell { return &Cell{term: t} }

// Term returns the current contents of the cell.
func (c *Cell) Term() core.Term { return c.term }

// force reduces the cell contents to weak-head normal form, updating the
// cell in place. This is the only mutation the matcher performs.
func (c *Cell) force() core.Term {
	if !c.whnf {
		c.term = WHNF(c.term)
		c.whnf = true
	}

	return c.term
}

// Stack is the machine's argument stack: the front cell is the innermost
// (leftmost) application argument.
type Stack []*Cell

// Terms returns the current contents of all cells, front first.
func (s Stack) Terms() []core.Term {
	return lo.Map(s, func(c *Cell, _ int) core.Term { return c.term })
}

// push prepends an argument cell.
func (s Stack) push(c *Cell) Stack {
	out := make(Stack, 0, len(s)+1)
	out = append(out, c)

	return append(out, s...)
}
