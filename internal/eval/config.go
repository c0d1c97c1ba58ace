package eval

import (
	"github.com/modulus-lang/modulus/internal/core"
	"github.com/modulus-lang/modulus/internal/debug"
)

// Strategy selects a normalization strategy for Eval.
type Strategy int

const (
	// StratWHNF reduces to weak-head normal form.
	StratWHNF Strategy = iota
	// StratHNF reduces to head normal form.
	StratHNF
	// StratSNF reduces to strong normal form.
	StratSNF
)

func (s Strategy) String() string {
	switch s {
	case StratWHNF:
		return "whnf"
	case StratHNF:
		return "hnf"
	case StratSNF:
		return "snf"
	default:
		return "unknown"
	}
}

// Config describes one evaluation request: a strategy and an optional
// positive step bound. A nil Steps means unbounded.
type Config struct {
	Strategy Strategy
	Steps    *int
}

// Eval normalizes t according to cfg. A zero step bound returns the input
// unchanged. Positive step bounds are accepted by the configuration
// surface but not implemented by any strategy; they warn and return the
// input unchanged.
func Eval(cfg Config, t core.Term) core.Term {
	if cfg.Steps != nil {
		if *cfg.Steps == 0 {
			return t
		}

		debug.Warnf("step-bounded %s evaluation is not supported; returning the term unevaluated", cfg.Strategy)

		return t
	}

	switch cfg.Strategy {
	case StratWHNF:
		return WHNF(t)
	case StratHNF:
		return HNF(t)
	case StratSNF:
		return SNF(t)
	default:
		return t
	}
}
