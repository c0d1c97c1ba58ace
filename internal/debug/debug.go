// Package debug gates the engine's trace output. Three flags cover the
// three places work happens: reduction steps, rule matching, and
// conversion. The term printer is pluggable so the surface toolchain can
// substitute its own notation.
package debug

import (
	"fmt"
	"io"
	"os"

	"github.com/modulus-lang/modulus/internal/core"
)

// Trace flags. Off by default; the CLI driver flips them from
// --trace-{reduction,matching,conversion}.
var (
	TraceReduction  bool
	TraceMatching   bool
	TraceConversion bool
)

var (
	out     io.Writer = os.Stderr
	printer           = core.TermString
)

// SetOutput redirects trace output. Tests use it to capture traces.
func SetOutput(w io.Writer) { out = w }

// SetPrinter installs a custom term pretty-printer for trace messages.
// Passing nil restores the default.
func SetPrinter(p func(core.Term) string) {
	if p == nil {
		p = core.TermString
	}

	printer = p
}

// Term renders a term with the installed printer.
func Term(t core.Term) string { return printer(t) }

// Reductionf logs a reduction step when TraceReduction is set.
func Reductionf(format string, args ...interface{}) {
	if TraceReduction {
		fmt.Fprintf(out, "reduce: "+format+"\n", args...)
	}
}

// Matchingf logs a matching step when TraceMatching is set.
func Matchingf(format string, args ...interface{}) {
	if TraceMatching {
		fmt.Fprintf(out, "match: "+format+"\n", args...)
	}
}

// Conversionf logs a conversion step when TraceConversion is set.
func Conversionf(format string, args ...interface{}) {
	if TraceConversion {
		fmt.Fprintf(out, "conv: "+format+"\n", args...)
	}
}

// Warnf reports an engine warning regardless of trace flags.
func Warnf(format string, args ...interface{}) {
	fmt.Fprintf(out, "warning: "+format+"\n", args...)
}
