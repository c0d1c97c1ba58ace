package debug

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/modulus-lang/modulus/internal/core"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		TraceReduction = false
		TraceMatching = false
		TraceConversion = false
	})

	return &buf
}

func TestTraceGating(t *testing.T) {
	buf := capture(t)

	Reductionf("step")
	Matchingf("attempt")
	Conversionf("check")

	if buf.Len() != 0 {
		t.Fatalf("traces written with all flags off: %q", buf.String())
	}

	TraceReduction = true
	Reductionf("step %d", 1)
	Matchingf("attempt")

	if got := buf.String(); got != "reduce: step 1\n" {
		t.Errorf("trace output %q", got)
	}
}

func TestTracePrefixes(t *testing.T) {
	buf := capture(t)

	TraceReduction = true
	TraceMatching = true
	TraceConversion = true

	Reductionf("a")
	Matchingf("b")
	Conversionf("c")

	want := "reduce: a\nmatch: b\nconv: c\n"
	if got := buf.String(); got != want {
		t.Errorf("trace output %q, want %q", got, want)
	}
}

func TestWarnfAlwaysWrites(t *testing.T) {
	buf := capture(t)

	Warnf("bound %d ignored", 5)

	if got := buf.String(); got != "warning: bound 5 ignored\n" {
		t.Errorf("warning output %q", got)
	}
}

func TestSetPrinter(t *testing.T) {
	SetPrinter(func(core.Term) string { return "<term>" })
	defer SetPrinter(nil)

	if got := Term(core.Type); got != "<term>" {
		t.Errorf("custom printer ignored: %q", got)
	}

	SetPrinter(nil)

	if got := Term(core.Type); !strings.Contains(got, "TYPE") {
		t.Errorf("default printer renders TYPE as %q", got)
	}
}
