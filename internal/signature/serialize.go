package signature

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/lo"

	"github.com/modulus-lang/modulus/internal/core"
	"github.com/modulus-lang/modulus/internal/parser"
)

// FormatVersion is the version stamped into serialized signatures.
const FormatVersion = "1.0.0"

// ErrFormatVersion is returned when a serialized signature carries a
// format version outside the accepted range.
var ErrFormatVersion = errors.New("signature: unsupported format version")

var formatConstraint *semver.Constraints

func init() {
	c, err := semver.NewConstraint("^1")
	if err != nil {
		panic(err)
	}

	formatConstraint = c
}

// Terms are serialized as surface syntax and re-parsed on load. Loading
// replays the declarations against a fresh signature, which re-interns
// every symbol handle: two occurrences of a name in the loaded module are
// the same object again, as the kernel requires.
type (
	signatureFile struct {
		Format  string       `json:"format"`
		Path    string       `json:"path"`
		Symbols []symbolFile `json:"symbols"`
	}

	symbolFile struct {
		Name     string     `json:"name"`
		Constant bool       `json:"constant,omitempty"`
		Type     string     `json:"type"`
		Rules    []ruleFile `json:"rules,omitempty"`
	}

	ruleFile struct {
		LHS []string `json:"lhs"`
		RHS string   `json:"rhs"`
	}
)

// Save serializes the signature to its versioned JSON form.
func Save(s *Signature) ([]byte, error) {
	file := signatureFile{
		Format: FormatVersion,
		Path:   s.path,
		Symbols: lo.Map(s.order, func(sym *core.Symbol, _ int) symbolFile {
			return symbolFile{
				Name:     sym.Name,
				Constant: sym.Constant,
				Type:     core.TermString(sym.Type()),
				Rules: lo.Map(sym.Rules(), func(r *core.Rule, _ int) ruleFile {
					return ruleFile{
						LHS: lo.Map(r.LHS, func(p core.Term, _ int) string {
							return core.TermString(p)
						}),
						RHS: core.TermString(r.RHS.Body()),
					}
				}),
			}
		}),
	}

	return json.MarshalIndent(file, "", "  ")
}

// Load deserializes a signature saved by Save. Metavariable references in
// the stored terms allocate in or reuse metas.
func Load(data []byte, metas *core.MetaRegistry) (*Signature, error) {
	var file signatureFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("signature: decoding: %w", err)
	}

	v, err := semver.NewVersion(file.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrFormatVersion, file.Format)
	}
	if !formatConstraint.Check(v) {
		return nil, fmt.Errorf("%w: %s (want %s)", ErrFormatVersion, file.Format, formatConstraint)
	}

	sig := New(file.Path)

	for _, sym := range file.Symbols {
		if err := loadSymbol(sig, sym, metas); err != nil {
			return nil, err
		}
	}

	return sig, nil
}

// loadSymbol replays one stored symbol as surface declarations against the
// signature built so far, so earlier symbols are in scope for later types
// and rules.
func loadSymbol(sig *Signature, sym symbolFile, metas *core.MetaRegistry) error {
	var src strings.Builder

	if sym.Constant {
		src.WriteString("constant ")
	}
	fmt.Fprintf(&src, "symbol %s : %s.\n", sym.Name, sym.Type)

	for _, r := range sym.Rules {
		src.WriteString("rule " + sym.Name)
		for _, p := range r.LHS {
			src.WriteString(" (" + p + ")")
		}
		src.WriteString(" --> " + r.RHS + ".\n")
	}

	p, err := parser.New("", src.String(), sig, metas)
	if err != nil {
		return fmt.Errorf("signature: loading %s: %w", sym.Name, err)
	}

	for {
		stmt, err := p.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("signature: loading %s: %w", sym.Name, err)
		}

		switch stmt := stmt.(type) {
		case *parser.SymbolDecl:
			if _, err := sig.AddSymbol(stmt.Name, stmt.Constant, stmt.Type); err != nil {
				return err
			}

		case *parser.RuleDecl:
			if err := sig.AddRule(stmt.Head, stmt.Rule); err != nil {
				return err
			}

		default:
			return fmt.Errorf("signature: loading %s: unexpected statement", sym.Name)
		}
	}
}
