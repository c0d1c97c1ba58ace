// Package repl implements the interactive shell: a liner-based prompt
// that feeds statements to the command driver one at a time. State
// accumulates across inputs, so symbols declared earlier stay in scope.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/modulus-lang/modulus/internal/command"
	"github.com/modulus-lang/modulus/internal/parser"
)

const historyFile = ".modulus_history"

// Run starts the interactive loop and returns when the user exits with
// Ctrl-D or the quit command.
func Run(st *command.State) error {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := historyPath()
	loadHistory(ln, histPath)
	defer saveHistory(ln, histPath)

	fmt.Println("modulus interactive shell; end statements with '.', :quit to exit")

	for {
		line, err := readStatement(ln)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}

		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			if handleMeta(line) {
				return nil
			}
			continue
		}

		ln.AppendHistory(line)

		if err := runStatement(st, line); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// readStatement keeps prompting until the buffer ends with the statement
// terminator, so declarations can span several lines.
func readStatement(ln *liner.State) (string, error) {
	var b strings.Builder

	prompt := "> "
	for {
		line, err := ln.Prompt(prompt)
		if err != nil {
			return "", err
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		s := strings.TrimSpace(b.String())
		if s == "" || strings.HasSuffix(s, ".") || strings.HasPrefix(s, ":") {
			return s, nil
		}

		prompt = "… "
	}
}

func handleMeta(line string) (exit bool) {
	switch strings.Fields(line)[0] {
	case ":quit", ":q":
		return true

	case ":help", ":h":
		fmt.Println("statements:")
		fmt.Println("  symbol f : T.            declare a definable symbol")
		fmt.Println("  constant symbol c : T.   declare a constant symbol")
		fmt.Println("  rule f p … --> r.        attach a rewrite rule")
		fmt.Println("  eval [whnf|hnf|snf] t.   normalize a term")
		fmt.Println("  assert t == u.           check convertibility")
		fmt.Println("commands: :help, :quit")

	default:
		fmt.Fprintf(os.Stderr, "unknown command %s (try :help)\n", line)
	}

	return false
}

func runStatement(st *command.State, src string) error {
	p, err := parser.New("<repl>", src, st.Signature(), st.Metas())
	if err != nil {
		return err
	}

	for {
		stmt, err := p.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := command.Handle(st, stmt); err != nil {
			return err
		}
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, historyFile)
}

func loadHistory(ln *liner.State, path string) {
	if path == "" {
		return
	}

	if f, err := os.Open(path); err == nil {
		_, _ = ln.ReadHistory(f)
		f.Close()
	}
}

func saveHistory(ln *liner.State, path string) {
	if path == "" {
		return
	}

	if f, err := os.Create(path); err == nil {
		_, _ = ln.WriteHistory(f)
		f.Close()
	}
}
