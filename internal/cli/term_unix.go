//go:build linux || darwin

package cli

import (
	"os"

	"golang.org/x/sys/unix"
)

// IsTerminal reports whether f is attached to a terminal. The command-line
// driver uses it to refuse a terminal stdin when no files are given and
// --repl is off, and otherwise reads stdin as a source to check.
func IsTerminal(f *os.File) bool {
	_, err := unix.IoctlGetTermios(int(f.Fd()), ioctlReadTermios)

	return err == nil
}
