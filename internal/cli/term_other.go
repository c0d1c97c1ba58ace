//go:build !linux && !darwin

package cli

import "os"

// IsTerminal reports whether f is attached to a terminal. Platforms
// without termios support fall back to a character-device check.
func IsTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}
