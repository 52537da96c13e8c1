package ui

import (
	"os"

	"golang.org/x/term"
)

const (
	defaultWidth = 80
	minWidth     = 40
)

// Terminal describes where progress output goes.
type Terminal struct {
	TTY   bool
	Width int
}

// DetectTerminal inspects f. Width falls back to 80 columns when f is not a
// terminal or its size is unknown, and never drops below 40 so the bar keeps
// room for its counters.
func DetectTerminal(f *os.File) Terminal {
	fd := int(f.Fd()) //nolint:gosec // G115: fds fit in int
	t := Terminal{TTY: term.IsTerminal(fd), Width: defaultWidth}
	if !t.TTY {
		return t
	}
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		t.Width = max(w, minWidth)
	}
	return t
}
