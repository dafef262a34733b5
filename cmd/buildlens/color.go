package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/term"
)

// resolveColor interprets --color for output written to w.
func resolveColor(mode string, w io.Writer) (bool, error) {
	switch strings.ToLower(mode) {
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	case "auto", "":
		if os.Getenv("NO_COLOR") != "" {
			return false, nil
		}
		f, ok := w.(*os.File)
		return ok && isTerminal(f), nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
}

func isTerminal(f *os.File) bool {
	fd, err := safecast.Conv[int](f.Fd())
	return err == nil && term.IsTerminal(fd)
}

// terminalWidth returns the width of the terminal behind w, or 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !isTerminal(f) {
		return 0
	}
	fd, err := safecast.Conv[int](f.Fd())
	if err != nil {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}
