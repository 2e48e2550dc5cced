package pretty

import (
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Whether we can redraw output in place, i.e. f is an interactive terminal.
func AllowDynamic(f *os.File) bool {
	fd := f.Fd()
	return term.IsTerminal(int(fd)) || isatty.IsCygwinTerminal(fd)
}

// Width of the terminal attached to f, or fallback if f is not a terminal.
func Width(f *os.File, fallback int) int {
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}

	return width
}
