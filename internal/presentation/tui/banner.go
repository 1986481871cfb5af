package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the arbor banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()
	lines := []struct{ text, color string }{
		{"                 _                 ", "#34d399"},
		{"   __ _ _ __| |__   ___  _ __ ", "#10b981"},
		{"  / _` | '__| '_ \\ / _ \\| '__|", "#059669"},
		{" | (_| | |  | |_) | (_) | |   ", "#047857"},
		{"  \\__,_|_|  |_.__/ \\___/|_|   ", "#065f46"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
