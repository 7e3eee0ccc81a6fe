package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the props ASCII art banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  _ __  _ __ ___  _ __  ___", "#818cf8"},
		{" | '_ \\| '__/ _ \\| '_ \\/ __|", "#a78bfa"},
		{" | |_) | | | (_) | |_) \\__ \\", "#c084fc"},
		{" | .__/|_|  \\___/| .__/|___/", "#e879f9"},
		{" |_|             |_|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
