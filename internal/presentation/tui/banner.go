package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the cuevox banner and version to w.
func PrintBanner(w io.Writer, p termenv.Profile, version string) {
	lines := []struct {
		text  string
		color string
	}{
		{"   ___ _   _  _____   _____ __  __", "#22d3ee"},
		{"  / __| | | || ___\\ \\ / / _ \\\\ \\/ /", "#38bdf8"},
		{" | (__| |_| || _|  \\ V / (_) |>  < ", "#60a5fa"},
		{"  \\___|\\___/ |___|  \\_/ \\___//_/\\_\\", "#818cf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, p.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
