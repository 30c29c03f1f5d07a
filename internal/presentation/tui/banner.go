package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text, color string
}{
	{`      _    _ _ _                       _     `, "#34d399"},
	{`  ___| | _(_) | | __ _ _ __ __ _ _ __ | |__  `, "#2dd4bf"},
	{` / __| |/ / | | |/ _' | '__/ _' | '_ \| '_ \ `, "#22d3ee"},
	{` \__ \   <| | | | (_| | | | (_| | |_) | | | |`, "#38bdf8"},
	{` |___/_|\_\_|_|_|\__, |_|  \__,_| .__/|_| |_|`, "#60a5fa"},
	{`                 |___/          |_|          `, "#818cf8"},
}

// PrintBanner writes the skillgraph banner to w, colored when w supports it.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
