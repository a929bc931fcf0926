package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"   __ _  __ _  ___ _ __ | |_ _ __ _   _ ", "#818cf8"},
	{"  / _` |/ _` |/ _ \\ '_ \\| __| '__| | | |", "#a78bfa"},
	{" | (_| | (_| |  __/ | | | |_| |  | |_| |", "#c084fc"},
	{"  \\__,_|\\__, |\\___|_| |_|\\__|_|   \\__, |", "#e879f9"},
	{"        |___/                     |___/ ", "#f472b6"},
}

// PrintBanner writes the agentry banner to w, coloured on terminals.
func PrintBanner(w io.Writer) {
	colored := IsTerminal(w)
	p := termenv.NewOutput(w).ColorProfile()

	fmt.Fprintln(w)
	for _, l := range bannerLines {
		if !colored {
			fmt.Fprintln(w, l.text)
			continue
		}
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Status renders a short outcome label, green when ok and red otherwise.
// Off a terminal the label is returned as is.
func Status(w io.Writer, ok bool, label string) string {
	if !IsTerminal(w) {
		return label
	}
	p := termenv.NewOutput(w).ColorProfile()
	color := "#22c55e"
	if !ok {
		color = "#ef4444"
	}
	return termenv.String(label).Foreground(p.Color(color)).Bold().String()
}
