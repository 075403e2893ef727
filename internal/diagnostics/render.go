package diagnostics

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	ansiRed   = "\x1b[31m"
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// Render writes the collected diagnostics to w, one per line, followed by a
// summary count. Kind names are colorized when w is a terminal.
func (l *List) Render(w io.Writer) {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	for _, d := range l.items {
		prefix := ""
		if d.Line > 0 {
			prefix = fmt.Sprintf("%s:%d: ", d.File, d.Line)
		} else if d.File != "" {
			prefix = d.File + ": "
		}
		if color {
			fmt.Fprintf(w, "%s%s%s%s%s: %s\n", prefix, ansiBold, ansiRed, d.Kind, ansiReset, d.Message)
		} else {
			fmt.Fprintf(w, "%s%s: %s\n", prefix, d.Kind, d.Message)
		}
	}

	if len(l.items) == 1 {
		fmt.Fprintln(w, "compilation failed: 1 error")
	} else if len(l.items) > 1 {
		fmt.Fprintf(w, "compilation failed: %d errors\n", len(l.items))
	}
}
