package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"

	"github.com/dshills/richpad/internal/document"
	"github.com/dshills/richpad/internal/style"
)

// render writes doc to w using the terminal's capabilities for bold,
// italic, underline and color. Font family and size have no terminal
// equivalent and are dropped. Alignment is not rendered; indentation and
// list markers are.
func render(w io.Writer, doc *document.Document) error {
	out := termenv.NewOutput(w)
	number := 0
	for _, b := range doc.Blocks {
		var sb strings.Builder
		if n := int(b.Para.Indent / 10); n > 0 {
			sb.WriteString(strings.Repeat(" ", n))
		}
		switch b.Para.List {
		case style.ListBulleted:
			sb.WriteString("• ")
			number = 0
		case style.ListNumbered:
			number++
			fmt.Fprintf(&sb, "%d. ", number)
		default:
			number = 0
		}
		for _, r := range b.Runs {
			sb.WriteString(styled(out, string(r.Text), r.Style, doc.Default))
		}
		if _, err := fmt.Fprintln(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

func styled(out *termenv.Output, text string, st, def style.Char) string {
	if text == "" {
		return ""
	}
	s := out.String(text)
	if st.Bold() {
		s = s.Bold()
	}
	if st.Italic() {
		s = s.Italic()
	}
	if st.Underline {
		s = s.Underline()
	}
	if st.Color != def.Color {
		s = s.Foreground(out.Color(st.Color.Hex()[:7]))
	}
	return s.String()
}
