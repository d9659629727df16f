// Package codec reads and writes documents as plain text and as richpad
// markup, a JSON document that keeps every block and run attribute.
package codec

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dshills/richpad/internal/document"
	"github.com/dshills/richpad/internal/style"
)

// Format selects a serialization.
type Format uint8

const (
	FormatText Format = iota
	FormatMarkup
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatMarkup:
		return "markup"
	default:
		return fmt.Sprintf("Format(%d)", f)
	}
}

// ParseFormat parses "text" or "markup".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "text", "txt":
		return FormatText, nil
	case "markup", "rpd", "rich":
		return FormatMarkup, nil
	}
	return 0, fmt.Errorf("unknown format %q", s)
}

// FormatForPath picks the format from a file extension: ".rpd" and ".rtf"
// hold markup, anything else is plain text.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".rpd", ".rtf":
		return FormatMarkup
	default:
		return FormatText
	}
}

// Save writes doc in format f.
func Save(w io.Writer, doc *document.Document, f Format) error {
	switch f {
	case FormatText:
		return SaveText(w, doc)
	case FormatMarkup:
		return SaveMarkup(w, doc)
	}
	return fmt.Errorf("save: unknown format %v", f)
}

// Load reads a document in format f. Plain text uses def as its style.
func Load(r io.Reader, f Format, def style.Char) (*document.Document, error) {
	switch f {
	case FormatText:
		return LoadText(r, def)
	case FormatMarkup:
		return LoadMarkup(r)
	}
	return nil, fmt.Errorf("load: unknown format %v", f)
}
