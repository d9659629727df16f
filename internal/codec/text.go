package codec

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/dshills/richpad/internal/document"
	"github.com/dshills/richpad/internal/style"
)

// SaveText writes the plain text of doc: blocks joined by "\n", no styles.
func SaveText(w io.Writer, doc *document.Document) error {
	if _, err := io.WriteString(w, doc.Text()); err != nil {
		return &IOError{Op: "write text", Err: err}
	}
	return nil
}

// LoadText reads plain text into a new document with one block per line,
// each holding one run in style def. CRLF and lone CR line endings are
// treated as LF. A UTF-8 or UTF-16 byte-order mark selects the encoding;
// without one the input is read as UTF-8.
func LoadText(r io.Reader, def style.Char) (*document.Document, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	data, err := io.ReadAll(transform.NewReader(r, dec))
	if err != nil {
		return nil, &IOError{Op: "read text", Err: err}
	}
	return TextDocument(string(data), def), nil
}

// TextDocument builds a document from a string, one block per line.
func TextDocument(text string, def style.Char) *document.Document {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	blocks := make([]*document.Block, len(lines))
	for i, line := range lines {
		blocks[i] = document.NewBlock(style.DefaultPara(), document.NewRun(line, def))
	}
	return document.FromBlocks(def, blocks...)
}

// MarshalText returns the plain text of doc.
func MarshalText(doc *document.Document) []byte {
	return []byte(doc.Text())
}

// UnmarshalText decodes plain text bytes. See LoadText.
func UnmarshalText(data []byte, def style.Char) (*document.Document, error) {
	return LoadText(bytes.NewReader(data), def)
}
