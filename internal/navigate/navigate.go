// Package navigate answers caret and counting queries over a document:
// line and column of a position, word counts and the status bar summary.
package navigate

import (
	"fmt"
	"path/filepath"
	"unicode"

	"github.com/dshills/richpad/internal/document"
)

// LineAndColumn returns the 1-based line and column of pos. Each block is
// one line; the column counts runes from the block start.
func LineAndColumn(doc *document.Document, pos document.Position) (line, col int, err error) {
	c, err := doc.Column(pos)
	if err != nil {
		return 0, 0, err
	}
	return pos.Block + 1, c + 1, nil
}

// IsWordRune reports whether r can be part of a word: a letter, a decimal
// digit, a connector such as '_' or a combining mark.
func IsWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) ||
		unicode.Is(unicode.Pc, r) || unicode.Is(unicode.Mn, r)
}

// CountWords returns the number of maximal runs of word runes in s.
func CountWords(s string) int {
	n := 0
	in := false
	for _, r := range s {
		w := IsWordRune(r)
		if w && !in {
			n++
		}
		in = w
	}
	return n
}

// WordCount returns the number of words in the document.
func WordCount(doc *document.Document) int {
	n := 0
	for _, b := range doc.Blocks {
		n += CountWords(b.Text())
	}
	return n
}

// Stats summarizes a document.
type Stats struct {
	Words              int
	Paragraphs         int
	Characters         int
	CharactersNoSpaces int
}

// Collect computes document statistics. Paragraphs counts non-empty
// blocks; character counts exclude block boundaries.
func Collect(doc *document.Document) Stats {
	var st Stats
	for _, b := range doc.Blocks {
		text := b.Text()
		st.Words += CountWords(text)
		if !b.IsEmpty() {
			st.Paragraphs++
		}
		for _, r := range text {
			st.Characters++
			if !unicode.IsSpace(r) {
				st.CharactersNoSpaces++
			}
		}
	}
	return st
}

// Status returns the status bar summary for a caret, for example
// "Line: 2, Col: 5 | Words: 12 | notes.rpd". An empty path shows "No file".
func Status(doc *document.Document, pos document.Position, path string) (string, error) {
	line, col, err := LineAndColumn(doc, pos)
	if err != nil {
		return "", err
	}
	name := "No file"
	if path != "" {
		name = filepath.Base(path)
	}
	return fmt.Sprintf("Line: %d, Col: %d | Words: %d | %s", line, col, WordCount(doc), name), nil
}
