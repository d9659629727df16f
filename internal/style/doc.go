// Package style defines the character and paragraph attributes of a rich
// text document and the property identifiers used to query and change them.
//
// Character attributes (Char) live on runs: font family, size, weight,
// slant, underline and foreground color. Paragraph attributes (Para) live on
// blocks: alignment, text indent, line height and list kind.
//
// A Property names one attribute and knows how to read, validate and write
// it, so range operations can be written once for every attribute:
//
//	v, err := style.FontSize.Normalize(14)
//	style.FontSize.Set(&ch, v)
//
// Range queries that find more than one value report the Mixed sentinel.
package style
