// Package format applies character and paragraph formatting to selections
// of a document.
//
// Character properties are applied by splitting the runs at the selection
// ends and rewriting the style of every run in between; the document then
// merges runs that became equal. Paragraph properties apply to whole
// blocks. Queries over a range return a single value or style.Mixed.
//
// When the selection is empty, character formatting goes to a Typing
// value instead of the document. The engine keeps one Typing per caret and
// uses it for the next inserted text.
package format
