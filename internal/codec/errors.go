package codec

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is.
var (
	// ErrParse indicates malformed markup.
	ErrParse = errors.New("parse error")

	// ErrIO indicates a failure of the underlying reader or writer.
	ErrIO = errors.New("i/o error")
)

// ParseError describes malformed markup. Offset is the byte offset of the
// offending value in the input, or -1 when unknown.
type ParseError struct {
	Path   string
	Offset int
	Msg    string
	Err    error
}

func (e *ParseError) Error() string {
	where := e.Path
	if where == "" {
		where = "markup"
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("parse error in %s at offset %d: %s", where, e.Offset, e.Msg)
	}
	return fmt.Sprintf("parse error in %s: %s", where, e.Msg)
}

// Unwrap returns the underlying cause, if any.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes every ParseError match ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// IOError wraps a read or write failure.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is makes every IOError match ErrIO.
func (e *IOError) Is(target error) bool {
	return target == ErrIO
}

func parseErr(off int, format string, args ...any) *ParseError {
	return &ParseError{Offset: off, Msg: fmt.Sprintf(format, args...)}
}
