package parser

import "fmt"

// contextBytes is how much of the input after the offending byte is quoted
// in error messages.
const contextBytes = 24

// ParseError reports a grammar violation at a specific position in the
// stream. Offset is the absolute byte offset (accumulated across Parse
// calls), Context a short snippet of the input starting at that offset.
// Unwrap yields one of the errs sentinels so callers can match with
// errors.Is.
type ParseError struct {
	Offset  int64
	Context string
	err     error
}

func newParseError(offset int64, buf []byte, pos int, err error) *ParseError {
	end := pos + contextBytes
	if end > len(buf) {
		end = len(buf)
	}
	start := pos
	if start > end {
		start = end
	}

	return &ParseError{
		Offset:  offset,
		Context: string(buf[start:end]),
		err:     err,
	}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at byte offset %d (near %q): %v", e.Offset, e.Context, e.err)
}

func (e *ParseError) Unwrap() error { return e.err }
