// Package codec implements the scalar value codec of the tabular on-disk
// format: canonical text formatting of float64, int64, complex128 and
// string cells, and the strict decoders that turn cell bytes back into
// typed values.
//
// The decoders operate on raw byte buffers and never read past a token.
// Each returns the number of bytes consumed so the row parser can verify
// the terminating byte itself. When a token reaches the end of the buffer
// and could still continue, the decoders return errs.ErrNeedMore; this is
// the mechanism that lets a reader safely re-parse a file that is still
// being appended to.
//
// Grammar summary (locale independent, '.' is always the decimal
// separator):
//
//	float:   '-'? digits? '.'? digits? exponent?   (at least one digit)
//	         | '-'? ("nan" | "inf")
//	int:     ('-' | '+')? digits
//	complex: float 'j'                  purely imaginary
//	         | float                    purely real (terminator follows)
//	         | float '+'? float 'j'     full form; '-' stays with the float
//	str:     raw bytes up to the next tab or newline, trailing '\r' dropped
package codec
