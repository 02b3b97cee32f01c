// Package errs defines the sentinel errors shared across the tabular
// packages. All errors are comparable with errors.Is, and callers should
// match on these sentinels rather than on error strings.
package errs

import "errors"

// Grammar violations reported by the value codec and row parser. Each is
// surfaced wrapped in a parser.ParseError carrying the byte offset and a
// context snippet.
var (
	// ErrMalformedNumber indicates a numeric token with zero digits, an
	// exponent without digits, or a value out of range for its dtype.
	ErrMalformedNumber = errors.New("malformed number")

	// ErrUnexpectedTrailingToken indicates a complex value whose imaginary
	// part is not terminated by 'j'.
	ErrUnexpectedTrailingToken = errors.New("unexpected trailing token")

	// ErrColumnSeparatorExpected indicates a non-final column not followed
	// by a tab byte.
	ErrColumnSeparatorExpected = errors.New("column separator expected")

	// ErrRowTerminatorExpected indicates a final column not followed by a
	// newline byte.
	ErrRowTerminatorExpected = errors.New("row terminator expected")
)

// ErrNeedMore is a control-flow sentinel, not a failure: a decode reached
// the end of the supplied buffer while the token could still continue.
// The row parser converts it into the Incomplete outcome (stop cleanly,
// consume nothing of the partial line); it never escapes to callers of
// parser.Parse.
var ErrNeedMore = errors.New("need more bytes")

// Writer errors.
var (
	// ErrPathExists indicates the target data file already exists; the
	// writer never overwrites existing data.
	ErrPathExists = errors.New("path already exists")

	// ErrWriterClosed indicates an append on a closed writer.
	ErrWriterClosed = errors.New("writer already closed")
)

// Column schema errors.
var (
	ErrNoColumns           = errors.New("no columns specified")
	ErrInvalidColumnName   = errors.New("invalid column name")
	ErrInvalidColumnUnit   = errors.New("invalid column unit")
	ErrDuplicateColumnName = errors.New("duplicate column name")
)

// Append validation errors.
var (
	ErrUnknownColumn  = errors.New("unknown column")
	ErrMissingColumn  = errors.New("missing column")
	ErrLengthMismatch = errors.New("column value lengths mismatch")
	ErrDTypeMismatch  = errors.New("value type does not match column dtype")
)

// Reader errors.
var (
	// ErrTruncatedFile indicates a closed stream (footer present or file
	// archived) that ends inside a data row or comment line.
	ErrTruncatedFile = errors.New("truncated file")

	// ErrUnsupportedFormatVersion indicates an on-disk format major version
	// newer than this implementation understands.
	ErrUnsupportedFormatVersion = errors.New("unsupported on-disk format version")

	// ErrInvalidHeader indicates a header block that is missing required
	// tags or cannot be parsed.
	ErrInvalidHeader = errors.New("invalid header")

	// ErrNoDataFile indicates no tabular data file (plain or compressed)
	// was found in the directory.
	ErrNoDataFile = errors.New("no tabular data file found")

	// ErrSchemaMismatch indicates tables with differing column schemas
	// passed to Concat.
	ErrSchemaMismatch = errors.New("column schemas do not match")
)
