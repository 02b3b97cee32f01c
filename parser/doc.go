// Package parser implements the row grammar of the tabular on-disk format:
// comment lines, blank lines and tab-separated data rows, parsed from a
// byte buffer into pre-sized typed column buffers.
//
// The parser is resumable. It only ever consumes complete lines: when the
// buffer ends inside a data row or comment line, Parse stops cleanly
// without error and reports how many bytes it consumed. The caller retains
// the unconsumed tail, appends whatever new bytes arrive, and calls Parse
// again. This is what makes it safe to read a file that a live measurement
// is still appending to: a trailing partial line means "not yet
// available", never "corrupt".
//
// Parsing is batched: each Parse call fills at most the batch capacity of
// rows, so peak memory during a single call stays bounded no matter how
// large the file is. Callers concatenate batches to build full columns.
//
// Grammar violations abort parsing with a *ParseError carrying the
// absolute byte offset of the offending byte, a short context snippet, and
// one of the errs sentinels (ErrMalformedNumber, ErrUnexpectedTrailingToken,
// ErrColumnSeparatorExpected, ErrRowTerminatorExpected).
package parser
