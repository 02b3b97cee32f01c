package parser

import (
	"bytes"
	"errors"

	"github.com/measurekit/tabular/codec"
	"github.com/measurekit/tabular/errs"
	"github.com/measurekit/tabular/format"
)

// CommentFunc receives each complete comment line (leading '#' included,
// trailing '\r' and '\n' stripped) together with its absolute byte offset.
// The reader uses this to pick header and footer tags out of the stream.
type CommentFunc func(line []byte, offset int64)

// Parser is the resumable row grammar parser for one column layout.
//
// The caller feeds it buffers that start exactly where the previous Parse
// call stopped consuming; the parser tracks the absolute stream offset
// across calls for error reporting. A Parser is not safe for concurrent
// use.
type Parser struct {
	dtypes    []format.DType
	onComment CommentFunc
	offset    int64
}

// New creates a parser for rows with the given per-column dtypes.
func New(dtypes []format.DType, opts ...Option) *Parser {
	p := &Parser{dtypes: dtypes}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Option configures a Parser.
type Option func(*Parser)

// WithCommentFunc installs a callback invoked for every complete comment
// line encountered while parsing.
func WithCommentFunc(fn CommentFunc) Option {
	return func(p *Parser) { p.onComment = fn }
}

// WithOffset sets the absolute stream offset of the first buffer byte,
// for callers that start parsing mid-stream.
func WithOffset(offset int64) Option {
	return func(p *Parser) { p.offset = offset }
}

// Offset returns the absolute stream offset the parser has consumed up to.
func (p *Parser) Offset() int64 { return p.offset }

// DTypes returns the column dtypes the parser was built for.
func (p *Parser) DTypes() []format.DType { return p.dtypes }

// Parse consumes complete lines from buf, appending decoded data rows to
// batch until either the batch is full or the buffer ends.
//
// It returns the number of rows appended and the number of bytes consumed.
// Unconsumed bytes (an incomplete trailing row or comment) are not an
// error: the caller keeps them and retries once more bytes are available.
// A grammar violation returns a *ParseError; rows completed before the
// violation remain valid in the batch.
func (p *Parser) Parse(buf []byte, batch *Batch) (int, int, error) {
	rows := 0
	i := 0

	for batch.Len() < batch.Cap() {
		if i >= len(buf) {
			break
		}

		switch buf[i] {
		case '\n':
			// Blank line.
			i++
			continue
		case '\r':
			// Blank line with CRLF ending, or an incomplete one.
			if i+1 >= len(buf) {
				return p.done(rows, i)
			}
			if buf[i+1] == '\n' {
				i += 2
				continue
			}
		case '#':
			nl := bytes.IndexByte(buf[i:], '\n')
			if nl < 0 {
				// Comment still being written.
				return p.done(rows, i)
			}
			if p.onComment != nil {
				line := buf[i : i+nl]
				if len(line) > 0 && line[len(line)-1] == '\r' {
					line = line[:len(line)-1]
				}
				p.onComment(line, p.offset+int64(i))
			}
			i += nl + 1
			continue
		}

		n, err := p.parseRow(buf, i, batch)
		if err != nil {
			p.rollbackRow(batch)
			if errors.Is(err, errs.ErrNeedMore) {
				return p.done(rows, i)
			}

			_, consumed, _ := p.done(rows, i)

			return rows, consumed, err
		}

		rows++
		i += n
	}

	return p.done(rows, i)
}

func (p *Parser) done(rows, consumed int) (int, int, error) {
	p.offset += int64(consumed)
	return rows, consumed, nil
}

// parseRow decodes one data row starting at buf[start]. It appends values
// to batch column by column as it goes; the caller rolls the batch back on
// failure. Returns the number of bytes the row occupies including its
// terminating newline.
func (p *Parser) parseRow(buf []byte, start int, batch *Batch) (int, error) {
	j := start
	last := len(p.dtypes) - 1

	for col, dt := range p.dtypes {
		var n int
		var err error

		switch dt {
		case format.DTypeFloat64:
			var v float64
			v, n, err = codec.DecodeFloat(buf[j:])
			if err == nil {
				c := batch.Col(col)
				c.Float64 = append(c.Float64, v)
			}
		case format.DTypeInt64:
			var v int64
			v, n, err = codec.DecodeInt(buf[j:])
			if err == nil {
				c := batch.Col(col)
				c.Int64 = append(c.Int64, v)
			}
		case format.DTypeComplex128:
			var v complex128
			v, n, err = codec.DecodeComplex(buf[j:])
			if err == nil {
				c := batch.Col(col)
				c.Complex128 = append(c.Complex128, v)
			}
		case format.DTypeStr:
			var v string
			v, n, err = codec.DecodeStr(buf[j:])
			if err == nil {
				c := batch.Col(col)
				c.Str = append(c.Str, v)
			}
		}

		if err != nil {
			if errors.Is(err, errs.ErrNeedMore) {
				return 0, err
			}

			return 0, newParseError(p.offset+int64(j+n), buf, j+n, err)
		}
		j += n

		// A carriage return immediately before the expected terminator is
		// skipped (CRLF tolerance).
		if j < len(buf) && buf[j] == '\r' {
			j++
		}
		if j >= len(buf) {
			return 0, errs.ErrNeedMore
		}

		if col < last {
			if buf[j] != '\t' {
				return 0, newParseError(p.offset+int64(j), buf, j, errs.ErrColumnSeparatorExpected)
			}
		} else if buf[j] != '\n' {
			return 0, newParseError(p.offset+int64(j), buf, j, errs.ErrRowTerminatorExpected)
		}
		j++
	}

	return j - start, nil
}

// rollbackRow trims every column buffer back to the shortest, dropping the
// values of a row that did not complete.
func (p *Parser) rollbackRow(batch *Batch) {
	minLen := -1
	for i := range batch.Cols() {
		if l := batch.Col(i).Len(); minLen < 0 || l < minLen {
			minLen = l
		}
	}
	if minLen < 0 {
		return
	}
	for i := range batch.Cols() {
		batch.Col(i).truncate(minLen)
	}
}
