package compress

import (
	"io"

	"github.com/measurekit/tabular/format"
)

// NoOpCodec passes data through unchanged. Live measurement files are
// written with it; archiving may replace it with a real codec on close.
type NoOpCodec struct{}

var _ Codec = NoOpCodec{}

func (NoOpCodec) Type() format.CompressionType { return format.CompressionNone }

func (NoOpCodec) Extension() string { return "" }

func (NoOpCodec) WrapWriter(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

func (NoOpCodec) WrapReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
