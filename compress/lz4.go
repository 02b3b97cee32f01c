package compress

import (
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/measurekit/tabular/format"
)

// LZ4Codec compresses with LZ4 frames. Fastest of the archive codecs,
// useful when archiving time at measurement close matters more than size.
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

func (LZ4Codec) Type() format.CompressionType { return format.CompressionLZ4 }

func (LZ4Codec) Extension() string { return ".lz4" }

func (LZ4Codec) WrapWriter(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}

func (LZ4Codec) WrapReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}
