package compress

import (
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/measurekit/tabular/format"
)

// GzipCodec is the default archive codec. Gzip keeps archived measurement
// directories readable by standard tooling (zcat, pandas, the original
// producer), which matters more here than compression ratio.
type GzipCodec struct{}

var _ Codec = GzipCodec{}

func (GzipCodec) Type() format.CompressionType { return format.CompressionGzip }

func (GzipCodec) Extension() string { return ".gz" }

func (GzipCodec) WrapWriter(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(w), nil
}

func (GzipCodec) WrapReader(r io.Reader) (io.ReadCloser, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}

	return zr, nil
}
