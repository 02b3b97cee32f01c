package compress

import (
	"fmt"
	"io"
	"strings"

	"github.com/measurekit/tabular/format"
)

// Codec wraps streams with one compression algorithm.
type Codec interface {
	// Type identifies the algorithm.
	Type() format.CompressionType

	// Extension is the file name suffix of archived files ("" for none).
	Extension() string

	// WrapWriter layers compression over w. The returned WriteCloser must
	// be closed to flush the trailing frame; closing it does not close w.
	WrapWriter(w io.Writer) (io.WriteCloser, error)

	// WrapReader layers decompression over r. Closing the returned
	// ReadCloser does not close r.
	WrapReader(r io.Reader) (io.ReadCloser, error)
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NoOpCodec{},
	format.CompressionGzip: GzipCodec{},
	format.CompressionZstd: ZstdCodec{},
	format.CompressionLZ4:  LZ4Codec{},
}

// ForType returns the built-in Codec for the given compression type.
func ForType(t format.CompressionType) (Codec, error) {
	if c, ok := builtinCodecs[t]; ok {
		return c, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", t)
}

// ForPath returns the Codec matching the file name extension, falling back
// to the no-op codec for unknown or missing extensions.
func ForPath(path string) Codec {
	for _, c := range builtinCodecs {
		if ext := c.Extension(); ext != "" && strings.HasSuffix(path, ext) {
			return c
		}
	}

	return NoOpCodec{}
}
