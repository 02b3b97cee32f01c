//go:build !cgo

package compress

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

func (ZstdCodec) WrapWriter(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func (ZstdCodec) WrapReader(r io.Reader) (io.ReadCloser, error) {
	zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}

	return zr.IOReadCloser(), nil
}
