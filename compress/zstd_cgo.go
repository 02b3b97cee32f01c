//go:build cgo

package compress

import (
	"io"

	"github.com/valyala/gozstd"
)

func (ZstdCodec) WrapWriter(w io.Writer) (io.WriteCloser, error) {
	return gozstd.NewWriter(w), nil
}

func (ZstdCodec) WrapReader(r io.Reader) (io.ReadCloser, error) {
	zr := gozstd.NewReader(r)

	return &gozstdReadCloser{zr}, nil
}

// gozstdReadCloser releases the reader's cgo resources on Close.
type gozstdReadCloser struct {
	zr *gozstd.Reader
}

func (rc *gozstdReadCloser) Read(p []byte) (int, error) { return rc.zr.Read(p) }

func (rc *gozstdReadCloser) Close() error {
	rc.zr.Release()
	return nil
}
