package compress

import "github.com/measurekit/tabular/format"

// ZstdCodec compresses with Zstandard. The WrapWriter/WrapReader
// implementations are build-dependent: pure Go (klauspost/compress/zstd)
// by default, valyala/gozstd under cgo.
type ZstdCodec struct{}

var _ Codec = ZstdCodec{}

func (ZstdCodec) Type() format.CompressionType { return format.CompressionZstd }

func (ZstdCodec) Extension() string { return ".zst" }
