// Package compress provides the file compression codecs used for archived
// measurement files: None, Gzip (the on-disk default, ".gz"), Zstandard
// (".zst") and LZ4 (".lz4").
//
// Codecs wrap io.Writer/io.Reader streams rather than compressing byte
// slices, because the targets are whole files (tabular_data.dat,
// snapshot.json, the diff bundle) that can be larger than what anyone
// wants to hold in memory.
//
// The Zstandard codec has two builds: the pure-Go klauspost/compress
// implementation by default, and valyala/gozstd when built with cgo.
package compress
