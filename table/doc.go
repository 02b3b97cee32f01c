// Package table implements the streaming writer and the reader of the
// tabular measurement data format.
//
// A Writer owns one append-only data file. It writes the self-documenting
// header when opened, encodes and durably flushes every batch of rows
// before returning from AddRows (so a concurrent reader always observes a
// consistent, parseable prefix), triggers snapshot diff tracking after
// each batch, and writes the footer on Close. Closing also archives the
// directory: the data file and snapshot are compressed and loose diff
// files are bundled, matching the layout of a finished measurement.
//
// A Reader reconstructs the typed columnar view from a measurement
// directory, plain or archived, finished or still being written, and
// pairs it with the replayed per-row metadata timeline. Reconstructed
// tables with identical schemas can be concatenated with Concat while
// keeping each source's metadata independently addressable.
package table
