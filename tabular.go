// Package tabular persists streamed scientific measurement data in a
// crash-tolerant, self-documenting, append-only text format, and
// reconstructs typed columnar views from it for analysis.
//
// A measurement directory holds one tabular data file plus its metadata
// snapshot and diff files:
//
//	tabular_data.dat[.gz]            header + data rows + footer
//	snapshot.json[.gz]               initial metadata snapshot
//	snapshot.row-<n>.diff<m>.json    metadata diff after row n
//	snapshot_diffs.tar.gz            diff bundle of a finished measurement
//
// The data file is valid and readable at every point in time, not only
// after completion: the writer flushes each appended batch durably, and
// the reader treats a trailing partial line as "not yet written" rather
// than an error. There is no locking: consistency comes from append-only
// writes plus the row grammar's ability to detect a safe stopping point.
//
// # Writing
//
//	w, _ := tabular.NewWriter(dir,
//	    []tabular.Column{
//	        tabular.Float64Column("frequency", "Hz"),
//	        tabular.Float64Column("S21", ""),
//	    },
//	    tabular.WithSnapshotProvider(instrumentSnapshot),
//	)
//	defer w.Close()
//
//	for _, power := range []float64{-30, -20, -10} {
//	    setPower(power)
//	    _ = w.AddRows(ctx, map[string]any{
//	        "frequency": freqs,
//	        "S21":       measure(),
//	    })
//	}
//
// # Reading
//
//	t, _ := tabular.Read(dir)
//	freqs := t.Floats("frequency")
//	meta, _ := t.MetadataAt(0)
//
// Multiple directories with the same column schema concatenate into one
// table with tabular.ReadMany; per-row metadata stays addressable per
// source.
//
// This package provides convenient top-level wrappers; the table, parser,
// codec and snapshot packages expose the fine-grained API.
package tabular

import "github.com/measurekit/tabular/table"

// Re-exported core types; see package table.
type (
	Column = table.Column
	Writer = table.Writer
	Reader = table.Reader
	Table  = table.Table
)

// Column constructors, re-exported for the common case.
var (
	Float64Column    = table.Float64Column
	Int64Column      = table.Int64Column
	Complex128Column = table.Complex128Column
	StrColumn        = table.StrColumn
)

// Writer options, re-exported for the common case.
var (
	WithSnapshotProvider   = table.WithSnapshotProvider
	WithToolVersion        = table.WithToolVersion
	WithArchiveCompression = table.WithArchiveCompression
	WithLogger             = table.WithLogger
)

// NewWriter starts a new measurement in dir. See table.NewWriter.
func NewWriter(dir string, cols []Column, opts ...table.WriterOption) (*Writer, error) {
	return table.NewWriter(dir, cols, opts...)
}

// Read reconstructs the table of one measurement directory.
func Read(dir string) (*Table, error) {
	r, err := table.Open(dir)
	if err != nil {
		return nil, err
	}

	return r.ReadAll()
}

// ReadMany reconstructs and concatenates several measurement directories
// with identical column schemas, preserving per-source row order and
// per-source metadata lookups.
func ReadMany(dirs ...string) (*Table, error) {
	tables := make([]*Table, len(dirs))
	for i, dir := range dirs {
		t, err := Read(dir)
		if err != nil {
			return nil, err
		}
		tables[i] = t
	}

	return table.Concat(tables...)
}
