package table

import (
	"fmt"
	"sort"
	"time"

	"github.com/measurekit/tabular/errs"
	"github.com/measurekit/tabular/format"
	"github.com/measurekit/tabular/parser"
	"github.com/measurekit/tabular/snapshot"
)

// Table is the reconstructed columnar view of one or more measurement
// sources: for every column a fixed-length typed array, plus the replayed
// per-row metadata. Built once by ReadAll or Concat; read-only thereafter.
type Table struct {
	cols   []Column
	byName map[string]int
	data   []parser.ColumnData
	rows   int

	complete  bool
	startedAt time.Time
	endedAt   time.Time

	// sources keeps per-origin metadata timelines independently
	// addressable after concatenation; they are never merged.
	sources []tableSource
}

type tableSource struct {
	start    int
	rows     int
	timeline *snapshot.Timeline
}

func newTable(hdr *headerInfo, data []parser.ColumnData, fs *footerState, tl *snapshot.Timeline) *Table {
	t := &Table{
		cols:      append([]Column(nil), hdr.columns...),
		data:      data,
		complete:  fs.ended,
		startedAt: hdr.startedAt,
		endedAt:   fs.endedAt,
	}
	if len(data) > 0 {
		t.rows = data[0].Len()
	}
	t.sources = []tableSource{{start: 0, rows: t.rows, timeline: tl}}
	t.index()

	return t
}

func (t *Table) index() {
	t.byName = make(map[string]int, len(t.cols))
	for i, c := range t.cols {
		t.byName[c.Name] = i
	}
}

// NumRows returns the number of successfully parsed data rows.
func (t *Table) NumRows() int { return t.rows }

// Columns returns the column schema.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.cols))
	copy(out, t.cols)

	return out
}

// Complete reports whether every source stream carried a footer, i.e. no
// measurement is still running.
func (t *Table) Complete() bool { return t.complete }

// StartedAt returns the start timestamp of the (first) source.
func (t *Table) StartedAt() time.Time { return t.startedAt }

// EndedAt returns the end timestamp of the (last) source; zero while the
// measurement is still running.
func (t *Table) EndedAt() time.Time { return t.endedAt }

// Unit returns the unit of the named column, or "" if unknown.
func (t *Table) Unit(name string) string {
	if i, ok := t.byName[name]; ok {
		return t.cols[i].Unit
	}

	return ""
}

func (t *Table) column(name string, dt format.DType) *parser.ColumnData {
	i, ok := t.byName[name]
	if !ok || t.cols[i].DType != dt {
		return nil
	}

	return &t.data[i]
}

// Floats returns the values of a float64 column, or nil if the column does
// not exist or has a different dtype. The slice is the table's backing
// array; callers must not modify it.
func (t *Table) Floats(name string) []float64 {
	if c := t.column(name, format.DTypeFloat64); c != nil {
		return c.Float64
	}

	return nil
}

// Ints returns the values of an int64 column (see Floats for semantics).
func (t *Table) Ints(name string) []int64 {
	if c := t.column(name, format.DTypeInt64); c != nil {
		return c.Int64
	}

	return nil
}

// Complexes returns the values of a complex128 column.
func (t *Table) Complexes(name string) []complex128 {
	if c := t.column(name, format.DTypeComplex128); c != nil {
		return c.Complex128
	}

	return nil
}

// Strings returns the values of a string column.
func (t *Table) Strings(name string) []string {
	if c := t.column(name, format.DTypeStr); c != nil {
		return c.Str
	}

	return nil
}

// Value returns the value at (row, column name) as an untyped scalar, or
// nil if the column is unknown.
func (t *Table) Value(row int, name string) any {
	i, ok := t.byName[name]
	if !ok {
		return nil
	}

	return t.data[i].Value(row)
}

// MetadataAt returns the metadata snapshot in effect for the given row:
// the owning source's initial snapshot with every diff recorded at or
// before that row applied in order. Lookups stay per-source after Concat.
func (t *Table) MetadataAt(row int) (any, error) {
	if row < 0 || row >= t.rows {
		return nil, fmt.Errorf("row %d out of range [0, %d)", row, t.rows)
	}

	i := sort.Search(len(t.sources), func(i int) bool { return t.sources[i].start > row }) - 1
	src := t.sources[i]

	return src.timeline.At(row - src.start)
}

// Concat reconstructs a single table from multiple sources with identical
// column schemas: rows are the ordered concatenation of the inputs, and
// each row's metadata lookup remains backed by its own source.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, errs.ErrNoColumns
	}
	if len(tables) == 1 {
		return tables[0], nil
	}

	first := tables[0]
	out := &Table{
		cols:      append([]Column(nil), first.cols...),
		data:      make([]parser.ColumnData, len(first.cols)),
		complete:  true,
		startedAt: first.startedAt,
	}
	for i, c := range first.cols {
		out.data[i] = parser.ColumnData{DType: c.DType}
	}

	for _, t := range tables {
		if !sameSchema(first.cols, t.cols) {
			return nil, fmt.Errorf("%w: %v vs %v", errs.ErrSchemaMismatch,
				columnNames(first.cols), columnNames(t.cols))
		}

		for i := range out.data {
			out.data[i].Append(&t.data[i])
		}
		for _, src := range t.sources {
			out.sources = append(out.sources, tableSource{
				start:    out.rows + src.start,
				rows:     src.rows,
				timeline: src.timeline,
			})
		}
		out.rows += t.rows
		out.complete = out.complete && t.complete
		out.endedAt = t.endedAt
	}
	out.index()

	return out, nil
}

func columnNames(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}

	return names
}
