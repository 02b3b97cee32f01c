package parser

import "github.com/measurekit/tabular/format"

// ColumnData is the typed value buffer for one column. Exactly one of the
// slices is in use, selected by DType. Complex and string columns need two
// machine words per value internally; this union hides that behind one
// value array per column.
type ColumnData struct {
	DType format.DType

	Float64    []float64
	Int64      []int64
	Complex128 []complex128
	Str        []string
}

// Len returns the number of values held.
func (c *ColumnData) Len() int {
	switch c.DType {
	case format.DTypeFloat64:
		return len(c.Float64)
	case format.DTypeInt64:
		return len(c.Int64)
	case format.DTypeComplex128:
		return len(c.Complex128)
	case format.DTypeStr:
		return len(c.Str)
	default:
		return 0
	}
}

// Value returns the value at index i as an untyped scalar.
func (c *ColumnData) Value(i int) any {
	switch c.DType {
	case format.DTypeFloat64:
		return c.Float64[i]
	case format.DTypeInt64:
		return c.Int64[i]
	case format.DTypeComplex128:
		return c.Complex128[i]
	case format.DTypeStr:
		return c.Str[i]
	default:
		return nil
	}
}

// Append appends all values of other. Both sides must have the same DType.
func (c *ColumnData) Append(other *ColumnData) {
	switch c.DType {
	case format.DTypeFloat64:
		c.Float64 = append(c.Float64, other.Float64...)
	case format.DTypeInt64:
		c.Int64 = append(c.Int64, other.Int64...)
	case format.DTypeComplex128:
		c.Complex128 = append(c.Complex128, other.Complex128...)
	case format.DTypeStr:
		c.Str = append(c.Str, other.Str...)
	}
}

// truncate drops values beyond n, used to roll back a partially decoded row.
func (c *ColumnData) truncate(n int) {
	switch c.DType {
	case format.DTypeFloat64:
		c.Float64 = c.Float64[:n]
	case format.DTypeInt64:
		c.Int64 = c.Int64[:n]
	case format.DTypeComplex128:
		c.Complex128 = c.Complex128[:n]
	case format.DTypeStr:
		c.Str = c.Str[:n]
	}
}

func (c *ColumnData) reset() {
	c.truncate(0)
}

// Batch holds pre-sized per-column output buffers for up to Cap() rows.
// A Batch is reused across Parse calls via Reset.
type Batch struct {
	cols     []ColumnData
	capacity int
}

// NewBatch creates a batch for the given column dtypes with room for
// capacity rows per column.
func NewBatch(dtypes []format.DType, capacity int) *Batch {
	if capacity <= 0 {
		capacity = 1
	}

	b := &Batch{
		cols:     make([]ColumnData, len(dtypes)),
		capacity: capacity,
	}
	for i, dt := range dtypes {
		col := ColumnData{DType: dt}
		switch dt {
		case format.DTypeFloat64:
			col.Float64 = make([]float64, 0, capacity)
		case format.DTypeInt64:
			col.Int64 = make([]int64, 0, capacity)
		case format.DTypeComplex128:
			col.Complex128 = make([]complex128, 0, capacity)
		case format.DTypeStr:
			col.Str = make([]string, 0, capacity)
		}
		b.cols[i] = col
	}

	return b
}

// Cols returns the per-column buffers holding the parsed values.
func (b *Batch) Cols() []ColumnData { return b.cols }

// Col returns the buffer for column i.
func (b *Batch) Col(i int) *ColumnData { return &b.cols[i] }

// Len returns the number of complete rows held.
func (b *Batch) Len() int {
	if len(b.cols) == 0 {
		return 0
	}

	return b.cols[0].Len()
}

// Cap returns the row capacity.
func (b *Batch) Cap() int { return b.capacity }

// Reset empties the batch, retaining allocated buffers for reuse.
func (b *Batch) Reset() {
	for i := range b.cols {
		b.cols[i].reset()
	}
}
