package table

import (
	"fmt"
	"unicode"

	"github.com/measurekit/tabular/codec"
	"github.com/measurekit/tabular/errs"
	"github.com/measurekit/tabular/format"
)

// Column describes one column of a tabular data file. The column sequence
// is fixed for the lifetime of the file; there is no adding or removing
// columns mid-stream.
type Column struct {
	// Name identifies the column; unique within a table. Word characters,
	// space and a small punctuation set only.
	Name string

	// Unit is the physical unit, shown as "name (unit)" in the header.
	// May be empty.
	Unit string

	// DType declares the value type of every cell in this column.
	DType format.DType

	// Formatter turns a value into its cell text. Nil selects the
	// canonical formatter for DType. The writer sanitizes the output, so
	// custom formatters only need to be deterministic.
	Formatter codec.Formatter
}

// Float64Column declares a float64 column.
func Float64Column(name, unit string) Column {
	return Column{Name: name, Unit: unit, DType: format.DTypeFloat64}
}

// Int64Column declares an int64 column.
func Int64Column(name, unit string) Column {
	return Column{Name: name, Unit: unit, DType: format.DTypeInt64}
}

// Complex128Column declares a complex128 column.
func Complex128Column(name, unit string) Column {
	return Column{Name: name, Unit: unit, DType: format.DTypeComplex128}
}

// StrColumn declares a string column.
func StrColumn(name, unit string) Column {
	return Column{Name: name, Unit: unit, DType: format.DTypeStr}
}

func (c Column) formatter() codec.Formatter {
	if c.Formatter != nil {
		return c.Formatter
	}

	return codec.DefaultFormatter(c.DType)
}

// namePunct is the punctuation allowed in column names. Parentheses are
// excluded so that "name (unit)" header cells parse unambiguously.
const namePunct = " _-+*/%^.,:;<>=[]"

// unitPunct additionally allows parentheses inside units.
const unitPunct = namePunct + "()"

func validIdent(s string, punct string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			continue
		}
		ok := false
		for _, p := range punct {
			if r == p {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	return true
}

func validateColumns(cols []Column) error {
	if len(cols) == 0 {
		return errs.ErrNoColumns
	}

	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if c.Name == "" || !validIdent(c.Name, namePunct) {
			return fmt.Errorf("%w: %q", errs.ErrInvalidColumnName, c.Name)
		}
		if !validIdent(c.Unit, unitPunct) {
			return fmt.Errorf("%w: column %q unit %q", errs.ErrInvalidColumnUnit, c.Name, c.Unit)
		}
		if codec.DefaultFormatter(c.DType) == nil {
			return fmt.Errorf("column %q: invalid dtype %v", c.Name, c.DType)
		}
		if seen[c.Name] {
			return fmt.Errorf("%w: %q", errs.ErrDuplicateColumnName, c.Name)
		}
		seen[c.Name] = true
	}

	return nil
}

func columnDTypes(cols []Column) []format.DType {
	dts := make([]format.DType, len(cols))
	for i, c := range cols {
		dts[i] = c.DType
	}

	return dts
}

func sameSchema(a, b []Column) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Unit != b[i].Unit || a[i].DType != b[i].DType {
			return false
		}
	}

	return true
}

// accessorFor validates and coerces one column's value slice. Only
// widening numeric coercions are allowed; values are converted, never
// reinterpreted. The accessor returns the canonical Go type for the
// column's dtype.
func accessorFor(c Column, v any) (int, func(int) any, error) {
	switch c.DType {
	case format.DTypeFloat64:
		switch s := v.(type) {
		case []float64:
			return len(s), func(i int) any { return s[i] }, nil
		case []int64:
			return len(s), func(i int) any { return float64(s[i]) }, nil
		case []int:
			return len(s), func(i int) any { return float64(s[i]) }, nil
		}
	case format.DTypeInt64:
		switch s := v.(type) {
		case []int64:
			return len(s), func(i int) any { return s[i] }, nil
		case []int:
			return len(s), func(i int) any { return int64(s[i]) }, nil
		}
	case format.DTypeComplex128:
		switch s := v.(type) {
		case []complex128:
			return len(s), func(i int) any { return s[i] }, nil
		case []float64:
			return len(s), func(i int) any { return complex(s[i], 0) }, nil
		case []int64:
			return len(s), func(i int) any { return complex(float64(s[i]), 0) }, nil
		case []int:
			return len(s), func(i int) any { return complex(float64(s[i]), 0) }, nil
		}
	case format.DTypeStr:
		if s, ok := v.([]string); ok {
			return len(s), func(i int) any { return s[i] }, nil
		}
	}

	return 0, nil, fmt.Errorf("%w: column %q (%s) cannot take %T",
		errs.ErrDTypeMismatch, c.Name, c.DType, v)
}
