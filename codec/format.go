package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/measurekit/tabular/format"
)

// Formatter turns one scalar value into its cell text. The value passed in
// is always the column's canonical Go type (float64, int64, complex128 or
// string). The writer sanitizes the result, so a formatter does not need
// to worry about structurally significant bytes.
type Formatter func(v any) string

// FormatFloat64 formats with 15 decimal digits in scientific notation,
// e.g. 1.5 -> "1.500000000000000e+00". NaN and infinities format as "nan",
// "inf" and "-inf", which the decoder accepts back.
func FormatFloat64(v any) string {
	f := v.(float64)
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	default:
		return fmt.Sprintf("%.15e", f)
	}
}

// FormatInt64 formats a decimal integer with no sign for non-negative
// values and no digit grouping.
func FormatInt64(v any) string {
	return strconv.FormatInt(v.(int64), 10)
}

// FormatComplex128 formats the minimal complex form the decoder's grammar
// accepts: "3" for purely real, "-1j" for purely imaginary, "2+1j" or
// "1.5-2j" otherwise. Parts use %g so round-trips are exact.
func FormatComplex128(v any) string {
	c := v.(complex128)
	re, im := real(c), imag(c)

	if im == 0 {
		return formatPart(re)
	}
	if re == 0 {
		return formatPart(im) + "j"
	}
	if im > 0 || math.IsNaN(im) {
		return formatPart(re) + "+" + formatPart(im) + "j"
	}

	return formatPart(re) + formatPart(im) + "j"
}

func formatPart(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FormatStr passes the string through unchanged.
func FormatStr(v any) string {
	return v.(string)
}

// DefaultFormatter returns the canonical formatter for a dtype.
func DefaultFormatter(dtype format.DType) Formatter {
	switch dtype {
	case format.DTypeFloat64:
		return FormatFloat64
	case format.DTypeInt64:
		return FormatInt64
	case format.DTypeComplex128:
		return FormatComplex128
	case format.DTypeStr:
		return FormatStr
	default:
		return nil
	}
}

const structural = "\t\n\r#"

// Sanitize replaces bytes that are structurally significant in the row
// grammar (tab, newline, carriage return, '#') with a space. The writer
// applies it to every encoded cell before emission.
func Sanitize(cell string) string {
	if !strings.ContainsAny(cell, structural) {
		return cell
	}

	b := []byte(cell)
	for i, c := range b {
		if c == '\t' || c == '\n' || c == '\r' || c == '#' {
			b[i] = ' '
		}
	}

	return string(b)
}
