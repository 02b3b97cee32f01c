package format

import (
	"fmt"
	"strings"
)

type (
	DType           uint8
	CompressionType uint8
)

const (
	DTypeFloat64    DType = 0x1 // IEEE-754 double column
	DTypeInt64      DType = 0x2 // signed 64-bit integer column
	DTypeComplex128 DType = 0x3 // complex column, <real>±<imag>j text form
	DTypeStr        DType = 0x4 // UTF-8 string column

	CompressionNone CompressionType = 0x1 // CompressionNone leaves files uncompressed.
	CompressionGzip CompressionType = 0x2 // CompressionGzip is the default archive codec.
	CompressionZstd CompressionType = 0x3 // CompressionZstd uses Zstandard.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 uses LZ4 frames.
)

func (d DType) String() string {
	switch d {
	case DTypeFloat64:
		return "float64"
	case DTypeInt64:
		return "int64"
	case DTypeComplex128:
		return "complex128"
	case DTypeStr:
		return "str"
	default:
		return "Unknown"
	}
}

// HeaderCell returns the dtype cell written to the header dtype line,
// in the "<module>.<dtype>" form.
func (d DType) HeaderCell() string {
	return "tabular." + d.String()
}

// ParseDType parses a dtype header cell. The cell is matched on the suffix
// after the last dot so that cells from other producers ("numpy.float64",
// "builtins.str") parse the same as "tabular.float64".
func ParseDType(cell string) (DType, error) {
	name := cell
	if i := strings.LastIndexByte(cell, '.'); i >= 0 {
		name = cell[i+1:]
	}

	switch name {
	case "float64", "float", "float32":
		return DTypeFloat64, nil
	case "int64", "int", "int32":
		return DTypeInt64, nil
	case "complex128", "complex", "complex64":
		return DTypeComplex128, nil
	case "str", "str_", "string", "unicode_":
		return DTypeStr, nil
	default:
		return 0, fmt.Errorf("unknown dtype cell %q", cell)
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionGzip:
		return "Gzip"
	case CompressionZstd:
		return "Zstd"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// Extension returns the file name suffix appended to archived files,
// or "" for CompressionNone.
func (c CompressionType) Extension() string {
	switch c {
	case CompressionGzip:
		return ".gz"
	case CompressionZstd:
		return ".zst"
	case CompressionLZ4:
		return ".lz4"
	default:
		return ""
	}
}
