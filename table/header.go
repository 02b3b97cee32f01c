package table

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/measurekit/tabular/errs"
	"github.com/measurekit/tabular/format"
	"github.com/measurekit/tabular/internal/pool"
)

// ToolVersion is one "# <toolname>_version = <version>" header line,
// identifying a producer dependency. Free-form version strings.
type ToolVersion struct {
	Tool    string
	Version string
}

// headerInfo is everything the header comment block declares.
type headerInfo struct {
	version   format.Version
	tools     []ToolVersion
	columns   []Column
	startedAt time.Time
}

// writeHeader emits the header comment block, in contract order: format
// version, tool versions, column names+units, column dtypes, start
// timestamp.
func writeHeader(bb *pool.ByteBuffer, cols []Column, tools []ToolVersion, started time.Time) {
	fmt.Fprintf(bb, "# %s = %s\n", format.TagFormatVersion, format.OndiskVersion)
	fmt.Fprintf(bb, "# tabular%s = %s\n", format.ToolVersionSuffix, format.LibraryVersion)
	for _, tv := range tools {
		fmt.Fprintf(bb, "# %s%s = %s\n", tv.Tool, format.ToolVersionSuffix, tv.Version)
	}

	bb.WriteString("# ")
	for i, c := range cols {
		if i > 0 {
			bb.WriteByte('\t')
		}
		bb.WriteString(c.Name)
		bb.WriteString(" (")
		bb.WriteString(c.Unit)
		bb.WriteString(")")
	}
	bb.WriteByte('\n')

	bb.WriteString("# ")
	for i, c := range cols {
		if i > 0 {
			bb.WriteByte('\t')
		}
		bb.WriteString(c.DType.HeaderCell())
	}
	bb.WriteByte('\n')

	fmt.Fprintf(bb, "# %s%s\n", format.TagStarted, started.Format(format.TimestampLayout))
}

// writeFooter emits the footer comment block: end timestamp and the
// 0-based row indices preceding each recorded snapshot diff.
func writeFooter(bb *pool.ByteBuffer, ended time.Time, diffRows []int) {
	fmt.Fprintf(bb, "# %s%s\n", format.TagEnded, ended.Format(format.TimestampLayout))

	bb.WriteString("# ")
	bb.WriteString(format.TagDiffRows)
	for i, r := range diffRows {
		if i > 0 {
			bb.WriteByte(',')
		}
		bb.WriteString(" ")
		bb.WriteString(strconv.Itoa(r))
	}
	bb.WriteByte('\n')
}

// parseHeader consumes the header comment block from br and returns the
// declared schema plus the number of bytes consumed, leaving br positioned
// at the first byte after the start-timestamp line. Blank lines inside the
// header are tolerated.
func parseHeader(br *bufio.Reader) (*headerInfo, int64, error) {
	h := &headerInfo{}
	var (
		consumed int64
		names    []string
		units    []string
		dtypes   []format.DType
		haveVer  bool
		haveCols bool
		haveDts  bool
	)

	for {
		line, err := br.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, 0, fmt.Errorf("%w: header ends before start timestamp", errs.ErrInvalidHeader)
			}

			return nil, 0, err
		}
		consumed += int64(len(line))

		text := strings.TrimRight(string(line), "\r\n")
		if text == "" {
			continue
		}
		if !strings.HasPrefix(text, "#") {
			return nil, 0, fmt.Errorf("%w: data row before start timestamp", errs.ErrInvalidHeader)
		}
		text = strings.TrimSpace(strings.TrimPrefix(text, "#"))

		switch {
		case strings.HasPrefix(text, format.TagStarted):
			ts, err := time.Parse(format.TimestampLayout, strings.TrimPrefix(text, format.TagStarted))
			if err != nil {
				return nil, 0, fmt.Errorf("%w: bad start timestamp: %v", errs.ErrInvalidHeader, err)
			}
			h.startedAt = ts

			if !haveVer || !haveCols || !haveDts {
				return nil, 0, fmt.Errorf("%w: missing version, column or dtype line", errs.ErrInvalidHeader)
			}
			if len(names) != len(dtypes) {
				return nil, 0, fmt.Errorf("%w: %d columns but %d dtypes", errs.ErrInvalidHeader, len(names), len(dtypes))
			}
			h.columns = make([]Column, len(names))
			for i := range names {
				h.columns[i] = Column{Name: names[i], Unit: units[i], DType: dtypes[i]}
			}

			return h, consumed, nil

		case strings.Contains(text, " = "):
			key, val, _ := strings.Cut(text, " = ")
			key, val = strings.TrimSpace(key), strings.TrimSpace(val)
			if key == format.TagFormatVersion {
				v, err := format.ParseVersion(val)
				if err != nil {
					return nil, 0, fmt.Errorf("%w: %v", errs.ErrInvalidHeader, err)
				}
				h.version = v
				haveVer = true
			} else if tool, ok := strings.CutSuffix(key, format.ToolVersionSuffix); ok {
				h.tools = append(h.tools, ToolVersion{Tool: tool, Version: val})
			}
			// Unknown tags are additive, backward-compatible fields: skip.

		default:
			cells := strings.Split(text, "\t")
			if dts, ok := parseDTypeCells(cells); ok {
				dtypes = dts
				haveDts = true
				continue
			}
			ns, us, err := parseColumnCells(cells)
			if err != nil {
				return nil, 0, err
			}
			names, units = ns, us
			haveCols = true
		}
	}
}

func parseDTypeCells(cells []string) ([]format.DType, bool) {
	dts := make([]format.DType, len(cells))
	for i, cell := range cells {
		dt, err := format.ParseDType(strings.TrimSpace(cell))
		if err != nil {
			return nil, false
		}
		dts[i] = dt
	}

	return dts, true
}

func parseColumnCells(cells []string) ([]string, []string, error) {
	names := make([]string, len(cells))
	units := make([]string, len(cells))
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)
		open := strings.LastIndex(cell, " (")
		if open < 0 || !strings.HasSuffix(cell, ")") {
			return nil, nil, fmt.Errorf("%w: malformed column cell %q", errs.ErrInvalidHeader, cell)
		}
		names[i] = cell[:open]
		units[i] = cell[open+2 : len(cell)-1]
	}

	return names, units, nil
}

// footerState accumulates footer tags delivered by the row parser's
// comment callback while data rows are parsed.
type footerState struct {
	ended    bool
	endedAt  time.Time
	diffRows []int
}

func (fs *footerState) onComment(line []byte, _ int64) {
	text := strings.TrimSpace(strings.TrimPrefix(string(bytes.TrimPrefix(line, []byte("#"))), " "))

	switch {
	case strings.HasPrefix(text, format.TagEnded):
		if ts, err := time.Parse(format.TimestampLayout, strings.TrimPrefix(text, format.TagEnded)); err == nil {
			fs.endedAt = ts
		}
		fs.ended = true

	case strings.HasPrefix(text, format.TagDiffRows):
		rest := strings.TrimPrefix(text, format.TagDiffRows)
		for _, fieldStr := range strings.Split(rest, ",") {
			if n, err := strconv.Atoi(strings.TrimSpace(fieldStr)); err == nil {
				fs.diffRows = append(fs.diffRows, n)
			}
		}
	}
}
