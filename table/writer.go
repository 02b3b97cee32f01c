package table

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/measurekit/tabular/codec"
	"github.com/measurekit/tabular/compress"
	"github.com/measurekit/tabular/errs"
	"github.com/measurekit/tabular/format"
	"github.com/measurekit/tabular/internal/options"
	"github.com/measurekit/tabular/internal/pool"
	"github.com/measurekit/tabular/snapshot"
)

// Writer streams typed rows into one append-only tabular data file.
//
// Every AddRows call is flushed to stable storage before it returns, so a
// reader opening the directory concurrently always sees a consistent,
// parseable prefix. Close writes the footer and archives the directory.
//
// A Writer is bound to a single measurement; it is not safe for concurrent
// use and not reusable after Close.
type Writer struct {
	dir      string
	path     string
	cols     []Column
	colIndex map[string]int

	f        *os.File
	rowCount int
	closed   bool

	provider snapshot.Provider
	tracker  *snapshot.Tracker
	archive  compress.Codec
	tools    []ToolVersion
	logger   *slog.Logger
	now      func() time.Time
}

// WriterOption configures a Writer.
type WriterOption = options.Option[*Writer]

// WithSnapshotProvider installs the metadata snapshot provider. The
// initial snapshot is captured when the writer opens; a diff is recorded
// after every AddRows batch that changes it.
func WithSnapshotProvider(p snapshot.Provider) WriterOption {
	return options.NoError(func(w *Writer) { w.provider = p })
}

// WithToolVersion records an extra "<tool>_version" header line. May be
// repeated; lines appear in the order given.
func WithToolVersion(tool, version string) WriterOption {
	return options.NoError(func(w *Writer) {
		w.tools = append(w.tools, ToolVersion{Tool: tool, Version: version})
	})
}

// WithArchiveCompression selects the codec applied to the data file and
// snapshot when the writer closes. Defaults to gzip; CompressionNone
// leaves the finished measurement uncompressed.
func WithArchiveCompression(t format.CompressionType) WriterOption {
	return options.New(func(w *Writer) error {
		c, err := compress.ForType(t)
		if err != nil {
			return err
		}
		w.archive = c

		return nil
	})
}

// WithLogger sets the logger used for best-effort failures (snapshot
// capture, diff persistence). Defaults to slog.Default().
func WithLogger(l *slog.Logger) WriterOption {
	return options.NoError(func(w *Writer) { w.logger = l })
}

// NewWriter creates the measurement directory if needed, opens the data
// file and writes the header synchronously. It fails with
// errs.ErrPathExists if a data file, plain or archived, already exists:
// existing data is never overwritten.
func NewWriter(dir string, cols []Column, opts ...WriterOption) (*Writer, error) {
	if err := validateColumns(cols); err != nil {
		return nil, err
	}

	w := &Writer{
		dir:     dir,
		cols:    cols,
		archive: compress.GzipCodec{},
		logger:  slog.Default(),
		now:     time.Now,
	}
	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	w.colIndex = make(map[string]int, len(cols))
	for i, c := range cols {
		w.colIndex[c.Name] = i
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	w.path = filepath.Join(dir, format.DataFileName)
	if _, _, err := compress.Locate(w.path); err == nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrPathExists, w.path)
	}

	f, err := os.OpenFile(w.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w: %s", errs.ErrPathExists, w.path)
		}

		return nil, err
	}
	w.f = f

	bb := pool.GetByteBuffer()
	defer pool.PutByteBuffer(bb)
	writeHeader(bb, w.cols, w.tools, w.now())
	if err := w.flush(bb.Bytes()); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header: %w", err)
	}

	if w.provider != nil {
		w.tracker = snapshot.NewTracker(dir, w.provider, w.logger)
	}

	return w, nil
}

// Columns returns the writer's column schema.
func (w *Writer) Columns() []Column {
	out := make([]Column, len(w.cols))
	copy(out, w.cols)

	return out
}

// NumRows returns the number of rows written so far.
func (w *Writer) NumRows() int { return w.rowCount }

// Dir returns the measurement directory.
func (w *Writer) Dir() string { return w.dir }

// AddRows appends one batch of rows. values must contain exactly the
// declared columns, each mapped to a slice of equal length; slice element
// types must be coercible to the column dtype (widening only).
//
// The rows are durable on disk when AddRows returns. The snapshot tracker
// runs once afterwards; its failures are logged, never returned. Metadata
// capture is best-effort relative to data durability.
//
// ctx is the cooperative cancellation token of the measurement loop; it is
// checked before anything is written, never mid-write.
func (w *Writer) AddRows(ctx context.Context, values map[string]any) error {
	if w.closed {
		return errs.ErrWriterClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	for name := range values {
		if _, ok := w.colIndex[name]; !ok {
			return fmt.Errorf("%w: %q", errs.ErrUnknownColumn, name)
		}
	}

	n := -1
	accessors := make([]func(int) any, len(w.cols))
	for i, c := range w.cols {
		v, ok := values[c.Name]
		if !ok {
			return fmt.Errorf("%w: %q", errs.ErrMissingColumn, c.Name)
		}
		length, at, err := accessorFor(c, v)
		if err != nil {
			return err
		}
		if n < 0 {
			n = length
		} else if length != n {
			return fmt.Errorf("%w: column %q has %d values, expected %d",
				errs.ErrLengthMismatch, c.Name, length, n)
		}
		accessors[i] = at
	}
	if n == 0 {
		return nil
	}

	bb := pool.GetByteBuffer()
	defer pool.PutByteBuffer(bb)

	last := len(w.cols) - 1
	for r := 0; r < n; r++ {
		for i, c := range w.cols {
			bb.WriteString(codec.Sanitize(c.formatter()(accessors[i](r))))
			if i < last {
				bb.WriteByte('\t')
			}
		}
		bb.WriteByte('\n')
	}

	if err := w.flush(bb.Bytes()); err != nil {
		return err
	}
	preceding := w.rowCount
	w.rowCount += n

	// The tracker runs once per append, after the rows are durable. A diff
	// is tagged with the row count preceding this batch: a settings change
	// between batches applies from the first row measured under it.
	if w.tracker != nil {
		w.tracker.OnRowsAdded(preceding)
	}

	return nil
}

// flush writes data and syncs it to stable storage.
func (w *Writer) flush(data []byte) error {
	if _, err := w.f.Write(data); err != nil {
		return err
	}

	return w.f.Sync()
}

// Close writes the footer, closes the data file, and archives the
// directory with the configured codec. Calling Close again is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var diffRows []int
	if w.tracker != nil {
		diffRows = w.tracker.DiffRows()
	}

	bb := pool.GetByteBuffer()
	defer pool.PutByteBuffer(bb)
	writeFooter(bb, w.now(), diffRows)

	err := w.flush(bb.Bytes())
	if cerr := w.f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write footer: %w", err)
	}

	if w.archive.Extension() != "" {
		if _, err := compress.CompressFile(w.path, w.archive); err != nil {
			return fmt.Errorf("archive data file: %w", err)
		}
		if err := snapshot.ArchiveDir(w.dir, w.archive); err != nil {
			return err
		}
	}

	return nil
}
