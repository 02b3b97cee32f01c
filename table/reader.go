package table

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/measurekit/tabular/compress"
	"github.com/measurekit/tabular/errs"
	"github.com/measurekit/tabular/format"
	"github.com/measurekit/tabular/internal/options"
	"github.com/measurekit/tabular/parser"
	"github.com/measurekit/tabular/snapshot"
)

const (
	defaultBatchSize = 1024
	readChunkSize    = 64 << 10
)

// Reader opens one measurement directory for reconstruction. Opening
// parses the header only; ReadAll streams the data rows. The reader never
// mutates on-disk state and may run while a writer in another process is
// still appending.
type Reader struct {
	dir       string
	path      string
	header    *headerInfo
	batchSize int
}

// ReaderOption configures a Reader.
type ReaderOption = options.Option[*Reader]

// WithBatchSize bounds how many rows one parse batch holds during ReadAll,
// which bounds peak memory per parse call. Defaults to 1024.
func WithBatchSize(n int) ReaderOption {
	return options.New(func(r *Reader) error {
		if n <= 0 {
			return fmt.Errorf("batch size must be positive, got %d", n)
		}
		r.batchSize = n

		return nil
	})
}

// Open locates the tabular data file (plain or compressed) in dir and
// parses its header. It fails with errs.ErrUnsupportedFormatVersion when
// the file's major format version is newer than this implementation.
func Open(dir string, opts ...ReaderOption) (*Reader, error) {
	r := &Reader{dir: dir, batchSize: defaultBatchSize}
	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	path, _, err := compress.Locate(filepath.Join(dir, format.DataFileName))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrNoDataFile, dir)
	}
	r.path = path

	hdr, err := r.parseHeaderFromFile()
	if err != nil {
		return nil, err
	}
	r.header = hdr

	if hdr.version.Major > format.OndiskVersion.Major {
		return nil, fmt.Errorf("%w: file has %s, this reader understands up to major %d",
			errs.ErrUnsupportedFormatVersion, hdr.version, format.OndiskVersion.Major)
	}

	return r, nil
}

func (r *Reader) parseHeaderFromFile() (*headerInfo, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rc, err := compress.ForPath(r.path).WrapReader(f)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	hdr, _, err := parseHeader(bufio.NewReaderSize(rc, readChunkSize))

	return hdr, err
}

// Columns returns the column schema declared by the header.
func (r *Reader) Columns() []Column {
	out := make([]Column, len(r.header.columns))
	copy(out, r.header.columns)

	return out
}

// FormatVersion returns the file's on-disk format version.
func (r *Reader) FormatVersion() format.Version { return r.header.version }

// ToolVersions returns the producer version lines, in header order.
func (r *Reader) ToolVersions() []ToolVersion {
	out := make([]ToolVersion, len(r.header.tools))
	copy(out, r.header.tools)

	return out
}

// StartedAt returns the measurement start timestamp.
func (r *Reader) StartedAt() time.Time { return r.header.startedAt }

// ReadAll parses every data row and replays the snapshot timeline,
// producing the reconstructed table.
//
// A trailing partial line is tolerated, treated as "not yet written",
// while the measurement is still running (no footer and the file is not
// archived). On a closed stream the same condition is a hard
// errs.ErrTruncatedFile, since a finished measurement must never end
// mid-row.
func (r *Reader) ReadAll() (*Table, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rc, err := compress.ForPath(r.path).WrapReader(f)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	br := bufio.NewReaderSize(rc, readChunkSize)
	_, headerBytes, err := parseHeader(br)
	if err != nil {
		return nil, err
	}

	dts := columnDTypes(r.header.columns)
	fs := &footerState{}
	p := parser.New(dts,
		parser.WithCommentFunc(fs.onComment),
		parser.WithOffset(headerBytes),
	)
	batch := parser.NewBatch(dts, r.batchSize)

	data := make([]parser.ColumnData, len(dts))
	for i, dt := range dts {
		data[i] = parser.ColumnData{DType: dt}
	}

	buf := make([]byte, 0, 2*readChunkSize)
	chunk := make([]byte, readChunkSize)
	eof := false
	for !eof {
		n, rerr := br.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if rerr == io.EOF {
			eof = true
		} else if rerr != nil {
			return nil, rerr
		}

		for {
			batch.Reset()
			rows, consumed, perr := p.Parse(buf, batch)
			if perr != nil {
				return nil, perr
			}
			for i := range data {
				data[i].Append(batch.Col(i))
			}
			buf = buf[:copy(buf, buf[consumed:])]
			if rows == 0 {
				break
			}
		}
	}

	archived := compress.ForPath(r.path).Extension() != ""
	if len(buf) > 0 {
		// The stream ends inside a row or comment.
		if fs.ended || archived {
			return nil, fmt.Errorf("%w: %d dangling bytes at offset %d",
				errs.ErrTruncatedFile, len(buf), p.Offset())
		}
		// Measurement still running; the partial line is not yet available.
	}

	tl, err := snapshot.LoadTimeline(r.dir)
	if err != nil {
		return nil, err
	}

	return newTable(r.header, data, fs, tl), nil
}
