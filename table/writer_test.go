package table

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/measurekit/tabular/errs"
	"github.com/measurekit/tabular/format"
	"github.com/measurekit/tabular/snapshot"
)

func testColumns() []Column {
	return []Column{
		Float64Column("x", "V"),
		Int64Column("n", ""),
		Complex128Column("c", ""),
		StrColumn("s", ""),
	}
}

func testRows() map[string]any {
	return map[string]any{
		"x": []float64{1.5, -0.5},
		"n": []int64{3, -3},
		"c": []complex128{complex(2, 1), complex(0, -1)},
		"s": []string{"hello", "wo rld"},
	}
}

// plainWriter opens a writer that keeps the data file uncompressed so
// tests can inspect the raw bytes.
func plainWriter(t *testing.T, dir string, opts ...WriterOption) *Writer {
	t.Helper()
	opts = append([]WriterOption{WithArchiveCompression(format.CompressionNone)}, opts...)
	w, err := NewWriter(dir, testColumns(), opts...)
	require.NoError(t, err)

	return w
}

func readDataFile(t *testing.T, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, format.DataFileName))
	require.NoError(t, err)

	return string(data)
}

func TestNewWriter(t *testing.T) {
	t.Run("HeaderWrittenSynchronously", func(t *testing.T) {
		dir := t.TempDir()
		w := plainWriter(t, dir, WithToolVersion("vna", "2.1"))
		defer w.Close()

		lines := strings.Split(readDataFile(t, dir), "\n")
		require.Equal(t, "# ondisk_format_version = 1.0.0", lines[0])
		require.Equal(t, "# tabular_version = "+format.LibraryVersion, lines[1])
		require.Equal(t, "# vna_version = 2.1", lines[2])
		require.Equal(t, "# x (V)\tn ()\tc ()\ts ()", lines[3])
		require.Equal(t, "# tabular.float64\ttabular.int64\ttabular.complex128\ttabular.str", lines[4])
		require.True(t, strings.HasPrefix(lines[5], "# Measurement started at "), lines[5])
	})

	t.Run("CreatesDirectory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "run", "001")
		w := plainWriter(t, dir)
		defer w.Close()

		require.FileExists(t, filepath.Join(dir, format.DataFileName))
	})

	t.Run("RefusesExistingDataFile", func(t *testing.T) {
		dir := t.TempDir()
		w := plainWriter(t, dir)
		w.Close()

		_, err := NewWriter(dir, testColumns())
		require.ErrorIs(t, err, errs.ErrPathExists)
	})

	t.Run("RefusesArchivedDataFile", func(t *testing.T) {
		dir := t.TempDir()
		w, err := NewWriter(dir, testColumns()) // default archive: gzip
		require.NoError(t, err)
		require.NoError(t, w.Close())
		require.FileExists(t, filepath.Join(dir, format.DataFileName+".gz"))

		_, err = NewWriter(dir, testColumns())
		require.ErrorIs(t, err, errs.ErrPathExists)
	})

	t.Run("SchemaValidation", func(t *testing.T) {
		dir := t.TempDir()

		_, err := NewWriter(dir, nil)
		require.ErrorIs(t, err, errs.ErrNoColumns)

		_, err = NewWriter(dir, []Column{Float64Column("x (V)", "")})
		require.ErrorIs(t, err, errs.ErrInvalidColumnName)

		_, err = NewWriter(dir, []Column{Float64Column("x", "V\t")})
		require.ErrorIs(t, err, errs.ErrInvalidColumnUnit)

		_, err = NewWriter(dir, []Column{Float64Column("x", ""), Int64Column("x", "")})
		require.ErrorIs(t, err, errs.ErrDuplicateColumnName)
	})
}

func TestWriterAddRows(t *testing.T) {
	ctx := context.Background()

	t.Run("ExactEncoding", func(t *testing.T) {
		dir := t.TempDir()
		w := plainWriter(t, dir)
		require.NoError(t, w.AddRows(ctx, testRows()))
		require.Equal(t, 2, w.NumRows())

		content := readDataFile(t, dir)
		require.True(t, strings.HasSuffix(content,
			"1.500000000000000e+00\t3\t2+1j\thello\n"+
				"-5.000000000000000e-01\t-3\t-1j\two rld\n"), content)

		require.NoError(t, w.Close())
	})

	t.Run("CellsAreSanitized", func(t *testing.T) {
		dir := t.TempDir()
		w := plainWriter(t, dir)
		require.NoError(t, w.AddRows(ctx, map[string]any{
			"x": []float64{1},
			"n": []int64{1},
			"c": []complex128{1},
			"s": []string{"a\tb#c\nd"},
		}))
		require.NoError(t, w.Close())

		require.Contains(t, readDataFile(t, dir), "\ta b c d\n")
	})

	t.Run("WideningCoercions", func(t *testing.T) {
		dir := t.TempDir()
		w := plainWriter(t, dir)
		require.NoError(t, w.AddRows(ctx, map[string]any{
			"x": []int{2},
			"n": []int{7},
			"c": []float64{3},
			"s": []string{"ok"},
		}))
		require.NoError(t, w.Close())

		require.Contains(t, readDataFile(t, dir), "2.000000000000000e+00\t7\t3\tok\n")
	})

	t.Run("ValidationErrors", func(t *testing.T) {
		dir := t.TempDir()
		w := plainWriter(t, dir)
		defer w.Close()

		rows := testRows()
		rows["bogus"] = []float64{1}
		require.ErrorIs(t, w.AddRows(ctx, rows), errs.ErrUnknownColumn)

		rows = testRows()
		delete(rows, "n")
		require.ErrorIs(t, w.AddRows(ctx, rows), errs.ErrMissingColumn)

		rows = testRows()
		rows["n"] = []int64{3}
		require.ErrorIs(t, w.AddRows(ctx, rows), errs.ErrLengthMismatch)

		rows = testRows()
		rows["n"] = []string{"3", "-3"}
		require.ErrorIs(t, w.AddRows(ctx, rows), errs.ErrDTypeMismatch)

		// Nothing was written by the failed batches.
		require.Equal(t, 0, w.NumRows())
	})

	t.Run("EmptyBatchIsNoOp", func(t *testing.T) {
		dir := t.TempDir()
		w := plainWriter(t, dir)
		defer w.Close()

		require.NoError(t, w.AddRows(ctx, map[string]any{
			"x": []float64{}, "n": []int64{}, "c": []complex128{}, "s": []string{},
		}))
		require.Equal(t, 0, w.NumRows())
	})

	t.Run("CancelledContext", func(t *testing.T) {
		dir := t.TempDir()
		w := plainWriter(t, dir)
		defer w.Close()

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		require.ErrorIs(t, w.AddRows(cancelled, testRows()), context.Canceled)
		require.Equal(t, 0, w.NumRows())
	})

	t.Run("ClosedWriter", func(t *testing.T) {
		dir := t.TempDir()
		w := plainWriter(t, dir)
		require.NoError(t, w.Close())

		require.ErrorIs(t, w.AddRows(ctx, testRows()), errs.ErrWriterClosed)
	})
}

func TestWriterClose(t *testing.T) {
	ctx := context.Background()

	t.Run("FooterWritten", func(t *testing.T) {
		dir := t.TempDir()
		w := plainWriter(t, dir)
		require.NoError(t, w.AddRows(ctx, testRows()))
		require.NoError(t, w.Close())

		content := readDataFile(t, dir)
		require.Contains(t, content, "# Measurement ended at ")
		require.Contains(t, content, "# Snapshot diffs preceding rows (0-based index):\n")
	})

	t.Run("Idempotent", func(t *testing.T) {
		dir := t.TempDir()
		w := plainWriter(t, dir)
		require.NoError(t, w.Close())
		require.NoError(t, w.Close())

		content := readDataFile(t, dir)
		require.Equal(t, 1, strings.Count(content, "# Measurement ended at "))
	})

	t.Run("ArchivesDirectory", func(t *testing.T) {
		dir := t.TempDir()
		meta := map[string]any{"power": 10.0}
		w, err := NewWriter(dir, testColumns(),
			WithSnapshotProvider(func() (any, error) { return meta, nil }))
		require.NoError(t, err)

		require.NoError(t, w.AddRows(ctx, testRows()))
		meta["power"] = -30.0
		require.NoError(t, w.AddRows(ctx, testRows()))
		require.NoError(t, w.Close())

		require.NoFileExists(t, filepath.Join(dir, format.DataFileName))
		require.FileExists(t, filepath.Join(dir, format.DataFileName+".gz"))
		require.NoFileExists(t, filepath.Join(dir, format.SnapshotFileName))
		require.FileExists(t, filepath.Join(dir, format.SnapshotFileName+".gz"))
		require.NoFileExists(t, filepath.Join(dir, snapshot.DiffFileName(2, 0)))
		require.FileExists(t, filepath.Join(dir, format.DiffBundleName))
	})

	t.Run("DiffRowsInFooter", func(t *testing.T) {
		dir := t.TempDir()
		meta := map[string]any{"power": 10.0}
		w := plainWriter(t, dir,
			WithSnapshotProvider(func() (any, error) { return meta, nil }))

		require.NoError(t, w.AddRows(ctx, testRows())) // rows 0, 1
		meta["power"] = -30.0
		require.NoError(t, w.AddRows(ctx, testRows())) // rows 2, 3: diff tagged 2
		require.NoError(t, w.Close())

		content := readDataFile(t, dir)
		require.Contains(t, content, "# Snapshot diffs preceding rows (0-based index): 2\n")
		require.FileExists(t, filepath.Join(dir, snapshot.DiffFileName(2, 0)))
	})
}
