package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/wI2L/jsondiff"

	"github.com/measurekit/tabular/format"
)

// Provider returns a full metadata snapshot: an arbitrarily nested,
// JSON-compatible structure (maps, slices, numbers, strings, booleans,
// nil). A fresh value is expected on every call; the tracker keeps its own
// canonical copy for diffing.
type Provider func() (any, error)

// Tracker owns the snapshot/diff bookkeeping of one measurement directory.
// It is driven by the table writer: once at stream start and once after
// every durable append. Not safe for concurrent use.
type Tracker struct {
	dir      string
	provider Provider
	logger   *slog.Logger

	baseline []byte // canonical JSON of the last-adopted snapshot
	sum      uint64 // xxhash64 of baseline, cheap inequality pre-check

	diffRows []int
	lastRow  int
	lastSeq  int
}

// NewTracker captures the initial snapshot and persists it in full as
// snapshot.json. Capture or persistence failures are logged, not returned:
// the tracker stays usable and the measurement proceeds without metadata.
func NewTracker(dir string, provider Provider, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}

	t := &Tracker{
		dir:      dir,
		provider: provider,
		logger:   logger,
		baseline: []byte("null"),
		lastRow:  -1,
	}
	t.sum = xxhash.Sum64(t.baseline)

	snap, err := t.capture()
	if err != nil {
		t.logger.Error("initial snapshot capture failed", "dir", dir, "err", err)
		return t
	}

	if err := writeFileAtomic(filepath.Join(dir, format.SnapshotFileName), prettyJSON(snap)); err != nil {
		t.logger.Error("initial snapshot persist failed", "dir", dir, "err", err)
		return t
	}

	t.adopt(snap)

	return t
}

// OnRowsAdded recomputes the snapshot and, when it structurally differs
// from the baseline, persists the diff tagged with rowCount (the number of
// rows preceding the capture) and adopts the new snapshot. No-ops and
// failures leave the baseline unchanged.
func (t *Tracker) OnRowsAdded(rowCount int) {
	snap, err := t.capture()
	if err != nil {
		t.logger.Warn("snapshot capture failed, diff skipped", "row", rowCount, "err", err)
		return
	}

	// Fingerprint first: most appends change nothing, and hashing is far
	// cheaper than a structural diff.
	if xxhash.Sum64(snap) == t.sum && bytes.Equal(snap, t.baseline) {
		return
	}

	patch, err := jsondiff.CompareJSON(t.baseline, snap)
	if err != nil {
		t.logger.Warn("snapshot diff failed, skipped", "row", rowCount, "err", err)
		return
	}
	if len(patch) == 0 {
		return
	}

	data, err := json.Marshal(patch)
	if err != nil {
		t.logger.Warn("snapshot diff encode failed, skipped", "row", rowCount, "err", err)
		return
	}

	seq := 0
	if rowCount == t.lastRow {
		seq = t.lastSeq + 1
	}

	name := DiffFileName(rowCount, seq)
	if err := writeFileAtomic(filepath.Join(t.dir, name), data); err != nil {
		t.logger.Warn("snapshot diff persist failed, skipped", "row", rowCount, "err", err)
		return
	}

	t.adopt(snap)
	t.diffRows = append(t.diffRows, rowCount)
	t.lastRow = rowCount
	t.lastSeq = seq
}

// DiffRows returns the preceding-row counts of all diffs recorded so far,
// in recording order. The writer puts these in the footer.
func (t *Tracker) DiffRows() []int {
	out := make([]int, len(t.diffRows))
	copy(out, t.diffRows)

	return out
}

// capture asks the provider for a snapshot and canonicalizes it through
// one JSON marshal (stable key order, normalized numbers).
func (t *Tracker) capture() ([]byte, error) {
	if t.provider == nil {
		return nil, fmt.Errorf("no snapshot provider configured")
	}

	snap, err := t.provider()
	if err != nil {
		return nil, fmt.Errorf("snapshot provider: %w", err)
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("snapshot not JSON-compatible: %w", err)
	}

	return data, nil
}

func (t *Tracker) adopt(canonical []byte) {
	t.baseline = canonical
	t.sum = xxhash.Sum64(canonical)
}

// DiffFileName returns the on-disk name of the diff recorded after row
// rowCount with the given same-row sequence number.
func DiffFileName(rowCount, seq int) string {
	return fmt.Sprintf("snapshot.row-%d.diff%d.json", rowCount, seq)
}

// prettyJSON re-indents canonical JSON for the human-readable snapshot
// file; falls back to the input on failure.
func prettyJSON(canonical []byte) []byte {
	var buf bytes.Buffer
	if err := json.Indent(&buf, canonical, "", "  "); err != nil {
		return canonical
	}
	buf.WriteByte('\n')

	return buf.Bytes()
}

// writeFileAtomic writes data to a temp file in the same directory and
// renames it into place, so a concurrent reader never observes a partial
// file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return nil
}
