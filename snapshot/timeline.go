package snapshot

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/measurekit/tabular/compress"
	"github.com/measurekit/tabular/format"
)

// Diff is one recorded snapshot delta: an RFC 6902 JSON Patch that applies
// after Row rows have been written, ordered among same-row diffs by Seq.
type Diff struct {
	Row   int
	Seq   int
	Patch json.RawMessage
}

// Timeline replays the initial snapshot and its diffs to answer per-row
// metadata lookups. Evaluation is lazy: patches are applied on demand, and
// a cursor caches the last replayed state so the common sequential access
// pattern (row 0, 1, 2, ...) applies each patch once.
//
// A Timeline is read-only with respect to disk; it never mutates the
// measurement directory.
type Timeline struct {
	initial []byte
	diffs   []Diff

	applied   int    // number of diffs folded into state
	state     []byte // snapshot JSON after `applied` diffs
	decoded   any    // state decoded, valid when decodedOK
	decodedOK bool
}

// NewTimeline builds a timeline from an initial snapshot (canonical JSON;
// nil means no snapshot was recorded) and its diffs, in any order.
func NewTimeline(initial []byte, diffs []Diff) *Timeline {
	if len(initial) == 0 {
		initial = []byte("null")
	}
	sorted := make([]Diff, len(diffs))
	copy(sorted, diffs)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Row != sorted[j].Row {
			return sorted[i].Row < sorted[j].Row
		}

		return sorted[i].Seq < sorted[j].Seq
	})

	return &Timeline{
		initial: initial,
		diffs:   sorted,
		state:   initial,
	}
}

// DiffRows returns the preceding-row counts of all diffs, in replay order.
func (tl *Timeline) DiffRows() []int {
	rows := make([]int, len(tl.diffs))
	for i, d := range tl.diffs {
		rows[i] = d.Row
	}

	return rows
}

// Initial returns the decoded initial snapshot.
func (tl *Timeline) Initial() (any, error) {
	var v any
	if err := json.Unmarshal(tl.initial, &v); err != nil {
		return nil, fmt.Errorf("decode initial snapshot: %w", err)
	}

	return v, nil
}

// At returns the metadata in effect for row r: the initial snapshot with
// every diff whose preceding row count is <= r applied in order.
func (tl *Timeline) At(row int) (any, error) {
	// Number of diffs that apply at or before this row.
	want := sort.Search(len(tl.diffs), func(i int) bool { return tl.diffs[i].Row > row })

	if want < tl.applied {
		// Rewind: recompute from the initial snapshot.
		tl.state = tl.initial
		tl.applied = 0
		tl.decodedOK = false
	}

	for tl.applied < want {
		d := tl.diffs[tl.applied]
		patch, err := jsonpatch.DecodePatch(d.Patch)
		if err != nil {
			return nil, fmt.Errorf("decode diff row-%d.diff%d: %w", d.Row, d.Seq, err)
		}
		next, err := patch.Apply(tl.state)
		if err != nil {
			return nil, fmt.Errorf("apply diff row-%d.diff%d: %w", d.Row, d.Seq, err)
		}
		tl.state = next
		tl.applied++
		tl.decodedOK = false
	}

	if !tl.decodedOK {
		if err := json.Unmarshal(tl.state, &tl.decoded); err != nil {
			return nil, fmt.Errorf("decode snapshot state: %w", err)
		}
		tl.decodedOK = true
	}

	return tl.decoded, nil
}

var diffNameRe = regexp.MustCompile(`^snapshot\.row-(\d+)\.diff(\d+)\.json$`)

// LoadTimeline reads snapshot.json (plain or compressed) plus every diff,
// whether a loose file or an entry in the snapshot_diffs.tar.gz bundle,
// from a measurement directory. A missing snapshot is not an error: measurements recorded
// without a provider simply have a null timeline.
func LoadTimeline(dir string) (*Timeline, error) {
	var initial []byte
	path, _, err := compress.Locate(filepath.Join(dir, format.SnapshotFileName))
	if err == nil {
		initial, err = compress.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read snapshot: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	diffs, err := loadDiffs(dir)
	if err != nil {
		return nil, err
	}

	return NewTimeline(initial, diffs), nil
}

func loadDiffs(dir string) ([]Diff, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var diffs []Diff
	seen := make(map[[2]int]bool)

	add := func(name string, read func() ([]byte, error)) error {
		m := diffNameRe.FindStringSubmatch(name)
		if m == nil {
			return nil
		}
		row, _ := strconv.Atoi(m[1])
		seq, _ := strconv.Atoi(m[2])
		if seen[[2]int{row, seq}] {
			return nil
		}

		data, err := read()
		if err != nil {
			return fmt.Errorf("read diff %s: %w", name, err)
		}
		diffs = append(diffs, Diff{Row: row, Seq: seq, Patch: data})
		seen[[2]int{row, seq}] = true

		return nil
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if err := add(name, func() ([]byte, error) {
			return os.ReadFile(filepath.Join(dir, name))
		}); err != nil {
			return nil, err
		}
	}

	bundle := filepath.Join(dir, format.DiffBundleName)
	if _, err := os.Stat(bundle); err == nil {
		if err := readDiffBundle(bundle, add); err != nil {
			return nil, err
		}
	}

	return diffs, nil
}

// readDiffBundle streams the tar.gz diff bundle, feeding each matching
// entry to add.
func readDiffBundle(path string, add func(name string, read func() ([]byte, error)) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zr, err := (compress.GzipCodec{}).WrapReader(f)
	if err != nil {
		return fmt.Errorf("open diff bundle: %w", err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read diff bundle: %w", err)
		}

		name := filepath.Base(hdr.Name)
		if err := add(name, func() ([]byte, error) {
			var buf bytes.Buffer
			if _, err := io.Copy(&buf, tr); err != nil {
				return nil, err
			}

			return buf.Bytes(), nil
		}); err != nil {
			return err
		}
	}
}
