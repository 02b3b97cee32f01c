// Package snapshot tracks instrument metadata alongside the tabular data
// stream.
//
// A Provider supplies a full JSON-compatible metadata snapshot on demand.
// The Tracker persists the initial snapshot in full (snapshot.json) and,
// after each batch of appended rows, records a structural diff against the
// last-adopted snapshot as an RFC 6902 JSON Patch file named
//
//	snapshot.row-<n>.diff<m>.json
//
// where <n> is the row count preceding the capture and <m> a 0-based
// counter for diffs recorded at the same row count. Metadata capture is
// best-effort: provider or persistence failures are logged and skipped,
// never escalated, since losing one diff is far cheaper than aborting a
// running measurement.
//
// The Timeline is the read-side counterpart: it loads the initial snapshot
// plus all diffs (loose files or the snapshot_diffs.tar.gz bundle) and
// replays them in (row, sequence) order to answer "what metadata was in
// effect at row r".
package snapshot
