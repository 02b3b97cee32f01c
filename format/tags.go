package format

// Header and footer comment-line tags. Every comment line carrying one of
// these tags starts with "# " followed by the tag text.
const (
	// TagFormatVersion introduces the on-disk format version line:
	//   # ondisk_format_version = <major>.<minor>.<patch>
	TagFormatVersion = "ondisk_format_version"

	// ToolVersionSuffix marks per-dependency version lines:
	//   # <toolname>_version = <free-form string>
	ToolVersionSuffix = "_version"

	// TagStarted introduces the start timestamp line closing the header:
	//   # Measurement started at <YYYY-MM-DD HH:MM:SS.ffffff>
	TagStarted = "Measurement started at "

	// TagEnded introduces the end timestamp line opening the footer.
	TagEnded = "Measurement ended at "

	// TagDiffRows introduces the footer line listing the row counts that
	// precede each recorded snapshot diff.
	TagDiffRows = "Snapshot diffs preceding rows (0-based index):"
)

// TimestampLayout is the layout of header/footer timestamps.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// Well-known file names inside a measurement directory. Archived variants
// carry the compression extension on top (e.g. "tabular_data.dat.gz").
const (
	DataFileName     = "tabular_data.dat"
	SnapshotFileName = "snapshot.json"
	DiffBundleName   = "snapshot_diffs.tar.gz"
)
