package format

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a semantic version. The on-disk format version is independent
// of the library release version: the major component governs which
// header/footer fields are present, minor/patch additions are always
// backward compatible.
type Version struct {
	Major int
	Minor int
	Patch int
}

// OndiskVersion is the on-disk format version this implementation writes.
// Readers refuse files whose major version is newer than this.
var OndiskVersion = Version{Major: 1, Minor: 0, Patch: 0}

// LibraryVersion is the library release version, written to the header as
// the "tabular_version" tool version line.
const LibraryVersion = "1.0.0"

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// ParseVersion parses a "<major>.<minor>.<patch>" string. Minor and patch
// may be omitted and default to zero.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) == 0 || len(parts) > 3 {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}

	var v Version
	dst := []*int{&v.Major, &v.Minor, &v.Patch}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version %q", s)
		}
		*dst[i] = n
	}

	return v, nil
}
