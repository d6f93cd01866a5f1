package protocol

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a protocol version triple negotiated during the handshake.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ClientVersion is the protocol version this client speaks.
var ClientVersion = Version{Major: 1, Minor: 0, Patch: 0}

// String returns the dotted form, e.g. "1.0.2"
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// ParseVersion parses a dotted version triple.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version %q: want major.minor.patch", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version %q: bad component %q", s, p)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Compatible reports whether two versions can interoperate. Patch releases
// never break the wire format; major or minor drift does.
func (v Version) Compatible(other Version) bool {
	return v.Major == other.Major && v.Minor == other.Minor
}

// Less orders versions by major, minor, patch.
func (v Version) Less(other Version) bool {
	if v.Major != other.Major {
		return v.Major < other.Major
	}
	if v.Minor != other.Minor {
		return v.Minor < other.Minor
	}
	return v.Patch < other.Patch
}
