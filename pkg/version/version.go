// Package version provides format version parsing and compatibility checks
// for sequence files and the HTTP API.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Current is the file and API format version written by this library.
const Current = "1.0"

// FormatVersion is a parsed "major.minor" format version.
type FormatVersion struct {
	Major uint16
	Minor uint16
}

// Parse parses a "major.minor" version string.
func Parse(s string) (FormatVersion, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 2 {
		return FormatVersion{}, fmt.Errorf("invalid version %q: expected major.minor", s)
	}

	major, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return FormatVersion{}, fmt.Errorf("invalid version %q: bad major component", s)
	}

	minor, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil {
		return FormatVersion{}, fmt.Errorf("invalid version %q: bad minor component", s)
	}

	return FormatVersion{Major: uint16(major), Minor: uint16(minor)}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) FormatVersion {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version as "major.minor".
func (v FormatVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible reports whether other has the same major version.
func (v FormatVersion) Compatible(other FormatVersion) bool {
	return v.Major == other.Major
}

// Check validates a version field read from a file or request. An empty
// field means Current.
func Check(s string) error {
	if s == "" {
		return nil
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	if cur := MustParse(Current); !cur.Compatible(v) {
		return fmt.Errorf("unsupported version %s (this build reads %d.x)", v, cur.Major)
	}
	return nil
}

// APIPath returns the HTTP API prefix for a major version: "/api/vN".
func APIPath(major uint16) string {
	return fmt.Sprintf("/api/v%d", major)
}

// CurrentAPIPath returns APIPath for Current.
func CurrentAPIPath() string {
	return APIPath(MustParse(Current).Major)
}
