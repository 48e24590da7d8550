// Package version implements the MAJOR.MINOR.PATCH version model used by
// schema deprecation metadata.
//
// Version format: [v]MAJOR.MINOR.PATCH
//   - exactly three dot-separated non-negative integers
//   - one optional leading "v"
//   - no pre-release or build suffix
//
// Parsing never fails loudly: a malformed string yields ok == false and the
// caller decides what that means.
package version

import (
	"cmp"
	"fmt"
	"math"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// MajorBumpDistance is returned by MinorDistance when the removal version is
// in a later major line. Any major bump satisfies the overlap policy.
const MajorBumpDistance = 10

// SemVer is a parsed MAJOR.MINOR.PATCH version.
type SemVer struct {
	Major int
	Minor int
	Patch int
}

// Parse parses s into a SemVer. It returns ok == false for the empty string,
// a wrong segment count, non-numeric segments, components that do not fit an
// int, or any pre-release/build suffix. Leading zeros are accepted: "1.02.0"
// is 1.2.0.
func Parse(s string) (SemVer, bool) {
	clean := strings.TrimPrefix(strings.TrimSpace(s), "v")
	if clean == "" || strings.HasPrefix(clean, "v") || strings.Count(clean, ".") != 2 {
		return SemVer{}, false
	}

	v, err := semver.NewVersion(clean)
	if err != nil {
		return SemVer{}, false
	}
	if v.Prerelease() != "" || v.Metadata() != "" {
		return SemVer{}, false
	}
	if v.Major() > math.MaxInt || v.Minor() > math.MaxInt || v.Patch() > math.MaxInt {
		return SemVer{}, false
	}

	return SemVer{
		Major: int(v.Major()),
		Minor: int(v.Minor()),
		Patch: int(v.Patch()),
	}, true
}

// MustParse is like Parse but panics on malformed input. Use only for constants/tests.
func MustParse(s string) SemVer {
	v, ok := Parse(s)
	if !ok {
		panic(fmt.Sprintf("version: invalid version %q", s))
	}
	return v
}

// String renders the version without the "v" prefix.
func (v SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Tag renders the version with the "v" prefix used by release tags.
func (v SemVer) Tag() string {
	return "v" + v.String()
}

// Compare orders versions by (major, minor, patch).
// Returns -1 if a < b, 0 if equal, 1 if a > b.
func Compare(a, b SemVer) int {
	if c := cmp.Compare(a.Major, b.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Minor, b.Minor); c != 0 {
		return c
	}
	return cmp.Compare(a.Patch, b.Patch)
}

// Less reports whether v sorts before other.
func (v SemVer) Less(other SemVer) bool {
	return Compare(v, other) < 0
}

// MinorDistance returns the number of minor releases between a deprecation
// version and its planned removal version.
//
//   - either side malformed: ok == false
//   - removal in a later major: MajorBumpDistance
//   - removal in an earlier major: ok == false (the timeline cannot be verified)
//   - same major: rem.Minor - dep.Minor, which may be negative
func MinorDistance(depVersion, remVersion string) (int, bool) {
	dep, ok := Parse(depVersion)
	if !ok {
		return 0, false
	}
	rem, ok := Parse(remVersion)
	if !ok {
		return 0, false
	}

	if dep.Major != rem.Major {
		if rem.Major > dep.Major {
			return MajorBumpDistance, true
		}
		return 0, false
	}
	return rem.Minor - dep.Minor, true
}

// SuggestRemoval returns the removal tag to propose for a deprecation made in
// depVersion: vMAJOR.(MINOR+requiredOverlap+1).0.
func SuggestRemoval(depVersion string, requiredOverlap int) (string, bool) {
	dep, ok := Parse(depVersion)
	if !ok {
		return "", false
	}
	return SemVer{Major: dep.Major, Minor: dep.Minor + requiredOverlap + 1}.Tag(), true
}

// SameRelease reports whether a release tag (with or without "v") names the
// same version string as a package manifest version. The comparison is
// textual after stripping one leading "v", matching how release tags are cut.
func SameRelease(tag, manifestVersion string) bool {
	return strings.TrimPrefix(tag, "v") == manifestVersion
}
