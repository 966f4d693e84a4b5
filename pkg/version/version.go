package version

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CUDA toolkit versions are dotted numerics with two or three components
// (11.8, 12.4.1). Releases up to major 10 were published as Major.Minor
// only, while 11+ releases carry a full patch component.
var versionRe = regexp.MustCompile(`^(\d+)\.(\d+)(?:\.(\d+))?$`)

// Floor is the oldest toolkit release this tool supports. Older releases
// predate the installer layouts it knows how to drive.
const Floor = "8.0"

// Version is a parsed toolkit version. A missing patch component compares
// equal to zero, so 10.2 and 10.2.0 are the same release.
type Version struct {
	Major int
	Minor int
	Patch int

	hasPatch bool
}

// Parse parses Major.Minor or Major.Minor.Patch.
func Parse(s string) (Version, error) {
	m := versionRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Version{}, &ErrMalformedVersion{Input: s}
	}

	var v Version
	v.Major, _ = strconv.Atoi(m[1])
	v.Minor, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		v.Patch, _ = strconv.Atoi(m[3])
		v.hasPatch = true
	}
	return v, nil
}

// MustParse is Parse for statically known inputs.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsValid reports whether s is a well-formed two or three component version.
func IsValid(s string) bool {
	return versionRe.MatchString(strings.TrimSpace(s))
}

func (v Version) String() string {
	if v.hasPatch {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// MajorMinor returns the version truncated to Major.Minor, the form used in
// installation root paths like /usr/local/cuda-12.4.
func (v Version) MajorMinor() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// HasPatch reports whether the version was written with an explicit patch
// component.
func (v Version) HasPatch() bool {
	return v.hasPatch
}

// Compare orders two parsed versions component-wise.
func (v Version) Compare(o Version) int {
	for _, d := range [3]int{v.Major - o.Major, v.Minor - o.Minor, v.Patch - o.Patch} {
		if d < 0 {
			return -1
		}
		if d > 0 {
			return 1
		}
	}
	return 0
}

// Normalize applies the upstream publishing convention: releases with
// major <= 10 are referred to as Major.Minor (10.2.89 -> 10.2), releases
// with major >= 11 keep their full form. Unparseable input is returned
// unchanged. Idempotent.
func Normalize(version string) string {
	version = strings.TrimSpace(version)
	version = strings.TrimPrefix(version, "v")
	version = strings.TrimPrefix(version, "V")

	v, err := Parse(version)
	if err != nil {
		return version
	}
	if v.Major <= 10 && v.hasPatch {
		return v.MajorMinor()
	}
	return v.String()
}

// Compare orders two version strings numerically, treating a missing patch
// component as zero: Compare("10.2", "10.2.0") == 0. Strings that do not
// parse as toolkit versions fall back to semver and then to plain string
// ordering, so Compare is total.
func Compare(v1, v2 string) int {
	a, errA := Parse(v1)
	b, errB := Parse(v2)
	if errA == nil && errB == nil {
		return a.Compare(b)
	}

	sv1, err1 := semver.NewVersion(v1)
	sv2, err2 := semver.NewVersion(v2)
	if err1 == nil && err2 == nil {
		return sv1.Compare(sv2)
	}

	return strings.Compare(v1, v2)
}

// Sort orders versions ascending in place.
func Sort(versions []string) {
	sort.Slice(versions, func(i, j int) bool {
		return Compare(versions[i], versions[j]) < 0
	})
}

// ExtractFromOutput extracts a version from command output using a regex
// pattern with a single capture group. An empty pattern matches the release
// line printed by nvcc ("Cuda compilation tools, release 12.4, V12.4.131").
func ExtractFromOutput(output, pattern string) (string, error) {
	if pattern == "" {
		pattern = `release\s+(\d+\.\d+(?:\.\d+)?)`
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid version pattern: %w", err)
	}

	matches := re.FindStringSubmatch(output)
	if len(matches) < 2 {
		return "", fmt.Errorf("version not found in output")
	}

	return Normalize(matches[1]), nil
}
