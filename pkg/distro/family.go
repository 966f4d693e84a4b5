package distro

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Family captures the package-manager behavior that differs between
// Debian-based and Fedora-based distributions: how the repository
// registration file is named, how toolkit package files are named, which
// candidate to install, and how a filename maps to a package-manager
// argument.
type Family interface {
	Name() string

	// RegistrationPatterns returns glob patterns for the repository
	// registration file, in priority order.
	RegistrationPatterns() []string

	// PackagePrefixes returns the filename prefixes that identify toolkit
	// packages for a version, in priority order.
	PackagePrefixes(version string) []string

	// SelectCandidate picks the package to install from a sorted candidate
	// list.
	SelectCandidate(candidates []string) string

	// ExtractPackage converts a package filename into the argument passed
	// to the package manager. Filenames outside the expected shape pass
	// through unchanged.
	ExtractPackage(filename string) string
}

var families = map[string]Family{
	"debian": debianFamily{},
	"fedora": fedoraFamily{},
}

var familyByID = map[string]string{
	"ubuntu":    "debian",
	"debian":    "debian",
	"rhel":      "fedora",
	"centos":    "fedora",
	"rocky":     "fedora",
	"almalinux": "fedora",
	"fedora":    "fedora",
	"amzn":      "fedora",
	"ol":        "fedora",
}

// FamilyFor classifies a distribution, falling back to its ID_LIKE hints
// when the id itself is unknown.
func FamilyFor(d Distro) (Family, error) {
	if name, ok := familyByID[d.ID]; ok {
		return families[name], nil
	}
	for _, like := range d.IDLike {
		if name, ok := familyByID[like]; ok {
			return families[name], nil
		}
	}
	return nil, newUnsupportedDistribution(d.ID)
}

// MatchNewest returns the lexicographically last filename matching any of
// the glob patterns, trying patterns in order and stopping at the first
// pattern with matches.
func MatchNewest(patterns []string, filenames []string) (string, bool) {
	for _, pattern := range patterns {
		var matches []string
		for _, name := range filenames {
			if ok, err := doublestar.Match(pattern, name); err == nil && ok {
				matches = append(matches, name)
			}
		}
		if len(matches) > 0 {
			sort.Strings(matches)
			return matches[len(matches)-1], true
		}
	}
	return "", false
}

type debianFamily struct{}

func (debianFamily) Name() string { return "debian" }

func (debianFamily) RegistrationPatterns() []string {
	return []string{"cuda-keyring_*.deb", "cuda-*.pin"}
}

func (debianFamily) PackagePrefixes(version string) []string {
	return []string{"cuda-toolkit_" + version, "cuda_" + version}
}

func (debianFamily) SelectCandidate(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	return candidates[0]
}

// name_version_arch.deb
var debRe = regexp.MustCompile(`^(.+)_([^_]+)_([^_]+)\.deb$`)

func (debianFamily) ExtractPackage(filename string) string {
	m := debRe.FindStringSubmatch(filename)
	if m == nil {
		return filename
	}
	return fmt.Sprintf("%s=%s", m[1], m[2])
}

type fedoraFamily struct{}

func (fedoraFamily) Name() string { return "fedora" }

func (fedoraFamily) RegistrationPatterns() []string {
	return []string{"cuda-*.repo"}
}

func (fedoraFamily) PackagePrefixes(version string) []string {
	return []string{"cuda-toolkit-" + version, "cuda-" + version}
}

func (fedoraFamily) SelectCandidate(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	return candidates[len(candidates)-1]
}

// name-version-release.arch.rpm
var rpmRe = regexp.MustCompile(`^(.+)-([^-]+)-([^-]+)\.([^.]+)\.rpm$`)

func (fedoraFamily) ExtractPackage(filename string) string {
	m := rpmRe.FindStringSubmatch(filename)
	if m == nil {
		return filename
	}
	return fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3])
}
