package locator

import (
	"fmt"
	"strings"

	"github.com/mjun0812/setup-cuda/pkg/platform"
)

// ErrUnsupportedVersion reports a request below the supported floor.
type ErrUnsupportedVersion struct {
	Version string
	Floor   string
}

func (e *ErrUnsupportedVersion) Error() string {
	return fmt.Sprintf("CUDA %s is not supported, the oldest supported release is %s", e.Version, e.Floor)
}

// ErrUnsupportedCombination reports a version/platform pair that was never
// published, such as arm64 builds before CUDA 11.
type ErrUnsupportedCombination struct {
	Version  string
	Platform platform.Platform
}

func (e *ErrUnsupportedCombination) Error() string {
	return fmt.Sprintf("CUDA %s was not released for %s", e.Version, e.Platform)
}

// ErrVersionNotFound reports a version that has no known installers.
type ErrVersionNotFound struct {
	Version   string
	Available []string
}

func (e *ErrVersionNotFound) Error() string {
	msg := fmt.Sprintf("no installers found for CUDA %s", e.Version)
	if len(e.Available) > 0 {
		msg += fmt.Sprintf(" (known releases: %s)", strings.Join(e.Available, ", "))
	}
	return msg
}

// ErrNoMatchingInstaller reports a release whose manifest carries no
// installer for the requested platform.
type ErrNoMatchingInstaller struct {
	Version  string
	Platform platform.Platform
	Network  bool
}

func (e *ErrNoMatchingInstaller) Error() string {
	if e.Network {
		return fmt.Sprintf("no network installer found for CUDA %s on %s", e.Version, e.Platform)
	}
	return fmt.Sprintf("no installer found for CUDA %s on %s", e.Version, e.Platform)
}

// ErrRepositoryNotFound reports a distribution with no native package
// repository.
type ErrRepositoryNotFound struct {
	OsName    string
	Available []string
}

func (e *ErrRepositoryNotFound) Error() string {
	msg := fmt.Sprintf("no CUDA package repository exists for %s", e.OsName)
	if len(e.Available) > 0 {
		shown := e.Available
		more := ""
		if len(shown) > 15 {
			more = fmt.Sprintf(", and %d more", len(shown)-15)
			shown = shown[:15]
		}
		msg += fmt.Sprintf(" (available: %s%s)", strings.Join(shown, ", "), more)
	}
	return msg
}

// ErrRepositoryFileNotFound reports a repository listing with no
// registration file matching the family's patterns.
type ErrRepositoryFileNotFound struct {
	Repo     string
	Patterns []string
}

func (e *ErrRepositoryFileNotFound) Error() string {
	return fmt.Sprintf("no repository registration file matching %s found in %s",
		strings.Join(e.Patterns, " or "), e.Repo)
}

// ErrPackageNotFound reports a repository listing with no toolkit package
// for the requested version.
type ErrPackageNotFound struct {
	Repo     string
	Prefixes []string
}

func (e *ErrPackageNotFound) Error() string {
	return fmt.Sprintf("no package matching %s found in %s",
		strings.Join(e.Prefixes, " or "), e.Repo)
}
