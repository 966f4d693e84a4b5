package platform

import (
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// WindowsRelease is a parsed Windows version string (major.minor.build).
type WindowsRelease struct {
	Major int
	Minor int
	Build int
}

// Build-number thresholds mapping to marketing names, evaluated high to
// low. Desktop and server releases interleave, so order matters.
var windowsProducts = []struct {
	minBuild int
	name     string
}{
	{22000, "11"},
	{20348, "Server 2022"},
	{19041, "10"},
	{17763, "Server 2019"},
	{10240, "10"},
}

// ParseWindowsRelease parses a release string like "10.0.22631.4317". At
// least major.minor.build is required; anything after the build is ignored.
func ParseWindowsRelease(release string) (WindowsRelease, error) {
	parts := strings.Split(strings.TrimSpace(release), ".")
	if len(parts) < 3 {
		return WindowsRelease{}, &ErrUnparseableRelease{Input: release}
	}

	var r WindowsRelease
	var err error
	if r.Major, err = strconv.Atoi(parts[0]); err != nil {
		return WindowsRelease{}, &ErrUnparseableRelease{Input: release}
	}
	if r.Minor, err = strconv.Atoi(parts[1]); err != nil {
		return WindowsRelease{}, &ErrUnparseableRelease{Input: release}
	}
	if r.Build, err = strconv.Atoi(parts[2]); err != nil {
		return WindowsRelease{}, &ErrUnparseableRelease{Input: release}
	}
	return r, nil
}

// Product maps the build number to the Windows product name.
func (r WindowsRelease) Product() string {
	for _, p := range windowsProducts {
		if r.Build >= p.minBuild {
			return p.name
		}
	}
	return "Unknown"
}

var verRe = regexp.MustCompile(`(\d+\.\d+\.\d+(?:\.\d+)?)`)

// DetectWindowsRelease reads the host release via `cmd /c ver`, which
// prints "Microsoft Windows [Version 10.0.22631.4317]".
func DetectWindowsRelease() (WindowsRelease, error) {
	out, err := exec.Command("cmd", "/c", "ver").Output()
	if err != nil {
		return WindowsRelease{}, &ErrUnparseableRelease{Input: err.Error()}
	}

	m := verRe.FindString(string(out))
	if m == "" {
		return WindowsRelease{}, &ErrUnparseableRelease{Input: strings.TrimSpace(string(out))}
	}
	return ParseWindowsRelease(m)
}
