package distro

import (
	"bufio"
	"os"
	"strings"
)

const osReleasePath = "/etc/os-release"

// Distro identifies the host Linux distribution as read from
// /etc/os-release. Detected once per run and immutable afterwards.
type Distro struct {
	ID        string
	VersionID string
	Name      string
	IDLike    []string
}

// Detect reads the host distribution from /etc/os-release.
func Detect() (Distro, error) {
	return DetectFromFile(osReleasePath)
}

// DetectFromFile parses an os-release style key=value file.
func DetectFromFile(path string) (Distro, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Distro{}, &ErrMissingReleaseFile{Path: path}
		}
		return Distro{}, err
	}
	defer f.Close()

	var d Distro
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.SplitN(scanner.Text(), "=", 2)
		if len(line) != 2 {
			continue
		}
		switch line[0] {
		case "ID":
			d.ID = strings.ToLower(unquote(line[1]))
		case "VERSION_ID":
			d.VersionID = unquote(line[1])
		case "NAME":
			d.Name = unquote(line[1])
		case "ID_LIKE":
			d.IDLike = strings.Fields(strings.ToLower(unquote(line[1])))
		}
	}
	if err := scanner.Err(); err != nil {
		return Distro{}, err
	}

	if d.ID == "" {
		return Distro{}, &ErrUnresolvedDistribution{Path: path}
	}
	if d.VersionID == "" {
		d.VersionID = "unknown"
	}
	if d.Name == "" {
		d.Name = d.ID
	}
	return d, nil
}

func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	for _, q := range []byte{'\'', '"'} {
		if s[0] == q && s[len(s)-1] == q {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// TargetOsName builds the repository directory name NVIDIA publishes for
// this distribution. Ubuntu directories carry major and minor with the dot
// removed (ubuntu2204), every other distribution the major only (rhel9,
// debian12, fedora40).
func (d Distro) TargetOsName() string {
	parts := strings.Split(d.VersionID, ".")
	if d.ID == "ubuntu" && len(parts) >= 2 {
		return d.ID + parts[0] + parts[1]
	}
	return d.ID + parts[0]
}

// Family classifies the distribution into its package-manager family.
func (d Distro) Family() (Family, error) {
	return FamilyFor(d)
}
