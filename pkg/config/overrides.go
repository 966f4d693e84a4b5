package config

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/mjun0812/setup-cuda/pkg/platform"
	"github.com/mjun0812/setup-cuda/pkg/version"
	"gopkg.in/yaml.v3"
)

//go:embed overrides.yaml
var overridesYAML []byte

// Override pins the artifacts of a single release that scraping cannot
// discover.
type Override struct {
	// ChecksumURL points at the md5 manifest for the release, where the
	// per-version manifest path convention does not apply.
	ChecksumURL string `yaml:"checksum_url,omitempty"`
	// Installers maps platform strings (linux-x86_64) to standalone
	// installer URLs.
	Installers map[string]string `yaml:"installers"`
	// NetworkInstallers maps platform strings to network installer URLs.
	NetworkInstallers map[string]string `yaml:"network_installers,omitempty"`
}

// Overrides is the static installer table. Loaded once at process start
// and read-only afterwards.
type Overrides struct {
	Versions map[string]Override `yaml:"overrides"`
}

var (
	defaultOverrides     *Overrides
	defaultOverridesErr  error
	defaultOverridesOnce sync.Once
)

// Default returns the embedded override table.
func Default() (*Overrides, error) {
	defaultOverridesOnce.Do(func() {
		defaultOverrides, defaultOverridesErr = parseOverrides(overridesYAML)
	})
	return defaultOverrides, defaultOverridesErr
}

func parseOverrides(data []byte) (*Overrides, error) {
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("failed to parse embedded installer overrides: %w", err)
	}
	if o.Versions == nil {
		o.Versions = make(map[string]Override)
	}
	return &o, nil
}

// InstallerURL returns the pinned standalone installer URL for a version
// and platform, if one exists.
func (o *Overrides) InstallerURL(ver string, p platform.Platform) (string, bool) {
	entry, ok := o.Versions[version.Normalize(ver)]
	if !ok {
		return "", false
	}
	url, ok := entry.Installers[p.String()]
	return url, ok
}

// NetworkInstallerURL returns the pinned network installer URL for a
// version and platform, if one exists.
func (o *Overrides) NetworkInstallerURL(ver string, p platform.Platform) (string, bool) {
	entry, ok := o.Versions[version.Normalize(ver)]
	if !ok {
		return "", false
	}
	url, ok := entry.NetworkInstallers[p.String()]
	return url, ok
}

// ChecksumURL returns the pinned checksum manifest URL for a version, if
// one exists.
func (o *Overrides) ChecksumURL(ver string) (string, bool) {
	entry, ok := o.Versions[version.Normalize(ver)]
	if !ok || entry.ChecksumURL == "" {
		return "", false
	}
	return entry.ChecksumURL, true
}

// Has reports whether the table pins the version at all.
func (o *Overrides) Has(ver string) bool {
	_, ok := o.Versions[version.Normalize(ver)]
	return ok
}

// LegacyVersions returns the pinned versions sorted ascending. These seed
// the catalog for releases the online indexes do not list.
func (o *Overrides) LegacyVersions() []string {
	versions := make([]string, 0, len(o.Versions))
	for v := range o.Versions {
		versions = append(versions, v)
	}
	version.Sort(versions)
	return versions
}
