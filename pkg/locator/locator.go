// Package locator turns a resolved CUDA version and target platform into
// concrete artifact locations: the standalone installer URL (with its MD5
// digest where published), the Windows network installer, and the native
// Linux package repository with its registration file and toolkit package.
package locator

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/flanksource/commons/logger"

	"github.com/mjun0812/setup-cuda/pkg/config"
	setupcudahttp "github.com/mjun0812/setup-cuda/pkg/http"
	"github.com/mjun0812/setup-cuda/pkg/platform"
	"github.com/mjun0812/setup-cuda/pkg/template"
	"github.com/mjun0812/setup-cuda/pkg/version"
)

const (
	// DownloadBaseURL hosts per-release directories with manifests and
	// local installers.
	DownloadBaseURL = "https://developer.download.nvidia.com/compute/cuda"
	// ReposRootURL hosts per-distribution native package repositories.
	ReposRootURL = "https://developer.download.nvidia.com/compute/cuda/repos/"
)

// Download URL patterns. Kept as templates so the layout stays data.
const (
	manifestURLTemplate  = "{{.base}}/{{.version}}/docs/sidebar/md5sum.txt"
	installerURLTemplate = "{{.base}}/{{.version}}/local_installers/{{.filename}}"
)

const defaultTimeout = 30 * time.Second

// Installer is a located standalone installer artifact.
type Installer struct {
	Version  string
	Platform platform.Platform
	URL      string
	Filename string
	// MD5 is the hex digest from the release manifest, empty when the
	// release predates published manifests.
	MD5 string
	// ChecksumURL points at the manifest the digest came from.
	ChecksumURL string
}

// Locator resolves artifact locations against NVIDIA's download endpoints.
type Locator struct {
	client    *http.Client
	overrides *config.Overrides
	baseURL   string
	reposURL  string
}

// Option configures a Locator.
type Option func(*Locator)

// WithClient sets the HTTP client.
func WithClient(client *http.Client) Option {
	return func(l *Locator) {
		l.client = client
	}
}

// WithBaseURL overrides the download base URL.
func WithBaseURL(url string) Option {
	return func(l *Locator) {
		l.baseURL = url
	}
}

// WithReposURL overrides the package repository root URL.
func WithReposURL(url string) Option {
	return func(l *Locator) {
		l.reposURL = url
	}
}

// WithOverrides replaces the pinned installer table.
func WithOverrides(overrides *config.Overrides) Option {
	return func(l *Locator) {
		l.overrides = overrides
	}
}

// New returns a Locator against the NVIDIA endpoints with the embedded
// override table, unless options substitute their own.
func New(opts ...Option) *Locator {
	l := &Locator{
		baseURL:  DownloadBaseURL,
		reposURL: ReposRootURL,
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.client == nil {
		l.client = setupcudahttp.GetHttpClient(setupcudahttp.WithTimeout(defaultTimeout))
	}
	if l.overrides == nil {
		overrides, err := config.Default()
		if err != nil {
			logger.Warnf("Failed to load pinned installer overrides: %v", err)
			overrides = &config.Overrides{Versions: map[string]config.Override{}}
		}
		l.overrides = overrides
	}
	return l
}

// Standalone locates the standalone (.run / .exe) installer for a version
// and platform. The override table is consulted first; releases from 11 on
// are then matched against the per-release md5 manifest, which also
// supplies the digest for download verification.
func (l *Locator) Standalone(ctx context.Context, ver string, p platform.Platform) (*Installer, error) {
	ver = version.Normalize(ver)
	v, err := version.Parse(ver)
	if err != nil {
		return nil, err
	}
	if version.Compare(ver, version.Floor) < 0 {
		return nil, &ErrUnsupportedVersion{Version: ver, Floor: version.Floor}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if v.Major <= 10 && p.Arch == platform.ArchARM64 {
		return nil, &ErrUnsupportedCombination{Version: ver, Platform: p}
	}

	if url, ok := l.overrides.InstallerURL(ver, p); ok {
		logger.V(3).Infof("Using pinned installer for CUDA %s on %s", ver, p)
		installer := &Installer{
			Version:  ver,
			Platform: p,
			URL:      url,
			Filename: path.Base(url),
		}
		if checksumURL, ok := l.overrides.ChecksumURL(ver); ok {
			installer.ChecksumURL = checksumURL
		}
		return installer, nil
	}

	// Releases up to 10.x predate the per-release manifest layout, so the
	// pinned table is the only source for them.
	if v.Major <= 10 {
		if l.overrides.Has(ver) {
			return nil, &ErrNoMatchingInstaller{Version: ver, Platform: p}
		}
		return nil, &ErrVersionNotFound{Version: ver, Available: l.overrides.LegacyVersions()}
	}

	manifestURL, err := template.URL(manifestURLTemplate, ver, p, map[string]interface{}{"base": l.baseURL})
	if err != nil {
		return nil, err
	}

	entries, err := fetchManifest(ctx, l.client, manifestURL)
	if err != nil {
		if setupcudahttp.IsNotFound(err) {
			return nil, &ErrVersionNotFound{Version: ver}
		}
		return nil, fmt.Errorf("failed to fetch installer manifest for CUDA %s: %w", ver, err)
	}

	entry, ok := findEntry(entries, installerPatterns(ver, p))
	if !ok {
		return nil, &ErrNoMatchingInstaller{Version: ver, Platform: p}
	}

	url, err := template.URL(installerURLTemplate, ver, p, map[string]interface{}{
		"base":     l.baseURL,
		"filename": entry.Filename,
	})
	if err != nil {
		return nil, err
	}

	return &Installer{
		Version:     ver,
		Platform:    p,
		URL:         url,
		Filename:    entry.Filename,
		MD5:         entry.MD5,
		ChecksumURL: manifestURL,
	}, nil
}

// installerPatterns returns the manifest filename patterns for a platform,
// in preference order. Installer names embed the bundled driver version
// between the toolkit version and the platform suffix.
func installerPatterns(ver string, p platform.Platform) []*regexp.Regexp {
	qv := regexp.QuoteMeta(ver)
	switch {
	case p.IsWindows():
		return []*regexp.Regexp{
			regexp.MustCompile(`^cuda_` + qv + `_.+_windows\.exe$`),
			regexp.MustCompile(`^cuda_` + qv + `_.+_win10\.exe$`),
		}
	case p.Arch == platform.ArchARM64:
		return []*regexp.Regexp{
			regexp.MustCompile(`^cuda_` + qv + `_\d+\.\d+(?:\.\d+)?_linux_sbsa\.run$`),
		}
	default:
		return []*regexp.Regexp{
			regexp.MustCompile(`^cuda_` + qv + `_\d+\.\d+(?:\.\d+)?_linux\.run$`),
		}
	}
}

// local installer filename: cuda_<version>_<driver>_<os>.exe
var windowsInstallerRe = regexp.MustCompile(`^cuda_([^_]+)_([^_]+)_(windows|win10)\.exe$`)

// NetworkInstallerWindows locates the small network installer for Windows.
// The override table is consulted first; otherwise the URL is derived from
// the local installer by dropping the driver token and probed with a HEAD
// request, since NVIDIA does not publish network installers for every
// release.
func (l *Locator) NetworkInstallerWindows(ctx context.Context, ver string, p platform.Platform) (string, error) {
	ver = version.Normalize(ver)
	if !p.IsWindows() {
		return "", &ErrNoMatchingInstaller{Version: ver, Platform: p, Network: true}
	}

	if url, ok := l.overrides.NetworkInstallerURL(ver, p); ok {
		return url, nil
	}

	local, err := l.Standalone(ctx, ver, p)
	if err != nil {
		return "", err
	}

	m := windowsInstallerRe.FindStringSubmatch(local.Filename)
	if m == nil {
		return "", &ErrNoMatchingInstaller{Version: ver, Platform: p, Network: true}
	}
	networkFilename := fmt.Sprintf("cuda_%s_%s_network.exe", m[1], m[3])
	suffix := "local_installers/" + local.Filename
	if !strings.HasSuffix(local.URL, suffix) {
		return "", &ErrNoMatchingInstaller{Version: ver, Platform: p, Network: true}
	}
	networkURL := strings.TrimSuffix(local.URL, suffix) + "network_installers/" + networkFilename

	if !setupcudahttp.Exists(ctx, l.client, networkURL) {
		logger.V(2).Infof("Network installer probe failed for %s", networkURL)
		return "", &ErrNoMatchingInstaller{Version: ver, Platform: p, Network: true}
	}
	return networkURL, nil
}
