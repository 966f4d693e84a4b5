// Package installer drives the OS-specific CUDA toolkit install flows:
// the standalone (.run / .exe) installer and the native package
// repository path, with a single network-to-local fallback in auto mode.
package installer

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/flanksource/clicky/task"

	"github.com/mjun0812/setup-cuda/pkg/cache"
	"github.com/mjun0812/setup-cuda/pkg/catalog"
	"github.com/mjun0812/setup-cuda/pkg/distro"
	"github.com/mjun0812/setup-cuda/pkg/download"
	setupcudahttp "github.com/mjun0812/setup-cuda/pkg/http"
	"github.com/mjun0812/setup-cuda/pkg/locator"
	"github.com/mjun0812/setup-cuda/pkg/platform"
	"github.com/mjun0812/setup-cuda/pkg/version"
)

const (
	linuxRootPrefix  = "/usr/local/cuda-"
	windowsRootBase  = `C:\Program Files\NVIDIA GPU Computing Toolkit\CUDA`
	aptPinDest       = "/etc/apt/preferences.d/cuda-repository-pin-600"
	repoSigningKey   = "3bf863cc.pub"
	cancelledMessage = "installation cancelled by user"
)

// Result holds the outcome of a completed installation.
type Result struct {
	// Version is the resolved full toolkit version.
	Version string
	// Method is the strategy that succeeded, network or local.
	Method Method
	// Root is the installation root directory.
	Root string
	// Plan lists the commands and downloads the install performed, or
	// would perform under dry-run.
	Plan []string
}

// Installer handles toolkit installation with a unified API
type Installer struct {
	options Options
	locator *locator.Locator
	catalog *catalog.Builder
}

// New creates a new installer with the given options
func New(opts ...Option) *Installer {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	loc := options.Locator
	cat := options.Catalog
	if loc == nil || cat == nil {
		client := setupcudahttp.GetHttpClient(setupcudahttp.WithTimeout(options.HTTPTimeout))
		if loc == nil {
			loc = locator.New(locator.WithClient(client))
		}
		if cat == nil {
			cat = catalog.New(catalog.WithClient(client))
		}
	}

	return &Installer{
		options: options,
		locator: loc,
		catalog: cat,
	}
}

// InstallRoot returns the directory a toolkit version installs into.
func InstallRoot(ver string, p platform.Platform) string {
	mm := ver
	if v, err := version.Parse(version.Normalize(ver)); err == nil {
		mm = v.MajorMinor()
	}
	if p.IsWindows() {
		return windowsRootBase + `\v` + mm
	}
	return linuxRootPrefix + mm
}

// InstalledVersions lists the toolkit versions present on the host, from
// the install root naming convention, sorted ascending. Versions are
// major.minor since that is all the roots carry.
func InstalledVersions(p platform.Platform) []string {
	pattern := linuxRootPrefix + "*"
	prefix := linuxRootPrefix
	if p.IsWindows() {
		pattern = windowsRootBase + `\v*`
		prefix = windowsRootBase + `\v`
	}

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil
	}

	var versions []string
	for _, m := range matches {
		v := strings.TrimPrefix(m, prefix)
		if version.IsValid(v) {
			versions = append(versions, v)
		}
	}
	version.Sort(versions)
	return versions
}

// Install resolves the requested version and installs it, reporting
// progress through the task.
func (i *Installer) Install(ctx context.Context, request string, t *task.Task) (*Result, error) {
	if t == nil {
		t = &task.Task{}
	}

	t.Infof("Resolving CUDA version %q", request)
	available := i.catalog.Build(ctx)
	resolved, ok, err := version.Resolve(request, available)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, version.EnhanceNotFound(request, available)
	}
	t.Infof("Resolved CUDA version: %s -> %s", request, resolved)
	t.SetName(fmt.Sprintf("cuda@%s", resolved))

	p := i.options.Platform
	if p == (platform.Platform{}) {
		p = platform.Current()
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	t.Debugf("Install: using platform %s", p)

	result := &Result{
		Version: resolved,
		Root:    InstallRoot(resolved, p),
	}

	if !i.options.Yes && !i.options.DryRun {
		displayInstallWarning(resolved, i.options.Method, result.Root)
		if !promptForConfirmation("Continue? [y/N]: ") {
			return nil, fmt.Errorf(cancelledMessage)
		}
	}

	r := newRunner(i.options, p, t)
	cleanup := newCleanupManager(i.options, t)
	defer cleanup.Cleanup()

	switch i.options.Method {
	case MethodNetwork:
		result.Method = MethodNetwork
		err = i.installNetwork(ctx, resolved, p, r, cleanup, t)
	case MethodLocal:
		result.Method = MethodLocal
		err = i.installLocal(ctx, resolved, p, r, cleanup, t)
	default:
		result.Method = MethodNetwork
		if err = i.installNetwork(ctx, resolved, p, r, cleanup, t); err != nil {
			t.Infof("⚠️ Network install failed: %v", err)
			t.Infof("Falling back to the standalone installer")
			result.Method = MethodLocal
			err = i.installLocal(ctx, resolved, p, r, cleanup, t)
		}
	}
	if err != nil {
		return nil, err
	}
	result.Plan = r.plan

	if i.options.DryRun {
		t.Infof("Dry run complete, %d steps planned", len(result.Plan))
	} else {
		t.Infof("✅ CUDA %s installed at %s", resolved, result.Root)
	}
	t.Success()

	return result, nil
}

// installLocal downloads the standalone installer and runs it silently.
func (i *Installer) installLocal(ctx context.Context, ver string, p platform.Platform, r *runner, cleanup *cleanupManager, t *task.Task) error {
	art, err := i.locator.Standalone(ctx, ver, p)
	if err != nil {
		return err
	}
	t.Infof("Using standalone installer %s", art.Filename)

	dest := filepath.Join(i.options.WorkDir, art.Filename)
	var opts []download.Option
	if art.MD5 != "" {
		opts = append(opts, download.WithMD5(art.MD5))
	} else if art.ChecksumURL != "" {
		opts = append(opts, download.WithChecksumURL(art.ChecksumURL))
	}
	if err := i.fetchInstaller(art.URL, dest, art.MD5, r, t, opts...); err != nil {
		return err
	}
	cleanup.AddFile(dest)

	if p.IsWindows() {
		if err := r.run(dest, "-s"); err != nil {
			return &ErrInstallationFailed{Version: ver, Cmd: dest + " -s", Err: err}
		}
	} else {
		if !r.dryRun {
			if err := os.Chmod(dest, 0755); err != nil {
				return fmt.Errorf("failed to make installer executable: %w", err)
			}
		}
		if err := r.run("sh", dest, "--silent", "--toolkit"); err != nil {
			return &ErrInstallationFailed{Version: ver, Cmd: "sh " + dest, LogTail: installerLogTail(), Err: err}
		}
	}

	return i.verifyRoot(ver, p, r)
}

// installNetwork registers NVIDIA's package repository and installs the
// toolkit package (Linux), or runs the network installer (Windows).
func (i *Installer) installNetwork(ctx context.Context, ver string, p platform.Platform, r *runner, cleanup *cleanupManager, t *task.Task) error {
	if p.IsWindows() {
		return i.installNetworkWindows(ctx, ver, p, r, cleanup, t)
	}
	return i.installNetworkLinux(ctx, ver, p, r, cleanup, t)
}

func (i *Installer) installNetworkWindows(ctx context.Context, ver string, p platform.Platform, r *runner, cleanup *cleanupManager, t *task.Task) error {
	url, err := i.locator.NetworkInstallerWindows(ctx, ver, p)
	if err != nil {
		return err
	}
	t.Infof("Using network installer %s", path.Base(url))

	dest := filepath.Join(i.options.WorkDir, path.Base(url))
	if err := i.fetchInstaller(url, dest, "", r, t); err != nil {
		return err
	}
	cleanup.AddFile(dest)

	if err := r.run(dest, "-s"); err != nil {
		return &ErrInstallationFailed{Version: ver, Cmd: dest + " -s", Err: err}
	}
	return i.verifyRoot(ver, p, r)
}

func (i *Installer) installNetworkLinux(ctx context.Context, ver string, p platform.Platform, r *runner, cleanup *cleanupManager, t *task.Task) error {
	d := i.options.Distro
	if d == nil {
		detected, err := distro.Detect()
		if err != nil {
			return err
		}
		d = &detected
	}
	t.Debugf("Install: detected distribution %s %s", d.ID, d.VersionID)

	repo, err := i.locator.Repository(ctx, ver, *d, p)
	if err != nil {
		return err
	}
	t.Infof("Using package repository %s", repo.BaseURL)
	t.Infof("Installing package %s", repo.Package)

	switch repo.Family.Name() {
	case "debian":
		if err := i.registerDebianRepo(repo, r, cleanup, t); err != nil {
			return err
		}
		if err := r.run("apt-get", "update"); err != nil {
			return err
		}
		if err := r.run("apt-get", "-y", "install", repo.Package); err != nil {
			return &ErrInstallationFailed{Version: ver, Cmd: "apt-get install " + repo.Package, Err: err}
		}
	case "fedora":
		if err := r.run("dnf", "config-manager", "--add-repo", repo.RegistrationURL); err != nil {
			return err
		}
		if err := r.run("dnf", "clean", "expire-cache"); err != nil {
			return err
		}
		if err := r.run("dnf", "-y", "install", repo.Package); err != nil {
			return &ErrInstallationFailed{Version: ver, Cmd: "dnf install " + repo.Package, Err: err}
		}
	default:
		return fmt.Errorf("no install commands for distribution family %s", repo.Family.Name())
	}

	return i.verifyRoot(ver, p, r)
}

// registerDebianRepo registers the repository with apt: the cuda-keyring
// package where published, the older .pin preferences file otherwise.
func (i *Installer) registerDebianRepo(repo *locator.Repository, r *runner, cleanup *cleanupManager, t *task.Task) error {
	dest := filepath.Join(i.options.WorkDir, repo.RegistrationFile)
	if err := i.download(repo.RegistrationURL, dest, r, t); err != nil {
		return err
	}
	cleanup.AddFile(dest)

	if strings.HasSuffix(repo.RegistrationFile, ".deb") {
		return r.run("dpkg", "-i", dest)
	}

	if err := r.run("cp", dest, aptPinDest); err != nil {
		return err
	}
	if err := r.run("apt-key", "adv", "--fetch-keys", repo.BaseURL+repoSigningKey); err != nil {
		return err
	}
	return r.run("add-apt-repository", fmt.Sprintf("deb %s /", repo.BaseURL))
}

func (i *Installer) download(url, dest string, r *runner, t *task.Task, opts ...download.Option) error {
	r.note("download %s -> %s", url, dest)
	if r.dryRun {
		return nil
	}
	return download.Download(url, dest, t, opts...)
}

// fetchInstaller downloads an installer artifact through the cache: a
// verified cache entry skips the download, and a fresh download is
// stored back when caching is enabled. Repository registration files
// bypass this so apt and dnf always see current metadata.
func (i *Installer) fetchInstaller(url, dest, md5sum string, r *runner, t *task.Task, opts ...download.Option) error {
	if cached, ok := cache.Lookup(i.options.CacheDir, url, filepath.Base(dest), md5sum); ok {
		t.Infof("Using cached installer %s", cached)
		r.note("copy %s -> %s", cached, dest)
		if r.dryRun {
			return nil
		}
		return cache.CopyOut(cached, dest)
	}

	if err := i.download(url, dest, r, t, opts...); err != nil {
		return err
	}
	if !r.dryRun {
		if err := cache.Store(i.options.CacheDir, url, dest); err != nil {
			t.Warnf("Failed to cache installer: %v", err)
		}
	}
	return nil
}

// verifyRoot checks the install root exists after the installer ran. The
// NVIDIA installers can exit zero without installing the toolkit, so the
// root is the authoritative signal.
func (i *Installer) verifyRoot(ver string, p platform.Platform, r *runner) error {
	if r.dryRun {
		return nil
	}
	root := InstallRoot(ver, p)
	if _, err := os.Stat(root); err != nil {
		return &ErrInstallationFailed{Version: ver, Path: root, LogTail: installerLogTail()}
	}
	return nil
}
