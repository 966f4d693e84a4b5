package installer

import (
	"fmt"
	"os"
	"time"

	"github.com/mjun0812/setup-cuda/pkg/catalog"
	"github.com/mjun0812/setup-cuda/pkg/distro"
	"github.com/mjun0812/setup-cuda/pkg/locator"
	"github.com/mjun0812/setup-cuda/pkg/platform"
)

// Method selects the installation strategy.
type Method string

const (
	// MethodAuto tries the network install first and falls back once to
	// the standalone installer.
	MethodAuto Method = "auto"
	// MethodNetwork registers NVIDIA's native package repository (Linux)
	// or runs the network installer (Windows).
	MethodNetwork Method = "network"
	// MethodLocal downloads and runs the standalone installer.
	MethodLocal Method = "local"
)

// ParseMethod parses a method flag value. The empty string means auto.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "", MethodAuto:
		return MethodAuto, nil
	case MethodNetwork:
		return MethodNetwork, nil
	case MethodLocal:
		return MethodLocal, nil
	default:
		return "", fmt.Errorf("invalid install method %q (expected auto, network or local)", s)
	}
}

// Options configures the installation behavior
type Options struct {
	Method        Method
	Platform      platform.Platform
	Distro        *distro.Distro
	WorkDir       string
	CacheDir      string
	Sudo          bool
	DryRun        bool
	Yes           bool
	KeepInstaller bool
	HTTPTimeout   time.Duration

	// Locator and Catalog substitute the collaborators, mostly for tests.
	Locator *locator.Locator
	Catalog *catalog.Builder
}

// Option is a functional option for configuring installation
type Option func(*Options)

// WithMethod sets the installation method
func WithMethod(method Method) Option {
	return func(opts *Options) {
		opts.Method = method
	}
}

// WithPlatform overrides the detected target platform
func WithPlatform(p platform.Platform) Option {
	return func(opts *Options) {
		opts.Platform = p
	}
}

// WithDistro overrides the detected Linux distribution
func WithDistro(d distro.Distro) Option {
	return func(opts *Options) {
		opts.Distro = &d
	}
}

// WithWorkDir sets the directory installers are downloaded into
func WithWorkDir(dir string) Option {
	return func(opts *Options) {
		opts.WorkDir = dir
	}
}

// WithCacheDir keeps downloaded installers in a cache directory so a
// reinstall skips the download. Empty disables caching.
func WithCacheDir(dir string) Option {
	return func(opts *Options) {
		opts.CacheDir = dir
	}
}

// WithSudo enables or disables the sudo prefix on install commands.
// Even when enabled the prefix is dropped when already running as root.
func WithSudo(sudo bool) Option {
	return func(opts *Options) {
		opts.Sudo = sudo
	}
}

// WithDryRun reports the commands that would run without executing them
func WithDryRun(dryRun bool) Option {
	return func(opts *Options) {
		opts.DryRun = dryRun
	}
}

// WithYes skips the system-wide installation confirmation prompt
func WithYes(yes bool) Option {
	return func(opts *Options) {
		opts.Yes = yes
	}
}

// WithKeepInstaller keeps the downloaded installer after installation
func WithKeepInstaller(keep bool) Option {
	return func(opts *Options) {
		opts.KeepInstaller = keep
	}
}

// WithHTTPTimeout sets the timeout for metadata fetches. Installer
// downloads themselves are not bounded by it.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.HTTPTimeout = timeout
	}
}

// WithLocator substitutes the artifact locator
func WithLocator(l *locator.Locator) Option {
	return func(opts *Options) {
		opts.Locator = l
	}
}

// WithCatalog substitutes the version catalog builder
func WithCatalog(b *catalog.Builder) Option {
	return func(opts *Options) {
		opts.Catalog = b
	}
}

// DefaultOptions returns sensible default options
func DefaultOptions() Options {
	return Options{
		Method:      MethodAuto,
		WorkDir:     os.TempDir(),
		Sudo:        true,
		HTTPTimeout: 5 * time.Minute,
	}
}
