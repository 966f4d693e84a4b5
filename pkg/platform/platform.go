package platform

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
)

// Architectures CUDA is published for. NVIDIA calls the 64-bit ARM server
// builds "sbsa" in repository paths and "arm64" everywhere else.
const (
	OSLinux   = "linux"
	OSWindows = "windows"

	ArchX86_64 = "x86_64"
	ArchARM64  = "arm64"
)

// Platform represents a target OS/Architecture combination
type Platform struct {
	OS   string `json:"os" yaml:"os"`
	Arch string `json:"arch" yaml:"arch"`
}

// Global overrides for platform detection
var (
	globalOSOverride   string
	globalArchOverride string
	globalMutex        sync.RWMutex
)

// String returns a string representation of the platform (e.g., "linux-x86_64")
func (p Platform) String() string {
	return fmt.Sprintf("%s-%s", p.OS, p.Arch)
}

// SetGlobalOverrides sets global OS and architecture overrides from CLI flags
func SetGlobalOverrides(osOverride, archOverride string) {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	globalOSOverride = osOverride
	globalArchOverride = archOverride
}

// Current returns the current platform, respecting global overrides. The
// result is normalized but not validated; call Validate before acting on it.
func Current() Platform {
	globalMutex.RLock()
	defer globalMutex.RUnlock()

	os := globalOSOverride
	arch := globalArchOverride

	if os == "" {
		os = runtime.GOOS
	}
	if arch == "" {
		arch = runtime.GOARCH
	}

	return Platform{OS: os, Arch: arch}.Normalize()
}

// Parse parses a platform string (e.g., "linux-x86_64") into a Platform
func Parse(platformStr string) (Platform, error) {
	parts := strings.SplitN(platformStr, "-", 2)
	if len(parts) != 2 {
		return Platform{}, fmt.Errorf("invalid platform format: %s (expected os-arch)", platformStr)
	}
	return Platform{OS: parts[0], Arch: parts[1]}.Normalize(), nil
}

// Supported returns the platforms CUDA installers exist for.
func Supported() []Platform {
	return []Platform{
		{OS: OSLinux, Arch: ArchX86_64},
		{OS: OSLinux, Arch: ArchARM64},
		{OS: OSWindows, Arch: ArchX86_64},
	}
}

// Validate checks the platform against the supported matrix. Windows on
// ARM has no CUDA toolkit release.
func (p Platform) Validate() error {
	switch p.OS {
	case OSLinux, OSWindows:
	default:
		return &ErrUnsupportedOS{OS: p.OS}
	}

	switch p.Arch {
	case ArchX86_64, ArchARM64:
	default:
		return &ErrUnsupportedArch{Arch: p.Arch}
	}

	for _, s := range Supported() {
		if p == s {
			return nil
		}
	}
	return &ErrPlatformNotSupported{
		Platform:  p,
		Available: supportedStrings(),
	}
}

func supportedStrings() []string {
	supported := Supported()
	out := make([]string, len(supported))
	for i, p := range supported {
		out[i] = p.String()
	}
	return out
}

// Normalize converts OS and architecture aliases to their canonical forms.
func (p Platform) Normalize() Platform {
	return Platform{
		OS:   normalizeOS(p.OS),
		Arch: normalizeArch(p.Arch),
	}
}

func normalizeOS(os string) string {
	switch strings.ToLower(os) {
	case "win", "win32", "win64":
		return OSWindows
	default:
		return strings.ToLower(os)
	}
}

func normalizeArch(arch string) string {
	switch strings.ToLower(arch) {
	case "x86_64", "x64", "amd64":
		return ArchX86_64
	case "aarch64", "arm64", "sbsa", "arm64-sbsa":
		return ArchARM64
	default:
		return strings.ToLower(arch)
	}
}

// IsWindows returns true if the platform is Windows
func (p Platform) IsWindows() bool {
	return p.OS == OSWindows
}

// IsLinux returns true if the platform is Linux
func (p Platform) IsLinux() bool {
	return p.OS == OSLinux
}

// RepoArchDir returns the architecture directory name used in NVIDIA
// package repository paths.
func (p Platform) RepoArchDir() string {
	if p.Arch == ArchARM64 {
		return "sbsa"
	}
	return "x86_64"
}

// InstallerExtension returns the standalone installer extension for the
// platform.
func (p Platform) InstallerExtension() string {
	if p.IsWindows() {
		return ".exe"
	}
	return ".run"
}
