package platform

import (
	"fmt"
	"strings"
)

// ErrUnsupportedOS indicates a host or requested OS outside {linux, windows}.
type ErrUnsupportedOS struct {
	OS string
}

func (e *ErrUnsupportedOS) Error() string {
	return fmt.Sprintf("unsupported operating system: %s (supported: linux, windows)", e.OS)
}

// ErrUnsupportedArch indicates an architecture CUDA is not published for.
type ErrUnsupportedArch struct {
	Arch string
}

func (e *ErrUnsupportedArch) Error() string {
	return fmt.Sprintf("unsupported architecture: %s (supported: x86_64, arm64)", e.Arch)
}

// ErrPlatformNotSupported indicates an OS/arch combination with no CUDA
// release, like windows-arm64.
type ErrPlatformNotSupported struct {
	Platform  Platform
	Available []string
}

func (e *ErrPlatformNotSupported) Error() string {
	return fmt.Sprintf("platform %s is not supported (available: %s)",
		e.Platform, strings.Join(e.Available, ", "))
}

// ErrUnparseableRelease indicates a Windows release string with fewer than
// three dotted components.
type ErrUnparseableRelease struct {
	Input string
}

func (e *ErrUnparseableRelease) Error() string {
	return fmt.Sprintf("unparseable Windows release %q: expected major.minor.build", e.Input)
}
