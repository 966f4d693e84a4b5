package installer

import (
	"fmt"
	"strings"
)

// ErrInstallationFailed reports a failed install: either a command exited
// non-zero or the expected install root never appeared. LogTail carries
// the end of the NVIDIA installer log when one was found.
type ErrInstallationFailed struct {
	Version string
	Path    string
	Cmd     string
	LogTail string
	Err     error
}

func (e *ErrInstallationFailed) Error() string {
	var b strings.Builder
	if e.Cmd != "" {
		fmt.Fprintf(&b, "CUDA %s installation failed running %s", e.Version, e.Cmd)
	} else {
		fmt.Fprintf(&b, "CUDA %s installation failed: install root %s was not created", e.Version, e.Path)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if e.LogTail != "" {
		fmt.Fprintf(&b, "\ninstaller log tail:\n%s", e.LogTail)
	}
	return b.String()
}

func (e *ErrInstallationFailed) Unwrap() error { return e.Err }
