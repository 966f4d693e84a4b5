// Package verify probes installed CUDA compilers. It discovers nvcc
// binaries, extracts the toolkit release they report and matches it
// against a version request.
package verify

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/mjun0812/setup-cuda/pkg/platform"
	"github.com/mjun0812/setup-cuda/pkg/version"
)

// Compiler is a probed nvcc binary.
type Compiler struct {
	Path    string
	Release string
}

// CompilerPath returns the nvcc path under an install root.
func CompilerPath(root string, p platform.Platform) string {
	name := "nvcc"
	if p.IsWindows() {
		name = "nvcc.exe"
	}
	return filepath.Join(root, "bin", name)
}

// Discover returns candidate nvcc paths: the one in PATH first, then one
// per install root, deduplicated.
func Discover(p platform.Platform, roots ...string) []string {
	name := "nvcc"
	if p.IsWindows() {
		name = "nvcc.exe"
	}

	var candidates []string
	seen := make(map[string]struct{})
	add := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		candidates = append(candidates, path)
	}

	if path, err := exec.LookPath(name); err == nil {
		add(path)
	}
	for _, root := range roots {
		path := CompilerPath(root, p)
		if _, err := os.Stat(path); err == nil {
			add(path)
		}
	}
	return candidates
}

// Probe runs an nvcc binary and extracts the toolkit release it belongs
// to from its version banner.
func Probe(path string) (Compiler, error) {
	out, err := exec.Command(path, "--version").CombinedOutput()
	if err != nil {
		return Compiler{}, fmt.Errorf("%s failed: %w", path, err)
	}

	release, err := version.ExtractFromOutput(string(out), "")
	if err != nil {
		return Compiler{}, fmt.Errorf("unrecognized nvcc output from %s: %w", path, err)
	}

	return Compiler{Path: path, Release: release}, nil
}

// Matches reports whether a probed release satisfies a version request.
// nvcc release banners only carry major.minor, so a full release request
// like 12.4.1 is matched on its major.minor.
func Matches(release, request string) bool {
	want := request
	if v, err := version.Parse(version.Normalize(request)); err == nil {
		want = v.MajorMinor()
	}
	_, ok, err := version.Resolve(want, []string{release})
	return err == nil && ok
}
