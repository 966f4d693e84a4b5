package envs

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/mjun0812/setup-cuda/pkg/platform"
)

func TestForRoot(t *testing.T) {
	tests := []struct {
		name        string
		root        string
		platform    platform.Platform
		wantPath    []string
		wantLibrary []string
	}{
		{
			name:        "linux x86_64",
			root:        "/usr/local/cuda-12.4",
			platform:    platform.Platform{OS: platform.OSLinux, Arch: platform.ArchX86_64},
			wantPath:    []string{filepath.Join("/usr/local/cuda-12.4", "bin")},
			wantLibrary: []string{filepath.Join("/usr/local/cuda-12.4", "lib64")},
		},
		{
			name:        "linux arm64",
			root:        "/usr/local/cuda-12.4",
			platform:    platform.Platform{OS: platform.OSLinux, Arch: platform.ArchARM64},
			wantPath:    []string{filepath.Join("/usr/local/cuda-12.4", "bin")},
			wantLibrary: []string{filepath.Join("/usr/local/cuda-12.4", "lib64")},
		},
		{
			name:     "windows adds lib x64 and skips library path",
			root:     `C:\CUDA\v12.4`,
			platform: platform.Platform{OS: platform.OSWindows, Arch: platform.ArchX86_64},
			wantPath: []string{
				filepath.Join(`C:\CUDA\v12.4`, "bin"),
				filepath.Join(`C:\CUDA\v12.4`, "lib", "x64"),
			},
			wantLibrary: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := ForRoot(tt.root, tt.platform)

			if env.Vars["CUDA_PATH"] != tt.root {
				t.Errorf("CUDA_PATH = %s, expected %s", env.Vars["CUDA_PATH"], tt.root)
			}
			if env.Vars["CUDA_HOME"] != tt.root {
				t.Errorf("CUDA_HOME = %s, expected %s", env.Vars["CUDA_HOME"], tt.root)
			}
			if !reflect.DeepEqual(env.Path, tt.wantPath) {
				t.Errorf("Path = %v, expected %v", env.Path, tt.wantPath)
			}
			if !reflect.DeepEqual(env.LibraryPath, tt.wantLibrary) {
				t.Errorf("LibraryPath = %v, expected %v", env.LibraryPath, tt.wantLibrary)
			}
		})
	}
}

func TestExportLines(t *testing.T) {
	env := Environment{
		Vars: map[string]string{
			"CUDA_PATH": "/usr/local/cuda-12.4",
			"CUDA_HOME": "/usr/local/cuda-12.4",
		},
		Path:        []string{"/usr/local/cuda-12.4/bin"},
		LibraryPath: []string{"/usr/local/cuda-12.4/lib64"},
	}

	expected := []string{
		`export CUDA_HOME="/usr/local/cuda-12.4"`,
		`export CUDA_PATH="/usr/local/cuda-12.4"`,
		`export PATH="/usr/local/cuda-12.4/bin:$PATH"`,
		`export LD_LIBRARY_PATH="/usr/local/cuda-12.4/lib64:$LD_LIBRARY_PATH"`,
	}

	lines := env.ExportLines()
	if !reflect.DeepEqual(lines, expected) {
		t.Errorf("ExportLines() = %v, expected %v", lines, expected)
	}
}

func TestExportLinesWindows(t *testing.T) {
	env := ForRoot(`C:\CUDA\v12.4`, platform.Platform{OS: platform.OSWindows, Arch: platform.ArchX86_64})

	for _, line := range env.ExportLines() {
		if strings.Contains(line, "LD_LIBRARY_PATH") {
			t.Errorf("windows environment should not export LD_LIBRARY_PATH, got %s", line)
		}
	}
}

func TestApply(t *testing.T) {
	t.Setenv("PATH", "/usr/bin")
	t.Setenv("LD_LIBRARY_PATH", "/usr/lib")
	t.Setenv("CUDA_PATH", "")
	t.Setenv("CUDA_HOME", "")

	env := Environment{
		Vars: map[string]string{
			"CUDA_PATH": "/usr/local/cuda-12.4",
			"CUDA_HOME": "/usr/local/cuda-12.4",
		},
		Path:        []string{"/usr/local/cuda-12.4/bin"},
		LibraryPath: []string{"/usr/local/cuda-12.4/lib64"},
	}

	if err := env.Apply(); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	sep := string(os.PathListSeparator)
	if got := os.Getenv("PATH"); got != "/usr/local/cuda-12.4/bin"+sep+"/usr/bin" {
		t.Errorf("PATH = %s", got)
	}
	if got := os.Getenv("LD_LIBRARY_PATH"); got != "/usr/local/cuda-12.4/lib64"+sep+"/usr/lib" {
		t.Errorf("LD_LIBRARY_PATH = %s", got)
	}
	if got := os.Getenv("CUDA_HOME"); got != "/usr/local/cuda-12.4" {
		t.Errorf("CUDA_HOME = %s", got)
	}
}

func TestApplyEmptyExistingPath(t *testing.T) {
	t.Setenv("LD_LIBRARY_PATH", "")

	env := Environment{
		Vars:        map[string]string{},
		LibraryPath: []string{"/usr/local/cuda-12.4/lib64"},
	}

	if err := env.Apply(); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := os.Getenv("LD_LIBRARY_PATH"); got != "/usr/local/cuda-12.4/lib64" {
		t.Errorf("LD_LIBRARY_PATH = %s, expected no trailing separator", got)
	}
}

func TestWriteGithubFiles(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "github_env")
	pathFile := filepath.Join(dir, "github_path")

	t.Setenv("GITHUB_ENV", envFile)
	t.Setenv("GITHUB_PATH", pathFile)
	t.Setenv("LD_LIBRARY_PATH", "/usr/lib")

	env := Environment{
		Vars: map[string]string{
			"CUDA_PATH": "/usr/local/cuda-12.4",
			"CUDA_HOME": "/usr/local/cuda-12.4",
		},
		Path:        []string{"/usr/local/cuda-12.4/bin"},
		LibraryPath: []string{"/usr/local/cuda-12.4/lib64"},
	}

	if err := env.WriteGithubFiles(); err != nil {
		t.Fatalf("WriteGithubFiles() error = %v", err)
	}

	envContent, err := os.ReadFile(envFile)
	if err != nil {
		t.Fatalf("failed to read env file: %v", err)
	}
	sep := string(os.PathListSeparator)
	wantEnv := "CUDA_HOME=/usr/local/cuda-12.4\n" +
		"CUDA_PATH=/usr/local/cuda-12.4\n" +
		"LD_LIBRARY_PATH=/usr/local/cuda-12.4/lib64" + sep + "/usr/lib\n"
	if string(envContent) != wantEnv {
		t.Errorf("GITHUB_ENV content = %q, expected %q", envContent, wantEnv)
	}

	pathContent, err := os.ReadFile(pathFile)
	if err != nil {
		t.Fatalf("failed to read path file: %v", err)
	}
	if string(pathContent) != "/usr/local/cuda-12.4/bin\n" {
		t.Errorf("GITHUB_PATH content = %q", pathContent)
	}
}

func TestWriteGithubFilesAppends(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, "github_env")
	if err := os.WriteFile(envFile, []byte("EXISTING=1\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GITHUB_ENV", envFile)
	t.Setenv("GITHUB_PATH", "")

	env := Environment{Vars: map[string]string{"CUDA_HOME": "/opt/cuda"}}
	if err := env.WriteGithubFiles(); err != nil {
		t.Fatalf("WriteGithubFiles() error = %v", err)
	}

	content, err := os.ReadFile(envFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "EXISTING=1\nCUDA_HOME=/opt/cuda\n" {
		t.Errorf("GITHUB_ENV content = %q", content)
	}
}

func TestWriteGithubFilesOutsideActions(t *testing.T) {
	t.Setenv("GITHUB_ENV", "")
	t.Setenv("GITHUB_PATH", "")

	env := ForRoot("/usr/local/cuda-12.4", platform.Platform{OS: platform.OSLinux, Arch: platform.ArchX86_64})
	if err := env.WriteGithubFiles(); err != nil {
		t.Errorf("WriteGithubFiles() outside GitHub Actions should be a no-op, got %v", err)
	}
}
