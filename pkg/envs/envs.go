// Package envs computes and renders the environment variable changes a
// CUDA toolkit installation needs: CUDA_PATH/CUDA_HOME, PATH entries and,
// on Linux, LD_LIBRARY_PATH entries.
package envs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mjun0812/setup-cuda/pkg/platform"
)

// Environment captures the variable changes needed to use a toolkit
// installed at a given root.
type Environment struct {
	// Vars are variables set to a fixed value (CUDA_PATH, CUDA_HOME).
	Vars map[string]string
	// Path holds directories prepended to PATH.
	Path []string
	// LibraryPath holds directories prepended to LD_LIBRARY_PATH.
	// Empty on Windows.
	LibraryPath []string
}

// ForRoot returns the environment for a toolkit installed at root.
func ForRoot(root string, p platform.Platform) Environment {
	env := Environment{
		Vars: map[string]string{
			"CUDA_PATH": root,
			"CUDA_HOME": root,
		},
		Path: []string{filepath.Join(root, "bin")},
	}

	if p.IsWindows() {
		// Windows installers place cudart and friends under lib\x64
		env.Path = append(env.Path, filepath.Join(root, "lib", "x64"))
	}

	if p.IsLinux() {
		env.LibraryPath = []string{filepath.Join(root, "lib64")}
	}

	return env
}

// ExportLines renders the environment as POSIX shell export statements,
// suitable for eval in the calling shell.
func (e Environment) ExportLines() []string {
	lines := make([]string, 0, len(e.Vars)+2)

	keys := make([]string, 0, len(e.Vars))
	for key := range e.Vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("export %s=\"%s\"", key, e.Vars[key]))
	}

	if len(e.Path) > 0 {
		lines = append(lines, fmt.Sprintf("export PATH=\"%s:$PATH\"", strings.Join(e.Path, ":")))
	}
	if len(e.LibraryPath) > 0 {
		lines = append(lines, fmt.Sprintf("export LD_LIBRARY_PATH=\"%s:$LD_LIBRARY_PATH\"", strings.Join(e.LibraryPath, ":")))
	}

	return lines
}

// PrintEnvs prints the environment as export lines on stdout
func PrintEnvs(e Environment) {
	for _, line := range e.ExportLines() {
		fmt.Println(line)
	}
}

// Apply mutates the current process environment.
func (e Environment) Apply() error {
	for key, value := range e.Vars {
		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	if len(e.Path) > 0 {
		if err := os.Setenv("PATH", prependList(e.Path, os.Getenv("PATH"))); err != nil {
			return fmt.Errorf("failed to set PATH: %w", err)
		}
	}
	if len(e.LibraryPath) > 0 {
		if err := os.Setenv("LD_LIBRARY_PATH", prependList(e.LibraryPath, os.Getenv("LD_LIBRARY_PATH"))); err != nil {
			return fmt.Errorf("failed to set LD_LIBRARY_PATH: %w", err)
		}
	}

	return nil
}

func prependList(entries []string, existing string) string {
	sep := string(os.PathListSeparator)
	value := strings.Join(entries, sep)
	if existing != "" {
		value += sep + existing
	}
	return value
}

// WriteGithubFiles appends the environment to the files named by the
// GITHUB_ENV and GITHUB_PATH variables. Outside GitHub Actions neither
// variable is set and the call is a no-op.
func (e Environment) WriteGithubFiles() error {
	if envFile := os.Getenv("GITHUB_ENV"); envFile != "" {
		lines := make([]string, 0, len(e.Vars)+1)

		keys := make([]string, 0, len(e.Vars))
		for key := range e.Vars {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			lines = append(lines, fmt.Sprintf("%s=%s", key, e.Vars[key]))
		}

		// GITHUB_ENV values are literal, so the current LD_LIBRARY_PATH
		// is expanded here rather than referenced.
		if len(e.LibraryPath) > 0 {
			lines = append(lines, fmt.Sprintf("LD_LIBRARY_PATH=%s", prependList(e.LibraryPath, os.Getenv("LD_LIBRARY_PATH"))))
		}

		if err := appendLines(envFile, lines); err != nil {
			return fmt.Errorf("failed to write %s: %w", envFile, err)
		}
	}

	if pathFile := os.Getenv("GITHUB_PATH"); pathFile != "" {
		if err := appendLines(pathFile, e.Path); err != nil {
			return fmt.Errorf("failed to write %s: %w", pathFile, err)
		}
	}

	return nil
}

func appendLines(path string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, line := range lines {
		if _, err := fmt.Fprintln(file, line); err != nil {
			return err
		}
	}
	return nil
}

// MergeToSystemEnvironment merges variables into /etc/environment
func MergeToSystemEnvironment(envs map[string]string) error {
	if os.Geteuid() != 0 {
		return fmt.Errorf("--system flag requires root privileges (run with sudo)")
	}

	envFilePath := "/etc/environment"

	// Read existing environment file
	existingEnvs := make(map[string]string)
	file, err := os.Open(envFilePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", envFilePath, err)
	}

	if err == nil {
		defer file.Close()
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			parts := strings.SplitN(line, "=", 2)
			if len(parts) == 2 {
				key := strings.TrimSpace(parts[0])
				value := strings.Trim(strings.TrimSpace(parts[1]), "\"")
				existingEnvs[key] = value
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to parse %s: %w", envFilePath, err)
		}
	}

	// Merge new environment variables
	for key, value := range envs {
		existingEnvs[key] = value
	}

	// Write back to /etc/environment
	tmpFile, err := os.CreateTemp("", "environment-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	writer := bufio.NewWriter(tmpFile)
	for key, value := range existingEnvs {
		if _, err := writer.WriteString(fmt.Sprintf("%s=%s\n", key, value)); err != nil {
			tmpFile.Close()
			return fmt.Errorf("failed to write to temp file: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to flush temp file: %w", err)
	}
	tmpFile.Close()

	// Move temp file to /etc/environment
	if err := os.Rename(tmpPath, envFilePath); err != nil {
		return fmt.Errorf("failed to update %s: %w", envFilePath, err)
	}

	if err := os.Chmod(envFilePath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions on %s: %w", envFilePath, err)
	}

	return nil
}
