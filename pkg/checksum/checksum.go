// Package checksum parses NVIDIA's md5sum.txt release manifests and
// verifies downloaded installers against them.
package checksum

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Entry is one line of a release manifest.
type Entry struct {
	MD5      string
	Filename string
}

// Manifest lines are "<hex digest>  <filename>". Blank lines and comments
// are tolerated.
var lineRe = regexp.MustCompile(`^([a-fA-F0-9]+)\s+(.+)$`)

// ParseManifest scans manifest content into entries, preserving order.
func ParseManifest(content []byte) []Entry {
	var entries []Entry

	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if m := lineRe.FindStringSubmatch(line); m != nil {
			entries = append(entries, Entry{MD5: m[1], Filename: m[2]})
		}
	}
	return entries
}

// FindDigest returns the digest listed for a filename. Manifest entries
// occasionally carry a path prefix, so suffix matches count too.
func FindDigest(entries []Entry, filename string) (string, bool) {
	for _, entry := range entries {
		if entry.Filename == filename || strings.HasSuffix(entry.Filename, "/"+filename) {
			return entry.MD5, true
		}
	}
	return "", false
}

// MD5File computes the hex md5 digest of a file.
func MD5File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer f.Close()

	hasher := md5.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// Verify compares a file against an expected hex md5 digest.
func Verify(path, expected string) error {
	actual, err := MD5File(path)
	if err != nil {
		return fmt.Errorf("failed to calculate checksum: %w", err)
	}

	if !strings.EqualFold(actual, expected) {
		return fmt.Errorf("checksum mismatch for file %s: expected md5:%s, got md5:%s",
			filepath.Base(path), strings.ToLower(expected), actual)
	}
	return nil
}
