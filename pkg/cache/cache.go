// Package cache keeps downloaded installer artifacts between runs so a
// reinstall never re-downloads a multi-gigabyte file. Entries are keyed
// by a hash of the source URL, so two releases sharing a filename never
// collide. An empty cache directory disables every operation.
package cache

import (
	"crypto/md5"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDir returns the per-user installer cache directory.
func DefaultDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "setup-cuda")
}

// Path returns the cache location for a URL and filename.
// Format: {dir}/{url-hash}/{filename}
func Path(dir, url, filename string) string {
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, hashURL(url), filename)
}

// Lookup returns the cached path for a URL when an entry exists. When an
// MD5 digest is known the entry is verified first; a corrupt entry is
// removed and reported as a miss.
func Lookup(dir, url, filename, md5sum string) (string, bool) {
	path := Path(dir, url, filename)
	if path == "" {
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		return "", false
	}

	if md5sum != "" {
		actual, err := fileMD5(path)
		if err != nil || actual != strings.ToLower(strings.TrimSpace(md5sum)) {
			os.Remove(path)
			return "", false
		}
	}
	return path, true
}

// Store copies a downloaded file into the cache. A missing directory is
// created; failures leave no partial entry behind.
func Store(dir, url, sourcePath string) error {
	path := Path(dir, url, filepath.Base(sourcePath))
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := copyFile(sourcePath, path); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to copy into cache: %w", err)
	}
	return nil
}

// CopyOut copies a cached entry to dest.
func CopyOut(cachePath, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	if err := copyFile(cachePath, dest); err != nil {
		return fmt.Errorf("failed to copy from cache: %w", err)
	}
	return nil
}

// hashURL creates a short hash of a URL for directory naming.
func hashURL(url string) string {
	normalized := strings.TrimPrefix(url, "https://")
	normalized = strings.TrimPrefix(normalized, "http://")
	normalized = strings.TrimSuffix(normalized, "/")

	hash := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", hash[:8])
}

func fileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
