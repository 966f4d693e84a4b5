// Package download fetches installer artifacts with progress reporting
// and MD5 verification against NVIDIA's release manifests.
package download

import (
	"crypto/md5"
	"fmt"
	"hash"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/flanksource/clicky/task"

	"github.com/mjun0812/setup-cuda/pkg/checksum"
)

// createHTTPClient creates an HTTP client with redirect logging
func createHTTPClient(t *task.Task) *http.Client {
	return &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Allow up to 10 redirects (Go's default)
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects (limit: 10)")
			}

			if t != nil && len(via) > 0 {
				from := via[len(via)-1].URL.String()
				to := req.URL.String()
				t.Debugf("Following redirect: %s -> %s", from, to)
			}

			return nil
		},
	}
}

// Option is a functional option for configuring downloads
type Option func(*downloadConfig)

type downloadConfig struct {
	expectedMD5  string
	checksumURL  string
	skipProgress bool
}

// WithMD5 sets the expected hex md5 digest for verification.
func WithMD5(digest string) Option {
	return func(c *downloadConfig) {
		c.expectedMD5 = strings.ToLower(strings.TrimSpace(digest))
	}
}

// WithChecksumURL sets a manifest URL to fetch the digest from, keyed by
// the destination filename. Used when the caller knows the manifest but
// not the digest itself.
func WithChecksumURL(url string) Option {
	return func(c *downloadConfig) {
		c.checksumURL = strings.TrimSpace(url)
	}
}

// WithoutProgress disables progress tracking even if a task is provided
func WithoutProgress() Option {
	return func(c *downloadConfig) {
		c.skipProgress = true
	}
}

// ProgressReader wraps an io.Reader and reports progress
type ProgressReader struct {
	io.Reader
	total      int64
	current    int64
	task       *task.Task
	lastUpdate time.Time
	startTime  time.Time
}

func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.Reader.Read(p)
	pr.current += int64(n)

	// Update progress at most once per 100ms to avoid excessive updates
	now := time.Now()
	if now.Sub(pr.lastUpdate) >= 100*time.Millisecond {
		if pr.total > 0 {
			pr.task.SetProgress(int(pr.current), int(pr.total))

			elapsed := now.Sub(pr.startTime).Seconds()
			if elapsed > 0 {
				speed := float64(pr.current) / elapsed
				remaining := pr.total - pr.current
				eta := time.Duration(float64(remaining) / speed * float64(time.Second))

				pr.task.SetDescription(fmt.Sprintf("%s/%s (%.1f MB/s, ETA: %s)",
					formatBytes(pr.current),
					formatBytes(pr.total),
					speed/1024/1024,
					formatDuration(eta)))
			}
		} else {
			pr.task.SetDescription(fmt.Sprintf("Downloaded %s", formatBytes(pr.current)))
		}
		pr.lastUpdate = now
	}

	return n, err
}

// fetchDigest downloads a manifest and returns the digest listed for a
// filename.
func fetchDigest(checksumURL, filename string, t *task.Task) (string, bool, error) {
	if t != nil {
		t.Infof("Fetching checksums from %s", checksumURL)
	}

	client := createHTTPClient(t)
	resp, err := client.Get(checksumURL)
	if err != nil {
		return "", false, fmt.Errorf("failed to download checksum file %s: %w", checksumURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("checksum file not found at %s: status %d", checksumURL, resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("failed to read checksum file %s: %w", checksumURL, err)
	}

	digest, found := checksum.FindDigest(checksum.ParseManifest(content), filename)
	return digest, found, nil
}

// Download downloads a file to dest. The file lands atomically: it is
// written to a temp file and renamed only after the download, and any
// configured verification, succeeded.
func Download(url, dest string, t *task.Task, opts ...Option) error {
	config := &downloadConfig{}
	for _, opt := range opts {
		opt(config)
	}

	destDir := filepath.Dir(dest)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", destDir, err)
	}

	// The manifest digest is resolved before the transfer so a missing
	// manifest fails fast instead of after gigabytes.
	if config.expectedMD5 == "" && config.checksumURL != "" {
		digest, found, err := fetchDigest(config.checksumURL, filepath.Base(dest), t)
		if err != nil {
			return fmt.Errorf("failed to fetch checksum: %w", err)
		}
		if found {
			config.expectedMD5 = strings.ToLower(digest)
		} else if t != nil {
			t.Infof("No digest listed for %s, skipping verification", filepath.Base(dest))
		}
	}

	tempFile := dest + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("failed to create temp file %s: %w", tempFile, err)
	}
	defer func() {
		out.Close()
		if _, err := os.Stat(tempFile); err == nil {
			os.Remove(tempFile)
		}
	}()

	if t != nil {
		t.Debugf("Downloading from %s to %s", url, dest)
	}

	client := createHTTPClient(t)
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to download from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if t != nil {
		t.Debugf("Download: HTTP %d for %s (Content-Length: %d)", resp.StatusCode, url, resp.ContentLength)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: HTTP %d %s for %s", resp.StatusCode, resp.Status, url)
	}

	var reader io.Reader = resp.Body
	var writer io.Writer = out
	var hasher hash.Hash

	if config.expectedMD5 != "" {
		hasher = md5.New()
		writer = io.MultiWriter(writer, hasher)
	}

	if t != nil && !config.skipProgress {
		reader = &ProgressReader{
			Reader:     resp.Body,
			total:      resp.ContentLength,
			task:       t,
			startTime:  time.Now(),
			lastUpdate: time.Now(),
		}
	}

	written, err := io.Copy(writer, reader)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}

	// Close the temp file before verification/rename
	out.Close()

	if hasher != nil {
		actual := fmt.Sprintf("%x", hasher.Sum(nil))
		if actual != config.expectedMD5 {
			return fmt.Errorf("checksum mismatch for %s: expected md5:%s, got md5:%s",
				filepath.Base(dest), config.expectedMD5, actual)
		}
		if t != nil {
			t.Infof("Checksum verified: md5:%s...", actual[:8])
		}
	}

	if err := os.Rename(tempFile, dest); err != nil {
		return fmt.Errorf("failed to move temp file to destination: %w", err)
	}

	if t != nil {
		t.SetDescription(fmt.Sprintf("%s (%s)", filepath.Base(dest), formatBytes(written)))
	}

	return nil
}

// formatBytes formats bytes into human-readable format
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatDuration formats duration into human-readable format
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1fm", d.Minutes())
	}
	return fmt.Sprintf("%.1fh", d.Hours())
}
