package download

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	payload    = "cuda installer payload"
	payloadMD5 = "5415a60b76d961d7ee221c72a2508aaa"
)

func newFileServer(t *testing.T, files map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDownload(t *testing.T) {
	server := newFileServer(t, map[string]string{
		"/cuda_12.4.1_550.54.15_linux.run": payload,
	})

	dest := filepath.Join(t.TempDir(), "cuda_12.4.1_550.54.15_linux.run")
	err := Download(server.URL+"/cuda_12.4.1_550.54.15_linux.run", dest, nil)
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, string(got))

	_, err = os.Stat(dest + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be cleaned up")
}

func TestDownloadNotFound(t *testing.T) {
	server := newFileServer(t, map[string]string{})

	dest := filepath.Join(t.TempDir(), "missing.run")
	err := Download(server.URL+"/missing.run", dest, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "destination should not exist after failed download")
}

func TestDownloadCreatesDestinationDir(t *testing.T) {
	server := newFileServer(t, map[string]string{
		"/installer.run": payload,
	})

	dest := filepath.Join(t.TempDir(), "nested", "dir", "installer.run")
	err := Download(server.URL+"/installer.run", dest, nil)
	require.NoError(t, err)

	_, err = os.Stat(dest)
	assert.NoError(t, err)
}

func TestDownloadWithMD5(t *testing.T) {
	server := newFileServer(t, map[string]string{
		"/installer.run": payload,
	})

	t.Run("digest matches", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "installer.run")
		err := Download(server.URL+"/installer.run", dest, nil, WithMD5(payloadMD5))
		require.NoError(t, err)

		got, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, payload, string(got))
	})

	t.Run("digest is case insensitive", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "installer.run")
		err := Download(server.URL+"/installer.run", dest, nil, WithMD5("5415A60B76D961D7EE221C72A2508AAA"))
		require.NoError(t, err)
	})

	t.Run("digest mismatch", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "installer.run")
		err := Download(server.URL+"/installer.run", dest, nil, WithMD5("00000000000000000000000000000000"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "checksum mismatch for installer.run")
		assert.Contains(t, err.Error(), payloadMD5)

		_, statErr := os.Stat(dest)
		assert.True(t, os.IsNotExist(statErr), "destination should not exist after checksum failure")
		_, statErr = os.Stat(dest + ".tmp")
		assert.True(t, os.IsNotExist(statErr), "temp file should be cleaned up after checksum failure")
	})
}

func TestDownloadWithChecksumURL(t *testing.T) {
	manifest := fmt.Sprintf("%s  cuda_12.4.1_550.54.15_linux.run\nabad1dea00000000000000000000dead  cuda_12.4.1_551.78_windows.exe\n", payloadMD5)
	server := newFileServer(t, map[string]string{
		"/cuda_12.4.1_550.54.15_linux.run": payload,
		"/other.run":                       payload,
		"/md5sum.txt":                      manifest,
	})

	t.Run("digest found in manifest", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "cuda_12.4.1_550.54.15_linux.run")
		err := Download(server.URL+"/cuda_12.4.1_550.54.15_linux.run", dest, nil,
			WithChecksumURL(server.URL+"/md5sum.txt"))
		require.NoError(t, err)

		got, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Equal(t, payload, string(got))
	})

	t.Run("digest missing from manifest skips verification", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "other.run")
		err := Download(server.URL+"/other.run", dest, nil,
			WithChecksumURL(server.URL+"/md5sum.txt"))
		require.NoError(t, err)
	})

	t.Run("manifest not found fails before transfer", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "cuda_12.4.1_550.54.15_linux.run")
		err := Download(server.URL+"/cuda_12.4.1_550.54.15_linux.run", dest, nil,
			WithChecksumURL(server.URL+"/nope.txt"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "checksum")

		_, statErr := os.Stat(dest)
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("explicit digest wins over manifest", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "cuda_12.4.1_550.54.15_linux.run")
		err := Download(server.URL+"/cuda_12.4.1_550.54.15_linux.run", dest, nil,
			WithMD5(payloadMD5),
			WithChecksumURL(server.URL+"/nope.txt"))
		require.NoError(t, err)
	})
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatBytes(tt.bytes))
	}
}
