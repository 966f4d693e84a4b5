package locator

import (
	"context"
	"net/http"
	"regexp"

	"github.com/mjun0812/setup-cuda/pkg/checksum"
	setupcudahttp "github.com/mjun0812/setup-cuda/pkg/http"
)

// fetchManifest downloads and parses a release checksum manifest.
func fetchManifest(ctx context.Context, client *http.Client, url string) ([]checksum.Entry, error) {
	body, err := setupcudahttp.FetchBody(ctx, client, url)
	if err != nil {
		return nil, err
	}
	return checksum.ParseManifest(body), nil
}

// findEntry returns the first entry whose filename matches any of the
// patterns, trying patterns in order.
func findEntry(entries []checksum.Entry, patterns []*regexp.Regexp) (checksum.Entry, bool) {
	for _, re := range patterns {
		for _, entry := range entries {
			if re.MatchString(entry.Filename) {
				return entry, true
			}
		}
	}
	return checksum.Entry{}, false
}
