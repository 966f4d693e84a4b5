package catalog

import (
	"context"
	"fmt"
	"net/http"
	"regexp"

	setupcudahttp "github.com/mjun0812/setup-cuda/pkg/http"
	"github.com/mjun0812/setup-cuda/pkg/scrape"
	"github.com/mjun0812/setup-cuda/pkg/version"
)

const (
	// RedistURL lists one redistrib_<version>.json manifest per release.
	RedistURL = "https://developer.download.nvidia.com/compute/cuda/redist/"
	// ArchiveURL is the human-facing archive page naming every release.
	ArchiveURL = "https://developer.nvidia.com/cuda-toolkit-archive"
	// OpensourceURL lists one directory per release.
	OpensourceURL = "https://developer.download.nvidia.com/compute/cuda/opensource/"
)

// Source contributes candidate version strings to the catalog. Sources
// report raw strings; the builder normalizes, deduplicates and sorts.
type Source interface {
	Name() string
	FetchVersions(ctx context.Context) ([]string, error)
}

var redistFileRe = regexp.MustCompile(`^redistrib_(\d+\.\d+(?:\.\d+)?)\.json$`)

// redistSource reads the redistrib manifest listing. One JSON manifest
// exists per release from 11.4.2 onward.
type redistSource struct {
	client *http.Client
	url    string
}

// NewRedistSource scans a redist directory listing for manifest files.
func NewRedistSource(client *http.Client, url string) Source {
	return &redistSource{client: client, url: url}
}

func (s *redistSource) Name() string { return "redist" }

func (s *redistSource) FetchVersions(ctx context.Context) ([]string, error) {
	hrefs, err := scrape.FetchLinks(ctx, s.client, s.url)
	if err != nil {
		return nil, err
	}

	var versions []string
	for _, file := range scrape.Files(hrefs) {
		if m := redistFileRe.FindStringSubmatch(file); m != nil {
			versions = append(versions, m[1])
		}
	}
	return versions, nil
}

var (
	archiveLabelRe = regexp.MustCompile(`Toolkit\s+(\d+\.\d+(?:\.\d+)?)`)
	archiveSlugRe  = regexp.MustCompile(`cuda-(\d+)-(\d+)(?:-(\d+))?-`)
)

// archiveSource reads the toolkit archive page. Versions appear twice,
// as "CUDA Toolkit X.Y.Z" labels and as cuda-x-y-z- slugs inside the
// per-release links; the page has dropped one or the other across
// redesigns, so both are scanned and the union kept.
type archiveSource struct {
	client *http.Client
	url    string
}

// NewArchiveSource scans the toolkit archive page.
func NewArchiveSource(client *http.Client, url string) Source {
	return &archiveSource{client: client, url: url}
}

func (s *archiveSource) Name() string { return "archive" }

func (s *archiveSource) FetchVersions(ctx context.Context) ([]string, error) {
	body, err := setupcudahttp.FetchBody(ctx, s.client, s.url)
	if err != nil {
		return nil, err
	}

	var versions []string
	for _, m := range archiveLabelRe.FindAllStringSubmatch(string(body), -1) {
		versions = append(versions, m[1])
	}
	for _, m := range archiveSlugRe.FindAllStringSubmatch(string(body), -1) {
		v := fmt.Sprintf("%s.%s", m[1], m[2])
		if m[3] != "" {
			v = fmt.Sprintf("%s.%s", v, m[3])
		}
		versions = append(versions, v)
	}
	return versions, nil
}

// opensourceSource reads the opensource directory listing, which carries
// one version-named directory per release.
type opensourceSource struct {
	client *http.Client
	url    string
}

// NewOpensourceSource scans an opensource directory listing.
func NewOpensourceSource(client *http.Client, url string) Source {
	return &opensourceSource{client: client, url: url}
}

func (s *opensourceSource) Name() string { return "opensource" }

func (s *opensourceSource) FetchVersions(ctx context.Context) ([]string, error) {
	hrefs, err := scrape.FetchLinks(ctx, s.client, s.url)
	if err != nil {
		return nil, err
	}

	var versions []string
	for _, dir := range scrape.Dirs(hrefs) {
		if version.IsValid(dir) {
			versions = append(versions, dir)
		}
	}
	return versions, nil
}
