// Package catalog discovers the set of released CUDA toolkit versions.
// Three NVIDIA endpoints are scraped concurrently and their results
// unioned with a pinned legacy list, so that any single endpoint going
// away or changing shape degrades coverage instead of failing the build.
package catalog

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"github.com/mjun0812/setup-cuda/pkg/config"
	setupcudahttp "github.com/mjun0812/setup-cuda/pkg/http"
	"github.com/mjun0812/setup-cuda/pkg/version"
)

const defaultTimeout = 30 * time.Second

// Builder assembles the version catalog.
type Builder struct {
	client  *http.Client
	sources []Source
	legacy  []string
}

// Option configures a Builder.
type Option func(*Builder)

// WithClient sets the HTTP client shared by the default sources.
func WithClient(client *http.Client) Option {
	return func(b *Builder) {
		b.client = client
	}
}

// WithSources replaces the default sources.
func WithSources(sources ...Source) Option {
	return func(b *Builder) {
		b.sources = sources
	}
}

// WithLegacy replaces the pinned legacy versions merged into every build.
func WithLegacy(versions ...string) Option {
	return func(b *Builder) {
		b.legacy = versions
	}
}

// New returns a Builder over the three NVIDIA endpoints and the embedded
// legacy list, unless options substitute their own.
func New(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		opt(b)
	}

	if b.client == nil {
		b.client = setupcudahttp.GetHttpClient(setupcudahttp.WithTimeout(defaultTimeout))
	}
	if len(b.sources) == 0 {
		b.sources = []Source{
			NewRedistSource(b.client, RedistURL),
			NewArchiveSource(b.client, ArchiveURL),
			NewOpensourceSource(b.client, OpensourceURL),
		}
	}
	if b.legacy == nil {
		overrides, err := config.Default()
		if err != nil {
			log.Warnf("Failed to load pinned legacy versions: %v", err)
		} else {
			b.legacy = overrides.LegacyVersions()
		}
	}
	return b
}

// Build fetches every source concurrently and returns the merged catalog,
// normalized, deduplicated and sorted ascending. A failing source logs a
// warning and contributes nothing; the pinned legacy versions are always
// present, so the result is never empty.
func (b *Builder) Build(ctx context.Context) []string {
	seen := make(map[string]struct{})
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, src := range b.sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()

			versions, err := src.FetchVersions(ctx)
			if err != nil {
				log.Warnf("Failed to fetch CUDA versions from %s source: %v", src.Name(), err)
				return
			}
			log.Debugf("Source %s contributed %d versions", src.Name(), len(versions))

			mu.Lock()
			defer mu.Unlock()
			for _, v := range versions {
				seen[v] = struct{}{}
			}
		}(src)
	}
	wg.Wait()

	for _, v := range b.legacy {
		seen[v] = struct{}{}
	}

	catalog := make([]string, 0, len(seen))
	for v := range seen {
		normalized := version.Normalize(v)
		if !version.IsValid(normalized) {
			continue
		}
		if version.Compare(normalized, version.Floor) < 0 {
			continue
		}
		catalog = append(catalog, normalized)
	}
	catalog = lo.Uniq(catalog)
	version.Sort(catalog)
	return catalog
}
