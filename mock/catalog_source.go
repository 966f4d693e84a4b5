// Package mock provides predictable test doubles for the version catalog.
package mock

import (
	"context"
)

// CatalogSource is a canned catalog source for testing.
type CatalogSource struct {
	name     string
	versions []string
	fetchErr error
}

// NewCatalogSource creates a mock source with the given name.
func NewCatalogSource(name string) *CatalogSource {
	return &CatalogSource{name: name}
}

// WithVersions sets the versions returned by FetchVersions.
func (s *CatalogSource) WithVersions(versions ...string) *CatalogSource {
	s.versions = versions
	return s
}

// WithFetchError makes FetchVersions fail.
func (s *CatalogSource) WithFetchError(err error) *CatalogSource {
	s.fetchErr = err
	return s
}

// Name implements catalog.Source.
func (s *CatalogSource) Name() string {
	return s.name
}

// FetchVersions implements catalog.Source.
func (s *CatalogSource) FetchVersions(ctx context.Context) ([]string, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.versions, nil
}
