package locator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/flanksource/commons/logger"

	"github.com/mjun0812/setup-cuda/pkg/distro"
	"github.com/mjun0812/setup-cuda/pkg/platform"
	"github.com/mjun0812/setup-cuda/pkg/scrape"
	"github.com/mjun0812/setup-cuda/pkg/version"
)

// Repository is a located native package repository: where to register it
// from and which toolkit package to install.
type Repository struct {
	Version string
	OsName  string
	// BaseURL is the arch-specific repository directory, e.g.
	// .../repos/ubuntu2204/x86_64/.
	BaseURL string
	// RegistrationFile registers the repository with the package manager:
	// a cuda-keyring .deb, a .pin preferences file, or a .repo file.
	RegistrationFile string
	RegistrationURL  string
	// Package is the package-manager install argument for the toolkit,
	// e.g. cuda-toolkit=12.4.1-1 or cuda-toolkit-12.4.1-1.
	Package string
	Family  distro.Family
}

// Repository locates the native package repository for a version on a
// Linux distribution: checks the distribution has a repository at all,
// walks its file listing, and picks the registration file and toolkit
// package per the distribution family's conventions.
func (l *Locator) Repository(ctx context.Context, ver string, d distro.Distro, p platform.Platform) (*Repository, error) {
	ver = version.Normalize(ver)
	if !p.IsLinux() {
		return nil, &ErrUnsupportedCombination{Version: ver, Platform: p}
	}

	family, err := distro.FamilyFor(d)
	if err != nil {
		return nil, err
	}
	osName := d.TargetOsName()

	rootLinks, err := scrape.FetchLinks(ctx, l.client, l.reposURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list package repositories: %w", err)
	}
	available := scrape.Dirs(rootLinks)
	sort.Strings(available)
	if !lo.Contains(available, osName) {
		return nil, &ErrRepositoryNotFound{OsName: osName, Available: available}
	}

	repoURL := l.reposURL + osName + "/" + p.RepoArchDir() + "/"
	logger.V(2).Infof("Scanning package repository %s", repoURL)

	repoLinks, err := scrape.FetchLinks(ctx, l.client, repoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to list package repository %s: %w", repoURL, err)
	}
	files := scrape.Files(repoLinks)

	registration, ok := distro.MatchNewest(family.RegistrationPatterns(), files)
	if !ok {
		return nil, &ErrRepositoryFileNotFound{Repo: repoURL, Patterns: family.RegistrationPatterns()}
	}

	prefixes := family.PackagePrefixes(ver)
	candidates := packageCandidates(prefixes, files)
	if len(candidates) == 0 {
		return nil, &ErrPackageNotFound{Repo: repoURL, Prefixes: prefixes}
	}
	chosen := family.SelectCandidate(candidates)
	logger.V(3).Infof("Selected package %s from %d candidates", chosen, len(candidates))

	return &Repository{
		Version:          ver,
		OsName:           osName,
		BaseURL:          repoURL,
		RegistrationFile: registration,
		RegistrationURL:  repoURL + registration,
		Package:          family.ExtractPackage(chosen),
		Family:           family,
	}, nil
}

// packageCandidates returns the filenames matching the first prefix that
// has any, sorted. Prefixes are in priority order, so a match on an
// earlier prefix shadows later ones.
func packageCandidates(prefixes []string, files []string) []string {
	for _, prefix := range prefixes {
		var matches []string
		for _, f := range files {
			if strings.HasPrefix(f, prefix) {
				matches = append(matches, f)
			}
		}
		if len(matches) > 0 {
			sort.Strings(matches)
			return matches
		}
	}
	return nil
}
