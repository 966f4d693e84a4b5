package distro

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrMissingReleaseFile indicates /etc/os-release (or the configured
// override) does not exist.
type ErrMissingReleaseFile struct {
	Path string
}

func (e *ErrMissingReleaseFile) Error() string {
	return fmt.Sprintf("cannot detect Linux distribution: %s not found", e.Path)
}

// ErrUnresolvedDistribution indicates an os-release file without an ID key.
type ErrUnresolvedDistribution struct {
	Path string
}

func (e *ErrUnresolvedDistribution) Error() string {
	return fmt.Sprintf("cannot resolve Linux distribution: no ID entry in %s", e.Path)
}

// ErrUnsupportedDistribution indicates a distribution outside the Debian
// and Fedora families.
type ErrUnsupportedDistribution struct {
	ID         string
	Supported  []string
	Suggestion string
}

func newUnsupportedDistribution(id string) *ErrUnsupportedDistribution {
	supported := make([]string, 0, len(familyByID))
	for known := range familyByID {
		supported = append(supported, known)
	}
	sort.Strings(supported)

	return &ErrUnsupportedDistribution{
		ID:         id,
		Supported:  supported,
		Suggestion: suggestDistribution(id, supported),
	}
}

func (e *ErrUnsupportedDistribution) Error() string {
	msg := fmt.Sprintf("unsupported Linux distribution %q (supported: %s)",
		e.ID, strings.Join(e.Supported, ", "))
	if e.Suggestion != "" {
		msg += fmt.Sprintf("\n\nDid you mean: %s?", e.Suggestion)
	}
	return msg
}

// suggestDistribution finds the closest known distribution id within a
// small edit distance.
func suggestDistribution(id string, known []string) string {
	const maxDistance = 2

	best := ""
	bestDist := maxDistance + 1
	for _, candidate := range known {
		if d := levenshtein.ComputeDistance(strings.ToLower(id), candidate); d < bestDist {
			bestDist = d
			best = candidate
		}
	}
	return best
}
