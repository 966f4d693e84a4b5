package version

import (
	"errors"
	"fmt"
	"strings"
)

// Latest is the request string that resolves to the newest catalog entry.
const Latest = "latest"

// Resolve maps a user request onto the catalog of published versions.
//
// "latest" resolves to the newest entry. Any other request matches catalog
// entries that equal it or extend it with further components ("11.0"
// matches both 11.0 and 11.0.1), and the newest match wins. A request
// nothing matches reports ok=false rather than an error: the version may
// simply not exist yet.
func Resolve(request string, available []string) (string, bool, error) {
	request = strings.TrimSpace(request)

	if request == Latest {
		if len(available) == 0 {
			return "", false, ErrNoVersionsAvailable
		}
		return newest(available), true, nil
	}

	var best string
	for _, v := range available {
		if v != request && !strings.HasPrefix(v, request+".") {
			continue
		}
		if best == "" || Compare(v, best) > 0 {
			best = v
		}
	}
	if best == "" {
		return "", false, nil
	}
	return best, true, nil
}

func newest(versions []string) string {
	best := versions[0]
	for _, v := range versions[1:] {
		if Compare(v, best) > 0 {
			best = v
		}
	}
	return best
}

// EnhanceNotFound builds a user-facing error for a request that no catalog
// entry matched, listing recent versions and the closest match.
func EnhanceNotFound(request string, available []string) error {
	if len(available) == 0 {
		return fmt.Errorf("CUDA version %s not found: %w", request, ErrNoVersionsAvailable)
	}

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("CUDA version %s not found\n\n", request))
	msg.WriteString(fmt.Sprintf("Available versions (%d total):\n", len(available)))

	maxVersions := 10
	for i, shown := len(available)-1, 0; i >= 0 && shown < maxVersions; i, shown = i-1, shown+1 {
		msg.WriteString(fmt.Sprintf("  %s\n", available[i]))
	}
	if len(available) > maxVersions {
		msg.WriteString(fmt.Sprintf("  ... and %d more versions\n", len(available)-maxVersions))
	}

	if suggestion := SuggestClosest(request, available); suggestion != "" {
		msg.WriteString(fmt.Sprintf("\nDid you mean: %s?", suggestion))
	}

	return errors.New(msg.String())
}

// SuggestClosest finds the available version nearest to the requested one.
// Requests that do not parse, or whose major was never released, suggest
// the newest version instead of an arbitrary neighbor.
func SuggestClosest(request string, available []string) string {
	if len(available) == 0 {
		return ""
	}

	req, err := Parse(request)
	if err != nil {
		return newest(available)
	}

	var closest string
	minDiff := ^uint64(0)
	for _, s := range available {
		v, err := Parse(s)
		if err != nil {
			continue
		}
		if diff := versionDiff(req, v); diff < minDiff {
			minDiff = diff
			closest = s
		}
	}

	if closest != "" {
		return closest
	}
	return newest(available)
}

// versionDiff scores the distance between two versions. Major mismatches
// score maximal so they never win over a same-major neighbor.
func versionDiff(a, b Version) uint64 {
	if a.Major != b.Major {
		return ^uint64(0)
	}
	return uint64(abs(a.Minor-b.Minor))*1000 + uint64(abs(a.Patch-b.Patch))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
