package version

import (
	"fmt"

	"github.com/flanksource/gomplate/v3"
)

// ApplyVersionExpr filters a version list with a CEL expression evaluated
// once per version. The expression sees:
//   - version: the full version string ("12.4.1")
//   - major, minor, patch: integer components (missing patch is 0)
//
// A result of "true" keeps the version, anything else drops it:
//
//	version.startsWith("12")
//	major >= 11 && minor < 4
func ApplyVersionExpr(versions []string, expr string) ([]string, error) {
	if expr == "" {
		return versions, nil
	}

	var filtered []string
	for _, s := range versions {
		v, err := Parse(s)
		if err != nil {
			continue
		}

		data := map[string]interface{}{
			"version": s,
			"major":   v.Major,
			"minor":   v.Minor,
			"patch":   v.Patch,
		}

		evaluated, err := gomplate.RunTemplate(data, gomplate.Template{
			Expression: expr,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate version expression for %s: %w", s, err)
		}

		if evaluated == "true" {
			filtered = append(filtered, s)
		}
	}

	return filtered, nil
}

// ValidateVersionExpr checks an expression against a sample version without
// applying it.
func ValidateVersionExpr(expr string) error {
	if expr == "" {
		return nil
	}

	data := map[string]interface{}{
		"version": "12.4.1",
		"major":   12,
		"minor":   4,
		"patch":   1,
	}

	if _, err := gomplate.RunTemplate(data, gomplate.Template{Expression: expr}); err != nil {
		return fmt.Errorf("invalid version expression: %w", err)
	}
	return nil
}
