// Package template renders the URL patterns used to reach NVIDIA's
// download endpoints. Patterns are gomplate templates so they stay data,
// not code, and support both Go template syntax and CEL expressions.
package template

import (
	"fmt"

	"github.com/flanksource/gomplate/v3"

	"github.com/mjun0812/setup-cuda/pkg/platform"
	"github.com/mjun0812/setup-cuda/pkg/version"
)

// Render renders a template string with gomplate.
func Render(templateStr string, data map[string]interface{}) (string, error) {
	result, err := gomplate.RunTemplate(data, gomplate.Template{
		Template: templateStr,
	})
	if err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}
	return result, nil
}

// RenderExpression evaluates a CEL expression with gomplate.
func RenderExpression(expression string, data map[string]interface{}) (string, error) {
	result, err := gomplate.RunTemplate(data, gomplate.Template{
		Expression: expression,
	})
	if err != nil {
		return "", fmt.Errorf("CEL expression execution failed: %w", err)
	}
	return result, nil
}

// URLData builds the template context shared by every download URL
// pattern: the normalized version and the platform's naming variants.
func URLData(ver string, p platform.Platform) map[string]interface{} {
	return map[string]interface{}{
		"version": version.Normalize(ver),
		"os":      p.OS,
		"arch":    p.Arch,
		"archDir": p.RepoArchDir(),
	}
}

// URL renders a download URL pattern for a version and platform, with any
// extra values merged on top of the standard context.
func URL(urlTemplate, ver string, p platform.Platform, extra map[string]interface{}) (string, error) {
	data := URLData(ver, p)
	for k, v := range extra {
		data[k] = v
	}
	return Render(urlTemplate, data)
}
