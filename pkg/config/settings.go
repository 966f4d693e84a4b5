package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mjun0812/setup-cuda/pkg/platform"
	"gopkg.in/yaml.v3"
)

const (
	// SettingsFile is the optional per-project configuration file.
	SettingsFile = "setup-cuda.yaml"

	DefaultMethod       = "auto"
	DefaultFetchTimeout = 30 * time.Second
)

// Duration accepts "30s" style YAML values.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Settings are tool-level defaults that flags override.
type Settings struct {
	// Method selects the installation flow: auto, network or local.
	Method string `yaml:"method,omitempty"`
	// WorkDir is where installers are downloaded. Empty means a temporary
	// directory per run.
	WorkDir string `yaml:"work_dir,omitempty"`
	// FetchTimeout bounds catalog and manifest fetches. Downloads stream
	// without an overall deadline.
	FetchTimeout Duration `yaml:"fetch_timeout,omitempty"`
	// Platform overrides host detection, mirroring the --os/--arch flags.
	Platform platform.Platform `yaml:"platform,omitempty"`
}

// LoadSettings reads a settings file. The default file is optional; an
// explicitly requested path must exist.
func LoadSettings(path string) (*Settings, error) {
	explicit := path != ""
	if !explicit {
		path = SettingsFile
	}

	settings := &Settings{
		Method:       DefaultMethod,
		FetchTimeout: Duration(DefaultFetchTimeout),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	if settings.Method == "" {
		settings.Method = DefaultMethod
	}
	if settings.FetchTimeout <= 0 {
		settings.FetchTimeout = Duration(DefaultFetchTimeout)
	}
	if settings.WorkDir != "" && !filepath.IsAbs(settings.WorkDir) {
		if abs, err := filepath.Abs(settings.WorkDir); err == nil {
			settings.WorkDir = abs
		}
	}

	return settings, nil
}
