// internal/config/config.go
//
// This package handles the optional project file, .touban.yaml.
// A project without one runs on defaults: ./students.csv and the stock
// role labels.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// FileName is the project file looked up in the working directory.
	FileName = ".touban.yaml"

	// EnvConfigPath overrides the project file location.
	EnvConfigPath = "TOUBAN_CONFIG"

	// DefaultRosterPath is used when neither the command line nor the
	// project file names a roster.
	DefaultRosterPath = "./students.csv"

	defaultPrimaryLabel = "正担当"
	defaultBackupLabel  = "副担当"
)

const defaultProjectConfigYAML = `# touban project configuration
version: 1

# Roster used when no path is given on the command line.
# Relative paths resolve against this file's directory.
roster: students.csv

# Captions printed before the two picks.
labels:
  primary: 正担当
  backup: 副担当

# Append a line per draw to this file. Leave empty to disable.
log:
  path: ""
`

// Labels holds the role captions.
type Labels struct {
	Primary string `yaml:"primary"`
	Backup  string `yaml:"backup"`
}

// LogConfig points the logbook at a file.
type LogConfig struct {
	Path string `yaml:"path,omitempty"`
}

// ProjectConfig models .touban.yaml.
type ProjectConfig struct {
	Version int       `yaml:"version"`
	Roster  string    `yaml:"roster,omitempty"`
	Labels  Labels    `yaml:"labels"`
	Log     LogConfig `yaml:"log,omitempty"`
}

// Config holds the runtime configuration.
type Config struct {
	// Dir is the directory relative paths are resolved against: the
	// project file's directory, or the working directory without one.
	Dir string

	// Path is the project file that was read, empty when none was.
	Path string

	Project ProjectConfig
}

// Load reads the project file. explicit, then $TOUBAN_CONFIG, must name an
// existing file; otherwise dir/.touban.yaml is read when present.
func Load(dir, explicit string) (*Config, error) {
	cfg := &Config{Dir: dir, Project: defaultProjectConfig()}

	path := strings.TrimSpace(explicit)
	if path == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	required := path != ""
	if path == "" {
		path = filepath.Join(dir, FileName)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}

	if err := cfg.loadProjectConfig(path, required); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RosterPath returns the configured roster, or "" when none is configured.
func (c *Config) RosterPath() string {
	return c.Project.Roster
}

// Labels returns the configured role captions.
func (c *Config) Labels() Labels {
	return c.Project.Labels
}

// LogPath returns the logbook file, or "" when logging is off.
func (c *Config) LogPath() string {
	return c.Project.Log.Path
}

func (c *Config) loadProjectConfig(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	parsed := defaultProjectConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	c.Path = path
	c.Dir = filepath.Dir(path)
	parsed.applyDefaults()
	parsed.normalize(c.Dir)
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}

	c.Project = parsed
	return nil
}

func defaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Labels: Labels{
			Primary: defaultPrimaryLabel,
			Backup:  defaultBackupLabel,
		},
	}
}

func (pc *ProjectConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
}

func (pc *ProjectConfig) normalize(base string) {
	pc.Roster = resolvePath(base, pc.Roster)
	pc.Log.Path = resolvePath(base, pc.Log.Path)
	pc.Labels.Primary = strings.TrimSpace(pc.Labels.Primary)
	pc.Labels.Backup = strings.TrimSpace(pc.Labels.Backup)
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if pc.Labels.Primary == "" {
		return fmt.Errorf("labels.primary is required")
	}
	if pc.Labels.Backup == "" {
		return fmt.Errorf("labels.backup is required")
	}
	if pc.Labels.Primary == pc.Labels.Backup {
		return fmt.Errorf("labels.primary and labels.backup must differ")
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

// EnsureProjectConfig writes the commented template to dir/.touban.yaml
// unless a file is already there. It reports whether a file was written.
func EnsureProjectConfig(dir string) (string, bool, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return path, false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return path, false, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return path, false, fmt.Errorf("config: ensure dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultProjectConfigYAML), 0o644); err != nil {
		return path, false, fmt.Errorf("config: write %s: %w", path, err)
	}
	return path, true, nil
}
