// Package config provides configuration file parsing for qacapture.
//
// Values come from, lowest priority first: built-in defaults, the YAML
// file, a .env file beside it or in the working directory, and QACAPTURE_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Folder layouts for new test records.
const (
	LayoutFlat         = "flat"
	LayoutHierarchical = "hierarchical"
)

// Environment variables.
const (
	EnvConfig    = "QACAPTURE_CONFIG"
	EnvRoot      = "QACAPTURE_ROOT"
	EnvDataDir   = "QACAPTURE_DATA_DIR"
	EnvLayout    = "QACAPTURE_LAYOUT"
	EnvCursor    = "QACAPTURE_CURSOR"
	EnvClipboard = "QACAPTURE_CLIPBOARD"
	EnvCleanup   = "QACAPTURE_CLEANUP_ON_START"
	EnvLogLevel  = "QACAPTURE_LOG_LEVEL"
)

// Config is the qacapture configuration.
type Config struct {
	RootFolder     string        `yaml:"root_folder"`
	DataDir        string        `yaml:"data_dir"`
	Layout         string        `yaml:"layout"`
	CleanupOnStart bool          `yaml:"cleanup_on_start"`
	LogLevel       string        `yaml:"log_level"`
	Capture        CaptureConfig `yaml:"capture"`
}

// CaptureConfig holds capture defaults. Preferences saved with
// `qacapture settings` take precedence.
type CaptureConfig struct {
	CursorInScreenshots bool `yaml:"cursor_in_screenshots"`
	CopyToClipboard     bool `yaml:"copy_to_clipboard"`
}

// Dir returns the qacapture config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/qacapture if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDataDir returns where the test database lives by default,
// respecting XDG_DATA_HOME.
func DefaultDataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

func xdgDir(env, fallback string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, fallback)
	}
	return filepath.Join(base, "qacapture"), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{
		RootFolder:     filepath.Join("~", "QA-Evidence"),
		Layout:         LayoutFlat,
		CleanupOnStart: true,
		LogLevel:       "info",
	}
	if dir, err := DefaultDataDir(); err == nil {
		cfg.DataDir = dir
	} else {
		cfg.DataDir = ".qacapture"
	}
	return cfg
}

// Path returns the config file to read: $QACAPTURE_CONFIG, else
// config.yaml in Dir.
func Path() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the configuration at path. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	env, err := dotenv(filepath.Join(filepath.Dir(path), ".env"), ".env")
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}

	cfg.RootFolder = expandHome(cfg.RootFolder)
	cfg.DataDir = expandHome(cfg.DataDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// dotenv reads the given .env files without touching the process
// environment. Earlier files win; missing files are skipped.
func dotenv(paths ...string) (map[string]string, error) {
	merged := map[string]string{}
	for i := len(paths) - 1; i >= 0; i-- {
		vals, err := godotenv.Read(paths[i])
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", paths[i], err)
		}
		for k, v := range vals {
			merged[k] = v
		}
	}
	return merged, nil
}

// applyEnv overrides fields from the process environment, falling back to
// the .env values.
func (c *Config) applyEnv(dotenv map[string]string) error {
	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}

	if v := lookup(EnvRoot); v != "" {
		c.RootFolder = v
	}
	if v := lookup(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := lookup(EnvLayout); v != "" {
		c.Layout = strings.ToLower(v)
	}
	if v := lookup(EnvLogLevel); v != "" {
		c.LogLevel = v
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{EnvCursor, &c.Capture.CursorInScreenshots},
		{EnvClipboard, &c.Capture.CopyToClipboard},
		{EnvCleanup, &c.CleanupOnStart},
	}
	for _, b := range bools {
		v := lookup(b.key)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", b.key, v, err)
		}
		*b.dst = parsed
	}
	return nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.RootFolder == "" {
		return fmt.Errorf("root_folder must be set")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must be set")
	}
	switch c.Layout {
	case LayoutFlat, LayoutHierarchical:
	default:
		return fmt.Errorf("layout must be %q or %q, got %q", LayoutFlat, LayoutHierarchical, c.Layout)
	}
	return nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// TestsPath is the JSON test database.
func (c *Config) TestsPath() string {
	return filepath.Join(c.DataDir, "tests.json")
}

// PreferencesPath is the SQLite preferences and capture log.
func (c *Config) PreferencesPath() string {
	return filepath.Join(c.DataDir, "qacapture.db")
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
