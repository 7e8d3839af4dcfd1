package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"askchat/internal/logging"
)

// Config holds all askchat configuration.
type Config struct {
	// Endpoint is the full URL of the ask route.
	Endpoint string `yaml:"endpoint" env:"ASKCHAT_ENDPOINT"`

	// Modes offered by the mode selector. Opaque to the client.
	Modes []string `yaml:"modes" env:"ASKCHAT_MODES"`

	// DefaultMode is selected at startup; must be one of Modes.
	DefaultMode string `yaml:"default_mode" env:"ASKCHAT_MODE"`

	// Timeout bounds each request ("" or "0s" = wait indefinitely).
	Timeout string `yaml:"timeout" env:"ASKCHAT_TIMEOUT"`

	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:    "http://localhost:5000/ask",
		Modes:       []string{"concise", "detailed"},
		DefaultMode: "concise",
		Timeout:     "",
		UI:          *DefaultUIConfig(),
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "text",
			DebugMode: false,
		},
	}
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/askchat (or the platform equivalent).
func DefaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".askchat"
	}
	return filepath.Join(dir, "askchat")
}

// DefaultConfigPath returns the config.yaml path inside DefaultConfigDir.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env")
// into the process environment. Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
		logging.Config("loaded environment from %s", p)
	}
	return nil
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults; env overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		logging.Config("loaded config from %s", path)
	case os.IsNotExist(err):
		logging.Config("no config at %s, using defaults", path)
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies ASKCHAT_* environment variables. Unset
// variables leave the loaded values alone.
func (c *Config) applyEnvOverrides() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// Validate reports the first problem that would stop the client from working.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint %q: scheme must be http or https", c.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", c.Endpoint)
	}

	if len(c.Modes) == 0 {
		return fmt.Errorf("at least one mode is required")
	}
	for i, m := range c.Modes {
		if m == "" {
			return fmt.Errorf("mode %d is empty", i)
		}
	}
	if !slices.Contains(c.Modes, c.DefaultMode) {
		return fmt.Errorf("default mode %q is not one of %v", c.DefaultMode, c.Modes)
	}

	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
		}
		if d < 0 {
			return fmt.Errorf("invalid timeout %q: must not be negative", c.Timeout)
		}
	}
	return nil
}

// GetTimeout returns the request timeout. Zero means none.
func (c *Config) GetTimeout() time.Duration {
	if c.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// ModeIndex returns the position of DefaultMode in Modes, or 0.
func (c *Config) ModeIndex() int {
	if i := slices.Index(c.Modes, c.DefaultMode); i >= 0 {
		return i
	}
	return 0
}
