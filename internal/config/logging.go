package config

import (
	"path/filepath"

	"askchat/internal/logging"
)

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level      string          `yaml:"level"`                          // debug, info, warn, error
	Format     string          `yaml:"format"`                         // json, text
	Dir        string          `yaml:"dir,omitempty"`                  // default: <config dir>/logs
	DebugMode  bool            `yaml:"debug_mode" env:"ASKCHAT_DEBUG"` // Master toggle - false = no logging
	Categories map[string]bool `yaml:"categories,omitempty"`           // Per-category toggles
}

// IsCategoryEnabled returns whether logging is enabled for a category.
// Returns false if debug_mode is false.
// Returns true if debug_mode is true and category is enabled (or not specified).
func (c *LoggingConfig) IsCategoryEnabled(category string) bool {
	if !c.DebugMode {
		return false
	}
	if c.Categories == nil {
		return true
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}

// Options converts the config into logging.Options.
func (c *LoggingConfig) Options() logging.Options {
	dir := c.Dir
	if dir == "" {
		dir = filepath.Join(DefaultConfigDir(), "logs")
	}
	return logging.Options{
		DebugMode:  c.DebugMode,
		Level:      c.Level,
		JSONFormat: c.Format == "json",
		Dir:        dir,
		Categories: c.Categories,
	}
}
