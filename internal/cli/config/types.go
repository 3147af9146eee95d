// Package config provides configuration management for the figvars CLI.
package config

import (
	"time"

	"github.com/leapstack-labs/figvars/internal/modes"
)

// FileConfig is one Figma file to load.
type FileConfig struct {
	ID     string `koanf:"id"`
	Name   string `koanf:"name"`
	Source string `koanf:"source"` // Main, Theme or AllColors
}

// Config holds all CLI configuration options.
type Config struct {
	// ProjectRoot is the directory relative paths are resolved against.
	ProjectRoot string `koanf:"-"`

	PayloadDir   string          `koanf:"payload_dir"`
	CachePath    string          `koanf:"cache_path"`
	NoCache      bool            `koanf:"no_cache"`
	Verbose      bool            `koanf:"verbose"`
	OutputFormat string          `koanf:"output"`
	Files        []FileConfig    `koanf:"files"`
	Selection    modes.Selection `koanf:"selection"`

	// WatchDebounce accepts Go durations such as "250ms".
	WatchDebounce time.Duration `koanf:"watch_debounce"`

	// UnknownKeys lists config keys that matched no field.
	UnknownKeys []string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultPayloadDir = "payloads"
	DefaultCacheFile  = ".figvars/cache.db"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown

	DefaultWatchDebounce = 100 * time.Millisecond
)

// FileNames maps configured file ids to their names.
func (c *Config) FileNames() map[string]string {
	names := make(map[string]string, len(c.Files))
	for _, f := range c.Files {
		names[f.ID] = f.Name
	}
	return names
}
