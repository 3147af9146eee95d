package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/leapstack-labs/figvars/pkg/core"
)

var validOutputs = map[string]bool{
	"":         true,
	"auto":     true,
	"text":     true,
	"markdown": true,
	"json":     true,
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !validOutputs[c.OutputFormat] {
		return fmt.Errorf("invalid output %q, must be one of: auto, text, markdown, json", c.OutputFormat)
	}

	var errs []error
	seen := make(map[string]bool, len(c.Files))
	for i, f := range c.Files {
		if f.ID == "" {
			errs = append(errs, fmt.Errorf("files[%d]: id is required", i))
			continue
		}
		if seen[f.ID] {
			errs = append(errs, fmt.Errorf("files[%d]: duplicate file id %q", i, f.ID))
		}
		seen[f.ID] = true
		if _, ok := core.ParseSource(f.Source); !ok {
			errs = append(errs, fmt.Errorf("files[%d]: unknown source %q, must be one of: Main, Theme, AllColors", i, f.Source))
		}
	}
	return errors.Join(errs...)
}

// ValidateFiles checks that files are configured and their payloads exist.
func (c *Config) ValidateFiles() error {
	if len(c.Files) == 0 {
		return fmt.Errorf("no files configured\nHint: add a files list to figvars.yaml")
	}
	if _, err := os.Stat(c.PayloadDir); os.IsNotExist(err) {
		return fmt.Errorf("payload directory does not exist: %s\nHint: Create the directory or use --payload-dir to specify a different path", c.PayloadDir)
	}
	return nil
}
