// Package config provides configuration loading and validation for the CLI.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

// DefaultOutDir is where rendered .tex and compiled .pdf files land when no
// output directory is configured.
const DefaultOutDir = "build"

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or come from CLI flags.
type Config struct {
	// Paths
	Schema   string `json:"schema,omitempty"`   // Schema file overriding the built-in one
	Template string `json:"template,omitempty"` // LaTeX template overriding the built-in one
	OutDir   string `json:"out_dir,omitempty"`  // Output directory for rendered files

	// Behavior
	KeepAux     bool   `json:"keep_aux,omitempty"`     // Keep LaTeX auxiliary files after compilation
	Verbose     bool   `json:"verbose,omitempty"`      // Print detailed debug information
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL for run history
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, &Error{Message: "config path is empty"}
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, &Error{Message: "failed to get current directory", Cause: err}
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to read config file %s", path), Cause: err}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &Error{Message: "failed to parse config JSON", Cause: err}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Schema != "" {
		if _, err := os.Stat(c.Schema); os.IsNotExist(err) {
			return &Error{Message: fmt.Sprintf("schema file not found: %s", c.Schema)}
		}
	}
	if c.Template != "" {
		if _, err := os.Stat(c.Template); os.IsNotExist(err) {
			return &Error{Message: fmt.Sprintf("template file not found: %s", c.Template)}
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty string fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Schema == "" {
		result.Schema = defaults.Schema
	}
	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.OutDir == "" {
		if defaults.OutDir != "" {
			result.OutDir = defaults.OutDir
		} else {
			result.OutDir = DefaultOutDir
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
