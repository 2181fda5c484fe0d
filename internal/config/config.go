// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package config handles loading converter configuration from files.
//
// Configuration can be specified in a JSON file named hlslc.json or .hlslcrc.
// The config file is searched for in the input directory and its parents.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gogpu/hlslc"
)

// Config represents the configuration file structure.
// All fields are optional and will use default values if not specified.
type Config struct {
	// EntryPoint is the HLSL function lowered to main.
	EntryPoint *string `json:"entryPoint,omitempty"`

	// UniformSet, TextureSet and SamplerSet are the descriptor sets of the
	// three resource classes.
	UniformSet *int `json:"uniformSet,omitempty"`
	TextureSet *int `json:"textureSet,omitempty"`
	SamplerSet *int `json:"samplerSet,omitempty"`

	// Parallelism bounds concurrent conversions of a batch.
	Parallelism *int `json:"parallelism,omitempty"`
}

// ConfigFileNames are the names searched for config files, in order of preference.
var ConfigFileNames = []string{
	"hlslc.json",
	".hlslcrc",
	".hlslcrc.json",
}

// Load searches for a config file starting from the given directory
// and walking up to parent directories. Returns nil if no config file is found.
func Load(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range ConfigFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := LoadFile(path)
				return cfg, path, err
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", nil
		}
		dir = parent
	}
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	sets := []struct {
		name string
		v    *int
	}{
		{"uniformSet", c.UniformSet},
		{"textureSet", c.TextureSet},
		{"samplerSet", c.SamplerSet},
	}
	for _, s := range sets {
		if s.v != nil && *s.v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", s.name, *s.v)
		}
	}
	if c.EntryPoint != nil && *c.EntryPoint == "" {
		return fmt.Errorf("entryPoint must not be empty")
	}
	return nil
}

// ToOptions converts a Config to batch options, using defaults for unset
// fields. A nil Config yields the defaults.
func (c *Config) ToOptions() hlslc.BatchOptions {
	opts := hlslc.BatchOptions{Options: hlslc.DefaultOptions()}
	if c == nil {
		return opts
	}

	if c.EntryPoint != nil {
		opts.EntryPoint = *c.EntryPoint
	}
	if c.UniformSet != nil {
		opts.UniformSet = *c.UniformSet
	}
	if c.TextureSet != nil {
		opts.TextureSet = *c.TextureSet
	}
	if c.SamplerSet != nil {
		opts.SamplerSet = *c.SamplerSet
	}
	if c.Parallelism != nil {
		opts.Parallelism = *c.Parallelism
	}
	return opts
}

// MergeOptions holds CLI flags. Nil means not specified on the command line.
type MergeOptions struct {
	EntryPoint  *string
	Parallelism *int
}

// Merge merges CLI options with config file options.
// CLI options override config file options when specified.
func (c *Config) Merge(cli MergeOptions) hlslc.BatchOptions {
	opts := c.ToOptions()

	if cli.EntryPoint != nil {
		opts.EntryPoint = *cli.EntryPoint
	}
	if cli.Parallelism != nil {
		opts.Parallelism = *cli.Parallelism
	}
	return opts
}
