// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package config loads optional converter settings from a YAML file.
// Command-line flags override file values; the zero value of every setting
// selects an automatic default.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config holds the tunable settings of a conversion run.
type Config struct {
	// Workers bounds the parallelism of the statistics passes.
	Workers int `yaml:"workers"`

	// MaxMemoryMiB bounds the conversion buffer footprint. 0 uses the
	// machine's physical memory as the bound.
	MaxMemoryMiB uint64 `yaml:"maxMemoryMiB"`

	// Serve is the listen address of the REST mode, e.g. ":8080".
	Serve string `yaml:"serve"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Workers: runtime.NumCPU(),
	}
}

// Load reads the configuration from the given YAML file. A missing file
// yields the defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// MaxBytes returns the configured memory bound in bytes, 0 for automatic.
func (c *Config) MaxBytes() uint64 {
	return c.MaxMemoryMiB * 1024 * 1024
}
