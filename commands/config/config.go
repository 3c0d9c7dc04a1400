// Copyright 2025 OpenPubkey
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"github.com/openpubkey/aclaudit/walker"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

//go:embed default-config.yml
var defaultConfig []byte

// Config holds the defaults the CLI starts from before applying flags.
type Config struct {
	Output string       `yaml:"output" default:"text"`
	Scan   ScanConfig   `yaml:"scan"`
	Report ReportConfig `yaml:"report"`
	Acl    AclConfig    `yaml:"acl"`
}

type ScanConfig struct {
	IncludeSubtree        bool   `yaml:"include_subtree" default:"true"`
	IncludeHidden         bool   `yaml:"include_hidden"`
	IncludeCurrentFolder  bool   `yaml:"include_current_folder"`
	ComputeSize           bool   `yaml:"compute_size"`
	ComputeSizeForSubtree bool   `yaml:"compute_size_for_subtree"`
	IncludeOwner          bool   `yaml:"include_owner"`
	OwnerFilter           string `yaml:"owner_filter"`
	ScanDepth             int    `yaml:"scan_depth"`
}

type ReportConfig struct {
	Workers  int           `yaml:"workers" default:"4"`
	CacheTTL time.Duration `yaml:"cache_ttl" default:"10m"`
}

type AclConfig struct {
	IncludeUnresolved bool `yaml:"include_unresolved"`
}

// NewConfig parses YAML on top of the struct defaults.
func NewConfig(c []byte) (*Config, error) {
	var config Config
	if err := defaults.Set(&config); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}
	if err := yaml.Unmarshal(c, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func DefaultConfig() (*Config, error) {
	return NewConfig(defaultConfig)
}

// DefaultPath is the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "aclaudit", "config.yml")
}

// Load reads the config at path. A missing file falls back to the defaults
// unless the path was given explicitly.
func Load(vfs afero.Fs, path string, explicit bool) (*Config, error) {
	if path == "" {
		return DefaultConfig()
	}
	data, err := afero.ReadFile(vfs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return DefaultConfig()
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	config, err := NewConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

func (c *Config) Validate() error {
	switch c.Output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid output format %q (want text, json or yaml)", c.Output)
	}
	if c.Scan.ScanDepth < 0 {
		return fmt.Errorf("scan_depth must not be negative, got %d", c.Scan.ScanDepth)
	}
	if c.Report.Workers < 1 {
		return fmt.Errorf("report workers must be at least 1, got %d", c.Report.Workers)
	}
	if c.Report.CacheTTL < 0 {
		return fmt.Errorf("report cache_ttl must not be negative, got %s", c.Report.CacheTTL)
	}
	return nil
}

// TraversalOptions converts the scan section for the walker.
func (s ScanConfig) TraversalOptions() walker.TraversalOptions {
	return walker.TraversalOptions{
		IncludeSubtree:        s.IncludeSubtree,
		IncludeHidden:         s.IncludeHidden,
		IncludeCurrentFolder:  s.IncludeCurrentFolder,
		ComputeSize:           s.ComputeSize,
		ComputeSizeForSubtree: s.ComputeSizeForSubtree,
		IncludeOwner:          s.IncludeOwner,
		OwnerFilter:           s.OwnerFilter,
		ScanDepth:             s.ScanDepth,
	}
}
