// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the devkit.json project configuration.
//
// The config file is optional: a project without one builds images
// with local-only tags (no registry prefix). When present, the file
// may use JSONC (// line comments, /* block comments */, trailing
// commas); comments are stripped before parsing.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/tidwall/jsonc"
)

// Config is the devkit.json document.
type Config struct {
	Docker DockerConfig `json:"docker"`
}

// DockerConfig configures the container registry images are pushed to
// and pulled from.
type DockerConfig struct {
	Registry RegistryConfig `json:"registry"`
}

// RegistryConfig identifies a registry repository as three path
// segments, e.g. host "europe-docker.pkg.dev", project "acme-tools",
// repository "devkit". All three must be set for the registry to be
// used; a partially filled registry is treated as absent.
type RegistryConfig struct {
	Host       string `json:"host"`
	Project    string `json:"project"`
	Repository string `json:"repository"`
}

// Registry returns "host/project/repository", or "" when the registry
// is not fully configured.
func (c *Config) Registry() string {
	r := c.Docker.Registry
	if r.Host == "" || r.Project == "" || r.Repository == "" {
		return ""
	}
	return r.Host + "/" + r.Project + "/" + r.Repository
}

// Load reads the config file at path. A missing file is not an error:
// it yields the zero Config, logged at info level. A present but
// malformed file is an error: a project that ships a config gets it
// validated.
func Load(path string, logger *slog.Logger) (*Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("devkit config file not found, using defaults", "path", path)
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &cfg, nil
}
