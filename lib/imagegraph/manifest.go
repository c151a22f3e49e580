// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

package imagegraph

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// ManifestName is the per-directory image declaration file.
const ManifestName = "deps.json"

// ImageConfig declares one image in a deps.json manifest.
type ImageConfig struct {
	// Deps maps a Dockerfile ARG name to the image whose tag is
	// passed for it, e.g. {"BASE": "devkit-os"}.
	Deps map[string]string `json:"deps"`

	// Local marks images that are never pulled from or pushed to
	// the remote registry.
	Local bool `json:"local"`
}

// Manifests is the merged image declaration set, keyed by image name.
type Manifests map[string]ImageConfig

// LoadManifests merges the deps.json files found directly in each
// search path, in order. Later paths override earlier entries with the
// same image name. Manifests may use JSONC comments.
func LoadManifests(searchPaths []string, logger *slog.Logger) (Manifests, error) {
	if logger == nil {
		logger = slog.Default()
	}

	merged := Manifests{}
	for _, dir := range searchPaths {
		path := filepath.Join(dir, ManifestName)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		logger.Info("loading image manifests", "path", path)

		stripped := jsonc.ToJSON(data)
		var probe any
		if err := json.Unmarshal(stripped, &probe); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if _, ok := probe.(map[string]any); !ok {
			logger.Warn("manifest is not an object of image configs, skipping", "path", path)
			continue
		}

		var entries map[string]ImageConfig
		if err := json.Unmarshal(stripped, &entries); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		for name, cfg := range entries {
			merged[name] = cfg
		}
	}
	return merged, nil
}

// FindDockerfile locates "<image>.Dockerfile" in the search paths, in
// order, and returns its symlink-resolved absolute path.
func FindDockerfile(image string, searchPaths []string) (string, error) {
	name := image + ".Dockerfile"
	for _, dir := range searchPaths {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err != nil {
			continue
		}
		resolved, err := filepath.EvalSymlinks(candidate)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", candidate, err)
		}
		return filepath.Abs(resolved)
	}
	return "", fmt.Errorf("dockerfile %s not found in search paths %v", name, searchPaths)
}
