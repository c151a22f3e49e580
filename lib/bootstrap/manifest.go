// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestName is the optional parameter manifest at the template
// root. It declares the variables a template expects and is never
// rendered into the destination.
const ManifestName = "template.yaml"

// Manifest declares a template's parameters.
type Manifest struct {
	Description string      `yaml:"description"`
	Parameters  []Parameter `yaml:"parameters"`
}

// Parameter is one declared template variable.
type Parameter struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
	Default     string `yaml:"default"`
}

// loadManifest reads the template manifest. A template without one
// yields a nil manifest so the caller can tell absence from an empty
// declaration.
func loadManifest(templateDir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(templateDir, ManifestName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ManifestName, err)
	}
	for _, param := range manifest.Parameters {
		if param.Name == "" {
			return nil, fmt.Errorf("%s declares a parameter without a name", ManifestName)
		}
		if param.Required && param.Default != "" {
			return nil, fmt.Errorf("%s: parameter %q is required and cannot carry a default", ManifestName, param.Name)
		}
	}
	return &manifest, nil
}

// apply validates the context against the declared parameters and
// fills in defaults. Every missing required parameter is reported in
// one error.
func (m *Manifest) apply(context map[string]string) error {
	var missing []string
	for _, param := range m.Parameters {
		if _, ok := context[param.Name]; ok {
			continue
		}
		if param.Required {
			missing = append(missing, param.Name)
			continue
		}
		context[param.Name] = param.Default
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required template parameters: %s", strings.Join(missing, ", "))
	}
	return nil
}
