// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

package imagegraph

import (
	"fmt"
	"sort"
)

// BuildOrder returns the images reachable from target (target last) in
// dependency order: every image appears after all of its configured
// dependencies. An empty target orders the whole manifest set. The
// order is deterministic; siblings are visited alphabetically.
// Dependencies that have no manifest entry are not ordered; the
// builder reports them when it cannot resolve their tags.
func BuildOrder(target string, manifests Manifests) ([]string, error) {
	var roots []string
	if target != "" {
		if _, ok := manifests[target]; !ok {
			return nil, fmt.Errorf("unknown image %q", target)
		}
		roots = []string{target}
	} else {
		for name := range manifests {
			roots = append(roots, name)
		}
		sort.Strings(roots)
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(manifests))
	var order []string

	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("dependency cycle: %v", append(path, name))
		}
		state[name] = visiting

		deps := dependencyImages(manifests[name])
		for _, dep := range deps {
			if _, ok := manifests[dep]; !ok {
				// Unconfigured dependency: skip here, surfaced by
				// the builder when the tag lookup fails.
				continue
			}
			if err := visit(dep, append(path, name)); err != nil {
				return err
			}
		}

		state[name] = done
		order = append(order, name)
		return nil
	}

	for _, root := range roots {
		if err := visit(root, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// dependencyImages returns an image's dependency names sorted for
// deterministic traversal.
func dependencyImages(cfg ImageConfig) []string {
	deps := make([]string, 0, len(cfg.Deps))
	for _, image := range cfg.Deps {
		deps = append(deps, image)
	}
	sort.Strings(deps)
	return deps
}
