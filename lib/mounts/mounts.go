// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

// Package mounts discovers the external paths a source tree reaches
// through symlinks. Container-based builds need every such path bind
// mounted; this scan produces the minimal mount list, following
// symlink chains through intermediate external links.
package mounts

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// List scans dir for symlinks and returns the minimal set of external
// paths they reach, sorted. Convenience symlinks created by the build
// system ("bazel-*" at the scan root) and ".venv" directories are
// ignored. Broken links and link cycles are skipped silently.
func List(dir string) ([]string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	external := make(map[string]bool)
	worklist := []string{root}
	scanned := make(map[string]bool)

	for len(worklist) > 0 {
		current := worklist[0]
		worklist = worklist[1:]
		if scanned[current] {
			continue
		}
		scanned[current] = true

		err := filepath.Walk(current, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				// Entries can disappear mid-scan; skip them.
				return nil
			}
			if info.IsDir() && info.Name() == ".venv" {
				return filepath.SkipDir
			}
			if info.Mode()&os.ModeSymlink == 0 {
				return nil
			}
			if filepath.Dir(path) == root && strings.HasPrefix(info.Name(), "bazel-") {
				return nil
			}
			followChain(path, root, external, &worklist)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return minimize(external), nil
}

// followChain walks a symlink chain, recording every target outside
// root. External directories are queued for scanning so that links
// inside them are chased too.
func followChain(path, root string, external map[string]bool, worklist *[]string) {
	visited := make(map[string]bool)
	current := path

	for {
		info, err := os.Lstat(current)
		if err != nil || info.Mode()&os.ModeSymlink == 0 {
			return
		}
		if visited[current] {
			// Link cycle.
			return
		}
		visited[current] = true

		target, err := os.Readlink(current)
		if err != nil {
			return
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(current), target)
		}
		target = filepath.Clean(target)

		info, err = os.Stat(target)
		if err != nil {
			// Broken link.
			return
		}

		if !within(target, root) && !external[target] {
			external[target] = true
			if info.IsDir() {
				*worklist = append(*worklist, target)
			}
		}
		current = target
	}
}

// within reports whether path is root or lies under it. Both paths
// must be absolute and clean.
func within(path, root string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

// minimize drops every path that lies under another path in the set,
// leaving only the outermost parents.
func minimize(paths map[string]bool) []string {
	sorted := make([]string, 0, len(paths))
	for path := range paths {
		sorted = append(sorted, path)
	}
	sort.Strings(sorted)

	var minimal []string
	for _, path := range sorted {
		// Sorted order guarantees a covering parent appears first.
		if len(minimal) > 0 && within(path, minimal[len(minimal)-1]) {
			continue
		}
		minimal = append(minimal, path)
	}
	return minimal
}
