// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

package sysroot

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"github.com/devkit-foundation/devkit/lib/imagegraph"
)

// inputFingerprint hashes everything the resolver's output depends on
// besides the generator image content itself: the generator recipe,
// the export recipe, every image manifest on the search path, the
// devkit config, and the pinned checksum. This is the rule's
// cache-invalidation contract: a change to any of these must force
// regeneration, and an unchanged set lets a prior resolve stand.
//
// Each input is framed as "label\x00content\x00" so that moving bytes
// between inputs cannot collide. Missing optional inputs (the config
// file, absent deps.json files) hash their absence, not nothing.
func inputFingerprint(opts *Options) (string, error) {
	hasher := blake3.New()

	frame := func(label string, content []byte) {
		hasher.Write([]byte(label))
		hasher.Write([]byte{0})
		hasher.Write(content)
		hasher.Write([]byte{0})
	}
	frameFile := func(label, path string, required bool) error {
		content, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) && !required {
				frame(label, []byte("(absent)"))
				return nil
			}
			return fmt.Errorf("reading input %s: %w", path, err)
		}
		frame(label, content)
		return nil
	}

	generatorDockerfile, err := imagegraph.FindDockerfile(opts.Generator, opts.SearchPaths)
	if err != nil {
		return "", err
	}
	if err := frameFile("generator-dockerfile", generatorDockerfile, true); err != nil {
		return "", err
	}
	if err := frameFile("export-dockerfile", opts.Dockerfile, true); err != nil {
		return "", err
	}
	for _, dir := range opts.SearchPaths {
		path := filepath.Join(dir, imagegraph.ManifestName)
		if err := frameFile("manifest:"+path, path, false); err != nil {
			return "", err
		}
	}
	if err := frameFile("config", opts.ConfigPath, false); err != nil {
		return "", err
	}
	frame("expected-sha256", []byte(opts.ExpectedSHA256))

	sum := hasher.Sum(nil)
	return hex.EncodeToString(sum), nil
}
