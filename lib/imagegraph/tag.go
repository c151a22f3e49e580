// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

package imagegraph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// Arch is the image architecture suffix baked into tags. Generator
// images are amd64-only today; cross-arch generators would extend
// this to a parameter.
const Arch = "amd64"

// ContentDigest computes the hex SHA-256 identifying an image recipe:
// the Dockerfile bytes followed by each resolved build argument in
// sorted "NAME=value" form. The caller supplies the pairs pre-sorted;
// sorting here would hide an unsorted caller from the digest contract.
func ContentDigest(dockerfilePath string, sortedBuildArgs []string) (string, error) {
	hasher := sha256.New()

	content, err := os.ReadFile(dockerfilePath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", dockerfilePath, err)
	}
	hasher.Write(content)
	for _, pair := range sortedBuildArgs {
		hasher.Write([]byte(pair))
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// ImageTag constructs the full tag for an image: the optional registry
// prefix, the fixed "devkit/" namespace, and the arch-qualified
// content digest.
func ImageTag(registry, image, digest string) string {
	path := "devkit/" + image
	suffix := Arch + "-" + digest
	if registry != "" {
		return registry + "/" + path + ":" + suffix
	}
	return path + ":" + suffix
}
