// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

// Devkit is the CLI for hermetic development environments. It builds
// content-addressed development images (image), acquires verified
// sysroots (sysroot), packs and extracts reproducible archives
// (archive), instantiates project templates (bootstrap), and wraps
// the bazel side of the workflow (mounts, coverage, bep).
package main
