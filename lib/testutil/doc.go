// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for devkit packages.
// The main facility is stub external binaries: devkit shells out to
// docker, bazel, and tag-resolution commands, and tests fake those
// collaborators with small shell scripts placed on a PATH prefix.
package testutil
