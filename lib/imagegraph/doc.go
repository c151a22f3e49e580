// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

// Package imagegraph builds devkit generator images with
// content-addressed tags.
//
// Images are declared in deps.json manifests found on a search path.
// Each image maps build-arg names to the images it depends on, forming
// a DAG. A tag is derived from the SHA-256 of the image's Dockerfile
// content plus its sorted, fully resolved build arguments, so any
// change to a recipe, or to anything a recipe transitively depends
// on, yields a new tag, and an unchanged recipe hits the registry
// cache instead of rebuilding.
package imagegraph
