// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

package imagegraph

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/devkit-foundation/devkit/lib/config"
	"github.com/devkit-foundation/devkit/lib/docker"
)

// Builder processes an image dependency graph: computing tags,
// reusing local or registry images where their content digest already
// exists, and building the rest.
type Builder struct {
	Config      *config.Config
	SearchPaths []string
	Docker      *docker.Client
	Logger      *slog.Logger
}

func (b *Builder) log() *slog.Logger {
	if b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}

// Process builds target and everything it depends on, in dependency
// order, and returns the computed tag for every processed image. An
// empty target processes the whole manifest set.
func (b *Builder) Process(ctx context.Context, target string) (map[string]string, error) {
	manifests, err := LoadManifests(b.SearchPaths, b.Logger)
	if err != nil {
		return nil, err
	}

	order, err := BuildOrder(target, manifests)
	if err != nil {
		return nil, err
	}
	if target != "" {
		b.log().Info("processing image and dependencies", "target", target, "order", order)
	} else {
		b.log().Info("processing all images", "order", order)
	}

	tags := make(map[string]string, len(order))
	for _, image := range order {
		tag, err := b.processImage(ctx, image, manifests[image], tags)
		if err != nil {
			return nil, fmt.Errorf("image %s: %w", image, err)
		}
		tags[image] = tag
	}
	return tags, nil
}

// Tag processes target and its dependencies, then returns the tag
// computed for target. This is the --print-tag contract: dependencies
// are materialized as a side effect, exactly as in a full build.
func (b *Builder) Tag(ctx context.Context, target string) (string, error) {
	if target == "" {
		return "", fmt.Errorf("a target image is required to print a tag")
	}
	tags, err := b.Process(ctx, target)
	if err != nil {
		return "", err
	}
	return tags[target], nil
}

// processImage computes the tag for one image and ensures an image
// with that tag exists (locally, pulled, or freshly built).
func (b *Builder) processImage(ctx context.Context, image string, cfg ImageConfig, tags map[string]string) (string, error) {
	dockerfile, err := FindDockerfile(image, b.SearchPaths)
	if err != nil {
		return "", err
	}

	buildArgs, err := resolveBuildArgs(image, cfg, tags)
	if err != nil {
		return "", err
	}

	digest, err := ContentDigest(dockerfile, buildArgs)
	if err != nil {
		return "", err
	}
	tag := ImageTag(b.Config.Registry(), image, digest)
	b.log().Info("resolved image tag", "image", image, "tag", tag)

	if err := b.materialize(ctx, tag, cfg, dockerfile, buildArgs); err != nil {
		return "", err
	}
	return tag, nil
}

// materialize makes an image with the given tag available. Local-only
// images are built when absent; registry images are pulled when the
// manifest already exists, otherwise built and pushed. A failed push
// is a warning; the local image is still usable.
func (b *Builder) materialize(ctx context.Context, tag string, cfg ImageConfig, dockerfile string, buildArgs []string) error {
	exists, err := b.Docker.ImageExists(ctx, tag)
	if err != nil {
		return err
	}
	if exists {
		b.log().Info("image already exists locally, skipping", "tag", tag)
		return nil
	}

	request := docker.BuildRequest{
		Tag:        tag,
		Dockerfile: dockerfile,
		BuildArgs:  buildArgs,
		Context:    filepath.Dir(dockerfile),
	}

	if cfg.Local {
		_, err := b.Docker.Build(ctx, request)
		return err
	}

	remote, err := b.Docker.ManifestExists(ctx, tag)
	if err != nil {
		return err
	}
	if remote {
		return b.Docker.Pull(ctx, tag)
	}

	if _, err := b.Docker.Build(ctx, request); err != nil {
		return err
	}
	if err := b.Docker.Push(ctx, tag); err != nil {
		b.log().Warn("push failed, continuing with local image", "tag", tag, "error", err)
	}
	return nil
}

// resolveBuildArgs maps an image's dependency declarations to sorted
// "ARG=tag" pairs using the tags computed earlier in the build order.
func resolveBuildArgs(image string, cfg ImageConfig, tags map[string]string) ([]string, error) {
	pairs := make([]string, 0, len(cfg.Deps))
	for arg, dep := range cfg.Deps {
		tag, ok := tags[dep]
		if !ok {
			return nil, fmt.Errorf("dependency %q (build arg %s) has no computed tag; is it declared in a %s on the search path?",
				dep, arg, ManifestName)
		}
		pairs = append(pairs, arg+"="+tag)
	}
	sort.Strings(pairs)
	return pairs, nil
}
