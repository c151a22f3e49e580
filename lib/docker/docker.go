// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

// Package docker provides typed access to the docker CLI. Devkit
// drives the container engine exclusively through the binary (buildx
// builds, manifest inspection, pull/push) rather than the engine API:
// the CLI is what operators have configured credentials and builders
// for, and every failure can be reproduced by pasting the reported
// command line into a shell.
package docker

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/devkit-foundation/devkit/lib/execute"
)

// Client runs docker commands. The zero value is not usable; construct
// with New, or fill Binary and Runner directly in tests.
type Client struct {
	// Binary is the docker binary path or name.
	Binary string

	// Runner executes the commands. Defaults to execute.Run in New.
	Runner execute.Runner

	logger *slog.Logger
}

// New resolves the docker binary on PATH and returns a client.
func New(logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	path, err := exec.LookPath("docker")
	if err != nil {
		return nil, fmt.Errorf("docker not found on PATH, install Docker with the buildx plugin first")
	}
	return &Client{Binary: path, Runner: execute.Run, logger: logger}, nil
}

func (c *Client) run(ctx context.Context, args ...string) (*execute.Result, error) {
	runner := c.Runner
	if runner == nil {
		runner = execute.Run
	}
	return runner(ctx, execute.Spec{Name: c.Binary, Args: args})
}

func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// ImageExists reports whether the image is present in the local
// engine. A non-zero inspect exit means "not present", not an error.
func (c *Client) ImageExists(ctx context.Context, tag string) (bool, error) {
	c.log().Debug("checking for local image", "tag", tag)
	result, err := c.run(ctx, "image", "inspect", tag)
	return inspectResult(result, err)
}

// ManifestExists reports whether the image manifest is present in the
// remote registry.
func (c *Client) ManifestExists(ctx context.Context, tag string) (bool, error) {
	c.log().Debug("checking for remote manifest", "tag", tag)
	result, err := c.run(ctx, "manifest", "inspect", tag)
	return inspectResult(result, err)
}

// inspectResult folds an inspect invocation into present/absent.
// Only a failure to run docker at all is an error.
func inspectResult(result *execute.Result, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if result != nil {
		// Ran, exited non-zero: the object is not there.
		return false, nil
	}
	return false, err
}

// Pull downloads the image from the registry.
func (c *Client) Pull(ctx context.Context, tag string) error {
	c.log().Info("pulling image", "tag", tag)
	_, err := c.run(ctx, "pull", tag)
	return err
}

// Push uploads the image to the registry.
func (c *Client) Push(ctx context.Context, tag string) error {
	c.log().Info("pushing image", "tag", tag)
	_, err := c.run(ctx, "push", tag)
	return err
}

// BuildRequest describes one buildx invocation.
type BuildRequest struct {
	// Tag applies --tag when non-empty.
	Tag string

	// Dockerfile is passed as --file.
	Dockerfile string

	// BuildArgs are NAME=VALUE pairs, each passed as --build-arg.
	// Pass them pre-sorted when the order feeds a content digest.
	BuildArgs []string

	// Context is the build context directory.
	Context string

	// ExportDir, when non-empty, adds --output=type=local,dest=… so
	// the built image's filesystem is exported there instead of being
	// loaded into the engine.
	ExportDir string
}

// Build runs docker buildx build for the request. The returned error,
// if any, wraps an *execute.ExitError carrying the full command line
// and both output streams.
func (c *Client) Build(ctx context.Context, request BuildRequest) (*execute.Result, error) {
	args := []string{"buildx", "build"}
	if request.Tag != "" {
		args = append(args, "--tag", request.Tag)
	}
	args = append(args, "--file", request.Dockerfile)
	for _, pair := range request.BuildArgs {
		args = append(args, "--build-arg", pair)
	}
	if request.ExportDir != "" {
		args = append(args, "--output=type=local,dest="+request.ExportDir)
	}
	args = append(args, request.Context)

	c.log().Info("building image", "tag", request.Tag, "dockerfile", request.Dockerfile)
	return c.run(ctx, args...)
}
