// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands assembles the devkit command tree.
package commands

import (
	"github.com/devkit-foundation/devkit/cmd/devkit/archive"
	"github.com/devkit-foundation/devkit/cmd/devkit/bep"
	"github.com/devkit-foundation/devkit/cmd/devkit/bootstrap"
	"github.com/devkit-foundation/devkit/cmd/devkit/cli"
	"github.com/devkit-foundation/devkit/cmd/devkit/coverage"
	"github.com/devkit-foundation/devkit/cmd/devkit/image"
	"github.com/devkit-foundation/devkit/cmd/devkit/mounts"
	"github.com/devkit-foundation/devkit/cmd/devkit/sysroot"
)

// Root returns the top-level devkit command.
func Root() *cli.Command {
	return &cli.Command{
		Name:    "devkit",
		Summary: "Development environment tooling",
		Long: "devkit builds hermetic development environments: content-addressed\n" +
			"container images, verified sysroots, project templates, and the\n" +
			"bazel glue around them.",
		Subcommands: []*cli.Command{
			image.Command(),
			sysroot.Command(),
			archive.Command(),
			bootstrap.Command(),
			mounts.Command(),
			coverage.Command(),
			bep.Command(),
		},
	}
}
