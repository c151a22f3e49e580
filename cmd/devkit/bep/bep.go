// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

// Package bep holds the build event capture command.
package bep

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/devkit-foundation/devkit/cmd/devkit/cli"
	"github.com/devkit-foundation/devkit/lib/bazel"
)

// Command returns the "bep" command.
func Command() *cli.Command {
	var (
		targets   []string
		command   string
		outputDir string
	)

	return &cli.Command{
		Name:    "bep",
		Summary: "Capture bazel build event protocol files",
		Long: "Run bazel against a throwaway output base and repository cache so\n" +
			"every dependency fetch appears in the event stream, writing one\n" +
			"bep.json per target (or a single one for the whole workspace).",
		Usage: "devkit bep [flags]",
		Examples: []cli.Example{
			{
				Description: "Capture fetch events for the whole workspace",
				Command:     "devkit bep",
			},
			{
				Description: "Capture build events for two targets",
				Command:     "devkit bep --command build --targets //src/app:server --targets //tools:lint",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("bep", pflag.ContinueOnError)
			flags.StringArrayVar(&targets, "targets", nil, "bazel target to capture (repeatable)")
			flags.StringVar(&command, "command", "fetch", "bazel command to run, fetch or build")
			flags.StringVar(&outputDir, "output-dir", "bazel-bep", "directory receiving the event files")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("unexpected arguments: %v", args)
			}
			logger := cli.NewLogger()
			written, err := bazel.CaptureEvents(context.Background(), bazel.EventOptions{
				Targets:   targets,
				Command:   command,
				OutputDir: outputDir,
				Logger:    logger,
			})
			if err != nil {
				return err
			}
			logger.Info("build events captured", "files", len(written))
			return nil
		},
	}
}
