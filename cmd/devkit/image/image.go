// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

// Package image holds the image build commands: processing the image
// dependency graph into content-addressed container images.
package image

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/devkit-foundation/devkit/cmd/devkit/cli"
	"github.com/devkit-foundation/devkit/lib/config"
	"github.com/devkit-foundation/devkit/lib/docker"
	"github.com/devkit-foundation/devkit/lib/imagegraph"
)

// Command returns the "image" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "image",
		Summary: "Build development images",
		Subcommands: []*cli.Command{
			buildCommand(),
		},
	}
}

func buildCommand() *cli.Command {
	var (
		configPath  string
		searchPaths []string
		printTag    bool
	)

	return &cli.Command{
		Name:    "build",
		Summary: "Build an image and its dependencies",
		Long: "Build a development image together with everything it depends on,\n" +
			"reusing images whose content-addressed tag already exists locally or\n" +
			"in the configured registry. Without a target, every image on the\n" +
			"search path is processed.",
		Usage: "devkit image build [target] [flags]",
		Examples: []cli.Example{
			{
				Description: "Build the sysroot generator and print its tag",
				Command:     "devkit image build sysroot-archive-generator --print-tag",
			},
			{
				Description: "Build everything described under ./docker",
				Command:     "devkit image build --search-path docker",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("build", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "devkit.json", "devkit configuration file")
			flags.StringArrayVar(&searchPaths, "search-path", []string{"docker"},
				"directory searched for deps.json and Dockerfiles (repeatable)")
			flags.BoolVar(&printTag, "print-tag", false,
				"print the target's tag on stdout after processing")
			return flags
		},
		Run: func(args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("at most one target expected, got %d", len(args))
			}
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			if printTag && target == "" {
				return fmt.Errorf("--print-tag requires a target image")
			}

			logger := cli.NewLogger()
			cfg, err := config.Load(configPath, logger)
			if err != nil {
				return err
			}
			client, err := docker.New(logger)
			if err != nil {
				return err
			}

			builder := &imagegraph.Builder{
				Config:      cfg,
				SearchPaths: searchPaths,
				Docker:      client,
				Logger:      logger,
			}
			tags, err := builder.Process(context.Background(), target)
			if err != nil {
				return err
			}
			if printTag {
				// The tag is the command's only stdout output so that
				// callers can capture it.
				fmt.Println(tags[target])
			}
			return nil
		},
	}
}
