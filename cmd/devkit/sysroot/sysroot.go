// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

// Package sysroot holds the sysroot acquisition command.
package sysroot

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/devkit-foundation/devkit/cmd/devkit/cli"
	libsysroot "github.com/devkit-foundation/devkit/lib/sysroot"
)

// Command returns the "sysroot" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "sysroot",
		Summary: "Acquire verified sysroots",
		Subcommands: []*cli.Command{
			resolveCommand(),
		},
	}
}

func resolveCommand() *cli.Command {
	var (
		configPath  string
		searchPaths []string
		sha256Pin   string
		outputDir   string
		generator   string
		dockerfile  string
		tagCommand  []string
	)

	return &cli.Command{
		Name:    "resolve",
		Summary: "Build, verify, and extract the sysroot",
		Long: "Resolve the sysroot generator's tag, build the export image with the\n" +
			"archive inside, verify the archive against the pinned sha256, and\n" +
			"extract it into the output directory. The checksum is mandatory;\n" +
			"a failed resolve never populates the output directory.",
		Usage: "devkit sysroot resolve --sha256 <hex> [flags]",
		Examples: []cli.Example{
			{
				Description: "Resolve into ./sysroot with the pinned digest",
				Command:     "devkit sysroot resolve --sha256 $(cat sysroot.sha256) --output sysroot",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("resolve", pflag.ContinueOnError)
			flags.StringVar(&configPath, "config", "devkit.json", "devkit configuration file")
			flags.StringArrayVar(&searchPaths, "search-path", []string{"docker"},
				"directory searched for deps.json and Dockerfiles (repeatable)")
			flags.StringVar(&sha256Pin, "sha256", "", "expected sha256 of the sysroot archive (required)")
			flags.StringVar(&outputDir, "output", "sysroot", "directory receiving the extracted sysroot")
			flags.StringVar(&generator, "generator", libsysroot.DefaultGenerator,
				"image whose tag parametrizes the export build")
			flags.StringVar(&dockerfile, "dockerfile", "",
				"export recipe (default: "+libsysroot.ExportDockerfileName+" on the search path)")
			flags.StringArrayVar(&tagCommand, "tag-command", nil,
				"command resolving the generator tag (default: this binary's image build)")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("unexpected arguments: %v", args)
			}
			logger := cli.NewLogger()

			if len(tagCommand) == 0 {
				self, err := os.Executable()
				if err != nil {
					return fmt.Errorf("locating own binary for tag resolution: %w", err)
				}
				tagCommand = []string{self, "image", "build"}
			}

			manifest, err := libsysroot.Resolve(context.Background(), libsysroot.Options{
				ConfigPath:     configPath,
				SearchPaths:    searchPaths,
				ExpectedSHA256: sha256Pin,
				OutputDir:      outputDir,
				Generator:      generator,
				Dockerfile:     dockerfile,
				TagCommand:     tagCommand,
				Logger:         logger,
			})
			if err != nil {
				return err
			}
			logger.Info("sysroot ready",
				"output", outputDir,
				"tag", manifest.Tag,
				"files", len(manifest.Files))
			return nil
		},
	}
}
