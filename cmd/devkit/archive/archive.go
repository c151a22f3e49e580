// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive holds the deterministic archive commands. The pack
// side runs inside the export image build; the extract side mirrors
// what the resolve pipeline does, for manual inspection.
package archive

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/devkit-foundation/devkit/cmd/devkit/cli"
	libarchive "github.com/devkit-foundation/devkit/lib/archive"
)

// Command returns the "archive" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "archive",
		Summary: "Deterministic tar.gz tooling",
		Subcommands: []*cli.Command{
			packCommand(),
			extractCommand(),
		},
	}
}

func packCommand() *cli.Command {
	var output string

	return &cli.Command{
		Name:    "pack",
		Summary: "Pack a directory into a reproducible tar.gz",
		Long: "Pack a directory tree into a gzip-compressed tar archive with fixed\n" +
			"metadata: sorted entries, zeroed timestamps and ownership. Packing\n" +
			"the same tree twice yields byte-identical archives, which is what\n" +
			"makes the pinned sysroot checksum stable.",
		Usage: "devkit archive pack <dir> --output <file>",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("pack", pflag.ContinueOnError)
			flags.StringVar(&output, "output", "", "archive file to write (required)")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one directory expected, got %d arguments", len(args))
			}
			if output == "" {
				return fmt.Errorf("--output is required")
			}
			return libarchive.PackFile(args[0], output)
		},
	}
}

func extractCommand() *cli.Command {
	var output string

	return &cli.Command{
		Name:    "extract",
		Summary: "Extract an archive, refusing path escapes",
		Usage:   "devkit archive extract <file> --output <dir>",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("extract", pflag.ContinueOnError)
			flags.StringVar(&output, "output", ".", "directory receiving the extracted tree")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("exactly one archive expected, got %d arguments", len(args))
			}
			return libarchive.ExtractFile(args[0], output)
		},
	}
}
