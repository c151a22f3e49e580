// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

// Package mounts holds the external mount listing command.
package mounts

import (
	"fmt"

	"github.com/devkit-foundation/devkit/cmd/devkit/cli"
	libmounts "github.com/devkit-foundation/devkit/lib/mounts"
)

// Command returns the "mounts" command.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "mounts",
		Summary: "List external paths reached through symlinks",
		Long: "Scan a source tree for symlinks pointing outside it and print the\n" +
			"minimal set of external paths, one per line. Containerized builds\n" +
			"bind mount exactly these paths.",
		Usage: "devkit mounts [dir]",
		Run: func(args []string) error {
			if len(args) > 1 {
				return fmt.Errorf("at most one directory expected, got %d arguments", len(args))
			}
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			paths, err := libmounts.List(dir)
			if err != nil {
				return err
			}
			for _, path := range paths {
				fmt.Println(path)
			}
			return nil
		},
	}
}
