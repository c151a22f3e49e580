// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

// Package bootstrap holds the project template command.
package bootstrap

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/devkit-foundation/devkit/cmd/devkit/cli"
	libbootstrap "github.com/devkit-foundation/devkit/lib/bootstrap"
)

// Command returns the "bootstrap" command.
func Command() *cli.Command {
	var (
		template      string
		templatesRoot string
		templateArgs  []string
	)

	return &cli.Command{
		Name:    "bootstrap",
		Summary: "Instantiate a project template",
		Long: "Instantiate a project template into the current directory, rendering\n" +
			"each file with the supplied key=value variables. Templates may declare\n" +
			"their parameters in a template.yaml manifest; missing required\n" +
			"parameters fail before anything is written.",
		Usage: "devkit bootstrap --template <name> [flags]",
		Examples: []cli.Example{
			{
				Description: "Start a C++ service project",
				Command:     "devkit bootstrap --template cpp-service --args project=orbit",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("bootstrap", pflag.ContinueOnError)
			flags.StringVar(&template, "template", "", "template name (required)")
			flags.StringVar(&templatesRoot, "templates-root", "templates",
				"directory holding the templates")
			flags.StringArrayVar(&templateArgs, "args", nil,
				"key=value template variable (repeatable)")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("unexpected arguments: %v", args)
			}
			if template == "" {
				return fmt.Errorf("--template is required")
			}
			context, err := libbootstrap.ParseContext(templateArgs)
			if err != nil {
				return err
			}
			return libbootstrap.Instantiate(libbootstrap.Options{
				Template:      template,
				TemplatesRoot: templatesRoot,
				Context:       context,
				Logger:        cli.NewLogger(),
			})
		},
	}
}
