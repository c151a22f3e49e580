// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli carries the command tree plumbing for the devkit binary:
// dispatch, flag parsing, help rendering, and typo suggestions.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command is one node of the command tree.
type Command struct {
	// Name as typed on the command line.
	Name string

	// Summary is the one-liner in the parent's command listing.
	Summary string

	// Long is the full description in this command's own help.
	Long string

	// Usage overrides the synthesized usage line when set.
	Usage string

	// Examples shown at the bottom of the help.
	Examples []Example

	// Flags builds the command's flag set. Called lazily; nil means
	// the command takes no flags.
	Flags func() *pflag.FlagSet

	// Subcommands dispatched on the first positional argument.
	Subcommands []*Command

	// Run handles the command after flag parsing. A command needs Run
	// or Subcommands; with both, Run handles the no-subcommand case.
	Run func(args []string) error

	parent *Command
}

// Example is one annotated invocation in the help output.
type Example struct {
	Description string
	Command     string
}

// Execute dispatches args through the tree, parsing flags along the
// way, and invokes the selected command's Run.
func (c *Command) Execute(args []string) error {
	if len(args) > 0 && wantsHelp(args[0]) {
		c.PrintHelp(os.Stderr)
		return nil
	}

	if len(c.Subcommands) > 0 && len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		for _, sub := range c.Subcommands {
			if sub.Name == args[0] {
				sub.parent = c
				return sub.Execute(args[1:])
			}
		}
		if hint := closestCommand(args[0], c.Subcommands); hint != "" {
			return fmt.Errorf("unknown command %q (did you mean %q?)\n\nRun '%s --help' for usage.",
				args[0], hint, c.path())
		}
		return fmt.Errorf("unknown command %q\n\nRun '%s --help' for usage.", args[0], c.path())
	}

	if len(c.Subcommands) > 0 && c.Run == nil {
		c.PrintHelp(os.Stderr)
		if len(args) == 0 {
			return fmt.Errorf("subcommand required")
		}
		return fmt.Errorf("subcommand required (got flag %q)", args[0])
	}

	if c.Flags != nil {
		flagSet := c.Flags()
		// Errors are reformatted below with a suggestion, so the flag
		// package's own printing is unwanted.
		flagSet.SetOutput(io.Discard)
		if err := flagSet.Parse(args); err != nil {
			if strings.Contains(err.Error(), "unknown flag") {
				// The failed parse may hold partial state; build a
				// fresh flag set for the suggestion lookup.
				if hint := closestFlag(args, c.Flags()); hint != "" {
					return fmt.Errorf("%v (did you mean %s?)\n\nRun '%s --help' for usage.",
						err, hint, c.path())
				}
			}
			return fmt.Errorf("%v\n\nRun '%s --help' for usage.", err, c.path())
		}
		args = flagSet.Args()
	}

	if c.Run != nil {
		return c.Run(args)
	}
	c.PrintHelp(os.Stderr)
	return fmt.Errorf("no action defined for %q", c.path())
}

// PrintHelp writes the command's help text to w.
func (c *Command) PrintHelp(w io.Writer) {
	switch {
	case c.Long != "":
		fmt.Fprintf(w, "%s\n\n", c.Long)
	case c.Summary != "":
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	switch {
	case c.Usage != "":
		fmt.Fprintf(w, "Usage:\n  %s\n", c.Usage)
	case len(c.Subcommands) > 0:
		fmt.Fprintf(w, "Usage:\n  %s <command> [flags]\n", c.path())
	default:
		fmt.Fprintf(w, "Usage:\n  %s [flags]\n", c.path())
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(tw, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		tw.Flush()
	}

	if c.Flags != nil {
		var defaults strings.Builder
		flagSet := c.Flags()
		flagSet.SetOutput(&defaults)
		flagSet.PrintDefaults()
		if defaults.Len() > 0 {
			fmt.Fprintf(w, "\nFlags:\n%s", defaults.String())
		}
	}

	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nExamples:\n")
		for _, example := range c.Examples {
			if example.Description != "" {
				fmt.Fprintf(w, "  # %s\n", example.Description)
			}
			fmt.Fprintf(w, "  %s\n", example.Command)
		}
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nRun '%s <command> --help' for more information on a command.\n", c.path())
	}
}

// path is the full command path, e.g. "devkit sysroot resolve".
func (c *Command) path() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.path() + " " + c.Name
}

func wantsHelp(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
