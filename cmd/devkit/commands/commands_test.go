// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"strings"
	"testing"

	"github.com/devkit-foundation/devkit/cmd/devkit/cli"
)

// TestCommandTreeShape walks the full command tree and validates that
// every node is dispatchable: group commands list subcommands, leaf
// commands have a Run function, and every command a user can see
// carries a summary for the help listing.
func TestCommandTreeShape(t *testing.T) {
	walkCommands(Root(), nil, func(command *cli.Command, path []string) {
		name := strings.Join(path, " ")
		if command.Run == nil && len(command.Subcommands) == 0 {
			t.Errorf("%s: neither Run nor subcommands", name)
		}
		if command.Summary == "" {
			t.Errorf("%s: missing summary", name)
		}
		seen := make(map[string]bool)
		for _, sub := range command.Subcommands {
			if seen[sub.Name] {
				t.Errorf("%s: duplicate subcommand %q", name, sub.Name)
			}
			seen[sub.Name] = true
		}
	})
}

func TestRootListsCoreCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, sub := range Root().Subcommands {
		names[sub.Name] = true
	}
	for _, want := range []string{"image", "sysroot", "archive", "bootstrap", "mounts", "coverage", "bep"} {
		if !names[want] {
			t.Errorf("root command missing %q", want)
		}
	}
}

func walkCommands(command *cli.Command, path []string, visit func(*cli.Command, []string)) {
	current := append(append([]string{}, path...), command.Name)
	visit(command, current)
	for _, sub := range command.Subcommands {
		walkCommands(sub, current, visit)
	}
}
