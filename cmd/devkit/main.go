// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/devkit-foundation/devkit/cmd/devkit/commands"
)

func main() {
	if err := commands.Root().Execute(os.Args[1:]); err != nil {
		// Commands that already printed their outcome (like the
		// coverage gate) return an error carrying just the exit code.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
