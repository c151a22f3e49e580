// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewLogger builds the logger for command handlers. Logs always go to
// stderr so that machine-readable command output (resolved tags, mount
// lists) stays alone on stdout. Interactive sessions get text
// output; pipes and CI get JSON.
func NewLogger() *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}
