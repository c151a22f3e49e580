// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

// Package bazel captures build event protocol streams for dependency
// auditing. Each invocation runs against a throwaway output base and
// repository cache so the emitted events cover every fetch instead of
// whatever the local caches already hold.
package bazel

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/devkit-foundation/devkit/lib/execute"
)

// EventOptions parametrizes a capture run.
type EventOptions struct {
	// Targets to process, one event file each. Empty means a single
	// capture over the whole workspace ("//...").
	Targets []string

	// Command is the bazel command driving the capture, "fetch" or
	// "build".
	Command string

	// OutputDir receives the event files. Defaults to "bazel-bep".
	OutputDir string

	Runner execute.Runner
	Logger *slog.Logger
}

// EventFileName is written per captured target.
const EventFileName = "bep.json"

// CaptureEvents runs the configured bazel command per target with a
// JSON build-event file, returning the paths of the written files.
func CaptureEvents(ctx context.Context, opts EventOptions) ([]string, error) {
	switch opts.Command {
	case "fetch", "build":
	case "":
		opts.Command = "fetch"
	default:
		return nil, fmt.Errorf("unsupported bazel command %q, want fetch or build", opts.Command)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "bazel-bep"
	}
	if opts.Runner == nil {
		opts.Runner = execute.Run
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, err
	}

	if len(opts.Targets) == 0 {
		path := filepath.Join(opts.OutputDir, EventFileName)
		if err := captureTarget(ctx, &opts, "//...", path); err != nil {
			return nil, err
		}
		return []string{path}, nil
	}

	var written []string
	for _, target := range opts.Targets {
		dir := filepath.Join(opts.OutputDir, sanitizeTarget(target))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, EventFileName)
		if err := captureTarget(ctx, &opts, target, path); err != nil {
			return nil, err
		}
		written = append(written, path)
	}
	return written, nil
}

// sanitizeTarget turns a label into a directory name: colons become
// underscores and only the last path component is kept.
func sanitizeTarget(target string) string {
	name := strings.ReplaceAll(target, ":", "_")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func captureTarget(ctx context.Context, opts *EventOptions, target, eventFile string) error {
	outputBase, err := os.MkdirTemp("", "devkit-bazel-base-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(outputBase)
	repositoryCache, err := os.MkdirTemp("", "devkit-bazel-repo-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(repositoryCache)

	args := []string{
		"--output_base=" + outputBase,
		opts.Command,
		"--build_event_json_file=" + eventFile,
		"--repository_cache=" + repositoryCache,
		target,
	}
	// A cached build produces no fetch events, defeating the capture.
	if opts.Command == "build" {
		args = append(args, "--noremote_accept_cached")
	}

	opts.Logger.Info("capturing build events", "target", target, "command", opts.Command)
	result, err := opts.Runner(ctx, execute.Spec{Name: "bazel", Args: args})
	if err != nil {
		if result != nil {
			return fmt.Errorf("bazel %s failed for %s\n%s", opts.Command, target, result.Diagnose())
		}
		return fmt.Errorf("running bazel %s for %s: %w", opts.Command, target, err)
	}
	return nil
}
