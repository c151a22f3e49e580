// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

package execute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Spec describes one external command invocation.
type Spec struct {
	// Name is the binary to run. Resolved against PATH when it does
	// not contain a path separator, exactly like exec.Command.
	Name string

	// Args are the arguments, not including the binary name.
	Args []string

	// Dir is the working directory. Empty means the caller's
	// current directory.
	Dir string

	// Env holds additional environment entries in KEY=VALUE form,
	// appended to the parent environment.
	Env []string

	// Stdin is connected to the process when non-nil.
	Stdin io.Reader
}

// Result captures a completed invocation: the spec that produced it,
// the exit code, and both output streams in full.
type Result struct {
	Spec     Spec
	ExitCode int
	Stdout   string
	Stderr   string
}

// CommandLine renders the invocation the way an operator would type
// it. Arguments containing whitespace are quoted.
func (r *Result) CommandLine() string {
	parts := make([]string, 0, len(r.Spec.Args)+1)
	parts = append(parts, r.Spec.Name)
	for _, arg := range r.Spec.Args {
		if strings.ContainsAny(arg, " \t\n") {
			parts = append(parts, fmt.Sprintf("%q", arg))
		} else {
			parts = append(parts, arg)
		}
	}
	return strings.Join(parts, " ")
}

/// Diagnose renders the full failure report: command line, exit code,
// and both captured streams. Empty streams are marked as such rather
// than omitted, so the report shape is stable.
func (r *Result) Diagnose() string {
	var b strings.Builder
	fmt.Fprintf(&b, "command: %s\n", r.CommandLine())
	fmt.Fprintf(&b, "exit code: %d\n", r.ExitCode)
	fmt.Fprintf(&b, "stdout:\n%s\n", streamOrMarker(r.Stdout))
	fmt.Fprintf(&b, "stderr:\n%s", streamOrMarker(r.Stderr))
	return b.String()
}

func streamOrMarker(s string) string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return "(empty)"
	}
	return s
}

// LastLine returns the last non-blank line of stdout, trimmed of
// surrounding whitespace. Returns "" when stdout has no non-blank
// line. This is the contract commands like tag resolution use: chatty
// progress first, the answer last.
func (r *Result) LastLine() string {
	lines := strings.Split(r.Stdout, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// ExitError reports a process that started, ran, and exited non-zero.
// The Result is always populated, including both captured streams.
type ExitError struct {
	Result *Result
}

// Error prefers the captured stderr, which carries the actual failure
// cause, over the bare exit code.
func (e *ExitError) Error() string {
	if stderr := strings.TrimSpace(e.Result.Stderr); stderr != "" {
		return fmt.Sprintf("%s: exit code %d: %s", e.Result.CommandLine(), e.Result.ExitCode, stderr)
	}
	return fmt.Sprintf("%s: exit code %d", e.Result.CommandLine(), e.Result.ExitCode)
}

// Runner is the function type through which commands are run. The
// package-level Run is the production implementation; tests substitute
// their own to fake external collaborators without touching PATH.
type Runner func(ctx context.Context, spec Spec) (*Result, error)

// Run executes spec and waits for it to finish. On a non-zero exit it
// returns the populated Result together with an *ExitError wrapping
// it. Failures to start the process at all (binary not found, bad
// working directory) return a nil Result.
func Run(ctx context.Context, spec Spec) (*Result, error) {
	command := exec.CommandContext(ctx, spec.Name, spec.Args...)
	command.Dir = spec.Dir
	if len(spec.Env) > 0 {
		command.Env = append(os.Environ(), spec.Env...)
	}
	command.Stdin = spec.Stdin

	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	err := command.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("starting %s: %w", spec.Name, err)
		}
		result := &Result{
			Spec:     spec,
			ExitCode: exitErr.ExitCode(),
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
		}
		return result, &ExitError{Result: result}
	}

	return &Result{
		Spec:   spec,
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}, nil
}
