// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

package execute

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRun_CapturesStdoutAndStderr(t *testing.T) {
	t.Parallel()

	result, err := Run(context.Background(), Spec{
		Name: "sh",
		Args: []string{"-c", "echo out; echo err >&2"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.TrimSpace(result.Stdout); got != "out" {
		t.Errorf("stdout = %q, want %q", got, "out")
	}
	if got := strings.TrimSpace(result.Stderr); got != "err" {
		t.Errorf("stderr = %q, want %q", got, "err")
	}
	if result.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", result.ExitCode)
	}
}

func TestRun_NonZeroExitReturnsExitError(t *testing.T) {
	t.Parallel()

	result, err := Run(context.Background(), Spec{
		Name: "sh",
		Args: []string{"-c", "echo partial; exit 3"},
	})
	if err == nil {
		t.Fatal("expected error for exit 3")
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %T, want *ExitError", err)
	}
	if result == nil {
		t.Fatal("result must be populated on non-zero exit")
	}
	if result.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", result.ExitCode)
	}
	if got := strings.TrimSpace(result.Stdout); got != "partial" {
		t.Errorf("stdout = %q, want %q", got, "partial")
	}
}

func TestExitError_MessageCarriesStderr(t *testing.T) {
	t.Parallel()

	_, err := Run(context.Background(), Spec{
		Name: "sh",
		Args: []string{"-c", "echo some diagnostic >&2; exit 1"},
	})
	if err == nil {
		t.Fatal("expected error for exit 1")
	}
	if !strings.Contains(err.Error(), "some diagnostic") {
		t.Errorf("error %v does not carry stderr", err)
	}

	quiet := &ExitError{Result: &Result{
		Spec:     Spec{Name: "true"},
		ExitCode: 2,
	}}
	if got := quiet.Error(); got != "true: exit code 2" {
		t.Errorf("error without stderr = %q", got)
	}
}

func TestRun_MissingBinary(t *testing.T) {
	t.Parallel()

	result, err := Run(context.Background(), Spec{Name: "devkit-no-such-binary-xyz"})
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if result != nil {
		t.Errorf("result = %+v, want nil for start failure", result)
	}
}

func TestRun_WorkingDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	result, err := Run(context.Background(), Spec{Name: "pwd", Dir: dir})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// pwd may report a symlink-resolved variant of the temp dir; accept
	// either the literal path or its suffix.
	got := strings.TrimSpace(result.Stdout)
	if got != dir && !strings.HasSuffix(got, strings.TrimPrefix(dir, "/private")) {
		t.Errorf("pwd = %q, want %q", got, dir)
	}
}

func TestRun_ExtraEnvironment(t *testing.T) {
	t.Parallel()

	result, err := Run(context.Background(), Spec{
		Name: "sh",
		Args: []string{"-c", "printf %s \"$DEVKIT_TEST_VALUE\""},
		Env:  []string{"DEVKIT_TEST_VALUE=forty-two"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Stdout != "forty-two" {
		t.Errorf("stdout = %q, want %q", result.Stdout, "forty-two")
	}
}

func TestRun_StdinConnected(t *testing.T) {
	t.Parallel()

	result, err := Run(context.Background(), Spec{
		Name:  "cat",
		Stdin: strings.NewReader("piped"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Stdout != "piped" {
		t.Errorf("stdout = %q, want %q", result.Stdout, "piped")
	}
}

func TestLastLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stdout string
		want   string
	}{
		{"single line", "tag-1\n", "tag-1"},
		{"progress then answer", "step one\nstep two\nfinal-tag\n", "final-tag"},
		{"trailing blanks", "answer\n\n   \n", "answer"},
		{"whitespace trimmed", "  padded  \n", "padded"},
		{"all blank", "\n  \n\n", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result := &Result{Stdout: tt.stdout}
			if got := result.LastLine(); got != tt.want {
				t.Errorf("LastLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCommandLine_QuotesWhitespaceArgs(t *testing.T) {
	t.Parallel()

	result := &Result{Spec: Spec{
		Name: "docker",
		Args: []string{"buildx", "build", "--label", "a b"},
	}}
	want := `docker buildx build --label "a b"`
	if got := result.CommandLine(); got != want {
		t.Errorf("CommandLine() = %q, want %q", got, want)
	}
}

func TestDiagnose_MarksEmptyStreams(t *testing.T) {
	t.Parallel()

	result := &Result{
		Spec:     Spec{Name: "docker", Args: []string{"pull", "img"}},
		ExitCode: 1,
		Stdout:   "",
		Stderr:   "denied\n",
	}
	report := result.Diagnose()
	for _, want := range []string{"docker pull img", "exit code: 1", "(empty)", "denied"} {
		if !strings.Contains(report, want) {
			t.Errorf("Diagnose() missing %q in:\n%s", want, report)
		}
	}
}
