// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// StubBinary writes an executable shell script named name into dir and
// returns its path. The script body does not need the "#!/bin/sh"
// line; it is prepended. Use together with PrependPath to fake an
// external collaborator like docker or bazel.
func StubBinary(t *testing.T, dir, name, script string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	content := "#!/bin/sh\n" + script
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("writing stub %s: %v", name, err)
	}
	return path
}

// PrependPath puts dir at the front of PATH for the duration of the
// test. Tests calling this cannot use t.Parallel (t.Setenv forbids it).
func PrependPath(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

// WriteFile creates a file with parent directories, failing the test
// on error. Mode is 0644.
func WriteFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
