// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
)

// writeTree creates a small sysroot-shaped fixture tree.
func writeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"usr/include/stdio.h":  "#pragma once\n",
		"usr/lib/libc.so.6":    "\x7fELF-fake",
		"lib/ld-linux.so.2":    "loader",
		"lib64/libpthread.so0": "threads",
	}
	for path, content := range files {
		full := filepath.Join(dir, path)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Symlink("libc.so.6", filepath.Join(dir, "usr/lib/libc.so")); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestPack_Deterministic(t *testing.T) {
	t.Parallel()

	dir := writeTree(t)

	var first, second bytes.Buffer
	if err := Pack(dir, &first); err != nil {
		t.Fatalf("first Pack: %v", err)
	}
	// Touch mtimes between packs; output must not change.
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "lib/ld-linux.so.2"), future, future); err != nil {
		t.Fatal(err)
	}
	if err := Pack(dir, &second); err != nil {
		t.Fatalf("second Pack: %v", err)
	}

	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("repeated Pack of the same tree produced different bytes")
	}
}

func TestPack_FixedMetadata(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Pack(writeTree(t), &buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	zr, err := gzip.NewReader(&buf)
	if err != nil {
		t.Fatalf("gzip: %v", err)
	}
	if zr.Name != "" || !zr.ModTime.IsZero() {
		t.Errorf("gzip header carries identity: name=%q mtime=%v", zr.Name, zr.ModTime)
	}

	tr := tar.NewReader(zr)
	var previous string
	for {
		header, err := tr.Next()
		if err != nil {
			break
		}
		if !header.ModTime.Equal(time.Unix(0, 0)) {
			t.Errorf("%s: mtime = %v, want epoch", header.Name, header.ModTime)
		}
		if header.Uid != 0 || header.Gid != 0 || header.Uname != "" || header.Gname != "" {
			t.Errorf("%s: ownership not numeric root (uid=%d gid=%d uname=%q gname=%q)",
				header.Name, header.Uid, header.Gid, header.Uname, header.Gname)
		}
		if previous != "" && header.Name < previous {
			t.Errorf("entries out of order: %s after %s", header.Name, previous)
		}
		previous = header.Name
	}
}

func TestPackExtract_RoundTrip(t *testing.T) {
	t.Parallel()

	source := writeTree(t)
	var buf bytes.Buffer
	if err := Pack(source, &buf); err != nil {
		t.Fatalf("Pack: %v", err)
	}

	dest := t.TempDir()
	if err := Extract(&buf, dest); err != nil {
		t.Fatalf("Extract: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dest, "usr/include/stdio.h"))
	if err != nil {
		t.Fatalf("reading extracted file: %v", err)
	}
	if string(content) != "#pragma once\n" {
		t.Errorf("extracted content = %q", content)
	}

	target, err := os.Readlink(filepath.Join(dest, "usr/lib/libc.so"))
	if err != nil {
		t.Fatalf("reading extracted symlink: %v", err)
	}
	if target != "libc.so.6" {
		t.Errorf("symlink target = %q, want libc.so.6", target)
	}
}

func TestExtract_RejectsEscapingSymlink(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(zw)
	if err := tw.WriteHeader(&tar.Header{
		Name:     "evil",
		Typeflag: tar.TypeSymlink,
		Linkname: "../../outside",
		Mode:     0o777,
	}); err != nil {
		t.Fatal(err)
	}
	tw.Close()
	zw.Close()

	if err := Extract(&buf, t.TempDir()); err == nil {
		t.Fatal("expected error for symlink escaping the archive root")
	}
}

func TestExtract_RejectsAbsoluteSymlink(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(zw)
	if err := tw.WriteHeader(&tar.Header{
		Name:     "etc-passwd",
		Typeflag: tar.TypeSymlink,
		Linkname: "/etc/passwd",
		Mode:     0o777,
	}); err != nil {
		t.Fatal(err)
	}
	tw.Close()
	zw.Close()

	if err := Extract(&buf, t.TempDir()); err == nil {
		t.Fatal("expected error for absolute symlink target")
	}
}

func TestExtract_ContainsDotDotPaths(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(zw)
	content := []byte("escaped")
	if err := tw.WriteHeader(&tar.Header{
		Name:     "../escape.txt",
		Typeflag: tar.TypeReg,
		Size:     int64(len(content)),
		Mode:     0o644,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write(content); err != nil {
		t.Fatal(err)
	}
	tw.Close()
	zw.Close()

	parent := t.TempDir()
	dest := filepath.Join(parent, "dest")
	if err := Extract(&buf, dest); err != nil {
		t.Fatalf("Extract: %v", err)
	}
	// The ".." component must have been contained inside dest, not
	// resolved against the parent directory.
	if _, err := os.Stat(filepath.Join(parent, "escape.txt")); err == nil {
		t.Error("archive entry escaped the destination directory")
	}
	if _, err := os.Stat(filepath.Join(dest, "escape.txt")); err != nil {
		t.Errorf("contained entry missing inside destination: %v", err)
	}
}

func TestExtract_CorruptArchive(t *testing.T) {
	t.Parallel()

	if err := Extract(bytes.NewReader([]byte("not a gzip stream")), t.TempDir()); err == nil {
		t.Fatal("expected error for corrupt archive")
	}
}

func TestPackFileExtractFile(t *testing.T) {
	t.Parallel()

	source := writeTree(t)
	path := filepath.Join(t.TempDir(), "sysroot.tar.gz")
	if err := PackFile(source, path); err != nil {
		t.Fatalf("PackFile: %v", err)
	}
	dest := t.TempDir()
	if err := ExtractFile(path, dest); err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "usr/lib/libc.so.6")); err != nil {
		t.Errorf("round-tripped file missing: %v", err)
	}
}
