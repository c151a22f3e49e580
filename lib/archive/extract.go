// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/klauspost/compress/gzip"
)

// Extract unpacks the gzip-compressed tar stream r into dir, creating
// dir if needed. Entry paths are securely joined under dir, so a
// malicious archive cannot write outside it. Symlink targets may be
// relative (resolved lazily at use time) but absolute targets and
// targets escaping dir are rejected.
func Extract(r io.Reader, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	zr, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("reading gzip header: %w", err)
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		header, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar: %w", err)
		}
		if err := extractEntry(tr, header, dir); err != nil {
			return fmt.Errorf("entry %s: %w", header.Name, err)
		}
	}
}

// ExtractFile unpacks the archive file at path into dir.
func ExtractFile(path, dir string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	if err := Extract(f, dir); err != nil {
		return fmt.Errorf("extracting %s: %w", path, err)
	}
	return nil
}

func extractEntry(tr *tar.Reader, header *tar.Header, dir string) error {
	target, err := securejoin.SecureJoin(dir, header.Name)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	switch header.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, perm(header))

	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm(header))
		if err != nil {
			return err
		}
		if _, err := io.Copy(f, tr); err != nil {
			f.Close()
			return err
		}
		return f.Close()

	case tar.TypeSymlink:
		if err := checkLinkTarget(header.Name, header.Linkname); err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		// Replace any entry left by a previous extraction.
		_ = os.Remove(target)
		return os.Symlink(header.Linkname, target)

	case tar.TypeLink:
		source, err := securejoin.SecureJoin(dir, header.Linkname)
		if err != nil {
			return fmt.Errorf("resolving link source: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		_ = os.Remove(target)
		return os.Link(source, target)

	default:
		return fmt.Errorf("unsupported entry type %q", header.Typeflag)
	}
}

// checkLinkTarget rejects symlink targets that would point outside the
// extraction root: absolute targets, and relative targets with more
// ".." components than the entry has parent directories.
func checkLinkTarget(name, target string) error {
	if filepath.IsAbs(target) {
		return fmt.Errorf("absolute symlink target %q", target)
	}
	joined := filepath.Join(filepath.Dir(name), target)
	if joined == ".." || strings.HasPrefix(joined, "../") {
		return fmt.Errorf("symlink target %q escapes archive root", target)
	}
	return nil
}

// perm clamps a tar header mode to permission bits.
func perm(header *tar.Header) os.FileMode {
	return os.FileMode(header.Mode).Perm()
}
