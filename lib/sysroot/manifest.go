// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

package sysroot

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
)

const (
	// ManifestName is the descriptor written next to the extracted
	// tree. It records the provenance of the sysroot and is how a
	// later resolve recognizes an up-to-date output directory.
	ManifestName = "sysroot.manifest.json"

	// BuildFileName is the generated build descriptor exposing the
	// extracted tree as a single public file group.
	BuildFileName = "BUILD.bazel"
)

// Manifest describes a resolved sysroot.
type Manifest struct {
	// Tag is the generator image tag the archive was built from.
	Tag string `json:"tag"`

	// ArchiveSHA256 is the verified hex digest of sysroot.tar.gz.
	ArchiveSHA256 string `json:"archive_sha256"`

	// InputFingerprint hashes the resolver's auxiliary inputs; see
	// inputFingerprint for what it covers.
	InputFingerprint string `json:"input_fingerprint"`

	// TreeDigest is a content hash over the extracted tree (paths,
	// modes, file contents, link targets).
	TreeDigest string `json:"tree_digest"`

	// Files lists every extracted path, slash-separated and sorted,
	// relative to the output directory. Directories are not listed.
	Files []string `json:"files"`
}

// buildFileContent is the generated build descriptor. The manifest and
// the descriptor itself are excluded from the file group: they are
// resolver bookkeeping, not sysroot content.
const buildFileContent = `# Generated by devkit sysroot resolve. Do not edit.

package(default_visibility = ["//visibility:public"])

filegroup(
    name = "sysroot",
    srcs = glob(
        ["**"],
        exclude = [
            "BUILD.bazel",
            "sysroot.manifest.json",
        ],
    ),
)
`

// buildManifest walks the extracted tree rooted at dir and fills in
// the file list and tree digest.
func buildManifest(dir, tag, archiveSHA256, fingerprint string) (*Manifest, error) {
	manifest := &Manifest{
		Tag:              tag,
		ArchiveSHA256:    archiveSHA256,
		InputFingerprint: fingerprint,
	}

	hasher := blake3.New()
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir || entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		manifest.Files = append(manifest.Files, name)

		info, err := entry.Info()
		if err != nil {
			return err
		}
		fmt.Fprintf(hasher, "%s\x00%o\x00", name, info.Mode())
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			hasher.Write([]byte(target))
		} else {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			if _, err := io.Copy(hasher, f); err != nil {
				f.Close()
				return err
			}
			f.Close()
		}
		hasher.Write([]byte{0})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking extracted tree: %w", err)
	}

	manifest.TreeDigest = hex.EncodeToString(hasher.Sum(nil))
	return manifest, nil
}

// write persists the manifest and the build descriptor into dir.
func (m *Manifest) write(dir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ManifestName), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, BuildFileName), []byte(buildFileContent), 0o644); err != nil {
		return fmt.Errorf("writing build descriptor: %w", err)
	}
	return nil
}

// readManifest loads a previously written manifest from dir. Returns
// nil without error when none is present.
func readManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		// A corrupt manifest means the output directory cannot be
		// trusted; treat it as absent and regenerate.
		return nil, nil
	}
	return &manifest, nil
}
