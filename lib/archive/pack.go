// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
)

// epoch is the fixed modification time stamped on every packed entry.
var epoch = time.Unix(0, 0)

// Pack writes dir as a deterministic gzip-compressed tar stream to w.
// The directory itself is not included; entry names are slash-separated
// paths relative to dir. Entry order is the lexical walk order, so two
// identical trees produce identical bytes.
func Pack(dir string, w io.Writer) error {
	zw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return fmt.Errorf("creating gzip writer: %w", err)
	}
	tw := tar.NewWriter(zw)

	walkErr := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dir {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		return writeEntry(tw, path, filepath.ToSlash(rel), entry)
	})
	if walkErr != nil {
		return fmt.Errorf("packing %s: %w", dir, walkErr)
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("finalizing tar: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing gzip: %w", err)
	}
	return nil
}

// PackFile packs dir into a new archive file at path.
func PackFile(dir, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Pack(dir, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// writeEntry emits one tar entry with all non-content metadata pinned
// to fixed values (epoch mtime, uid/gid 0, no owner names).
func writeEntry(tw *tar.Writer, path, name string, entry fs.DirEntry) error {
	info, err := entry.Info()
	if err != nil {
		return err
	}

	header := &tar.Header{
		Name:    name,
		Mode:    int64(info.Mode().Perm()),
		ModTime: epoch,
		Format:  tar.FormatPAX,
	}

	switch {
	case info.IsDir():
		header.Typeflag = tar.TypeDir
		header.Name += "/"

	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return err
		}
		header.Typeflag = tar.TypeSymlink
		header.Linkname = target

	case info.Mode().IsRegular():
		header.Typeflag = tar.TypeReg
		header.Size = info.Size()

	default:
		// Sockets, devices, and fifos have no place in a sysroot.
		return fmt.Errorf("unsupported file type %s: %s", info.Mode(), name)
	}

	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	if header.Typeflag != tar.TypeReg {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}
