// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive packs and unpacks the gzip-compressed tar archives
// devkit moves sysroots around in.
//
// Pack is deterministic: entries are written in sorted order with
// epoch mtime, uid/gid 0, and numeric-only ownership, and the gzip
// header carries no name or timestamp. The same directory tree always
// produces a byte-identical archive, which is what makes the pinned
// sysroot checksum stable across rebuilds of the same generator image.
//
// Extract contains every entry path inside the destination directory;
// archives that try to escape via ".." components or absolute symlink
// targets are rejected.
package archive
