// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

package sysroot

import (
	"fmt"

	"github.com/devkit-foundation/devkit/lib/execute"
)

// The resolver's failure taxonomy. Every stage of the pipeline has a
// distinct error type so callers (and operators reading build logs)
// can tell a broken tag script from a broken engine from a drifted
// checksum. All of them are terminal: nothing is retried, and a
// failed resolve leaves no output directory behind.

// TagResolutionError reports a failed or empty tag resolution: the
// build-description command exited non-zero, or its final stdout line
// was blank.
type TagResolutionError struct {
	// Result is the captured invocation. Always set.
	Result *execute.Result

	// EmptyTag is true when the command succeeded but produced no
	// usable tag line.
	EmptyTag bool
}

func (e *TagResolutionError) Error() string {
	if e.EmptyTag {
		return fmt.Sprintf("tag resolution produced an empty tag\n%s", e.Result.Diagnose())
	}
	return fmt.Sprintf("tag resolution failed\n%s", e.Result.Diagnose())
}

// ImageBuildError reports a non-zero exit from the container build
// that generates the sysroot archive.
type ImageBuildError struct {
	Result *execute.Result
}

func (e *ImageBuildError) Error() string {
	return fmt.Sprintf("sysroot archive build failed\n%s", e.Result.Diagnose())
}

// MissingArtifactError reports a build that exited zero without
// producing the expected archive. This is a contract violation
// between the export recipe and the resolver, not a checksum problem.
type MissingArtifactError struct {
	// Path is where the archive was expected.
	Path string

	// Result is the build invocation that should have produced it.
	Result *execute.Result
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("sysroot archive build succeeded but %s was not produced "+
		"(the export recipe no longer writes the archive the resolver expects)\n%s",
		e.Path, e.Result.Diagnose())
}

// ChecksumComputationError reports a failure to hash the generated
// archive.
type ChecksumComputationError struct {
	Path string
	Err  error
}

func (e *ChecksumComputationError) Error() string {
	return fmt.Sprintf("computing sha256 of %s: %v", e.Path, e.Err)
}

func (e *ChecksumComputationError) Unwrap() error { return e.Err }

// ChecksumMismatchError reports that the generated archive does not
// match the pinned digest. This is the fail-closed supply-chain check:
// a drifted or tampered generator image must never be accepted
// silently.
type ChecksumMismatchError struct {
	// Path is the archive that was hashed.
	Path string

	// Expected is the caller's pinned digest (normalized).
	Expected string

	// Actual is the digest computed from the archive.
	Actual string
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("sysroot archive checksum mismatch for %s:\n"+
		"  expected: %s\n"+
		"  computed: %s\n"+
		"if the generator inputs changed intentionally, update the pinned sha256 to the computed value",
		e.Path, e.Expected, e.Actual)
}

// ExtractionError reports a verified archive that could not be
// unpacked.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extracting %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
