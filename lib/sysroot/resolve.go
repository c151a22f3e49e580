// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

// Package sysroot acquires verified sysroots: given the devkit config
// and a pinned archive checksum, it resolves the generator image tag,
// builds and exports the sysroot archive, verifies its digest, and
// extracts it into an output directory exposed through a generated
// file-group descriptor.
//
// The pipeline is deliberately sequential and fail-fast: tag → build →
// presence → checksum → extract, each stage a blocking external
// command with no retries. A failure at any stage aborts the resolve
// with the full command line and captured output attached, and leaves
// the output directory unpopulated. Correctness beats resilience here:
// a tampered or drifted sysroot must never reach downstream
// compilation.
package sysroot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/devkit-foundation/devkit/lib/archive"
	"github.com/devkit-foundation/devkit/lib/docker"
	"github.com/devkit-foundation/devkit/lib/execute"
)

const (
	// DefaultGenerator is the image whose tag parametrizes the
	// sysroot export build.
	DefaultGenerator = "sysroot-archive-generator"

	// ArchiveName is the artifact the export build must produce.
	ArchiveName = "sysroot.tar.gz"

	// ExportDockerfileName is the default export recipe looked up on
	// the search path when Options.Dockerfile is empty.
	ExportDockerfileName = "sysroot.Dockerfile"
)

// Options parametrizes one resolve. ConfigPath, SearchPaths,
// ExpectedSHA256, OutputDir, and TagCommand are required.
type Options struct {
	// ConfigPath is the devkit.json passed through to the
	// tag-resolution command.
	ConfigPath string

	// SearchPaths are the directories holding deps.json manifests
	// and Dockerfiles.
	SearchPaths []string

	// ExpectedSHA256 is the pinned hex digest of the sysroot
	// archive. Mandatory; there is no skip mode.
	ExpectedSHA256 string

	// OutputDir receives the extracted sysroot. It is populated
	// atomically: either the previous content stays (on failure) or
	// the whole verified tree replaces it.
	OutputDir string

	// Generator is the image whose tag is resolved. Defaults to
	// DefaultGenerator.
	Generator string

	// Dockerfile is the export recipe (the build that takes the
	// generator tag as BASE and emits the archive). When empty,
	// ExportDockerfileName is looked up on the search path.
	Dockerfile string

	// ContextDir is the export build context. Defaults to the
	// directory of Dockerfile.
	ContextDir string

	// TagCommand is the build-description command invoked to resolve
	// the generator tag, e.g. {"devkit", "image", "build"}. The
	// generator name and the --print-tag/--config/--search-path
	// flags are appended.
	TagCommand []string

	// DockerBinary overrides the docker binary. Defaults to "docker"
	// resolved via PATH.
	DockerBinary string

	// Runner executes external commands. Defaults to execute.Run.
	Runner execute.Runner

	Logger *slog.Logger
}

func (o *Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

func (o *Options) runner() execute.Runner {
	if o.Runner == nil {
		return execute.Run
	}
	return o.Runner
}

var hexDigest = regexp.MustCompile(`^[0-9a-f]{64}$`)

// NormalizeDigest canonicalizes a hex SHA-256 string: surrounding
// whitespace and an optional "sha256:" prefix are removed and the
// result lowercased. Returns an error when what remains is not 64 hex
// characters.
func NormalizeDigest(digest string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(digest))
	normalized = strings.TrimPrefix(normalized, "sha256:")
	if !hexDigest.MatchString(normalized) {
		return "", fmt.Errorf("%q is not a hex sha256 digest", digest)
	}
	return normalized, nil
}

// Resolve runs the acquisition pipeline and returns the manifest of
// the extracted sysroot. Deterministic and idempotent for fixed
// inputs: when the output directory already holds a tree resolved
// from identical inputs, no external command is run.
func Resolve(ctx context.Context, opts Options) (*Manifest, error) {
	if opts.ExpectedSHA256 == "" {
		return nil, errors.New("an expected sha256 is required: the sysroot checksum is fail-closed and cannot be skipped")
	}
	expected, err := NormalizeDigest(opts.ExpectedSHA256)
	if err != nil {
		return nil, err
	}
	if opts.OutputDir == "" {
		return nil, errors.New("an output directory is required")
	}
	if len(opts.TagCommand) == 0 {
		return nil, errors.New("a tag-resolution command is required")
	}
	if opts.Generator == "" {
		opts.Generator = DefaultGenerator
	}
	if opts.Dockerfile == "" {
		path, err := findExportDockerfile(opts.SearchPaths)
		if err != nil {
			return nil, err
		}
		opts.Dockerfile = path
	}
	if opts.ContextDir == "" {
		opts.ContextDir = filepath.Dir(opts.Dockerfile)
	}
	if opts.DockerBinary == "" {
		opts.DockerBinary = "docker"
	}

	fingerprint, err := inputFingerprint(&opts)
	if err != nil {
		return nil, err
	}
	if previous, err := readManifest(opts.OutputDir); err == nil && previous != nil {
		if previous.InputFingerprint == fingerprint {
			opts.logger().Info("sysroot up to date, skipping resolve",
				"output", opts.OutputDir, "tag", previous.Tag)
			return previous, nil
		}
	}

	tag, err := resolveTag(ctx, &opts)
	if err != nil {
		return nil, err
	}
	opts.logger().Info("resolved generator tag", "tag", tag)

	archivePath, cleanupBuild, err := buildArchive(ctx, &opts, tag)
	if err != nil {
		return nil, err
	}
	defer cleanupBuild()

	actual, err := digestFile(archivePath)
	if err != nil {
		return nil, &ChecksumComputationError{Path: archivePath, Err: err}
	}
	if actual != expected {
		return nil, &ChecksumMismatchError{Path: archivePath, Expected: expected, Actual: actual}
	}
	opts.logger().Info("sysroot archive verified", "sha256", actual)

	manifest, err := install(&opts, archivePath, tag, actual, fingerprint)
	if err != nil {
		return nil, err
	}
	opts.logger().Info("sysroot extracted",
		"output", opts.OutputDir, "files", len(manifest.Files))
	return manifest, nil
}

// findExportDockerfile locates the default export recipe on the
// search path.
func findExportDockerfile(searchPaths []string) (string, error) {
	for _, dir := range searchPaths {
		candidate := filepath.Join(dir, ExportDockerfileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Abs(candidate)
		}
	}
	return "", fmt.Errorf("%s not found in search paths %v", ExportDockerfileName, searchPaths)
}

// resolveTag invokes the build-description command and takes the last
// non-blank stdout line as the generator tag.
func resolveTag(ctx context.Context, opts *Options) (string, error) {
	args := append([]string{}, opts.TagCommand[1:]...)
	args = append(args, opts.Generator, "--print-tag", "--config="+opts.ConfigPath)
	for _, dir := range opts.SearchPaths {
		args = append(args, "--search-path="+dir)
	}

	result, err := opts.runner()(ctx, execute.Spec{Name: opts.TagCommand[0], Args: args})
	if err != nil {
		if result != nil {
			return "", &TagResolutionError{Result: result}
		}
		return "", fmt.Errorf("running tag-resolution command: %w", err)
	}

	tag := result.LastLine()
	if tag == "" {
		return "", &TagResolutionError{Result: result, EmptyTag: true}
	}
	return tag, nil
}

// buildArchive runs the export build into a fresh staging directory
// and verifies the archive was produced. The returned cleanup removes
// the staging directory.
func buildArchive(ctx context.Context, opts *Options, tag string) (string, func(), error) {
	staging, err := os.MkdirTemp("", "devkit-sysroot-build-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating staging directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(staging) }

	client := &docker.Client{Binary: opts.DockerBinary, Runner: opts.runner()}
	result, err := client.Build(ctx, docker.BuildRequest{
		Dockerfile: opts.Dockerfile,
		BuildArgs:  []string{"BASE=" + tag},
		Context:    opts.ContextDir,
		ExportDir:  staging,
	})
	if err != nil {
		cleanup()
		if result != nil {
			return "", nil, &ImageBuildError{Result: result}
		}
		return "", nil, fmt.Errorf("running container build: %w", err)
	}

	archivePath := filepath.Join(staging, ArchiveName)
	if _, err := os.Stat(archivePath); err != nil {
		cleanup()
		return "", nil, &MissingArtifactError{Path: archivePath, Result: result}
	}
	return archivePath, cleanup, nil
}

// digestFile streams the file through SHA-256.
func digestFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// install extracts the verified archive into a staging tree, writes
// the manifest and build descriptor there, and atomically swaps it
// into place as the output directory.
func install(opts *Options, archivePath, tag, archiveSHA256, fingerprint string) (*Manifest, error) {
	outputAbs, err := filepath.Abs(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	parent := filepath.Dir(outputAbs)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", parent, err)
	}

	staging, err := os.MkdirTemp(parent, ".sysroot-*")
	if err != nil {
		return nil, fmt.Errorf("creating extraction staging: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := archive.ExtractFile(archivePath, staging); err != nil {
		return nil, &ExtractionError{Path: archivePath, Err: err}
	}

	manifest, err := buildManifest(staging, tag, archiveSHA256, fingerprint)
	if err != nil {
		return nil, err
	}
	if err := manifest.write(staging); err != nil {
		return nil, err
	}

	if err := os.RemoveAll(outputAbs); err != nil {
		return nil, fmt.Errorf("clearing %s: %w", outputAbs, err)
	}
	if err := os.Rename(staging, outputAbs); err != nil {
		return nil, fmt.Errorf("installing sysroot into %s: %w", outputAbs, err)
	}
	return manifest, nil
}
