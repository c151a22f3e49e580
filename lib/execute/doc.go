// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

// Package execute runs external commands with a uniform contract:
// a fully described invocation in, captured exit code plus both output
// streams out. Every external collaborator devkit talks to (docker,
// bazel, the tag-resolution command) goes through this package, so
// that failure diagnostics always carry the exact command line and the
// verbatim stdout/stderr an operator needs to reproduce the failure
// by hand.
//
// Run blocks until the process exits. There are no retries and no
// timeouts here; callers that want cancellation pass a context.
package execute
