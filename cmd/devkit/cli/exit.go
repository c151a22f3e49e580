// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError carries a non-zero exit code for commands whose output is
// already on screen, such as a coverage check that printed its report.
// main exits with the code instead of printing a redundant error line.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode is checked by main on returned errors to separate a
// handled non-zero exit from an error worth displaying.
func (e *ExitError) ExitCode() int {
	return e.Code
}
