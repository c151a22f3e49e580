// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

// Package coverage holds the coverage report command.
package coverage

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/devkit-foundation/devkit/cmd/devkit/cli"
	libcoverage "github.com/devkit-foundation/devkit/lib/coverage"
)

// Command returns the "coverage" command.
func Command() *cli.Command {
	var (
		report          string
		target          string
		linesThreshold  float64
		branchThreshold float64
	)

	return &cli.Command{
		Name:    "coverage",
		Summary: "Run coverage and validate per-file thresholds",
		Long: "Run bazel coverage for a target (or read an existing lcov trace),\n" +
			"print a per-file line and branch coverage table with the uncovered\n" +
			"ranges, and fail when any file falls below the thresholds.",
		Usage: "devkit coverage [flags]",
		Examples: []cli.Example{
			{
				Description: "Full-coverage gate over the whole workspace",
				Command:     "devkit coverage",
			},
			{
				Description: "Inspect an existing trace at a relaxed bar",
				Command:     "devkit coverage --report bazel-out/_coverage/_coverage_report.dat --lines 80",
			},
		},
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("coverage", pflag.ContinueOnError)
			flags.StringVar(&report, "report", "", "existing lcov trace (skips running bazel)")
			flags.StringVar(&target, "target", "//...", "bazel test target to run coverage for")
			flags.Float64Var(&linesThreshold, "lines", 100.0,
				"minimum per-file line coverage in percent")
			flags.Float64Var(&branchThreshold, "branch", 100.0,
				"minimum per-file branch coverage in percent")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("unexpected arguments: %v", args)
			}
			for name, value := range map[string]float64{"lines": linesThreshold, "branch": branchThreshold} {
				if value < 0.0 || value > 100.0 {
					return fmt.Errorf("--%s must be in [0.0, 100.0], got %g", name, value)
				}
			}

			if report == "" {
				path, err := libcoverage.RunBazelCoverage(context.Background(), nil, target)
				if err != nil {
					return err
				}
				report = path
			}

			trace, err := os.Open(report)
			if err != nil {
				return err
			}
			defer trace.Close()
			files, err := libcoverage.ParseLCOV(trace)
			if err != nil {
				return err
			}

			if !libcoverage.Report(os.Stdout, files, linesThreshold/100, branchThreshold/100) {
				fmt.Println("Coverage check failed.")
				return &cli.ExitError{Code: 1}
			}
			fmt.Println("Coverage check passed.")
			return nil
		},
	}
}
