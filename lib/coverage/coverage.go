// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

// Package coverage parses lcov traces produced by bazel coverage runs
// and renders a per-file summary with threshold validation.
package coverage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/devkit-foundation/devkit/lib/execute"
)

// Branch identifies one uncovered branch in a source file.
type Branch struct {
	Line  int
	Block int
	ID    int
}

// FileCoverage aggregates the lcov records of a single source file.
type FileCoverage struct {
	Path              string
	LinesFound        int
	LinesHit          int
	BranchesFound     int
	BranchesHit       int
	UncoveredLines    []int
	UncoveredBranches []Branch
}

// LineCoverage returns the line coverage as a fraction in [0, 1].
// A file with no instrumented lines counts as fully covered.
func (f *FileCoverage) LineCoverage() float64 {
	if f.LinesFound == 0 {
		return 1.0
	}
	return float64(f.LinesHit) / float64(f.LinesFound)
}

// BranchCoverage returns the branch coverage as a fraction in [0, 1].
func (f *FileCoverage) BranchCoverage() float64 {
	if f.BranchesFound == 0 {
		return 1.0
	}
	return float64(f.BranchesHit) / float64(f.BranchesFound)
}

// ParseLCOV reads an lcov trace, returning one entry per source file
// in encounter order. Unknown record types are ignored.
func ParseLCOV(r io.Reader) ([]*FileCoverage, error) {
	var files []*FileCoverage
	var current *FileCoverage

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "SF:"):
			current = &FileCoverage{Path: strings.TrimPrefix(line, "SF:")}
			files = append(files, current)
		case line == "end_of_record":
			current = nil
		case current != nil:
			if err := parseRecord(line, current); err != nil {
				return nil, fmt.Errorf("lcov record %q: %w", line, err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return files, nil
}

func parseRecord(line string, file *FileCoverage) error {
	switch {
	case strings.HasPrefix(line, "LF:"):
		return parseInt(strings.TrimPrefix(line, "LF:"), &file.LinesFound)
	case strings.HasPrefix(line, "LH:"):
		return parseInt(strings.TrimPrefix(line, "LH:"), &file.LinesHit)
	case strings.HasPrefix(line, "BRF:"):
		return parseInt(strings.TrimPrefix(line, "BRF:"), &file.BranchesFound)
	case strings.HasPrefix(line, "BRH:"):
		return parseInt(strings.TrimPrefix(line, "BRH:"), &file.BranchesHit)
	case strings.HasPrefix(line, "DA:"):
		parts := strings.Split(strings.TrimPrefix(line, "DA:"), ",")
		if len(parts) < 2 {
			return fmt.Errorf("malformed line record")
		}
		var lineNumber, hits int
		if err := parseInt(parts[0], &lineNumber); err != nil {
			return err
		}
		if err := parseInt(parts[1], &hits); err != nil {
			return err
		}
		if hits == 0 {
			file.UncoveredLines = append(file.UncoveredLines, lineNumber)
		}
	case strings.HasPrefix(line, "BRDA:"):
		parts := strings.Split(strings.TrimPrefix(line, "BRDA:"), ",")
		if len(parts) < 4 {
			return fmt.Errorf("malformed branch record")
		}
		var branch Branch
		if err := parseInt(parts[0], &branch.Line); err != nil {
			return err
		}
		if err := parseInt(parts[1], &branch.Block); err != nil {
			return err
		}
		if err := parseInt(parts[2], &branch.ID); err != nil {
			return err
		}
		// An untaken branch is marked "-" instead of a hit count.
		if parts[3] == "-" {
			file.UncoveredBranches = append(file.UncoveredBranches, branch)
		}
	}
	return nil
}

func parseInt(s string, dest *int) error {
	value, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	*dest = value
	return nil
}

// GroupRanges renders sorted line numbers as compact ranges, e.g.
// [1 2 3 6 7 10] becomes "1-3, 6-7, 10".
func GroupRanges(numbers []int) string {
	if len(numbers) == 0 {
		return ""
	}
	sorted := append([]int(nil), numbers...)
	sort.Ints(sorted)

	var ranges []string
	start := sorted[0]
	previous := sorted[0]
	flush := func(end int) {
		if start == end {
			ranges = append(ranges, strconv.Itoa(start))
		} else {
			ranges = append(ranges, fmt.Sprintf("%d-%d", start, end))
		}
	}
	for _, n := range sorted[1:] {
		if n != previous+1 {
			flush(previous)
			start = n
		}
		previous = n
	}
	flush(previous)
	return strings.Join(ranges, ", ")
}

const pathColumn = 50

// fitPath pads or left-truncates a path to the summary column width,
// keeping the file name visible when truncating.
func fitPath(path string) string {
	if len(path) > pathColumn {
		return "..." + path[len(path)-(pathColumn-3):]
	}
	return path + strings.Repeat(" ", pathColumn-len(path))
}

// Report writes the summary table and the missing-coverage details,
// returning false when any file falls below either threshold
// (fractions in [0, 1]).
func Report(w io.Writer, files []*FileCoverage, linesThreshold, branchThreshold float64) bool {
	passed := true
	fmt.Fprintf(w, "%-*s | Lines %% | Branches %%\n", pathColumn, "file")
	fmt.Fprintln(w, strings.Repeat("-", 73))

	var totalLines, totalBranches float64
	for _, file := range files {
		lines := file.LineCoverage()
		branches := file.BranchCoverage()
		fmt.Fprintf(w, "%s | %6.2f%% | %9.2f%%\n", fitPath(file.Path), lines*100, branches*100)
		if lines < linesThreshold || branches < branchThreshold {
			passed = false
		}
		totalLines += lines / float64(len(files))
		totalBranches += branches / float64(len(files))
	}

	fmt.Fprintln(w, strings.Repeat("-", 73))
	fmt.Fprintf(w, "%-*s | %6.2f%% | %9.2f%%\n", pathColumn, "Total", totalLines*100, totalBranches*100)

	fmt.Fprintln(w, "\n--- Missing Coverage ---")
	anyMissing := false
	for _, file := range files {
		if len(file.UncoveredLines) == 0 && len(file.UncoveredBranches) == 0 {
			continue
		}
		anyMissing = true
		fmt.Fprintf(w, "\nFile: %s\n", file.Path)
		if ranges := GroupRanges(file.UncoveredLines); ranges != "" {
			fmt.Fprintf(w, "Lines to test: %s\n", ranges)
		}
		if len(file.UncoveredBranches) > 0 {
			fmt.Fprintln(w, "Branches to test:")
			for _, branch := range file.UncoveredBranches {
				fmt.Fprintf(w, "Line %d: (block: %d, branch: %d)\n", branch.Line, branch.Block, branch.ID)
			}
		}
	}
	if !anyMissing {
		fmt.Fprintln(w, "All covered!")
	}
	return passed
}

// RunBazelCoverage runs bazel coverage with a combined lcov report
// and returns the path of the generated trace.
func RunBazelCoverage(ctx context.Context, runner execute.Runner, target string) (string, error) {
	if runner == nil {
		runner = execute.Run
	}
	result, err := runner(ctx, execute.Spec{
		Name: "bazel",
		Args: []string{"coverage", "--combined_report=lcov", target},
	})
	if err != nil {
		if result != nil {
			return "", fmt.Errorf("bazel coverage failed\n%s", result.Diagnose())
		}
		return "", fmt.Errorf("running bazel coverage: %w", err)
	}
	return filepath.Join("bazel-out", "_coverage", "_coverage_report.dat"), nil
}
