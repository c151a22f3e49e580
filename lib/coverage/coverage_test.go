// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

package coverage

import (
	"context"
	"strings"
	"testing"

	"github.com/devkit-foundation/devkit/lib/execute"
)

const sampleTrace = `SF:src/parser.cc
DA:1,5
DA:2,0
DA:3,0
DA:4,2
DA:7,0
LF:5
LH:2
BRDA:4,0,0,3
BRDA:4,0,1,-
BRF:2
BRH:1
end_of_record
SF:src/lexer.cc
DA:1,9
DA:2,4
LF:2
LH:2
end_of_record
`

func TestParseLCOV(t *testing.T) {
	t.Parallel()
	files, err := ParseLCOV(strings.NewReader(sampleTrace))
	if err != nil {
		t.Fatalf("ParseLCOV: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}

	parser := files[0]
	if parser.Path != "src/parser.cc" {
		t.Errorf("path = %q", parser.Path)
	}
	if parser.LinesFound != 5 || parser.LinesHit != 2 {
		t.Errorf("lines = %d/%d, want 2/5", parser.LinesHit, parser.LinesFound)
	}
	if got := parser.UncoveredLines; len(got) != 3 || got[0] != 2 || got[1] != 3 || got[2] != 7 {
		t.Errorf("uncovered lines = %v, want [2 3 7]", got)
	}
	if len(parser.UncoveredBranches) != 1 || parser.UncoveredBranches[0] != (Branch{Line: 4, Block: 0, ID: 1}) {
		t.Errorf("uncovered branches = %v", parser.UncoveredBranches)
	}

	lexer := files[1]
	if lexer.LineCoverage() != 1.0 || lexer.BranchCoverage() != 1.0 {
		t.Errorf("lexer coverage = %v/%v, want full", lexer.LineCoverage(), lexer.BranchCoverage())
	}
}

func TestParseLCOVMalformed(t *testing.T) {
	t.Parallel()
	if _, err := ParseLCOV(strings.NewReader("SF:a.cc\nDA:notanumber,0\n")); err == nil {
		t.Fatal("ParseLCOV accepted a malformed record")
	}
}

func TestCoverageOfUninstrumentedFile(t *testing.T) {
	t.Parallel()
	file := &FileCoverage{Path: "empty.cc"}
	if file.LineCoverage() != 1.0 || file.BranchCoverage() != 1.0 {
		t.Error("a file without instrumented lines must count as covered")
	}
}

func TestGroupRanges(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   []int
		want string
	}{
		{nil, ""},
		{[]int{5}, "5"},
		{[]int{1, 2, 3, 6, 7, 10, 12, 13}, "1-3, 6-7, 10, 12-13"},
		{[]int{13, 12, 10, 7, 6, 3, 2, 1}, "1-3, 6-7, 10, 12-13"},
	}
	for _, tc := range tests {
		if got := GroupRanges(tc.in); got != tc.want {
			t.Errorf("GroupRanges(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestReportThresholds(t *testing.T) {
	t.Parallel()
	files, err := ParseLCOV(strings.NewReader(sampleTrace))
	if err != nil {
		t.Fatal(err)
	}

	var out strings.Builder
	if Report(&out, files, 1.0, 1.0) {
		t.Error("report passed at full thresholds despite uncovered lines")
	}
	text := out.String()
	for _, want := range []string{
		"src/parser.cc",
		"Lines to test: 2-3, 7",
		"Line 4: (block: 0, branch: 1)",
		"Total",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("report missing %q:\n%s", want, text)
		}
	}

	out.Reset()
	if !Report(&out, files, 0.25, 0.5) {
		t.Error("report failed below the configured thresholds")
	}
}

func TestReportAllCovered(t *testing.T) {
	t.Parallel()
	files := []*FileCoverage{{Path: "ok.cc", LinesFound: 3, LinesHit: 3}}
	var out strings.Builder
	if !Report(&out, files, 1.0, 1.0) {
		t.Error("fully covered file failed validation")
	}
	if !strings.Contains(out.String(), "All covered!") {
		t.Errorf("report missing the all-covered marker:\n%s", out.String())
	}
}

func TestFitPath(t *testing.T) {
	t.Parallel()
	short := fitPath("a.cc")
	if len(short) != pathColumn || !strings.HasPrefix(short, "a.cc") {
		t.Errorf("fitPath short = %q", short)
	}
	long := fitPath(strings.Repeat("dir/", 20) + "file.cc")
	if len(long) != pathColumn || !strings.HasPrefix(long, "...") || !strings.HasSuffix(long, "file.cc") {
		t.Errorf("fitPath long = %q", long)
	}
}

func TestRunBazelCoverage(t *testing.T) {
	t.Parallel()
	var spec execute.Spec
	runner := func(ctx context.Context, s execute.Spec) (*execute.Result, error) {
		spec = s
		return &execute.Result{Spec: s}, nil
	}
	path, err := RunBazelCoverage(context.Background(), runner, "//...")
	if err != nil {
		t.Fatalf("RunBazelCoverage: %v", err)
	}
	if !strings.HasSuffix(path, "_coverage_report.dat") {
		t.Errorf("report path = %q", path)
	}
	want := []string{"coverage", "--combined_report=lcov", "//..."}
	if strings.Join(spec.Args, " ") != strings.Join(want, " ") {
		t.Errorf("bazel args = %v, want %v", spec.Args, want)
	}
}

func TestRunBazelCoverageFailure(t *testing.T) {
	t.Parallel()
	runner := func(ctx context.Context, s execute.Spec) (*execute.Result, error) {
		result := &execute.Result{Spec: s, ExitCode: 1, Stderr: "no such target\n"}
		return result, &execute.ExitError{Result: result}
	}
	_, err := RunBazelCoverage(context.Background(), runner, "//missing")
	if err == nil || !strings.Contains(err.Error(), "no such target") {
		t.Fatalf("got %v, want failure carrying bazel stderr", err)
	}
}
