// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// suggestion threshold: an edit distance above 3 stops being a typo
// and starts being a different word.
const maxEditDistance = 3

// closestCommand returns the subcommand name nearest to the unknown
// input, or "" when nothing is within the typo threshold.
func closestCommand(unknown string, commands []*Command) string {
	best := ""
	bestDistance := maxEditDistance + 1
	for _, command := range commands {
		if d := editDistance(unknown, command.Name); d < bestDistance {
			bestDistance = d
			best = command.Name
		}
	}
	return best
}

// closestFlag finds the first undefined flag in args and returns the
// nearest defined flag with its dash prefix, or "".
func closestFlag(args []string, flagSet *pflag.FlagSet) string {
	var defined []string
	flagSet.VisitAll(func(f *pflag.Flag) {
		defined = append(defined, f.Name)
	})

	for _, arg := range args {
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		name := strings.TrimLeft(arg, "-")
		if i := strings.IndexByte(name, '='); i >= 0 {
			name = name[:i]
		}
		if flagSet.Lookup(name) != nil {
			continue
		}

		best := ""
		bestDistance := maxEditDistance + 1
		for _, candidate := range defined {
			if d := editDistance(name, candidate); d < bestDistance {
				bestDistance = d
				best = candidate
			}
		}
		if best == "" {
			return ""
		}
		if len(best) == 1 {
			return "-" + best
		}
		return "--" + best
	}
	return ""
}

// editDistance is the Levenshtein distance between a and b, computed
// with a single rolling row.
func editDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	row := make([]int, len(a)+1)
	for i := range row {
		row[i] = i
	}
	for j := 1; j <= len(b); j++ {
		previousDiagonal := row[0]
		row[0] = j
		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			next := min(row[i]+1, row[i-1]+1, previousDiagonal+cost)
			previousDiagonal = row[i]
			row[i] = next
		}
	}
	return row[len(a)]
}
