// srPAC: a high-performance toolkit for re-annotating small RNA sequencing data.
// Copyright (c) 2021-2023 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/srpac/blob/master/LICENSE.txt>.

package reanno

import (
	"fmt"
	"regexp"
	"strings"
)

// A SearchGroup maps an output label to an ordered list of regex
// patterns tested against a sequence's raw reference descriptors.
// Group order and pattern order are tie-break rules: the first
// matching pattern wins.
type SearchGroup struct {
	Label    string
	Patterns []*regexp.Regexp
}

// ParseSearchGroups compiles search group specs of the form
// label=pattern[,pattern...], preserving order.
func ParseSearchGroups(specs []string) ([]SearchGroup, error) {
	groups := make([]SearchGroup, 0, len(specs))
	for _, spec := range specs {
		i := strings.IndexByte(spec, '=')
		if i <= 0 {
			return nil, fmt.Errorf("invalid search group %q, want label=pattern[,pattern...]", spec)
		}
		group := SearchGroup{Label: spec[:i]}
		for _, pattern := range strings.Split(spec[i+1:], ",") {
			re, err := regexp.Compile(pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid pattern %q in search group %v: %v", pattern, group.Label, err)
			}
			group.Patterns = append(group.Patterns, re)
		}
		if len(group.Patterns) == 0 {
			return nil, fmt.Errorf("search group %v has no patterns", group.Label)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// SimplifyOptions control label compression.
type SimplifyOptions struct {
	// Prefix names the produced columns <Prefix>_mis<level>; empty
	// defaults to "Biotypes".
	Prefix string

	// Perfect restricts pattern matching to mismatch level 0; higher
	// levels only inherit.
	Perfect bool

	// MaxLevel caps the computed levels; negative means all levels
	// present in the summary.
	MaxLevel int

	// Fallback is the label for sequences with hits that match no
	// pattern; empty defaults to "other".
	Fallback string
}

// Labels holds per-sequence category labels, one column per mismatch
// level, positional over the sequence rows. Unset cells are empty
// strings.
type Labels struct {
	Sequences []string
	Columns   []string
	Rows      [][]string
}

// Simplify reduces a Summary to per-sequence category labels using
// ordered search groups. Labels are computed per mismatch level with
// monotonic relaxation: a label assigned at level k is kept at levels
// above k unless an explicit pattern match at the higher level
// overrides it.
func Simplify(summary *Summary, groups []SearchGroup, opts SimplifyOptions) (*Labels, error) {
	if opts.Prefix == "" {
		opts.Prefix = "Biotypes"
	}
	if opts.Fallback == "" {
		opts.Fallback = "other"
	}
	maxLevel := summary.Levels
	if opts.MaxLevel >= 0 && opts.MaxLevel < maxLevel {
		maxLevel = opts.MaxLevel
	}

	// Recover the reference order per level from the column naming
	// convention.
	detailColumns := make([][]string, maxLevel+1)
	for _, column := range summary.Columns {
		var level int
		var reference string
		if n, err := fmt.Sscanf(column, "mis%d_%s", &level, &reference); n == 2 && err == nil && level <= maxLevel {
			detailColumns[level] = append(detailColumns[level], column)
		}
	}

	labels := &Labels{Sequences: summary.Sequences}
	current := make([]string, len(summary.Sequences))

	for level := 0; level <= maxLevel; level++ {
		for row := range summary.Sequences {
			if opts.Perfect && level > 0 {
				continue
			}
			var parts []string
			for _, column := range detailColumns[level] {
				if cell := summary.Detail[column][row]; cell != "" {
					parts = append(parts, cell)
				}
			}
			if len(parts) == 0 {
				continue
			}
			descriptor := strings.Join(parts, "|")
			if label, found := matchGroups(groups, descriptor); found {
				current[row] = label
			} else if current[row] == "" {
				current[row] = opts.Fallback
			}
		}
		labels.Columns = append(labels.Columns, fmt.Sprintf("%v_mis%d", opts.Prefix, level))
		labels.Rows = append(labels.Rows, append([]string(nil), current...))
	}

	// Rows were built column-major; transpose to positional rows.
	columns := labels.Rows
	labels.Rows = make([][]string, len(summary.Sequences))
	for row := range summary.Sequences {
		cells := make([]string, len(columns))
		for i, column := range columns {
			cells[i] = column[row]
		}
		labels.Rows[row] = cells
	}

	return labels, nil
}

// matchGroups tests a descriptor against every group's patterns in
// order; the first match wins.
func matchGroups(groups []SearchGroup, descriptor string) (string, bool) {
	for _, group := range groups {
		for _, pattern := range group.Patterns {
			if pattern.MatchString(descriptor) {
				return group.Label, true
			}
		}
	}
	return "", false
}
