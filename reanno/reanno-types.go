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

// Package reanno folds alignment hits against auxiliary references
// back into the annotation table of a Pac.
package reanno

import (
	"fmt"
)

// NoHit is the overview cell value for a sequence without any hit
// against a reference at a mismatch level.
const NoHit = "no hit"

// A ReportMode controls how much of a hit ends up in an overview
// cell: just the mismatch-level label, or the full per-hit
// coordinates.
type ReportMode interface {
	full(reference string) bool
}

// Minimal reports only mismatch-level labels.
type Minimal struct{}

func (Minimal) full(string) bool { return false }

// Full reports complete hit descriptors for every reference.
type Full struct{}

func (Full) full(string) bool { return true }

// FullExceptFor reports complete hit descriptors except for the named
// references, which fall back to mismatch-level labels. This exists
// because repetitive reference families would otherwise explode
// descriptor strings.
type FullExceptFor []string

func (refs FullExceptFor) full(reference string) bool {
	for _, r := range refs {
		if r == reference {
			return false
		}
	}
	return true
}

// A Summary is the canonical re-annotation result: one overview row
// per original sequence, in the original order, plus the per-column
// raw hit descriptors. Rows are keyed positionally; row i of every
// table belongs to Sequences[i].
type Summary struct {
	Sequences []string

	// Columns are named mis<level>_<reference>, ordered by ascending
	// mismatch level and reference order within each level.
	Columns []string

	// Overview rows hold one cell per column: a mismatch-level
	// label, a full hit descriptor, a Warning>n truncation marker,
	// or NoHit.
	Overview [][]string

	// Detail maps a column name to per-row raw descriptor strings
	// used for search-pattern matching; empty string means no hit.
	Detail map[string][]string

	// Levels is the highest mismatch level present.
	Levels int

	// Warnings carries the soft problems of the alignment run.
	Warnings []string
}

// Column returns the overview cells for a column name, or nil.
func (s *Summary) Column(name string) []string {
	for i, column := range s.Columns {
		if column == name {
			cells := make([]string, len(s.Overview))
			for row := range s.Overview {
				cells[row] = s.Overview[row][i]
			}
			return cells
		}
	}
	return nil
}

// ColumnName renders the mis<level>_<reference> column naming
// convention.
func ColumnName(level int, reference string) string {
	return fmt.Sprintf("mis%d_%v", level, reference)
}

// A StructuralError reports that aggregation produced output whose
// row identity or order does not match the source sequence table. It
// indicates an internal bug rather than bad input, and is always
// fatal.
type StructuralError struct {
	Message string
}

func (e *StructuralError) Error() string {
	return "reannotation structural error: " + e.Message
}

func structuralErrorf(format string, args ...interface{}) *StructuralError {
	return &StructuralError{Message: fmt.Sprintf(format, args...)}
}
