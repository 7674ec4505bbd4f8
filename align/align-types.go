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

// Package align drives an external short-read aligner across
// reference sets and mismatch levels, and parses its report files
// into normalized hit records.
package align

import (
	"fmt"

	"github.com/exascience/srpac/fasta"
)

// A Hit is a single alignment of a query sequence against one entry
// of a reference set.
type Hit struct {
	// QueryIndex is the zero-based row of the query in the sequence
	// table the run was started from.
	QueryIndex int

	Reference   string
	ReferenceID string

	// Mismatches is the exact number of mismatching bases for this
	// hit, not a ceiling.
	Mismatches int

	// Position is the zero-based start offset on the reference
	// entry.
	Position int

	Strand byte // '+' or '-'

	MatchedSeq string
}

// An Aligner builds reference indexes and runs alignments. It is an
// injected capability so that aggregation logic can be driven by a
// fake in tests.
type Aligner interface {
	// BuildIndex builds an alignment index for the reference set
	// under dir and returns the index path. A preexisting
	// ReferenceSet.IndexPath is reused without rebuilding.
	BuildIndex(ref *fasta.ReferenceSet, dir string) (string, error)

	// Align maps the staged query fasta against the index, reporting
	// all hits with at most the given number of mismatches, and
	// writes the raw report to output.
	Align(indexPath, queryFasta string, mismatches int, output string) error
}

// An IndexBuildError reports failed index construction for a
// reference set. It is fatal to that reference's jobs only.
type IndexBuildError struct {
	Reference string
	Err       error
}

func (e *IndexBuildError) Error() string {
	return fmt.Sprintf("building index for reference %v failed: %v", e.Reference, e.Err)
}

func (e *IndexBuildError) Unwrap() error { return e.Err }

// A JobError reports a hard failure of a single alignment job.
type JobError struct {
	Reference  string
	Mismatches int
	Err        error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("alignment job %v mis%d failed: %v", e.Reference, e.Mismatches, e.Err)
}

func (e *JobError) Unwrap() error { return e.Err }

// A JobWarning records a soft problem in a single job, such as
// skipped malformed report lines. Warnings never abort sibling jobs.
type JobWarning struct {
	Reference  string
	Mismatches int
	Message    string
}

func (w JobWarning) String() string {
	return fmt.Sprintf("%v mis%d: %v", w.Reference, w.Mismatches, w.Message)
}

// A JobResult holds the parsed hits of one (reference, mismatch
// level) job. A result with zero hits is valid.
type JobResult struct {
	Reference  string
	Mismatches int
	Hits       []Hit
	Skipped    int
	ReportFile string
}
