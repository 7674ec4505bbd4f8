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

package align

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/exascience/srpac/fasta"

	"github.com/exascience/pargo/parallel"
	"github.com/google/uuid"
)

// RunOptions configures one multi-reference alignment run.
type RunOptions struct {
	Aligner    Aligner
	References []*fasta.ReferenceSet

	// Mismatches is the highest mismatch level; one job runs per
	// reference per level 0..Mismatches.
	Mismatches int

	// Threads bounds the worker pool; 0 means one worker per CPU.
	Threads int

	// Staging is the root of the report staging area.
	Staging string

	// Keep retains report files after the run; Compress additionally
	// gzips them. Without Keep, reports are removed once parsed.
	Keep     bool
	Compress bool

	// Force allows reusing a non-empty staging area.
	Force bool
}

// A RunResult holds the outcome of all jobs of a run, ordered by
// reference (in RunOptions order) and ascending mismatch level
// within each reference, regardless of completion order.
type RunResult struct {
	RunID    string
	Results  []JobResult
	Warnings []JobWarning
}

// A RunError aggregates the hard job failures of a run. Jobs that
// were still healthy when a sibling failed are allowed to finish
// before the error is returned.
type RunError struct {
	Errors []error
}

func (e *RunError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d alignment job(s) failed: %v", len(e.Errors), strings.Join(msgs, "; "))
}

type job struct {
	ref        *fasta.ReferenceSet
	indexPath  string
	mismatches int
}

func validateRunOptions(opts *RunOptions) error {
	if opts.Aligner == nil {
		return fmt.Errorf("no aligner configured")
	}
	if len(opts.References) == 0 {
		return fmt.Errorf("no reference sets given")
	}
	if opts.Mismatches < 0 {
		return fmt.Errorf("negative mismatch count %d", opts.Mismatches)
	}
	seen := make(map[string]bool)
	for _, ref := range opts.References {
		if ref.Name == "" {
			return fmt.Errorf("reference set without a name")
		}
		if seen[ref.Name] {
			return fmt.Errorf("duplicate reference name %v", ref.Name)
		}
		seen[ref.Name] = true
	}
	if opts.Threads == 0 {
		opts.Threads = runtime.NumCPU()
	}
	return nil
}

// Run aligns the given unique sequences against every reference set
// at every mismatch level 0..Mismatches. Jobs run concurrently on a
// bounded worker pool; each job owns its report file exclusively.
// Hits are restricted to their exact mismatch level, so a hit
// reported at level k never reappears at a level above k.
//
// Hard job failures (missing executable, bad reference, failed index
// build) are collected into a RunError after the remaining jobs
// finish. Zero-hit jobs and skipped report lines are soft outcomes
// recorded in the result's warnings.
func Run(sequences []string, opts RunOptions) (*RunResult, error) {
	if err := validateRunOptions(&opts); err != nil {
		return nil, err
	}

	staging, err := NewStaging(opts.Staging, uuid.New().String(), opts.Force)
	if err != nil {
		return nil, err
	}

	workDir := staging.WorkDir()
	queryFasta := filepath.Join(workDir, "reads.fa")
	fasta.WriteQueries(sequences, queryFasta)

	var hardErrors []error

	// Index builds run sequentially: bowtie-build is already
	// multi-threaded and memory-hungry.
	var jobs []job
	for _, ref := range opts.References {
		indexPath, err := opts.Aligner.BuildIndex(ref, workDir)
		if err != nil {
			hardErrors = append(hardErrors, err)
			continue
		}
		for mismatches := 0; mismatches <= opts.Mismatches; mismatches++ {
			jobs = append(jobs, job{ref: ref, indexPath: indexPath, mismatches: mismatches})
		}
	}

	results := make([]JobResult, len(jobs))
	jobErrors := make([]error, len(jobs))

	parallel.Range(0, len(jobs), opts.Threads, func(low, high int) {
		for i := low; i < high; i++ {
			results[i], jobErrors[i] = runJob(staging, opts.Aligner, jobs[i])
		}
	})

	for _, err := range jobErrors {
		if err != nil {
			hardErrors = append(hardErrors, err)
		}
	}

	references := make([]string, len(opts.References))
	for i, ref := range opts.References {
		references[i] = ref.Name
	}
	if opts.Keep {
		staging.DiscardWork()
	} else {
		staging.DiscardReports(references)
	}

	if len(hardErrors) > 0 {
		return nil, &RunError{Errors: hardErrors}
	}

	result := &RunResult{RunID: staging.RunID, Results: results}
	for i := range results {
		if results[i].Skipped > 0 {
			result.Warnings = append(result.Warnings, JobWarning{
				Reference:  results[i].Reference,
				Mismatches: results[i].Mismatches,
				Message:    fmt.Sprintf("skipped %d malformed report line(s)", results[i].Skipped),
			})
		}
		if len(results[i].Hits) == 0 {
			result.Warnings = append(result.Warnings, JobWarning{
				Reference:  results[i].Reference,
				Mismatches: results[i].Mismatches,
				Message:    "no hits",
			})
		}
	}
	if opts.Keep && opts.Compress {
		for i := range results {
			CompressReport(results[i].ReportFile)
			results[i].ReportFile += ".gz"
		}
	}
	return result, nil
}

func runJob(staging *Staging, aligner Aligner, j job) (JobResult, error) {
	result := JobResult{Reference: j.ref.Name, Mismatches: j.mismatches}
	output := staging.ReportFile(j.ref.Name, j.mismatches)
	queryFasta := filepath.Join(staging.WorkDir(), "reads.fa")
	if err := aligner.Align(j.indexPath, queryFasta, j.mismatches, output); err != nil {
		return result, &JobError{Reference: j.ref.Name, Mismatches: j.mismatches, Err: err}
	}
	hits, skipped := ParseReportFile(output, j.ref.Name)
	// The aligner reports hits up to the requested level; lower
	// levels are owned by their own jobs.
	for _, hit := range hits {
		if hit.Mismatches == j.mismatches {
			result.Hits = append(result.Hits, hit)
		}
	}
	result.Skipped = skipped
	result.ReportFile = output
	return result, nil
}
