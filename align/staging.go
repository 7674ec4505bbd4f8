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
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/exascience/srpac/internal"

	"github.com/klauspost/compress/gzip"
)

// Staging manages the directory layout that alignment jobs write
// their raw reports to: one subdirectory per reference, one report
// file per mismatch level. Consumers re-import from this layout, so
// it is a persisted contract rather than scratch space.
type Staging struct {
	Root string

	// RunID uniquely identifies this run; scratch files (query
	// fasta, on-demand indexes) live under a work directory derived
	// from it.
	RunID string
}

// NewStaging validates the staging root and returns a Staging for a
// fresh run. A non-empty root is refused unless force is set; force
// discards the existing contents, so stale reports from a wider
// earlier run never survive next to fresh ones.
func NewStaging(root, runID string, force bool) (*Staging, error) {
	entries, err := internal.Directory(root)
	switch {
	case os.IsNotExist(err):
		// fresh root
	case err != nil:
		return nil, err
	case len(entries) > 0:
		if !force {
			return nil, fmt.Errorf("staging area %v is not empty; remove stale reports or pass force", root)
		}
		for _, entry := range entries {
			if err := os.RemoveAll(filepath.Join(root, entry)); err != nil {
				return nil, err
			}
		}
	}
	internal.MkdirAll(root, 0700)
	return &Staging{Root: root, RunID: runID}, nil
}

// ReportFile returns the report path for one (reference, mismatch
// level) job, creating the reference subdirectory.
func (s *Staging) ReportFile(reference string, mismatches int) string {
	dir := filepath.Join(s.Root, reference)
	internal.MkdirAll(dir, 0700)
	return filepath.Join(dir, fmt.Sprintf("mis%d.txt", mismatches))
}

// WorkDir returns the scratch directory for this run, creating it on
// first use.
func (s *Staging) WorkDir() string {
	dir := filepath.Join(s.Root, ".work-"+s.RunID)
	internal.MkdirAll(dir, 0700)
	return dir
}

// DiscardWork removes the scratch directory.
func (s *Staging) DiscardWork() {
	if err := os.RemoveAll(filepath.Join(s.Root, ".work-"+s.RunID)); err != nil {
		log.Printf("cannot remove staging work directory: %v", err)
	}
}

// DiscardReports removes all report files and the scratch directory.
func (s *Staging) DiscardReports(references []string) {
	for _, reference := range references {
		if err := os.RemoveAll(filepath.Join(s.Root, reference)); err != nil {
			log.Printf("cannot remove staging reports for %v: %v", reference, err)
		}
	}
	s.DiscardWork()
}

// CompressReport replaces a kept report file with a gzip-compressed
// copy.
func CompressReport(filename string) {
	in := internal.FileOpen(filename)
	out := internal.FileCreate(filename + ".gz")
	gz := gzip.NewWriter(out)
	if _, err := io.Copy(gz, bufio.NewReader(in)); err != nil {
		log.Panic(err)
	}
	internal.Close(gz)
	internal.Close(out)
	internal.Close(in)
	if err := os.Remove(filename); err != nil {
		log.Panic(err)
	}
}
