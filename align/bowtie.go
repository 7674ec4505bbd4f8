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
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/exascience/srpac/fasta"
)

// Bowtie invokes the bowtie short-read aligner as an external
// executable.
type Bowtie struct {
	// Executable is the bowtie binary; BuildExecutable the
	// bowtie-build binary. Empty values fall back to the standard
	// names looked up on PATH.
	Executable      string
	BuildExecutable string
}

func (b *Bowtie) executable() string {
	if b.Executable == "" {
		return "bowtie"
	}
	return b.Executable
}

func (b *Bowtie) buildExecutable() string {
	if b.BuildExecutable == "" {
		return "bowtie-build"
	}
	return b.BuildExecutable
}

func runAligner(cmd *exec.Cmd) error {
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := bytes.TrimSpace(stderr.Bytes())
		if len(msg) > 0 {
			return fmt.Errorf("%v: %s", err, msg)
		}
		return err
	}
	return nil
}

// BuildIndex writes the reference set as a fasta file under dir and
// runs bowtie-build on it. When the reference set already carries an
// index path, that index is reused without rebuilding.
func (b *Bowtie) BuildIndex(ref *fasta.ReferenceSet, dir string) (string, error) {
	if ref.IndexPath != "" {
		return ref.IndexPath, nil
	}
	refFasta := filepath.Join(dir, ref.Name+".fa")
	fasta.Write(ref, refFasta)
	indexPath := filepath.Join(dir, ref.Name)
	cmd := exec.Command(b.buildExecutable(), "-q", refFasta, indexPath)
	if err := runAligner(cmd); err != nil {
		return "", &IndexBuildError{Reference: ref.Name, Err: err}
	}
	return indexPath, nil
}

// Align maps the staged query fasta against the index, reporting all
// alignments (-a) on both strands with at most the given number of
// mismatches (-v), and writes the raw report to output. A non-zero
// exit status is a hard failure.
func (b *Bowtie) Align(indexPath, queryFasta string, mismatches int, output string) error {
	cmd := exec.Command(b.executable(),
		"-f",
		"-v", strconv.Itoa(mismatches),
		"-a",
		indexPath,
		queryFasta,
		output,
	)
	return runAligner(cmd)
}
