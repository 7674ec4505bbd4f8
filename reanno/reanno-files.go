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
	"bufio"
	"log"

	"github.com/exascience/srpac/internal"
)

// Write stores the overview as a tab-separated table. The run
// identifier and per-job warnings are recorded as comment lines in
// front of the header, as run provenance.
func (s *Summary) Write(filename, runID string) {
	file := internal.FileCreate(filename)
	defer internal.Close(file)
	out := bufio.NewWriter(file)

	if runID != "" {
		internal.WriteString(out, "# run "+runID+"\n")
	}
	for _, warning := range s.Warnings {
		internal.WriteString(out, "# warning "+warning+"\n")
	}

	internal.WriteString(out, "Sequence")
	for _, column := range s.Columns {
		internal.WriteString(out, "\t")
		internal.WriteString(out, column)
	}
	internal.WriteString(out, "\n")

	for row, sequence := range s.Sequences {
		internal.WriteString(out, sequence)
		for _, cell := range s.Overview[row] {
			internal.WriteString(out, "\t")
			internal.WriteString(out, cell)
		}
		internal.WriteString(out, "\n")
	}
	if err := out.Flush(); err != nil {
		log.Panic(err)
	}
}
