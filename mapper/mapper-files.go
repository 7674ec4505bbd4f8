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

package mapper

import (
	"bufio"
	"fmt"
	"log"

	"github.com/exascience/srpac/internal"
)

// Write stores a mapping result as a tab-separated coordinate table.
// Zero-hit entries appear as a single no_hits row, so downstream code
// can tell zero coverage from absent entries.
func (r *Result) Write(filename string) {
	file := internal.FileCreate(filename)
	defer internal.Close(file)
	out := bufio.NewWriter(file)

	internal.WriteString(out, "RefID\tKey\tSequence\tStart\tEnd\tStrand\tMismatches")
	hasAlignments := false
	for _, entry := range r.Entries {
		for _, read := range entry.Reads {
			if read.Alignment != "" {
				hasAlignments = true
			}
		}
	}
	if hasAlignments {
		internal.WriteString(out, "\tAlignment")
	}
	internal.WriteString(out, "\n")

	for _, entry := range r.Entries {
		if entry.NoHits {
			internal.WriteString(out, entry.ReferenceID)
			internal.WriteString(out, "\tno_hits\t\t\t\t\t")
			if hasAlignments {
				internal.WriteString(out, "\t")
			}
			internal.WriteString(out, "\n")
			continue
		}
		for _, read := range entry.Reads {
			fmt.Fprintf(out, "%v\t%v\t%v\t%d\t%d\t%c\t%d",
				entry.ReferenceID, read.Key, read.Sequence, read.Start, read.End, read.Strand, read.Mismatches)
			if hasAlignments {
				internal.WriteString(out, "\t")
				internal.WriteString(out, read.Alignment)
			}
			internal.WriteString(out, "\n")
		}
	}
	if err := out.Flush(); err != nil {
		log.Panic(err)
	}
}
