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
	"github.com/exascience/srpac/pac"
)

// mergeColumns adds positional columns into the annotation table of a
// Pac. The merge is all-or-nothing: the identity invariant is
// re-validated first and nothing is mutated on a mismatch. A column
// that already exists is overwritten in place, so re-applying the
// same merge leaves the table unchanged.
func mergeColumns(p *pac.Pac, sequences, columns []string, rows [][]string) error {
	if err := p.Check(); err != nil {
		return err
	}
	if len(sequences) != len(p.Sequences) {
		return &pac.FormatError{
			Message: "cannot merge re-annotation: row names do not match the annotation table",
		}
	}
	for i, sequence := range sequences {
		if p.Sequences[i] != sequence {
			return &pac.FormatError{
				Message: "cannot merge re-annotation: row " + sequence + " does not match annotation row " + p.Sequences[i],
			}
		}
	}
	for row, cells := range rows {
		if len(cells) != len(columns) {
			return structuralErrorf("merge row %d has %d cells for %d columns", row, len(cells), len(columns))
		}
	}

	existing := make(map[string]bool, len(p.AnnoColumns))
	for _, column := range p.AnnoColumns {
		existing[column] = true
	}
	for _, column := range columns {
		if !existing[column] {
			p.AnnoColumns = append(p.AnnoColumns, column)
		}
	}
	for row, sequence := range sequences {
		record := p.Anno[sequence]
		for i, column := range columns {
			record[column] = rows[row][i]
		}
	}
	return p.Check()
}

// MergeLabels merges simplified category labels as new annotation
// columns into a Pac.
func MergeLabels(p *pac.Pac, labels *Labels) error {
	return mergeColumns(p, labels.Sequences, labels.Columns, labels.Rows)
}

// MergeOverview merges the raw overview columns of a Summary as
// annotation columns into a Pac.
func MergeOverview(p *pac.Pac, summary *Summary) error {
	return mergeColumns(p, summary.Sequences, summary.Columns, summary.Overview)
}
