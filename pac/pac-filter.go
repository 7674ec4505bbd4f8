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

package pac

// Filter returns a new Pac restricted to the sequences for which keep
// returns true, and to the given samples. A nil keep keeps all
// sequences; a nil samples slice keeps all samples. Derived tables
// are subset along with the counts table.
func (p *Pac) Filter(keep func(sequence string) bool, samples []string) (*Pac, error) {
	if samples == nil {
		samples = p.Samples
	}
	sampleIndexes := make([]int, 0, len(samples))
	for _, sample := range samples {
		found := false
		for i, s := range p.Samples {
			if s == sample {
				sampleIndexes = append(sampleIndexes, i)
				found = true
				break
			}
		}
		if !found {
			return nil, formatErrorf("cannot filter on unknown sample %v", sample)
		}
	}

	result := New()
	result.Samples = append([]string(nil), samples...)
	result.PhenoColumns = p.PhenoColumns
	result.AnnoColumns = p.AnnoColumns
	for _, sample := range samples {
		result.Pheno[sample] = p.Pheno[sample].Clone()
	}

	for _, sequence := range p.Sequences {
		if keep != nil && !keep(sequence) {
			continue
		}
		result.Sequences = append(result.Sequences, sequence)
		result.Anno[sequence] = p.Anno[sequence].Clone()
		row := make([]float64, len(sampleIndexes))
		for i, index := range sampleIndexes {
			row[i] = p.Counts[sequence][index]
		}
		result.Counts[sequence] = row
	}

	kept := make(map[string]bool, len(result.Sequences))
	for _, sequence := range result.Sequences {
		kept[sequence] = true
	}
	result.Norm = filterDerived(p.Norm, kept)
	result.Summary = filterDerived(p.Summary, kept)

	if err := result.Check(); err != nil {
		return nil, err
	}
	return result, nil
}

func filterDerived(tables map[string]*DerivedTable, kept map[string]bool) map[string]*DerivedTable {
	result := make(map[string]*DerivedTable, len(tables))
	for name, table := range tables {
		filtered := &DerivedTable{
			Method:  table.Method,
			Columns: table.Columns,
			Rows:    make(map[string][]float64),
		}
		for _, sequence := range table.Sequences {
			if kept[sequence] {
				filtered.Sequences = append(filtered.Sequences, sequence)
				filtered.Rows[sequence] = table.Rows[sequence]
			}
		}
		result[name] = filtered
	}
	return result
}
