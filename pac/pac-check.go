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

// keySetDiff returns the keys of want missing from have, and the
// keys of have that are not in want.
func keySetDiff(want []string, have map[string]bool) (missing, extra []string) {
	for _, key := range want {
		if !have[key] {
			missing = append(missing, key)
		}
	}
	wantSet := make(map[string]bool, len(want))
	for _, key := range want {
		wantSet[key] = true
	}
	for key := range have {
		if !wantSet[key] {
			extra = append(extra, key)
		}
	}
	return missing, extra
}

func checkRowKeys(table string, want []string, haveLen int, have map[string]bool) *FormatError {
	missing, extra := keySetDiff(want, have)
	if len(missing) == 0 && len(extra) == 0 && haveLen == len(want) {
		return nil
	}
	if len(missing) > 0 || len(extra) > 0 {
		msg := table + " row names do not match the sequence set"
		if len(missing) > 0 {
			msg += "; missing: " + describeKeys(missing)
		}
		if len(extra) > 0 {
			msg += "; unexpected: " + describeKeys(extra)
		}
		return &FormatError{Message: msg}
	}
	return formatErrorf("%v has %d rows for %d sequences", table, haveLen, len(want))
}

// Check validates the identity invariants of a Pac: annotation and
// counts row keys must equal the sequence set exactly, counts rows
// must hold one non-negative value per sample, and phenotype row keys
// must equal the sample set. It returns a FormatError naming the
// mismatched keys, or nil.
//
// Check is run by every operation that mutates a Pac; callers
// constructing a Pac by hand should run it themselves before handing
// the Pac to the pipeline.
func (p *Pac) Check() error {
	annoKeys := make(map[string]bool, len(p.Anno))
	for key := range p.Anno {
		annoKeys[key] = true
	}
	if err := checkRowKeys("annotation table", p.Sequences, len(p.Anno), annoKeys); err != nil {
		return err
	}

	countKeys := make(map[string]bool, len(p.Counts))
	for key := range p.Counts {
		countKeys[key] = true
	}
	if err := checkRowKeys("counts table", p.Sequences, len(p.Counts), countKeys); err != nil {
		return err
	}

	phenoKeys := make(map[string]bool, len(p.Pheno))
	for key := range p.Pheno {
		phenoKeys[key] = true
	}
	if err := checkRowKeys("phenotype table", p.Samples, len(p.Pheno), phenoKeys); err != nil {
		return err
	}

	for _, sequence := range p.Sequences {
		row := p.Counts[sequence]
		if len(row) != len(p.Samples) {
			return formatErrorf("counts row %v has %d values for %d samples", sequence, len(row), len(p.Samples))
		}
		for i, value := range row {
			if value < 0 {
				return formatErrorf("counts row %v has a negative value %v for sample %v", sequence, value, p.Samples[i])
			}
		}
	}

	for name, table := range p.Norm {
		if err := p.checkDerived("normalized table "+name, table); err != nil {
			return err
		}
	}
	for name, table := range p.Summary {
		if err := p.checkDerived("summary table "+name, table); err != nil {
			return err
		}
	}

	return nil
}

func (p *Pac) checkDerived(what string, table *DerivedTable) error {
	seqSet := make(map[string]bool, len(p.Sequences))
	for _, sequence := range p.Sequences {
		seqSet[sequence] = true
	}
	for _, sequence := range table.Sequences {
		if !seqSet[sequence] {
			return formatErrorf("%v row %v is not in the sequence set", what, sequence)
		}
		row, found := table.Rows[sequence]
		if !found {
			return formatErrorf("%v is missing a row for %v", what, sequence)
		}
		if len(row) != len(table.Columns) {
			return formatErrorf("%v row %v has %d values for %d columns", what, sequence, len(row), len(table.Columns))
		}
	}
	if len(table.Rows) != len(table.Sequences) {
		return formatErrorf("%v has %d rows for %d row names", what, len(table.Rows), len(table.Sequences))
	}
	return nil
}
