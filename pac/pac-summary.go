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

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AddCPM adds a counts-per-million normalized table under the given
// name. Each column is scaled so that its values sum to one million.
func (p *Pac) AddCPM(name string) error {
	totals := make([]float64, len(p.Samples))
	for _, sequence := range p.Sequences {
		floats.Add(totals, p.Counts[sequence])
	}

	table := &DerivedTable{
		Method:    "cpm",
		Columns:   append([]string(nil), p.Samples...),
		Sequences: append([]string(nil), p.Sequences...),
		Rows:      make(map[string][]float64, len(p.Sequences)),
	}
	for _, sequence := range p.Sequences {
		row := make([]float64, len(p.Samples))
		for i, value := range p.Counts[sequence] {
			if totals[i] > 0 {
				row[i] = value / totals[i] * 1e6
			}
		}
		table.Rows[sequence] = row
	}

	p.Norm[name] = table
	return p.Check()
}

// groupSamples collects per-group sample column indexes from a
// phenotype column.
func (p *Pac) groupSamples(phenoColumn string) (groups []string, indexes map[string][]int, err error) {
	found := false
	for _, column := range p.PhenoColumns {
		if column == phenoColumn {
			found = true
			break
		}
	}
	if !found {
		return nil, nil, formatErrorf("unknown phenotype column %v", phenoColumn)
	}
	indexes = make(map[string][]int)
	for i, sample := range p.Samples {
		group := p.Pheno[sample][phenoColumn]
		if _, seen := indexes[group]; !seen {
			groups = append(groups, group)
		}
		indexes[group] = append(indexes[group], i)
	}
	return groups, indexes, nil
}

// AddGroupSummary adds a summary table under the given name with the
// per-group mean and standard deviation of the values in source,
// grouped by a phenotype column. Source names a normalized table, or
// "counts" for the raw counts.
func (p *Pac) AddGroupSummary(name, source, phenoColumn string) error {
	rows, err := p.sourceRows(source)
	if err != nil {
		return err
	}
	groups, indexes, err := p.groupSamples(phenoColumn)
	if err != nil {
		return err
	}

	table := &DerivedTable{
		Method:    "meansd(" + source + " by " + phenoColumn + ")",
		Sequences: append([]string(nil), p.Sequences...),
		Rows:      make(map[string][]float64, len(p.Sequences)),
	}
	for _, group := range groups {
		table.Columns = append(table.Columns, "mean_"+group, "sd_"+group)
	}

	for _, sequence := range p.Sequences {
		values := rows(sequence)
		row := make([]float64, 0, 2*len(groups))
		for _, group := range groups {
			sample := make([]float64, 0, len(indexes[group]))
			for _, index := range indexes[group] {
				sample = append(sample, values[index])
			}
			mean, sd := stat.MeanStdDev(sample, nil)
			if math.IsNaN(sd) {
				sd = 0
			}
			row = append(row, mean, sd)
		}
		table.Rows[sequence] = row
	}

	p.Summary[name] = table
	return p.Check()
}

// AddLog2FC adds a summary table with the log2 fold change of the
// group means of groupA over groupB, grouped by a phenotype column.
// A pseudocount of 1 is added to both means to keep zero-count
// sequences finite.
func (p *Pac) AddLog2FC(name, source, phenoColumn, groupA, groupB string) error {
	rows, err := p.sourceRows(source)
	if err != nil {
		return err
	}
	_, indexes, err := p.groupSamples(phenoColumn)
	if err != nil {
		return err
	}
	for _, group := range []string{groupA, groupB} {
		if len(indexes[group]) == 0 {
			return formatErrorf("phenotype column %v has no samples in group %v", phenoColumn, group)
		}
	}

	table := &DerivedTable{
		Method:    "log2fc(" + source + ": " + groupA + "/" + groupB + ")",
		Columns:   []string{"log2FC_" + groupA + "_vs_" + groupB},
		Sequences: append([]string(nil), p.Sequences...),
		Rows:      make(map[string][]float64, len(p.Sequences)),
	}

	groupMean := func(values []float64, group string) float64 {
		sample := make([]float64, 0, len(indexes[group]))
		for _, index := range indexes[group] {
			sample = append(sample, values[index])
		}
		return stat.Mean(sample, nil)
	}

	for _, sequence := range p.Sequences {
		values := rows(sequence)
		fc := math.Log2((groupMean(values, groupA) + 1) / (groupMean(values, groupB) + 1))
		table.Rows[sequence] = []float64{fc}
	}

	p.Summary[name] = table
	return p.Check()
}

func (p *Pac) sourceRows(source string) (func(sequence string) []float64, error) {
	if source == "counts" {
		return func(sequence string) []float64 { return p.Counts[sequence] }, nil
	}
	table, found := p.Norm[source]
	if !found {
		return nil, formatErrorf("unknown source table %v", source)
	}
	if len(table.Sequences) != len(p.Sequences) {
		return nil, formatErrorf("source table %v is filtered; summaries need the full sequence set", source)
	}
	return func(sequence string) []float64 { return table.Rows[sequence] }, nil
}
