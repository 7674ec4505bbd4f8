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
	"fmt"
	"strings"

	"github.com/exascience/srpac/utils"
)

// A Pac holds the phenotype/annotation/counts table triplet for a set
// of unique small RNA sequences.
//
// Sequences is the identity key set: its order defines row order for
// the annotation and counts tables and for every derived table.
// Samples defines the column order of the counts table and the row
// order of the phenotype table.
type Pac struct {
	Samples   []string
	Sequences []string

	PhenoColumns []string
	Pheno        map[string]utils.StringMap

	AnnoColumns []string
	Anno        map[string]utils.StringMap

	// Counts rows are indexed by sequence; each row holds one value
	// per sample, in Samples order.
	Counts map[string][]float64

	// Norm and Summary hold derived tables keyed by a caller-chosen
	// name, each tagged with its provenance.
	Norm    map[string]*DerivedTable
	Summary map[string]*DerivedTable
}

// A DerivedTable is a normalized or summarized view over the counts
// table. Its row key set equals the Pac's Sequences, or a strict
// subset when filtered.
type DerivedTable struct {
	// Method records how the table was produced, for example
	// "cpm" or "mean(group=treatment)".
	Method string

	Columns   []string
	Sequences []string
	Rows      map[string][]float64
}

// New returns an empty Pac with allocated maps.
func New() *Pac {
	return &Pac{
		Pheno:   make(map[string]utils.StringMap),
		Anno:    make(map[string]utils.StringMap),
		Counts:  make(map[string][]float64),
		Norm:    make(map[string]*DerivedTable),
		Summary: make(map[string]*DerivedTable),
	}
}

// NSequences returns the number of unique sequences.
func (p *Pac) NSequences() int {
	return len(p.Sequences)
}

// NSamples returns the number of samples.
func (p *Pac) NSamples() int {
	return len(p.Samples)
}

// AnnoValue returns the annotation value for the given sequence and
// column, or the empty string when unset.
func (p *Pac) AnnoValue(sequence, column string) string {
	if record, found := p.Anno[sequence]; found {
		return record.Get(column, "")
	}
	return ""
}

// A FormatError reports an identity or shape invariant violation on a
// Pac. It always names the offending keys.
type FormatError struct {
	Message string
}

func (e *FormatError) Error() string {
	return "pac format error: " + e.Message
}

func formatErrorf(format string, args ...interface{}) *FormatError {
	return &FormatError{Message: fmt.Sprintf(format, args...)}
}

// describeKeys renders a key list for an error message, eliding long
// lists after a few entries.
func describeKeys(keys []string) string {
	const maxShown = 5
	if len(keys) <= maxShown {
		return strings.Join(keys, ", ")
	}
	return fmt.Sprintf("%v, ... (%d in total)", strings.Join(keys[:maxShown], ", "), len(keys))
}
