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
	"fmt"
	"sort"
	"strings"

	"github.com/exascience/srpac/align"

	"github.com/bits-and-blooms/bitset"
)

// AggregateOptions control overview cell rendering.
type AggregateOptions struct {
	Mode ReportMode

	// MaxHits bounds the number of hits rendered into one full-mode
	// cell; a cell with more hits is replaced by a Warning>n marker
	// recording the elided hit count. Zero or negative means
	// unbounded ("all").
	MaxHits int
}

// DefaultMaxHits is the full-mode cell bound used when the caller
// does not choose one.
const DefaultMaxHits = 10

// Aggregate merges the per-(reference, mismatch level) job results of
// an alignment run into one Summary with exactly one row per
// sequence, in the original order, even for sequences without any
// hit.
//
// Hits already claimed by a lower mismatch level of the same
// reference are dropped: a hit counted at level k never reappears
// labeled at a level above k. The runner filters hit records to
// their exact level; the claim masks here enforce the invariant
// independently of aligner behavior.
func Aggregate(sequences []string, run *align.RunResult, opts AggregateOptions) (*Summary, error) {
	if opts.Mode == nil {
		opts.Mode = Minimal{}
	}

	summary := &Summary{
		Sequences: sequences,
		Detail:    make(map[string][]string),
	}
	for _, w := range run.Warnings {
		summary.Warnings = append(summary.Warnings, w.String())
	}

	// Jobs complete out of order; column order is by ascending
	// level, then reference order as given.
	results := make([]align.JobResult, len(run.Results))
	copy(results, run.Results)
	referenceOrder := make(map[string]int)
	for _, result := range results {
		if _, found := referenceOrder[result.Reference]; !found {
			referenceOrder[result.Reference] = len(referenceOrder)
		}
		if result.Mismatches > summary.Levels {
			summary.Levels = result.Mismatches
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Mismatches != results[j].Mismatches {
			return results[i].Mismatches < results[j].Mismatches
		}
		return referenceOrder[results[i].Reference] < referenceOrder[results[j].Reference]
	})

	// One claim mask per reference, shared across its levels in
	// ascending order.
	claimed := make(map[string]*bitset.BitSet)

	overviewColumns := make([][]string, 0, len(results))
	for _, result := range results {
		mask := claimed[result.Reference]
		if mask == nil {
			mask = bitset.New(uint(len(sequences)))
			claimed[result.Reference] = mask
		}
		column, detail := aggregateColumn(sequences, result, mask, opts)
		summary.Columns = append(summary.Columns, ColumnName(result.Mismatches, result.Reference))
		summary.Detail[ColumnName(result.Mismatches, result.Reference)] = detail
		overviewColumns = append(overviewColumns, column)
	}

	summary.Overview = make([][]string, len(sequences))
	for row := range sequences {
		cells := make([]string, len(overviewColumns))
		for i, column := range overviewColumns {
			cells[i] = column[row]
		}
		summary.Overview[row] = cells
	}

	if err := summary.checkIdentity(sequences); err != nil {
		return nil, err
	}
	return summary, nil
}

// aggregateColumn renders one (reference, level) hit set into
// overview cells and raw descriptor strings, both positional over
// the sequence rows. The claim mask is updated with every sequence
// that received a hit.
func aggregateColumn(sequences []string, result align.JobResult, claimed *bitset.BitSet, opts AggregateOptions) (cells, detail []string) {
	full := opts.Mode.full(result.Reference)
	label := fmt.Sprintf("mis%d", result.Mismatches)

	hitsPerRow := make([][]align.Hit, len(sequences))
	for _, hit := range result.Hits {
		if hit.QueryIndex < 0 || hit.QueryIndex >= len(sequences) {
			continue
		}
		if claimed.Test(uint(hit.QueryIndex)) {
			// Already counted at a lower mismatch level.
			continue
		}
		hitsPerRow[hit.QueryIndex] = append(hitsPerRow[hit.QueryIndex], hit)
	}

	cells = make([]string, len(sequences))
	detail = make([]string, len(sequences))
	for row, hits := range hitsPerRow {
		if len(hits) == 0 {
			cells[row] = NoHit
			continue
		}
		detail[row] = renderDetail(result.Reference, hits, full)
		if !full {
			cells[row] = label
		} else if opts.MaxHits > 0 && len(hits) > opts.MaxHits {
			cells[row] = fmt.Sprintf("Warning>%d", len(hits))
		} else {
			cells[row] = renderFull(hits)
		}
	}

	// Claims are committed after rendering so that multi-mapping
	// within this level is not mistaken for a cross-level duplicate.
	for row, hits := range hitsPerRow {
		if len(hits) > 0 {
			claimed.Set(uint(row))
		}
	}
	return cells, detail
}

// renderFull renders full hit descriptors: reference entry, 1-based
// start and strand joined by ';', multiple hits joined by '|'.
func renderFull(hits []align.Hit) string {
	parts := make([]string, len(hits))
	for i, hit := range hits {
		parts[i] = fmt.Sprintf("%v;%d;%c", hit.ReferenceID, hit.Position+1, hit.Strand)
	}
	return strings.Join(parts, "|")
}

// renderDetail renders the raw descriptor string that regex search
// groups match against. Reduced references contribute only their
// name, keeping repetitive families cheap.
func renderDetail(reference string, hits []align.Hit, full bool) string {
	if !full {
		return reference
	}
	parts := make([]string, len(hits))
	for i, hit := range hits {
		parts[i] = reference + ":" + hit.ReferenceID
	}
	return strings.Join(parts, "|")
}

func (s *Summary) checkIdentity(sequences []string) error {
	if len(s.Overview) != len(sequences) {
		return structuralErrorf("overview has %d rows for %d sequences", len(s.Overview), len(sequences))
	}
	for i, sequence := range sequences {
		if s.Sequences[i] != sequence {
			return structuralErrorf("overview row %d is %v, want %v", i, s.Sequences[i], sequence)
		}
	}
	for column, detail := range s.Detail {
		if len(detail) != len(sequences) {
			return structuralErrorf("detail column %v has %d rows for %d sequences", column, len(detail), len(sequences))
		}
	}
	return nil
}
