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

// Package mapper maps the sequences of a Pac against a single small
// reference and reports reference-relative coordinates per reference
// entry.
package mapper

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/exascience/srpac/align"
	"github.com/exascience/srpac/fasta"
	"github.com/exascience/srpac/pac"
)

// Multi-mapping policies.
const (
	// MultiRemove drops query sequences that hit the same reference
	// entry more than once, with a warning listing them.
	MultiRemove = "remove"

	// MultiKeep retains all hits, disambiguated by an ordinal suffix
	// on the returned key.
	MultiKeep = "keep"
)

// RenderCeiling is the maximum reference entry length for which
// alignment strings are rendered.
const RenderCeiling = 500

// Options configure a coordinate mapping run.
type Options struct {
	Aligner    align.Aligner
	Mismatches int

	// NUp and NDown prepend and append wildcard bases to every
	// reference entry before indexing, to allow mapping against
	// partially observed precursors. Coordinates are relative to the
	// padded entry.
	NUp, NDown int

	// Multi selects the multi-mapping policy; empty defaults to
	// MultiRemove.
	Multi string

	// Render requests padded alignment strings positioning each read
	// in the reference coordinate frame. Automatically disabled,
	// with a warning, for entries longer than RenderCeiling or when
	// Multi is MultiKeep.
	Render bool

	Threads int
	Staging string
	Force   bool
}

// A MappedRead is one query sequence placed on a reference entry.
// Start and End are 1-based inclusive coordinates.
type MappedRead struct {
	// Key is the query sequence, ordinal-suffixed under MultiKeep.
	Key        string
	Sequence   string
	Start, End int
	Strand     byte
	Mismatches int

	// Alignment is the rendered alignment string, empty when
	// rendering is off.
	Alignment string
}

// An Entry is the mapping result for one reference entry. Entries
// with zero hits are included with NoHits set, so that zero-coverage
// references stay distinguishable from entries absent from the
// reference set.
type Entry struct {
	ReferenceID string
	Length      int
	NoHits      bool
	Reads       []MappedRead
}

// A Result holds the per-entry coordinate tables of one mapping run.
type Result struct {
	Reference string
	Entries   []Entry
	Dropped   []string
	Warnings  []string
}

// Map aligns every sequence of the Pac against the reference set and
// returns per-entry coordinate tables, in reference entry order.
func Map(p *pac.Pac, ref *fasta.ReferenceSet, opts Options) (*Result, error) {
	if err := p.Check(); err != nil {
		return nil, err
	}
	if opts.Multi == "" {
		opts.Multi = MultiRemove
	}
	if opts.Multi != MultiRemove && opts.Multi != MultiKeep {
		return nil, fmt.Errorf("unknown multi-mapping policy %q", opts.Multi)
	}

	padded := ref.Pad(opts.NUp, opts.NDown)

	run, err := align.Run(p.Sequences, align.RunOptions{
		Aligner:    opts.Aligner,
		References: []*fasta.ReferenceSet{padded},
		Mismatches: opts.Mismatches,
		Threads:    opts.Threads,
		Staging:    opts.Staging,
		Force:      opts.Force,
	})
	if err != nil {
		return nil, err
	}

	result := &Result{Reference: ref.Name}
	for _, w := range run.Warnings {
		result.Warnings = append(result.Warnings, w.String())
	}

	render := opts.Render
	if render && opts.Multi == MultiKeep {
		result.Warnings = append(result.Warnings, "alignment rendering disabled: multi=keep produces ordinal-suffixed keys")
		render = false
	}

	// Collect hits per reference entry, per query row, across all
	// levels.
	type entryHits map[int][]align.Hit // query row -> hits
	hitsPerEntry := make(map[string]entryHits)
	for _, jobResult := range run.Results {
		for _, hit := range jobResult.Hits {
			hits := hitsPerEntry[hit.ReferenceID]
			if hits == nil {
				hits = make(entryHits)
				hitsPerEntry[hit.ReferenceID] = hits
			}
			hits[hit.QueryIndex] = append(hits[hit.QueryIndex], hit)
		}
	}

	dropped := make(map[string]bool)
	for _, record := range padded.Records {
		entry := Entry{ReferenceID: record.ID, Length: len(record.Seq)}
		entryRender := render
		if entryRender && entry.Length > RenderCeiling {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("alignment rendering disabled for %v: length %d exceeds %d", record.ID, entry.Length, RenderCeiling))
			entryRender = false
		}

		hits := hitsPerEntry[record.ID]
		for _, row := range sortedRows(hits) {
			rowHits := hits[row]
			sequence := p.Sequences[row]
			if opts.Multi == MultiRemove && len(rowHits) > 1 {
				if !dropped[sequence] {
					dropped[sequence] = true
					result.Dropped = append(result.Dropped, sequence)
				}
				continue
			}
			for i, hit := range rowHits {
				key := sequence
				if opts.Multi == MultiKeep && len(rowHits) > 1 {
					key = fmt.Sprintf("%v.%d", sequence, i+1)
				}
				read := MappedRead{
					Key:        key,
					Sequence:   sequence,
					Start:      hit.Position + 1,
					End:        hit.Position + len(hit.MatchedSeq),
					Strand:     hit.Strand,
					Mismatches: hit.Mismatches,
				}
				if entryRender {
					read.Alignment = renderAlignment(hit, entry.Length)
				}
				entry.Reads = append(entry.Reads, read)
			}
		}
		entry.NoHits = len(entry.Reads) == 0
		result.Entries = append(result.Entries, entry)
	}

	if len(result.Dropped) > 0 {
		log.Printf("dropped %d multi-mapping sequence(s): %v", len(result.Dropped), strings.Join(result.Dropped, ", "))
	}
	return result, nil
}

func sortedRows(hits map[int][]align.Hit) []int {
	rows := make([]int, 0, len(hits))
	for row := range hits {
		rows = append(rows, row)
	}
	sort.Ints(rows)
	return rows
}

// renderAlignment places the matched read within the reference
// coordinate frame, '-'-padded outside the match. The report parser
// hands over the matched sequence in reference orientation, so minus
// strand reads are already reverse complemented.
func renderAlignment(hit align.Hit, length int) string {
	matched := hit.MatchedSeq
	end := hit.Position + len(matched)
	if end > length {
		end = length
		matched = matched[:length-hit.Position]
	}
	return strings.Repeat("-", hit.Position) + matched + strings.Repeat("-", length-end)
}
