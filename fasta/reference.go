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

package fasta

import (
	"bytes"
	"log"
)

// A Record is a single FASTA entry.
type Record struct {
	ID  string
	Seq []byte
}

// A ReferenceSet is an ordered collection of FASTA entries, used both
// for alignment references and for in-memory sequence sets. Entry
// order is significant and preserved by all operations.
type ReferenceSet struct {
	// Name becomes the column-name prefix for re-annotation output
	// derived from this reference.
	Name string

	Records []Record

	// IndexPath points at a prebuilt aligner index; empty triggers
	// on-demand index construction.
	IndexPath string

	index map[string]int
}

// NewReferenceSet returns an empty ReferenceSet with the given name.
func NewReferenceSet(name string) *ReferenceSet {
	return &ReferenceSet{Name: name, index: make(map[string]int)}
}

// Add appends an entry. Duplicate identifiers are rejected because
// downstream hit records refer to entries by identifier.
func (set *ReferenceSet) Add(id string, seq []byte) {
	if _, found := set.index[id]; found {
		log.Panicf("duplicate sequence identifier %v in reference %v", id, set.Name)
	}
	set.index[id] = len(set.Records)
	set.Records = append(set.Records, Record{ID: id, Seq: seq})
}

// Seq returns the sequence for the given entry identifier.
func (set *ReferenceSet) Seq(id string) ([]byte, bool) {
	if i, found := set.index[id]; found {
		return set.Records[i].Seq, true
	}
	return nil, false
}

// IDs returns the entry identifiers in entry order.
func (set *ReferenceSet) IDs() []string {
	ids := make([]string, len(set.Records))
	for i, record := range set.Records {
		ids[i] = record.ID
	}
	return ids
}

// Len returns the number of entries.
func (set *ReferenceSet) Len() int {
	return len(set.Records)
}

// Pad returns a new ReferenceSet whose entries carry nUp wildcard
// bases in front and nDown wildcard bases behind the original
// sequence. The padding allows reads from partially observed
// precursors to map at the reference boundaries.
func (set *ReferenceSet) Pad(nUp, nDown int) *ReferenceSet {
	if nUp == 0 && nDown == 0 {
		return set
	}
	padded := NewReferenceSet(set.Name)
	up := bytes.Repeat([]byte{'N'}, nUp)
	down := bytes.Repeat([]byte{'N'}, nDown)
	for _, record := range set.Records {
		seq := make([]byte, 0, nUp+len(record.Seq)+nDown)
		seq = append(seq, up...)
		seq = append(seq, record.Seq...)
		seq = append(seq, down...)
		padded.Add(record.ID, seq)
	}
	return padded
}

var complementTable = [256]byte{
	'A': 'T', 'a': 't',
	'C': 'G', 'c': 'g',
	'G': 'C', 'g': 'c',
	'T': 'A', 't': 'a',
	'U': 'A', 'u': 'a',
	'N': 'N', 'n': 'n',
	'R': 'Y', 'r': 'y',
	'Y': 'R', 'y': 'r',
	'M': 'K', 'm': 'k',
	'K': 'M', 'k': 'm',
	'W': 'W', 'w': 'w',
	'S': 'S', 's': 's',
	'B': 'V', 'b': 'v',
	'V': 'B', 'v': 'b',
	'D': 'H', 'd': 'h',
	'H': 'D', 'h': 'd',
	'-': '-',
}

// ReverseComplement returns the reverse complement of a nucleotide
// sequence, including IUPAC ambiguity codes.
func ReverseComplement(seq []byte) []byte {
	result := make([]byte, len(seq))
	for i, c := range seq {
		r := complementTable[c]
		if r == 0 {
			log.Panicf("cannot complement nucleotide code %q", c)
		}
		result[len(seq)-1-i] = r
	}
	return result
}
