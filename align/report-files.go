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

package align

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/exascience/srpac/fasta"
	"github.com/exascience/srpac/internal"
)

// A lineScanner splits a report line into tab-separated fields with a
// sticky error flag, so parsing a line needs only one check at the
// end.
type lineScanner struct {
	data  string
	index int
	err   bool
}

func (sc *lineScanner) reset(s string) {
	sc.data = s
	sc.index = 0
	sc.err = false
}

func (sc *lineScanner) field() string {
	if sc.err {
		return ""
	}
	if sc.index >= len(sc.data) {
		sc.err = true
		return ""
	}
	start := sc.index
	for end := sc.index; end < len(sc.data); end++ {
		if sc.data[end] == '\t' {
			sc.index = end + 1
			return sc.data[start:end]
		}
	}
	sc.index = len(sc.data)
	return sc.data[start:]
}

// optionalField returns the next field, or the empty string when the
// line has no more fields. It never sets the error flag.
func (sc *lineScanner) optionalField() string {
	if sc.err || sc.index >= len(sc.data) {
		return ""
	}
	return sc.field()
}

func (sc *lineScanner) intField() int {
	s := sc.field()
	if sc.err {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		sc.err = true
		return 0
	}
	return n
}

// mismatchCount derives the exact number of mismatches from a
// bowtie-style mismatch descriptor: a comma-separated list of
// offset:ref>read entries, empty for a perfect hit.
func mismatchCount(descriptor string) int {
	if descriptor == "" {
		return 0
	}
	return strings.Count(descriptor, ",") + 1
}

// ParseReport reads one raw aligner report for the given reference
// and produces the hits it describes. Report lines hold the fields
// query-id, strand, reference-id, zero-based offset, matched
// sequence, quality placeholder, other-hit count and an optional
// mismatch descriptor. Malformed lines are skipped and counted, not
// fatal.
func ParseReport(reader io.Reader, reference string) (hits []Hit, skipped int) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var sc lineScanner
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		sc.reset(line)
		queryID := sc.field()
		strand := sc.field()
		referenceID := sc.field()
		position := sc.intField()
		matched := sc.field()
		sc.field()         // quality placeholder
		sc.optionalField() // other-hit count
		descriptor := sc.optionalField()
		queryIndex := fasta.QueryIndex(queryID)
		if sc.err || queryIndex < 0 || position < 0 || (strand != "+" && strand != "-") {
			skipped++
			continue
		}
		hits = append(hits, Hit{
			QueryIndex:  queryIndex,
			Reference:   reference,
			ReferenceID: referenceID,
			Mismatches:  mismatchCount(descriptor),
			Position:    position,
			Strand:      strand[0],
			MatchedSeq:  matched,
		})
	}
	if err := scanner.Err(); err != nil {
		// A truncated report is a soft problem for the job, like a
		// malformed line.
		skipped++
	}
	return hits, skipped
}

// ParseReportFile is ParseReport on a report file in the staging
// area, transparently handling gzip-compressed reports kept from
// earlier runs.
func ParseReportFile(filename, reference string) (hits []Hit, skipped int) {
	f := internal.FileOpen(filename)
	defer internal.Close(f)
	return ParseReport(fasta.HandleGzip(bufio.NewReader(f)), reference)
}
