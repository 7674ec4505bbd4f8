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
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/exascience/srpac/fasta"
)

func TestMismatchCount(t *testing.T) {
	if mismatchCount("") != 0 {
		t.Error("mismatchCount empty failed")
	}
	if mismatchCount("10:A>G") != 1 {
		t.Error("mismatchCount 1 failed")
	}
	if mismatchCount("10:A>G,15:C>T") != 2 {
		t.Error("mismatchCount 2 failed")
	}
}

func TestParseReport(t *testing.T) {
	report := "seq1\t+\ttRNA1\t4\tACGTACGT\tIIIIIIII\t0\n" +
		"seq2\t-\ttRNA1\t0\tTTTTACGT\tIIIIIIII\t0\t3:G>T\n" +
		"seq3\t+\ttRNA2\t7\tACGT\tIIII\n" +
		"garbage line without tabs\n" +
		"seqX\t+\ttRNA1\tnotanumber\tACGT\tIIII\t0\n" +
		"seq4\t+\ttRNA1\t-2\tACGT\tIIII\t0\n"
	hits, skipped := ParseReport(strings.NewReader(report), "trna")
	if len(hits) != 3 {
		t.Fatalf("ParseReport returned %d hits, want 3", len(hits))
	}
	if skipped != 3 {
		t.Errorf("ParseReport skipped %d lines, want 3", skipped)
	}
	if hits[0].QueryIndex != 0 || hits[0].Reference != "trna" || hits[0].ReferenceID != "tRNA1" ||
		hits[0].Position != 4 || hits[0].Strand != '+' || hits[0].Mismatches != 0 {
		t.Errorf("ParseReport hit 0 wrong: %+v", hits[0])
	}
	if hits[1].QueryIndex != 1 || hits[1].Strand != '-' || hits[1].Mismatches != 1 {
		t.Errorf("ParseReport hit 1 wrong: %+v", hits[1])
	}
	if hits[2].QueryIndex != 2 || hits[2].ReferenceID != "tRNA2" || hits[2].Mismatches != 0 {
		t.Errorf("ParseReport hit 2 wrong: %+v", hits[2])
	}
}

// fakeAligner matches queries against reference sequences by exact
// substring search on both strands and writes report files in the
// external aligner's format. Mismatch levels above 0 produce no
// additional hits.
type fakeAligner struct {
	refs map[string]*fasta.ReferenceSet
}

func newFakeAligner(refs ...*fasta.ReferenceSet) *fakeAligner {
	f := &fakeAligner{refs: make(map[string]*fasta.ReferenceSet)}
	for _, ref := range refs {
		f.refs[ref.Name] = ref
	}
	return f
}

func (f *fakeAligner) BuildIndex(ref *fasta.ReferenceSet, dir string) (string, error) {
	if _, found := f.refs[ref.Name]; !found {
		f.refs[ref.Name] = ref
	}
	return ref.Name, nil
}

func (f *fakeAligner) Align(indexPath, queryFasta string, mismatches int, output string) error {
	ref := f.refs[indexPath]
	queries := fasta.Parse(queryFasta, "queries", false, false)
	var lines []string
	for _, query := range queries.Records {
		for _, record := range ref.Records {
			for _, strand := range []byte{'+', '-'} {
				seq := query.Seq
				if strand == '-' {
					seq = fasta.ReverseComplement(seq)
				}
				for from := 0; ; {
					i := strings.Index(string(record.Seq[from:]), string(seq))
					if i < 0 {
						break
					}
					lines = append(lines, fmt.Sprintf("%v\t%c\t%v\t%d\t%s\t%s\t0",
						query.ID, strand, record.ID, from+i, seq, strings.Repeat("I", len(seq))))
					from += i + 1
				}
			}
		}
	}
	return os.WriteFile(output, []byte(strings.Join(lines, "\n")+"\n"), 0666)
}

func testReference() *fasta.ReferenceSet {
	ref := fasta.NewReferenceSet("trna")
	ref.Add("tRNA1", []byte("GGGCCCGTGATCGTATAGTGGTTAGTACTC"))
	return ref
}

func TestRunEndToEnd(t *testing.T) {
	sequences := []string{
		"GTGATCGTATAGTGGTTAGT", // 20nt substring of tRNA1
		"AAAAAAAAAAAAAAAAAAAA",
		"CCCCCCCCCCCCCCCCCCCC",
	}
	run, err := Run(sequences, RunOptions{
		Aligner:    newFakeAligner(),
		References: []*fasta.ReferenceSet{testReference()},
		Mismatches: 1,
		Threads:    2,
		Staging:    t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(run.Results) != 2 {
		t.Fatalf("Run produced %d job results, want 2", len(run.Results))
	}
	var mis0 *JobResult
	for i := range run.Results {
		if run.Results[i].Mismatches == 0 {
			mis0 = &run.Results[i]
		}
	}
	if mis0 == nil {
		t.Fatal("Run produced no mis0 result")
	}
	if len(mis0.Hits) != 1 {
		t.Fatalf("mis0 job has %d hits, want 1", len(mis0.Hits))
	}
	hit := mis0.Hits[0]
	if hit.QueryIndex != 0 || hit.ReferenceID != "tRNA1" || hit.Position != 6 || hit.Strand != '+' {
		t.Errorf("unexpected hit: %+v", hit)
	}
	// The mis1 job finds nothing beyond what mis0 already claimed,
	// which must leave a trace in the warnings.
	var noHits []JobWarning
	for _, w := range run.Warnings {
		if w.Message == "no hits" {
			noHits = append(noHits, w)
		}
	}
	if len(noHits) != 1 || noHits[0].Reference != "trna" || noHits[0].Mismatches != 1 {
		t.Errorf("unexpected no-hit warnings: %+v", noHits)
	}
}

func TestRunStagingRefusal(t *testing.T) {
	staging := t.TempDir()
	if err := os.WriteFile(filepath.Join(staging, "stale.txt"), []byte("stale"), 0666); err != nil {
		t.Fatal(err)
	}
	_, err := Run([]string{"ACGT"}, RunOptions{
		Aligner:    newFakeAligner(),
		References: []*fasta.ReferenceSet{testReference()},
		Staging:    staging,
	})
	if err == nil || !strings.Contains(err.Error(), "not empty") {
		t.Errorf("Run on non-empty staging area did not refuse: %v", err)
	}
	if _, err := Run([]string{"ACGT"}, RunOptions{
		Aligner:    newFakeAligner(),
		References: []*fasta.ReferenceSet{testReference()},
		Staging:    staging,
		Force:      true,
	}); err != nil {
		t.Errorf("Run with force failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(staging, "stale.txt")); !os.IsNotExist(err) {
		t.Errorf("force did not discard stale staging contents: %v", err)
	}
}

func TestRunKeepsReports(t *testing.T) {
	staging := t.TempDir()
	run, err := Run([]string{"GTGATCGTATAGTGGTTAGT"}, RunOptions{
		Aligner:    newFakeAligner(),
		References: []*fasta.ReferenceSet{testReference()},
		Mismatches: 0,
		Staging:    staging,
		Keep:       true,
	})
	if err != nil {
		t.Fatal(err)
	}
	report := filepath.Join(staging, "trna", "mis0.txt")
	if run.Results[0].ReportFile != report {
		t.Errorf("report file is %v, want %v", run.Results[0].ReportFile, report)
	}
	if _, err := os.Stat(report); err != nil {
		t.Errorf("kept report file missing: %v", err)
	}
}
