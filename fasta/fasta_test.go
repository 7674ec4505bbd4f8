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
	"bufio"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseReader(t *testing.T) {
	input := ">tRNA1 some description\nACGTacgt\nACGT\n\n>tRNA2\nuuuu\n"
	set := ParseReader(bufio.NewReader(strings.NewReader(input)), "trna", "test", true, true)
	if set.Len() != 2 {
		t.Fatalf("parsed %d entries, want 2", set.Len())
	}
	if !reflect.DeepEqual(set.IDs(), []string{"tRNA1", "tRNA2"}) {
		t.Errorf("unexpected entry order: %v", set.IDs())
	}
	seq, _ := set.Seq("tRNA1")
	if string(seq) != "ACGTACGTACGT" {
		t.Errorf("tRNA1 sequence is %s", seq)
	}
	seq, _ = set.Seq("tRNA2")
	if string(seq) != "TTTT" {
		t.Errorf("tRNA2 sequence is %s, want U normalized to T", seq)
	}
}

func TestWriteParseRoundTrip(t *testing.T) {
	set := NewReferenceSet("trna")
	set.Add("a", []byte("ACGTACGT"))
	set.Add("b", []byte(strings.Repeat("ACGT", 50)))
	filename := filepath.Join(t.TempDir(), "ref.fa")
	Write(set, filename)
	parsed := Parse(filename, "trna", false, false)
	if !reflect.DeepEqual(parsed.IDs(), set.IDs()) {
		t.Errorf("entry order changed: %v", parsed.IDs())
	}
	for _, record := range set.Records {
		seq, found := parsed.Seq(record.ID)
		if !found || string(seq) != string(record.Seq) {
			t.Errorf("sequence %v changed after round trip", record.ID)
		}
	}
}

func TestWriteQueries(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "reads.fa")
	WriteQueries([]string{"AAAA", "CCCC"}, filename)
	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != ">seq1\nAAAA\n>seq2\nCCCC\n" {
		t.Errorf("unexpected query fasta: %q", data)
	}
}

func TestQueryIndex(t *testing.T) {
	if QueryIndex("seq1") != 0 {
		t.Error("QueryIndex seq1 failed")
	}
	if QueryIndex("seq42") != 41 {
		t.Error("QueryIndex seq42 failed")
	}
	for _, id := range []string{"", "seq", "seq0", "seqX", "read1"} {
		if QueryIndex(id) != -1 {
			t.Errorf("QueryIndex %q did not fail", id)
		}
	}
}

func TestReverseComplement(t *testing.T) {
	if got := string(ReverseComplement([]byte("ACGTN"))); got != "NACGT" {
		t.Errorf("ReverseComplement ACGTN is %v", got)
	}
	if got := string(ReverseComplement([]byte("GGGA"))); got != "TCCC" {
		t.Errorf("ReverseComplement GGGA is %v", got)
	}
}

func TestPad(t *testing.T) {
	set := NewReferenceSet("trna")
	set.Add("a", []byte("ACGT"))
	padded := set.Pad(2, 3)
	seq, _ := padded.Seq("a")
	if string(seq) != "NNACGTNNN" {
		t.Errorf("padded sequence is %s", seq)
	}
	if set.Pad(0, 0) != set {
		t.Error("zero padding copied the reference set")
	}
}

func TestSrfastaRoundTrip(t *testing.T) {
	set := NewReferenceSet("genome")
	set.Add("chr1", []byte(strings.Repeat("ACGT", 100)))
	set.Add("chr2", []byte("TTTTAAAA"))
	filename := filepath.Join(t.TempDir(), "genome.srfasta")
	ToSrfasta(set, filename)

	mapped := OpenSrfasta(filename)
	defer mapped.Close()
	if string(mapped.Seq("chr2")) != "TTTTAAAA" {
		t.Errorf("chr2 sequence is %s", mapped.Seq("chr2"))
	}
	roundTrip := mapped.ToReferenceSet("genome")
	if !reflect.DeepEqual(roundTrip.IDs(), set.IDs()) {
		t.Errorf("entry order changed: %v", roundTrip.IDs())
	}
	for _, record := range set.Records {
		seq, found := roundTrip.Seq(record.ID)
		if !found || string(seq) != string(record.Seq) {
			t.Errorf("sequence %v changed after round trip", record.ID)
		}
	}
}
