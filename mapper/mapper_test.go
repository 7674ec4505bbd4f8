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

package mapper

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/exascience/srpac/fasta"
	"github.com/exascience/srpac/pac"
	"github.com/exascience/srpac/utils"
)

// substringAligner matches queries by exact substring search on the
// forward strand, writing report files in the external aligner's
// format.
type substringAligner struct {
	ref *fasta.ReferenceSet
}

func (f *substringAligner) BuildIndex(ref *fasta.ReferenceSet, dir string) (string, error) {
	f.ref = ref
	return ref.Name, nil
}

func (f *substringAligner) Align(indexPath, queryFasta string, mismatches int, output string) error {
	queries := fasta.Parse(queryFasta, "queries", false, false)
	var lines []string
	for _, query := range queries.Records {
		for _, record := range f.ref.Records {
			for from := 0; ; {
				i := strings.Index(string(record.Seq[from:]), string(query.Seq))
				if i < 0 {
					break
				}
				lines = append(lines, fmt.Sprintf("%v\t+\t%v\t%d\t%s\t%s\t0",
					query.ID, record.ID, from+i, query.Seq, strings.Repeat("I", len(query.Seq))))
				from += i + 1
			}
		}
	}
	return os.WriteFile(output, []byte(strings.Join(lines, "\n")+"\n"), 0666)
}

func mapperPac(sequences ...string) *pac.Pac {
	p := pac.New()
	p.Samples = []string{"s1"}
	p.PhenoColumns = []string{"group"}
	p.Pheno["s1"] = utils.StringMap{"group": "a"}
	for _, sequence := range sequences {
		p.Sequences = append(p.Sequences, sequence)
		p.Anno[sequence] = utils.StringMap{}
		p.Counts[sequence] = []float64{1}
	}
	return p
}

func mapperReference() *fasta.ReferenceSet {
	ref := fasta.NewReferenceSet("trna")
	//                 0         1         2
	//                 0123456789012345678901234567
	ref.Add("tRNA1", []byte("GGGAACGTACGTTTTAACGTACGTGGGA"))
	ref.Add("tRNA2", []byte("CCTTAGGAACCGGTTACCAA"))
	return ref
}

func TestMapMultiRemove(t *testing.T) {
	// AACGTACGT occurs twice in tRNA1; the other reads map once
	// each.
	p := mapperPac("AACGTACGT", "GGGAACG", "GTTTTAA", "CCTTAGGAAC")
	result, err := Map(p, mapperReference(), Options{
		Aligner: &substringAligner{},
		Staging: t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("result has %d entries, want 2", len(result.Entries))
	}
	if !strings.Contains(strings.Join(result.Dropped, " "), "AACGTACGT") {
		t.Errorf("multi-mapping sequence not dropped: %v", result.Dropped)
	}
	entry := result.Entries[0]
	if entry.ReferenceID != "tRNA1" || entry.NoHits {
		t.Fatalf("unexpected first entry: %+v", entry)
	}
	for _, read := range entry.Reads {
		if read.Sequence == "AACGTACGT" {
			t.Error("dropped sequence still present in entry reads")
		}
	}
	if len(entry.Reads) != 2 {
		t.Errorf("tRNA1 has %d reads, want 2", len(entry.Reads))
	}
}

func TestMapMultiKeep(t *testing.T) {
	p := mapperPac("AACGTACGT")
	result, err := Map(p, mapperReference(), Options{
		Aligner: &substringAligner{},
		Multi:   MultiKeep,
		Staging: t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}
	entry := result.Entries[0]
	if len(entry.Reads) != 2 {
		t.Fatalf("tRNA1 has %d reads, want 2", len(entry.Reads))
	}
	if entry.Reads[0].Key != "AACGTACGT.1" || entry.Reads[1].Key != "AACGTACGT.2" {
		t.Errorf("multi-mapping keys not ordinal-suffixed: %v, %v", entry.Reads[0].Key, entry.Reads[1].Key)
	}
	if len(result.Dropped) != 0 {
		t.Errorf("keep policy dropped sequences: %v", result.Dropped)
	}
}

func TestMapNoHitsEntry(t *testing.T) {
	p := mapperPac("GGGAACG")
	result, err := Map(p, mapperReference(), Options{
		Aligner: &substringAligner{},
		Staging: t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}
	entry := result.Entries[1]
	if entry.ReferenceID != "tRNA2" || !entry.NoHits || len(entry.Reads) != 0 {
		t.Errorf("zero-coverage entry not tagged no_hits: %+v", entry)
	}
}

func TestMapRender(t *testing.T) {
	p := mapperPac("GGGAACG")
	result, err := Map(p, mapperReference(), Options{
		Aligner: &substringAligner{},
		Render:  true,
		Staging: t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}
	read := result.Entries[0].Reads[0]
	want := "GGGAACG" + strings.Repeat("-", 21)
	if read.Alignment != want {
		t.Errorf("alignment string is %q, want %q", read.Alignment, want)
	}
	if read.Start != 1 || read.End != 7 {
		t.Errorf("coordinates are %d..%d, want 1..7", read.Start, read.End)
	}
}

func TestMapRenderDisabledForKeep(t *testing.T) {
	p := mapperPac("AACGTACGT")
	result, err := Map(p, mapperReference(), Options{
		Aligner: &substringAligner{},
		Multi:   MultiKeep,
		Render:  true,
		Staging: t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Warnings) == 0 {
		t.Error("rendering under multi=keep produced no warning")
	}
	for _, entry := range result.Entries {
		for _, read := range entry.Reads {
			if read.Alignment != "" {
				t.Error("rendering under multi=keep produced alignment strings")
			}
		}
	}
}

func TestMapPadding(t *testing.T) {
	// GTTT only fits tRNA1 when the reference is padded downstream:
	// it spans the entry boundary.
	ref := fasta.NewReferenceSet("trna")
	ref.Add("tRNA1", []byte("ACGTACG"))
	p := mapperPac("TACGNN")
	result, err := Map(p, ref, Options{
		Aligner: &substringAligner{},
		NDown:   2,
		Staging: t.TempDir(),
	})
	if err != nil {
		t.Fatal(err)
	}
	entry := result.Entries[0]
	if entry.NoHits {
		t.Fatal("padded mapping found no hits")
	}
	if entry.Length != 9 {
		t.Errorf("padded entry length is %d, want 9", entry.Length)
	}
	if entry.Reads[0].Start != 4 || entry.Reads[0].End != 9 {
		t.Errorf("padded coordinates are %d..%d, want 4..9", entry.Reads[0].Start, entry.Reads[0].End)
	}
}

func TestCheckNaming(t *testing.T) {
	if warning := CheckNaming([]string{"chr1", "chr2"}, []string{"chr2", "chr1"}); warning != nil {
		t.Errorf("identical vocabularies warned: %v", warning)
	}
	warning := CheckNaming([]string{"chr1", "chr2", "chr3"}, []string{"1", "2", "chr3"})
	if warning == nil {
		t.Fatal("mismatched vocabularies did not warn")
	}
	if warning.Similarity < 0.19 || warning.Similarity > 0.21 {
		t.Errorf("similarity is %v, want 0.2", warning.Similarity)
	}
	if len(warning.OnlyA) != 2 || len(warning.OnlyB) != 2 {
		t.Errorf("unexpected difference lists: %v %v", warning.OnlyA, warning.OnlyB)
	}
}
