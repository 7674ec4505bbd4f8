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
	"reflect"
	"strings"
	"testing"

	"github.com/exascience/srpac/utils"
)

func makePac() *Pac {
	p := New()
	p.Samples = []string{"s1", "s2", "s3", "s4"}
	p.PhenoColumns = []string{"group"}
	p.Pheno["s1"] = utils.StringMap{"group": "ctrl"}
	p.Pheno["s2"] = utils.StringMap{"group": "ctrl"}
	p.Pheno["s3"] = utils.StringMap{"group": "treat"}
	p.Pheno["s4"] = utils.StringMap{"group": "treat"}
	p.AnnoColumns = []string{"Length"}
	for _, row := range []struct {
		sequence string
		counts   []float64
	}{
		{"AAAA", []float64{1, 2, 3, 4}},
		{"CCCC", []float64{0, 0, 1, 1}},
		{"GGGG", []float64{9, 8, 7, 6}},
	} {
		p.Sequences = append(p.Sequences, row.sequence)
		p.Anno[row.sequence] = utils.StringMap{"Length": "4"}
		p.Counts[row.sequence] = row.counts
	}
	return p
}

func TestCheck(t *testing.T) {
	p := makePac()
	if err := p.Check(); err != nil {
		t.Fatal(err)
	}

	// Truncating one annotation row must fail, and name the row.
	delete(p.Anno, "CCCC")
	err := p.Check()
	if err == nil {
		t.Fatal("Check on truncated annotation table did not fail")
	}
	if _, ok := err.(*FormatError); !ok {
		t.Fatalf("Check failed with %T, want FormatError", err)
	}
	if !strings.Contains(err.Error(), "CCCC") {
		t.Errorf("Check error does not name the missing row: %v", err)
	}
}

func TestCheckColumnMismatch(t *testing.T) {
	p := makePac()
	delete(p.Pheno, "s3")
	err := p.Check()
	if err == nil {
		t.Fatal("Check with missing phenotype row did not fail")
	}
	if !strings.Contains(err.Error(), "s3") {
		t.Errorf("Check error does not name the missing sample: %v", err)
	}

	p = makePac()
	p.Counts["AAAA"] = []float64{1, 2, 3}
	if err := p.Check(); err == nil {
		t.Error("Check with short counts row did not fail")
	}

	p = makePac()
	p.Counts["AAAA"][1] = -1
	if err := p.Check(); err == nil {
		t.Error("Check with negative count did not fail")
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	p := makePac()
	dir := t.TempDir()
	if err := p.Write(dir); err != nil {
		t.Fatal(err)
	}
	q, err := Read(dir)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(p.Sequences, q.Sequences) {
		t.Errorf("sequence order changed: %v -> %v", p.Sequences, q.Sequences)
	}
	if !reflect.DeepEqual(p.Samples, q.Samples) {
		t.Errorf("sample order changed: %v -> %v", p.Samples, q.Samples)
	}
	if !reflect.DeepEqual(p.Counts, q.Counts) {
		t.Errorf("counts changed: %v -> %v", p.Counts, q.Counts)
	}
	if !reflect.DeepEqual(p.Anno, q.Anno) {
		t.Errorf("annotation changed: %v -> %v", p.Anno, q.Anno)
	}
}

func TestFilter(t *testing.T) {
	p := makePac()
	q, err := p.Filter(func(sequence string) bool { return sequence != "CCCC" }, []string{"s1", "s3"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(q.Sequences, []string{"AAAA", "GGGG"}) {
		t.Errorf("unexpected filtered sequences: %v", q.Sequences)
	}
	if !reflect.DeepEqual(q.Counts["AAAA"], []float64{1, 3}) {
		t.Errorf("unexpected filtered counts: %v", q.Counts["AAAA"])
	}
	if err := q.Check(); err != nil {
		t.Error(err)
	}

	if _, err := p.Filter(nil, []string{"nope"}); err == nil {
		t.Error("Filter on unknown sample did not fail")
	}
}

func TestAddCPM(t *testing.T) {
	p := makePac()
	if err := p.AddCPM("cpm"); err != nil {
		t.Fatal(err)
	}
	table := p.Norm["cpm"]
	if table == nil {
		t.Fatal("AddCPM did not add a table")
	}
	// Column s1 total is 10, so AAAA gets 1e5.
	if got := table.Rows["AAAA"][0]; math.Abs(got-1e5) > 1e-9 {
		t.Errorf("cpm value is %v, want 1e5", got)
	}
	total := 0.0
	for _, sequence := range table.Sequences {
		total += table.Rows[sequence][0]
	}
	if math.Abs(total-1e6) > 1e-6 {
		t.Errorf("cpm column sums to %v, want 1e6", total)
	}
}

func TestGroupSummaries(t *testing.T) {
	p := makePac()
	if err := p.AddGroupSummary("means", "counts", "group"); err != nil {
		t.Fatal(err)
	}
	table := p.Summary["means"]
	if !reflect.DeepEqual(table.Columns, []string{"mean_ctrl", "sd_ctrl", "mean_treat", "sd_treat"}) {
		t.Fatalf("unexpected summary columns: %v", table.Columns)
	}
	row := table.Rows["AAAA"]
	if math.Abs(row[0]-1.5) > 1e-9 || math.Abs(row[2]-3.5) > 1e-9 {
		t.Errorf("unexpected group means: %v", row)
	}

	if err := p.AddLog2FC("fc", "counts", "group", "treat", "ctrl"); err != nil {
		t.Fatal(err)
	}
	fc := p.Summary["fc"].Rows["AAAA"][0]
	want := math.Log2(4.5 / 2.5)
	if math.Abs(fc-want) > 1e-9 {
		t.Errorf("log2 fold change is %v, want %v", fc, want)
	}

	if err := p.AddGroupSummary("bad", "counts", "nope"); err == nil {
		t.Error("AddGroupSummary on unknown phenotype column did not fail")
	}
}
