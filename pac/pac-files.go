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
	"bufio"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/exascience/srpac/fasta"
	"github.com/exascience/srpac/internal"
	"github.com/exascience/srpac/utils"
)

// File names of the persisted table triplet inside a Pac directory.
const (
	PhenoFile  = "Pheno.txt"
	AnnoFile   = "Anno.txt"
	CountsFile = "Counts.txt"
)

func openTable(dir, name string) (*os.File, string) {
	filename := filepath.Join(dir, name)
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		if _, gzerr := os.Stat(filename + ".gz"); gzerr == nil {
			filename += ".gz"
		}
	}
	return internal.FileOpen(filename), filename
}

// readTSV reads a tab-separated table with a header line. The first
// header field names the row key column; remaining fields name the
// value columns. Returns the value column names, the row keys in file
// order, and the raw field values per row key.
func readTSV(dir, name string) (columns, rowKeys []string, rows map[string][]string) {
	f, filename := openTable(dir, name)
	defer internal.Close(f)

	scanner := bufio.NewScanner(fasta.HandleGzip(bufio.NewReader(f)))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !scanner.Scan() {
		log.Panicf("empty table file %v", filename)
	}
	header := strings.Split(scanner.Text(), "\t")
	if len(header) < 1 {
		log.Panicf("invalid table file %v - empty header", filename)
	}
	columns = header[1:]

	rows = make(map[string][]string)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != len(header) {
			log.Panicf("invalid table file %v - row %v has %d fields for %d header fields", filename, fields[0], len(fields), len(header))
		}
		key := fields[0]
		if _, found := rows[key]; found {
			log.Panicf("invalid table file %v - duplicate row name %v", filename, key)
		}
		rowKeys = append(rowKeys, key)
		rows[key] = fields[1:]
	}
	if err := scanner.Err(); err != nil {
		log.Panic(err)
	}
	return columns, rowKeys, rows
}

// Read loads a Pac from a directory holding the persisted table
// triplet. Row order of the counts table defines the sequence order;
// the annotation table is normalized to that order. Gzip-compressed
// tables are handled transparently.
//
// The loaded Pac is validated with Check before it is returned.
func Read(dir string) (*Pac, error) {
	p := New()

	countColumns, sequences, countRows := readTSV(dir, CountsFile)
	p.Samples = countColumns
	p.Sequences = sequences
	for _, sequence := range sequences {
		fields := countRows[sequence]
		row := make([]float64, len(fields))
		for i, field := range fields {
			row[i] = internal.ParseFloat(field, 64)
		}
		p.Counts[sequence] = row
	}

	annoColumns, annoKeys, annoRows := readTSV(dir, AnnoFile)
	p.AnnoColumns = annoColumns
	for _, key := range annoKeys {
		record := make(utils.StringMap, len(annoColumns))
		for i, column := range annoColumns {
			if !record.SetUniqueEntry(column, annoRows[key][i]) {
				log.Panicf("duplicate column name %v in %v", column, AnnoFile)
			}
		}
		p.Anno[key] = record
	}

	phenoColumns, samples, phenoRows := readTSV(dir, PhenoFile)
	p.PhenoColumns = phenoColumns
	for _, sample := range samples {
		record := make(utils.StringMap, len(phenoColumns))
		for i, column := range phenoColumns {
			if !record.SetUniqueEntry(column, phenoRows[sample][i]) {
				log.Panicf("duplicate column name %v in %v", column, PhenoFile)
			}
		}
		p.Pheno[sample] = record
	}

	if err := p.Check(); err != nil {
		return nil, err
	}
	return p, nil
}

func writeTSV(dir, name, keyHeader string, columns, rowKeys []string, value func(key, column string) string) {
	file := internal.FileCreate(filepath.Join(dir, name))
	defer internal.Close(file)
	out := bufio.NewWriter(file)

	internal.WriteString(out, keyHeader)
	for _, column := range columns {
		internal.WriteString(out, "\t")
		internal.WriteString(out, column)
	}
	internal.WriteString(out, "\n")

	for _, key := range rowKeys {
		internal.WriteString(out, key)
		for _, column := range columns {
			internal.WriteString(out, "\t")
			internal.WriteString(out, value(key, column))
		}
		internal.WriteString(out, "\n")
	}
	if err := out.Flush(); err != nil {
		log.Panic(err)
	}
}

// Write stores a Pac as a table triplet in the given directory,
// creating it when necessary. The Pac is validated first; an invalid
// Pac is never partially written.
func (p *Pac) Write(dir string) error {
	if err := p.Check(); err != nil {
		return err
	}
	internal.MkdirAll(dir, 0700)

	columnIndex := make(map[string]int, len(p.Samples))
	for i, sample := range p.Samples {
		columnIndex[sample] = i
	}
	writeTSV(dir, CountsFile, "Sequence", p.Samples, p.Sequences, func(key, column string) string {
		return strconv.FormatFloat(p.Counts[key][columnIndex[column]], 'g', -1, 64)
	})
	writeTSV(dir, AnnoFile, "Sequence", p.AnnoColumns, p.Sequences, func(key, column string) string {
		return p.AnnoValue(key, column)
	})
	writeTSV(dir, PhenoFile, "Sample", p.PhenoColumns, p.Samples, func(key, column string) string {
		return p.Pheno[key][column]
	})
	return nil
}
