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
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/exascience/srpac/internal"

	"github.com/klauspost/compress/gzip"
)

func contigFromHeader(b []byte) string {
	i := 1
	for ; i < len(b); i++ {
		if c := b[i]; c >= '!' && c <= '~' {
			break
		}
	}
	j := i + 1
	for ; j < len(b); j++ {
		if c := b[j]; c < '!' || c > '~' {
			break
		}
	}
	return string(b[i:j])
}

var iupacTable = map[byte]byte{
	'A': 'A', 'a': 'a',
	'C': 'C', 'c': 'c',
	'G': 'G', 'g': 'g',
	'T': 'T', 't': 't',
	'U': 'T', 'u': 't',
	'N': 'N', 'n': 'N',
	'R': 'N', 'r': 'N',
	'Y': 'N', 'y': 'N',
	'M': 'N', 'm': 'N',
	'K': 'N', 'k': 'N',
	'W': 'N', 'w': 'N',
	'S': 'N', 's': 'N',
	'B': 'N', 'b': 'N',
	'D': 'N', 'd': 'N',
	'H': 'N', 'h': 'N',
	'V': 'N', 'v': 'N',
}

// ToN can be used to normalize ambiguity codes in FASTA references.
// U is normalized to T so that RNA references can be aligned against
// DNA reads.
func ToN(base byte) byte {
	if n, ok := iupacTable[base]; ok {
		return n
	}
	return base
}

var iupacUpperTable = map[byte]byte{
	'A': 'A', 'a': 'A',
	'C': 'C', 'c': 'C',
	'G': 'G', 'g': 'G',
	'T': 'T', 't': 'T',
	'U': 'T', 'u': 'T',
	'N': 'N', 'n': 'N',
	'R': 'N', 'r': 'N',
	'Y': 'N', 'y': 'N',
	'M': 'N', 'm': 'N',
	'K': 'N', 'k': 'N',
	'W': 'N', 'w': 'N',
	'S': 'N', 's': 'N',
	'B': 'N', 'b': 'N',
	'D': 'N', 'd': 'N',
	'H': 'N', 'h': 'N',
	'V': 'N', 'v': 'N',
}

// ToUpperAndN can be used to normalize ambiguity codes in FASTA
// references, and convert all codes to upper case.
func ToUpperAndN(base byte) byte {
	if n, ok := iupacUpperTable[base]; ok {
		return n
	}
	return base
}

// HandleGzip wraps the given reader in a gzip reader when the stream
// starts with the gzip magic bytes, and returns the reader unchanged
// otherwise.
func HandleGzip(reader *bufio.Reader) io.Reader {
	magic, err := reader.Peek(2)
	if err != nil || magic[0] != 0x1F || magic[1] != 0x8B {
		return reader
	}
	gz, err := gzip.NewReader(reader)
	if err != nil {
		log.Panic(err)
	}
	return gz
}

// Parse sequentially parses a FASTA file into a ReferenceSet named
// name. Entry order in the file is preserved.
//
// If toUpper is true, the contents are converted to upper case.
// If toN is true, ambiguity codes are normalized. Gzip-compressed
// input is handled transparently.
func Parse(filename, name string, toUpper, toN bool) *ReferenceSet {
	f := internal.FileOpen(filename)
	defer internal.Close(f)
	return ParseReader(bufio.NewReader(f), name, filename, toUpper, toN)
}

// ParseReader parses FASTA data from an open reader. The filename is
// only used in error messages.
func ParseReader(reader *bufio.Reader, name, filename string, toUpper, toN bool) *ReferenceSet {
	scanner := bufio.NewScanner(HandleGzip(reader))
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	if !scanner.Scan() {
		log.Panicf("empty fasta file %v", filename)
	}
	b := scanner.Bytes()
	for len(b) == 0 {
		if !scanner.Scan() {
			log.Panicf("empty fasta file %v", filename)
		}
		b = scanner.Bytes()
	}
	if b[0] != '>' {
		log.Panicf("invalid fasta file %v - missing first header", filename)
	}

	set := NewReferenceSet(name)
	contig := contigFromHeader(b)
	var seq []byte

scanLoop:
	for scanner.Scan() {
		b := scanner.Bytes()
		if len(b) == 0 {
			if !scanner.Scan() {
				break scanLoop
			}
			b = scanner.Bytes()
			for len(b) == 0 {
				if !scanner.Scan() {
					break scanLoop
				}
				b = scanner.Bytes()
			}
			if b[0] != '>' {
				log.Panicf("invalid fasta file %v - empty line", filename)
			}
		}
		if b[0] == '>' {
			set.Add(contig, seq)
			contig = contigFromHeader(b)
			seq = nil
		} else {
			if toUpper || toN {
				for i, c := range b {
					if toUpper {
						b[i] = ToUpperAndN(c)
					} else {
						b[i] = ToN(c)
					}
				}
			}
			seq = append(seq, b...)
		}
	}

	set.Add(contig, seq)

	if err := scanner.Err(); err != nil {
		log.Panic(err)
	}

	return set
}

const fastaLineWidth = 70

// Write stores a ReferenceSet as a plain FASTA file, preserving
// entry order.
func Write(set *ReferenceSet, filename string) {
	file := internal.FileCreate(filename)
	defer internal.Close(file)
	out := bufio.NewWriter(file)
	for _, record := range set.Records {
		internal.WriteString(out, ">")
		internal.WriteString(out, record.ID)
		internal.WriteString(out, "\n")
		seq := record.Seq
		for len(seq) > fastaLineWidth {
			internal.Write(out, seq[:fastaLineWidth])
			internal.WriteString(out, "\n")
			seq = seq[fastaLineWidth:]
		}
		internal.Write(out, seq)
		internal.WriteString(out, "\n")
	}
	if err := out.Flush(); err != nil {
		log.Panic(err)
	}
}

// WriteQueries stages unique read sequences as a FASTA query file for
// the aligner. Entries are identified positionally as seq1..seqN so
// that report parsing maps hits back to row indexes rather than
// comparing sequence strings.
func WriteQueries(sequences []string, filename string) {
	file := internal.FileCreate(filename)
	defer internal.Close(file)
	out := bufio.NewWriter(file)
	for i, seq := range sequences {
		fmt.Fprintf(out, ">seq%d\n%s\n", i+1, seq)
	}
	if err := out.Flush(); err != nil {
		log.Panic(err)
	}
}

// QueryIndex parses a seq<N> query identifier produced by
// WriteQueries back into a zero-based row index. It returns -1 for
// identifiers that were not produced by WriteQueries.
func QueryIndex(id string) int {
	if !strings.HasPrefix(id, "seq") {
		return -1
	}
	n := 0
	for i := 3; i < len(id); i++ {
		c := id[i]
		if c < '0' || c > '9' {
			return -1
		}
		n = 10*n + int(c-'0')
	}
	if n == 0 {
		return -1
	}
	return n - 1
}
