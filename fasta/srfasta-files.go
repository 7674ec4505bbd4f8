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
	"encoding/binary"
	"log"
	"os"
	"sync"

	"github.com/exascience/srpac/internal"

	"golang.org/x/sys/unix"
)

// SrfastaMagic is the magic byte sequence that every .srfasta file
// starts with.
var SrfastaMagic = []byte{0x5F, 0xFA, 0x57, 0xA1} // 5FFA57A1 => SRFASTA1

type offsetTableEntry struct {
	id     string
	offset int
}

// ToSrfasta stores a ReferenceSet in an mmappable .srfasta file so
// that genome-scale references can be reopened without copying.
// Entry order is preserved.
func ToSrfasta(set *ReferenceSet, filename string) {
	file := internal.FileCreate(filename)
	defer internal.Close(file)
	offset := internal.Write(file, SrfastaMagic)
	var offsetTable []offsetTableEntry
	for _, record := range set.Records {
		n := internal.WriteString(file, record.ID)
		t := internal.WriteString(file, "\t")
		offset += n + t
		offsetTable = append(offsetTable, offsetTableEntry{id: record.ID, offset: offset})
		offset += 2 * binary.MaxVarintLen64
		if _, err := file.Seek(int64(offset), 0); err != nil {
			log.Panic(err)
		}
	}
	n := internal.WriteString(file, "\n")
	offset += n
	offsetMap := make(map[string]int)
	for _, record := range set.Records {
		offsetMap[record.ID] = offset
		offset += internal.Write(file, record.Seq)
	}
	data, err := unix.Mmap(int(file.Fd()), 0, offset, unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		log.Panic(err)
	}
	defer func() {
		if err := unix.Munmap(data); err != nil {
			log.Panic(err)
		}
	}()
	for _, entry := range offsetTable {
		seq, _ := set.Seq(entry.id)
		binary.PutVarint(data[entry.offset:entry.offset+binary.MaxVarintLen64], int64(offsetMap[entry.id]))
		binary.PutVarint(data[entry.offset+binary.MaxVarintLen64:entry.offset+2*binary.MaxVarintLen64], int64(len(seq)))
	}
}

// MappedReference represents the contents of an .srfasta file. The
// sequence data stays memory mapped for the lifetime of the value.
type MappedReference struct {
	wait sync.WaitGroup
	ids  []string
	seqs map[string][]byte
	data []byte
	file *os.File
}

// OpenSrfasta opens a .srfasta file. The file contents become
// available on first access; opening itself does not block.
func OpenSrfasta(filename string) (result *MappedReference) {
	result = new(MappedReference)
	result.wait.Add(1)
	go func() {
		defer result.wait.Done()
		file := internal.FileOpen(filename)
		stat, err := file.Stat()
		if err != nil {
			_ = file.Close()
			log.Panic(err)
		}
		data, err := unix.Mmap(int(file.Fd()), 0, int(stat.Size()), unix.PROT_READ, unix.MAP_SHARED)
		if err != nil {
			_ = file.Close()
			log.Panic(err)
		}
		for i, b := range SrfastaMagic {
			if data[i] != b {
				_ = file.Close()
				log.Panicf("%v is not a .srfasta file - invalid magic byte sequence", filename)
			}
		}
		seqs := make(map[string][]byte)
		var ids []string
		index := len(SrfastaMagic)
		for data[index] != '\n' {
			start := index
			for ; data[index] != '\t'; index++ {
			}
			id := string(data[start:index])
			index++
			offset, n := binary.Varint(data[index : index+binary.MaxVarintLen64])
			if n <= 0 {
				_ = unix.Munmap(data)
				_ = file.Close()
				log.Panicf("bad number of bytes while parsing offset in srfasta file %v", filename)
			}
			size, n := binary.Varint(data[index+binary.MaxVarintLen64 : index+2*binary.MaxVarintLen64])
			if n <= 0 {
				_ = unix.Munmap(data)
				_ = file.Close()
				log.Panicf("bad number of bytes while parsing size in srfasta file %v", filename)
			}
			ids = append(ids, id)
			seqs[id] = data[int(offset):int(offset+size)]
			index += 2 * binary.MaxVarintLen64
		}
		result.ids = ids
		result.seqs = seqs
		result.data = data
		result.file = file
	}()
	return result
}

// Close closes the .srfasta file.
func (ref *MappedReference) Close() {
	ref.wait.Wait()
	err := unix.Munmap(ref.data)
	ref.data = nil
	if nerr := ref.file.Close(); err == nil {
		err = nerr
	}
	ref.file = nil
	ref.ids = nil
	ref.seqs = nil
	if err != nil {
		log.Panic(err)
	}
}

// Seq fetches a sequence for the given entry identifier from the
// .srfasta file.
func (ref *MappedReference) Seq(id string) []byte {
	ref.wait.Wait()
	return ref.seqs[id]
}

// ToReferenceSet copies the mapped contents into a regular
// ReferenceSet with the given name, preserving entry order.
func (ref *MappedReference) ToReferenceSet(name string) *ReferenceSet {
	ref.wait.Wait()
	set := NewReferenceSet(name)
	for _, id := range ref.ids {
		seq := make([]byte, len(ref.seqs[id]))
		copy(seq, ref.seqs[id])
		set.Add(id, seq)
	}
	return set
}
