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
)

// A NamingWarning reports a naming mismatch between two
// coordinate-space references, typically chromosome-name convention
// drift across genome builds ("1" versus "chr1"). It is a warning,
// not an error: processing continues.
type NamingWarning struct {
	// Similarity is the share of identifiers common to both sets
	// over the union.
	Similarity float64

	OnlyA, OnlyB []string
}

func (w *NamingWarning) String() string {
	return fmt.Sprintf("reference naming mismatch: similarity %.2f, %d identifier(s) only in the first set, %d only in the second",
		w.Similarity, len(w.OnlyA), len(w.OnlyB))
}

// CheckNaming compares the identifier vocabularies of two reference
// sets. It returns nil when they are identical as sets, and a
// NamingWarning with a similarity ratio otherwise.
func CheckNaming(a, b []string) *NamingWarning {
	setA := make(map[string]bool, len(a))
	for _, id := range a {
		setA[id] = true
	}
	setB := make(map[string]bool, len(b))
	for _, id := range b {
		setB[id] = true
	}

	var warning NamingWarning
	common := 0
	for id := range setA {
		if setB[id] {
			common++
		} else {
			warning.OnlyA = append(warning.OnlyA, id)
		}
	}
	for id := range setB {
		if !setA[id] {
			warning.OnlyB = append(warning.OnlyB, id)
		}
	}
	if len(warning.OnlyA) == 0 && len(warning.OnlyB) == 0 {
		return nil
	}
	union := len(setA) + len(warning.OnlyB)
	if union > 0 {
		warning.Similarity = float64(common) / float64(union)
	}
	return &warning
}
