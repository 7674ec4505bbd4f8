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

package cmd

import (
	"flag"
	"fmt"
	"os"

	"github.com/exascience/srpac/pac"
)

// CheckHelp is the help string for this command.
const CheckHelp = "Check parameters:\n" +
	"srpac check /path/to/pac/\n"

// Check implements the srpac check command. It validates the
// identity invariants of a persisted PAC directory.
func Check() error {
	var flags flag.FlagSet

	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, CheckHelp)
		os.Exit(1)
	}

	input := getFilename(os.Args[2], CheckHelp)

	parseFlags(flags, 3, CheckHelp)

	p, err := pac.Read(input)
	if err != nil {
		return err
	}
	fmt.Printf("OK: %d sequences, %d samples, %d annotation columns.\n",
		p.NSequences(), p.NSamples(), len(p.AnnoColumns))
	return nil
}
