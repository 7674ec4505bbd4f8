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
	"log"
	"os"

	"github.com/exascience/srpac/fasta"
)

// FastaToSrfastaHelp is the help string for this command.
const FastaToSrfastaHelp = "fasta-to-srfasta parameters:\n" +
	"srpac fasta-to-srfasta fasta-file srfasta-file\n" +
	"[--log-path path]\n"

// FastaToSrfasta implements the srpac fasta-to-srfasta command. It
// converts a fasta file into an mmappable .srfasta reference cache.
func FastaToSrfasta() error {
	var logPath string

	var flags flag.FlagSet

	flags.StringVar(&logPath, "log-path", "", "path for the log file")

	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, FastaToSrfastaHelp)
		os.Exit(1)
	}

	input := getFilename(os.Args[2], FastaToSrfastaHelp)
	output := getFilename(os.Args[3], FastaToSrfastaHelp)

	parseFlags(flags, 4, FastaToSrfastaHelp)

	setLogOutput(logPath)

	set := fasta.Parse(input, "", true, true)
	fasta.ToSrfasta(set, output)
	log.Printf("Wrote %d entries to %v.\n", set.Len(), output)
	return nil
}
