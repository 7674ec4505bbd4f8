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

// srPAC re-annotates unique small RNA sequences by mapping them
// against auxiliary reference sets with an external short-read
// aligner and folding the hits back into the annotation table of a
// pheno/anno/counts (PAC) table triplet.
//
// Please see https://github.com/exascience/srpac for a documentation
// of the tool.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/exascience/srpac/cmd"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: reannotate, map, check, summary, fasta-to-srfasta")
	fmt.Fprint(os.Stderr, "\n", cmd.ReannotateHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.MapHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.CheckHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.SummaryHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.FastaToSrfastaHelp)
}

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprintln(os.Stderr, cmd.HelpMessage)
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "reannotate":
		err = cmd.Reannotate()
	case "map":
		err = cmd.Map()
	case "check":
		err = cmd.Check()
	case "summary":
		err = cmd.Summary()
	case "fasta-to-srfasta":
		err = cmd.FastaToSrfasta()
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		log.Printf("Unknown command %v.\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}
