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
	"path/filepath"

	"github.com/exascience/srpac/align"
	"github.com/exascience/srpac/mapper"
	"github.com/exascience/srpac/pac"
)

// MapHelp is the help string for this command.
const MapHelp = "Map parameters:\n" +
	"srpac map /path/to/pac/ reference-fasta output-file\n" +
	"[--name reference-name]\n" +
	"[--mismatches nr]\n" +
	"[--n-up nr] [--n-down nr]\n" +
	"[--multi (remove | keep)]\n" +
	"[--render]\n" +
	"[--check-names fasta-file]\n" +
	"[--bowtie path] [--bowtie-build path]\n" +
	"[--staging /path/to/staging/]\n" +
	"[--force]\n" +
	"[--nr-of-threads nr]\n" +
	"[--log-path path]\n"

// Map implements the srpac map command.
func Map() error {
	var (
		name, multi, checkNames string
		bowtie, bowtieBuild     string
		stagingDir, logPath     string
		mismatches, nrOfThreads int
		nUp, nDown              int
		render                  bool
		force                   bool
	)

	var flags flag.FlagSet

	flags.StringVar(&name, "name", "", "name of the reference set")
	flags.IntVar(&mismatches, "mismatches", 0, "highest mismatch level")
	flags.IntVar(&nUp, "n-up", 0, "wildcard bases prepended to each reference entry")
	flags.IntVar(&nDown, "n-down", 0, "wildcard bases appended to each reference entry")
	flags.StringVar(&multi, "multi", mapper.MultiRemove, "multi-mapping policy")
	flags.BoolVar(&render, "render", false, "render alignment strings")
	flags.StringVar(&checkNames, "check-names", "", "compare entry naming against another reference fasta")
	flags.StringVar(&bowtie, "bowtie", "", "bowtie executable")
	flags.StringVar(&bowtieBuild, "bowtie-build", "", "bowtie-build executable")
	flags.StringVar(&stagingDir, "staging", "", "staging area for raw aligner reports")
	flags.BoolVar(&force, "force", false, "reuse a non-empty staging area")
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.StringVar(&logPath, "log-path", "", "path for the log file")

	if len(os.Args) < 5 {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, MapHelp)
		os.Exit(1)
	}

	input := getFilename(os.Args[2], MapHelp)
	refFile := getFilename(os.Args[3], MapHelp)
	output := getFilename(os.Args[4], MapHelp)

	parseFlags(flags, 5, MapHelp)

	setLogOutput(logPath)

	// sanity checks

	var sanityChecksFailed bool

	if !checkExist("", refFile) {
		sanityChecksFailed = true
	}
	if checkNames != "" && !checkExist("--check-names", checkNames) {
		sanityChecksFailed = true
	}
	if mismatches < 0 {
		log.Println("Error: Invalid mismatches: ", mismatches)
		sanityChecksFailed = true
	}
	if nUp < 0 || nDown < 0 {
		log.Println("Error: Invalid padding: ", nUp, nDown)
		sanityChecksFailed = true
	}
	if multi != mapper.MultiRemove && multi != mapper.MultiKeep {
		log.Printf("Error: Invalid multi-mapping policy %v.\n", multi)
		sanityChecksFailed = true
	}
	if nrOfThreads < 0 {
		log.Println("Error: Invalid nr-of-threads: ", nrOfThreads)
		sanityChecksFailed = true
	}
	if name == "" {
		base := filepath.Base(refFile)
		name = base[:len(base)-len(filepath.Ext(base))]
	}
	if stagingDir == "" {
		stagingDir = filepath.Join(filepath.Dir(output), "mapper-staging")
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, MapHelp)
		os.Exit(1)
	}

	p, err := pac.Read(input)
	if err != nil {
		return err
	}
	log.Printf("Loaded PAC with %d sequences and %d samples.\n", p.NSequences(), p.NSamples())

	ref := loadReference(refFile, name)
	log.Printf("Reference %v: %d entries.\n", name, ref.Len())

	if checkNames != "" {
		other := loadReference(checkNames, "other")
		if warning := mapper.CheckNaming(ref.IDs(), other.IDs()); warning != nil {
			log.Println("Warning: ", warning)
		}
	}

	result, err := mapper.Map(p, ref, mapper.Options{
		Aligner:    &align.Bowtie{Executable: bowtie, BuildExecutable: bowtieBuild},
		Mismatches: mismatches,
		NUp:        nUp,
		NDown:      nDown,
		Multi:      multi,
		Render:     render,
		Threads:    nrOfThreads,
		Staging:    stagingDir,
		Force:      force,
	})
	if err != nil {
		return err
	}
	for _, warning := range result.Warnings {
		log.Println("Warning: ", warning)
	}

	result.Write(output)
	log.Printf("Wrote coordinate table to %v.\n", output)
	return nil
}
