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
	"strconv"
	"strings"

	"github.com/exascience/srpac/align"
	"github.com/exascience/srpac/fasta"
	"github.com/exascience/srpac/pac"
	"github.com/exascience/srpac/reanno"
)

// ReannotateHelp is the help string for this command.
const ReannotateHelp = "Reannotate parameters:\n" +
	"srpac reannotate /path/to/pac/ /path/to/output/\n" +
	"--ref name=fasta-file (repeatable)\n" +
	"[--mismatches nr]\n" +
	"[--report (minimum | full)]\n" +
	"[--reduce reference-name (repeatable)]\n" +
	"[--genome-max (nr | all)]\n" +
	"[--search label=pattern,pattern,... (repeatable)]\n" +
	"[--prefix name]\n" +
	"[--perfect]\n" +
	"[--bowtie path] [--bowtie-build path]\n" +
	"[--staging /path/to/staging/]\n" +
	"[--keep] [--compress] [--force]\n" +
	"[--nr-of-threads nr]\n" +
	"[--log-path path]\n"

// Reannotate implements the srpac reannotate command.
func Reannotate() error {
	var (
		refs                        refSpecs
		reduce, search              stringList
		report, genomeMax, prefix   string
		bowtie, bowtieBuild         string
		stagingDir, logPath         string
		mismatches, nrOfThreads     int
		perfect, keep, compressFlag bool
		force                       bool
	)

	var flags flag.FlagSet

	flags.Var(&refs, "ref", "named reference fasta, as name=path")
	flags.IntVar(&mismatches, "mismatches", 2, "highest mismatch level")
	flags.StringVar(&report, "report", "minimum", "overview report mode")
	flags.Var(&reduce, "reduce", "references always reported in minimum mode")
	flags.StringVar(&genomeMax, "genome-max", "", "full-mode hits per cell before truncation, or all")
	flags.Var(&search, "search", "biotype search group, as label=pattern,pattern,...")
	flags.StringVar(&prefix, "prefix", "Biotypes", "prefix for the label columns")
	flags.BoolVar(&perfect, "perfect", false, "only perfect hits count toward labels")
	flags.StringVar(&bowtie, "bowtie", "", "bowtie executable")
	flags.StringVar(&bowtieBuild, "bowtie-build", "", "bowtie-build executable")
	flags.StringVar(&stagingDir, "staging", "", "staging area for raw aligner reports")
	flags.BoolVar(&keep, "keep", false, "keep raw aligner reports for inspection")
	flags.BoolVar(&compressFlag, "compress", false, "gzip kept aligner reports")
	flags.BoolVar(&force, "force", false, "reuse a non-empty staging area")
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.StringVar(&logPath, "log-path", "", "path for the log file")

	if len(os.Args) < 4 {
		printReannotateHelp()
	}

	input := getFilename(os.Args[2], ReannotateHelp)
	output := getFilename(os.Args[3], ReannotateHelp)

	parseFlags(flags, 4, ReannotateHelp)

	setLogOutput(logPath)

	// sanity checks

	var sanityChecksFailed bool

	if len(refs.names) == 0 {
		log.Println("Error: No --ref given.")
		sanityChecksFailed = true
	}
	for _, path := range refs.paths {
		if !checkExist("--ref", path) {
			sanityChecksFailed = true
		}
	}
	if mismatches < 0 {
		log.Println("Error: Invalid mismatches: ", mismatches)
		sanityChecksFailed = true
	}
	if report != "minimum" && report != "full" {
		log.Printf("Error: Invalid report mode %v.\n", report)
		sanityChecksFailed = true
	}
	if nrOfThreads < 0 {
		log.Println("Error: Invalid nr-of-threads: ", nrOfThreads)
		sanityChecksFailed = true
	}
	maxHits := reanno.DefaultMaxHits
	if genomeMax != "" {
		if genomeMax == "all" {
			maxHits = 0
		} else if n, err := strconv.Atoi(genomeMax); err == nil && n > 0 {
			maxHits = n
		} else {
			log.Printf("Error: Invalid genome-max %v.\n", genomeMax)
			sanityChecksFailed = true
		}
	}
	groups, err := reanno.ParseSearchGroups(search)
	if err != nil {
		log.Println("Error: ", err)
		sanityChecksFailed = true
	}
	if stagingDir == "" {
		stagingDir = filepath.Join(output, "reanno-staging")
	}

	if sanityChecksFailed {
		printReannotateHelp()
	}

	p, err := pac.Read(input)
	if err != nil {
		return err
	}
	log.Printf("Loaded PAC with %d sequences and %d samples.\n", p.NSequences(), p.NSamples())

	references := make([]*fasta.ReferenceSet, len(refs.names))
	for i, name := range refs.names {
		references[i] = loadReference(refs.paths[i], name)
		log.Printf("Reference %v: %d entries.\n", name, references[i].Len())
	}

	run, err := align.Run(p.Sequences, align.RunOptions{
		Aligner:    &align.Bowtie{Executable: bowtie, BuildExecutable: bowtieBuild},
		References: references,
		Mismatches: mismatches,
		Threads:    nrOfThreads,
		Staging:    stagingDir,
		Keep:       keep,
		Compress:   compressFlag,
		Force:      force,
	})
	if err != nil {
		return err
	}

	var mode reanno.ReportMode = reanno.Minimal{}
	if report == "full" {
		if len(reduce) > 0 {
			mode = reanno.FullExceptFor(reduce)
		} else {
			mode = reanno.Full{}
		}
	}

	summary, err := reanno.Aggregate(p.Sequences, run, reanno.AggregateOptions{Mode: mode, MaxHits: maxHits})
	if err != nil {
		return err
	}
	for _, warning := range summary.Warnings {
		log.Println("Warning: ", warning)
	}

	if err := reanno.MergeOverview(p, summary); err != nil {
		return err
	}
	if len(groups) > 0 {
		labels, err := reanno.Simplify(summary, groups, reanno.SimplifyOptions{
			Prefix:   prefix,
			Perfect:  perfect,
			MaxLevel: -1,
		})
		if err != nil {
			return err
		}
		if err := reanno.MergeLabels(p, labels); err != nil {
			return err
		}
	}

	if err := p.Write(output); err != nil {
		return err
	}
	summary.Write(filepath.Join(output, "Overview.txt"), run.RunID)
	log.Printf("Wrote re-annotated PAC to %v.\n", output)
	return nil
}

func printReannotateHelp() {
	fmt.Fprintln(os.Stderr, "Invalid reannotate parameters.")
	fmt.Fprint(os.Stderr, ReannotateHelp)
	os.Exit(1)
}

// loadReference loads a reference set from a plain or gzipped fasta
// file, or from an .srfasta reference cache.
func loadReference(path, name string) *fasta.ReferenceSet {
	if strings.HasSuffix(path, ".srfasta") {
		mapped := fasta.OpenSrfasta(path)
		defer mapped.Close()
		return mapped.ToReferenceSet(name)
	}
	return fasta.Parse(path, name, true, true)
}
