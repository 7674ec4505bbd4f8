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
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/exascience/srpac/internal"
	"github.com/exascience/srpac/pac"
)

// SummaryHelp is the help string for this command.
const SummaryHelp = "Summary parameters:\n" +
	"srpac summary /path/to/pac/ /path/to/output/\n" +
	"[--cpm]\n" +
	"[--group pheno-column]\n" +
	"[--fc groupA/groupB]\n" +
	"[--log-path path]\n"

// Summary implements the srpac summary command. It adds normalized
// and per-group summary tables to a PAC and writes them next to the
// table triplet.
func Summary() error {
	var (
		cpm       bool
		group, fc string
		logPath   string
	)

	var flags flag.FlagSet

	flags.BoolVar(&cpm, "cpm", false, "add a counts-per-million table")
	flags.StringVar(&group, "group", "", "phenotype column for group summaries")
	flags.StringVar(&fc, "fc", "", "log2 fold change between two groups, as groupA/groupB")
	flags.StringVar(&logPath, "log-path", "", "path for the log file")

	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, SummaryHelp)
		os.Exit(1)
	}

	input := getFilename(os.Args[2], SummaryHelp)
	output := getFilename(os.Args[3], SummaryHelp)

	parseFlags(flags, 4, SummaryHelp)

	setLogOutput(logPath)

	if fc != "" && group == "" {
		fmt.Fprintln(os.Stderr, "--fc needs --group.")
		fmt.Fprint(os.Stderr, SummaryHelp)
		os.Exit(1)
	}

	p, err := pac.Read(input)
	if err != nil {
		return err
	}

	source := "counts"
	if cpm {
		if err := p.AddCPM("cpm"); err != nil {
			return err
		}
		source = "cpm"
	}
	if group != "" {
		if err := p.AddGroupSummary("groupMeans", source, group); err != nil {
			return err
		}
	}
	if fc != "" {
		i := strings.IndexByte(fc, '/')
		if i <= 0 || i == len(fc)-1 {
			return fmt.Errorf("invalid fold change spec %q, want groupA/groupB", fc)
		}
		if err := p.AddLog2FC("log2FC", source, group, fc[:i], fc[i+1:]); err != nil {
			return err
		}
	}

	if err := p.Write(output); err != nil {
		return err
	}
	for name, table := range p.Norm {
		writeDerived(filepath.Join(output, "Norm_"+name+".txt"), table)
	}
	for name, table := range p.Summary {
		writeDerived(filepath.Join(output, "Summary_"+name+".txt"), table)
	}
	log.Printf("Wrote summarized PAC to %v.\n", output)
	return nil
}

func writeDerived(filename string, table *pac.DerivedTable) {
	file := internal.FileCreate(filename)
	defer internal.Close(file)
	out := bufio.NewWriter(file)

	internal.WriteString(out, "# method "+table.Method+"\n")
	internal.WriteString(out, "Sequence")
	for _, column := range table.Columns {
		internal.WriteString(out, "\t")
		internal.WriteString(out, column)
	}
	internal.WriteString(out, "\n")
	for _, sequence := range table.Sequences {
		internal.WriteString(out, sequence)
		for _, value := range table.Rows[sequence] {
			internal.WriteString(out, "\t")
			internal.WriteString(out, strconv.FormatFloat(value, 'g', 6, 64))
		}
		internal.WriteString(out, "\n")
	}
	if err := out.Flush(); err != nil {
		log.Panic(err)
	}
}
