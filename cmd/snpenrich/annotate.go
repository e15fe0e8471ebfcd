package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/varfield/snpenrich/internal/genome"
	"github.com/varfield/snpenrich/internal/output"
	"github.com/varfield/snpenrich/internal/variant"
)

func runAnnotate(args []string) int {
	fs := flag.NewFlagSet("annotate", flag.ExitOnError)

	var (
		genesPath  string
		outputFile string
		window     int
		results    = make(resultsFlag)
	)

	fs.StringVar(&genesPath, "genes", "", "Gene/exon model table (TSV)")
	fs.StringVar(&outputFile, "o", "", "Output file (default: stdout)")
	fs.StringVar(&outputFile, "output", "", "Output file (default: stdout)")
	fs.IntVar(&window, "window", 0, "Window width in bases (default: widest configured window)")
	fs.Var(results, "results", "Statistical results table as NAME=PATH (repeatable)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Export the final annotation table: one row per significant variant and
nearby gene within the widest window, sorted by the variant's smallest
p-value across procedures.

Usage:
  snpenrich annotate [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  snpenrich annotate --genes genes.tsv --results af=af.tsv --results geno=geno.tsv -o annotation.tsv
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if genesPath == "" || len(results) == 0 {
		fmt.Fprintf(os.Stderr, "Error: --genes and at least one --results are required\n\n")
		fs.Usage()
		return ExitUsage
	}
	if window == 0 {
		for _, w := range viper.GetIntSlice("enrich.windows") {
			if w > window {
				window = w
			}
		}
	}

	genes, _, err := genome.LoadFeatures(genesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading gene models: %v\n", err)
		return ExitError
	}
	idx, err := genome.NewIndex(genes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error indexing gene models: %v\n", err)
		return ExitError
	}

	variants, procedures, err := loadVariants(results)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	sig, _ := variant.Partition(variants, significanceCutoffs())

	var out *os.File
	if outputFile == "" {
		out = os.Stdout
	} else {
		out, err = os.Create(outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			return ExitError
		}
		defer out.Close()
	}

	rows := output.AnnotationRows(sig, idx, window)
	if err := output.NewAnnotationWriter(out, procedures).WriteAll(rows); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing annotation: %v\n", err)
		return ExitError
	}

	return ExitSuccess
}
