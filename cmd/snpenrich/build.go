package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/varfield/snpenrich/internal/closure"
	"github.com/varfield/snpenrich/internal/ontology"
)

func runBuild(args []string) int {
	fs := flag.NewFlagSet("build", flag.ExitOnError)

	var (
		oboPath    string
		assocPath  string
		outputFile string
		cachePath  string
		workers    int
	)

	fs.StringVar(&oboPath, "obo", "", "Ontology graph in OBO format")
	fs.StringVar(&assocPath, "associations", "", "Raw gene/term association table (TSV)")
	fs.StringVar(&outputFile, "o", "", "Closure table output file (default: stdout)")
	fs.StringVar(&outputFile, "output", "", "Closure table output file (default: stdout)")
	fs.StringVar(&cachePath, "cache", "", "Also persist the closure table to a DuckDB cache at this path")
	fs.IntVar(&workers, "workers", 0, "Closure worker pool size (default: min(cores, 12))")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Build the gene-to-GO closure table.

For every gene this computes the full set of implied GO terms: each directly
associated term plus all of its ancestors, across all three namespaces. This
is the most expensive step of the pipeline; persist the result and reuse it.

Usage:
  snpenrich build [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  snpenrich build --obo go.obo --associations assoc.tsv -o closure.tsv
  snpenrich build --obo go.obo --associations assoc.tsv --cache closure.duckdb
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if oboPath == "" || assocPath == "" {
		fmt.Fprintf(os.Stderr, "Error: --obo and --associations are required\n\n")
		fs.Usage()
		return ExitUsage
	}

	logger := newLogger()
	defer logger.Sync()

	graph, err := ontology.LoadOBO(oboPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ontology: %v\n", err)
		return ExitError
	}
	logger.Info("ontology loaded", zap.Int("terms", graph.TermCount()))

	assocs, err := closure.LoadAssociations(assocPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading associations: %v\n", err)
		return ExitError
	}
	logger.Info("associations loaded", zap.Int("rows", len(assocs)))

	builder := closure.NewBuilder(graph)
	builder.SetLogger(logger)
	builder.SetWorkers(workers)

	table, stats := builder.Build(assocs)
	logger.Info("closure built",
		zap.Int("genes", stats.Genes),
		zap.Int("rows", stats.Rows),
		zap.Int("unknown_terms", len(stats.UnknownTerms)))

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

	if err := table.WriteTSV(out, graph); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing closure table: %v\n", err)
		return ExitError
	}

	if cachePath != "" {
		store, err := closure.OpenStore(cachePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening cache: %v\n", err)
			return ExitError
		}
		defer store.Close()
		if err := store.WriteTable(table, graph); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing cache: %v\n", err)
			return ExitError
		}
		logger.Info("closure cached", zap.String("path", cachePath))
	}

	return ExitSuccess
}
