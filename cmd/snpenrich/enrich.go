package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/varfield/snpenrich/internal/closure"
	"github.com/varfield/snpenrich/internal/enrich"
	"github.com/varfield/snpenrich/internal/genome"
	"github.com/varfield/snpenrich/internal/ontology"
	"github.com/varfield/snpenrich/internal/output"
	"github.com/varfield/snpenrich/internal/variant"
)

func runEnrich(args []string) int {
	fs := flag.NewFlagSet("enrich", flag.ExitOnError)

	var (
		closurePath string
		cachePath   string
		oboPath     string
		genesPath   string
		outputDir   string
		results     = make(resultsFlag)
		windows     windowsFlag
	)

	fs.StringVar(&closurePath, "closure", "", "Closure table TSV (as produced by build)")
	fs.StringVar(&cachePath, "cache", "", "Closure DuckDB cache (as produced by build)")
	fs.StringVar(&oboPath, "obo", "", "Ontology graph in OBO format (for the shallow-term filter)")
	fs.StringVar(&genesPath, "genes", "", "Gene/exon model table (TSV)")
	fs.StringVar(&outputDir, "o", ".", "Output directory for enrichment tables")
	fs.StringVar(&outputDir, "output", ".", "Output directory for enrichment tables")
	fs.Var(results, "results", "Statistical results table as NAME=PATH (repeatable)")
	fs.Var(&windows, "window", "Window width in bases, odd (repeatable; default from config)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Test genes near significant variants for GO-term enrichment.

At each window width, genes within the window of a significant variant form
the candidate set and genes within the window of a non-significant variant
form the background; each candidate GO term gets a two-sided Fisher exact
test and the batch is Benjamini-Hochberg corrected.

Usage:
  snpenrich enrich [options]

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  snpenrich enrich --closure closure.tsv --obo go.obo --genes genes.tsv \
      --results af=af.tsv --results geno=geno.tsv -o results/
  snpenrich enrich --cache closure.duckdb --obo go.obo --genes genes.tsv \
      --results af=af.tsv --window 20001
`)
	}

	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if (closurePath == "") == (cachePath == "") {
		fmt.Fprintf(os.Stderr, "Error: exactly one of --closure or --cache is required\n\n")
		fs.Usage()
		return ExitUsage
	}
	if oboPath == "" || genesPath == "" || len(results) == 0 {
		fmt.Fprintf(os.Stderr, "Error: --obo, --genes and at least one --results are required\n\n")
		fs.Usage()
		return ExitUsage
	}
	if len(windows) == 0 {
		windows = viper.GetIntSlice("enrich.windows")
	}

	logger := newLogger()
	defer logger.Sync()

	table, err := loadClosure(closurePath, cachePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading closure table: %v\n", err)
		return ExitError
	}
	logger.Info("closure loaded", zap.Int("genes", table.GeneCount()))

	graph, err := ontology.LoadOBO(oboPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ontology: %v\n", err)
		return ExitError
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

	variants, _, err := loadVariants(results)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitError
	}
	sig, notSig := variant.Partition(variants, significanceCutoffs())
	logger.Info("variants classified",
		zap.Int("total", len(variants)),
		zap.Int("significant", len(sig)))

	tester := enrich.NewTester(table)
	tester.SetLogger(logger)
	tester.Exclude(
		graph.ShallowTerms(viper.GetInt("enrich.max_depth")),
		table.SingleGeneTerms(),
	)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		return ExitError
	}

	widest := 0
	for _, w := range windows {
		if w > widest {
			widest = w
		}
	}

	for _, w := range windows {
		candidate := geneIDs(idx.GenesWithin(sites(sig), w))
		background := geneIDs(idx.GenesWithin(sites(notSig), w))

		batch := tester.Test(candidate, background)

		// The narrow window reports on FDR alone; the widest one
		// additionally requires a minimum observed count.
		maxFDR := viper.GetFloat64("enrich.fdr")
		minObserved := 0
		if w == widest && len(windows) > 1 {
			maxFDR = viper.GetFloat64("enrich.wide_fdr")
			minObserved = viper.GetInt("enrich.min_observed")
		}
		logger.Info("window tested",
			zap.Int("window", w),
			zap.Int("candidate_genes", len(candidate)),
			zap.Int("terms", len(batch)),
			zap.Int("enriched", len(enrich.Enriched(batch, maxFDR, minObserved))))

		path := filepath.Join(outputDir, fmt.Sprintf("enrichment_w%d.tsv", w))
		f, err := os.Create(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating %s: %v\n", path, err)
			return ExitError
		}
		err = output.NewEnrichmentWriter(f).WriteAll(batch)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", path, err)
			return ExitError
		}
	}

	return ExitSuccess
}

// loadClosure reads the immutable closure table from whichever persistence
// the build step produced.
func loadClosure(tsvPath, cachePath string) (*closure.Table, error) {
	if cachePath != "" {
		store, err := closure.OpenStore(cachePath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.ReadTable()
	}
	return closure.LoadTSV(tsvPath)
}

func sites(variants []*variant.Variant) []genome.Site {
	out := make([]genome.Site, len(variants))
	for i, v := range variants {
		out[i] = genome.Site{Chrom: v.Chrom, Pos: v.Pos}
	}
	return out
}

func geneIDs(genes []*genome.Gene) []string {
	ids := make([]string, len(genes))
	for i, g := range genes {
		ids[i] = g.ID
	}
	return ids
}
