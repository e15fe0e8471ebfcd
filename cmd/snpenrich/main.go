// Package main provides the snpenrich command-line tool.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/varfield/snpenrich/internal/variant"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("snpenrich version %s (%s) built %s\n", version, commit, date)
		return ExitSuccess
	}

	initConfig()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		return ExitUsage
	}

	switch args[0] {
	case "build":
		return runBuild(args[1:])
	case "enrich":
		return runEnrich(args[1:])
	case "annotate":
		return runAnnotate(args[1:])
	case "config":
		return runConfigCommand(args[1:])
	case "help":
		printUsage()
		return ExitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", args[0])
		printUsage()
		return ExitUsage
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `snpenrich - GO-term enrichment for genes near significant variants

Usage:
  snpenrich [options] <command> [arguments]

Commands:
  build       Build the gene-to-GO closure table (expensive, run once per ontology)
  enrich      Test genes near significant variants for GO-term enrichment
  annotate    Export per-variant nearby-gene annotations
  config      Manage snpenrich configuration
  help        Show this help message

Global Options:
  --version   Show version information

Examples:
  # Build the closure table once (cached for every later run)
  snpenrich build --obo go.obo --associations assoc.tsv -o closure.tsv --cache closure.duckdb

  # Run enrichment at the default windows
  snpenrich enrich --cache closure.duckdb --obo go.obo --genes genes.tsv \
      --results af=af_results.tsv --results geno=geno_results.tsv -o results/

  # Export the final annotation table
  snpenrich annotate --genes genes.tsv --results af=af_results.tsv \
      --results geno=geno_results.tsv -o annotation.tsv

For more information on a command, use:
  snpenrich <command> --help
`)
}

// initConfig loads ~/.snpenrich.yaml and installs the analysis-parameter
// defaults. The significance cut-offs, window widths and reporting thresholds
// are analysis parameters, not algorithmic constants.
func initConfig() {
	viper.SetDefault("significance.af", 0.05)
	viper.SetDefault("significance.geno", 0.10)
	viper.SetDefault("enrich.windows", []int{20001, 80001})
	viper.SetDefault("enrich.max_depth", 3)
	viper.SetDefault("enrich.fdr", 0.05)
	viper.SetDefault("enrich.wide_fdr", 0.10)
	viper.SetDefault("enrich.min_observed", 3)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	viper.AddConfigPath(home)
	viper.SetConfigName(".snpenrich")
	viper.SetConfigType("yaml")
	_ = viper.ReadInConfig()
}

// significanceCutoffs reads the per-procedure FDR cut-offs from config.
func significanceCutoffs() variant.SignificanceCutoffs {
	cutoffs := make(variant.SignificanceCutoffs)
	for proc := range viper.GetStringMap("significance") {
		cutoffs[proc] = viper.GetFloat64("significance." + proc)
	}
	return cutoffs
}

// newLogger builds the CLI logger. Library code defaults to a no-op logger;
// the CLI is where logging is switched on.
func newLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// resultsFlag collects repeated --results NAME=PATH flags.
type resultsFlag map[string]string

func (f resultsFlag) String() string {
	pairs := make([]string, 0, len(f))
	for name, path := range f {
		pairs = append(pairs, name+"="+path)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func (f resultsFlag) Set(value string) error {
	name, path, ok := strings.Cut(value, "=")
	if !ok || name == "" || path == "" {
		return fmt.Errorf("expected NAME=PATH, got %q", value)
	}
	f[name] = path
	return nil
}

// loadVariants loads every procedure's results table and outer-joins them
// into the unified variant set.
func loadVariants(results resultsFlag) ([]*variant.Variant, []string, error) {
	tables := make(map[string][]variant.Record, len(results))
	procedures := make([]string, 0, len(results))
	for name, path := range results {
		records, err := variant.LoadResults(path)
		if err != nil {
			return nil, nil, fmt.Errorf("load %s results: %w", name, err)
		}
		tables[name] = records
		procedures = append(procedures, name)
	}
	sort.Strings(procedures)
	return variant.Merge(tables), procedures, nil
}

// windowsFlag collects repeated --window flags.
type windowsFlag []int

func (f *windowsFlag) String() string {
	parts := make([]string, len(*f))
	for i, w := range *f {
		parts[i] = fmt.Sprintf("%d", w)
	}
	return strings.Join(parts, ",")
}

func (f *windowsFlag) Set(value string) error {
	var w int
	if _, err := fmt.Sscanf(value, "%d", &w); err != nil {
		return fmt.Errorf("bad window width %q", value)
	}
	if w < 1 || w%2 == 0 {
		return fmt.Errorf("window width must be odd and positive, got %d", w)
	}
	*f = append(*f, w)
	return nil
}
